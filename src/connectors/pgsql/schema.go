package pgsql

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// ColumnDefinition is a column of the destination table.
type ColumnDefinition struct {
	Name string
	Type string
}

// DestinationColumns is the fixed shape of the destination table.
var DestinationColumns = []ColumnDefinition{
	{Name: "id", Type: "INTEGER PRIMARY KEY"},
	{Name: "nome", Type: "VARCHAR(100)"},
	{Name: "categoria", Type: "VARCHAR(50)"},
	{Name: "valor", Type: "NUMERIC(10, 2)"},
	{Name: "data_criacao", Type: "TIMESTAMP WITH TIME ZONE"},
}

// conflictColumn and updateColumns drive the ON CONFLICT clause. data_criacao is
// left out so the first insert's timestamp is kept.
const conflictColumn = "id"

var updateColumns = []string{"nome", "categoria", "valor"}

// Table is a destination table reference.
type Table struct {
	Schema string
	Name   string
}

func (t Table) Identifier() pgx.Identifier {
	return pgx.Identifier{t.Schema, t.Name}
}

func (t Table) String() string {
	return t.Schema + "." + t.Name
}

func createSchemaSQL(t Table) string {
	return fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", pgx.Identifier{t.Schema}.Sanitize())
}

func createTableSQL(t Table, columns []ColumnDefinition) string {
	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = fmt.Sprintf("%s %s", pgx.Identifier{col.Name}.Sanitize(), col.Type)
	}
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (%s)",
		t.Identifier().Sanitize(),
		strings.Join(defs, ", "),
	)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// existingColumns returns the column names of t as found in information_schema.
func existingColumns(ctx context.Context, q querier, t Table) ([]string, error) {
	rows, err := q.Query(ctx, `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`, t.Schema, t.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to query table columns: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to read table columns: %w", err)
	}
	return names, nil
}

// missingColumns lists the destination columns absent from existing.
func missingColumns(existing []string) []string {
	have := make(map[string]bool, len(existing))
	for _, c := range existing {
		have[c] = true
	}
	var missing []string
	for _, col := range DestinationColumns {
		if !have[col.Name] {
			missing = append(missing, col.Name)
		}
	}
	return missing
}
