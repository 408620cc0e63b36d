package pgsql

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

var ErrNoColumns = errors.New("record has no columns")

// upsertCache keeps the statements by column list; source rows usually share
// one column set. Not safe for concurrent use.
type upsertCache struct {
	queries map[string]string
}

func (c *upsertCache) get(t Table, columns []string) (string, error) {
	key := strings.Join(columns, "\x00")
	if q, ok := c.queries[key]; ok {
		return q, nil
	}

	q, err := buildUpsertSQL(t, columns)
	if err != nil {
		return "", err
	}
	if c.queries == nil {
		c.queries = make(map[string]string)
	}
	c.queries[key] = q
	return q, nil
}

// buildUpsertSQL returns the INSERT ... ON CONFLICT (id) DO UPDATE statement for
// columns, with one positional parameter per column in the same order.
// Column names fold to lower case like unquoted identifiers, so "ID" and "Nome"
// address the id and nome columns.
func buildUpsertSQL(t Table, columns []string) (string, error) {
	if len(columns) == 0 {
		return "", ErrNoColumns
	}

	cols := make([]string, len(columns))
	params := make([]string, len(columns))
	for i, c := range columns {
		if c == "" {
			return "", fmt.Errorf("empty column name at position %d", i)
		}
		cols[i] = pgx.Identifier{strings.ToLower(c)}.Sanitize()
		params[i] = fmt.Sprintf("$%d", i+1)
	}

	sets := make([]string, len(updateColumns))
	for i, c := range updateColumns {
		id := pgx.Identifier{c}.Sanitize()
		sets[i] = fmt.Sprintf("%s = EXCLUDED.%s", id, id)
	}

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		t.Identifier().Sanitize(),
		strings.Join(cols, ", "),
		strings.Join(params, ", "),
		pgx.Identifier{conflictColumn}.Sanitize(),
		strings.Join(sets, ", "),
	), nil
}
