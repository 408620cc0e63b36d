// Package sqldb reads the source query through database/sql, for sources that
// are not read with the native pgx connector.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/destel/rill"
	"github.com/sandrolain/table-bridge/src/common/secrets"
	"github.com/sandrolain/table-bridge/src/connectors"
	"github.com/sandrolain/table-bridge/src/record"
)

var _ connectors.Source = (*SQLSource)(nil)

type SQLSource struct {
	cfg    *connectors.SourceConfig
	driver string
	query  string
	slog   *slog.Logger
}

func NewSource(cfg *connectors.SourceConfig) (*SQLSource, error) {
	if cfg == nil {
		return nil, fmt.Errorf("source config is required")
	}
	driver, err := driverName(cfg.Driver)
	if err != nil {
		return nil, err
	}
	if cfg.ConnString == "" {
		return nil, fmt.Errorf("connString is required for %s source", cfg.Driver)
	}

	query := cfg.Query
	if query == "" {
		parts, err := connectors.ParseTableName(cfg.Table)
		if err != nil {
			return nil, fmt.Errorf("invalid table name: %w", err)
		}
		// validated identifiers need no quoting, and unquoted names work across dialects
		query = "SELECT * FROM " + strings.Join(parts, ".")
	}

	return &SQLSource{
		cfg:    cfg,
		driver: driver,
		query:  query,
		slog:   slog.Default().With("context", "SQL Source", "driver", driver),
	}, nil
}

func (s *SQLSource) Query() string {
	return s.query
}

func (s *SQLSource) Read(ctx context.Context) <-chan rill.Try[record.Record] {
	out := make(chan rill.Try[record.Record], s.cfg.Buffer)

	go func() {
		defer close(out)
		if err := s.read(ctx, out); err != nil {
			s.slog.Error("failed to read from source", "error", err)
			connectors.EmitError(ctx, out, err)
		}
	}()

	return out
}

func (s *SQLSource) read(ctx context.Context, out chan<- rill.Try[record.Record]) error {
	s.slog.Info("connecting to source database", "connString", secrets.Mask(s.cfg.ConnString))

	db, err := sql.Open(s.driver, s.cfg.ConnString)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.driver, err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			s.slog.Warn("failed to close source connection", "error", err)
			return
		}
		s.slog.Info("source connection closed")
	}()
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to source: %w", err)
	}

	s.slog.Debug("executing source query", "query", s.query)
	rows, err := db.QueryContext(ctx, s.query)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("columns: %w", err)
	}
	dbTypes := make([]string, len(columns))
	if types, err := rows.ColumnTypes(); err == nil {
		for i, ct := range types {
			dbTypes[i] = ct.DatabaseTypeName()
		}
	}

	count := 0
	for rows.Next() {
		raw := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return fmt.Errorf("failed to read row %d: %w", count+1, err)
		}

		values := make([]record.Value, len(raw))
		for i, v := range raw {
			values[i] = convert(v, dbTypes[i])
		}
		rec, err := record.New(columns, values)
		if err != nil {
			return fmt.Errorf("failed to build record %d: %w", count+1, err)
		}
		if !connectors.Emit(ctx, out, rec) {
			return ctx.Err()
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate: %w", err)
	}

	s.slog.Info("source query completed", "rows", count)
	return nil
}
