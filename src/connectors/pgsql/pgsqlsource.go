package pgsql

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/destel/rill"
	"github.com/jackc/pgx/v5"
	"github.com/sandrolain/table-bridge/src/common/secrets"
	"github.com/sandrolain/table-bridge/src/connectors"
	"github.com/sandrolain/table-bridge/src/record"
)

var _ connectors.Source = (*PGSQLSource)(nil)

type sourceConn interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close(ctx context.Context) error
}

type sourceConnectFunc func(ctx context.Context, connString string) (sourceConn, error)

func pgxSourceConnect(ctx context.Context, connString string) (sourceConn, error) {
	return pgx.Connect(ctx, connString)
}

// PGSQLSource reads the source query over a native pgx connection.
type PGSQLSource struct {
	cfg     *connectors.SourceConfig
	query   string
	slog    *slog.Logger
	connect sourceConnectFunc
}

// NewSource creates a PGSQL source. Without an explicit query the whole table is read.
func NewSource(cfg *connectors.SourceConfig) (*PGSQLSource, error) {
	if cfg == nil {
		return nil, fmt.Errorf("source config is required")
	}
	if cfg.ConnString == "" {
		return nil, fmt.Errorf("connString is required for PGSQL source")
	}

	query := cfg.Query
	if query == "" {
		parts, err := connectors.ParseTableName(cfg.Table)
		if err != nil {
			return nil, fmt.Errorf("invalid table name: %w", err)
		}
		query = "SELECT * FROM " + pgx.Identifier(parts).Sanitize()
	}

	return &PGSQLSource{
		cfg:     cfg,
		query:   query,
		slog:    slog.Default().With("context", "PGSQL Source"),
		connect: pgxSourceConnect,
	}, nil
}

// Query returns the statement executed by Read.
func (s *PGSQLSource) Query() string {
	return s.query
}

func (s *PGSQLSource) Read(ctx context.Context) <-chan rill.Try[record.Record] {
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

func (s *PGSQLSource) read(ctx context.Context, out chan<- rill.Try[record.Record]) error {
	s.slog.Info("connecting to source database", "connString", secrets.Mask(s.cfg.ConnString))

	c, err := s.connect(ctx, s.cfg.ConnString)
	if err != nil {
		return fmt.Errorf("failed to connect to source: %w", err)
	}
	defer func() {
		if err := c.Close(context.Background()); err != nil {
			s.slog.Warn("failed to close source connection", "error", err)
			return
		}
		s.slog.Info("source connection closed")
	}()

	s.slog.Debug("executing source query", "query", s.query)
	rows, err := c.Query(ctx, s.query)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var columns []string
	count := 0
	for rows.Next() {
		if columns == nil {
			fields := rows.FieldDescriptions()
			columns = make([]string, len(fields))
			for i, f := range fields {
				columns[i] = f.Name
			}
		}

		values, err := rows.Values()
		if err != nil {
			return fmt.Errorf("failed to read row %d: %w", count+1, err)
		}
		rec, err := record.FromRow(columns, values)
		if err != nil {
			return fmt.Errorf("failed to build record %d: %w", count+1, err)
		}
		if !connectors.Emit(ctx, out, rec) {
			return ctx.Err()
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	s.slog.Info("source query completed", "rows", count)
	return nil
}
