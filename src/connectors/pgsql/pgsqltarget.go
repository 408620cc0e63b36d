package pgsql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/sandrolain/table-bridge/src/common/secrets"
	"github.com/sandrolain/table-bridge/src/connectors"
	"github.com/sandrolain/table-bridge/src/record"
)

var _ connectors.Target = (*PGSQLTarget)(nil)

// ErrNotReady is reported for records processed outside Setup..Teardown.
var ErrNotReady = errors.New("destination is not ready")

type targetState int

const (
	stateNotSetup targetState = iota
	stateReady
	stateClosed
)

func (s targetState) String() string {
	switch s {
	case stateNotSetup:
		return "NOT_SETUP"
	case stateReady:
		return "READY"
	case stateClosed:
		return "CLOSED"
	}
	return "UNKNOWN"
}

// conn is the subset of *pgx.Conn used by the target.
type conn interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close(ctx context.Context) error
}

type connectFunc func(ctx context.Context, cfg *pgx.ConnConfig) (conn, error)

func pgxConnect(ctx context.Context, cfg *pgx.ConnConfig) (conn, error) {
	return pgx.ConnectConfig(ctx, cfg)
}

// PGSQLTarget upserts records into the fixed-shape destination table, holding a
// single connection between Setup and Teardown. Each record is written in its
// own transaction.
type PGSQLTarget struct {
	cfg     *connectors.TargetConfig
	table   Table
	slog    *slog.Logger
	connect connectFunc
	conn    conn
	state   targetState
	upserts upsertCache
}

// NewTarget validates cfg. No connection is opened until Setup.
func NewTarget(cfg *connectors.TargetConfig) (*PGSQLTarget, error) {
	if cfg == nil {
		return nil, fmt.Errorf("target config is required")
	}
	if cfg.ConnString == "" {
		return nil, fmt.Errorf("connString is required for PGSQL target")
	}

	parts, err := connectors.ParseTableName(cfg.Table)
	if err != nil {
		return nil, fmt.Errorf("invalid table name: %w", err)
	}
	table := Table{Schema: "public", Name: parts[0]}
	if len(parts) == 2 {
		table = Table{Schema: parts[0], Name: parts[1]}
	}

	return &PGSQLTarget{
		cfg:     cfg,
		table:   table,
		slog:    slog.Default().With("context", "PGSQL Target"),
		connect: pgxConnect,
	}, nil
}

// Table returns the destination table reference.
func (t *PGSQLTarget) Table() Table {
	return t.table
}

func (t *PGSQLTarget) buildConnConfig() (*pgx.ConnConfig, error) {
	config, err := pgx.ParseConfig(t.cfg.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	tlsConf, err := t.cfg.TLS.BuildClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to build TLS config: %w", err)
	}
	if tlsConf != nil {
		config.TLSConfig = tlsConf
		// no plaintext fallback once TLS is configured explicitly
		config.Fallbacks = nil
	}
	return config, nil
}

// Setup connects and ensures the destination schema and table exist.
// An error here is fatal for the run.
func (t *PGSQLTarget) Setup(ctx context.Context) error {
	if t.state != stateNotSetup {
		return fmt.Errorf("setup called in state %s", t.state)
	}

	t.slog.Info("opening destination connection",
		"connString", secrets.Mask(t.cfg.ConnString),
		"table", t.table.String(),
		"tls", t.cfg.TLS.IsEnabled(),
	)

	config, err := t.buildConnConfig()
	if err != nil {
		t.slog.Error("invalid destination configuration", "error", err)
		return err
	}

	c, err := t.connect(ctx, config)
	if err != nil {
		t.slog.Error("failed to connect to destination", "error", err)
		return fmt.Errorf("failed to connect to destination: %w", err)
	}
	t.conn = c

	err = pgx.BeginFunc(ctx, c, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, createSchemaSQL(t.table)); err != nil {
			return fmt.Errorf("create schema failed: %w", err)
		}
		if _, err := tx.Exec(ctx, createTableSQL(t.table, DestinationColumns)); err != nil {
			return fmt.Errorf("create table failed: %w", err)
		}
		return nil
	})
	if err != nil {
		t.slog.Error("failed to prepare destination table", "table", t.table.String(), "error", err)
		return fmt.Errorf("failed to prepare destination table %s: %w", t.table, err)
	}

	t.checkShape(ctx)

	t.state = stateReady
	t.slog.Info("destination table ready", "table", t.table.String())
	return nil
}

// checkShape warns when a pre-existing table lacks columns of the fixed shape.
// Rows still get attempted and fail individually.
func (t *PGSQLTarget) checkShape(ctx context.Context) {
	cols, err := existingColumns(ctx, t.conn, t.table)
	if err != nil {
		t.slog.Warn("could not inspect destination table", "table", t.table.String(), "error", err)
		return
	}
	if missing := missingColumns(cols); len(missing) > 0 {
		t.slog.Warn("destination table differs from expected shape", "table", t.table.String(), "missing", missing)
	}
}

// Process upserts rec and reports its status. Failures never abort the run.
func (t *PGSQLTarget) Process(ctx context.Context, rec record.Record) record.Status {
	id := rec.ID()

	if t.state != stateReady || t.conn == nil {
		err := fmt.Errorf("%w (state %s)", ErrNotReady, t.state)
		t.slog.Error("failed to insert record", "id", id, "error", err)
		return record.Failure(id, err)
	}

	query, err := t.upserts.get(t.table, rec.Columns())
	if err != nil {
		t.slog.Error("failed to insert record", "id", id, "error", err)
		return record.Failure(id, err)
	}

	err = pgx.BeginFunc(ctx, t.conn, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query, rec.Args()...)
		return err
	})
	if err != nil {
		t.slog.Error("failed to insert record", "id", id, "error", err)
		return record.Failure(id, err)
	}

	t.slog.Info("record saved to destination", "id", id)
	return record.Success(id)
}

// Teardown closes the connection if one is open. Rows are committed one by one,
// so nothing is pending at this point.
func (t *PGSQLTarget) Teardown(ctx context.Context) error {
	t.state = stateClosed
	if t.conn == nil {
		return nil
	}

	t.slog.Info("closing destination connection")
	err := t.conn.Close(ctx)
	t.conn = nil
	if err != nil {
		return fmt.Errorf("failed to close destination connection: %w", err)
	}
	return nil
}
