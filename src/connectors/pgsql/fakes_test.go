package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type execCall struct {
	sql  string
	args []any
}

// fakeDB records statements per transaction; only committed ones land in committed.
type fakeDB struct {
	execs     []execCall
	committed []execCall
	commits   int
	rollbacks int
	closed    bool
	beginErr  error
	execErr   func(sql string, args []any) error
	queryErr  error
}

func (d *fakeDB) Begin(ctx context.Context) (pgx.Tx, error) {
	if d.beginErr != nil {
		return nil, d.beginErr
	}
	return &fakeTx{db: d}, nil
}

func (d *fakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if d.queryErr != nil {
		return nil, d.queryErr
	}
	return nil, errors.New("query not supported by fake")
}

func (d *fakeDB) Close(ctx context.Context) error {
	d.closed = true
	return nil
}

type fakeTx struct {
	pgx.Tx
	db      *fakeDB
	pending []execCall
	done    bool
}

func (tx *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	call := execCall{sql: sql, args: args}
	tx.db.execs = append(tx.db.execs, call)
	if tx.db.execErr != nil {
		if err := tx.db.execErr(sql, args); err != nil {
			return pgconn.CommandTag{}, err
		}
	}
	tx.pending = append(tx.pending, call)
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (tx *fakeTx) Commit(ctx context.Context) error {
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.done = true
	tx.db.commits++
	tx.db.committed = append(tx.db.committed, tx.pending...)
	return nil
}

func (tx *fakeTx) Rollback(ctx context.Context) error {
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.done = true
	tx.db.rollbacks++
	return nil
}

// fakeRows serves a fixed result set, optionally failing after the last row.
type fakeRows struct {
	pgx.Rows
	fields []pgconn.FieldDescription
	rows   [][]any
	pos    int
	err    error
	closed bool
}

func newFakeRows(columns []string, rows ...[]any) *fakeRows {
	fields := make([]pgconn.FieldDescription, len(columns))
	for i, c := range columns {
		fields[i] = pgconn.FieldDescription{Name: c}
	}
	return &fakeRows{fields: fields, rows: rows}
}

func (r *fakeRows) Next() bool {
	if r.pos < len(r.rows) {
		r.pos++
		return true
	}
	return false
}

func (r *fakeRows) Values() ([]any, error) {
	return r.rows[r.pos-1], nil
}

func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription {
	return r.fields
}

func (r *fakeRows) Err() error {
	return r.err
}

func (r *fakeRows) Close() {
	r.closed = true
}

type fakeSourceConn struct {
	rows     *fakeRows
	queryErr error
	queries  []string
	closed   bool
}

func (c *fakeSourceConn) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	c.queries = append(c.queries, sql)
	if c.queryErr != nil {
		return nil, c.queryErr
	}
	return c.rows, nil
}

func (c *fakeSourceConn) Close(ctx context.Context) error {
	c.closed = true
	return nil
}
