// Package testutil provides test utilities for table-bridge.
// This package contains shared source and target stubs so pipeline tests
// do not need a database.
package testutil

import (
	"context"
	"fmt"

	"github.com/destel/rill"
	"github.com/sandrolain/table-bridge/src/connectors"
	"github.com/sandrolain/table-bridge/src/record"
)

// StubSource streams a fixed list of records, optionally followed by a
// terminal read error.
type StubSource struct {
	Records []record.Record
	ReadErr error

	ReadCalls int
}

// NewStubSource creates a source that yields records in order.
func NewStubSource(records ...record.Record) *StubSource {
	return &StubSource{Records: records}
}

// WithError makes the stream end with err after the records.
func (s *StubSource) WithError(err error) *StubSource {
	s.ReadErr = err
	return s
}

func (s *StubSource) Read(ctx context.Context) <-chan rill.Try[record.Record] {
	s.ReadCalls++
	out := make(chan rill.Try[record.Record])
	go func() {
		defer close(out)
		for _, rec := range s.Records {
			if !connectors.Emit(ctx, out, rec) {
				return
			}
		}
		if s.ReadErr != nil {
			connectors.EmitError(ctx, out, s.ReadErr)
		}
	}()
	return out
}

// StubTarget records every processed record. Records whose id is listed in
// FailIDs get an error status.
type StubTarget struct {
	SetupErr    error
	TeardownErr error
	FailIDs     map[int64]error

	Processed     []record.Record
	SetupCalls    int
	TeardownCalls int
	ready         bool
}

// NewStubTarget creates a target that accepts every record.
func NewStubTarget() *StubTarget {
	return &StubTarget{FailIDs: map[int64]error{}}
}

// FailOn makes records with the given id fail with err.
func (t *StubTarget) FailOn(id int64, err error) *StubTarget {
	t.FailIDs[id] = err
	return t
}

func (t *StubTarget) Setup(ctx context.Context) error {
	t.SetupCalls++
	if t.SetupErr != nil {
		return t.SetupErr
	}
	t.ready = true
	return nil
}

func (t *StubTarget) Process(ctx context.Context, rec record.Record) record.Status {
	t.Processed = append(t.Processed, rec)
	if !t.ready {
		return record.Failure(rec.ID(), fmt.Errorf("target not set up"))
	}
	if err, ok := t.FailIDs[rec.ID().Int()]; ok {
		return record.Failure(rec.ID(), err)
	}
	return record.Success(rec.ID())
}

func (t *StubTarget) Teardown(ctx context.Context) error {
	t.TeardownCalls++
	t.ready = false
	return t.TeardownErr
}

// Rows builds records with columns id and nome from the given ids.
func Rows(ids ...int64) []record.Record {
	out := make([]record.Record, len(ids))
	for i, id := range ids {
		rec, err := record.New(
			[]string{"id", "nome"},
			[]record.Value{record.Int(id), record.Text(fmt.Sprintf("row-%d", id))},
		)
		if err != nil {
			panic(err)
		}
		out[i] = rec
	}
	return out
}
