// Package record holds the row model passed between the source and the target:
// ordered column/value records and the per-record write status.
package record

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
)

// IDColumn is the column used as conflict key and status correlator.
const IDColumn = "id"

// Record is one source row. Column order is the order of the source result set.
type Record struct {
	columns []string
	values  []Value
	index   map[string]int
}

// New builds a Record from parallel column and value slices. Both slices are copied.
// A repeated column keeps its first position and its last value.
func New(columns []string, values []Value) (Record, error) {
	if len(columns) != len(values) {
		return Record{}, fmt.Errorf("column count %d does not match value count %d", len(columns), len(values))
	}
	r := Record{
		columns: make([]string, 0, len(columns)),
		values:  make([]Value, 0, len(values)),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if j, dup := r.index[c]; dup {
			r.values[j] = values[i]
			continue
		}
		r.index[c] = len(r.columns)
		r.columns = append(r.columns, c)
		r.values = append(r.values, values[i])
	}
	return r, nil
}

// FromRow converts a raw driver row into a Record.
func FromRow(columns []string, row []any) (Record, error) {
	values := make([]Value, len(row))
	for i, v := range row {
		values[i] = FromAny(v)
	}
	return New(columns, values)
}

// Get returns the value of column name.
func (r Record) Get(name string) (Value, bool) {
	i, ok := r.index[name]
	if !ok {
		return Null(), false
	}
	return r.values[i], true
}

// ID returns the id column, or Null when the record has none. Column names are
// matched case-insensitively, as unquoted identifiers are by the database.
func (r Record) ID() Value {
	if v, ok := r.Get(IDColumn); ok {
		return v
	}
	for i, c := range r.columns {
		if strings.EqualFold(c, IDColumn) {
			return r.values[i]
		}
	}
	return Null()
}

func (r Record) Len() int { return len(r.columns) }

func (r Record) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

func (r Record) Values() []Value {
	out := make([]Value, len(r.values))
	copy(out, r.values)
	return out
}

// Args returns the query arguments in column order.
func (r Record) Args() []any {
	args := make([]any, len(r.values))
	for i, v := range r.values {
		args[i] = v.Arg()
	}
	return args
}

// MarshalJSON renders the record as a JSON object keeping column order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := sonic.Marshal(c)
		if err != nil {
			return nil, err
		}
		v, err := r.values[i].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r Record) String() string {
	b, err := r.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("%v", r.values)
	}
	return string(b)
}
