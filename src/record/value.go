package record

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jackc/pgx/v5/pgtype"
)

// Kind identifies the dynamic type held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindInteger
	KindText
	KindDecimal
	KindTimestamp
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInteger:
		return "integer"
	case KindText:
		return "text"
	case KindDecimal:
		return "decimal"
	case KindTimestamp:
		return "timestamp"
	case KindBool:
		return "bool"
	}
	return "unknown"
}

// Value is a single cell of a Record. The zero value is Null.
type Value struct {
	kind Kind
	i    int64
	s    string
	t    time.Time
	b    bool
}

func Null() Value { return Value{} }
func Int(v int64) Value { return Value{kind: KindInteger, i: v} }
func Text(v string) Value { return Value{kind: KindText, s: v} }
func Timestamp(v time.Time) Value { return Value{kind: KindTimestamp, t: v} }
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Decimal stores v as-is; it is not validated so that a malformed source value
// still reaches the database and fails there.
func Decimal(v string) Value { return Value{kind: KindDecimal, s: v} }

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }
func (v Value) Int() int64 { return v.i }
func (v Value) Str() string { return v.s }
func (v Value) Time() time.Time { return v.t }
func (v Value) Boolean() bool { return v.b }

// FromAny converts a value returned by a SQL driver into a Value.
func FromAny(src any) Value {
	switch v := src.(type) {
	case nil:
		return Null()
	case Value:
		return v
	case int:
		return Int(int64(v))
	case int8:
		return Int(int64(v))
	case int16:
		return Int(int64(v))
	case int32:
		return Int(int64(v))
	case int64:
		return Int(v)
	case uint8:
		return Int(int64(v))
	case uint16:
		return Int(int64(v))
	case uint32:
		return Int(int64(v))
	case uint:
		return fromUnsigned(uint64(v))
	case uint64:
		return fromUnsigned(v)
	case float32:
		return Decimal(strconv.FormatFloat(float64(v), 'f', -1, 32))
	case float64:
		return Decimal(strconv.FormatFloat(v, 'f', -1, 64))
	case string:
		return Text(v)
	case []byte:
		return Text(string(v))
	case time.Time:
		return Timestamp(v)
	case bool:
		return Bool(v)
	case pgtype.Numeric:
		return fromNumeric(v)
	case *pgtype.Numeric:
		if v == nil {
			return Null()
		}
		return fromNumeric(*v)
	case fmt.Stringer:
		return Text(v.String())
	}

	b, err := sonic.Marshal(src)
	if err != nil {
		return Text(fmt.Sprint(src))
	}
	return Text(string(b))
}

func fromUnsigned(v uint64) Value {
	if v > 1<<63-1 {
		return Decimal(strconv.FormatUint(v, 10))
	}
	return Int(int64(v))
}

func fromNumeric(n pgtype.Numeric) Value {
	if !n.Valid {
		return Null()
	}
	dv, err := n.Value()
	if err != nil {
		return Text(fmt.Sprint(n))
	}
	s, ok := dv.(string)
	if !ok {
		return Null()
	}
	return Decimal(s)
}

// Arg returns the value to bind as a query argument. Non-null values are sent
// in their text form and the server converts them to the column type, so an
// integer source column can feed a varchar destination column. Malformed
// decimals are rejected by the server with its own message.
func (v Value) Arg() any {
	if v.kind == KindNull {
		return nil
	}
	return v.String()
}

// Any returns the plain Go representation used for logging and JSON output.
func (v Value) Any() any {
	switch v.kind {
	case KindInteger:
		return v.i
	case KindText, KindDecimal:
		return v.s
	case KindTimestamp:
		return v.t.Format(time.RFC3339Nano)
	case KindBool:
		return v.b
	}
	return nil
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "<nil>"
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindText, KindDecimal:
		return v.s
	case KindTimestamp:
		return v.t.Format(time.RFC3339Nano)
	case KindBool:
		return strconv.FormatBool(v.b)
	}
	return ""
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindTimestamp:
		return v.t.Equal(o.t)
	case KindInteger:
		return v.i == o.i
	case KindBool:
		return v.b == o.b
	case KindText, KindDecimal:
		return v.s == o.s
	}
	return true
}

func (v Value) LogValue() slog.Value {
	return slog.AnyValue(v.Any())
}

func (v Value) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(v.Any())
}
