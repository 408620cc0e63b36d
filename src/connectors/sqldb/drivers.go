package sqldb

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sandrolain/table-bridge/src/connectors"
	"github.com/sandrolain/table-bridge/src/record"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// driverName maps a configured driver to its database/sql registration name.
func driverName(d connectors.SourceDriver) (string, error) {
	switch d {
	case connectors.SourceDriverPostgres:
		return "postgres", nil
	case connectors.SourceDriverMySQL:
		return "mysql", nil
	case connectors.SourceDriverSQLite:
		return "sqlite", nil
	}
	return "", fmt.Errorf("unsupported database/sql driver: %q", d)
}

// convert types raw driver bytes using the column's database type name.
// Text-protocol drivers (MySQL, lib/pq numerics) return []byte for numbers.
func convert(v any, dbType string) record.Value {
	b, ok := v.([]byte)
	if !ok {
		return record.FromAny(v)
	}
	s := string(b)
	switch {
	case isIntegerType(dbType):
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return record.Int(i)
		}
	case isDecimalType(dbType):
		return record.Decimal(s)
	}
	return record.Text(s)
}

func isIntegerType(t string) bool {
	switch strings.ToUpper(t) {
	case "INT", "INT2", "INT4", "INT8", "INTEGER", "SMALLINT", "BIGINT", "TINYINT", "MEDIUMINT",
		"UNSIGNED INT", "UNSIGNED BIGINT", "UNSIGNED SMALLINT", "UNSIGNED TINYINT", "UNSIGNED MEDIUMINT":
		return true
	}
	return false
}

func isDecimalType(t string) bool {
	switch strings.ToUpper(t) {
	case "NUMERIC", "DECIMAL", "FLOAT", "FLOAT4", "FLOAT8", "DOUBLE", "REAL", "MONEY":
		return true
	}
	return false
}
