package connectors

import (
	"context"
	"errors"

	"github.com/destel/rill"
	"github.com/sandrolain/table-bridge/src/record"
)

// ErrSourceRead marks a failure of the source query. It is delivered as the last
// item of the record stream.
var ErrSourceRead = errors.New("source read failed")

// Source runs its query once and streams the resulting rows. The channel is
// closed when the rows are exhausted, after a terminal error, or when ctx is done.
type Source interface {
	Read(ctx context.Context) <-chan rill.Try[record.Record]
}

type SourceDriver string

const (
	SourceDriverPGX      SourceDriver = "pgx"
	SourceDriverPostgres SourceDriver = "postgres"
	SourceDriverMySQL    SourceDriver = "mysql"
	SourceDriverSQLite   SourceDriver = "sqlite"
)

type SourceConfig struct {
	Driver     SourceDriver `yaml:"driver" json:"driver" default:"pgx" validate:"required,oneof=pgx postgres mysql sqlite"`
	ConnString string       `yaml:"connString" json:"connString" validate:"required"`
	// Table is read with SELECT * when Query is empty.
	Table  string `yaml:"table" json:"table" default:"teste.tabelaTeste" validate:"required_without=Query"`
	Query  string `yaml:"query" json:"query"`
	Buffer int    `yaml:"buffer" json:"buffer" validate:"omitempty,min=0"`
}
