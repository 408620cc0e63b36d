package connectors

import (
	"context"

	"github.com/sandrolain/table-bridge/src/common/tlsconfig"
	"github.com/sandrolain/table-bridge/src/record"
)

// Target writes records one at a time.
// Setup must succeed before Process is called; Teardown releases the connection
// and is safe to call in any state.
type Target interface {
	Setup(ctx context.Context) error
	Process(ctx context.Context, rec record.Record) record.Status
	Teardown(ctx context.Context) error
}

type TargetConfig struct {
	ConnString string `yaml:"connString" json:"connString" validate:"required"`
	// Table is "schema.table" or "table" (schema public).
	Table string            `yaml:"table" json:"table" default:"teste.tabelaTeste" validate:"required"`
	TLS   *tlsconfig.Config `yaml:"tls" json:"tls"`
}
