package config

import (
	"github.com/sandrolain/table-bridge/src/connectors"
)

type EnvConfig struct {
	// Connection strings of the two databases. They take precedence over the
	// values of the config file.
	SourceConnString      string `env:"SOURCE_DB_CONN_STRING"`
	DestinationConnString string `env:"ALLOYDB_CONN_STRING"`
	// Optional: YAML or JSON configuration file.
	ConfigFilePath string `env:"TB_CONFIG_FILE_PATH" validate:"omitempty,filepath"`
	// Optional: raw configuration content (YAML or JSON). If set, it takes precedence over ConfigFilePath.
	ConfigContent string `env:"TB_CONFIG_CONTENT" validate:"omitempty"`
	// Optional: explicit config format when using ConfigContent. One of: yaml, yml, json.
	ConfigFormat string `env:"TB_CONFIG_FORMAT" validate:"omitempty,oneof=yaml yml json"`
}

type Config struct {
	Source      connectors.SourceConfig `yaml:"source" json:"source" validate:"required"`
	Destination connectors.TargetConfig `yaml:"destination" json:"destination" validate:"required"`
	Pipeline    PipelineConfig          `yaml:"pipeline" json:"pipeline"`
	Log         LogConfig               `yaml:"log" json:"log"`
}

type PipelineConfig struct {
	// FailOnSourceError makes a failed source read fail the run.
	FailOnSourceError bool `yaml:"failOnSourceError" json:"failOnSourceError"`
}

type LogConfig struct {
	Level string `yaml:"level" json:"level" default:"info" validate:"oneof=debug info warn error"`
}

// Overrides are command line values applied over every other source.
type Overrides struct {
	ConfigFilePath   string
	SourceTable      string
	DestinationTable string
	Query            string
	LogLevel         string
}
