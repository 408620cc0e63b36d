package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"reflect"
	"strings"

	cenv "github.com/caarlos0/env/v11"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	kjson "github.com/knadh/koanf/parsers/json"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	kenv "github.com/knadh/koanf/providers/env"
	kfile "github.com/knadh/koanf/providers/file"
	kraw "github.com/knadh/koanf/providers/rawbytes"
	kfn "github.com/knadh/koanf/v2"
	"github.com/sandrolain/table-bridge/src/common/secrets"
	"github.com/sandrolain/table-bridge/src/connectors"
	"github.com/sandrolain/table-bridge/src/security/validation"
)

const envPrefix = "TB_"

// LoadConfig builds the run configuration. Later sources win:
// defaults, config file or content, connection string variables,
// TB_ prefixed variables, command line overrides.
func LoadConfig(ov Overrides) (*Config, error) {
	envCfg, err := loadEnvConfig()
	if err != nil {
		return nil, err
	}
	if ov.ConfigFilePath != "" {
		envCfg.ConfigFilePath = ov.ConfigFilePath
		envCfg.ConfigContent = ""
	}

	k := kfn.New(".")

	switch {
	case envCfg.ConfigContent != "":
		slog.Info("loading configuration from content", "format", envCfg.ConfigFormat)
		err = loadConfigContent(k, envCfg.ConfigContent, envCfg.ConfigFormat)
	case envCfg.ConfigFilePath != "":
		slog.Info("loading configuration file", "path", envCfg.ConfigFilePath)
		err = loadConfigFile(k, envCfg.ConfigFilePath)
	}
	if err != nil {
		return nil, err
	}

	setIfNotEmpty(k, "source.connString", envCfg.SourceConnString)
	setIfNotEmpty(k, "destination.connString", envCfg.DestinationConnString)

	loadEnv(k)

	setIfNotEmpty(k, "source.table", ov.SourceTable)
	setIfNotEmpty(k, "source.query", ov.Query)
	setIfNotEmpty(k, "destination.table", ov.DestinationTable)
	setIfNotEmpty(k, "log.level", ov.LogLevel)

	return build(k)
}

func loadEnvConfig() (*EnvConfig, error) {
	envCfg := &EnvConfig{}
	if err := cenv.Parse(envCfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := validator.New().Struct(envCfg); err != nil {
		return nil, fmt.Errorf("failed to load environment configuration: %w", err)
	}
	return envCfg, nil
}

// loadConfigFile loads a YAML or JSON file into k.
func loadConfigFile(k *kfn.Koanf, path string) error {
	absPath, err := validation.ValidateConfigPath(path)
	if err != nil {
		return fmt.Errorf("error opening config file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(absPath))
	var parser kfn.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = kyaml.Parser()
	case ".json":
		parser = kjson.Parser()
	default:
		return &UnsupportedExtensionError{Extension: ext}
	}

	if err = k.Load(kfile.Provider(absPath), parser); err != nil {
		return fmt.Errorf("error loading config file: %w", err)
	}
	return nil
}

// loadConfigContent loads raw YAML/JSON content into k.
// If format is empty, JSON is assumed when the trimmed content starts with '{'.
func loadConfigContent(k *kfn.Koanf, content string, format string) error {
	if err := validation.ValidateConfigContentSize(int64(len(content))); err != nil {
		return err
	}

	trimmed := strings.TrimSpace(content)
	f := strings.ToLower(strings.TrimSpace(format))
	var parser kfn.Parser
	switch f {
	case "yaml", "yml":
		parser = kyaml.Parser()
	case "json":
		parser = kjson.Parser()
	case "":
		if strings.HasPrefix(trimmed, "{") {
			parser = kjson.Parser()
		} else {
			parser = kyaml.Parser()
		}
	default:
		return &UnsupportedExtensionError{Extension: f}
	}

	if err := k.Load(kraw.Provider([]byte(content)), parser); err != nil {
		return fmt.Errorf("error loading config content: %w", err)
	}
	return nil
}

// loadEnv applies TB_ prefixed overrides.
// Example: TB_SOURCE__TABLE=vendas.pedidos -> source.table
// Keys already present in k keep their original casing so that an override
// replaces the file value instead of shadowing it.
func loadEnv(k *kfn.Koanf) {
	known := map[string]string{}
	for _, key := range k.Keys() {
		known[strings.ToLower(key)] = key
	}
	for _, key := range configKeys(reflect.TypeOf(Config{}), "") {
		if _, ok := known[strings.ToLower(key)]; !ok {
			known[strings.ToLower(key)] = key
		}
	}

	_ = k.Load(kenv.Provider(envPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		key = strings.ReplaceAll(key, "__", ".")
		if canonical, ok := known[key]; ok {
			return canonical
		}
		return key
	}), nil)
}

// configKeys lists the dotted yaml paths of the leaf fields of t.
func configKeys(t reflect.Type, prefix string) []string {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	var keys []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			continue
		}
		ft := f.Type
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if ft.Kind() == reflect.Struct {
			keys = append(keys, configKeys(ft, prefix+name+".")...)
			continue
		}
		keys = append(keys, prefix+name)
	}
	return keys
}

func setIfNotEmpty(k *kfn.Koanf, key, value string) {
	if value == "" {
		return
	}
	_ = k.Set(key, value)
}

// build decodes k, fills defaults, resolves secret references and validates.
func build(k *kfn.Koanf) (*Config, error) {
	cfg := &Config{}
	if err := k.UnmarshalWithConf("", cfg, kfn.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("error applying config defaults: %w", err)
	}

	// sqlite DSNs may start with "file:", which is not a secret reference
	if cfg.Source.Driver != connectors.SourceDriverSQLite {
		conn, err := secrets.Resolve(cfg.Source.ConnString)
		if err != nil {
			return nil, fmt.Errorf("source connString: %w", err)
		}
		cfg.Source.ConnString = conn
	}
	conn, err := secrets.Resolve(cfg.Destination.ConnString)
	if err != nil {
		return nil, fmt.Errorf("destination connString: %w", err)
	}
	cfg.Destination.ConnString = conn

	if err := validator.New().Struct(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Redacted returns a copy of c with passwords masked in connection strings.
func (c *Config) Redacted() *Config {
	out := *c
	out.Source.ConnString = secrets.Mask(c.Source.ConnString)
	out.Destination.ConnString = secrets.Mask(c.Destination.ConnString)
	return &out
}

type UnsupportedExtensionError struct {
	Extension string
}

func (e *UnsupportedExtensionError) Error() string {
	return "unsupported config file extension: " + e.Extension
}
