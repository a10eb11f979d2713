// Package config provides the configuration types shared by the CLI and by
// programs embedding leapquery: database targets and their defaults.
package config

import (
	"fmt"
	"maps"
	"strings"

	"github.com/leapstack-labs/leapquery/pkg/adapter"
)

// TargetConfig holds database target configuration.
type TargetConfig struct {
	Type string `koanf:"type"` // duckdb, mysql, postgres, sqlite

	// File-based databases (DuckDB, SQLite)
	Database string `koanf:"database"` // file path or database name

	// Network databases
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`

	// Additional driver-specific options
	Options map[string]string `koanf:"options"`

	// Params holds adapter-specific configuration (DuckDB extensions, SQLite pragmas)
	Params map[string]any `koanf:"params"`
}

// Validate checks the target against the adapter registry.
func (t *TargetConfig) Validate() error {
	if t.Type == "" {
		return fmt.Errorf("target type is required")
	}
	if !adapter.IsRegistered(t.Type) {
		return &adapter.UnknownAdapterError{
			Type:      t.Type,
			Available: adapter.ListAdapters(),
		}
	}
	return nil
}

// adapterType resolves aliases such as "pg" to the registered adapter name.
func (t *TargetConfig) adapterType() string {
	if name, ok := adapter.Canonical(t.Type); ok {
		return name
	}
	return strings.ToLower(t.Type)
}

// IsFileBased reports whether Database names a file rather than a database
// on a server.
func (t *TargetConfig) IsFileBased() bool {
	switch t.adapterType() {
	case "duckdb", "sqlite":
		return true
	}
	return false
}

// AdapterConfig converts the target into the adapter's connection config.
func (t *TargetConfig) AdapterConfig() adapter.Config {
	cfg := adapter.Config{
		Type:     t.adapterType(),
		Host:     t.Host,
		Port:     t.Port,
		Database: t.Database,
		Username: t.User,
		Password: t.Password,
		Options:  maps.Clone(t.Options),
		Params:   maps.Clone(t.Params),
	}
	if t.IsFileBased() {
		cfg.Path = t.Database
	}
	return cfg
}

// MergeTargetConfig merges two target configs, with override taking precedence.
// Options and params are merged key by key.
func MergeTargetConfig(base, override *TargetConfig) *TargetConfig {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	merged := *base
	merged.Options = make(map[string]string, len(base.Options)+len(override.Options))
	maps.Copy(merged.Options, base.Options)
	maps.Copy(merged.Options, override.Options)
	merged.Params = make(map[string]any, len(base.Params)+len(override.Params))
	maps.Copy(merged.Params, base.Params)
	maps.Copy(merged.Params, override.Params)

	if override.Type != "" {
		merged.Type = override.Type
	}
	if override.Database != "" {
		merged.Database = override.Database
	}
	if override.Host != "" {
		merged.Host = override.Host
	}
	if override.Port != 0 {
		merged.Port = override.Port
	}
	if override.User != "" {
		merged.User = override.User
	}
	if override.Password != "" {
		merged.Password = override.Password
	}
	return &merged
}
