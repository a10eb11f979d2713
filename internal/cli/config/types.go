// Package config loads the leapquery CLI configuration.
//
// Values are layered with koanf: built-in defaults, then leapquery.yaml,
// then LEAPQUERY_ environment variables, then explicitly set flags.
package config

import sharedcfg "github.com/leapstack-labs/leapquery/internal/config"

// TargetConfig is an alias for the shared target configuration.
type TargetConfig = sharedcfg.TargetConfig

// Config holds all CLI configuration options.
type Config struct {
	// Dialect renders queries. Empty means the target adapter's dialect.
	Dialect      string               `koanf:"dialect"`
	Metamodel    string               `koanf:"metamodel"`
	Environment  string               `koanf:"environment"`
	Verbose      bool                 `koanf:"verbose"`
	OutputFormat string               `koanf:"output"`
	LogFormat    string               `koanf:"log_format"`
	Target       *TargetConfig        `koanf:"target"`
	Environments map[string]EnvConfig `koanf:"environments"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// EnvConfig holds environment-specific configuration overrides.
type EnvConfig struct {
	Dialect string        `koanf:"dialect"`
	Target  *TargetConfig `koanf:"target"`
}

// Default configuration values.
const (
	DefaultDialect   = sharedcfg.DefaultDialect
	DefaultMetamodel = sharedcfg.DefaultMetamodel
	DefaultOutput    = sharedcfg.DefaultOutput
	DefaultLogFormat = sharedcfg.DefaultLogFormat
)
