package config

import (
	"fmt"
	"slices"

	"github.com/leapstack-labs/leapquery/pkg/adapter"
	"github.com/leapstack-labs/leapquery/pkg/dialect"
)

var (
	outputFormats = []string{"auto", "text", "markdown", "json"}
	logFormats    = []string{"text", "json"}
)

// Validate checks if the configuration is valid. The target is checked
// separately because only commands that execute queries need one.
func (c *Config) Validate() error {
	if !slices.Contains(outputFormats, c.OutputFormat) {
		return fmt.Errorf("invalid output format %q (want one of %v)", c.OutputFormat, outputFormats)
	}
	if !slices.Contains(logFormats, c.LogFormat) {
		return fmt.Errorf("invalid log format %q (want one of %v)", c.LogFormat, logFormats)
	}
	if c.Dialect != "" {
		if _, err := dialect.Lookup(c.Dialect); err != nil {
			return err
		}
	}
	return nil
}

// ResolveDialect returns the dialect queries are rendered in: the
// configured dialect, else the target adapter's, else the default.
func (c *Config) ResolveDialect() (*dialect.Dialect, error) {
	if c.Dialect != "" {
		return dialect.Lookup(c.Dialect)
	}
	if c.Target != nil {
		adp, err := adapter.NewAdapter(c.Target.AdapterConfig(), nil)
		if err != nil {
			return nil, err
		}
		return adp.Dialect(), nil
	}
	return dialect.Lookup(DefaultDialect)
}
