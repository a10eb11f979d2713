package duckdb

import (
	"fmt"
	"sort"
	"strings"

	"github.com/leapstack-labs/leapquery/pkg/adapter"
)

// Params holds DuckDB-specific configuration, decoded from
// adapter.Config.Params.
type Params struct {
	// Extensions to install and load (e.g. "httpfs", "json").
	Extensions []string `mapstructure:"extensions"`

	// Settings applied with SET at connect time (e.g. memory_limit, threads).
	Settings map[string]string `mapstructure:"settings"`
}

// ParseParams decodes the adapter params of cfg.
func ParseParams(cfg adapter.Config) (*Params, error) {
	p := &Params{}
	if err := adapter.DecodeParams(cfg, p); err != nil {
		return nil, err
	}
	return p, nil
}

// setupStatements returns the statements run after connecting, extensions
// first, settings in key order.
func (p *Params) setupStatements() []string {
	var stmts []string
	for _, ext := range p.Extensions {
		stmts = append(stmts, "INSTALL "+ext, "LOAD "+ext)
	}
	keys := make([]string, 0, len(p.Settings))
	for k := range p.Settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := strings.ReplaceAll(p.Settings[k], "'", "''")
		stmts = append(stmts, fmt.Sprintf("SET %s = '%s'", k, v))
	}
	return stmts
}
