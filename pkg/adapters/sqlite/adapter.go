// Package sqlite provides a SQLite adapter backed by the pure-Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/leapstack-labs/leapquery/pkg/adapter"
	"github.com/leapstack-labs/leapquery/pkg/dialect"
	sqlitedialect "github.com/leapstack-labs/leapquery/pkg/dialects/sqlite"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// Params holds SQLite-specific configuration.
type Params struct {
	// Pragmas are applied with PRAGMA name = value after connecting.
	Pragmas map[string]string `mapstructure:"pragmas"`
}

// Adapter implements adapter.Adapter for SQLite.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a SQLite adapter. A nil logger uses a discard logger.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger}}
}

// Dialect returns the SQLite dialect.
func (a *Adapter) Dialect() *dialect.Dialect {
	return sqlitedialect.SQLite
}

// Connect opens the database file at cfg.Path, or an in-memory database
// when the path is empty or ":memory:".
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	var params Params
	if err := adapter.DecodeParams(cfg, &params); err != nil {
		return err
	}

	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}
	if err := a.Open(ctx, "sqlite", path, cfg); err != nil {
		return err
	}
	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		a.DB.SetMaxOpenConns(1)
	}

	names := make([]string, 0, len(params.Pragmas))
	for name := range params.Pragmas {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		stmt := fmt.Sprintf("PRAGMA %s = %s", name, params.Pragmas[name])
		if err := a.Exec(ctx, stmt); err != nil {
			_ = a.Close()
			return fmt.Errorf("sqlite setup %q: %w", stmt, err)
		}
	}
	return nil
}

var _ adapter.Adapter = (*Adapter)(nil)
