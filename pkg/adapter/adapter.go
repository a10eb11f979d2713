// Package adapter hands built queries to a database.
//
// The criteria core performs no I/O. An Adapter owns a connection and runs
// the SQL and positional arguments a criteria.Query produces. Concrete
// adapters live in pkg/adapters/ and register themselves on import.
package adapter

import (
	"context"
	"database/sql"

	"github.com/leapstack-labs/leapquery/pkg/core"
	"github.com/leapstack-labs/leapquery/pkg/dialect"
)

// Config is the connection configuration of an adapter.
type Config = core.AdapterConfig

// Adapter executes SQL against one database connection.
type Adapter interface {
	// Connect opens and verifies the connection.
	Connect(ctx context.Context, cfg Config) error

	// Close releases the connection.
	Close() error

	// Exec runs a statement that returns no rows.
	Exec(ctx context.Context, query string, args ...any) error

	// Query runs a statement and returns its rows. The caller closes them
	// and checks Err after iteration.
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)

	// Dialect returns the dialect queries for this adapter must be rendered in.
	Dialect() *dialect.Dialect
}
