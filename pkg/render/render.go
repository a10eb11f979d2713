// Package render prints expression and query trees as JPQL or as dialect SQL.
//
// JPQL mode prints the query the way a JPA provider consumes it: attribute
// paths, explicit null precedence and named or positional parameters. SQL mode
// resolves every function call through the function registry, maps paths to
// columns, emulates what the dialect lacks and numbers parameters with the
// dialect's placeholder style.
package render

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/leapquery/pkg/core"
	"github.com/leapstack-labs/leapquery/pkg/dialect"
	"github.com/leapstack-labs/leapquery/pkg/function"
)

// Mode selects the output language.
type Mode int

// Output modes.
const (
	ModeJPQL Mode = iota
	ModeSQL
)

// String returns "jpql" or "sql".
func (m Mode) String() string {
	if m == ModeSQL {
		return "sql"
	}
	return "jpql"
}

// Options configure a render pass.
// Dialect and Functions are required in SQL mode. In JPQL mode Functions,
// when set, decides which zero-argument functions print without parentheses.
type Options struct {
	Mode      Mode
	Dialect   *dialect.Dialect
	Functions *function.Registry
}

// ErrRegistryRequired is returned when SQL mode is used without a function registry.
var ErrRegistryRequired = errors.New("function registry is required")

// Result is printed text plus the parameters it references.
//
// In JPQL mode Params lists every distinct parameter in first-appearance order.
// In SQL mode Params has one entry per placeholder, in placeholder order, so
// a parameter used twice is listed twice.
type Result struct {
	Text   string
	Params []*core.ParameterExpr
}

// Expr prints a single expression.
func Expr(e core.Expr, opts Options) (*Result, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	p := newPrinter(opts)
	p.expr(e)
	return p.result()
}

// Query prints a full query.
func Query(q *core.SelectQuery, opts Options) (*Result, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	p := newPrinter(opts)
	p.query(q)
	return p.result()
}

func (o Options) validate() error {
	if o.Mode != ModeSQL {
		return nil
	}
	if o.Dialect == nil {
		return dialect.ErrDialectRequired
	}
	if o.Functions == nil {
		return ErrRegistryRequired
	}
	return nil
}

func (p *Printer) result() (*Result, error) {
	if p.err != nil {
		return nil, fmt.Errorf("render %s: %w", p.mode, p.err)
	}
	if !p.sql() {
		return &Result{Text: p.output.String(), Params: p.params}, nil
	}
	text, params := p.bindSlots(p.output.String())
	return &Result{Text: text, Params: params}, nil
}
