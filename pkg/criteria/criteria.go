// Package criteria builds queries against a metamodel.
//
// A Factory is created once per metamodel and dialect and shared freely. Each
// query starts from Factory.Create, which returns a single-threaded Builder:
//
//	q, err := factory.Create("Document", "d").
//		Where("d.owner.name = :owner").
//		OrderByAsc("d.name", false).
//		SetParameter("owner", "Karl").
//		SetMaxResults(10).
//		Build()
//
// Expression text is parsed with pkg/parser and every path is bound to the
// metamodel as it is added, so a misspelled attribute, an unknown function or
// a wrong argument count is reported by the call that introduced it. The
// first error is kept and returned by Build; later calls do nothing.
//
// Subqueries, CTE bodies and set operands are written in callbacks that
// receive a nested Builder. Paths inside a callback resolve against its own
// FROM first and then outwards through the enclosing queries.
package criteria

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapquery/pkg/core"
	"github.com/leapstack-labs/leapquery/pkg/dialect"
	"github.com/leapstack-labs/leapquery/pkg/function"
	"github.com/leapstack-labs/leapquery/pkg/metamodel"
)

var (
	// ErrFinalized is returned by any mutation after Build.
	ErrFinalized = errors.New("criteria builder is finalized")
	// ErrNotRoot is returned when a root-only operation is used on a nested builder.
	ErrNotRoot = errors.New("operation is only allowed on the root query")
	// ErrNoFrom is returned when a query has no FROM root.
	ErrNoFrom = errors.New("query has no FROM root")
	// ErrMixedParameters is returned when a query uses named and positional parameters.
	ErrMixedParameters = errors.New("named and positional parameters cannot be mixed")
	// ErrOperandShape is returned when set operands select different numbers of items.
	ErrOperandShape = errors.New("set operands must select the same number of items")
	// ErrWindowKeysetKey is returned when keyset paging orders by a window function.
	ErrWindowKeysetKey = errors.New("keyset paging cannot order by a window function")
)

// PathError reports a path that cannot be resolved against the metamodel.
type PathError struct {
	Path   string
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("path error: %s: %s", e.Path, e.Reason)
}

// ParameterError reports a parameter that is unknown to the query or has no value.
type ParameterError struct {
	Name   string
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("parameter error: %s: %s", e.Name, e.Reason)
}

// Config holds the collaborators of a Factory.
type Config struct {
	Model   *metamodel.Model
	Dialect *dialect.Dialect
	// Functions defaults to function.NewStandardRegistry for Dialect.
	Functions *function.Registry
	Logger    *slog.Logger
}

// Factory creates builders. It is immutable and safe for concurrent use.
type Factory struct {
	model     *metamodel.Model
	dialect   *dialect.Dialect
	functions *function.Registry
	logger    *slog.Logger
}

// NewFactory validates cfg and returns a factory.
func NewFactory(cfg Config) (*Factory, error) {
	if cfg.Model == nil {
		return nil, errors.New("criteria: metamodel is required")
	}
	if cfg.Dialect == nil {
		return nil, dialect.ErrDialectRequired
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	functions := cfg.Functions
	if functions == nil {
		functions = function.NewStandardRegistry(logger, cfg.Dialect)
	}
	return &Factory{
		model:     cfg.Model,
		dialect:   cfg.Dialect,
		functions: functions,
		logger:    logger.With("component", "criteria", "dialect", cfg.Dialect.Name),
	}, nil
}

// Model returns the metamodel queries are resolved against.
func (f *Factory) Model() *metamodel.Model { return f.model }

// Dialect returns the SQL dialect.
func (f *Factory) Dialect() *dialect.Dialect { return f.dialect }

// Functions returns the function registry.
func (f *Factory) Functions() *function.Registry { return f.functions }

// Create starts a query selecting from entity under alias.
func (f *Factory) Create(entity, alias string) *Builder {
	b := f.newBuilder()
	return b.From(entity, alias)
}

// CreateEmpty starts a query without a FROM root. From must be called before
// any clause that refers to a path.
func (f *Factory) CreateEmpty() *Builder {
	return f.newBuilder()
}

func (f *Factory) newBuilder() *Builder {
	b := &Builder{
		f: f,
		q: &queryState{
			aliasSeq:  make(map[string]int),
			cteByName: make(map[string]*cteDef),
			values:    make(map[string]any),
		},
		windows: make(map[string]*core.WindowSpec),
	}
	b.sc = newScope()
	b.scopes = []*scope{b.sc}
	return b
}
