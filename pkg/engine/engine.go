// Package engine runs built queries through an adapter and assembles pages.
//
// A fetch executes the query's SQL with its positional arguments, restores
// display order for previous-page keyset queries, strips hidden keyset
// columns and records the keysets of the first and last rows so callers can
// link to neighbouring pages.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/leapstack-labs/leapquery/pkg/adapter"
	"github.com/leapstack-labs/leapquery/pkg/criteria"
	"github.com/leapstack-labs/leapquery/pkg/keyset"
	"github.com/leapstack-labs/leapquery/pkg/projection"
)

// Engine fetches query results through one adapter. It is safe for
// concurrent use when the adapter is.
type Engine struct {
	adapter adapter.Adapter
	logger  *slog.Logger
}

// DialectMismatchError is returned when a query was rendered for a dialect
// other than the adapter's.
type DialectMismatchError struct {
	Query   string
	Adapter string
}

func (e *DialectMismatchError) Error() string {
	return fmt.Sprintf("engine error: query rendered for %s cannot run on a %s connection", e.Query, e.Adapter)
}

// New creates an engine. A nil logger uses a discard logger.
func New(adp adapter.Adapter, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{adapter: adp, logger: logger}
}

// Result is one fetched page.
type Result struct {
	// Columns are the visible column aliases.
	Columns []string
	// Rows hold the visible values in display order.
	Rows [][]any
	// Page describes the page, with keysets when the query is keyset paged.
	Page *keyset.Page

	plan *projection.Plan
}

// Maps projects every row through the query's plan.
func (r *Result) Maps() ([]map[string]any, error) {
	out := make([]map[string]any, len(r.Rows))
	for i, row := range r.Rows {
		m, err := r.plan.Map(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = m
	}
	return out, nil
}

// Decode decodes every row of r into a new T.
func Decode[T any](r *Result) ([]T, error) {
	return projection.DecodeAll[T](r.plan, r.Rows)
}

// Fetch runs q and returns its page.
func (e *Engine) Fetch(ctx context.Context, q *criteria.Query) (*Result, error) {
	if name := e.adapter.Dialect().GetName(); name != q.Dialect() {
		return nil, &DialectMismatchError{Query: q.Dialect(), Adapter: name}
	}
	args, err := q.Args()
	if err != nil {
		return nil, err
	}

	raw, err := e.query(ctx, q.SQL(), args)
	if err != nil {
		return nil, err
	}

	ks := q.Keyset()
	if ks != nil && ks.Reversed {
		slices.Reverse(raw)
	}

	page := &keyset.Page{FirstResult: q.FirstResult(), MaxResults: q.MaxResults(), Size: len(raw)}
	if ks != nil && len(raw) > 0 {
		page.Lowest = q.KeysetOf(raw[0])
		page.Highest = q.KeysetOf(raw[len(raw)-1])
	}

	rows := make([][]any, len(raw))
	for i, r := range raw {
		rows[i] = q.Visible(r)
	}

	e.logger.Debug("fetched page",
		slog.Int("first_result", page.FirstResult),
		slog.Int("rows", page.Size),
		slog.Bool("keyset", ks != nil))

	return &Result{Columns: q.Plan().Columns(), Rows: rows, Page: page, plan: q.Plan()}, nil
}

// query runs sql and scans every row into a slice of driver values.
func (e *Engine) query(ctx context.Context, sql string, args []any) ([][]any, error) {
	rows, err := e.adapter.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var out [][]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}
