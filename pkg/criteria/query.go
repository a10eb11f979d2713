package criteria

import (
	"maps"
	"strings"

	"github.com/leapstack-labs/leapquery/pkg/core"
	"github.com/leapstack-labs/leapquery/pkg/keyset"
	"github.com/leapstack-labs/leapquery/pkg/projection"
)

// KeysetInfo describes how to read keysets back from the rows of a
// keyset-paged query.
type KeysetInfo struct {
	Mode keyset.Mode
	// Keys are the order keys in ORDER BY order, as JPQL text.
	Keys []string
	// Indexes are the select list positions holding each key.
	Indexes []int
	// Reversed is set for previous-page queries: rows arrive in inverted
	// order and must be reversed before use.
	Reversed bool
	// FirstResult is the absolute position of the page.
	FirstResult int
}

// Query is a built query. It is immutable; Bind returns a copy.
type Query struct {
	ast       *core.SelectQuery
	jpql      string
	sql       string
	params    []*core.ParameterExpr
	sqlParams []*core.ParameterExpr
	values    map[string]any
	dialect   string

	firstResult int
	maxResults  int
	plan        *projection.Plan
	visible     []int
	keyset      *KeysetInfo
}

// JPQL returns the query as JPQL.
func (q *Query) JPQL() string { return q.jpql }

// SQL returns the query in the factory's dialect.
func (q *Query) SQL() string { return q.sql }

// Dialect returns the name of the dialect SQL was rendered for.
func (q *Query) Dialect() string { return q.dialect }

// AST returns the assembled query tree.
func (q *Query) AST() *core.SelectQuery { return q.ast }

// Parameters lists the parameters in first-appearance order, as ":name" or "?n".
func (q *Query) Parameters() []string {
	out := make([]string, len(q.params))
	for i, p := range q.params {
		out[i] = p.Key()
	}
	return out
}

// Values returns the bound parameter values keyed like Parameters.
func (q *Query) Values() map[string]any {
	return maps.Clone(q.values)
}

// Bind returns a copy of q with name bound to value. name is ":name", "name"
// or "?n" and must be used by the query.
func (q *Query) Bind(name string, value any) (*Query, error) {
	key, err := parameterKey(name)
	if err != nil {
		return nil, err
	}
	found := false
	for _, p := range q.params {
		if p.Key() == key {
			found = true
			break
		}
	}
	if !found {
		return nil, &ParameterError{Name: name, Reason: "not used in the query"}
	}
	out := *q
	out.values = maps.Clone(q.values)
	out.values[key] = value
	return &out, nil
}

// Args returns the SQL arguments in placeholder order.
func (q *Query) Args() ([]any, error) {
	args := make([]any, len(q.sqlParams))
	for i, p := range q.sqlParams {
		v, ok := q.values[p.Key()]
		if !ok {
			return nil, &ParameterError{Name: strings.TrimPrefix(p.Key(), ":"), Reason: "no value bound"}
		}
		args[i] = v
	}
	return args, nil
}

// FirstResult returns the number of rows skipped, or the page position for
// keyset paging.
func (q *Query) FirstResult() int { return q.firstResult }

// MaxResults returns the row limit, 0 for unlimited.
func (q *Query) MaxResults() int { return q.maxResults }

// Plan returns the projection plan of the visible select items.
func (q *Query) Plan() *projection.Plan { return q.plan }

// Visible drops the hidden keyset columns from a result tuple.
func (q *Query) Visible(tuple []any) []any {
	if len(q.visible) == len(tuple) {
		return tuple
	}
	out := make([]any, len(q.visible))
	for i, idx := range q.visible {
		out[i] = tuple[idx]
	}
	return out
}

// Keyset returns the keyset metadata, or nil when the query is not keyset paged.
func (q *Query) Keyset() *KeysetInfo { return q.keyset }

// KeysetOf extracts the keyset of one result tuple.
func (q *Query) KeysetOf(tuple []any) keyset.Keyset {
	if q.keyset == nil {
		return nil
	}
	ks := make(keyset.Keyset, len(q.keyset.Indexes))
	for i, idx := range q.keyset.Indexes {
		ks[i] = tuple[idx]
	}
	return ks
}
