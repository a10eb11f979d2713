package criteria

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapquery/pkg/core"
	"github.com/leapstack-labs/leapquery/pkg/function"
	"github.com/leapstack-labs/leapquery/pkg/keyset"
	"github.com/leapstack-labs/leapquery/pkg/parser"
)

// queryState is shared by a root builder and every builder nested in it.
type queryState struct {
	aliasSeq  map[string]int
	ctes      []*cteDef
	cteByName map[string]*cteDef

	values     map[string]any
	named      bool
	positional bool
	maxPos     int
}

type cteDef struct {
	name      string
	columns   []string
	types     []core.Type
	recursive bool
	query     *core.SelectQuery
}

func (c *cteDef) column(name string) (int, bool) {
	i := slices.Index(c.columns, name)
	return i, i >= 0
}

// selectEntry is one select item plus the projection alias it decodes into.
type selectEntry struct {
	expr  core.Expr
	alias string
	label string
}

// Builder assembles one query. A Builder is not safe for concurrent use.
type Builder struct {
	f      *Factory
	q      *queryState
	parent *Builder
	scopes []*scope
	sc     *scope

	err       error
	finalized bool

	distinct    bool
	selects     []selectEntry
	where       core.Expr
	groupBy     []core.Expr
	having      core.Expr
	orderBy     []core.OrderByItem
	setOps      []core.SetOperation
	windows     map[string]*core.WindowSpec
	firstResult int
	maxResults  int

	keysetPaging bool
	link         *keyset.Link

	// projection is the select list after assembly, implicit items included.
	projection []selectEntry
}

// Err returns the first error recorded by the builder.
func (b *Builder) Err() error {
	return b.err
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// usable reports whether a mutation may proceed.
func (b *Builder) usable() bool {
	if b.finalized {
		b.fail(ErrFinalized)
		return false
	}
	return b.err == nil
}

func (b *Builder) rootOnly() bool {
	if b.parent != nil {
		b.fail(ErrNotRoot)
		return false
	}
	return true
}

func (b *Builder) hasFrom() bool {
	if len(b.sc.roots) == 0 {
		b.fail(ErrNoFrom)
		return false
	}
	return true
}

// parse parses and binds one expression.
func (b *Builder) parse(text string) (core.Expr, core.Expr, bool) {
	e, err := parser.ParseExpr(text)
	if err != nil {
		b.fail(err)
		return nil, nil, false
	}
	bound, err := b.bind(e)
	if err != nil {
		b.fail(err)
		return nil, nil, false
	}
	return e, bound, true
}

// ---------- FROM and joins ----------

// From adds a root. entity names an entity of the metamodel or a CTE declared
// with With or WithRecursive.
func (b *Builder) From(entity, alias string) *Builder {
	if !b.usable() || !b.declareAlias(alias) {
		return b
	}
	n, err := b.newNode(entity, alias)
	if err != nil {
		return b.fail(err)
	}
	n.item = &core.FromItem{Source: n.source}
	b.sc.roots = append(b.sc.roots, n)
	b.sc.from = append(b.sc.from, n.item)
	b.sc.aliases[alias] = n
	return b
}

// InnerJoin joins the association at path under alias.
func (b *Builder) InnerJoin(path, alias string) *Builder {
	return b.joinPath(path, alias, core.JoinInner)
}

// LeftJoin left joins the association at path under alias.
func (b *Builder) LeftJoin(path, alias string) *Builder {
	return b.joinPath(path, alias, core.JoinLeft)
}

// RightJoin right joins the association at path under alias.
func (b *Builder) RightJoin(path, alias string) *Builder {
	return b.joinPath(path, alias, core.JoinRight)
}

func (b *Builder) joinPath(text, alias string, typ core.JoinType) *Builder {
	if !b.usable() || !b.hasFrom() || !b.declareAlias(alias) {
		return b
	}
	e, err := parser.ParseExpr(text)
	if err != nil {
		return b.fail(err)
	}
	p, ok := e.(*core.PathExpr)
	if !ok {
		return b.fail(&PathError{Path: text, Reason: "join target must be a path"})
	}
	n, err := b.explicitJoin(p, alias, typ)
	if err != nil {
		return b.fail(err)
	}
	b.sc.aliases[alias] = n
	return b
}

// JoinOn joins an unrelated entity (or CTE) with an explicit ON condition.
// The join hangs off the most recent root.
func (b *Builder) JoinOn(entity, alias string, typ core.JoinType, on string) *Builder {
	if !b.usable() || !b.hasFrom() || !b.declareAlias(alias) {
		return b
	}
	n, err := b.newNode(entity, alias)
	if err != nil {
		return b.fail(err)
	}
	n.item = b.sc.from[len(b.sc.from)-1]
	n.nullable = typ != core.JoinInner
	n.join = &core.Join{Type: typ, Source: n.source}
	b.sc.aliases[alias] = n

	_, cond, ok := b.parse(on)
	if !ok {
		return b
	}
	n.join.On = cond
	n.item.Joins = append(n.item.Joins, n.join)
	b.f.logger.Debug("entity join created", "alias", alias, "entity", entity, "type", string(typ))
	return b
}

func (b *Builder) declareAlias(alias string) bool {
	switch {
	case alias == "":
		b.fail(&PathError{Path: alias, Reason: "alias is required"})
		return false
	case b.sc.aliases[alias] != nil:
		b.fail(&PathError{Path: alias, Reason: "alias is already defined"})
		return false
	}
	return true
}

// ---------- SELECT ----------

// Select adds one select item per expression.
func (b *Builder) Select(exprs ...string) *Builder {
	for _, text := range exprs {
		if !b.usable() || !b.hasFrom() {
			return b
		}
		raw, e, ok := b.parse(text)
		if !ok {
			return b
		}
		b.selects = append(b.selects, selectEntry{expr: e, label: b.label(raw)})
	}
	return b
}

// SelectAs adds a select item under alias.
func (b *Builder) SelectAs(expr, alias string) *Builder {
	if !b.usable() || !b.hasFrom() {
		return b
	}
	if alias == "" {
		return b.fail(&PathError{Path: expr, Reason: "select alias is required"})
	}
	if _, e, ok := b.parse(expr); ok {
		b.selects = append(b.selects, selectEntry{expr: e, alias: alias, label: alias})
	}
	return b
}

// SelectSubquery adds a scalar subquery under alias.
func (b *Builder) SelectSubquery(alias string, fn func(*Builder)) *Builder {
	if !b.usable() || !b.hasFrom() {
		return b
	}
	if alias == "" {
		return b.fail(&PathError{Path: "subquery", Reason: "select alias is required"})
	}
	if q, _, ok := b.finish(b.nested(false), fn, false); ok {
		b.selects = append(b.selects, selectEntry{expr: &core.SubqueryExpr{Query: q}, alias: alias, label: alias})
	}
	return b
}

// Distinct makes the query SELECT DISTINCT.
func (b *Builder) Distinct() *Builder {
	if b.usable() {
		b.distinct = true
	}
	return b
}

// label derives the projection alias of an unaliased select item: the path
// without the alias of the query's first root, or "" for other expressions.
func (b *Builder) label(raw core.Expr) string {
	p, ok := raw.(*core.PathExpr)
	if !ok || p.Root != nil {
		return ""
	}
	if len(p.Parts) > 1 && p.Parts[0] == b.sc.roots[0].source.Alias {
		return strings.Join(p.Parts[1:], ".")
	}
	return strings.Join(p.Parts, ".")
}

// ---------- WHERE, GROUP BY, HAVING ----------

// Where adds a predicate, ANDed with the existing ones.
func (b *Builder) Where(expr string) *Builder {
	if !b.usable() || !b.hasFrom() {
		return b
	}
	if _, e, ok := b.parse(expr); ok {
		b.where = core.And(b.where, e)
	}
	return b
}

// WhereExists adds EXISTS (subquery).
func (b *Builder) WhereExists(fn func(*Builder)) *Builder {
	return b.whereExists(false, fn)
}

// WhereNotExists adds NOT EXISTS (subquery).
func (b *Builder) WhereNotExists(fn func(*Builder)) *Builder {
	return b.whereExists(true, fn)
}

func (b *Builder) whereExists(not bool, fn func(*Builder)) *Builder {
	if !b.usable() || !b.hasFrom() {
		return b
	}
	if q, _, ok := b.finish(b.nested(false), fn, false); ok {
		b.where = core.And(b.where, &core.ExistsExpr{Not: not, Subquery: &core.SubqueryExpr{Query: q}})
	}
	return b
}

// WhereIn adds expr IN (subquery).
func (b *Builder) WhereIn(expr string, fn func(*Builder)) *Builder {
	return b.whereIn(expr, false, fn)
}

// WhereNotIn adds expr NOT IN (subquery).
func (b *Builder) WhereNotIn(expr string, fn func(*Builder)) *Builder {
	return b.whereIn(expr, true, fn)
}

func (b *Builder) whereIn(expr string, not bool, fn func(*Builder)) *Builder {
	if !b.usable() || !b.hasFrom() {
		return b
	}
	_, e, ok := b.parse(expr)
	if !ok {
		return b
	}
	if q, _, ok := b.finish(b.nested(false), fn, false); ok {
		b.where = core.And(b.where, &core.InExpr{Expr: e, Not: not, Subquery: &core.SubqueryExpr{Query: q}})
	}
	return b
}

// GroupBy adds grouping expressions.
func (b *Builder) GroupBy(exprs ...string) *Builder {
	for _, text := range exprs {
		if !b.usable() || !b.hasFrom() {
			return b
		}
		if _, e, ok := b.parse(text); ok {
			b.groupBy = append(b.groupBy, e)
		}
	}
	return b
}

// Having adds a HAVING predicate, ANDed with the existing ones.
func (b *Builder) Having(expr string) *Builder {
	if !b.usable() || !b.hasFrom() {
		return b
	}
	if _, e, ok := b.parse(expr); ok {
		b.having = core.And(b.having, e)
	}
	return b
}

// ---------- ORDER BY and windows ----------

// OrderBy adds a comma separated ORDER BY list such as
// "d.name asc nulls last, d.id desc".
func (b *Builder) OrderBy(list string) *Builder {
	if !b.usable() || !b.hasFrom() {
		return b
	}
	items, err := parser.ParseOrderBy(list)
	if err != nil {
		return b.fail(err)
	}
	for _, item := range items {
		e, err := b.bind(item.Expr)
		if err != nil {
			return b.fail(err)
		}
		item.Expr = e
		b.orderBy = append(b.orderBy, item)
	}
	return b
}

// OrderByAsc orders ascending with explicit null precedence.
func (b *Builder) OrderByAsc(expr string, nullsFirst bool) *Builder {
	return b.orderItem(expr, false, nullsFirst)
}

// OrderByDesc orders descending with explicit null precedence.
func (b *Builder) OrderByDesc(expr string, nullsFirst bool) *Builder {
	return b.orderItem(expr, true, nullsFirst)
}

func (b *Builder) orderItem(expr string, desc, nullsFirst bool) *Builder {
	if !b.usable() || !b.hasFrom() {
		return b
	}
	_, e, ok := b.parse(expr)
	if !ok {
		return b
	}
	nulls := core.NullsLast
	if nullsFirst {
		nulls = core.NullsFirst
	}
	b.orderBy = append(b.orderBy, core.OrderByItem{Expr: e, Desc: desc, Nulls: nulls})
	return b
}

// Window declares a named window, for example
// Window("w", "PARTITION BY d.owner ORDER BY d.createdAt").
// A spec may start with the name of another window to extend it.
// Calls refer to it as OVER w or OVER (w ORDER BY ...); the definition is
// inlined into every call.
func (b *Builder) Window(name, spec string) *Builder {
	if !b.usable() || !b.hasFrom() {
		return b
	}
	if name == "" || b.windows[name] != nil {
		return b.fail(&PathError{Path: name, Reason: "window name is empty or already defined"})
	}
	w, err := parser.ParseWindow(spec)
	if err != nil {
		return b.fail(err)
	}
	if w.Name != "" {
		if w, err = b.inlineWindow(name, w); err != nil {
			return b.fail(err)
		}
	}
	bound, err := b.bindWindow(w)
	if err != nil {
		return b.fail(err)
	}
	b.windows[name] = bound
	return b
}

// ---------- CTEs and set operations ----------

// With declares a CTE named name. Its columns are the aliases of the body's
// select items.
func (b *Builder) With(name string, fn func(*Builder)) *Builder {
	if !b.usable() || !b.rootOnly() || !b.declareCTE(name) {
		return b
	}
	q, projection, ok := b.finish(b.nested(true), fn, false)
	if !ok {
		return b
	}
	def := &cteDef{name: name, query: q}
	for _, s := range projection {
		col := s.alias
		if col == "" {
			col = strings.ReplaceAll(s.label, ".", "_")
		}
		if col == "" {
			return b.fail(&PathError{Path: name, Reason: "CTE select items need an alias"})
		}
		def.columns = append(def.columns, col)
		def.types = append(def.types, b.typeOf(s.expr))
	}
	b.registerCTE(def)
	return b
}

// WithRecursive declares a recursive CTE with the given columns. The CTE is
// visible inside its own body, typically in the recursive set operand.
func (b *Builder) WithRecursive(name string, columns []string, fn func(*Builder)) *Builder {
	if !b.usable() || !b.rootOnly() || !b.declareCTE(name) {
		return b
	}
	if len(columns) == 0 {
		return b.fail(&PathError{Path: name, Reason: "recursive CTE needs columns"})
	}
	def := &cteDef{name: name, columns: columns, types: make([]core.Type, len(columns)), recursive: true}
	b.registerCTE(def)

	q, projection, ok := b.finish(b.nested(true), fn, false)
	if !ok {
		return b
	}
	if got := len(projection); got != len(columns) {
		return b.fail(&PathError{Path: name, Reason: fmt.Sprintf("CTE declares %d columns but selects %d", len(columns), got)})
	}
	for i, s := range projection {
		def.types[i] = b.typeOf(s.expr)
	}
	def.query = q
	return b
}

func (b *Builder) declareCTE(name string) bool {
	_, entity := b.f.model.Entity(name)
	if name == "" || entity || b.q.cteByName[name] != nil {
		b.fail(&PathError{Path: name, Reason: "CTE name is empty or already in use"})
		return false
	}
	return true
}

func (b *Builder) registerCTE(def *cteDef) {
	b.q.ctes = append(b.q.ctes, def)
	b.q.cteByName[def.name] = def
}

// Union appends UNION operand.
func (b *Builder) Union(fn func(*Builder)) *Builder {
	return b.setOperation(core.SetUnion, false, fn)
}

// UnionAll appends UNION ALL operand.
func (b *Builder) UnionAll(fn func(*Builder)) *Builder {
	return b.setOperation(core.SetUnion, true, fn)
}

// Intersect appends INTERSECT operand.
func (b *Builder) Intersect(fn func(*Builder)) *Builder {
	return b.setOperation(core.SetIntersect, false, fn)
}

// IntersectAll appends INTERSECT ALL operand.
func (b *Builder) IntersectAll(fn func(*Builder)) *Builder {
	return b.setOperation(core.SetIntersect, true, fn)
}

// Except appends EXCEPT operand (MINUS on Oracle).
func (b *Builder) Except(fn func(*Builder)) *Builder {
	return b.setOperation(core.SetExcept, false, fn)
}

// ExceptAll appends EXCEPT ALL operand.
func (b *Builder) ExceptAll(fn func(*Builder)) *Builder {
	return b.setOperation(core.SetExcept, true, fn)
}

func (b *Builder) setOperation(op core.SetOperator, all bool, fn func(*Builder)) *Builder {
	if !b.usable() || !b.hasFrom() {
		return b
	}
	if d := b.f.dialect; !d.SupportsSet(op, all) {
		name := string(op)
		if all {
			name += " ALL"
		}
		return b.fail(&function.ConfigurationError{Function: name, Dialect: d.Name, Reason: "set operation is not supported"})
	}
	if q, _, ok := b.finish(b.nested(true), fn, true); ok {
		b.setOps = append(b.setOps, core.SetOperation{Op: op, All: all, Query: q})
	}
	return b
}

// ---------- Parameters and paging ----------

// SetParameter binds a named parameter (":name" or "name") or a positional
// one ("?1").
func (b *Builder) SetParameter(name string, value any) *Builder {
	if !b.usable() {
		return b
	}
	key, err := parameterKey(name)
	if err != nil {
		return b.fail(err)
	}
	b.q.values[key] = value
	return b
}

// SetPositionalParameter binds ?position.
func (b *Builder) SetPositionalParameter(position int, value any) *Builder {
	return b.SetParameter("?"+strconv.Itoa(position), value)
}

func parameterKey(name string) (string, error) {
	switch {
	case strings.HasPrefix(name, "?"):
		if n, err := strconv.Atoi(name[1:]); err != nil || n < 1 {
			return "", &ParameterError{Name: name, Reason: "invalid position"}
		}
		return name, nil
	case strings.HasPrefix(name, ":"):
		name = name[1:]
	}
	if name == "" {
		return "", &ParameterError{Name: name, Reason: "name is empty"}
	}
	return ":" + name, nil
}

// SetFirstResult skips the first n rows. It is only printed in SQL.
func (b *Builder) SetFirstResult(n int) *Builder {
	if !b.usable() {
		return b
	}
	if n < 0 {
		return b.fail(fmt.Errorf("criteria: first result must not be negative, got %d", n))
	}
	b.firstResult = n
	return b
}

// SetMaxResults limits the number of rows. Zero means unlimited.
func (b *Builder) SetMaxResults(n int) *Builder {
	if !b.usable() {
		return b
	}
	if n < 0 {
		return b.fail(fmt.Errorf("criteria: max results must not be negative, got %d", n))
	}
	b.maxResults = n
	return b
}

// PageByKeyset pages by keyset. link is nil for the first page; otherwise it
// comes from a previous keyset.Page or a decoded cursor. firstResult is the
// absolute position of the page and is not printed: the keyset predicate
// replaces the OFFSET.
func (b *Builder) PageByKeyset(link *keyset.Link, firstResult, maxResults int) *Builder {
	if !b.usable() || !b.rootOnly() {
		return b
	}
	if maxResults <= 0 || firstResult < 0 {
		return b.fail(fmt.Errorf("criteria: keyset paging needs max results > 0 and first result >= 0, got %d and %d", maxResults, firstResult))
	}
	b.keysetPaging = true
	b.link = link
	b.firstResult = firstResult
	b.maxResults = maxResults
	return b
}

// ---------- nesting ----------

// nested returns a builder for a subquery. A sibling (CTE body, set operand)
// does not see the FROM of b, only the queries enclosing b.
func (b *Builder) nested(sibling bool) *Builder {
	base := b.scopes
	if sibling {
		base = b.scopes[:len(b.scopes)-1]
	}
	sc := newScope()
	return &Builder{
		f:       b.f,
		q:       b.q,
		parent:  b,
		scopes:  append(slices.Clone(base), sc),
		sc:      sc,
		windows: make(map[string]*core.WindowSpec),
	}
}

// finish runs fn on the nested builder child and assembles its query.
// expand selects the entity attributes when the body has no select list.
func (b *Builder) finish(child *Builder, fn func(*Builder), expand bool) (*core.SelectQuery, []selectEntry, bool) {
	fn(child)
	if child.err == nil && len(child.sc.roots) == 0 {
		child.err = ErrNoFrom
	}
	child.finalized = true
	if child.err != nil {
		b.fail(child.err)
		return nil, nil, false
	}
	q, err := child.assemble(expand)
	if err != nil {
		b.fail(err)
		return nil, nil, false
	}
	return q, child.projection, true
}
