package criteria

import (
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/leapquery/pkg/core"
	"github.com/leapstack-labs/leapquery/pkg/keyset"
	"github.com/leapstack-labs/leapquery/pkg/metamodel"
	"github.com/leapstack-labs/leapquery/pkg/projection"
	"github.com/leapstack-labs/leapquery/pkg/render"
)

// assemble turns the builder into a query tree. With expand, an empty select
// list becomes the basic and embedded attributes of the first root.
func (b *Builder) assemble(expand bool) (*core.SelectQuery, error) {
	entries := b.selects
	if len(entries) == 0 && (expand || len(b.setOps) > 0) {
		var err error
		if entries, err = b.implicitProjection(); err != nil {
			return nil, err
		}
	}
	b.projection = entries

	q := &core.SelectQuery{
		Distinct:    b.distinct,
		From:        b.sc.from,
		Where:       b.where,
		GroupBy:     b.groupBy,
		Having:      b.having,
		SetOps:      b.setOps,
		OrderBy:     slices.Clone(b.orderBy),
		FirstResult: b.firstResult,
		MaxResults:  b.maxResults,
	}
	for _, e := range entries {
		q.Select = append(q.Select, core.SelectItem{Expr: e.expr, Alias: e.alias})
	}
	for _, op := range b.setOps {
		if len(op.Query.Select) != len(q.Select) {
			return nil, fmt.Errorf("%w: %d and %d", ErrOperandShape, len(q.Select), len(op.Query.Select))
		}
	}
	return q, nil
}

func (b *Builder) implicitProjection() ([]selectEntry, error) {
	root := b.sc.roots[0]
	alias := root.source.Alias
	var paths []string
	if root.cte != nil {
		paths = root.cte.columns
	} else {
		for _, a := range root.entity.AllAttributes() {
			switch a.Kind {
			case metamodel.Basic:
				paths = append(paths, a.Name)
			case metamodel.Embedded:
				emb, _ := b.f.model.Embeddable(a.Target)
				for _, ea := range emb.Attributes {
					paths = append(paths, a.Name+"."+ea.Name)
				}
			}
		}
	}

	out := make([]selectEntry, 0, len(paths))
	for _, p := range paths {
		e, err := b.resolvePath(&core.PathExpr{Parts: append([]string{alias}, strings.Split(p, ".")...)}, b.scopes)
		if err != nil {
			return nil, err
		}
		out = append(out, selectEntry{expr: e, label: p})
	}
	return out, nil
}

// Build finalizes the builder and renders the query. It can be called once;
// every later call, and every mutation after it, fails with ErrFinalized.
func (b *Builder) Build() (*Query, error) {
	if !b.rootOnly() {
		return nil, b.err
	}
	if b.finalized {
		return nil, ErrFinalized
	}
	b.finalized = true
	if b.err != nil {
		return nil, b.err
	}
	if len(b.sc.roots) == 0 {
		return nil, ErrNoFrom
	}

	q, err := b.assemble(true)
	if err != nil {
		return nil, err
	}
	for _, def := range b.q.ctes {
		q.With = append(q.With, &core.CTE{Name: def.name, Columns: def.columns, Recursive: def.recursive, Query: def.query})
	}

	out := &Query{
		ast:         q,
		values:      make(map[string]any, len(b.q.values)),
		firstResult: b.firstResult,
		maxResults:  b.maxResults,
		dialect:     b.f.dialect.Name,
	}
	for k, v := range b.q.values {
		out.values[k] = v
	}

	if b.paginated() {
		b.appendTieBreaker(q)
	}
	if b.keysetPaging {
		if err := b.applyKeyset(q, out); err != nil {
			return nil, err
		}
	}

	if err := b.render(q, out); err != nil {
		return nil, err
	}

	var elements []projection.Element
	for i, item := range q.Select {
		if item.Hidden {
			continue
		}
		out.visible = append(out.visible, i)
		label := b.projection[i].label
		if label == "" {
			label = fmt.Sprintf("col%d", i+1)
		}
		elements = append(elements, projection.Element{Alias: label, Type: b.typeOf(item.Expr)})
	}
	if out.plan, err = projection.New(elements...); err != nil {
		return nil, err
	}

	b.f.logger.Debug("query finalized",
		"jpql_length", len(out.jpql),
		"sql_length", len(out.sql),
		"parameters", len(out.params),
		"keyset", b.keysetPaging)
	return out, nil
}

func (b *Builder) paginated() bool {
	return b.keysetPaging || b.firstResult > 0 || b.maxResults > 0
}

// appendTieBreaker appends the root id to ORDER BY unless the ordering is
// already unique. Without it, rows with equal sort keys may move between
// pages. Grouped, distinct and compound queries are left alone: their ORDER
// BY may only reference the select list.
func (b *Builder) appendTieBreaker(q *core.SelectQuery) {
	root := b.sc.roots[0]
	if root.entity == nil || len(q.GroupBy) > 0 || q.Distinct || len(q.SetOps) > 0 {
		return
	}
	for _, o := range q.OrderBy {
		if bp, ok := o.Expr.(*core.BoundPath); ok && bp.Unique && bp.Source == root.source {
			return
		}
	}
	id := root.entity.IDAttribute()
	q.OrderBy = append(q.OrderBy, core.OrderByItem{Expr: &core.BoundPath{
		Source:     root.source,
		Attributes: []string{id.Name},
		Column:     id.Column,
		Type:       id.Type,
		Unique:     true,
	}})
}

// applyKeyset fixes null precedence, makes every order key part of the
// select list and, when a link is given, adds the keyset predicate. The
// predicate goes to HAVING for grouped queries and aggregate keys.
func (b *Builder) applyKeyset(q *core.SelectQuery, out *Query) error {
	if len(q.SetOps) > 0 {
		return fmt.Errorf("criteria: keyset paging is not supported for set operations")
	}
	if len(q.OrderBy) == 0 {
		return fmt.Errorf("criteria: keyset paging requires ORDER BY")
	}
	d := b.f.dialect
	info := &KeysetInfo{FirstResult: b.firstResult}
	grouped := len(q.GroupBy) > 0

	for i, o := range q.OrderBy {
		if hasCall(o.Expr, func(c *core.FuncCall) bool { return c.Window != nil }) {
			key, _ := jpqlText(o.Expr)
			return fmt.Errorf("%w: %s", ErrWindowKeysetKey, key)
		}
		if hasCall(o.Expr, func(c *core.FuncCall) bool { return b.f.functions.IsAggregate(c.Name, d) }) {
			grouped = true
		}
		if o.Nulls == core.NullsDefault {
			if o.EffectiveNullsFirst(d.NullSmallest) {
				o.Nulls = core.NullsFirst
			} else {
				o.Nulls = core.NullsLast
			}
			q.OrderBy[i] = o
		}
		key, err := jpqlText(o.Expr)
		if err != nil {
			return err
		}
		idx := slices.IndexFunc(q.Select, func(s core.SelectItem) bool {
			t, err := jpqlText(s.Expr)
			return err == nil && t == key
		})
		if idx < 0 {
			q.Select = append(q.Select, core.SelectItem{Expr: o.Expr, Hidden: true})
			b.projection = append(b.projection, selectEntry{expr: o.Expr})
			idx = len(q.Select) - 1
		}
		info.Keys = append(info.Keys, key)
		info.Indexes = append(info.Indexes, idx)
	}
	out.keyset = info

	// The offset is carried by the keyset.
	q.FirstResult = 0
	if b.link == nil || b.link.Mode() == keyset.None {
		return nil
	}
	info.Mode = b.link.Mode()

	values, err := b.link.Finalize(info.Keys)
	if err != nil {
		return err
	}
	pred, params, err := keyset.Predicate(keyset.ColumnsOf(q.OrderBy, d.NullSmallest), values, info.Mode)
	if err != nil {
		return err
	}
	if b.q.positional {
		pred, params = b.positionalKeyset(pred, params)
	}
	for name, v := range params {
		if strings.HasPrefix(name, "?") {
			out.values[name] = v
		} else {
			out.values[":"+name] = v
		}
	}
	if grouped {
		q.Having = core.And(q.Having, pred)
	} else {
		q.Where = core.And(q.Where, pred)
	}

	if info.Mode == keyset.Previous {
		for i, o := range q.OrderBy {
			q.OrderBy[i] = o.Inverted(d.NullSmallest)
		}
		info.Reversed = true
	}
	return nil
}

// positionalKeyset renumbers the keyset parameters after the query's own
// positional parameters.
func (b *Builder) positionalKeyset(pred core.Expr, params map[string]any) (core.Expr, map[string]any) {
	out := make(map[string]any, len(params))
	base := b.q.maxPos
	pred, _ = core.Rewrite(pred, func(e core.Expr) (core.Expr, bool, error) {
		p, ok := e.(*core.ParameterExpr)
		if !ok {
			return nil, false, nil
		}
		var i int
		_, _ = fmt.Sscanf(p.Name, keyset.ParamPrefix+"%d", &i)
		pos := &core.ParameterExpr{Position: base + i + 1}
		out[pos.Key()] = params[p.Name]
		return pos, true, nil
	})
	return pred, out
}

func hasCall(e core.Expr, match func(*core.FuncCall) bool) bool {
	found := false
	core.Walk(e, func(n core.Expr) bool {
		if c, ok := n.(*core.FuncCall); ok && match(c) {
			found = true
		}
		return !found
	})
	return found
}

func jpqlText(e core.Expr) (string, error) {
	res, err := render.Expr(e, render.Options{})
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// render prints q as JPQL and SQL and checks the parameters.
func (b *Builder) render(q *core.SelectQuery, out *Query) error {
	jpql, err := render.Query(q, render.Options{Mode: render.ModeJPQL, Functions: b.f.functions})
	if err != nil {
		return err
	}
	sql, err := render.Query(q, render.Options{Mode: render.ModeSQL, Dialect: b.f.dialect, Functions: b.f.functions})
	if err != nil {
		return err
	}
	out.jpql, out.params = jpql.Text, jpql.Params
	out.sql, out.sqlParams = sql.Text, sql.Params

	used := make(map[string]bool, len(out.params))
	for _, p := range out.params {
		used[p.Key()] = true
	}
	for key := range out.values {
		if !used[key] {
			return &ParameterError{Name: key, Reason: "not used in the query"}
		}
	}
	return nil
}
