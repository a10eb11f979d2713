package criteria

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapquery/pkg/core"
	"github.com/leapstack-labs/leapquery/pkg/function"
	"github.com/leapstack-labs/leapquery/pkg/metamodel"
	"github.com/leapstack-labs/leapquery/pkg/token"
)

// Correlation functions. They are replaced by bound paths during binding and
// never reach the function registry.
const (
	fnViewRoot      = "VIEW_ROOT"
	fnEmbeddingView = "EMBEDDING_VIEW"
	fnOuter         = "OUTER"
)

// scope is the FROM clause of one query level.
type scope struct {
	roots   []*node
	from    []*core.FromItem
	aliases map[string]*node
}

func newScope() *scope {
	return &scope{aliases: make(map[string]*node)}
}

// node is a source in the join graph. Joins hanging off a node are keyed by
// attribute name, so two paths through the same association share one join.
type node struct {
	source   *core.Source
	entity   *metamodel.Entity
	cte      *cteDef
	item     *core.FromItem
	join     *core.Join
	nullable bool
	children map[string]*node
}

// cursor is a position reached while walking a path.
type cursor struct {
	node     *node
	view     *metamodel.Entity // node.entity, or the subtype selected by TREAT
	treat    string
	attrs    []string // attributes walked since node, embedded ones only
	emb      *metamodel.Embeddable
	prefix   string
	nullable bool
}

func at(n *node) cursor {
	return cursor{node: n, view: n.entity, nullable: n.nullable}
}

func (c cursor) bare(path string) (*core.BoundPath, error) {
	if c.emb != nil {
		return nil, &PathError{Path: path, Reason: "embeddable " + c.emb.Name + " must be dereferenced"}
	}
	return &core.BoundPath{
		Source:   c.node.source,
		Treat:    c.treat,
		Type:     core.TypeEntity,
		Nullable: c.nullable,
	}, nil
}

func (b *Builder) newNode(entity, alias string) (*node, error) {
	if def := b.q.cteByName[entity]; def != nil {
		return &node{
			source: &core.Source{Alias: alias, Entity: def.name, Table: def.name},
			cte:    def,
		}, nil
	}
	ent, ok := b.f.model.Entity(entity)
	if !ok {
		return nil, &PathError{Path: entity, Reason: "unknown entity"}
	}
	return &node{
		source: &core.Source{Alias: alias, Entity: ent.Name, Table: ent.Table, IDColumn: ent.IDColumn()},
		entity: ent,
	}, nil
}

// ---------- binding ----------

// bind resolves every path of e and validates every function call.
func (b *Builder) bind(e core.Expr) (core.Expr, error) {
	out, err := b.bindIn(e, b.scopes)
	if err != nil {
		return nil, err
	}
	if err := b.validate(out); err != nil {
		return nil, err
	}
	return out, nil
}

// bindIn rewrites e against the scopes stack. Correlation functions narrow
// the stack for their argument.
func (b *Builder) bindIn(e core.Expr, scopes []*scope) (core.Expr, error) {
	var fn core.RewriteFunc
	fn = func(e core.Expr) (core.Expr, bool, error) {
		switch n := e.(type) {
		case *core.PathExpr:
			out, err := b.resolvePath(n, scopes)
			return out, true, err
		case *core.ParameterExpr:
			return n, true, b.useParameter(n)
		case *core.FuncCall:
			switch n.Name {
			case fnViewRoot, fnEmbeddingView, fnOuter:
				out, err := b.correlate(n, scopes)
				return out, true, err
			}
			if n.Window != nil && n.Window.Name != "" {
				w, err := b.inlineWindow(n.Name, n.Window)
				if err != nil {
					return nil, true, err
				}
				call := *n
				call.Window = w
				out, err := core.Rewrite(&call, fn)
				return out, true, err
			}
		}
		return nil, false, nil
	}
	return core.Rewrite(e, fn)
}

func (b *Builder) useParameter(p *core.ParameterExpr) error {
	if p.Name != "" {
		b.q.named = true
	} else {
		b.q.positional = true
		b.q.maxPos = max(b.q.maxPos, p.Position)
	}
	if b.q.named && b.q.positional {
		return ErrMixedParameters
	}
	return nil
}

// correlate resolves VIEW_ROOT([path]), EMBEDDING_VIEW([path]) and OUTER(path).
// VIEW_ROOT refers to the outermost query, the other two to the query
// enclosing the current one.
func (b *Builder) correlate(call *core.FuncCall, scopes []*scope) (core.Expr, error) {
	level := len(scopes) - 2
	if call.Name == fnViewRoot {
		level = 0
	}
	text := call.Name + "(" + argText(call.Args) + ")"
	if level < 0 {
		return nil, &PathError{Path: text, Reason: "no enclosing query"}
	}
	outer := scopes[:level+1]

	switch {
	case len(call.Args) == 0 && call.Name != fnOuter:
		sc := outer[level]
		if len(sc.roots) == 0 {
			return nil, &PathError{Path: text, Reason: "enclosing query has no root"}
		}
		return at(sc.roots[0]).bare(text)
	case len(call.Args) == 1:
		p, ok := call.Args[0].(*core.PathExpr)
		if !ok {
			return nil, &PathError{Path: text, Reason: "argument must be a path"}
		}
		return b.resolvePath(p, outer)
	}
	return nil, &PathError{Path: text, Reason: "expects exactly one path argument"}
}

func argText(args []core.Expr) string {
	parts := make([]string, len(args))
	for i, a := range args {
		if p, ok := a.(*core.PathExpr); ok {
			parts[i] = p.String()
		} else {
			parts[i] = "..."
		}
	}
	return strings.Join(parts, ", ")
}

// ---------- paths ----------

// resolvePath binds p against scopes, innermost last.
func (b *Builder) resolvePath(p *core.PathExpr, scopes []*scope) (core.Expr, error) {
	full := p.String()
	c, rest, err := b.locate(p, scopes)
	if err != nil {
		if call := b.constant(p); call != nil {
			return call, nil
		}
		return nil, err
	}
	if len(rest) == 0 {
		return c.bare(full)
	}

	// x.assoc.id reads the foreign key without joining the target.
	if n := len(rest); n >= 2 && c.emb == nil && c.view != nil {
		if c, err := b.descend(c, rest[:n-2], full); err == nil && c.emb == nil && c.view != nil {
			if bp := fkPath(c, rest[n-2], rest[n-1], b.f.model); bp != nil {
				return bp, nil
			}
		} else if err != nil {
			return nil, err
		}
	}

	c, err = b.descend(c, rest[:len(rest)-1], full)
	if err != nil {
		return nil, err
	}
	return b.leaf(c, rest[len(rest)-1], full)
}

// constant returns the call for a bare zero-argument function such as CURRENT_DATE.
func (b *Builder) constant(p *core.PathExpr) core.Expr {
	if p.Root != nil || len(p.Parts) != 1 {
		return nil
	}
	name := strings.ToUpper(p.Parts[0])
	fn, err := b.f.functions.Resolve(name, b.f.dialect)
	if err != nil || fn.HasArguments() {
		return nil
	}
	return &core.FuncCall{Name: name}
}

// locate finds where p starts: the node named by its leading alias or by
// TREAT, or the single root of the innermost query for an unqualified path.
func (b *Builder) locate(p *core.PathExpr, scopes []*scope) (cursor, []string, error) {
	full := p.String()
	if p.Root != nil {
		c, err := b.treat(p.Root, scopes, full)
		return c, p.Parts, err
	}

	first := p.Parts[0]
	for i := len(scopes) - 1; i >= 0; i-- {
		if n := scopes[i].aliases[first]; n != nil {
			return at(n), p.Parts[1:], nil
		}
	}

	sc := scopes[len(scopes)-1]
	if len(sc.roots) == 1 {
		root := sc.roots[0]
		if hasAttribute(root, first) {
			return at(root), p.Parts, nil
		}
	}
	if len(sc.roots) == 0 {
		return cursor{}, nil, ErrNoFrom
	}
	return cursor{}, nil, &PathError{Path: full, Reason: fmt.Sprintf("unknown alias or attribute %q", first)}
}

func hasAttribute(n *node, name string) bool {
	if n.cte != nil {
		_, ok := n.cte.column(name)
		return ok
	}
	_, ok := n.entity.Attribute(name)
	return ok
}

// treat resolves TREAT(path AS Subtype) to a typed view of path's node.
func (b *Builder) treat(t *core.TreatExpr, scopes []*scope, full string) (cursor, error) {
	c, rest, err := b.locate(t.Path, scopes)
	if err != nil {
		return cursor{}, err
	}
	if c, err = b.descend(c, rest, full); err != nil {
		return cursor{}, err
	}
	if c.emb != nil || c.node.entity == nil || len(c.attrs) > 0 {
		return cursor{}, &PathError{Path: full, Reason: "TREAT requires an entity path"}
	}
	sub, ok := b.f.model.Entity(t.Subtype)
	if !ok {
		return cursor{}, &PathError{Path: full, Reason: "unknown entity " + t.Subtype}
	}
	if !sub.IsSubtypeOf(c.node.entity) {
		return cursor{}, &PathError{Path: full, Reason: fmt.Sprintf("%s is not a subtype of %s", sub.Name, c.node.entity.Name)}
	}
	c.view = sub
	c.treat = sub.Name
	return c, nil
}

// descend walks parts, each of which must be embedded or a to-one or
// collection association. Associations are joined implicitly.
func (b *Builder) descend(c cursor, parts []string, full string) (cursor, error) {
	for _, part := range parts {
		if c.emb != nil || c.node.cte != nil {
			return cursor{}, &PathError{Path: full, Reason: fmt.Sprintf("cannot dereference basic attribute %q", part)}
		}
		attr, ok := c.view.Attribute(part)
		if !ok {
			return cursor{}, &PathError{Path: full, Reason: fmt.Sprintf("unknown attribute %q of %s", part, c.view.Name)}
		}
		switch attr.Kind {
		case metamodel.Basic:
			return cursor{}, &PathError{Path: full, Reason: fmt.Sprintf("cannot dereference basic attribute %q", part)}
		case metamodel.Embedded:
			emb, _ := b.f.model.Embeddable(attr.Target)
			c.emb = emb
			c.prefix = attr.ColumnPrefix
			c.attrs = append(slices.Clone(c.attrs), part)
		default:
			c = at(b.implicitJoin(c, attr))
		}
	}
	return c, nil
}

// leaf binds the last attribute of a path.
func (b *Builder) leaf(c cursor, name, full string) (core.Expr, error) {
	if c.node.cte != nil {
		i, ok := c.node.cte.column(name)
		if !ok {
			return nil, &PathError{Path: full, Reason: fmt.Sprintf("unknown column %q of %s", name, c.node.cte.name)}
		}
		return &core.BoundPath{
			Source:     c.node.source,
			Attributes: []string{name},
			Column:     name,
			Type:       c.node.cte.types[i],
			Nullable:   true,
		}, nil
	}

	var attr *metamodel.Attribute
	var ok bool
	if c.emb != nil {
		attr, ok = c.emb.Attribute(name)
	} else {
		attr, ok = c.view.Attribute(name)
	}
	if !ok {
		owner := c.view.Name
		if c.emb != nil {
			owner = c.emb.Name
		}
		return nil, &PathError{Path: full, Reason: fmt.Sprintf("unknown attribute %q of %s", name, owner)}
	}

	bp := &core.BoundPath{
		Source:     c.node.source,
		Treat:      c.treat,
		Attributes: append(slices.Clone(c.attrs), name),
		Column:     c.prefix + attr.Column,
		Type:       attr.Type,
		Nullable:   attr.Nullable || c.nullable,
		Unique:     attr.Unique && c.emb == nil,
	}
	switch attr.Kind {
	case metamodel.Embedded:
		return nil, &PathError{Path: full, Reason: fmt.Sprintf("embeddable %q must be dereferenced", name)}
	case metamodel.ManyToOne, metamodel.OneToOne:
		target, _ := b.f.model.Entity(attr.Target)
		bp.Type = target.IDAttribute().Type
		bp.Unique = false
	case metamodel.OneToMany:
		target, _ := b.f.model.Entity(attr.Target)
		bp.Column = ""
		bp.Type = core.TypeEntity
		bp.Unique = false
		bp.Collection = &core.Join{
			Type:       core.JoinInner,
			Source:     &core.Source{Alias: b.nextAlias(name), Entity: target.Name, Table: target.Table, IDColumn: target.IDColumn()},
			Parent:     c.node.source,
			Attribute:  name,
			FromColumn: c.view.IDColumn(),
			ToColumn:   attr.MappedBy,
		}
	}
	return bp, nil
}

// fkPath binds assoc.id of a to-one association to its foreign key column.
func fkPath(c cursor, assoc, id string, model *metamodel.Model) *core.BoundPath {
	attr, ok := c.view.Attribute(assoc)
	if !ok || (attr.Kind != metamodel.ManyToOne && attr.Kind != metamodel.OneToOne) {
		return nil
	}
	target, _ := model.Entity(attr.Target)
	if target.ID != id {
		return nil
	}
	return &core.BoundPath{
		Source:     c.node.source,
		Treat:      c.treat,
		Attributes: []string{assoc, id},
		Column:     attr.Column,
		Type:       target.IDAttribute().Type,
		Nullable:   attr.Nullable || c.nullable,
	}
}

// ---------- joins ----------

func (b *Builder) nextAlias(attribute string) string {
	b.q.aliasSeq[attribute]++
	return attribute + "_" + strconv.Itoa(b.q.aliasSeq[attribute])
}

// implicitJoin returns the node joined for attr below c, creating a LEFT
// join the first time.
func (b *Builder) implicitJoin(c cursor, attr *metamodel.Attribute) *node {
	if n := c.node.children[attr.Name]; n != nil {
		b.f.logger.Debug("join reused", "parent", c.node.source.Alias, "attribute", attr.Name, "alias", n.source.Alias)
		return n
	}
	return b.addJoin(c, attr, core.JoinLeft, true, b.nextAlias(attr.Name))
}

func (b *Builder) addJoin(c cursor, attr *metamodel.Attribute, typ core.JoinType, implicit bool, alias string) *node {
	target, _ := b.f.model.Entity(attr.Target)
	src := &core.Source{Alias: alias, Entity: target.Name, Table: target.Table, IDColumn: target.IDColumn()}
	j := &core.Join{
		Type:      typ,
		Source:    src,
		Parent:    c.node.source,
		Attribute: attr.Name,
		Implicit:  implicit,
	}
	if attr.Kind == metamodel.OneToMany {
		j.FromColumn = c.view.IDColumn()
		j.ToColumn = attr.MappedBy
	} else {
		j.FromColumn = attr.Column
		j.ToColumn = target.IDColumn()
	}
	n := &node{
		source:   src,
		entity:   target,
		item:     c.node.item,
		join:     j,
		nullable: c.nullable || typ != core.JoinInner,
	}
	if c.node.children == nil {
		c.node.children = make(map[string]*node)
	}
	c.node.children[attr.Name] = n
	n.item.Joins = append(n.item.Joins, j)
	b.f.logger.Debug("join created",
		"parent", c.node.source.Alias, "attribute", attr.Name, "alias", alias,
		"type", string(typ), "implicit", implicit)
	return n
}

// explicitJoin joins the association p ends in under alias. A path that is
// already joined implicitly is upgraded in place: it keeps its node and
// Source, so paths bound earlier print the new alias.
func (b *Builder) explicitJoin(p *core.PathExpr, alias string, typ core.JoinType) (*node, error) {
	full := p.String()
	if len(p.Parts) == 0 {
		return nil, &PathError{Path: full, Reason: "join target must be an association"}
	}
	head := &core.PathExpr{Root: p.Root, Parts: p.Parts[:len(p.Parts)-1]}
	var c cursor
	var rest []string
	var err error
	if head.Root == nil && len(head.Parts) == 0 {
		sc := b.sc
		if len(sc.roots) != 1 {
			return nil, &PathError{Path: full, Reason: "unqualified join path needs a single root"}
		}
		c = at(sc.roots[0])
	} else {
		if c, rest, err = b.locate(head, b.scopes); err != nil {
			return nil, err
		}
		if c, err = b.descend(c, rest, full); err != nil {
			return nil, err
		}
	}
	if c.emb != nil || c.view == nil {
		return nil, &PathError{Path: full, Reason: "join target must be an association"}
	}

	name := p.Parts[len(p.Parts)-1]
	attr, ok := c.view.Attribute(name)
	if !ok {
		return nil, &PathError{Path: full, Reason: fmt.Sprintf("unknown attribute %q of %s", name, c.view.Name)}
	}
	if !attr.Kind.IsAssociation() {
		return nil, &PathError{Path: full, Reason: fmt.Sprintf("attribute %q is not an association", name)}
	}

	if n := c.node.children[name]; n != nil {
		if !n.join.Implicit {
			return nil, &PathError{Path: full, Reason: "association is already joined as " + n.source.Alias}
		}
		b.f.logger.Debug("implicit join upgraded", "from", n.source.Alias, "to", alias, "type", string(typ))
		n.source.Alias = alias
		n.join.Type = typ
		n.join.Implicit = false
		n.nullable = c.nullable || typ != core.JoinInner
		return n, nil
	}
	return b.addJoin(c, attr, typ, false, alias), nil
}

// ---------- windows ----------

// inlineWindow merges the named window w extends into a copy of w.
func (b *Builder) inlineWindow(owner string, w *core.WindowSpec) (*core.WindowSpec, error) {
	base := b.lookupWindow(w.Name)
	if base == nil {
		return nil, &PathError{Path: w.Name, Reason: "unknown window"}
	}
	out := &core.WindowSpec{PartitionBy: base.PartitionBy, OrderBy: base.OrderBy, Frame: base.Frame}
	if len(w.PartitionBy) > 0 {
		if len(base.PartitionBy) > 0 {
			return nil, &function.ConfigurationError{Function: owner, Reason: "window " + w.Name + " already defines PARTITION BY"}
		}
		out.PartitionBy = w.PartitionBy
	}
	if len(w.OrderBy) > 0 {
		if len(base.OrderBy) > 0 {
			return nil, &function.ConfigurationError{Function: owner, Reason: "window " + w.Name + " already defines ORDER BY"}
		}
		out.OrderBy = w.OrderBy
	}
	if w.Frame != nil {
		out.Frame = w.Frame
	}
	return out, nil
}

func (b *Builder) lookupWindow(name string) *core.WindowSpec {
	for x := b; x != nil; x = x.parent {
		if w := x.windows[name]; w != nil {
			return w
		}
	}
	return nil
}

// bindWindow binds the expressions of a window declaration.
func (b *Builder) bindWindow(w *core.WindowSpec) (*core.WindowSpec, error) {
	holder := &core.FuncCall{Window: w}
	out, err := b.bindIn(holder, b.scopes)
	if err != nil {
		return nil, err
	}
	bound := out.(*core.FuncCall).Window
	exprs := slices.Clone(bound.PartitionBy)
	for _, o := range bound.OrderBy {
		exprs = append(exprs, o.Expr)
	}
	for _, e := range exprs {
		if err := b.validate(e); err != nil {
			return nil, err
		}
	}
	return bound, nil
}

// ---------- validation ----------

// validate trial-renders every function call of e so that unknown functions,
// wrong argument counts and unsupported dialect features are reported when
// the expression is added.
func (b *Builder) validate(e core.Expr) error {
	var err error
	core.Walk(e, func(n core.Expr) bool {
		call, ok := n.(*core.FuncCall)
		if !ok || err != nil {
			return err == nil
		}
		err = b.checkCall(call)
		return err == nil
	})
	return err
}

func (b *Builder) checkCall(c *core.FuncCall) error {
	d := b.f.dialect
	name := c.Name
	var opts []function.ContextOption
	if c.Distinct {
		opts = append(opts, function.WithDistinct())
	}
	if c.Filter != nil {
		opts = append(opts, function.WithFilter("?"))
	}
	if c.Window != nil {
		if !d.SupportsWindowFunctions {
			return &function.ConfigurationError{Function: name, Dialect: d.Name, Reason: "window functions are not supported"}
		}
		w := &function.Window{}
		for range c.Window.PartitionBy {
			w.PartitionBy = append(w.PartitionBy, "?")
		}
		for _, o := range c.Window.OrderBy {
			w.OrderBy = append(w.OrderBy, function.WindowOrder{Expr: "?", Desc: o.Desc, Nulls: o.Nulls})
		}
		opts = append(opts, function.WithWindow(w))
	}
	if c.Windowed() {
		name = function.WindowPrefix + name
	}

	fn, err := b.f.functions.Resolve(name, d)
	if err != nil {
		return err
	}
	args := make([]string, len(c.Args))
	for i := range args {
		args[i] = "?" + strconv.Itoa(i+1)
		// Template functions that read a literal argument (ALIAS, date units)
		// get the literal text.
		if l, ok := c.Args[i].(*core.Literal); ok && l.Kind == core.LiteralString {
			args[i] = "'" + l.Text + "'"
		}
	}
	_, err = function.Render(fn, function.NewContext(name, args, opts...))
	return err
}

// typeOf computes the static type of a bound expression.
func (b *Builder) typeOf(e core.Expr) core.Type {
	switch n := e.(type) {
	case *core.BoundPath:
		return n.Type
	case *core.ParenExpr:
		return b.typeOf(n.Expr)
	case *core.Literal:
		switch n.Kind {
		case core.LiteralString:
			return core.TypeString
		case core.LiteralBoolean:
			return core.TypeBoolean
		case core.LiteralNumber:
			if strings.ContainsAny(n.Text, ".eE") {
				return core.TypeDouble
			}
			return core.TypeLong
		}
	case *core.FuncCall:
		name := n.Name
		if n.Windowed() {
			name = function.WindowPrefix + name
		}
		fn, err := b.f.functions.Resolve(name, b.f.dialect)
		if err != nil {
			return core.TypeUnknown
		}
		first := core.TypeUnknown
		if len(n.Args) > 0 {
			first = b.typeOf(n.Args[0])
		}
		return fn.ReturnType(first)
	case *core.CaseExpr:
		if len(n.Whens) > 0 {
			return b.typeOf(n.Whens[0].Result)
		}
	case *core.BinaryExpr:
		switch n.Op {
		case token.PLUS, token.MINUS, token.STAR, token.SLASH:
			return b.typeOf(n.Left)
		case token.DPIPE:
			return core.TypeString
		}
		return core.TypeBoolean
	case *core.SubqueryExpr:
		if len(n.Query.Select) > 0 {
			return b.typeOf(n.Query.Select[0].Expr)
		}
	case *core.IsNullExpr, *core.InExpr, *core.BetweenExpr, *core.LikeExpr,
		*core.ExistsExpr, *core.IsEmptyExpr, *core.MemberOfExpr:
		return core.TypeBoolean
	}
	return core.TypeUnknown
}
