package render

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapquery/pkg/core"
	"github.com/leapstack-labs/leapquery/pkg/function"
	"github.com/leapstack-labs/leapquery/pkg/token"
)

// Binding strength used to decide where parentheses are required.
const (
	precLowest = iota
	precOr
	precAnd
	precNot
	precCompare
	precAdd
	precMul
	precUnary
	precAtom
)

// precArg is the minimum strength of an argument handed to a SQL function
// renderer. Templates splice arguments into arithmetic, so anything looser
// than a product is parenthesized.
const precArg = precMul

func precedence(e core.Expr) int {
	switch n := e.(type) {
	case *core.BinaryExpr:
		switch n.Op {
		case token.OR:
			return precOr
		case token.AND:
			return precAnd
		case token.PLUS, token.MINUS, token.DPIPE:
			return precAdd
		case token.STAR, token.SLASH:
			return precMul
		}
		return precCompare
	case *core.UnaryExpr:
		if n.Op == token.NOT {
			return precNot
		}
		return precUnary
	case *core.IsNullExpr, *core.InExpr, *core.BetweenExpr, *core.LikeExpr,
		*core.IsEmptyExpr, *core.MemberOfExpr:
		return precCompare
	}
	return precAtom
}

//nolint:gocyclo // one case per node type
func (p *Printer) expr(e core.Expr) {
	if e == nil {
		return
	}

	switch n := e.(type) {
	case *core.Literal:
		p.literal(n)
	case *core.ParameterExpr:
		p.param(n)
	case *core.PathExpr:
		p.unboundPath(n)
	case *core.BoundPath:
		p.path(n)
	case *core.BinaryExpr:
		p.binary(n)
	case *core.UnaryExpr:
		p.unary(n)
	case *core.ParenExpr:
		p.write("(")
		p.expr(n.Expr)
		p.write(")")
	case *core.IsNullExpr:
		p.operand(n.Expr, precAdd)
		if n.Not {
			p.write(" IS NOT NULL")
		} else {
			p.write(" IS NULL")
		}
	case *core.InExpr:
		p.in(n)
	case *core.BetweenExpr:
		p.operand(n.Expr, precAdd)
		p.write(not(n.Not) + " BETWEEN ")
		p.operand(n.Low, precAdd)
		p.write(" AND ")
		p.operand(n.High, precAdd)
	case *core.LikeExpr:
		p.operand(n.Expr, precAdd)
		p.write(not(n.Not) + " LIKE ")
		p.operand(n.Pattern, precAdd)
		if n.Escape != nil {
			p.write(" ESCAPE ")
			p.expr(n.Escape)
		}
	case *core.ExistsExpr:
		if n.Not {
			p.write("NOT ")
		}
		p.write("EXISTS ")
		p.subquery(n.Subquery)
	case *core.IsEmptyExpr:
		p.isEmpty(n)
	case *core.MemberOfExpr:
		p.memberOf(n)
	case *core.FuncCall:
		if p.sql() {
			p.sqlCall(n)
		} else {
			p.jpqlCall(n)
		}
	case *core.SubqueryExpr:
		p.subquery(n)
	case *core.TupleExpr:
		p.write("(")
		p.exprList(n.Items)
		p.write(")")
	case *core.CaseExpr:
		p.caseExpr(n)
	case *core.StarExpr:
		p.write("*")
	default:
		p.fail(fmt.Errorf("unsupported expression %T", e))
	}
}

// operand prints e, parenthesized when it binds looser than minPrec.
func (p *Printer) operand(e core.Expr, minPrec int) {
	if precedence(e) < minPrec {
		p.write("(")
		p.expr(e)
		p.write(")")
		return
	}
	p.expr(e)
}

func (p *Printer) exprList(list []core.Expr) {
	p.formatList(len(list), func(i int) { p.expr(list[i]) }, ", ")
}

func not(negated bool) string {
	if negated {
		return " NOT"
	}
	return ""
}

func (p *Printer) literal(l *core.Literal) {
	if l.Kind == core.LiteralString {
		p.write("'" + strings.ReplaceAll(l.Text, "'", "''") + "'")
		return
	}
	p.write(l.Text)
}

func (p *Printer) unboundPath(e *core.PathExpr) {
	if p.sql() {
		p.fail(fmt.Errorf("unresolved path %s", e))
		return
	}
	p.write(e.String())
}

func (p *Printer) path(b *core.BoundPath) {
	alias := p.ident(b.Source.Alias)
	if p.sql() {
		switch {
		case len(b.Attributes) == 0 && b.Source.IDColumn != "":
			p.write(alias + "." + p.ident(b.Source.IDColumn))
		case len(b.Attributes) == 0:
			p.write(alias)
		case b.Column == "":
			p.fail(fmt.Errorf("path %s.%s has no column, collections must be joined",
				b.Source.Alias, strings.Join(b.Attributes, ".")))
		default:
			p.write(alias + "." + p.ident(b.Column))
		}
		return
	}

	if b.Treat != "" {
		p.write("TREAT(" + alias + " AS " + b.Treat + ")")
	} else {
		p.write(alias)
	}
	for _, a := range b.Attributes {
		p.write("." + a)
	}
}

func (p *Printer) binary(e *core.BinaryExpr) {
	if e.Op == token.DPIPE && p.sql() {
		p.callExprs("CONCAT", flattenConcat(e, nil), nil)
		return
	}

	prec := precedence(e)
	right := prec + 1
	if e.Op == token.AND || e.Op == token.OR {
		right = prec
	}
	left := prec
	if prec == precCompare {
		left = prec + 1
	}

	p.operand(e.Left, left)
	p.space()
	p.kw(e.Op)
	p.space()
	p.operand(e.Right, right)
}

func flattenConcat(e core.Expr, out []core.Expr) []core.Expr {
	if b, ok := e.(*core.BinaryExpr); ok && b.Op == token.DPIPE {
		out = flattenConcat(b.Left, out)
		return flattenConcat(b.Right, out)
	}
	return append(out, e)
}

func (p *Printer) unary(e *core.UnaryExpr) {
	if e.Op == token.NOT {
		p.write("NOT ")
		p.operand(e.Expr, precNot)
		return
	}
	p.kw(e.Op)
	p.operand(e.Expr, precUnary)
}

func (p *Printer) in(e *core.InExpr) {
	if e.Subquery == nil && len(e.Values) == 0 {
		// Nothing is IN an empty list, everything is NOT IN it.
		if e.Not {
			p.write("1 = 1")
		} else {
			p.write("1 = 0")
		}
		return
	}

	p.operand(e.Expr, precAdd)
	p.write(not(e.Not) + " IN ")
	if e.Subquery != nil {
		p.subquery(e.Subquery)
		return
	}
	p.write("(")
	p.exprList(e.Values)
	p.write(")")
}

func (p *Printer) isEmpty(e *core.IsEmptyExpr) {
	if !p.sql() {
		p.operand(e.Expr, precAdd)
		if e.Not {
			p.write(" IS NOT EMPTY")
		} else {
			p.write(" IS EMPTY")
		}
		return
	}
	p.collectionExists("IS EMPTY", e.Expr, nil, !e.Not)
}

func (p *Printer) memberOf(e *core.MemberOfExpr) {
	if !p.sql() {
		p.operand(e.Value, precAdd)
		p.write(not(e.Not) + " MEMBER OF ")
		p.expr(e.Collection)
		return
	}
	p.collectionExists("MEMBER OF", e.Collection, e.Value, e.Not)
}

// collectionExists prints a collection predicate as a correlated EXISTS over
// the collection's table, optionally restricted to one element.
func (p *Printer) collectionExists(what string, collection, element core.Expr, negate bool) {
	b, ok := collection.(*core.BoundPath)
	if !ok || b.Collection == nil {
		p.fail(fmt.Errorf("%s requires a collection valued path", what))
		return
	}
	j := b.Collection
	alias := p.ident(j.Source.Alias)

	if negate {
		p.write("NOT ")
	}
	p.write("EXISTS (SELECT 1 FROM " + p.ident(j.Source.Table) + " " + alias)
	p.write(" WHERE " + alias + "." + p.ident(j.ToColumn) + " = ")
	p.write(p.ident(j.Parent.Alias) + "." + p.ident(j.FromColumn))
	if element != nil {
		p.write(" AND " + alias + "." + p.ident(j.Source.IDColumn) + " = ")
		p.operand(element, precAdd)
	}
	p.write(")")
}

func (p *Printer) subquery(s *core.SubqueryExpr) {
	p.write("(")
	p.query(s.Query)
	p.write(")")
}

func (p *Printer) caseExpr(c *core.CaseExpr) {
	p.write("CASE")
	if c.Operand != nil {
		p.space()
		p.expr(c.Operand)
	}
	for _, w := range c.Whens {
		p.write(" WHEN ")
		p.expr(w.Condition)
		p.write(" THEN ")
		p.expr(w.Result)
	}
	if c.Else != nil {
		p.write(" ELSE ")
		p.expr(c.Else)
	}
	p.write(" END")
}

// ---------- Function calls ----------

func (p *Printer) jpqlCall(c *core.FuncCall) {
	if len(c.Args) == 0 && !c.Windowed() && p.keywordFunction(c.Name) {
		p.write(c.Name)
		return
	}

	p.write(c.Name + "(")
	if c.Distinct {
		p.write("DISTINCT ")
	}
	if len(c.Args) == 0 && c.Name == "COUNT" {
		p.write("*")
	}
	p.exprList(c.Args)
	p.write(")")

	if c.Filter != nil {
		p.write(" FILTER (WHERE ")
		p.expr(c.Filter)
		p.write(")")
	}
	if c.Window != nil {
		p.write(" OVER ")
		p.jpqlWindow(c.Window)
	}
}

// keywordFunction reports whether a zero-argument function prints as its bare
// name (CURRENT_DATE) rather than NAME().
func (p *Printer) keywordFunction(name string) bool {
	if p.functions == nil {
		return false
	}
	fn, err := p.functions.Resolve(name, nil)
	if err != nil || fn.HasArguments() || fn.HasParenthesesIfNoArguments() {
		return false
	}
	out, err := function.Render(fn, function.NewContext(name, nil))
	return err == nil && out == name
}

func (p *Printer) jpqlWindow(w *core.WindowSpec) {
	if w.Name != "" && len(w.PartitionBy) == 0 && len(w.OrderBy) == 0 && w.Frame == nil {
		p.write(w.Name)
		return
	}

	var parts []string
	if w.Name != "" {
		parts = append(parts, w.Name)
	}
	if len(w.PartitionBy) > 0 {
		parts = append(parts, "PARTITION BY "+p.capture(func() { p.exprList(w.PartitionBy) }))
	}
	if len(w.OrderBy) > 0 {
		parts = append(parts, "ORDER BY "+p.capture(func() { p.orderItems(w.OrderBy) }))
	}
	if w.Frame != nil {
		parts = append(parts, p.frame(w.Frame))
	}
	p.write("(" + strings.Join(parts, " ") + ")")
}

func (p *Printer) frame(f *core.FrameSpec) string {
	if f.End == nil {
		return string(f.Type) + " " + p.frameBound(f.Start)
	}
	return string(f.Type) + " BETWEEN " + p.frameBound(f.Start) + " AND " + p.frameBound(f.End)
}

func (p *Printer) frameBound(b *core.FrameBound) string {
	if b.Offset == nil {
		return string(b.Type)
	}
	return p.capture(func() { p.operand(b.Offset, precAdd) }) + " " + string(b.Type)
}

func (p *Printer) sqlCall(c *core.FuncCall) {
	var opts []function.ContextOption
	if c.Distinct {
		opts = append(opts, function.WithDistinct())
	}
	if c.Filter != nil {
		opts = append(opts, function.WithFilter(p.capture(func() { p.expr(c.Filter) })))
	}
	if c.Window != nil {
		opts = append(opts, function.WithWindow(p.sqlWindow(c.Window)))
	}

	name := c.Name
	if c.Windowed() {
		name = function.WindowPrefix + name
	}
	p.callExprs(name, c.Args, opts)
}

// callExprs renders each argument on its own and hands the texts to the
// function resolved for the dialect.
func (p *Printer) callExprs(name string, args []core.Expr, opts []function.ContextOption) {
	fn, err := p.functions.Resolve(name, p.dialect)
	if err != nil {
		p.fail(err)
		return
	}

	texts := make([]string, len(args))
	for i, a := range args {
		texts[i] = p.capture(func() { p.operand(a, precArg) })
	}

	out, err := function.Render(fn, function.NewContext(name, texts, opts...))
	if err != nil {
		p.fail(err)
		return
	}
	p.write(out)
}

func (p *Printer) sqlWindow(w *core.WindowSpec) *function.Window {
	out := &function.Window{Base: w.Name}
	for _, e := range w.PartitionBy {
		out.PartitionBy = append(out.PartitionBy, p.capture(func() { p.expr(e) }))
	}
	for _, o := range w.OrderBy {
		out.OrderBy = append(out.OrderBy, function.WindowOrder{
			Expr:  p.capture(func() { p.expr(o.Expr) }),
			Desc:  o.Desc,
			Nulls: o.Nulls,
		})
	}
	if w.Frame != nil {
		out.Frame = p.frame(w.Frame)
	}
	return out
}
