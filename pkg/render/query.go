package render

import (
	"strings"

	"github.com/leapstack-labs/leapquery/pkg/core"
	"github.com/leapstack-labs/leapquery/pkg/dialect"
)

// query prints q clause by clause:
// WITH, SELECT, FROM, WHERE, GROUP BY, HAVING, set operations, ORDER BY and,
// in SQL mode, the row limiting clause.
func (p *Printer) query(q *core.SelectQuery) {
	if len(q.With) > 0 {
		p.with(q.With)
	}
	p.body(q)

	for _, op := range q.SetOps {
		p.space()
		if p.sql() {
			if err := p.dialect.AppendSet(p.output, op.Op, op.All); err != nil {
				p.fail(err)
				return
			}
		} else {
			p.write(string(op.Op))
			if op.All {
				p.write(" ALL")
			}
		}
		p.space()
		p.setOperand(op.Query)
	}

	if len(q.OrderBy) > 0 {
		p.write(" ORDER BY ")
		items := q.OrderBy
		if p.sql() {
			items = ExpandNullPrecedence(items, p.dialect)
		}
		p.orderItems(items)
	}

	if p.sql() {
		p.dialect.AppendPagination(p.output, q.FirstResult, q.MaxResults)
	}
}

func (p *Printer) with(ctes []*core.CTE) {
	p.write("WITH ")
	recursive := false
	for _, c := range ctes {
		recursive = recursive || c.Recursive
	}
	if recursive && (!p.sql() || p.dialect.RequiresRecursiveKeyword) {
		p.write("RECURSIVE ")
	}
	p.formatList(len(ctes), func(i int) {
		c := ctes[i]
		p.write(p.ident(c.Name))
		if len(c.Columns) > 0 {
			cols := make([]string, len(c.Columns))
			for j, col := range c.Columns {
				cols[j] = p.ident(col)
			}
			p.write("(" + strings.Join(cols, ", ") + ")")
		}
		p.write(" AS (")
		p.query(c.Query)
		p.write(")")
	}, ", ")
	p.space()
}

// body prints SELECT through HAVING.
func (p *Printer) body(q *core.SelectQuery) {
	p.write("SELECT ")
	if q.Distinct {
		p.write("DISTINCT ")
	}
	p.selectItems(q)

	p.write(" FROM ")
	p.formatList(len(q.From), func(i int) { p.fromItem(q.From[i]) }, ", ")

	if q.Where != nil {
		p.write(" WHERE ")
		p.expr(q.Where)
	}
	if len(q.GroupBy) > 0 {
		p.write(" GROUP BY ")
		p.exprList(q.GroupBy)
	}
	if q.Having != nil {
		p.write(" HAVING ")
		p.expr(q.Having)
	}
}

func (p *Printer) selectItems(q *core.SelectQuery) {
	if len(q.Select) == 0 {
		// The first root is the implicit projection.
		if len(q.From) > 0 {
			alias := p.ident(q.From[0].Source.Alias)
			if p.sql() {
				alias += ".*"
			}
			p.write(alias)
		}
		return
	}
	p.formatList(len(q.Select), func(i int) {
		item := q.Select[i]
		p.expr(item.Expr)
		if item.Alias != "" {
			p.write(" AS " + p.ident(item.Alias))
		}
	}, ", ")
}

// setOperand prints the right side of a set operation. Operands carrying
// their own ORDER BY or row limit are parenthesized.
func (p *Printer) setOperand(q *core.SelectQuery) {
	own := len(q.OrderBy) > 0 || (p.sql() && (q.FirstResult > 0 || q.MaxResults > 0))
	if own {
		p.write("(")
	}
	p.query(q)
	if own {
		p.write(")")
	}
}

func (p *Printer) fromItem(f *core.FromItem) {
	p.source(f.Source)
	for _, j := range f.Joins {
		p.join(j)
	}
}

func (p *Printer) source(s *core.Source) {
	if p.sql() {
		p.write(p.ident(s.Table) + " " + p.ident(s.Alias))
		return
	}
	p.write(s.Entity + " " + s.Alias)
}

func (p *Printer) join(j *core.Join) {
	p.write(" " + string(j.Type) + " JOIN ")

	if j.Parent == nil {
		// Entity join.
		p.source(j.Source)
		if j.On != nil {
			p.write(" ON ")
			p.expr(j.On)
		}
		return
	}

	if !p.sql() {
		p.write(j.Parent.Alias + "." + j.Attribute + " " + j.Source.Alias)
		if j.On != nil {
			p.write(" ON ")
			p.expr(j.On)
		}
		return
	}

	alias := p.ident(j.Source.Alias)
	p.write(p.ident(j.Source.Table) + " " + alias)
	p.write(" ON " + alias + "." + p.ident(j.ToColumn) + " = ")
	p.write(p.ident(j.Parent.Alias) + "." + p.ident(j.FromColumn))
	if j.On != nil {
		p.write(" AND ")
		p.operand(j.On, precNot)
	}
}

func (p *Printer) orderItems(items []core.OrderByItem) {
	p.formatList(len(items), func(i int) {
		o := items[i]
		p.expr(o.Expr)
		if o.Desc {
			p.write(" DESC")
		}
		if o.Nulls != core.NullsDefault && !o.Synthetic {
			p.write(" " + o.Nulls.String())
		}
	}, ", ")
}

// ExpandNullPrecedence prepares ORDER BY items for a dialect. Without native
// NULLS FIRST/LAST, an item whose requested placement differs from the
// dialect's default gets a synthetic CASE WHEN resolver item in front of it
// and its own precedence cleared.
func ExpandNullPrecedence(items []core.OrderByItem, d *dialect.Dialect) []core.OrderByItem {
	if d.SupportsNullPrecedence {
		return items
	}
	out := make([]core.OrderByItem, 0, len(items))
	for _, o := range items {
		if o.Nulls == core.NullsDefault || o.Synthetic {
			out = append(out, o)
			continue
		}
		nullsFirst := o.Nulls == core.NullsFirst
		if nullsFirst != d.DefaultNullsFirst(o.Desc) {
			out = append(out, NullResolver(o.Expr, nullsFirst))
		}
		o.Nulls = core.NullsDefault
		out = append(out, o)
	}
	return out
}

// NullResolver returns the ascending synthetic item that sorts the NULLs of
// e first or last.
func NullResolver(e core.Expr, nullsFirst bool) core.OrderByItem {
	isNull, notNull := core.NumberLiteral("1"), core.NumberLiteral("0")
	if nullsFirst {
		isNull, notNull = notNull, isNull
	}
	return core.OrderByItem{
		Expr: &core.CaseExpr{
			Whens: []core.WhenClause{{Condition: &core.IsNullExpr{Expr: e}, Result: isNull}},
			Else:  notNull,
		},
		Synthetic: true,
	}
}
