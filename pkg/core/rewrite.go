package core

// RewriteFunc is called for every node in pre-order. When handled is true the
// returned expression replaces the node and its children are not visited.
type RewriteFunc func(e Expr) (out Expr, handled bool, err error)

// Rewrite returns a copy of e with nodes replaced by fn. Nodes whose subtree is
// unchanged are shared with the input; the input is never modified.
// Subquery bodies are not entered: they are owned by their own query.
func Rewrite(e Expr, fn RewriteFunc) (Expr, error) {
	if e == nil {
		return nil, nil
	}
	out, handled, err := fn(e)
	if err != nil {
		return nil, err
	}
	if handled {
		return out, nil
	}
	r := rewriter{fn: fn}
	res := r.children(e)
	if r.err != nil {
		return nil, r.err
	}
	return res, nil
}

type rewriter struct {
	fn  RewriteFunc
	err error
}

func (r *rewriter) one(e Expr) (Expr, bool) {
	if r.err != nil || e == nil {
		return e, false
	}
	out, err := Rewrite(e, r.fn)
	if err != nil {
		r.err = err
		return e, false
	}
	return out, out != e
}

func (r *rewriter) list(in []Expr) ([]Expr, bool) {
	var out []Expr
	for i, e := range in {
		ne, changed := r.one(e)
		if changed && out == nil {
			out = make([]Expr, len(in))
			copy(out, in[:i])
		}
		if out != nil {
			out[i] = ne
		}
	}
	if out == nil {
		return in, false
	}
	return out, true
}

func (r *rewriter) window(w *WindowSpec) (*WindowSpec, bool) {
	if w == nil {
		return nil, false
	}
	parts, c1 := r.list(w.PartitionBy)
	orders, c2 := r.orderBy(w.OrderBy)
	frame, c3 := w.Frame, false
	if w.Frame != nil {
		start, s := r.bound(w.Frame.Start)
		end, e := r.bound(w.Frame.End)
		if s || e {
			frame = &FrameSpec{Type: w.Frame.Type, Start: start, End: end}
			c3 = true
		}
	}
	if !c1 && !c2 && !c3 {
		return w, false
	}
	return &WindowSpec{Name: w.Name, PartitionBy: parts, OrderBy: orders, Frame: frame}, true
}

func (r *rewriter) bound(b *FrameBound) (*FrameBound, bool) {
	if b == nil || b.Offset == nil {
		return b, false
	}
	off, changed := r.one(b.Offset)
	if !changed {
		return b, false
	}
	return &FrameBound{Type: b.Type, Offset: off}, true
}

func (r *rewriter) orderBy(in []OrderByItem) ([]OrderByItem, bool) {
	var out []OrderByItem
	for i, o := range in {
		ne, changed := r.one(o.Expr)
		if changed && out == nil {
			out = make([]OrderByItem, len(in))
			copy(out, in[:i])
		}
		if out != nil {
			o.Expr = ne
			out[i] = o
		}
	}
	if out == nil {
		return in, false
	}
	return out, true
}

//nolint:gocyclo // one case per node type
func (r *rewriter) children(e Expr) Expr {
	switch n := e.(type) {
	case *BinaryExpr:
		l, c1 := r.one(n.Left)
		rt, c2 := r.one(n.Right)
		if c1 || c2 {
			return &BinaryExpr{Left: l, Op: n.Op, Right: rt}
		}
	case *UnaryExpr:
		if x, c := r.one(n.Expr); c {
			return &UnaryExpr{Op: n.Op, Expr: x}
		}
	case *ParenExpr:
		if x, c := r.one(n.Expr); c {
			return &ParenExpr{Expr: x}
		}
	case *IsNullExpr:
		if x, c := r.one(n.Expr); c {
			return &IsNullExpr{Expr: x, Not: n.Not}
		}
	case *IsEmptyExpr:
		if x, c := r.one(n.Expr); c {
			return &IsEmptyExpr{Expr: x, Not: n.Not}
		}
	case *MemberOfExpr:
		v, c1 := r.one(n.Value)
		col, c2 := r.one(n.Collection)
		if c1 || c2 {
			return &MemberOfExpr{Value: v, Collection: col, Not: n.Not}
		}
	case *InExpr:
		x, c1 := r.one(n.Expr)
		vals, c2 := r.list(n.Values)
		if c1 || c2 {
			return &InExpr{Expr: x, Not: n.Not, Values: vals, Subquery: n.Subquery}
		}
	case *BetweenExpr:
		x, c1 := r.one(n.Expr)
		lo, c2 := r.one(n.Low)
		hi, c3 := r.one(n.High)
		if c1 || c2 || c3 {
			return &BetweenExpr{Expr: x, Not: n.Not, Low: lo, High: hi}
		}
	case *LikeExpr:
		x, c1 := r.one(n.Expr)
		p, c2 := r.one(n.Pattern)
		esc, c3 := r.one(n.Escape)
		if c1 || c2 || c3 {
			return &LikeExpr{Expr: x, Not: n.Not, Pattern: p, Escape: esc}
		}
	case *FuncCall:
		args, c1 := r.list(n.Args)
		filter, c2 := r.one(n.Filter)
		win, c3 := r.window(n.Window)
		if c1 || c2 || c3 {
			return &FuncCall{Name: n.Name, Args: args, Distinct: n.Distinct, Filter: filter, Window: win}
		}
	case *TupleExpr:
		if items, c := r.list(n.Items); c {
			return &TupleExpr{Items: items}
		}
	case *CaseExpr:
		op, changed := r.one(n.Operand)
		whens, copied := n.Whens, false
		for i, w := range n.Whens {
			cond, c1 := r.one(w.Condition)
			res, c2 := r.one(w.Result)
			if c1 || c2 {
				if !copied {
					whens = append([]WhenClause(nil), n.Whens...)
					copied = true
				}
				whens[i] = WhenClause{Condition: cond, Result: res}
			}
		}
		els, c := r.one(n.Else)
		if changed || copied || c {
			return &CaseExpr{Operand: op, Whens: whens, Else: els}
		}
	}
	return e
}

// Walk calls fn for every node in pre-order. Returning false skips the node's children.
// Like Rewrite, Walk does not enter subquery bodies.
func Walk(e Expr, fn func(Expr) bool) {
	_, _ = Rewrite(e, func(n Expr) (Expr, bool, error) {
		return n, !fn(n), nil
	})
}
