package keyset

import (
	"strconv"

	"github.com/leapstack-labs/leapquery/pkg/core"
	"github.com/leapstack-labs/leapquery/pkg/token"
)

// ParamPrefix names the parameters a predicate binds: _keyset_0, _keyset_1...
const ParamPrefix = "_keyset_"

// Column is one ORDER BY item as seen by the predicate.
type Column struct {
	Expr       core.Expr
	Desc       bool
	NullsFirst bool // effective placement, explicit or the dialect default
	Nullable   bool
}

// ColumnsOf derives predicate columns from ORDER BY items, skipping synthetic
// null resolvers.
func ColumnsOf(items []core.OrderByItem, nullSmallest bool) []Column {
	cols := make([]Column, 0, len(items))
	for _, o := range items {
		if o.Synthetic {
			continue
		}
		cols = append(cols, Column{
			Expr:       o.Expr,
			Desc:       o.Desc,
			NullsFirst: o.EffectiveNullsFirst(nullSmallest),
			Nullable:   core.IsNullable(o.Expr),
		})
	}
	return cols
}

// ParamName returns the parameter bound to the i-th keyset value.
func ParamName(i int) string {
	return ParamPrefix + strconv.Itoa(i)
}

// Predicate builds the condition selecting the rows that follow (Next),
// precede (Previous) or follow-and-include (Same) the keyset:
//
//	c1 > :_keyset_0 OR (c1 = :_keyset_0 AND c2 > :_keyset_1) ...
//
// Each comparison flips for descending columns and for Previous. NULL values
// and nullable columns get IS [NOT] NULL terms according to the effective null
// placement. Non-null values are returned as parameter bindings; NULLs are
// never bound.
func Predicate(cols []Column, ks Keyset, mode Mode) (core.Expr, map[string]any, error) {
	if len(ks) != len(cols) {
		return nil, nil, &ShapeMismatchError{Expected: len(cols), Got: len(ks)}
	}

	params := make(map[string]any)
	value := func(i int) core.Expr {
		params[ParamName(i)] = ks[i]
		return &core.ParameterExpr{Name: ParamName(i)}
	}

	var disjuncts []core.Expr
	var prefix []core.Expr
	for i, c := range cols {
		if after := afterTerm(c, ks[i], mode, value, i); after != nil {
			disjuncts = append(disjuncts, group(core.And(append(append([]core.Expr(nil), prefix...), after)...)))
		}
		prefix = append(prefix, equalTerm(c, ks[i], value, i))
	}
	if mode == Same {
		disjuncts = append(disjuncts, group(core.And(prefix...)))
	}

	if len(disjuncts) == 0 {
		return &core.BinaryExpr{Left: core.NumberLiteral("1"), Op: token.EQ, Right: core.NumberLiteral("0")}, params, nil
	}
	return core.Or(disjuncts...), params, nil
}

// afterTerm is the condition for c to sort strictly after v in the direction
// of travel, or nil when nothing can.
func afterTerm(c Column, v any, mode Mode, value func(int) core.Expr, i int) core.Expr {
	backwards := mode == Previous
	nullsAhead := c.NullsFirst == backwards

	if v == nil {
		if nullsAhead {
			return nil
		}
		return &core.IsNullExpr{Expr: c.Expr, Not: true}
	}

	op := token.GT
	if c.Desc != backwards {
		op = token.LT
	}
	cmp := &core.BinaryExpr{Left: c.Expr, Op: op, Right: value(i)}
	if nullsAhead && c.Nullable {
		return &core.ParenExpr{Expr: core.Or(cmp, &core.IsNullExpr{Expr: c.Expr})}
	}
	return cmp
}

func equalTerm(c Column, v any, value func(int) core.Expr, i int) core.Expr {
	if v == nil {
		return &core.IsNullExpr{Expr: c.Expr}
	}
	return &core.BinaryExpr{Left: c.Expr, Op: token.EQ, Right: value(i)}
}

func group(e core.Expr) core.Expr {
	if b, ok := e.(*core.BinaryExpr); ok && b.Op == token.AND {
		return &core.ParenExpr{Expr: e}
	}
	return e
}
