package parser

import (
	"github.com/leapstack-labs/leapquery/pkg/core"
)

//	case_expr     → CASE [operand] (WHEN expr THEN expr)+ [ELSE expr] END
//	paren_expr    → "(" expr_list ")"

// parseCaseExpr parses searched (CASE WHEN cond ...) and simple
// (CASE operand WHEN value ...) forms.
func (p *Parser) parseCaseExpr() core.Expr {
	p.expect(TOKEN_CASE)
	c := &core.CaseExpr{}
	if !p.check(TOKEN_WHEN) {
		c.Operand = p.parseExpression()
	}

	for !p.failed() && p.match(TOKEN_WHEN) {
		cond := p.parseExpression()
		p.expect(TOKEN_THEN)
		c.Whens = append(c.Whens, core.WhenClause{Condition: cond, Result: p.parseExpression()})
	}
	if len(c.Whens) == 0 {
		p.errorf("CASE requires at least one WHEN branch")
		return nil
	}
	if p.match(TOKEN_ELSE) {
		c.Else = p.parseExpression()
	}
	if !p.expect(TOKEN_END) {
		return nil
	}
	return c
}

// parseParenExpr returns a ParenExpr for one item and a TupleExpr for several.
func (p *Parser) parseParenExpr() core.Expr {
	p.expect(TOKEN_LPAREN)
	items := p.parseExpressionList()
	if !p.expect(TOKEN_RPAREN) || len(items) == 0 {
		return nil
	}
	if len(items) > 1 {
		return &core.TupleExpr{Items: items}
	}
	return &core.ParenExpr{Expr: items[0]}
}
