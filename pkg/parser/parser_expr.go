package parser

import (
	"github.com/leapstack-labs/leapquery/pkg/core"
	"github.com/leapstack-labs/leapquery/pkg/token"
)

// Expression precedence parsing using a Pratt parser.
//
//	PrecedenceNone       = 0
//	PrecedenceOr         = 1
//	PrecedenceAnd        = 2
//	PrecedenceNot        = 3
//	PrecedenceComparison = 4  (=, <>, <, >, <=, >=, IS, IN, BETWEEN, LIKE, MEMBER)
//	PrecedenceAddition   = 5  (+, -, ||)
//	PrecedenceMultiply   = 6  (*, /)
//	PrecedenceUnary      = 7  (-, +)

// Operator precedence levels.
const (
	PrecedenceNone = iota
	PrecedenceOr
	PrecedenceAnd
	PrecedenceNot
	PrecedenceComparison
	PrecedenceAddition
	PrecedenceMultiply
	PrecedenceUnary
)

// parseExpression parses an expression using precedence climbing.
func (p *Parser) parseExpression() core.Expr {
	return p.parseExpressionWithPrecedence(PrecedenceNone + 1)
}

// parseExpressionWithPrecedence implements Pratt parsing.
func (p *Parser) parseExpressionWithPrecedence(minPrecedence int) core.Expr {
	left := p.parsePrefixExpr()
	if left == nil {
		return nil
	}

	for !p.failed() {
		prec := p.infixPrecedence()
		if prec < minPrecedence || prec == PrecedenceNone {
			break
		}
		left = p.parseInfixExpr(left, prec)
		if left == nil {
			break
		}
	}

	return left
}

// parsePrefixExpr parses prefix expressions (unary operators and primary expressions).
func (p *Parser) parsePrefixExpr() core.Expr {
	switch p.token.Type {
	case TOKEN_NOT:
		if p.checkPeek(TOKEN_EXISTS) {
			p.nextToken()
			return p.parsePrimary()
		}
		p.nextToken()
		expr := p.parseExpressionWithPrecedence(PrecedenceNot)
		if expr == nil {
			return nil
		}
		return &core.UnaryExpr{Op: token.NOT, Expr: expr}

	case TOKEN_MINUS:
		p.nextToken()
		expr := p.parseExpressionWithPrecedence(PrecedenceUnary)
		if expr == nil {
			return nil
		}
		return &core.UnaryExpr{Op: token.MINUS, Expr: expr}

	case TOKEN_PLUS:
		p.nextToken()
		expr := p.parseExpressionWithPrecedence(PrecedenceUnary)
		if expr == nil {
			return nil
		}
		return &core.UnaryExpr{Op: token.PLUS, Expr: expr}

	default:
		return p.parsePrimary()
	}
}

// infixPrecedence returns the precedence of the current token as an infix operator.
func (p *Parser) infixPrecedence() int {
	switch p.token.Type {
	case TOKEN_OR:
		return PrecedenceOr
	case TOKEN_AND:
		return PrecedenceAnd
	case TOKEN_EQ, TOKEN_NE, TOKEN_LT, TOKEN_GT, TOKEN_LE, TOKEN_GE,
		TOKEN_IS, TOKEN_IN, TOKEN_BETWEEN, TOKEN_LIKE, TOKEN_MEMBER:
		return PrecedenceComparison
	case TOKEN_NOT:
		// NOT IN, NOT LIKE, NOT BETWEEN, NOT MEMBER
		switch p.peek.Type {
		case TOKEN_IN, TOKEN_BETWEEN, TOKEN_LIKE, TOKEN_MEMBER:
			return PrecedenceComparison
		}
		return PrecedenceNone
	case TOKEN_PLUS, TOKEN_MINUS, TOKEN_DPIPE:
		return PrecedenceAddition
	case TOKEN_STAR, TOKEN_SLASH:
		return PrecedenceMultiply
	}
	return PrecedenceNone
}

// parseInfixExpr parses an infix expression given the left operand and current precedence.
func (p *Parser) parseInfixExpr(left core.Expr, prec int) core.Expr {
	not := false
	if p.check(TOKEN_NOT) {
		not = true
		p.nextToken()
	}

	switch p.token.Type {
	case TOKEN_IS:
		return p.parseIsExpr(left)
	case TOKEN_IN:
		p.nextToken()
		return p.parseInExpr(left, not)
	case TOKEN_BETWEEN:
		p.nextToken()
		return p.parseBetweenExpr(left, not)
	case TOKEN_LIKE:
		p.nextToken()
		return p.parseLikeExpr(left, not)
	case TOKEN_MEMBER:
		p.nextToken()
		p.match(TOKEN_OF)
		coll := p.parseExpressionWithPrecedence(PrecedenceAddition)
		if coll == nil {
			return nil
		}
		return &core.MemberOfExpr{Value: left, Collection: coll, Not: not}
	}

	// Standard binary operators
	op := p.token
	p.nextToken()

	// Parse right operand with higher precedence (left-associative)
	right := p.parseExpressionWithPrecedence(prec + 1)
	if right == nil {
		return nil
	}
	return &core.BinaryExpr{Left: left, Op: op.Type, Right: right}
}

// parseIsExpr parses IS [NOT] NULL / IS [NOT] EMPTY.
func (p *Parser) parseIsExpr(left core.Expr) core.Expr {
	p.nextToken() // consume IS

	isNot := p.match(TOKEN_NOT)

	switch p.token.Type {
	case TOKEN_NULL:
		p.nextToken()
		return &core.IsNullExpr{Expr: left, Not: isNot}
	case TOKEN_EMPTY:
		p.nextToken()
		return &core.IsEmptyExpr{Expr: left, Not: isNot}
	default:
		p.errorf("expected NULL or EMPTY after IS, got %s", p.describe(p.token))
		return nil
	}
}

// parseInExpr parses the value list of an IN expression.
func (p *Parser) parseInExpr(left core.Expr, not bool) core.Expr {
	if !p.expect(TOKEN_LPAREN) {
		return nil
	}
	in := &core.InExpr{Expr: left, Not: not}
	in.Values = p.parseExpressionList()
	if !p.expect(TOKEN_RPAREN) {
		return nil
	}
	return in
}

// parseBetweenExpr parses a BETWEEN expression.
func (p *Parser) parseBetweenExpr(left core.Expr, not bool) core.Expr {
	between := &core.BetweenExpr{Expr: left, Not: not}
	// Bounds are parsed at addition precedence to avoid capturing AND
	between.Low = p.parseExpressionWithPrecedence(PrecedenceAddition)
	if !p.expect(TOKEN_AND) {
		return nil
	}
	between.High = p.parseExpressionWithPrecedence(PrecedenceAddition)
	if between.Low == nil || between.High == nil {
		return nil
	}
	return between
}

// parseLikeExpr parses a LIKE expression with an optional ESCAPE character.
func (p *Parser) parseLikeExpr(left core.Expr, not bool) core.Expr {
	like := &core.LikeExpr{Expr: left, Not: not}
	like.Pattern = p.parseExpressionWithPrecedence(PrecedenceAddition)
	if like.Pattern == nil {
		return nil
	}
	if p.match(TOKEN_ESCAPE) {
		like.Escape = p.parsePrimary()
		if like.Escape == nil {
			return nil
		}
	}
	return like
}

// parseExpressionList parses a comma-separated list of expressions.
func (p *Parser) parseExpressionList() []core.Expr {
	var exprs []core.Expr
	for {
		e := p.parseExpression()
		if e == nil {
			return exprs
		}
		exprs = append(exprs, e)
		if !p.match(TOKEN_COMMA) {
			return exprs
		}
	}
}

// parseOrderByList parses order items: expr [ASC|DESC] [NULLS FIRST|LAST].
func (p *Parser) parseOrderByList() []core.OrderByItem {
	var items []core.OrderByItem
	for {
		e := p.parseExpression()
		if e == nil {
			return items
		}
		item := core.OrderByItem{Expr: e}
		if p.match(TOKEN_DESC) {
			item.Desc = true
		} else {
			p.match(TOKEN_ASC)
		}
		if p.match(TOKEN_NULLS) {
			switch {
			case p.match(TOKEN_FIRST):
				item.Nulls = core.NullsFirst
			case p.match(TOKEN_LAST):
				item.Nulls = core.NullsLast
			default:
				p.errorf("unexpected %s, expected FIRST or LAST", p.describe(p.token))
				return items
			}
		}
		items = append(items, item)
		if !p.match(TOKEN_COMMA) {
			return items
		}
	}
}
