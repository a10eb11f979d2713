package parser

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapquery/pkg/core"
	"github.com/leapstack-labs/leapquery/pkg/token"
)

// Primary expression parsing: literals, parameters, paths, function calls.
//
// Grammar:
//
//	primary       → literal | parameter | path | func_call | treat_path | paren_expr | case_expr
//	literal       → NUMBER | STRING | TRUE | FALSE | NULL
//	parameter     → ":" identifier | "?" NUMBER
//	path          → identifier ("." name)*          -- keywords are allowed after a dot
//	treat_path    → TREAT "(" path AS identifier ")" ("." name)*
//	func_call     → name "(" [DISTINCT] [expr_list | "*"] ")" [FILTER "(" WHERE expr ")"] [OVER window]

// parsePrimary parses primary expressions.
func (p *Parser) parsePrimary() core.Expr {
	switch p.token.Type {
	case TOKEN_NUMBER:
		text := p.token.Literal
		if _, err := strconv.ParseFloat(text, 64); err != nil {
			p.errorf("invalid number literal")
			return nil
		}
		p.nextToken()
		return core.NumberLiteral(text)

	case TOKEN_STRING:
		lit := core.StringLiteral(p.token.Literal)
		p.nextToken()
		return lit

	case TOKEN_TRUE:
		p.nextToken()
		return core.BoolLiteral(true)

	case TOKEN_FALSE:
		p.nextToken()
		return core.BoolLiteral(false)

	case TOKEN_NULL:
		p.nextToken()
		return core.NullLiteral()

	case TOKEN_NAMEDPARAM:
		param := &core.ParameterExpr{Name: p.token.Literal}
		p.nextToken()
		return param

	case TOKEN_POSPARAM:
		n, err := strconv.Atoi(p.token.Literal)
		if err != nil || n < 1 {
			p.errorf("invalid positional parameter %q", "?"+p.token.Literal)
			return nil
		}
		p.nextToken()
		return &core.ParameterExpr{Position: n}

	case TOKEN_CASE:
		return p.parseCaseExpr()

	case TOKEN_TREAT:
		return p.parseTreatPath()

	case TOKEN_EXISTS:
		p.errorf("subqueries cannot be written inline; add them through the builder")
		return nil

	case TOKEN_IDENT:
		return p.parseIdentifierExpr()

	case TOKEN_ANY, TOKEN_SOME:
		// ANY(x) and SOME(x) are boolean aggregates here, not quantified subqueries.
		if p.checkPeek(TOKEN_LPAREN) {
			p.nextToken()
			return p.parseFuncCall("ANY")
		}

	case TOKEN_LPAREN:
		return p.parseParenExpr()

	case TOKEN_ILLEGAL:
		p.errorf("%s", p.describe(p.token))
		return nil
	}

	p.errorf("unexpected %s in expression", p.describe(p.token))
	return nil
}

// parseIdentifierExpr parses an identifier which could be a path or function call.
func (p *Parser) parseIdentifierExpr() core.Expr {
	name := p.token.Literal
	p.nextToken()

	if p.check(TOKEN_LPAREN) {
		return p.parseFuncCall(name)
	}

	path := &core.PathExpr{Parts: []string{name}}
	p.parsePathTail(path)
	return path
}

// parsePathTail consumes "." name segments. Keywords are valid attribute names after a dot.
func (p *Parser) parsePathTail(path *core.PathExpr) {
	for p.check(TOKEN_DOT) {
		p.nextToken()
		if p.check(TOKEN_IDENT) || token.IsKeyword(p.token.Type) {
			path.Parts = append(path.Parts, p.token.Literal)
			p.nextToken()
			continue
		}
		p.errorf("unexpected %s, expected attribute name", p.describe(p.token))
		return
	}
}

// parseTreatPath parses TREAT(path AS Subtype) with an optional attribute tail.
func (p *Parser) parseTreatPath() core.Expr {
	p.expect(TOKEN_TREAT)
	if !p.expect(TOKEN_LPAREN) {
		return nil
	}
	inner, ok := p.parsePrimary().(*core.PathExpr)
	if !ok {
		if !p.failed() {
			p.errorf("TREAT requires a path argument")
		}
		return nil
	}
	if !p.expect(TOKEN_AS) {
		return nil
	}
	if !p.check(TOKEN_IDENT) {
		p.errorf("unexpected %s, expected type name", p.describe(p.token))
		return nil
	}
	subtype := p.token.Literal
	p.nextToken()
	if !p.expect(TOKEN_RPAREN) {
		return nil
	}

	path := &core.PathExpr{Root: &core.TreatExpr{Path: inner, Subtype: subtype}}
	p.parsePathTail(path)
	return path
}

// parseFuncCall parses a function call. The current token is "(".
func (p *Parser) parseFuncCall(name string) core.Expr {
	fn := &core.FuncCall{Name: strings.ToUpper(name)}

	p.expect(TOKEN_LPAREN)

	switch {
	case p.check(TOKEN_STAR):
		// COUNT(*) is a zero-argument COUNT
		p.nextToken()
	case !p.check(TOKEN_RPAREN):
		if p.match(TOKEN_DISTINCT) {
			fn.Distinct = true
		}
		fn.Args = p.parseExpressionList()
	}

	if !p.expect(TOKEN_RPAREN) {
		return nil
	}

	// FILTER clause (for aggregates)
	if p.match(TOKEN_FILTER) {
		p.expect(TOKEN_LPAREN)
		p.expect(TOKEN_WHERE)
		fn.Filter = p.parseExpression()
		p.expect(TOKEN_RPAREN)
	}

	// OVER clause (window function)
	if p.match(TOKEN_OVER) {
		fn.Window = p.parseWindowSpec()
	}

	if p.failed() {
		return nil
	}
	return fn
}
