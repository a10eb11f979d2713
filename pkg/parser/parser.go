// Package parser parses JPQL-like expression strings into core.Expr trees.
//
// # Usage
//
//	expr, err := parser.ParseExpr("d.age > :minAge AND UPPER(d.name) LIKE 'A%'")
//	items, err := parser.ParseOrderBy("d.name asc nulls last, d.id desc")
//
// Paths are returned unresolved (core.PathExpr); resolving them against the
// metamodel is the job of the criteria builder.
//
// # Grammar Overview
//
//	expression    → or_expr
//	or_expr       → and_expr (OR and_expr)*
//	and_expr      → not_expr (AND not_expr)*
//	not_expr      → NOT not_expr | predicate
//	predicate     → additive [comparison | IS [NOT] (NULL|EMPTY) | [NOT] IN "(" list ")"
//	                | [NOT] BETWEEN additive AND additive | [NOT] LIKE additive [ESCAPE primary]
//	                | [NOT] MEMBER [OF] path]
//	order_list    → order_item ("," order_item)*
//	order_item    → expression [ASC|DESC] [NULLS (FIRST|LAST)]
//
// See each file for detailed grammar rules for that section.
package parser

import (
	"fmt"

	"github.com/leapstack-labs/leapquery/pkg/core"
)

// Parser parses expression text into an AST.
type Parser struct {
	lexer  *Lexer
	token Token // current token
	peek  Token // lookahead token
	err   error
}

// NewParser creates a new parser for the given input.
func NewParser(input string) *Parser {
	p := &Parser{lexer: NewLexer(input)}
	// Read two tokens to initialize current and peek
	p.nextToken()
	p.nextToken()
	return p
}

// ParseExpr parses a single expression. The whole input must be consumed.
func ParseExpr(input string) (core.Expr, error) {
	return parseAll(input, (*Parser).parseExpression)
}

// ParseExprList parses a comma-separated list of expressions.
func ParseExprList(input string) ([]core.Expr, error) {
	return parseAll(input, (*Parser).parseExpressionList)
}

// ParseOrderBy parses an ORDER BY list without the ORDER BY keywords.
func ParseOrderBy(input string) ([]core.OrderByItem, error) {
	return parseAll(input, (*Parser).parseOrderByList)
}

// ParseWindow parses the body of a window definition, without the surrounding
// parentheses: [base] [PARTITION BY ...] [ORDER BY ...] [frame].
func ParseWindow(input string) (*core.WindowSpec, error) {
	return parseAll(input, (*Parser).parseWindowBody)
}

func parseAll[T any](input string, parse func(*Parser) T) (T, error) {
	p := NewParser(input)
	out := parse(p)
	p.expectEOF()
	if p.err != nil {
		var zero T
		return zero, p.err
	}
	return out, nil
}

// ---------- Token Helpers ----------

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.token = p.peek
	p.peek = p.lexer.NextToken()
}

// check returns true if the current token is of the given type.
func (p *Parser) check(t TokenType) bool {
	return p.token.Type == t
}

// checkPeek returns true if the peek token is of the given type.
func (p *Parser) checkPeek(t TokenType) bool {
	return p.peek.Type == t
}

// match consumes the current token if it matches and returns true.
func (p *Parser) match(t TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	return false
}

// expect consumes the current token if it matches, otherwise adds an error.
func (p *Parser) expect(t TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	p.errorf("unexpected %s, expected %s", p.describe(p.token), t)
	return false
}

// expectEOF reports leftover input.
func (p *Parser) expectEOF() {
	if !p.failed() && !p.check(TOKEN_EOF) {
		p.errorf("unexpected %s after end of expression", p.describe(p.token))
	}
}

// describe renders a token for error messages.
func (p *Parser) describe(tok Token) string {
	switch tok.Type {
	case TOKEN_EOF:
		return "end of input"
	case TOKEN_ILLEGAL:
		return fmt.Sprintf("illegal input %q", tok.Literal)
	case TOKEN_IDENT, TOKEN_NUMBER:
		return fmt.Sprintf("%s %q", tok.Type, tok.Literal)
	}
	return tok.Type.String()
}
