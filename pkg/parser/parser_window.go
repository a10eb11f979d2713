package parser

import (
	"github.com/leapstack-labs/leapquery/pkg/core"
)

// Window clauses.
//
//	window_spec   → identifier | "(" window_body ")"
//	window_body   → [identifier] [PARTITION BY expr_list] [ORDER BY order_list] [frame]
//	frame         → (ROWS|RANGE|GROUPS) (BETWEEN bound AND bound | bound)
//	bound         → UNBOUNDED (PRECEDING|FOLLOWING) | CURRENT ROW | additive (PRECEDING|FOLLOWING)

var frameUnits = map[TokenType]core.FrameType{
	TOKEN_ROWS:   core.FrameRows,
	TOKEN_RANGE:  core.FrameRange,
	TOKEN_GROUPS: core.FrameGroups,
}

// parseWindowSpec parses what follows OVER: a window name or a parenthesized body.
func (p *Parser) parseWindowSpec() *core.WindowSpec {
	if name, ok := p.windowName(); ok {
		return &core.WindowSpec{Name: name}
	}
	p.expect(TOKEN_LPAREN)
	spec := p.parseWindowBody()
	p.expect(TOKEN_RPAREN)
	return spec
}

// parseWindowBody parses a window body. A leading name refers to a base
// window that the body extends.
func (p *Parser) parseWindowBody() *core.WindowSpec {
	spec := &core.WindowSpec{}
	spec.Name, _ = p.windowName()

	if p.match(TOKEN_PARTITION) && p.expect(TOKEN_BY) {
		spec.PartitionBy = p.parseExpressionList()
	}
	if p.match(TOKEN_ORDER) && p.expect(TOKEN_BY) {
		spec.OrderBy = p.parseOrderByList()
	}
	if unit, ok := frameUnits[p.token.Type]; ok {
		p.nextToken()
		spec.Frame = p.parseFrame(unit)
	}
	return spec
}

func (p *Parser) windowName() (string, bool) {
	if !p.check(TOKEN_IDENT) {
		return "", false
	}
	name := p.token.Literal
	p.nextToken()
	return name, true
}

func (p *Parser) parseFrame(unit core.FrameType) *core.FrameSpec {
	frame := &core.FrameSpec{Type: unit}
	between := p.match(TOKEN_BETWEEN)
	frame.Start = p.parseFrameBound()
	if between && p.expect(TOKEN_AND) {
		frame.End = p.parseFrameBound()
	}
	return frame
}

func (p *Parser) parseFrameBound() *core.FrameBound {
	if p.match(TOKEN_CURRENT) {
		p.expect(TOKEN_ROW)
		return &core.FrameBound{Type: core.FrameCurrentRow}
	}

	if p.match(TOKEN_UNBOUNDED) {
		return &core.FrameBound{Type: p.frameDirection(
			core.FrameUnboundedPreceding, core.FrameUnboundedFollowing, "UNBOUNDED")}
	}

	// Stops below AND so that BETWEEN 1 PRECEDING AND ... parses.
	offset := p.parseExpressionWithPrecedence(PrecedenceAddition)
	return &core.FrameBound{
		Offset: offset,
		Type:   p.frameDirection(core.FrameExprPreceding, core.FrameExprFollowing, "frame offset"),
	}
}

func (p *Parser) frameDirection(preceding, following core.FrameBoundType, after string) core.FrameBoundType {
	switch {
	case p.match(TOKEN_PRECEDING):
		return preceding
	case p.match(TOKEN_FOLLOWING):
		return following
	}
	p.errorf("expected PRECEDING or FOLLOWING after %s", after)
	return ""
}
