package parser

import "fmt"

// ParseError is a syntax error in a query fragment. Pos is relative to the
// fragment, starting at line 1, column 1.
type ParseError struct {
	Pos     Position
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("syntax error at %d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// errorf records an error at the current token. Only the first one is kept;
// everything after it tends to be noise caused by the first.
func (p *Parser) errorf(format string, args ...any) {
	if p.err == nil {
		p.err = &ParseError{Pos: p.token.Pos, Message: fmt.Sprintf(format, args...)}
	}
}

func (p *Parser) failed() bool { return p.err != nil }
