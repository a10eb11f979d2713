package render

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapquery/pkg/core"
	"github.com/leapstack-labs/leapquery/pkg/dialect"
	"github.com/leapstack-labs/leapquery/pkg/function"
	"github.com/leapstack-labs/leapquery/pkg/token"
)

// marker delimits a parameter slot in SQL mode output. Slots are numbered
// once the whole statement is printed, after function templates had a chance
// to reorder or repeat their arguments.
const marker = '\x00'

// Printer prints expression and query trees on a single line.
type Printer struct {
	mode      Mode
	dialect   *dialect.Dialect
	functions *function.Registry
	output    *bytes.Buffer

	params []*core.ParameterExpr // SQL: one per slot; JPQL: unique, first appearance
	seen   map[string]bool
	err    error
}

func newPrinter(opts Options) *Printer {
	return &Printer{
		mode:      opts.Mode,
		dialect:   opts.Dialect,
		functions: opts.Functions,
		output:    &bytes.Buffer{},
		seen:      make(map[string]bool),
	}
}

func (p *Printer) write(s string) {
	p.output.WriteString(s)
}

func (p *Printer) space() {
	p.output.WriteByte(' ')
}

// kw prints keywords separated by spaces.
func (p *Printer) kw(tokens ...token.TokenType) {
	for i, t := range tokens {
		if i > 0 {
			p.space()
		}
		p.write(t.String())
	}
}

// formatList prints count items separated by sep.
func (p *Printer) formatList(count int, format func(i int), sep string) {
	for i := range count {
		format(i)
		if i < count-1 {
			p.write(sep)
		}
	}
}

// capture runs fn against a fresh buffer and returns what it printed.
// Parameter slots stay shared with the enclosing statement.
func (p *Printer) capture(fn func()) string {
	saved := p.output
	p.output = &bytes.Buffer{}
	fn()
	out := p.output.String()
	p.output = saved
	return out
}

func (p *Printer) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

func (p *Printer) sql() bool {
	return p.mode == ModeSQL
}

// ident quotes an identifier in SQL mode when the dialect reserves it.
func (p *Printer) ident(name string) string {
	if p.sql() {
		return p.dialect.QuoteIdentifierIfNeeded(name)
	}
	return name
}

func (p *Printer) param(e *core.ParameterExpr) {
	if !p.sql() {
		if !p.seen[e.Key()] {
			p.seen[e.Key()] = true
			p.params = append(p.params, e)
		}
		p.write(e.Key())
		return
	}
	p.output.WriteByte(marker)
	p.write(strconv.Itoa(len(p.params)))
	p.output.WriteByte(marker)
	p.params = append(p.params, e)
}

// bindSlots replaces the SQL parameter markers in textual order with dialect
// placeholders and lists the parameter bound at each placeholder.
func (p *Printer) bindSlots(text string) (string, []*core.ParameterExpr) {
	if !strings.ContainsRune(text, marker) {
		return text, nil
	}
	var sb strings.Builder
	var bound []*core.ParameterExpr
	for {
		start := strings.IndexByte(text, marker)
		if start < 0 {
			sb.WriteString(text)
			break
		}
		end := strings.IndexByte(text[start+1:], marker) + start + 1
		slot, _ := strconv.Atoi(text[start+1 : end])
		sb.WriteString(text[:start])
		bound = append(bound, p.params[slot])
		sb.WriteString(p.dialect.FormatPlaceholder(len(bound)))
		text = text[end+1:]
	}
	return sb.String(), bound
}
