package function

import (
	"strings"

	"github.com/leapstack-labs/leapquery/pkg/core"
)

// RenderContext is the accumulator handed to one Function.Render call.
// Arguments arrive already rendered. A context is consumed by Render and must
// not be reused or shared between goroutines.
type RenderContext struct {
	name     string
	args     []string
	distinct bool
	filter   string
	window   *Window

	buf      strings.Builder
	consumed bool
}

// Window is the rendered OVER (...) specification of a call.
type Window struct {
	Base        string // named window being extended
	PartitionBy []string
	OrderBy     []WindowOrder
	Frame       string
}

// WindowOrder is one rendered ORDER BY item inside OVER (...).
type WindowOrder struct {
	Expr  string
	Desc  bool
	Nulls core.NullPrecedence
}

// ContextOption configures a RenderContext.
type ContextOption func(*RenderContext)

// WithDistinct marks the call as DISTINCT.
func WithDistinct() ContextOption {
	return func(c *RenderContext) { c.distinct = true }
}

// WithFilter attaches the rendered FILTER (WHERE ...) predicate.
func WithFilter(predicate string) ContextOption {
	return func(c *RenderContext) { c.filter = predicate }
}

// WithWindow attaches the rendered OVER (...) specification.
func WithWindow(w *Window) ContextOption {
	return func(c *RenderContext) { c.window = w }
}

// NewContext creates a render context for a call of name with rendered args.
func NewContext(name string, args []string, opts ...ContextOption) *RenderContext {
	c := &RenderContext{
		name: strings.ToUpper(name),
		args: append([]string(nil), args...),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the logical function name.
func (c *RenderContext) Name() string { return c.name }

// ArgCount returns the number of arguments attached to the call.
func (c *RenderContext) ArgCount() int { return len(c.args) }

// Arg returns the rendered text of the i-th argument.
func (c *RenderContext) Arg(i int) string { return c.args[i] }

// Distinct reports whether the call is DISTINCT.
func (c *RenderContext) Distinct() bool { return c.distinct }

// Filter returns the rendered FILTER predicate, or "".
func (c *RenderContext) Filter() string { return c.filter }

// Window returns the OVER specification, or nil.
func (c *RenderContext) Window() *Window { return c.window }

// AddChunk appends verbatim text.
func (c *RenderContext) AddChunk(s string) {
	c.buf.WriteString(s)
}

// AddArg appends the rendered text of the i-th argument.
func (c *RenderContext) AddArg(i int) {
	c.buf.WriteString(c.args[i])
}

// String renders the call for diagnostics: NAME(arg, arg).
func (c *RenderContext) String() string {
	var sb strings.Builder
	sb.WriteString(c.name)
	sb.WriteByte('(')
	if c.distinct {
		sb.WriteString("DISTINCT ")
	}
	sb.WriteString(strings.Join(c.args, ", "))
	sb.WriteByte(')')
	return sb.String()
}
