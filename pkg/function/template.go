package function

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/leapstack-labs/leapquery/pkg/core"
)

// Template is a compiled SQL shape with ?1..?n argument placeholders.
// A ? not followed by a digit is literal text.
type Template struct {
	source string
	parts  []templatePart
	args   int
}

type templatePart struct {
	text string
	arg  int // 1-based argument index, 0 for literal text
}

// NewTemplate compiles a template. Placeholders must be numbered 1..n
// without gaps; ?0 and skipped indices are rejected.
func NewTemplate(source string) (*Template, error) {
	t := &Template{source: source}
	seen := make(map[int]bool)

	start := 0
	for i := 0; i < len(source); i++ {
		if source[i] != '?' || i+1 >= len(source) || !isDigit(source[i+1]) {
			continue
		}
		j := i + 1
		for j < len(source) && isDigit(source[j]) {
			j++
		}
		n, err := strconv.Atoi(source[i+1 : j])
		if err != nil || n == 0 {
			return nil, fmt.Errorf("invalid placeholder %q in template %q", source[i:j], source)
		}
		if i > start {
			t.parts = append(t.parts, templatePart{text: source[start:i]})
		}
		t.parts = append(t.parts, templatePart{arg: n})
		seen[n] = true
		t.args = max(t.args, n)
		start = j
		i = j - 1
	}
	if start < len(source) {
		t.parts = append(t.parts, templatePart{text: source[start:]})
	}

	for n := 1; n <= t.args; n++ {
		if !seen[n] {
			return nil, fmt.Errorf("template %q skips placeholder ?%d", source, n)
		}
	}
	return t, nil
}

// MustTemplate is NewTemplate for static tables; it panics on a malformed template.
func MustTemplate(source string) *Template {
	t, err := NewTemplate(source)
	if err != nil {
		panic(err)
	}
	return t
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// Args returns the number of arguments the template consumes.
func (t *Template) Args() int { return t.args }

// String returns the template source.
func (t *Template) String() string { return t.source }

// Render validates the argument count and substitutes each placeholder.
func (t *Template) Render(ctx *RenderContext) error {
	if err := checkArity(ctx, t.args, t.args); err != nil {
		return err
	}
	t.render(ctx)
	return nil
}

func (t *Template) render(ctx *RenderContext) {
	for _, p := range t.parts {
		if p.arg == 0 {
			ctx.AddChunk(p.text)
		} else {
			ctx.AddArg(p.arg - 1)
		}
	}
}

// TemplateFunction is a Function backed by one template per accepted arity.
type TemplateFunction struct {
	templates  map[int]*Template
	arities    []int
	returnType func(core.Type) core.Type
}

// NewTemplateFunction builds a function from templates; each template's
// placeholder count is the arity it serves.
func NewTemplateFunction(returnType func(core.Type) core.Type, templates ...string) *TemplateFunction {
	f := &TemplateFunction{
		templates:  make(map[int]*Template, len(templates)),
		returnType: returnType,
	}
	for _, src := range templates {
		t := MustTemplate(src)
		f.templates[t.args] = t
		f.arities = append(f.arities, t.args)
	}
	sort.Ints(f.arities)
	return f
}

func (f *TemplateFunction) HasArguments() bool {
	return len(f.arities) > 0 && f.arities[len(f.arities)-1] > 0
}

func (f *TemplateFunction) HasParenthesesIfNoArguments() bool { return false }

func (f *TemplateFunction) ReturnType(firstArg core.Type) core.Type {
	if f.returnType == nil {
		return core.TypeUnknown
	}
	return f.returnType(firstArg)
}

func (f *TemplateFunction) Arity() (int, int) {
	return f.arities[0], f.arities[len(f.arities)-1]
}

func (f *TemplateFunction) Render(ctx *RenderContext) error {
	t, ok := f.templates[ctx.ArgCount()]
	if !ok {
		return &ArityError{
			Function: ctx.Name(),
			Got:      ctx.ArgCount(),
			Want:     describeArities(f.arities),
			Context:  ctx.String(),
		}
	}
	t.render(ctx)
	return nil
}
