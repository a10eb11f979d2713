package function

import (
	"strings"

	"github.com/leapstack-labs/leapquery/pkg/core"
)

// WindowFunction renders aggregates and analytic functions that carry
// FILTER (WHERE ...) or OVER (...). The dialect flags are copied in when the
// registry is built.
type WindowFunction struct {
	Name     string // SQL function name
	Min, Max int
	Returns  func(core.Type) core.Type

	NullSmallest         bool
	WindowNullPrecedence bool
	FilterClause         bool

	// RequiresOver forces OVER () for ranking and value functions. Their
	// FILTER is always emulated, engines only accept it on aggregates.
	RequiresOver bool
	// RejectFilter makes FILTER a configuration error (ROW_NUMBER, RANK...).
	RejectFilter bool
	// StarIfNoArgs renders COUNT() as COUNT(*).
	StarIfNoArgs bool
	// FilterExempt lists argument indices never wrapped by the emulated filter
	// (the LAG/LEAD offset).
	FilterExempt []int
	// ArgPrefix and ArgSuffix wrap every argument (EVERY emulated through MIN).
	ArgPrefix, ArgSuffix string
}

func (f *WindowFunction) HasArguments() bool { return f.Max != 0 }

func (f *WindowFunction) HasParenthesesIfNoArguments() bool {
	return f.Min == 0 && !f.StarIfNoArgs
}

func (f *WindowFunction) Arity() (int, int) { return f.Min, f.Max }

func (f *WindowFunction) AcceptsDistinct() bool { return !f.RequiresOver }

func (f *WindowFunction) ReturnType(firstArg core.Type) core.Type {
	if f.Returns == nil {
		return firstArg
	}
	return f.Returns(firstArg)
}

func (f *WindowFunction) Render(ctx *RenderContext) error {
	if err := checkArity(ctx, f.Min, f.Max); err != nil {
		return err
	}
	filter := ctx.Filter()
	if filter != "" && f.RejectFilter {
		return &ConfigurationError{Function: ctx.Name(), Reason: "FILTER is not allowed on ranking functions"}
	}
	nativeFilter := f.FilterClause && !f.RequiresOver
	emulateFilter := filter != "" && !nativeFilter

	ctx.AddChunk(f.Name + "(")
	if ctx.Distinct() {
		ctx.AddChunk("DISTINCT ")
	}
	if ctx.ArgCount() == 0 && f.StarIfNoArgs {
		if emulateFilter {
			ctx.AddChunk("CASE WHEN " + filter + " THEN 1 ELSE NULL END")
		} else {
			ctx.AddChunk("*")
		}
	}
	for i := range ctx.ArgCount() {
		if i > 0 {
			ctx.AddChunk(", ")
		}
		guard := emulateFilter && !f.exempt(i)
		if guard {
			ctx.AddChunk("CASE WHEN " + filter + " THEN ")
		}
		ctx.AddChunk(f.ArgPrefix)
		ctx.AddArg(i)
		ctx.AddChunk(f.ArgSuffix)
		if guard {
			ctx.AddChunk(" ELSE NULL END")
		}
	}
	ctx.AddChunk(")")

	if filter != "" && nativeFilter {
		ctx.AddChunk(" FILTER (WHERE " + filter + ")")
	}

	w := ctx.Window()
	if w == nil && !f.RequiresOver {
		return nil
	}
	ctx.AddChunk(" OVER (")
	if w != nil {
		f.renderWindow(ctx, w)
	}
	ctx.AddChunk(")")
	return nil
}

func (f *WindowFunction) exempt(i int) bool {
	for _, e := range f.FilterExempt {
		if e == i {
			return true
		}
	}
	return false
}

func (f *WindowFunction) renderWindow(ctx *RenderContext, w *Window) {
	var parts []string
	if w.Base != "" {
		parts = append(parts, w.Base)
	}
	if len(w.PartitionBy) > 0 {
		parts = append(parts, "PARTITION BY "+strings.Join(w.PartitionBy, ", "))
	}
	if len(w.OrderBy) > 0 {
		items := make([]string, 0, len(w.OrderBy))
		for _, o := range w.OrderBy {
			items = append(items, f.orderItem(o)...)
		}
		parts = append(parts, "ORDER BY "+strings.Join(items, ", "))
	}
	if w.Frame != "" {
		parts = append(parts, w.Frame)
	}
	ctx.AddChunk(strings.Join(parts, " "))
}

// orderItem renders one window ORDER BY item. Without native null precedence
// a CASE WHEN resolver item is placed in front when the requested placement
// differs from the dialect's default.
func (f *WindowFunction) orderItem(o WindowOrder) []string {
	item := o.Expr
	if o.Desc {
		item += " DESC"
	}
	if o.Nulls == core.NullsDefault {
		return []string{item}
	}

	nullsFirst := o.Nulls == core.NullsFirst
	if f.WindowNullPrecedence {
		if nullsFirst {
			return []string{item + " NULLS FIRST"}
		}
		return []string{item + " NULLS LAST"}
	}
	if nullsFirst == (f.NullSmallest != o.Desc) {
		return []string{item}
	}
	return []string{NullResolver(o.Expr, nullsFirst), item}
}

// NullResolver renders the CASE WHEN item that sorts NULLs of expr first or last
// in ascending order.
func NullResolver(expr string, nullsFirst bool) string {
	if nullsFirst {
		return "CASE WHEN " + expr + " IS NULL THEN 0 ELSE 1 END"
	}
	return "CASE WHEN " + expr + " IS NULL THEN 1 ELSE 0 END"
}
