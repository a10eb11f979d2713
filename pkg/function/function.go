// Package function provides the dialect function registry.
//
// Every logical function (TRUNC_WEEK, CONCAT, EVERY, WINDOW_RANK...) is a
// Function value. Renderers never return strings; they write into the
// RenderContext they are handed, which owns the output buffer for exactly one
// render pass. Dialect differences are expressed as data: template strings with
// ?1..?n placeholders, or capability flags copied from the dialect when the
// registry is built.
package function

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapquery/pkg/core"
)

// Function renders one logical function.
type Function interface {
	// HasArguments reports whether the function takes arguments at all.
	HasArguments() bool
	// HasParenthesesIfNoArguments reports whether a call without arguments is
	// written NAME() rather than NAME.
	HasParenthesesIfNoArguments() bool
	// ReturnType computes the static result type from the first argument's type.
	ReturnType(firstArg core.Type) core.Type
	// Render writes the function into ctx. It validates the argument count first.
	Render(ctx *RenderContext) error
}

// ArityDeclarer is implemented by functions that declare their accepted
// argument counts. Max is -1 for variadic functions.
type ArityDeclarer interface {
	Arity() (minArgs, maxArgs int)
}

// DistinctAware is implemented by aggregates that accept DISTINCT.
type DistinctAware interface {
	AcceptsDistinct() bool
}

// Render runs a single render pass of fn over ctx and returns the produced text.
// On error the output is discarded; callers never see partial SQL.
func Render(fn Function, ctx *RenderContext) (string, error) {
	if ctx.consumed {
		return "", ErrContextConsumed
	}
	ctx.consumed = true

	if ctx.distinct {
		if da, ok := fn.(DistinctAware); !ok || !da.AcceptsDistinct() {
			return "", &ConfigurationError{Function: ctx.name, Reason: "DISTINCT is not supported"}
		}
	}

	if err := fn.Render(ctx); err != nil {
		ctx.buf.Reset()
		return "", err
	}
	return ctx.buf.String(), nil
}

// checkArity validates ctx against [minArgs, maxArgs]; maxArgs < 0 is unbounded.
func checkArity(ctx *RenderContext, minArgs, maxArgs int) error {
	n := ctx.ArgCount()
	if n >= minArgs && (maxArgs < 0 || n <= maxArgs) {
		return nil
	}
	return &ArityError{
		Function: ctx.name,
		Got:      n,
		Want:     describeArity(minArgs, maxArgs),
		Context:  ctx.String(),
	}
}

func describeArity(minArgs, maxArgs int) string {
	switch {
	case maxArgs < 0:
		return "at least " + strconv.Itoa(minArgs)
	case minArgs == maxArgs:
		return "exactly " + strconv.Itoa(minArgs)
	case maxArgs == minArgs+1:
		return strconv.Itoa(minArgs) + " or " + strconv.Itoa(maxArgs)
	default:
		return strconv.Itoa(minArgs) + " to " + strconv.Itoa(maxArgs)
	}
}

func describeArities(counts []int) string {
	parts := make([]string, len(counts))
	for i, c := range counts {
		parts[i] = strconv.Itoa(c)
	}
	if len(parts) == 1 {
		return "exactly " + parts[0]
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " or " + parts[len(parts)-1]
}

// sameType is the ReturnType of functions that return their first argument's type.
func sameType(t core.Type) core.Type { return t }

func fixedType(t core.Type) func(core.Type) core.Type {
	return func(core.Type) core.Type { return t }
}

// sumType follows JPQL: integral sums are Long, others keep their type.
func sumType(t core.Type) core.Type {
	switch t {
	case core.TypeInteger, core.TypeLong:
		return core.TypeLong
	case core.TypeBigDecimal:
		return core.TypeBigDecimal
	case core.TypeUnknown:
		return core.TypeUnknown
	default:
		return core.TypeDouble
	}
}
