package function

import (
	"strings"

	"github.com/leapstack-labs/leapquery/pkg/core"
	"github.com/leapstack-labs/leapquery/pkg/dialect"
)

// Simple renders NAME(arg, arg, ...).
type Simple struct {
	Name         string
	Min, Max     int
	Returns      func(core.Type) core.Type
	Aggregate    bool // accepts DISTINCT
	StarIfNoArgs bool // COUNT() renders COUNT(*)
}

func (f *Simple) HasArguments() bool                { return f.Max != 0 }
func (f *Simple) HasParenthesesIfNoArguments() bool { return f.Min == 0 && !f.StarIfNoArgs }
func (f *Simple) Arity() (int, int)                 { return f.Min, f.Max }
func (f *Simple) AcceptsDistinct() bool             { return f.Aggregate }

func (f *Simple) ReturnType(firstArg core.Type) core.Type {
	if f.Returns == nil {
		return firstArg
	}
	return f.Returns(firstArg)
}

func (f *Simple) Render(ctx *RenderContext) error {
	if err := checkArity(ctx, f.Min, f.Max); err != nil {
		return err
	}
	ctx.AddChunk(f.Name + "(")
	if ctx.Distinct() {
		ctx.AddChunk("DISTINCT ")
	}
	if ctx.ArgCount() == 0 && f.StarIfNoArgs {
		ctx.AddChunk("*")
	}
	for i := range ctx.ArgCount() {
		if i > 0 {
			ctx.AddChunk(", ")
		}
		ctx.AddArg(i)
	}
	ctx.AddChunk(")")
	return nil
}

// Concat renders concat(a,b,c).
type Concat struct{}

func (Concat) HasArguments() bool                { return true }
func (Concat) HasParenthesesIfNoArguments() bool { return true }
func (Concat) ReturnType(core.Type) core.Type    { return core.TypeString }
func (Concat) Arity() (int, int)                 { return 1, -1 }

func (Concat) Render(ctx *RenderContext) error {
	if err := checkArity(ctx, 1, -1); err != nil {
		return err
	}
	ctx.AddChunk("concat(")
	for i := range ctx.ArgCount() {
		if i > 0 {
			ctx.AddChunk(",")
		}
		ctx.AddArg(i)
	}
	ctx.AddChunk(")")
	return nil
}

// PipeConcat renders a||b||c.
type PipeConcat struct{}

func (PipeConcat) HasArguments() bool                { return true }
func (PipeConcat) HasParenthesesIfNoArguments() bool { return true }
func (PipeConcat) ReturnType(core.Type) core.Type    { return core.TypeString }
func (PipeConcat) Arity() (int, int)                 { return 1, -1 }

func (PipeConcat) Render(ctx *RenderContext) error {
	if err := checkArity(ctx, 1, -1); err != nil {
		return err
	}
	for i := range ctx.ArgCount() {
		if i > 0 {
			ctx.AddChunk("||")
		}
		ctx.AddArg(i)
	}
	return nil
}

// Exist turns a subquery argument into a predicate usable where the JPQL
// grammar only accepts scalar function calls. EXIST(sq) renders
// "1 and exists(sq)"; any second argument negates it.
type Exist struct{}

func (Exist) HasArguments() bool                { return true }
func (Exist) HasParenthesesIfNoArguments() bool { return true }
func (Exist) ReturnType(core.Type) core.Type    { return core.TypeBoolean }
func (Exist) Arity() (int, int)                 { return 1, 2 }

func (Exist) Render(ctx *RenderContext) error {
	if err := checkArity(ctx, 1, 2); err != nil {
		return err
	}
	if ctx.ArgCount() == 2 {
		ctx.AddChunk("1 and not exists")
	} else {
		ctx.AddChunk("1 and exists")
	}
	ctx.AddArg(0)
	return nil
}

// InWrapper renders "x in (select * from <subquery> tmp_)", which lets a
// LIMITed subquery appear on the right of IN.
type InWrapper struct{}

func (InWrapper) HasArguments() bool                { return true }
func (InWrapper) HasParenthesesIfNoArguments() bool { return true }
func (InWrapper) ReturnType(core.Type) core.Type    { return core.TypeBoolean }
func (InWrapper) Arity() (int, int)                 { return 2, 2 }

func (InWrapper) Render(ctx *RenderContext) error {
	if err := checkArity(ctx, 2, 2); err != nil {
		return err
	}
	ctx.AddArg(0)
	ctx.AddChunk(" in (select * from ")
	ctx.AddArg(1)
	ctx.AddChunk(" tmp_)")
	return nil
}

// Alias renders "expr as alias"; the alias arrives as a string literal.
type Alias struct{}

func (Alias) HasArguments() bool                { return true }
func (Alias) HasParenthesesIfNoArguments() bool { return true }
func (Alias) ReturnType(t core.Type) core.Type  { return t }
func (Alias) Arity() (int, int)                 { return 2, 2 }

func (Alias) Render(ctx *RenderContext) error {
	if err := checkArity(ctx, 2, 2); err != nil {
		return err
	}
	ctx.AddArg(0)
	ctx.AddChunk(" as ")
	ctx.AddChunk(unquote(ctx.Arg(1)))
	return nil
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return strings.ReplaceAll(s[1:len(s)-1], "''", "'")
	}
	return s
}

// Param renders its single argument unchanged.
type Param struct{}

func (Param) HasArguments() bool                { return true }
func (Param) HasParenthesesIfNoArguments() bool { return true }
func (Param) ReturnType(t core.Type) core.Type  { return t }
func (Param) Arity() (int, int)                 { return 1, 1 }

func (Param) Render(ctx *RenderContext) error {
	if err := checkArity(ctx, 1, 1); err != nil {
		return err
	}
	ctx.AddArg(0)
	return nil
}

// Constant renders fixed text and takes no arguments (NULLFN, CURRENT_DATE).
type Constant struct {
	Text    string
	Returns core.Type
}

func (f *Constant) HasArguments() bool                { return false }
func (f *Constant) HasParenthesesIfNoArguments() bool { return false }
func (f *Constant) ReturnType(core.Type) core.Type    { return f.Returns }
func (f *Constant) Arity() (int, int)                 { return 0, 0 }

func (f *Constant) Render(ctx *RenderContext) error {
	if err := checkArity(ctx, 0, 0); err != nil {
		return err
	}
	ctx.AddChunk(f.Text)
	return nil
}

// CountTupleStyle selects how COUNT_TUPLE counts distinct combinations.
type CountTupleStyle int

const (
	// CountTupleRowValue renders COUNT(DISTINCT (a, b)).
	CountTupleRowValue CountTupleStyle = iota
	// CountTupleList renders COUNT(DISTINCT a, b).
	CountTupleList
	// CountTupleConcat renders COUNT(DISTINCT <a || '|' || b>) with the dialect's concat.
	CountTupleConcat
)

// CountTuple counts distinct combinations of its arguments.
type CountTuple struct {
	Style  CountTupleStyle
	Concat Function
}

func (f *CountTuple) HasArguments() bool                { return true }
func (f *CountTuple) HasParenthesesIfNoArguments() bool { return true }
func (f *CountTuple) ReturnType(core.Type) core.Type    { return core.TypeLong }
func (f *CountTuple) Arity() (int, int)                 { return 1, -1 }

func (f *CountTuple) Render(ctx *RenderContext) error {
	if err := checkArity(ctx, 1, -1); err != nil {
		return err
	}
	ctx.AddChunk("COUNT(DISTINCT ")
	if ctx.ArgCount() == 1 {
		ctx.AddArg(0)
		ctx.AddChunk(")")
		return nil
	}

	switch f.Style {
	case CountTupleList:
		for i := range ctx.ArgCount() {
			if i > 0 {
				ctx.AddChunk(", ")
			}
			ctx.AddArg(i)
		}
	case CountTupleConcat:
		parts := make([]string, 0, ctx.ArgCount()*2-1)
		for i := range ctx.ArgCount() {
			if i > 0 {
				parts = append(parts, "'|'")
			}
			parts = append(parts, ctx.Arg(i))
		}
		out, err := Render(f.Concat, NewContext("CONCAT", parts))
		if err != nil {
			return err
		}
		ctx.AddChunk(out)
	default:
		ctx.AddChunk("(")
		for i := range ctx.ArgCount() {
			if i > 0 {
				ctx.AddChunk(", ")
			}
			ctx.AddArg(i)
		}
		ctx.AddChunk(")")
	}
	ctx.AddChunk(")")
	return nil
}

// Limit applies the dialect's row limiting clause inside a subquery:
// LIMIT(subquery, max[, offset]).
type Limit struct {
	Dialect *dialect.Dialect
}

func (f *Limit) HasArguments() bool                { return true }
func (f *Limit) HasParenthesesIfNoArguments() bool { return true }
func (f *Limit) ReturnType(t core.Type) core.Type  { return t }
func (f *Limit) Arity() (int, int)                 { return 2, 3 }

func (f *Limit) Render(ctx *RenderContext) error {
	if err := checkArity(ctx, 2, 3); err != nil {
		return err
	}
	var offset string
	if ctx.ArgCount() == 3 {
		offset = ctx.Arg(2)
	}

	var clause strings.Builder
	f.Dialect.AppendLimit(&clause, offset, ctx.Arg(1))

	sub := ctx.Arg(0)
	if strings.HasPrefix(sub, "(") && strings.HasSuffix(sub, ")") {
		ctx.AddChunk(sub[:len(sub)-1])
		ctx.AddChunk(clause.String())
		ctx.AddChunk(")")
		return nil
	}
	ctx.AddArg(0)
	ctx.AddChunk(clause.String())
	return nil
}

// GroupConcatStyle selects the string aggregation syntax.
type GroupConcatStyle int

const (
	GroupConcatStringAgg  GroupConcatStyle = iota // string_agg(x, sep)
	GroupConcatSeparator                          // group_concat(x SEPARATOR sep)
	GroupConcatListagg                            // listagg(x, sep) within group (order by x)
	GroupConcatPlain                              // group_concat(x, sep)
	GroupConcatCollect                            // array_join(collect_list(x), sep)
)

// GroupConcat aggregates strings: GROUP_CONCAT(['DISTINCT',] expr, separator).
type GroupConcat struct {
	Style            GroupConcatStyle
	DistinctDisabled bool
}

func (f *GroupConcat) HasArguments() bool                { return true }
func (f *GroupConcat) HasParenthesesIfNoArguments() bool { return true }
func (f *GroupConcat) ReturnType(core.Type) core.Type    { return core.TypeString }
func (f *GroupConcat) Arity() (int, int)                 { return 2, 3 }

func (f *GroupConcat) Render(ctx *RenderContext) error {
	if err := checkArity(ctx, 2, 3); err != nil {
		return err
	}
	expr, sep := 0, 1
	distinct := false
	if ctx.ArgCount() == 3 {
		if !strings.EqualFold(unquote(ctx.Arg(0)), "DISTINCT") {
			return &ConfigurationError{Function: ctx.Name(), Reason: "three argument form must start with 'DISTINCT'"}
		}
		distinct = true
		expr, sep = 1, 2
	}
	if distinct && f.DistinctDisabled {
		return &ConfigurationError{Function: ctx.Name(), Reason: "DISTINCT with a separator is not supported"}
	}

	d := ""
	if distinct {
		d = "DISTINCT "
	}
	switch f.Style {
	case GroupConcatSeparator:
		ctx.AddChunk("group_concat(" + d)
		ctx.AddArg(expr)
		ctx.AddChunk(" SEPARATOR ")
		ctx.AddArg(sep)
		ctx.AddChunk(")")
	case GroupConcatListagg:
		ctx.AddChunk("listagg(" + d)
		ctx.AddArg(expr)
		ctx.AddChunk(", ")
		ctx.AddArg(sep)
		ctx.AddChunk(") within group (order by ")
		ctx.AddArg(expr)
		ctx.AddChunk(")")
	case GroupConcatPlain:
		ctx.AddChunk("group_concat(" + d)
		ctx.AddArg(expr)
		ctx.AddChunk(", ")
		ctx.AddArg(sep)
		ctx.AddChunk(")")
	case GroupConcatCollect:
		if distinct {
			ctx.AddChunk("array_join(collect_set(")
		} else {
			ctx.AddChunk("array_join(collect_list(")
		}
		ctx.AddArg(expr)
		ctx.AddChunk("), ")
		ctx.AddArg(sep)
		ctx.AddChunk(")")
	default:
		ctx.AddChunk("string_agg(" + d)
		ctx.AddArg(expr)
		ctx.AddChunk(", ")
		ctx.AddArg(sep)
		ctx.AddChunk(")")
	}
	return nil
}

// Unsupported fails every render with a configuration error.
type Unsupported struct {
	Dialect string
	Reason  string
}

func (f *Unsupported) HasArguments() bool                { return true }
func (f *Unsupported) HasParenthesesIfNoArguments() bool { return true }
func (f *Unsupported) ReturnType(core.Type) core.Type    { return core.TypeUnknown }

func (f *Unsupported) Render(ctx *RenderContext) error {
	return &ConfigurationError{Function: ctx.Name(), Dialect: f.Dialect, Reason: f.Reason}
}
