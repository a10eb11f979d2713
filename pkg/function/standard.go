package function

import (
	"log/slog"
	"strings"

	"github.com/leapstack-labs/leapquery/pkg/core"
	"github.com/leapstack-labs/leapquery/pkg/dialect"
)

// neutral is the capability profile behind the default tier: standard null
// precedence and FILTER, OFFSET/FETCH pagination.
var neutral = dialect.New(&core.DialectConfig{
	Name:                         "default",
	SupportsNullPrecedence:       true,
	SupportsWindowNullPrecedence: true,
	SupportsFilterClause:         true,
	SupportsWindowFunctions:      true,
	SupportsRowValues:            true,
	Pagination:                   core.PaginationOffsetFetch,
}).Build()

// NewStandardRegistry builds a registry holding every built-in function, with
// overrides for each given dialect. Without dialects, all registered dialects
// are used.
func NewStandardRegistry(logger *slog.Logger, dialects ...*dialect.Dialect) *Registry {
	r := NewRegistry(logger)
	registerDefaults(r)
	registerFallbacks(r)

	if len(dialects) == 0 {
		dialects = dialect.All()
	}
	for _, d := range dialects {
		registerDialect(r, d)
	}
	r.logger.Debug("function registry built", "dialects", len(dialects))
	return r
}

var castFunctions = map[string]core.Type{
	"CAST_STRING":    core.TypeString,
	"CAST_INTEGER":   core.TypeInteger,
	"CAST_LONG":      core.TypeLong,
	"CAST_DOUBLE":    core.TypeDouble,
	"CAST_BOOLEAN":   core.TypeBoolean,
	"CAST_DATE":      core.TypeDate,
	"CAST_TIMESTAMP": core.TypeTimestamp,
}

// Templates of string and numeric functions, one per accepted arity.
var defaultStringTemplates = map[string][]string{
	"LENGTH":    {"LENGTH(?1)"},
	"LOCATE":    {"LOCATE(?1, ?2)", "LOCATE(?1, ?2, ?3)"},
	"SUBSTRING": {"SUBSTRING(?1, ?2)", "SUBSTRING(?1, ?2, ?3)"},
	"MOD":       {"MOD(?1, ?2)"},
}

var stringReturnTypes = map[string]core.Type{
	"LENGTH":    core.TypeInteger,
	"LOCATE":    core.TypeInteger,
	"SUBSTRING": core.TypeString,
	"MOD":       core.TypeInteger,
}

var positionLocate = []string{
	"POSITION(?1 IN ?2)",
	"CASE WHEN POSITION(?1 IN SUBSTRING(?2 FROM ?3)) = 0 THEN 0 ELSE POSITION(?1 IN SUBSTRING(?2 FROM ?3)) + ?3 - 1 END",
}

var dialectStringTemplates = map[string]map[string][]string{
	"postgresql": {"LOCATE": positionLocate},
	"duckdb":     {"LOCATE": positionLocate},
	"mssql": {
		"LENGTH":    {"LEN(?1)"},
		"LOCATE":    {"CHARINDEX(?1, ?2)", "CHARINDEX(?1, ?2, ?3)"},
		"SUBSTRING": {"SUBSTRING(?1, ?2, LEN(?1))", "SUBSTRING(?1, ?2, ?3)"},
		"MOD":       {"(?1 % ?2)"},
	},
	"oracle": {
		"LOCATE":    {"INSTR(?2, ?1)", "INSTR(?2, ?1, ?3)"},
		"SUBSTRING": {"SUBSTR(?1, ?2)", "SUBSTR(?1, ?2, ?3)"},
	},
	"sqlite": {
		"LOCATE": {
			"INSTR(?2, ?1)",
			"CASE WHEN INSTR(SUBSTR(?2, ?3), ?1) = 0 THEN 0 ELSE INSTR(SUBSTR(?2, ?3), ?1) + ?3 - 1 END",
		},
		"SUBSTRING": {"SUBSTR(?1, ?2)", "SUBSTR(?1, ?2, ?3)"},
		"MOD":       {"(?1 % ?2)"},
	},
	"snowflake": {"LOCATE": {"POSITION(?1, ?2)", "POSITION(?1, ?2, ?3)"}},
}

var groupConcatStyles = map[string]*GroupConcat{
	"postgresql": {Style: GroupConcatStringAgg},
	"duckdb":     {Style: GroupConcatStringAgg},
	"mssql":      {Style: GroupConcatStringAgg, DistinctDisabled: true},
	"mysql":      {Style: GroupConcatSeparator},
	"sqlite":     {Style: GroupConcatPlain, DistinctDisabled: true},
	"databricks": {Style: GroupConcatCollect},
}

func registerDefaults(r *Registry) {
	// Control functions
	r.Register("PARAM", Param{})
	r.Register("NULLFN", &Constant{Text: "NULLIF(1,1)"})
	r.Register("ALIAS", Alias{})
	r.Register("EXIST", Exist{})
	r.Register("IN_WRAPPER", InWrapper{})
	r.Register("COUNT_STAR", &Constant{Text: "COUNT(*)", Returns: core.TypeLong})
	r.Register("COUNT_TUPLE", &CountTuple{Style: CountTupleRowValue})
	r.Register("LIMIT", &Limit{Dialect: neutral})

	// Strings and numbers
	r.Register("CONCAT", Concat{})
	r.Register("GROUP_CONCAT", &GroupConcat{Style: GroupConcatListagg})
	r.Register("UPPER", &Simple{Name: "UPPER", Min: 1, Max: 1, Returns: fixedType(core.TypeString)})
	r.Register("LOWER", &Simple{Name: "LOWER", Min: 1, Max: 1, Returns: fixedType(core.TypeString)})
	r.Register("TRIM", &Simple{Name: "TRIM", Min: 1, Max: 1, Returns: fixedType(core.TypeString)})
	r.Register("REPLACE", &Simple{Name: "REPLACE", Min: 3, Max: 3, Returns: fixedType(core.TypeString)})
	r.Register("COALESCE", &Simple{Name: "COALESCE", Min: 2, Max: -1})
	r.Register("NULLIF", &Simple{Name: "NULLIF", Min: 2, Max: 2})
	r.Register("ABS", &Simple{Name: "ABS", Min: 1, Max: 1})
	r.Register("SQRT", &Simple{Name: "SQRT", Min: 1, Max: 1, Returns: fixedType(core.TypeDouble)})
	registerTemplates(r, "", defaultStringTemplates)

	// Aggregates
	r.Register("SUM", &Simple{Name: "SUM", Min: 1, Max: 1, Returns: sumType, Aggregate: true})
	r.Register("AVG", &Simple{Name: "AVG", Min: 1, Max: 1, Returns: fixedType(core.TypeDouble), Aggregate: true})
	r.Register("MIN", &Simple{Name: "MIN", Min: 1, Max: 1, Aggregate: true})
	r.Register("MAX", &Simple{Name: "MAX", Min: 1, Max: 1, Aggregate: true})
	r.Register("COUNT", &Simple{Name: "COUNT", Min: 0, Max: 1, Returns: fixedType(core.TypeLong), Aggregate: true, StarIfNoArgs: true})

	// Date and time
	r.Register("CURRENT_DATE", &Constant{Text: "CURRENT_DATE", Returns: core.TypeDate})
	r.Register("CURRENT_TIME", &Constant{Text: "CURRENT_TIME", Returns: core.TypeTime})
	r.Register("CURRENT_TIMESTAMP", &Constant{Text: "CURRENT_TIMESTAMP", Returns: core.TypeTimestamp})
	registerDates(r, "", defaultDateTemplates)

	registerCasts(r, neutral, false)
	registerWindows(r, neutral, false)
}

func registerFallbacks(r *Registry) {
	r.RegisterFallback("EVERY", NewTemplateFunction(fixedType(core.TypeBoolean), "MIN(CASE WHEN ?1 THEN 1 ELSE 0 END)"))
	r.RegisterFallback("ANY", NewTemplateFunction(fixedType(core.TypeBoolean), "MAX(CASE WHEN ?1 THEN 1 ELSE 0 END)"))
}

func registerDialect(r *Registry, d *dialect.Dialect) {
	name := strings.ToLower(d.Name)

	if d.ConcatStyle == core.ConcatPipe {
		r.RegisterDialect(name, "CONCAT", PipeConcat{})
	}
	if d.EveryFunction != "" {
		r.RegisterDialect(name, "EVERY", &Simple{Name: d.EveryFunction, Min: 1, Max: 1, Returns: fixedType(core.TypeBoolean)})
	}
	if d.AnyFunction != "" {
		r.RegisterDialect(name, "ANY", &Simple{Name: d.AnyFunction, Min: 1, Max: 1, Returns: fixedType(core.TypeBoolean)})
	}

	switch {
	case name == "mysql":
		r.RegisterDialect(name, "COUNT_TUPLE", &CountTuple{Style: CountTupleList})
	case !d.SupportsRowValues:
		concat, _ := r.Resolve("CONCAT", d)
		r.RegisterDialect(name, "COUNT_TUPLE", &CountTuple{Style: CountTupleConcat, Concat: concat})
	}

	if gc, ok := groupConcatStyles[name]; ok {
		r.RegisterDialect(name, "GROUP_CONCAT", gc)
	}
	r.RegisterDialect(name, "LIMIT", &Limit{Dialect: d})

	registerTemplates(r, name, dialectStringTemplates[name])
	registerDates(r, name, dialectDateTemplates[name])
	registerCasts(r, d, true)
	registerWindows(r, d, true)
}

func registerTemplates(r *Registry, dialectName string, templates map[string][]string) {
	for fn, srcs := range templates {
		tf := NewTemplateFunction(fixedType(stringReturnTypes[fn]), srcs...)
		register(r, dialectName, fn, tf)
	}
}

func registerDates(r *Registry, dialectName string, templates map[string]string) {
	for fn, src := range templates {
		register(r, dialectName, fn, NewTemplateFunction(dateReturnType(fn), src))
	}
}

func dateReturnType(fn string) func(core.Type) core.Type {
	switch {
	case strings.HasPrefix(fn, "TRUNC_"), strings.HasPrefix(fn, "ADD_"):
		return sameType
	case strings.HasSuffix(fn, "_DIFF"), fn == "EPOCH":
		return fixedType(core.TypeLong)
	default:
		return fixedType(core.TypeInteger)
	}
}

func registerCasts(r *Registry, d *dialect.Dialect, dialectTier bool) {
	dialectName := ""
	if dialectTier {
		dialectName = d.Name
	}
	for fn, typ := range castFunctions {
		typeName, ok := d.CastType(typ)
		if !ok {
			continue
		}
		register(r, dialectName, fn, NewTemplateFunction(fixedType(typ), "CAST(?1 AS "+typeName+")"))
	}
}

func register(r *Registry, dialectName, fn string, f Function) {
	if dialectName == "" {
		r.Register(fn, f)
		return
	}
	r.RegisterDialect(dialectName, fn, f)
}

// aggregateNames are the standard aggregates. They are registered plain and
// under WINDOW_<NAME>.
var aggregateNames = []string{"SUM", "AVG", "MIN", "MAX", "COUNT", "EVERY", "ANY"}

// windowNames lists the functions registered under WINDOW_<NAME>.
var windowNames = append([]string{
	"ROW_NUMBER", "RANK", "DENSE_RANK", "PERCENT_RANK", "CUME_DIST", "NTILE",
	"LAG", "LEAD", "FIRST_VALUE", "LAST_VALUE", "NTH_VALUE",
}, aggregateNames...)

func registerWindows(r *Registry, d *dialect.Dialect, dialectTier bool) {
	dialectName := ""
	if dialectTier {
		dialectName = d.Name
	}
	if !d.SupportsWindowFunctions {
		for _, n := range windowNames {
			register(r, dialectName, WindowPrefix+n, &Unsupported{Dialect: d.Name, Reason: "window functions are not supported"})
		}
		return
	}
	for n, f := range windowFamily(d) {
		register(r, dialectName, WindowPrefix+n, f)
	}
}

// windowFamily builds the window renderers for one dialect's flags.
func windowFamily(d *dialect.Dialect) map[string]*WindowFunction {
	base := func(name string, minArgs, maxArgs int, returns func(core.Type) core.Type) *WindowFunction {
		return &WindowFunction{
			Name:                 name,
			Min:                  minArgs,
			Max:                  maxArgs,
			Returns:              returns,
			NullSmallest:         d.NullSmallest,
			WindowNullPrecedence: d.SupportsWindowNullPrecedence,
			FilterClause:         d.SupportsFilterClause,
		}
	}
	value := func(name string, minArgs, maxArgs int, returns func(core.Type) core.Type, exempt ...int) *WindowFunction {
		f := base(name, minArgs, maxArgs, returns)
		f.RequiresOver = true
		f.FilterExempt = exempt
		return f
	}
	ranking := func(name string, minArgs, maxArgs int, returns func(core.Type) core.Type) *WindowFunction {
		f := value(name, minArgs, maxArgs, returns)
		f.RejectFilter = true
		return f
	}
	boolAgg := func(native, emulated string) *WindowFunction {
		if native != "" {
			return base(native, 1, 1, fixedType(core.TypeBoolean))
		}
		f := base(emulated, 1, 1, fixedType(core.TypeBoolean))
		f.ArgPrefix = "CASE WHEN "
		f.ArgSuffix = " THEN 1 ELSE 0 END"
		return f
	}

	count := base("COUNT", 0, 1, fixedType(core.TypeLong))
	count.StarIfNoArgs = true

	return map[string]*WindowFunction{
		"ROW_NUMBER":   ranking("ROW_NUMBER", 0, 0, fixedType(core.TypeLong)),
		"RANK":         ranking("RANK", 0, 0, fixedType(core.TypeLong)),
		"DENSE_RANK":   ranking("DENSE_RANK", 0, 0, fixedType(core.TypeLong)),
		"PERCENT_RANK": ranking("PERCENT_RANK", 0, 0, fixedType(core.TypeDouble)),
		"CUME_DIST":    ranking("CUME_DIST", 0, 0, fixedType(core.TypeDouble)),
		"NTILE":        ranking("NTILE", 1, 1, fixedType(core.TypeInteger)),
		"LAG":          value("LAG", 1, 3, sameType, 1),
		"LEAD":         value("LEAD", 1, 3, sameType, 1),
		"FIRST_VALUE":  value("FIRST_VALUE", 1, 1, sameType),
		"LAST_VALUE":   value("LAST_VALUE", 1, 1, sameType),
		"NTH_VALUE":    value("NTH_VALUE", 2, 2, sameType, 1),

		"SUM":   base("SUM", 1, 1, sumType),
		"AVG":   base("AVG", 1, 1, fixedType(core.TypeDouble)),
		"MIN":   base("MIN", 1, 1, sameType),
		"MAX":   base("MAX", 1, 1, sameType),
		"COUNT": count,
		"EVERY": boolAgg(d.EveryFunction, "MIN"),
		"ANY":   boolAgg(d.AnyFunction, "MAX"),
	}
}
