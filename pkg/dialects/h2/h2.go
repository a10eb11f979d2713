// Package h2 provides the H2 database dialect definition.
package h2

import (
	"github.com/leapstack-labs/leapquery/pkg/core"
	"github.com/leapstack-labs/leapquery/pkg/dialect"
)

func init() {
	dialect.Register(H2)
}

// Config is the H2 2.x dialect configuration.
var Config = &core.DialectConfig{
	Name:        "h2",
	Placeholder: core.PlaceholderQuestion,
	Identifiers: core.IdentifierConfig{
		Quote:         `"`,
		QuoteEnd:      `"`,
		Escape:        `""`,
		Normalization: core.NormUppercase,
	},

	NullSmallest:                 true,
	SupportsNullPrecedence:       true,
	SupportsWindowNullPrecedence: true,
	SupportsFilterClause:         true,
	SupportsWindowFunctions:      true,
	SupportsRowValues:            true,

	SupportsIntersect: true,
	SupportsExcept:    true,

	RequiresRecursiveKeyword: true,
	Pagination:               core.PaginationLimitOffset,
	ConcatStyle:              core.ConcatPipe,

	EveryFunction: "EVERY",
	AnyFunction:   "ANY",

	CastTypes: map[core.Type]string{
		core.TypeDouble: "double",
		core.TypeBinary: "binary varying",
		core.TypeUUID:   "uuid",
	},
}

// H2 is the H2 dialect.
var H2 = dialect.New(Config).
	WithReservedWords(
		"all", "and", "any", "array", "as", "asymmetric", "authorization",
		"between", "both", "case", "cast", "check", "constraint", "cross",
		"current_catalog", "current_date", "current_path", "current_role",
		"current_schema", "current_time", "current_timestamp", "current_user",
		"day", "default", "distinct", "else", "end", "except", "exists", "false",
		"fetch", "for", "foreign", "from", "full", "group", "groups", "having",
		"hour", "if", "ilike", "in", "inner", "intersect", "interval", "is",
		"join", "key", "leading", "left", "like", "limit", "localtime",
		"localtimestamp", "minus", "minute", "month", "natural", "not", "null",
		"offset", "on", "or", "order", "over", "partition", "primary", "qualify",
		"range", "regexp", "right", "row", "rownum", "rows", "second", "select",
		"session_user", "set", "some", "symmetric", "system_user", "table", "to",
		"top", "trailing", "true", "uescape", "union", "unique", "unknown",
		"user", "using", "value", "values", "when", "where", "window", "with",
		"year",
	).
	Build()
