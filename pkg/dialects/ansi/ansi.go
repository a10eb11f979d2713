// Package ansi provides the base ANSI SQL dialect.
//
// It is the reference profile: standard null precedence syntax, FILTER,
// window functions, every set operation and OFFSET/FETCH pagination.
// Function renderers without a dialect-specific override fall back to the
// dialect-neutral defaults, which target this profile.
package ansi

import (
	"github.com/leapstack-labs/leapquery/pkg/core"
	"github.com/leapstack-labs/leapquery/pkg/dialect"
)

func init() {
	dialect.Register(ANSI)
}

// Config is the ANSI SQL capability profile.
var Config = &core.DialectConfig{
	Name:    "ansi",
	Aliases: []string{"standard"},
	Identifiers: core.IdentifierConfig{
		Quote:         `"`,
		QuoteEnd:      `"`,
		Escape:        `""`,
		Normalization: core.NormUppercase,
	},
	Placeholder: core.PlaceholderQuestion,

	NullSmallest:                 false,
	SupportsNullPrecedence:       true,
	SupportsWindowNullPrecedence: true,
	SupportsFilterClause:         true,
	SupportsWindowFunctions:      true,
	SupportsRowValues:            true,

	SupportsIntersect:    true,
	SupportsIntersectAll: true,
	SupportsExcept:       true,
	SupportsExceptAll:    true,
	ExceptKeyword:        "EXCEPT",

	RequiresRecursiveKeyword: true,
	Pagination:               core.PaginationOffsetFetch,
	ConcatStyle:              core.ConcatPipe,

	EveryFunction: "EVERY",
}

// ANSI is the base ANSI SQL dialect.
var ANSI = dialect.New(Config).
	WithReservedWords(
		"all", "and", "any", "as", "asc", "between", "by", "case", "cast",
		"check", "column", "create", "cross", "current", "default", "delete",
		"desc", "distinct", "else", "end", "except", "exists", "false", "fetch",
		"for", "from", "full", "group", "having", "in", "inner", "intersect",
		"into", "is", "join", "left", "like", "not", "null", "of", "on", "or",
		"order", "outer", "right", "select", "some", "table", "then", "true",
		"union", "unique", "user", "value", "values", "when", "where", "with",
	).
	Build()
