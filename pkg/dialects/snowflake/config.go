// Package snowflake provides the Snowflake SQL dialect definition.
// This package is pure Go with no database driver dependencies.
package snowflake

import "github.com/leapstack-labs/leapquery/pkg/core"

// Config is the Snowflake SQL dialect configuration.
// This is pure data - shared by the renderers and the criteria builder.
var Config = &core.DialectConfig{
	Name:        "snowflake",
	Placeholder: core.PlaceholderQuestion,
	Identifiers: core.IdentifierConfig{
		Quote:         `"`,
		QuoteEnd:      `"`,
		Escape:        `""`,
		Normalization: core.NormUppercase, // Snowflake normalizes to uppercase
	},

	NullSmallest:                 false,
	SupportsNullPrecedence:       true,
	SupportsWindowNullPrecedence: true,
	SupportsWindowFunctions:      true,
	SupportsRowValues:            true,

	// Snowflake does NOT support these:
	// - FILTER (WHERE ...) on aggregates
	// - INTERSECT ALL / EXCEPT ALL
	SupportsIntersect: true,
	SupportsExcept:    true,
	ExceptKeyword:     "MINUS",

	RequiresRecursiveKeyword: true,
	Pagination:               core.PaginationLimitOffset,
	ConcatStyle:              core.ConcatPipe,

	EveryFunction: "BOOLAND_AGG",
	AnyFunction:   "BOOLOR_AGG",

	CastTypes: map[core.Type]string{
		core.TypeString:    "VARCHAR",
		core.TypeDouble:    "FLOAT",
		core.TypeTimestamp: "TIMESTAMP_NTZ",
		core.TypeBinary:    "BINARY",
	},
}
