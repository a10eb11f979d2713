// Package duckdb provides the DuckDB dialect definition.
// This package is pure Go with no database driver dependencies.
package duckdb

import "github.com/leapstack-labs/leapquery/pkg/core"

// Config is the DuckDB dialect configuration.
//
// DuckDB sorts NULLs last in both directions by default, which no single
// NullSmallest value describes. Keyset pagination therefore always prints
// explicit NULLS FIRST/LAST, which DuckDB supports natively.
var Config = &core.DialectConfig{
	Name:        "duckdb",
	Placeholder: core.PlaceholderQuestion,
	Identifiers: core.IdentifierConfig{
		Quote:         `"`,
		QuoteEnd:      `"`,
		Escape:        `""`,
		Normalization: core.NormCaseInsensitive,
	},

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

	RequiresRecursiveKeyword: true,
	Pagination:               core.PaginationLimitOffset,
	ConcatStyle:              core.ConcatPipe,

	EveryFunction: "BOOL_AND",
	AnyFunction:   "BOOL_OR",

	CastTypes: map[core.Type]string{
		core.TypeString: "VARCHAR",
		core.TypeDouble: "DOUBLE",
		core.TypeUUID:   "UUID",
		core.TypeBinary: "BLOB",
	},
}
