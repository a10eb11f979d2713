// Package databricks provides the Databricks SQL dialect definition.
// This package is pure Go with no database driver dependencies.
package databricks

import "github.com/leapstack-labs/leapquery/pkg/core"

// Config is the Databricks SQL dialect configuration.
// This is pure data - shared by the renderers and the criteria builder.
var Config = &core.DialectConfig{
	Name:        "databricks",
	Aliases:     []string{"spark"},
	Placeholder: core.PlaceholderQuestion,
	Identifiers: core.IdentifierConfig{
		Quote:         "`",
		QuoteEnd:      "`",
		Escape:        "``",
		Normalization: core.NormCaseInsensitive,
	},

	// Spark sorts NULL first in ascending order
	NullSmallest:                 true,
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
	ConcatStyle:              core.ConcatFunction,

	EveryFunction: "BOOL_AND",
	AnyFunction:   "BOOL_OR",

	CastTypes: map[core.Type]string{
		core.TypeString: "STRING",
		core.TypeDouble: "DOUBLE",
		core.TypeBinary: "BINARY",
	},
}
