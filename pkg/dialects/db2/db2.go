// Package db2 provides the IBM Db2 dialect definition.
package db2

import (
	"github.com/leapstack-labs/leapquery/pkg/core"
	"github.com/leapstack-labs/leapquery/pkg/dialect"
)

func init() {
	dialect.Register(DB2)
}

// Config is the Db2 LUW dialect configuration.
var Config = &core.DialectConfig{
	Name:        "db2",
	Placeholder: core.PlaceholderQuestion,
	Identifiers: core.IdentifierConfig{
		Quote:         `"`,
		QuoteEnd:      `"`,
		Escape:        `""`,
		Normalization: core.NormUppercase,
	},

	NullSmallest:                 false,
	SupportsNullPrecedence:       true,
	SupportsWindowNullPrecedence: true,
	SupportsWindowFunctions:      true,

	SupportsIntersect:    true,
	SupportsIntersectAll: true,
	SupportsExcept:       true,
	SupportsExceptAll:    true,

	// Db2 recursive CTEs are plain WITH
	Pagination:  core.PaginationOffsetFetch,
	ConcatStyle: core.ConcatPipe,

	CastTypes: map[core.Type]string{
		core.TypeString:  "varchar(255)",
		core.TypeDouble:  "double",
		core.TypeBoolean: "smallint",
		core.TypeBinary:  "blob",
		core.TypeUUID:    "char(36)",
	},
}

// DB2 is the Db2 dialect.
var DB2 = dialect.New(Config).
	WithReservedWords(
		"all", "and", "any", "as", "asc", "between", "by", "case", "cast",
		"check", "column", "constraint", "create", "cross", "current",
		"current_date", "current_time", "current_timestamp", "current_user",
		"default", "delete", "desc", "distinct", "drop", "else", "end", "except",
		"exists", "fetch", "for", "foreign", "from", "full", "grant", "group",
		"having", "in", "inner", "insert", "intersect", "into", "is", "join",
		"left", "like", "not", "null", "of", "on", "or", "order", "outer",
		"primary", "references", "right", "rows", "select", "set", "some",
		"table", "then", "to", "union", "unique", "update", "user", "values",
		"when", "where", "with",
	).
	Build()
