// Package postgres defines the PostgreSQL 12+ dialect. It carries no driver
// dependency; the adapter in pkg/adapters/postgres pairs it with pgx.
package postgres

import (
	"github.com/leapstack-labs/leapquery/pkg/core"
	"github.com/leapstack-labs/leapquery/pkg/dialect"
)

func init() {
	dialect.Register(Postgres)
}

// Config is the PostgreSQL dialect configuration.
var Config = &core.DialectConfig{
	Name:        "postgresql",
	Aliases:     []string{"postgres", "pg"},
	Placeholder: core.PlaceholderDollar,
	Identifiers: core.IdentifierConfig{
		Quote:         `"`,
		QuoteEnd:      `"`,
		Escape:        `""`,
		Normalization: core.NormLowercase,
	},

	// NULLS LAST in ascending order
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
		core.TypeString:    "text",
		core.TypeDouble:    "float8",
		core.TypeBinary:    "bytea",
		core.TypeUUID:      "uuid",
		core.TypeTimestamp: "timestamp",
	},
}

// Postgres is the PostgreSQL dialect. The word list is the "reserved" column
// of the PostgreSQL key word table; non-reserved words never need quoting.
var Postgres = dialect.New(Config).
	WithReservedWords(
		"all", "analyse", "analyze", "and", "any", "array", "as", "asc",
		"asymmetric", "authorization", "binary", "both", "case", "cast", "check",
		"collate", "collation", "column", "concurrently", "constraint", "create",
		"cross", "current_catalog", "current_date", "current_role",
		"current_schema", "current_time", "current_timestamp", "current_user",
		"default", "deferrable", "desc", "distinct", "do", "else", "end",
		"except", "false", "fetch", "for", "foreign", "freeze", "from", "full",
		"grant", "group", "having", "ilike", "in", "initially", "inner",
		"intersect", "into", "is", "isnull", "join", "lateral", "leading", "left",
		"like", "limit", "localtime", "localtimestamp", "natural", "not",
		"notnull", "null", "offset", "on", "only", "or", "order", "outer",
		"overlaps", "placing", "primary", "references", "returning", "right",
		"select", "session_user", "similar", "some", "symmetric", "system_user",
		"table", "tablesample", "then", "to", "trailing", "true", "union",
		"unique", "user", "using", "variadic", "verbose", "when", "where",
		"window", "with",
	).
	Build()
