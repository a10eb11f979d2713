// Package sqlite provides the SQLite dialect definition.
package sqlite

import (
	"github.com/leapstack-labs/leapquery/pkg/core"
	"github.com/leapstack-labs/leapquery/pkg/dialect"
)

func init() {
	dialect.Register(SQLite)
}

// Config is the SQLite 3.30+ dialect configuration.
var Config = &core.DialectConfig{
	Name:        "sqlite",
	Aliases:     []string{"sqlite3"},
	Placeholder: core.PlaceholderQuestion,
	Identifiers: core.IdentifierConfig{
		Quote:         `"`,
		QuoteEnd:      `"`,
		Escape:        `""`,
		Normalization: core.NormCaseInsensitive,
	},

	NullSmallest:                 true,
	SupportsNullPrecedence:       true,
	SupportsWindowNullPrecedence: true,
	SupportsFilterClause:         true,
	SupportsWindowFunctions:      true,
	SupportsRowValues:            true,

	SupportsIntersect: true,
	SupportsExcept:    true,

	// RECURSIVE is optional in SQLite
	Pagination:     core.PaginationLimitOffset,
	UnboundedLimit: "-1",
	ConcatStyle:    core.ConcatPipe,

	CastTypes: map[core.Type]string{
		core.TypeString:     "text",
		core.TypeLong:       "integer",
		core.TypeDouble:     "real",
		core.TypeBigDecimal: "numeric",
		core.TypeBoolean:    "integer",
		core.TypeDate:       "text",
		core.TypeTime:       "text",
		core.TypeTimestamp:  "text",
		core.TypeBinary:     "blob",
		core.TypeUUID:       "text",
	},
}

// SQLite is the SQLite dialect.
var SQLite = dialect.New(Config).
	WithReservedWords(
		"abort", "action", "add", "after", "all", "alter", "always", "analyze",
		"and", "as", "asc", "attach", "autoincrement", "before", "begin",
		"between", "by", "cascade", "case", "cast", "check", "collate", "column",
		"commit", "conflict", "constraint", "create", "cross", "current",
		"current_date", "current_time", "current_timestamp", "database",
		"default", "deferrable", "deferred", "delete", "desc", "detach",
		"distinct", "do", "drop", "each", "else", "end", "escape", "except",
		"exclude", "exclusive", "exists", "explain", "fail", "filter", "first",
		"following", "for", "foreign", "from", "full", "generated", "glob",
		"group", "groups", "having", "if", "ignore", "immediate", "in", "index",
		"indexed", "initially", "inner", "insert", "instead", "intersect", "into",
		"is", "isnull", "join", "key", "last", "left", "like", "limit", "match",
		"materialized", "natural", "no", "not", "nothing", "notnull", "null",
		"nulls", "of", "offset", "on", "or", "order", "others", "outer", "over",
		"partition", "plan", "pragma", "preceding", "primary", "query", "raise",
		"range", "recursive", "references", "regexp", "reindex", "release",
		"rename", "replace", "restrict", "returning", "right", "rollback", "row",
		"rows", "savepoint", "select", "set", "table", "temp", "temporary",
		"then", "ties", "to", "transaction", "trigger", "unbounded", "union",
		"unique", "update", "using", "vacuum", "values", "view", "virtual",
		"when", "where", "window", "with", "without",
	).
	Build()
