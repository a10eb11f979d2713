// Package mysql provides the MySQL dialect definition.
package mysql

import (
	"github.com/leapstack-labs/leapquery/pkg/core"
	"github.com/leapstack-labs/leapquery/pkg/dialect"
)

func init() {
	dialect.Register(MySQL)
}

// Config is the MySQL 8 dialect configuration.
var Config = &core.DialectConfig{
	Name:        "mysql",
	Aliases:     []string{"mariadb"},
	Placeholder: core.PlaceholderQuestion,
	Identifiers: core.IdentifierConfig{
		Quote:         "`",
		QuoteEnd:      "`",
		Escape:        "``",
		Normalization: core.NormCaseSensitive,
	},

	NullSmallest:            true,
	SupportsWindowFunctions: true,
	SupportsRowValues:       true,

	SupportsIntersect:    true,
	SupportsIntersectAll: true,
	SupportsExcept:       true,
	SupportsExceptAll:    true,

	RequiresRecursiveKeyword: true,
	Pagination:               core.PaginationLimitOffset,
	UnboundedLimit:           "18446744073709551615",
	ConcatStyle:              core.ConcatFunction,

	CastTypes: map[core.Type]string{
		core.TypeString:     "char",
		core.TypeInteger:    "signed",
		core.TypeLong:       "signed",
		core.TypeDouble:     "double",
		core.TypeBigDecimal: "decimal(19,2)",
		core.TypeBoolean:    "unsigned",
		core.TypeTimestamp:  "datetime",
		core.TypeBinary:     "binary",
	},
}

// MySQL is the MySQL dialect.
var MySQL = dialect.New(Config).
	WithReservedWords(
		"accessible", "add", "all", "alter", "analyze", "and", "as", "asc",
		"between", "both", "by", "call", "cascade", "case", "change", "check",
		"collate", "column", "condition", "constraint", "continue", "convert",
		"create", "cross", "cube", "cume_dist", "current_date", "current_time",
		"current_timestamp", "current_user", "cursor", "database", "databases",
		"default", "delete", "dense_rank", "desc", "describe", "distinct", "div",
		"drop", "each", "else", "elseif", "empty", "escaped", "except", "exists",
		"explain", "false", "fetch", "first_value", "for", "force", "foreign",
		"from", "fulltext", "function", "grant", "group", "grouping", "groups",
		"having", "if", "ignore", "in", "index", "inner", "insert", "interval",
		"into", "is", "join", "key", "keys", "kill", "lag", "last_value",
		"lateral", "lead", "leading", "left", "like", "limit", "lines", "load",
		"lock", "match", "mod", "natural", "not", "nth_value", "ntile", "null",
		"of", "on", "option", "or", "order", "outer", "over", "partition",
		"percent_rank", "primary", "range", "rank", "read", "recursive",
		"references", "regexp", "rename", "repeat", "replace", "require",
		"restrict", "return", "revoke", "right", "rlike", "row", "row_number",
		"rows", "schema", "select", "set", "show", "sql", "system", "table",
		"then", "to", "trailing", "trigger", "true", "union", "unique", "unlock",
		"update", "usage", "use", "using", "values", "when", "where", "while",
		"window", "with", "write", "xor",
	).
	Build()
