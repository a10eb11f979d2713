// Package mssql provides the Microsoft SQL Server dialect definition.
package mssql

import (
	"github.com/leapstack-labs/leapquery/pkg/core"
	"github.com/leapstack-labs/leapquery/pkg/dialect"
)

func init() {
	dialect.Register(MSSQL)
}

// Config is the SQL Server dialect configuration.
var Config = &core.DialectConfig{
	Name:        "mssql",
	Aliases:     []string{"sqlserver"},
	Placeholder: core.PlaceholderAtP,
	Identifiers: core.IdentifierConfig{
		Quote:         "[",
		QuoteEnd:      "]",
		Escape:        "]]",
		Normalization: core.NormCaseInsensitive,
	},

	// NULL sorts first ascending; no NULLS FIRST/LAST syntax at all
	NullSmallest:            true,
	SupportsWindowFunctions: true,

	SupportsIntersect: true,
	SupportsExcept:    true,

	Pagination:  core.PaginationOffsetFetch,
	ConcatStyle: core.ConcatFunction,

	CastTypes: map[core.Type]string{
		core.TypeString:    "nvarchar(255)",
		core.TypeDouble:    "float",
		core.TypeBoolean:   "bit",
		core.TypeTimestamp: "datetime2",
		core.TypeBinary:    "varbinary(max)",
		core.TypeUUID:      "uniqueidentifier",
	},
}

// MSSQL is the SQL Server dialect.
var MSSQL = dialect.New(Config).
	WithReservedWords(
		"add", "all", "alter", "and", "any", "as", "asc", "authorization",
		"backup", "begin", "between", "break", "browse", "bulk", "by", "cascade",
		"case", "check", "checkpoint", "close", "clustered", "coalesce",
		"collate", "column", "commit", "compute", "constraint", "contains",
		"continue", "convert", "create", "cross", "current", "cursor",
		"database", "deallocate", "declare", "default", "delete", "deny", "desc",
		"distinct", "drop", "else", "end", "escape", "except", "exec", "execute",
		"exists", "exit", "external", "fetch", "file", "for", "foreign", "from",
		"full", "function", "goto", "grant", "group", "having", "identity", "if",
		"in", "index", "inner", "insert", "intersect", "into", "is", "join", "key",
		"kill", "left", "like", "merge", "national", "not", "null", "nullif",
		"of", "off", "offsets", "on", "open", "option", "or", "order", "outer",
		"over", "percent", "pivot", "plan", "primary", "print", "proc",
		"procedure", "public", "read", "references", "return", "revoke", "right",
		"rollback", "rowcount", "rule", "save", "schema", "select", "set",
		"some", "table", "then", "to", "top", "tran", "transaction", "trigger",
		"truncate", "union", "unique", "unpivot", "update", "use", "user",
		"values", "view", "when", "where", "while", "with",
	).
	Build()
