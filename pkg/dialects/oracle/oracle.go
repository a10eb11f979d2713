// Package oracle provides the Oracle Database dialect definition.
package oracle

import (
	"github.com/leapstack-labs/leapquery/pkg/core"
	"github.com/leapstack-labs/leapquery/pkg/dialect"
)

func init() {
	dialect.Register(Oracle)
}

// Config is the Oracle dialect configuration.
var Config = &core.DialectConfig{
	Name:        "oracle",
	Placeholder: core.PlaceholderColon,
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

	// Oracle spells EXCEPT as MINUS and has no ALL variants before 21c
	SupportsIntersect: true,
	SupportsExcept:    true,
	ExceptKeyword:     "MINUS",

	Pagination:  core.PaginationOffsetFetch,
	ConcatStyle: core.ConcatPipe,

	CastTypes: map[core.Type]string{
		core.TypeString:     "varchar2(255 char)",
		core.TypeInteger:    "number(10,0)",
		core.TypeLong:       "number(19,0)",
		core.TypeDouble:     "binary_double",
		core.TypeBigDecimal: "number(19,2)",
		core.TypeBoolean:    "number(1,0)",
		core.TypeBinary:     "blob",
		core.TypeUUID:       "raw(16)",
	},
}

// Oracle is the Oracle dialect.
var Oracle = dialect.New(Config).
	WithReservedWords(
		"access", "add", "all", "alter", "and", "any", "as", "asc", "audit",
		"between", "by", "char", "check", "cluster", "column", "comment",
		"compress", "connect", "create", "current", "date", "decimal", "default",
		"delete", "desc", "distinct", "drop", "else", "exclusive", "exists",
		"file", "float", "for", "from", "grant", "group", "having", "identified",
		"immediate", "in", "increment", "index", "initial", "insert", "integer",
		"intersect", "into", "is", "level", "like", "lock", "long", "maxextents",
		"minus", "mode", "modify", "noaudit", "nocompress", "not", "nowait",
		"null", "number", "of", "offline", "on", "online", "option", "or",
		"order", "pctfree", "prior", "public", "raw", "rename", "resource",
		"revoke", "row", "rowid", "rownum", "rows", "select", "session", "set",
		"share", "size", "smallint", "start", "successful", "synonym", "sysdate",
		"table", "then", "to", "trigger", "uid", "union", "unique", "update",
		"user", "validate", "values", "varchar", "varchar2", "view", "whenever",
		"where", "with",
	).
	Build()
