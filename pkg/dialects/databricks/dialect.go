package databricks

import (
	"github.com/leapstack-labs/leapquery/pkg/dialect"
)

func init() {
	dialect.Register(Databricks)
}

// Databricks is the Databricks SQL dialect.
var Databricks = dialect.New(Config).
	WithReservedWords(
		"all", "alter", "and", "anti", "any", "as", "authorization", "between",
		"both", "by", "case", "cast", "check", "collate", "column", "constraint",
		"create", "cross", "cube", "current", "current_date", "current_time",
		"current_timestamp", "current_user", "delete", "describe", "distinct",
		"drop", "else", "end", "except", "exists", "false", "fetch", "filter",
		"for", "foreign", "from", "full", "grant", "group", "grouping", "having",
		"in", "inner", "intersect", "interval", "into", "is", "join", "lateral",
		"leading", "left", "like", "minus", "natural", "not", "null", "of", "on",
		"only", "or", "order", "outer", "overlaps", "primary", "references",
		"right", "rollup", "select", "semi", "session_user", "some", "table",
		"then", "to", "trailing", "true", "union", "unique", "unknown", "user",
		"using", "values", "when", "where", "window", "with",
	).
	Build()
