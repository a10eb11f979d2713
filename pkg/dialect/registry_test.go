package dialect_test

import (
	"strings"
	"testing"

	"github.com/leapstack-labs/leapquery/pkg/core"
	"github.com/leapstack-labs/leapquery/pkg/dialect"
	_ "github.com/leapstack-labs/leapquery/pkg/dialects/ansi"
	_ "github.com/leapstack-labs/leapquery/pkg/dialects/databricks"
	_ "github.com/leapstack-labs/leapquery/pkg/dialects/db2"
	_ "github.com/leapstack-labs/leapquery/pkg/dialects/duckdb"
	_ "github.com/leapstack-labs/leapquery/pkg/dialects/h2"
	_ "github.com/leapstack-labs/leapquery/pkg/dialects/mssql"
	_ "github.com/leapstack-labs/leapquery/pkg/dialects/mysql"
	_ "github.com/leapstack-labs/leapquery/pkg/dialects/oracle"
	_ "github.com/leapstack-labs/leapquery/pkg/dialects/postgres"
	_ "github.com/leapstack-labs/leapquery/pkg/dialects/snowflake"
	_ "github.com/leapstack-labs/leapquery/pkg/dialects/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisteredDialects(t *testing.T) {
	names := dialect.List()
	for _, want := range []string{
		"ansi", "databricks", "db2", "duckdb", "h2", "mssql", "mysql",
		"oracle", "postgresql", "snowflake", "sqlite",
	} {
		assert.Contains(t, names, want)
	}

	for _, alias := range []string{"postgres", "pg", "sqlserver", "sqlite3", "spark"} {
		_, ok := dialect.Get(alias)
		assert.True(t, ok, alias)
	}
}

func TestDialectCapabilities(t *testing.T) {
	tests := []struct {
		name         string
		nullSmallest bool
		nativeNulls  bool
		filter       bool
		placeholder  string
		quoted       string
	}{
		{"postgresql", false, true, true, "$2", `"user"`},
		{"mssql", true, false, false, "@p2", "[user]"},
		{"mysql", true, false, false, "?", "`order`"},
		{"oracle", false, true, false, ":2", `"user"`},
		{"db2", false, true, false, "?", `"user"`},
		{"h2", true, true, true, "?", `"user"`},
		{"sqlite", true, true, true, "?", `"order"`},
		{"duckdb", false, true, true, "?", `"order"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := dialect.Lookup(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.nullSmallest, d.NullSmallest)
			assert.Equal(t, tt.nativeNulls, d.SupportsNullPrecedence)
			assert.Equal(t, tt.filter, d.SupportsFilterClause)
			assert.True(t, d.SupportsWindowFunctions)
			assert.Equal(t, tt.placeholder, d.FormatPlaceholder(2))

			word := strings.Trim(tt.quoted, "\"`[]")
			assert.Equal(t, tt.quoted, d.QuoteIdentifierIfNeeded(word))
		})
	}
}

func TestSetOperationKeywords(t *testing.T) {
	tests := []struct {
		dialect string
		op      core.SetOperator
		all     bool
		want    string
	}{
		{"postgresql", core.SetExcept, true, "EXCEPT ALL"},
		{"oracle", core.SetExcept, false, "MINUS"},
		{"snowflake", core.SetExcept, false, "MINUS"},
		{"mssql", core.SetIntersect, false, "INTERSECT"},
		{"mysql", core.SetIntersect, true, "INTERSECT ALL"},
		{"sqlite", core.SetUnion, true, "UNION ALL"},
	}
	for _, tt := range tests {
		t.Run(tt.dialect+" "+tt.want, func(t *testing.T) {
			d, ok := dialect.Get(tt.dialect)
			require.True(t, ok)
			var sb strings.Builder
			require.NoError(t, d.AppendSet(&sb, tt.op, tt.all))
			assert.Equal(t, tt.want, sb.String())
		})
	}

	for _, name := range []string{"mssql", "oracle", "h2", "sqlite"} {
		d, _ := dialect.Get(name)
		var sb strings.Builder
		err := d.AppendSet(&sb, core.SetIntersect, true)
		assert.Error(t, err, name)
	}
}

func TestCastTypesAreComplete(t *testing.T) {
	types := []core.Type{
		core.TypeString, core.TypeInteger, core.TypeLong, core.TypeDouble,
		core.TypeBigDecimal, core.TypeBoolean, core.TypeDate, core.TypeTime,
		core.TypeTimestamp,
	}
	for _, d := range dialect.All() {
		for _, typ := range types {
			name, ok := d.CastType(typ)
			assert.True(t, ok, "%s %s", d.Name, typ)
			assert.NotEmpty(t, name)
		}
	}
}
