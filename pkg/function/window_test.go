package function_test

import (
	"errors"
	"testing"

	"github.com/leapstack-labs/leapquery/pkg/core"
	"github.com/leapstack-labs/leapquery/pkg/function"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowFunctions(t *testing.T) {
	r := function.NewStandardRegistry(nil)
	pg := mustDialect(t, "postgresql")
	mssql := mustDialect(t, "mssql")

	byOwner := &function.Window{
		PartitionBy: []string{"c.owner"},
		OrderBy:     []function.WindowOrder{{Expr: "c.age"}},
	}

	tests := []struct {
		name    string
		dialect string
		fn      string
		args    []string
		opts    []function.ContextOption
		want    string
	}{
		{
			name: "ranking forces over", dialect: "postgresql", fn: "WINDOW_ROW_NUMBER",
			want: "ROW_NUMBER() OVER ()",
		},
		{
			name: "partition and order", dialect: "postgresql", fn: "WINDOW_RANK",
			opts: []function.ContextOption{function.WithWindow(byOwner)},
			want: "RANK() OVER (PARTITION BY c.owner ORDER BY c.age)",
		},
		{
			name: "native filter", dialect: "postgresql", fn: "WINDOW_COUNT",
			opts: []function.ContextOption{function.WithFilter("c.age > 1")},
			want: "COUNT(*) FILTER (WHERE c.age > 1)",
		},
		{
			name: "emulated filter on star", dialect: "mssql", fn: "WINDOW_COUNT",
			opts: []function.ContextOption{function.WithFilter("c.age > 1")},
			want: "COUNT(CASE WHEN c.age > 1 THEN 1 ELSE NULL END)",
		},
		{
			name: "emulated filter on argument", dialect: "mssql", fn: "WINDOW_SUM", args: []string{"c.age"},
			opts: []function.ContextOption{function.WithFilter("c.active = 1"), function.WithWindow(byOwner)},
			want: "SUM(CASE WHEN c.active = 1 THEN c.age ELSE NULL END) OVER (PARTITION BY c.owner ORDER BY c.age)",
		},
		{
			name: "lag offset is not guarded", dialect: "postgresql", fn: "WINDOW_LAG", args: []string{"c.age", "2"},
			opts: []function.ContextOption{function.WithFilter("c.active")},
			want: "LAG(CASE WHEN c.active THEN c.age ELSE NULL END, 2) OVER ()",
		},
		{
			name: "every emulated", dialect: "mssql", fn: "WINDOW_EVERY", args: []string{"c.active"},
			opts: []function.ContextOption{function.WithWindow(&function.Window{PartitionBy: []string{"c.owner"}})},
			want: "MIN(CASE WHEN c.active THEN 1 ELSE 0 END) OVER (PARTITION BY c.owner)",
		},
		{
			name: "frame", dialect: "postgresql", fn: "WINDOW_SUM", args: []string{"c.age"},
			opts: []function.ContextOption{function.WithWindow(&function.Window{
				OrderBy: []function.WindowOrder{{Expr: "c.id"}},
				Frame:   "ROWS BETWEEN 1 PRECEDING AND CURRENT ROW",
			})},
			want: "SUM(c.age) OVER (ORDER BY c.id ROWS BETWEEN 1 PRECEDING AND CURRENT ROW)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := pg
			if tt.dialect == "mssql" {
				d = mssql
			}
			fn, err := r.Resolve(tt.fn, d)
			require.NoError(t, err)
			out, err := function.Render(fn, function.NewContext(tt.fn, tt.args, tt.opts...))
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestWindowNullPrecedence(t *testing.T) {
	r := function.NewStandardRegistry(nil)

	tests := []struct {
		name    string
		dialect string
		order   function.WindowOrder
		want    string
	}{
		{"native", "postgresql", function.WindowOrder{Expr: "x", Nulls: core.NullsLast}, "ROW_NUMBER() OVER (ORDER BY x NULLS LAST)"},
		{"native desc", "postgresql", function.WindowOrder{Expr: "x", Desc: true, Nulls: core.NullsFirst}, "ROW_NUMBER() OVER (ORDER BY x DESC NULLS FIRST)"},
		{"matches default", "mssql", function.WindowOrder{Expr: "x", Nulls: core.NullsFirst}, "ROW_NUMBER() OVER (ORDER BY x)"},
		{"emulated last", "mssql", function.WindowOrder{Expr: "x", Nulls: core.NullsLast}, "ROW_NUMBER() OVER (ORDER BY CASE WHEN x IS NULL THEN 1 ELSE 0 END, x)"},
		{"emulated desc first", "mssql", function.WindowOrder{Expr: "x", Desc: true, Nulls: core.NullsFirst}, "ROW_NUMBER() OVER (ORDER BY CASE WHEN x IS NULL THEN 0 ELSE 1 END, x DESC)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := r.Resolve("WINDOW_ROW_NUMBER", mustDialect(t, tt.dialect))
			require.NoError(t, err)
			w := &function.Window{OrderBy: []function.WindowOrder{tt.order}}
			out, err := function.Render(fn, function.NewContext("WINDOW_ROW_NUMBER", nil, function.WithWindow(w)))
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestWindowFilterOnRankingRejected(t *testing.T) {
	r := function.NewStandardRegistry(nil)
	fn, err := r.Resolve("WINDOW_RANK", mustDialect(t, "postgresql"))
	require.NoError(t, err)

	out, err := function.Render(fn, function.NewContext("WINDOW_RANK", nil, function.WithFilter("x > 1")))
	assert.Empty(t, out)
	var cfg *function.ConfigurationError
	require.True(t, errors.As(err, &cfg))
	assert.Equal(t, "WINDOW_RANK", cfg.Function)
}

func TestWindowsUnsupported(t *testing.T) {
	d := newDialect(t, core.DialectConfig{Name: "nowindows"})
	r := function.NewStandardRegistry(nil, d)

	fn, src, err := r.Lookup("WINDOW_SUM", d)
	require.NoError(t, err)
	assert.Equal(t, function.SourceDialect, src)

	_, err = function.Render(fn, function.NewContext("WINDOW_SUM", []string{"x"}))
	var cfg *function.ConfigurationError
	require.True(t, errors.As(err, &cfg))
	assert.Contains(t, cfg.Error(), "nowindows")
}
