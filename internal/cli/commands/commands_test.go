package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/leapquery/internal/cli/config"
	clitest "github.com/leapstack-labs/leapquery/internal/cli/testutil"
	"github.com/leapstack-labs/leapquery/internal/testutil"
	"github.com/leapstack-labs/leapquery/pkg/dialect"
	"github.com/leapstack-labs/leapquery/pkg/function"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/leapstack-labs/leapquery/pkg/adapters/sqlite"
	_ "github.com/leapstack-labs/leapquery/pkg/dialects/ansi"
	_ "github.com/leapstack-labs/leapquery/pkg/dialects/mssql"
	_ "github.com/leapstack-labs/leapquery/pkg/dialects/oracle"
	_ "github.com/leapstack-labs/leapquery/pkg/dialects/postgres"
	_ "github.com/leapstack-labs/leapquery/pkg/dialects/sqlite"
)

// newConfig returns a config using the sample metamodel, rendering in
// dialectName with the given output format.
func newConfig(t *testing.T, dialectName, format string) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "metamodel.yaml")
	require.NoError(t, os.WriteFile(path, testutil.SampleModelYAML(), 0o600))
	return &config.Config{
		Dialect:      dialectName,
		Metamodel:    path,
		OutputFormat: format,
		LogFormat:    config.DefaultLogFormat,
	}
}

// withSampleTarget points cfg at a seeded SQLite file.
func withSampleTarget(t *testing.T, cfg *config.Config) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.db")
	testutil.CreateSampleDB(t, path)
	cfg.Target = &config.TargetConfig{Type: "sqlite", Database: path}
	return cfg
}

func execute(t *testing.T, cmd *cobra.Command, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	ctx := config.WithLogger(config.WithConfig(context.Background(), cfg), testutil.NewTestLogger(t))
	err := cmd.ExecuteContext(ctx)
	return buf.String(), err
}

func TestParseParam(t *testing.T) {
	tests := []struct {
		in      string
		name    string
		value   any
		wantErr bool
	}{
		{in: "minAge=18", name: "minAge", value: int64(18)},
		{in: "ratio=0.5", name: "ratio", value: 0.5},
		{in: "flag=true", name: "flag", value: true},
		{in: "city=Vienna", name: "city", value: "Vienna"},
		{in: "code='42'", name: "code", value: "42"},
		{in: "gone=null", name: "gone", value: nil},
		{in: "?1=7", name: "?1", value: int64(7)},
		{in: "empty=", name: "empty", value: ""},
		{in: "novalue", wantErr: true},
		{in: "=1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			name, value, err := parseParam(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.value, value)
		})
	}
}

func TestCutAlias(t *testing.T) {
	tests := []struct {
		in, expr, alias string
		ok              bool
	}{
		{"COUNT(d.id) AS total", "COUNT(d.id)", "total", true},
		{"d.name as n", "d.name", "n", true},
		{"d.name", "d.name", "", false},
		{"CAST(d.age AS string)", "CAST(d.age AS string)", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			expr, alias, ok := cutAlias(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expr, expr)
			assert.Equal(t, tt.alias, alias)
		})
	}
}

func TestDialectsCommand(t *testing.T) {
	out, err := execute(t, NewDialectsCommand(), newConfig(t, "", "json"))
	require.NoError(t, err)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	byName := make(map[string]map[string]any)
	for _, r := range rows {
		byName[r["name"].(string)] = r
	}
	require.Contains(t, byName, "postgresql")
	assert.Equal(t, "$n", byName["postgresql"]["placeholder"])
	assert.Equal(t, "OFFSET FETCH", byName["mssql"]["pagination"])
	assert.Contains(t, byName["oracle"]["set operations"], "MINUS")

	tr := clitest.NewTestRenderer("text")
	require.NoError(t, runDialects(tr.Renderer))
	assert.Contains(t, tr.Output(), "WINDOW FUNCTIONS")
}

func TestFunctionsCommand(t *testing.T) {
	out, err := execute(t, NewFunctionsCommand(), newConfig(t, "mssql", "json"))
	require.NoError(t, err)

	var rows []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	byName := make(map[string]map[string]string)
	for _, r := range rows {
		byName[r["function"]] = r
	}

	assert.Equal(t, "1", byName["UPPER"]["arguments"])
	assert.Equal(t, function.SourceDefault.String(), byName["UPPER"]["source"])
	assert.Equal(t, "2+", byName["COALESCE"]["arguments"])
	assert.Equal(t, "0-1", byName["COUNT"]["arguments"])
	assert.Equal(t, "0", byName["CURRENT_TIMESTAMP"]["arguments"])
	assert.Equal(t, function.SourceDialect.String(), byName["TRUNC_WEEK"]["source"])
}

func TestRenderFunctionCommand(t *testing.T) {
	t.Run("configured dialect", func(t *testing.T) {
		out, err := execute(t, NewRenderFunctionCommand(), newConfig(t, "oracle", "text"), "trunc_week", "startDate")
		require.NoError(t, err)
		assert.Equal(t, "TRUNC(startDate, 'IW')\n", out)
	})

	t.Run("distinct aggregate", func(t *testing.T) {
		out, err := execute(t, NewRenderFunctionCommand(), newConfig(t, "postgresql", "json"), "COUNT", "d.name", "--distinct")
		require.NoError(t, err)
		assert.JSONEq(t, `{"dialect":"postgresql","sql":"COUNT(DISTINCT d.name)"}`, out)
	})

	t.Run("all dialects", func(t *testing.T) {
		out, err := execute(t, NewRenderFunctionCommand(), newConfig(t, "", "markdown"), "UPPER", "x", "--all-dialects")
		require.NoError(t, err)
		for _, d := range []string{"postgresql", "mssql", "oracle", "sqlite"} {
			assert.Contains(t, out, "| "+d+" | UPPER(x) |")
		}
	})

	t.Run("errors are reported per dialect", func(t *testing.T) {
		out, err := execute(t, NewRenderFunctionCommand(), newConfig(t, "", "markdown"), "UPPER", "a", "b", "--all-dialects")
		require.Error(t, err)
		assert.Contains(t, out, "error: arity error")
	})

	t.Run("unknown function", func(t *testing.T) {
		_, err := execute(t, NewRenderFunctionCommand(), newConfig(t, "sqlite", "text"), "FROBNICATE")
		var unknown *function.UnknownFunctionError
		require.ErrorAs(t, err, &unknown)
	})
}

func TestRenderAll(t *testing.T) {
	targets := dialect.All()
	require.NotEmpty(t, targets)
	reg := function.NewStandardRegistry(nil, targets...)

	results, err := renderAll(context.Background(), reg, targets, "UPPER", []string{"a", "b"}, false)
	require.NoError(t, err, "render failures stay per dialect")
	require.Len(t, results, len(targets))
	for _, res := range results {
		assert.Error(t, res.err, res.dialect)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err = renderAll(ctx, reg, targets, "UPPER", []string{"x"}, false)
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, results)
}

func TestBuildCommand(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		out, err := execute(t, NewBuildCommand(), newConfig(t, "postgresql", "text"),
			"-e", "Document", "-s", "d.name", "-w", "d.age >= :minAge", "-p", "minAge=18")
		require.NoError(t, err)
		assert.Contains(t, out, "JPQL:\n  SELECT d.name FROM Document d WHERE d.age >= :minAge\n")
		assert.Contains(t, out, "SQL (postgresql):\n  SELECT d.name FROM document d WHERE d.age >= $1\n")
		assert.Contains(t, out, ":minAge")
		assert.Contains(t, out, "18")
	})

	t.Run("json keyset", func(t *testing.T) {
		out, err := execute(t, NewBuildCommand(), newConfig(t, "sqlite", "json"),
			"-e", "Document", "-s", "d.name", "--order-by", "d.name", "--keyset", "--max", "3")
		require.NoError(t, err)

		var q queryJSON
		require.NoError(t, json.Unmarshal([]byte(out), &q))
		assert.Equal(t, "sqlite", q.Dialect)
		assert.Equal(t, "SELECT d.name, d.id FROM document d ORDER BY d.name NULLS FIRST, d.id NULLS FIRST LIMIT 3", q.SQL)
		assert.Equal(t, []string{"name"}, q.Columns)
		assert.Equal(t, []string{"d.name", "d.id"}, q.Keyset)
	})

	t.Run("select alias and grouping", func(t *testing.T) {
		out, err := execute(t, NewBuildCommand(), newConfig(t, "postgresql", "json"),
			"-e", "Document", "-a", "doc", "-s", "doc.owner.name AS owner", "-s", "COUNT(doc.id) AS total",
			"--group-by", "doc.owner.name", "--having", "COUNT(doc.id) > 1")
		require.NoError(t, err)

		var q queryJSON
		require.NoError(t, json.Unmarshal([]byte(out), &q))
		assert.Equal(t, []string{"owner", "total"}, q.Columns)
		assert.Contains(t, q.SQL, "GROUP BY owner_1.name HAVING COUNT(doc.id) > 1")
	})

	t.Run("invalid path", func(t *testing.T) {
		_, err := execute(t, NewBuildCommand(), newConfig(t, "postgresql", "text"), "-e", "Document", "-s", "d.title")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "title")
	})

	t.Run("missing metamodel", func(t *testing.T) {
		cfg := newConfig(t, "postgresql", "text")
		cfg.Metamodel = filepath.Join(t.TempDir(), "nope.yaml")
		_, err := execute(t, NewBuildCommand(), cfg, "-e", "Document")
		require.ErrorContains(t, err, "failed to load metamodel")
	})
}

type pageOutput struct {
	Rows []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"rows"`
	Page pageJSON `json:"page"`
}

func (p pageOutput) ids() []int64 {
	out := make([]int64, len(p.Rows))
	for i, r := range p.Rows {
		out[i] = r.ID
	}
	return out
}

func TestQueryCommand_KeysetPages(t *testing.T) {
	cfg := withSampleTarget(t, newConfig(t, "", "json"))
	base := []string{"-e", "Document", "-s", "d.id", "-s", "d.name", "--order-by", "d.name", "--max", "3"}

	run := func(extra ...string) pageOutput {
		out, err := execute(t, NewQueryCommand(), cfg, append(append([]string{}, base...), extra...)...)
		require.NoError(t, err, out)
		var p pageOutput
		require.NoError(t, json.Unmarshal([]byte(out), &p), out)
		return p
	}

	first := run("--keyset")
	assert.Equal(t, []int64{1, 2, 7}, first.ids())
	assert.Equal(t, "Alpha", first.Rows[0].Name)
	require.NotEmpty(t, first.Page.NextCursor)
	assert.Empty(t, first.Page.PreviousCursor)

	second := run("--first", "3", "--cursor", first.Page.NextCursor)
	assert.Equal(t, []int64{3, 4, 11}, second.ids())
	require.NotEmpty(t, second.Page.PreviousCursor)

	back := run("--first", "0", "--cursor", second.Page.PreviousCursor)
	assert.Equal(t, first.ids(), back.ids())
}

func TestQueryCommand_Table(t *testing.T) {
	cfg := withSampleTarget(t, newConfig(t, "", "markdown"))
	out, err := execute(t, NewQueryCommand(), cfg,
		"-e", "Cat", "-s", "c.name", "-w", "c.age > :age", "-p", "age=2", "--order-by", "c.name")
	require.NoError(t, err)
	assert.Contains(t, out, "| name |")
	assert.Contains(t, out, "| Leo |")
	assert.Contains(t, out, "| Mia |")
	assert.NotContains(t, out, "Luna")
	assert.Contains(t, out, "(2 rows)")
	assert.NotContains(t, out, "next:")
}

func TestQueryCommand_Errors(t *testing.T) {
	t.Run("no target", func(t *testing.T) {
		_, err := execute(t, NewQueryCommand(), newConfig(t, "", "text"), "-e", "Document")
		require.ErrorIs(t, err, ErrNoTarget)
	})

	t.Run("dialect mismatch", func(t *testing.T) {
		cfg := withSampleTarget(t, newConfig(t, "postgresql", "text"))
		_, err := execute(t, NewQueryCommand(), cfg, "-e", "Document")
		require.ErrorContains(t, err, "postgresql")
	})

	t.Run("bad cursor", func(t *testing.T) {
		cfg := withSampleTarget(t, newConfig(t, "", "text"))
		_, err := execute(t, NewQueryCommand(), cfg, "-e", "Document", "--order-by", "d.name", "--max", "2", "--cursor", "%%%")
		require.Error(t, err)
	})
}
