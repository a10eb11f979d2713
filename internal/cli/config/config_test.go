package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/leapstack-labs/leapquery/pkg/adapters/postgres"
	_ "github.com/leapstack-labs/leapquery/pkg/adapters/sqlite"
	_ "github.com/leapstack-labs/leapquery/pkg/dialects/ansi"
	_ "github.com/leapstack-labs/leapquery/pkg/dialects/mysql"
	_ "github.com/leapstack-labs/leapquery/pkg/dialects/postgres"
	_ "github.com/leapstack-labs/leapquery/pkg/dialects/sqlite"
)

const sampleConfig = `
dialect: postgresql
metamodel: model/metamodel.yaml
output: json
target:
  type: postgres
  host: localhost
  database: shop
  user: reader
  password: ${LEAPQUERY_TEST_PASSWORD}
  options:
    sslmode: disable
environments:
  prod:
    target:
      host: db.prod
      options:
        sslmode: require
  local:
    dialect: sqlite
    target:
      type: sqlite
      database: local.db
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "leapquery.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("dialect", "", "")
	fs.StringP("output", "o", "", "")
	fs.BoolP("verbose", "v", false, "")
	fs.String("target-type", "", "")
	fs.String("database", "", "")
	return fs
}

func TestLoadConfig_File(t *testing.T) {
	t.Setenv("LEAPQUERY_TEST_PASSWORD", "s3cret")
	path := writeConfig(t, sampleConfig)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, path, GetConfigFileUsed())
	assert.Equal(t, "postgresql", cfg.Dialect)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "model", "metamodel.yaml"), cfg.Metamodel)

	require.NotNil(t, cfg.Target)
	assert.Equal(t, "postgres", cfg.Target.Type)
	assert.Equal(t, 5432, cfg.Target.Port)
	assert.Equal(t, "s3cret", cfg.Target.Password)
	assert.Equal(t, "disable", cfg.Target.Options["sslmode"])
}

func TestLoadConfig_Environment(t *testing.T) {
	path := writeConfig(t, sampleConfig)

	cfg, err := LoadConfigWithEnvironment(path, "prod", nil)
	require.NoError(t, err)
	assert.Equal(t, "db.prod", cfg.Target.Host)
	assert.Equal(t, "shop", cfg.Target.Database)
	assert.Equal(t, "require", cfg.Target.Options["sslmode"])

	cfg, err = LoadConfigWithEnvironment(path, "local", nil)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Dialect)
	assert.Equal(t, "sqlite", cfg.Target.Type)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "local.db"), cfg.Target.Database)

	_, err = LoadConfigWithEnvironment(path, "staging", nil)
	assert.ErrorContains(t, err, `unknown environment "staging"`)
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := writeConfig(t, sampleConfig)

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv("LEAPQUERY_OUTPUT", "markdown")
		t.Setenv("LEAPQUERY_TARGET_HOST", "from-env")
		cfg, err := LoadConfig(path, nil)
		require.NoError(t, err)
		assert.Equal(t, "markdown", cfg.OutputFormat)
		assert.Equal(t, "from-env", cfg.Target.Host)
	})

	t.Run("flags override env", func(t *testing.T) {
		t.Setenv("LEAPQUERY_OUTPUT", "markdown")
		fs := newFlags()
		require.NoError(t, fs.Parse([]string{"-o", "text", "--dialect", "mysql", "-v"}))

		cfg, err := LoadConfig(path, fs)
		require.NoError(t, err)
		assert.Equal(t, "text", cfg.OutputFormat)
		assert.Equal(t, "mysql", cfg.Dialect)
		assert.True(t, cfg.Verbose)
	})

	t.Run("unchanged flags are ignored", func(t *testing.T) {
		cfg, err := LoadConfig(path, newFlags())
		require.NoError(t, err)
		assert.Equal(t, "postgresql", cfg.Dialect)
		assert.Equal(t, "json", cfg.OutputFormat)
	})

	t.Run("target flags", func(t *testing.T) {
		fs := newFlags()
		require.NoError(t, fs.Parse([]string{"--target-type", "sqlite", "--database", ":memory:"}))
		cfg, err := LoadConfig(path, fs)
		require.NoError(t, err)
		assert.Equal(t, "sqlite", cfg.Target.Type)
		assert.Equal(t, ":memory:", cfg.Target.Database)
	})
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"unknown adapter", "target:\n  type: oracle\n", "invalid target configuration"},
		{"unknown dialect", "dialect: cobol\n", "cobol"},
		{"bad output", "output: html\n", "invalid output format"},
		{"bad yaml", "dialect: [\n", "error reading config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content), nil)
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestResolveDialect(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"explicit", Config{Dialect: "mysql"}, "mysql"},
		{"from target", Config{Target: &TargetConfig{Type: "postgres"}}, "postgresql"},
		{"default", Config{}, "ansi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := tt.cfg.ResolveDialect()
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.GetName())
		})
	}
}

func TestLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()))

	var buf bytes.Buffer
	logger := NewLogger(&buf, false, "json")
	logger.Debug("hidden")
	logger.Warn("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, GetLogger(ctx))

	buf.Reset()
	NewLogger(&buf, true, "text").Debug("visible")
	assert.Contains(t, buf.String(), "msg=visible")
}

func TestConfigContext(t *testing.T) {
	def := GetConfig(context.Background())
	assert.Equal(t, DefaultMetamodel, def.Metamodel)
	assert.Equal(t, DefaultOutput, def.OutputFormat)

	cfg := &Config{Dialect: "sqlite"}
	assert.Same(t, cfg, GetConfig(WithConfig(context.Background(), cfg)))
}
