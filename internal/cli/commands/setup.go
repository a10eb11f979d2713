package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapquery/internal/cli/config"
	"github.com/leapstack-labs/leapquery/internal/cli/output"
	"github.com/leapstack-labs/leapquery/pkg/adapter"
	"github.com/leapstack-labs/leapquery/pkg/criteria"
	"github.com/leapstack-labs/leapquery/pkg/dialect"
	"github.com/leapstack-labs/leapquery/pkg/metamodel"
	"github.com/spf13/cobra"
)

// ErrNoTarget is returned by commands that need a database when none is configured.
var ErrNoTarget = errors.New("no target configured: set target in leapquery.yaml or pass --target-type")

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext collects the config, logger and renderer stored on the
// command context by the root command.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := config.GetConfig(ctx)
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(ctx),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)),
	}
}

// Factory loads the configured metamodel and creates a criteria factory
// rendering in d.
func (c *CommandContext) Factory(d *dialect.Dialect) (*criteria.Factory, error) {
	model, err := metamodel.LoadFile(c.Cfg.Metamodel)
	if err != nil {
		return nil, fmt.Errorf("failed to load metamodel: %w", err)
	}
	c.Logger.Debug("metamodel loaded",
		slog.String("path", c.Cfg.Metamodel),
		slog.Int("entities", len(model.Entities())))

	return criteria.NewFactory(criteria.Config{
		Model:   model,
		Dialect: d,
		Logger:  c.Logger,
	})
}

// Connect opens the configured target. The returned cleanup closes it.
func (c *CommandContext) Connect(ctx context.Context) (adapter.Adapter, func(), error) {
	if c.Cfg.Target == nil {
		return nil, nil, ErrNoTarget
	}
	cfg := c.Cfg.Target.AdapterConfig()
	adp, err := adapter.NewAdapter(cfg, c.Logger)
	if err != nil {
		return nil, nil, err
	}
	if err := adp.Connect(ctx, cfg); err != nil {
		return nil, nil, err
	}
	c.Logger.Debug("connected", slog.String("adapter", cfg.Type))

	return adp, func() { _ = adp.Close() }, nil
}

// parseParam splits name=value and converts value to the narrowest of
// int64, float64 or bool. "null" binds nil; anything else stays a string.
// Quote a value ('42') to force a string.
func parseParam(s string) (string, any, error) {
	name, raw, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", nil, fmt.Errorf("invalid parameter %q: want name=value", s)
	}

	if len(raw) >= 2 && raw[0] == '\'' && raw[len(raw)-1] == '\'' {
		return name, raw[1 : len(raw)-1], nil
	}
	if raw == "null" {
		return name, nil, nil
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return name, i, nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return name, f, nil
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return name, b, nil
	}
	return name, raw, nil
}
