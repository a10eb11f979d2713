package commands

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/leapstack-labs/leapquery/internal/cli/output"
	"github.com/leapstack-labs/leapquery/pkg/dialect"
	"github.com/leapstack-labs/leapquery/pkg/function"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewFunctionsCommand creates the functions command.
func NewFunctionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "functions",
		Short: "List the functions available in a dialect",
		Long: `List every function the registry resolves for the selected dialect.

The source column shows which tier answered the lookup: a dialect-specific
override, the portable default, or the fallback emulation.`,
		Example: `  leapquery functions --dialect mssql
  leapquery functions -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := NewCommandContext(cmd)
			d, err := c.Cfg.ResolveDialect()
			if err != nil {
				return err
			}
			reg := function.NewStandardRegistry(c.Logger, d)
			return runFunctions(c.Renderer, reg, d)
		},
	}
}

func runFunctions(r *output.Renderer, reg *function.Registry, d *dialect.Dialect) error {
	var rows [][]any
	for _, e := range reg.Entries(d) {
		rows = append(rows, []any{e.Name, e.Source.String(), arity(e.Function)})
	}
	return r.Table([]string{"function", "source", "arguments"}, rows)
}

func arity(fn function.Function) string {
	if !fn.HasArguments() {
		return "0"
	}
	ad, ok := fn.(function.ArityDeclarer)
	if !ok {
		return "any"
	}
	lo, hi := ad.Arity()
	switch {
	case hi < 0:
		return fmt.Sprintf("%d+", lo)
	case lo == hi:
		return fmt.Sprint(lo)
	default:
		return fmt.Sprintf("%d-%d", lo, hi)
	}
}

// NewRenderFunctionCommand creates the render-function command.
func NewRenderFunctionCommand() *cobra.Command {
	var (
		allDialects bool
		distinct    bool
	)

	cmd := &cobra.Command{
		Use:   "render-function <name> [args...]",
		Short: "Render one function call in one or all dialects",
		Long: `Render a single function call as SQL. Arguments are SQL fragments and are
inserted as written.

With --all-dialects the call is rendered for every registered dialect and
failures are reported per dialect instead of aborting.`,
		Example: `  # Week truncation in the configured dialect
  leapquery render-function TRUNC_WEEK created_at

  # Compare string concatenation across databases
  leapquery render-function CONCAT first_name "' '" last_name --all-dialects`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := NewCommandContext(cmd)
			var targets []*dialect.Dialect
			if allDialects {
				targets = dialect.All()
			} else {
				d, err := c.Cfg.ResolveDialect()
				if err != nil {
					return err
				}
				targets = []*dialect.Dialect{d}
			}

			reg := function.NewStandardRegistry(c.Logger, targets...)
			results, err := renderAll(cmd.Context(), reg, targets, strings.ToUpper(args[0]), args[1:], distinct)
			if err != nil {
				return err
			}

			if len(results) == 1 {
				if results[0].err != nil {
					return results[0].err
				}
				if c.Renderer.Mode() == output.ModeJSON {
					return c.Renderer.JSON(map[string]string{"dialect": results[0].dialect, "sql": results[0].sql})
				}
				_, err := fmt.Fprintln(c.Renderer.Out(), results[0].sql)
				return err
			}

			rows := make([][]any, len(results))
			failed := 0
			for i, res := range results {
				text := res.sql
				if res.err != nil {
					text = "error: " + res.err.Error()
					failed++
				}
				rows[i] = []any{res.dialect, text}
			}
			if err := c.Renderer.Table([]string{"dialect", "sql"}, rows); err != nil {
				return err
			}
			if failed == len(results) {
				return errors.New("function could not be rendered in any dialect")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&allDialects, "all-dialects", false, "Render for every registered dialect")
	cmd.Flags().BoolVar(&distinct, "distinct", false, "Render as an aggregate over DISTINCT arguments")

	return cmd
}

type renderResult struct {
	dialect string
	sql     string
	err     error
}

// renderAll renders the call once per dialect, concurrently. Each render
// gets its own context; the registry is safe for concurrent lookups. Render
// failures are reported per dialect; only cancellation fails the whole call.
func renderAll(ctx context.Context, reg *function.Registry, targets []*dialect.Dialect, name string, args []string, distinct bool) ([]renderResult, error) {
	results := make([]renderResult, len(targets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, d := range targets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res := renderResult{dialect: d.GetName()}
			fn, err := reg.Resolve(name, d)
			if err == nil {
				var opts []function.ContextOption
				if distinct {
					opts = append(opts, function.WithDistinct())
				}
				res.sql, err = function.Render(fn, function.NewContext(name, args, opts...))
			}
			res.err = err
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
