package commands

import (
	"fmt"

	"github.com/leapstack-labs/leapquery/internal/cli/output"
	"github.com/leapstack-labs/leapquery/pkg/dialect"
	"github.com/leapstack-labs/leapquery/pkg/engine"
	"github.com/spf13/cobra"
)

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	var (
		qf      queryFlags
		showSQL bool
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Build a criteria query and run it against the target",
		Long: `Build a query like the build command does, run it against the configured
target and print one page of results.

Keyset-paged queries also print the cursors of the next and previous pages;
pass one back with --cursor to move through the result.

Output adapts to environment:
  - Terminal: table
  - Piped/Scripted: Markdown table

Use --output to override: auto, text, markdown, json`,
		Example: `  # First page of ten documents in name order
  leapquery query -e Document -s d.id -s d.name --order-by d.name --max 10 --keyset

  # Following page
  leapquery query -e Document -s d.id -s d.name --order-by d.name --max 10 --first 10 --cursor <next>`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := NewCommandContext(cmd)
			ctx := cmd.Context()

			adp, cleanup, err := c.Connect(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			var d *dialect.Dialect
			if c.Cfg.Dialect != "" {
				if d, err = dialect.Lookup(c.Cfg.Dialect); err != nil {
					return err
				}
			} else {
				d = adp.Dialect()
			}

			f, err := c.Factory(d)
			if err != nil {
				return err
			}
			q, err := qf.build(f)
			if err != nil {
				return err
			}
			if showSQL {
				r := output.NewRenderer(cmd.ErrOrStderr(), cmd.ErrOrStderr(), output.ModeText)
				r.Section("SQL", q.SQL())
			}

			res, err := engine.New(adp, c.Logger).Fetch(ctx, q)
			if err != nil {
				return err
			}
			return printResult(c.Renderer, res, q.Keyset() != nil)
		},
	}

	qf.register(cmd)
	cmd.Flags().BoolVar(&showSQL, "show-sql", false, "Print the executed SQL to stderr")

	return cmd
}

type pageJSON struct {
	FirstResult    int    `json:"first_result"`
	Size           int    `json:"size"`
	NextCursor     string `json:"next_cursor,omitempty"`
	PreviousCursor string `json:"previous_cursor,omitempty"`
}

type resultJSON struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
	Page    pageJSON         `json:"page"`
}

func printResult(r *output.Renderer, res *engine.Result, keyed bool) error {
	page := pageJSON{FirstResult: res.Page.FirstResult, Size: res.Page.Size}
	if keyed {
		var err error
		if page.NextCursor, err = res.Page.NextCursor(); err != nil {
			return err
		}
		if page.FirstResult > 0 {
			if page.PreviousCursor, err = res.Page.PreviousCursor(); err != nil {
				return err
			}
		}
	}

	if r.Mode() == output.ModeJSON {
		rows, err := res.Maps()
		if err != nil {
			return err
		}
		if rows == nil {
			rows = []map[string]any{}
		}
		return r.JSON(resultJSON{Columns: res.Columns, Rows: rows, Page: page})
	}

	if err := r.Table(res.Columns, res.Rows); err != nil {
		return err
	}
	out := r.Out()
	_, _ = fmt.Fprintf(out, "(%d rows)\n", res.Page.Size)
	if page.NextCursor != "" {
		_, _ = fmt.Fprintf(out, "next: %s\n", page.NextCursor)
	}
	if page.PreviousCursor != "" {
		_, _ = fmt.Fprintf(out, "previous: %s\n", page.PreviousCursor)
	}
	return nil
}
