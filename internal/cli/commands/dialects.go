package commands

import (
	"strings"

	"github.com/leapstack-labs/leapquery/internal/cli/output"
	"github.com/leapstack-labs/leapquery/pkg/core"
	"github.com/leapstack-labs/leapquery/pkg/dialect"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var dialectColumns = []string{
	"name", "aliases", "placeholder", "pagination", "nulls",
	"null precedence", "window functions", "set operations", "recursive keyword",
}

// NewDialectsCommand creates the dialects command.
func NewDialectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List supported SQL dialects and their capabilities",
		Long: `List every registered SQL dialect with the capabilities that change
how queries are rendered: parameter placeholders, pagination, NULL ordering,
window functions, set operations and recursive CTE syntax.`,
		Example: `  # Capability table
  leapquery dialects

  # As JSON
  leapquery dialects -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDialects(NewCommandContext(cmd).Renderer)
		},
	}
}

func runDialects(r *output.Renderer) error {
	headers := dialectColumns
	if r.Mode() != output.ModeJSON {
		title := cases.Title(language.English)
		headers = make([]string, len(dialectColumns))
		for i, c := range dialectColumns {
			headers[i] = title.String(c)
		}
	}

	var rows [][]any
	for _, d := range dialect.All() {
		cfg := d.Config()
		nulls := "largest"
		if cfg.NullSmallest {
			nulls = "smallest"
		}
		rows = append(rows, []any{
			d.GetName(),
			strings.Join(cfg.Aliases, ", "),
			placeholderName(cfg.Placeholder),
			paginationName(cfg.Pagination),
			nulls,
			cfg.SupportsNullPrecedence,
			cfg.SupportsWindowFunctions,
			setOperations(cfg),
			cfg.RequiresRecursiveKeyword,
		})
	}
	return r.Table(headers, rows)
}

func placeholderName(p core.PlaceholderStyle) string {
	switch p {
	case core.PlaceholderDollar:
		return "$n"
	case core.PlaceholderAtP:
		return "@pn"
	case core.PlaceholderColon:
		return ":n"
	default:
		return "?"
	}
}

func paginationName(p core.PaginationStyle) string {
	if p == core.PaginationOffsetFetch {
		return "OFFSET FETCH"
	}
	return "LIMIT OFFSET"
}

func setOperations(cfg core.DialectConfig) string {
	ops := []string{"UNION"}
	if cfg.SupportsIntersect {
		ops = append(ops, "INTERSECT")
		if cfg.SupportsIntersectAll {
			ops = append(ops, "INTERSECT ALL")
		}
	}
	if cfg.SupportsExcept {
		kw := cfg.ExceptKeyword
		if kw == "" {
			kw = "EXCEPT"
		}
		ops = append(ops, kw)
		if cfg.SupportsExceptAll {
			ops = append(ops, kw+" ALL")
		}
	}
	return strings.Join(ops, ", ")
}
