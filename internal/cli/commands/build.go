package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapquery/internal/cli/output"
	"github.com/leapstack-labs/leapquery/pkg/criteria"
	"github.com/leapstack-labs/leapquery/pkg/keyset"
	"github.com/spf13/cobra"
)

// queryFlags describe one criteria query on the command line.
type queryFlags struct {
	entity   string
	alias    string
	joins    []string
	selects  []string
	distinct bool
	where    []string
	groupBy  []string
	having   string
	orderBy  string
	params   []string
	first    int
	max      int
	keyset   bool
	cursor   string
}

func (q *queryFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&q.entity, "entity", "e", "", "Root entity (required)")
	fl.StringVarP(&q.alias, "alias", "a", "", "Alias of the root entity (default: lowercased first letter)")
	fl.StringArrayVar(&q.joins, "join", nil, "Left join a path, as path=alias (repeatable)")
	fl.StringArrayVarP(&q.selects, "select", "s", nil, "Select item, optionally \"expr AS alias\" (repeatable)")
	fl.BoolVar(&q.distinct, "distinct", false, "Select distinct rows")
	fl.StringArrayVarP(&q.where, "where", "w", nil, "Predicate ANDed to the WHERE clause (repeatable)")
	fl.StringArrayVar(&q.groupBy, "group-by", nil, "Grouping expression (repeatable)")
	fl.StringVar(&q.having, "having", "", "HAVING predicate")
	fl.StringVar(&q.orderBy, "order-by", "", "Order list, e.g. \"d.name desc nulls last, d.id\"")
	fl.StringArrayVarP(&q.params, "param", "p", nil, "Parameter value as name=value or ?n=value (repeatable)")
	fl.IntVar(&q.first, "first", 0, "Rows to skip, or the page position with --keyset")
	fl.IntVar(&q.max, "max", 0, "Maximum rows (0 for unlimited)")
	fl.BoolVar(&q.keyset, "keyset", false, "Page by keyset instead of OFFSET (requires --max)")
	fl.StringVar(&q.cursor, "cursor", "", "Keyset cursor from a previous page (implies --keyset)")
	_ = cmd.MarkFlagRequired("entity")
}

// build applies the flags to a new builder of f.
func (q *queryFlags) build(f *criteria.Factory) (*criteria.Query, error) {
	if q.entity == "" {
		return nil, errors.New("--entity is required")
	}
	alias := q.alias
	if alias == "" {
		alias = strings.ToLower(q.entity[:1])
	}

	b := f.Create(q.entity, alias)
	for _, j := range q.joins {
		path, jalias, ok := strings.Cut(j, "=")
		if !ok {
			return nil, fmt.Errorf("invalid join %q: want path=alias", j)
		}
		b.LeftJoin(strings.TrimSpace(path), strings.TrimSpace(jalias))
	}
	for _, s := range q.selects {
		if expr, as, ok := cutAlias(s); ok {
			b.SelectAs(expr, as)
		} else {
			b.Select(s)
		}
	}
	if q.distinct {
		b.Distinct()
	}
	for _, w := range q.where {
		b.Where(w)
	}
	if len(q.groupBy) > 0 {
		b.GroupBy(q.groupBy...)
	}
	if q.having != "" {
		b.Having(q.having)
	}
	if q.orderBy != "" {
		b.OrderBy(q.orderBy)
	}
	for _, p := range q.params {
		name, v, err := parseParam(p)
		if err != nil {
			return nil, err
		}
		b.SetParameter(name, v)
	}

	if q.keyset || q.cursor != "" {
		var link *keyset.Link
		if q.cursor != "" {
			l, err := keyset.DecodeCursor(q.cursor)
			if err != nil {
				return nil, err
			}
			link = l
		}
		b.PageByKeyset(link, q.first, q.max)
	} else {
		if q.first > 0 {
			b.SetFirstResult(q.first)
		}
		if q.max > 0 {
			b.SetMaxResults(q.max)
		}
	}

	return b.Build()
}

// cutAlias splits "expr AS alias" at the last top-level AS.
func cutAlias(s string) (string, string, bool) {
	upper := strings.ToUpper(s)
	i := strings.LastIndex(upper, " AS ")
	if i < 0 {
		return s, "", false
	}
	alias := strings.TrimSpace(s[i+4:])
	if alias == "" || strings.ContainsAny(alias, " ()") {
		return s, "", false
	}
	return strings.TrimSpace(s[:i]), alias, true
}

// NewBuildCommand creates the build command.
func NewBuildCommand() *cobra.Command {
	var qf queryFlags

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a criteria query and print its JPQL and SQL",
		Long: `Build a query against the metamodel and print it as JPQL and as SQL in
the selected dialect, together with the parameters in binding order.

Nothing is executed; no target is needed.`,
		Example: `  # Adult documents ordered by owner, as PostgreSQL
  leapquery build -e Document -s d.name -s d.owner.name \
    -w "d.age >= :minAge" -p minAge=18 --order-by "d.owner.name, d.name" \
    --dialect postgresql

  # Second keyset page from a cursor
  leapquery build -e Document -s d.name --order-by d.name --max 10 --cursor <cursor>`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := NewCommandContext(cmd)
			d, err := c.Cfg.ResolveDialect()
			if err != nil {
				return err
			}
			f, err := c.Factory(d)
			if err != nil {
				return err
			}
			q, err := qf.build(f)
			if err != nil {
				return err
			}
			return printQuery(c.Renderer, q)
		},
	}

	qf.register(cmd)
	return cmd
}

type queryJSON struct {
	Dialect    string         `json:"dialect"`
	JPQL       string         `json:"jpql"`
	SQL        string         `json:"sql"`
	Columns    []string       `json:"columns"`
	Parameters []string       `json:"parameters"`
	Values     map[string]any `json:"values,omitempty"`
	Keyset     []string       `json:"keyset,omitempty"`
}

func printQuery(r *output.Renderer, q *criteria.Query) error {
	if r.Mode() == output.ModeJSON {
		out := queryJSON{
			Dialect:    q.Dialect(),
			JPQL:       q.JPQL(),
			SQL:        q.SQL(),
			Columns:    q.Plan().Columns(),
			Parameters: q.Parameters(),
			Values:     q.Values(),
		}
		if ks := q.Keyset(); ks != nil {
			out.Keyset = ks.Keys
		}
		return r.JSON(out)
	}

	r.Section("JPQL", q.JPQL())
	r.Section("SQL ("+q.Dialect()+")", q.SQL())

	params := q.Parameters()
	if len(params) == 0 {
		return nil
	}
	values := q.Values()
	rows := make([][]any, len(params))
	for i, p := range params {
		v, ok := values[p]
		if !ok {
			v = "(unbound)"
		}
		rows[i] = []any{p, v}
	}
	return r.Table([]string{"parameter", "value"}, rows)
}
