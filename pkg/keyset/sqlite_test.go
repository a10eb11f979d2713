package keyset_test

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"testing"

	"github.com/leapstack-labs/leapquery/internal/testutil"
	"github.com/leapstack-labs/leapquery/pkg/core"
	"github.com/leapstack-labs/leapquery/pkg/dialects/sqlite"
	"github.com/leapstack-labs/leapquery/pkg/function"
	"github.com/leapstack-labs/leapquery/pkg/keyset"
	"github.com/leapstack-labs/leapquery/pkg/render"
	"github.com/stretchr/testify/require"
)

var (
	docs     = &core.Source{Alias: "d", Entity: "Document", Table: "document", IDColumn: "id"}
	docID    = &core.BoundPath{Source: docs, Attributes: []string{"id"}, Column: "id", Type: core.TypeLong, Unique: true}
	docName  = &core.BoundPath{Source: docs, Attributes: []string{"name"}, Column: "name", Type: core.TypeString}
	docAge   = &core.BoundPath{Source: docs, Attributes: []string{"age"}, Column: "age", Type: core.TypeInteger, Nullable: true}
	docCrtAt = &core.BoundPath{Source: docs, Attributes: []string{"createdAt"}, Column: "created_at", Type: core.TypeTimestamp, Nullable: true}
)

// seek runs one page query and returns the selected rows in query order.
func seek(t *testing.T, db *sql.DB, items []core.OrderByItem, where core.Expr, params map[string]any, limit int) [][]any {
	t.Helper()

	sel := make([]core.SelectItem, len(items))
	for i, o := range items {
		sel[i] = core.SelectItem{Expr: o.Expr}
	}
	q := &core.SelectQuery{
		Select:     sel,
		From:       []*core.FromItem{{Source: docs}},
		Where:      where,
		OrderBy:    items,
		MaxResults: limit,
	}
	res, err := render.Query(q, render.Options{Mode: render.ModeSQL, Dialect: sqlite.SQLite, Functions: function.NewStandardRegistry(nil)})
	require.NoError(t, err)

	args := make([]any, len(res.Params))
	for i, p := range res.Params {
		args[i] = params[p.Name]
	}
	rows, err := db.QueryContext(context.Background(), res.Text, args...)
	require.NoError(t, err, res.Text)
	defer func() { _ = rows.Close() }()

	var out [][]any
	for rows.Next() {
		vals := make([]any, len(items))
		ptrs := make([]any, len(items))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		require.NoError(t, rows.Scan(ptrs...))
		out = append(out, vals)
	}
	require.NoError(t, rows.Err())
	return out
}

func TestPredicate_SQLiteRoundTrip(t *testing.T) {
	db := testutil.OpenSampleDB(t)

	orderings := [][]core.OrderByItem{
		{{Expr: docName}, {Expr: docID}},
		{{Expr: docAge, Nulls: core.NullsLast}, {Expr: docName, Desc: true}, {Expr: docID}},
		{{Expr: docAge, Desc: true, Nulls: core.NullsLast}, {Expr: docID, Desc: true}},
		{{Expr: docCrtAt, Nulls: core.NullsFirst}, {Expr: docID}},
		{{Expr: docAge}, {Expr: docID, Desc: true}},
	}

	for oi, items := range orderings {
		for _, size := range []int{1, 3, 5} {
			t.Run(fmt.Sprintf("ordering%d/size%d", oi, size), func(t *testing.T) {
				cols := keyset.ColumnsOf(items, sqlite.SQLite.NullSmallest)
				all := seek(t, db, items, nil, nil, 0)
				require.Len(t, all, 12)

				// Forward through every page.
				var forward [][]any
				var last keyset.Keyset
				for {
					var where core.Expr
					var params map[string]any
					if last != nil {
						var err error
						where, params, err = keyset.Predicate(cols, last, keyset.Next)
						require.NoError(t, err)
					}
					page := seek(t, db, items, where, params, size)
					if len(page) == 0 {
						break
					}
					forward = append(forward, page...)
					last = page[len(page)-1]
					require.LessOrEqual(t, len(forward), len(all), "paging does not terminate")
				}
				require.Equal(t, all, forward)

				// Backward from the last row, scanning the inverted ordering.
				inverted := make([]core.OrderByItem, len(items))
				for i, o := range items {
					inverted[i] = o.Inverted(sqlite.SQLite.NullSmallest)
				}
				var backward [][]any
				first := keyset.Keyset(all[len(all)-1])
				backward = append(backward, all[len(all)-1])
				for {
					where, params, err := keyset.Predicate(cols, first, keyset.Previous)
					require.NoError(t, err)
					page := seek(t, db, inverted, where, params, size)
					if len(page) == 0 {
						break
					}
					slices.Reverse(page)
					backward = append(page, backward...)
					first = page[0]
					require.LessOrEqual(t, len(backward), len(all), "paging does not terminate")
				}
				require.Equal(t, all, backward)

				// Same re-reads a page from its first row.
				where, params, err := keyset.Predicate(cols, all[4], keyset.Same)
				require.NoError(t, err)
				require.Equal(t, all[4:4+size], seek(t, db, items, where, params, size))
			})
		}
	}
}
