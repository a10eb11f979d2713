package criteria_test

import (
	"testing"

	"github.com/leapstack-labs/leapquery/internal/testutil"
	"github.com/leapstack-labs/leapquery/pkg/criteria"
	"github.com/leapstack-labs/leapquery/pkg/dialect"
	"github.com/leapstack-labs/leapquery/pkg/function"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Lifecycle(t *testing.T) {
	f := newFactory(t, "postgresql")

	t.Run("finalized", func(t *testing.T) {
		b := f.Create("Document", "d").Select("d.name")
		_, err := b.Build()
		require.NoError(t, err)

		b.Where("d.age > 1")
		require.ErrorIs(t, b.Err(), criteria.ErrFinalized)
		_, err = b.Build()
		require.ErrorIs(t, err, criteria.ErrFinalized)
	})

	t.Run("no from", func(t *testing.T) {
		_, err := f.CreateEmpty().Build()
		require.ErrorIs(t, err, criteria.ErrNoFrom)

		b := f.CreateEmpty().Select("d.name")
		require.ErrorIs(t, b.Err(), criteria.ErrNoFrom)

		_, err = f.Create("Document", "d").WhereExists(func(*criteria.Builder) {}).Build()
		require.ErrorIs(t, err, criteria.ErrNoFrom)
	})

	t.Run("root only", func(t *testing.T) {
		_, err := f.Create("Document", "d").
			WhereExists(func(s *criteria.Builder) {
				s.From("Person", "p").PageByKeyset(nil, 0, 10)
			}).
			Build()
		require.ErrorIs(t, err, criteria.ErrNotRoot)

		_, err = f.Create("Document", "d").
			WhereExists(func(s *criteria.Builder) {
				s.With("x", func(c *criteria.Builder) { c.From("Cat", "c").Select("c.id") })
			}).
			Build()
		require.ErrorIs(t, err, criteria.ErrNotRoot)
	})

	t.Run("first error wins", func(t *testing.T) {
		b := f.Create("Document", "d").Select("d.nope").Where("d.alsoNope = 1")
		var pathErr *criteria.PathError
		require.ErrorAs(t, b.Err(), &pathErr)
		assert.Equal(t, "d.nope", pathErr.Path)
	})

	t.Run("paging bounds", func(t *testing.T) {
		_, err := f.Create("Document", "d").SetFirstResult(-1).Build()
		require.Error(t, err)
		_, err = f.Create("Document", "d").SetMaxResults(-5).Build()
		require.Error(t, err)
		_, err = f.Create("Document", "d").PageByKeyset(nil, 0, 0).Build()
		require.Error(t, err)
	})
}

func TestBuilder_Parameters(t *testing.T) {
	f := newFactory(t, "postgresql")

	t.Run("mixed styles", func(t *testing.T) {
		_, err := f.Create("Document", "d").Where("d.age > :a").Where("d.idx = ?1").Build()
		require.ErrorIs(t, err, criteria.ErrMixedParameters)
	})

	t.Run("value for unused parameter", func(t *testing.T) {
		_, err := f.Create("Document", "d").SetParameter("nope", 1).Build()
		var paramErr *criteria.ParameterError
		require.ErrorAs(t, err, &paramErr)
		assert.Equal(t, ":nope", paramErr.Name)
	})

	t.Run("invalid position", func(t *testing.T) {
		b := f.Create("Document", "d").SetParameter("?0", 1)
		var paramErr *criteria.ParameterError
		require.ErrorAs(t, b.Err(), &paramErr)
	})

	t.Run("unbound", func(t *testing.T) {
		q, err := f.Create("Document", "d").Where("d.age > :a").Build()
		require.NoError(t, err)
		_, err = q.Args()
		var paramErr *criteria.ParameterError
		require.ErrorAs(t, err, &paramErr)
		assert.Equal(t, "a", paramErr.Name)

		_, err = q.Bind("b", 1)
		require.ErrorAs(t, err, &paramErr)

		bound, err := q.Bind("a", 3)
		require.NoError(t, err)
		args, err := bound.Args()
		require.NoError(t, err)
		assert.Equal(t, []any{3}, args)
	})

	t.Run("positional", func(t *testing.T) {
		q, err := f.Create("Document", "d").
			Where("d.age > ?1 AND d.idx < ?2").
			SetPositionalParameter(2, 5).
			SetParameter("?1", 1).
			Build()
		require.NoError(t, err)
		assert.Equal(t, "SELECT d.id, d.name, d.age, d.idx, d.created_at, d.archived FROM document d WHERE d.age > $1 AND d.idx < $2", q.SQL())
		assert.Equal(t, []string{"?1", "?2"}, q.Parameters())
		args, err := q.Args()
		require.NoError(t, err)
		assert.Equal(t, []any{1, 5}, args)
	})

	t.Run("repeated named parameter", func(t *testing.T) {
		q, err := f.Create("Document", "d").
			Select("d.name").
			Where("d.age > :v OR d.idx > :v").
			SetParameter("v", 7).
			Build()
		require.NoError(t, err)
		assert.Equal(t, []string{":v"}, q.Parameters())
		args, err := q.Args()
		require.NoError(t, err)
		assert.Equal(t, []any{7, 7}, args)
	})
}

func TestBuilder_SetOperations(t *testing.T) {
	names := func(b *criteria.Builder) *criteria.Builder {
		return b.Select("d.name").Except(func(o *criteria.Builder) {
			o.From("Cat", "c").Select("c.name")
		})
	}

	tests := []struct {
		dialect string
		sql     string
	}{
		{"postgresql", "SELECT d.name FROM document d EXCEPT SELECT c.name FROM cat c"},
		{"oracle", "SELECT d.name FROM document d MINUS SELECT c.name FROM cat c"},
		{"sqlite", "SELECT d.name FROM document d EXCEPT SELECT c.name FROM cat c"},
	}
	for _, tt := range tests {
		t.Run(tt.dialect, func(t *testing.T) {
			q, err := names(newFactory(t, tt.dialect).Create("Document", "d")).Build()
			require.NoError(t, err)
			assert.Equal(t, tt.sql, q.SQL())
			assert.Equal(t, "SELECT d.name FROM Document d EXCEPT SELECT c.name FROM Cat c", q.JPQL())
		})
	}

	t.Run("unsupported", func(t *testing.T) {
		_, err := newFactory(t, "mssql").Create("Document", "d").
			Select("d.name").
			IntersectAll(func(o *criteria.Builder) { o.From("Cat", "c").Select("c.name") }).
			Build()
		var cfgErr *function.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "INTERSECT ALL", cfgErr.Function)
		assert.Equal(t, "mssql", cfgErr.Dialect)
	})

	t.Run("operand shape", func(t *testing.T) {
		_, err := newFactory(t, "postgresql").Create("Document", "d").
			Select("d.name").
			Union(func(o *criteria.Builder) { o.From("Cat", "c").Select("c.name", "c.age") }).
			Build()
		require.ErrorIs(t, err, criteria.ErrOperandShape)
	})

	t.Run("implicit operands", func(t *testing.T) {
		q, err := newFactory(t, "postgresql").Create("Document", "d").
			Where("d.archived = true").
			UnionAll(func(o *criteria.Builder) { o.From("Document", "x").Where("x.age > 20") }).
			Build()
		require.NoError(t, err)
		assert.Equal(t,
			"SELECT d.id, d.name, d.age, d.idx, d.created_at, d.archived FROM document d WHERE d.archived = TRUE "+
				"UNION ALL SELECT x.id, x.name, x.age, x.idx, x.created_at, x.archived FROM document x WHERE x.age > 20",
			q.SQL())
	})

	t.Run("operand does not see the outer from", func(t *testing.T) {
		_, err := newFactory(t, "postgresql").Create("Document", "d").
			Select("d.name").
			Union(func(o *criteria.Builder) { o.From("Cat", "c").Select("d.name") }).
			Build()
		var pathErr *criteria.PathError
		require.ErrorAs(t, err, &pathErr)
	})
}

func TestBuilder_CTE(t *testing.T) {
	f := newFactory(t, "postgresql")

	adults := func(c *criteria.Builder) {
		c.From("Person", "p").Select("p.id", "p.name").Where("p.age >= 18")
	}

	q, err := f.CreateEmpty().
		With("adults", adults).
		From("adults", "a").
		Select("a.name").
		OrderBy("a.name").
		Build()
	require.NoError(t, err)
	assert.Equal(t,
		"WITH adults(id, name) AS (SELECT p.id, p.name FROM Person p WHERE p.age >= 18) SELECT a.name FROM adults a ORDER BY a.name",
		q.JPQL())
	assert.Equal(t,
		"WITH adults(id, name) AS (SELECT p.id, p.name FROM person p WHERE p.age >= 18) SELECT a.name FROM adults a ORDER BY a.name",
		q.SQL())

	tests := []struct {
		name  string
		build func() *criteria.Builder
	}{
		{"entity name", func() *criteria.Builder { return f.CreateEmpty().With("Document", adults) }},
		{"declared twice", func() *criteria.Builder { return f.CreateEmpty().With("adults", adults).With("adults", adults) }},
		{"unknown column", func() *criteria.Builder {
			return f.CreateEmpty().With("adults", adults).From("adults", "a").Select("a.age")
		}},
		{"item without alias", func() *criteria.Builder {
			return f.CreateEmpty().With("upper", func(c *criteria.Builder) { c.From("Person", "p").Select("UPPER(p.name)") })
		}},
		{"recursive column count", func() *criteria.Builder {
			return f.CreateEmpty().WithRecursive("tree", []string{"id"}, func(c *criteria.Builder) {
				c.From("Cat", "c").Select("c.id", "c.name")
			})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var pathErr *criteria.PathError
			require.ErrorAs(t, tt.build().Err(), &pathErr)
		})
	}
}

func TestBuilder_Windows(t *testing.T) {
	f := newFactory(t, "postgresql")

	q, err := f.Create("Document", "d").
		Window("base", "PARTITION BY d.owner").
		Window("ordered", "base ORDER BY d.name DESC").
		SelectAs("RANK() OVER ordered", "r").
		Build()
	require.NoError(t, err)
	assert.Equal(t, "SELECT RANK() OVER (PARTITION BY d.owner_id ORDER BY d.name DESC) AS r FROM document d", q.SQL())

	t.Run("override of base clause", func(t *testing.T) {
		b := f.Create("Document", "d").
			Window("w", "ORDER BY d.id").
			SelectAs("RANK() OVER (w ORDER BY d.name)", "r")
		var cfgErr *function.ConfigurationError
		require.ErrorAs(t, b.Err(), &cfgErr)
	})

	t.Run("unknown window", func(t *testing.T) {
		b := f.Create("Document", "d").SelectAs("RANK() OVER nope", "r")
		var pathErr *criteria.PathError
		require.ErrorAs(t, b.Err(), &pathErr)
	})

	t.Run("duplicate window", func(t *testing.T) {
		b := f.Create("Document", "d").Window("w", "ORDER BY d.id").Window("w", "ORDER BY d.name")
		var pathErr *criteria.PathError
		require.ErrorAs(t, b.Err(), &pathErr)
	})

	t.Run("dialect without window functions", func(t *testing.T) {
		legacy := dialect.NewDialect("legacy").Build()
		lf, err := criteria.NewFactory(criteria.Config{Model: testutil.SampleModel(t), Dialect: legacy})
		require.NoError(t, err)

		b := lf.Create("Document", "d").SelectAs("ROW_NUMBER() OVER (ORDER BY d.id)", "rn")
		var cfgErr *function.ConfigurationError
		require.ErrorAs(t, b.Err(), &cfgErr)
		assert.Equal(t, "legacy", cfgErr.Dialect)
	})
}
