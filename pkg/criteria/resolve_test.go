package criteria_test

import (
	"testing"

	"github.com/leapstack-labs/leapquery/pkg/core"
	"github.com/leapstack-labs/leapquery/pkg/criteria"
	"github.com/leapstack-labs/leapquery/pkg/function"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoins_ImplicitDedup(t *testing.T) {
	f := newFactory(t, "postgresql")

	q, err := f.Create("Document", "d").
		Select("d.owner.name", "d.owner.age").
		Where("d.owner.name = 'Karl'").
		OrderBy("d.owner.age").
		Build()
	require.NoError(t, err)

	require.Len(t, q.AST().From, 1)
	assert.Len(t, q.AST().From[0].Joins, 1)
	assert.Equal(t,
		"SELECT owner_1.name, owner_1.age FROM document d LEFT JOIN person owner_1 ON owner_1.id = d.owner_id WHERE owner_1.name = 'Karl' ORDER BY owner_1.age",
		q.SQL())
}

func TestJoins_NestedAssociations(t *testing.T) {
	f := newFactory(t, "postgresql")

	q, err := f.Create("Document", "d").
		Select("d.owner.friend.name").
		Build()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT friend_1.name FROM Document d LEFT JOIN d.owner owner_1 LEFT JOIN owner_1.friend friend_1",
		q.JPQL())
	assert.Equal(t,
		"SELECT friend_1.name FROM document d LEFT JOIN person owner_1 ON owner_1.id = d.owner_id LEFT JOIN person friend_1 ON friend_1.id = owner_1.friend_id",
		q.SQL())
}

func TestJoins_ForeignKeyShortcut(t *testing.T) {
	f := newFactory(t, "postgresql")

	q, err := f.Create("Document", "d").
		Select("d.name").
		Where("d.owner.id = 1").
		Build()
	require.NoError(t, err)
	assert.Empty(t, q.AST().From[0].Joins)
	assert.Equal(t, "SELECT d.name FROM document d WHERE d.owner_id = 1", q.SQL())
	assert.Equal(t, "SELECT d.name FROM Document d WHERE d.owner.id = 1", q.JPQL())
}

func TestJoins_ExplicitUpgradesImplicit(t *testing.T) {
	f := newFactory(t, "postgresql")

	q, err := f.Create("Document", "d").
		Select("d.owner.name").
		InnerJoin("d.owner", "o").
		Where("o.age > 30").
		Build()
	require.NoError(t, err)
	assert.Equal(t, "SELECT o.name FROM Document d INNER JOIN d.owner o WHERE o.age > 30", q.JPQL())
	assert.Equal(t, "SELECT o.name FROM document d INNER JOIN person o ON o.id = d.owner_id WHERE o.age > 30", q.SQL())

	_, err = f.Create("Document", "d").
		LeftJoin("d.owner", "o").
		InnerJoin("d.owner", "o2").
		Build()
	var pathErr *criteria.PathError
	require.ErrorAs(t, err, &pathErr)
	assert.Equal(t, "d.owner", pathErr.Path)
}

func TestJoins_CollectionJoin(t *testing.T) {
	f := newFactory(t, "postgresql")

	q, err := f.Create("Cat", "c").
		LeftJoin("c.kittens", "k").
		Select("c.name", "k.name").
		Build()
	require.NoError(t, err)
	assert.Equal(t, "SELECT c.name, k.name FROM Cat c LEFT JOIN c.kittens k", q.JPQL())
	assert.Equal(t, "SELECT c.name, k.name FROM cat c LEFT JOIN cat k ON k.mother_id = c.id", q.SQL())
}

func TestJoins_EntityJoin(t *testing.T) {
	f := newFactory(t, "postgresql")

	q, err := f.Create("Document", "d").
		JoinOn("Person", "p", core.JoinLeft, "p.partnerDocument.id = d.id").
		Select("d.name", "p.name").
		Build()
	require.NoError(t, err)
	assert.Equal(t, "SELECT d.name, p.name FROM Document d LEFT JOIN Person p ON p.partnerDocument.id = d.id", q.JPQL())
	assert.Equal(t, "SELECT d.name, p.name FROM document d LEFT JOIN person p ON p.partner_document_id = d.id", q.SQL())
}

func TestResolve_Treat(t *testing.T) {
	f := newFactory(t, "postgresql")

	q, err := f.Create("Person", "p").
		Select("TREAT(p AS Employee).salary").
		Where("TREAT(p AS Employee).manager.name = 'Karl'").
		Build()
	require.NoError(t, err)
	assert.Contains(t, q.JPQL(), "SELECT TREAT(p AS Employee).salary FROM Person p")
	assert.Equal(t,
		"SELECT p.salary FROM person p LEFT JOIN person manager_1 ON manager_1.id = p.manager_id WHERE manager_1.name = 'Karl'",
		q.SQL())

	_, err = f.Create("Document", "d").Select("TREAT(d AS Employee).salary").Build()
	var pathErr *criteria.PathError
	require.ErrorAs(t, err, &pathErr)
	assert.Contains(t, pathErr.Reason, "not a subtype")

	// Without TREAT the subtype attribute is invisible.
	_, err = f.Create("Person", "p").Select("p.salary").Build()
	require.ErrorAs(t, err, &pathErr)
}

func TestResolve_Correlation(t *testing.T) {
	f := newFactory(t, "postgresql")

	q, err := f.Create("Document", "d").
		Select("d.id").
		WhereExists(func(s *criteria.Builder) {
			s.From("Person", "p").
				Select("p.id").
				Where("p.partnerDocument.id = OUTER(id)").
				WhereExists(func(s2 *criteria.Builder) {
					s2.From("Cat", "c").
						Select("c.id").
						Where("c.age = OUTER(age)").
						Where("c.name = VIEW_ROOT(name)")
				})
		}).
		Build()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT d.id FROM document d WHERE EXISTS (SELECT p.id FROM person p WHERE p.partner_document_id = d.id AND EXISTS (SELECT c.id FROM cat c WHERE c.age = p.age AND c.name = d.name))",
		q.SQL())

	// Aliases of enclosing queries are visible without OUTER.
	q, err = f.Create("Document", "d").
		Select("d.id").
		WhereIn("d.owner.id", func(s *criteria.Builder) {
			s.From("Person", "p").Select("p.id").Where("p.age > d.age")
		}).
		Build()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT d.id FROM document d WHERE d.owner_id IN (SELECT p.id FROM person p WHERE p.age > d.age)",
		q.SQL())
}

func TestResolve_CorrelationErrors(t *testing.T) {
	f := newFactory(t, "postgresql")

	_, err := f.Create("Document", "d").Where("d.age > OUTER(age)").Build()
	var pathErr *criteria.PathError
	require.ErrorAs(t, err, &pathErr)
	assert.Equal(t, "no enclosing query", pathErr.Reason)

	_, err = f.Create("Document", "d").
		WhereExists(func(s *criteria.Builder) {
			s.From("Person", "p").Where("p.age > OUTER(age, name)")
		}).
		Build()
	require.ErrorAs(t, err, &pathErr)
}

func TestResolve_Errors(t *testing.T) {
	f := newFactory(t, "postgresql")

	tests := []struct {
		name   string
		build  func() *criteria.Builder
		reason string
	}{
		{
			name:   "unknown entity",
			build:  func() *criteria.Builder { return f.Create("Invoice", "i") },
			reason: "unknown entity",
		},
		{
			name:   "unknown attribute",
			build:  func() *criteria.Builder { return f.Create("Document", "d").Select("d.title") },
			reason: `unknown attribute "title" of Document`,
		},
		{
			name:   "unknown alias",
			build:  func() *criteria.Builder { return f.Create("Document", "d").Select("x.name") },
			reason: `unknown alias or attribute "x"`,
		},
		{
			name:   "dereferenced basic attribute",
			build:  func() *criteria.Builder { return f.Create("Document", "d").Select("d.name.foo") },
			reason: `cannot dereference basic attribute "name"`,
		},
		{
			name:   "embeddable without attribute",
			build:  func() *criteria.Builder { return f.Create("Person", "p").Select("p.address") },
			reason: `embeddable "address" must be dereferenced`,
		},
		{
			name:   "duplicate alias",
			build:  func() *criteria.Builder { return f.Create("Document", "d").From("Person", "d") },
			reason: "alias is already defined",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build().Build()
			var pathErr *criteria.PathError
			require.ErrorAs(t, err, &pathErr)
			assert.Contains(t, pathErr.Reason, tt.reason)
		})
	}
}

func TestResolve_UnqualifiedPaths(t *testing.T) {
	f := newFactory(t, "postgresql")

	q, err := f.Create("Document", "d").
		Select("name").
		Where("owner.name = 'Karl'").
		Build()
	require.NoError(t, err)
	assert.Equal(t, "SELECT d.name FROM Document d LEFT JOIN d.owner owner_1 WHERE owner_1.name = 'Karl'", q.JPQL())

	// With two roots an unqualified path is ambiguous.
	_, err = f.Create("Document", "d").From("Person", "p").Select("name").Build()
	var pathErr *criteria.PathError
	require.ErrorAs(t, err, &pathErr)
}

func TestResolve_ConstantFunctions(t *testing.T) {
	f := newFactory(t, "postgresql")

	q, err := f.Create("Document", "d").
		Select("d.name").
		Where("d.createdAt < CURRENT_TIMESTAMP").
		Build()
	require.NoError(t, err)
	assert.Equal(t, "SELECT d.name FROM Document d WHERE d.createdAt < CURRENT_TIMESTAMP", q.JPQL())
	assert.Equal(t, "SELECT d.name FROM document d WHERE d.created_at < CURRENT_TIMESTAMP", q.SQL())
}

func TestResolve_Functions(t *testing.T) {
	f := newFactory(t, "postgresql")

	_, err := f.Create("Document", "d").Select("FROBNICATE(d.name)").Build()
	var unknown *function.UnknownFunctionError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "FROBNICATE", unknown.Name)

	b := f.Create("Document", "d").Select("UPPER(d.name, d.name)")
	var arity *function.ArityError
	require.ErrorAs(t, b.Err(), &arity, "arity is checked when the item is added")
	_, err = b.Build()
	assert.ErrorIs(t, err, b.Err())

	q, err := f.Create("Document", "d").Select("UPPER(d.name)", "COUNT(DISTINCT d.age)").GroupBy("d.name").Build()
	require.NoError(t, err)
	assert.Equal(t, "SELECT UPPER(d.name), COUNT(DISTINCT d.age) FROM document d GROUP BY d.name", q.SQL())
	assert.Equal(t, []string{"col1", "col2"}, q.Plan().Columns())
	assert.Equal(t, core.TypeString, q.Plan().Elements()[0].Type)
	assert.Equal(t, core.TypeLong, q.Plan().Elements()[1].Type)
}
