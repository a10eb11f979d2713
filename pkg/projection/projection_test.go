package projection_test

import (
	"testing"
	"time"

	"github.com/leapstack-labs/leapquery/pkg/core"
	"github.com/leapstack-labs/leapquery/pkg/projection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type owner struct {
	Name string `query:"name"`
	Age  *int   `query:"age"`
}

type documentView struct {
	ID       int64     `query:"id"`
	Title    string    `query:"name"`
	Created  time.Time `query:"createdAt"`
	Archived bool      `query:"archived"`
	Owner    owner     `query:"owner"`
}

func plan(t *testing.T) *projection.Plan {
	t.Helper()
	p, err := projection.New(
		projection.Element{Alias: "id", Type: core.TypeLong},
		projection.Element{Alias: "name", Type: core.TypeString},
		projection.Element{Alias: "createdAt", Type: core.TypeTimestamp},
		projection.Element{Alias: "archived", Type: core.TypeBoolean},
		projection.Element{Alias: "owner.name", Type: core.TypeString},
		projection.Element{Alias: "owner.age", Type: core.TypeInteger},
	)
	require.NoError(t, err)
	return p
}

func TestPlan_Map(t *testing.T) {
	p := plan(t)
	assert.Equal(t, []string{"id", "name", "createdAt", "archived", "owner.name", "owner.age"}, p.Columns())

	m, err := p.Map([]any{int64(1), []byte("Alpha"), "2024-01-01 10:00:00", int64(1), "Karl", nil})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"id":        int64(1),
		"name":      "Alpha",
		"createdAt": "2024-01-01 10:00:00",
		"archived":  true,
		"owner":     map[string]any{"name": "Karl", "age": nil},
	}, m)

	_, err = p.Map([]any{int64(1)})
	var shape *projection.TupleShapeError
	require.ErrorAs(t, err, &shape)
	assert.EqualError(t, err, "projection error: expected 6 values, got 1")
}

func TestPlan_Decode(t *testing.T) {
	p := plan(t)

	var v documentView
	require.NoError(t, p.Decode([]any{int64(7), "Alpha", "2024-01-16 17:45:00", int64(0), "Karl", int64(42)}, &v))
	assert.Equal(t, int64(7), v.ID)
	assert.Equal(t, "Alpha", v.Title)
	assert.Equal(t, time.Date(2024, 1, 16, 17, 45, 0, 0, time.UTC), v.Created)
	assert.False(t, v.Archived)
	assert.Equal(t, "Karl", v.Owner.Name)
	require.NotNil(t, v.Owner.Age)
	assert.Equal(t, 42, *v.Owner.Age)

	err := p.Decode([]any{int64(7), "Alpha", "yesterday", int64(0), "Karl", nil}, &v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `cannot parse "yesterday" as a timestamp`)
}

func TestDecodeAll(t *testing.T) {
	p, err := projection.New(projection.Element{Alias: "name"}, projection.Element{Alias: "n"})
	require.NoError(t, err)

	type count struct {
		Name string
		N    int
	}
	out, err := projection.DecodeAll[count](p, [][]any{{"Alpha", int64(3)}, {"Beta", "2"}})
	require.NoError(t, err)
	assert.Equal(t, []count{{"Alpha", 3}, {"Beta", 2}}, out)

	_, err = projection.DecodeAll[count](p, [][]any{{"Alpha"}})
	assert.ErrorContains(t, err, "row 0: projection error")
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name     string
		elements []projection.Element
		want     string
	}{
		{"empty alias", []projection.Element{{}}, "element 0 has no alias"},
		{"duplicate", []projection.Element{{Alias: "a"}, {Alias: "a"}}, `duplicate alias "a"`},
		{"nested under value", []projection.Element{{Alias: "owner"}, {Alias: "owner.name"}}, `alias "owner.name" nests under projected value "owner"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := projection.New(tt.elements...)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
