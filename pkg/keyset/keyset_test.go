package keyset_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/leapquery/pkg/keyset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLink_Attached(t *testing.T) {
	row := map[string]any{"d.name": "Smith", "d.id": int64(42), "d.age": nil}
	l := keyset.Attach(keyset.Next, row)
	assert.Equal(t, keyset.Next, l.Mode())

	_, err := l.Keyset()
	require.ErrorIs(t, err, keyset.ErrNotFinalized)

	// The id tie-breaker was appended after the row was attached.
	ks, err := l.Finalize([]string{"d.name", "d.age", "d.id"})
	require.NoError(t, err)
	assert.Equal(t, keyset.Keyset{"Smith", nil, int64(42)}, ks)

	again, err := l.Keyset()
	require.NoError(t, err)
	assert.Equal(t, ks, again)

	t.Run("ordering changed afterwards", func(t *testing.T) {
		_, err := l.Finalize([]string{"d.name"})
		var sm *keyset.ShapeMismatchError
		require.ErrorAs(t, err, &sm)
		assert.Equal(t, 1, sm.Expected)
		assert.Equal(t, 3, sm.Got)
	})
}

func TestLink_MissingKey(t *testing.T) {
	l := keyset.Attach(keyset.Previous, map[string]any{"d.name": "Smith"})
	_, err := l.Finalize([]string{"d.name", "d.id"})

	var mk *keyset.MissingKeyError
	require.ErrorAs(t, err, &mk)
	assert.Equal(t, "d.id", mk.Key)
	assert.EqualError(t, err, `keyset error: row has no value for order key "d.id"`)
}

func TestLink_Eager(t *testing.T) {
	l := keyset.NewLink(keyset.Next, keyset.Keyset{"Smith", 42})

	_, err := l.Finalize([]string{"d.name", "d.age", "d.id"})
	var sm *keyset.ShapeMismatchError
	require.ErrorAs(t, err, &sm)
	assert.EqualError(t, err, "keyset error: expected 3 values, got 2")

	ks, err := l.Finalize([]string{"d.name", "d.id"})
	require.NoError(t, err)
	assert.Equal(t, keyset.Keyset{"Smith", 42}, ks)
}

func TestCursor_RoundTrip(t *testing.T) {
	id := uuid.MustParse("6f1c1e9e-8a3f-4c55-9a3c-3a2f1b7c9d10")
	at := time.Date(2024, 3, 9, 14, 30, 5, 123456789, time.FixedZone("CET", 3600))

	tests := []struct {
		name string
		in   keyset.Keyset
		want keyset.Keyset
	}{
		{"empty", keyset.Keyset{}, keyset.Keyset{}},
		{"nil and bool", keyset.Keyset{nil, true, false}, keyset.Keyset{nil, true, false}},
		{"ints widen", keyset.Keyset{7, int32(-3), int64(0), uint16(9)}, keyset.Keyset{int64(7), int64(-3), int64(0), uint64(9)}},
		{"floats widen", keyset.Keyset{float32(1.5), 2.25}, keyset.Keyset{1.5, 2.25}},
		{"strings", keyset.Keyset{"", "Smith", "ünïcødé"}, keyset.Keyset{"", "Smith", "ünïcødé"}},
		{"uuid and bytes", keyset.Keyset{id, []byte{0, 1, 2}, []byte{}}, keyset.Keyset{id, []byte{0, 1, 2}, []byte{}}},
		{"time", keyset.Keyset{at}, keyset.Keyset{at.UTC()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := keyset.NewLink(keyset.Previous, tt.in)
			_, err := l.Finalize(make([]string, len(tt.in)))
			require.NoError(t, err)

			s, err := keyset.EncodeCursor(l)
			require.NoError(t, err)
			assert.NotContains(t, s, "=")
			assert.NotContains(t, s, "/")

			back, err := keyset.DecodeCursor(s)
			require.NoError(t, err)
			assert.Equal(t, keyset.Previous, back.Mode())
			ks, err := back.Keyset()
			require.NoError(t, err)
			assert.Equal(t, tt.want, ks)
		})
	}
}

func TestCursor_HasNoColumnNames(t *testing.T) {
	l := keyset.Attach(keyset.Next, map[string]any{"secret_column": "v"})
	_, err := l.Finalize([]string{"secret_column"})
	require.NoError(t, err)

	s, err := keyset.EncodeCursor(l)
	require.NoError(t, err)
	back, err := keyset.DecodeCursor(s)
	require.NoError(t, err)
	ks, _ := back.Keyset()
	assert.Equal(t, keyset.Keyset{"v"}, ks)
	assert.NotContains(t, s, "secret")
}

func TestCursor_Errors(t *testing.T) {
	_, err := keyset.EncodeCursor(keyset.Attach(keyset.Next, nil))
	require.ErrorIs(t, err, keyset.ErrNotFinalized)

	l := keyset.NewLink(keyset.Next, keyset.Keyset{struct{}{}})
	_, _ = l.Finalize([]string{"x"})
	_, err = keyset.EncodeCursor(l)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported type struct {}")

	for _, bad := range []string{"!!!", "bm90IG1zZ3BhY2s", strings.Repeat("A", 7)} {
		_, err := keyset.DecodeCursor(bad)
		assert.ErrorIs(t, err, keyset.ErrInvalidCursor, bad)
	}
}

func TestPage(t *testing.T) {
	p := &keyset.Page{
		FirstResult: 0,
		MaxResults:  3,
		Size:        3,
		Lowest:      keyset.Keyset{"Alpha", int64(1)},
		Highest:     keyset.Keyset{"Beta", int64(4)},
	}

	next := p.Next()
	assert.Equal(t, keyset.Next, next.Mode())
	ks, err := next.Keyset()
	require.NoError(t, err)
	assert.Equal(t, p.Highest, ks)

	prev := p.Previous()
	ks, _ = prev.Keyset()
	assert.Equal(t, keyset.Previous, prev.Mode())
	assert.Equal(t, p.Lowest, ks)

	assert.Equal(t, keyset.Same, p.Same().Mode())

	c, err := p.NextCursor()
	require.NoError(t, err)
	decoded, err := keyset.DecodeCursor(c)
	require.NoError(t, err)
	ks, _ = decoded.Keyset()
	assert.Equal(t, keyset.Keyset{"Beta", int64(4)}, ks)

	empty := &keyset.Page{MaxResults: 3}
	assert.Nil(t, empty.Next())
	c, err = empty.PreviousCursor()
	require.NoError(t, err)
	assert.Empty(t, c)
}
