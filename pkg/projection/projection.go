// Package projection turns result tuples into objects.
//
// A Plan is derived from the SELECT list of a built query: one Element per
// visible select item. Dotted aliases such as owner.name produce nested maps,
// and Decode maps the result onto a struct through mapstructure, matching
// `query:"..."` tags (or field names, case-insensitively).
package projection

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/leapstack-labs/leapquery/pkg/core"
)

// TagName is the struct tag Decode matches aliases against.
const TagName = "query"

// Element is one projected value.
type Element struct {
	Alias string
	Type  core.Type
}

// Plan maps tuples to objects. Plans are immutable and safe to share.
type Plan struct {
	elements []Element
	paths    [][]string
}

// TupleShapeError reports a tuple that does not match the plan.
type TupleShapeError struct {
	Expected int
	Got      int
}

func (e *TupleShapeError) Error() string {
	return fmt.Sprintf("projection error: expected %d values, got %d", e.Expected, e.Got)
}

// New builds a plan. Aliases must be unique and must not be a prefix of one
// another (a and a.b cannot both be projected).
func New(elements ...Element) (*Plan, error) {
	p := &Plan{elements: elements, paths: make([][]string, len(elements))}
	seen := make(map[string]bool, len(elements))
	for i, e := range elements {
		if e.Alias == "" {
			return nil, fmt.Errorf("projection error: element %d has no alias", i)
		}
		if seen[e.Alias] {
			return nil, fmt.Errorf("projection error: duplicate alias %q", e.Alias)
		}
		seen[e.Alias] = true
		p.paths[i] = strings.Split(e.Alias, ".")
	}
	for _, e := range elements {
		for prefix := range seen {
			if strings.HasPrefix(e.Alias, prefix+".") {
				return nil, fmt.Errorf("projection error: alias %q nests under projected value %q", e.Alias, prefix)
			}
		}
	}
	return p, nil
}

// Elements returns the projected elements in select order.
func (p *Plan) Elements() []Element {
	return p.elements
}

// Columns returns the aliases in select order.
func (p *Plan) Columns() []string {
	cols := make([]string, len(p.elements))
	for i, e := range p.elements {
		cols[i] = e.Alias
	}
	return cols
}

// Map turns a tuple into a map, nesting dotted aliases.
func (p *Plan) Map(tuple []any) (map[string]any, error) {
	if len(tuple) != len(p.elements) {
		return nil, &TupleShapeError{Expected: len(p.elements), Got: len(tuple)}
	}
	out := make(map[string]any, len(tuple))
	for i, path := range p.paths {
		m := out
		for _, part := range path[:len(path)-1] {
			next, ok := m[part].(map[string]any)
			if !ok {
				next = make(map[string]any)
				m[part] = next
			}
			m = next
		}
		m[path[len(path)-1]] = normalize(tuple[i], p.elements[i].Type)
	}
	return out, nil
}

// Decode maps a tuple onto out, which must be a pointer to a struct or map.
func (p *Plan) Decode(tuple []any, out any) error {
	m, err := p.Map(tuple)
	if err != nil {
		return err
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          TagName,
		WeaklyTypedInput: true,
		DecodeHook:       stringToTime,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("projection error: %w", err)
	}
	if err := dec.Decode(m); err != nil {
		return fmt.Errorf("projection error: %w", err)
	}
	return nil
}

// DecodeAll decodes every tuple into a new T.
func DecodeAll[T any](p *Plan, tuples [][]any) ([]T, error) {
	out := make([]T, len(tuples))
	for i, tuple := range tuples {
		if err := p.Decode(tuple, &out[i]); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	return out, nil
}

// timeLayouts are the textual timestamp forms drivers return, SQLite's first.
var timeLayouts = []string{time.DateTime, time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", time.DateOnly}

func stringToTime(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(time.Time{}) {
		return data, nil
	}
	s := reflect.ValueOf(data).String()
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return nil, fmt.Errorf("cannot parse %q as a timestamp", s)
}

// normalize converts driver values to the element's logical type where the
// driver returns a wider representation.
func normalize(v any, t core.Type) any {
	switch x := v.(type) {
	case []byte:
		if t != core.TypeBinary {
			return string(x)
		}
	case int64:
		if t == core.TypeBoolean {
			return x != 0
		}
	}
	return v
}
