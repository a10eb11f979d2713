// Package metamodel describes the managed types queries are written against.
//
// A Model holds entities, their attributes and single-table inheritance
// between them, plus embeddable value types. Models are built once, from YAML
// or from a Definition assembled in code, and are read-only afterwards, so a
// Model can be shared by any number of goroutines.
package metamodel

import (
	"sort"
	"strings"
	"unicode"

	"github.com/leapstack-labs/leapquery/pkg/core"
)

// Kind classifies an attribute.
type Kind int

// Attribute kinds.
const (
	Basic Kind = iota
	Embedded
	ManyToOne
	OneToOne
	OneToMany
)

var kindNames = map[string]Kind{
	"":            Basic,
	"basic":       Basic,
	"embedded":    Embedded,
	"many-to-one": ManyToOne,
	"one-to-one":  OneToOne,
	"one-to-many": OneToMany,
}

// String returns the YAML spelling of the kind.
func (k Kind) String() string {
	switch k {
	case Embedded:
		return "embedded"
	case ManyToOne:
		return "many-to-one"
	case OneToOne:
		return "one-to-one"
	case OneToMany:
		return "one-to-many"
	default:
		return "basic"
	}
}

// IsAssociation reports whether dereferencing the attribute needs a join.
func (k Kind) IsAssociation() bool {
	return k == ManyToOne || k == OneToOne || k == OneToMany
}

// IsCollection reports whether the attribute holds many values.
func (k Kind) IsCollection() bool {
	return k == OneToMany
}

// Attribute is one persistent attribute of an entity or embeddable.
type Attribute struct {
	Name     string
	Kind     Kind
	Type     core.Type // value type of basic attributes
	Column   string    // basic column, or the foreign key column of a to-one association
	Nullable bool
	Unique   bool

	// Target is the associated entity, or the embeddable of an embedded attribute.
	Target string
	// MappedBy is the foreign key column in the target table of a one-to-many association.
	MappedBy string
	// ColumnPrefix is prepended to the columns of an embedded attribute.
	ColumnPrefix string
}

// Embeddable is a value type whose attributes are stored in the owner's table.
type Embeddable struct {
	Name       string
	Attributes []*Attribute

	byName map[string]*Attribute
}

// Attribute looks up an attribute by name.
func (e *Embeddable) Attribute(name string) (*Attribute, bool) {
	a, ok := e.byName[name]
	return a, ok
}

// Entity is a managed entity type.
type Entity struct {
	Name  string
	Table string
	ID    string // name of the id attribute
	Super string // supertype name, empty for roots

	Attributes []*Attribute // declared on this entity, inherited ones excluded

	byName map[string]*Attribute
	super  *Entity
}

// Attribute looks up an attribute declared on the entity or inherited from a supertype.
func (e *Entity) Attribute(name string) (*Attribute, bool) {
	for t := e; t != nil; t = t.super {
		if a, ok := t.byName[name]; ok {
			return a, true
		}
	}
	return nil, false
}

// AllAttributes lists inherited attributes first, then the entity's own.
func (e *Entity) AllAttributes() []*Attribute {
	if e.super == nil {
		return e.Attributes
	}
	return append(append([]*Attribute(nil), e.super.AllAttributes()...), e.Attributes...)
}

// IDAttribute returns the id attribute.
func (e *Entity) IDAttribute() *Attribute {
	a, _ := e.Attribute(e.ID)
	return a
}

// IDColumn returns the id column.
func (e *Entity) IDColumn() string {
	if a := e.IDAttribute(); a != nil {
		return a.Column
	}
	return ""
}

// Supertype returns the direct supertype, or nil.
func (e *Entity) Supertype() *Entity {
	return e.super
}

// IsSubtypeOf reports whether e is other or inherits from it.
func (e *Entity) IsSubtypeOf(other *Entity) bool {
	for t := e; t != nil; t = t.super {
		if t == other {
			return true
		}
	}
	return false
}

// Model is an immutable set of entities and embeddables.
type Model struct {
	entities    map[string]*Entity
	embeddables map[string]*Embeddable
}

// Entity looks up an entity by name. Entity names are case-sensitive.
func (m *Model) Entity(name string) (*Entity, bool) {
	e, ok := m.entities[name]
	return e, ok
}

// Embeddable looks up an embeddable by name.
func (m *Model) Embeddable(name string) (*Embeddable, bool) {
	e, ok := m.embeddables[name]
	return e, ok
}

// Entities returns all entities sorted by name.
func (m *Model) Entities() []*Entity {
	out := make([]*Entity, 0, len(m.entities))
	for _, e := range m.entities {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// snake converts an attribute name such as createdAt to created_at.
func snake(name string) string {
	var sb strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				sb.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
