package metamodel

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/leapstack-labs/leapquery/pkg/core"
	"gopkg.in/yaml.v3"
)

// Definition is the serialized form of a model.
type Definition struct {
	Entities    []EntityDef     `yaml:"entities"`
	Embeddables []EmbeddableDef `yaml:"embeddables"`
}

// EntityDef declares an entity. Subtypes (extends) share their supertype's
// table and id unless they name their own.
type EntityDef struct {
	Name       string         `yaml:"name"`
	Table      string         `yaml:"table"`
	ID         string         `yaml:"id"`
	Extends    string         `yaml:"extends"`
	Attributes []AttributeDef `yaml:"attributes"`
}

// EmbeddableDef declares an embeddable value type.
type EmbeddableDef struct {
	Name       string         `yaml:"name"`
	Attributes []AttributeDef `yaml:"attributes"`
}

// AttributeDef declares an attribute.
//
// Column defaults to the snake_case attribute name, with an _id suffix for
// to-one associations. Nullable defaults to true except for the id.
type AttributeDef struct {
	Name         string `yaml:"name"`
	Kind         string `yaml:"kind"`
	Type         string `yaml:"type"`
	Column       string `yaml:"column"`
	Nullable     *bool  `yaml:"nullable"`
	Unique       bool   `yaml:"unique"`
	Target       string `yaml:"target"`
	MappedBy     string `yaml:"mapped-by"`
	ColumnPrefix string `yaml:"column-prefix"`
}

// DefinitionError reports an invalid model definition.
type DefinitionError struct {
	File      string
	Type      string
	Attribute string
	Message   string
}

func (e *DefinitionError) Error() string {
	where := e.Type
	if e.Attribute != "" {
		where += "." + e.Attribute
	}
	msg := "metamodel error"
	if e.File != "" {
		msg += " in " + e.File
	}
	if where != "" {
		msg += ": " + where
	}
	return msg + ": " + e.Message
}

// LoadFile reads a YAML model from path.
func LoadFile(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metamodel: %w", err)
	}
	m, err := Load(bytes.NewReader(data))
	var de *DefinitionError
	if errors.As(err, &de) {
		de.File = path
	}
	return m, err
}

// Load reads a YAML model. Unknown fields are rejected.
func Load(r io.Reader) (*Model, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var def Definition
	if err := dec.Decode(&def); err != nil && !errors.Is(err, io.EOF) {
		return nil, &DefinitionError{Message: fmt.Sprintf("invalid YAML: %v", err)}
	}
	return New(def)
}

// New builds and validates a model.
func New(def Definition) (*Model, error) {
	m := &Model{
		entities:    make(map[string]*Entity, len(def.Entities)),
		embeddables: make(map[string]*Embeddable, len(def.Embeddables)),
	}

	for _, ed := range def.Embeddables {
		if _, dup := m.embeddables[ed.Name]; dup || ed.Name == "" {
			return nil, &DefinitionError{Type: ed.Name, Message: "embeddable name is empty or declared twice"}
		}
		attrs, byName, err := buildAttributes(ed.Name, "", ed.Attributes)
		if err != nil {
			return nil, err
		}
		m.embeddables[ed.Name] = &Embeddable{Name: ed.Name, Attributes: attrs, byName: byName}
	}

	for _, ed := range def.Entities {
		if _, dup := m.entities[ed.Name]; dup || ed.Name == "" {
			return nil, &DefinitionError{Type: ed.Name, Message: "entity name is empty or declared twice"}
		}
		if _, clash := m.embeddables[ed.Name]; clash {
			return nil, &DefinitionError{Type: ed.Name, Message: "name is already used by an embeddable"}
		}
		attrs, byName, err := buildAttributes(ed.Name, ed.ID, ed.Attributes)
		if err != nil {
			return nil, err
		}
		m.entities[ed.Name] = &Entity{
			Name:       ed.Name,
			Table:      ed.Table,
			ID:         ed.ID,
			Super:      ed.Extends,
			Attributes: attrs,
			byName:     byName,
		}
	}

	if err := m.link(); err != nil {
		return nil, err
	}
	return m, nil
}

func buildAttributes(owner, id string, defs []AttributeDef) ([]*Attribute, map[string]*Attribute, error) {
	attrs := make([]*Attribute, 0, len(defs))
	byName := make(map[string]*Attribute, len(defs))
	for _, ad := range defs {
		fail := func(msg string) error {
			return &DefinitionError{Type: owner, Attribute: ad.Name, Message: msg}
		}
		if ad.Name == "" {
			return nil, nil, fail("attribute name is empty")
		}
		if _, dup := byName[ad.Name]; dup {
			return nil, nil, fail("attribute declared twice")
		}
		kind, ok := kindNames[ad.Kind]
		if !ok {
			return nil, nil, fail(fmt.Sprintf("unknown kind %q", ad.Kind))
		}

		a := &Attribute{
			Name:         ad.Name,
			Kind:         kind,
			Column:       ad.Column,
			Nullable:     ad.Name != id,
			Unique:       ad.Unique || ad.Name == id,
			Target:       ad.Target,
			MappedBy:     ad.MappedBy,
			ColumnPrefix: ad.ColumnPrefix,
		}
		if ad.Nullable != nil {
			a.Nullable = *ad.Nullable
		}

		switch kind {
		case Basic:
			a.Type = core.ParseType(ad.Type)
			if a.Type == core.TypeUnknown {
				return nil, nil, fail(fmt.Sprintf("unknown type %q", ad.Type))
			}
			if a.Column == "" {
				a.Column = snake(ad.Name)
			}
		case Embedded:
			if a.ColumnPrefix == "" {
				a.ColumnPrefix = snake(ad.Name) + "_"
			}
		case ManyToOne, OneToOne:
			a.Type = core.TypeEntity
			if a.Column == "" {
				a.Column = snake(ad.Name) + "_id"
			}
		case OneToMany:
			a.Type = core.TypeEntity
			if a.MappedBy == "" {
				return nil, nil, fail("one-to-many requires mapped-by")
			}
		}
		if kind != Basic && a.Target == "" {
			return nil, nil, fail(kind.String() + " requires a target")
		}

		attrs = append(attrs, a)
		byName[a.Name] = a
	}
	return attrs, byName, nil
}

// link resolves supertypes and association targets and inherits tables and ids.
func (m *Model) link() error {
	for _, e := range m.entities {
		if e.Super == "" {
			continue
		}
		super, ok := m.entities[e.Super]
		if !ok {
			return &DefinitionError{Type: e.Name, Message: fmt.Sprintf("unknown supertype %q", e.Super)}
		}
		e.super = super
	}

	for _, e := range m.entities {
		// A cycle never reaches a root within len(entities) steps.
		t, steps := e, 0
		for ; t != nil && steps <= len(m.entities); t = t.super {
			steps++
		}
		if t != nil {
			return &DefinitionError{Type: e.Name, Message: "inheritance cycle"}
		}
	}

	// Single-table inheritance: subtypes take the nearest declared table and id,
	// and an undeclared table is named after the root.
	for _, e := range m.entities {
		root := e
		for t := e.super; t != nil; t = t.super {
			if e.Table == "" {
				e.Table = t.Table
			}
			if e.ID == "" {
				e.ID = t.ID
			}
			root = t
		}
		if e.Table == "" {
			e.Table = snake(root.Name)
		}
	}
	for _, e := range m.Entities() {
		if e.ID == "" {
			return &DefinitionError{Type: e.Name, Message: "no id attribute declared"}
		}
		id, ok := e.Attribute(e.ID)
		if !ok || id.Kind != Basic {
			return &DefinitionError{Type: e.Name, Attribute: e.ID, Message: "id must be a basic attribute"}
		}
	}

	check := func(owner string, attrs []*Attribute) error {
		for _, a := range attrs {
			var ok bool
			switch {
			case a.Kind == Embedded:
				_, ok = m.embeddables[a.Target]
			case a.Kind.IsAssociation():
				_, ok = m.entities[a.Target]
			default:
				ok = true
			}
			if !ok {
				return &DefinitionError{Type: owner, Attribute: a.Name, Message: fmt.Sprintf("unknown target %q", a.Target)}
			}
		}
		return nil
	}
	for _, e := range m.entities {
		if err := check(e.Name, e.Attributes); err != nil {
			return err
		}
	}
	for _, e := range m.embeddables {
		for _, a := range e.Attributes {
			if a.Kind != Basic {
				return &DefinitionError{Type: e.Name, Attribute: a.Name, Message: "embeddables may only hold basic attributes"}
			}
		}
	}
	return nil
}
