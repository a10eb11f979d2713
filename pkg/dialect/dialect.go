// Package dialect provides the capability profiles of target databases.
//
// A Dialect is built once from a core.DialectConfig and is immutable afterwards;
// it is shared by the renderer, the function registry and the criteria builder.
// Concrete dialects are registered from pkg/dialects/*/ packages.
package dialect

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapquery/pkg/core"
)

// Dialect is the DbmsDialect capability object of one database.
type Dialect struct {
	core.DialectConfig

	reservedWords map[string]struct{}
}

// Config returns a copy of the pure data configuration for this dialect.
func (d *Dialect) Config() core.DialectConfig {
	cfg := d.DialectConfig
	cfg.Aliases = append([]string(nil), d.Aliases...)
	cfg.CastTypes = make(map[core.Type]string, len(d.CastTypes))
	for k, v := range d.CastTypes {
		cfg.CastTypes[k] = v
	}
	return cfg
}

// GetName returns the dialect name.
func (d *Dialect) GetName() string {
	return d.Name
}

// NormalizeName normalizes an identifier according to the dialect's normalization strategy.
func (d *Dialect) NormalizeName(name string) string {
	switch d.Identifiers.Normalization {
	case core.NormUppercase:
		return strings.ToUpper(name)
	case core.NormCaseSensitive:
		return name
	default:
		return strings.ToLower(name)
	}
}

// FormatPlaceholder returns a placeholder for the given parameter index (1-based).
func (d *Dialect) FormatPlaceholder(index int) string {
	switch d.Placeholder {
	case core.PlaceholderDollar:
		return "$" + strconv.Itoa(index)
	case core.PlaceholderAtP:
		return "@p" + strconv.Itoa(index)
	case core.PlaceholderColon:
		return ":" + strconv.Itoa(index)
	default: // PlaceholderQuestion
		return "?"
	}
}

// IsReservedWord returns true if the word needs quoting when used as an identifier.
func (d *Dialect) IsReservedWord(word string) bool {
	_, ok := d.reservedWords[strings.ToLower(word)]
	return ok
}

// QuoteIdentifier quotes an identifier using the dialect's quote characters.
func (d *Dialect) QuoteIdentifier(name string) string {
	// Escape any existing quote end characters in the name (e.g., ] -> ]])
	escaped := strings.ReplaceAll(name, d.Identifiers.QuoteEnd, d.Identifiers.Escape)
	return d.Identifiers.Quote + escaped + d.Identifiers.QuoteEnd
}

// QuoteIdentifierIfNeeded quotes an identifier only if it's a reserved word.
func (d *Dialect) QuoteIdentifierIfNeeded(name string) string {
	if d.IsReservedWord(name) {
		return d.QuoteIdentifier(name)
	}
	return name
}

// DefaultNullsFirst reports where NULLs go when no precedence is requested.
func (d *Dialect) DefaultNullsFirst(desc bool) bool {
	return d.NullSmallest != desc
}

// CastType returns the SQL type name used to cast to t.
func (d *Dialect) CastType(t core.Type) (string, bool) {
	name, ok := d.CastTypes[t]
	return name, ok
}

// SupportsSet reports whether a set operation can be printed for this dialect.
func (d *Dialect) SupportsSet(op core.SetOperator, all bool) bool {
	switch op {
	case core.SetUnion:
		return true
	case core.SetIntersect:
		return d.SupportsIntersect && (!all || d.SupportsIntersectAll)
	case core.SetExcept:
		return d.SupportsExcept && (!all || d.SupportsExceptAll)
	}
	return false
}

// AppendSet writes the set operation keyword (" UNION ALL ", " MINUS "...) to w.
func (d *Dialect) AppendSet(w io.StringWriter, op core.SetOperator, all bool) error {
	if !d.SupportsSet(op, all) {
		name := string(op)
		if all {
			name += " ALL"
		}
		return fmt.Errorf("%s is not supported in %s dialect", name, d.Name)
	}

	keyword := string(op)
	if op == core.SetExcept && d.ExceptKeyword != "" {
		keyword = d.ExceptKeyword
	}
	if all {
		keyword += " ALL"
	}
	_, err := w.WriteString(keyword)
	return err
}

// AppendPagination writes the row limiting clause for firstResult/maxResults.
// It writes nothing when there is nothing to limit.
func (d *Dialect) AppendPagination(w io.StringWriter, firstResult, maxResults int) {
	var offset, limit string
	if firstResult > 0 {
		offset = strconv.Itoa(firstResult)
	}
	if maxResults > 0 {
		limit = strconv.Itoa(maxResults)
	}
	d.AppendLimit(w, offset, limit)
}

// AppendLimit is AppendPagination over already rendered operands, which may be
// parameter placeholders. An empty operand is absent.
func (d *Dialect) AppendLimit(w io.StringWriter, offset, limit string) {
	if offset == "" && limit == "" {
		return
	}
	switch d.Pagination {
	case core.PaginationOffsetFetch:
		if offset == "" {
			offset = "0"
		}
		_, _ = w.WriteString(" OFFSET " + offset + " ROWS")
		if limit != "" {
			_, _ = w.WriteString(" FETCH NEXT " + limit + " ROWS ONLY")
		}
	default:
		if limit == "" && d.UnboundedLimit != "" {
			limit = d.UnboundedLimit
		}
		if limit != "" {
			_, _ = w.WriteString(" LIMIT " + limit)
		}
		if offset != "" {
			_, _ = w.WriteString(" OFFSET " + offset)
		}
	}
}

// Builder provides a fluent API for constructing dialects.
type Builder struct {
	dialect *Dialect
}

// NewDialect creates a new dialect builder with the given name and ANSI defaults.
func NewDialect(name string) *Builder {
	return New(&core.DialectConfig{
		Name: name,
		Identifiers: core.IdentifierConfig{
			Quote:         `"`,
			QuoteEnd:      `"`,
			Escape:        `""`,
			Normalization: core.NormLowercase,
		},
		ExceptKeyword: "EXCEPT",
	})
}

// New creates a dialect builder from a DialectConfig.
// The config is copied, later changes to cfg do not affect the dialect.
func New(cfg *core.DialectConfig) *Builder {
	d := &Dialect{
		DialectConfig: *cfg,
		reservedWords: make(map[string]struct{}),
	}
	d.Aliases = append([]string(nil), cfg.Aliases...)
	d.CastTypes = make(map[core.Type]string, len(cfg.CastTypes))
	for k, v := range cfg.CastTypes {
		d.CastTypes[k] = v
	}
	if d.ExceptKeyword == "" {
		d.ExceptKeyword = "EXCEPT"
	}
	return &Builder{dialect: d}
}

// Identifiers configures identifier quoting and normalization.
func (b *Builder) Identifiers(quote, quoteEnd, escape string, norm core.NormalizationStrategy) *Builder {
	b.dialect.Identifiers = core.IdentifierConfig{
		Quote:         quote,
		QuoteEnd:      quoteEnd,
		Escape:        escape,
		Normalization: norm,
	}
	return b
}

// PlaceholderStyle sets how query parameters are formatted.
func (b *Builder) PlaceholderStyle(style core.PlaceholderStyle) *Builder {
	b.dialect.Placeholder = style
	return b
}

// CastType sets the SQL type name for a logical type.
func (b *Builder) CastType(t core.Type, name string) *Builder {
	b.dialect.CastTypes[t] = name
	return b
}

// WithReservedWords registers words that need quoting when used as identifiers.
func (b *Builder) WithReservedWords(words ...string) *Builder {
	for _, w := range words {
		b.dialect.reservedWords[strings.ToLower(w)] = struct{}{}
	}
	return b
}

// Build returns the constructed dialect.
// Missing cast type names are filled from ANSI defaults.
func (b *Builder) Build() *Dialect {
	for t, name := range ansiCastTypes {
		if _, ok := b.dialect.CastTypes[t]; !ok {
			b.dialect.CastTypes[t] = name
		}
	}
	return b.dialect
}

var ansiCastTypes = map[core.Type]string{
	core.TypeString:     "varchar(255)",
	core.TypeInteger:    "integer",
	core.TypeLong:       "bigint",
	core.TypeDouble:     "double precision",
	core.TypeBigDecimal: "decimal(19,2)",
	core.TypeBoolean:    "boolean",
	core.TypeDate:       "date",
	core.TypeTime:       "time",
	core.TypeTimestamp:  "timestamp",
}
