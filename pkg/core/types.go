package core

import "strings"

// Type is the logical value type of an expression.
// Function renderers derive their static return type from the type of their first argument.
type Type string

// Logical value types.
const (
	TypeUnknown    Type = ""
	TypeString     Type = "String"
	TypeInteger    Type = "Integer"
	TypeLong       Type = "Long"
	TypeDouble     Type = "Double"
	TypeBigDecimal Type = "BigDecimal"
	TypeBoolean    Type = "Boolean"
	TypeDate       Type = "Date"
	TypeTime       Type = "Time"
	TypeTimestamp  Type = "Timestamp"
	TypeUUID       Type = "UUID"
	TypeBinary     Type = "Binary"
	TypeEntity     Type = "Entity"
)

var typeAliases = map[string]Type{
	"string":     TypeString,
	"text":       TypeString,
	"varchar":    TypeString,
	"int":        TypeInteger,
	"integer":    TypeInteger,
	"long":       TypeLong,
	"bigint":     TypeLong,
	"double":     TypeDouble,
	"float":      TypeDouble,
	"decimal":    TypeBigDecimal,
	"bigdecimal": TypeBigDecimal,
	"numeric":    TypeBigDecimal,
	"bool":       TypeBoolean,
	"boolean":    TypeBoolean,
	"date":       TypeDate,
	"time":       TypeTime,
	"timestamp":  TypeTimestamp,
	"datetime":   TypeTimestamp,
	"instant":    TypeTimestamp,
	"uuid":       TypeUUID,
	"binary":     TypeBinary,
	"bytes":      TypeBinary,
	"entity":     TypeEntity,
}

// ParseType maps a type name (case-insensitive, common SQL and Java spellings) to a Type.
// Unknown names map to TypeUnknown.
func ParseType(name string) Type {
	return typeAliases[strings.ToLower(strings.TrimSpace(name))]
}

// IsNumeric reports whether values of this type are numbers.
func (t Type) IsNumeric() bool {
	switch t {
	case TypeInteger, TypeLong, TypeDouble, TypeBigDecimal:
		return true
	}
	return false
}

// IsTemporal reports whether values of this type are dates or times.
func (t Type) IsTemporal() bool {
	return t == TypeDate || t == TypeTime || t == TypeTimestamp
}
