package keyset

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrInvalidCursor is returned for cursors that do not decode.
var ErrInvalidCursor = errors.New("invalid cursor")

type valueKind uint8

const (
	kindNil valueKind = iota
	kindBool
	kindInt
	kindUint
	kindFloat
	kindString
	kindTime
	kindUUID
	kindBytes
)

// cursor is the wire form: a mode and typed values, no column names.
type cursor struct {
	Mode   Mode    `msgpack:"m"`
	Values []value `msgpack:"v"`
}

type value struct {
	Kind  valueKind `msgpack:"k"`
	Bool  bool      `msgpack:"b,omitempty"`
	Int   int64     `msgpack:"i,omitempty"`
	Uint  uint64    `msgpack:"u,omitempty"`
	Float float64   `msgpack:"f,omitempty"`
	Str   string    `msgpack:"s,omitempty"`
	Time  time.Time `msgpack:"t,omitempty"`
	Raw   []byte    `msgpack:"r,omitempty"`
}

// EncodeCursor returns base64url(msgpack(link)). The link must be finalized.
//
// Integers decode as int64 (uint64 for unsigned), floats as float64.
func EncodeCursor(l *Link) (string, error) {
	ks, err := l.Keyset()
	if err != nil {
		return "", err
	}
	c := cursor{Mode: l.mode, Values: make([]value, len(ks))}
	for i, v := range ks {
		if c.Values[i], err = encodeValue(v); err != nil {
			return "", fmt.Errorf("keyset value %d: %w", i, err)
		}
	}

	var sb strings.Builder
	wc := base64.NewEncoder(base64.RawURLEncoding, &sb)
	if err := msgpack.NewEncoder(wc).Encode(c); err != nil {
		return "", fmt.Errorf("failed to encode cursor: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to encode cursor: %w", err)
	}
	return sb.String(), nil
}

// DecodeCursor parses a cursor into a finalized link.
func DecodeCursor(s string) (*Link, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	var c cursor
	if err := msgpack.NewDecoder(bytes.NewReader(raw)).Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	if c.Mode > Same {
		return nil, fmt.Errorf("%w: unknown mode %d", ErrInvalidCursor, c.Mode)
	}

	ks := make(Keyset, len(c.Values))
	for i, v := range c.Values {
		if ks[i], err = decodeValue(v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
		}
	}
	return &Link{mode: c.Mode, state: finalized, values: ks}, nil
}

func encodeValue(v any) (value, error) {
	switch x := v.(type) {
	case nil:
		return value{Kind: kindNil}, nil
	case bool:
		return value{Kind: kindBool, Bool: x}, nil
	case int:
		return value{Kind: kindInt, Int: int64(x)}, nil
	case int8:
		return value{Kind: kindInt, Int: int64(x)}, nil
	case int16:
		return value{Kind: kindInt, Int: int64(x)}, nil
	case int32:
		return value{Kind: kindInt, Int: int64(x)}, nil
	case int64:
		return value{Kind: kindInt, Int: x}, nil
	case uint:
		return value{Kind: kindUint, Uint: uint64(x)}, nil
	case uint8:
		return value{Kind: kindUint, Uint: uint64(x)}, nil
	case uint16:
		return value{Kind: kindUint, Uint: uint64(x)}, nil
	case uint32:
		return value{Kind: kindUint, Uint: uint64(x)}, nil
	case uint64:
		return value{Kind: kindUint, Uint: x}, nil
	case float32:
		return value{Kind: kindFloat, Float: float64(x)}, nil
	case float64:
		return value{Kind: kindFloat, Float: x}, nil
	case string:
		return value{Kind: kindString, Str: x}, nil
	case time.Time:
		return value{Kind: kindTime, Time: x}, nil
	case uuid.UUID:
		return value{Kind: kindUUID, Raw: x[:]}, nil
	case []byte:
		return value{Kind: kindBytes, Raw: x}, nil
	}
	return value{}, fmt.Errorf("unsupported type %T", v)
}

func decodeValue(v value) (any, error) {
	switch v.Kind {
	case kindNil:
		return nil, nil
	case kindBool:
		return v.Bool, nil
	case kindInt:
		return v.Int, nil
	case kindUint:
		return v.Uint, nil
	case kindFloat:
		return v.Float, nil
	case kindString:
		return v.Str, nil
	case kindTime:
		return v.Time.UTC(), nil
	case kindUUID:
		return uuid.FromBytes(v.Raw)
	case kindBytes:
		if v.Raw == nil {
			return []byte{}, nil
		}
		return v.Raw, nil
	}
	return nil, fmt.Errorf("unknown value kind %d", v.Kind)
}
