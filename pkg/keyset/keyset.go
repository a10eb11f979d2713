// Package keyset implements keyset (seek) pagination.
//
// A Keyset is the tuple of ORDER BY values of one row. Predicate turns a keyset
// into the expanded OR-of-ANDs condition that selects the rows after (or before)
// it, a Link carries a keyset between page requests, and a cursor is the opaque
// wire form of a Link.
//
// Links are produced in two phases. A link attached to a raw row only knows the
// row; Finalize snapshots the tuple once the ORDER BY list is frozen, which is
// after the builder has appended its id tie-breaker.
package keyset

import (
	"errors"
	"fmt"
)

// Mode is the navigation direction of a link.
type Mode uint8

// Navigation modes.
const (
	None Mode = iota
	Next
	Previous
	Same
)

func (m Mode) String() string {
	switch m {
	case Next:
		return "next"
	case Previous:
		return "previous"
	case Same:
		return "same"
	default:
		return "none"
	}
}

// Keyset is an ordered tuple of values, position for position with the
// non-synthetic ORDER BY items of a query.
type Keyset []any

// ShapeMismatchError reports a keyset whose length differs from the ORDER BY
// it is applied to, typically because the ordering changed between requests.
type ShapeMismatchError struct {
	Expected int
	Got      int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("keyset error: expected %d values, got %d", e.Expected, e.Got)
}

// MissingKeyError reports an attached row without a value for an order key.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("keyset error: row has no value for order key %q", e.Key)
}

// ErrNotFinalized is returned when a link is read before Finalize.
var ErrNotFinalized = errors.New("keyset link is not finalized")

type linkState uint8

const (
	eager linkState = iota
	attached
	finalized
)

// Link is a keyset plus the direction to navigate from it.
type Link struct {
	mode   Mode
	state  linkState
	values Keyset
	row    map[string]any
}

// NewLink returns an eager link over a known keyset.
func NewLink(mode Mode, values Keyset) *Link {
	return &Link{mode: mode, state: eager, values: values}
}

// Attach returns a lazy link over a raw row keyed by order key. The tuple is
// extracted by Finalize.
func Attach(mode Mode, row map[string]any) *Link {
	return &Link{mode: mode, state: attached, row: row}
}

// Mode returns the navigation direction.
func (l *Link) Mode() Mode { return l.mode }

// Keyset returns the finalized tuple.
func (l *Link) Keyset() (Keyset, error) {
	if l.state != finalized {
		return nil, ErrNotFinalized
	}
	return l.values, nil
}

// Finalize freezes the link against the ORDER BY keys of the query it is
// applied to. An attached link extracts its tuple from the row; an eager or
// already finalized link validates its length. It is safe to call again with
// the same keys.
func (l *Link) Finalize(keys []string) (Keyset, error) {
	switch l.state {
	case attached:
		values := make(Keyset, len(keys))
		for i, k := range keys {
			v, ok := l.row[k]
			if !ok {
				return nil, &MissingKeyError{Key: k}
			}
			values[i] = v
		}
		l.values, l.row, l.state = values, nil, finalized
	default:
		if len(l.values) != len(keys) {
			return nil, &ShapeMismatchError{Expected: len(keys), Got: len(l.values)}
		}
		l.state = finalized
	}
	return l.values, nil
}
