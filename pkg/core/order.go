package core

// NullPrecedence is the requested position of NULL values in an ordering.
type NullPrecedence int

// NullPrecedence constants.
const (
	// NullsDefault leaves NULL placement to the dialect.
	NullsDefault NullPrecedence = iota
	NullsFirst
	NullsLast
)

// String returns the SQL keyword form, or "" for NullsDefault.
func (n NullPrecedence) String() string {
	switch n {
	case NullsFirst:
		return "NULLS FIRST"
	case NullsLast:
		return "NULLS LAST"
	default:
		return ""
	}
}

// OrderByItem is one sort key.
type OrderByItem struct {
	Expr  Expr
	Desc  bool
	Nulls NullPrecedence

	// Synthetic marks a resolver item added to emulate null precedence
	// (CASE WHEN x IS NULL ...). Synthetic items are not part of keyset tuples.
	Synthetic bool
}

// EffectiveNullsFirst resolves whether NULLs sort first for this item.
// With NullsDefault the dialect convention applies: when NULL is the smallest
// value, it comes first in ascending order and last in descending order.
func (o OrderByItem) EffectiveNullsFirst(nullSmallest bool) bool {
	switch o.Nulls {
	case NullsFirst:
		return true
	case NullsLast:
		return false
	}
	return nullSmallest != o.Desc
}

// Inverted returns the item with the opposite direction and null precedence,
// which makes it scan the same ordering backwards.
func (o OrderByItem) Inverted(nullSmallest bool) OrderByItem {
	first := o.EffectiveNullsFirst(nullSmallest)
	out := o
	out.Desc = !o.Desc
	if first {
		out.Nulls = NullsLast
	} else {
		out.Nulls = NullsFirst
	}
	return out
}

// ---------- Windows ----------

// WindowSpec is the content of an OVER clause.
// Name references a named window that this window extends.
type WindowSpec struct {
	Name        string
	PartitionBy []Expr
	OrderBy     []OrderByItem
	Frame       *FrameSpec
}

// FrameType is ROWS, RANGE or GROUPS.
type FrameType string

// Frame types.
const (
	FrameRows   FrameType = "ROWS"
	FrameRange  FrameType = "RANGE"
	FrameGroups FrameType = "GROUPS"
)

// FrameSpec is a window frame.
type FrameSpec struct {
	Type  FrameType
	Start *FrameBound
	End   *FrameBound // nil for single-bound frames
}

// FrameBoundType is the kind of a frame bound.
type FrameBoundType string

// Frame bound types.
const (
	FrameUnboundedPreceding FrameBoundType = "UNBOUNDED PRECEDING"
	FrameUnboundedFollowing FrameBoundType = "UNBOUNDED FOLLOWING"
	FrameCurrentRow         FrameBoundType = "CURRENT ROW"
	FrameExprPreceding      FrameBoundType = "PRECEDING"
	FrameExprFollowing      FrameBoundType = "FOLLOWING"
)

// FrameBound is one end of a frame. Offset is set for the PRECEDING/FOLLOWING forms.
type FrameBound struct {
	Type   FrameBoundType
	Offset Expr
}
