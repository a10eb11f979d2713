package core

// SelectQuery is the assembled form of a criteria query, ready for printing.
type SelectQuery struct {
	With     []*CTE
	Distinct bool
	Select   []SelectItem
	From     []*FromItem
	Where    Expr
	GroupBy  []Expr
	Having   Expr
	SetOps   []SetOperation
	OrderBy  []OrderByItem

	// FirstResult and MaxResults are only printed in SQL mode. MaxResults <= 0 means unlimited.
	FirstResult int
	MaxResults  int
}

// SelectItem is one projection.
// Hidden items are selected for keyset extraction and are not part of the user projection.
type SelectItem struct {
	Expr   Expr
	Alias  string
	Hidden bool
}

// FromItem is a root source plus the joins hanging off it, in declaration order.
type FromItem struct {
	Source *Source
	Joins  []*Join
}

// JoinType is the kind of a join.
type JoinType string

// Join types.
const (
	JoinInner JoinType = "INNER"
	JoinLeft  JoinType = "LEFT"
	JoinRight JoinType = "RIGHT"
)

// Join is an association join (Parent + Attribute) or an entity join (On condition only).
type Join struct {
	Type   JoinType
	Source *Source

	// Association joins.
	Parent    *Source
	Attribute string
	// Column pairs used in SQL mode: Parent.FromColumn = Source.ToColumn.
	FromColumn string
	ToColumn   string
	Implicit   bool

	// Entity joins and extra ON conditions.
	On Expr
}

// CTE is a common table expression.
type CTE struct {
	Name      string
	Columns   []string
	Recursive bool
	Query     *SelectQuery
}

// SetOperator is UNION, INTERSECT or EXCEPT.
type SetOperator string

// Set operators.
const (
	SetUnion     SetOperator = "UNION"
	SetIntersect SetOperator = "INTERSECT"
	SetExcept    SetOperator = "EXCEPT"
)

// SetOperation combines the query with another operand.
type SetOperation struct {
	Op    SetOperator
	All   bool
	Query *SelectQuery
}
