package core

// Expr is a marker interface for expression nodes.
//
// Expression trees are immutable once built. Transformations such as path binding
// go through Rewrite, which returns new nodes and leaves its input untouched.
type Expr interface {
	exprNode() // Marker method to distinguish expressions
}
