// Package core defines the shared language of the query builder.
//
// This package contains:
//   - The expression model (Expr and its node types)
//   - The query model produced by the criteria builder (SelectQuery, joins, CTEs, set operations)
//   - Dialect capability configuration (DialectConfig)
//   - Logical value types used for function return types
//
// The Golden Rule: pkg/core imports ONLY pkg/token and stdlib.
// All other packages depend on core, not the reverse.
package core
