package core

import (
	"strings"

	"github.com/leapstack-labs/leapquery/pkg/token"
)

// ---------- Paths ----------

// PathExpr is an unresolved dotted path such as d.owner.name.
// Root is set when the path starts with TREAT(... AS Subtype).
type PathExpr struct {
	Root  *TreatExpr
	Parts []string
}

func (*PathExpr) exprNode() {}

// String returns the path as written.
func (p *PathExpr) String() string {
	var sb strings.Builder
	if p.Root != nil {
		sb.WriteString("TREAT(")
		sb.WriteString(p.Root.Path.String())
		sb.WriteString(" AS ")
		sb.WriteString(p.Root.Subtype)
		sb.WriteString(")")
		if len(p.Parts) > 0 {
			sb.WriteString(".")
		}
	}
	sb.WriteString(strings.Join(p.Parts, "."))
	return sb.String()
}

// TreatExpr narrows a polymorphic path to a subtype.
type TreatExpr struct {
	Path    *PathExpr
	Subtype string
}

// Source is a FROM item or join target: an entity (or CTE) bound to an alias.
// The alias of an implicit join may be replaced when an explicit join is declared
// on the same path, so bound paths refer to the source rather than copying its alias.
type Source struct {
	Alias    string
	Entity   string
	Table    string
	IDColumn string
}

// BoundPath is a path resolved against the metamodel.
type BoundPath struct {
	Source     *Source
	Treat      string   // subtype name when the path goes through TREAT
	Attributes []string // attribute chain relative to Source; empty selects the source itself
	Column     string   // physical column used in SQL mode
	Type       Type
	Nullable   bool
	Unique     bool

	// Collection describes the unjoined collection a path like d.kittens ends in.
	// SQL mode prints IS EMPTY and MEMBER OF over it as correlated subqueries.
	Collection *Join
}

func (*BoundPath) exprNode() {}

// ---------- Literals and parameters ----------

// LiteralKind is the kind of a literal value.
type LiteralKind int

// LiteralKind constants.
const (
	LiteralNumber LiteralKind = iota
	LiteralString
	LiteralBoolean
	LiteralNull
)

// Literal is a literal value. Text holds the unquoted, unescaped value.
type Literal struct {
	Kind LiteralKind
	Text string
}

func (*Literal) exprNode() {}

// StringLiteral returns a string literal.
func StringLiteral(s string) *Literal { return &Literal{Kind: LiteralString, Text: s} }

// NumberLiteral returns a numeric literal from its textual form.
func NumberLiteral(s string) *Literal { return &Literal{Kind: LiteralNumber, Text: s} }

// BoolLiteral returns TRUE or FALSE.
func BoolLiteral(b bool) *Literal {
	if b {
		return &Literal{Kind: LiteralBoolean, Text: "TRUE"}
	}
	return &Literal{Kind: LiteralBoolean, Text: "FALSE"}
}

// NullLiteral returns NULL.
func NullLiteral() *Literal { return &Literal{Kind: LiteralNull, Text: "NULL"} }

// ParameterExpr is a named (:name) or positional (?1) parameter.
// Name is empty for positional parameters.
type ParameterExpr struct {
	Name     string
	Position int
}

func (*ParameterExpr) exprNode() {}

// Key returns ":name" or "?n".
func (p *ParameterExpr) Key() string {
	if p.Name != "" {
		return ":" + p.Name
	}
	return "?" + itoa(p.Position)
}

// ---------- Operators ----------

// BinaryExpr is an arithmetic, concatenation, comparison or logical expression.
type BinaryExpr struct {
	Left  Expr
	Op    token.TokenType
	Right Expr
}

func (*BinaryExpr) exprNode() {}

// UnaryExpr is NOT, unary minus or unary plus.
type UnaryExpr struct {
	Op   token.TokenType
	Expr Expr
}

func (*UnaryExpr) exprNode() {}

// ParenExpr is an explicitly grouped expression.
type ParenExpr struct {
	Expr Expr
}

func (*ParenExpr) exprNode() {}

// ---------- Predicates ----------

// IsNullExpr is x IS [NOT] NULL.
type IsNullExpr struct {
	Expr Expr
	Not  bool
}

func (*IsNullExpr) exprNode() {}

// InExpr is x [NOT] IN (values) or x [NOT] IN (subquery).
type InExpr struct {
	Expr     Expr
	Not      bool
	Values   []Expr
	Subquery *SubqueryExpr
}

func (*InExpr) exprNode() {}

// BetweenExpr is x [NOT] BETWEEN low AND high.
type BetweenExpr struct {
	Expr Expr
	Not  bool
	Low  Expr
	High Expr
}

func (*BetweenExpr) exprNode() {}

// LikeExpr is x [NOT] LIKE pattern [ESCAPE e].
type LikeExpr struct {
	Expr    Expr
	Not     bool
	Pattern Expr
	Escape  Expr
}

func (*LikeExpr) exprNode() {}

// ExistsExpr is [NOT] EXISTS (subquery).
type ExistsExpr struct {
	Not      bool
	Subquery *SubqueryExpr
}

func (*ExistsExpr) exprNode() {}

// IsEmptyExpr is collection IS [NOT] EMPTY.
type IsEmptyExpr struct {
	Expr Expr
	Not  bool
}

func (*IsEmptyExpr) exprNode() {}

// MemberOfExpr is value [NOT] MEMBER OF collection.
type MemberOfExpr struct {
	Value      Expr
	Collection Expr
	Not        bool
}

func (*MemberOfExpr) exprNode() {}

// ---------- Functions, subqueries, compound values ----------

// FuncCall is a function invocation. Name is the logical function name
// (TRUNC_WEEK, COUNT, ROW_NUMBER...); its rendering is decided by the function registry.
type FuncCall struct {
	Name     string
	Args     []Expr
	Distinct bool
	Filter   Expr        // FILTER (WHERE ...) clause
	Window   *WindowSpec // OVER clause
}

func (*FuncCall) exprNode() {}

// Windowed reports whether the call carries an OVER or FILTER clause.
func (f *FuncCall) Windowed() bool {
	return f.Window != nil || f.Filter != nil
}

// SubqueryExpr is a nested query used as an expression.
type SubqueryExpr struct {
	Query *SelectQuery
}

func (*SubqueryExpr) exprNode() {}

// TupleExpr is a compound selection (a, b, c).
type TupleExpr struct {
	Items []Expr
}

func (*TupleExpr) exprNode() {}

// CaseExpr is a searched or simple CASE expression.
type CaseExpr struct {
	Operand Expr // CASE operand WHEN... (optional)
	Whens   []WhenClause
	Else    Expr
}

func (*CaseExpr) exprNode() {}

// WhenClause is a WHEN ... THEN ... branch of a CASE expression.
type WhenClause struct {
	Condition Expr
	Result    Expr
}

// StarExpr is the * argument of COUNT(*).
type StarExpr struct{}

func (*StarExpr) exprNode() {}

// ---------- Helpers ----------

// And joins predicates with AND, skipping nil entries. It returns nil when all are nil.
func And(preds ...Expr) Expr {
	return join(token.AND, preds)
}

// Or joins predicates with OR, skipping nil entries. It returns nil when all are nil.
func Or(preds ...Expr) Expr {
	return join(token.OR, preds)
}

func join(op token.TokenType, preds []Expr) Expr {
	var out Expr
	for _, p := range preds {
		if p == nil {
			continue
		}
		if out == nil {
			out = p
			continue
		}
		out = &BinaryExpr{Left: out, Op: op, Right: p}
	}
	return out
}

// IsNullable reports whether an expression can evaluate to NULL.
// Only bound paths mapped as non-nullable, non-null literals and COUNT are
// known not to.
func IsNullable(e Expr) bool {
	switch n := e.(type) {
	case *BoundPath:
		return n.Nullable
	case *FuncCall:
		return n.Name != "COUNT"
	case *Literal:
		return n.Kind == LiteralNull
	case *ParenExpr:
		return IsNullable(n.Expr)
	}
	return true
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
