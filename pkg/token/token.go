// Package token defines the token types of the JPQL expression language.
//
// Keywords are matched case-insensitively. Function names such as TRUNC_WEEK or
// CURRENT_DATE are plain identifiers; their meaning is decided by the function registry.
package token

import (
	"fmt"
	"strings"
)

// TokenType is the kind of a lexical token.
//
//nolint:revive // token.TokenType reads better than token.Type next to Token.Type
type TokenType int32

const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Literals
	IDENT      // identifier
	NUMBER     // 123, 45.67, 1e10, 10L
	STRING     // 'hello'
	NAMEDPARAM // :name
	POSPARAM   // ?1

	// Operators
	PLUS   // +
	MINUS  // -
	STAR   // *
	SLASH  // /
	DPIPE  // ||
	EQ     // =
	NE     // <> or !=
	LT     // <
	GT     // >
	LE     // <=
	GE     // >=
	DOT    // .
	COMMA  // ,
	LPAREN // (
	RPAREN // )

	// Keywords, alphabetical; IsKeyword relies on ALL and WHERE bounding them.
	ALL
	AND
	ANY
	AS
	ASC
	BETWEEN
	BY
	CASE
	CURRENT
	DESC
	DISTINCT
	ELSE
	EMPTY
	END
	ESCAPE
	EXISTS
	FALSE
	FILTER
	FIRST
	FOLLOWING
	GROUPS
	IN
	IS
	LAST
	LIKE
	MEMBER
	NOT
	NULL
	NULLS
	OF
	OR
	ORDER
	OVER
	PARTITION
	PRECEDING
	RANGE
	ROW
	ROWS
	SOME
	THEN
	TREAT
	TRUE
	UNBOUNDED
	WHEN
	WHERE
)

// String returns the display name used in error messages.
func (t TokenType) String() string {
	if t >= 0 && int(t) < len(names) {
		return names[t]
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

// names holds display names. Keyword entries are filled from keywordList.
var names = [WHERE + 1]string{
	EOF:        "EOF",
	ILLEGAL:    "ILLEGAL",
	IDENT:      "IDENT",
	NUMBER:     "NUMBER",
	STRING:     "STRING",
	NAMEDPARAM: "NAMED PARAMETER",
	POSPARAM:   "POSITIONAL PARAMETER",
	PLUS:       "+",
	MINUS:      "-",
	STAR:       "*",
	SLASH:      "/",
	DPIPE:      "||",
	EQ:         "=",
	NE:         "<>",
	LT:         "<",
	GT:         ">",
	LE:         "<=",
	GE:         ">=",
	DOT:        ".",
	COMMA:      ",",
	LPAREN:     "(",
	RPAREN:     ")",
}

// keywordList spells the keywords in declaration order, ALL through WHERE.
const keywordList = `ALL AND ANY AS ASC BETWEEN BY CASE CURRENT DESC DISTINCT ELSE EMPTY END
ESCAPE EXISTS FALSE FILTER FIRST FOLLOWING GROUPS IN IS LAST LIKE MEMBER NOT
NULL NULLS OF OR ORDER OVER PARTITION PRECEDING RANGE ROW ROWS SOME THEN TREAT
TRUE UNBOUNDED WHEN WHERE`

// keywords is keyed by lower-case spelling.
var keywords = make(map[string]TokenType, WHERE-ALL+1)

func init() {
	words := strings.Fields(keywordList)
	if len(words) != int(WHERE-ALL+1) {
		panic("token: keywordList does not match the keyword constants")
	}
	for i, w := range words {
		t := ALL + TokenType(i)
		names[t] = w
		keywords[strings.ToLower(w)] = t
	}
}

// LookupIdent classifies a lower-cased word as a keyword or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword returns true if the token type is a keyword.
func IsKeyword(t TokenType) bool {
	return t >= ALL && t <= WHERE
}

// IsOperator returns true if the token type is an operator.
func IsOperator(t TokenType) bool {
	return t >= PLUS && t <= RPAREN
}

// IsComparison returns true for =, <>, <, >, <= and >=.
func IsComparison(t TokenType) bool {
	return t >= EQ && t <= GE
}

// Token is one lexical token and where it starts.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}
