package parser

import "github.com/leapstack-labs/leapquery/pkg/token"

// TokenType is an alias for token.TokenType.
type TokenType = token.TokenType

// Token is an alias for token.Token.
type Token = token.Token

// Position is an alias for token.Position.
type Position = token.Position

// LookupIdent is re-exported from token package.
var LookupIdent = token.LookupIdent

//nolint:revive // TOKEN_* names are intentionally ALL_CAPS for token conventions
const (
	// Special tokens
	TOKEN_EOF     = token.EOF
	TOKEN_ILLEGAL = token.ILLEGAL

	// Literals
	TOKEN_IDENT      = token.IDENT
	TOKEN_NUMBER     = token.NUMBER
	TOKEN_STRING     = token.STRING
	TOKEN_NAMEDPARAM = token.NAMEDPARAM
	TOKEN_POSPARAM   = token.POSPARAM

	// Operators
	TOKEN_PLUS   = token.PLUS
	TOKEN_MINUS  = token.MINUS
	TOKEN_STAR   = token.STAR
	TOKEN_SLASH  = token.SLASH
	TOKEN_DPIPE  = token.DPIPE
	TOKEN_EQ     = token.EQ
	TOKEN_NE     = token.NE
	TOKEN_LT     = token.LT
	TOKEN_GT     = token.GT
	TOKEN_LE     = token.LE
	TOKEN_GE     = token.GE
	TOKEN_DOT    = token.DOT
	TOKEN_COMMA  = token.COMMA
	TOKEN_LPAREN = token.LPAREN
	TOKEN_RPAREN = token.RPAREN

	// Keywords
	TOKEN_ALL       = token.ALL
	TOKEN_AND       = token.AND
	TOKEN_ANY       = token.ANY
	TOKEN_AS        = token.AS
	TOKEN_ASC       = token.ASC
	TOKEN_BETWEEN   = token.BETWEEN
	TOKEN_BY        = token.BY
	TOKEN_CASE      = token.CASE
	TOKEN_CURRENT   = token.CURRENT
	TOKEN_DESC      = token.DESC
	TOKEN_DISTINCT  = token.DISTINCT
	TOKEN_ELSE      = token.ELSE
	TOKEN_EMPTY     = token.EMPTY
	TOKEN_END       = token.END
	TOKEN_ESCAPE    = token.ESCAPE
	TOKEN_EXISTS    = token.EXISTS
	TOKEN_FALSE     = token.FALSE
	TOKEN_FILTER    = token.FILTER
	TOKEN_FIRST     = token.FIRST
	TOKEN_FOLLOWING = token.FOLLOWING
	TOKEN_GROUPS    = token.GROUPS
	TOKEN_IN        = token.IN
	TOKEN_IS        = token.IS
	TOKEN_LAST      = token.LAST
	TOKEN_LIKE      = token.LIKE
	TOKEN_MEMBER    = token.MEMBER
	TOKEN_NOT       = token.NOT
	TOKEN_NULL      = token.NULL
	TOKEN_NULLS     = token.NULLS
	TOKEN_OF        = token.OF
	TOKEN_OR        = token.OR
	TOKEN_ORDER     = token.ORDER
	TOKEN_OVER      = token.OVER
	TOKEN_PARTITION = token.PARTITION
	TOKEN_PRECEDING = token.PRECEDING
	TOKEN_RANGE     = token.RANGE
	TOKEN_ROW       = token.ROW
	TOKEN_ROWS      = token.ROWS
	TOKEN_SOME      = token.SOME
	TOKEN_THEN      = token.THEN
	TOKEN_TREAT     = token.TREAT
	TOKEN_TRUE      = token.TRUE
	TOKEN_UNBOUNDED = token.UNBOUNDED
	TOKEN_WHEN      = token.WHEN
	TOKEN_WHERE     = token.WHERE
)
