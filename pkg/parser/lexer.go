package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const eof rune = -1

// operators are tried in order, so two-character forms come first.
var operators = []struct {
	lit string
	typ TokenType
}{
	{"<=", TOKEN_LE},
	{"<>", TOKEN_NE},
	{">=", TOKEN_GE},
	{"!=", TOKEN_NE},
	{"||", TOKEN_DPIPE},
	{"+", TOKEN_PLUS},
	{"-", TOKEN_MINUS},
	{"*", TOKEN_STAR},
	{"/", TOKEN_SLASH},
	{"=", TOKEN_EQ},
	{"<", TOKEN_LT},
	{">", TOKEN_GT},
	{".", TOKEN_DOT},
	{",", TOKEN_COMMA},
	{"(", TOKEN_LPAREN},
	{")", TOKEN_RPAREN},
}

// Lexer splits a JPQL fragment into tokens. It reads runes, so identifiers
// may use any Unicode letter.
type Lexer struct {
	src  string
	off  int // byte offset of ch
	next int // byte offset after ch
	ch   rune
	line int
	col  int
}

// NewLexer returns a lexer positioned on the first rune of input.
func NewLexer(input string) *Lexer {
	l := &Lexer{src: input, line: 1}
	l.advance()
	return l
}

func (l *Lexer) advance() {
	if l.ch == '\n' {
		l.line++
		l.col = 0
	}
	l.off = l.next
	l.col++
	if l.next >= len(l.src) {
		l.ch = eof
		return
	}
	r, w := utf8.DecodeRuneInString(l.src[l.next:])
	l.ch = r
	l.next += w
}

func (l *Lexer) peek() rune {
	if l.next >= len(l.src) {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.next:])
	return r
}

func (l *Lexer) pos() Position {
	return Position{Line: l.line, Column: l.col, Offset: l.off}
}

// NextToken scans the next token. At the end of input it keeps returning EOF.
func (l *Lexer) NextToken() Token {
	for unicode.IsSpace(l.ch) {
		l.advance()
	}
	pos := l.pos()
	tok := func(t TokenType, lit string) Token {
		return Token{Type: t, Literal: lit, Pos: pos}
	}

	switch {
	case l.ch == eof:
		return tok(TOKEN_EOF, "")
	case isIdentStart(l.ch):
		lit := l.scanWhile(isIdentPart)
		return tok(LookupIdent(strings.ToLower(lit)), lit)
	case isDigit(l.ch), l.ch == '.' && isDigit(l.peek()):
		return tok(TOKEN_NUMBER, l.scanNumber())
	case l.ch == '\'':
		lit, ok := l.scanQuoted('\'')
		if !ok {
			return tok(TOKEN_ILLEGAL, "unterminated string literal")
		}
		return tok(TOKEN_STRING, lit)
	case l.ch == '"':
		// never a keyword
		lit, ok := l.scanQuoted('"')
		if !ok {
			return tok(TOKEN_ILLEGAL, "unterminated quoted identifier")
		}
		return tok(TOKEN_IDENT, lit)
	case l.ch == ':':
		l.advance()
		if !isIdentStart(l.ch) {
			return tok(TOKEN_ILLEGAL, ":")
		}
		return tok(TOKEN_NAMEDPARAM, l.scanWhile(isIdentPart))
	case l.ch == '?':
		l.advance()
		return tok(TOKEN_POSPARAM, l.scanWhile(isDigit))
	}

	rest := l.src[l.off:]
	for _, op := range operators {
		if strings.HasPrefix(rest, op.lit) {
			for range len(op.lit) {
				l.advance()
			}
			return tok(op.typ, op.lit)
		}
	}
	lit := string(l.ch)
	l.advance()
	return tok(TOKEN_ILLEGAL, lit)
}

func (l *Lexer) scanWhile(ok func(rune) bool) string {
	start := l.off
	for l.ch != eof && ok(l.ch) {
		l.advance()
	}
	return l.src[start:l.off]
}

// scanQuoted reads a literal delimited by q, where a doubled q stands for
// itself: 'it''s' reads as it's.
func (l *Lexer) scanQuoted(q rune) (string, bool) {
	l.advance()
	var sb strings.Builder
	for l.ch != eof {
		if l.ch == q {
			l.advance()
			if l.ch != q {
				return sb.String(), true
			}
		}
		sb.WriteRune(l.ch)
		l.advance()
	}
	return sb.String(), false
}

// scanNumber reads an integer, decimal or exponent literal. Java type
// suffixes (10L, 1.5D, 2F, 3BI, 4BD) are consumed and dropped.
func (l *Lexer) scanNumber() string {
	start := l.off
	l.scanWhile(isDigit)
	if l.ch == '.' && isDigit(l.peek()) {
		l.advance()
		l.scanWhile(isDigit)
	}
	if l.ch == 'e' || l.ch == 'E' {
		l.advance()
		if l.ch == '+' || l.ch == '-' {
			l.advance()
		}
		l.scanWhile(isDigit)
	}
	end := l.off

	switch unicode.ToLower(l.ch) {
	case 'l', 'd', 'f':
		l.advance()
	case 'b':
		if p := unicode.ToLower(l.peek()); p == 'i' || p == 'd' {
			l.advance()
			l.advance()
		}
	}
	return l.src[start:end]
}

func isIdentStart(r rune) bool { return r == '_' || r == '$' || unicode.IsLetter(r) }

func isIdentPart(r rune) bool { return isIdentStart(r) || isDigit(r) }

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// Tokenize returns every token of input, ending with EOF.
func Tokenize(input string) []Token {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TOKEN_EOF {
			return tokens
		}
	}
}
