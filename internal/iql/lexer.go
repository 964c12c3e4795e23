package iql

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// tokenType represents the type of a lexical token.
type tokenType int

const (
	tokEOF tokenType = iota
	tokIdent
	tokString
	tokPrefixedString // f"...", r'...', b"..."
	tokInt
	tokFloat
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokLBrace
	tokRBrace
	tokComma
	tokDot
	tokColon
	tokSemicolon
	tokNewline
	tokAssign   // =
	tokOperator // + - * / == <= := and friends
	tokIllegal
)

// token is a lexical token with its raw text and location.
type token struct {
	typ  tokenType
	text string
	span Span
	err  string // set for tokIllegal produced by a lexing failure
}

// operators lists multi-character operators, longest first.
var operators = []string{
	"**=", "//=", ">>=", "<<=",
	"**", "//", "==", "!=", "<=", ">=", "<<", ">>", ":=", "->",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "@=",
}

const operatorChars = "+-*/%<>!&|^~@"

const errUnterminated = "unterminated string literal"

// lexer tokenizes IQL input.
//
// Newlines are significant only at bracket depth zero, where they separate
// statements. Comments run from '#' to the end of the line.
type lexer struct {
	input string
	pos   int
	depth int
}

func newLexer(input string) *lexer {
	return &lexer{input: input}
}

// next returns the next token from the input.
func (l *lexer) next() token {
	l.skipSpace()

	if l.pos >= len(l.input) {
		return token{typ: tokEOF, span: Span{Start: len(l.input), End: len(l.input)}}
	}

	start := l.pos
	ch := l.input[l.pos]

	switch ch {
	case '\n':
		l.pos++
		return l.emit(tokNewline, start)
	case '(':
		l.pos++
		l.depth++
		return l.emit(tokLParen, start)
	case ')':
		l.pos++
		l.closeBracket()
		return l.emit(tokRParen, start)
	case '[':
		l.pos++
		l.depth++
		return l.emit(tokLBracket, start)
	case ']':
		l.pos++
		l.closeBracket()
		return l.emit(tokRBracket, start)
	case '{':
		l.pos++
		l.depth++
		return l.emit(tokLBrace, start)
	case '}':
		l.pos++
		l.closeBracket()
		return l.emit(tokRBrace, start)
	case ',':
		l.pos++
		return l.emit(tokComma, start)
	case ';':
		l.pos++
		return l.emit(tokSemicolon, start)
	case ':':
		if strings.HasPrefix(l.input[l.pos:], ":=") {
			l.pos += 2
			return l.emit(tokOperator, start)
		}
		l.pos++
		return l.emit(tokColon, start)
	case '"', '\'':
		return l.readString(start, tokString)
	case '.':
		if l.pos+1 < len(l.input) && isDigit(l.input[l.pos+1]) {
			return l.readNumber(start)
		}
		l.pos++
		return l.emit(tokDot, start)
	case '=':
		if strings.HasPrefix(l.input[l.pos:], "==") {
			l.pos += 2
			return l.emit(tokOperator, start)
		}
		l.pos++
		return l.emit(tokAssign, start)
	}

	if isDigit(ch) {
		return l.readNumber(start)
	}

	if strings.IndexByte(operatorChars, ch) >= 0 {
		for _, op := range operators {
			if strings.HasPrefix(l.input[l.pos:], op) {
				l.pos += len(op)
				return l.emit(tokOperator, start)
			}
		}
		l.pos++
		return l.emit(tokOperator, start)
	}

	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	if isIdentStart(r) {
		return l.readIdent(start)
	}

	l.pos += size
	tok := l.emit(tokIllegal, start)
	tok.err = "invalid character"
	return tok
}

func (l *lexer) emit(typ tokenType, start int) token {
	return token{typ: typ, text: l.input[start:l.pos], span: Span{Start: start, End: l.pos}}
}

func (l *lexer) closeBracket() {
	if l.depth > 0 {
		l.depth--
	}
}

// skipSpace skips blanks, comments, and newlines nested inside brackets.
func (l *lexer) skipSpace() {
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		switch {
		case ch == '#':
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.pos++
			}
		case ch == '\n':
			if l.depth == 0 {
				return
			}
			l.pos++
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\f' || ch == '\v':
			l.pos++
		case ch == '\\' && l.pos+1 < len(l.input) && l.input[l.pos+1] == '\n':
			l.pos += 2 // line continuation
		default:
			return
		}
	}
}

// readString scans a quoted string. The token text keeps the quotes and any
// escapes; decoding happens in decodeString.
func (l *lexer) readString(start int, typ tokenType) token {
	quote := l.input[l.pos]
	l.pos++
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		switch {
		case ch == '\\' && l.pos+1 < len(l.input) && l.input[l.pos+1] != '\n':
			l.pos += 2
		case ch == quote:
			l.pos++
			return l.emit(typ, start)
		case ch == '\n':
			tok := l.emit(tokIllegal, start)
			tok.err = errUnterminated
			return tok
		default:
			l.pos++
		}
	}
	tok := l.emit(tokIllegal, start)
	tok.err = errUnterminated
	return tok
}

// readNumber scans an integer or float literal. Trailing identifier
// characters (0x1F, 10px, 1_000) turn the whole run into an illegal token.
func (l *lexer) readNumber(start int) token {
	typ := tokInt
	l.digits()
	if l.pos < len(l.input) && l.input[l.pos] == '.' {
		typ = tokFloat
		l.pos++
		l.digits()
	}
	if l.pos < len(l.input) && (l.input[l.pos] == 'e' || l.input[l.pos] == 'E') {
		save := l.pos
		l.pos++
		if l.pos < len(l.input) && (l.input[l.pos] == '+' || l.input[l.pos] == '-') {
			l.pos++
		}
		if l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			typ = tokFloat
			l.digits()
		} else {
			l.pos = save
		}
	}

	end := l.pos
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !isIdentChar(r) {
			break
		}
		l.pos += size
	}
	if l.pos > end {
		tok := l.emit(tokIllegal, start)
		tok.err = "invalid number literal"
		return tok
	}
	return l.emit(typ, start)
}

func (l *lexer) digits() {
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
}

// readIdent scans an identifier. An identifier made only of string prefix
// letters and immediately followed by a quote is a prefixed string.
func (l *lexer) readIdent(start int) token {
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !isIdentChar(r) {
			break
		}
		l.pos += size
	}
	if l.pos < len(l.input) && (l.input[l.pos] == '"' || l.input[l.pos] == '\'') && isStringPrefix(l.input[start:l.pos]) {
		return l.readString(start, tokPrefixedString)
	}
	return l.emit(tokIdent, start)
}

func isStringPrefix(s string) bool {
	if len(s) == 0 || len(s) > 2 {
		return false
	}
	return strings.Trim(s, "rRbBuUfF") == ""
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentChar(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
