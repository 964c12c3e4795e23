package iql

import (
	"fmt"
	"strings"
)

// Mode selects the top-level grammar.
type Mode int

const (
	// ModeFilters parses a single boolean expression of calls.
	ModeFilters Mode = iota
	// ModeActions parses a sequence of bare calls.
	ModeActions
)

func (m Mode) String() string {
	switch m {
	case ModeFilters:
		return "filters"
	case ModeActions:
		return "actions"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts "filters" or "actions" into a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "filters", "filter":
		return ModeFilters, nil
	case "actions", "action":
		return ModeActions, nil
	default:
		return 0, fmt.Errorf("invalid IQL mode %q: must be \"filters\" or \"actions\"", s)
	}
}

// Parse parses source in the given mode. In ModeActions the returned node
// is always a *Sequence.
func Parse(source string, mode Mode) (Node, error) {
	switch mode {
	case ModeFilters:
		return ParseFilters(source)
	case ModeActions:
		seq, err := ParseActions(source)
		if err != nil {
			return nil, err
		}
		return seq, nil
	default:
		return nil, fmt.Errorf("unsupported IQL mode: %v", mode)
	}
}

// IsBlank reports whether source holds only whitespace, newlines and
// comments. Blank input names no operations in either mode.
func IsBlank(source string) bool {
	l := newLexer(source)
	for {
		switch l.next().typ {
		case tokEOF:
			return true
		case tokNewline:
		default:
			return false
		}
	}
}

// ParseFilters parses a filters expression.
//
// Grammar:
//
//	expr    := andExpr ("or" andExpr)*
//	andExpr := term ("and" term)*
//	term    := "not" term | call | "(" expr ")"
//	call    := IDENT "(" (literal ("," literal)*)? ")"
func ParseFilters(source string) (Node, error) {
	p := newParser(source)
	p.skipSeparators()
	if p.tok.typ == tokEOF {
		return nil, newSyntaxError("empty IQL expression", Span{Start: 0, End: len(source)}, source)
	}

	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	if p.tok.typ == tokNewline || p.tok.typ == tokSemicolon {
		p.skipSeparators()
		if p.tok.typ != tokEOF {
			start := p.tok.span.Start
			end := p.skipOperand(false)
			return nil, newUnsupported("statement sequence", "in filters", Span{Start: start, End: end}, source)
		}
	}
	if p.tok.typ != tokEOF {
		return nil, p.unexpected()
	}
	return expr, nil
}

// ParseActions parses an actions program: calls separated by newlines or
// semicolons. Blank input yields an empty sequence.
func ParseActions(source string) (*Sequence, error) {
	p := newParser(source)
	seq := &Sequence{}

	for {
		p.skipSeparators()
		if p.tok.typ == tokEOF {
			return seq, nil
		}

		stmt, err := p.parseOr()
		if err != nil {
			return nil, err
		}

		switch n := stmt.(type) {
		case *Call:
			seq.Calls = append(seq.Calls, n)
		case *And, *Or:
			return nil, newUnsupported("boolean operation", "in actions", n.Pos(), source)
		case *Not:
			return nil, newUnsupported("not operator", "in actions", n.Pos(), source)
		default:
			return nil, newUnsupported("expression", "in actions", n.Pos(), source)
		}

		if p.tok.typ != tokEOF && p.tok.typ != tokNewline && p.tok.typ != tokSemicolon {
			return nil, p.unexpected()
		}
	}
}

// statementKeywords maps statement-level keywords to the construct they
// introduce.
var statementKeywords = map[string]string{
	"def":      "function definition",
	"class":    "class definition",
	"lambda":   "lambda",
	"import":   "import",
	"from":     "import",
	"return":   "return",
	"yield":    "yield",
	"await":    "await",
	"async":    "async",
	"if":       "control flow",
	"for":      "control flow",
	"while":    "control flow",
	"with":     "control flow",
	"try":      "control flow",
	"del":      "statement",
	"pass":     "statement",
	"raise":    "statement",
	"global":   "statement",
	"nonlocal": "statement",
	"assert":   "statement",
}

// parser is a recursive-descent parser over the lexer's token stream.
type parser struct {
	lex    *lexer
	source string

	tok     token  // current token
	ahead   *token // one token of lookahead, if peeked
	prevEnd int    // end offset of the last consumed token
	depth   int    // open brackets among consumed tokens
}

func newParser(source string) *parser {
	p := &parser{lex: newLexer(source), source: source}
	p.tok = p.lex.next()
	return p
}

// advance consumes the current token.
func (p *parser) advance() {
	switch p.tok.typ {
	case tokLParen, tokLBracket, tokLBrace:
		p.depth++
	case tokRParen, tokRBracket, tokRBrace:
		if p.depth > 0 {
			p.depth--
		}
	}
	p.prevEnd = p.tok.span.End

	if p.ahead != nil {
		p.tok = *p.ahead
		p.ahead = nil
		return
	}
	p.tok = p.lex.next()
}

func (p *parser) peek() token {
	if p.ahead == nil {
		t := p.lex.next()
		p.ahead = &t
	}
	return *p.ahead
}

func (p *parser) skipSeparators() {
	for p.tok.typ == tokNewline || p.tok.typ == tokSemicolon {
		p.advance()
	}
}

func (p *parser) isKeyword(word string) bool {
	return p.tok.typ == tokIdent && p.tok.text == word
}

// parseOr handles "or" (lowest precedence).
func (p *parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.isKeyword("or") {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Or{Left: left, Right: right}
	}
	return left, nil
}

// parseAnd handles "and".
func (p *parser) parseAnd() (Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.isKeyword("and") {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &And{Left: left, Right: right}
	}
	return left, nil
}

// parseNot handles "not" (right-associative, binds tighter than "and").
func (p *parser) parseNot() (Node, error) {
	if !p.isKeyword("not") {
		return p.parsePrimary()
	}
	start := p.tok.span.Start
	p.advance()
	operand, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	return &Not{Operand: operand, Span: Span{Start: start, End: operand.Pos().End}}, nil
}

// parsePrimary handles calls and parenthesized groups, and classifies
// everything else as unsupported.
func (p *parser) parsePrimary() (Node, error) {
	start := p.tok.span.Start

	switch p.tok.typ {
	case tokLParen:
		open := p.tok.span
		p.advance()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.tok.typ != tokRParen {
			if p.tok.typ == tokEOF {
				return nil, newSyntaxError("'(' was never closed", open, p.source)
			}
			return nil, p.unexpected()
		}
		p.advance()
		if err := p.checkPostfix(start); err != nil {
			return nil, err
		}
		return inner, nil

	case tokIdent:
		return p.parseIdent()

	case tokString, tokInt, tokFloat:
		p.advance()
		return nil, p.rejectOperand(start, "literal")

	case tokPrefixedString:
		construct := "prefixed string"
		if strings.ContainsAny(p.tok.text[:strings.IndexAny(p.tok.text, `"'`)], "fF") {
			construct = "f-string"
		}
		p.advance()
		return nil, p.rejectOperand(start, construct)

	case tokLBracket:
		return nil, p.rejectGroup(start, "list literal")

	case tokLBrace:
		return nil, p.rejectGroup(start, "dict literal")

	case tokOperator:
		switch p.tok.text {
		case "-", "+", "~":
			end := p.skipOperand(true)
			return nil, newUnsupported("unary operator", "", Span{Start: start, End: end}, p.source)
		}
		return nil, p.unexpected()

	case tokEOF:
		return nil, newSyntaxError("unexpected end of input", p.tok.span, p.source)

	default:
		return nil, p.unexpected()
	}
}

// parseIdent handles a term starting with an identifier.
func (p *parser) parseIdent() (Node, error) {
	start := p.tok.span.Start
	name := p.tok.text

	switch name {
	case "and", "or":
		return nil, p.unexpected()
	case "True", "False", "None":
		p.advance()
		return nil, p.rejectOperand(start, "literal")
	}
	if construct, ok := statementKeywords[name]; ok {
		end := p.skipOperand(construct == "lambda")
		return nil, newUnsupported(construct, "", Span{Start: start, End: end}, p.source)
	}

	if p.peek().typ != tokLParen {
		p.advance()
		return nil, p.rejectOperand(start, "variable reference")
	}

	call, err := p.parseCall()
	if err != nil {
		return nil, err
	}
	if err := p.checkPostfix(start); err != nil {
		return nil, err
	}
	return call, nil
}

// parseCall parses IDENT "(" args ")". The current token is the name.
func (p *parser) parseCall() (*Call, error) {
	call := &Call{Name: p.tok.text, NameSpan: p.tok.span}
	p.advance() // name
	open := p.tok.span
	p.advance() // (
	argDepth := p.depth

	for p.tok.typ != tokRParen {
		if p.tok.typ == tokEOF {
			return nil, newSyntaxError("'(' was never closed", open, p.source)
		}
		arg, err := p.parseArg(argDepth)
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)

		if p.tok.typ == tokComma {
			p.advance()
			continue
		}
		if p.tok.typ != tokRParen {
			if p.tok.typ == tokEOF {
				return nil, newSyntaxError("'(' was never closed", open, p.source)
			}
			return nil, p.unexpected()
		}
	}

	call.Span = Span{Start: call.NameSpan.Start, End: p.tok.span.End}
	p.advance() // )
	return call, nil
}

// parseArg parses one call argument. Anything that is not a complete
// literal followed by ',' or ')' is an argument error covering the whole
// argument text.
func (p *parser) parseArg(argDepth int) (*Literal, error) {
	start := p.tok.span.Start

	val, ok, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	if ok && p.depth == argDepth && (p.tok.typ == tokComma || p.tok.typ == tokRParen || p.tok.typ == tokEOF) {
		return &Literal{Value: val, Span: Span{Start: start, End: p.prevEnd}}, nil
	}

	end := p.prevEnd
	for p.tok.typ != tokEOF {
		if p.depth == argDepth && (p.tok.typ == tokComma || p.tok.typ == tokRParen) {
			break
		}
		if p.depth < argDepth {
			break
		}
		p.advance()
		end = p.prevEnd
	}
	if end <= start {
		end = p.tok.span.End
	}
	return nil, newArgumentError(Span{Start: start, End: end}, p.source)
}

// parseLiteral consumes a literal if one starts at the current token.
// It returns ok=false (without error) when the tokens do not form a
// literal; the caller then reports the whole argument. A literal that is
// well-formed but undecodable (bad escape, overflow) is an argument error.
func (p *parser) parseLiteral() (Value, bool, error) {
	tok := p.tok
	switch tok.typ {
	case tokString:
		p.advance()
		s, err := decodeString(tok.text)
		if err != nil {
			return nil, false, newArgumentError(tok.span, p.source)
		}
		return s, true, nil

	case tokInt, tokFloat:
		p.advance()
		return p.decodeNumber(tok, false, tok.span.Start)

	case tokOperator:
		if tok.text != "-" && tok.text != "+" {
			return nil, false, nil
		}
		next := p.peek()
		if next.typ != tokInt && next.typ != tokFloat {
			return nil, false, nil
		}
		p.advance()
		p.advance()
		return p.decodeNumber(next, tok.text == "-", tok.span.Start)

	case tokIdent:
		v, ok := keywordLiteral(tok.text)
		if !ok {
			return nil, false, nil
		}
		p.advance()
		return v, true, nil

	case tokLBracket:
		return p.parseList()

	case tokIllegal:
		if tok.err == errUnterminated {
			return nil, false, newSyntaxError(tok.err, tok.span, p.source)
		}
		return nil, false, nil

	default:
		return nil, false, nil
	}
}

func (p *parser) decodeNumber(tok token, negative bool, start int) (Value, bool, error) {
	span := Span{Start: start, End: tok.span.End}
	if tok.typ == tokInt {
		n, err := decodeInt(tok.text, negative)
		if err != nil {
			return nil, false, newArgumentError(span, p.source)
		}
		return n, true, nil
	}
	f, err := decodeFloat(tok.text, negative)
	if err != nil {
		return nil, false, newArgumentError(span, p.source)
	}
	return f, true, nil
}

// parseList parses "[" (literal ("," literal)*)? "]".
func (p *parser) parseList() (Value, bool, error) {
	p.advance() // [
	listDepth := p.depth
	list := ListValue{}

	for p.tok.typ != tokRBracket {
		v, ok, err := p.parseLiteral()
		if err != nil || !ok {
			return nil, false, err
		}
		if p.depth != listDepth {
			return nil, false, nil
		}
		list = append(list, v)

		if p.tok.typ == tokComma {
			p.advance()
			continue
		}
		if p.tok.typ != tokRBracket {
			return nil, false, nil
		}
	}
	p.advance() // ]
	return list, true, nil
}

// checkPostfix rejects operators and trailers that follow a complete
// operand starting at start, such as "f(1).x", "f(1) + 2" or "f(1)[0]".
func (p *parser) checkPostfix(start int) error {
	construct, ok := postfixConstruct(p.tok)
	if !ok {
		return nil
	}
	end := p.skipOperand(true)
	return newUnsupported(construct, "", Span{Start: start, End: end}, p.source)
}

// rejectOperand reports a non-call operand that has already been consumed.
// A trailing operator wins over the operand's own label, so "1 == f()" is
// reported as a comparison.
func (p *parser) rejectOperand(start int, construct string) error {
	if post, ok := postfixConstruct(p.tok); ok {
		construct = post
	}
	end := p.skipOperand(true)
	if end < p.prevEnd {
		end = p.prevEnd
	}
	return newUnsupported(construct, "", Span{Start: start, End: end}, p.source)
}

// rejectGroup consumes a bracketed group at term position and reports it,
// as a comprehension if it contains a "for" clause.
func (p *parser) rejectGroup(start int, construct string) error {
	outer := p.depth
	p.advance()
	for p.tok.typ != tokEOF && p.depth > outer {
		if p.depth == outer+1 && p.isKeyword("for") {
			construct = "comprehension"
		}
		p.advance()
	}
	return p.rejectOperand(start, construct)
}

// skipOperand consumes tokens up to the end of the current operand and
// returns the end offset of the last consumed token. It stops at a
// separator or an unmatched closing bracket at the starting depth, and at
// "and"/"or" when stopAtBool is set.
func (p *parser) skipOperand(stopAtBool bool) int {
	base := p.depth
	end := p.prevEnd
	for p.tok.typ != tokEOF {
		if p.depth == base {
			switch p.tok.typ {
			case tokNewline, tokSemicolon, tokComma, tokRParen, tokRBracket, tokRBrace:
				return max(end, p.prevEnd)
			}
			if stopAtBool && (p.isKeyword("and") || p.isKeyword("or")) {
				return max(end, p.prevEnd)
			}
		}
		p.advance()
		end = p.prevEnd
	}
	return end
}

// unexpected reports the current token as a syntax error.
func (p *parser) unexpected() error {
	switch p.tok.typ {
	case tokEOF:
		return newSyntaxError("unexpected end of input", p.tok.span, p.source)
	case tokNewline:
		return newSyntaxError("unexpected end of line", p.tok.span, p.source)
	case tokIllegal:
		return newSyntaxError(p.tok.err, p.tok.span, p.source)
	default:
		return newSyntaxError(fmt.Sprintf("unexpected %q", p.tok.text), p.tok.span, p.source)
	}
}

// postfixConstruct classifies a token that cannot follow a complete operand.
func postfixConstruct(t token) (string, bool) {
	switch t.typ {
	case tokDot:
		return "attribute access", true
	case tokLBracket:
		return "subscript", true
	case tokLParen:
		return "call on an expression", true
	case tokAssign:
		return "assignment", true
	case tokColon:
		return "annotation", true
	case tokOperator:
		switch t.text {
		case "==", "!=", "<", ">", "<=", ">=":
			return "comparison", true
		case "->":
			return "annotation", true
		case "&", "|", "^", "<<", ">>", "~":
			return "bitwise operator", true
		}
		if strings.HasSuffix(t.text, "=") {
			return "assignment", true
		}
		return "arithmetic operator", true
	case tokIdent:
		switch t.text {
		case "if":
			return "conditional expression", true
		case "for":
			return "comprehension", true
		case "in", "is":
			return "comparison", true
		}
	}
	return "", false
}
