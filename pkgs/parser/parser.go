package parser

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options configures parsing. Debug output goes through Logger; a nil Logger
// disables it.
type Options struct {
	Logger *slog.Logger
}

// Parser implements a recursive descent parser for the qmake project
// language. It scans the raw input directly: conditions and values are free
// text delimited by context-dependent characters, so there is no separate
// token stream to build first.
type Parser struct {
	input     string
	pos       int
	line      int // 1-based
	lineStart int // offset of the first byte of the current line
	lines     []string
	logger    *slog.Logger
}

type mark struct {
	pos, line, lineStart int
}

// Parse parses qmake project text into a statement sequence.
func Parse(input string) ([]Statement, error) {
	return ParseWithOptions(input, Options{})
}

// ParseWithOptions parses qmake project text with explicit options.
func ParseWithOptions(input string, opts Options) ([]Statement, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	p := &Parser{
		input:  input,
		line:   1,
		lines:  strings.Split(input, "\n"),
		logger: logger,
	}
	return p.parseStatementGroup(false)
}

// ParseFile reads and parses one .pro/.pri file.
func ParseFile(path string, opts Options) ([]Statement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ParseWithOptions(string(data), opts)
}

// --- Main parsing logic ---

// parseStatementGroup parses statements until EOF, or until an unconsumed
// '}' when inBlock is set.
func (p *Parser) parseStatementGroup(inBlock bool) ([]Statement, error) {
	var stmts []Statement
	for {
		p.skipBlank()
		if p.atEnd() {
			if inBlock {
				return nil, p.errorf("unexpected end of input, missing '}'")
			}
			return stmts, nil
		}
		switch p.ch() {
		case '\n':
			p.advance()
			continue
		case '#':
			p.skipComment()
			continue
		case '}':
			if inBlock {
				return stmts, nil
			}
			return nil, p.errorf("unexpected '}'")
		}
		st, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if st != nil {
			stmts = append(stmts, st)
		}
	}
}

// parseStatement parses a single statement or conditional scope. The
// statement kind is decided by scanning ahead to the first delimiter:
// '=' marks an assignment, ':' or '{' a conditional, end of line a bare
// function call.
func (p *Parser) parseStatement() (Statement, error) {
	p.skipBlank()
	startLine := p.line
	p.logger.Debug("parse statement", "line", startLine, "column", p.col())

	if st, ok, err := p.tryReservedForm(startLine); err != nil || ok {
		return st, err
	}

	m := p.mark()
	text, delim := p.scanConditionText()
	switch delim {
	case '=':
		p.reset(m)
		return p.parseAssignment(startLine)
	case ':', '{':
		if delim == ':' {
			p.advance()
		}
		cond := normalizeCondition(text)
		if cond == "" {
			return nil, p.errorf("missing condition before %q", string(delim))
		}
		p.logger.Debug("conditional scope", "condition", cond)
		return p.parseConditional(cond, startLine)
	case '\n', '#', '}', 0:
		p.reset(m)
		return p.parseFunctionCall(startLine)
	default:
		return nil, p.errorf("unexpected %q in statement", string(delim))
	}
}

// tryReservedForm attempts the reserved statement forms load(), include(),
// option(), defineTest() and for(). It backtracks and reports no match when
// the tail does not fit, so e.g. `include(x.pri): ...` still parses as a
// condition.
func (p *Parser) tryReservedForm(startLine int) (Statement, bool, error) {
	m := p.mark()
	ident := p.scanIdentifier()
	if ident == "" {
		p.reset(m)
		return nil, false, nil
	}
	p.skipBlank()
	if p.ch() != '(' {
		p.reset(m)
		return nil, false, nil
	}

	switch ident {
	case "load", "option":
		p.advance() // '('
		p.skipBlank()
		name := p.scanIdentifier()
		p.skipBlank()
		if name == "" || p.ch() != ')' {
			p.reset(m)
			return nil, false, nil
		}
		p.advance() // ')'
		if !p.atStatementEnd() {
			p.reset(m)
			return nil, false, nil
		}
		if err := p.consumeStatementEnd(); err != nil {
			return nil, false, err
		}
		if ident == "load" {
			return &Load{Name: name, Line: startLine}, true, nil
		}
		return &Option{Name: name, Line: startLine}, true, nil

	case "include":
		p.advance() // '('
		var path strings.Builder
		for !p.atEnd() {
			c := p.ch()
			if c == ':' || c == '{' || c == '=' || c == '}' || c == '#' || c == ')' || c == '\n' {
				break
			}
			path.WriteByte(c)
			p.advance()
		}
		if p.ch() != ')' {
			p.reset(m)
			return nil, false, nil
		}
		p.advance()
		if !p.atStatementEnd() {
			p.reset(m)
			return nil, false, nil
		}
		if err := p.consumeStatementEnd(); err != nil {
			return nil, false, err
		}
		return &Include{Path: strings.TrimSpace(path.String()), Line: startLine}, true, nil

	case "defineTest":
		p.advance() // '('
		p.skipBlank()
		name := p.scanIdentifier()
		p.skipBlank()
		if name == "" || p.ch() != ')' {
			p.reset(m)
			return nil, false, nil
		}
		p.advance()
		p.skipBlank()
		if p.ch() != '{' {
			p.reset(m)
			return nil, false, nil
		}
		body, err := p.scanBalanced('{', '}')
		if err != nil {
			return nil, false, err
		}
		if err := p.consumeStatementEnd(); err != nil {
			return nil, false, err
		}
		return &FunctionCall{Raw: "defineTest(" + name + ") " + body, Line: startLine}, true, nil

	case "for":
		args, err := p.scanBalanced('(', ')')
		if err != nil {
			return nil, false, err
		}
		p.skipBlank()
		if p.ch() != '{' {
			p.reset(m)
			return nil, false, nil
		}
		body, err := p.scanBalanced('{', '}')
		if err != nil {
			return nil, false, err
		}
		if err := p.consumeStatementEnd(); err != nil {
			return nil, false, err
		}
		return &FunctionCall{Raw: "for" + args + " " + body, Line: startLine}, true, nil
	}

	p.reset(m)
	return nil, false, nil
}

// parseAssignment parses `key op values` up to the end of the statement.
func (p *Parser) parseAssignment(startLine int) (Statement, error) {
	key := p.scanIdentifier()
	if key == "" {
		return nil, p.errorf("expected key before assignment operator")
	}
	p.skipBlank()

	var op Op
	switch c := p.ch(); {
	case c == '+' && p.peekAt(1) == '=':
		op = OpAdd
		p.advance()
		p.advance()
	case c == '-' && p.peekAt(1) == '=':
		op = OpRemove
		p.advance()
		p.advance()
	case c == '*' && p.peekAt(1) == '=':
		op = OpUniqueAdd
		p.advance()
		p.advance()
	case c == '=':
		op = OpSet
		p.advance()
	default:
		return nil, p.errorf("unrecognized assignment operator after '%s'", key)
	}

	values, err := p.parseValues()
	if err != nil {
		return nil, err
	}
	if err := p.consumeStatementEnd(); err != nil {
		return nil, err
	}
	p.logger.Debug("assignment", "key", key, "op", string(op), "values", len(values))
	return &Assignment{Key: key, Op: op, Values: values, Line: startLine}, nil
}

// parseConditional parses the branch bodies after a condition has been
// scanned. The cursor stands either on '{' (multi-line form) or on the first
// statement of a single-line form.
func (p *Parser) parseConditional(cond string, startLine int) (Statement, error) {
	var then []Statement
	var err error
	p.skipBlank()
	if p.ch() == '{' {
		then, err = p.parseBlock()
	} else {
		var st Statement
		st, err = p.parseStatement()
		if st != nil {
			then = []Statement{st}
		}
	}
	if err != nil {
		return nil, err
	}

	var els []Statement
	m := p.mark()
	if p.matchElse() {
		p.skipBlank()
		switch p.ch() {
		case ':':
			p.advance()
			p.skipBlank()
			if p.ch() == '{' {
				els, err = p.parseBlock()
			} else {
				var st Statement
				st, err = p.parseStatement()
				if st != nil {
					els = []Statement{st}
				}
			}
		case '{':
			els, err = p.parseBlock()
		default:
			return nil, p.errorf("expected ':' or '{' after 'else'")
		}
		if err != nil {
			return nil, err
		}
	} else {
		p.reset(m)
	}

	return &Conditional{Condition: cond, Then: then, Else: els, Line: startLine}, nil
}

// parseBlock parses `{ statements }`; the cursor stands on '{'.
func (p *Parser) parseBlock() ([]Statement, error) {
	p.advance() // '{'
	stmts, err := p.parseStatementGroup(true)
	if err != nil {
		return nil, err
	}
	p.advance() // '}'
	return stmts, nil
}

// parseFunctionCall parses a bare `name(args)` line, consumed only for
// bracket balance.
func (p *Parser) parseFunctionCall(startLine int) (Statement, error) {
	ident := p.scanIdentifier()
	if ident == "" {
		return nil, p.errorf("expected statement")
	}
	p.skipBlank()
	if p.ch() != '(' {
		return nil, p.errorf("expected '(' after '%s'", ident)
	}
	args, err := p.scanBalanced('(', ')')
	if err != nil {
		return nil, err
	}
	if err := p.consumeStatementEnd(); err != nil {
		return nil, err
	}
	return &FunctionCall{Raw: ident + args, Line: startLine}, nil
}

// parseValues parses the value list of an assignment. Values end at end of
// line, a comment, or an unconsumed '}'.
func (p *Parser) parseValues() ([]string, error) {
	var values []string
	for {
		p.skipBlank()
		if p.atEnd() {
			return values, nil
		}
		c := p.ch()
		if c == '\n' || c == '#' || c == '}' {
			return values, nil
		}
		if c == '"' {
			s, err := p.scanQuoted()
			if err != nil {
				return nil, err
			}
			values = append(values, s)
			continue
		}
		w, err := p.scanWordValue()
		if err != nil {
			return nil, err
		}
		if w == "" {
			return nil, p.errorf("unexpected %q in value list", string(c))
		}
		values = append(values, w)
	}
}

// scanWordValue scans one unquoted value: literal runs and variable
// substitutions concatenated into a single token.
func (p *Parser) scanWordValue() (string, error) {
	var b strings.Builder
	for !p.atEnd() {
		c := p.ch()
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' ||
			c == '#' || c == '{' || c == '}' || c == '(' || c == ')' {
			break
		}
		if c == '\\' && p.isContinuation() {
			break
		}
		if c == '$' {
			sub, err := p.scanSubstitution()
			if err != nil {
				return "", err
			}
			b.WriteString(sub)
			continue
		}
		b.WriteByte(c)
		p.advance()
	}
	return b.String(), nil
}

// scanSubstitution scans the variable reference forms $$NAME, $${NAME},
// $$[NAME], $(NAME) and ${NAME}, each with an optional argument list, and
// returns the raw source text. A lone '$' is passed through.
func (p *Parser) scanSubstitution() (string, error) {
	start := p.pos
	p.advance() // '$'
	switch p.ch() {
	case '$':
		p.advance()
		switch p.ch() {
		case '{':
			p.advance()
			if p.scanIdentifier() == "" {
				return "", p.errorf("incomplete variable reference")
			}
			if p.ch() == '(' {
				if _, err := p.scanBalanced('(', ')'); err != nil {
					return "", err
				}
			}
			if p.ch() != '}' {
				return "", p.errorf("missing '}' in variable reference")
			}
			p.advance()
		case '[':
			p.advance()
			if p.scanIdentifier() == "" {
				return "", p.errorf("incomplete variable reference")
			}
			if p.ch() != ']' {
				return "", p.errorf("missing ']' in variable reference")
			}
			p.advance()
		default:
			if p.scanIdentifier() == "" {
				// just "$$": two literal dollars
				return p.input[start:p.pos], nil
			}
			if p.ch() == '(' {
				if _, err := p.scanBalanced('(', ')'); err != nil {
					return "", err
				}
			}
		}
	case '(':
		p.advance()
		if p.scanIdentifier() == "" {
			return "", p.errorf("incomplete variable reference")
		}
		if p.ch() != ')' {
			return "", p.errorf("missing ')' in variable reference")
		}
		p.advance()
	case '{':
		p.advance()
		if p.scanIdentifier() == "" {
			return "", p.errorf("incomplete variable reference")
		}
		if p.ch() != '}' {
			return "", p.errorf("missing '}' in variable reference")
		}
		p.advance()
	default:
		// lone '$'
	}
	return p.input[start:p.pos], nil
}

// scanQuoted scans a double-quoted string, removing the backslash escape
// character.
func (p *Parser) scanQuoted() (string, error) {
	p.advance() // '"'
	var b strings.Builder
	for !p.atEnd() {
		c := p.ch()
		if c == '"' {
			p.advance()
			return b.String(), nil
		}
		if c == '\n' {
			break
		}
		if c == '\\' && p.pos+1 < len(p.input) &&
			p.input[p.pos+1] != '\n' && p.input[p.pos+1] != '\r' {
			p.advance()
			b.WriteByte(p.ch())
			p.advance()
			continue
		}
		b.WriteByte(c)
		p.advance()
	}
	return "", p.errorf("unterminated string")
}

// scanConditionText consumes free condition text up to a delimiter in
// `:{=}#\` or end of line, and returns the text plus the delimiter (0 at
// EOF). Line continuations inside the text become spaces.
func (p *Parser) scanConditionText() (string, byte) {
	var b strings.Builder
	for !p.atEnd() {
		c := p.ch()
		switch c {
		case ':', '{', '=', '}', '#', '\n':
			return b.String(), c
		case '\\':
			if p.isContinuation() {
				p.advance()
				if p.ch() == '\r' {
					p.advance()
				}
				p.advance()
				b.WriteByte(' ')
				continue
			}
			return b.String(), '\\'
		}
		b.WriteByte(c)
		p.advance()
	}
	return b.String(), 0
}

// scanBalanced consumes a balanced bracket group including its delimiters;
// the cursor stands on the opener. Double-quoted strings inside the group do
// not count towards the balance.
func (p *Parser) scanBalanced(open, close byte) (string, error) {
	start := p.pos
	p.advance() // opener
	depth := 1
	for !p.atEnd() {
		c := p.ch()
		switch c {
		case '"':
			p.advance()
			for !p.atEnd() && p.ch() != '"' && p.ch() != '\n' {
				if p.ch() == '\\' {
					p.advance()
				}
				if !p.atEnd() {
					p.advance()
				}
			}
			if p.ch() == '"' {
				p.advance()
			}
			continue
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				p.advance()
				return p.input[start:p.pos], nil
			}
		}
		p.advance()
	}
	return "", p.errorf("unbalanced %q, missing %q", string(open), string(close))
}

// scanIdentifier scans an identifier ([A-Za-z_] then [A-Za-z0-9_./-]*),
// returning "" when the cursor is not on one.
func (p *Parser) scanIdentifier() string {
	if !isIdentStart(p.ch()) {
		return ""
	}
	start := p.pos
	for isIdentChar(p.ch()) {
		p.advance()
	}
	return p.input[start:p.pos]
}

// matchElse consumes blank lines and comments and then the keyword `else`
// when present. The caller resets on no match.
func (p *Parser) matchElse() bool {
	for {
		p.skipBlank()
		if p.ch() == '\n' {
			p.advance()
			continue
		}
		if p.ch() == '#' {
			p.skipComment()
			continue
		}
		break
	}
	if strings.HasPrefix(p.input[p.pos:], "else") && !isIdentChar(p.peekAt(4)) {
		for i := 0; i < 4; i++ {
			p.advance()
		}
		return true
	}
	return false
}

// --- Low-level scanning ---

func (p *Parser) atEnd() bool {
	return p.pos >= len(p.input)
}

func (p *Parser) ch() byte {
	if p.atEnd() {
		return 0
	}
	return p.input[p.pos]
}

func (p *Parser) peekAt(offset int) byte {
	if p.pos+offset >= len(p.input) {
		return 0
	}
	return p.input[p.pos+offset]
}

func (p *Parser) advance() {
	if p.atEnd() {
		return
	}
	c := p.input[p.pos]
	p.pos++
	if c == '\n' {
		p.line++
		p.lineStart = p.pos
	}
}

func (p *Parser) col() int {
	return p.pos - p.lineStart
}

func (p *Parser) mark() mark {
	return mark{pos: p.pos, line: p.line, lineStart: p.lineStart}
}

func (p *Parser) reset(m mark) {
	p.pos = m.pos
	p.line = m.line
	p.lineStart = m.lineStart
}

// isContinuation reports whether the cursor stands on a backslash directly
// followed by end of line.
func (p *Parser) isContinuation() bool {
	if p.ch() != '\\' {
		return false
	}
	if p.peekAt(1) == '\n' {
		return true
	}
	return p.peekAt(1) == '\r' && p.peekAt(2) == '\n'
}

// skipBlank skips spaces, tabs and line continuations.
func (p *Parser) skipBlank() {
	for !p.atEnd() {
		c := p.ch()
		if c == ' ' || c == '\t' || c == '\r' {
			p.advance()
			continue
		}
		if p.isContinuation() {
			p.advance() // backslash
			if p.ch() == '\r' {
				p.advance()
			}
			p.advance() // newline
			continue
		}
		break
	}
}

// skipComment skips a '#' comment up to but not including the newline.
func (p *Parser) skipComment() {
	for !p.atEnd() && p.ch() != '\n' {
		p.advance()
	}
}

// consumeStatementEnd expects end of line after a statement; a '}' is left
// for the enclosing block to consume.
func (p *Parser) consumeStatementEnd() error {
	p.skipBlank()
	if p.ch() == '#' {
		p.skipComment()
	}
	switch {
	case p.atEnd():
		return nil
	case p.ch() == '\n':
		p.advance()
		return nil
	case p.ch() == '}':
		return nil
	default:
		return p.errorf("unexpected %q after statement", string(p.ch()))
	}
}

// atStatementEnd reports whether only end of line follows, without consuming.
func (p *Parser) atStatementEnd() bool {
	m := p.mark()
	p.skipBlank()
	c := p.ch()
	end := p.atEnd() || c == '\n' || c == '#' || c == '}'
	p.reset(m)
	return end
}

func (p *Parser) context() string {
	if p.line-1 >= 0 && p.line-1 < len(p.lines) {
		return p.lines[p.line-1]
	}
	return ""
}

func (p *Parser) errorf(format string, args ...interface{}) *ParseError {
	return NewDetailedParseError(p.line, p.col(), p.context(), format, args...)
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9') || c == '-' || c == '.' || c == '/'
}

func normalizeCondition(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
