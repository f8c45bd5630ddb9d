package condition

import (
	"fmt"
	"sort"
	"strings"
)

// Expr is a node of a propositional expression over CMake condition tokens.
type Expr interface {
	exprNode()
}

// Var is a named boolean variable such as WIN32 or QT_FEATURE_gui.
type Var string

// Const is the ON or OFF constant.
type Const bool

// Not negates one operand.
type Not struct {
	X Expr
}

// And conjoins two or more operands.
type And struct {
	Xs []Expr
}

// Or disjoins two or more operands.
type Or struct {
	Xs []Expr
}

func (Var) exprNode()   {}
func (Const) exprNode() {}
func (*Not) exprNode()  {}
func (*And) exprNode()  {}
func (*Or) exprNode()   {}

// --- Parsing ---

type exprParser struct {
	tokens []string
	pos    int
}

// parseExpr parses a canonicalized condition string into an expression tree.
// Tokens outside the NOT/AND/OR/identifier vocabulary make the expression
// unparseable; callers fall back to the raw text then.
func parseExpr(input string) (Expr, error) {
	tokens, err := tokenizeExpr(input)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty condition")
	}
	p := &exprParser{tokens: tokens}
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.tokens) {
		return nil, fmt.Errorf("trailing token %q in condition", p.tokens[p.pos])
	}
	return e, nil
}

func tokenizeExpr(input string) ([]string, error) {
	var tokens []string
	for i := 0; i < len(input); {
		c := input[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '(' || c == ')':
			tokens = append(tokens, string(c))
			i++
		case isExprIdentChar(c):
			start := i
			for i < len(input) && isExprIdentChar(input[i]) {
				i++
			}
			tokens = append(tokens, input[start:i])
		default:
			return nil, fmt.Errorf("unexpected character %q in condition", string(c))
		}
	}
	return tokens, nil
}

func isExprIdentChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func (p *exprParser) peek() string {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return ""
}

func (p *exprParser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	xs := []Expr{left}
	for p.peek() == "OR" {
		p.pos++
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		xs = append(xs, right)
	}
	if len(xs) == 1 {
		return left, nil
	}
	return &Or{Xs: xs}, nil
}

func (p *exprParser) parseAnd() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	xs := []Expr{left}
	for p.peek() == "AND" {
		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		xs = append(xs, right)
	}
	if len(xs) == 1 {
		return left, nil
	}
	return &And{Xs: xs}, nil
}

func (p *exprParser) parseUnary() (Expr, error) {
	switch tok := p.peek(); tok {
	case "":
		return nil, fmt.Errorf("unexpected end of condition")
	case "NOT":
		p.pos++
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Not{X: x}, nil
	case "(":
		p.pos++
		x, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.peek() != ")" {
			return nil, fmt.Errorf("missing ')' in condition")
		}
		p.pos++
		return x, nil
	case ")", "AND", "OR":
		return nil, fmt.Errorf("unexpected %q in condition", tok)
	case "ON":
		p.pos++
		return Const(true), nil
	case "OFF":
		p.pos++
		return Const(false), nil
	default:
		p.pos++
		return Var(tok), nil
	}
}

// --- Rendering ---

// render produces the canonical string form. And/Or operands are sorted so
// that equivalent expressions render identically; merging keys on the
// rendered string relies on that.
func render(e Expr) string {
	switch x := e.(type) {
	case Var:
		return string(x)
	case Const:
		if x {
			return "ON"
		}
		return "OFF"
	case *Not:
		if isCompound(x.X) {
			return "NOT (" + render(x.X) + ")"
		}
		return "NOT " + render(x.X)
	case *And:
		parts := make([]string, len(x.Xs))
		for i, sub := range x.Xs {
			s := render(sub)
			if _, ok := sub.(*Or); ok {
				s = "(" + s + ")"
			}
			parts[i] = s
		}
		sort.Strings(parts)
		return strings.Join(parts, " AND ")
	case *Or:
		parts := make([]string, len(x.Xs))
		for i, sub := range x.Xs {
			s := render(sub)
			if _, ok := sub.(*And); ok {
				s = "(" + s + ")"
			}
			parts[i] = s
		}
		sort.Strings(parts)
		return strings.Join(parts, " OR ")
	}
	return ""
}

func isCompound(e Expr) bool {
	switch e.(type) {
	case *And, *Or:
		return true
	}
	return false
}
