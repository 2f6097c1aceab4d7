package driver

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/kyokaz/quickvis-go/common"
)

// Expression is a compiled scripted driver expression. The language covers
// exactly what the visibility tooling emits: `not EXPR`, `EXPR == EXPR`,
// variable identifiers, integer literals, True/False, and parentheses.
// Compiled expressions are immutable and safe for concurrent evaluation.
type Expression struct {
	source string
	root   exprNode
	vars   []string
}

// exprNode is a node in the compiled expression tree.
type exprNode interface {
	// eval computes the node's value against the variable environment.
	eval(vars map[string]common.Value) (common.Value, error)
}

type notNode struct {
	operand exprNode
}

type eqNode struct {
	left, right exprNode
}

type identNode struct {
	name string
}

type intNode struct {
	value int64
}

type boolNode struct {
	value bool
}

func (n notNode) eval(vars map[string]common.Value) (common.Value, error) {
	v, err := n.operand.eval(vars)
	if err != nil {
		return common.Value{}, err
	}
	return common.NewBool(!v.Truthy()), nil
}

func (n eqNode) eval(vars map[string]common.Value) (common.Value, error) {
	left, err := n.left.eval(vars)
	if err != nil {
		return common.Value{}, err
	}
	right, err := n.right.eval(vars)
	if err != nil {
		return common.Value{}, err
	}
	return common.NewBool(left.Equal(right)), nil
}

func (n identNode) eval(vars map[string]common.Value) (common.Value, error) {
	v, ok := vars[n.name]
	if !ok {
		return common.Value{}, fmt.Errorf("driver: undefined variable %q", n.name)
	}
	return v, nil
}

func (n intNode) eval(map[string]common.Value) (common.Value, error) {
	return common.NewInt(n.value), nil
}

func (n boolNode) eval(map[string]common.Value) (common.Value, error) {
	return common.NewBool(n.value), nil
}

// tokenKind enumerates the scanner's token categories.
type tokenKind int

const (
	tokenIdent tokenKind = iota
	tokenInt
	tokenNot
	tokenEq
	tokenLParen
	tokenRParen
	tokenTrue
	tokenFalse
	tokenEOF
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// scanner tokenizes a scripted expression.
type scanner struct {
	source string
	pos    int
}

// next scans and returns the next token, advancing the scanner.
func (s *scanner) next() (token, error) {
	for s.pos < len(s.source) && (s.source[s.pos] == ' ' || s.source[s.pos] == '\t') {
		s.pos++
	}
	if s.pos >= len(s.source) {
		return token{kind: tokenEOF, pos: s.pos}, nil
	}

	start := s.pos
	c := s.source[s.pos]

	switch {
	case c == '(':
		s.pos++
		return token{kind: tokenLParen, text: "(", pos: start}, nil
	case c == ')':
		s.pos++
		return token{kind: tokenRParen, text: ")", pos: start}, nil
	case c == '=':
		if s.pos+1 < len(s.source) && s.source[s.pos+1] == '=' {
			s.pos += 2
			return token{kind: tokenEq, text: "==", pos: start}, nil
		}
		return token{}, fmt.Errorf("driver: unexpected '=' at offset %d (did you mean '==')", start)
	case c >= '0' && c <= '9':
		for s.pos < len(s.source) && s.source[s.pos] >= '0' && s.source[s.pos] <= '9' {
			s.pos++
		}
		return token{kind: tokenInt, text: s.source[start:s.pos], pos: start}, nil
	case isIdentStart(rune(c)):
		for s.pos < len(s.source) && isIdentPart(rune(s.source[s.pos])) {
			s.pos++
		}
		word := s.source[start:s.pos]
		switch word {
		case "not":
			return token{kind: tokenNot, text: word, pos: start}, nil
		case "True":
			return token{kind: tokenTrue, text: word, pos: start}, nil
		case "False":
			return token{kind: tokenFalse, text: word, pos: start}, nil
		}
		return token{kind: tokenIdent, text: word, pos: start}, nil
	default:
		return token{}, fmt.Errorf("driver: unexpected character %q at offset %d", c, start)
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// parser builds the expression tree from the token stream.
type parser struct {
	scan    *scanner
	current token
	vars    map[string]struct{}
}

// advance consumes the current token and scans the next one.
func (p *parser) advance() error {
	tok, err := p.scan.next()
	if err != nil {
		return err
	}
	p.current = tok
	return nil
}

// parseExpr parses: expr := 'not' expr | equality
func (p *parser) parseExpr() (exprNode, error) {
	if p.current.kind == tokenNot {
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return notNode{operand: operand}, nil
	}
	return p.parseEquality()
}

// parseEquality parses: equality := primary ('==' primary)?
func (p *parser) parseEquality() (exprNode, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.current.kind != tokenEq {
		return left, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	right, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return eqNode{left: left, right: right}, nil
}

// parsePrimary parses: primary := IDENT | INT | 'True' | 'False' | '(' expr ')'
func (p *parser) parsePrimary() (exprNode, error) {
	switch p.current.kind {
	case tokenIdent:
		name := p.current.text
		p.vars[name] = struct{}{}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return identNode{name: name}, nil
	case tokenInt:
		value, err := strconv.ParseInt(p.current.text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("driver: bad integer literal %q: %w", p.current.text, err)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return intNode{value: value}, nil
	case tokenTrue, tokenFalse:
		value := p.current.kind == tokenTrue
		if err := p.advance(); err != nil {
			return nil, err
		}
		return boolNode{value: value}, nil
	case tokenLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.current.kind != tokenRParen {
			return nil, fmt.Errorf("driver: missing ')' at offset %d", p.current.pos)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return inner, nil
	case tokenEOF:
		return nil, fmt.Errorf("driver: unexpected end of expression")
	default:
		return nil, fmt.Errorf("driver: unexpected token %q at offset %d", p.current.text, p.current.pos)
	}
}

// ParseExpression compiles a scripted driver expression.
//
// Parameters:
//   - source: the expression text, e.g. "not (visible == 1)"
//
// Returns:
//   - *Expression: the compiled expression
//   - error: error if the source does not parse
func ParseExpression(source string) (*Expression, error) {
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("driver: empty expression")
	}

	p := &parser{
		scan: &scanner{source: source},
		vars: make(map[string]struct{}),
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.current.kind != tokenEOF {
		return nil, fmt.Errorf("driver: trailing input %q at offset %d", p.current.text, p.current.pos)
	}

	vars := make([]string, 0, len(p.vars))
	for name := range p.vars {
		vars = append(vars, name)
	}
	return &Expression{source: source, root: root, vars: vars}, nil
}

// Source returns the original expression text.
func (e *Expression) Source() string {
	return e.source
}

// VariableNames returns the identifiers referenced by the expression, in no
// particular order.
func (e *Expression) VariableNames() []string {
	out := make([]string, len(e.vars))
	copy(out, e.vars)
	return out
}

// Evaluate computes the expression against the given variable environment.
//
// Parameters:
//   - vars: variable name to value mapping
//
// Returns:
//   - bool: the truthiness of the expression result
//   - error: error if a referenced variable is missing
func (e *Expression) Evaluate(vars map[string]common.Value) (bool, error) {
	v, err := e.root.eval(vars)
	if err != nil {
		return false, err
	}
	return v.Truthy(), nil
}

// InvertExpression reverses the logic of an expression source string: a leading
// "not " is stripped, otherwise the whole expression is wrapped in "not (...)".
//
// Parameters:
//   - source: the expression text to reverse
//
// Returns:
//   - string: the reversed expression text
func InvertExpression(source string) string {
	if stripped, ok := strings.CutPrefix(source, "not "); ok {
		return stripped
	}
	return fmt.Sprintf("not (%s)", source)
}
