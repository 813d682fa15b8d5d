package calc

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var errDivideByZero = errors.New("divide by zero")

// Word operators are rewritten while the words are still present; everything
// non-mathematical is stripped right after.
var wordForms = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`(\d+(?:\.\d+)?)\s+plus\s+(\d+(?:\.\d+)?)`), "$1+$2"},
	{regexp.MustCompile(`(\d+(?:\.\d+)?)\s+minus\s+(\d+(?:\.\d+)?)`), "$1-$2"},
	{regexp.MustCompile(`(\d+(?:\.\d+)?)\s+times\s+(\d+(?:\.\d+)?)`), "$1*$2"},
	{regexp.MustCompile(`(\d+(?:\.\d+)?)\s+divided\s+by\s+(\d+(?:\.\d+)?)`), "$1/$2"},
}

var (
	nonMathChars = regexp.MustCompile(`[^0-9+\-*/().,%^\s]`)
	implicitMul  = regexp.MustCompile(`(\d)\(`)
)

// normalize rewrites a raw expression into the token set the evaluator
// accepts. Returns "" when nothing evaluable remains.
func normalize(expr string) string {
	s := strings.ToLower(expr)

	// Repeat until stable so chains like "2 plus 3 plus 4" fully rewrite.
	for changed := true; changed; {
		changed = false
		for _, wf := range wordForms {
			if next := wf.re.ReplaceAllString(s, wf.repl); next != s {
				s = next
				changed = true
			}
		}
	}

	s = strings.ReplaceAll(s, "×", "*")
	s = strings.ReplaceAll(s, "÷", "/")
	s = nonMathChars.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.ReplaceAll(s, "%", "/100")
	s = implicitMul.ReplaceAllString(s, "$1*(")

	return strings.TrimSpace(s)
}

// evaluate parses and computes a normalized arithmetic expression.
// Supported: + - * / ^ with parentheses and unary minus; ^ is
// right-associative and binds tighter than unary minus.
func evaluate(expr string) (float64, error) {
	p := &parser{s: expr}
	v, err := p.parseSum()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.pos != len(p.s) {
		return 0, fmt.Errorf("unexpected %q at offset %d", p.s[p.pos], p.pos)
	}
	return v, nil
}

type parser struct {
	s   string
	pos int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.s) && (p.s[p.pos] == ' ' || p.s[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.s) {
		return 0
	}
	return p.s[p.pos]
}

// sum := product (('+'|'-') product)*
func (p *parser) parseSum() (float64, error) {
	v, err := p.parseProduct()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '+':
			p.pos++
			rhs, err := p.parseProduct()
			if err != nil {
				return 0, err
			}
			v += rhs
		case '-':
			p.pos++
			rhs, err := p.parseProduct()
			if err != nil {
				return 0, err
			}
			v -= rhs
		default:
			return v, nil
		}
	}
}

// product := unary (('*'|'/') unary)*
func (p *parser) parseProduct() (float64, error) {
	v, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '*':
			p.pos++
			rhs, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			v *= rhs
		case '/':
			p.pos++
			rhs, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			if rhs == 0 {
				return 0, errDivideByZero
			}
			v /= rhs
		default:
			return v, nil
		}
	}
}

// unary := '-' unary | power
func (p *parser) parseUnary() (float64, error) {
	if p.peek() == '-' {
		p.pos++
		v, err := p.parseUnary()
		return -v, err
	}
	return p.parsePower()
}

// power := primary ('^' unary)?
func (p *parser) parsePower() (float64, error) {
	v, err := p.parsePrimary()
	if err != nil {
		return 0, err
	}
	if p.peek() == '^' {
		p.pos++
		exp, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return math.Pow(v, exp), nil
	}
	return v, nil
}

// primary := number | '(' sum ')'
func (p *parser) parsePrimary() (float64, error) {
	if p.peek() == '(' {
		p.pos++
		v, err := p.parseSum()
		if err != nil {
			return 0, err
		}
		if p.peek() != ')' {
			return 0, errors.New("missing closing parenthesis")
		}
		p.pos++
		return v, nil
	}
	return p.parseNumber()
}

func (p *parser) parseNumber() (float64, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.s) && (p.s[p.pos] >= '0' && p.s[p.pos] <= '9' || p.s[p.pos] == '.') {
		p.pos++
	}
	if start == p.pos {
		if p.pos < len(p.s) {
			return 0, fmt.Errorf("unexpected %q at offset %d", p.s[p.pos], p.pos)
		}
		return 0, errors.New("unexpected end of expression")
	}
	v, err := strconv.ParseFloat(p.s[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("bad number %q", p.s[start:p.pos])
	}
	return v, nil
}
