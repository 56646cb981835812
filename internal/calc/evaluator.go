// Package calc evaluates arithmetic expressions built from decimal literals,
// the binary operators + - * / and parentheses.
//
// Parsing is a single recursive-descent pass with one function per
// precedence level:
//
//	expression := term ( ('+' | '-') term )*
//	term       := factor ( ('*' | '/') factor )*
//	factor     := '(' expression ')' | number
//	number     := ['+' | '-'] digit* ['.' digit*]
//
// Every level returns (value, error) and stops at the first error, so the
// reported error is always the first one encountered. A parser value is created
// per call; nothing is shared between evaluations and all functions are safe
// for concurrent use.
package calc

import (
	"math"
	"strconv"
	"unicode/utf8"
)

// Evaluate parses and evaluates expression and returns the formatted result.
// A non-nil error is always an *EvalError.
func Evaluate(expression string) (string, error) {
	value, err := EvaluateValue(expression)
	if err != nil {
		return "", err
	}
	return FormatResult(value), nil
}

// EvaluateValue is Evaluate without the final formatting step.
func EvaluateValue(expression string) (float64, error) {
	p := &parser{input: expression}
	p.skipSpaces()
	if p.isEnd() {
		return 0, newError(EmptyExpression, p.pos)
	}

	value, err := p.parseExpression()
	if err != nil {
		return 0, err
	}

	p.skipSpaces()
	if !p.isEnd() {
		ch, _ := utf8.DecodeRuneInString(p.input[p.pos:])
		return 0, &EvalError{Kind: UnexpectedCharacter, Char: ch, Pos: p.pos}
	}

	return value, nil
}

type parser struct {
	input string
	pos   int
}

func (p *parser) parseExpression() (float64, error) {
	value, err := p.parseTerm()
	if err != nil {
		return 0, err
	}

	for {
		p.skipSpaces()
		switch {
		case p.match('+'):
			rhs, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			value += rhs
		case p.match('-'):
			rhs, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			value -= rhs
		default:
			return value, nil
		}
	}
}

func (p *parser) parseTerm() (float64, error) {
	value, err := p.parseFactor()
	if err != nil {
		return 0, err
	}

	for {
		p.skipSpaces()
		switch {
		case p.match('*'):
			rhs, err := p.parseFactor()
			if err != nil {
				return 0, err
			}
			value *= rhs
		case p.match('/'):
			divisorPos := p.pos
			rhs, err := p.parseFactor()
			if err != nil {
				return 0, err
			}
			// -0 compares equal to 0 as well
			if rhs == 0 {
				return 0, newError(DivisionByZero, divisorPos)
			}
			value /= rhs
		default:
			return value, nil
		}
	}
}

func (p *parser) parseFactor() (float64, error) {
	p.skipSpaces()

	if p.match('(') {
		value, err := p.parseExpression()
		if err != nil {
			return 0, err
		}
		p.skipSpaces()
		if !p.match(')') {
			return 0, newError(UnmatchedParenthesis, p.pos)
		}
		return value, nil
	}

	return p.parseNumber()
}

// parseNumber scans an optionally signed decimal literal. The sign must be
// directly followed by the literal; a second '.' ends it. A literal of only a
// decimal point ("." or "-.") is zero.
func (p *parser) parseNumber() (float64, error) {
	p.skipSpaces()

	start := p.pos
	negative := false
	if !p.isEnd() && (p.peek() == '+' || p.peek() == '-') {
		negative = p.peek() == '-'
		p.pos++
	}
	body := p.pos

	digits := 0
	dotSeen := false
scan:
	for !p.isEnd() {
		switch ch := p.peek(); {
		case ch >= '0' && ch <= '9':
			digits++
		case ch == '.' && !dotSeen:
			dotSeen = true
		default:
			break scan
		}
		p.pos++
	}

	if p.pos == body {
		return 0, newError(InvalidNumber, start)
	}
	if digits == 0 {
		if negative {
			return math.Copysign(0, -1), nil
		}
		return 0, nil
	}

	// The scanned text is always well formed, so only strconv.ErrRange
	// (a literal too large for float64) can get here.
	value, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, newError(InvalidNumber, start)
	}
	return value, nil
}

func (p *parser) skipSpaces() {
	for !p.isEnd() {
		switch p.peek() {
		case ' ', '\t', '\n', '\v', '\f', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) match(target byte) bool {
	if p.isEnd() || p.peek() != target {
		return false
	}
	p.pos++
	return true
}

func (p *parser) peek() byte {
	return p.input[p.pos]
}

func (p *parser) isEnd() bool {
	return p.pos >= len(p.input)
}
