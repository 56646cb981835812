package calc

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why an evaluation failed.
type ErrorKind int

const (
	// EmptyExpression means the input had nothing but whitespace.
	EmptyExpression ErrorKind = iota + 1
	// InvalidNumber means a numeric literal was expected but had no digits.
	InvalidNumber
	// DivisionByZero means a divisor evaluated to exactly zero.
	DivisionByZero
	// UnmatchedParenthesis means a '(' was not closed by ')'.
	UnmatchedParenthesis
	// UnexpectedCharacter means input was left over after a complete expression.
	UnexpectedCharacter
)

var kindNames = map[ErrorKind]string{
	EmptyExpression:      "EmptyExpression",
	InvalidNumber:        "InvalidNumber",
	DivisionByZero:       "DivisionByZero",
	UnmatchedParenthesis: "UnmatchedParenthesis",
	UnexpectedCharacter:  "UnexpectedCharacter",
}

// String returns the kind name, e.g. "DivisionByZero".
func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// ParseErrorKind is the inverse of ErrorKind.String. It returns false for unknown names.
func ParseErrorKind(name string) (ErrorKind, bool) {
	for kind, n := range kindNames {
		if n == name {
			return kind, true
		}
	}
	return 0, false
}

// Sentinels for errors.Is. They match any *EvalError of the same kind.
var (
	ErrEmptyExpression      = &EvalError{Kind: EmptyExpression}
	ErrInvalidNumber        = &EvalError{Kind: InvalidNumber}
	ErrDivisionByZero       = &EvalError{Kind: DivisionByZero}
	ErrUnmatchedParenthesis = &EvalError{Kind: UnmatchedParenthesis}
	ErrUnexpectedCharacter  = &EvalError{Kind: UnexpectedCharacter}
)

// EvalError describes the first failure of an evaluation.
type EvalError struct {
	Kind ErrorKind
	// Char is the offending character for UnexpectedCharacter.
	Char rune
	// Pos is the byte offset in the expression where the failure was detected.
	Pos int
}

func (e *EvalError) Error() string {
	switch e.Kind {
	case EmptyExpression:
		return "calc: empty expression"
	case InvalidNumber:
		return fmt.Sprintf("calc: invalid number at position %d", e.Pos)
	case DivisionByZero:
		return fmt.Sprintf("calc: division by zero at position %d", e.Pos)
	case UnmatchedParenthesis:
		return fmt.Sprintf("calc: missing ')' at position %d", e.Pos)
	case UnexpectedCharacter:
		return fmt.Sprintf("calc: unexpected character %q at position %d", e.Char, e.Pos)
	default:
		return fmt.Sprintf("calc: %s", e.Kind)
	}
}

// Is reports whether target is an *EvalError of the same kind.
func (e *EvalError) Is(target error) bool {
	t, ok := target.(*EvalError)
	return ok && t.Kind == e.Kind
}

func newError(kind ErrorKind, pos int) *EvalError {
	return &EvalError{Kind: kind, Pos: pos}
}

// Message renders err the way the calculator display shows it.
// Errors that are not evaluation errors are shown verbatim.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var evalErr *EvalError
	if !errors.As(err, &evalErr) {
		return "Error: " + err.Error()
	}

	switch evalErr.Kind {
	case EmptyExpression:
		return "Error: Empty expression!"
	case InvalidNumber:
		return "Error: Invalid number!"
	case DivisionByZero:
		return "Error: Division by zero!"
	case UnmatchedParenthesis:
		return "Error: Missing ')'"
	case UnexpectedCharacter:
		return fmt.Sprintf("Error: Unexpected character '%c'", evalErr.Char)
	default:
		return "Error: " + evalErr.Kind.String()
	}
}

// KindOf returns the kind of an evaluation error, or 0 if err is not one.
func KindOf(err error) ErrorKind {
	var evalErr *EvalError
	if errors.As(err, &evalErr) {
		return evalErr.Kind
	}
	return 0
}
