package calc

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorsIsMatchesKind(t *testing.T) {
	_, err := Evaluate("5/0")
	require.Error(t, err)

	assert.True(t, errors.Is(err, ErrDivisionByZero))
	assert.False(t, errors.Is(err, ErrInvalidNumber))

	wrapped := fmt.Errorf("evaluating: %w", err)
	assert.True(t, errors.Is(wrapped, ErrDivisionByZero))
	assert.Equal(t, DivisionByZero, KindOf(wrapped))
}

func TestKindOfNonEvalError(t *testing.T) {
	assert.Equal(t, ErrorKind(0), KindOf(nil))
	assert.Equal(t, ErrorKind(0), KindOf(errors.New("boom")))
}

func TestErrorStrings(t *testing.T) {
	cases := []struct {
		expr    string
		errText string
		message string
	}{
		{"", "calc: empty expression", "Error: Empty expression!"},
		{"--5", "calc: invalid number at position 0", "Error: Invalid number!"},
		{"5/0", "calc: division by zero at position 2", "Error: Division by zero!"},
		{"(2+3", "calc: missing ')' at position 4", "Error: Missing ')'"},
		{"2+3a", "calc: unexpected character 'a' at position 3", "Error: Unexpected character 'a'"},
	}

	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			_, err := Evaluate(tc.expr)
			require.Error(t, err)
			assert.Equal(t, tc.errText, err.Error())
			assert.Equal(t, tc.message, Message(err))
		})
	}
}

func TestMessageForeignError(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "Error: database is locked", Message(errors.New("database is locked")))
}

func TestErrorKindNames(t *testing.T) {
	for _, kind := range []ErrorKind{EmptyExpression, InvalidNumber, DivisionByZero, UnmatchedParenthesis, UnexpectedCharacter} {
		parsed, ok := ParseErrorKind(kind.String())
		require.True(t, ok, kind.String())
		assert.Equal(t, kind, parsed)
	}

	_, ok := ParseErrorKind("Overflow")
	assert.False(t, ok)
	assert.Equal(t, "ErrorKind(99)", ErrorKind(99).String())
}
