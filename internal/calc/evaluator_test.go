package calc

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateRespectsPrecedence(t *testing.T) {
	cases := []struct {
		expr     string
		expected string
	}{
		{"2+3", "5"},
		{"10 + 5 * 2", "20"},
		{"8 - 2 * 3", "2"},
		{"2 + 3 * 4", "14"},
		{"18 / 3 + 2", "8"},
		{"10-2-3", "5"},
		{"100/10/2", "5"},
		{"2*3/4", "1.5"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.expr, func(t *testing.T) {
			t.Parallel()
			got, err := Evaluate(tc.expr)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestEvaluateHandlesParentheses(t *testing.T) {
	cases := []struct {
		expr     string
		expected string
	}{
		{"(2+3)*4", "20"},
		{"(8 - 2) * (5 - 3)", "12"},
		{"(10 + 5) / (3 + 2)", "3"},
		{"((((3))))", "3"},
		{" ( 1 + 2 ) * ( 3 + 4 ) ", "21"},
		{"2*(3+(4-1))/3", "4"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.expr, func(t *testing.T) {
			t.Parallel()
			got, err := Evaluate(tc.expr)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestEvaluateLiterals(t *testing.T) {
	cases := []struct {
		expr     string
		expected string
	}{
		{"10/4", "2.5"},
		{"7/2", "3.5"},
		{"1/3", "0.333333333333"},
		{"2/3", "0.666666666667"},
		{"0.1+0.2", "0.3"},
		{"5.", "5"},
		{".5", "0.5"},
		{"-.5", "-0.5"},
		{"+4", "4"},
		{"-5+2", "-3"},
		{"2--5", "7"},
		{"2*-3", "-6"},
		{"2 - -3", "5"},
		{"0*-1", "0"},
		{"1.5*2", "3"},
		{"0.000001", "0.000001"},
		{"123.456", "123.456"},
		{"007", "7"},
		{"\t1\n+\r2\v*\f3", "7"},
		{".", "0"},
		{"-.", "0"},
		{"+.", "0"},
		{"2+.", "2"},
		{"(.)", "0"},
		{"3*-.", "0"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.expr, func(t *testing.T) {
			t.Parallel()
			got, err := Evaluate(tc.expr)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	cases := []struct {
		name string
		expr string
		kind ErrorKind
		char rune
		pos  int
	}{
		{"empty", "", EmptyExpression, 0, 0},
		{"blank", "   ", EmptyExpression, 0, 3},
		{"whitespace mix", "\t\n ", EmptyExpression, 0, 3},
		{"division by zero", "5/0", DivisionByZero, 0, 2},
		{"division by computed zero", "5/(2-2)", DivisionByZero, 0, 2},
		{"division by negative zero", "5/-0", DivisionByZero, 0, 2},
		{"division by zero point zero", "1 / 0.0", DivisionByZero, 0, 3},
		{"unclosed paren", "(2+3", UnmatchedParenthesis, 0, 4},
		{"nested unclosed paren", "((1)", UnmatchedParenthesis, 0, 4},
		{"second dot inside parens", "(1.2.3)", UnmatchedParenthesis, 0, 4},
		{"trailing letter", "2+3a", UnexpectedCharacter, 'a', 3},
		{"stray close paren", "2+3)", UnexpectedCharacter, ')', 3},
		{"second dot", "1.2.3", UnexpectedCharacter, '.', 3},
		{"two numbers", "2 3", UnexpectedCharacter, '3', 2},
		{"multibyte leftover", "2+3é", UnexpectedCharacter, 'é', 3},
		{"double minus", "--5", InvalidNumber, 0, 0},
		{"plus minus", "+-5", InvalidNumber, 0, 0},
		{"minus plus", "-+5", InvalidNumber, 0, 0},
		{"sign before paren", "-(2)", InvalidNumber, 0, 0},
		{"sign then space", "- 5", InvalidNumber, 0, 0},
		{"dangling operator", "2+", InvalidNumber, 0, 2},
		{"leading operator", "*2", InvalidNumber, 0, 0},
		{"lone plus", "+", InvalidNumber, 0, 0},
		{"divide by lone dot", "5/.", DivisionByZero, 0, 2},
		{"empty parens", "()", InvalidNumber, 0, 1},
		{"letter operand", "2+a", InvalidNumber, 0, 2},
		{"literal out of range", "1" + strings.Repeat("0", 400), InvalidNumber, 0, 0},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := Evaluate(tc.expr)
			require.Error(t, err)
			assert.Empty(t, got)

			var evalErr *EvalError
			require.True(t, errors.As(err, &evalErr), "expected *EvalError, got %T", err)
			assert.Equal(t, tc.kind, evalErr.Kind)
			assert.Equal(t, tc.char, evalErr.Char)
			assert.Equal(t, tc.pos, evalErr.Pos)
		})
	}
}

func TestEvaluateFirstErrorWins(t *testing.T) {
	cases := []struct {
		expr string
		kind ErrorKind
	}{
		// the dangling '+' would be an InvalidNumber, but the division fails first
		{"(1/0)+", DivisionByZero},
		{"1/0 a", DivisionByZero},
		{"(2+)*(1/0)", InvalidNumber},
		{"((1/0)", DivisionByZero},
		{"(1 a", UnmatchedParenthesis},
	}

	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			_, err := Evaluate(tc.expr)
			assert.Equal(t, tc.kind, KindOf(err))
		})
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	inputs := []string{"2+3", "5/0", "(2+3", "2+3a", "--5", "1/3", ""}

	for _, input := range inputs {
		firstValue, firstErr := Evaluate(input)
		secondValue, secondErr := Evaluate(input)
		assert.Equal(t, firstValue, secondValue, "input %q", input)
		assert.Equal(t, firstErr, secondErr, "input %q", input)
	}

	// an error must not leak into the next evaluation
	_, err := Evaluate("5/0")
	require.Error(t, err)
	got, err := Evaluate("1+1")
	require.NoError(t, err)
	assert.Equal(t, "2", got)
}

func TestEvaluateConcurrent(t *testing.T) {
	cases := map[string]string{
		"2+3":     "5",
		"(2+3)*4": "20",
		"10/4":    "2.5",
		"1/3":     "0.333333333333",
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		for expr, want := range cases {
			wg.Add(1)
			go func(expr, want string) {
				defer wg.Done()
				got, err := Evaluate(expr)
				assert.NoError(t, err)
				assert.Equal(t, want, got)
			}(expr, want)
		}
	}
	wg.Wait()
}

// TestEvaluateMatchesReference builds random flat expressions and compares the
// parser with a direct two-pass evaluation performing the same float64
// operations in the same order.
func TestEvaluateMatchesReference(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	ops := []byte{'+', '-', '*', '/'}

	for i := 0; i < 500; i++ {
		n := 1 + rng.Intn(8)
		operands := make([]float64, n)
		operators := make([]byte, n-1)

		var b strings.Builder
		for j := 0; j < n; j++ {
			// non-zero operands keep division defined
			operands[j] = float64(1+rng.Intn(99)) / float64(1+rng.Intn(4))
			if j > 0 {
				operators[j-1] = ops[rng.Intn(len(ops))]
				b.WriteString(" " + string(operators[j-1]) + " ")
			}
			b.WriteString(fmt.Sprintf("%g", operands[j]))
		}
		expr := b.String()

		got, err := EvaluateValue(expr)
		require.NoError(t, err, expr)
		assert.Equal(t, referenceEval(operands, operators), got, expr)
	}
}

// TestEvaluateMatchesReferenceNested covers parenthesised groups and signed
// literals. The generator computes each value with the same float64
// operations the parser performs.
func TestEvaluateMatchesReferenceNested(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		gen := &exprGen{rng: rng}
		expr, want := gen.expression(3)

		got, err := EvaluateValue(expr)
		require.NoError(t, err, expr)
		assert.Equal(t, want, got, expr)
	}
}

type exprGen struct {
	rng *rand.Rand
}

func (g *exprGen) expression(depth int) (string, float64) {
	text, value := g.term(depth)
	for n := g.rng.Intn(3); n > 0; n-- {
		rhsText, rhs := g.term(depth)
		if g.rng.Intn(2) == 0 {
			text, value = text+" + "+rhsText, value+rhs
		} else {
			text, value = text+" - "+rhsText, value-rhs
		}
	}
	return text, value
}

func (g *exprGen) term(depth int) (string, float64) {
	text, value := g.factor(depth)
	for n := g.rng.Intn(3); n > 0; n-- {
		rhsText, rhs := g.factor(depth)
		// a zero divisor (e.g. "(2-2)") would stop the evaluation
		if g.rng.Intn(2) == 0 && rhs != 0 {
			text, value = text+"/"+rhsText, value/rhs
		} else {
			text, value = text+"*"+rhsText, value*rhs
		}
	}
	return text, value
}

func (g *exprGen) factor(depth int) (string, float64) {
	if depth > 0 && g.rng.Intn(3) == 0 {
		text, value := g.expression(depth - 1)
		return "(" + text + ")", value
	}

	value := float64(1+g.rng.Intn(99)) / float64(1+g.rng.Intn(4))
	switch g.rng.Intn(4) {
	case 0:
		return fmt.Sprintf("-%g", value), -value
	case 1:
		return fmt.Sprintf("+%g", value), value
	default:
		return fmt.Sprintf("%g", value), value
	}
}

func referenceEval(operands []float64, operators []byte) float64 {
	// collapse multiplicative runs left to right
	terms := []float64{operands[0]}
	var additive []byte
	for i, op := range operators {
		rhs := operands[i+1]
		switch op {
		case '*':
			terms[len(terms)-1] *= rhs
		case '/':
			terms[len(terms)-1] /= rhs
		default:
			terms = append(terms, rhs)
			additive = append(additive, op)
		}
	}

	value := terms[0]
	for i, op := range additive {
		if op == '+' {
			value += terms[i+1]
		} else {
			value -= terms[i+1]
		}
	}
	return value
}
