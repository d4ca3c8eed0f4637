package mathtools

import (
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitop-dev/mcpchat/internal/mcptest"
)

func TestBinaryOperations(t *testing.T) {
	assert.Equal(t, "2.0 + 3.0 = 5.0", Add(2, 3))
	assert.Equal(t, "0.1 + 0.2 = 0.30000000000000004", Add(0.1, 0.2))
	assert.Equal(t, "5.0 - 7.5 = -2.5", Subtract(5, 7.5))
	assert.Equal(t, "4.0 × 2.5 = 10.0", Multiply(4, 2.5))
}

func TestDivide(t *testing.T) {
	pairs := [][2]float64{{10, 4}, {1, 3}, {-9, 3}, {0, 5}, {7.5, -2.5}}
	for _, p := range pairs {
		got := Divide(p[0], p[1])
		want := strconv.FormatFloat(p[0]/p[1], 'f', -1, 64)
		assert.Contains(t, got, want, "Divide(%v, %v)", p[0], p[1])
	}
	assert.Equal(t, "10.0 ÷ 4.0 = 2.5", Divide(10, 4))
	assert.Equal(t, "Error: Cannot divide by zero!", Divide(1, 0))
	assert.Equal(t, "Error: Cannot divide by zero!", Divide(0, 0))
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, "25.0% of 200.0 = 50.0", Percentage(200, 25))
	assert.Equal(t, "12.5% of 80.0 = 10.0", Percentage(80, 12.5))
}

func TestPower(t *testing.T) {
	assert.Equal(t, "2.0^10.0 = 1024.0", Power(2, 10))
	assert.Equal(t, "4.0^0.5 = 2.0", Power(4, 0.5))
	assert.Equal(t, "2.0^-1.0 = 0.5", Power(2, -1))
	assert.Equal(t, "Error: Cannot calculate power - 0.0 cannot be raised to a negative power", Power(0, -2))
	assert.Equal(t, "Error: Cannot calculate power - result is not a real number", Power(-8, 1.0/3))
	assert.Equal(t, "Error: Cannot calculate power - numerical result out of range", Power(10, 400))
}

func TestSquareRoot(t *testing.T) {
	assert.Equal(t, "Error: Cannot calculate square root of negative number!", SquareRoot(-4))
	assert.Equal(t, "√16.0 = 4.0", SquareRoot(16))

	for _, x := range []float64{0, 2, 10, 123.456, 1e6} {
		got := SquareRoot(x)
		tail := got[strings.LastIndex(got, "= ")+2:]
		v, err := strconv.ParseFloat(tail, 64)
		require.NoError(t, err, got)
		assert.InDelta(t, math.Sqrt(x), v, 1e-12, got)
	}
}

func TestCalculate(t *testing.T) {
	cases := map[string]string{
		"10*2-5":        "10*2-5 = 15",
		"5 + 3":         "5 + 3 = 8",
		"10 * 2 - 5":    "10 * 2 - 5 = 15",
		"(1 + 2) * 3":   "(1 + 2) * 3 = 9",
		"7 / 2":         "7 / 2 = 3.5",
		"1.5 * 2":       "1.5 * 2 = 3.0",
		"1/0":           "Error: Division by zero in expression!",
		"2 + (3 - 3)/0": "Error: Division by zero in expression!",
	}
	for in, want := range cases {
		assert.Equal(t, want, Calculate(in), in)
	}
}

func TestCalculate_RejectsInvalidCharacters(t *testing.T) {
	const want = "Error: Expression contains invalid characters. Only numbers and +, -, *, /, (), . are allowed."
	for _, in := range []string{"__import__('os')", "2^3", "1e5", "abs(-1)", "1\t+1", "2 % 3"} {
		assert.Equal(t, want, Calculate(in), in)
	}
}

func TestCalculate_InvalidExpression(t *testing.T) {
	got := Calculate("2**3")
	assert.True(t, strings.HasPrefix(got, "Error: Invalid mathematical expression - "), got)
	got = Calculate("(1+2")
	assert.True(t, strings.HasPrefix(got, "Error: Invalid mathematical expression - "), got)
}

func TestSolveSteps(t *testing.T) {
	got := SolveSteps("5 + 3 * 2")
	assert.True(t, strings.HasPrefix(got, "Step-by-step solution for: 5 + 3 * 2\n"), got)
	assert.Contains(t, got, "Following order of operations (PEMDAS/BODMAS):")
	assert.Contains(t, got, "1. 3 * 2 = 6\n2. 5 + 6 = 11\n")
	assert.True(t, strings.HasSuffix(got, "Final result: 5 + 3 * 2 = 11"), got)

	assert.Equal(t, "Error: Expression contains invalid characters.", SolveSteps("x + 1"))
	assert.Equal(t, "Error: Cannot solve expression - division by zero", SolveSteps("4/0"))
}

func TestRegister_ServesAllTools(t *testing.T) {
	cs := mcptest.Connect(t, Register)

	names := mcptest.ToolNames(t, cs)
	assert.ElementsMatch(t, []string{
		"add", "subtract", "multiply", "divide", "calculate",
		"percentage", "power", "square_root", "solve_steps",
	}, names)

	assert.Equal(t, "2.0^10.0 = 1024.0", mcptest.CallText(t, cs, "power", map[string]any{"base": 2, "exponent": 10}))
	assert.Equal(t, "10*2-5 = 15", mcptest.CallText(t, cs, "calculate", map[string]any{"expression": "10*2-5"}))
	assert.Equal(t, "Error: Cannot divide by zero!", mcptest.CallText(t, cs, "divide", map[string]any{"a": 3, "b": 0}))
	assert.Equal(t, "25.0% of 200.0 = 50.0", mcptest.CallText(t, cs, "percentage", map[string]any{"number": 200, "percent": 25}))
}
