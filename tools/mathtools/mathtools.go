// Package mathtools implements the arithmetic tools served by the math-solver
// MCP server. Every tool returns text; expected failures (division by zero,
// negative square roots, malformed expressions) are described in the returned
// text instead of being reported as errors.
package mathtools

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/bitop-dev/mcpchat/internal/expr"
	"github.com/bitop-dev/mcpchat/internal/numfmt"
)

const allowedExprChars = "0123456789+-*/.()"

const (
	msgDivideByZero       = "Error: Cannot divide by zero!"
	msgExprInvalidChars   = "Error: Expression contains invalid characters. Only numbers and +, -, *, /, (), . are allowed."
	msgExprDivideByZero   = "Error: Division by zero in expression!"
	msgStepsInvalidChars  = "Error: Expression contains invalid characters."
	msgNegativeSquareRoot = "Error: Cannot calculate square root of negative number!"
)

func Add(a, b float64) string {
	return fmt.Sprintf("%s + %s = %s", numfmt.Float(a), numfmt.Float(b), numfmt.Float(a+b))
}

func Subtract(a, b float64) string {
	return fmt.Sprintf("%s - %s = %s", numfmt.Float(a), numfmt.Float(b), numfmt.Float(a-b))
}

func Multiply(a, b float64) string {
	return fmt.Sprintf("%s × %s = %s", numfmt.Float(a), numfmt.Float(b), numfmt.Float(a*b))
}

func Divide(a, b float64) string {
	if b == 0 {
		return msgDivideByZero
	}
	return fmt.Sprintf("%s ÷ %s = %s", numfmt.Float(a), numfmt.Float(b), numfmt.Float(a/b))
}

// Percentage returns percent% of number.
func Percentage(number, percent float64) string {
	return fmt.Sprintf("%s%% of %s = %s", numfmt.Float(percent), numfmt.Float(number), numfmt.Float(number*percent/100))
}

func Power(base, exponent float64) string {
	if base == 0 && exponent < 0 {
		return "Error: Cannot calculate power - 0.0 cannot be raised to a negative power"
	}
	r := math.Pow(base, exponent)
	switch {
	case math.IsNaN(r):
		return "Error: Cannot calculate power - result is not a real number"
	case math.IsInf(r, 0) && !math.IsInf(base, 0) && !math.IsInf(exponent, 0):
		return "Error: Cannot calculate power - numerical result out of range"
	}
	return fmt.Sprintf("%s^%s = %s", numfmt.Float(base), numfmt.Float(exponent), numfmt.Float(r))
}

func SquareRoot(number float64) string {
	if number < 0 {
		return msgNegativeSquareRoot
	}
	return fmt.Sprintf("√%s = %s", numfmt.Float(number), numfmt.Float(math.Sqrt(number)))
}

// Calculate evaluates an arithmetic expression. Spaces are ignored; any other
// character outside digits, operators, parentheses and '.' is rejected before
// parsing.
func Calculate(expression string) string {
	clean, ok := cleanExpression(expression)
	if !ok {
		return msgExprInvalidChars
	}
	v, err := expr.Evaluate(clean)
	if err != nil {
		if errors.Is(err, expr.ErrDivisionByZero) {
			return msgExprDivideByZero
		}
		return "Error: Invalid mathematical expression - " + err.Error()
	}
	return fmt.Sprintf("%s = %s", expression, v)
}

// SolveSteps evaluates expression and explains the order of operations along
// with each reduction that was performed.
func SolveSteps(expression string) string {
	clean, ok := cleanExpression(expression)
	if !ok {
		return msgStepsInvalidChars
	}
	n, err := expr.Parse(clean)
	if err != nil {
		return "Error: Cannot solve expression - " + err.Error()
	}
	v, steps, err := expr.EvalSteps(n)
	if err != nil {
		return "Error: Cannot solve expression - " + err.Error()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Step-by-step solution for: %s\n\n", expression)
	b.WriteString("Following order of operations (PEMDAS/BODMAS):\n")
	b.WriteString("1. Parentheses/Brackets first\n")
	b.WriteString("2. Exponents/Orders\n")
	b.WriteString("3. Multiplication and Division (left to right)\n")
	b.WriteString("4. Addition and Subtraction (left to right)\n\n")
	if len(steps) > 0 {
		b.WriteString("Steps:\n")
		for i, s := range steps {
			fmt.Fprintf(&b, "%d. %s\n", i+1, s)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Final result: %s = %s", expression, v)
	return b.String()
}

func cleanExpression(s string) (string, bool) {
	clean := strings.ReplaceAll(s, " ", "")
	for _, r := range clean {
		if !strings.ContainsRune(allowedExprChars, r) {
			return "", false
		}
	}
	return clean, true
}
