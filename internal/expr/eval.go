package expr

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"

	"github.com/bitop-dev/mcpchat/internal/numfmt"
)

// ErrDivisionByZero is returned when a divisor evaluates to zero.
var ErrDivisionByZero = errors.New("division by zero")

// Value is an evaluation result. Integer arithmetic stays exact; any decimal
// literal or division turns the value into a float64.
type Value struct {
	i *big.Int
	f float64
}

func Int(n int64) Value     { return Value{i: big.NewInt(n)} }
func Float(f float64) Value { return Value{f: f} }

func (v Value) IsInt() bool { return v.i != nil }

// Float64 returns v as a float64, rounding large integers.
func (v Value) Float64() float64 {
	if v.i == nil {
		return v.f
	}
	f, _ := new(big.Float).SetInt(v.i).Float64()
	return f
}

func (v Value) String() string {
	if v.i != nil {
		return v.i.String()
	}
	return numfmt.Float(v.f)
}

func (v Value) isZero() bool {
	if v.i != nil {
		return v.i.Sign() == 0
	}
	return v.f == 0
}

// Step records one binary reduction performed during evaluation.
type Step struct {
	Op     byte
	X, Y   Value
	Result Value
}

func (s Step) String() string {
	return fmt.Sprintf("%s %c %s = %s", s.X, s.Op, s.Y, s.Result)
}

// Evaluate parses and evaluates src.
func Evaluate(src string) (Value, error) {
	n, err := Parse(src)
	if err != nil {
		return Value{}, err
	}
	return Eval(n)
}

// Eval evaluates a parsed expression.
func Eval(n Node) (Value, error) {
	return eval(n, nil)
}

// EvalSteps evaluates n and returns every binary reduction in evaluation order
// (operands left to right, innermost first).
func EvalSteps(n Node) (Value, []Step, error) {
	var steps []Step
	v, err := eval(n, &steps)
	if err != nil {
		return Value{}, steps, err
	}
	return v, steps, nil
}

func eval(n Node, steps *[]Step) (Value, error) {
	switch n := n.(type) {
	case *Number:
		return parseNumber(n)
	case *Unary:
		x, err := eval(n.X, steps)
		if err != nil {
			return Value{}, err
		}
		if n.Op == '+' {
			return x, nil
		}
		if x.i != nil {
			return Value{i: new(big.Int).Neg(x.i)}, nil
		}
		return Value{f: -x.f}, nil
	case *Binary:
		x, err := eval(n.X, steps)
		if err != nil {
			return Value{}, err
		}
		y, err := eval(n.Y, steps)
		if err != nil {
			return Value{}, err
		}
		r, err := apply(n.Op, x, y)
		if err != nil {
			return Value{}, err
		}
		if steps != nil {
			*steps = append(*steps, Step{Op: n.Op, X: x, Y: y, Result: r})
		}
		return r, nil
	default:
		return Value{}, fmt.Errorf("expr: unknown node %T", n)
	}
}

func parseNumber(n *Number) (Value, error) {
	for i := 0; i < len(n.Lit); i++ {
		if n.Lit[i] == '.' {
			f, err := strconv.ParseFloat(n.Lit, 64)
			if err != nil {
				return Value{}, &SyntaxError{Pos: n.Offset, Msg: fmt.Sprintf("invalid number %q", n.Lit)}
			}
			return Value{f: f}, nil
		}
	}
	i, ok := new(big.Int).SetString(n.Lit, 10)
	if !ok {
		return Value{}, &SyntaxError{Pos: n.Offset, Msg: fmt.Sprintf("invalid number %q", n.Lit)}
	}
	return Value{i: i}, nil
}

func apply(op byte, x, y Value) (Value, error) {
	if op == '/' {
		if y.isZero() {
			return Value{}, ErrDivisionByZero
		}
		if x.i != nil && y.i != nil {
			// Correctly rounded quotient of two exact integers.
			f, _ := new(big.Rat).SetFrac(x.i, y.i).Float64()
			return Value{f: f}, nil
		}
		return Value{f: x.Float64() / y.Float64()}, nil
	}

	if x.i != nil && y.i != nil {
		r := new(big.Int)
		switch op {
		case '+':
			r.Add(x.i, y.i)
		case '-':
			r.Sub(x.i, y.i)
		case '*':
			r.Mul(x.i, y.i)
		default:
			return Value{}, fmt.Errorf("expr: unknown operator %q", op)
		}
		return Value{i: r}, nil
	}

	a, b := x.Float64(), y.Float64()
	switch op {
	case '+':
		return Value{f: a + b}, nil
	case '-':
		return Value{f: a - b}, nil
	case '*':
		return Value{f: a * b}, nil
	default:
		return Value{}, fmt.Errorf("expr: unknown operator %q", op)
	}
}
