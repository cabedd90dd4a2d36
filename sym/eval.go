package sym

import (
	"fmt"
	"math"
)

// Env maps symbol names to numeric values.
type Env map[string]float64

var unary = map[string]func(float64) float64{
	"sin": math.Sin, "cos": math.Cos, "tan": math.Tan,
	"asin": math.Asin, "acos": math.Acos, "atan": math.Atan,
	"sinh": math.Sinh, "cosh": math.Cosh, "tanh": math.Tanh,
	"exp": math.Exp, "log": math.Log, "sqrt": math.Sqrt, "abs": math.Abs,
	"floor": math.Floor, "ceil": math.Ceil, "sign": sign,
}

var binary = map[string]func(float64, float64) float64{
	"atan2": math.Atan2,
	"min":   math.Min,
	"max":   math.Max,
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return v
}

// Eval computes the numeric value of e. Every free symbol must be bound in env.
func Eval(e Expr, env Env) (float64, error) {
	switch t := e.(type) {
	case *Sym:
		v, ok := env[t.name]
		if !ok {
			return 0, fmt.Errorf("eval %s: %w", t.name, ErrUnbound)
		}
		return v, nil
	case *Number:
		return t.value, nil
	case *Constant:
		return t.Value(), nil
	case *Sum:
		var total float64
		for _, a := range t.terms {
			v, err := Eval(a, env)
			if err != nil {
				return 0, err
			}
			total += v
		}
		return total, nil
	case *Product:
		total := 1.0
		for _, a := range t.factors {
			v, err := Eval(a, env)
			if err != nil {
				return 0, err
			}
			total *= v
		}
		return total, nil
	case *Quotient:
		n, d, err := eval2(t.num, t.den, env)
		if err != nil {
			return 0, err
		}
		return n / d, nil
	case *Power:
		b, x, err := eval2(t.base, t.exp, env)
		if err != nil {
			return 0, err
		}
		return math.Pow(b, x), nil
	case *Negation:
		v, err := Eval(t.x, env)
		return -v, err
	case *Call:
		if fn, ok := unary[t.name]; ok {
			v, err := Eval(t.args[0], env)
			if err != nil {
				return 0, err
			}
			return fn(v), nil
		}
		a, b, err := eval2(t.args[0], t.args[1], env)
		if err != nil {
			return 0, err
		}
		return binary[t.name](a, b), nil
	case *Applied:
		return 0, fmt.Errorf("eval %s: %w", t.name, ErrUndefinedFunction)
	}
	return 0, fmt.Errorf("eval: unknown node %T", e)
}

func eval2(a, b Expr, env Env) (float64, float64, error) {
	x, err := Eval(a, env)
	if err != nil {
		return 0, 0, err
	}
	y, err := Eval(b, env)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}
