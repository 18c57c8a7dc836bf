package main

import (
	"math"
)

func buildMathLib() {

	features["math"] = Feature{version: 1, category: "math"}
	categories["math"] = []string{
		"abs", "sqrt", "ceil", "floor", "exp", "log", "log2", "log10",
		"sin", "cos", "tan", "asin", "acos", "atan", "atan2",
		"sinh", "cosh", "tanh", "asinh", "acosh", "atanh",
		"pow", "round",
	}

	unary := []struct {
		name   string
		fn     func(float64) float64
		action string
	}{
		{"abs", math.Abs, "Absolute value of number."},
		{"sqrt", math.Sqrt, "Square root of number."},
		{"ceil", math.Ceil, "Smallest integer not less than number."},
		{"floor", math.Floor, "Largest integer not greater than number."},
		{"exp", math.Exp, "e raised to number."},
		{"log", math.Log, "Natural logarithm of number."},
		{"log2", math.Log2, "Base 2 logarithm of number."},
		{"log10", math.Log10, "Base 10 logarithm of number."},
		{"sin", math.Sin, "Sine of number radians."},
		{"cos", math.Cos, "Cosine of number radians."},
		{"tan", math.Tan, "Tangent of number radians."},
		{"asin", math.Asin, "Arc sine, in radians."},
		{"acos", math.Acos, "Arc cosine, in radians."},
		{"atan", math.Atan, "Arc tangent, in radians."},
		{"sinh", math.Sinh, "Hyperbolic sine."},
		{"cosh", math.Cosh, "Hyperbolic cosine."},
		{"tanh", math.Tanh, "Hyperbolic tangent."},
		{"asinh", math.Asinh, "Inverse hyperbolic sine."},
		{"acosh", math.Acosh, "Inverse hyperbolic cosine."},
		{"atanh", math.Atanh, "Inverse hyperbolic tangent."},
	}
	for _, u := range unary {
		name, fn := u.name, u.fn
		slhelp[name] = LibHelp{in: "number", out: "number", action: u.action}
		stdlib[name] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
			if ok, err := expect_args(name, args, 1, "1", "number"); !ok {
				return Null, err
			}
			return Number(fn(args[0].num)), nil
		}
	}

	slhelp["atan2"] = LibHelp{in: "y,x", out: "number", action: "Arc tangent of y/x using the signs of both to pick the quadrant."}
	stdlib["atan2"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("atan2", args, 1, "2", "number", "number"); !ok {
			return Null, err
		}
		return Number(math.Atan2(args[0].num, args[1].num)), nil
	}

	slhelp["pow"] = LibHelp{in: "base,exponent", out: "number", action: "base raised to exponent."}
	stdlib["pow"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("pow", args, 1, "2", "number", "number"); !ok {
			return Null, err
		}
		return Number(math.Pow(args[0].num, args[1].num)), nil
	}

	slhelp["round"] = LibHelp{in: "number[,places]", out: "number", action: "Rounds half up to places decimal places (default 0)."}
	stdlib["round"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("round", args, 2, "1", "number", "2", "number", "number"); !ok {
			return Null, err
		}
		places := 0.0
		if len(args) == 2 {
			places = math.Trunc(args[1].num)
		}
		return Number(roundPlaces(args[0].num, places)), nil
	}
}

// roundPlaces : floor(x*10^p + 0.5)/10^p.
func roundPlaces(x, places float64) float64 {
	scale := math.Pow(10, places)
	return math.Floor(x*scale+0.5) / scale
}
