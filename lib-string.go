package main

import (
	"math"
	"math/rand"
	"strconv"
	str "strings"
)

func buildStringLib() {

	features["string"] = Feature{version: 1, category: "text"}
	categories["string"] = []string{
		"join", "split", "trimmed", "toUpper", "toLower", "replaced", "random", "fmt",
	}

	slhelp["join"] = LibHelp{in: "list[,separator]", out: "string", action: "Joins the printed elements of list with separator (default empty)."}
	stdlib["join"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("join", args, 2, "1", "list", "2", "list", "string"); !ok {
			return Null, err
		}
		sep := ""
		if len(args) == 2 {
			sep = args[1].s
		}
		parts := make([]string, args[0].list.Len())
		for i, e := range args[0].list.Items() {
			parts[i] = e.String()
		}
		return String(str.Join(parts, sep)), nil
	}

	slhelp["split"] = LibHelp{in: "string[,separator]", out: "list", action: "Splits on separator (default \",\"). an empty separator splits into characters."}
	stdlib["split"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("split", args, 2, "1", "string", "2", "string", "string"); !ok {
			return Null, err
		}
		sep := ","
		if len(args) == 2 {
			sep = args[1].s
		}
		if sep == "" {
			return runeList(args[0].s), nil
		}
		out := NewList()
		for _, p := range str.Split(args[0].s, sep) {
			out.list.Append(String(p))
		}
		return out, nil
	}

	slhelp["trimmed"] = LibHelp{in: "string", out: "string", action: "Removes leading and trailing whitespace."}
	stdlib["trimmed"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("trimmed", args, 1, "1", "string"); !ok {
			return Null, err
		}
		return String(str.TrimSpace(args[0].s)), nil
	}

	slhelp["toUpper"] = LibHelp{in: "string", out: "string", action: "Upper case copy."}
	stdlib["toUpper"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("toUpper", args, 1, "1", "string"); !ok {
			return Null, err
		}
		return String(str.ToUpper(args[0].s)), nil
	}

	slhelp["toLower"] = LibHelp{in: "string", out: "string", action: "Lower case copy."}
	stdlib["toLower"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("toLower", args, 1, "1", "string"); !ok {
			return Null, err
		}
		return String(str.ToLower(args[0].s)), nil
	}

	slhelp["replaced"] = LibHelp{in: "string,old,new", out: "string", action: "Replaces every old with new."}
	stdlib["replaced"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("replaced", args, 1, "3", "string", "string", "string"); !ok {
			return Null, err
		}
		if args[1].s == "" {
			return args[0], nil
		}
		return String(str.ReplaceAll(args[0].s, args[1].s, args[2].s)), nil
	}

	slhelp["random"] = LibHelp{in: "a,b", out: "number", action: "Uniform random number between a and b inclusive, in either order.\nan integer when both bounds are integers."}
	stdlib["random"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("random", args, 1, "2", "number", "number"); !ok {
			return Null, err
		}
		return Number(randomBetween(args[0].num, args[1].num)), nil
	}

	slhelp["fmt"] = LibHelp{in: "format,value...", out: "string", action: "Substitutes {0}, {1}... in format with the printed arguments."}
	stdlib["fmt"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if len(args) < 1 || args[0].kind != KindString {
			return Null, fef("fmt() needs a format string as argument 1")
		}
		s, err := substitute(args[0].s, args[1:])
		if err != nil {
			return Null, err
		}
		return String(s), nil
	}
}

func randomBetween(a, b float64) float64 {
	lo, hi := math.Min(a, b), math.Max(a, b)
	if lo == math.Trunc(lo) && hi == math.Trunc(hi) {
		return lo + float64(rand.Int63n(int64(hi-lo)+1))
	}
	return lo + rand.Float64()*(hi-lo)
}

// substitute replaces {n} placeholders. anything else in braces is kept.
func substitute(format string, args []Value) (string, error) {
	var sb str.Builder
	for i := 0; i < len(format); i++ {
		if format[i] == '{' {
			if end := str.IndexByte(format[i:], '}'); end > 1 {
				if n, err := strconv.Atoi(format[i+1 : i+end]); err == nil {
					if n < 0 || n >= len(args) {
						return "", fef("fmt(): placeholder {%d} has no argument", n)
					}
					sb.WriteString(args[n].String())
					i += end
					continue
				}
			}
		}
		sb.WriteByte(format[i])
	}
	return sb.String(), nil
}
