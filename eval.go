package main

import (
	"math"
	"strconv"
	str "strings"
)

// Callable resolves user defined functions for the evaluator.
type Callable interface {
	HasFunction(name string) bool
	CallFunction(name string, args []Value) (Value, error)
}

// Evaluator evaluates expression text against a symbol table. Nothing is
// cached between calls: every sub-expression is re-scanned from its text.
type Evaluator struct {
	sym     *SymbolTable
	fns     Callable
	plugins *PluginRegistry
	host    *Host
}

func NewEvaluator(sym *SymbolTable, fns Callable, plugins *PluginRegistry, host *Host) *Evaluator {
	if host == nil {
		host = DefaultHost()
	}
	return &Evaluator{sym: sym, fns: fns, plugins: plugins, host: host}
}

// Evaluate returns the value of a single expression.
func (ev *Evaluator) Evaluate(text string) (Value, error) {
	text = str.TrimSpace(text)
	if text == "" {
		return Null, fef("empty expression")
	}

	switch text {
	case "null":
		return Null, nil
	case "true":
		return Bool(true), nil
	case "false":
		return Bool(false), nil
	}

	c := text[0]
	if c == '-' || c == '+' || c == '.' || isDigit(c) {
		if n, ok := parseNumber(text); ok {
			return Number(n), nil
		}
	}

	if s, ok := quotedLiteral(text); ok {
		return String(s), nil
	}

	if v, found := namedConstants[text]; found {
		return v, nil
	}

	if isIdentifier(text) {
		if v, found := ev.sym.Lookup(text); found {
			return v, nil
		}
		return Null, fef("variable '%s' not defined", text)
	}

	for _, group := range opGroups {
		pos, sp := findOperator(text, group)
		if pos < 0 {
			continue
		}
		return ev.binary(sp.op, text[:pos], text[pos+len(sp.text):])
	}

	switch {
	case c == '-':
		v, err := ev.Evaluate(text[1:])
		if err != nil {
			return Null, err
		}
		if err := v.validateType(KindNumber); err != nil {
			return Null, fef("unary minus: %w", err)
		}
		return Number(-v.num), nil
	case c == '+':
		v, err := ev.Evaluate(text[1:])
		if err != nil {
			return Null, err
		}
		if err := v.validateType(KindNumber); err != nil {
			return Null, fef("unary plus: %w", err)
		}
		return v, nil
	case c == '!':
		return ev.not(text[1:])
	case len(text) > 4 && str.EqualFold(text[:4], "not "):
		return ev.not(text[4:])
	}

	if open := callOpen(text); open >= 0 {
		name := str.TrimSpace(text[:open])
		if name == "" || isCallName(name) {
			return ev.call(name, text[open+1:len(text)-1])
		}
	}

	return Null, fef("invalid expression '%s'", text)
}

// EvaluateDynamic evaluates text to a string and evaluates that in turn.
func (ev *Evaluator) EvaluateDynamic(text string) (Value, error) {
	v, err := ev.Evaluate(text)
	if err != nil {
		return Null, err
	}
	if err := v.validateType(KindString); err != nil {
		return Null, fef("dynamic evaluation needs a string: %w", err)
	}
	return ev.Evaluate(v.s)
}

// EvaluateBool evaluates a condition.
func (ev *Evaluator) EvaluateBool(text string) (bool, error) {
	v, err := ev.Evaluate(text)
	if err != nil {
		return false, err
	}
	if err := v.validateType(KindBool); err != nil {
		return false, fef("condition '%s': %w", text, err)
	}
	return v.b, nil
}

func (ev *Evaluator) not(text string) (Value, error) {
	v, err := ev.Evaluate(text)
	if err != nil {
		return Null, err
	}
	if err := v.validateType(KindBool); err != nil {
		return Null, fef("negation: %w", err)
	}
	return Bool(!v.b), nil
}

// parseNumber is a strict whole-string decimal parse.
func parseNumber(text string) (float64, bool) {
	for i := 0; i < len(text); i++ {
		switch c := text[i]; {
		case isDigit(c), c == '.', c == 'e', c == 'E', c == '-', c == '+':
		default:
			return 0, false
		}
	}
	n, err := strconv.ParseFloat(text, 64)
	if err != nil && !math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func (ev *Evaluator) binary(op OpKind, ltext, rtext string) (Value, error) {
	l, err := ev.Evaluate(ltext)
	if err != nil {
		return Null, err
	}

	switch op {
	case OpAnd, OpOr:
		if err := l.validateType(KindBool); err != nil {
			return Null, fef("left side of '%s': %w", op, err)
		}
		if op == OpAnd && !l.b {
			return Bool(false), nil
		}
		if op == OpOr && l.b {
			return Bool(true), nil
		}
		r, err := ev.Evaluate(rtext)
		if err != nil {
			return Null, err
		}
		if err := r.validateType(KindBool); err != nil {
			return Null, fef("right side of '%s': %w", op, err)
		}
		return r, nil
	}

	r, err := ev.Evaluate(rtext)
	if err != nil {
		return Null, err
	}
	return applyOp(op, l, r)
}

// call evaluates the argument text then dispatches by name.
func (ev *Evaluator) call(name, argText string) (Value, error) {
	parts, err := splitArgs(argText)
	if err != nil {
		return Null, err
	}
	args := make([]Value, len(parts))
	for i, p := range parts {
		if args[i], err = ev.Evaluate(p); err != nil {
			return Null, err
		}
	}
	if name == "" {
		if len(args) != 1 {
			return Null, fef("parenthesised expression must hold exactly one value")
		}
		return args[0], nil
	}
	return ev.callValues(name, args)
}

// callValues : built-ins, then script functions, then plugins, then
// member sugar (foo.bar(x) as bar(foo,x)).
func (ev *Evaluator) callValues(name string, args []Value) (Value, error) {
	if f, found := stdlibLookup(name); found {
		return f(ev, args...)
	}
	if ev.fns != nil && ev.fns.HasFunction(name) {
		return ev.fns.CallFunction(name, args)
	}
	if ev.plugins != nil && ev.plugins.Has(name) {
		return ev.plugins.Call(name, args)
	}
	if dot := str.IndexByte(name, '.'); dot > 0 {
		if recv, found := ev.sym.Lookup(name[:dot]); found {
			return ev.callValues(name[dot+1:], append([]Value{recv}, args...))
		}
	}
	return Null, fef("function '%s' not defined", name)
}
