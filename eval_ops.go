package main

import (
	"math"
	str "strings"
)

// characters which, immediately before a '+' or '-', make it a sign.
const signContext = "+-*/%^<>=!&|(,"

// findOperator locates the split point for one precedence level, outside
// parentheses and string literals. the rightmost genuine occurrence is used
// so chains associate left.
func findOperator(text string, group []opSpelling) (int, opSpelling) {
	found := -1
	var foundSp opSpelling
	depth := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case isQuote(c):
			j := closeQuote(text, i)
			if j < 0 {
				return found, foundSp
			}
			i = j
			continue
		case c == '(':
			depth++
			continue
		case c == ')':
			depth--
			continue
		}
		if depth != 0 {
			continue
		}
		if sym := symbolAt(text, i); sym != "" {
			for _, sp := range group {
				if !sp.word && sp.text == sym && isOperatorAt(text, i, sp) {
					found, foundSp = i, sp
				}
			}
			i += len(sym) - 1
			continue
		}
		for _, sp := range group {
			if sp.word && spelledAt(text, i, sp) {
				if isOperatorAt(text, i, sp) {
					found, foundSp = i, sp
				}
				i += len(sp.text) - 1
				break
			}
		}
	}
	return found, foundSp
}

// symbolAt returns the longest symbolic operator spelled at text[i].
func symbolAt(text string, i int) string {
	for _, sym := range opSymbols {
		if str.HasPrefix(text[i:], sym) {
			return sym
		}
	}
	return ""
}

func spelledAt(text string, i int, sp opSpelling) bool {
	end := i + len(sp.text)
	if end > len(text) {
		return false
	}
	if !sp.word {
		return text[i:end] == sp.text
	}
	if !str.EqualFold(text[i:end], sp.text) {
		return false
	}
	if i > 0 && isIdentChar(text[i-1]) {
		return false
	}
	if end < len(text) && isIdentChar(text[end]) {
		return false
	}
	return true
}

// isOperatorAt rejects unary signs, exponent signs and operators missing an
// operand.
func isOperatorAt(text string, i int, sp opSpelling) bool {
	left := str.TrimRight(text[:i], " \t")
	right := str.TrimSpace(text[i+len(sp.text):])
	if left == "" || right == "" {
		return false
	}
	if sp.op != OpSub && sp.op != OpAdd {
		return true
	}
	if str.IndexByte(signContext, left[len(left)-1]) >= 0 {
		return false
	}
	if endsWithWordOperator(left) {
		return false
	}
	// exponent: digits, optional fraction, then e/E immediately before.
	if i >= 2 && (text[i-1] == 'e' || text[i-1] == 'E') {
		k := i - 1
		for k > 0 && (isIdentChar(text[k-1]) || text[k-1] == '.') {
			k--
		}
		if isDigit(text[k]) || text[k] == '.' {
			return false
		}
	}
	return true
}

func endsWithWordOperator(left string) bool {
	k := len(left)
	for k > 0 && isIdentChar(left[k-1]) {
		k--
	}
	switch str.ToLower(left[k:]) {
	case "and", "or", "not", "neq", "leq", "geq", "lss", "gtr", "equ":
		return true
	}
	return false
}

// applyOp applies a non short-circuit binary operator.
func applyOp(op OpKind, l, r Value) (Value, error) {
	if l.kind == KindNothing || r.kind == KindNothing {
		switch op {
		case OpEqu:
			return Bool(l.kind == r.kind), nil
		case OpNeq:
			return Bool(l.kind != r.kind), nil
		}
		return Null, fef("operator '%s' cannot be applied to null", op)
	}

	if l.kind == KindString || r.kind == KindString {
		ls, rs := l.String(), r.String()
		switch op {
		case OpAdd:
			return String(ls + rs), nil
		case OpEqu:
			return Bool(ls == rs), nil
		case OpNeq:
			return Bool(ls != rs), nil
		case OpLss:
			return Bool(str.ToLower(ls) < str.ToLower(rs)), nil
		case OpGtr:
			return Bool(str.ToLower(ls) > str.ToLower(rs)), nil
		}
		return Null, fef("operator '%s' cannot be applied to strings", op)
	}

	if l.kind == KindList || l.kind == KindIndex || r.kind == KindList || r.kind == KindIndex {
		return Null, fef("operator '%s' cannot be applied to %s and %s", op, l.kind, r.kind)
	}

	if l.kind == KindNumber && r.kind == KindNumber {
		return numericOp(op, l.num, r.num)
	}

	if l.kind == KindBool && r.kind == KindBool {
		switch op {
		case OpEqu:
			return Bool(l.b == r.b), nil
		case OpNeq:
			return Bool(l.b != r.b), nil
		case OpAnd:
			return Bool(l.b && r.b), nil
		case OpOr:
			return Bool(l.b || r.b), nil
		}
		return Null, fef("operator '%s' cannot be applied to booleans", op)
	}

	return Null, fef("operator '%s' cannot be applied to %s and %s", op, l.kind, r.kind)
}

func numericOp(op OpKind, a, b float64) (Value, error) {
	switch op {
	case OpAdd:
		return Number(a + b), nil
	case OpSub:
		return Number(a - b), nil
	case OpMul:
		return Number(a * b), nil
	case OpDiv:
		return Number(a / b), nil
	case OpMod:
		return Number(math.Mod(a, b)), nil
	case OpPow:
		return Number(math.Pow(a, b)), nil
	case OpEqu, OpNeq:
		eq, _ := Number(a).Equals(Number(b))
		return Bool(eq == (op == OpEqu)), nil
	case OpLss:
		return Bool(a < b), nil
	case OpGtr:
		return Bool(a > b), nil
	case OpLeq:
		return Bool(a <= b), nil
	case OpGeq:
		return Bool(a >= b), nil
	}
	return Null, fef("operator '%s' cannot be applied to numbers", op)
}
