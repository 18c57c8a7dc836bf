package main

import (
	"math"
	"testing"
)

func newTestEvaluator() *Evaluator {
	in := NewInterpreter(nil)
	return in.Evaluator()
}

func TestEvaluateNumbers(t *testing.T) {
	ev := newTestEvaluator()
	tests := []struct {
		expr string
		want float64
	}{
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"10 - 4 - 3", 3},
		{"100 / 10 / 5", 2},
		{"2 ^ 3 ^ 2", 64},
		{"10 % 4 + 1", 0},
		{"10 - 2 + 3", 5},
		{"8 / 2 * 2", 2},
		{"7 % 4", 3},
		{"-3 + 5", 2},
		{"1 - -2", 3},
		{"2 * -3", -6},
		{"-(2 + 3)", -5},
		{"+4", 4},
		{"1e3 + 1", 1001},
		{"2.5e-1 * 4", 1},
		{"1.5E+2", 150},
		{"round(pi * 100)", 314},
		{"abs(-2) + sqrt(16)", 6},
		{"length(\"a,b\") + 1", 4},
		{"number(\"42\") - 2", 40},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			v, err := ev.Evaluate(tt.expr)
			if err != nil {
				t.Fatalf("Evaluate(%q) error: %v", tt.expr, err)
			}
			if v.Kind() != KindNumber || math.Abs(v.Num()-tt.want) > 1e-9 {
				t.Errorf("Evaluate(%q) = %s, want %v", tt.expr, v.String(), tt.want)
			}
		})
	}
}

func TestEvaluateBooleans(t *testing.T) {
	ev := newTestEvaluator()
	tests := []struct {
		expr string
		want bool
	}{
		{"1 < 2", true},
		{"2 <= 2", true},
		{"3 >= 4", false},
		{"1 == 1", true},
		{"1 = 1", true},
		{"1 != 2", true},
		{"1 <> 1", false},
		{"2 GTR 1", true},
		{"2 lss 1", false},
		{"1 EQU 1 and 2 NEQ 3", true},
		{"true and false", false},
		{"true && true", true},
		{"false or true", true},
		{"false || false", false},
		{"not false", true},
		{"!true", false},
		{"true and not false", true},
		{"1 + 1 == 2 and 3 > 2", true},
		{"\"a\" < \"B\"", true},
		{"\"abc\" == \"abc\"", true},
		{"null == null", true},
		{"null != 1", true},
		{"1 == null", false},
		{"0.1 + 0.2 == 0.3", true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			v, err := ev.Evaluate(tt.expr)
			if err != nil {
				t.Fatalf("Evaluate(%q) error: %v", tt.expr, err)
			}
			if v.Kind() != KindBool || v.Bool() != tt.want {
				t.Errorf("Evaluate(%q) = %s, want %v", tt.expr, v.String(), tt.want)
			}
		})
	}
}

func TestShortCircuit(t *testing.T) {
	ev := newTestEvaluator()
	// the right side would fail if it were evaluated
	for _, expr := range []string{"false and undefinedName", "true or error(\"x\")"} {
		if _, err := ev.Evaluate(expr); err != nil {
			t.Errorf("Evaluate(%q) evaluated the right side: %v", expr, err)
		}
	}
	if _, err := ev.Evaluate("true and undefinedName"); err == nil {
		t.Error("expected the right side to be evaluated")
	}
}

func TestEvaluateStrings(t *testing.T) {
	ev := newTestEvaluator()
	tests := []struct {
		expr string
		want string
	}{
		{`"a" + "b"`, "ab"},
		{`'single' + " double"`, "single double"},
		{`"n" + 1 + 2`, "n12"},
		{`"x, y"`, "x, y"},
		{`"a + b"`, "a + b"},
		{`"(" + ")"`, "()"},
		{`toUpper("mixed" + "Case")`, "MIXEDCASE"},
		{`"tab" + tab + "end"`, "tab\tend"},
		{`"items: " + list(1, 2)`, "items: 1,2"},
		{`"x" + index("a", 1)`, "xa: 1"},
		{`list(1, "b") + "!"`, "1,b!"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			v, err := ev.Evaluate(tt.expr)
			if err != nil {
				t.Fatalf("Evaluate(%q) error: %v", tt.expr, err)
			}
			if v.Kind() != KindString || v.Str() != tt.want {
				t.Errorf("Evaluate(%q) = %q, want %q", tt.expr, v.String(), tt.want)
			}
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	ev := newTestEvaluator()
	for _, expr := range []string{
		"",
		"1 +",
		"undefinedName",
		"\"a\" - 1",
		"true + 1",
		"-\"a\"",
		"not 1",
		"1 and true",
		"nosuchfunction(1)",
		"(1, 2)",
		"list(1) + 1",
		"list(1) - \"a\"",
		"list(1) == index()",
		"null + 1",
		"1 == \"1\" and 2",
	} {
		if _, err := ev.Evaluate(expr); err == nil {
			t.Errorf("Evaluate(%q) should fail", expr)
		}
	}
}

func TestEvaluateVariables(t *testing.T) {
	in := NewInterpreter(nil)
	sym := in.Symbols()
	if err := sym.Declare("count", Number(3)); err != nil {
		t.Fatal(err)
	}
	if err := sym.Declare("name", String("x")); err != nil {
		t.Fatal(err)
	}
	v, err := in.Evaluator().Evaluate("count * 2 + length(name)")
	if err != nil {
		t.Fatal(err)
	}
	if v.Num() != 7 {
		t.Errorf("got %s, want 7", v.String())
	}

	v, err = in.Evaluator().EvaluateDynamic("\"count + 1\"")
	if err != nil {
		t.Fatal(err)
	}
	if v.Num() != 4 {
		t.Errorf("dynamic got %s, want 4", v.String())
	}
}

func TestEvaluateBoolRequiresBool(t *testing.T) {
	ev := newTestEvaluator()
	if _, err := ev.EvaluateBool("1"); err == nil {
		t.Error("a number condition should be rejected")
	}
	b, err := ev.EvaluateBool("2 > 1")
	if err != nil || !b {
		t.Errorf("EvaluateBool(2 > 1) = %v, %v", b, err)
	}
}

func TestCallSites(t *testing.T) {
	names, counts := callSites(`f(1, g(2, 3)) + h() + "k(1)"`)
	want := []struct {
		name  string
		count int
	}{{"f", 2}, {"g", 2}, {"h", 0}}
	if len(names) != len(want) {
		t.Fatalf("got %v %v", names, counts)
	}
	for i, w := range want {
		if names[i] != w.name || counts[i] != w.count {
			t.Errorf("site %d = %s/%d, want %s/%d", i, names[i], counts[i], w.name, w.count)
		}
	}
}

func TestSplitArgs(t *testing.T) {
	args, err := splitArgs(`1, "a,b", f(2, 3)`)
	if err != nil {
		t.Fatal(err)
	}
	if len(args) != 3 || args[1] != `"a,b"` || args[2] != "f(2, 3)" {
		t.Errorf("got %q", args)
	}
	if _, err := splitArgs("1,,2"); err == nil {
		t.Error("empty argument should fail")
	}
	if _, err := splitArgs("(1"); err == nil {
		t.Error("unbalanced parentheses should fail")
	}
}
