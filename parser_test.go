package main

import (
	"errors"
	"reflect"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		line string
		kind StmtKind
		text string
	}{
		{"", StmtNone, ""},
		{"}", StmtEnd, ""},
		{"O", StmtLoop, ""},
		{"{", StmtScope, ""},
		{"^", StmtContinue, ""},
		{"v", StmtBreak, ""},
		{"V", StmtBreak, ""},
		{"<>", StmtElse, ""},
		{"<- x + 1", StmtReturn, "x + 1"},
		{">>> s:1:x", StmtTrace, "s:1:x"},
		{">> \"ls\"", StmtShellExpr, "\"ls\""},
		{">! \"ls\"", StmtShellQuiet, "\"ls\""},
		{"> x", StmtPrint, "x"},
		{"++ i : 1 -> 3", StmtCountUp, "i : 1 -> 3"},
		{"-- i : 3 -> 1", StmtCountDown, "i : 3 -> 1"},
		{"[] x", StmtSwitch, "x"},
		{"$ x = 1", StmtDeclare, "x = 1"},
		{"& x = 2", StmtAssign, "x = 2"},
		{"* f()", StmtEval, "f()"},
		{"! ex", StmtHandler, "ex"},
		{"# i : 0 -> 9", StmtCount, "i : 0 -> 9"},
		{"@ c : s", StmtForEach, "c : s"},
		{"? a < b", StmtIf, "a < b"},
		{"= 3", StmtCase, "3"},
		{"~f(a)", StmtFunction, "f(a)"},
		{"+ \"lib.ms\"", StmtImport, "\"lib.ms\""},
		{"ls -l", StmtShell, "ls -l"},
		{"value", StmtShell, "value"},
	}
	for _, tt := range tests {
		s := classify(tt.line)
		if s.Kind != tt.kind || s.Text != tt.text {
			t.Errorf("classify(%q) = %s %q, want %s %q", tt.line, s.Kind, s.Text, tt.kind, tt.text)
		}
	}
}

func TestAssignmentShorthand(t *testing.T) {
	tests := []struct {
		text string
		name string
		expr string
		ok   bool
	}{
		{"x = 1", "x", "1", true},
		{"x = y == 2", "x", "y == 2", true},
		{"x == 1", "", "", false},
		{"x <= 1", "", "", false},
		{"f(a = 1)", "", "", false},
		{"\"a = b\"", "", "", false},
		{"a.b = 1", "", "", false},
	}
	for _, tt := range tests {
		name, expr, ok := assignmentShorthand(tt.text)
		if ok != tt.ok || name != tt.name || expr != tt.expr {
			t.Errorf("assignmentShorthand(%q) = %q %q %v", tt.text, name, expr, ok)
		}
	}
}

func TestParseLoopHeader(t *testing.T) {
	h, err := parseLoopHeader("i : len(\"a:b\") -> -1", true)
	if err != nil {
		t.Fatal(err)
	}
	if h.label != "i" || h.from != "len(\"a:b\")" || h.to != "-1" {
		t.Errorf("got %+v", h)
	}
	h, err = parseLoopHeader("item : list(1, 2)", false)
	if err != nil || h.from != "list(1, 2)" {
		t.Errorf("for-each header = %+v, %v", h, err)
	}
	for _, bad := range []string{"i 1 -> 2", "i : 1", "1i : 1 -> 2", "i : -> 2"} {
		if _, err := parseLoopHeader(bad, true); err == nil {
			t.Errorf("parseLoopHeader(%q) should fail", bad)
		}
	}
}

func TestParseFunctionDecl(t *testing.T) {
	name, params, err := parseFunctionDecl("area(w, h)")
	if err != nil || name != "area" || !reflect.DeepEqual(params, []string{"w", "h"}) {
		t.Errorf("got %s %v %v", name, params, err)
	}
	if _, params, err := parseFunctionDecl("none()"); err != nil || len(params) != 0 {
		t.Errorf("empty params: %v %v", params, err)
	}
	for _, bad := range []string{"f", "f(a, a)", "f(1)", "f(true)", "1f()"} {
		if _, _, err := parseFunctionDecl(bad); err == nil {
			t.Errorf("parseFunctionDecl(%q) should fail", bad)
		}
	}
}

func TestParseTrace(t *testing.T) {
	section, level, expr, err := parseTrace("net:2:\"a:b\"")
	if err != nil || section != "net" || level != 2 || expr != "\"a:b\"" {
		t.Errorf("got %s %d %s %v", section, level, expr, err)
	}
	if _, _, _, err := parseTrace("net:x:1"); err == nil {
		t.Error("non integer level should fail")
	}
}

func TestMatchBranches(t *testing.T) {
	lines := []string{
		"? a",     // 0
		"> 1",     // 1
		"? b",     // 2
		"{",       // 3
		"? c",     // 4
		"}",       // 5
		"}",       // 6
		"<>",      // 7
		"[] x",    // 8
		"= 1",     // 9
		"}",       // 10
		"}",       // 11
		"> after", // 12
	}
	markers, err := matchBranches(lines, 0, len(lines))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(markers, []int{2, 7, 11}) {
		t.Errorf("markers = %v", markers)
	}
	if end, _ := matchBlock(lines, 8, len(lines)); end != 10 {
		t.Errorf("switch end = %d", end)
	}
	if _, err := matchBranches(lines, 0, 6); err == nil {
		t.Error("truncated range should be unterminated")
	}
}

func TestFindHandler(t *testing.T) {
	lines := []string{
		"* f()",  // 0
		"O",      // 1
		"! skip", // 2
		"}",      // 3
		"> 1",    // 4
		"! ex",   // 5
		"}",      // 6
	}
	if h := findHandler(lines, 1, len(lines)); h != 5 {
		t.Errorf("findHandler = %d, want 5", h)
	}
	if h := findHandler(lines, 1, 5); h != -1 {
		t.Errorf("findHandler bounded = %d, want -1", h)
	}
}

func TestPreprocess(t *testing.T) {
	raw := []string{
		"  $ url = \"http://x//y\" // comment",
		"$ a = 1 + \\",
		"   2 + \\",
		"   3",
		"/* start",
		"still comment */ > a",
		"\t> \"/* kept */\"",
	}
	got, err := preprocess("p.ms", raw)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"$ url = \"http://x//y\"",
		"$ a = 1 + 2 + 3",
		"",
		"",
		"",
		"> a",
		"> \"/* kept */\"",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("preprocess:\n got %q\nwant %q", got, want)
	}

	_, err = preprocess("p.ms", []string{"> 1", "/* never closed", "> 2"})
	var syn *SyntaxError
	if !errors.As(err, &syn) || syn.Line != 1 {
		t.Errorf("unterminated comment error = %v", err)
	}
}

func TestSplitLines(t *testing.T) {
	got := splitLines("a\r\nb\n\nc\n")
	if !reflect.DeepEqual(got, []string{"a", "b", "", "c"}) {
		t.Errorf("splitLines = %q", got)
	}
}

func TestBlockDepth(t *testing.T) {
	tests := []struct {
		lines []string
		want  int
	}{
		{[]string{"> 1"}, 0},
		{[]string{"? a"}, 1},
		{[]string{"? a", "? b"}, 1},
		{[]string{"? a", "{", "? b"}, 3},
		{[]string{"~f()", "O", "}", "}"}, 0},
	}
	for _, tt := range tests {
		if got := blockDepth(tt.lines); got != tt.want {
			t.Errorf("blockDepth(%q) = %d, want %d", tt.lines, got, tt.want)
		}
	}
}

func TestValidateArity(t *testing.T) {
	fns := NewFunctionTable()
	lines := []string{"~f(a, b)", "<- a", "}", "> f(1, f(2, 3))"}
	added, err := prescanFunctions("v.ms", lines, fns)
	if err != nil || len(added) != 1 || added[0] != "f" {
		t.Fatalf("prescan = %v, %v", added, err)
	}
	if err := validate("v.ms", lines, fns); err != nil {
		t.Errorf("valid script rejected: %v", err)
	}
	lines[3] = "> f(1, f(2))"
	err = validate("v.ms", lines, fns)
	var syn *SyntaxError
	if !errors.As(err, &syn) || syn.Line != 3 {
		t.Errorf("arity error = %v", err)
	}
}
