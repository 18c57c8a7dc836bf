package main

import "testing"

func TestNames(t *testing.T) {
	for _, s := range []string{"x", "_a1", "Total"} {
		if !isIdentifier(s) {
			t.Errorf("isIdentifier(%q) = false", s)
		}
	}
	for _, s := range []string{"", "1x", "a.b", "a-b"} {
		if isIdentifier(s) {
			t.Errorf("isIdentifier(%q) = true", s)
		}
	}
	if !isCallName("l.sorted") || isCallName("l..sorted") || isCallName(".x") {
		t.Error("isCallName")
	}
}

func TestQuotedLiteral(t *testing.T) {
	tests := []struct {
		text string
		want string
		ok   bool
	}{
		{`"abc"`, "abc", true},
		{`'it"s'`, `it"s`, true},
		{`""`, "", true},
		{`"a" + "b"`, "", false},
		{`"open`, "", false},
		{`x`, "", false},
	}
	for _, tt := range tests {
		got, ok := quotedLiteral(tt.text)
		if ok != tt.ok || got != tt.want {
			t.Errorf("quotedLiteral(%q) = %q %v", tt.text, got, ok)
		}
	}
}

func TestCallOpen(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"f(1)", 1},
		{"f(g(1), \")\")", 1},
		{"(a)(b)", 3},
		{"f(1) + 2", -1},
		{"f(1))", -1},
		{"", -1},
	}
	for _, tt := range tests {
		if got := callOpen(tt.text); got != tt.want {
			t.Errorf("callOpen(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestMatchParen(t *testing.T) {
	text := `f("(", (1 + 2)) + 3`
	if got := matchParen(text, 1); got != 14 {
		t.Errorf("matchParen = %d, want 14", got)
	}
	if got := matchParen("(1 + (2)", 0); got != -1 {
		t.Errorf("unbalanced matchParen = %d", got)
	}
}

func TestKeyName(t *testing.T) {
	if keyName("\x1b[A") != "up" || keyName("\r") != "enter" || keyName("q") != "q" {
		t.Error("keyName")
	}
}
