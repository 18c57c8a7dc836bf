package main

import (
	str "strings"
)

//
// substring scanning. expressions are never tokenised up front; these
// helpers walk raw text skipping string literals and nested parentheses.
//

func isQuote(c byte) bool { return c == '"' || c == '\'' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// isIdentifier : plain name, no dots.
func isIdentifier(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentChar(s[i]) {
			return false
		}
	}
	return true
}

// isCallName : identifier with optional dotted member parts.
func isCallName(s string) bool {
	if s == "" {
		return false
	}
	for _, part := range str.Split(s, ".") {
		if !isIdentifier(part) {
			return false
		}
	}
	return true
}

// closeQuote returns the index of the quote closing the literal opened at
// text[i], or -1.
func closeQuote(text string, i int) int {
	q := text[i]
	for j := i + 1; j < len(text); j++ {
		if text[j] == q {
			return j
		}
	}
	return -1
}

// quotedLiteral recognises text which is exactly one string literal.
func quotedLiteral(text string) (string, bool) {
	if len(text) < 2 || !isQuote(text[0]) {
		return "", false
	}
	if closeQuote(text, 0) != len(text)-1 {
		return "", false
	}
	return text[1 : len(text)-1], true
}

// callOpen finds the '(' matching a trailing ')'. -1 when text does not end
// in a balanced group.
func callOpen(text string) int {
	if text == "" || text[len(text)-1] != ')' {
		return -1
	}
	var stack []int
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case isQuote(c):
			j := closeQuote(text, i)
			if j < 0 {
				return -1
			}
			i = j
		case c == '(':
			stack = append(stack, i)
		case c == ')':
			if len(stack) == 0 {
				return -1
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if i == len(text)-1 {
				if len(stack) != 0 {
					return -1
				}
				return open
			}
		}
	}
	return -1
}

// splitArgs splits on commas at nesting depth zero.
func splitArgs(text string) ([]string, error) {
	if str.TrimSpace(text) == "" {
		return nil, nil
	}
	var args []string
	depth, start := 0, 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case isQuote(c):
			j := closeQuote(text, i)
			if j < 0 {
				return nil, fef("unterminated string in '%s'", text)
			}
			i = j
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth < 0 {
				return nil, fef("unbalanced parentheses in '%s'", text)
			}
		case c == ',' && depth == 0:
			args = append(args, str.TrimSpace(text[start:i]))
			start = i + 1
		}
	}
	if depth != 0 {
		return nil, fef("unbalanced parentheses in '%s'", text)
	}
	args = append(args, str.TrimSpace(text[start:]))
	for _, a := range args {
		if a == "" {
			return nil, fef("empty argument in '%s'", text)
		}
	}
	return args, nil
}

// callSites lists name and argument count for each name(...) group in text,
// outermost and nested, outside of string literals.
func callSites(text string) (names []string, counts []int) {
	for i := 0; i < len(text); i++ {
		c := text[i]
		if isQuote(c) {
			j := closeQuote(text, i)
			if j < 0 {
				return
			}
			i = j
			continue
		}
		if c != '(' {
			continue
		}
		k := i
		for k > 0 && (isIdentChar(text[k-1]) || text[k-1] == '.') {
			k--
		}
		name := text[k:i]
		if !isCallName(name) {
			continue
		}
		end := matchParen(text, i)
		if end < 0 {
			return
		}
		args, err := splitArgs(text[i+1 : end])
		if err != nil {
			continue
		}
		names = append(names, name)
		counts = append(counts, len(args))
	}
	return
}

// matchParen returns the index of the ')' closing text[open].
func matchParen(text string, open int) int {
	depth := 0
	for i := open; i < len(text); i++ {
		c := text[i]
		switch {
		case isQuote(c):
			j := closeQuote(text, i)
			if j < 0 {
				return -1
			}
			i = j
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
