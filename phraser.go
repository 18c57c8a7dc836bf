package main

import (
	str "strings"
)

// splitLines breaks source text into raw lines, dropping carriage returns.
func splitLines(src string) []string {
	lines := str.Split(src, "\n")
	for i, l := range lines {
		lines[i] = str.TrimSuffix(l, "\r")
	}
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// preprocess turns raw source lines into statement lines. the result has
// the same length as raw so that line numbers survive: comments are removed,
// each line is trimmed, and a line ending in " \" absorbs the next one,
// which is left blank.
func preprocess(file string, raw []string) ([]string, error) {
	out := make([]string, len(raw))
	inBlock := false
	blockStart := 0

	for i, line := range raw {
		var sb str.Builder
		for j := 0; j < len(line); j++ {
			c := line[j]
			if inBlock {
				if c == '*' && j+1 < len(line) && line[j+1] == '/' {
					inBlock = false
					j++
				}
				continue
			}
			if isQuote(c) {
				k := closeQuote(line, j)
				if k < 0 {
					sb.WriteString(line[j:])
					break
				}
				sb.WriteString(line[j : k+1])
				j = k
				continue
			}
			if c == '/' && j+1 < len(line) {
				if line[j+1] == '/' {
					break
				}
				if line[j+1] == '*' {
					inBlock = true
					blockStart = i
					j++
					continue
				}
			}
			sb.WriteByte(c)
		}
		out[i] = str.TrimSpace(sb.String())
	}
	if inBlock {
		return nil, &SyntaxError{File: file, Line: blockStart, Source: str.TrimSpace(raw[blockStart]), Msg: "unterminated block comment"}
	}

	for i := 0; i < len(out); i++ {
		j := i
		for str.HasSuffix(out[i], " \\") || out[i] == "\\" {
			out[i] = str.TrimSpace(str.TrimSuffix(out[i], "\\"))
			j++
			if j >= len(out) {
				break
			}
			out[i] = str.TrimSpace(out[i] + " " + out[j])
			out[j] = ""
		}
		i = j
	}
	return out, nil
}

// blockDepth counts the constructs still open at the end of lines. used by
// the interactive prompt to decide when a statement is complete.
func blockDepth(lines []string) int {
	var stack []StmtKind
	for _, line := range lines {
		k := classify(line).Kind
		top := StmtNone
		if len(stack) > 0 {
			top = stack[len(stack)-1]
		}
		switch lineRole(k, top) {
		case roleClose:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case roleOpen:
			stack = append(stack, k)
		}
	}
	return len(stack)
}
