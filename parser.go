package main

import (
	"strconv"
	str "strings"
)

// classify selects the statement form of a preprocessed line from its
// leading sigil.
func classify(line string) Stmt {
	s := Stmt{Line: line}
	switch line {
	case "":
		return s
	case "}":
		s.Kind = StmtEnd
		return s
	case "O":
		s.Kind = StmtLoop
		return s
	case "{":
		s.Kind = StmtScope
		return s
	case "^":
		s.Kind = StmtContinue
		return s
	case "v", "V":
		s.Kind = StmtBreak
		return s
	case "<>":
		s.Kind = StmtElse
		return s
	}

	prefixes := []struct {
		sigil string
		kind  StmtKind
	}{
		{"<-", StmtReturn},
		{">>>", StmtTrace},
		{">>", StmtShellExpr},
		{">!", StmtShellQuiet},
		{">", StmtPrint},
		{"++", StmtCountUp},
		{"--", StmtCountDown},
		{"[]", StmtSwitch},
		{"$", StmtDeclare},
		{"&", StmtAssign},
		{"*", StmtEval},
		{"!", StmtHandler},
		{"#", StmtCount},
		{"@", StmtForEach},
		{"?", StmtIf},
		{"=", StmtCase},
		{"~", StmtFunction},
		{"+", StmtImport},
	}
	for _, p := range prefixes {
		if str.HasPrefix(line, p.sigil) {
			s.Kind = p.kind
			s.Text = str.TrimSpace(line[len(p.sigil):])
			return s
		}
	}
	s.Kind = StmtShell
	s.Text = line
	return s
}

// validName : may be declared as a variable or parameter.
func validName(name string) bool {
	if !isIdentifier(name) || reservedNames[name] {
		return false
	}
	_, isConst := namedConstants[name]
	return !isConst
}

// indexTopLevel finds sep outside string literals and parentheses.
func indexTopLevel(text, sep string) int {
	depth := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case isQuote(c):
			j := closeQuote(text, i)
			if j < 0 {
				return -1
			}
			i = j
			continue
		case c == '(':
			depth++
		case c == ')':
			depth--
		}
		if depth == 0 && str.HasPrefix(text[i:], sep) {
			return i
		}
	}
	return -1
}

// splitBinding parses 'name = expr' or 'name'.
func splitBinding(text string) (name, expr string, hasInit bool) {
	eq := str.IndexByte(text, '=')
	if eq < 0 {
		return str.TrimSpace(text), "", false
	}
	return str.TrimSpace(text[:eq]), str.TrimSpace(text[eq+1:]), true
}

// assignmentShorthand recognises 'name = expr' inside a '*' statement, as
// opposed to an equality test.
func assignmentShorthand(text string) (name, expr string, ok bool) {
	eq := indexTopLevel(text, "=")
	if eq <= 0 || eq+1 >= len(text) || text[eq+1] == '=' {
		return "", "", false
	}
	if str.IndexByte("<>!=", text[eq-1]) >= 0 {
		return "", "", false
	}
	name = str.TrimSpace(text[:eq])
	if !isIdentifier(name) {
		return "", "", false
	}
	return name, str.TrimSpace(text[eq+1:]), true
}

// parseLoopHeader : 'label : from -> to' (counted) or 'label : expr'.
func parseLoopHeader(text string, counted bool) (loopHeader, error) {
	colon := indexTopLevel(text, ":")
	if colon < 0 {
		return loopHeader{}, fef("expected 'name : ...' in loop header")
	}
	h := loopHeader{label: str.TrimSpace(text[:colon])}
	if !validName(h.label) {
		return h, fef("invalid loop variable name '%s'", h.label)
	}
	rest := str.TrimSpace(text[colon+1:])
	if !counted {
		if rest == "" {
			return h, fef("missing for-each expression")
		}
		h.from = rest
		return h, nil
	}
	arrow := indexTopLevel(rest, "->")
	if arrow < 0 {
		return h, fef("expected 'from -> to' in loop header")
	}
	h.from = str.TrimSpace(rest[:arrow])
	h.to = str.TrimSpace(rest[arrow+2:])
	if h.from == "" || h.to == "" {
		return h, fef("missing loop bound")
	}
	return h, nil
}

// parseFunctionDecl : 'name(p1, p2)'.
func parseFunctionDecl(text string) (string, []string, error) {
	open := callOpen(text)
	if open < 0 {
		return "", nil, fef("expected 'name(params)' in function declaration")
	}
	name := str.TrimSpace(text[:open])
	if !isIdentifier(name) {
		return "", nil, fef("invalid function name '%s'", name)
	}
	var params []string
	seen := make(map[string]bool)
	inner := str.TrimSpace(text[open+1 : len(text)-1])
	if inner != "" {
		for _, p := range str.Split(inner, ",") {
			p = str.TrimSpace(p)
			if !validName(p) {
				return "", nil, fef("invalid parameter name '%s' in %s()", p, name)
			}
			if seen[p] {
				return "", nil, fef("duplicate parameter '%s' in %s()", p, name)
			}
			seen[p] = true
			params = append(params, p)
		}
	}
	return name, params, nil
}

// parseTrace : 'section:level:expr'.
func parseTrace(text string) (section string, level int, expr string, err error) {
	parts := str.SplitN(text, ":", 3)
	if len(parts) != 3 {
		return "", 0, "", fef("expected 'section:level:expression' in trace")
	}
	section = str.TrimSpace(parts[0])
	level, err = strconv.Atoi(str.TrimSpace(parts[1]))
	if err != nil {
		return "", 0, "", fef("trace level '%s' is not an integer", parts[1])
	}
	expr = str.TrimSpace(parts[2])
	if section == "" || expr == "" {
		return "", 0, "", fef("incomplete trace statement")
	}
	return section, level, expr, nil
}

// expressionsOf lists the expression texts carried by a statement, for the
// call arity check.
func expressionsOf(s Stmt) []string {
	switch s.Kind {
	case StmtDeclare, StmtAssign:
		if _, e, has := splitBinding(s.Text); has {
			return []string{e}
		}
	case StmtEval:
		t := str.TrimPrefix(s.Text, "*")
		if _, e, ok := assignmentShorthand(t); ok {
			return []string{e}
		}
		return []string{t}
	case StmtCountUp, StmtCountDown, StmtCount, StmtForEach:
		if h, err := parseLoopHeader(s.Text, s.Kind != StmtForEach); err == nil {
			return []string{h.from, h.to}
		}
	case StmtReturn, StmtIf, StmtSwitch, StmtCase, StmtImport, StmtShellExpr, StmtShellQuiet, StmtPrint:
		return []string{s.Text}
	case StmtTrace:
		if _, _, e, err := parseTrace(s.Text); err == nil {
			return []string{e}
		}
	}
	return nil
}

type openConstruct struct {
	kind    StmtKind
	line    int
	sawElse bool
	cases   int
}

// validate is the pre-execution syntax pass over a whole file, function
// bodies included.
func validate(file string, lines []string, fns *FunctionTable) error {
	synerr := func(i int, format string, args ...any) error {
		return &SyntaxError{File: file, Line: i, Source: lines[i], Msg: sf(format, args...)}
	}

	var stack []openConstruct
	for i, line := range lines {
		s := classify(line)
		if s.Kind == StmtNone {
			continue
		}

		top := StmtNone
		if len(stack) > 0 {
			top = stack[len(stack)-1].kind
		}

		role := lineRole(s.Kind, top)
		if top == StmtSwitch && (role == roleNone || role == roleOpen) {
			if oc := stack[len(stack)-1]; oc.cases == 0 && !oc.sawElse {
				return synerr(i, "statement before the first case")
			}
		}

		switch role {
		case roleClose:
			if len(stack) == 0 {
				return synerr(i, "'}' without an open block")
			}
			stack = stack[:len(stack)-1]
			continue
		case roleMarker:
			oc := &stack[len(stack)-1]
			if oc.sawElse {
				return synerr(i, "branch after default branch")
			}
			if s.Kind == StmtElse {
				oc.sawElse = true
			}
			if s.Kind == StmtCase {
				oc.cases++
			}
			if s.Kind != StmtElse && s.Text == "" {
				return synerr(i, "missing branch expression")
			}
		case roleOpen:
			if s.Kind == StmtFunction && len(stack) > 0 {
				return synerr(i, "functions must be declared at the outermost level")
			}
			stack = append(stack, openConstruct{kind: s.Kind, line: i})
		default:
			switch s.Kind {
			case StmtCase:
				return synerr(i, "case outside of a switch")
			case StmtElse:
				return synerr(i, "'<>' outside of a conditional or switch")
			}
		}

		if err := checkForm(s); err != nil {
			return synerr(i, "%v", err)
		}

		for _, e := range expressionsOf(s) {
			names, counts := callSites(e)
			for n, name := range names {
				f, found := fns.Get(name)
				if !found || isBuiltin(name) {
					continue
				}
				if counts[n] != len(f.Params) {
					return synerr(i, "%s() takes %d argument(s), called with %d", f.Name, len(f.Params), counts[n])
				}
			}
		}
	}

	if len(stack) > 0 {
		oc := stack[len(stack)-1]
		return synerr(oc.line, "unterminated %s", oc.kind)
	}
	return nil
}

// checkForm validates the shape of a single statement.
func checkForm(s Stmt) error {
	switch s.Kind {
	case StmtDeclare, StmtAssign:
		name, expr, has := splitBinding(s.Text)
		if !validName(name) {
			return fef("invalid variable name '%s'", name)
		}
		if s.Kind == StmtAssign && !has {
			return fef("assignment needs '= expression'")
		}
		if has && expr == "" {
			return fef("missing expression after '='")
		}
	case StmtEval:
		if str.TrimPrefix(s.Text, "*") == "" {
			return fef("missing expression")
		}
	case StmtHandler:
		if !validName(s.Text) {
			return fef("invalid handler label '%s'", s.Text)
		}
	case StmtCountUp, StmtCountDown, StmtCount, StmtForEach:
		if _, err := parseLoopHeader(s.Text, s.Kind != StmtForEach); err != nil {
			return err
		}
	case StmtIf, StmtSwitch, StmtImport, StmtShellExpr:
		if s.Text == "" {
			return fef("missing expression after '%s'", s.Kind)
		}
	case StmtFunction:
		if _, _, err := parseFunctionDecl(s.Text); err != nil {
			return err
		}
	case StmtTrace:
		if _, _, _, err := parseTrace(s.Text); err != nil {
			return err
		}
	}
	return nil
}

// prescanFunctions collects the '~' declarations of a file into fns and
// returns the names it added, including on error.
func prescanFunctions(file string, lines []string, fns *FunctionTable) (added []string, err error) {
	for i := 0; i < len(lines); i++ {
		s := classify(lines[i])
		if !s.Kind.opensBlock() {
			continue
		}
		end, err := matchBlock(lines, i, len(lines))
		if err != nil {
			return added, &SyntaxError{File: file, Line: i, Source: lines[i], Msg: err.Error()}
		}
		if s.Kind != StmtFunction {
			i = end
			continue
		}
		name, params, err := parseFunctionDecl(s.Text)
		if err != nil {
			return added, &SyntaxError{File: file, Line: i, Source: lines[i], Msg: err.Error()}
		}
		if isBuiltin(name) {
			return added, &SyntaxError{File: file, Line: i, Source: lines[i],
				Msg: sf("function '%s' clashes with a built-in", name)}
		}
		f := &ScriptFunction{Name: name, Params: params, File: file, Start: i, End: end}
		if prev, ok := fns.Add(f); !ok {
			return added, &SyntaxError{File: file, Line: i, Source: lines[i],
				Msg: sf("function '%s' already defined at %s:%d", name, prev.File, prev.Start+1)}
		}
		added = append(added, name)
		i = end
	}
	return added, nil
}
