package main

import (
	"os"
	"os/exec"
	"path/filepath"
	str "strings"
)

const MAX_CALL_DEPTH = 2000

// Interpreter runs preprocessed scripts. It owns the symbol table and is
// the Callable the evaluator resolves script functions through.
type Interpreter struct {
	sym      *SymbolTable
	ev       *Evaluator
	fns      *FunctionTable
	plugins  *PluginRegistry
	loader   *PluginLoader
	host     *Host
	files    map[string][]string // preprocessed lines per loaded file
	imported map[string]bool

	pending   *ScriptError // exception being handled
	quietNext bool         // set by a bare '>!'
	depth     int          // script function call depth
}

func NewInterpreter(host *Host) *Interpreter {
	if host == nil {
		host = DefaultHost()
	}
	in := &Interpreter{
		sym:      NewSymbolTable(),
		fns:      NewFunctionTable(),
		plugins:  NewPluginRegistry(),
		host:     host,
		files:    make(map[string][]string),
		imported: make(map[string]bool),
	}
	in.loader = NewPluginLoader(in.plugins, host.Log)
	in.ev = NewEvaluator(in.sym, in, in.plugins, host)
	return in
}

func (in *Interpreter) Symbols() *SymbolTable     { return in.sym }
func (in *Interpreter) Evaluator() *Evaluator     { return in.ev }
func (in *Interpreter) Plugins() *PluginRegistry  { return in.plugins }
func (in *Interpreter) Loader() *PluginLoader     { return in.loader }
func (in *Interpreter) Functions() *FunctionTable { return in.fns }

// RunFile loads, checks and executes a script file.
func (in *Interpreter) RunFile(path string) error {
	name, err := in.LoadFile(path)
	if err != nil {
		return err
	}
	return in.run(name)
}

// RunSource checks and executes script text under the given file name.
func (in *Interpreter) RunSource(name, src string) error {
	if err := in.Prepare(name, splitLines(src)); err != nil {
		return err
	}
	return in.run(name)
}

// LoadFile reads and prepares path, returning the name it is stored under.
func (in *Interpreter) LoadFile(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", fef("cannot read script %s: %w", path, err)
	}
	if err := in.Prepare(abs, splitLines(string(data))); err != nil {
		return "", err
	}
	in.imported[abs] = true
	return abs, nil
}

// Prepare preprocesses raw lines, registers their functions and runs the
// syntax pass. nothing executes here.
func (in *Interpreter) Prepare(name string, raw []string) error {
	lines, err := preprocess(name, raw)
	if err != nil {
		return err
	}
	added, err := prescanFunctions(name, lines, in.fns)
	if err == nil {
		err = validate(name, lines, in.fns)
	}
	if err != nil {
		for _, fn := range added {
			in.fns.Delete(fn)
		}
		return err
	}
	in.files[name] = lines
	in.host.Log.Debug("script prepared", map[string]any{"file": name, "functions": in.fns.Len()})
	return nil
}

func (in *Interpreter) run(name string) error {
	in.host.Log.Info("script start", map[string]any{"file": name})
	out, err := in.process(name, 0, len(in.files[name]))
	if err != nil {
		return err
	}
	switch out.Kind {
	case OutBreak, OutContinue:
		return raisef("%s outside of a loop", stmtFor(out.Kind))
	}
	in.host.Log.Info("script finish", map[string]any{"file": name})
	return nil
}

func stmtFor(k OutKind) StmtKind {
	if k == OutBreak {
		return StmtBreak
	}
	return StmtContinue
}

// process executes lines [start,end) of file. exceptions raised by a line
// jump to the next '!' handler at this level, or leave through the error.
func (in *Interpreter) process(file string, start, end int) (Outcome, error) {
	lines := in.files[file]
	for i := start; i < end; {
		next, out, err := in.execLine(file, lines, i, end)
		if err != nil {
			se := asScriptError(err)
			if se == nil {
				return normal, err
			}
			if in.pending != nil {
				held := in.pending
				in.pending = nil
				return normal, held
			}
			se.locate(file, i, lines[i])
			in.pending = se
			if h := findHandler(lines, next, end); h >= 0 {
				i = h
				continue
			}
			in.pending = nil
			return normal, se
		}
		if out.Kind != OutNormal {
			return out, nil
		}
		i = next
	}
	return normal, nil
}

// execLine runs the statement at lines[i] and returns the line to go on
// from. a failing block statement still reports the line after its block.
func (in *Interpreter) execLine(file string, lines []string, i, end int) (int, Outcome, error) {
	s := classify(lines[i])
	next := i + 1

	switch s.Kind {

	case StmtNone, StmtEnd:

	case StmtDeclare:
		name, expr, has := splitBinding(s.Text)
		v := Null
		if has {
			var err error
			if v, err = in.ev.Evaluate(expr); err != nil {
				return next, normal, err
			}
		}
		return next, normal, in.sym.Declare(name, v)

	case StmtAssign:
		name, expr, _ := splitBinding(s.Text)
		v, err := in.ev.Evaluate(expr)
		if err != nil {
			return next, normal, err
		}
		return next, normal, in.sym.Assign(name, v)

	case StmtEval:
		return next, normal, in.evalStatement(s.Text)

	case StmtHandler:
		last, err := matchBlock(lines, i, end)
		if err != nil {
			return next, normal, err
		}
		if in.pending == nil {
			return last + 1, normal, nil
		}
		payload := in.pending.Payload
		in.sym.Push()
		err = in.sym.Declare(s.Text, payload)
		var out Outcome
		if err == nil {
			out, err = in.process(file, i+1, last)
		}
		in.sym.Pop()
		in.pending = nil
		return last + 1, out, err

	case StmtLoop:
		last, err := matchBlock(lines, i, end)
		if err != nil {
			return next, normal, err
		}
		for {
			in.sym.Push()
			out, err := in.process(file, i+1, last)
			in.sym.Pop()
			if err != nil {
				return last + 1, normal, err
			}
			if out.Kind == OutBreak {
				break
			}
			if out.Kind == OutReturn {
				return last + 1, out, nil
			}
		}
		return last + 1, normal, nil

	case StmtScope:
		last, err := matchBlock(lines, i, end)
		if err != nil {
			return next, normal, err
		}
		in.sym.Push()
		out, err := in.process(file, i+1, last)
		in.sym.Pop()
		return last + 1, out, err

	case StmtReturn:
		if s.Text == "" {
			return next, Outcome{Kind: OutReturn}, nil
		}
		v, err := in.ev.Evaluate(s.Text)
		if err != nil {
			return next, normal, err
		}
		return next, Outcome{Kind: OutReturn, Value: v}, nil

	case StmtCountUp, StmtCountDown, StmtCount:
		last, err := matchBlock(lines, i, end)
		if err != nil {
			return next, normal, err
		}
		out, err := in.countedLoop(file, s, i, last)
		return last + 1, out, err

	case StmtForEach:
		last, err := matchBlock(lines, i, end)
		if err != nil {
			return next, normal, err
		}
		out, err := in.forEach(file, s, i, last)
		return last + 1, out, err

	case StmtIf:
		markers, err := matchBranches(lines, i, end)
		if err != nil {
			return next, normal, err
		}
		out, err := in.ifChain(file, lines, i, markers)
		return markers[len(markers)-1] + 1, out, err

	case StmtSwitch:
		markers, err := matchBranches(lines, i, end)
		if err != nil {
			return next, normal, err
		}
		out, err := in.switchBlock(file, lines, s, markers)
		return markers[len(markers)-1] + 1, out, err

	case StmtFunction:
		last, err := matchBlock(lines, i, end)
		if err != nil {
			return next, normal, err
		}
		return last + 1, normal, nil

	case StmtContinue:
		return next, Outcome{Kind: OutContinue}, nil

	case StmtBreak:
		return next, Outcome{Kind: OutBreak}, nil

	case StmtTrace:
		return next, normal, in.trace(s.Text)

	case StmtImport:
		return next, normal, in.importStatement(file, s.Text)

	case StmtShellExpr:
		cmd, err := in.evalString(s.Text)
		if err != nil {
			return next, normal, err
		}
		return next, normal, in.shell(cmd, false)

	case StmtShellQuiet:
		if s.Text == "" {
			in.quietNext = true
			return next, normal, nil
		}
		cmd, err := in.evalString(s.Text)
		if err != nil {
			return next, normal, err
		}
		return next, normal, in.shell(cmd, true)

	case StmtPrint:
		if s.Text == "" {
			fpf(in.host.Out, "\n")
			return next, normal, nil
		}
		v, err := in.ev.Evaluate(s.Text)
		if err != nil {
			return next, normal, err
		}
		fpf(in.host.Out, "%s\n", v.String())

	case StmtShell:
		quiet := in.quietNext
		in.quietNext = false
		return next, normal, in.shell(s.Text, quiet)

	case StmtElse, StmtCase:
		return next, normal, fef("%s marker outside of its construct", s.Kind)

	default:
		return next, normal, fef("unhandled statement kind %s", s.Kind)
	}

	return next, normal, nil
}

// evalStatement : '* expr', '* *expr' and '* name = expr'.
func (in *Interpreter) evalStatement(text string) error {
	eval := in.ev.Evaluate
	if str.HasPrefix(text, "*") {
		eval = in.ev.EvaluateDynamic
		text = str.TrimSpace(text[1:])
	}
	if name, expr, ok := assignmentShorthand(text); ok {
		v, err := eval(expr)
		if err != nil {
			return err
		}
		return in.sym.Assign(name, v)
	}
	_, err := eval(text)
	return err
}

func (in *Interpreter) evalString(text string) (string, error) {
	v, err := in.ev.Evaluate(text)
	if err != nil {
		return "", err
	}
	if err := v.validateType(KindString); err != nil {
		return "", fef("'%s': %w", text, err)
	}
	return v.s, nil
}

func (in *Interpreter) evalNumber(text string) (float64, error) {
	v, err := in.ev.Evaluate(text)
	if err != nil {
		return 0, err
	}
	if err := v.validateType(KindNumber); err != nil {
		return 0, fef("'%s': %w", text, err)
	}
	return v.num, nil
}

// loopBody runs one iteration in its own frame. stop is true when the loop
// must end, with out carrying any Return.
func (in *Interpreter) loopBody(file string, start, last int) (stop bool, out Outcome, err error) {
	in.sym.Push()
	out, err = in.process(file, start+1, last)
	in.sym.Pop()
	if err != nil {
		return true, normal, err
	}
	switch out.Kind {
	case OutBreak:
		return true, normal, nil
	case OutReturn:
		return true, out, nil
	}
	return false, normal, nil
}

// countedLoop steps the loop variable by one. the variable is re-read after
// every iteration so the body may move it.
func (in *Interpreter) countedLoop(file string, s Stmt, start, last int) (Outcome, error) {
	h, err := parseLoopHeader(s.Text, true)
	if err != nil {
		return normal, err
	}
	from, err := in.evalNumber(h.from)
	if err != nil {
		return normal, err
	}
	to, err := in.evalNumber(h.to)
	if err != nil {
		return normal, err
	}
	ascending := s.Kind == StmtCountUp || (s.Kind == StmtCount && from <= to)

	in.sym.Push()
	defer in.sym.Pop()
	if err := in.sym.Declare(h.label, Number(from)); err != nil {
		return normal, err
	}

	for cur := from; (ascending && cur <= to) || (!ascending && cur >= to); {
		if err := in.sym.Assign(h.label, Number(cur)); err != nil {
			return normal, err
		}
		stop, out, err := in.loopBody(file, start, last)
		if stop {
			return out, err
		}
		v, _ := in.sym.Lookup(h.label)
		if err := v.validateType(KindNumber); err != nil {
			return normal, fef("loop variable '%s': %w", h.label, err)
		}
		if ascending {
			cur = v.num + 1
		} else {
			cur = v.num - 1
		}
	}
	return normal, nil
}

// forEach walks string runes, list elements or index keys.
func (in *Interpreter) forEach(file string, s Stmt, start, last int) (Outcome, error) {
	h, err := parseLoopHeader(s.Text, false)
	if err != nil {
		return normal, err
	}
	subject, err := in.ev.Evaluate(h.from)
	if err != nil {
		return normal, err
	}

	in.sym.Push()
	defer in.sym.Pop()
	if err := in.sym.Declare(h.label, Null); err != nil {
		return normal, err
	}

	step := func(v Value) (bool, Outcome, error) {
		if err := in.sym.Assign(h.label, v); err != nil {
			return true, normal, err
		}
		return in.loopBody(file, start, last)
	}

	switch subject.kind {
	case KindString:
		for _, r := range subject.s {
			if stop, out, err := step(String(string(r))); stop {
				return out, err
			}
		}
	case KindList:
		l := subject.list
		for k := 0; k < l.Len(); k++ {
			if stop, out, err := step(l.At(k)); stop {
				return out, err
			}
		}
	case KindIndex:
		for _, key := range subject.idx.Keys() {
			if stop, out, err := step(key.Value()); stop {
				return out, err
			}
		}
	default:
		return normal, fef("cannot iterate over %s", subject.kind)
	}
	return normal, nil
}

// ifChain runs the first branch whose condition holds. markers come from
// matchBranches: each '?'/'<>' after the opener, then the closing '}'.
func (in *Interpreter) ifChain(file string, lines []string, start int, markers []int) (Outcome, error) {
	headers := append([]int{start}, markers[:len(markers)-1]...)
	for b, h := range headers {
		hs := classify(lines[h])
		take := hs.Kind == StmtElse
		if !take {
			var err error
			if take, err = in.ev.EvaluateBool(hs.Text); err != nil {
				return normal, err
			}
		}
		if take {
			in.sym.Push()
			out, err := in.process(file, h+1, markers[b])
			in.sym.Pop()
			return out, err
		}
	}
	return normal, nil
}

// switchBlock compares the subject against each '=' branch in turn.
func (in *Interpreter) switchBlock(file string, lines []string, s Stmt, markers []int) (Outcome, error) {
	subject, err := in.ev.Evaluate(s.Text)
	if err != nil {
		return normal, err
	}
	for b := 0; b < len(markers)-1; b++ {
		hs := classify(lines[markers[b]])
		take := hs.Kind == StmtElse
		if !take {
			v, err := in.ev.Evaluate(hs.Text)
			if err != nil {
				return normal, err
			}
			if take, err = subject.Equals(v); err != nil {
				return normal, err
			}
		}
		if take {
			in.sym.Push()
			out, err := in.process(file, markers[b]+1, markers[b+1])
			in.sym.Pop()
			return out, err
		}
	}
	return normal, nil
}

// trace prints when the section is active and the level within range.
func (in *Interpreter) trace(text string) error {
	section, level, expr, err := parseTrace(text)
	if err != nil {
		return err
	}
	active := in.host.traceSection
	if active == "" || level > in.host.traceLevel {
		return nil
	}
	if active != "*" && !str.EqualFold(active, section) {
		return nil
	}
	v, err := in.ev.Evaluate(expr)
	if err != nil {
		return err
	}
	fpf(in.host.Trace, "[%s:%d] %s\n", section, level, v.String())
	return nil
}

// importStatement loads another script, or a plugin module.
func (in *Interpreter) importStatement(file, text string) error {
	target, err := in.evalString(text)
	if err != nil {
		return err
	}
	base := filepath.Dir(file)
	if !str.HasSuffix(str.ToLower(target), SCRIPT_EXT) {
		in.host.Log.Info("plugin load", map[string]any{"module": target})
		return in.loader.Load(target, base)
	}
	path := target
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if in.imported[abs] {
		return nil
	}
	in.host.Log.Info("script import", map[string]any{"file": abs})
	name, err := in.LoadFile(abs)
	if err != nil {
		return err
	}
	out, err := in.process(name, 0, len(in.files[name]))
	if err != nil {
		return err
	}
	if out.Kind == OutBreak || out.Kind == OutContinue {
		return raisef("%s outside of a loop in %s", stmtFor(out.Kind), name)
	}
	return nil
}

// shell runs a command line through the host shell. a failure raises an
// exception unless quiet.
func (in *Interpreter) shell(cmdline string, quiet bool) error {
	args := append(append([]string{}, in.host.Shell[1:]...), cmdline)
	cmd := exec.Command(in.host.Shell[0], args...)
	cmd.Stdin = in.host.In
	cmd.Stdout = in.host.Out
	cmd.Stderr = in.host.Err
	err := cmd.Run()
	if err == nil {
		return nil
	}
	code := -1
	if cmd.ProcessState != nil {
		code = cmd.ProcessState.ExitCode()
	}
	in.host.Log.Debug("shell command failed", map[string]any{"command": cmdline, "exit_code": code, "quiet": quiet})
	if quiet {
		return nil
	}
	payload := NewIndex()
	payload.idx.Set(StringKey("command"), String(cmdline))
	payload.idx.Set(StringKey("exit_code"), Number(float64(code)))
	return raise(payload)
}

//
// Callable
//

func (in *Interpreter) HasFunction(name string) bool {
	_, found := in.fns.Get(name)
	return found
}

// CallFunction runs a script function with only the globals and its own
// parameters visible.
func (in *Interpreter) CallFunction(name string, args []Value) (Value, error) {
	f, found := in.fns.Get(name)
	if !found {
		return Null, fef("function '%s' not defined", name)
	}
	if len(args) != len(f.Params) {
		return Null, raisef("%s() takes %d argument(s), got %d", f.Name, len(f.Params), len(args))
	}
	if in.depth >= MAX_CALL_DEPTH {
		return Null, raisef("call depth limit reached in %s()", f.Name)
	}

	saved := in.sym.Smack()
	held := in.pending
	in.pending = nil
	in.depth++

	in.sym.Push()
	var err error
	for k, p := range f.Params {
		if err = in.sym.Declare(p, args[k]); err != nil {
			break
		}
	}
	out := normal
	if err == nil {
		out, err = in.process(f.File, f.Start+1, f.End)
	}
	in.sym.Pop()

	in.depth--
	in.pending = held
	in.sym.Restore(saved)

	if err != nil {
		return Null, err
	}
	switch out.Kind {
	case OutReturn:
		return out.Value, nil
	case OutBreak, OutContinue:
		return Null, raisef("%s outside of a loop in %s()", stmtFor(out.Kind), f.Name)
	}
	return Null, nil
}
