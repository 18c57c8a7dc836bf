package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	str "strings"

	"github.com/peterh/liner"
)

const PROMPT = "ms> "
const CONTINUATION_PROMPT = "..> "

// repl reads statements interactively. input is buffered while blocks
// are still open, then run as one chunk.
func repl(in *Interpreter, out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(completions)

	historyFile := filepath.Join(os.TempDir(), ".mscript_history")
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fpf(out, "mscript %s\ntype :help for commands, ctrl-d to quit\n", BuildVersion)

	var buffer []string
	chunk := 0
	for {
		prompt := PROMPT
		if len(buffer) > 0 {
			prompt = CONTINUATION_PROMPT
		}
		input, err := line.Prompt(prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				buffer = buffer[:0]
				fpf(out, "^C\n")
				continue
			}
			if errors.Is(err, io.EOF) {
				fpf(out, "\n")
				return
			}
			fpf(out, "error reading input: %v\n", err)
			continue
		}

		trimmed := str.TrimSpace(input)
		if len(buffer) == 0 {
			if trimmed == "" {
				continue
			}
			if trimmed == ":quit" || trimmed == ":exit" {
				return
			}
			if str.HasPrefix(trimmed, ":") {
				replCommand(in, out, trimmed)
				continue
			}
		}

		buffer = append(buffer, input)
		lines, err := preprocess("<repl>", buffer)
		if err == nil && blockDepth(lines) > 0 {
			continue
		}
		line.AppendHistory(str.Join(buffer, "\n"))

		chunk++
		err = in.RunSource(sf("<repl:%d>", chunk), str.Join(buffer, "\n"))
		buffer = buffer[:0]
		if err != nil {
			var ex *ExitRequest
			if errors.As(err, &ex) {
				return
			}
			reportError(out, err)
		}
	}
}

func replCommand(in *Interpreter, out io.Writer, cmd string) {
	fields := str.Fields(cmd)
	switch fields[0] {
	case ":help":
		if len(fields) > 1 {
			if _, found := stdlibLookup(fields[1]); found {
				name := stdlibNames[str.ToLower(fields[1])]
				h := slhelp[name]
				fpf(out, "%s(%s) -> %s\n%s\n", name, h.in, h.out, h.action)
				return
			}
			fpf(out, "no built-in named %s\n", fields[1])
			return
		}
		fpf(out, ":funcs [category]  list built-in functions\n")
		fpf(out, ":help [function]   this text, or a function's description\n")
		fpf(out, ":plugins           list loaded plugin modules\n")
		fpf(out, ":vars              list visible variables\n")
		fpf(out, ":quit              leave\n")
	case ":funcs":
		stdlibOnce.Do(buildStandardLib)
		cats := make([]string, 0, len(categories))
		for c := range categories {
			if len(fields) == 1 || fields[1] == c {
				cats = append(cats, c)
			}
		}
		sort.Strings(cats)
		for _, c := range cats {
			fpf(out, "%s:\n", c)
			for _, fn := range categories[c] {
				h := slhelp[fn]
				fpf(out, "  %s(%s) -> %s\n", fn, h.in, h.out)
			}
		}
	case ":plugins":
		for _, m := range in.Plugins().Modules() {
			fpf(out, "%s: %s\n", m, str.Join(in.Plugins().Functions(m), " "))
		}
	case ":vars":
		for _, n := range in.Symbols().Names() {
			v, _ := in.Symbols().Lookup(n)
			fpf(out, "%s = %s\n", n, objectToJson(v))
		}
	default:
		fpf(out, "unknown command %s\n", fields[0])
	}
}

// completions offers built-in names for the word under the cursor.
func completions(line string) []string {
	stdlibOnce.Do(buildStandardLib)
	cut := str.LastIndexFunc(line, func(r rune) bool {
		return !(r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
	})
	head, word := line[:cut+1], line[cut+1:]
	if word == "" {
		return nil
	}
	var out []string
	for name := range stdlib {
		if str.HasPrefix(name, word) {
			out = append(out, head+name)
		}
	}
	sort.Strings(out)
	return out
}
