package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	str "strings"
	"testing"
)

// runScript executes src in a fresh runtime and returns what it printed.
func runScript(t *testing.T, src string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	host := DefaultHost()
	host.Out = &out
	host.Err = &out
	in := NewInterpreter(host)
	err := in.RunSource("t.ms", src)
	return out.String(), err
}

func TestScripts(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"declare and print", "$ x = 2 + 3\n> x\n", "5\n"},
		{"assign", "$ x = 1\n& x = x * 10\n> x\n", "10\n"},
		{"eval shorthand", "$ x = 0\n* x = 2 * 3\n> x\n", "6\n"},
		{"dynamic eval", "$ x = 0\n$ code = \"4 + 5\"\n* *x = code\n> x\n", "9\n"},
		{"empty print", ">\n", "\n"},
		{"string concat", "> \"n=\" + 4\n", "n=4\n"},
		{"if chain", `$ n = 7
? n < 5
  > "small"
? n < 10
  > "medium"
<>
  > "large"
}
`, "medium\n"},
		{"if default", "? false\n  > 1\n<>\n  > 2\n}\n", "2\n"},
		{"nested if inside braces", `$ a = 1
? a == 1
  {
    ? a == 2
      > "two"
    }
  }
  > "one"
}
`, "one\n"},
		{"function", "~plus(a, b)\n  <- a + b\n}\n> plus(2, 3)\n", "5\n"},
		{"function without return", "~noop()\n}\n> noop()\n", "null\n"},
		{"recursion", `~fact(n)
  ? n <= 1
    <- 1
  }
  <- n * fact(n - 1)
}
> fact(5)
`, "120\n"},
		{"call before declaration", "> later(1)\n~later(v)\n  <- v + 1\n}\n", "2\n"},
		{"case insensitive call", "~Shout(s)\n  <- toUpper(s)\n}\n> shout(\"hi\")\n> LENGTH(\"abc\")\n", "HI\n3\n"},
		{"counted loop with break and continue", `# i : 0 -> 5
  ? i == 1
    ^
  }
  ? i == 3
    v
  }
  > i
}
`, "0\n2\n"},
		{"counted loop descending", "# i : 3 -> 1\n  > i\n}\n", "3\n2\n1\n"},
		{"count down", "-- i : 2 -> 0\n  > i\n}\n", "2\n1\n0\n"},
		{"count up skipped", "++ i : 3 -> 1\n  > i\n}\n> \"done\"\n", "done\n"},
		{"loop variable moved by body", "++ i : 1 -> 10\n  > i\n  & i = i + 3\n}\n", "1\n5\n9\n"},
		{"plain loop", "$ n = 0\nO\n  & n = n + 1\n  ? n == 3\n    V\n  }\n}\n> n\n", "3\n"},
		{"for each string", "@ c : \"abc\"\n  > c\n}\n", "a\nb\nc\n"},
		{"for each list", "@ v : list(1, \"two\")\n  > v\n}\n", "1\ntwo\n"},
		{"for each index", "@ k : index(\"a\", 1, \"b\", 2)\n  > k\n}\n", "a\nb\n"},
		{"switch", `$ s = "b"
[] s
= "a"
  > 1
= "b"
  > 2
<>
  > 3
}
`, "2\n"},
		{"switch default", "[] 9\n= 1\n  > \"one\"\n<>\n  > \"other\"\n}\n", "other\n"},
		{"scope frame", "$ x = 1\n{\n  $ x = 2\n  > x\n}\n> x\n", "2\n1\n"},
		{"handler", `* error(index("code", 1))
> "not reached"
! ex
  > get(ex, "code")
}
> "after"
`, "1\nafter\n"},
		{"handler skipped", "> 1\n! ex\n  > \"never\"\n}\n> 2\n", "1\n2\n"},
		{"runtime error caught", "* nosuch + 1\n! ex\n  > \"caught\"\n}\n", "caught\n"},
		{"handler after loop", `# i : 1 -> 3
  ? i == 2
    * error("at " + i)
  }
}
! ex
  > ex
}
`, "at 2\n"},
		{"handler inside function", `~safe(x)
  * error(x)
  ! ex
    <- "caught " + ex
  }
  <- "none"
}
> safe("a")
`, "caught a\n"},
		{"exception through function", `~boom()
  * error("deep")
}
* boom()
! ex
  > ex
}
`, "deep\n"},
		{"function sees globals", "$ g = 1\n~peek()\n  <- g\n}\n{\n  $ local = 2\n  > peek()\n}\n", "1\n"},
		{"shared list", "$ a = list(1)\n$ b = a\n* add(b, 2)\n> length(a)\n", "2\n"},
		{"clone", "$ a = list(1)\n$ b = clone(a)\n* add(b, 2)\n> length(a)\n", "1\n"},
		{"line continuation", "$ x = 1 + \\\n  2\n> x\n", "3\n"},
		{"comments", "// header\n$ x = 1 /* inline */ + 1\n> x // trailing\n/*\n> 99\n*/\n", "2\n"},
		{"shell line", "echo hi\n", "hi\n"},
		{"shell expression", "$ w = \"there\"\n>> \"echo \" + w\n", "there\n"},
		{"quiet shell", ">! \"false\"\n> \"ok\"\n", "ok\n"},
		{"bare quiet shell", ">!\nfalse\n> \"ok\"\n", "ok\n"},
		{"shell failure raises", "false\n! ex\n  > get(ex, \"exit_code\")\n}\n", "1\n"},
		{"exec", "$ r = exec(\"echo foo\")\n> trimmed(get(r, \"output\"))\n> get(r, \"exit_code\")\n", "foo\n0\n"},
		{"exec failure", "* exec(\"exit 3\")\n! ex\n  > get(ex, \"exit_code\")\n}\n", "3\n"},
		{"exec ignore", "$ r = exec(\"exit 3\", \"popen\", true)\n> get(r, \"exit_code\")\n", "3\n"},
		{"member sugar", "$ l = list(3, 1, 2)\n> l.sorted()\n", "1,2,3\n"},
		{"fmt", "> fmt(\"{0}-{1}\", \"a\", 2)\n", "a-2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := runScript(t, tt.src)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUncaughtException(t *testing.T) {
	_, err := runScript(t, "> 1\n* error(\"boom\")\n> 2\n")
	var se *ScriptError
	if !errors.As(err, &se) {
		t.Fatalf("expected a script error, got %v", err)
	}
	if se.Payload.String() != "boom" {
		t.Errorf("payload = %q", se.Payload.String())
	}
	if se.File != "t.ms" || se.Line != 1 {
		t.Errorf("location = %s:%d, want t.ms:1", se.File, se.Line)
	}
}

func TestHandlerReraisesHeld(t *testing.T) {
	_, err := runScript(t, "* error(\"first\")\n! ex\n  * error(\"second\")\n}\n")
	var se *ScriptError
	if !errors.As(err, &se) {
		t.Fatalf("expected a script error, got %v", err)
	}
	if se.Payload.String() != "first" {
		t.Errorf("payload = %q, want the held exception", se.Payload.String())
	}
}

func TestCalleeCannotSeeCallerLocals(t *testing.T) {
	_, err := runScript(t, "~peek()\n  <- local\n}\n{\n  $ local = 2\n  * peek()\n}\n")
	if err == nil || !str.Contains(err.Error(), "local") {
		t.Fatalf("expected undefined variable error, got %v", err)
	}
}

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unterminated if", "? true\n> 1\n"},
		{"stray close", "}\n"},
		{"arity", "~f(a)\n  <- a\n}\n> f(1, 2)\n"},
		{"duplicate function", "~f()\n}\n~f()\n}\n"},
		{"builtin clash", "~length(x)\n}\n"},
		{"nested function", "{\n~f()\n}\n}\n"},
		{"bad variable name", "$ 1x = 2\n"},
		{"reserved name", "$ true = 2\n"},
		{"case outside switch", "= 1\n"},
		{"branch after default", "? true\n<>\n? false\n}\n"},
		{"statement before case", "[] 1\n> 2\n= 1\n}\n"},
		{"block before case", "[] 1\nO\nv\n}\n= 1\n> 1\n}\n"},
		{"scope before case", "[] 1\n{\n> 2\n}\n= 1\n}\n"},
		{"bad trace", ">>> nolevel\n"},
		{"unterminated comment", "/* open\n> 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runScript(t, tt.src)
			var syn *SyntaxError
			if !errors.As(err, &syn) {
				t.Fatalf("expected a syntax error, got %v", err)
			}
			if out != "" {
				t.Errorf("script ran before validation failed: %q", out)
			}
		})
	}
}

func TestFailedChunkRegistersNothing(t *testing.T) {
	var out bytes.Buffer
	host := DefaultHost()
	host.Out = &out
	in := NewInterpreter(host)

	err := in.RunSource("<repl:1>", "~f()\n  <- 1\n}\n= 1\n")
	var syn *SyntaxError
	if !errors.As(err, &syn) {
		t.Fatalf("expected a syntax error, got %v", err)
	}
	if in.Functions().Has("f") {
		t.Fatal("function from a rejected chunk is still registered")
	}
	if err := in.RunSource("<repl:2>", "> f()\n"); err == nil {
		t.Error("calling an unregistered function should fail")
	}
	if err := in.RunSource("<repl:3>", "~f()\n  <- 2\n}\n> f()\n"); err != nil {
		t.Fatalf("redefining after a failed chunk: %v", err)
	}
	if out.String() != "2\n" {
		t.Errorf("got %q", out.String())
	}
}

func TestBreakOutsideLoop(t *testing.T) {
	if _, err := runScript(t, "v\n"); err == nil {
		t.Fatal("expected an error for break at top level")
	}
	if _, err := runScript(t, "~f()\n  ^\n}\n* f()\n"); err == nil {
		t.Fatal("expected an error for continue escaping a function")
	}
}

func TestExitRequest(t *testing.T) {
	out, err := runScript(t, "> 1\n* exit(4)\n> 2\n! ex\n  > \"handled\"\n}\n")
	var ex *ExitRequest
	if !errors.As(err, &ex) || ex.Code != 4 {
		t.Fatalf("expected exit(4), got %v", err)
	}
	if out != "1\n" {
		t.Errorf("got %q", out)
	}
}

func TestCallDepthLimit(t *testing.T) {
	_, err := runScript(t, "~down(n)\n  <- down(n + 1)\n}\n* down(0)\n")
	if err == nil || !str.Contains(err.Error(), "depth") {
		t.Fatalf("expected depth limit error, got %v", err)
	}
}

func TestTrace(t *testing.T) {
	var out, trace bytes.Buffer
	host := DefaultHost()
	host.Out = &out
	host.Trace = &trace
	host.traceSection = "*"
	host.traceLevel = 1
	in := NewInterpreter(host)
	if err := in.RunSource("t.ms", ">>> dbg:1:1 + 1\n>>> dbg:2:\"hidden\"\n"); err != nil {
		t.Fatal(err)
	}
	if trace.String() != "[dbg:1] 2\n" {
		t.Errorf("trace = %q", trace.String())
	}

	trace.Reset()
	host.traceSection = "other"
	if err := in.RunSource("u.ms", ">>> dbg:1:3\n"); err != nil {
		t.Fatal(err)
	}
	if trace.Len() != 0 {
		t.Errorf("inactive section printed %q", trace.String())
	}
}

func TestImportScript(t *testing.T) {
	dir := t.TempDir()
	lib := "~twice(x)\n  <- x * 2\n}\n& loaded = loaded + 1\n"
	main := "$ loaded = 0\n+ \"lib.ms\"\n+ \"lib.ms\"\n> twice(4)\n> loaded\n"
	if err := os.WriteFile(filepath.Join(dir, "lib.ms"), []byte(lib), 0644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "main.ms")
	if err := os.WriteFile(path, []byte(main), 0644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	host := DefaultHost()
	host.Out = &out
	in := NewInterpreter(host)
	if err := in.RunFile(path); err != nil {
		t.Fatal(err)
	}
	if out.String() != "8\n1\n" {
		t.Errorf("got %q", out.String())
	}
}

func TestImportMissingPlugin(t *testing.T) {
	_, err := runScript(t, "+ \"nosuchmodule\"\n")
	if err == nil || !str.Contains(err.Error(), "not found") {
		t.Fatalf("expected plugin not found, got %v", err)
	}
}
