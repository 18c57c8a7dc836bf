package main

//
// TYPES
//

import (
	"io"
	"os"
	"runtime"
)

// Host carries the process level capabilities a runtime writes to and
// shells out through.
type Host struct {
	Out   io.Writer
	Err   io.Writer
	In    io.Reader
	Trace io.Writer
	Shell []string // command prefix for shell lines, e.g. sh -c
	Log   *Logger

	traceSection string
	traceLevel   int
}

func DefaultHost() *Host {
	return &Host{
		Out:   os.Stdout,
		Err:   os.Stderr,
		In:    os.Stdin,
		Trace: os.Stderr,
		Shell: defaultShell(),
		Log:   discardLogger(),
	}
}

func defaultShell() []string {
	if runtime.GOOS == "windows" {
		return []string{"cmd", "/C"}
	}
	return []string{"sh", "-c"}
}

// ScriptFunction is a '~name(params)' definition. Start is the declaration
// line, End its closing brace.
type ScriptFunction struct {
	Name   string
	Params []string
	File   string
	Start  int
	End    int
}

// Outcome is the control flow signal returned from running a block.
type Outcome struct {
	Kind  OutKind
	Value Value
}

var normal = Outcome{Kind: OutNormal}

// Stmt is one classified script line.
type Stmt struct {
	Kind StmtKind
	Text string // line with the sigil removed and trimmed
	Line string // full original line
}

// loopHeader is the parsed form of 'label : from -> to' and 'label : expr'.
type loopHeader struct {
	label string
	from  string
	to    string
}
