package main

//
// IMPORTS
//

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	str "strings"
)

//
// ALIASES
//

var sf = fmt.Sprintf
var fpf = fmt.Fprintf
var fef = fmt.Errorf

// set at link time
var BuildComment string
var BuildVersion = "dev"
var BuildDate string

func usage() {
	fpf(os.Stderr, "usage: mscript [flags] [script%s [args...]]\n\n", SCRIPT_EXT)
	fpf(os.Stderr, "with no script an interactive prompt starts.\n\n")
	flag.PrintDefaults()
}

func version() {
	fpf(os.Stdout, "mscript %s", BuildVersion)
	if BuildDate != "" {
		fpf(os.Stdout, " (%s)", BuildDate)
	}
	if BuildComment != "" {
		fpf(os.Stdout, " %s", BuildComment)
	}
	fpf(os.Stdout, "\n")
}

func main() {
	os.Exit(run(os.Args[1:], os.Getenv))
}

// run is main without the process exit, returning the exit status.
func run(argv []string, getenv func(string) string) int {

	fs := flag.NewFlagSet("mscript", flag.ContinueOnError)
	fs.Usage = usage

	var a_help = fs.Bool("h", false, "help page")
	var a_version = fs.Bool("v", false, "display the version")
	var a_config = fs.String("c", "", "config file (default $MSCRIPT_CONFIG, ./.mscript.yaml, ~/.mscript.yaml)")
	var a_program = fs.String("e", "", "program string")
	var a_logfile = fs.String("l", "", "log file (default stderr)")
	var a_loglevel = fs.String("L", "", "log level: emerg alert crit error warn notice info debug")
	var a_logjson = fs.Bool("j", false, "log as JSON lines")
	var a_tsection = fs.String("t", "", "trace section to print, * for all")
	var a_tlevel = fs.Int("T", -1, "highest trace level printed")
	var a_shell = fs.String("s", "", "shell used for command lines, e.g. \"bash -c\"")
	var a_plugins = fs.String("p", "", "plugin manifest search path, "+string(filepath.ListSeparator)+" separated")
	var a_watch = fs.Bool("w", false, "re-run the script whenever it changes")

	if err := fs.Parse(argv); err != nil {
		return EXIT_USAGE
	}
	cmdargs := fs.Args()

	if *a_help {
		usage()
		return EXIT_OK
	}
	if *a_version {
		version()
		return EXIT_OK
	}

	cfg, _, err := LoadConfig(*a_config, getenv)
	if err != nil {
		fpf(os.Stderr, "%v\n", err)
		return EXIT_USAGE
	}

	// flags override the config file
	if *a_logfile != "" {
		cfg.Log.File = *a_logfile
	}
	if *a_loglevel != "" {
		cfg.Log.Level = *a_loglevel
	}
	if *a_logjson {
		cfg.Log.JSON = true
	}
	if *a_tsection != "" {
		cfg.Trace.Section = *a_tsection
	}
	if *a_tlevel >= 0 {
		cfg.Trace.Level = *a_tlevel
	}
	if *a_shell != "" {
		cfg.Shell = str.Fields(*a_shell)
	}
	if *a_plugins != "" {
		cfg.Plugins.Path = append(filepath.SplitList(*a_plugins), cfg.Plugins.Path...)
	}
	if err := cfg.validate(); err != nil {
		fpf(os.Stderr, "%v\n", err)
		return EXIT_USAGE
	}

	host, err := hostFromConfig(cfg)
	if err != nil {
		fpf(os.Stderr, "%v\n", err)
		return EXIT_USAGE
	}
	defer host.Log.Close()

	newRuntime := func(scriptArgs []string) (*Interpreter, error) {
		in := NewInterpreter(host)
		in.Loader().SetSearchPath(cfg.Plugins.Path)
		return in, bindArgs(in, scriptArgs)
	}

	switch {

	case *a_program != "":
		in, err := newRuntime(cmdargs)
		if err == nil {
			err = in.RunSource("<program>", *a_program)
		}
		return finish(host, err)

	case len(cmdargs) == 0:
		in, err := newRuntime(nil)
		if err != nil {
			return finish(host, err)
		}
		repl(in, os.Stdout)
		return EXIT_OK

	case *a_watch:
		script, rest := cmdargs[0], cmdargs[1:]
		w, err := NewWatcher(script, func() error {
			in, err := newRuntime(rest)
			if err != nil {
				return err
			}
			return in.RunFile(script)
		}, os.Stderr, host.Log)
		if err != nil {
			fpf(os.Stderr, "%v\n", err)
			return EXIT_USAGE
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		w.Watch(ctx)
		return EXIT_OK
	}

	in, err := newRuntime(cmdargs[1:])
	if err == nil {
		err = in.RunFile(cmdargs[0])
	}
	return finish(host, err)
}

// bindArgs makes the script arguments visible as the global list args.
func bindArgs(in *Interpreter, scriptArgs []string) error {
	l := NewList()
	for _, a := range scriptArgs {
		l.list.Append(String(a))
	}
	return in.Symbols().Declare("args", l)
}

// finish reports a failed run and picks the exit status.
func finish(host *Host, err error) int {
	if err == nil {
		return EXIT_OK
	}
	var ex *ExitRequest
	if errors.As(err, &ex) {
		return ex.Code
	}
	reportError(host.Err, err)

	var syn *SyntaxError
	if errors.As(err, &syn) {
		host.Log.Notice("syntax error", map[string]any{"file": syn.File, "line": syn.Line + 1, "message": syn.Msg})
		return EXIT_SYNTAX
	}
	if se := asScriptError(err); se != nil {
		host.Log.Notice("uncaught exception", map[string]any{"file": se.File, "line": se.Line + 1, "payload": objectToJson(se.Payload)})
	}
	return EXIT_EXCEPTION
}

// reportError prints an error with whatever location it carries.
func reportError(w io.Writer, err error) {
	var syn *SyntaxError
	if errors.As(err, &syn) {
		fpf(w, "syntax error in %s at line %d: %s\n    %s\n", syn.File, syn.Line+1, syn.Msg, syn.Source)
		return
	}
	var se *ScriptError
	if errors.As(err, &se) {
		fpf(w, "uncaught exception: %s\n", se.Payload.String())
		if se.located {
			fpf(w, "    at %s line %d: %s\n", se.File, se.Line+1, se.Source)
		}
		return
	}
	fpf(w, "error: %v\n", err)
}
