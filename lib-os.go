package main

import (
	"bytes"
	"os"
	"os/exec"
	"time"
)

func buildOsLib() {

	features["os"] = Feature{version: 1, category: "os"}
	categories["os"] = []string{"exec", "setEnv", "getEnv", "exit", "error", "sleep", "cd", "curDir"}

	slhelp["exec"] = LibHelp{in: "command[,method[,ignore_errors]]", out: "index", action: "Runs command through the shell. method \"popen\" (default) captures stdout,\n\"system\" passes output straight through. returns an index of exit_code and output.\na failure raises unless ignore_errors is true."}
	stdlib["exec"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("exec", args, 3,
			"1", "string",
			"2", "string", "string",
			"3", "string", "string", "bool"); !ok {
			return Null, err
		}
		method := "popen"
		if len(args) > 1 {
			method = args[1].s
		}
		if method != "popen" && method != "system" {
			return Null, fef("exec(): unknown method '%s'", method)
		}
		ignore := len(args) == 3 && args[2].b
		return runCommand(ev.host, args[0].s, method == "popen", ignore)
	}

	slhelp["setEnv"] = LibHelp{in: "name,value", out: "bool", action: "Sets an environment variable for this process and its children."}
	stdlib["setEnv"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("setEnv", args, 1, "2", "string", "string"); !ok {
			return Null, err
		}
		if err := os.Setenv(args[0].s, args[1].s); err != nil {
			return Null, err
		}
		return Bool(true), nil
	}

	slhelp["getEnv"] = LibHelp{in: "name", out: "string", action: "Value of an environment variable, null when unset."}
	stdlib["getEnv"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("getEnv", args, 1, "1", "string"); !ok {
			return Null, err
		}
		v, found := os.LookupEnv(args[0].s)
		if !found {
			return Null, nil
		}
		return String(v), nil
	}

	slhelp["exit"] = LibHelp{in: "[code]", out: "", action: "Ends the script with status code (default 0). handlers do not run."}
	stdlib["exit"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("exit", args, 2, "0", "1", "number"); !ok {
			return Null, err
		}
		code := 0
		if len(args) == 1 {
			code = intArg(args[0])
		}
		return Null, &ExitRequest{Code: code}
	}

	slhelp["error"] = LibHelp{in: "payload", out: "", action: "Raises an exception carrying payload, which may be any value."}
	stdlib["error"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("error", args, 1, "1", "any"); !ok {
			return Null, err
		}
		return Null, raise(args[0])
	}

	slhelp["sleep"] = LibHelp{in: "seconds", out: "", action: "Pauses for seconds, which may be fractional."}
	stdlib["sleep"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("sleep", args, 1, "1", "number"); !ok {
			return Null, err
		}
		if args[0].num > 0 {
			time.Sleep(time.Duration(args[0].num * float64(time.Second)))
		}
		return Null, nil
	}

	slhelp["cd"] = LibHelp{in: "path", out: "bool", action: "Changes the working directory."}
	stdlib["cd"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("cd", args, 1, "1", "string"); !ok {
			return Null, err
		}
		if err := changeDir(args[0].s); err != nil {
			return Null, fef("cd(): %w", err)
		}
		return Bool(true), nil
	}

	slhelp["curDir"] = LibHelp{in: "[drive]", out: "string", action: "Current working directory, or the current directory of drive where drives exist."}
	stdlib["curDir"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("curDir", args, 2, "0", "1", "string"); !ok {
			return Null, err
		}
		drive := ""
		if len(args) == 1 {
			drive = args[0].s
		}
		d, err := currentDir(drive)
		if err != nil {
			return Null, fef("curDir(): %w", err)
		}
		return String(d), nil
	}
}

// runCommand backs exec(). capture collects stdout into the result.
func runCommand(host *Host, command string, capture, ignore bool) (Value, error) {
	args := append(append([]string{}, host.Shell[1:]...), command)
	cmd := exec.Command(host.Shell[0], args...)
	cmd.Stdin = host.In
	cmd.Stderr = host.Err
	var out bytes.Buffer
	if capture {
		cmd.Stdout = &out
	} else {
		cmd.Stdout = host.Out
	}

	err := cmd.Run()
	code := 0
	if err != nil {
		code = -1
		if cmd.ProcessState != nil {
			code = cmd.ProcessState.ExitCode()
		}
	}

	res := NewIndex()
	res.idx.Set(StringKey("exit_code"), Number(float64(code)))
	res.idx.Set(StringKey("output"), String(out.String()))

	if err != nil && !ignore {
		host.Log.Debug("exec failed", map[string]any{"command": command, "exit_code": code, "error": err.Error()})
		payload := res.Clone()
		payload.idx.Set(StringKey("command"), String(command))
		return Null, raise(payload)
	}
	return res, nil
}
