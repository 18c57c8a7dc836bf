package main

// escape sequences with readable names
var keyNames = map[string]string{
	"\x1b[A":  "up",
	"\x1b[B":  "down",
	"\x1b[C":  "right",
	"\x1b[D":  "left",
	"\x1b[H":  "home",
	"\x1b[F":  "end",
	"\x1b[2~": "insert",
	"\x1b[3~": "delete",
	"\x1b[5~": "pageup",
	"\x1b[6~": "pagedown",
	"\x1b":    "escape",
	"\r":      "enter",
	"\n":      "enter",
	"\t":      "tab",
	"\x7f":    "backspace",
	"\x08":    "backspace",
}

func keyName(raw string) string {
	if n, found := keyNames[raw]; found {
		return n
	}
	return raw
}

func buildConsoleLib() {

	features["console"] = Feature{version: 1, category: "io"}
	categories["console"] = []string{"getKey"}

	slhelp["getKey"] = LibHelp{in: "[timeout_ms]", out: "string", action: "Reads one keypress from the terminal without echo.\nnamed keys come back as up, down, enter, escape etc. null on timeout."}
	stdlib["getKey"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("getKey", args, 2, "0", "1", "number"); !ok {
			return Null, err
		}
		timeout := 0
		if len(args) == 1 {
			timeout = intArg(args[0])
		}
		raw, ok, err := readKey(timeout)
		if err != nil {
			return Null, fef("getKey(): %w", err)
		}
		if !ok {
			return Null, nil
		}
		return String(keyName(raw)), nil
	}
}
