package main

import (
	"os"
	str "strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// textEncoding maps an encoding name to its x/text codec. nil means the
// bytes are used as they are.
func textEncoding(name string) (encoding.Encoding, bool, error) {
	switch str.ToLower(str.ReplaceAll(name, "-", "")) {
	case "", "utf8":
		return nil, false, nil
	case "ascii":
		return nil, true, nil
	case "utf16":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), false, nil
	}
	return nil, false, fef("unknown encoding '%s' (want ascii, utf-8 or utf-16)", name)
}

// asciiOnly replaces anything outside 7-bit ascii with '?'.
func asciiOnly(s string) string {
	return str.Map(func(r rune) rune {
		if r > 127 {
			return '?'
		}
		return r
	}, s)
}

func buildFileLib() {

	features["file"] = Feature{version: 1, category: "file"}
	categories["file"] = []string{"readFile", "writeFile"}

	slhelp["readFile"] = LibHelp{in: "path[,encoding]", out: "string", action: "Whole file as a string, or null when it cannot be opened.\nencoding is ascii, utf-8 (default) or utf-16."}
	stdlib["readFile"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("readFile", args, 2, "1", "string", "2", "string", "string"); !ok {
			return Null, err
		}
		name := ""
		if len(args) == 2 {
			name = args[1].s
		}
		enc, ascii, err := textEncoding(name)
		if err != nil {
			return Null, err
		}
		data, err := os.ReadFile(args[0].s)
		if err != nil {
			ev.host.Log.Debug("readFile failed", map[string]any{"path": args[0].s, "error": err.Error()})
			return Null, nil
		}
		if enc != nil {
			if data, err = enc.NewDecoder().Bytes(data); err != nil {
				return Null, fef("readFile(): %w", err)
			}
		}
		if ascii {
			return String(asciiOnly(string(data))), nil
		}
		return String(string(data)), nil
	}

	slhelp["writeFile"] = LibHelp{in: "path,text[,encoding]", out: "bool", action: "Replaces the file with text. false when it cannot be written.\nencoding is ascii, utf-8 (default) or utf-16 (written with a byte order mark)."}
	stdlib["writeFile"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("writeFile", args, 2, "2", "string", "string", "3", "string", "string", "string"); !ok {
			return Null, err
		}
		name := ""
		if len(args) == 3 {
			name = args[2].s
		}
		enc, ascii, err := textEncoding(name)
		if err != nil {
			return Null, err
		}
		text := args[1].s
		if ascii {
			text = asciiOnly(text)
		}
		data := []byte(text)
		if enc != nil {
			if data, err = enc.NewEncoder().Bytes(data); err != nil {
				return Null, fef("writeFile(): %w", err)
			}
		}
		if err := os.WriteFile(args[0].s, data, default_WriteMode); err != nil {
			ev.host.Log.Debug("writeFile failed", map[string]any{"path": args[0].s, "error": err.Error()})
			return Bool(false), nil
		}
		return Bool(true), nil
	}
}
