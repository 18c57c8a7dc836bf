package main

import (
	str "strings"
	"sync"
)

type LibHelp struct {
	in     string
	out    string
	action string
}

// Feature : stdlib category metadata.
type Feature struct {
	version  int
	category string
}

// stdlibFunc is a built-in callable from expressions.
type stdlibFunc = func(ev *Evaluator, args ...Value) (ret Value, err error)

var stdlib = make(map[string]stdlibFunc, FUNC_CAP)
var slhelp = make(map[string]LibHelp, FUNC_CAP)
var features = make(map[string]Feature)
var categories = make(map[string][]string)

// lowercase name -> canonical name
var stdlibNames = make(map[string]string, FUNC_CAP)

var stdlibOnce sync.Once

func buildStandardLib() {
	buildMathLib()
	buildConversionLib()
	buildYamlLib()
	buildListLib()
	buildStringLib()
	buildRegexLib()
	buildOsLib()
	buildFileLib()
	buildDateLib()
	buildConsoleLib()

	for name := range stdlib {
		stdlibNames[str.ToLower(name)] = name
	}
}

// stdlibLookup matches built-in names case-insensitively.
func stdlibLookup(name string) (stdlibFunc, bool) {
	stdlibOnce.Do(buildStandardLib)
	canon, found := stdlibNames[str.ToLower(name)]
	if !found {
		return nil, false
	}
	return stdlib[canon], true
}

// isBuiltin is used by the validation pass to reject clashing definitions.
func isBuiltin(name string) bool {
	_, found := stdlibLookup(name)
	return found
}
