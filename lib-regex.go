package main

import (
	"sync"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// compiled expressions, keyed by pattern text
var regexCache = struct {
	sync.Mutex
	m map[string]*regexp2.Regexp
}{m: make(map[string]*regexp2.Regexp)}

func compileRegex(pattern string) (*regexp2.Regexp, error) {
	regexCache.Lock()
	defer regexCache.Unlock()
	if re, found := regexCache.m[pattern]; found {
		return re, nil
	}
	re, err := regexp2.Compile(pattern, regexp2.ECMAScript)
	if err != nil {
		return nil, fef("invalid regular expression '%s': %w", pattern, err)
	}
	regexCache.m[pattern] = re
	return re, nil
}

func buildRegexLib() {

	features["regex"] = Feature{version: 1, category: "text"}
	categories["regex"] = []string{"isMatch", "getMatches"}

	slhelp["isMatch"] = LibHelp{in: "string,regex", out: "bool", action: "Does regex match the whole of string?"}
	stdlib["isMatch"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("isMatch", args, 1, "2", "string", "string"); !ok {
			return Null, err
		}
		re, err := compileRegex("^(?:" + args[1].s + ")$")
		if err != nil {
			return Null, err
		}
		m, err := re.FindStringMatch(args[0].s)
		if err != nil {
			return Null, err
		}
		return Bool(m != nil && m.Index == 0 && m.Length == utf8.RuneCountInString(args[0].s)), nil
	}

	slhelp["getMatches"] = LibHelp{in: "string,regex", out: "list", action: "Groups of the first match: the whole match then each capture group.\nempty when nothing matches."}
	stdlib["getMatches"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("getMatches", args, 1, "2", "string", "string"); !ok {
			return Null, err
		}
		re, err := compileRegex(args[1].s)
		if err != nil {
			return Null, err
		}
		m, err := re.FindStringMatch(args[0].s)
		if err != nil {
			return Null, err
		}
		out := NewList()
		if m == nil {
			return out, nil
		}
		for _, g := range m.Groups() {
			out.list.Append(String(g.String()))
		}
		return out, nil
	}
}
