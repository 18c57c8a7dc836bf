package main

import (
	"sort"
	str "strings"
)

func buildListLib() {

	features["list"] = Feature{version: 1, category: "data"}
	categories["list"] = []string{
		"length", "add", "set", "get", "has", "keys", "values",
		"reversed", "sorted", "firstLocation", "lastLocation", "subset",
	}

	slhelp["length"] = LibHelp{in: "string|list|index", out: "number", action: "Number of characters, elements or pairs."}
	stdlib["length"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("length", args, 3, "1", "string", "1", "list", "1", "index"); !ok {
			return Null, err
		}
		switch args[0].kind {
		case KindString:
			return Number(float64(len([]rune(args[0].s)))), nil
		case KindList:
			return Number(float64(args[0].list.Len())), nil
		}
		return Number(float64(args[0].idx.Len())), nil
	}

	slhelp["add"] = LibHelp{in: "string|list|index,value...", out: "value", action: "Appends to a list or index in place, or concatenates onto a string.\nIndexes take key/value pairs and reject keys already present."}
	stdlib["add"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if len(args) < 2 {
			return Null, fef("add() takes at least 2 argument(s), got %d", len(args))
		}
		target, rest := args[0], args[1:]
		switch target.kind {
		case KindString:
			var sb str.Builder
			sb.WriteString(target.s)
			for _, v := range rest {
				sb.WriteString(v.String())
			}
			return String(sb.String()), nil
		case KindList:
			target.list.Append(rest...)
			return target, nil
		case KindIndex:
			if len(rest)%2 != 0 {
				return Null, fef("add() to an index needs key/value pairs")
			}
			keys := make([]Key, 0, len(rest)/2)
			seen := make(map[Key]bool)
			for i := 0; i < len(rest); i += 2 {
				k, err := rest[i].Key()
				if err != nil {
					return Null, err
				}
				if seen[k] || target.idx.Has(k) {
					return Null, fef("duplicate key '%s' in add()", rest[i].String())
				}
				seen[k] = true
				keys = append(keys, k)
			}
			for n, k := range keys {
				target.idx.Set(k, rest[2*n+1])
			}
			return target, nil
		}
		return Null, fef("add() cannot extend a %s", target.kind)
	}

	slhelp["set"] = LibHelp{in: "string|list|index,position|key,value", out: "value", action: "Replaces an element. lists and indexes change in place, strings return a new string."}
	stdlib["set"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("set", args, 3,
			"3", "string", "number", "string",
			"3", "list", "number", "any",
			"3", "index", "any", "any"); !ok {
			return Null, err
		}
		target := args[0]
		switch target.kind {
		case KindString:
			r := []rune(target.s)
			p := intArg(args[1])
			if p < 0 || p >= len(r) {
				return Null, fef("set(): position %d out of range 0..%d", p, len(r)-1)
			}
			return String(string(r[:p]) + args[2].s + string(r[p+1:])), nil
		case KindList:
			p := intArg(args[1])
			if !target.list.inRange(p) {
				return Null, fef("set(): position %d out of range 0..%d", p, target.list.Len()-1)
			}
			target.list.Put(p, args[2])
			return target, nil
		}
		k, err := args[1].Key()
		if err != nil {
			return Null, err
		}
		target.idx.Set(k, args[2])
		return target, nil
	}

	slhelp["get"] = LibHelp{in: "string|list|index,position|key", out: "value", action: "Reads an element. missing keys and bad positions raise."}
	stdlib["get"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("get", args, 3,
			"2", "string", "number",
			"2", "list", "number",
			"2", "index", "any"); !ok {
			return Null, err
		}
		target := args[0]
		switch target.kind {
		case KindString:
			r := []rune(target.s)
			p := intArg(args[1])
			if p < 0 || p >= len(r) {
				return Null, fef("get(): position %d out of range 0..%d", p, len(r)-1)
			}
			return String(string(r[p])), nil
		case KindList:
			p := intArg(args[1])
			if !target.list.inRange(p) {
				return Null, fef("get(): position %d out of range 0..%d", p, target.list.Len()-1)
			}
			return target.list.At(p), nil
		}
		k, err := args[1].Key()
		if err != nil {
			return Null, err
		}
		v, found := target.idx.Get(k)
		if !found {
			return Null, fef("get(): key '%s' not present", args[1].String())
		}
		return v, nil
	}

	slhelp["has"] = LibHelp{in: "string|list|index,value", out: "bool", action: "Substring, element or key presence test."}
	stdlib["has"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("has", args, 3,
			"2", "string", "string",
			"2", "list", "any",
			"2", "index", "any"); !ok {
			return Null, err
		}
		switch args[0].kind {
		case KindString:
			return Bool(str.Contains(args[0].s, args[1].s)), nil
		case KindList:
			return Bool(listFind(args[0].list, args[1], false) >= 0), nil
		}
		k, err := args[1].Key()
		if err != nil {
			return Bool(false), nil
		}
		return Bool(args[0].idx.Has(k)), nil
	}

	slhelp["keys"] = LibHelp{in: "string|list|index", out: "list", action: "Index keys in order, or the positions of a string or list."}
	stdlib["keys"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("keys", args, 3, "1", "string", "1", "list", "1", "index"); !ok {
			return Null, err
		}
		out := NewList()
		switch args[0].kind {
		case KindString:
			for i := range []rune(args[0].s) {
				out.list.Append(Number(float64(i)))
			}
		case KindList:
			for i := 0; i < args[0].list.Len(); i++ {
				out.list.Append(Number(float64(i)))
			}
		case KindIndex:
			for _, k := range args[0].idx.Keys() {
				out.list.Append(k.Value())
			}
		}
		return out, nil
	}

	slhelp["values"] = LibHelp{in: "string|list|index", out: "list", action: "Index values in order, list elements, or the characters of a string."}
	stdlib["values"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("values", args, 3, "1", "string", "1", "list", "1", "index"); !ok {
			return Null, err
		}
		switch args[0].kind {
		case KindString:
			return runeList(args[0].s), nil
		case KindList:
			return NewList(args[0].list.Items()...), nil
		}
		return NewList(args[0].idx.Values()...), nil
	}

	slhelp["reversed"] = LibHelp{in: "string|list|index", out: "value", action: "New value with the order reversed."}
	stdlib["reversed"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("reversed", args, 3, "1", "string", "1", "list", "1", "index"); !ok {
			return Null, err
		}
		switch args[0].kind {
		case KindString:
			r := []rune(args[0].s)
			for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
				r[i], r[j] = r[j], r[i]
			}
			return String(string(r)), nil
		case KindList:
			items := args[0].list.Items()
			out := NewList()
			for i := len(items) - 1; i >= 0; i-- {
				out.list.Append(items[i])
			}
			return out, nil
		}
		pairs := args[0].idx.Pairs()
		out := NewIndex()
		for i := len(pairs) - 1; i >= 0; i-- {
			out.idx.Set(pairs[i].Key, pairs[i].Value)
		}
		return out, nil
	}

	slhelp["sorted"] = LibHelp{in: "string|list|index", out: "value", action: "New value in ascending order. indexes sort by key.\nelements must all be numbers or all strings."}
	stdlib["sorted"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("sorted", args, 3, "1", "string", "1", "list", "1", "index"); !ok {
			return Null, err
		}
		switch args[0].kind {
		case KindString:
			r := []rune(args[0].s)
			sort.Slice(r, func(i, j int) bool { return r[i] < r[j] })
			return String(string(r)), nil
		case KindList:
			items := append([]Value(nil), args[0].list.Items()...)
			if err := sortValues(items, func(v Value) Value { return v }); err != nil {
				return Null, err
			}
			return NewList(items...), nil
		}
		pairs := append([]Pair[Key, Value](nil), args[0].idx.Pairs()...)
		var sortErr error
		sort.SliceStable(pairs, func(i, j int) bool {
			less, err := pairs[i].Key.Value().Less(pairs[j].Key.Value())
			if err != nil && sortErr == nil {
				sortErr = err
			}
			return less
		})
		if sortErr != nil {
			return Null, fef("sorted(): %w", sortErr)
		}
		out := NewIndex()
		for _, p := range pairs {
			out.idx.Set(p.Key, p.Value)
		}
		return out, nil
	}

	slhelp["firstLocation"] = LibHelp{in: "string|list,value", out: "number", action: "Position of the first occurrence, or -1."}
	stdlib["firstLocation"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		return locate("firstLocation", args, false)
	}

	slhelp["lastLocation"] = LibHelp{in: "string|list,value", out: "number", action: "Position of the last occurrence, or -1."}
	stdlib["lastLocation"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		return locate("lastLocation", args, true)
	}

	slhelp["subset"] = LibHelp{in: "string|list,start[,length]", out: "string|list", action: "Substring or sublist from start, to the end when length is omitted."}
	stdlib["subset"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("subset", args, 4,
			"2", "string", "number",
			"3", "string", "number", "number",
			"2", "list", "number",
			"3", "list", "number", "number"); !ok {
			return Null, err
		}
		var size int
		if args[0].kind == KindString {
			size = len([]rune(args[0].s))
		} else {
			size = args[0].list.Len()
		}
		start := intArg(args[1])
		count := size - start
		if len(args) == 3 {
			count = intArg(args[2])
		}
		if start < 0 || start > size || count < 0 || start+count > size {
			return Null, fef("subset(): range %d+%d outside 0..%d", start, count, size)
		}
		if args[0].kind == KindString {
			return String(string([]rune(args[0].s)[start : start+count])), nil
		}
		return NewList(args[0].list.Items()[start : start+count]...), nil
	}
}

func runeList(s string) Value {
	out := NewList()
	for _, r := range s {
		out.list.Append(String(string(r)))
	}
	return out
}

// listFind compares elements by value. elements of another kind never
// match.
func listFind(l *List, needle Value, last bool) int {
	n := l.Len()
	for k := 0; k < n; k++ {
		i := k
		if last {
			i = n - 1 - k
		}
		if eq, err := l.At(i).Equals(needle); err == nil && eq {
			return i
		}
	}
	return -1
}

func locate(name string, args []Value, last bool) (Value, error) {
	if ok, err := expect_args(name, args, 2, "2", "string", "string", "2", "list", "any"); !ok {
		return Null, err
	}
	if args[0].kind == KindList {
		return Number(float64(listFind(args[0].list, args[1], last))), nil
	}
	hay, needle := args[0].s, args[1].s
	var b int
	if last {
		b = str.LastIndex(hay, needle)
	} else {
		b = str.Index(hay, needle)
	}
	if b < 0 {
		return Number(-1), nil
	}
	return Number(float64(len([]rune(hay[:b])))), nil
}

// sortValues orders items by key(v); mixed kinds are an error.
func sortValues(items []Value, key func(Value) Value) error {
	var sortErr error
	sort.SliceStable(items, func(i, j int) bool {
		less, err := key(items[i]).Less(key(items[j]))
		if err != nil && sortErr == nil {
			sortErr = err
		}
		return less
	})
	if sortErr != nil {
		return fef("sorted(): %w", sortErr)
	}
	return nil
}
