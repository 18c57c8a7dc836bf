package main

import (
	"math/big"
	"sort"

	"github.com/itchyny/gojq"
)

func buildConversionLib() {

	features["conversion"] = Feature{version: 1, category: "data"}
	categories["conversion"] = []string{
		"getType", "number", "string", "list", "index", "clone",
		"toJson", "fromJson", "jsonQuery",
	}

	slhelp["getType"] = LibHelp{in: "value", out: "string", action: "Kind name of value: null, number, string, bool, list or index."}
	stdlib["getType"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("getType", args, 1, "1", "any"); !ok {
			return Null, err
		}
		return String(args[0].kind.String()), nil
	}

	slhelp["number"] = LibHelp{in: "value", out: "number", action: "Converts a string, bool or number to a number."}
	stdlib["number"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("number", args, 1, "1", "any"); !ok {
			return Null, err
		}
		n, err := args[0].ToNumber()
		if err != nil {
			return Null, err
		}
		return Number(n), nil
	}

	slhelp["string"] = LibHelp{in: "value", out: "string", action: "Printed form of value."}
	stdlib["string"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("string", args, 1, "1", "any"); !ok {
			return Null, err
		}
		return String(args[0].String()), nil
	}

	slhelp["list"] = LibHelp{in: "[value,...]", out: "list", action: "New list holding the arguments in order."}
	stdlib["list"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		return NewList(args...), nil
	}

	slhelp["index"] = LibHelp{in: "[key,value,...]", out: "index", action: "New index from alternating keys and values. keys must be distinct scalars."}
	stdlib["index"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if len(args)%2 != 0 {
			return Null, fef("index() needs key/value pairs, got %d argument(s)", len(args))
		}
		m := NewIndex()
		for i := 0; i < len(args); i += 2 {
			k, err := args[i].Key()
			if err != nil {
				return Null, err
			}
			if m.idx.Has(k) {
				return Null, fef("duplicate key '%s' in index()", args[i].String())
			}
			m.idx.Set(k, args[i+1])
		}
		return m, nil
	}

	slhelp["clone"] = LibHelp{in: "value", out: "value", action: "Deep copy of value. lists and indexes are otherwise shared."}
	stdlib["clone"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("clone", args, 1, "1", "any"); !ok {
			return Null, err
		}
		return args[0].Clone(), nil
	}

	slhelp["toJson"] = LibHelp{in: "value", out: "string", action: "JSON text for value."}
	stdlib["toJson"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("toJson", args, 1, "1", "any"); !ok {
			return Null, err
		}
		return String(objectToJson(args[0])), nil
	}

	slhelp["fromJson"] = LibHelp{in: "string", out: "value", action: "Parses JSON text. object member order is kept."}
	stdlib["fromJson"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("fromJson", args, 1, "1", "string"); !ok {
			return Null, err
		}
		return jsonToObject(args[0].s)
	}

	slhelp["jsonQuery"] = LibHelp{in: "json|value,query", out: "list", action: "Runs the jq query over JSON text or a value, returning every result in a list."}
	stdlib["jsonQuery"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("jsonQuery", args, 1, "2", "any", "string"); !ok {
			return Null, err
		}
		input := args[0]
		if input.kind == KindString {
			if input, err = jsonToObject(input.s); err != nil {
				return Null, err
			}
		}
		q, err := gojq.Parse(args[1].s)
		if err != nil {
			return Null, fef("invalid query in jsonQuery(): %w", err)
		}
		results := NewList()
		iter := q.Run(valueToNative(input))
		for {
			v, ok := iter.Next()
			if !ok {
				break
			}
			if e, isErr := v.(error); isErr {
				return Null, fef("jsonQuery(): %w", e)
			}
			results.list.Append(nativeToValue(v))
		}
		return results, nil
	}
}

// valueToNative builds the plain map/slice form gojq walks.
func valueToNative(v Value) any {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindString:
		return v.s
	case KindBool:
		return v.b
	case KindList:
		out := make([]any, v.list.Len())
		for i, e := range v.list.items {
			out[i] = valueToNative(e)
		}
		return out
	case KindIndex:
		out := make(map[string]any, v.idx.Len())
		for _, p := range v.idx.Pairs() {
			out[p.Key.Value().String()] = valueToNative(p.Value)
		}
		return out
	}
	return nil
}

// nativeToValue converts gojq results back. map keys come out sorted.
func nativeToValue(n any) Value {
	switch t := n.(type) {
	case nil:
		return Null
	case bool:
		return Bool(t)
	case int:
		return Number(float64(t))
	case float64:
		return Number(t)
	case *big.Int:
		f, _ := new(big.Float).SetInt(t).Float64()
		return Number(f)
	case string:
		return String(t)
	case []any:
		l := NewList()
		for _, e := range t {
			l.list.Append(nativeToValue(e))
		}
		return l
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := NewIndex()
		for _, k := range keys {
			m.idx.Set(StringKey(k), nativeToValue(t[k]))
		}
		return m
	}
	return String(sf("%v", n))
}
