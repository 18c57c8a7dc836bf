package main

import (
	"math"
	"strconv"
	str "strings"

	"gopkg.in/yaml.v3"
)

func buildYamlLib() {
	features["yaml"] = Feature{version: 1, category: "data"}
	categories["yaml"] = []string{"fromYaml", "toYaml", "yamlGet"}

	slhelp["fromYaml"] = LibHelp{in: "yaml_string", out: "value", action: "Parses YAML into lists and indexes. mapping order is kept."}
	stdlib["fromYaml"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("fromYaml", args, 1, "1", "string"); !ok {
			return Null, err
		}
		var doc yaml.Node
		if err := yaml.Unmarshal([]byte(args[0].s), &doc); err != nil {
			return Null, fef("fromYaml(): %w", err)
		}
		return nodeToValue(&doc)
	}

	slhelp["toYaml"] = LibHelp{in: "value", out: "string", action: "YAML text for value."}
	stdlib["toYaml"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("toYaml", args, 1, "1", "any"); !ok {
			return Null, err
		}
		out, err := yaml.Marshal(valueToNode(args[0]))
		if err != nil {
			return Null, fef("toYaml(): %w", err)
		}
		return String(string(out)), nil
	}

	slhelp["yamlGet"] = LibHelp{in: "value,path", out: "value", action: "Walks a dot notation path such as 'spec.containers[0].image' through nested indexes and lists."}
	stdlib["yamlGet"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("yamlGet", args, 1, "2", "any", "string"); !ok {
			return Null, err
		}
		return walkPath(args[0], args[1].s)
	}
}

func nodeToValue(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null, nil
		}
		return nodeToValue(n.Content[0])
	case yaml.AliasNode:
		return nodeToValue(n.Alias)
	case yaml.SequenceNode:
		l := NewList()
		for _, c := range n.Content {
			v, err := nodeToValue(c)
			if err != nil {
				return Null, err
			}
			l.list.Append(v)
		}
		return l, nil
	case yaml.MappingNode:
		m := NewIndex()
		for i := 0; i+1 < len(n.Content); i += 2 {
			kv, err := nodeToValue(n.Content[i])
			if err != nil {
				return Null, err
			}
			k, err := kv.Key()
			if err != nil {
				return Null, err
			}
			v, err := nodeToValue(n.Content[i+1])
			if err != nil {
				return Null, err
			}
			m.idx.Set(k, v)
		}
		return m, nil
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return Null, nil
		case "!!bool":
			var b bool
			if err := n.Decode(&b); err != nil {
				return Null, err
			}
			return Bool(b), nil
		case "!!int", "!!float":
			var f float64
			if err := n.Decode(&f); err != nil {
				return Null, err
			}
			return Number(f), nil
		}
		return String(n.Value), nil
	}
	return Null, fef("unsupported YAML node at line %d", n.Line)
}

func valueToNode(v Value) *yaml.Node {
	switch v.kind {
	case KindNothing:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: v.String()}
	case KindNumber:
		text, tag := formatNumber(v.num), "!!float"
		switch {
		case v.num == math.Trunc(v.num) && math.Abs(v.num) < 1e15:
			tag = "!!int"
		case math.IsNaN(v.num):
			text = ".nan"
		case math.IsInf(v.num, 1):
			text = ".inf"
		case math.IsInf(v.num, -1):
			text = "-.inf"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: text}
	case KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.s}
	case KindList:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range v.list.items {
			n.Content = append(n.Content, valueToNode(e))
		}
		return n
	}
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, p := range v.idx.Pairs() {
		n.Content = append(n.Content, valueToNode(p.Key.Value()), valueToNode(p.Value))
	}
	return n
}

type pathPart struct {
	key   string
	index int // -1 when the segment has no [n]
}

func parsePath(path string) []pathPart {
	if path == "" {
		return nil
	}
	var parts []pathPart
	for _, segment := range str.Split(path, ".") {
		open := str.IndexByte(segment, '[')
		shut := str.IndexByte(segment, ']')
		if open >= 0 && shut > open {
			if index, err := strconv.Atoi(segment[open+1 : shut]); err == nil {
				parts = append(parts, pathPart{key: segment[:open], index: index})
				continue
			}
		}
		parts = append(parts, pathPart{key: segment, index: -1})
	}
	return parts
}

// walkPath follows keys through indexes and [n] positions through lists.
func walkPath(v Value, path string) (Value, error) {
	current := v
	for _, part := range parsePath(path) {
		if part.key != "" {
			if current.kind != KindIndex {
				return Null, fef("yamlGet(): '%s' is applied to a %s", part.key, current.kind)
			}
			next, found := current.idx.Get(StringKey(part.key))
			if !found {
				return Null, fef("yamlGet(): key '%s' not found", part.key)
			}
			current = next
		}
		if part.index >= 0 {
			if current.kind != KindList || !current.list.inRange(part.index) {
				return Null, fef("yamlGet(): position %d not available", part.index)
			}
			current = current.list.At(part.index)
		}
	}
	return current, nil
}
