package main

import (
	"math"
	"strconv"
	str "strings"
)

//
// VALUE MODEL
//

type Kind uint8

const (
	KindNothing Kind = iota
	KindNumber
	KindString
	KindBool
	KindList
	KindIndex
)

var kindNames = [...]string{"null", "number", "string", "bool", "list", "index"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Value is the dynamically typed script value. List and Index are shared
// handles: copying a Value shares the underlying storage, Clone() does not.
type Value struct {
	kind Kind
	num  float64
	s    string
	b    bool
	list *List
	idx  *Index
}

// List is the shared storage behind a list value.
type List struct {
	items []Value
}

// Index is the shared storage behind an index value.
type Index = OrderedMap[Key, Value]

// Key is the hashable form of a scalar value used for index keys.
type Key struct {
	kind Kind
	num  float64
	s    string
	b    bool
}

var Null = Value{}

func Number(n float64) Value { return Value{kind: KindNumber, num: n} }
func String(s string) Value  { return Value{kind: KindString, s: s} }
func Bool(b bool) Value      { return Value{kind: KindBool, b: b} }

func NewList(items ...Value) Value {
	l := &List{items: make([]Value, 0, len(items))}
	l.items = append(l.items, items...)
	return Value{kind: KindList, list: l}
}

func NewIndex() Value {
	return Value{kind: KindIndex, idx: NewOrderedMap[Key, Value](0)}
}

func (v Value) Kind() Kind    { return v.kind }
func (v Value) IsNull() bool  { return v.kind == KindNothing }
func (v Value) Num() float64  { return v.num }
func (v Value) Str() string   { return v.s }
func (v Value) Bool() bool    { return v.b }
func (v Value) List() *List   { return v.list }
func (v Value) Index() *Index { return v.idx }

// validateType fails with a *TypeError when v is not of the wanted kind.
func (v Value) validateType(want Kind) error {
	if v.kind != want {
		return &TypeError{Want: want, Got: v.kind}
	}
	return nil
}

// ToNumber converts strings, bools and numbers to a number.
func (v Value) ToNumber() (float64, error) {
	switch v.kind {
	case KindNumber:
		return v.num, nil
	case KindBool:
		if v.b {
			return 1, nil
		}
		return 0, nil
	case KindString:
		n, err := strconv.ParseFloat(str.TrimSpace(v.s), 64)
		if err != nil {
			return 0, fef("cannot convert '%s' to a number", v.s)
		}
		return n, nil
	}
	return 0, &TypeError{Want: KindNumber, Got: v.kind}
}

// String renders v the way print and string concatenation show it.
func (v Value) String() string {
	switch v.kind {
	case KindNothing:
		return "null"
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatNumber(v.num)
	case KindString:
		return v.s
	case KindList:
		var sb str.Builder
		for i, e := range v.list.items {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(e.String())
		}
		return sb.String()
	case KindIndex:
		var sb str.Builder
		for i, p := range v.idx.Pairs() {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(p.Key.Value().String())
			sb.WriteString(": ")
			sb.WriteString(p.Value.String())
		}
		return sb.String()
	}
	return ""
}

// formatNumber gives the shortest decimal which parses back to n.
func formatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "nan"
	case math.IsInf(n, 1):
		return "inf"
	case math.IsInf(n, -1):
		return "-inf"
	case n == math.Trunc(n) && math.Abs(n) < 1e15:
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// canonicalNumber is the reduced precision form used when raw float
// equality fails.
func canonicalNumber(n float64) string {
	return strconv.FormatFloat(n, 'g', 15, 64)
}

// Equals compares by value. null equals only null, other kind mismatches
// are errors.
func (v Value) Equals(o Value) (bool, error) {
	if v.kind == KindNothing || o.kind == KindNothing {
		return v.kind == o.kind, nil
	}
	if v.kind != o.kind {
		return false, fef("cannot compare %s with %s", v.kind, o.kind)
	}
	switch v.kind {
	case KindNumber:
		if v.num == o.num {
			return true, nil
		}
		if math.IsNaN(v.num) || math.IsNaN(o.num) {
			return false, nil
		}
		return canonicalNumber(v.num) == canonicalNumber(o.num), nil
	case KindString:
		return v.s == o.s, nil
	case KindBool:
		return v.b == o.b, nil
	case KindList:
		if v.list == o.list {
			return true, nil
		}
		if len(v.list.items) != len(o.list.items) {
			return false, nil
		}
		for i := range v.list.items {
			if eq, err := v.list.items[i].Equals(o.list.items[i]); err != nil || !eq {
				return false, err
			}
		}
		return true, nil
	case KindIndex:
		if v.idx == o.idx {
			return true, nil
		}
		if v.idx.Len() != o.idx.Len() {
			return false, nil
		}
		for _, p := range v.idx.Pairs() {
			ov, found := o.idx.Get(p.Key)
			if !found {
				return false, nil
			}
			if eq, err := p.Value.Equals(ov); err != nil || !eq {
				return false, err
			}
		}
		return true, nil
	}
	return false, nil
}

// Less orders numbers and strings. anything else is an error.
func (v Value) Less(o Value) (bool, error) {
	switch {
	case v.kind == KindNumber && o.kind == KindNumber:
		return v.num < o.num, nil
	case v.kind == KindString && o.kind == KindString:
		return v.s < o.s, nil
	}
	return false, fef("cannot order %s against %s", v.kind, o.kind)
}

// Clone returns a fully independent copy.
func (v Value) Clone() Value {
	switch v.kind {
	case KindList:
		items := make([]Value, len(v.list.items))
		for i, e := range v.list.items {
			items[i] = e.Clone()
		}
		return Value{kind: KindList, list: &List{items: items}}
	case KindIndex:
		n := NewOrderedMap[Key, Value](v.idx.Len())
		for _, p := range v.idx.Pairs() {
			n.Set(p.Key, p.Value.Clone())
		}
		return Value{kind: KindIndex, idx: n}
	}
	return v
}

// Key converts a scalar value for use as an index key.
func (v Value) Key() (Key, error) {
	switch v.kind {
	case KindList, KindIndex:
		return Key{}, fef("a %s cannot be used as an index key", v.kind)
	}
	return Key{kind: v.kind, num: v.num, s: v.s, b: v.b}, nil
}

func (k Key) Value() Value {
	return Value{kind: k.kind, num: k.num, s: k.s, b: k.b}
}

func StringKey(s string) Key { return Key{kind: KindString, s: s} }

//
// list storage
//

func (l *List) Len() int           { return len(l.items) }
func (l *List) At(i int) Value     { return l.items[i] }
func (l *List) Items() []Value     { return l.items }
func (l *List) Append(v ...Value)  { l.items = append(l.items, v...) }
func (l *List) Put(i int, v Value) { l.items[i] = v }
func (l *List) inRange(i int) bool { return i >= 0 && i < len(l.items) }
