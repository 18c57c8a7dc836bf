package main

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	str "strings"
)

// objectToJson renders v as JSON text. lists print as [a, b] and indexes
// as {"k": v}; keys are always strings.
func objectToJson(v Value) string {
	var sb str.Builder
	writeJson(&sb, v)
	return sb.String()
}

func writeJson(sb *str.Builder, v Value) {
	switch v.kind {
	case KindNothing:
		sb.WriteString("null")
	case KindBool:
		if v.b {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			sb.WriteString("null")
			return
		}
		sb.WriteString(formatNumber(v.num))
	case KindString:
		writeJsonString(sb, v.s)
	case KindList:
		sb.WriteByte('[')
		for i, e := range v.list.items {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeJson(sb, e)
		}
		sb.WriteByte(']')
	case KindIndex:
		sb.WriteByte('{')
		for i, p := range v.idx.Pairs() {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeJsonString(sb, p.Key.Value().String())
			sb.WriteString(": ")
			writeJson(sb, p.Value)
		}
		sb.WriteByte('}')
	}
}

const hexDigits = "0123456789abcdef"

func writeJsonString(sb *str.Builder, s string) {
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '/':
			sb.WriteString(`\/`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if r < 0x20 {
				sb.WriteString(`\u00`)
				sb.WriteByte(hexDigits[r>>4])
				sb.WriteByte(hexDigits[r&0xf])
				continue
			}
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
}

// jsonToObject parses JSON text into a value. object member order is kept.
func jsonToObject(text string) (Value, error) {
	dec := json.NewDecoder(str.NewReader(text))
	dec.UseNumber()
	v, err := decodeJson(dec)
	if err != nil {
		return Null, fef("invalid JSON: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Null, fef("invalid JSON: trailing data after value")
	}
	return v, nil
}

func decodeJson(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Null, err
	}
	switch t := tok.(type) {
	case nil:
		return Null, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return Null, err
		}
		return Number(n), nil
	case json.Delim:
		switch t {
		case '[':
			l := NewList()
			for dec.More() {
				e, err := decodeJson(dec)
				if err != nil {
					return Null, err
				}
				l.list.Append(e)
			}
			_, err := dec.Token()
			return l, err
		case '{':
			m := NewIndex()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return Null, err
				}
				e, err := decodeJson(dec)
				if err != nil {
					return Null, err
				}
				m.idx.Set(StringKey(kt.(string)), e)
			}
			_, err := dec.Token()
			return m, err
		}
	}
	return Null, fef("unexpected token %v", tok)
}
