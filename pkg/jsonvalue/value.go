// Package jsonvalue provides the typed JSON value used by orderlens.
//
// A response body is decoded once into a Value, a tagged union over the
// six JSON kinds. Objects keep their members in wire order so that
// everything downstream (the tree renderer, the clipboard encoder) can
// walk them without re-inspecting untyped interface{} values.
package jsonvalue

import (
	"fmt"
	"strconv"
)

// Kind discriminates the variants of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindObject
	KindArray
)

// String returns the lowercase JSON name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Member is one key/value pair of an object.
type Member struct {
	Key   string
	Value Value
}

// Value is an immutable JSON value. The zero Value is null.
type Value struct {
	kind    Kind
	b       bool
	s       string // string contents, or the number literal
	members []Member
	items   []Value
}

// Null returns the JSON null value.
func Null() Value {
	return Value{kind: KindNull}
}

// Bool wraps a boolean.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Number wraps a number literal exactly as it appeared on the wire.
func Number(literal string) Value {
	return Value{kind: KindNumber, s: literal}
}

// String wraps a string.
func String(s string) Value {
	return Value{kind: KindString, s: s}
}

// Object builds an object from members in the given order. A repeated key
// keeps the position of its first occurrence and the value of its last.
func Object(members ...Member) Value {
	out := make([]Member, 0, len(members))
	index := make(map[string]int, len(members))
	for _, m := range members {
		if i, dup := index[m.Key]; dup {
			out[i].Value = m.Value
			continue
		}
		index[m.Key] = len(out)
		out = append(out, m)
	}
	return Value{kind: KindObject, members: out}
}

// Array builds an array from items in index order.
func Array(items ...Value) Value {
	out := make([]Value, len(items))
	copy(out, items)
	return Value{kind: KindArray, items: out}
}

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// IsComposite reports whether v is an object or an array.
func (v Value) IsComposite() bool {
	return v.kind == KindObject || v.kind == KindArray
}

// Bool returns the boolean payload. It is false for non-boolean values.
func (v Value) Bool() bool { return v.b }

// Str returns the string payload. It is empty for non-string values.
func (v Value) Str() string {
	if v.kind != KindString {
		return ""
	}
	return v.s
}

// Literal returns the number literal. It is empty for non-number values.
func (v Value) Literal() string {
	if v.kind != KindNumber {
		return ""
	}
	return v.s
}

// Float64 parses the number literal. Non-number values report an error.
func (v Value) Float64() (float64, error) {
	if v.kind != KindNumber {
		return 0, fmt.Errorf("jsonvalue: %s is not a number", v.kind)
	}
	return strconv.ParseFloat(v.s, 64)
}

// Len returns the number of members or items of a composite value.
func (v Value) Len() int {
	switch v.kind {
	case KindObject:
		return len(v.members)
	case KindArray:
		return len(v.items)
	default:
		return 0
	}
}

// Members returns a copy of the object members in insertion order.
func (v Value) Members() []Member {
	if v.kind != KindObject {
		return nil
	}
	out := make([]Member, len(v.members))
	copy(out, v.members)
	return out
}

// Items returns a copy of the array items in index order.
func (v Value) Items() []Value {
	if v.kind != KindArray {
		return nil
	}
	out := make([]Value, len(v.items))
	copy(out, v.items)
	return out
}

// Get looks up an object member by key.
func (v Value) Get(key string) (Value, bool) {
	for _, m := range v.members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}
