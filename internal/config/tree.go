// Package config defines the configuration trees exchanged with the
// receiver and decoder tasks, the default device profiles, and the diff
// used by the reconciliation loop.
package config

import (
	"sort"
	"strconv"
	"strings"
)

// Kind discriminates the variants of a Value.
type Kind int

const (
	KindNumber Kind = iota
	KindString
	KindBool
	KindTree
)

// Tree is a configuration document: keys mapping to scalars or subtrees.
type Tree map[string]Value

// Value is one node of a configuration tree: a number, string, boolean,
// or nested Tree. The zero Value is the number 0.
type Value struct {
	kind Kind
	num  float64
	str  string
	flag bool
	sub  Tree
}

func Num(n float64) Value { return Value{kind: KindNumber, num: n} }

func Str(s string) Value { return Value{kind: KindString, str: s} }

func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }

func Sub(t Tree) Value { return Value{kind: KindTree, sub: t} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) Num() float64 { return v.num }

func (v Value) Str() string { return v.str }

func (v Value) Bool() bool { return v.flag }

// Tree returns the nested subtree, or nil for scalar values.
func (v Value) Tree() Tree {
	if v.kind != KindTree {
		return nil
	}
	return v.sub
}

// Equal compares kind and payload; subtrees compare recursively.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == o.num
	case KindString:
		return v.str == o.str
	case KindBool:
		return v.flag == o.flag
	case KindTree:
		return v.sub.Equal(o.sub)
	}
	return false
}

// Equal reports whether two trees hold the same keys and values.
func (t Tree) Equal(o Tree) bool {
	if len(t) != len(o) {
		return false
	}
	for key, val := range t {
		other, ok := o[key]
		if !ok || !val.Equal(other) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy. Mutating the copy never affects the source.
func (t Tree) Clone() Tree {
	if t == nil {
		return nil
	}
	out := make(Tree, len(t))
	for key, val := range t {
		if val.kind == KindTree {
			out[key] = Sub(val.sub.Clone())
		} else {
			out[key] = val
		}
	}
	return out
}

// String renders the tree as compact JSON-like text with sorted keys,
// used for command payloads in log lines.
func (t Tree) String() string {
	var b strings.Builder
	t.render(&b)
	return b.String()
}

func (t Tree) render(b *strings.Builder) {
	keys := make([]string, 0, len(t))
	for key := range t {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	b.WriteByte('{')
	for i, key := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(key))
		b.WriteByte(':')
		t[key].render(b)
	}
	b.WriteByte('}')
}

func (v Value) render(b *strings.Builder) {
	switch v.kind {
	case KindNumber:
		b.WriteString(strconv.FormatFloat(v.num, 'g', -1, 64))
	case KindString:
		b.WriteString(strconv.Quote(v.str))
	case KindBool:
		b.WriteString(strconv.FormatBool(v.flag))
	case KindTree:
		v.sub.render(b)
	}
}

func (v Value) String() string {
	var b strings.Builder
	v.render(&b)
	return b.String()
}
