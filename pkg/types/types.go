package types

import (
	"strings"
)

// Kind discriminates the closed set of type bindings. Callers switch on it
// instead of type-asserting through an open hierarchy.
type Kind uint8

const (
	KindPrimitive Kind = iota + 1
	KindNull
	KindClass // non-generic class/interface, or a generic declaration itself
	KindParameterized
	KindRaw
	KindArray
	KindWildcard
	KindTypeVariable
	KindInferenceVariable
	KindIntersection
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindNull:
		return "null"
	case KindClass:
		return "class"
	case KindParameterized:
		return "parameterized"
	case KindRaw:
		return "raw"
	case KindArray:
		return "array"
	case KindWildcard:
		return "wildcard"
	case KindTypeVariable:
		return "type variable"
	case KindInferenceVariable:
		return "inference variable"
	case KindIntersection:
		return "intersection"
	}
	return "unknown"
}

// Type is the interface implemented by all type bindings.
//
// Bindings are interned by their Environment: two bindings that denote the
// same type are the same pointer, so == is the equality test. Nothing in this
// package compares types structurally.
type Type interface {
	Kind() Kind
	// ID is unique within the process; interning keys are built from IDs.
	ID() int
	// String returns the source-level readable name, e.g. List<String>.
	String() string
	// Erasure strips type arguments and collapses variables to their bounds.
	Erasure() Type

	// typeNode is a marker so only this package defines bindings.
	typeNode()
}

type typeBase struct {
	id int
}

func (b *typeBase) ID() int   { return b.id }
func (b *typeBase) typeNode() {}

// ClassType is implemented by the class-like kinds: declarations,
// parameterized types and raw types.
type ClassType interface {
	Type
	// Declaration is the generic (or plain) declaration behind this type.
	Declaration() *ReferenceBinding
	Superclass() Type
	Interfaces() []Type
	Methods() []*MethodBinding
	Fields() []*FieldBinding
}

// IsReference reports whether values of t are references.
func IsReference(t Type) bool {
	switch t.Kind() {
	case KindPrimitive:
		return false
	case KindWildcard:
		return false
	}
	return true
}

// IsProper reports whether t mentions no inference variable.
func IsProper(t Type) bool {
	return !Mentions(t, func(v Type) bool { return v.Kind() == KindInferenceVariable })
}

// Mentions reports whether pred holds for t or any type nested inside it.
func Mentions(t Type, pred func(Type) bool) bool {
	if t == nil {
		return false
	}
	if pred(t) {
		return true
	}
	switch tt := t.(type) {
	case *ParameterizedType:
		for _, a := range tt.args {
			if Mentions(a, pred) {
				return true
			}
		}
		if tt.enclosing != nil {
			return Mentions(tt.enclosing, pred)
		}
	case *ArrayType:
		return Mentions(tt.leaf, pred)
	case *WildcardType:
		return Mentions(tt.bound, pred)
	case *IntersectionType:
		for _, c := range tt.types {
			if Mentions(c, pred) {
				return true
			}
		}
	}
	return false
}

// Collect returns every distinct type nested in t (t included) for which
// pred holds, in first-seen order.
func Collect(t Type, pred func(Type) bool) []Type {
	var out []Type
	seen := map[int]bool{}
	Mentions(t, func(v Type) bool {
		if pred(v) && !seen[v.ID()] {
			seen[v.ID()] = true
			out = append(out, v)
		}
		return false
	})
	return out
}

func joinTypes(ts []Type, sep string) string {
	var sb strings.Builder
	for i, t := range ts {
		if i > 0 {
			sb.WriteString(sep)
		}
		if t == nil {
			sb.WriteString("<nil>")
			continue
		}
		sb.WriteString(t.String())
	}
	return sb.String()
}

// TypeList renders a comma separated list, used for signatures and keys.
func TypeList(ts []Type) string { return joinTypes(ts, ", ") }
