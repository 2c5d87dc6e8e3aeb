package types

import (
	set "github.com/hashicorp/go-set/v2"
)

// Compatibility is the outcome of a conversion test.
type Compatibility uint8

const (
	Incompatible Compatibility = iota
	Compatible
	// UncheckedCompatible holds only through an unchecked conversion
	// (raw to parameterized). It is allowed but flagged.
	UncheckedCompatible
)

func (c Compatibility) String() string {
	switch c {
	case Compatible:
		return "compatible"
	case UncheckedCompatible:
		return "unchecked"
	}
	return "incompatible"
}

// Well-known names used by array subtyping.
const (
	CloneableName    = "java.lang.Cloneable"
	SerializableName = "java.io.Serializable"
)

// DirectSupertypes lists the direct supertypes of t, superclass first.
func (env *Environment) DirectSupertypes(t Type) []Type {
	switch tt := t.(type) {
	case ClassType:
		var out []Type
		if sc := tt.Superclass(); sc != nil {
			out = append(out, sc)
		} else if tt.Declaration() != env.object {
			out = append(out, env.object)
		}
		return append(out, tt.Interfaces()...)
	case *TypeVariable:
		out := append([]Type(nil), tt.Bounds()...)
		return out
	case *IntersectionType:
		return tt.types
	case *WildcardType:
		return []Type{tt.UpperBound()}
	case *ArrayType:
		var out []Type
		if IsReference(tt.elem) {
			for _, s := range env.DirectSupertypes(tt.elem) {
				out = append(out, env.CreateArrayType(s, 1))
			}
		}
		out = append(out, env.object)
		if c := env.LookupType(CloneableName); c != nil {
			out = append(out, c)
		}
		if s := env.LookupType(SerializableName); s != nil {
			out = append(out, s)
		}
		return out
	}
	return nil
}

// FindSuperTypeOriginatingFrom walks t's supertypes and answers the first
// one whose declaration is target: a parameterization, a raw type or target
// itself. Nil when t is not a subtype of target.
func (env *Environment) FindSuperTypeOriginatingFrom(t Type, target *ReferenceBinding) Type {
	visited := set.New[int](8)
	var walk func(cur Type) Type
	walk = func(cur Type) Type {
		if cur == nil || !visited.Insert(cur.ID()) {
			return nil
		}
		switch c := cur.(type) {
		case ClassType:
			if c.Declaration() == target {
				return c
			}
		case *ArrayType:
			if target == env.object || target.QualifiedName() == CloneableName || target.QualifiedName() == SerializableName {
				return target
			}
			return nil
		case *NullType, *PrimitiveType:
			return nil
		}
		for _, sup := range env.DirectSupertypes(cur) {
			if r := walk(sup); r != nil {
				return r
			}
		}
		return nil
	}
	return walk(t)
}

// TypeArguments returns the arguments of a class type. A generic
// declaration answers its own variables; raw is true for raw types.
func TypeArguments(t ClassType) (args []Type, raw bool) {
	switch tt := t.(type) {
	case *ParameterizedType:
		return tt.args, false
	case *RawType:
		return tt.Arguments(), true
	case *ReferenceBinding:
		if !tt.IsGeneric() {
			return nil, false
		}
		args = make([]Type, len(tt.TypeVariables))
		for i, tv := range tt.TypeVariables {
			args[i] = tv
		}
		return args, false
	}
	return nil, false
}

// IsSubtype answers s <: t without unchecked conversion. Primitive types
// are only subtypes of themselves here; widening is handled by
// Compatibility.
func (env *Environment) IsSubtype(s, t Type) bool {
	if s == t {
		return true
	}
	if s == nil || t == nil {
		return false
	}
	if s.Kind() == KindNull {
		return IsReference(t)
	}
	if s.Kind() == KindPrimitive || t.Kind() == KindPrimitive {
		return false
	}

	// decompose intersections first
	if it, ok := t.(*IntersectionType); ok {
		for _, c := range it.types {
			if !env.IsSubtype(s, c) {
				return false
			}
		}
		return true
	}
	if it, ok := s.(*IntersectionType); ok {
		for _, c := range it.types {
			if env.IsSubtype(c, t) {
				return true
			}
		}
		return false
	}

	if t == Type(env.object) {
		return s.Kind() != KindWildcard
	}

	switch tt := t.(type) {
	case *TypeVariable:
		if tt.lowerBound != nil && env.IsSubtype(s, tt.lowerBound) {
			return true
		}
		// only a variable whose bounds reach tt
		if sv, ok := s.(*TypeVariable); ok {
			for _, b := range sv.Bounds() {
				if env.IsSubtype(b, tt) {
					return true
				}
			}
		}
		return false
	case *InferenceVariable, *WildcardType:
		return false
	case *ArrayType:
		sa, ok := s.(*ArrayType)
		if !ok {
			if sv, ok := s.(*TypeVariable); ok {
				for _, b := range sv.Bounds() {
					if env.IsSubtype(b, tt) {
						return true
					}
				}
			}
			return false
		}
		se, te := sa.elem, tt.elem
		if se.Kind() == KindPrimitive || te.Kind() == KindPrimitive {
			return se == te
		}
		return env.IsSubtype(se, te)
	}

	target, ok := t.(ClassType)
	if !ok {
		return false
	}
	sup := env.FindSuperTypeOriginatingFrom(s, target.Declaration())
	if sup == nil {
		return false
	}
	if target.Kind() == KindRaw {
		return true
	}
	targs, _ := TypeArguments(target)
	if len(targs) == 0 {
		return true
	}
	supClass, ok := sup.(ClassType)
	if !ok {
		return false
	}
	sargs, raw := TypeArguments(supClass)
	if raw || len(sargs) != len(targs) {
		return false
	}
	for i := range targs {
		if !env.Contains(targs[i], sargs[i]) {
			return false
		}
	}
	return true
}

// Contains answers whether type argument t contains s (JLS 4.5.1).
func (env *Environment) Contains(t, s Type) bool {
	w, ok := t.(*WildcardType)
	if !ok {
		return t == s
	}
	sw, sIsWildcard := s.(*WildcardType)
	switch w.BoundKind {
	case Unbounded:
		return true
	case Extends:
		if sIsWildcard {
			if sw.BoundKind == Super {
				return w.bound == Type(env.object)
			}
			return env.IsSubtype(sw.UpperBound(), w.bound)
		}
		return env.IsSubtype(s, w.bound)
	case Super:
		if sIsWildcard {
			return sw.BoundKind == Super && env.IsSubtype(w.bound, sw.bound)
		}
		return env.IsSubtype(w.bound, s)
	}
	return false
}

// Compatibility classifies assignment of a value of type from to a
// variable of type to, without boxing.
func (env *Environment) Compatibility(from, to Type) Compatibility {
	if from == to {
		return Compatible
	}
	fp, fromPrim := from.(*PrimitiveType)
	tp, toPrim := to.(*PrimitiveType)
	if fromPrim || toPrim {
		if fromPrim && toPrim && IsWidening(fp, tp) {
			return Compatible
		}
		return Incompatible
	}
	if env.IsSubtype(from, to) {
		return Compatible
	}
	if env.isUncheckedConvertible(from, to) {
		return UncheckedCompatible
	}
	return Incompatible
}

// IsCompatibleWith is Compatibility != Incompatible.
func (env *Environment) IsCompatibleWith(from, to Type) bool {
	return env.Compatibility(from, to) != Incompatible
}

// LooseCompatibility extends Compatibility with boxing and unboxing.
func (env *Environment) LooseCompatibility(from, to Type) Compatibility {
	if c := env.Compatibility(from, to); c != Incompatible {
		return c
	}
	if fp, ok := from.(*PrimitiveType); ok && IsReference(to) {
		if box := env.Box(fp); box != nil {
			return env.Compatibility(box, to)
		}
		return Incompatible
	}
	if tp, ok := to.(*PrimitiveType); ok && IsReference(from) {
		if up := env.Unbox(from); up != nil && IsWidening(up, tp) {
			return Compatible
		}
	}
	return Incompatible
}

func (env *Environment) isUncheckedConvertible(from, to Type) bool {
	switch tt := to.(type) {
	case *ParameterizedType:
		sup := env.FindSuperTypeOriginatingFrom(from, tt.generic)
		if sup == nil {
			return false
		}
		return sup.Kind() == KindRaw
	case *ArrayType:
		fa, ok := from.(*ArrayType)
		if !ok || fa.dimensions != tt.dimensions {
			return false
		}
		return env.isUncheckedConvertible(fa.leaf, tt.leaf)
	}
	return false
}

// BoxIfPrimitive returns the wrapper for a primitive, otherwise t.
func (env *Environment) BoxIfPrimitive(t Type) Type {
	if p, ok := t.(*PrimitiveType); ok {
		if box := env.Box(p); box != nil {
			return box
		}
	}
	return t
}
