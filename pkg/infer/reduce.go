package infer

import (
	"javasema/pkg/types"
)

// Constraint reduction turns a formula over types that may mention
// inference variables into bounds. Each reduce method answers false when
// the formula is false.

// reduceCompatible reduces ‹s → t›, a loose invocation context when loose
// is set, strict otherwise.
func (bs *BoundSet) reduceCompatible(s, t types.Type, loose bool) bool {
	if types.IsProper(s) && types.IsProper(t) {
		var c types.Compatibility
		if loose {
			c = bs.env.LooseCompatibility(s, t)
		} else {
			c = bs.env.Compatibility(s, t)
		}
		switch c {
		case types.Incompatible:
			return false
		case types.UncheckedCompatible:
			bs.unchecked = true
		}
		return true
	}
	if p, ok := s.(*types.PrimitiveType); ok {
		if !loose {
			return false
		}
		box := bs.env.Box(p)
		if box == nil {
			return false
		}
		return bs.reduceCompatible(box, t, loose)
	}
	if p, ok := t.(*types.PrimitiveType); ok {
		if !loose {
			return false
		}
		box := bs.env.Box(p)
		if box == nil {
			return false
		}
		return bs.reduceSame(s, box)
	}
	if bs.uncheckedOnly(s, t) {
		bs.unchecked = true
		return true
	}
	return bs.reduceSubtype(s, t)
}

// uncheckedOnly reports whether s reaches the generic class of t only
// through a raw supertype, which makes ‹s → t› hold by unchecked
// conversion.
func (bs *BoundSet) uncheckedOnly(s, t types.Type) bool {
	switch tt := t.(type) {
	case *types.ParameterizedType:
		if _, isVar := bs.isVariable(s); isVar {
			return false
		}
		sup := bs.env.FindSuperTypeOriginatingFrom(s, tt.Declaration())
		return sup != nil && sup.Kind() == types.KindRaw
	case *types.ArrayType:
		sa, ok := s.(*types.ArrayType)
		if !ok || sa.Dimensions() != tt.Dimensions() {
			return false
		}
		return bs.uncheckedOnly(sa.LeafComponentType(), tt.LeafComponentType())
	}
	return false
}

// reduceSubtype reduces ‹s <: t›.
func (bs *BoundSet) reduceSubtype(s, t types.Type) bool {
	if s == t {
		return true
	}
	if types.IsProper(s) && types.IsProper(t) {
		return bs.env.IsSubtype(s, t)
	}
	if s.Kind() == types.KindNull {
		if v, ok := bs.isVariable(t); ok {
			bs.addSoft(v, Lower, s)
		}
		return true
	}
	if t.Kind() == types.KindNull {
		return false
	}
	if v, ok := bs.isVariable(s); ok {
		bs.add(v, Upper, t)
		return true
	}
	if v, ok := bs.isVariable(t); ok {
		bs.add(v, Lower, s)
		return true
	}

	switch tt := t.(type) {
	case *types.ParameterizedType:
		return bs.reduceToParameterized(s, tt)
	case *types.ArrayType:
		return bs.reduceToArray(s, tt)
	case *types.IntersectionType:
		for _, c := range tt.Types() {
			if !bs.reduceSubtype(s, c) {
				return false
			}
		}
		return true
	case *types.TypeVariable:
		if it, ok := s.(*types.IntersectionType); ok {
			for _, c := range it.Types() {
				if c == types.Type(tt) {
					return true
				}
			}
		}
		if lb := tt.LowerBound(); lb != nil {
			return bs.reduceSubtype(s, lb)
		}
		return false
	case types.ClassType:
		// a non-generic class or a raw type: only the erasures matter
		return bs.env.FindSuperTypeOriginatingFrom(s.Erasure(), tt.Declaration()) != nil
	}
	return false
}

// reduceToParameterized handles ‹s <: G<A1..An>›: the matching supertype
// of s must have arguments contained by each Ai.
func (bs *BoundSet) reduceToParameterized(s types.Type, t *types.ParameterizedType) bool {
	var sup types.Type
	switch ss := s.(type) {
	case *types.IntersectionType:
		for _, c := range ss.Types() {
			if sup = bs.env.FindSuperTypeOriginatingFrom(c, t.Declaration()); sup != nil {
				break
			}
		}
	case *types.TypeVariable:
		for _, b := range ss.Bounds() {
			if sup = bs.env.FindSuperTypeOriginatingFrom(b, t.Declaration()); sup != nil {
				break
			}
		}
	default:
		sup = bs.env.FindSuperTypeOriginatingFrom(s, t.Declaration())
	}
	if sup == nil {
		return false
	}
	ps, ok := sup.(*types.ParameterizedType)
	if !ok {
		// raw or the bare declaration: no argument can be checked
		return false
	}
	sargs, targs := ps.Arguments(), t.Arguments()
	if len(sargs) != len(targs) {
		return false
	}
	for i := range targs {
		if !bs.reduceContained(sargs[i], targs[i]) {
			return false
		}
	}
	if t.Enclosing() != nil && ps.Enclosing() != nil {
		return bs.reduceSubtype(ps.Enclosing(), t.Enclosing())
	}
	return true
}

func (bs *BoundSet) reduceToArray(s types.Type, t *types.ArrayType) bool {
	var sa *types.ArrayType
	switch ss := s.(type) {
	case *types.ArrayType:
		sa = ss
	case *types.TypeVariable:
		for _, b := range ss.Bounds() {
			if a, ok := b.(*types.ArrayType); ok {
				sa = a
				break
			}
		}
	}
	if sa == nil {
		return false
	}
	se, te := sa.ElementType(), t.ElementType()
	if se.Kind() == types.KindPrimitive || te.Kind() == types.KindPrimitive {
		return se == te
	}
	return bs.reduceSubtype(se, te)
}

// reduceContained reduces ‹s <= t›: type argument s is contained by t.
func (bs *BoundSet) reduceContained(s, t types.Type) bool {
	tw, ok := t.(*types.WildcardType)
	if !ok {
		if _, sIsWildcard := s.(*types.WildcardType); sIsWildcard {
			return false
		}
		return bs.reduceSame(s, t)
	}
	sw, sIsWildcard := s.(*types.WildcardType)
	object := types.Type(bs.env.Object())
	switch tw.BoundKind {
	case types.Unbounded:
		return true
	case types.Extends:
		if !sIsWildcard {
			return bs.reduceSubtype(s, tw.Bound())
		}
		switch sw.BoundKind {
		case types.Unbounded:
			return bs.reduceSubtype(object, tw.Bound())
		case types.Extends:
			return bs.reduceSubtype(sw.Bound(), tw.Bound())
		}
		return bs.reduceSame(object, tw.Bound())
	case types.Super:
		if !sIsWildcard {
			return bs.reduceSubtype(tw.Bound(), s)
		}
		if sw.BoundKind == types.Super {
			return bs.reduceSubtype(tw.Bound(), sw.Bound())
		}
		return false
	}
	return false
}

// reduceSame reduces ‹s = t›.
func (bs *BoundSet) reduceSame(s, t types.Type) bool {
	if s == t {
		return true
	}
	if types.IsProper(s) && types.IsProper(t) {
		return false
	}
	if v, ok := bs.isVariable(s); ok {
		bs.add(v, Same, t)
		return true
	}
	if v, ok := bs.isVariable(t); ok {
		bs.add(v, Same, s)
		return true
	}
	switch ss := s.(type) {
	case *types.ParameterizedType:
		tt, ok := t.(*types.ParameterizedType)
		if !ok || ss.Declaration() != tt.Declaration() {
			return false
		}
		sargs, targs := ss.Arguments(), tt.Arguments()
		for i := range sargs {
			if !bs.reduceSame(sargs[i], targs[i]) {
				return false
			}
		}
		if ss.Enclosing() != nil && tt.Enclosing() != nil {
			return bs.reduceSame(ss.Enclosing(), tt.Enclosing())
		}
		return true
	case *types.ArrayType:
		tt, ok := t.(*types.ArrayType)
		if !ok {
			return false
		}
		return bs.reduceSame(ss.ElementType(), tt.ElementType())
	case *types.WildcardType:
		tt, ok := t.(*types.WildcardType)
		if !ok || ss.BoundKind != tt.BoundKind {
			return false
		}
		if ss.BoundKind == types.Unbounded {
			return true
		}
		return bs.reduceSame(ss.Bound(), tt.Bound())
	case *types.IntersectionType:
		tt, ok := t.(*types.IntersectionType)
		if !ok || len(ss.Types()) != len(tt.Types()) {
			return false
		}
		for i, c := range ss.Types() {
			if !bs.reduceSame(c, tt.Types()[i]) {
				return false
			}
		}
		return true
	}
	return false
}
