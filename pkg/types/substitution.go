package types

// Substitution maps type variables to types.
type Substitution interface {
	Substitute(tv *TypeVariable) Type
	// IsRawSubstitution is true when the substitution erases: parameterized
	// types it touches become raw.
	IsRawSubstitution() bool
}

// InferenceSubstitution also replaces inference variables.
type InferenceSubstitution interface {
	Substitution
	SubstituteInference(iv *InferenceVariable) Type
}

// MapSubstitution replaces the listed variables and defers to Next for the
// rest.
type MapSubstitution struct {
	Vars map[*TypeVariable]Type
	Raw  bool
	Next Substitution
}

// NewMapSubstitution pairs vars with args by position.
func NewMapSubstitution(vars []*TypeVariable, args []Type) *MapSubstitution {
	m := &MapSubstitution{Vars: make(map[*TypeVariable]Type, len(vars))}
	for i, v := range vars {
		if i < len(args) {
			m.Vars[v] = args[i]
		}
	}
	return m
}

func (m *MapSubstitution) Substitute(tv *TypeVariable) Type {
	if t, ok := m.Vars[tv]; ok {
		return t
	}
	if m.Next != nil {
		return m.Next.Substitute(tv)
	}
	return tv
}

func (m *MapSubstitution) IsRawSubstitution() bool {
	return m.Raw || (m.Next != nil && m.Next.IsRawSubstitution())
}

// Substitute replaces variables in t. When nothing changes the input is
// returned as is, so callers can detect no-ops with ==. Raw types are never
// rewritten.
func Substitute(s Substitution, t Type) Type {
	if s == nil || t == nil {
		return t
	}
	switch tt := t.(type) {
	case *TypeVariable:
		return s.Substitute(tt)

	case *InferenceVariable:
		if is, ok := s.(InferenceSubstitution); ok {
			return is.SubstituteInference(tt)
		}
		return tt

	case *ParameterizedType:
		enclosing := tt.enclosing
		if enclosing != nil {
			enclosing = Substitute(s, enclosing)
		}
		args, changed := SubstituteAll(s, tt.args)
		if !changed && enclosing == tt.enclosing {
			return tt
		}
		if s.IsRawSubstitution() {
			return tt.env.CreateRawType(tt.generic, enclosing)
		}
		return tt.env.CreateParameterizedType(tt.generic, args, enclosing)

	case *RawType:
		return tt

	case *ArrayType:
		leaf := Substitute(s, tt.leaf)
		if leaf == tt.leaf {
			return tt
		}
		return tt.env.CreateArrayType(leaf, tt.dimensions)

	case *WildcardType:
		if tt.bound == nil {
			return tt
		}
		bound := Substitute(s, tt.bound)
		if bound == tt.bound {
			return tt
		}
		if bw, ok := bound.(*WildcardType); ok {
			// ? extends (? super X) and friends collapse to the usable bound
			switch {
			case tt.BoundKind == Extends && bw.BoundKind == Extends:
				bound = bw.bound
			case tt.BoundKind == Super && bw.BoundKind == Super:
				bound = bw.bound
			default:
				return tt.env.CreateWildcard(Unbounded, nil)
			}
		}
		return tt.env.CreateWildcard(tt.BoundKind, bound)

	case *IntersectionType:
		comps, changed := SubstituteAll(s, tt.types)
		if !changed {
			return tt
		}
		return tt.env.CreateIntersection(comps...)
	}
	return t
}

// SubstituteAll substitutes each element. The input slice is returned when
// no element changed.
func SubstituteAll(s Substitution, ts []Type) ([]Type, bool) {
	var out []Type
	for i, t := range ts {
		st := Substitute(s, t)
		if st != t && out == nil {
			out = make([]Type, len(ts))
			copy(out, ts[:i])
		}
		if out != nil {
			out[i] = st
		}
	}
	if out == nil {
		return ts, false
	}
	return out, true
}

// EraseAll returns the erasures of ts.
func EraseAll(ts []Type) []Type {
	out := make([]Type, len(ts))
	for i, t := range ts {
		out[i] = t.Erasure()
	}
	return out
}
