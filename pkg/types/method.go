package types

import (
	"strings"

	"javasema/pkg/errors"
)

// ConstructorSelector is the selector of every constructor.
const ConstructorSelector = "<init>"

// MethodBinding is a declared method, or a view of one through a
// substitution (member of a parameterized type, raw member, inferred
// invocation). Views keep a pointer to the declaration they came from and
// answer identity questions through it.
type MethodBinding struct {
	Selector         string
	Modifiers        Modifiers
	DeclaringType    Type // a ClassType
	Parameters       []Type
	ReturnType       Type
	ThrownExceptions []Type
	TypeVariables    []*TypeVariable
	// TypeArguments is set on inferred (or explicitly parameterized) views.
	TypeArguments []Type
	Pos           errors.Position

	// Unchecked marks an inferred view whose applicability needed an
	// unchecked conversion; its return and thrown types are erased.
	Unchecked bool

	original *MethodBinding
	raw      bool
}

// SetTypeVariables installs the method's own type parameters.
func (m *MethodBinding) SetTypeVariables(tvs []*TypeVariable) {
	for i, tv := range tvs {
		tv.Rank = i
		tv.declaringMethod = m
	}
	m.TypeVariables = tvs
}

// Original returns the declaration this binding derives from (itself for
// declarations).
func (m *MethodBinding) Original() *MethodBinding {
	if m.original == nil {
		return m
	}
	return m.original
}

// SameDeclaration reports whether m and other derive from one declaration.
func (m *MethodBinding) SameDeclaration(other *MethodBinding) bool {
	return other != nil && m.Original() == other.Original()
}

func (m *MethodBinding) IsConstructor() bool { return m.Selector == ConstructorSelector }
func (m *MethodBinding) IsStatic() bool      { return m.Modifiers.Has(Static) }
func (m *MethodBinding) IsAbstract() bool    { return m.Modifiers.Has(Abstract) }
func (m *MethodBinding) IsDefault() bool     { return m.Modifiers.Has(Default) }
func (m *MethodBinding) IsFinal() bool       { return m.Modifiers.Has(Final) }
func (m *MethodBinding) IsPrivate() bool     { return m.Modifiers.Has(Private) }
func (m *MethodBinding) IsPublic() bool      { return m.Modifiers.Has(Public) }
func (m *MethodBinding) IsVarargs() bool     { return m.Modifiers.Has(Varargs) }
func (m *MethodBinding) IsSynthetic() bool   { return m.Modifiers.Has(Synthetic) }
func (m *MethodBinding) IsBridge() bool      { return m.Modifiers.Has(Bridge) }
func (m *MethodBinding) IsGeneric() bool     { return len(m.TypeVariables) > 0 }
func (m *MethodBinding) IsRaw() bool         { return m.raw }

// IsParameterized reports an inferred or explicitly parameterized view.
func (m *MethodBinding) IsParameterized() bool { return m.TypeArguments != nil }

// DeclaringClass is the declaration of the declaring type.
func (m *MethodBinding) DeclaringClass() *ReferenceBinding {
	if ct, ok := m.DeclaringType.(ClassType); ok {
		return ct.Declaration()
	}
	return nil
}

// ErasedParameters returns the parameter erasures.
func (m *MethodBinding) ErasedParameters() []Type { return EraseAll(m.Parameters) }

// HasSameParameterErasures compares erased parameter lists by identity.
func (m *MethodBinding) HasSameParameterErasures(other *MethodBinding) bool {
	if len(m.Parameters) != len(other.Parameters) {
		return false
	}
	for i := range m.Parameters {
		if m.Parameters[i].Erasure() != other.Parameters[i].Erasure() {
			return false
		}
	}
	return true
}

// HasSameParameters compares parameter lists by identity.
func (m *MethodBinding) HasSameParameters(other *MethodBinding) bool {
	if len(m.Parameters) != len(other.Parameters) {
		return false
	}
	for i := range m.Parameters {
		if m.Parameters[i] != other.Parameters[i] {
			return false
		}
	}
	return true
}

// Signature is selector(params), e.g. put(K,V).
func (m *MethodBinding) Signature() string {
	return m.Selector + "(" + joinTypes(m.Parameters, ",") + ")"
}

func (m *MethodBinding) String() string {
	var sb strings.Builder
	if len(m.TypeArguments) > 0 {
		sb.WriteString("<" + joinTypes(m.TypeArguments, ",") + ">")
	} else if len(m.TypeVariables) > 0 {
		vars := make([]Type, len(m.TypeVariables))
		for i, tv := range m.TypeVariables {
			vars[i] = tv
		}
		sb.WriteString("<" + joinTypes(vars, ",") + ">")
	}
	if m.DeclaringType != nil {
		sb.WriteString(m.DeclaringType.String())
		sb.WriteByte('.')
	}
	sb.WriteString(m.Signature())
	return sb.String()
}

func (m *MethodBinding) viewOf(declaring Type) *MethodBinding {
	return &MethodBinding{
		Selector:      m.Selector,
		Modifiers:     m.Modifiers,
		DeclaringType: declaring,
		Pos:           m.Pos,
		original:      m.Original(),
	}
}

// NewParameterizedMethod views m as a member of declaring, whose variables
// are mapped by s. A generic m gets fresh type variables whose bounds see
// the substitution.
func NewParameterizedMethod(m *MethodBinding, declaring Type, s Substitution) *MethodBinding {
	pm := m.viewOf(declaring)
	subst := s
	if len(m.TypeVariables) > 0 {
		local := &MapSubstitution{Vars: make(map[*TypeVariable]Type, len(m.TypeVariables)), Next: s}
		fresh := make([]*TypeVariable, len(m.TypeVariables))
		for i, tv := range m.TypeVariables {
			fresh[i] = tv.env.CreateTypeVariable(tv.Name)
			local.Vars[tv] = fresh[i]
		}
		for i, tv := range m.TypeVariables {
			bounds, _ := SubstituteAll(local, tv.bounds)
			fresh[i].SetBounds(bounds...)
		}
		pm.SetTypeVariables(fresh)
		subst = local
	}
	pm.Parameters, _ = SubstituteAll(subst, m.Parameters)
	pm.ReturnType = Substitute(subst, m.ReturnType)
	pm.ThrownExceptions, _ = SubstituteAll(subst, m.ThrownExceptions)
	return pm
}

// NewRawMethod erases m as seen through a raw declaring type, or as a raw
// invocation of a generic method.
func NewRawMethod(m *MethodBinding, declaring Type) *MethodBinding {
	rm := m.viewOf(declaring)
	rm.Parameters = EraseAll(m.Parameters)
	rm.ReturnType = m.ReturnType.Erasure()
	rm.ThrownExceptions = EraseAll(m.ThrownExceptions)
	rm.raw = true
	return rm
}

// NewInferredMethod instantiates the generic method m with typeArgs. With
// unchecked set, return and thrown types are erased.
func NewInferredMethod(m *MethodBinding, typeArgs []Type, unchecked bool) *MethodBinding {
	im := m.viewOf(m.DeclaringType)
	s := NewMapSubstitution(m.TypeVariables, typeArgs)
	im.TypeArguments = append([]Type{}, typeArgs...)
	im.Unchecked = unchecked
	im.Parameters, _ = SubstituteAll(s, m.Parameters)
	if unchecked {
		im.ReturnType = Substitute(s, m.ReturnType).Erasure()
		im.ThrownExceptions = EraseAll(m.ThrownExceptions)
	} else {
		im.ReturnType = Substitute(s, m.ReturnType)
		im.ThrownExceptions, _ = SubstituteAll(s, m.ThrownExceptions)
	}
	return im
}

// NewBridgeMethod synthesizes the bridge for inherited whose body calls
// target. The bridge has inherited's erased signature.
func NewBridgeMethod(inherited, target *MethodBinding, declaring *ReferenceBinding, thrown []Type) *MethodBinding {
	orig := inherited.Original()
	mods := (target.Modifiers & AccessMask) | Synthetic | Bridge
	if target.IsVarargs() {
		mods |= Varargs
	}
	return &MethodBinding{
		Selector:         target.Selector,
		Modifiers:        mods,
		DeclaringType:    declaring,
		Parameters:       EraseAll(orig.Parameters),
		ReturnType:       orig.ReturnType.Erasure(),
		ThrownExceptions: thrown,
		Pos:              target.Pos,
	}
}

// FieldBinding is a declared field, or its view through a substitution.
type FieldBinding struct {
	Name          string
	Type          Type
	Modifiers     Modifiers
	DeclaringType Type
	Pos           errors.Position

	original *FieldBinding
}

func (f *FieldBinding) IsStatic() bool { return f.Modifiers.Has(Static) }
func (f *FieldBinding) IsFinal() bool  { return f.Modifiers.Has(Final) }

// Original returns the declaration this binding derives from.
func (f *FieldBinding) Original() *FieldBinding {
	if f.original == nil {
		return f
	}
	return f.original
}

func (f *FieldBinding) String() string {
	if f.DeclaringType != nil {
		return f.DeclaringType.String() + "." + f.Name
	}
	return f.Name
}
