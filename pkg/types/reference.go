package types

import (
	"strconv"
	"strings"
	"sync/atomic"

	"javasema/pkg/errors"
)

// Nesting tells where a reference type was declared.
type Nesting uint8

const (
	TopLevel Nesting = iota
	Member
	Local
	Anonymous
)

// Package is a named package. Its type table is guarded by the owning
// Environment.
type Package struct {
	Name  string
	types map[string]*ReferenceBinding
}

func (p *Package) String() string { return p.Name }

// ReferenceBinding is a class, interface, enum, record or annotation type
// declaration. For a generic declaration it also stands for the type as
// seen from inside its own body (arguments are its own variables).
//
// Declarations are built by a single writer (the unit that declares them)
// and read by everyone afterwards.
type ReferenceBinding struct {
	typeBase
	env *Environment

	Name      string // simple name, empty for anonymous types
	Package   *Package
	Enclosing *ReferenceBinding
	Nesting   Nesting
	Modifiers Modifiers
	Pos       errors.Position

	// InStaticContext is set for local and anonymous types declared in a
	// static method or initializer: they have no enclosing instance.
	InStaticContext bool
	// EnclosingMethod is the method a local or anonymous type lives in.
	EnclosingMethod *MethodBinding

	TypeVariables []*TypeVariable

	superclass  Type
	interfaces  []Type
	methods     []*MethodBinding
	fields      []*FieldBinding
	memberTypes []*ReferenceBinding
	localIndex  int

	// version is bumped on every member mutation so derived types can
	// notice stale caches.
	version atomic.Uint64
}

func (r *ReferenceBinding) Kind() Kind                     { return KindClass }
func (r *ReferenceBinding) Erasure() Type                  { return r }
func (r *ReferenceBinding) Declaration() *ReferenceBinding { return r }
func (r *ReferenceBinding) Environment() *Environment      { return r.env }
func (r *ReferenceBinding) Superclass() Type               { return r.superclass }
func (r *ReferenceBinding) Interfaces() []Type             { return r.interfaces }
func (r *ReferenceBinding) Methods() []*MethodBinding      { return r.methods }
func (r *ReferenceBinding) Fields() []*FieldBinding        { return r.fields }
func (r *ReferenceBinding) MemberTypes() []*ReferenceBinding {
	return r.memberTypes
}

func (r *ReferenceBinding) IsInterface() bool  { return r.Modifiers.Has(Interface) }
func (r *ReferenceBinding) IsAbstract() bool   { return r.Modifiers.Has(Abstract) || r.IsInterface() }
func (r *ReferenceBinding) IsFinal() bool      { return r.Modifiers.Has(Final) }
func (r *ReferenceBinding) IsEnum() bool       { return r.Modifiers.Has(Enum) }
func (r *ReferenceBinding) IsStatic() bool     { return r.Modifiers.Has(Static) || r.Nesting == TopLevel }
func (r *ReferenceBinding) IsGeneric() bool    { return len(r.TypeVariables) > 0 }
func (r *ReferenceBinding) IsLocal() bool      { return r.Nesting == Local || r.Nesting == Anonymous }
func (r *ReferenceBinding) IsAnonymous() bool  { return r.Nesting == Anonymous }
func (r *ReferenceBinding) IsMemberType() bool { return r.Nesting == Member }

// HasEnclosingInstance reports whether instances of r carry a reference to
// an instance of the lexically enclosing type.
func (r *ReferenceBinding) HasEnclosingInstance() bool {
	switch r.Nesting {
	case TopLevel:
		return false
	case Member:
		return !r.Modifiers.Has(Static) && !r.Enclosing.IsInterface() && !r.IsInterface() && !r.IsEnum() && !r.Modifiers.Has(Record)
	}
	return !r.InStaticContext && !r.Modifiers.Has(Static)
}

// SourceName is the dotted name relative to the package, e.g. Map.Entry.
func (r *ReferenceBinding) SourceName() string {
	name := r.Name
	if r.IsAnonymous() {
		name = "new " + r.anonymousSuperName() + "(){}"
	}
	if r.Enclosing != nil && r.Nesting == Member {
		return r.Enclosing.SourceName() + "." + name
	}
	return name
}

func (r *ReferenceBinding) anonymousSuperName() string {
	if len(r.interfaces) > 0 {
		return r.interfaces[0].Erasure().(*ReferenceBinding).SourceName()
	}
	if r.superclass != nil {
		return r.superclass.Erasure().(*ReferenceBinding).SourceName()
	}
	return "Object"
}

// QualifiedName is the fully qualified source name. Local and anonymous
// types have none and answer their source name.
func (r *ReferenceBinding) QualifiedName() string {
	if r.IsLocal() {
		return r.SourceName()
	}
	if r.Package == nil || r.Package.Name == "" {
		return r.SourceName()
	}
	return r.Package.Name + "." + r.SourceName()
}

// BinaryName is the JVM binary name, e.g. java/util/Map$Entry or p/Outer$1Local.
func (r *ReferenceBinding) BinaryName() string {
	if r.Enclosing != nil {
		switch r.Nesting {
		case Member:
			return r.Enclosing.BinaryName() + "$" + r.Name
		case Local:
			return r.Enclosing.BinaryName() + "$" + strconv.Itoa(r.localIndex) + r.Name
		case Anonymous:
			return r.Enclosing.BinaryName() + "$" + strconv.Itoa(r.localIndex)
		}
	}
	if r.Package == nil || r.Package.Name == "" {
		return r.Name
	}
	return strings.ReplaceAll(r.Package.Name, ".", "/") + "/" + r.Name
}

func (r *ReferenceBinding) String() string {
	if !r.IsGeneric() {
		return r.SourceName()
	}
	vars := make([]Type, len(r.TypeVariables))
	for i, tv := range r.TypeVariables {
		vars[i] = tv
	}
	return r.SourceName() + "<" + joinTypes(vars, ",") + ">"
}

// --- Mutation (single writer) ---

// SetSupertypes connects the declared supertypes. Interfaces without an
// explicit superinterface still answer Object through DirectSupertypes.
func (r *ReferenceBinding) SetSupertypes(superclass Type, interfaces []Type) {
	r.superclass = superclass
	r.interfaces = interfaces
	r.version.Add(1)
}

// SetTypeVariables installs the declared type parameters in rank order.
func (r *ReferenceBinding) SetTypeVariables(tvs []*TypeVariable) {
	for i, tv := range tvs {
		tv.Rank = i
		tv.declaringType = r
	}
	r.TypeVariables = tvs
	r.version.Add(1)
}

// AddMethod declares m on r.
func (r *ReferenceBinding) AddMethod(m *MethodBinding) *MethodBinding {
	if m.DeclaringType == nil {
		m.DeclaringType = r
	}
	r.methods = append(r.methods, m)
	r.version.Add(1)
	return m
}

// AddField declares f on r.
func (r *ReferenceBinding) AddField(f *FieldBinding) *FieldBinding {
	if f.DeclaringType == nil {
		f.DeclaringType = r
	}
	r.fields = append(r.fields, f)
	r.version.Add(1)
	return f
}

func (r *ReferenceBinding) addMemberType(m *ReferenceBinding) {
	r.memberTypes = append(r.memberTypes, m)
	r.version.Add(1)
}

// --- Lookup ---

// GetMethods returns the declared methods named selector.
func (r *ReferenceBinding) GetMethods(selector string) []*MethodBinding {
	return methodsNamed(r.methods, selector)
}

// GetField returns the declared field named name, or nil.
func (r *ReferenceBinding) GetField(name string) *FieldBinding {
	for _, f := range r.fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// GetMemberType returns the declared member type named name, or nil.
func (r *ReferenceBinding) GetMemberType(name string) *ReferenceBinding {
	for _, m := range r.memberTypes {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// IsEnclosedBy reports whether outer lexically encloses r (directly or not).
func (r *ReferenceBinding) IsEnclosedBy(outer *ReferenceBinding) bool {
	for e := r.Enclosing; e != nil; e = e.Enclosing {
		if e == outer {
			return true
		}
	}
	return false
}

// Outermost returns the top level type enclosing r.
func (r *ReferenceBinding) Outermost() *ReferenceBinding {
	t := r
	for t.Enclosing != nil {
		t = t.Enclosing
	}
	return t
}

func methodsNamed(ms []*MethodBinding, selector string) []*MethodBinding {
	var out []*MethodBinding
	for _, m := range ms {
		if m.Selector == selector {
			out = append(out, m)
		}
	}
	return out
}
