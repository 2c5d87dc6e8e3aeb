package types

import "strconv"

// TypeVariable is a declared type parameter of a generic type or method.
// Bounds are installed after creation because they may mention the variable
// itself (T extends Comparable<T>).
type TypeVariable struct {
	typeBase
	env *Environment

	Name string
	// Rank is the declaration position among its siblings.
	Rank int

	declaringType   *ReferenceBinding
	declaringMethod *MethodBinding

	bounds []Type
	// captures only
	lowerBound Type
	captured   bool
}

func (tv *TypeVariable) Kind() Kind     { return KindTypeVariable }
func (tv *TypeVariable) String() string { return tv.Name }

// Erasure is the erasure of the first bound, or Object.
func (tv *TypeVariable) Erasure() Type {
	if len(tv.bounds) == 0 {
		return tv.env.Object()
	}
	return tv.bounds[0].Erasure()
}

// SetBounds installs the declared bounds, class bound first.
func (tv *TypeVariable) SetBounds(bounds ...Type) {
	tv.bounds = bounds
}

// Bounds returns the declared bounds; an unbounded variable answers Object.
func (tv *TypeVariable) Bounds() []Type {
	if len(tv.bounds) == 0 {
		return []Type{tv.env.Object()}
	}
	return tv.bounds
}

// DeclaredBounds returns only what the source wrote.
func (tv *TypeVariable) DeclaredBounds() []Type { return tv.bounds }

// FirstBound is used for erasure and as the substitution default.
func (tv *TypeVariable) FirstBound() Type { return tv.Bounds()[0] }

// Superclass is the class bound, or Object when all bounds are interfaces.
func (tv *TypeVariable) Superclass() Type {
	if len(tv.bounds) > 0 && !isInterfaceType(tv.bounds[0]) {
		return tv.bounds[0]
	}
	return tv.env.Object()
}

// SuperInterfaces are the interface bounds.
func (tv *TypeVariable) SuperInterfaces() []Type {
	var out []Type
	for _, b := range tv.bounds {
		if isInterfaceType(b) {
			out = append(out, b)
		}
	}
	return out
}

// LowerBound is set on capture variables of ? super B.
func (tv *TypeVariable) LowerBound() Type { return tv.lowerBound }

// IsCapture reports a variable produced by capture conversion.
func (tv *TypeVariable) IsCapture() bool { return tv.captured }

func (tv *TypeVariable) DeclaringType() *ReferenceBinding { return tv.declaringType }
func (tv *TypeVariable) DeclaringMethod() *MethodBinding  { return tv.declaringMethod }
func (tv *TypeVariable) IsMethodVariable() bool           { return tv.declaringMethod != nil }

func isInterfaceType(t Type) bool {
	if ct, ok := t.(ClassType); ok {
		return ct.Declaration().IsInterface()
	}
	return false
}

// SiteID identifies a call site within one compilation unit.
type SiteID int

// InferenceVariable stands for an undetermined type argument of one
// generic method invocation. Variables are interned per (parameter, site,
// rank) by the inference engine's table, never by the Environment.
type InferenceVariable struct {
	typeBase
	Parameter *TypeVariable
	Site      SiteID
	Rank      int
}

// NewInferenceVariable allocates a fresh variable. Callers intern.
func NewInferenceVariable(env *Environment, param *TypeVariable, site SiteID, rank int) *InferenceVariable {
	return &InferenceVariable{
		typeBase:  typeBase{env.nextID()},
		Parameter: param,
		Site:      site,
		Rank:      rank,
	}
}

func (iv *InferenceVariable) Kind() Kind     { return KindInferenceVariable }
func (iv *InferenceVariable) String() string { return iv.Parameter.Name + "#" + strconv.Itoa(iv.Rank) }
func (iv *InferenceVariable) Erasure() Type  { return iv.Parameter.Erasure() }

// BoundKind of a wildcard.
type BoundKind uint8

const (
	Unbounded BoundKind = iota
	Extends
	Super
)

// WildcardType is a type argument ?, ? extends B or ? super B.
type WildcardType struct {
	typeBase
	env       *Environment
	BoundKind BoundKind
	bound     Type
}

func (w *WildcardType) Kind() Kind  { return KindWildcard }
func (w *WildcardType) Bound() Type { return w.bound }

func (w *WildcardType) String() string {
	switch w.BoundKind {
	case Extends:
		return "? extends " + w.bound.String()
	case Super:
		return "? super " + w.bound.String()
	}
	return "?"
}

func (w *WildcardType) Erasure() Type {
	if w.BoundKind == Extends {
		return w.bound.Erasure()
	}
	return w.env.Object()
}

// UpperBound is the extends bound, or Object.
func (w *WildcardType) UpperBound() Type {
	if w.BoundKind == Extends {
		return w.bound
	}
	return w.env.Object()
}

// LowerBound is the super bound, or nil.
func (w *WildcardType) LowerBound() Type {
	if w.BoundKind == Super {
		return w.bound
	}
	return nil
}

// IntersectionType is T1 & T2 & ... as produced by glb and multi-bound
// variables. The class component, if any, comes first.
type IntersectionType struct {
	typeBase
	env   *Environment
	types []Type
}

func (it *IntersectionType) Kind() Kind     { return KindIntersection }
func (it *IntersectionType) Types() []Type  { return it.types }
func (it *IntersectionType) String() string { return joinTypes(it.types, " & ") }
func (it *IntersectionType) Erasure() Type  { return it.types[0].Erasure() }

// ArrayType is Leaf[]...[]; the leaf is never itself an array.
type ArrayType struct {
	typeBase
	env        *Environment
	leaf       Type
	dimensions int
	elem       Type
}

func (a *ArrayType) Kind() Kind              { return KindArray }
func (a *ArrayType) LeafComponentType() Type { return a.leaf }
func (a *ArrayType) Dimensions() int         { return a.dimensions }
func (a *ArrayType) ElementType() Type       { return a.elem }

func (a *ArrayType) String() string {
	s := a.leaf.String()
	for i := 0; i < a.dimensions; i++ {
		s += "[]"
	}
	return s
}

func (a *ArrayType) Erasure() Type {
	le := a.leaf.Erasure()
	if le == a.leaf {
		return a
	}
	return a.env.CreateArrayType(le, a.dimensions)
}
