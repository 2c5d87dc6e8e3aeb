package verifier

import (
	set "github.com/hashicorp/go-set/v2"

	"javasema/pkg/types"
)

// candidate is an inherited method, viewed through the supertype it comes
// from.
type candidate struct {
	method *types.MethodBinding
	// overridden is set when another inherited method overrides this one.
	overridden bool
	// implemented is set when a declared method overrides this one.
	implemented bool
}

// supertypes lists every proper supertype of t once: the superclass chain
// first, then the interfaces breadth first.
func (w *verification) supertypes() []types.ClassType {
	visited := set.New[*types.ReferenceBinding](8)
	visited.Insert(w.t)
	var out []types.ClassType
	pending := append([]types.Type{}, w.t.Interfaces()...)
	for sup := w.t.Superclass(); sup != nil; {
		ct, ok := sup.(types.ClassType)
		if !ok || !visited.Insert(ct.Declaration()) {
			break
		}
		out = append(out, ct)
		pending = append(pending, ct.Interfaces()...)
		sup = ct.Superclass()
	}
	for len(pending) > 0 {
		next := pending[0]
		pending = pending[1:]
		ct, ok := next.(types.ClassType)
		if !ok || !visited.Insert(ct.Declaration()) {
			continue
		}
		out = append(out, ct)
		pending = append(pending, ct.Interfaces()...)
	}
	return out
}

// collectInherited groups the inheritable methods of every supertype by
// selector and marks those overridden within the hierarchy.
func (w *verification) collectInherited() (map[string][]*candidate, []string) {
	bySelector := make(map[string][]*candidate)
	var order []string
	for _, st := range w.supertypes() {
		fromInterface := st.Declaration().IsInterface()
		for _, m := range st.Methods() {
			if m.IsConstructor() || m.IsPrivate() || m.IsSynthetic() || !w.inheritable(m) {
				continue
			}
			if fromInterface && m.IsStatic() {
				continue
			}
			if _, seen := bySelector[m.Selector]; !seen {
				order = append(order, m.Selector)
			}
			bySelector[m.Selector] = append(bySelector[m.Selector], &candidate{method: m})
		}
	}
	for _, list := range bySelector {
		for _, a := range list {
			for _, b := range list {
				if a != b && !b.overridden && w.inheritedOverrides(a.method, b.method) {
					b.overridden = true
				}
			}
		}
	}
	return bySelector, order
}

// inheritable reports whether m reaches t: package private methods stop at
// the package boundary.
func (w *verification) inheritable(m *types.MethodBinding) bool {
	if m.Modifiers.Visibility() != types.VisibilityPackage {
		return true
	}
	decl := m.DeclaringClass()
	return decl == nil || decl.Package == w.t.Package
}

// inheritedOverrides reports whether a, declared in a subtype of b's
// declaring class, overrides b.
func (w *verification) inheritedOverrides(a, b *types.MethodBinding) bool {
	da, db := a.DeclaringClass(), b.DeclaringClass()
	if da == nil || db == nil || da == db || a.IsStatic() {
		return false
	}
	if w.env.FindSuperTypeOriginatingFrom(da, db) == nil {
		return false
	}
	_, ok := subsignature(a, b)
	return ok
}
