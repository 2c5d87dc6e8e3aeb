package verifier

import (
	"javasema/pkg/errors"
	"javasema/pkg/types"
)

// checkSelector verifies the declared and inherited methods of one
// selector.
func (w *verification) checkSelector(current []*types.MethodBinding, inherited []*candidate) {
	// 1. Declared methods against everything they override or clash with
	for _, c := range current {
		for _, cand := range inherited {
			m := cand.method
			mt, ok := subsignature(c, m)
			if !ok {
				if !cand.overridden {
					w.checkNameClash(c, m)
				}
				continue
			}
			cand.implemented = true
			if !cand.overridden && !w.checkOverride(c, m, mt) {
				continue
			}
			w.addBridge(m, c, current)
		}
	}

	// 2. What is left is inherited as is
	var pool []*types.MethodBinding
	for _, cand := range inherited {
		if !cand.overridden && !cand.implemented {
			pool = append(pool, cand.method)
		}
	}
	if len(pool) == 0 {
		return
	}
	groups := w.equivalenceGroups(pool)
	selected := make([]*types.MethodBinding, len(groups))
	for i, g := range groups {
		selected[i] = w.checkGroup(g, current)
		w.res.Methods = append(w.res.Methods, selected[i])
	}

	// 3. Groups that are not override-equivalent must not share an erasure
	for i := range groups {
		for j := i + 1; j < len(groups); j++ {
			w.checkInheritedClash(selected[i], selected[j])
		}
	}
}

// equivalenceGroups partitions methods into override-equivalent groups,
// keeping the inheritance order.
func (w *verification) equivalenceGroups(methods []*types.MethodBinding) [][]*types.MethodBinding {
	var groups [][]*types.MethodBinding
	grouped := make([]bool, len(methods))
	for i, m := range methods {
		if grouped[i] {
			continue
		}
		g := []*types.MethodBinding{m}
		for j := i + 1; j < len(methods); j++ {
			if grouped[j] {
				continue
			}
			if overrideEquivalent(m, methods[j]) {
				g = append(g, methods[j])
				grouped[j] = true
			}
		}
		groups = append(groups, g)
	}
	return groups
}

func overrideEquivalent(a, b *types.MethodBinding) bool {
	if _, ok := subsignature(a, b); ok {
		return true
	}
	_, ok := subsignature(b, a)
	return ok
}

// checkGroup applies the inheritance rules to override-equivalent inherited
// methods and returns the one the type ends up with.
func (w *verification) checkGroup(g []*types.MethodBinding, current []*types.MethodBinding) *types.MethodBinding {
	var concrete, abstractSuper *types.MethodBinding
	var defaults []*types.MethodBinding
	for _, m := range g {
		switch {
		case m.IsDefault():
			defaults = append(defaults, m)
		case m.IsAbstract():
			if abstractSuper == nil && !m.DeclaringClass().IsInterface() {
				abstractSuper = m
			}
		case concrete == nil:
			concrete = m
		}
	}

	switch {
	case concrete != nil:
		// a class method implements the interface methods
		for _, m := range g {
			if m != concrete {
				w.checkConcreteInherited(concrete, m, current)
			}
		}
		return concrete

	case abstractSuper != nil && len(defaults) > 0 && w.level.DefaultMethods():
		// the superclass method wins over the defaults
		if !w.t.IsAbstract() {
			w.report(errors.AbstractMethodMustBeImplemented, w.t.Pos, abstractSuper.Selector, w.t, abstractSuper)
		}
		return abstractSuper

	case len(defaults) > 0:
		d := defaults[0]
		if w.level.DefaultMethods() {
			for _, m := range g {
				if m != d {
					w.report(errors.DefaultMethodConflict, w.t.Pos, d.Selector, w.t, d, m)
				}
			}
		}
		return d
	}

	best := w.mostSpecificReturn(g)
	if best == nil {
		bindings := make([]errors.Binding, 0, len(g)+1)
		bindings = append(bindings, w.t)
		for _, m := range g {
			bindings = append(bindings, m)
		}
		reason := errors.IncompatibleReturnType
		if unrelatedReturns(w.env, g) {
			reason = errors.NameClash
		}
		w.report(reason, w.t.Pos, g[0].Selector, bindings...)
		return g[0]
	}
	if !w.t.IsAbstract() {
		w.report(errors.AbstractMethodMustBeImplemented, w.t.Pos, best.Selector, w.t, best)
	}
	return best
}

// checkConcreteInherited checks an inherited class method k standing in
// for the inherited interface method m.
func (w *verification) checkConcreteInherited(k, m *types.MethodBinding, current []*types.MethodBinding) {
	if k.IsStatic() {
		w.report(errors.StaticInstanceConflict, w.t.Pos, k.Selector, w.t, k, m)
		return
	}
	mt, ok := subsignature(k, m)
	if !ok {
		return
	}
	switch w.returnCompatibility(k, m, mt) {
	case types.Incompatible:
		w.report(errors.IncompatibleReturnType, w.t.Pos, k.Selector, w.t, k, m)
		return
	case types.UncheckedCompatible:
		w.report(errors.UnsafeOverride, w.t.Pos, k.Selector, w.t, k, m.Original())
	}
	if k.Modifiers.Visibility() < m.Modifiers.Visibility() {
		w.report(errors.VisibilityConflict, w.t.Pos, k.Selector, w.t, k, m)
	}
	w.checkExceptions(k, m, mt)
	if k.IsVarargs() != m.IsVarargs() {
		w.report(errors.VarargsMismatch, w.t.Pos, k.Selector, w.t, k, m)
	}

	// the superclass carries the bridge already when it implements the
	// interface itself
	orig := m.Original()
	iface := orig.DeclaringClass()
	if iface == nil || !iface.IsInterface() {
		return
	}
	sc := w.t.Superclass()
	if sc == nil {
		return
	}
	if w.env.FindSuperTypeOriginatingFrom(sc.Erasure(), iface) == nil || k.DeclaringType.Kind() == types.KindParameterized {
		w.addBridge(m, k, current)
	}
}

// mostSpecificReturn finds the method whose return type can stand for
// every other return type of the group.
func (w *verification) mostSpecificReturn(g []*types.MethodBinding) *types.MethodBinding {
next:
	for _, a := range g {
		for _, b := range g {
			if a == b {
				continue
			}
			mt, _ := subsignature(a, b)
			if w.returnCompatibility(a, b, mt) == types.Incompatible {
				continue next
			}
		}
		return a
	}
	return nil
}

// unrelatedReturns reports whether two methods of g have return types
// whose erasures are unrelated by subtyping.
func unrelatedReturns(env *types.Environment, g []*types.MethodBinding) bool {
	for i, a := range g {
		for _, b := range g[i+1:] {
			ra, rb := a.ReturnType.Erasure(), b.ReturnType.Erasure()
			if ra == rb {
				continue
			}
			if ra.Kind() == types.KindPrimitive || rb.Kind() == types.KindPrimitive {
				return true
			}
			if !env.IsSubtype(ra, rb) && !env.IsSubtype(rb, ra) {
				return true
			}
		}
	}
	return false
}

// checkInheritedClash reports two inherited methods that are not
// override-equivalent but erase to the same parameters.
func (w *verification) checkInheritedClash(a, b *types.MethodBinding) {
	if a.IsStatic() || b.IsStatic() {
		return
	}
	oa, ob := a.Original(), b.Original()
	if !oa.HasSameParameterErasures(ob) {
		return
	}
	if !w.level.StaticNameClash() && (oa.DeclaringClass().IsInterface() || ob.DeclaringClass().IsInterface()) {
		// interface inheritance clashes are only reported from 1.7 on
		return
	}
	w.report(errors.NameClash, w.t.Pos, a.Selector, w.t, oa, ob)
}
