package verifier

import (
	"javasema/pkg/errors"
	"javasema/pkg/types"
)

// match describes how one method's signature matches another's.
type match struct {
	// subst renames the other method's type variables to this one's.
	subst types.Substitution
	// raw is set when this method matches the erasure of the other.
	raw bool
}

// subsignature reports whether sub's signature is a subsignature of sup's:
// the same signature once type variables are renamed, or the erasure of
// sup's signature.
func subsignature(sub, sup *types.MethodBinding) (match, bool) {
	if sub.Selector != sup.Selector || len(sub.Parameters) != len(sup.Parameters) {
		return match{}, false
	}
	if len(sub.TypeVariables) > 0 {
		if len(sub.TypeVariables) != len(sup.TypeVariables) {
			return match{}, false
		}
		args := make([]types.Type, len(sub.TypeVariables))
		for i, tv := range sub.TypeVariables {
			args[i] = tv
		}
		s := types.NewMapSubstitution(sup.TypeVariables, args)
		for i, tv := range sup.TypeVariables {
			want, got := tv.DeclaredBounds(), sub.TypeVariables[i].DeclaredBounds()
			if len(want) != len(got) {
				return match{}, false
			}
			for j := range want {
				if types.Substitute(s, want[j]) != got[j] {
					return match{}, false
				}
			}
		}
		for i, p := range sup.Parameters {
			if types.Substitute(s, p) != sub.Parameters[i] {
				return match{}, false
			}
		}
		return match{subst: s}, true
	}
	if len(sup.TypeVariables) == 0 && sub.HasSameParameters(sup) {
		return match{}, true
	}
	for i, p := range sup.Parameters {
		q := sub.Parameters[i]
		if p.Erasure() != q.Erasure() || !isErased(q) {
			return match{}, false
		}
	}
	return match{raw: true}, true
}

// isErased reports whether t is its own erasure, counting raw types.
func isErased(t types.Type) bool {
	switch tt := t.(type) {
	case *types.RawType:
		return true
	case *types.ArrayType:
		return isErased(tt.LeafComponentType())
	}
	return t == t.Erasure()
}

// returnCompatibility classifies c's return type as an override of m's.
// Unchecked means the override is allowed with a warning.
func (w *verification) returnCompatibility(c, m *types.MethodBinding, mt match) types.Compatibility {
	r1, r2 := c.ReturnType, m.ReturnType
	if mt.raw {
		r2 = r2.Erasure()
	}
	if mt.subst != nil {
		r2 = types.Substitute(mt.subst, r2)
	}
	if r1 == r2 {
		return types.Compatible
	}
	if r1.Kind() == types.KindPrimitive || r2.Kind() == types.KindPrimitive || !w.level.Generics() {
		return types.Incompatible
	}
	if comp := w.env.Compatibility(r1, r2); comp != types.Incompatible {
		return comp
	}
	if r1 == r2.Erasure() {
		return types.UncheckedCompatible
	}
	return types.Incompatible
}

// checkOverride checks declared method c against the inherited method m it
// overrides. It answers false when the pair is broken badly enough that no
// bridge should be derived from it.
func (w *verification) checkOverride(c, m *types.MethodBinding, mt match) bool {
	// 1. static methods hide, instance methods override; never across
	if c.IsStatic() != m.IsStatic() {
		w.report(errors.StaticInstanceConflict, c.Pos, c.Selector, c, m)
		return false
	}

	// 2. return types
	switch w.returnCompatibility(c, m, mt) {
	case types.Incompatible:
		w.report(errors.IncompatibleReturnType, c.Pos, c.Selector, c, m)
		return false
	case types.UncheckedCompatible:
		w.report(errors.UnsafeOverride, c.Pos, c.Selector, c, m.Original())
	}

	// 3. throws clause, final, visibility, varargs
	w.checkExceptions(c, m, mt)
	if m.IsFinal() {
		w.report(errors.FinalOverride, c.Pos, c.Selector, c, m)
	}
	if c.Modifiers.Visibility() < m.Modifiers.Visibility() {
		w.report(errors.VisibilityConflict, c.Pos, c.Selector, c, m)
	}
	if c.IsVarargs() != m.IsVarargs() {
		w.report(errors.VarargsMismatch, c.Pos, c.Selector, c, m)
	}
	return true
}

// checkExceptions reports every checked exception c throws that m's
// throws clause does not cover.
func (w *verification) checkExceptions(c, m *types.MethodBinding, mt match) {
	allowed := m.ThrownExceptions
	if mt.subst != nil {
		allowed, _ = types.SubstituteAll(mt.subst, allowed)
	}
	for _, e := range c.ThrownExceptions {
		if w.isUncheckedException(e) {
			continue
		}
		covered := false
		for _, a := range allowed {
			if w.env.IsSubtype(e.Erasure(), a.Erasure()) {
				covered = true
				break
			}
		}
		if !covered {
			w.report(errors.IncompatibleThrows, c.Pos, c.Selector, c, m, e)
		}
	}
}

func (w *verification) isUncheckedException(e types.Type) bool {
	for _, name := range []string{"java.lang.RuntimeException", "java.lang.Error"} {
		if rb := w.env.LookupType(name); rb != nil && w.env.IsSubtype(e.Erasure(), rb) {
			return true
		}
	}
	return false
}

// checkNameClash reports declared c and inherited m when their erasures
// collide although c does not override m.
func (w *verification) checkNameClash(c, m *types.MethodBinding) {
	orig := m.Original()
	if !c.HasSameParameterErasures(orig) && !c.HasSameParameterErasures(m) {
		return
	}
	if c.IsStatic() || m.IsStatic() {
		if !w.level.StaticNameClash() {
			return
		}
	}
	w.report(errors.NameClash, c.Pos, c.Selector, c, orig)
	w.clashed.Insert(c)
}

// addBridge records the bridge needed when target implements inherited
// under a different erased signature. current are the declared methods
// with the same selector; a bridge colliding with one of them is a name
// clash instead.
func (w *verification) addBridge(inherited, target *types.MethodBinding, current []*types.MethodBinding) {
	if !w.level.Bridges() || target.IsStatic() || inherited.IsStatic() {
		return
	}
	orig, impl := inherited.Original(), target.Original()
	bridge := types.NewBridgeMethod(inherited, impl, w.t, types.EraseAll(target.ThrownExceptions))
	desc := types.MethodDescriptor(bridge)
	if desc == types.MethodDescriptor(impl) {
		return
	}
	key := bridge.Selector + desc
	if _, dup := w.bridges[key]; dup {
		return
	}
	for _, d := range current {
		if d == target || types.MethodDescriptor(d) != desc {
			continue
		}
		if !w.clashed.Contains(d) {
			w.report(errors.NameClash, d.Pos, d.Selector, d, orig)
			w.clashed.Insert(d)
		}
		return
	}
	b := &Bridge{Method: bridge, Inherited: orig, Target: impl}
	w.bridges[key] = b
	w.res.Bridges = append(w.res.Bridges, b)
	debugPrintf("// [Verifier] bridge %s -> %s", bridge, impl)
}
