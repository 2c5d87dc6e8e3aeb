package scope

import (
	"github.com/hashicorp/go-set/v2"

	"javasema/pkg/errors"
	"javasema/pkg/types"
)

// Mask selects which kinds of binding a name may resolve to.
type Mask uint8

const (
	MaskVariable Mask = 1 << iota
	MaskType
	MaskPackage

	MaskVariableOrType = MaskVariable | MaskType
	MaskAny            = MaskVariable | MaskType | MaskPackage
)

// Resolve looks name up from scope from. Variables (locals, then fields)
// are tried innermost first, then types, then packages, each only if the
// mask allows. The result is a *LocalVariable, *types.FieldBinding,
// types.Type or *types.Package. Reading an outer local from a nested type
// or lambda records the synthetic state needed to emulate it.
func (t *Tree) Resolve(from ID, name string, mask Mask, site errors.Position) (errors.Binding, *errors.Problem) {
	debugPrintf("// [Scope Resolve] '%s' from %d mask=%d", name, from, mask)
	var firstProblem *errors.Problem
	if mask&MaskVariable != 0 {
		b, p := t.resolveVariable(from, name, site)
		if b != nil {
			return b, nil
		}
		if p != nil && p.Reason != errors.NotFound {
			return nil, p
		}
	}
	if mask&MaskType != 0 {
		tb, p := t.resolveType(from, name, site)
		if tb != nil {
			return tb, nil
		}
		if p != nil && p.Reason != errors.NotFound {
			firstProblem = p
		}
	}
	if mask&MaskPackage != 0 && t.env.HasPackage(name) {
		return t.env.Package(name), nil
	}
	if firstProblem != nil {
		return nil, firstProblem
	}
	return nil, errors.NewProblem(errors.NotFound, site).WithName(name)
}

func (t *Tree) resolveVariable(from ID, name string, site errors.Position) (errors.Binding, *errors.Problem) {
	staticSeen := false
	for cur := from; cur != NoScope; cur = t.scopes[cur].Parent {
		s := t.scopes[cur]
		switch s.Kind {
		case MethodScope, BlockScope:
			for i := len(s.Locals) - 1; i >= 0; i-- {
				lv := s.Locals[i]
				if lv.Name != name {
					continue
				}
				if p := t.EmulateOuterAccess(from, lv); p != nil {
					return nil, p.At(site)
				}
				lv.Used = true
				return lv, nil
			}
			if s.Kind == MethodScope && s.IsStatic() && !s.IsLambda() {
				staticSeen = true
			}
		case ClassScope:
			f, p := t.findField(s.Type, name, t.EnclosingSourceType(from), site)
			if p != nil {
				return nil, p
			}
			if f != nil {
				if staticSeen && !f.IsStatic() {
					return nil, errors.NewProblem(errors.ScopeBoundary, site).WithName(name).WithBindings(f)
				}
				return f, nil
			}
			// the next enclosing type is only reachable through an enclosing instance
			if !s.Type.HasEnclosingInstance() {
				staticSeen = true
			}
		}
	}
	return nil, errors.NewProblem(errors.NotFound, site).WithName(name)
}

// findField searches rb and its supertypes. A field inherited from two
// unrelated supertypes is ambiguous; an inaccessible one is not visible.
func (t *Tree) findField(rb types.Type, name string, from *types.ReferenceBinding, site errors.Position) (*types.FieldBinding, *errors.Problem) {
	var found *types.FieldBinding
	var invisible *types.FieldBinding
	visited := set.New[int](8)
	var walk func(cur types.Type) bool
	walk = func(cur types.Type) bool {
		ct, ok := cur.(types.ClassType)
		if !ok || !visited.Insert(cur.ID()) {
			return false
		}
		for _, f := range ct.Fields() {
			if f.Name != name {
				continue
			}
			if !types.CanBeSeenBy(f.Modifiers, ct.Declaration(), from) {
				invisible = f
				continue
			}
			if found != nil && found.Original() != f.Original() {
				return true
			}
			found = f
			return false
		}
		if sc := ct.Superclass(); sc != nil && walk(sc) {
			return true
		}
		for _, i := range ct.Interfaces() {
			if walk(i) {
				return true
			}
		}
		return false
	}
	if walk(rb) {
		return nil, errors.NewProblem(errors.Ambiguous, site).WithName(name).WithBindings(found)
	}
	if found == nil && invisible != nil {
		return nil, errors.NewProblem(errors.NotVisible, site).WithName(name).WithBindings(invisible)
	}
	return found, nil
}

func (t *Tree) resolveType(from ID, name string, site errors.Position) (types.Type, *errors.Problem) {
	if p := types.PrimitiveByName(name); p != nil {
		return p, nil
	}
	fromType := t.EnclosingSourceType(from)
	for cur := from; cur != NoScope; cur = t.scopes[cur].Parent {
		s := t.scopes[cur]
		switch s.Kind {
		case MethodScope, BlockScope:
			if rb := s.localTypes[name]; rb != nil {
				return rb, nil
			}
			if s.Method != nil {
				for _, tv := range s.Method.TypeVariables {
					if tv.Name == name {
						return tv, nil
					}
				}
			}
		case ClassScope:
			if s.Type.Name == name && s.Type.IsLocal() {
				return s.Type, nil
			}
			for _, tv := range s.Type.TypeVariables {
				if tv.Name == name {
					return tv, nil
				}
			}
			mt, p := t.findMemberType(s.Type, name, fromType, site)
			if p != nil {
				return nil, p
			}
			if mt != nil {
				return mt, nil
			}
		case UnitScope:
			return t.resolveInUnit(s, name, fromType, site)
		}
	}
	return nil, errors.NewProblem(errors.NotFound, site).WithName(name)
}

// findMemberType searches rb and its supertypes for a member type.
func (t *Tree) findMemberType(rb *types.ReferenceBinding, name string, from *types.ReferenceBinding, site errors.Position) (*types.ReferenceBinding, *errors.Problem) {
	var found, invisible *types.ReferenceBinding
	ambiguous := false
	visited := set.New[*types.ReferenceBinding](8)
	var walk func(cur *types.ReferenceBinding)
	walk = func(cur *types.ReferenceBinding) {
		if cur == nil || !visited.Insert(cur) {
			return
		}
		if mt := cur.GetMemberType(name); mt != nil {
			if !types.TypeCanBeSeenBy(mt, from) {
				invisible = mt
			} else if found != nil && found != mt {
				ambiguous = true
			} else {
				found = mt
			}
			return
		}
		for _, sup := range t.env.DirectSupertypes(cur) {
			if c, ok := sup.(types.ClassType); ok {
				walk(c.Declaration())
			}
		}
	}
	walk(rb)
	switch {
	case ambiguous:
		return nil, errors.NewProblem(errors.Ambiguous, site).WithName(name).WithBindings(found)
	case found == nil && invisible != nil:
		return nil, errors.NewProblem(errors.NotVisible, site).WithName(name).WithBindings(invisible)
	}
	return found, nil
}

func (t *Tree) resolveInUnit(unit *Scope, name string, from *types.ReferenceBinding, site errors.Position) (types.Type, *errors.Problem) {
	for _, rb := range unit.Types {
		if rb.Name == name {
			return rb, nil
		}
	}
	// single type imports shadow the package
	for _, imp := range unit.Imports {
		if imp.OnDemand || imp.Static || lastSegment(imp.Name) != name {
			continue
		}
		if rb := t.env.LookupType(imp.Name); rb != nil {
			return t.checkTypeVisible(rb, from, site)
		}
	}
	if rb := t.env.LookupInPackage(unit.Package, name); rb != nil {
		return rb, nil
	}
	var found *types.ReferenceBinding
	for _, imp := range unit.Imports {
		if !imp.OnDemand || imp.Static {
			continue
		}
		var rb *types.ReferenceBinding
		if t.env.HasPackage(imp.Name) {
			rb = t.env.LookupInPackage(t.env.Package(imp.Name), name)
		}
		if rb == nil {
			// on demand import of a type's member types
			if outer := t.env.LookupType(imp.Name); outer != nil {
				rb = outer.GetMemberType(name)
			}
		}
		if rb == nil || (from != nil && !types.TypeCanBeSeenBy(rb, from)) {
			continue
		}
		if found != nil && found != rb {
			return nil, errors.NewProblem(errors.Ambiguous, site).WithName(name).WithBindings(found, rb)
		}
		found = rb
	}
	if found != nil {
		return found, nil
	}
	if rb := t.env.LookupInPackage(t.env.Package(types.JavaLang), name); rb != nil {
		return t.checkTypeVisible(rb, from, site)
	}
	return nil, errors.NewProblem(errors.NotFound, site).WithName(name)
}

func (t *Tree) checkTypeVisible(rb, from *types.ReferenceBinding, site errors.Position) (types.Type, *errors.Problem) {
	if from != nil && !types.TypeCanBeSeenBy(rb, from) {
		return nil, errors.NewProblem(errors.NotVisible, site).WithName(rb.QualifiedName()).WithBindings(rb)
	}
	return rb, nil
}

func lastSegment(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[i+1:]
		}
	}
	return name
}
