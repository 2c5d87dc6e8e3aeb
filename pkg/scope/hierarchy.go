package scope

import (
	"github.com/hashicorp/go-set/v2"

	"javasema/pkg/errors"
	"javasema/pkg/types"
)

// ConnectSupertypes installs rb's declared supertypes unless doing so
// closes a cycle: a type may not extend itself, one of its own subtypes, or
// one of its own member types. On a cycle the supertypes are dropped (a
// class falls back to Object) and CyclicHierarchy is reported.
func (t *Tree) ConnectSupertypes(rb *types.ReferenceBinding, superclass types.Type, interfaces []types.Type, site errors.Position) *errors.Problem {
	all := make([]types.Type, 0, len(interfaces)+1)
	if superclass != nil {
		all = append(all, superclass)
	}
	all = append(all, interfaces...)
	for _, sup := range all {
		if t.reaches(sup, rb) {
			debugPrintf("// [Scope Hierarchy] cycle through %s in %s", sup, rb.QualifiedName())
			if rb.IsInterface() || rb == t.env.Object() {
				rb.SetSupertypes(nil, nil)
			} else {
				rb.SetSupertypes(t.env.Object(), nil)
			}
			return errors.NewProblem(errors.CyclicHierarchy, site).WithName(rb.SourceName()).WithBindings(rb, sup)
		}
	}
	rb.SetSupertypes(superclass, interfaces)
	return nil
}

// reaches reports whether walking sup's declared supertypes (or its
// enclosing types) leads back to target.
func (t *Tree) reaches(sup types.Type, target *types.ReferenceBinding) bool {
	visited := set.New[*types.ReferenceBinding](8)
	var walk func(cur types.Type) bool
	walk = func(cur types.Type) bool {
		ct, ok := cur.(types.ClassType)
		if !ok {
			return false
		}
		decl := ct.Declaration()
		if !visited.Insert(decl) {
			return false
		}
		if decl == target || decl.IsEnclosedBy(target) {
			return true
		}
		if sc := decl.Superclass(); sc != nil && walk(sc) {
			return true
		}
		for _, i := range decl.Interfaces() {
			if walk(i) {
				return true
			}
		}
		return false
	}
	return walk(sup)
}
