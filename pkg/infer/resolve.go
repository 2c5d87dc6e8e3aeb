package infer

import (
	set "github.com/hashicorp/go-set/v2"

	"javasema/pkg/types"
)

// resolve instantiates vars. Variables whose bounds mention no unresolved
// variable go first; a cycle is resolved all at once. Each instantiation is
// added as an equality bound and incorporated, so a bad choice surfaces as
// a contradiction. The bound set is modified; callers resolve a copy.
func (bs *BoundSet) resolve(vars []*types.InferenceVariable) (map[*types.InferenceVariable]types.Type, bool) {
	solution := make(map[*types.InferenceVariable]types.Type, len(vars))
	unresolved := set.From(vars)
	for unresolved.Size() > 0 {
		progress := false
		for _, v := range vars {
			if !unresolved.Contains(v) {
				continue
			}
			if t, ok := bs.Instantiation(v); ok {
				solution[v] = t
				unresolved.Remove(v)
				progress = true
			}
		}
		if progress {
			continue
		}

		var batch []*types.InferenceVariable
		for _, v := range vars {
			if unresolved.Contains(v) && bs.dependenciesResolved(v, unresolved) {
				batch = append(batch, v)
			}
		}
		if len(batch) == 0 {
			// a dependency cycle
			for _, v := range vars {
				if unresolved.Contains(v) {
					batch = append(batch, v)
				}
			}
		}
		for _, v := range batch {
			t := bs.candidate(v, solution)
			debugPrintf("// [Infer Resolve] %s := %s", v, t)
			bs.add(v, Same, t)
		}
		if !bs.incorporate() {
			return nil, false
		}
	}
	return solution, true
}

// dependenciesResolved reports whether no bound of v mentions another
// unresolved variable.
func (bs *BoundSet) dependenciesResolved(v *types.InferenceVariable, unresolved *set.Set[*types.InferenceVariable]) bool {
	for _, vw := range bs.viewsOf(v) {
		for _, t := range types.Collect(vw.other, isInferenceVariable) {
			w := t.(*types.InferenceVariable)
			if w != v && unresolved.Contains(w) {
				return false
			}
		}
	}
	return true
}

// candidate picks an instantiation for v: the lub of its proper lower
// bounds, else the glb of its proper upper bounds. Upper bounds that still
// mention unresolved variables are erased.
func (bs *BoundSet) candidate(v *types.InferenceVariable, solution map[*types.InferenceVariable]types.Type) types.Type {
	subst := solutionSubstitution(solution)
	var lowers []types.Type
	for _, l := range bs.LowerBounds(v) {
		l = types.Substitute(subst, l)
		if !types.IsProper(l) || l.Kind() == types.KindNull {
			continue
		}
		lowers = append(lowers, l)
	}
	if len(lowers) > 0 {
		return bs.env.Lub(lowers...)
	}
	var uppers []types.Type
	for _, u := range bs.UpperBounds(v) {
		u = types.Substitute(subst, u)
		if !types.IsProper(u) {
			u = bs.env.ConvertToRaw(u.Erasure())
		}
		uppers = append(uppers, u)
	}
	if len(uppers) == 0 {
		if bs.Nullable(v) {
			debugPrintf("// [Infer Resolve] %s only bounded by null", v)
		}
		return bs.env.Object()
	}
	return bs.env.Glb(uppers...)
}
