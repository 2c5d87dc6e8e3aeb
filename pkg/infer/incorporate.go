package infer

import (
	set "github.com/hashicorp/go-set/v2"

	"javasema/pkg/types"
)

// maxRounds bounds incorporation. A bound set still growing after that
// fails with exhausted set, reported as InferenceLimitExceeded rather than
// as a contradiction.
const maxRounds = 256

// incorporate derives new bounds from pairs of bounds until nothing new
// appears. It answers false on a contradiction.
func (bs *BoundSet) incorporate() bool {
	for len(bs.pending) > 0 {
		bs.iterations++
		if bs.iterations > maxRounds {
			bs.exhausted = true
			debugPrintf("// [Infer Incorporate] giving up after %d rounds", bs.iterations)
			return false
		}
		batch := bs.pending
		bs.pending = nil
		for _, b := range batch {
			if !bs.incorporateBound(b) {
				debugPrintf("// [Infer Incorporate] contradiction at %s\n%s", b, bs.Dump())
				return false
			}
		}
	}
	return true
}

func (bs *BoundSet) incorporateBound(b *TypeBound) bool {
	sides := []*types.InferenceVariable{b.Var}
	if w, ok := bs.isVariable(b.Type); ok {
		sides = append(sides, w)
	}
	for _, v := range sides {
		var mine view
		for _, vw := range bs.viewsOf(v) {
			if vw.bound == b {
				mine = vw
				break
			}
		}
		for _, other := range bs.viewsOf(v) {
			if other.bound == b {
				continue
			}
			if !bs.combine(mine, other) {
				return false
			}
		}
	}

	// α = U with U proper rewrites every bound mentioning α
	if b.Relation == Same && types.IsProper(b.Type) {
		subst := solutionSubstitution(map[*types.InferenceVariable]types.Type{b.Var: b.Type})
		for _, c := range append([]*TypeBound(nil), bs.list...) {
			if c == b || c.Soft || !mentionsNested(c.Type, b.Var) {
				continue
			}
			if !bs.reduceBound(c.Var, c.Relation, types.Substitute(subst, c.Type)) {
				return false
			}
		}
	}
	// and a new bound mentioning an already instantiated variable is
	// rewritten the same way
	solution := map[*types.InferenceVariable]types.Type{}
	for _, t := range types.Collect(b.Type, isInferenceVariable) {
		w := t.(*types.InferenceVariable)
		if w == types.Type(b.Type) {
			continue
		}
		if u, ok := bs.Instantiation(w); ok {
			solution[w] = u
		}
	}
	if len(solution) > 0 {
		return bs.reduceBound(b.Var, b.Relation, types.Substitute(solutionSubstitution(solution), b.Type))
	}
	return true
}

// combine applies the pairwise rules to two bounds of the same variable.
func (bs *BoundSet) combine(a, c view) bool {
	switch {
	case a.rel == Same && c.rel == Same:
		return bs.reduceSame(a.other, c.other)
	case a.rel == Same && c.rel == Upper:
		return bs.reduceSubtype(a.other, c.other)
	case a.rel == Upper && c.rel == Same:
		return bs.reduceSubtype(c.other, a.other)
	case a.rel == Same && c.rel == Lower:
		return bs.reduceSubtype(c.other, a.other)
	case a.rel == Lower && c.rel == Same:
		return bs.reduceSubtype(a.other, c.other)
	case a.rel == Lower && c.rel == Upper:
		return bs.reduceSubtype(a.other, c.other)
	case a.rel == Upper && c.rel == Lower:
		return bs.reduceSubtype(c.other, a.other)
	case a.rel == Upper && c.rel == Upper:
		return bs.sameParameterizations(a.other, c.other)
	}
	return true
}

// sameParameterizations: when two upper bounds of one variable both have
// supertypes parameterizing the same generic class, their non-wildcard
// arguments must agree.
func (bs *BoundSet) sameParameterizations(s, t types.Type) bool {
	if _, ok := bs.isVariable(s); ok {
		return true
	}
	if _, ok := bs.isVariable(t); ok {
		return true
	}
	for _, ps := range bs.parameterizedSupertypes(s) {
		pt, ok := bs.env.FindSuperTypeOriginatingFrom(t, ps.Declaration()).(*types.ParameterizedType)
		if !ok {
			continue
		}
		sargs, targs := ps.Arguments(), pt.Arguments()
		for i := range sargs {
			if sargs[i].Kind() == types.KindWildcard || targs[i].Kind() == types.KindWildcard {
				continue
			}
			if !bs.reduceSame(sargs[i], targs[i]) {
				return false
			}
		}
	}
	return true
}

// parameterizedSupertypes lists t and its supertypes that are
// parameterized types.
func (bs *BoundSet) parameterizedSupertypes(t types.Type) []*types.ParameterizedType {
	var out []*types.ParameterizedType
	visited := set.New[int](8)
	var walk func(cur types.Type)
	walk = func(cur types.Type) {
		if cur == nil || !visited.Insert(cur.ID()) {
			return
		}
		if p, ok := cur.(*types.ParameterizedType); ok {
			out = append(out, p)
		}
		switch cur.(type) {
		case types.ClassType, *types.IntersectionType:
			for _, sup := range bs.env.DirectSupertypes(cur) {
				walk(sup)
			}
		}
	}
	walk(t)
	return out
}

func (bs *BoundSet) reduceBound(v *types.InferenceVariable, rel Relation, t types.Type) bool {
	switch rel {
	case Same:
		return bs.reduceSame(v, t)
	case Upper:
		return bs.reduceSubtype(v, t)
	}
	return bs.reduceSubtype(t, v)
}

func isInferenceVariable(t types.Type) bool { return t.Kind() == types.KindInferenceVariable }

// mentionsNested reports whether v occurs inside t other than as t itself.
func mentionsNested(t types.Type, v *types.InferenceVariable) bool {
	if t == types.Type(v) {
		return false
	}
	return types.Mentions(t, func(x types.Type) bool { return x == types.Type(v) })
}
