package types

import (
	"sort"
	"strconv"

	set "github.com/hashicorp/go-set/v2"
)

// maxLubDepth bounds the lcta recursion; past it arguments become ?.
const maxLubDepth = 2

// Lub computes the least upper bound of reference types (JLS 4.10.4).
// Null is ignored; primitives are boxed.
func (env *Environment) Lub(ts ...Type) Type {
	return env.lub(ts, 0)
}

func (env *Environment) lub(ts []Type, depth int) Type {
	var list []Type
	seen := set.New[int](len(ts))
	for _, t := range ts {
		if t == nil || t.Kind() == KindNull {
			continue
		}
		t = env.BoxIfPrimitive(t)
		if seen.Insert(t.ID()) {
			list = append(list, t)
		}
	}
	switch len(list) {
	case 0:
		return Null
	case 1:
		return list[0]
	}
	// a member that is a supertype of all others is the answer
	for _, cand := range list {
		all := true
		for _, other := range list {
			if !env.IsSubtype(other, cand) {
				all = false
				break
			}
		}
		if all {
			return cand
		}
	}

	// erased candidate set
	ec := env.ErasedSupertypes(list[0])
	for _, other := range list[1:] {
		others := set.New[int](8)
		for _, e := range env.ErasedSupertypes(other) {
			others.Insert(e.ID())
		}
		kept := ec[:0:0]
		for _, e := range ec {
			if others.Contains(e.ID()) {
				kept = append(kept, e)
			}
		}
		ec = kept
	}

	// minimal erased candidates
	var mec []Type
	for _, c := range ec {
		minimal := true
		for _, d := range ec {
			if d != c && env.IsSubtype(d, c) {
				minimal = false
				break
			}
		}
		if minimal {
			mec = append(mec, c)
		}
	}

	var candidates []Type
	for _, g := range mec {
		rb, ok := g.(*ReferenceBinding)
		if !ok || !rb.IsGeneric() {
			candidates = append(candidates, g)
			continue
		}
		candidates = append(candidates, env.bestParameterization(rb, list, depth))
	}
	return env.Glb(candidates...)
}

func (env *Environment) bestParameterization(g *ReferenceBinding, list []Type, depth int) Type {
	var params [][]Type
	for _, t := range list {
		sup, ok := env.FindSuperTypeOriginatingFrom(t, g).(ClassType)
		if !ok {
			return env.CreateRawType(g, nil)
		}
		args, raw := TypeArguments(sup)
		if raw {
			return env.CreateRawType(g, nil)
		}
		params = append(params, args)
	}
	args := make([]Type, len(g.TypeVariables))
	for i := range args {
		a := params[0][i]
		for _, p := range params[1:] {
			a = env.lcta(a, p[i], depth)
		}
		args[i] = a
	}
	return env.CreateParameterizedType(g, args, nil)
}

// lcta is the least containing type argument of two arguments.
func (env *Environment) lcta(u, v Type, depth int) Type {
	if u == v {
		return u
	}
	unbounded := env.CreateWildcard(Unbounded, nil)
	if depth >= maxLubDepth {
		return unbounded
	}
	uw, uIsW := u.(*WildcardType)
	vw, vIsW := v.(*WildcardType)
	extends := func(a, b Type) Type {
		l := env.lub([]Type{a, b}, depth+1)
		if l == Type(env.object) {
			return unbounded
		}
		return env.CreateWildcard(Extends, l)
	}
	switch {
	case !uIsW && !vIsW:
		return extends(u, v)
	case uIsW && !vIsW:
		u, v, uw, vw = v, u, vw, uw
		fallthrough
	case !uIsW && vIsW:
		switch vw.BoundKind {
		case Extends:
			return extends(u, vw.bound)
		case Super:
			return env.CreateWildcard(Super, env.Glb(u, vw.bound))
		}
		return unbounded
	}
	switch {
	case uw.BoundKind == Extends && vw.BoundKind == Extends:
		return extends(uw.bound, vw.bound)
	case uw.BoundKind == Super && vw.BoundKind == Super:
		return env.CreateWildcard(Super, env.Glb(uw.bound, vw.bound))
	}
	return unbounded
}

// ErasedSupertypes lists the erasures of t and all its supertypes,
// breadth first, without duplicates.
func (env *Environment) ErasedSupertypes(t Type) []Type {
	var out []Type
	seen := set.New[int](16)
	queue := []Type{t}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		e := cur.Erasure()
		if cur.Kind() == KindTypeVariable || cur.Kind() == KindIntersection {
			e = nil
		}
		if e != nil {
			if !seen.Insert(e.ID()) {
				continue
			}
			out = append(out, e)
		}
		queue = append(queue, env.DirectSupertypes(cur)...)
	}
	return out
}

// Glb computes the greatest lower bound: redundant supertypes are dropped
// and the rest form an intersection with the class component first.
func (env *Environment) Glb(ts ...Type) Type {
	var flat []Type
	seen := set.New[int](len(ts))
	for _, t := range ts {
		if t == nil {
			continue
		}
		comps := []Type{t}
		if it, ok := t.(*IntersectionType); ok {
			comps = it.types
		}
		for _, c := range comps {
			if seen.Insert(c.ID()) {
				flat = append(flat, c)
			}
		}
	}
	var keep []Type
	for i, t := range flat {
		redundant := false
		for j, u := range flat {
			if i == j || !env.IsSubtype(u, t) {
				continue
			}
			if !env.IsSubtype(t, u) || j < i {
				redundant = true
				break
			}
		}
		if !redundant {
			keep = append(keep, t)
		}
	}
	switch len(keep) {
	case 0:
		return env.object
	case 1:
		return keep[0]
	}
	sort.SliceStable(keep, func(i, j int) bool {
		ci, cj := !isInterfaceType(keep[i]), !isInterfaceType(keep[j])
		if ci != cj {
			return ci
		}
		return keep[i].ID() < keep[j].ID()
	})
	return env.CreateIntersection(keep...)
}

// Capture applies capture conversion to a parameterized type with wildcard
// arguments. Each wildcard becomes a fresh capture variable; the result is
// not shared with other capture sites.
func (env *Environment) Capture(t Type) Type {
	p, ok := t.(*ParameterizedType)
	if !ok || !p.HasWildcards() {
		return t
	}
	caps := make([]Type, len(p.args))
	var fresh []*TypeVariable
	var wildcards []*WildcardType
	var ranks []int
	for i, a := range p.args {
		w, isW := a.(*WildcardType)
		if !isW {
			caps[i] = a
			continue
		}
		env.mu.Lock()
		env.captures++
		n := env.captures
		env.mu.Unlock()
		cv := env.CreateTypeVariable("capture#" + strconv.Itoa(n) + "-of " + w.String())
		cv.captured = true
		cv.Rank = i
		caps[i] = cv
		fresh = append(fresh, cv)
		wildcards = append(wildcards, w)
		ranks = append(ranks, i)
	}
	s := NewMapSubstitution(p.generic.TypeVariables, caps)
	if enc, ok := p.enclosing.(Substitution); ok {
		s.Next = enc
	}
	for k, cv := range fresh {
		w := wildcards[k]
		declared, _ := SubstituteAll(s, p.generic.TypeVariables[ranks[k]].bounds)
		var bounds []Type
		switch w.BoundKind {
		case Extends:
			bounds = append(bounds, w.bound)
			for _, d := range declared {
				if d != Type(env.object) && !env.IsSubtype(w.bound, d) {
					bounds = append(bounds, d)
				}
			}
		case Super:
			cv.lowerBound = w.bound
			bounds = declared
		default:
			bounds = declared
		}
		cv.SetBounds(bounds...)
	}
	return env.CreateParameterizedType(p.generic, caps, p.enclosing)
}
