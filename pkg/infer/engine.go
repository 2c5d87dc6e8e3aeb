package infer

import (
	"javasema/pkg/config"
	"javasema/pkg/errors"
	"javasema/pkg/types"
)

// Engine resolves invocations for one compilation session. It holds no
// per-call state and may be shared by workers; the variable table must be
// the one of the unit the call sites belong to.
type Engine struct {
	env    *types.Environment
	level  config.Level
	policy Policy
	table  *VariableTable
}

// NewEngine creates an engine. A nil table gets a private one.
func NewEngine(env *types.Environment, level config.Level, policy Policy, table *VariableTable) *Engine {
	if table == nil {
		table = NewVariableTable()
	}
	return &Engine{env: env, level: level, policy: policy, table: table}
}

// Policy returns the tie-break policy in use.
func (e *Engine) Policy() Policy { return e.policy }

// attempt is a candidate found applicable in some phase.
type attempt struct {
	decl   *types.MethodBinding
	method *types.MethodBinding // decl, or its explicit instantiation
	phase  Phase
	bs     *BoundSet
	vars   []*types.InferenceVariable
	subst  *inferenceSubstitution
	// declared holds the bounds coming from type parameter declarations
	declared map[*TypeBound]bool
}

// failure records why a candidate was not applicable.
type failure struct {
	method *types.MethodBinding
	phase  Phase
	// argument is the offending argument, -1 for arity or incorporation
	argument int
	// contradiction is set when the bounds, not a single argument, failed
	contradiction bool
	// exhausted is set when incorporation hit its round limit
	exhausted bool
}

// Resolve selects and instantiates the method invoked by call. Phases run
// in order; the first phase with an applicable candidate decides. The
// result never aliases a candidate's mutable state.
func (e *Engine) Resolve(call Call) (*Result, *errors.Problem) {
	if len(call.Candidates) == 0 {
		return nil, errors.NewProblem(errors.NotFound, call.Pos).WithName(call.Selector)
	}
	defer e.table.Release(call.Site)

	iterations := 0
	var failures []failure
	for _, phase := range e.phases() {
		var applicable []*attempt
		for _, m := range call.Candidates {
			a, f := e.applicable(call, m, phase)
			if a == nil {
				failures = append(failures, f)
				continue
			}
			iterations += a.bs.Iterations()
			applicable = append(applicable, a)
		}
		if len(applicable) == 0 {
			continue
		}
		debugPrintf("// [Infer Resolve] %s: %d applicable in %s phase", call.Selector, len(applicable), phase)
		best, p := e.mostSpecific(call, applicable)
		if p != nil {
			return nil, p
		}
		res, p := e.invocationType(call, best)
		if res != nil {
			res.Iterations += iterations
		}
		return res, p
	}
	return nil, e.notApplicable(call, failures)
}

func (e *Engine) phases() []Phase {
	phases := []Phase{Strict}
	if e.level.Boxing() {
		phases = append(phases, Loose)
	}
	if e.level.Varargs() {
		phases = append(phases, Vararg)
	}
	return phases
}

// applicable tests m against the arguments in phase. A generic method
// gets fresh inference variables bounded by its declared bounds.
func (e *Engine) applicable(call Call, m *types.MethodBinding, phase Phase) (*attempt, failure) {
	fail := failure{method: m, phase: phase, argument: -1}
	n, k := len(call.Arguments), len(m.Parameters)
	switch phase {
	case Strict, Loose:
		if n != k {
			return nil, fail
		}
	case Vararg:
		if !m.IsVarargs() || n < k-1 {
			return nil, fail
		}
	}

	a := &attempt{decl: m, method: m, phase: phase, bs: NewBoundSet(e.env), declared: map[*TypeBound]bool{}}
	params := m.Parameters
	if m.IsGeneric() && len(call.TypeArguments) > 0 {
		if len(call.TypeArguments) != len(m.TypeVariables) {
			return nil, fail
		}
		a.method = types.NewInferredMethod(m, call.TypeArguments, false)
		params = a.method.Parameters
	} else if m.IsGeneric() {
		if !e.level.Generics() {
			return nil, fail
		}
		a.subst = e.newVariables(m, a, func(tv *types.TypeVariable, rank int) *types.InferenceVariable {
			return e.table.Variable(e.env, tv, call.Site, rank)
		})
		params, _ = types.SubstituteAll(a.subst, m.Parameters)
	}

	loose := phase != Strict
	for i, arg := range call.Arguments {
		if arg == nil || !a.bs.reduceCompatible(arg, formal(params, i, phase == Vararg), loose) {
			fail.argument = i
			return nil, fail
		}
	}
	if !a.bs.incorporate() {
		fail.contradiction, fail.exhausted = true, a.bs.Exhausted()
		return nil, fail
	}
	if len(a.vars) > 0 {
		trial := a.bs.Copy()
		if _, ok := trial.resolve(a.vars); !ok {
			fail.contradiction, fail.exhausted = true, trial.Exhausted()
			return nil, fail
		}
	}
	return a, fail
}

// newVariables creates the inference variables of m through mk and adds
// the bounds implied by the type parameter declarations.
func (e *Engine) newVariables(m *types.MethodBinding, a *attempt, mk func(*types.TypeVariable, int) *types.InferenceVariable) *inferenceSubstitution {
	s := &inferenceSubstitution{params: make(map[*types.TypeVariable]*types.InferenceVariable, len(m.TypeVariables))}
	for i, tv := range m.TypeVariables {
		iv := mk(tv, i)
		s.params[tv] = iv
		a.vars = append(a.vars, iv)
		a.bs.addVariable(iv, tv)
	}
	for _, tv := range m.TypeVariables {
		iv := s.params[tv]
		bounds := tv.DeclaredBounds()
		if len(bounds) == 0 {
			bounds = []types.Type{e.env.Object()}
		}
		for _, b := range bounds {
			before := len(a.bs.list)
			a.bs.add(iv, Upper, types.Substitute(s, b))
			for _, nb := range a.bs.list[before:] {
				a.declared[nb] = true
			}
		}
	}
	return s
}

// formal is the parameter type matched against argument i. In a variable
// arity invocation the trailing arguments match the element type of the
// last parameter.
func formal(params []types.Type, i int, varargs bool) types.Type {
	k := len(params)
	if !varargs || i < k-1 {
		return params[i]
	}
	if at, ok := params[k-1].(*types.ArrayType); ok {
		return at.ElementType()
	}
	return params[k-1]
}

// mostSpecific picks the maximally specific attempt. Several maximal
// candidates with override-equivalent signatures resolve to a concrete one
// if any; otherwise the call is ambiguous.
func (e *Engine) mostSpecific(call Call, attempts []*attempt) (*attempt, *errors.Problem) {
	if len(attempts) == 1 {
		return attempts[0], nil
	}
	var maximal []*attempt
	for _, a := range attempts {
		best := true
		for _, b := range attempts {
			if a != b && !e.moreSpecific(a, b, len(call.Arguments)) {
				best = false
				break
			}
		}
		if best {
			maximal = append(maximal, a)
		}
	}
	if len(maximal) == 1 {
		return maximal[0], nil
	}
	if len(maximal) > 1 && overrideEquivalent(maximal) {
		for _, a := range maximal {
			if !a.decl.IsAbstract() {
				return a, nil
			}
		}
		return e.mostSpecificReturn(maximal), nil
	}
	ambiguous := maximal
	if len(ambiguous) == 0 {
		ambiguous = attempts
	}
	bindings := make([]errors.Binding, len(ambiguous))
	for i, a := range ambiguous {
		bindings[i] = a.decl
	}
	return nil, errors.NewProblem(errors.Ambiguous, call.Pos).WithName(call.Selector).WithBindings(bindings...)
}

func overrideEquivalent(attempts []*attempt) bool {
	for _, a := range attempts[1:] {
		if !a.decl.HasSameParameterErasures(attempts[0].decl) {
			return false
		}
	}
	return true
}

func (e *Engine) mostSpecificReturn(attempts []*attempt) *attempt {
	for _, a := range attempts {
		all := true
		for _, b := range attempts {
			if !e.env.IsCompatibleWith(a.decl.ReturnType, b.decl.ReturnType) {
				all = false
				break
			}
		}
		if all {
			return a
		}
	}
	return attempts[0]
}

// moreSpecific reports whether a's method is at least as specific as b's
// for n arguments: b must accept a's parameter types by subtyping.
func (e *Engine) moreSpecific(a, b *attempt, n int) bool {
	m1, m2 := a.method, b.method
	varargs := a.phase == Vararg
	count := n
	if varargs {
		count = max(n, len(m1.Parameters), len(m2.Parameters))
	}
	bs := NewBoundSet(e.env)
	params2 := m2.Parameters
	var vars []*types.InferenceVariable
	if m2.IsGeneric() && b.method == b.decl {
		probe := &attempt{bs: bs, declared: map[*TypeBound]bool{}}
		// throwaway variables, never interned
		s := e.newVariables(m2, probe, func(tv *types.TypeVariable, rank int) *types.InferenceVariable {
			return types.NewInferenceVariable(e.env, tv, -1, rank)
		})
		vars = probe.vars
		params2, _ = types.SubstituteAll(s, m2.Parameters)
	}
	for i := 0; i < count; i++ {
		s, t := formal(m1.Parameters, i, varargs), formal(params2, i, varargs)
		if types.IsProper(t) {
			if e.env.Compatibility(s, t) != types.Compatible {
				return false
			}
			continue
		}
		if !bs.reduceSubtype(s, t) {
			return false
		}
	}
	if !bs.incorporate() {
		return false
	}
	if len(vars) > 0 {
		_, ok := bs.resolve(vars)
		return ok
	}
	return true
}
