package infer

import (
	"javasema/pkg/errors"
	"javasema/pkg/types"
)

// invocationType turns the selected attempt into the invoked method:
// generic methods get their type arguments resolved, optionally driven by
// the expected result type, and checked against their declared bounds.
func (e *Engine) invocationType(call Call, a *attempt) (*Result, *errors.Problem) {
	res := &Result{Declaration: a.decl, Phase: a.phase, Unchecked: a.bs.Unchecked()}

	if len(a.vars) == 0 {
		res.Method = a.method
		if a.method != a.decl {
			res.TypeArguments = a.method.TypeArguments
			if p := e.checkBounds(call, a.decl, res.TypeArguments, res); p != nil {
				return nil, p
			}
		}
		if res.Unchecked {
			// applicability needed an unchecked conversion: the result is erased
			res.Method = types.NewInferredMethod(a.method, nil, true)
			res.TypeArguments = nil
			e.warnUnchecked(call, res)
		}
		return res, nil
	}

	paramBS := a.bs.Copy()
	fromParams, okP := paramBS.resolve(a.vars)
	res.Iterations += paramBS.Iterations()

	var fromReturn map[*types.InferenceVariable]types.Type
	okR, targeted, exhausted := false, false, paramBS.Exhausted()
	if call.Expected != nil && call.Expected != types.Type(types.Void) && !a.bs.Unchecked() {
		returnBS := a.bs.Copy()
		ret := types.Substitute(a.subst, a.decl.ReturnType)
		if ret != types.Type(types.Void) {
			targeted = true
			if returnBS.reduceCompatible(ret, call.Expected, true) && returnBS.incorporate() {
				fromReturn, okR = returnBS.resolve(a.vars)
			}
		}
		exhausted = exhausted || returnBS.Exhausted()
		res.Iterations += returnBS.Iterations()
	}

	var solution map[*types.InferenceVariable]types.Type
	switch {
	case !okP && !okR && exhausted:
		return nil, errors.NewProblem(errors.InferenceLimitExceeded, call.Pos).WithName(call.Selector).WithBindings(a.decl)
	case !okP && !okR:
		return nil, errors.NewProblem(errors.InferenceFailed, call.Pos).WithName(call.Selector).WithBindings(a.decl)
	case !e.level.TargetTyping():
		solution = e.legacySolution(a, fromParams, fromReturn, okR)
		if solution == nil {
			return nil, errors.NewProblem(errors.InferenceFailed, call.Pos).WithName(call.Selector).WithBindings(a.decl)
		}
	case !okR:
		solution = fromParams
	case !okP:
		solution, res.Source = fromReturn, FromReturn
	default:
		solution, res.Source = e.tieBreak(a, fromParams, fromReturn)
	}

	args := make([]types.Type, len(a.vars))
	for i, v := range a.vars {
		args[i] = solution[v]
	}
	if p := e.checkBounds(call, a.decl, args, res); p != nil {
		return nil, p
	}
	method := types.NewInferredMethod(a.decl, args, res.Unchecked)
	for i, arg := range call.Arguments {
		if !e.accepts(arg, formal(method.Parameters, i, a.phase == Vararg), a.phase) {
			// the solver produced an instantiation an argument cannot meet
			return nil, errors.NewProblem(errors.InferenceFailed, call.Pos).WithName(call.Selector).WithBindings(method, arg).AtArgument(i)
		}
	}
	if targeted && !okR && e.level.TargetTyping() {
		// the arguments decided, but the result cannot flow into the target
		if ret := method.ReturnType; e.env.LooseCompatibility(ret, call.Expected) == types.Incompatible {
			return nil, errors.NewProblem(errors.TypeMismatch, call.Pos).WithName(call.Selector).WithBindings(ret, call.Expected)
		}
	}
	res.Method = method
	res.TypeArguments = args
	if res.Unchecked {
		e.warnUnchecked(call, res)
	}
	debugPrintf("// [Infer Resolve] %s -> %s (%s)", call.Selector, method, res.Source)
	return res, nil
}

// tieBreak decides between two solutions that both exist. When they agree,
// the return type is credited if the arguments only gave soft evidence,
// such as null, for every variable.
func (e *Engine) tieBreak(a *attempt, fromParams, fromReturn map[*types.InferenceVariable]types.Type) (map[*types.InferenceVariable]types.Type, Source) {
	if e.policy == ReturnFirst {
		return fromReturn, FromReturn
	}
	strictlyBetter := false
	for _, v := range a.vars {
		p, r := fromParams[v], fromReturn[v]
		if p == r {
			continue
		}
		if e.env.Compatibility(r, p) != types.Compatible {
			return fromParams, FromParameters
		}
		strictlyBetter = true
	}
	if strictlyBetter || a.onlySoftEvidence() {
		return fromReturn, FromReturn
	}
	return fromParams, FromParameters
}

// onlySoftEvidence reports whether every variable has soft bounds and no
// bound from the arguments.
func (a *attempt) onlySoftEvidence() bool {
	for _, v := range a.vars {
		if len(a.bs.SoftBounds(v)) == 0 || a.constrainedByArguments(v) {
			return false
		}
	}
	return len(a.vars) > 0
}

// legacySolution is the pre-1.8 rule: the arguments decide, and only
// variables the arguments leave unconstrained are taken from the expected
// type.
func (e *Engine) legacySolution(a *attempt, fromParams, fromReturn map[*types.InferenceVariable]types.Type, okR bool) map[*types.InferenceVariable]types.Type {
	if fromParams == nil {
		return nil
	}
	if !okR {
		return fromParams
	}
	out := make(map[*types.InferenceVariable]types.Type, len(fromParams))
	for _, v := range a.vars {
		out[v] = fromParams[v]
		if !a.constrainedByArguments(v) {
			out[v] = fromReturn[v]
		}
	}
	return out
}

func (a *attempt) constrainedByArguments(v *types.InferenceVariable) bool {
	for _, vw := range a.bs.viewsOf(v) {
		if !a.declared[vw.bound] {
			return true
		}
	}
	return false
}

// accepts checks an argument against an instantiated parameter in phase.
func (e *Engine) accepts(arg, param types.Type, phase Phase) bool {
	if phase == Strict {
		return e.env.IsCompatibleWith(arg, param)
	}
	return e.env.LooseCompatibility(arg, param) != types.Incompatible
}

// checkBounds verifies each type argument against its variable's declared
// bounds. A bound met only through an unchecked conversion marks the
// result unchecked.
func (e *Engine) checkBounds(call Call, m *types.MethodBinding, args []types.Type, res *Result) *errors.Problem {
	subst := types.NewMapSubstitution(m.TypeVariables, args)
	for i, tv := range m.TypeVariables {
		for _, b := range tv.DeclaredBounds() {
			bound := types.Substitute(subst, b)
			switch e.env.Compatibility(args[i], bound) {
			case types.Incompatible:
				return errors.NewProblem(errors.BoundMismatch, call.Pos).
					WithName(call.Selector).
					WithBindings(args[i], bound, m).
					ForVariable(tv).
					AtArgument(i)
			case types.UncheckedCompatible:
				res.Unchecked = true
			}
		}
	}
	return nil
}

func (e *Engine) warnUnchecked(call Call, res *Result) {
	res.Warnings = append(res.Warnings, errors.NewProblem(errors.UncheckedConversion, call.Pos).WithName(call.Selector).WithBindings(res.Method))
}

// notApplicable builds the problem for a call no candidate accepts. With a
// single candidate the offending argument is named; a contradiction in the
// bounds is diagnosed further to find a violated type parameter bound.
func (e *Engine) notApplicable(call Call, failures []failure) *errors.Problem {
	var best *failure
	for i := range failures {
		f := &failures[i]
		if best == nil || f.argument > best.argument || (f.contradiction && !best.contradiction) {
			best = f
		}
	}
	if len(call.Candidates) == 1 && best != nil && best.exhausted {
		return errors.NewProblem(errors.InferenceLimitExceeded, call.Pos).WithName(call.Selector).WithBindings(best.method)
	}
	if len(call.Candidates) == 1 && best != nil && best.contradiction {
		if p := e.diagnoseBounds(call, best.method); p != nil {
			return p
		}
		return errors.NewProblem(errors.InferenceFailed, call.Pos).WithName(call.Selector).WithBindings(best.method)
	}
	bindings := make([]errors.Binding, 0, len(call.Candidates)+1)
	for _, m := range call.Candidates {
		bindings = append(bindings, m)
	}
	p := errors.NewProblem(errors.NotApplicable, call.Pos).WithName(call.Selector)
	if best != nil && best.argument >= 0 {
		bindings = append(bindings, call.Arguments[best.argument])
		p.AtArgument(best.argument)
	}
	return p.WithBindings(bindings...)
}

// diagnoseBounds retries m without its declared bounds. When that
// succeeds, the bound the solution violates is the real failure.
func (e *Engine) diagnoseBounds(call Call, m *types.MethodBinding) *errors.Problem {
	if !m.IsGeneric() || len(call.TypeArguments) > 0 {
		return nil
	}
	for _, phase := range e.phases() {
		n, k := len(call.Arguments), len(m.Parameters)
		if (phase != Vararg && n != k) || (phase == Vararg && (!m.IsVarargs() || n < k-1)) {
			continue
		}
		bs := NewBoundSet(e.env)
		s := &inferenceSubstitution{params: map[*types.TypeVariable]*types.InferenceVariable{}}
		vars := make([]*types.InferenceVariable, len(m.TypeVariables))
		for i, tv := range m.TypeVariables {
			vars[i] = types.NewInferenceVariable(e.env, tv, -1, i)
			s.params[tv] = vars[i]
			bs.addVariable(vars[i], tv)
		}
		params, _ := types.SubstituteAll(s, m.Parameters)
		ok := true
		for i, arg := range call.Arguments {
			if arg == nil || !bs.reduceCompatible(arg, formal(params, i, phase == Vararg), phase != Strict) {
				ok = false
				break
			}
		}
		if !ok || !bs.incorporate() {
			continue
		}
		solution, ok := bs.resolve(vars)
		if !ok {
			continue
		}
		args := make([]types.Type, len(vars))
		for i, v := range vars {
			args[i] = solution[v]
		}
		if p := e.checkBounds(call, m, args, &Result{}); p != nil {
			return p
		}
	}
	return nil
}
