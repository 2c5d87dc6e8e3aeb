package infer

import (
	"testing"

	"github.com/davecgh/go-spew/spew"

	"javasema/pkg/builtins"
	"javasema/pkg/config"
	"javasema/pkg/errors"
	"javasema/pkg/types"
)

type fixture struct {
	t   *testing.T
	env *types.Environment
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	env := builtins.MustSeed(types.NewEnvironment())
	builtins.MustDeclare(env, "p", builtins.Stub{Header: "public class Util", Members: []string{
		"public static <T extends Number> T first(T)",
		"public static <T> T id(T)",
		"public static void box(Integer)",
		"public static void prim(long)",
		"public static void prim(Integer)",
		"public static void amb(Integer, Object)",
		"public static void amb(Object, Integer)",
	}})
	return &fixture{t: t, env: env}
}

func (f *fixture) typ(name string) *types.ReferenceBinding {
	f.t.Helper()
	rb := f.env.LookupType(name)
	if rb == nil {
		f.t.Fatalf("type %s not seeded", name)
	}
	return rb
}

func (f *fixture) methods(typeName, selector string) []*types.MethodBinding {
	f.t.Helper()
	ms := f.typ(typeName).GetMethods(selector)
	if len(ms) == 0 {
		f.t.Fatalf("%s has no method %s", typeName, selector)
	}
	return ms
}

func (f *fixture) param(generic string, args ...types.Type) *types.ParameterizedType {
	return f.env.CreateParameterizedType(f.typ(generic), args, nil)
}

func (f *fixture) engine(level config.Level, policy Policy) *Engine {
	return NewEngine(f.env, level, policy, nil)
}

func (f *fixture) resolve(e *Engine, call Call) *Result {
	f.t.Helper()
	res, p := e.Resolve(call)
	if p != nil {
		f.t.Fatalf("%s: unexpected problem %v", call.Selector, p)
	}
	return res
}

func TestVarargsInference(t *testing.T) {
	f := newFixture(t)
	e := f.engine(config.Latest, ParameterFirst)
	str, integer := f.typ("java.lang.String"), f.typ("java.lang.Integer")

	tests := []struct {
		name string
		call Call
		want types.Type
	}{
		{"asList strings", Call{Selector: "asList", Candidates: f.methods("java.util.Arrays", "asList"), Arguments: []types.Type{str, str}}, str},
		{"asList boxed", Call{Selector: "asList", Candidates: f.methods("java.util.Arrays", "asList"), Arguments: []types.Type{types.Int, types.Int}}, integer},
		{"List.of", Call{Selector: "of", Candidates: f.methods("java.util.List", "of"), Arguments: []types.Type{str, str, str}}, str},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := f.resolve(e, tt.call)
			if res.Phase != Vararg {
				t.Errorf("phase = %s, want vararg", res.Phase)
			}
			if len(res.TypeArguments) != 1 || res.TypeArguments[0] != tt.want {
				t.Fatalf("type arguments = %v, want [%v]", res.TypeArguments, tt.want)
			}
			if want := f.param("java.util.List", tt.want); res.Method.ReturnType != types.Type(want) {
				t.Errorf("return type = %v, want %v", res.Method.ReturnType, want)
			}
			if res.Method.Original() != res.Declaration {
				t.Error("the inferred method must derive from the declaration")
			}
		})
	}
}

func TestFixedArityPreferredOverVarargs(t *testing.T) {
	f := newFixture(t)
	str := f.typ("java.lang.String")
	res := f.resolve(f.engine(config.Latest, ParameterFirst), Call{
		Selector: "of", Candidates: f.methods("java.util.List", "of"), Arguments: []types.Type{str},
	})
	if res.Phase != Strict || res.Declaration.IsVarargs() {
		t.Errorf("got %v in %s phase, want of(E) in strict phase", res.Declaration, res.Phase)
	}
}

func TestExpectedTypeDrivesInference(t *testing.T) {
	f := newFixture(t)
	str := f.typ("java.lang.String")
	call := Call{
		Selector:   "emptyList",
		Candidates: f.methods("java.util.Collections", "emptyList"),
		Expected:   f.param("java.util.List", str),
	}
	for _, level := range []config.Level{config.JDK1_7, config.Latest} {
		for _, policy := range []Policy{ParameterFirst, ReturnFirst} {
			res := f.resolve(f.engine(level, policy), call)
			if len(res.TypeArguments) != 1 || res.TypeArguments[0] != types.Type(str) {
				t.Errorf("%s/%s: type arguments = %v, want [String]", level, policy, res.TypeArguments)
			}
		}
	}

	call.Expected = nil
	res := f.resolve(f.engine(config.Latest, ParameterFirst), call)
	if res.TypeArguments[0] != types.Type(f.env.Object()) {
		t.Errorf("without a target T = %v, want Object", res.TypeArguments[0])
	}
}

func TestPolicyTieBreak(t *testing.T) {
	f := newFixture(t)
	integer := f.typ("java.lang.Integer")
	call := Call{
		Selector:   "of",
		Candidates: f.methods("java.util.Optional", "of"),
		Arguments:  []types.Type{integer},
		Expected:   f.param("java.util.Optional", f.env.Object()),
	}

	res := f.resolve(f.engine(config.Latest, ParameterFirst), call)
	if res.TypeArguments[0] != types.Type(integer) || res.Source != FromParameters {
		t.Errorf("parameter-first: T = %v from %s, want Integer from parameters", res.TypeArguments[0], res.Source)
	}
	res = f.resolve(f.engine(config.Latest, ReturnFirst), call)
	if res.TypeArguments[0] != types.Type(f.env.Object()) || res.Source != FromReturn {
		t.Errorf("return-first: T = %v from %s, want Object from return", res.TypeArguments[0], res.Source)
	}
	res = f.resolve(f.engine(config.JDK1_7, ReturnFirst), call)
	if res.TypeArguments[0] != types.Type(integer) {
		t.Errorf("1.7: T = %v, want Integer: arguments decide before 1.8", res.TypeArguments[0])
	}
}

func TestExpectedTypeMustAcceptResult(t *testing.T) {
	f := newFixture(t)
	str, integer := f.typ("java.lang.String"), f.typ("java.lang.Integer")
	call := Call{
		Selector:   "id",
		Candidates: f.methods("p.Util", "id"),
		Arguments:  []types.Type{integer},
		Expected:   str,
	}

	for _, policy := range []Policy{ParameterFirst, ReturnFirst} {
		res, p := f.engine(config.Latest, policy).Resolve(call)
		if p == nil {
			t.Errorf("%s: String s = id(Integer) resolved to %v", policy, res.Method)
			continue
		}
		if p.Reason != errors.TypeMismatch {
			t.Errorf("%s: reason = %s, want TypeMismatch", policy, p.Reason)
		}
		if len(p.Bindings) != 2 || p.Bindings[0] != errors.Binding(integer) || p.Bindings[1] != errors.Binding(str) {
			t.Errorf("%s: bindings = %v, want [Integer String]", policy, p.Bindings)
		}
	}

	// before 1.8 the target does not take part in inference
	res := f.resolve(f.engine(config.JDK1_7, ParameterFirst), call)
	if res.TypeArguments[0] != types.Type(integer) {
		t.Errorf("1.7: T = %v, want Integer", res.TypeArguments[0])
	}

	call.Expected = nil
	res = f.resolve(f.engine(config.Latest, ParameterFirst), call)
	if res.TypeArguments[0] != types.Type(integer) {
		t.Errorf("without a target T = %v, want Integer", res.TypeArguments[0])
	}

	// unboxing and widening still reach a primitive target
	res = f.resolve(f.engine(config.Latest, ParameterFirst), Call{
		Selector:   "first",
		Candidates: f.methods("p.Util", "first"),
		Arguments:  []types.Type{integer},
		Expected:   types.Long,
	})
	if res.TypeArguments[0] != types.Type(integer) {
		t.Errorf("long x = first(Integer): T = %v, want Integer", res.TypeArguments[0])
	}
}

func TestSoftBoundsBreakTies(t *testing.T) {
	f := newFixture(t)
	object := f.env.Object()
	e := f.engine(config.Latest, ParameterFirst)
	call := Call{
		Selector:   "id",
		Candidates: f.methods("p.Util", "id"),
		Arguments:  []types.Type{types.Null},
		Expected:   object,
	}

	res := f.resolve(e, call)
	if res.TypeArguments[0] != types.Type(object) || res.Source != FromReturn {
		t.Errorf("id(null): T = %v from %s, want Object from return", res.TypeArguments[0], res.Source)
	}

	call.Arguments = []types.Type{object}
	res = f.resolve(e, call)
	if res.TypeArguments[0] != types.Type(object) || res.Source != FromParameters {
		t.Errorf("id(Object): T = %v from %s, want Object from parameters", res.TypeArguments[0], res.Source)
	}
}

func TestSoftBoundsNeverFail(t *testing.T) {
	f := newFixture(t)
	number, integer, str := f.typ("java.lang.Number"), f.typ("java.lang.Integer"), f.typ("java.lang.String")
	tv := f.env.CreateTypeVariable("T")
	alpha := types.NewInferenceVariable(f.env, tv, 0, 0)

	bs := NewBoundSet(f.env)
	bs.addVariable(alpha, tv)
	bs.add(alpha, Upper, number)
	if !bs.reduceSubtype(types.Null, alpha) {
		t.Fatal("null <: α must hold")
	}
	if !bs.Nullable(alpha) || len(bs.SoftBounds(alpha)) != 1 {
		t.Errorf("null should be recorded as a soft bound:\n%s", bs.Dump())
	}
	if len(bs.LowerBounds(alpha)) != 0 {
		t.Errorf("soft bounds must not show up as lower bounds: %v", bs.LowerBounds(alpha))
	}

	// String contradicts the upper bound, but only softly
	bs.addSoft(alpha, Lower, str)
	if !bs.incorporate() {
		t.Fatalf("a soft bound caused a contradiction:\n%s", bs.Dump())
	}
	solution, ok := bs.Copy().resolve([]*types.InferenceVariable{alpha})
	if !ok || solution[alpha] != types.Type(number) {
		t.Errorf("solution = %s", spew.Sdump(solution))
	}

	c := bs.Copy()
	c.addSoft(alpha, Lower, integer)
	if len(bs.SoftBounds(alpha)) != 2 || len(c.SoftBounds(alpha)) != 3 {
		t.Errorf("copies must not share soft bounds: %d and %d", len(bs.SoftBounds(alpha)), len(c.SoftBounds(alpha)))
	}

	hard, soft := &TypeBound{Var: alpha, Relation: Lower, Type: str}, &TypeBound{Var: alpha, Relation: Lower, Type: str, Soft: true}
	if hard.Hash() == soft.Hash() {
		t.Error("soft and hard bounds must hash apart")
	}
}

func TestIncorporationLimit(t *testing.T) {
	f := newFixture(t)
	number, integer, str := f.typ("java.lang.Number"), f.typ("java.lang.Integer"), f.typ("java.lang.String")
	tv := f.env.CreateTypeVariable("T")
	alpha := types.NewInferenceVariable(f.env, tv, 0, 0)

	bs := NewBoundSet(f.env)
	bs.addVariable(alpha, tv)
	bs.iterations = maxRounds
	bs.add(alpha, Upper, number)
	if bs.incorporate() || !bs.Exhausted() {
		t.Errorf("incorporating past %d rounds: exhausted = %v", maxRounds, bs.Exhausted())
	}

	contradiction := NewBoundSet(f.env)
	contradiction.addVariable(alpha, tv)
	contradiction.add(alpha, Lower, integer)
	contradiction.add(alpha, Upper, str)
	if contradiction.incorporate() || contradiction.Exhausted() {
		t.Errorf("a contradiction is not an exhausted bound set:\n%s", contradiction.Dump())
	}

	e := f.engine(config.Latest, ParameterFirst)
	first := f.methods("p.Util", "first")
	call := Call{Selector: "first", Candidates: first, Arguments: []types.Type{integer}}
	p := e.notApplicable(call, []failure{{method: first[0], phase: Strict, argument: -1, contradiction: true, exhausted: true}})
	if p.Reason != errors.InferenceLimitExceeded {
		t.Errorf("reason = %s, want InferenceLimitExceeded", p.Reason)
	}
}

func TestPhasesAndMostSpecific(t *testing.T) {
	f := newFixture(t)
	e := f.engine(config.Latest, ParameterFirst)
	str := f.typ("java.lang.String")

	res := f.resolve(e, Call{Selector: "box", Candidates: f.methods("p.Util", "box"), Arguments: []types.Type{types.Int}})
	if res.Phase != Loose {
		t.Errorf("box(int) phase = %s, want loose", res.Phase)
	}

	res = f.resolve(e, Call{Selector: "prim", Candidates: f.methods("p.Util", "prim"), Arguments: []types.Type{types.Int}})
	if res.Phase != Strict || res.Method.Parameters[0] != types.Type(types.Long) {
		t.Errorf("prim(int) = %v in %s phase, want prim(long) by widening", res.Method, res.Phase)
	}

	valueOf := f.methods("java.lang.String", "valueOf")
	tests := []struct {
		arg  types.Type
		want types.Type
	}{
		{types.Int, types.Int},
		{types.Char, types.Char},
		{str, f.env.Object()},
	}
	for _, tt := range tests {
		res := f.resolve(e, Call{Selector: "valueOf", Candidates: valueOf, Arguments: []types.Type{tt.arg}})
		if got := res.Method.Parameters[0]; got != tt.want {
			t.Errorf("valueOf(%v) picked parameter %v, want %v", tt.arg, got, tt.want)
		}
	}
}

func TestAmbiguousCall(t *testing.T) {
	f := newFixture(t)
	integer := f.typ("java.lang.Integer")
	_, p := f.engine(config.Latest, ParameterFirst).Resolve(Call{
		Selector: "amb", Candidates: f.methods("p.Util", "amb"), Arguments: []types.Type{integer, integer},
	})
	if p == nil || p.Reason != errors.Ambiguous {
		t.Fatalf("expected Ambiguous, got %v", p)
	}
	if len(p.Bindings) != 2 {
		t.Errorf("bindings = %v, want both candidates", p.Bindings)
	}
}

func TestNotApplicable(t *testing.T) {
	f := newFixture(t)
	e := f.engine(config.Latest, ParameterFirst)
	str := f.typ("java.lang.String")

	_, p := e.Resolve(Call{Selector: "concat", Candidates: f.methods("java.lang.String", "concat"), Arguments: []types.Type{types.Int}})
	if p == nil || p.Reason != errors.NotApplicable || p.ArgumentIndex != 0 {
		t.Fatalf("concat(int): got %v", p)
	}

	_, p = e.Resolve(Call{Selector: "substring", Candidates: f.methods("java.lang.String", "substring"), Arguments: []types.Type{str}})
	if p == nil || p.Reason != errors.NotApplicable {
		t.Fatalf("substring(String): got %v", p)
	}
	if p.ArgumentIndex != 0 || len(p.Bindings) != 3 {
		t.Errorf("substring(String): argument %d, bindings %v", p.ArgumentIndex, p.Bindings)
	}

	_, p = e.Resolve(Call{Selector: "missing"})
	if p == nil || p.Reason != errors.NotFound {
		t.Errorf("no candidates: got %v", p)
	}

	_, p = f.engine(config.JDK1_4, ParameterFirst).Resolve(Call{
		Selector: "asList", Candidates: f.methods("java.util.Arrays", "asList"), Arguments: []types.Type{str},
	})
	if p == nil || p.Reason != errors.NotApplicable {
		t.Errorf("generic method at 1.4: got %v", p)
	}
}

func TestBoundMismatch(t *testing.T) {
	f := newFixture(t)
	e := f.engine(config.Latest, ParameterFirst)
	str, integer := f.typ("java.lang.String"), f.typ("java.lang.Integer")
	first := f.methods("p.Util", "first")

	res := f.resolve(e, Call{Selector: "first", Candidates: first, Arguments: []types.Type{integer}})
	if res.Method.ReturnType != types.Type(integer) {
		t.Errorf("first(Integer) returns %v", res.Method.ReturnType)
	}

	_, p := e.Resolve(Call{Selector: "first", Candidates: first, Arguments: []types.Type{str}})
	if p == nil || p.Reason != errors.BoundMismatch {
		t.Fatalf("first(String): expected BoundMismatch, got %v", p)
	}
	if p.Variable != errors.Binding(first[0].TypeVariables[0]) || p.Binding(0) != errors.Binding(str) {
		t.Errorf("first(String): variable %v, bindings %v", p.Variable, p.Bindings)
	}

	_, p = e.Resolve(Call{Selector: "first", Candidates: first, Arguments: []types.Type{str}, TypeArguments: []types.Type{str}})
	if p == nil || p.Reason != errors.BoundMismatch {
		t.Errorf("<String>first(String): expected BoundMismatch, got %v", p)
	}
}

func TestUncheckedInvocation(t *testing.T) {
	f := newFixture(t)
	list := f.typ("java.util.List")
	res := f.resolve(f.engine(config.Latest, ParameterFirst), Call{
		Selector:   "unmodifiableList",
		Candidates: f.methods("java.util.Collections", "unmodifiableList"),
		Arguments:  []types.Type{f.env.CreateRawType(list, nil)},
	})
	if !res.Unchecked || !res.Method.Unchecked {
		t.Fatal("a raw argument must make the invocation unchecked")
	}
	if res.Method.ReturnType != types.Type(list) {
		t.Errorf("return type = %v, want the erasure List", res.Method.ReturnType)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Reason != errors.UncheckedConversion {
		t.Errorf("warnings = %v", res.Warnings)
	}
}

func TestVariableTable(t *testing.T) {
	f := newFixture(t)
	table := NewVariableTable()
	tv := f.methods("java.util.Arrays", "asList")[0].TypeVariables[0]

	a := table.Variable(f.env, tv, 1, 0)
	if table.Variable(f.env, tv, 1, 0) != a {
		t.Error("same parameter, site and rank must intern to one variable")
	}
	if table.Variable(f.env, tv, 2, 0) == a {
		t.Error("another site must get its own variable")
	}
	table.Release(1)
	if table.Len() != 1 {
		t.Errorf("after release: %d variables, want 1", table.Len())
	}

	e := NewEngine(f.env, config.Latest, ParameterFirst, table)
	f.resolve(e, Call{Site: 7, Selector: "asList", Candidates: f.methods("java.util.Arrays", "asList"), Arguments: []types.Type{types.Int}})
	if table.Len() != 1 {
		t.Errorf("resolving must release its site: %d variables", table.Len())
	}
}

func TestBoundSetIncorporation(t *testing.T) {
	f := newFixture(t)
	number, integer, str := f.typ("java.lang.Number"), f.typ("java.lang.Integer"), f.typ("java.lang.String")
	tv := f.env.CreateTypeVariable("T")
	alpha := types.NewInferenceVariable(f.env, tv, 0, 0)
	beta := types.NewInferenceVariable(f.env, tv, 0, 1)

	bs := NewBoundSet(f.env)
	bs.addVariable(alpha, tv)
	bs.addVariable(beta, tv)
	bs.add(alpha, Upper, beta)
	bs.add(alpha, Lower, integer)
	bs.add(alpha, Upper, number)
	if !bs.incorporate() {
		t.Fatalf("consistent bounds reported a contradiction:\n%s", bs.Dump())
	}
	found := false
	for _, l := range bs.LowerBounds(beta) {
		if l == types.Type(integer) {
			found = true
		}
	}
	if !found {
		t.Errorf("Integer <: α <: β should give Integer <: β:\n%s", bs.Dump())
	}

	solution, ok := bs.Copy().resolve([]*types.InferenceVariable{alpha, beta})
	if !ok || solution[alpha] != types.Type(integer) || solution[beta] != types.Type(integer) {
		t.Errorf("solution = %s", spew.Sdump(solution))
	}

	bs.add(alpha, Upper, str)
	if bs.incorporate() {
		t.Errorf("Integer <: α <: String must be a contradiction:\n%s", bs.Dump())
	}
}

func TestParsePolicy(t *testing.T) {
	for in, want := range map[string]Policy{"": ParameterFirst, "parameter-first": ParameterFirst, " Return-First ": ReturnFirst} {
		got, err := ParsePolicy(in)
		if err != nil || got != want {
			t.Errorf("ParsePolicy(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParsePolicy("newest"); err == nil {
		t.Error("expected an error for an unknown policy")
	}
}
