package builtins

import (
	"testing"

	"javasema/pkg/types"
)

func TestStandardInitializersOrder(t *testing.T) {
	inits := GetStandardInitializers()
	if len(inits) != 4 {
		t.Fatalf("expected 4 initializers, got %d", len(inits))
	}
	if inits[0].Name() != "java.lang" {
		t.Errorf("expected java.lang first, got %s", inits[0].Name())
	}
	for i := 1; i < len(inits); i++ {
		if inits[i-1].Priority() > inits[i].Priority() {
			t.Errorf("initializers not sorted: %s before %s", inits[i-1].Name(), inits[i].Name())
		}
	}
}

func TestSeedDeclaresWellKnownTypes(t *testing.T) {
	env, err := NewEnvironment()
	if err != nil {
		t.Fatalf("seeding failed: %v", err)
	}
	for _, name := range []string{
		"java.lang.Object", "java.lang.String", "java.lang.Integer", "java.lang.Enum",
		"java.lang.Iterable", "java.io.Serializable", "java.util.List", "java.util.ArrayList",
		"java.util.Map.Entry", "java.util.function.Function", "java.lang.annotation.Annotation",
	} {
		if env.LookupType(name) == nil {
			t.Errorf("%s was not declared", name)
		}
	}
	if env.LookupType("java.lang.Object") != env.Object() {
		t.Error("java.lang.Object must stay the environment's root")
	}
}

func TestSeededHierarchy(t *testing.T) {
	env := MustSeed(types.NewEnvironment())
	integer := env.LookupType("java.lang.Integer")
	number := env.LookupType("java.lang.Number")
	comparable := env.LookupType("java.lang.Comparable")

	if integer.Superclass() != number {
		t.Errorf("Integer superclass = %v, want Number", integer.Superclass())
	}
	want := env.CreateParameterizedType(comparable, []types.Type{integer}, nil)
	found := false
	for _, i := range integer.Interfaces() {
		if i == want {
			found = true
		}
	}
	if !found {
		t.Errorf("Integer should implement %v, has %v", want, integer.Interfaces())
	}
	if !env.IsSubtype(integer, env.LookupType("java.io.Serializable")) {
		t.Error("Integer should be Serializable through Number")
	}

	arrayList := env.LookupType("java.util.ArrayList")
	list := env.LookupType("java.util.List")
	str := env.LookupType("java.lang.String")
	als := env.CreateParameterizedType(arrayList, []types.Type{str}, nil)
	ls := env.CreateParameterizedType(list, []types.Type{str}, nil)
	if !env.IsSubtype(als, ls) {
		t.Errorf("%v should be a subtype of %v", als, ls)
	}
}

func TestSeededTypeVariableBounds(t *testing.T) {
	env := MustSeed(types.NewEnvironment())
	enum := env.LookupType("java.lang.Enum")
	if len(enum.TypeVariables) != 1 {
		t.Fatalf("Enum should have one type variable, has %d", len(enum.TypeVariables))
	}
	e := enum.TypeVariables[0]
	bound, ok := e.FirstBound().(*types.ParameterizedType)
	if !ok || bound.Declaration() != enum || bound.Arguments()[0] != e {
		t.Errorf("E should be bounded by Enum<E>, got %v", e.FirstBound())
	}
}

func TestSeededMethods(t *testing.T) {
	env := MustSeed(types.NewEnvironment())
	list := env.LookupType("java.util.List")

	get := list.GetMethods("get")
	if len(get) != 1 {
		t.Fatalf("expected one List.get, got %d", len(get))
	}
	if !get[0].IsAbstract() || !get[0].IsPublic() {
		t.Errorf("interface method should be public abstract, got %v", get[0].Modifiers)
	}
	if get[0].ReturnType != list.TypeVariables[0] {
		t.Errorf("List.get should return E, got %v", get[0].ReturnType)
	}

	of := list.GetMethods("of")
	var varargs *types.MethodBinding
	for _, m := range of {
		if m.IsVarargs() {
			varargs = m
		}
		if !m.IsStatic() || m.IsAbstract() {
			t.Errorf("List.of should be static and concrete: %v", m.Modifiers)
		}
	}
	if varargs == nil || !varargs.IsGeneric() {
		t.Fatal("expected a generic variable arity List.of")
	}
	if arr, ok := varargs.Parameters[0].(*types.ArrayType); !ok || arr.ElementType() != varargs.TypeVariables[0] {
		t.Errorf("List.of(E...) parameter should be E[], got %v", varargs.Parameters[0])
	}

	ctors := env.LookupType("java.util.ArrayList").GetMethods(types.ConstructorSelector)
	if len(ctors) != 3 {
		t.Errorf("expected 3 ArrayList constructors, got %d", len(ctors))
	}

	forEach := env.LookupType("java.lang.Iterable").GetMethods("forEach")
	if len(forEach) != 1 || !forEach[0].IsDefault() || forEach[0].IsAbstract() {
		t.Error("Iterable.forEach should be a default method")
	}
}

func TestBoxing(t *testing.T) {
	env := MustSeed(types.NewEnvironment())
	if got := env.Box(types.Int); got != env.LookupType("java.lang.Integer") {
		t.Errorf("Box(int) = %v", got)
	}
	if got := env.Unbox(env.LookupType("java.lang.Character")); got != types.Char {
		t.Errorf("Unbox(Character) = %v", got)
	}
}

func TestResolveErrors(t *testing.T) {
	env := types.NewEnvironment()
	ctx := NewTypeContext(env)
	err := ctx.declareStubs("p", []Stub{{Header: "class Broken extends Missing"}})
	if err != nil {
		t.Fatalf("declaring should succeed: %v", err)
	}
	if err := ctx.completeStubs("p", []Stub{{Header: "class Broken extends Missing"}}); err == nil {
		t.Error("expected an unknown type error")
	}
	if err := ctx.declareStubs("p", []Stub{{Header: "class"}}); err == nil {
		t.Error("expected a syntax error")
	}
}

func TestDeclareUserTypes(t *testing.T) {
	env := MustSeed(types.NewEnvironment())
	MustDeclare(env, "p",
		Stub{Header: "public abstract class Box<T extends Number> implements Comparable<Box<T>>", Members: []string{
			"public abstract T get()",
			"public static <U> Box<? extends U> wrap(U...)",
		}},
		Stub{Header: "public class IntBox extends Box<Integer>", Members: []string{
			"public Integer get()",
		}},
	)
	box := env.LookupType("p.Box")
	intBox := env.LookupType("p.IntBox")
	if box == nil || intBox == nil {
		t.Fatal("declared types not found")
	}
	want := env.CreateParameterizedType(box, []types.Type{env.LookupType("java.lang.Integer")}, nil)
	if intBox.Superclass() != want {
		t.Errorf("IntBox superclass = %v, want %v", intBox.Superclass(), want)
	}
	wrap := box.GetMethods("wrap")
	if len(wrap) != 1 || !wrap[0].IsVarargs() || !wrap[0].IsGeneric() {
		t.Fatalf("wrap = %v", wrap)
	}
	if err := Declare(env, "p", Stub{Header: "class Bad extends Nowhere"}); err == nil {
		t.Error("expected an unknown type error")
	}
}
