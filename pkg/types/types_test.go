package types

import (
	"sync"
	"testing"
)

func TestInterningReturnsIdenticalBindings(t *testing.T) {
	f := newFixture(t)
	env := f.env

	if f.listOf(f.str) != f.listOf(f.str) {
		t.Error("Expected List<String> to be interned")
	}
	if f.listOf(f.str) == f.listOf(f.integer) {
		t.Error("Expected List<String> and List<Integer> to differ")
	}
	if env.CreateRawType(f.list, nil) != env.CreateRawType(f.list, nil) {
		t.Error("Expected raw List to be interned")
	}
	if env.CreateArrayType(f.str, 2) != env.CreateArrayType(env.CreateArrayType(f.str, 1), 1) {
		t.Error("Expected String[][] to be interned regardless of construction path")
	}
	w1 := env.CreateWildcard(Extends, f.number)
	if w1 != env.CreateWildcard(Extends, f.number) {
		t.Error("Expected ? extends Number to be interned")
	}
	if env.CreateWildcard(Unbounded, f.number) != env.CreateWildcard(Unbounded, nil) {
		t.Error("Expected the bound of an unbounded wildcard to be ignored")
	}
	if env.CreateIntersection(f.number, f.serializable) != env.CreateIntersection(f.number, f.serializable) {
		t.Error("Expected intersections to be interned")
	}
	if env.CreateIntersection(f.number) != Type(f.number) {
		t.Error("Expected single component intersection to collapse")
	}
}

func TestInterningIsSafeAcrossGoroutines(t *testing.T) {
	f := newFixture(t)
	results := make([]*ParameterizedType, 16)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = f.env.CreateParameterizedType(f.list, []Type{f.env.CreateArrayType(f.integer, 1)}, nil)
		}(i)
	}
	wg.Wait()
	for _, r := range results[1:] {
		if r != results[0] {
			t.Fatal("Expected all goroutines to see the same binding")
		}
	}
}

func TestErasureIsIdempotent(t *testing.T) {
	f := newFixture(t)
	env := f.env
	bounded := env.CreateTypeVariable("N")
	bounded.SetBounds(f.number, f.serializable)

	cases := []Type{
		Int, Null, f.str, f.list, f.listOf(f.str),
		env.CreateRawType(f.list, nil),
		env.CreateArrayType(f.listOf(f.str), 2),
		env.CreateWildcard(Extends, f.number),
		env.CreateWildcard(Super, f.integer),
		bounded,
		env.CreateIntersection(f.number, f.serializable),
	}
	for _, c := range cases {
		e := c.Erasure()
		if e.Erasure() != e {
			t.Errorf("Erasure of %s is not idempotent: %s then %s", c, e, e.Erasure())
		}
	}
	if got := env.CreateArrayType(f.listOf(f.str), 1).Erasure(); got != env.CreateArrayType(f.list, 1) {
		t.Errorf("Expected List[], got %s", got)
	}
	if bounded.Erasure() != Type(f.number) {
		t.Errorf("Expected erasure Number, got %s", bounded.Erasure())
	}
	if env.CreateWildcard(Super, f.integer).Erasure() != Type(f.object) {
		t.Error("Expected ? super X to erase to Object")
	}
}

func TestSubstitutionReturnsInputWhenNothingChanges(t *testing.T) {
	f := newFixture(t)
	env := f.env
	e := f.list.TypeVariables[0]
	unrelated := env.CreateTypeVariable("X")
	s := NewMapSubstitution([]*TypeVariable{unrelated}, []Type{f.str})

	inputs := []Type{
		f.listOf(e),
		env.CreateArrayType(f.listOf(f.integer), 1),
		env.CreateWildcard(Extends, e),
		env.CreateIntersection(f.number, f.serializable),
		f.str, Int, Null,
	}
	for _, in := range inputs {
		if out := Substitute(s, in); out != in {
			t.Errorf("Expected %s to be returned unchanged, got %s", in, out)
		}
	}

	s2 := NewMapSubstitution(f.list.TypeVariables, []Type{f.str})
	if got := Substitute(s2, env.CreateArrayType(f.listOf(e), 1)); got != env.CreateArrayType(f.listOf(f.str), 1) {
		t.Errorf("Expected List<String>[], got %s", got)
	}
}

func TestRawTypesAreNeverSubstituted(t *testing.T) {
	f := newFixture(t)
	env := f.env
	raw := env.CreateRawType(f.list, nil)
	s := NewMapSubstitution(f.list.TypeVariables, []Type{f.str})
	if Substitute(s, raw) != Type(raw) {
		t.Error("Expected raw type to survive substitution")
	}
	args := raw.Arguments()
	if len(args) != 1 || args[0] != Type(f.object) {
		t.Errorf("Expected raw arguments [Object], got %v", args)
	}

	// a raw substitution turns parameterized types raw
	rawSub := &MapSubstitution{Vars: map[*TypeVariable]Type{f.list.TypeVariables[0]: f.object}, Raw: true}
	if got := Substitute(rawSub, f.listOf(f.list.TypeVariables[0])); got != Type(raw) {
		t.Errorf("Expected raw List, got %s", got)
	}
}

func TestNullType(t *testing.T) {
	f := newFixture(t)
	env := f.env
	for _, ref := range []Type{f.str, f.listOf(f.str), env.CreateArrayType(Int, 1), f.list.TypeVariables[0]} {
		if !env.IsCompatibleWith(Null, ref) {
			t.Errorf("Expected null compatible with %s", ref)
		}
	}
	if env.IsCompatibleWith(Null, Int) {
		t.Error("null must not be compatible with int")
	}
	s := NewMapSubstitution(f.list.TypeVariables, []Type{f.str})
	if Substitute(s, Null) != Type(Null) {
		t.Error("null must not be a substitution target")
	}
	if NewEnvironment().Lub(Null) != Type(Null) {
		t.Error("null must be shared by every environment")
	}
}

func TestPrimitiveConversions(t *testing.T) {
	tests := []struct {
		from, to *PrimitiveType
		want     Conversion
	}{
		{Int, Int, IdentityConversion},
		{Byte, Int, WideningConversion},
		{Char, Int, WideningConversion},
		{Int, Float, WideningConversion},
		{Long, Int, NarrowingConversion},
		{Byte, Char, WideningAndNarrowing},
		{Short, Char, NarrowingConversion},
		{Boolean, Int, NoConversion},
		{Int, Boolean, NoConversion},
	}
	for _, tt := range tests {
		if got := PrimitiveConversion(tt.from, tt.to); got != tt.want {
			t.Errorf("PrimitiveConversion(%s, %s) = %d, want %d", tt.from, tt.to, got, tt.want)
		}
	}
	env := NewEnvironment()
	if !env.IsCompatibleWith(Short, Double) || env.IsCompatibleWith(Double, Short) {
		t.Error("assignment compatibility must follow widening only")
	}
}

func TestSubtypingWithWildcards(t *testing.T) {
	f := newFixture(t)
	env := f.env
	extNumber := env.CreateWildcard(Extends, f.number)
	supInteger := env.CreateWildcard(Super, f.integer)

	tests := []struct {
		s, t Type
		want bool
	}{
		{f.arrayListOf(f.str), f.listOf(f.str), true},
		{f.arrayListOf(f.str), f.listOf(f.object), false},
		{f.listOf(f.integer), f.listOf(extNumber), true},
		{f.listOf(f.str), f.listOf(extNumber), false},
		{f.listOf(f.number), f.listOf(supInteger), true},
		{f.listOf(f.long), f.listOf(supInteger), false},
		{f.listOf(extNumber), f.listOf(env.CreateWildcard(Unbounded, nil)), true},
		{f.integer, env.CreateParameterizedType(f.comparable, []Type{f.integer}, nil), true},
		{env.CreateArrayType(f.integer, 1), env.CreateArrayType(f.number, 1), true},
		{env.CreateArrayType(Int, 1), env.CreateArrayType(f.integer, 1), false},
		{env.CreateArrayType(Int, 1), f.serializable, true},
		{env.CreateArrayType(Int, 1), f.cloneable, true},
		{f.arrayListOf(f.str), env.CreateRawType(f.list, nil), true},
		{env.CreateRawType(f.arrayList, nil), f.listOf(f.str), false},
		{env.CreateIntersection(f.number, f.serializable), f.serializable, true},
		{f.integer, env.CreateIntersection(f.number, f.serializable), true},
	}
	for _, tt := range tests {
		if got := env.IsSubtype(tt.s, tt.t); got != tt.want {
			t.Errorf("IsSubtype(%s, %s) = %v, want %v", tt.s, tt.t, got, tt.want)
		}
	}
}

func TestUncheckedAndLooseCompatibility(t *testing.T) {
	f := newFixture(t)
	env := f.env
	if got := env.Compatibility(env.CreateRawType(f.arrayList, nil), f.listOf(f.str)); got != UncheckedCompatible {
		t.Errorf("Expected unchecked raw->parameterized, got %s", got)
	}
	if got := env.Compatibility(Int, f.integer); got != Incompatible {
		t.Errorf("Expected strict int->Integer incompatible, got %s", got)
	}
	if got := env.LooseCompatibility(Int, f.number); got != Compatible {
		t.Errorf("Expected boxing int->Number, got %s", got)
	}
	if got := env.LooseCompatibility(f.integer, Long); got != Compatible {
		t.Errorf("Expected unboxing Integer->long, got %s", got)
	}
	if got := env.LooseCompatibility(f.long, Int); got != Incompatible {
		t.Errorf("Expected Long->int incompatible, got %s", got)
	}
}

func TestParameterizedMembersAreSubstituted(t *testing.T) {
	f := newFixture(t)
	ls := f.listOf(f.str)
	gets := ls.GetMethods("get")
	if len(gets) != 1 {
		t.Fatalf("Expected one get, got %d", len(gets))
	}
	get := gets[0]
	if get.ReturnType != Type(f.str) {
		t.Errorf("Expected get() to return String, got %s", get.ReturnType)
	}
	if get.Original() != f.listGet || !get.SameDeclaration(f.listGet) {
		t.Error("Expected the view to delegate identity to the declaration")
	}
	if get.DeclaringType != Type(ls) {
		t.Errorf("Expected declaring type List<String>, got %s", get.DeclaringType)
	}

	raw := f.env.CreateRawType(f.list, nil)
	add := raw.GetMethods("add")[0]
	if add.Parameters[0] != Type(f.object) || !add.IsRaw() {
		t.Errorf("Expected raw add(Object), got %s", add)
	}

	// members follow late additions to the declaration
	f.list.AddMethod(&MethodBinding{Selector: "size", Modifiers: Public | Abstract, ReturnType: Int})
	if len(ls.GetMethods("size")) != 1 {
		t.Error("Expected cached members to be refreshed after the declaration changed")
	}
}

func TestSupertypeOfParameterized(t *testing.T) {
	f := newFixture(t)
	al := f.arrayListOf(f.integer)
	sup := f.env.FindSuperTypeOriginatingFrom(al, f.list)
	if sup != Type(f.listOf(f.integer)) {
		t.Errorf("Expected List<Integer>, got %v", sup)
	}
	if f.env.FindSuperTypeOriginatingFrom(f.str, f.list) != nil {
		t.Error("String is not a List")
	}
}

func TestLubAndGlb(t *testing.T) {
	f := newFixture(t)
	env := f.env
	if got := env.Lub(f.integer, f.long); got != Type(f.number) {
		// Number & Comparable<...> is also valid; Number must come first
		it, ok := got.(*IntersectionType)
		if !ok || it.Types()[0] != Type(f.number) {
			t.Errorf("Expected lub(Integer, Long) to start with Number, got %s", got)
		}
	}
	if got := env.Lub(f.integer, Null); got != Type(f.integer) {
		t.Errorf("Expected lub(Integer, null) = Integer, got %s", got)
	}
	if got := env.Lub(f.arrayListOf(f.str), f.listOf(f.str)); got != Type(f.listOf(f.str)) {
		t.Errorf("Expected List<String>, got %s", got)
	}
	got := env.Lub(f.listOf(f.integer), f.listOf(f.long))
	p, ok := got.(*ParameterizedType)
	if !ok || p.Declaration() != f.list {
		t.Fatalf("Expected a List parameterization, got %s", got)
	}
	if w, ok := p.Arguments()[0].(*WildcardType); !ok || w.BoundKind != Extends {
		t.Errorf("Expected List<? extends ...>, got %s", got)
	}

	if g := env.Glb(f.number, f.object); g != Type(f.number) {
		t.Errorf("Expected glb(Number, Object) = Number, got %s", g)
	}
	g := env.Glb(f.serializable, f.number)
	if g != Type(f.number) {
		t.Errorf("Expected Number (already Serializable), got %s", g)
	}
	g = env.Glb(f.cloneable, f.number)
	if it, ok := g.(*IntersectionType); !ok || it.Types()[0] != Type(f.number) {
		t.Errorf("Expected Number & Cloneable, got %s", g)
	}
}

func TestCapture(t *testing.T) {
	f := newFixture(t)
	env := f.env
	wild := f.listOf(env.CreateWildcard(Extends, f.number))
	cap1 := env.Capture(wild)
	cap2 := env.Capture(wild)
	if cap1 == cap2 {
		t.Error("Expected each capture to be fresh")
	}
	cp := cap1.(*ParameterizedType)
	cv, ok := cp.Arguments()[0].(*TypeVariable)
	if !ok || !cv.IsCapture() {
		t.Fatalf("Expected a capture variable, got %s", cp.Arguments()[0])
	}
	if cv.FirstBound() != Type(f.number) {
		t.Errorf("Expected capture bound Number, got %s", cv.FirstBound())
	}
	get := cp.GetMethods("get")[0]
	if !env.IsCompatibleWith(get.ReturnType, f.number) {
		t.Errorf("Expected captured get() to be a Number, got %s", get.ReturnType)
	}

	sup := env.Capture(f.listOf(env.CreateWildcard(Super, f.integer))).(*ParameterizedType)
	scv := sup.Arguments()[0].(*TypeVariable)
	if !env.IsSubtype(f.integer, scv) {
		t.Error("Expected Integer <: capture of ? super Integer")
	}
	if env.Capture(f.str) != Type(f.str) {
		t.Error("Capture of a non-wildcard type must be the identity")
	}
}

func TestInferredMethod(t *testing.T) {
	f := newFixture(t)
	env := f.env
	m := &MethodBinding{Selector: "singleton", Modifiers: Public | Static}
	tv := env.CreateTypeVariable("T")
	m.SetTypeVariables([]*TypeVariable{tv})
	m.Parameters = []Type{tv}
	m.ReturnType = f.listOf(tv)
	f.list.AddMethod(m)

	im := NewInferredMethod(m, []Type{f.str}, false)
	if im.ReturnType != Type(f.listOf(f.str)) || im.Parameters[0] != Type(f.str) {
		t.Errorf("Unexpected inferred method %s returning %s", im, im.ReturnType)
	}
	if !im.SameDeclaration(m) || im.IsGeneric() || !im.IsParameterized() {
		t.Error("Inferred method must delegate identity to the declaration")
	}
	if m.Parameters[0] != Type(tv) {
		t.Error("Inference must not mutate the declaration")
	}
	um := NewInferredMethod(m, []Type{f.str}, true)
	if um.ReturnType != Type(f.list) {
		t.Errorf("Expected erased return for unchecked inference, got %s", um.ReturnType)
	}
}

func TestDescriptors(t *testing.T) {
	f := newFixture(t)
	env := f.env
	if got := Descriptor(env.CreateArrayType(f.str, 2)); got != "[[Ljava/lang/String;" {
		t.Errorf("Unexpected descriptor %s", got)
	}
	if got := MethodDescriptor(f.listGet); got != "(I)Ljava/lang/Object;" {
		t.Errorf("Unexpected method descriptor %s", got)
	}
	if got := Signature(f.listOf(env.CreateWildcard(Extends, f.number))); got != "Ljava/util/List<+Ljava/lang/Number;>;" {
		t.Errorf("Unexpected signature %s", got)
	}
	if got := f.listOf(f.str).String(); got != "List<String>" {
		t.Errorf("Unexpected readable name %s", got)
	}
}
