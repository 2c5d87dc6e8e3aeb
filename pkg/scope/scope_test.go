package scope

import (
	"testing"

	"javasema/pkg/builtins"
	"javasema/pkg/config"
	"javasema/pkg/errors"
	"javasema/pkg/types"
)

type unitFixture struct {
	env   *types.Environment
	tree  *Tree
	unit  ID
	outer *types.ReferenceBinding
	class ID
}

func newUnit(t *testing.T, opts *config.Options) *unitFixture {
	t.Helper()
	env, err := builtins.NewEnvironment()
	if err != nil {
		t.Fatalf("seeding: %v", err)
	}
	tree := NewTree(env, opts)
	unit := tree.NewUnitScope("p", []Import{{Name: "java.util", OnDemand: true}})
	outer, _ := env.DefineType(env.Package("p"), "Outer", types.Public)
	outer.SetSupertypes(env.Object(), nil)
	class := tree.NewClassScope(unit, outer)
	return &unitFixture{env: env, tree: tree, unit: unit, outer: outer, class: class}
}

func (f *unitFixture) method(parent ID, owner *types.ReferenceBinding, name string, flags MethodFlags) (ID, *types.MethodBinding) {
	m := &types.MethodBinding{Selector: name, DeclaringType: owner, ReturnType: types.Void}
	if flags&Static != 0 {
		m.Modifiers |= types.Static
	}
	owner.AddMethod(m)
	return f.tree.NewMethodScope(parent, m, flags), m
}

func (f *unitFixture) local(t *testing.T, scope ID, name string, typ types.Type) *LocalVariable {
	t.Helper()
	lv := &LocalVariable{Name: name, Type: typ}
	if p := f.tree.AddLocal(scope, lv); p != nil {
		t.Fatalf("AddLocal(%s): %v", name, p)
	}
	return lv
}

// anonymous declares new Object(){ ... } inside scope and opens one method in it.
func (f *unitFixture) anonymous(parent ID, enclosingMethod *types.MethodBinding, staticContext bool, flags MethodFlags) (*types.ReferenceBinding, ID) {
	anon := f.env.DefineLocalType(f.outer, enclosingMethod, "", staticContext)
	anon.SetSupertypes(f.env.Object(), nil)
	classID := f.tree.NewClassScope(parent, anon)
	run, _ := f.method(classID, anon, "run", flags)
	return anon, f.tree.NewBlockScope(run)
}

func TestCaptureFromAnonymousClass(t *testing.T) {
	f := newUnit(t, nil)
	m, mb := f.method(f.class, f.outer, "m", 0)
	body := f.tree.NewBlockScope(m)
	x := f.local(t, body, "x", types.Int)

	anon, runBody := f.anonymous(body, mb, false, 0)

	b, p := f.tree.Resolve(runBody, "x", MaskVariable, errors.Position{})
	if p != nil {
		t.Fatalf("resolving x: %v", p)
	}
	if b != x {
		t.Fatalf("x resolved to %v", b)
	}
	path, p := f.tree.EmulationPathFor(x, runBody)
	if p != nil {
		t.Fatalf("no emulation path: %v", p)
	}
	if len(path) < 1 || path[0].Kind != ViaField || path[0].Field.Name != "val$x" {
		t.Fatalf("expected a synthetic field path, got %v", path)
	}
	args := f.tree.SyntheticArguments(anon)
	// enclosing instance first, then the captured local
	if len(args) != 2 || args[0].Name != "this$0" || args[1].Local != x {
		t.Errorf("unexpected synthetic arguments %v", args)
	}
	if !x.Used {
		t.Error("x should be marked used")
	}
}

func TestCaptureAcrossStaticBoundary(t *testing.T) {
	f := newUnit(t, nil)
	m, mb := f.method(f.class, f.outer, "m", 0)
	body := f.tree.NewBlockScope(m)
	x := f.local(t, body, "x", types.Int)

	_, runBody := f.anonymous(body, mb, false, Static)

	_, p := f.tree.Resolve(runBody, "x", MaskVariable, errors.Position{Line: 7, Column: 3})
	if p == nil || p.Reason != errors.ScopeBoundary {
		t.Fatalf("expected ScopeBoundary, got %v", p)
	}
	if p.Line != 7 {
		t.Errorf("problem should carry the site, got %v", p.Position)
	}
	if _, p := f.tree.EmulationPathFor(x, runBody); p == nil || p.Reason != errors.ScopeBoundary {
		t.Errorf("expected ScopeBoundary from EmulationPathFor, got %v", p)
	}
}

func TestCaptureInConstructorUsesArgument(t *testing.T) {
	f := newUnit(t, nil)
	m, mb := f.method(f.class, f.outer, "m", 0)
	body := f.tree.NewBlockScope(m)
	x := f.local(t, body, "x", types.Long)

	anon := f.env.DefineLocalType(f.outer, mb, "", false)
	anon.SetSupertypes(f.env.Object(), nil)
	classID := f.tree.NewClassScope(body, anon)
	ctor, _ := f.method(classID, anon, types.ConstructorSelector, Constructor)

	path, p := f.tree.EmulationPathFor(x, ctor)
	if p != nil {
		t.Fatalf("unexpected problem %v", p)
	}
	if len(path) != 1 || path[0].Kind != ViaArgument || path[0].Argument.Name != "val$x" {
		t.Errorf("expected the val$x argument, got %v", path)
	}
	if len(f.tree.SyntheticFields(anon)) != 0 {
		t.Error("a constructor-only capture needs no synthetic field")
	}

	layout := f.tree.ComputeLocalSlots(ctor)
	// this, this$0, val$x (long)
	if layout.MaxLocals != 4 {
		t.Errorf("MaxLocals = %d, want 4", layout.MaxLocals)
	}
}

func TestCaptureFromLambdaAndSameMethod(t *testing.T) {
	f := newUnit(t, nil)
	m, _ := f.method(f.class, f.outer, "m", Static)
	x := f.local(t, m, "x", types.Int)
	inner := f.tree.NewBlockScope(m)

	path, p := f.tree.EmulationPathFor(x, inner)
	if p != nil || len(path) != 1 || path[0].Kind != DirectLocal {
		t.Fatalf("expected direct access, got %v %v", path, p)
	}

	lambda := f.tree.NewLambdaScope(inner)
	path, p = f.tree.EmulationPathFor(x, lambda)
	if p != nil || len(path) != 1 || path[0].Kind != ViaArgument {
		t.Fatalf("expected a lambda argument, got %v %v", path, p)
	}
	if got := f.tree.LambdaArguments(lambda); len(got) != 1 || got[0].Local != x {
		t.Errorf("lambda arguments = %v", got)
	}
	if !f.tree.Scope(lambda).IsStatic() {
		t.Error("a lambda in a static method is a static context")
	}
}

func TestCaptureRequiresEffectivelyFinal(t *testing.T) {
	f := newUnit(t, nil)
	m, mb := f.method(f.class, f.outer, "m", 0)
	x := f.local(t, m, "x", types.Int)
	f.tree.MarkAssigned(x)
	_, runBody := f.anonymous(m, mb, false, 0)
	if _, p := f.tree.Resolve(runBody, "x", MaskVariable, errors.Position{}); p == nil {
		t.Error("capturing a reassigned local must fail")
	}

	opts := config.DefaultOptions()
	opts.Compliance = config.JDK1_7
	old := newUnit(t, &opts)
	m, mb = old.method(old.class, old.outer, "m", 0)
	y := old.local(t, m, "y", types.Int)
	_, runBody = old.anonymous(m, mb, false, 0)
	if _, p := old.tree.EmulationPathFor(y, runBody); p == nil || p.Reason != errors.ComplianceViolation {
		t.Errorf("1.7 requires final captured locals, got %v", p)
	}
}

func TestEnclosingInstancePath(t *testing.T) {
	f := newUnit(t, nil)
	inner, _ := f.env.DefineMemberType(f.outer, "Inner", 0)
	inner.SetSupertypes(f.env.Object(), nil)
	innerID := f.tree.NewClassScope(f.class, inner)
	deep, _ := f.env.DefineMemberType(inner, "Deep", 0)
	deep.SetSupertypes(f.env.Object(), nil)
	deepID := f.tree.NewClassScope(innerID, deep)
	body, _ := f.method(deepID, deep, "f", 0)

	path, p := f.tree.EnclosingInstancePath(body, deep, true)
	if p != nil || len(path) != 1 || path[0].Kind != ImplicitThis {
		t.Fatalf("Deep.this should be implicit, got %v %v", path, p)
	}
	path, p = f.tree.EnclosingInstancePath(body, inner, true)
	if p != nil || len(path) != 1 || path[0].Kind != ViaField || path[0].Field.Name != "this$1" {
		t.Fatalf("Inner.this should be this$1, got %v %v", path, p)
	}
	path, p = f.tree.EnclosingInstancePath(body, f.outer, true)
	if p != nil || len(path) != 2 || path[1].Kind != ViaAccessor {
		t.Fatalf("Outer.this should be this$1 plus an accessor, got %v %v", path, p)
	}
	if path[1].Field.Name != "this$0" || path[1].Field.DeclaringType != inner {
		t.Errorf("accessor should read Inner.this$0, got %v", path[1].Field)
	}
	if got := path.String(); got != "this.this$1.access$0()" {
		t.Errorf("path renders as %q", got)
	}

	nested, _ := f.env.DefineMemberType(f.outer, "Nested", types.Static)
	nested.SetSupertypes(f.env.Object(), nil)
	nestedID := f.tree.NewClassScope(f.class, nested)
	g, _ := f.method(nestedID, nested, "g", 0)
	if _, p := f.tree.EnclosingInstancePath(g, f.outer, true); p == nil {
		t.Error("a static nested type has no enclosing instance")
	}
	static, _ := f.method(f.class, f.outer, "s", Static)
	if _, p := f.tree.EnclosingInstancePath(static, f.outer, true); p == nil || p.Reason != errors.ScopeBoundary {
		t.Errorf("Outer.this in a static method must cross a static boundary, got %v", p)
	}
}

func TestLocalSlotLayout(t *testing.T) {
	f := newUnit(t, nil)
	m, _ := f.method(f.class, f.outer, "m", Static)
	a := &LocalVariable{Name: "a", Type: types.Long, Argument: true}
	b := &LocalVariable{Name: "b", Type: types.Int, Argument: true}
	f.tree.AddLocal(m, a)
	f.tree.AddLocal(m, b)
	c := f.local(t, m, "c", types.Int)
	c.Used = true

	first := f.tree.NewBlockScope(m)
	d := f.local(t, first, "d", types.Int)
	d.Used = true
	second := f.tree.NewBlockScope(m)
	e := f.local(t, second, "e", types.Int)
	e.Used = true
	g := f.local(t, second, "g", types.Double)
	g.Used = true

	unused := f.local(t, m, "unused", types.Int)

	layout := f.tree.ComputeLocalSlots(m)
	want := map[*LocalVariable]int{a: 0, b: 2, c: 3, d: 4, e: 4, g: 5, unused: -1}
	for lv, slot := range want {
		if lv.Slot != slot {
			t.Errorf("%s: slot %d, want %d", lv.Name, lv.Slot, slot)
		}
	}
	if layout.MaxLocals != 7 {
		t.Errorf("MaxLocals = %d, want 7", layout.MaxLocals)
	}
	if a.ID != 0 || unused.ID != 6 {
		t.Errorf("analysis indexes should be shared across blocks: a=%d unused=%d", a.ID, unused.ID)
	}

	opts := config.DefaultOptions()
	opts.PreserveUnusedLocals = true
	kept := newUnit(t, &opts)
	m2, _ := kept.method(kept.class, kept.outer, "m", 0)
	v := kept.local(t, m2, "v", types.Int)
	kept.tree.ComputeLocalSlots(m2)
	if v.Slot != 1 {
		t.Errorf("preserved unused local should take slot 1, got %d", v.Slot)
	}
}

func TestSlotSize(t *testing.T) {
	f := newUnit(t, nil)
	tests := []struct {
		typ  types.Type
		want int
	}{
		{types.Long, 2},
		{types.Double, 2},
		{types.Int, 1},
		{types.Boolean, 1},
		{f.outer, 1},
		{nil, 1},
	}
	for _, tt := range tests {
		lv := &LocalVariable{Name: "x", Type: tt.typ}
		if got := lv.SlotSize(); got != tt.want {
			t.Errorf("SlotSize(%v) = %d, want %d", tt.typ, got, tt.want)
		}
		if got := slotSize(tt.typ); got != lv.SlotSize() {
			t.Errorf("slotSize(%v) = %d disagrees with SlotSize %d", tt.typ, got, lv.SlotSize())
		}
	}
}

func TestTooManyLocals(t *testing.T) {
	f := newUnit(t, nil)
	m, _ := f.method(f.class, f.outer, "m", Static)
	for i := 0; i < 32768; i++ {
		lv := &LocalVariable{Name: "l", Type: types.Long, Used: true}
		f.tree.scopes[m].Locals = append(f.tree.scopes[m].Locals, lv)
	}
	if layout := f.tree.ComputeLocalSlots(m); len(layout.Problems) != 0 {
		t.Fatalf("65536 slots should fit: %v", layout.Problems)
	}
	f.tree.scopes[m].Locals = append(f.tree.scopes[m].Locals, &LocalVariable{Name: "last", Type: types.Int, Used: true})
	layout := f.tree.ComputeLocalSlots(m)
	if len(layout.Problems) != 1 || layout.Problems[0].Reason != errors.TooManyLocals {
		t.Fatalf("expected one TooManyLocals problem, got %v", layout.Problems)
	}
}

func TestDuplicateLocal(t *testing.T) {
	f := newUnit(t, nil)
	m, _ := f.method(f.class, f.outer, "m", 0)
	f.local(t, m, "x", types.Int)
	block := f.tree.NewBlockScope(m)
	if p := f.tree.AddLocal(block, &LocalVariable{Name: "x", Type: types.Int}); p == nil || p.Reason != errors.NameClash {
		t.Errorf("redeclaring x in a nested block should clash, got %v", p)
	}
	lambda := f.tree.NewLambdaScope(m)
	if p := f.tree.AddLocal(lambda, &LocalVariable{Name: "x", Type: types.Int, Argument: true}); p == nil {
		t.Error("a lambda parameter may not shadow an enclosing local")
	}
}

func TestResolveFieldsAndTypes(t *testing.T) {
	f := newUnit(t, nil)
	f.outer.AddField(&types.FieldBinding{Name: "count", Type: types.Int, DeclaringType: f.outer})
	f.outer.AddField(&types.FieldBinding{Name: "LIMIT", Type: types.Int, DeclaringType: f.outer, Modifiers: types.Static})
	tv := f.env.CreateTypeVariable("T")
	f.outer.SetTypeVariables([]*types.TypeVariable{tv})

	m, _ := f.method(f.class, f.outer, "m", 0)
	if b, p := f.tree.Resolve(m, "count", MaskVariable, errors.Position{}); p != nil || b.(*types.FieldBinding).Name != "count" {
		t.Errorf("count: %v %v", b, p)
	}
	s, _ := f.method(f.class, f.outer, "s", Static)
	if _, p := f.tree.Resolve(s, "count", MaskVariable, errors.Position{}); p == nil || p.Reason != errors.ScopeBoundary {
		t.Errorf("instance field from a static method: %v", p)
	}
	if _, p := f.tree.Resolve(s, "LIMIT", MaskVariable, errors.Position{}); p != nil {
		t.Errorf("static field from a static method: %v", p)
	}
	if b, _ := f.tree.Resolve(m, "T", MaskType, errors.Position{}); b != tv {
		t.Errorf("T should resolve to the class type variable, got %v", b)
	}
	if b, _ := f.tree.Resolve(m, "String", MaskType, errors.Position{}); b != f.env.LookupType("java.lang.String") {
		t.Errorf("String should come from java.lang, got %v", b)
	}
	if b, _ := f.tree.Resolve(m, "ArrayList", MaskType, errors.Position{}); b != f.env.LookupType("java.util.ArrayList") {
		t.Errorf("ArrayList should come from the on demand import, got %v", b)
	}
	if b, _ := f.tree.Resolve(m, "java", MaskAny, errors.Position{}); b == nil {
		t.Error("java should resolve as a package")
	}
	if _, p := f.tree.Resolve(m, "Nope", MaskAny, errors.Position{}); p == nil || p.Reason != errors.NotFound {
		t.Errorf("expected NotFound, got %v", p)
	}
}

func TestResolveVisibilityAndAmbiguity(t *testing.T) {
	f := newUnit(t, nil)
	other, _ := f.env.DefineType(f.env.Package("q"), "Other", types.Public)
	other.SetSupertypes(f.env.Object(), nil)
	hidden, _ := f.env.DefineMemberType(other, "Hidden", types.Private)
	hidden.SetSupertypes(f.env.Object(), nil)
	other.AddField(&types.FieldBinding{Name: "secret", Type: types.Int, DeclaringType: other, Modifiers: types.Private})
	f.outer.SetSupertypes(other, nil)

	m, _ := f.method(f.class, f.outer, "m", 0)
	if _, p := f.tree.Resolve(m, "secret", MaskVariable, errors.Position{}); p == nil || p.Reason != errors.NotVisible {
		t.Errorf("private inherited field: %v", p)
	}
	if _, p := f.tree.Resolve(m, "Hidden", MaskType, errors.Position{}); p == nil || p.Reason != errors.NotVisible {
		t.Errorf("private inherited member type: %v", p)
	}

	// two on demand imports offering the same simple name
	list1, _ := f.env.DefineType(f.env.Package("r"), "ArrayList", types.Public)
	list1.SetSupertypes(f.env.Object(), nil)
	tree := NewTree(f.env, nil)
	unit := tree.NewUnitScope("p", []Import{{Name: "java.util", OnDemand: true}, {Name: "r", OnDemand: true}})
	if _, p := tree.Resolve(unit, "ArrayList", MaskType, errors.Position{}); p == nil || p.Reason != errors.Ambiguous {
		t.Errorf("expected Ambiguous, got %v", p)
	}
	unit = tree.NewUnitScope("p", []Import{{Name: "java.util", OnDemand: true}, {Name: "r.ArrayList"}})
	if b, p := tree.Resolve(unit, "ArrayList", MaskType, errors.Position{}); p != nil || b != list1 {
		t.Errorf("a single type import wins, got %v %v", b, p)
	}
}

func TestResolveTypeName(t *testing.T) {
	f := newUnit(t, nil)
	m, _ := f.method(f.class, f.outer, "m", 0)
	str := f.env.LookupType("java.lang.String")
	integer := f.env.LookupType("java.lang.Integer")
	entry := f.env.LookupType("java.util.Map.Entry")

	tests := []struct {
		text string
		want types.Type
	}{
		{"int", types.Int},
		{"String[][]", f.env.CreateArrayType(str, 2)},
		{"java.util.Map.Entry<String, Integer>", f.env.CreateParameterizedType(entry, []types.Type{str, integer}, nil)},
		{"Map.Entry<String, Integer>", f.env.CreateParameterizedType(entry, []types.Type{str, integer}, nil)},
		{"List", f.env.CreateRawType(f.env.LookupType("java.util.List"), nil)},
		{"[Ljava/lang/String;", f.env.CreateArrayType(str, 1)},
		{"Ljava/util/List<Ljava/lang/String;>;", f.env.CreateParameterizedType(f.env.LookupType("java.util.List"), []types.Type{str}, nil)},
		{"List<? extends Number>", f.env.CreateParameterizedType(f.env.LookupType("java.util.List"),
			[]types.Type{f.env.CreateWildcard(types.Extends, f.env.LookupType("java.lang.Number"))}, nil)},
	}
	for _, tt := range tests {
		got, p := f.tree.ResolveTypeName(m, tt.text, errors.Position{})
		if p != nil {
			t.Errorf("%s: %v", tt.text, p)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.text, got, tt.want)
		}
	}

	failures := []struct {
		text   string
		reason errors.Reason
	}{
		{"List<int>", errors.TypeMismatch},
		{"List<String, String>", errors.TypeMismatch},
		{"Enum<String>", errors.BoundMismatch},
		{"java.util.Nope", errors.NotFound},
		{"List<", errors.NotFound},
	}
	for _, tt := range failures {
		if _, p := f.tree.ResolveTypeName(m, tt.text, errors.Position{}); p == nil || p.Reason != tt.reason {
			t.Errorf("%s: expected %v, got %v", tt.text, tt.reason, p)
		}
	}
}

func TestCyclicHierarchy(t *testing.T) {
	f := newUnit(t, nil)
	pkg := f.env.Package("p")
	a, _ := f.env.DefineType(pkg, "A", 0)
	b, _ := f.env.DefineType(pkg, "B", 0)
	if p := f.tree.ConnectSupertypes(a, b, nil, errors.Position{}); p != nil {
		t.Fatalf("A extends B: %v", p)
	}
	p := f.tree.ConnectSupertypes(b, a, nil, errors.Position{})
	if p == nil || p.Reason != errors.CyclicHierarchy {
		t.Fatalf("expected a cycle, got %v", p)
	}
	if b.Superclass() != f.env.Object() {
		t.Errorf("B should fall back to Object, got %v", b.Superclass())
	}

	member, _ := f.env.DefineMemberType(a, "M", types.Static)
	c, _ := f.env.DefineType(pkg, "C", 0)
	c.SetSupertypes(f.env.Object(), nil)
	if p := f.tree.ConnectSupertypes(c, member, nil, errors.Position{}); p != nil {
		t.Errorf("extending another type's member is fine: %v", p)
	}
	if p := f.tree.ConnectSupertypes(a, member, nil, errors.Position{}); p == nil {
		t.Error("a type cannot extend its own member type")
	}
}
