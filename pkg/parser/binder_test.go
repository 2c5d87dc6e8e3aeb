package parser

import (
	"context"
	"testing"

	"javasema/pkg/config"
	"javasema/pkg/driver"
	"javasema/pkg/errors"
	"javasema/pkg/types"
)

func bind(t *testing.T, mutate func(*config.Options), name, src string) (*driver.Session, *driver.Unit) {
	t.Helper()
	opts := config.DefaultOptions()
	if mutate != nil {
		mutate(&opts)
	}
	s, err := driver.NewSession(opts)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	cu := parse(t, name, src)
	if len(cu.Errors) != 0 {
		t.Fatalf("syntax errors: %v", cu.Errors)
	}
	u, err := Bind(context.Background(), cu, s)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	return s, u
}

func reasons(probs []*errors.Problem) map[errors.Reason][]string {
	out := make(map[errors.Reason][]string)
	for _, p := range probs {
		out[p.Reason] = append(out[p.Reason], p.Name)
	}
	return out
}

func TestBindCleanUnit(t *testing.T) {
	s, u := bind(t, nil, "Outer.java", `
package demo;

public class Outer<T extends Comparable<T>> implements Runnable {
    private T value;
    private int count;

    public Outer(T value) { this.value = value; }

    public void run() {
        final int x = count;
        int y = x + 1;
        Runnable r = new Runnable() {
            public void run() { System.currentTimeMillis(); int z = x; }
        };
        Runnable l = () -> { int w = y; };
        r.run();
    }

    class Inner { int get() { return count; } }

    enum Color { RED, GREEN }

    record Point(int x, int y) {}
}
`)
	if probs := u.Problems(); len(probs) != 0 {
		t.Fatalf("unexpected problems %v", probs)
	}

	env := s.Environment()
	outer := env.LookupType("demo.Outer")
	if outer == nil || len(outer.TypeVariables) != 1 {
		t.Fatalf("demo.Outer = %v", outer)
	}
	if ctors := outer.GetMethods(types.ConstructorSelector); len(ctors) != 1 || ctors[0].Parameters[0] != outer.TypeVariables[0] {
		t.Errorf("constructor = %v", ctors)
	}
	if f := outer.GetField("count"); f == nil || f.Type != types.Int || !f.Modifiers.Has(types.Private) {
		t.Errorf("count = %v", f)
	}

	color := outer.GetMemberType("Color")
	if color == nil || !color.Modifiers.Has(types.Static) || !color.Modifiers.Has(types.Final) {
		t.Fatalf("Color = %v", color)
	}
	if f := color.GetField("RED"); f == nil || f.Type != color || !f.Modifiers.Has(types.Static) {
		t.Errorf("RED = %v", f)
	}
	values := color.GetMethods("values")
	if len(values) != 1 || values[0].ReturnType != env.CreateArrayType(color, 1) {
		t.Errorf("values = %v", values)
	}
	if valueOf := color.GetMethods("valueOf"); len(valueOf) != 1 || valueOf[0].ReturnType != color {
		t.Errorf("valueOf = %v", valueOf)
	}

	point := outer.GetMemberType("Point")
	if point == nil {
		t.Fatal("Point not declared")
	}
	for _, name := range []string{"x", "y"} {
		acc := point.GetMethods(name)
		if len(acc) != 1 || acc[0].ReturnType != types.Int || len(acc[0].Parameters) != 0 {
			t.Errorf("accessor %s = %v", name, acc)
		}
	}
	if ctors := point.GetMethods(types.ConstructorSelector); len(ctors) != 1 || len(ctors[0].Parameters) != 2 {
		t.Errorf("canonical constructor = %v", ctors)
	}

	anonymous := 0
	for _, rb := range u.Types() {
		if rb.IsAnonymous() {
			anonymous++
		}
	}
	if anonymous != 1 {
		t.Errorf("expected one anonymous type, got %d", anonymous)
	}

	reports, err := s.VerifyUnits(context.Background(), []*driver.Unit{u})
	if err != nil {
		t.Fatalf("VerifyUnits: %v", err)
	}
	if probs := reports[0].Problems(); len(probs) != 0 {
		t.Errorf("verification problems %v", probs)
	}
}

func TestBindCaptures(t *testing.T) {
	src := `
class Captures {
    void m() {
        int a = 1;
        a = 2;
        Runnable r1 = () -> System.out.println(a);

        int c = 0;
        Runnable r2 = () -> System.out.println(c);
        c++;

        int e;
        e = 5;
        Runnable r3 = () -> System.out.println(e);

        int d = 0;
        d += 1;
        int f = d;
    }
}
`
	_, u := bind(t, nil, "Captures.java", src)
	got := reasons(u.Problems())
	if len(u.Problems()) != 2 {
		t.Fatalf("problems %v", u.Problems())
	}
	names := got[errors.ScopeBoundary]
	if len(names) != 2 || names[0] != "a" || names[1] != "c" {
		t.Errorf("ScopeBoundary reported for %v, want [a c]", names)
	}

	// before 1.8 captures are not checked for effective finality here
	_, u = bind(t, func(o *config.Options) { o.Compliance = config.JDK1_7 }, "Captures.java", src)
	if probs := u.Problems(); len(probs) != 0 {
		t.Errorf("1.7: unexpected problems %v", probs)
	}
}

func TestBindReportsDeclarationProblems(t *testing.T) {
	_, u := bind(t, nil, "Dup.java", `
class Dup {}
class Dup {}
class Holder {
    Missing m;
    int n;
    String n;
}
class Impl implements Holder {}
`)
	got := reasons(u.Problems())
	if names := got[errors.NameClash]; len(names) != 2 || names[0] != "Dup" || names[1] != "n" {
		t.Errorf("NameClash = %v", names)
	}
	if names := got[errors.NotFound]; len(names) != 1 {
		t.Errorf("NotFound = %v", names)
	}
	if names := got[errors.TypeMismatch]; len(names) != 1 || names[0] != "Holder" {
		t.Errorf("TypeMismatch = %v", names)
	}
}

func TestBindCyclicHierarchy(t *testing.T) {
	_, u := bind(t, nil, "Cycle.java", `
class A extends B {}
class B extends A {}
`)
	if names := reasons(u.Problems())[errors.CyclicHierarchy]; len(names) == 0 {
		t.Errorf("expected a cyclic hierarchy, got %v", u.Problems())
	}
}

func TestBindLocalClassCapture(t *testing.T) {
	_, u := bind(t, nil, "Host.java", `
class Host {
    void m() {
        final int x = 1;
        int unused = 2;
        class Local {
            int get() { return x; }
        }
    }
}
`)
	if probs := u.Problems(); len(probs) != 0 {
		t.Fatalf("unexpected problems %v", probs)
	}
	var local *types.ReferenceBinding
	for _, rb := range u.Types() {
		if rb.IsLocal() && rb.SourceName() == "Local" {
			local = rb
		}
	}
	if local == nil {
		t.Fatal("local class not recorded")
	}
	fields := u.Tree.SyntheticFields(local)
	if len(fields) != 1 || fields[0].Name != "val$x" || fields[0].Type != types.Int {
		t.Errorf("synthetic fields = %v", fields)
	}
}

func TestBindThenVerify(t *testing.T) {
	s, u := bind(t, nil, "Task.java", `
class Task implements Runnable {}

abstract class Base { abstract void go(); }
class Impl extends Base { void go() {} }
`)
	if probs := u.Problems(); len(probs) != 0 {
		t.Fatalf("unexpected binding problems %v", probs)
	}
	reports, err := s.VerifyUnits(context.Background(), []*driver.Unit{u})
	if err != nil {
		t.Fatalf("VerifyUnits: %v", err)
	}
	probs := reports[0].Problems()
	if len(probs) != 1 || probs[0].Reason != errors.AbstractMethodMustBeImplemented {
		t.Errorf("problems %v", probs)
	}
}

func TestBindCancelled(t *testing.T) {
	s, err := driver.NewSession(config.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	cu := parse(t, "A.java", "class A {}")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Bind(ctx, cu, s); err == nil {
		t.Error("expected an error from a cancelled bind")
	}
}

func TestBindAllAcrossUnits(t *testing.T) {
	s, err := driver.NewSession(config.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	// Impl comes first but extends a type of the second unit and reads
	// its field.
	impl := parse(t, "Impl.java", `
package app;
import lib.Base;
public class Impl extends Base {
    void go() { int n = size; }
}
`)
	base := parse(t, "Base.java", `
package lib;
public abstract class Base {
    protected int size;
    protected abstract void go();
}
`)
	units, err := BindAll(context.Background(), []*CompilationUnit{impl, base}, s)
	if err != nil {
		t.Fatalf("BindAll: %v", err)
	}
	if len(units) != 2 || units[0].Name != "Impl.java" {
		t.Fatalf("units = %v", units)
	}
	for _, u := range units {
		if probs := u.Problems(); len(probs) != 0 {
			t.Errorf("%s: unexpected problems %v", u.Name, probs)
		}
	}
	rb := s.Environment().LookupType("app.Impl")
	if rb == nil || rb.Superclass() != s.Environment().LookupType("lib.Base") {
		t.Fatalf("app.Impl superclass = %v", rb)
	}

	reports, err := s.VerifyUnits(context.Background(), units)
	if err != nil {
		t.Fatalf("VerifyUnits: %v", err)
	}
	// go() is package private in Impl and cannot reduce protected access
	probs := reports[0].Problems()
	if len(probs) != 1 || probs[0].Reason != errors.VisibilityConflict {
		t.Errorf("Impl.java problems %v", probs)
	}
}
