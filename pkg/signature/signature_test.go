package signature

import "testing"

func TestParseTypeRoundTrip(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"int", "int"},
		{"String[][]", "String[][]"},
		{"java.util.Map<K, ? extends V>", "java.util.Map<K,? extends V>"},
		{"List<List<String>>", "List<List<String>>"},
		{"Outer<String>.Inner<Integer>", "Outer<String>.Inner<Integer>"},
		{"Map.Entry<K,V>[]", "Map.Entry<K,V>[]"},
		{"? super T", "? super T"},
		{"@NonNull String", "String"},
		{"ArrayList<>", "ArrayList<>"},
	}
	for _, tt := range tests {
		ref, err := ParseType(tt.in)
		if err != nil {
			t.Errorf("ParseType(%q) error: %v", tt.in, err)
			continue
		}
		if got := ref.String(); got != tt.want {
			t.Errorf("ParseType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseTypeStructure(t *testing.T) {
	ref, err := ParseType("Outer<String>.Inner")
	if err != nil {
		t.Fatal(err)
	}
	if ref.Name != "Outer.Inner" || ref.Outer == nil || ref.Outer.Name != "Outer" {
		t.Errorf("Unexpected structure %+v", ref)
	}
	if ref.SimpleName() != "Inner" || !ref.IsQualified() {
		t.Errorf("Unexpected names for %s", ref)
	}
	prim, _ := ParseType("double")
	if !prim.IsPrimitive() {
		t.Error("double should be primitive")
	}
}

func TestParseTypeErrors(t *testing.T) {
	for _, in := range []string{"", "List<", "List<String", "Map<,>", "int[", "a b"} {
		if _, err := ParseType(in); err == nil {
			t.Errorf("ParseType(%q) should fail", in)
		}
	}
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("public static <T extends Comparable<? super T>> T max(Collection<? extends T> coll, T... rest) throws IllegalStateException")
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "max" || !m.Varargs || len(m.Parameters) != 2 || m.Parameters[1].Dims != 1 {
		t.Errorf("Unexpected method %+v", m)
	}
	if len(m.TypeParameters) != 1 || m.TypeParameters[0].Bounds[0].String() != "Comparable<? super T>" {
		t.Errorf("Unexpected type parameters %+v", m.TypeParameters)
	}
	if !HasModifier(m.Modifiers, "static") || len(m.Throws) != 1 {
		t.Errorf("Unexpected modifiers/throws %v %v", m.Modifiers, m.Throws)
	}

	ctor, err := ParseMethod("public ArrayList(int)")
	if err != nil {
		t.Fatal(err)
	}
	if ctor.Return != nil || ctor.Name != "ArrayList" {
		t.Errorf("Expected constructor, got %+v", ctor)
	}
	if _, err := ParseMethod("void f(int... a, int b)"); err == nil {
		t.Error("varargs must be last")
	}
}

func TestParseTypeHeader(t *testing.T) {
	h, err := ParseTypeHeader("public abstract class AbstractMap<K, V> extends Object implements Map<K,V>, Cloneable")
	if err != nil {
		t.Fatal(err)
	}
	if h.Keyword != "class" || h.Name != "AbstractMap" || len(h.TypeParameters) != 2 || len(h.Implements) != 2 {
		t.Errorf("Unexpected header %+v", h)
	}
	e, err := ParseTypeHeader("public abstract class Enum<E extends Enum<E>> implements Comparable<E>")
	if err != nil {
		t.Fatal(err)
	}
	if e.TypeParameters[0].Bounds[0].String() != "Enum<E>" {
		t.Errorf("Unexpected bound %s", e.TypeParameters[0].Bounds[0])
	}
	if _, err := ParseTypeHeader("public thing X"); err == nil {
		t.Error("Expected error for unknown keyword")
	}
}

func TestParseDescriptor(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"I", "int"},
		{"[[Ljava/lang/String;", "java.lang.String[][]"},
		{"Ljava/util/Map$Entry;", "java.util.Map.Entry"},
		{"Ljava/util/List<Ljava/lang/String;>;", "java.util.List<java.lang.String>"},
		{"Ljava/util/Map<TK;+Ljava/lang/Number;>;", "java.util.Map<K,? extends java.lang.Number>"},
		{"Ljava/util/List<*>;", "java.util.List<?>"},
		{"Lp/Outer<TT;>.Inner;", "p.Outer<T>.Inner"},
	}
	for _, tt := range tests {
		ref, err := ParseDescriptor(tt.in)
		if err != nil {
			t.Errorf("ParseDescriptor(%q) error: %v", tt.in, err)
			continue
		}
		if got := ref.String(); got != tt.want {
			t.Errorf("ParseDescriptor(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	for _, bad := range []string{"", "Q", "Ljava/lang/String", "[", "TT"} {
		if _, err := ParseDescriptor(bad); err == nil {
			t.Errorf("ParseDescriptor(%q) should fail", bad)
		}
	}
}

func TestParseMethodDescriptor(t *testing.T) {
	params, ret, err := ParseMethodDescriptor("(I[Ljava/lang/Object;J)V")
	if err != nil {
		t.Fatal(err)
	}
	if len(params) != 3 || params[1].String() != "java.lang.Object[]" || ret.Name != "void" {
		t.Errorf("Unexpected %v %v", params, ret)
	}
	if !IsDescriptor("(I)V") || !IsDescriptor("[I") || IsDescriptor("String") || !IsDescriptor("Ljava/lang/String;") {
		t.Error("IsDescriptor misclassified")
	}
}
