package source

import "testing"

func TestSourceFileLines(t *testing.T) {
	sf := NewSourceFile("A.java", "", "class A {\r\n  int x;\n}")
	if got := len(sf.Lines()); got != 3 {
		t.Fatalf("Expected 3 lines, got %d", got)
	}
	if got := sf.Line(1); got != "class A {" {
		t.Errorf("Expected trimmed first line, got %q", got)
	}
	if got := sf.Line(9); got != "" {
		t.Errorf("Expected empty line for out of range, got %q", got)
	}
}

func TestDisplayPathAndPrimaryType(t *testing.T) {
	sf := FromFile("/tmp/src/p/Outer.java", "")
	if sf.DisplayPath() != "/tmp/src/p/Outer.java" {
		t.Errorf("Expected path display, got %q", sf.DisplayPath())
	}
	if sf.PrimaryTypeName() != "Outer" {
		t.Errorf("Expected Outer, got %q", sf.PrimaryTypeName())
	}
	if NewStdinSource("").IsFile() {
		t.Error("stdin source should not be a file")
	}
}
