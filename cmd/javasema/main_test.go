package main

import (
	"bytes"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeJava(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCheckClean(t *testing.T) {
	dir := t.TempDir()
	base := writeJava(t, dir, "Base.java", "abstract class Base { abstract void go(); }\n")
	impl := writeJava(t, dir, "Impl.java", "class Impl extends Base { void go() {} }\n")

	out, err := execute(t, "check", "--types", base, impl)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	if !strings.Contains(out, "class Impl extends Base") {
		t.Errorf("type listing missing Impl:\n%s", out)
	}
}

func TestCheckReportsProblems(t *testing.T) {
	dir := t.TempDir()
	path := writeJava(t, dir, "Task.java", "class Task implements Runnable {}\n")

	out, err := execute(t, "check", path)
	if !stderrors.Is(err, errProblems) {
		t.Fatalf("expected errProblems, got %v\n%s", err, out)
	}
	if !strings.Contains(out, "Task.java") || !strings.Contains(out, "AbstractMethodMustBeImplemented") {
		t.Errorf("diagnostic not printed:\n%s", out)
	}
}

func TestCheckOptionsFile(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "javasema.yaml")
	if err := os.WriteFile(cfg, []byte("compliance: \"1.7\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	path := writeJava(t, dir, "Capture.java", `
class Capture {
    void m() {
        int a = 1;
        a = 2;
        Runnable r = new Runnable() { public void run() { int b = a; } };
    }
}
`)
	out, err := execute(t, "check", "--config", cfg, path)
	if !stderrors.Is(err, errProblems) || !strings.Contains(out, "ComplianceViolation") {
		t.Errorf("1.7 capture of a non-final local: err %v\n%s", err, out)
	}

	if _, err := execute(t, "check", "--level", "0.9", path); err == nil || stderrors.Is(err, errProblems) {
		t.Errorf("expected an option error for an unknown level, got %v", err)
	}
}

func TestCheckSourcePath(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	app := filepath.Join(dir, "app")
	for _, d := range []string{filepath.Join(src, "lib"), app} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	writeJava(t, filepath.Join(src, "lib"), "Base.java", "package lib;\npublic abstract class Base { public abstract void go(); }\n")
	writeJava(t, app, "App.java", "package app;\nimport lib.Base;\npublic class App extends Base { public void go() {} }\n")

	out, err := execute(t, "check", "--types", "--sourcepath", src, app)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	if !strings.Contains(out, "app.App") || !strings.Contains(out, "lib.Base") {
		t.Errorf("type listing:\n%s", out)
	}

	// without the source path lib.Base cannot be found
	if _, err := execute(t, "check", app); !stderrors.Is(err, errProblems) {
		t.Errorf("expected errProblems, got %v", err)
	}
}

func TestResolveCommand(t *testing.T) {
	out, err := execute(t, "resolve", "--erasure", "java.util.List<java.lang.String>", "[I")
	if err != nil {
		t.Fatalf("resolve: %v\n%s", err, out)
	}
	if !strings.Contains(out, "erasure List") {
		t.Errorf("erasure not printed:\n%s", out)
	}
	if _, err := execute(t, "resolve", "no.such.Type"); !stderrors.Is(err, errProblems) {
		t.Errorf("expected errProblems, got %v", err)
	}
}

func TestLevelsCommand(t *testing.T) {
	out, err := execute(t, "levels")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "1.8") || !strings.Contains(out, "(default)") {
		t.Errorf("levels output:\n%s", out)
	}
}
