package config

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"1.8", JDK1_8, false},
		{"8", JDK1_8, false},
		{"5", JDK1_5, false},
		{" 17 ", JDK17, false},
		{"21", JDK21, false},
		{"1.9", 0, true},
		{"42", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFeatureGates(t *testing.T) {
	if JDK1_4.Generics() || JDK1_4.Varargs() || JDK1_4.Bridges() {
		t.Error("1.4 should not enable generics features")
	}
	if !JDK1_5.Boxing() || JDK1_5.DefaultMethods() {
		t.Error("1.5 gates are wrong")
	}
	if JDK1_6.StaticNameClash() || !JDK1_7.StaticNameClash() {
		t.Error("static name clash gate should start at 1.7")
	}
	if !JDK1_8.DefaultMethods() || !JDK1_8.TargetTyping() || JDK1_7.TargetTyping() {
		t.Error("1.8 gates are wrong")
	}
	if len(Levels()) != 11 || Levels()[0] != JDK1_3 || Levels()[10] != Latest {
		t.Errorf("Unexpected levels %v", Levels())
	}
}

func TestLevelYAMLRoundTrip(t *testing.T) {
	var v struct {
		L Level `yaml:"l"`
	}
	if err := yaml.Unmarshal([]byte("l: 1.7\n"), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.L != JDK1_7 {
		t.Errorf("Expected 1.7, got %v", v.L)
	}
	if err := yaml.Unmarshal([]byte("l: [1]\n"), &v); err == nil {
		t.Error("Expected error for non-scalar level")
	}
}

func TestLoadOptions(t *testing.T) {
	dir := t.TempDir()

	opts, err := LoadOptions(filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
	if opts != DefaultOptions() {
		t.Errorf("Expected defaults, got %+v", opts)
	}

	path := filepath.Join(dir, DefaultFileName)
	content := "compliance: \"1.6\"\nreport_unchecked: false\ninference_policy: return-first\nworkers: 3\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	opts, err = LoadOptions(path)
	if err != nil {
		t.Fatalf("LoadOptions: %v", err)
	}
	if opts.Compliance != JDK1_6 || opts.ReportUnchecked || opts.InferencePolicy != PolicyReturnFirst || opts.EffectiveWorkers() != 3 {
		t.Errorf("Unexpected options %+v", opts)
	}

	if err := os.WriteFile(path, []byte("inference_policy: whatever\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadOptions(path); err == nil {
		t.Error("Expected validation error for unknown policy")
	}
}
