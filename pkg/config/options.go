package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is looked up next to the sources when no --config is given.
const DefaultFileName = "javasema.yaml"

// Inference tie-break policies understood by the inference engine.
const (
	PolicyParameterFirst = "parameter-first"
	PolicyReturnFirst    = "return-first"
)

// Options configures one compilation session.
type Options struct {
	// Compliance selects which language rules apply.
	Compliance Level `yaml:"compliance"`
	// ReportUnchecked turns unchecked conversions and unsafe overrides into
	// diagnostics. When false they are still tracked on results.
	ReportUnchecked bool `yaml:"report_unchecked"`
	// ReportRawTypes reports raw references to generic types.
	ReportRawTypes bool `yaml:"report_raw_types"`
	// PreserveUnusedLocals keeps a slot for locals that are never read.
	PreserveUnusedLocals bool `yaml:"preserve_unused_locals"`
	// InferencePolicy names the tie-break between parameter and return
	// driven solutions.
	InferencePolicy string `yaml:"inference_policy"`
	// Workers bounds parallel per-unit verification. Zero means GOMAXPROCS.
	Workers int `yaml:"workers"`
}

// DefaultOptions returns the settings used when no file is present.
func DefaultOptions() Options {
	return Options{
		Compliance:      Latest,
		ReportUnchecked: true,
		InferencePolicy: PolicyParameterFirst,
	}
}

// LoadOptions reads a YAML options file. A missing file yields the defaults;
// fields absent from the file keep their default values.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	if path == "" {
		return opts, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return opts, nil
		}
		return Options{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, fmt.Errorf("validating %s: %w", path, err)
	}
	return opts, nil
}

// Validate checks option consistency.
func (o Options) Validate() error {
	if _, ok := levelNames[o.Compliance]; !ok {
		return fmt.Errorf("unknown compliance level %d", o.Compliance)
	}
	switch o.InferencePolicy {
	case "", PolicyParameterFirst, PolicyReturnFirst:
	default:
		return fmt.Errorf("unknown inference policy %q", o.InferencePolicy)
	}
	if o.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", o.Workers)
	}
	return nil
}

// EffectiveWorkers resolves the zero value to GOMAXPROCS.
func (o Options) EffectiveWorkers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}
