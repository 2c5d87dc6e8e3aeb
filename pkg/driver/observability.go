package driver

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"javasema/pkg/errors"
	"javasema/pkg/infer"
	"javasema/pkg/verifier"
)

// tracerName is the OTel tracer shared by every driver entry point.
const tracerName = "javasema.driver"

// Package-level metrics, registered with the default registry by promauto.
var (
	// inferenceRoundsTotal counts resolved call sites.
	//
	// Labels:
	//   - phase: "strict", "loose", "vararg" or "none" on failure
	//   - outcome: "resolved" or the problem reason
	inferenceRoundsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "javasema",
			Subsystem: "infer",
			Name:      "rounds_total",
			Help:      "Call sites resolved, by applicability phase and outcome.",
		},
		[]string{"phase", "outcome"},
	)

	// incorporationIterations observes the incorporation rounds one call
	// site needed across all its candidates.
	incorporationIterations = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "javasema",
			Subsystem: "infer",
			Name:      "incorporation_iterations",
			Help:      "Incorporation rounds per resolved call site.",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64},
		},
	)

	// verifierProblemsTotal counts problems reported by the verifier.
	//
	// Labels:
	//   - reason: the problem reason, e.g. "NameClash"
	verifierProblemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "javasema",
			Subsystem: "verifier",
			Name:      "problems_total",
			Help:      "Problems reported by the method verifier, by reason.",
		},
		[]string{"reason"},
	)

	bridgesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "javasema",
			Subsystem: "verifier",
			Name:      "bridges_total",
			Help:      "Bridge methods the verifier decided to synthesize.",
		},
	)

	verifyDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "javasema",
			Subsystem: "verifier",
			Name:      "verify_duration_seconds",
			Help:      "Time spent verifying one type.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 8),
		},
	)
)

func recordInference(res *infer.Result, p *errors.Problem) {
	if p != nil {
		inferenceRoundsTotal.WithLabelValues("none", p.Reason.String()).Inc()
		return
	}
	inferenceRoundsTotal.WithLabelValues(res.Phase.String(), "resolved").Inc()
	incorporationIterations.Observe(float64(res.Iterations))
}

func recordVerification(res *verifier.Result, elapsed time.Duration) {
	verifyDuration.Observe(elapsed.Seconds())
	bridgesTotal.Add(float64(len(res.Bridges)))
	for _, p := range res.Problems {
		verifierProblemsTotal.WithLabelValues(p.Reason.String()).Inc()
	}
}
