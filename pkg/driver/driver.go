// Package driver ties the semantic core together for one compilation
// session: it owns the interning environment, hands out compilation units
// and exposes the entry points the front end and the CLI call.
package driver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"javasema/pkg/builtins"
	"javasema/pkg/config"
	"javasema/pkg/errors"
	"javasema/pkg/infer"
	"javasema/pkg/scope"
	"javasema/pkg/types"
	"javasema/pkg/verifier"
)

const debugDriver = false

func debugPrintf(format string, args ...interface{}) {
	if debugDriver {
		logrus.Debugf(format, args...)
	}
}

// Session is one compilation run. Everything interned during the run lives
// in its Environment, so bindings from different sessions never compare
// equal.
//
// Thread Safety: the session may be shared by goroutines working on
// different units.
type Session struct {
	ID       uuid.UUID
	opts     config.Options
	env      *types.Environment
	policy   infer.Policy
	verifier *verifier.Verifier
	log      *logrus.Entry

	mu    sync.Mutex
	units []*Unit
}

// NewSession validates opts and seeds a fresh environment with the
// well-known library types.
func NewSession(opts config.Options) (*Session, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("session options: %w", err)
	}
	policy, err := infer.ParsePolicy(opts.InferencePolicy)
	if err != nil {
		return nil, fmt.Errorf("session options: %w", err)
	}
	env, err := builtins.NewEnvironment()
	if err != nil {
		return nil, fmt.Errorf("seeding environment: %w", err)
	}
	id := uuid.New()
	s := &Session{
		ID:       id,
		opts:     opts,
		env:      env,
		policy:   policy,
		verifier: verifier.New(env, opts.Compliance),
		log:      logrus.WithField("session", id.String()),
	}
	s.log.WithFields(logrus.Fields{
		"compliance": opts.Compliance.String(),
		"policy":     policy.String(),
	}).Debug("session created")
	return s, nil
}

// Environment returns the session's interning environment.
func (s *Session) Environment() *types.Environment { return s.env }

// Options returns the options the session was created with.
func (s *Session) Options() config.Options { return s.opts }

// Level returns the compliance level in force.
func (s *Session) Level() config.Level { return s.opts.Compliance }

// Logger returns the session's log entry.
func (s *Session) Logger() *logrus.Entry { return s.log }

// Units returns the units created so far, in creation order.
func (s *Session) Units() []*Unit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Unit(nil), s.units...)
}

// ResolveType binds a type name or JVM descriptor. With a nil unit the
// text is resolved as if written in the default package with no imports.
func (s *Session) ResolveType(u *Unit, from scope.ID, text string) (types.Type, *errors.Problem) {
	var tree *scope.Tree
	if u != nil {
		tree = u.Tree
	} else {
		tree = s.scratchTree(&from)
	}
	t, p := tree.ResolveTypeName(from, text, errors.Position{})
	if p != nil {
		s.log.WithField("type", text).Debugf("type not resolved: %s", p.Reason)
		return nil, p
	}
	debugPrintf("// [Driver] resolved %q to %s", text, t)
	return t, nil
}

// scratchTree creates a throwaway tree with one unit scope and points from
// at it.
func (s *Session) scratchTree(from *scope.ID) *scope.Tree {
	tree := scope.NewTree(s.env, &s.opts)
	*from = tree.NewUnitScope("", nil)
	return tree
}

// VerifyType runs the method verifier on t. Unchecked warnings are dropped
// unless the options ask for them.
func (s *Session) VerifyType(ctx context.Context, t *types.ReferenceBinding) *verifier.Result {
	_, span := otel.Tracer(tracerName).Start(ctx, "driver.Session.VerifyType",
		trace.WithAttributes(attribute.String("type", t.QualifiedName())),
	)
	defer span.End()

	start := time.Now()
	res := s.verifier.Verify(t)
	res.Problems = s.filter(res.Problems)
	recordVerification(res, time.Since(start))

	span.SetAttributes(
		attribute.Int("problems", len(res.Problems)),
		attribute.Int("bridges", len(res.Bridges)),
	)
	if res.HasErrors() {
		span.SetStatus(codes.Error, "type has errors")
	}
	s.logProblems(s.log.WithField("type", t.QualifiedName()), res.Problems)
	return res
}

// Report collects the verification results of one unit.
type Report struct {
	Unit    *Unit
	Results []*verifier.Result
}

// Problems returns the unit's own problems followed by every verifier
// problem.
func (r *Report) Problems() []*errors.Problem {
	out := append([]*errors.Problem(nil), r.Unit.Problems()...)
	for _, res := range r.Results {
		out = append(out, res.Problems...)
	}
	return out
}

// VerifyUnits verifies the types of every unit, several units at a time.
// Cancellation is checked between types; a cancelled run returns the
// reports finished so far together with the context error.
func (s *Session) VerifyUnits(ctx context.Context, units []*Unit) ([]*Report, error) {
	workers := s.opts.EffectiveWorkers()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "driver.Session.VerifyUnits",
		trace.WithAttributes(
			attribute.Int("units", len(units)),
			attribute.Int("workers", workers),
		),
	)
	defer span.End()

	reports := make([]*Report, len(units))
	g, gctx := errgroup.WithContext(ctx)

	// Semaphore to bound the number of units in flight.
	sem := make(chan struct{}, workers)

	for i, u := range units {
		i, u := i, u
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-sem }()

			rep := &Report{Unit: u}
			for _, t := range u.Types() {
				if err := gctx.Err(); err != nil {
					return err
				}
				rep.Results = append(rep.Results, s.VerifyType(gctx, t))
			}
			reports[i] = rep
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.log.WithError(err).Warn("verification interrupted")
		return compact(reports), fmt.Errorf("verifying units: %w", err)
	}
	return reports, nil
}

func compact(reports []*Report) []*Report {
	out := reports[:0]
	for _, r := range reports {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// filter drops unchecked warnings when they are not reported.
func (s *Session) filter(problems []*errors.Problem) []*errors.Problem {
	if s.opts.ReportUnchecked {
		return problems
	}
	out := problems[:0]
	for _, p := range problems {
		switch p.Reason {
		case errors.UncheckedConversion, errors.UnsafeOverride:
			continue
		}
		out = append(out, p)
	}
	return out
}

func (s *Session) logProblems(log *logrus.Entry, problems []*errors.Problem) {
	for _, p := range problems {
		entry := log.WithFields(logrus.Fields{
			"reason": p.Reason.String(),
			"pos":    p.Position.String(),
		})
		if p.IsWarning() {
			entry.Info(p.Error())
		} else {
			entry.Warn(p.Error())
		}
	}
}
