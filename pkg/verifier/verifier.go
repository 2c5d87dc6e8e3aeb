// Package verifier checks the methods of a type against the methods it
// inherits: overriding rules, name clashes, the default method rules and
// abstract methods left unimplemented. It also decides which bridge
// methods the type needs.
//
// A Verifier holds no per-type state; Verify may run concurrently for
// different types once their hierarchies are complete.
package verifier

import (
	set "github.com/hashicorp/go-set/v2"
	"github.com/sirupsen/logrus"

	"javasema/pkg/config"
	"javasema/pkg/errors"
	"javasema/pkg/types"
)

const verifierDebug = false

func debugPrintf(format string, args ...interface{}) {
	if verifierDebug {
		logrus.Debugf(format, args...)
	}
}

// Verifier checks types of one environment under one compliance level.
type Verifier struct {
	env   *types.Environment
	level config.Level
}

// New creates a verifier.
func New(env *types.Environment, level config.Level) *Verifier {
	return &Verifier{env: env, level: level}
}

// Bridge is a synthetic method a type must carry: Method has the erased
// signature of Inherited and forwards to Target.
type Bridge struct {
	Method    *types.MethodBinding
	Inherited *types.MethodBinding
	Target    *types.MethodBinding
}

// Result is the outcome of verifying one type.
type Result struct {
	Type *types.ReferenceBinding
	// Methods is the method table: the declared methods followed by one
	// selected method per group of override-equivalent inherited methods
	// the type does not override.
	Methods  []*types.MethodBinding
	Bridges  []*Bridge
	Problems []*errors.Problem
}

// HasErrors reports whether any problem is an error.
func (r *Result) HasErrors() bool {
	for _, p := range r.Problems {
		if !p.IsWarning() {
			return true
		}
	}
	return false
}

// verification is the state of one Verify call.
type verification struct {
	*Verifier
	t   *types.ReferenceBinding
	res *Result

	bridges map[string]*Bridge
	// clashed holds methods already reported in a name clash
	clashed *set.Set[*types.MethodBinding]
}

// Verify checks t. The supertypes of t must be connected.
func (v *Verifier) Verify(t *types.ReferenceBinding) *Result {
	w := &verification{
		Verifier: v,
		t:        t,
		res:      &Result{Type: t},
		bridges:  make(map[string]*Bridge),
		clashed:  set.New[*types.MethodBinding](4),
	}
	debugPrintf("// [Verifier] Verifying %s", t)

	// 1. Declared methods, grouped by selector
	current := make(map[string][]*types.MethodBinding)
	var selectors []string
	for _, m := range t.Methods() {
		if m.IsConstructor() || m.IsSynthetic() {
			continue
		}
		if _, seen := current[m.Selector]; !seen {
			selectors = append(selectors, m.Selector)
		}
		current[m.Selector] = append(current[m.Selector], m)
		w.res.Methods = append(w.res.Methods, m)
	}
	for _, sel := range selectors {
		w.checkDeclared(current[sel])
	}

	// 2. Inherited methods, nearest first
	inherited, order := w.collectInherited()
	for _, sel := range order {
		if _, seen := current[sel]; !seen {
			selectors = append(selectors, sel)
		}
	}

	// 3. Each selector on its own
	for _, sel := range selectors {
		w.checkSelector(current[sel], inherited[sel])
	}
	debugPrintf("// [Verifier] %s: %d methods, %d bridges, %d problems", t, len(w.res.Methods), len(w.res.Bridges), len(w.res.Problems))
	return w.res
}

func (w *verification) report(reason errors.Reason, pos errors.Position, name string, bindings ...errors.Binding) *errors.Problem {
	if !pos.IsValid() {
		pos = w.t.Pos
	}
	p := errors.NewProblem(reason, pos).WithName(name).WithBindings(bindings...)
	w.res.Problems = append(w.res.Problems, p)
	debugPrintf("// [Verifier] %s", p)
	return p
}

// checkDeclared looks at the declared methods sharing one selector.
func (w *verification) checkDeclared(methods []*types.MethodBinding) {
	for i, m := range methods {
		if m.IsDefault() && !w.level.DefaultMethods() {
			w.report(errors.ComplianceViolation, m.Pos, m.Selector, m)
		}
		if m.IsDefault() && w.t.IsInterface() && w.level.DefaultMethods() {
			for _, o := range w.env.Object().GetMethods(m.Selector) {
				if _, ok := subsignature(m, o); ok && o.IsPublic() {
					w.report(errors.DefaultOverridesObjectMethod, m.Pos, m.Selector, m, o)
				}
			}
		}
		for _, other := range methods[i+1:] {
			if m.HasSameParameterErasures(other) {
				// duplicates and erasure clashes look the same here
				w.report(errors.NameClash, other.Pos, other.Selector, other, m)
				w.clashed.Insert(m)
				w.clashed.Insert(other)
			}
		}
	}
}
