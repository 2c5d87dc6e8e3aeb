package driver

import (
	"context"
	"sync"
	"sync/atomic"

	set "github.com/hashicorp/go-set/v2"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"javasema/pkg/errors"
	"javasema/pkg/infer"
	"javasema/pkg/scope"
	"javasema/pkg/types"
)

// Unit is one compilation unit: its scope tree, the types it declares and
// the inference variables of its call sites.
//
// A unit has a single writer. Only Problems and Types may be read while
// another goroutine works on the unit.
type Unit struct {
	ID   string
	Name string
	Tree *scope.Tree
	// Root is the unit scope, set by Open.
	Root scope.ID

	session *Session
	table   *infer.VariableTable
	engine  *infer.Engine
	sites   atomic.Int64
	log     *logrus.Entry

	mu       sync.Mutex
	types    []*types.ReferenceBinding
	problems []*errors.Problem
}

// NewUnit creates an empty unit named after its source file.
func (s *Session) NewUnit(name string) *Unit {
	table := infer.NewVariableTable()
	u := &Unit{
		ID:      s.ID.String() + "/" + name,
		Name:    name,
		Tree:    scope.NewTree(s.env, &s.opts),
		Root:    scope.NoScope,
		session: s,
		table:   table,
		engine:  infer.NewEngine(s.env, s.opts.Compliance, s.policy, table),
		log:     s.log.WithField("unit", name),
	}
	s.mu.Lock()
	s.units = append(s.units, u)
	s.mu.Unlock()
	u.log.Debug("unit created")
	return u
}

// Session returns the session the unit belongs to.
func (u *Unit) Session() *Session { return u.session }

// Logger returns the unit's log entry.
func (u *Unit) Logger() *logrus.Entry { return u.log }

// Open creates the unit scope for package pkg.
func (u *Unit) Open(pkg string, imports []scope.Import) scope.ID {
	u.Root = u.Tree.NewUnitScope(pkg, imports)
	return u.Root
}

// OpenClass opens the body of rb inside parent and schedules rb for
// verification.
func (u *Unit) OpenClass(parent scope.ID, rb *types.ReferenceBinding) scope.ID {
	id := u.Tree.NewClassScope(parent, rb)
	u.mu.Lock()
	u.types = append(u.types, rb)
	u.mu.Unlock()
	return id
}

// Types returns the types declared by the unit, in declaration order.
func (u *Unit) Types() []*types.ReferenceBinding {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]*types.ReferenceBinding(nil), u.types...)
}

// Report records a problem found while binding the unit.
func (u *Unit) Report(p *errors.Problem) {
	if p == nil {
		return
	}
	filtered := u.session.filter([]*errors.Problem{p})
	if len(filtered) == 0 {
		return
	}
	u.mu.Lock()
	u.problems = append(u.problems, p)
	u.mu.Unlock()
	u.session.logProblems(u.log, filtered)
}

// Problems returns the problems reported so far.
func (u *Unit) Problems() []*errors.Problem {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]*errors.Problem(nil), u.problems...)
}

// Invocation is a call site as the front end sees it.
type Invocation struct {
	// From is the innermost scope around the call.
	From scope.ID
	// Receiver is the static type of the qualifier, nil for an unqualified
	// call, which searches the enclosing types innermost first.
	Receiver      types.Type
	Selector      string
	Arguments     []types.Type
	Expected      types.Type
	TypeArguments []types.Type
	Pos           errors.Position
}

// ResolveInvocation finds the candidates of inv, selects the method it
// invokes and infers its type arguments.
func (u *Unit) ResolveInvocation(ctx context.Context, inv Invocation) (*infer.Result, *errors.Problem) {
	_, span := otel.Tracer(tracerName).Start(ctx, "driver.Unit.ResolveInvocation",
		trace.WithAttributes(
			attribute.String("unit", u.Name),
			attribute.String("selector", inv.Selector),
			attribute.Int("arguments", len(inv.Arguments)),
		),
	)
	defer span.End()

	call := infer.Call{
		Site:          types.SiteID(u.sites.Add(1)),
		Selector:      inv.Selector,
		Candidates:    u.candidates(inv),
		Arguments:     inv.Arguments,
		Expected:      inv.Expected,
		TypeArguments: inv.TypeArguments,
		Pos:           inv.Pos,
	}
	res, p := u.engine.Resolve(call)
	recordInference(res, p)
	if p != nil {
		span.SetStatus(codes.Error, p.Reason.String())
		u.log.WithFields(logrus.Fields{
			"selector":   inv.Selector,
			"candidates": len(call.Candidates),
		}).Debugf("invocation not resolved: %s", p.Reason)
		return nil, p
	}
	res.Warnings = u.session.filter(res.Warnings)
	span.SetAttributes(
		attribute.String("phase", res.Phase.String()),
		attribute.String("method", res.Method.String()),
	)
	u.log.WithField("selector", inv.Selector).Debugf("resolved to %s in %s phase", res.Method, res.Phase)
	return res, nil
}

// candidates collects the methods named by inv that are visible from the
// call site, viewed through the receiver.
func (u *Unit) candidates(inv Invocation) []*types.MethodBinding {
	from := u.Tree.EnclosingSourceType(inv.From)
	if inv.Receiver != nil {
		return u.memberMethods(inv.Receiver, inv.Selector, from)
	}
	for rb := from; rb != nil; rb = rb.Enclosing {
		if ms := u.memberMethods(rb, inv.Selector, from); len(ms) > 0 {
			return ms
		}
	}
	return nil
}

// memberMethods walks t and its supertypes breadth first. A method already
// found in a subtype with the same parameter erasures hides the ones above
// it.
func (u *Unit) memberMethods(t types.Type, selector string, from *types.ReferenceBinding) []*types.MethodBinding {
	env := u.session.env
	declarations := set.New[*types.ReferenceBinding](8)
	seen := set.New[types.Type](8)
	var out []*types.MethodBinding
	queue := []types.Type{t}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if !seen.Insert(cur) {
			continue
		}
		ct, ok := cur.(types.ClassType)
		if !ok {
			queue = append(queue, env.DirectSupertypes(cur)...)
			continue
		}
		if !declarations.Insert(ct.Declaration()) {
			continue
		}
		for _, m := range ct.Methods() {
			if m.Selector != selector || !u.accessible(m, from) || hidden(out, m) {
				continue
			}
			out = append(out, m)
		}
		queue = append(queue, env.DirectSupertypes(cur)...)
	}
	debugPrintf("// [Driver] %d candidates for %s in %s", len(out), selector, t)
	return out
}

func hidden(found []*types.MethodBinding, m *types.MethodBinding) bool {
	for _, f := range found {
		if f.HasSameParameterErasures(m) {
			return true
		}
	}
	return false
}

// accessible applies the member access rules from the type from. Code
// outside any type sees public members only.
func (u *Unit) accessible(m *types.MethodBinding, from *types.ReferenceBinding) bool {
	decl := m.DeclaringClass()
	switch vis := m.Modifiers.Visibility(); {
	case vis == types.VisibilityPublic:
		return true
	case from == nil || decl == nil:
		return false
	case vis == types.VisibilityPrivate:
		return from.Outermost() == decl.Outermost()
	case from.Package == decl.Package:
		return true
	case vis == types.VisibilityProtected:
		for cur := from; cur != nil; cur = cur.Enclosing {
			if u.session.env.FindSuperTypeOriginatingFrom(cur, decl) != nil {
				return true
			}
		}
	}
	return false
}

// EmulationPathFor tells how code in scope from reaches the local lv.
func (u *Unit) EmulationPathFor(lv *scope.LocalVariable, from scope.ID) (scope.Path, *errors.Problem) {
	path, p := u.Tree.EmulationPathFor(lv, from)
	if p != nil {
		u.log.WithField("local", lv.Name).Debugf("no emulation path: %s", p.Reason)
		return nil, p
	}
	debugPrintf("// [Driver] path to %s from %d: %s", lv.Name, from, path)
	return path, nil
}

// ComputeLocalSlots lays out the locals of every method and lambda scope
// of the unit and reports slot overflows.
func (u *Unit) ComputeLocalSlots() map[scope.ID]*scope.Layout {
	layouts := make(map[scope.ID]*scope.Layout)
	for id := scope.ID(0); int(id) < u.Tree.Len(); id++ {
		s := u.Tree.Scope(id)
		if s.Kind != scope.MethodScope {
			continue
		}
		l := u.Tree.ComputeLocalSlots(id)
		layouts[id] = l
		for _, p := range l.Problems {
			u.Report(p)
		}
	}
	return layouts
}
