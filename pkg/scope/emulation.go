package scope

import (
	"fmt"
	"strconv"

	"javasema/pkg/errors"
	"javasema/pkg/types"
)

// SyntheticArgument is a hidden constructor (or lambda) parameter carrying
// either an outer local's value or an enclosing instance.
type SyntheticArgument struct {
	Name string
	Type types.Type
	// Local is the captured outer local, nil for enclosing instances.
	Local *LocalVariable
	// Enclosing is the enclosing type whose instance is passed.
	Enclosing *types.ReferenceBinding
	// Field is the synthetic field the argument is copied into, if any.
	Field *SyntheticField
	// Slot is assigned by ComputeLocalSlots, -1 before.
	Slot int
}

func (a *SyntheticArgument) String() string { return a.Name }

// SyntheticField is a hidden field of a nested type.
type SyntheticField struct {
	Name          string
	Type          types.Type
	DeclaringType *types.ReferenceBinding
	Local         *LocalVariable
	Enclosing     *types.ReferenceBinding
}

func (f *SyntheticField) String() string { return f.DeclaringType.SourceName() + "." + f.Name }

// SyntheticAccessor reads a private synthetic field from outside its type.
type SyntheticAccessor struct {
	Name  string
	Field *SyntheticField
}

func (a *SyntheticAccessor) String() string {
	return a.Field.DeclaringType.SourceName() + "." + a.Name + "()"
}

// nestedInfo is the synthetic state of a nested type.
type nestedInfo struct {
	enclosingArgs []*SyntheticArgument
	outerArgs     []*SyntheticArgument
	fields        []*SyntheticField
	accessors     map[*SyntheticField]*SyntheticAccessor
}

// PathKind tags an emulation path element.
type PathKind uint8

const (
	// ImplicitThis: the current instance is good enough.
	ImplicitThis PathKind = iota
	// DirectLocal: the variable is in the current method frame.
	DirectLocal
	// ViaArgument: a synthetic constructor or lambda argument.
	ViaArgument
	// ViaField: a synthetic field of the current instance.
	ViaField
	// ViaAccessor: a synthetic accessor on the previous element.
	ViaAccessor
)

func (k PathKind) String() string {
	switch k {
	case ImplicitThis:
		return "this"
	case DirectLocal:
		return "local"
	case ViaArgument:
		return "argument"
	case ViaField:
		return "field"
	case ViaAccessor:
		return "accessor"
	}
	return fmt.Sprintf("PathKind(%d)", uint8(k))
}

// PathElement is one step of an emulation path.
type PathElement struct {
	Kind     PathKind
	Local    *LocalVariable
	Argument *SyntheticArgument
	Field    *SyntheticField
	Accessor *SyntheticAccessor
}

func (e PathElement) String() string {
	switch e.Kind {
	case ImplicitThis:
		return "this"
	case DirectLocal:
		return e.Local.Name
	case ViaArgument:
		return e.Argument.Name
	case ViaField:
		return "this." + e.Field.Name
	case ViaAccessor:
		return e.Accessor.Name + "()"
	}
	return "?"
}

// Path is a sequence of accesses reaching an outer local or instance.
type Path []PathElement

func (p Path) String() string {
	s := ""
	for i, e := range p {
		if i > 0 {
			s += "."
		}
		s += e.String()
	}
	return s
}

func (t *Tree) info(rb *types.ReferenceBinding) *nestedInfo {
	ni := t.nested[rb]
	if ni == nil {
		ni = &nestedInfo{accessors: make(map[*SyntheticField]*SyntheticAccessor)}
		t.nested[rb] = ni
		if rb.HasEnclosingInstance() {
			ni.enclosingArgs = append(ni.enclosingArgs, &SyntheticArgument{
				Name:      enclosingInstanceName(rb),
				Type:      rb.Enclosing,
				Enclosing: rb.Enclosing,
				Slot:      -1,
			})
		}
	}
	return ni
}

// enclosingInstanceName is this$N where N is the nesting depth of the
// enclosing type.
func enclosingInstanceName(rb *types.ReferenceBinding) string {
	depth := 0
	for e := rb.Enclosing; e.Enclosing != nil; e = e.Enclosing {
		depth++
	}
	return "this$" + strconv.Itoa(depth)
}

// SyntheticArguments returns the hidden constructor parameters of rb:
// enclosing instances first, then captured outer locals.
func (t *Tree) SyntheticArguments(rb *types.ReferenceBinding) []*SyntheticArgument {
	ni := t.info(rb)
	out := make([]*SyntheticArgument, 0, len(ni.enclosingArgs)+len(ni.outerArgs))
	out = append(out, ni.enclosingArgs...)
	return append(out, ni.outerArgs...)
}

// SyntheticFields returns the hidden fields of rb.
func (t *Tree) SyntheticFields(rb *types.ReferenceBinding) []*SyntheticField {
	return t.info(rb).fields
}

func (t *Tree) syntheticArgumentFor(rb *types.ReferenceBinding, lv *LocalVariable) *SyntheticArgument {
	for _, a := range t.info(rb).outerArgs {
		if a.Local == lv {
			return a
		}
	}
	return nil
}

func (t *Tree) addSyntheticArgument(rb *types.ReferenceBinding, lv *LocalVariable) *SyntheticArgument {
	if a := t.syntheticArgumentFor(rb, lv); a != nil {
		return a
	}
	ni := t.info(rb)
	a := &SyntheticArgument{Name: "val$" + lv.Name, Type: lv.Type, Local: lv, Slot: -1}
	ni.outerArgs = append(ni.outerArgs, a)
	return a
}

func (t *Tree) syntheticFieldForLocal(rb *types.ReferenceBinding, lv *LocalVariable) *SyntheticField {
	for _, f := range t.info(rb).fields {
		if f.Local == lv {
			return f
		}
	}
	return nil
}

func (t *Tree) addSyntheticArgumentAndField(rb *types.ReferenceBinding, lv *LocalVariable) {
	a := t.addSyntheticArgument(rb, lv)
	if a.Field != nil {
		return
	}
	f := &SyntheticField{Name: a.Name, Type: lv.Type, DeclaringType: rb, Local: lv}
	a.Field = f
	t.info(rb).fields = append(t.info(rb).fields, f)
}

// enclosingInstanceField returns the this$N field of rb matching target,
// creating it on first use.
func (t *Tree) enclosingInstanceField(rb, target *types.ReferenceBinding, exact bool) *SyntheticField {
	ni := t.info(rb)
	if len(ni.enclosingArgs) == 0 {
		return nil
	}
	arg := ni.enclosingArgs[0]
	if !t.matches(arg.Enclosing, target, exact) {
		return nil
	}
	if arg.Field == nil {
		arg.Field = &SyntheticField{Name: arg.Name, Type: arg.Type, DeclaringType: rb, Enclosing: arg.Enclosing}
		ni.fields = append(ni.fields, arg.Field)
	}
	return arg.Field
}

func (t *Tree) enclosingInstanceArgument(rb, target *types.ReferenceBinding, exact bool) *SyntheticArgument {
	ni := t.info(rb)
	if len(ni.enclosingArgs) == 0 || !t.matches(ni.enclosingArgs[0].Enclosing, target, exact) {
		return nil
	}
	return ni.enclosingArgs[0]
}

func (t *Tree) accessorFor(f *SyntheticField) *SyntheticAccessor {
	ni := t.info(f.DeclaringType)
	if a, ok := ni.accessors[f]; ok {
		return a
	}
	a := &SyntheticAccessor{Name: fmt.Sprintf("access$%d", len(ni.accessors)), Field: f}
	ni.accessors[f] = a
	return a
}

func (t *Tree) matches(candidate, target *types.ReferenceBinding, exact bool) bool {
	if candidate == target {
		return true
	}
	return !exact && t.env.FindSuperTypeOriginatingFrom(candidate, target) != nil
}

// EmulateOuterAccess records the synthetic state needed to read lv from
// code at from: lambda arguments for every lambda crossed, and a synthetic
// argument (plus a field outside constructors) on the local type being
// compiled. It fails when a static boundary lies in between.
func (t *Tree) EmulateOuterAccess(from ID, lv *LocalVariable) *errors.Problem {
	declaring := lv.Declaring
	depth := 0
	staticSeen := false
	for cur := from; cur != declaring; cur = t.scopes[cur].Parent {
		if cur == NoScope {
			// lv is not in scope at from
			return errors.NewProblem(errors.NotFound, lv.Pos).WithName(lv.Name)
		}
		s := t.scopes[cur]
		switch s.Kind {
		case ClassScope:
			if staticSeen || s.Type.Modifiers.Has(types.Static) {
				return t.boundaryProblem(lv)
			}
			depth++
		case MethodScope:
			if s.IsLambda() {
				addLambdaArgument(s, lv)
			} else if s.IsStatic() {
				staticSeen = true
			}
		}
	}
	if depth == 0 {
		return nil
	}
	if !t.level.EffectivelyFinalCapture() && !lv.IsFinal() {
		return errors.NewProblem(errors.ComplianceViolation, lv.Pos).WithName("capture of non-final local " + lv.Name)
	}
	if !lv.IsEffectivelyFinal() {
		return errors.NewProblem(errors.ScopeBoundary, lv.Pos).WithName(lv.Name).WithBindings(lv)
	}

	current := t.MethodScopeOf(from)
	if current == nil || t.MethodScopeOf(declaring) == current {
		return nil
	}
	source := t.EnclosingSourceType(from)
	if source == nil || !source.IsLocal() {
		return nil
	}
	if current.IsInsideInitializerOrConstructor() {
		t.addSyntheticArgument(source, lv)
	} else {
		t.addSyntheticArgumentAndField(source, lv)
	}
	// every local type crossed between source and the declaring method
	// forwards the value through its own field
	for rb := source.Enclosing; rb != nil && rb.IsLocal(); rb = rb.Enclosing {
		if id, ok := t.classes[rb]; !ok || !isAncestor(t, declaring, id) {
			break
		}
		t.addSyntheticArgumentAndField(rb, lv)
	}
	return nil
}

func isAncestor(t *Tree, ancestor, id ID) bool {
	for cur := id; cur != NoScope; cur = t.scopes[cur].Parent {
		if cur == ancestor {
			return true
		}
	}
	return false
}

func addLambdaArgument(s *Scope, lv *LocalVariable) {
	for _, a := range s.lambdaArgs {
		if a.Local == lv {
			return
		}
	}
	s.lambdaArgs = append(s.lambdaArgs, &SyntheticArgument{Name: lv.Name, Type: lv.Type, Local: lv, Slot: -1})
}

func (t *Tree) boundaryProblem(lv *LocalVariable) *errors.Problem {
	return errors.NewProblem(errors.ScopeBoundary, lv.Pos).WithName(lv.Name).WithBindings(lv)
}

// EmulationPathFor returns how code at from reaches the outer local lv:
// a lambda argument, the local itself, a synthetic constructor argument,
// or a synthetic field. Emulation is performed first if needed.
func (t *Tree) EmulationPathFor(lv *LocalVariable, from ID) (Path, *errors.Problem) {
	if p := t.EmulateOuterAccess(from, lv); p != nil {
		return nil, p
	}
	current := t.MethodScopeOf(from)
	if current != nil && current.IsLambda() {
		for _, a := range current.lambdaArgs {
			if a.Local == lv {
				return Path{{Kind: ViaArgument, Argument: a}}, nil
			}
		}
	}
	if current == t.MethodScopeOf(lv.Declaring) {
		return Path{{Kind: DirectLocal, Local: lv}}, nil
	}
	source := t.EnclosingSourceType(from)
	if current != nil && current.IsInsideInitializerOrConstructor() && source != nil && source.Enclosing != nil {
		if a := t.syntheticArgumentFor(source, lv); a != nil {
			return Path{{Kind: ViaArgument, Argument: a}}, nil
		}
	}
	if current == nil || !current.IsStatic() {
		if f := t.syntheticFieldForLocal(source, lv); f != nil {
			return Path{{Kind: ViaField, Field: f}}, nil
		}
	}
	return nil, t.boundaryProblem(lv)
}

// LambdaArguments returns the outer locals a lambda scope captures.
func (t *Tree) LambdaArguments(id ID) []*SyntheticArgument {
	return t.scopes[id].lambdaArgs
}

// EnclosingInstancePath returns how code at from reaches an instance of
// target: the implicit this, a this$N argument, a this$N field, or such a
// first step followed by accessors through each enclosing instance. With
// exact unset any enclosing subtype of target also qualifies.
func (t *Tree) EnclosingInstancePath(from ID, target *types.ReferenceBinding, exact bool) (Path, *errors.Problem) {
	current := t.MethodScopeOf(from)
	source := t.EnclosingSourceType(from)
	if source == nil {
		return nil, errors.NewProblem(errors.NotFound, errors.Position{}).WithName(target.SourceName())
	}
	static := current != nil && current.IsStatic()
	ctorCall := current != nil && current.Flags&ConstructorCall != 0
	noInstance := func() *errors.Problem {
		return errors.NewProblem(errors.ScopeBoundary, errors.Position{}).WithName(target.SourceName() + ".this").WithBindings(target)
	}

	if !static && !ctorCall && t.matches(source, target, exact) {
		return Path{{Kind: ImplicitThis}}, nil
	}
	if !source.HasEnclosingInstance() {
		if static || ctorCall {
			return nil, noInstance()
		}
		return nil, errors.NewProblem(errors.NotFound, errors.Position{}).WithName(target.SourceName() + ".this").WithBindings(target)
	}
	insideConstructor := current != nil && current.IsInsideInitializerOrConstructor()
	if insideConstructor {
		if a := t.enclosingInstanceArgument(source, target, exact); a != nil {
			return Path{{Kind: ViaArgument, Argument: a}}, nil
		}
	}
	if static {
		return nil, noInstance()
	}
	if f := t.enclosingInstanceField(source, target, exact); f != nil {
		if ctorCall {
			return nil, noInstance()
		}
		return Path{{Kind: ViaField, Field: f}}, nil
	}

	// walk outwards through enclosing instances
	currentType := source.Enclosing
	var path Path
	if insideConstructor {
		a := t.enclosingInstanceArgument(source, currentType, true)
		if a == nil {
			return nil, noInstance()
		}
		path = Path{{Kind: ViaArgument, Argument: a}}
	} else {
		if ctorCall {
			return nil, noInstance()
		}
		f := t.enclosingInstanceField(source, currentType, true)
		if f == nil {
			return nil, noInstance()
		}
		path = Path{{Kind: ViaField, Field: f}}
	}
	for !t.matches(currentType, target, exact) {
		if !currentType.HasEnclosingInstance() {
			return nil, noInstance()
		}
		f := t.enclosingInstanceField(currentType, currentType.Enclosing, true)
		path = append(path, PathElement{Kind: ViaAccessor, Accessor: t.accessorFor(f), Field: f})
		currentType = currentType.Enclosing
	}
	return path, nil
}
