package parser

import (
	"context"
	"fmt"

	set "github.com/hashicorp/go-set/v2"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"javasema/pkg/config"
	"javasema/pkg/driver"
	"javasema/pkg/errors"
	"javasema/pkg/scope"
	"javasema/pkg/types"
)

// binder builds the bindings of one compilation unit.
type binder struct {
	unit  *driver.Unit
	tree  *scope.Tree
	env   *types.Environment
	level config.Level
	log   *logrus.Entry

	// entries are the unit's top level and member types
	entries []*typeEntry

	// captures are reads of locals from a nested method, lambda or class;
	// they are checked for effective finality once every assignment of
	// the unit has been seen.
	captures []capture
	flagged  *set.Set[*scope.LocalVariable]
	// uninitialized locals may be assigned once and stay effectively final
	uninitialized *set.Set[*scope.LocalVariable]
}

type capture struct {
	local *scope.LocalVariable
	pos   errors.Position
}

// typeEntry is a type whose binding is being completed.
type typeEntry struct {
	decl *TypeDeclaration
	rb   *types.ReferenceBinding
	id   scope.ID // class scope
	// super is the resolved supertype of an anonymous class
	super   types.Type
	methods []methodEntry
}

type methodEntry struct {
	decl    *MethodDeclaration
	binding *types.MethodBinding
	id      scope.ID // method scope
}

// Bind declares the types of cu in s and binds their headers, members and
// bodies. Problems are reported on the returned unit; the error is only
// set when ctx is cancelled part way.
func Bind(ctx context.Context, cu *CompilationUnit, s *driver.Session) (*driver.Unit, error) {
	units, err := BindAll(ctx, []*CompilationUnit{cu}, s)
	return units[0], err
}

// BindAll binds several compilation units together, so each may refer to
// the types of the others in any order. Units are returned in the order
// given.
//
// Binding runs in phases across all the units: declare the names, connect
// supertypes, check header bounds, add members, then walk bodies. Local and
// anonymous types run the same phases when their declaration is reached.
func BindAll(ctx context.Context, cus []*CompilationUnit, s *driver.Session) ([]*driver.Unit, error) {
	_, span := otel.Tracer(tracerName).Start(ctx, "parser.Bind",
		trace.WithAttributes(attribute.Int("units", len(cus))),
	)
	defer span.End()

	binders := make([]*binder, len(cus))
	units := make([]*driver.Unit, len(cus))
	cancelled := func(phase string) error {
		err := ctx.Err()
		if err == nil {
			return nil
		}
		span.SetStatus(codes.Error, "cancelled")
		return fmt.Errorf("binding %d units (%s): %w", len(cus), phase, err)
	}

	// 1. Declare every top level and member type
	for i, cu := range cus {
		binders[i] = newBinder(cu, s)
		units[i] = binders[i].unit
	}
	if err := cancelled("declare"); err != nil {
		return units, err
	}

	// 2. Supertypes of every unit, then bounds that depend on them
	for _, b := range binders {
		b.connectAll(b.entries)
	}
	for _, b := range binders {
		for _, e := range b.entries {
			b.checkHeaderBounds(e)
		}
	}
	if err := cancelled("headers"); err != nil {
		return units, err
	}

	// 3. Members, then bodies
	for _, b := range binders {
		for _, e := range b.entries {
			b.members(e)
		}
	}
	for _, b := range binders {
		for _, e := range b.entries {
			b.bodies(e)
		}
	}
	if err := cancelled("bodies"); err != nil {
		return units, err
	}

	// 4. Captures and frame layout
	problems := 0
	for _, b := range binders {
		b.checkCaptures()
		b.unit.ComputeLocalSlots()
		n := len(b.unit.Problems())
		problems += n
		b.log.WithField("problems", n).Debug("unit bound")
	}
	span.SetAttributes(attribute.Int("problems", problems))
	return units, nil
}

// newBinder opens a unit for cu and declares its types.
func newBinder(cu *CompilationUnit, s *driver.Session) *binder {
	u := s.NewUnit(cu.File.Name)
	b := &binder{
		unit:          u,
		tree:          u.Tree,
		env:           s.Environment(),
		level:         s.Level(),
		log:           u.Logger().WithField("file", cu.File.DisplayPath()),
		flagged:       set.New[*scope.LocalVariable](0),
		uninitialized: set.New[*scope.LocalVariable](0),
	}
	imports := make([]scope.Import, len(cu.Imports))
	for i, imp := range cu.Imports {
		imports[i] = scope.Import{Name: imp.Name, OnDemand: imp.OnDemand, Static: imp.Static}
	}
	root := u.Open(cu.Package, imports)
	for _, td := range cu.Types {
		b.entries = append(b.entries, b.declare(td, nil, root)...)
	}
	return b
}

func (b *binder) report(p *errors.Problem) {
	if p != nil {
		b.unit.Report(p)
	}
}

// --- Declaration phase ---

func (b *binder) declare(td *TypeDeclaration, outer *types.ReferenceBinding, parent scope.ID) []*typeEntry {
	mods := typeModifiers(td)
	var rb *types.ReferenceBinding
	var fresh bool
	if outer == nil {
		rb, fresh = b.env.DefineType(b.tree.Scope(parent).Package, td.Name, mods)
	} else {
		rb, fresh = b.env.DefineMemberType(outer, td.Name, mods)
	}
	if !fresh {
		b.report(errors.NewProblem(errors.NameClash, td.Position).WithName(td.Name).WithBindings(rb))
		return nil
	}
	return b.open(td, rb, parent, nil)
}

// open creates the class scope of rb and declares its member types.
func (b *binder) open(td *TypeDeclaration, rb *types.ReferenceBinding, parent scope.ID, super types.Type) []*typeEntry {
	rb.Pos = td.Position
	if len(td.TypeParameters) > 0 {
		tvs := make([]*types.TypeVariable, len(td.TypeParameters))
		for i, tp := range td.TypeParameters {
			tvs[i] = b.env.CreateTypeVariable(tp.Name)
		}
		rb.SetTypeVariables(tvs)
	}
	e := &typeEntry{decl: td, rb: rb, id: b.unit.OpenClass(parent, rb), super: super}
	entries := []*typeEntry{e}
	for _, mt := range td.MemberTypes {
		entries = append(entries, b.declare(mt, rb, e.id)...)
	}
	return entries
}

func typeModifiers(td *TypeDeclaration) types.Modifiers {
	mods := modifiersOf(td.Modifiers)
	switch td.Kind {
	case InterfaceKind:
		mods |= types.Interface | types.Abstract
	case AnnotationKind:
		mods |= types.Interface | types.Abstract | types.Annotation
	case EnumKind:
		mods |= types.Enum
		final := true
		for _, c := range td.EnumConstants {
			if c.Body != nil {
				final = false
			}
		}
		if final {
			mods |= types.Final
		}
	case RecordKind:
		mods |= types.Record | types.Final
	}
	return mods
}

func modifiersOf(words []string) types.Modifiers {
	var mods types.Modifiers
	for _, w := range words {
		if m, ok := types.ModifierByKeyword(w); ok {
			mods |= m
		}
	}
	return mods
}

// complete runs the remaining phases over the entries of a local type.
func (b *binder) complete(entries []*typeEntry) {
	b.connectAll(entries)
	for _, e := range entries {
		b.checkHeaderBounds(e)
	}
	for _, e := range entries {
		b.members(e)
	}
	for _, e := range entries {
		b.bodies(e)
	}
}

// --- Header phase ---

// connectAll connects the supertypes of entries. Supertypes may mention
// each other before any bound can be checked.
func (b *binder) connectAll(entries []*typeEntry) {
	b.tree.WithoutBoundChecks(func() {
		for _, e := range entries {
			b.connect(e)
		}
	})
}

func (b *binder) resolve(id scope.ID, ref *TypeReference) types.Type {
	if ref == nil {
		return nil
	}
	t, p := b.tree.ResolveTypeName(id, ref.Text, ref.Position)
	if p != nil {
		b.report(p)
		return nil
	}
	return t
}

// resolveOr falls back to Object when ref does not resolve; the problem is
// reported either way.
func (b *binder) resolveOr(id scope.ID, ref *TypeReference) types.Type {
	if t := b.resolve(id, ref); t != nil {
		return t
	}
	return b.env.Object()
}

func isInterfaceType(t types.Type) bool {
	ct, ok := t.(types.ClassType)
	return ok && ct.Declaration().IsInterface()
}

func (b *binder) connect(e *typeEntry) {
	td, rb := e.decl, e.rb
	for i, tp := range td.TypeParameters {
		var bounds []types.Type
		for _, ref := range tp.Bounds {
			if t := b.resolve(e.id, ref); t != nil {
				bounds = append(bounds, t)
			}
		}
		rb.TypeVariables[i].SetBounds(bounds...)
	}

	var superclass types.Type
	var interfaces []types.Type
	switch {
	case e.super != nil:
		if isInterfaceType(e.super) {
			superclass, interfaces = b.env.Object(), []types.Type{e.super}
		} else {
			superclass = e.super
		}
	default:
		if td.Superclass != nil {
			if t := b.resolve(e.id, td.Superclass); t != nil {
				if isInterfaceType(t) {
					b.report(errors.NewProblem(errors.TypeMismatch, td.Superclass.Position).WithName(td.Superclass.Text).WithBindings(t))
				} else {
					superclass = t
				}
			}
		}
		for _, ref := range td.Interfaces {
			t := b.resolve(e.id, ref)
			if t == nil {
				continue
			}
			if !isInterfaceType(t) {
				b.report(errors.NewProblem(errors.TypeMismatch, ref.Position).WithName(ref.Text).WithBindings(t))
				continue
			}
			interfaces = append(interfaces, t)
		}
		switch td.Kind {
		case EnumKind:
			superclass = b.env.CreateParameterizedType(b.env.LookupType("java.lang.Enum"), []types.Type{rb}, nil)
		case RecordKind:
			superclass = b.env.LookupType("java.lang.Record")
		case AnnotationKind:
			interfaces = append(interfaces, b.env.LookupType("java.lang.annotation.Annotation"))
		case ClassKind:
			if superclass == nil {
				superclass = b.env.Object()
			}
		}
	}
	b.report(b.tree.ConnectSupertypes(rb, superclass, interfaces, td.Position))
	debugPrintf("// [Binder] connected %s: %v %v", rb.QualifiedName(), superclass, interfaces)
}

// checkHeaderBounds resolves the header again with bound checks on, now
// that every supertype is known, and keeps only bound mismatches.
func (b *binder) checkHeaderBounds(e *typeEntry) {
	var refs []*TypeReference
	if e.decl.Superclass != nil {
		refs = append(refs, e.decl.Superclass)
	}
	refs = append(refs, e.decl.Interfaces...)
	for _, tp := range e.decl.TypeParameters {
		refs = append(refs, tp.Bounds...)
	}
	for _, ref := range refs {
		if _, p := b.tree.ResolveTypeName(e.id, ref.Text, ref.Position); p != nil && p.Reason == errors.BoundMismatch {
			b.report(p)
		}
	}
}

// --- Member phase ---

func (b *binder) members(e *typeEntry) {
	td, rb := e.decl, e.rb
	for _, c := range td.EnumConstants {
		b.addField(rb, &types.FieldBinding{
			Name:      c.Name,
			Type:      rb,
			Modifiers: types.Public | types.Static | types.Final | types.Enum,
			Pos:       c.Position,
		})
	}
	for _, rc := range td.RecordComponents {
		b.addField(rb, &types.FieldBinding{
			Name:      rc.Name,
			Type:      b.resolveOr(e.id, rc.Type),
			Modifiers: types.Private | types.Final,
			Pos:       rc.Position,
		})
	}
	for _, f := range td.Fields {
		mods := modifiersOf(f.Modifiers)
		if rb.IsInterface() {
			mods |= types.Public | types.Static | types.Final
		}
		b.addField(rb, &types.FieldBinding{Name: f.Name, Type: b.resolveOr(e.id, f.Type), Modifiers: mods, Pos: f.Position})
	}

	hasConstructor := false
	for _, md := range td.Methods {
		e.methods = append(e.methods, b.declareMethod(e, md))
		hasConstructor = hasConstructor || md.Constructor
	}
	b.implicitMembers(e, hasConstructor)
}

func (b *binder) addField(rb *types.ReferenceBinding, f *types.FieldBinding) {
	if prev := rb.GetField(f.Name); prev != nil {
		b.report(errors.NewProblem(errors.NameClash, f.Pos).WithName(f.Name).WithBindings(prev, f))
		return
	}
	f.DeclaringType = rb
	rb.AddField(f)
}

func (b *binder) declareMethod(e *typeEntry, md *MethodDeclaration) methodEntry {
	rb := e.rb
	m := &types.MethodBinding{Selector: md.Name, Modifiers: modifiersOf(md.Modifiers), DeclaringType: rb, Pos: md.Position}
	if md.Constructor {
		m.Selector = types.ConstructorSelector
	}
	if rb.IsInterface() && !m.Modifiers.Has(types.Private) {
		m.Modifiers |= types.Public
		if !m.Modifiers.Has(types.Default) && !m.Modifiers.Has(types.Static) {
			m.Modifiers |= types.Abstract
		}
	}
	if md.IsVarargs() {
		m.Modifiers |= types.Varargs
	}

	var flags scope.MethodFlags
	if m.IsStatic() {
		flags |= scope.Static
	}
	if md.Constructor {
		flags |= scope.Constructor
	}
	id := b.tree.NewMethodScope(e.id, m, flags)

	if len(md.TypeParameters) > 0 {
		tvs := make([]*types.TypeVariable, len(md.TypeParameters))
		for i, tp := range md.TypeParameters {
			tvs[i] = b.env.CreateTypeVariable(tp.Name)
		}
		m.SetTypeVariables(tvs)
		for i, tp := range md.TypeParameters {
			var bounds []types.Type
			for _, ref := range tp.Bounds {
				if t := b.resolve(id, ref); t != nil {
					bounds = append(bounds, t)
				}
			}
			tvs[i].SetBounds(bounds...)
		}
	}
	for _, p := range md.Parameters {
		t := b.resolveOr(id, p.Type)
		if p.Varargs {
			t = b.env.CreateArrayType(t, 1)
		}
		m.Parameters = append(m.Parameters, t)
	}
	for _, ref := range md.Throws {
		if t := b.resolve(id, ref); t != nil {
			m.ThrownExceptions = append(m.ThrownExceptions, t)
		}
	}
	m.ReturnType = types.Void
	if md.ReturnType != nil {
		m.ReturnType = b.resolveOr(id, md.ReturnType)
	}
	rb.AddMethod(m)
	debugPrintf("// [Binder] method %s", m)
	return methodEntry{decl: md, binding: m, id: id}
}

// implicitMembers adds what the language declares without source: the
// default constructor, enum values/valueOf, and record accessors and
// canonical constructor.
func (b *binder) implicitMembers(e *typeEntry, hasConstructor bool) {
	td, rb := e.decl, e.rb
	add := func(m *types.MethodBinding) {
		m.DeclaringType = rb
		m.Pos = td.Position
		rb.AddMethod(m)
	}
	switch td.Kind {
	case ClassKind:
		if !hasConstructor && !rb.IsAnonymous() {
			add(&types.MethodBinding{Selector: types.ConstructorSelector, Modifiers: rb.Modifiers & types.AccessMask, ReturnType: types.Void})
		}
	case EnumKind:
		if !hasConstructor {
			add(&types.MethodBinding{Selector: types.ConstructorSelector, Modifiers: types.Private, ReturnType: types.Void})
		}
		add(&types.MethodBinding{Selector: "values", Modifiers: types.Public | types.Static, ReturnType: b.env.CreateArrayType(rb, 1)})
		add(&types.MethodBinding{
			Selector:   "valueOf",
			Modifiers:  types.Public | types.Static,
			Parameters: []types.Type{b.env.LookupType("java.lang.String")},
			ReturnType: rb,
		})
	case RecordKind:
		var params []types.Type
		for _, rc := range td.RecordComponents {
			f := rb.GetField(rc.Name)
			if f == nil {
				continue
			}
			params = append(params, f.Type)
			if !declares(rb, rc.Name, 0) {
				add(&types.MethodBinding{Selector: rc.Name, Modifiers: types.Public, ReturnType: f.Type})
			}
		}
		if !hasConstructor {
			add(&types.MethodBinding{Selector: types.ConstructorSelector, Modifiers: types.Public, Parameters: params, ReturnType: types.Void})
		}
		object := b.env.Object()
		if !declares(rb, "equals", 1) {
			add(&types.MethodBinding{Selector: "equals", Modifiers: types.Public | types.Final, Parameters: []types.Type{object}, ReturnType: types.Boolean})
		}
		if !declares(rb, "hashCode", 0) {
			add(&types.MethodBinding{Selector: "hashCode", Modifiers: types.Public | types.Final, ReturnType: types.Int})
		}
		if !declares(rb, "toString", 0) {
			add(&types.MethodBinding{Selector: "toString", Modifiers: types.Public | types.Final, ReturnType: b.env.LookupType("java.lang.String")})
		}
	}
}

// declares reports whether rb declares a method named selector with arity
// parameters.
func declares(rb *types.ReferenceBinding, selector string, arity int) bool {
	for _, m := range rb.GetMethods(selector) {
		if len(m.Parameters) == arity {
			return true
		}
	}
	return false
}

// --- Body phase ---

func (b *binder) bodies(e *typeEntry) {
	td := e.decl
	for _, f := range td.Fields {
		if len(f.Value) == 0 {
			continue
		}
		flags := scope.Initializer
		if f.HasModifier("static") || e.rb.IsInterface() {
			flags |= scope.Static
		}
		b.statements(b.tree.NewMethodScope(e.id, nil, flags), f.Value)
	}
	for _, c := range td.EnumConstants {
		if len(c.Arguments) == 0 && c.Body == nil {
			continue
		}
		id := b.tree.NewMethodScope(e.id, nil, scope.Initializer|scope.Static)
		b.statements(id, c.Arguments)
		if c.Body != nil {
			b.anonymous(id, e.rb, c.Body, c.Position)
		}
	}
	for _, in := range td.Initializers {
		flags := scope.Initializer
		if in.Static {
			flags |= scope.Static
		}
		b.statements(b.tree.NewMethodScope(e.id, nil, flags), in.Body.Statements)
	}
	for _, me := range e.methods {
		if me.decl.Body == nil {
			continue
		}
		for i, p := range me.decl.Parameters {
			lv := &scope.LocalVariable{Name: p.Name, Type: me.binding.Parameters[i], Argument: true, Pos: p.Position}
			if p.Final {
				lv.Modifiers |= types.Final
			}
			b.report(b.tree.AddLocal(me.id, lv))
		}
		b.statements(me.id, me.decl.Body.Statements)
	}
}

func (b *binder) statements(id scope.ID, stmts []Statement) {
	for _, st := range stmts {
		switch st := st.(type) {
		case *Block:
			b.statements(b.tree.NewBlockScope(id), st.Statements)
		case *LocalVariable:
			b.local(id, st)
		case *LocalClass:
			b.localType(id, st.Declaration)
		case *AnonymousClass:
			b.statements(id, st.Arguments)
			var super types.Type
			if st.Super != nil {
				super = b.resolve(id, st.Super)
			}
			if super == nil {
				super = b.env.Object()
			}
			b.anonymous(id, super, st.Body, st.Position)
		case *Lambda:
			b.lambda(id, st)
		case *NameReference:
			b.read(id, st.Name, st.Position)
		case *Assignment:
			b.assign(id, st.Name, st.Position)
		}
	}
}

func (b *binder) local(id scope.ID, st *LocalVariable) {
	b.statements(id, st.Value)
	lv := &scope.LocalVariable{Name: st.Name, Pos: st.Position}
	if !st.Type.IsInferred() {
		lv.Type = b.resolve(id, st.Type)
	}
	if st.Final {
		lv.Modifiers |= types.Final
	}
	b.report(b.tree.AddLocal(id, lv))
	if st.Blank {
		b.uninitialized.Insert(lv)
	}
}

func (b *binder) lambda(id scope.ID, l *Lambda) {
	lid := b.tree.NewLambdaScope(id)
	for _, p := range l.Parameters {
		lv := &scope.LocalVariable{Name: p.Name, Argument: true, Pos: p.Position}
		if !p.Type.IsInferred() {
			lv.Type = b.resolve(lid, p.Type)
			if p.Varargs && lv.Type != nil {
				lv.Type = b.env.CreateArrayType(lv.Type, 1)
			}
		}
		if p.Final {
			lv.Modifiers |= types.Final
		}
		b.report(b.tree.AddLocal(lid, lv))
	}
	b.statements(lid, l.Body.Statements)
}

// enclosingMethod answers the method whose body contains id, skipping
// lambdas and initializers.
func (b *binder) enclosingMethod(id scope.ID) *types.MethodBinding {
	for cur := id; cur != scope.NoScope; cur = b.tree.Scope(cur).Parent {
		s := b.tree.Scope(cur)
		if s.Kind == scope.ClassScope {
			return nil
		}
		if s.Kind == scope.MethodScope && s.Method != nil {
			return s.Method
		}
	}
	return nil
}

func (b *binder) localType(id scope.ID, td *TypeDeclaration) {
	enclosing := b.tree.EnclosingSourceType(id)
	rb := b.env.DefineLocalType(enclosing, b.enclosingMethod(id), td.Name, b.tree.IsStaticContext(id))
	rb.Modifiers = typeModifiers(td)
	if td.Kind != ClassKind {
		// local interfaces, enums and records never capture
		rb.Modifiers |= types.Static
	}
	b.complete(b.open(td, rb, id, nil))
}

func (b *binder) anonymous(id scope.ID, super types.Type, body *TypeDeclaration, pos errors.Position) {
	enclosing := b.tree.EnclosingSourceType(id)
	rb := b.env.DefineLocalType(enclosing, b.enclosingMethod(id), "", b.tree.IsStaticContext(id))
	body.Position = pos
	b.complete(b.open(body, rb, id, super))
}

// --- Names ---

func (b *binder) read(id scope.ID, name string, pos errors.Position) {
	bnd, p := b.tree.Resolve(id, name, scope.MaskAny, pos)
	if p != nil {
		b.problemOnLocal(p)
		b.report(p)
		return
	}
	if lv, ok := bnd.(*scope.LocalVariable); ok {
		b.noteCapture(id, lv, pos)
	}
}

func (b *binder) assign(id scope.ID, name string, pos errors.Position) {
	bnd, p := b.tree.Resolve(id, name, scope.MaskVariable, pos)
	if p != nil {
		b.problemOnLocal(p)
		b.report(p)
		return
	}
	lv, ok := bnd.(*scope.LocalVariable)
	if !ok {
		return
	}
	if b.uninitialized.Remove(lv) {
		// first assignment of a blank local
		return
	}
	b.tree.MarkAssigned(lv)
	b.noteCapture(id, lv, pos)
}

// problemOnLocal remembers locals already reported as captured while not
// effectively final.
func (b *binder) problemOnLocal(p *errors.Problem) {
	if p.Reason != errors.ScopeBoundary {
		return
	}
	if lv, ok := p.Binding(0).(*scope.LocalVariable); ok {
		b.flagged.Insert(lv)
	}
}

func (b *binder) noteCapture(id scope.ID, lv *scope.LocalVariable, pos errors.Position) {
	if b.tree.MethodScopeOf(id) != b.tree.MethodScopeOf(lv.Declaring) {
		b.captures = append(b.captures, capture{local: lv, pos: pos})
	}
}

// checkCaptures reports captured locals that turned out to be assigned
// again, possibly after the capturing code.
func (b *binder) checkCaptures() {
	if !b.level.EffectivelyFinalCapture() {
		return
	}
	for _, c := range b.captures {
		lv := c.local
		if lv.IsEffectivelyFinal() || b.flagged.Contains(lv) {
			continue
		}
		b.flagged.Insert(lv)
		b.report(errors.NewProblem(errors.ScopeBoundary, c.pos).WithName(lv.Name).WithBindings(lv))
	}
}
