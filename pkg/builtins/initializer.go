package builtins

import (
	"fmt"
	"strings"

	"javasema/pkg/signature"
	"javasema/pkg/types"
)

// Initializer is implemented by each well-known package
type Initializer interface {
	// Name returns the package name (e.g., "java.lang")
	Name() string

	// Priority returns initialization order (lower = earlier)
	Priority() int

	// DeclareTypes creates the type headers: names, modifiers and type
	// parameters. Supertypes may not exist yet.
	DeclareTypes(ctx *TypeContext) error

	// InitMembers connects supertypes and adds methods. Every initializer
	// has declared its types by the time this runs.
	InitMembers(ctx *TypeContext) error
}

// Priority constants for initialization order
const (
	PriorityJavaLang     = 0
	PriorityJavaIO       = 1
	PriorityJavaUtil     = 2
	PriorityJavaFunction = 3
)

// Stub describes one type in source syntax: a header such as
// "public class ArrayList<E> extends AbstractList<E>" and member headers.
type Stub struct {
	Header  string
	Outer   string // simple name of the enclosing type for member types
	Members []string
}

// TypeContext provides everything needed for type initialization
type TypeContext struct {
	Env *types.Environment

	bySimpleName map[string]*types.ReferenceBinding
	headers      map[*types.ReferenceBinding]*signature.TypeHeader
}

// NewTypeContext prepares a seeding context over env.
func NewTypeContext(env *types.Environment) *TypeContext {
	return &TypeContext{
		Env:          env,
		bySimpleName: make(map[string]*types.ReferenceBinding),
		headers:      make(map[*types.ReferenceBinding]*signature.TypeHeader),
	}
}

// declareStubs runs the header phase for a package's stubs.
func (ctx *TypeContext) declareStubs(pkgName string, stubs []Stub) error {
	pkg := ctx.Env.Package(pkgName)
	for _, s := range stubs {
		h, err := signature.ParseTypeHeader(s.Header)
		if err != nil {
			return fmt.Errorf("%s: %w", pkgName, err)
		}
		mods := modifiersOf(h.Modifiers)
		switch h.Keyword {
		case "interface":
			mods |= types.Interface | types.Abstract
		case "@interface":
			mods |= types.Interface | types.Abstract | types.Annotation
		case "enum":
			mods |= types.Enum
		case "record":
			mods |= types.Record | types.Final
		}

		var rb *types.ReferenceBinding
		if s.Outer != "" {
			outer := ctx.bySimpleName[s.Outer]
			if outer == nil {
				return fmt.Errorf("%s: enclosing type %s of %s not declared", pkgName, s.Outer, h.Name)
			}
			rb, _ = ctx.Env.DefineMemberType(outer, h.Name, mods)
		} else {
			rb, _ = ctx.Env.DefineType(pkg, h.Name, mods)
			rb.Modifiers = mods
			ctx.bySimpleName[h.Name] = rb
		}
		if len(h.TypeParameters) > 0 {
			tvs := make([]*types.TypeVariable, len(h.TypeParameters))
			for i, tp := range h.TypeParameters {
				tvs[i] = ctx.Env.CreateTypeVariable(tp.Name)
			}
			rb.SetTypeVariables(tvs)
		}
		ctx.headers[rb] = h
	}
	return nil
}

// completeStubs runs the member phase for a package's stubs.
func (ctx *TypeContext) completeStubs(pkgName string, stubs []Stub) error {
	for _, s := range stubs {
		rb, err := ctx.lookupStub(pkgName, s)
		if err != nil {
			return err
		}
		h := ctx.headers[rb]
		vars := rb.TypeVariables
		for i, tp := range h.TypeParameters {
			bounds, err := ctx.resolveAll(tp.Bounds, vars)
			if err != nil {
				return fmt.Errorf("%s: bounds of %s: %w", rb.QualifiedName(), tp.Name, err)
			}
			vars[i].SetBounds(bounds...)
		}

		var superclass types.Type
		var interfaces []types.Type
		if rb.IsInterface() {
			interfaces, err = ctx.resolveAll(h.Extends, vars)
		} else {
			var ext []types.Type
			ext, err = ctx.resolveAll(h.Extends, vars)
			if len(ext) > 0 {
				superclass = ext[0]
			}
			if err == nil {
				interfaces, err = ctx.resolveAll(h.Implements, vars)
			}
		}
		if err != nil {
			return fmt.Errorf("%s: supertypes: %w", rb.QualifiedName(), err)
		}
		if superclass == nil && !rb.IsInterface() && rb != ctx.Env.Object() {
			superclass = ctx.Env.Object()
		}
		if rb.IsEnum() {
			enum := ctx.Env.LookupType("java.lang.Enum")
			superclass = ctx.Env.CreateParameterizedType(enum, []types.Type{rb}, nil)
		}
		if rb.Modifiers.Has(types.Annotation) {
			interfaces = append(interfaces, ctx.Env.LookupType("java.lang.annotation.Annotation"))
		}
		rb.SetSupertypes(superclass, interfaces)

		for _, member := range s.Members {
			if err := ctx.addMethod(rb, member); err != nil {
				return fmt.Errorf("%s: %q: %w", rb.QualifiedName(), member, err)
			}
		}
	}
	return nil
}

func (ctx *TypeContext) lookupStub(pkgName string, s Stub) (*types.ReferenceBinding, error) {
	h, err := signature.ParseTypeHeader(s.Header)
	if err != nil {
		return nil, err
	}
	name := h.Name
	if s.Outer != "" {
		name = s.Outer + "." + h.Name
	}
	rb := ctx.Env.LookupType(pkgName + "." + name)
	if rb == nil {
		return nil, fmt.Errorf("%s.%s was not declared", pkgName, name)
	}
	return rb, nil
}

func (ctx *TypeContext) addMethod(rb *types.ReferenceBinding, src string) error {
	sig, err := signature.ParseMethod(src)
	if err != nil {
		return err
	}
	m := &types.MethodBinding{Selector: sig.Name, Modifiers: modifiersOf(sig.Modifiers), DeclaringType: rb}
	if sig.Return == nil {
		if sig.Name != rb.Name {
			return fmt.Errorf("constructor name %s does not match %s", sig.Name, rb.Name)
		}
		m.Selector = types.ConstructorSelector
	}
	if rb.IsInterface() && !m.Modifiers.Has(types.Private) {
		m.Modifiers |= types.Public
		if !m.Modifiers.Has(types.Default) && !m.Modifiers.Has(types.Static) {
			m.Modifiers |= types.Abstract
		}
	}
	if sig.Varargs {
		m.Modifiers |= types.Varargs
	}

	scope := rb.TypeVariables
	if len(sig.TypeParameters) > 0 {
		tvs := make([]*types.TypeVariable, len(sig.TypeParameters))
		for i, tp := range sig.TypeParameters {
			tvs[i] = ctx.Env.CreateTypeVariable(tp.Name)
		}
		m.SetTypeVariables(tvs)
		scope = append(append([]*types.TypeVariable{}, tvs...), scope...)
		for i, tp := range sig.TypeParameters {
			bounds, err := ctx.resolveAll(tp.Bounds, scope)
			if err != nil {
				return err
			}
			tvs[i].SetBounds(bounds...)
		}
	}
	if m.Parameters, err = ctx.resolveAll(sig.Parameters, scope); err != nil {
		return err
	}
	if m.ThrownExceptions, err = ctx.resolveAll(sig.Throws, scope); err != nil {
		return err
	}
	m.ReturnType = types.Void
	if sig.Return != nil {
		if m.ReturnType, err = ctx.Resolve(sig.Return, scope); err != nil {
			return err
		}
	}
	rb.AddMethod(m)
	return nil
}

func (ctx *TypeContext) resolveAll(refs []*signature.Ref, scope []*types.TypeVariable) ([]types.Type, error) {
	var out []types.Type
	for _, r := range refs {
		t, err := ctx.Resolve(r, scope)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Resolve binds a stub reference. Type variables in scope shadow types;
// simple names resolve against every seeded package.
func (ctx *TypeContext) Resolve(ref *signature.Ref, scope []*types.TypeVariable) (types.Type, error) {
	env := ctx.Env
	var t types.Type
	switch {
	case ref.Wildcard != signature.NotWildcard:
		if ref.Wildcard == signature.Unbounded {
			return env.CreateWildcard(types.Unbounded, nil), nil
		}
		bound, err := ctx.Resolve(ref.Bound, scope)
		if err != nil {
			return nil, err
		}
		kind := types.Extends
		if ref.Wildcard == signature.Super {
			kind = types.Super
		}
		return env.CreateWildcard(kind, bound), nil
	case types.PrimitiveByName(ref.Name) != nil:
		t = types.PrimitiveByName(ref.Name)
	default:
		for _, tv := range scope {
			if tv.Name == ref.Name {
				t = tv
				break
			}
		}
		if t == nil {
			rb := ctx.lookupName(ref.Name)
			if rb == nil {
				return nil, fmt.Errorf("unknown type %s", ref.Name)
			}
			t = rb
			if len(ref.Args) > 0 {
				args, err := ctx.resolveAll(ref.Args, scope)
				if err != nil {
					return nil, err
				}
				if len(args) != len(rb.TypeVariables) {
					return nil, fmt.Errorf("%s expects %d type arguments, got %d", rb.QualifiedName(), len(rb.TypeVariables), len(args))
				}
				t = env.CreateParameterizedType(rb, args, nil)
			} else if rb.IsGeneric() {
				t = env.CreateRawType(rb, nil)
			}
		}
	}
	if ref.Dims > 0 {
		t = env.CreateArrayType(t, ref.Dims)
	}
	return t, nil
}

func (ctx *TypeContext) lookupName(name string) *types.ReferenceBinding {
	if strings.Contains(name, ".") {
		if rb := ctx.Env.LookupType(name); rb != nil {
			return rb
		}
		parts := strings.Split(name, ".")
		rb := ctx.bySimpleName[parts[0]]
		for _, p := range parts[1:] {
			if rb == nil {
				return nil
			}
			rb = rb.GetMemberType(p)
		}
		return rb
	}
	return ctx.bySimpleName[name]
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
