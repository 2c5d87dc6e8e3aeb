package scope

import (
	"strings"

	"javasema/pkg/errors"
	"javasema/pkg/signature"
	"javasema/pkg/types"
)

// ResolveTypeName parses text, either Java source syntax or a JVM
// descriptor/signature, and binds it from scope from.
func (t *Tree) ResolveTypeName(from ID, text string, site errors.Position) (types.Type, *errors.Problem) {
	var ref *signature.Ref
	var err error
	if signature.IsDescriptor(text) {
		ref, err = signature.ParseDescriptor(text)
	} else {
		ref, err = signature.ParseType(text)
	}
	if err != nil {
		return nil, errors.NewProblem(errors.NotFound, site).WithName(text).CausedBy(err)
	}
	return t.ResolveTypeRef(from, ref, site)
}

// ResolveTypeRef binds a parsed type reference: primitives, arrays,
// wildcards, qualified and member names, type arguments with their bound
// checks, and raw references to generic types.
func (t *Tree) ResolveTypeRef(from ID, ref *signature.Ref, site errors.Position) (types.Type, *errors.Problem) {
	if ref.Wildcard != signature.NotWildcard {
		if ref.Wildcard == signature.Unbounded {
			return t.env.CreateWildcard(types.Unbounded, nil), nil
		}
		bound, p := t.ResolveTypeRef(from, ref.Bound, site)
		if p != nil {
			return nil, p
		}
		kind := types.Extends
		if ref.Wildcard == signature.Super {
			kind = types.Super
		}
		return t.env.CreateWildcard(kind, bound), nil
	}

	var result types.Type
	if prim := types.PrimitiveByName(ref.Name); prim != nil && ref.Outer == nil {
		if prim == types.Void && ref.Dims > 0 {
			return nil, errors.NewProblem(errors.TypeMismatch, site).WithName("void[]")
		}
		result = prim
	} else {
		bound, p := t.bindClassRef(from, ref, site)
		if p != nil {
			return nil, p
		}
		result = bound
	}
	if ref.Dims > 0 {
		result = t.env.CreateArrayType(result, ref.Dims)
	}
	for _, extra := range ref.Intersection {
		// only bounds carry intersections; callers flatten through Glb
		component, p := t.ResolveTypeRef(from, extra, site)
		if p != nil {
			return nil, p
		}
		result = t.env.CreateIntersection(result, component)
	}
	return result, nil
}

func (t *Tree) bindClassRef(from ID, ref *signature.Ref, site errors.Position) (types.Type, *errors.Problem) {
	var enclosing types.Type
	var decl *types.ReferenceBinding

	if ref.Outer != nil {
		outerRef := *ref.Outer
		outerRef.Dims = 0
		outer, p := t.ResolveTypeRef(from, &outerRef, site)
		if p != nil {
			return nil, p
		}
		ct, ok := outer.(types.ClassType)
		if !ok {
			return nil, errors.NewProblem(errors.NotFound, site).WithName(ref.Name)
		}
		decl = ct.Declaration().GetMemberType(ref.SimpleName())
		if decl == nil {
			return nil, errors.NewProblem(errors.NotFound, site).WithName(ref.Name)
		}
		if decl.HasEnclosingInstance() {
			enclosing = outer
		}
	} else {
		tb, p := t.lookupTypeName(from, ref, site)
		if p != nil {
			return nil, p
		}
		rb, ok := tb.(*types.ReferenceBinding)
		if !ok {
			// type variables take no arguments
			if len(ref.Args) > 0 {
				return nil, errors.NewProblem(errors.TypeMismatch, site).WithName(ref.String()).WithBindings(tb)
			}
			return tb, nil
		}
		decl = rb
	}

	if len(ref.Args) == 0 {
		if decl.IsGeneric() {
			return t.env.CreateRawType(decl, rawEnclosing(t.env, enclosing)), nil
		}
		if enclosing != nil {
			if _, parameterized := enclosing.(*types.ParameterizedType); parameterized {
				return t.env.CreateParameterizedType(decl, nil, enclosing), nil
			}
		}
		return decl, nil
	}
	if !t.level.Generics() {
		return nil, errors.NewProblem(errors.ComplianceViolation, site).WithName("type arguments")
	}
	if len(ref.Args) != len(decl.TypeVariables) {
		return nil, errors.NewProblem(errors.TypeMismatch, site).WithName(ref.String()).WithBindings(decl)
	}
	args := make([]types.Type, len(ref.Args))
	for i, a := range ref.Args {
		arg, p := t.ResolveTypeRef(from, a, site)
		if p != nil {
			return nil, p
		}
		if _, prim := arg.(*types.PrimitiveType); prim {
			return nil, errors.NewProblem(errors.TypeMismatch, site).WithName(ref.String()).WithBindings(arg).AtArgument(i)
		}
		args[i] = arg
	}
	pt := t.env.CreateParameterizedType(decl, args, enclosing)
	if !t.deferBounds {
		if p := t.checkBounds(decl, args, site); p != nil {
			return nil, p
		}
	}
	return pt, nil
}

// WithoutBoundChecks runs fn with argument bound checks suspended. Type
// parameter sections are bound this way since their bounds may still be
// incomplete.
func (t *Tree) WithoutBoundChecks(fn func()) {
	prev := t.deferBounds
	t.deferBounds = true
	defer func() { t.deferBounds = prev }()
	fn()
}

func rawEnclosing(env *types.Environment, enclosing types.Type) types.Type {
	if enclosing == nil {
		return nil
	}
	return env.ConvertToRaw(enclosing.Erasure())
}

// checkBounds verifies every non-wildcard argument against its variable's
// substituted bounds.
func (t *Tree) checkBounds(decl *types.ReferenceBinding, args []types.Type, site errors.Position) *errors.Problem {
	subst := types.NewMapSubstitution(decl.TypeVariables, args)
	for i, tv := range decl.TypeVariables {
		if _, wildcard := args[i].(*types.WildcardType); wildcard {
			continue
		}
		for _, b := range tv.DeclaredBounds() {
			bound := types.Substitute(subst, b)
			if t.env.Compatibility(args[i], bound) == types.Incompatible {
				return errors.NewProblem(errors.BoundMismatch, site).WithName(decl.String()).WithBindings(args[i], bound).ForVariable(tv).AtArgument(i)
			}
		}
	}
	return nil
}

// lookupTypeName resolves a possibly qualified name. The first segment is
// looked up lexically; when it does not name a type the longest package
// prefix is tried instead.
func (t *Tree) lookupTypeName(from ID, ref *signature.Ref, site errors.Position) (types.Type, *errors.Problem) {
	segments := strings.Split(ref.Name, ".")
	first, p := t.resolveType(from, segments[0], site)
	if p != nil && p.Reason != errors.NotFound {
		return nil, p
	}
	if first != nil {
		cur := first
		for _, seg := range segments[1:] {
			rb, ok := cur.(*types.ReferenceBinding)
			if !ok {
				return nil, errors.NewProblem(errors.NotFound, site).WithName(ref.Name)
			}
			mt, p := t.findMemberType(rb, seg, t.EnclosingSourceType(from), site)
			if p != nil {
				return nil, p
			}
			if mt == nil {
				return nil, errors.NewProblem(errors.NotFound, site).WithName(ref.Name)
			}
			cur = mt
		}
		return cur, nil
	}
	if len(segments) > 1 {
		if rb := t.env.LookupType(ref.Name); rb != nil {
			return t.checkTypeVisible(rb, t.EnclosingSourceType(from), site)
		}
	}
	return nil, errors.NewProblem(errors.NotFound, site).WithName(ref.Name)
}
