// Package scope builds the lexical scope tree of a compilation unit and
// resolves names against it.
//
// Scopes live in an arena owned by a Tree and refer to each other by ID, so
// a scope never owns its parent or children. A Tree belongs to one
// compilation unit and follows the single writer rule: the pass that builds
// it is the only one that mutates it.
package scope

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"javasema/pkg/config"
	"javasema/pkg/types"
)

const scopeDebug = false

func debugPrintf(format string, args ...interface{}) {
	if scopeDebug {
		logrus.Debugf(format, args...)
	}
}

// ID addresses a scope inside its Tree.
type ID int32

// NoScope is the parent of the root.
const NoScope ID = -1

// Kind tags a scope.
type Kind uint8

const (
	UnitScope Kind = iota
	ClassScope
	MethodScope
	BlockScope
)

func (k Kind) String() string {
	switch k {
	case UnitScope:
		return "unit"
	case ClassScope:
		return "class"
	case MethodScope:
		return "method"
	case BlockScope:
		return "block"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// MethodFlags describe the context a method scope stands for.
type MethodFlags uint8

const (
	// Static marks static methods and static initializers.
	Static MethodFlags = 1 << iota
	// Constructor marks constructors and instance initializers.
	Constructor
	// Initializer marks field and block initializers.
	Initializer
	// ConstructorCall marks the arguments of an explicit this(...) or
	// super(...) call, where the instance under construction is unusable.
	ConstructorCall
	// Lambda marks a lambda body.
	Lambda
)

// Import is one import declaration of a compilation unit.
type Import struct {
	Name     string // qualified type name, or package name when OnDemand
	OnDemand bool
	Static   bool
}

// Scope is a node of the tree. Only the fields of its Kind are meaningful.
type Scope struct {
	Kind     Kind
	Parent   ID
	Children []ID

	// unit
	Package *types.Package
	Imports []Import
	Types   []*types.ReferenceBinding

	// class
	Type *types.ReferenceBinding

	// method
	Method *types.MethodBinding
	Flags  MethodFlags
	// analysisIndex is the monotonic local counter of the outermost method
	// scope; nested block and lambda scopes share the pointer.
	analysisIndex *int
	// lambda synthetic arguments, one per captured outer local
	lambdaArgs []*SyntheticArgument

	// method and block
	Locals     []*LocalVariable
	StartIndex int
	localTypes map[string]*types.ReferenceBinding
}

// IsStatic reports whether a method scope stands for a static context.
func (s *Scope) IsStatic() bool { return s.Flags&Static != 0 }

// IsLambda reports whether a method scope stands for a lambda body.
func (s *Scope) IsLambda() bool { return s.Flags&Lambda != 0 }

// IsInsideInitializerOrConstructor reports whether synthetic constructor
// arguments are in reach.
func (s *Scope) IsInsideInitializerOrConstructor() bool {
	return s.Flags&(Constructor|Initializer) != 0 && s.Flags&Static == 0
}

// Tree is the scope arena of one compilation unit.
type Tree struct {
	env   *types.Environment
	level config.Level
	opts  *config.Options

	scopes []*Scope
	nested map[*types.ReferenceBinding]*nestedInfo
	// classes maps a type to the class scope that declares it.
	classes map[*types.ReferenceBinding]ID

	deferBounds bool
}

// NewTree creates an empty arena. opts may be nil for defaults.
func NewTree(env *types.Environment, opts *config.Options) *Tree {
	if opts == nil {
		defaults := config.DefaultOptions()
		opts = &defaults
	}
	return &Tree{
		env:     env,
		level:   opts.Compliance,
		opts:    opts,
		nested:  make(map[*types.ReferenceBinding]*nestedInfo),
		classes: make(map[*types.ReferenceBinding]ID),
	}
}

// Environment returns the interning environment the tree binds against.
func (t *Tree) Environment() *types.Environment { return t.env }

// Level returns the compliance level rules are checked against.
func (t *Tree) Level() config.Level { return t.level }

// Scope returns the scope with the given id.
func (t *Tree) Scope(id ID) *Scope {
	if id < 0 || int(id) >= len(t.scopes) {
		return nil
	}
	return t.scopes[id]
}

// Len returns the number of scopes in the arena.
func (t *Tree) Len() int { return len(t.scopes) }

func (t *Tree) push(s *Scope) ID {
	id := ID(len(t.scopes))
	t.scopes = append(t.scopes, s)
	if s.Parent != NoScope {
		parent := t.scopes[s.Parent]
		parent.Children = append(parent.Children, id)
	}
	debugPrintf("// [Scope] push %s scope %d (parent %d)", s.Kind, id, s.Parent)
	return id
}

// NewUnitScope creates the root scope of a compilation unit.
func (t *Tree) NewUnitScope(pkg string, imports []Import) ID {
	return t.push(&Scope{
		Kind:    UnitScope,
		Parent:  NoScope,
		Package: t.env.Package(pkg),
		Imports: imports,
	})
}

// NewClassScope opens the body of rb inside parent. Top level types are
// recorded on the unit scope; local types on the enclosing block.
func (t *Tree) NewClassScope(parent ID, rb *types.ReferenceBinding) ID {
	p := t.scopes[parent]
	switch p.Kind {
	case UnitScope:
		p.Types = append(p.Types, rb)
	case MethodScope, BlockScope:
		if rb.Name != "" {
			if p.localTypes == nil {
				p.localTypes = make(map[string]*types.ReferenceBinding)
			}
			p.localTypes[rb.Name] = rb
		}
	}
	id := t.push(&Scope{Kind: ClassScope, Parent: parent, Type: rb})
	t.classes[rb] = id
	return id
}

// NewMethodScope opens a method, constructor, initializer or lambda body.
func (t *Tree) NewMethodScope(parent ID, m *types.MethodBinding, flags MethodFlags) ID {
	s := &Scope{Kind: MethodScope, Parent: parent, Method: m, Flags: flags}
	if outer := t.enclosingMethodScope(parent); outer != nil && flags&Lambda != 0 {
		s.analysisIndex = outer.analysisIndex
		// a lambda inherits the static-ness of its context
		s.Flags |= outer.Flags & Static
		if p := t.scopes[parent]; p.Kind == BlockScope || p.Kind == MethodScope {
			s.StartIndex = len(p.Locals)
		}
	} else {
		s.analysisIndex = new(int)
	}
	return t.push(s)
}

// NewLambdaScope opens a lambda body nested in parent.
func (t *Tree) NewLambdaScope(parent ID) ID {
	return t.NewMethodScope(parent, nil, Lambda)
}

// NewBlockScope opens a block. Its StartIndex records how many locals its
// parent had declared at that point.
func (t *Tree) NewBlockScope(parent ID) ID {
	p := t.scopes[parent]
	s := &Scope{Kind: BlockScope, Parent: parent, analysisIndex: p.analysisIndex}
	if p.Kind == BlockScope || p.Kind == MethodScope {
		s.StartIndex = len(p.Locals)
	}
	if s.analysisIndex == nil {
		s.analysisIndex = new(int)
	}
	return t.push(s)
}

// --- navigation ---

// MethodScopeOf returns the nearest method scope at or above id.
func (t *Tree) MethodScopeOf(id ID) *Scope {
	for cur := id; cur != NoScope; cur = t.scopes[cur].Parent {
		switch s := t.scopes[cur]; s.Kind {
		case MethodScope:
			return s
		case ClassScope, UnitScope:
			return nil
		}
	}
	return nil
}

func (t *Tree) methodScopeID(id ID) ID {
	for cur := id; cur != NoScope; cur = t.scopes[cur].Parent {
		switch t.scopes[cur].Kind {
		case MethodScope:
			return cur
		case ClassScope, UnitScope:
			return NoScope
		}
	}
	return NoScope
}

func (t *Tree) enclosingMethodScope(id ID) *Scope {
	if id == NoScope {
		return nil
	}
	return t.MethodScopeOf(id)
}

// EnclosingSourceType returns the type whose body contains id.
func (t *Tree) EnclosingSourceType(id ID) *types.ReferenceBinding {
	for cur := id; cur != NoScope; cur = t.scopes[cur].Parent {
		if s := t.scopes[cur]; s.Kind == ClassScope {
			return s.Type
		}
	}
	return nil
}

// UnitOf returns the compilation unit scope above id.
func (t *Tree) UnitOf(id ID) *Scope {
	for cur := id; cur != NoScope; cur = t.scopes[cur].Parent {
		if s := t.scopes[cur]; s.Kind == UnitScope {
			return s
		}
	}
	return nil
}

// ClassScopeOf returns the class scope declaring rb.
func (t *Tree) ClassScopeOf(rb *types.ReferenceBinding) (ID, bool) {
	id, ok := t.classes[rb]
	return id, ok
}

// IsStaticContext reports whether code at id has no current instance.
func (t *Tree) IsStaticContext(id ID) bool {
	ms := t.MethodScopeOf(id)
	return ms != nil && ms.IsStatic()
}
