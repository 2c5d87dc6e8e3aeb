package types

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// Environment owns the interning tables of one compilation session. Every
// factory here returns the canonical instance for its structural
// description, so callers may compare bindings with ==.
//
// Thread Safety: the tables are guarded by mu; factories may be called from
// any goroutine. Declarations handed out by DefineType follow the single
// writer rule of their declaring unit.
type Environment struct {
	mu  sync.Mutex
	ids atomic.Int64

	packages      map[string]*Package
	parameterized map[string]*ParameterizedType
	raws          map[string]*RawType
	arrays        map[[2]int]*ArrayType
	wildcards     map[[2]int]*WildcardType
	intersections map[string]*IntersectionType
	localCounters map[*ReferenceBinding]int
	captures      int

	object *ReferenceBinding
}

// JavaLang is the implicitly imported package.
const JavaLang = "java.lang"

// NewEnvironment creates a session with java.lang.Object in place. Other
// well-known types are seeded by the builtins initializers.
func NewEnvironment() *Environment {
	env := &Environment{
		packages:      make(map[string]*Package),
		parameterized: make(map[string]*ParameterizedType),
		raws:          make(map[string]*RawType),
		arrays:        make(map[[2]int]*ArrayType),
		wildcards:     make(map[[2]int]*WildcardType),
		intersections: make(map[string]*IntersectionType),
		localCounters: make(map[*ReferenceBinding]int),
	}
	env.ids.Store(firstEnvironmentID)
	env.object, _ = env.DefineType(env.Package(JavaLang), "Object", Public)
	return env
}

func (env *Environment) nextID() int {
	return int(env.ids.Add(1))
}

// Object returns java.lang.Object.
func (env *Environment) Object() *ReferenceBinding { return env.object }

// Package returns the named package, creating it on first use.
func (env *Environment) Package(name string) *Package {
	env.mu.Lock()
	defer env.mu.Unlock()
	return env.packageLocked(name)
}

func (env *Environment) packageLocked(name string) *Package {
	if p, ok := env.packages[name]; ok {
		return p
	}
	p := &Package{Name: name, types: make(map[string]*ReferenceBinding)}
	env.packages[name] = p
	return p
}

// HasPackage reports whether any type was defined in (or below) name.
func (env *Environment) HasPackage(name string) bool {
	env.mu.Lock()
	defer env.mu.Unlock()
	if _, ok := env.packages[name]; ok {
		return true
	}
	prefix := name + "."
	for n := range env.packages {
		if strings.HasPrefix(n, prefix) {
			return true
		}
	}
	return false
}

// DefineType declares a top level type. It answers the existing binding and
// false when the name is already taken.
func (env *Environment) DefineType(pkg *Package, name string, modifiers Modifiers) (*ReferenceBinding, bool) {
	env.mu.Lock()
	defer env.mu.Unlock()
	if existing, ok := pkg.types[name]; ok {
		return existing, false
	}
	rb := &ReferenceBinding{
		typeBase:  typeBase{env.nextID()},
		env:       env,
		Name:      name,
		Package:   pkg,
		Nesting:   TopLevel,
		Modifiers: modifiers,
	}
	pkg.types[name] = rb
	return rb, true
}

// DefineMemberType declares a member type of enclosing.
func (env *Environment) DefineMemberType(enclosing *ReferenceBinding, name string, modifiers Modifiers) (*ReferenceBinding, bool) {
	if existing := enclosing.GetMemberType(name); existing != nil {
		return existing, false
	}
	// member types of interfaces are implicitly static and public
	if enclosing.IsInterface() {
		modifiers |= Static | Public
	}
	if modifiers.Has(Interface) || modifiers.Has(Enum) || modifiers.Has(Record) {
		modifiers |= Static
	}
	rb := &ReferenceBinding{
		typeBase:  typeBase{env.nextID()},
		env:       env,
		Name:      name,
		Package:   enclosing.Package,
		Enclosing: enclosing,
		Nesting:   Member,
		Modifiers: modifiers,
	}
	enclosing.addMemberType(rb)
	return rb, true
}

// DefineLocalType declares a local (or anonymous, when name is empty) type
// inside method, a member of enclosing.
func (env *Environment) DefineLocalType(enclosing *ReferenceBinding, method *MethodBinding, name string, staticContext bool) *ReferenceBinding {
	outer := enclosing.Outermost()
	env.mu.Lock()
	env.localCounters[outer]++
	index := env.localCounters[outer]
	env.mu.Unlock()

	nesting := Local
	if name == "" {
		nesting = Anonymous
	}
	return &ReferenceBinding{
		typeBase:        typeBase{env.nextID()},
		env:             env,
		Name:            name,
		Package:         enclosing.Package,
		Enclosing:       enclosing,
		Nesting:         nesting,
		InStaticContext: staticContext,
		EnclosingMethod: method,
		localIndex:      index,
	}
}

// LookupType finds a type by qualified name, e.g. java.util.Map.Entry.
// The longest matching package prefix wins.
func (env *Environment) LookupType(qualified string) *ReferenceBinding {
	env.mu.Lock()
	defer env.mu.Unlock()
	for i := strings.LastIndexByte(qualified, '.'); ; i = strings.LastIndexByte(qualified[:i], '.') {
		pkgName, rest := "", qualified
		if i >= 0 {
			pkgName, rest = qualified[:i], qualified[i+1:]
		}
		if pkg, ok := env.packages[pkgName]; ok {
			if rb := lookupPath(pkg, rest); rb != nil {
				return rb
			}
		}
		if i < 0 {
			return nil
		}
	}
}

func lookupPath(pkg *Package, path string) *ReferenceBinding {
	parts := strings.Split(path, ".")
	rb := pkg.types[parts[0]]
	for _, p := range parts[1:] {
		if rb == nil {
			return nil
		}
		rb = rb.GetMemberType(p)
	}
	return rb
}

// LookupInPackage finds a top level type by simple name.
func (env *Environment) LookupInPackage(pkg *Package, name string) *ReferenceBinding {
	env.mu.Lock()
	defer env.mu.Unlock()
	return pkg.types[name]
}

// PackageTypes lists the top level types of pkg sorted by name.
func (env *Environment) PackageTypes(pkg *Package) []*ReferenceBinding {
	env.mu.Lock()
	defer env.mu.Unlock()
	out := make([]*ReferenceBinding, 0, len(pkg.types))
	for _, rb := range pkg.types {
		out = append(out, rb)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// CreateTypeVariable allocates a declared type parameter. Declarations are
// unique, so variables are not interned.
func (env *Environment) CreateTypeVariable(name string) *TypeVariable {
	return &TypeVariable{typeBase: typeBase{env.nextID()}, env: env, Name: name}
}

// CreateParameterizedType interns generic<args> (optionally as a member of
// a parameterized enclosing type).
func (env *Environment) CreateParameterizedType(generic *ReferenceBinding, args []Type, enclosing Type) *ParameterizedType {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(generic.ID()))
	if enclosing != nil {
		sb.WriteByte('@')
		sb.WriteString(strconv.Itoa(enclosing.ID()))
	}
	for _, a := range args {
		sb.WriteByte(',')
		sb.WriteString(strconv.Itoa(a.ID()))
	}
	key := sb.String()

	env.mu.Lock()
	defer env.mu.Unlock()
	if p, ok := env.parameterized[key]; ok {
		return p
	}
	p := &ParameterizedType{
		typeBase:  typeBase{env.nextID()},
		env:       env,
		generic:   generic,
		args:      append([]Type(nil), args...),
		enclosing: enclosing,
	}
	env.parameterized[key] = p
	return p
}

// CreateRawType interns the raw form of generic.
func (env *Environment) CreateRawType(generic *ReferenceBinding, enclosing Type) *RawType {
	key := strconv.Itoa(generic.ID())
	if enclosing != nil {
		key += "@" + strconv.Itoa(enclosing.ID())
	}
	env.mu.Lock()
	defer env.mu.Unlock()
	if r, ok := env.raws[key]; ok {
		return r
	}
	r := &RawType{typeBase: typeBase{env.nextID()}, env: env, generic: generic, enclosing: enclosing}
	env.raws[key] = r
	return r
}

// ConvertToRaw turns a bare generic declaration (or an array of one) into
// its raw type. Everything else is returned as is.
func (env *Environment) ConvertToRaw(t Type) Type {
	switch tt := t.(type) {
	case *ReferenceBinding:
		if tt.IsGeneric() {
			return env.CreateRawType(tt, nil)
		}
	case *ArrayType:
		if leaf := env.ConvertToRaw(tt.leaf); leaf != tt.leaf {
			return env.CreateArrayType(leaf, tt.dimensions)
		}
	}
	return t
}

// CreateArrayType interns leaf[]... with the given extra dimensions.
func (env *Environment) CreateArrayType(leaf Type, dimensions int) *ArrayType {
	if a, ok := leaf.(*ArrayType); ok {
		leaf, dimensions = a.leaf, a.dimensions+dimensions
	}
	key := [2]int{leaf.ID(), dimensions}
	env.mu.Lock()
	if a, ok := env.arrays[key]; ok {
		env.mu.Unlock()
		return a
	}
	env.mu.Unlock()

	var elem Type = leaf
	if dimensions > 1 {
		elem = env.CreateArrayType(leaf, dimensions-1)
	}

	env.mu.Lock()
	defer env.mu.Unlock()
	if a, ok := env.arrays[key]; ok {
		return a
	}
	a := &ArrayType{typeBase: typeBase{env.nextID()}, env: env, leaf: leaf, dimensions: dimensions, elem: elem}
	env.arrays[key] = a
	return a
}

// CreateWildcard interns ?, ? extends bound or ? super bound.
func (env *Environment) CreateWildcard(kind BoundKind, bound Type) *WildcardType {
	if kind == Unbounded {
		bound = nil
	}
	key := [2]int{int(kind), 0}
	if bound != nil {
		key[1] = bound.ID()
	}
	env.mu.Lock()
	defer env.mu.Unlock()
	if w, ok := env.wildcards[key]; ok {
		return w
	}
	w := &WildcardType{typeBase: typeBase{env.nextID()}, env: env, BoundKind: kind, bound: bound}
	env.wildcards[key] = w
	return w
}

// CreateIntersection interns T1 & T2 & ... in the given order. A single
// component is returned unchanged.
func (env *Environment) CreateIntersection(components ...Type) Type {
	if len(components) == 1 {
		return components[0]
	}
	ids := make([]string, len(components))
	for i, c := range components {
		ids[i] = strconv.Itoa(c.ID())
	}
	key := strings.Join(ids, "&")
	env.mu.Lock()
	defer env.mu.Unlock()
	if it, ok := env.intersections[key]; ok {
		return it
	}
	it := &IntersectionType{typeBase: typeBase{env.nextID()}, env: env, types: append([]Type(nil), components...)}
	env.intersections[key] = it
	return it
}

// --- Well-known types ---

// WellKnown looks up a type that builtins seeded; nil when absent.
func (env *Environment) WellKnown(qualified string) *ReferenceBinding {
	return env.LookupType(qualified)
}

// Box returns the wrapper class of p, nil if not seeded.
func (env *Environment) Box(p *PrimitiveType) *ReferenceBinding {
	if p == Void {
		return nil
	}
	return env.LookupType(p.BoxName)
}

// Unbox returns the primitive wrapped by t's erasure, or nil.
func (env *Environment) Unbox(t Type) *PrimitiveType {
	rb, ok := t.Erasure().(*ReferenceBinding)
	if !ok || rb.Package == nil || rb.Package.Name != JavaLang {
		return nil
	}
	qn := rb.QualifiedName()
	for _, p := range Primitives {
		if p.BoxName == qn {
			return p
		}
	}
	return nil
}
