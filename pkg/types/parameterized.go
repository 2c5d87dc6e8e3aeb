package types

import (
	"sync"
)

// ParameterizedType is a generic declaration applied to type arguments,
// e.g. List<String> or Outer<String>.Inner<Integer>.
type ParameterizedType struct {
	typeBase
	env       *Environment
	generic   *ReferenceBinding
	args      []Type
	enclosing Type // *ParameterizedType, *RawType or nil

	members memberCache
}

func (p *ParameterizedType) Kind() Kind                     { return KindParameterized }
func (p *ParameterizedType) Declaration() *ReferenceBinding { return p.generic }
func (p *ParameterizedType) Arguments() []Type              { return p.args }
func (p *ParameterizedType) Enclosing() Type                { return p.enclosing }
func (p *ParameterizedType) Erasure() Type                  { return p.generic }

func (p *ParameterizedType) String() string {
	prefix := p.generic.SourceName()
	if p.enclosing != nil {
		prefix = p.enclosing.String() + "." + p.generic.Name
	}
	if len(p.args) == 0 {
		return prefix
	}
	return prefix + "<" + joinTypes(p.args, ",") + ">"
}

// Substitute maps the generic's own variables to the arguments and defers
// to the enclosing type for outer variables.
func (p *ParameterizedType) Substitute(tv *TypeVariable) Type {
	if tv.declaringType == p.generic && tv.Rank < len(p.args) {
		return p.args[tv.Rank]
	}
	if s, ok := p.enclosing.(Substitution); ok {
		return s.Substitute(tv)
	}
	return tv
}

func (p *ParameterizedType) IsRawSubstitution() bool { return false }

// HasWildcards reports whether any argument is a wildcard.
func (p *ParameterizedType) HasWildcards() bool {
	for _, a := range p.args {
		if a.Kind() == KindWildcard {
			return true
		}
	}
	return false
}

func (p *ParameterizedType) Superclass() Type {
	return p.members.get(p.generic, p.compute).superclass
}

func (p *ParameterizedType) Interfaces() []Type {
	return p.members.get(p.generic, p.compute).interfaces
}

func (p *ParameterizedType) Methods() []*MethodBinding {
	return p.members.get(p.generic, p.compute).methods
}

func (p *ParameterizedType) Fields() []*FieldBinding {
	return p.members.get(p.generic, p.compute).fields
}

// GetMethods returns the substituted methods named selector.
func (p *ParameterizedType) GetMethods(selector string) []*MethodBinding {
	return methodsNamed(p.Methods(), selector)
}

func (p *ParameterizedType) compute() members {
	var m members
	if sc := p.generic.superclass; sc != nil {
		m.superclass = Substitute(p, sc)
	}
	for _, it := range p.generic.interfaces {
		m.interfaces = append(m.interfaces, Substitute(p, it))
	}
	for _, method := range p.generic.methods {
		if method.IsStatic() {
			m.methods = append(m.methods, method)
			continue
		}
		m.methods = append(m.methods, NewParameterizedMethod(method, p, p))
	}
	for _, f := range p.generic.fields {
		if f.IsStatic() {
			m.fields = append(m.fields, f)
			continue
		}
		m.fields = append(m.fields, &FieldBinding{
			Name:          f.Name,
			Type:          Substitute(p, f.Type),
			Modifiers:     f.Modifiers,
			DeclaringType: p,
			Pos:           f.Pos,
			original:      f,
		})
	}
	return m
}

// RawType is a generic declaration used without arguments. Its arguments
// are the erasures of the declaration's own variables and are never
// substituted, even when a raw type is the target of a substitution.
type RawType struct {
	typeBase
	env       *Environment
	generic   *ReferenceBinding
	enclosing Type

	argsOnce sync.Once
	args     []Type
	members  memberCache
}

func (r *RawType) Kind() Kind                     { return KindRaw }
func (r *RawType) Declaration() *ReferenceBinding { return r.generic }
func (r *RawType) Enclosing() Type                { return r.enclosing }
func (r *RawType) Erasure() Type                  { return r.generic }
func (r *RawType) String() string                 { return r.generic.SourceName() }

// Arguments are computed once from the variables' erasures.
func (r *RawType) Arguments() []Type {
	r.argsOnce.Do(func() {
		r.args = make([]Type, len(r.generic.TypeVariables))
		for i, tv := range r.generic.TypeVariables {
			r.args[i] = tv.Erasure()
		}
	})
	return r.args
}

// Substitute erases any variable of the generic or its enclosing types.
func (r *RawType) Substitute(tv *TypeVariable) Type {
	if tv.declaringType == r.generic || (tv.declaringType != nil && r.generic.IsEnclosedBy(tv.declaringType)) {
		return tv.Erasure()
	}
	return tv
}

func (r *RawType) IsRawSubstitution() bool { return true }

func (r *RawType) Superclass() Type {
	return r.members.get(r.generic, r.compute).superclass
}

func (r *RawType) Interfaces() []Type {
	return r.members.get(r.generic, r.compute).interfaces
}

func (r *RawType) Methods() []*MethodBinding {
	return r.members.get(r.generic, r.compute).methods
}

func (r *RawType) Fields() []*FieldBinding {
	return r.members.get(r.generic, r.compute).fields
}

// GetMethods returns the erased methods named selector.
func (r *RawType) GetMethods(selector string) []*MethodBinding {
	return methodsNamed(r.Methods(), selector)
}

func (r *RawType) compute() members {
	var m members
	if sc := r.generic.superclass; sc != nil {
		m.superclass = r.env.ConvertToRaw(sc.Erasure())
	}
	for _, it := range r.generic.interfaces {
		m.interfaces = append(m.interfaces, r.env.ConvertToRaw(it.Erasure()))
	}
	for _, method := range r.generic.methods {
		if method.IsStatic() {
			m.methods = append(m.methods, method)
			continue
		}
		m.methods = append(m.methods, NewRawMethod(method, r))
	}
	for _, f := range r.generic.fields {
		if f.IsStatic() {
			m.fields = append(m.fields, f)
			continue
		}
		m.fields = append(m.fields, &FieldBinding{
			Name:          f.Name,
			Type:          f.Type.Erasure(),
			Modifiers:     f.Modifiers,
			DeclaringType: r,
			Pos:           f.Pos,
			original:      f,
		})
	}
	return m
}

type members struct {
	superclass Type
	interfaces []Type
	methods    []*MethodBinding
	fields     []*FieldBinding
}

// memberCache holds the lazily derived members of a parameterized or raw
// type. It is recomputed if the declaration changed since the last read,
// which only happens while its declaring unit is still being built.
type memberCache struct {
	mu      sync.Mutex
	ready   bool
	version uint64
	m       members
}

func (c *memberCache) get(decl *ReferenceBinding, compute func() members) members {
	v := decl.version.Load()
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ready || c.version != v {
		c.m = compute()
		c.version = v
		c.ready = true
	}
	return c.m
}
