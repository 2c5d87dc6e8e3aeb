// Package signature parses type references written in Java source syntax
// (java.util.Map<K, ? extends V>[]) and in JVM descriptor/signature syntax
// ([Ljava/lang/String;, Ljava/util/List<TE;>;) into unresolved references.
// Binding the names is left to the caller's scope.
package signature

import "strings"

// WildcardKind of a reference; NotWildcard for ordinary types.
type WildcardKind uint8

const (
	NotWildcard WildcardKind = iota
	Unbounded
	Extends
	Super
)

// Ref is an unresolved type reference.
type Ref struct {
	// Name is the dotted name (java.util.List), a primitive keyword, or a
	// type variable name.
	Name string
	Args []*Ref
	// Outer carries arguments given to an enclosing segment, as in
	// Outer<String>.Inner; nil when no prefix had arguments.
	Outer *Ref
	Dims  int
	// Variable marks a descriptor type variable reference (TT;).
	Variable bool

	Wildcard WildcardKind
	Bound    *Ref
	// Intersection holds the extra components of A & B bounds.
	Intersection []*Ref
	// Diamond is set for the empty argument list of new Foo<>().
	Diamond bool
}

// IsPrimitive reports a primitive keyword (or void) without dimensions.
func (r *Ref) IsPrimitive() bool {
	switch r.Name {
	case "boolean", "byte", "short", "char", "int", "long", "float", "double", "void":
		return r.Wildcard == NotWildcard && r.Outer == nil
	}
	return false
}

// SimpleName is the last segment of Name.
func (r *Ref) SimpleName() string {
	if i := strings.LastIndexByte(r.Name, '.'); i >= 0 {
		return r.Name[i+1:]
	}
	return r.Name
}

// IsQualified reports a dotted name.
func (r *Ref) IsQualified() bool { return strings.Contains(r.Name, ".") }

func (r *Ref) String() string {
	var sb strings.Builder
	r.write(&sb)
	return sb.String()
}

func (r *Ref) write(sb *strings.Builder) {
	switch r.Wildcard {
	case Unbounded:
		sb.WriteByte('?')
		return
	case Extends:
		sb.WriteString("? extends ")
		r.Bound.write(sb)
		return
	case Super:
		sb.WriteString("? super ")
		r.Bound.write(sb)
		return
	}
	if r.Outer != nil {
		r.Outer.write(sb)
		sb.WriteByte('.')
		sb.WriteString(r.SimpleName())
	} else {
		sb.WriteString(r.Name)
	}
	if r.Diamond {
		sb.WriteString("<>")
	} else if len(r.Args) > 0 {
		sb.WriteByte('<')
		for i, a := range r.Args {
			if i > 0 {
				sb.WriteByte(',')
			}
			a.write(sb)
		}
		sb.WriteByte('>')
	}
	for i := 0; i < r.Dims; i++ {
		sb.WriteString("[]")
	}
	for _, c := range r.Intersection {
		sb.WriteString(" & ")
		c.write(sb)
	}
}

// TypeParameter is a declared parameter with its bounds.
type TypeParameter struct {
	Name   string
	Bounds []*Ref
}

// MethodSignature is a parsed method stub such as
// public static <T> List<T> singletonList(T) throws X.
type MethodSignature struct {
	Modifiers      []string
	TypeParameters []TypeParameter
	Return         *Ref // nil for constructors
	Name           string
	Parameters     []*Ref
	Varargs        bool
	Throws         []*Ref
}

// TypeHeader is a parsed type declaration header such as
// public abstract class AbstractList<E> extends AbstractCollection<E> implements List<E>.
type TypeHeader struct {
	Modifiers      []string
	Keyword        string // class, interface, enum, record, @interface
	Name           string
	TypeParameters []TypeParameter
	Extends        []*Ref
	Implements     []*Ref
}
