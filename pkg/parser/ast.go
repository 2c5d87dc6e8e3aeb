package parser

import (
	"bytes"
	"strings"

	"javasema/pkg/errors"
	"javasema/pkg/source"
)

// --- Interfaces ---

// Node is the base interface for all declaration nodes.
type Node interface {
	Pos() errors.Position
	String() string // for debugging
}

// Statement is a body element the binder acts on. Expressions are not kept;
// a body is reduced to the declarations, scopes and name uses inside it.
type Statement interface {
	Node
	statementNode()
}

// --- Compilation unit ---

// CompilationUnit is the declaration tree of one source file.
type CompilationUnit struct {
	File    *source.SourceFile
	Package string // empty for the default package
	Imports []*ImportDeclaration
	Types   []*TypeDeclaration
	// Errors holds the syntax errors tree-sitter recovered from.
	Errors []*errors.SyntaxError
}

func (cu *CompilationUnit) Pos() errors.Position {
	return errors.Position{Line: 1, Column: 1, Source: cu.File}
}

func (cu *CompilationUnit) String() string {
	var out bytes.Buffer
	if cu.Package != "" {
		out.WriteString("package " + cu.Package + ";\n")
	}
	for _, imp := range cu.Imports {
		out.WriteString(imp.String() + "\n")
	}
	for _, t := range cu.Types {
		out.WriteString(t.String() + "\n")
	}
	return out.String()
}

// ImportDeclaration is a single-type, on-demand or static import.
type ImportDeclaration struct {
	Name     string // without the trailing .*
	Static   bool
	OnDemand bool
	Position errors.Position
}

func (i *ImportDeclaration) Pos() errors.Position { return i.Position }
func (i *ImportDeclaration) String() string {
	s := "import "
	if i.Static {
		s += "static "
	}
	s += i.Name
	if i.OnDemand {
		s += ".*"
	}
	return s + ";"
}

// --- Type declarations ---

// TypeKind distinguishes the five kinds of type declaration.
type TypeKind uint8

const (
	ClassKind TypeKind = iota
	InterfaceKind
	EnumKind
	RecordKind
	AnnotationKind
)

var typeKindKeywords = [...]string{
	ClassKind:      "class",
	InterfaceKind:  "interface",
	EnumKind:       "enum",
	RecordKind:     "record",
	AnnotationKind: "@interface",
}

// Keyword returns the declaring keyword, e.g. "interface".
func (k TypeKind) Keyword() string { return typeKindKeywords[k] }

// TypeDeclaration is a top level, member, local or anonymous type.
type TypeDeclaration struct {
	Kind           TypeKind
	Name           string // empty for anonymous classes
	Modifiers      []string
	TypeParameters []*TypeParameter
	// Superclass is the extends clause of a class, nil when absent.
	Superclass *TypeReference
	// Interfaces holds the implements clause of a class or the extends
	// clause of an interface.
	Interfaces []*TypeReference

	Fields           []*FieldDeclaration
	Methods          []*MethodDeclaration
	Initializers     []*Initializer
	MemberTypes      []*TypeDeclaration
	EnumConstants    []*EnumConstant
	RecordComponents []*Parameter

	Position errors.Position
}

func (t *TypeDeclaration) Pos() errors.Position { return t.Position }

// HasModifier reports whether kw appears among the declared modifiers.
func (t *TypeDeclaration) HasModifier(kw string) bool { return hasModifier(t.Modifiers, kw) }

func (t *TypeDeclaration) String() string {
	var out bytes.Buffer
	for _, m := range t.Modifiers {
		out.WriteString(m + " ")
	}
	out.WriteString(t.Kind.Keyword())
	if t.Name != "" {
		out.WriteString(" " + t.Name)
	}
	out.WriteString(typeParametersString(t.TypeParameters))
	if t.Superclass != nil {
		out.WriteString(" extends " + t.Superclass.Text)
	}
	if len(t.Interfaces) > 0 {
		if t.Kind == InterfaceKind {
			out.WriteString(" extends ")
		} else {
			out.WriteString(" implements ")
		}
		out.WriteString(joinRefs(t.Interfaces))
	}
	out.WriteString(" { ")
	for _, c := range t.EnumConstants {
		out.WriteString(c.Name + "; ")
	}
	for _, f := range t.Fields {
		out.WriteString(f.String() + " ")
	}
	for _, m := range t.Methods {
		out.WriteString(m.String() + " ")
	}
	for _, mt := range t.MemberTypes {
		out.WriteString(mt.String() + " ")
	}
	out.WriteString("}")
	return out.String()
}

// TypeParameter is a declared type variable with its bounds.
type TypeParameter struct {
	Name     string
	Bounds   []*TypeReference
	Position errors.Position
}

func (tp *TypeParameter) Pos() errors.Position { return tp.Position }
func (tp *TypeParameter) String() string {
	if len(tp.Bounds) == 0 {
		return tp.Name
	}
	parts := make([]string, len(tp.Bounds))
	for i, b := range tp.Bounds {
		parts[i] = b.Text
	}
	return tp.Name + " extends " + strings.Join(parts, " & ")
}

// TypeReference is a type as written, in source syntax without
// annotations. The binder hands Text to the type reference resolver.
type TypeReference struct {
	Text     string
	Position errors.Position
}

func (r *TypeReference) Pos() errors.Position { return r.Position }
func (r *TypeReference) String() string       { return r.Text }

// IsInferred reports whether the reference is the reserved name var.
func (r *TypeReference) IsInferred() bool { return r == nil || r.Text == "var" }

// FieldDeclaration is one declarator of a field declaration.
type FieldDeclaration struct {
	Name      string
	Type      *TypeReference
	Modifiers []string
	// Value holds what the initializer declares and reads.
	Value    []Statement
	Position errors.Position
}

func (f *FieldDeclaration) Pos() errors.Position      { return f.Position }
func (f *FieldDeclaration) HasModifier(kw string) bool { return hasModifier(f.Modifiers, kw) }
func (f *FieldDeclaration) String() string {
	return strings.TrimSpace(strings.Join(f.Modifiers, " ")+" "+f.Type.Text+" "+f.Name) + ";"
}

// MethodDeclaration is a method, constructor or annotation element.
type MethodDeclaration struct {
	Name           string
	Modifiers      []string
	TypeParameters []*TypeParameter
	// ReturnType is nil for constructors.
	ReturnType  *TypeReference
	Parameters  []*Parameter
	Throws      []*TypeReference
	Constructor bool
	// Body is nil for abstract and native methods.
	Body     *Block
	Position errors.Position
}

func (m *MethodDeclaration) Pos() errors.Position      { return m.Position }
func (m *MethodDeclaration) HasModifier(kw string) bool { return hasModifier(m.Modifiers, kw) }

// IsVarargs reports whether the last parameter is variable arity.
func (m *MethodDeclaration) IsVarargs() bool {
	return len(m.Parameters) > 0 && m.Parameters[len(m.Parameters)-1].Varargs
}

func (m *MethodDeclaration) String() string {
	var out bytes.Buffer
	for _, mod := range m.Modifiers {
		out.WriteString(mod + " ")
	}
	if tps := typeParametersString(m.TypeParameters); tps != "" {
		out.WriteString(tps + " ")
	}
	if m.ReturnType != nil {
		out.WriteString(m.ReturnType.Text + " ")
	}
	out.WriteString(m.Name + "(")
	for i, p := range m.Parameters {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(p.String())
	}
	out.WriteString(")")
	if len(m.Throws) > 0 {
		out.WriteString(" throws " + joinRefs(m.Throws))
	}
	if m.Body == nil {
		out.WriteString(";")
	} else {
		out.WriteString(" " + m.Body.String())
	}
	return out.String()
}

// Parameter is a formal parameter of a method, constructor, lambda or
// record. Type is nil for an implicitly typed lambda parameter.
type Parameter struct {
	Name     string
	Type     *TypeReference
	Varargs  bool
	Final    bool
	Position errors.Position
}

func (p *Parameter) Pos() errors.Position { return p.Position }
func (p *Parameter) String() string {
	if p.Type == nil {
		return p.Name
	}
	t := p.Type.Text
	if p.Varargs {
		t += "..."
	}
	return t + " " + p.Name
}

// Initializer is an instance or static initializer block.
type Initializer struct {
	Static   bool
	Body     *Block
	Position errors.Position
}

func (i *Initializer) Pos() errors.Position { return i.Position }
func (i *Initializer) String() string {
	if i.Static {
		return "static " + i.Body.String()
	}
	return i.Body.String()
}

// EnumConstant is one constant of an enum; Body is its class body, if any.
type EnumConstant struct {
	Name      string
	Arguments []Statement
	Body      *TypeDeclaration
	Position  errors.Position
}

func (c *EnumConstant) Pos() errors.Position { return c.Position }
func (c *EnumConstant) String() string       { return c.Name }

// --- Statement Nodes ---

// Block is a brace-delimited block, or any other construct that opens a
// scope for locals: for headers, catch clauses, resources.
type Block struct {
	Statements []Statement
	Position   errors.Position
}

func (b *Block) statementNode()       {}
func (b *Block) Pos() errors.Position { return b.Position }
func (b *Block) String() string {
	var out bytes.Buffer
	out.WriteString("{ ")
	for _, s := range b.Statements {
		out.WriteString(s.String() + " ")
	}
	out.WriteString("}")
	return out.String()
}

// LocalVariable declares a local. Value holds what its initializer declares
// and reads; those are bound before the local itself comes into scope.
type LocalVariable struct {
	Name     string
	Type     *TypeReference // nil or var when inferred
	Final    bool
	Value    []Statement
	// Blank marks a declaration without initializer.
	Blank    bool
	Position errors.Position
}

func (lv *LocalVariable) statementNode()       {}
func (lv *LocalVariable) Pos() errors.Position { return lv.Position }
func (lv *LocalVariable) String() string {
	t := "var"
	if lv.Type != nil {
		t = lv.Type.Text
	}
	if lv.Final {
		t = "final " + t
	}
	return t + " " + lv.Name + ";"
}

// LocalClass is a class, interface, enum or record declared in a block.
type LocalClass struct {
	Declaration *TypeDeclaration
}

func (lc *LocalClass) statementNode()       {}
func (lc *LocalClass) Pos() errors.Position { return lc.Declaration.Position }
func (lc *LocalClass) String() string       { return lc.Declaration.String() }

// AnonymousClass is an instance creation expression with a class body.
type AnonymousClass struct {
	Super     *TypeReference
	Arguments []Statement
	Body      *TypeDeclaration
	Position  errors.Position
}

func (ac *AnonymousClass) statementNode()       {}
func (ac *AnonymousClass) Pos() errors.Position { return ac.Position }
func (ac *AnonymousClass) String() string       { return "new " + ac.Super.Text + "() " + ac.Body.String() }

// Lambda is a lambda expression. An expression body is wrapped in a Block.
type Lambda struct {
	Parameters []*Parameter
	Body       *Block
	Position   errors.Position
}

func (l *Lambda) statementNode()       {}
func (l *Lambda) Pos() errors.Position { return l.Position }
func (l *Lambda) String() string {
	names := make([]string, len(l.Parameters))
	for i, p := range l.Parameters {
		names[i] = p.String()
	}
	return "(" + strings.Join(names, ", ") + ") -> " + l.Body.String()
}

// NameReference is a simple name read in an expression.
type NameReference struct {
	Name     string
	Position errors.Position
}

func (n *NameReference) statementNode()       {}
func (n *NameReference) Pos() errors.Position { return n.Position }
func (n *NameReference) String() string       { return n.Name }

// Assignment is an assignment, increment or decrement of a simple name.
type Assignment struct {
	Name     string
	Position errors.Position
}

func (a *Assignment) statementNode()       {}
func (a *Assignment) Pos() errors.Position { return a.Position }
func (a *Assignment) String() string       { return a.Name + " = ...;" }

// --- helpers ---

func hasModifier(mods []string, kw string) bool {
	for _, m := range mods {
		if m == kw {
			return true
		}
	}
	return false
}

func typeParametersString(tps []*TypeParameter) string {
	if len(tps) == 0 {
		return ""
	}
	parts := make([]string, len(tps))
	for i, tp := range tps {
		parts[i] = tp.String()
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

func joinRefs(refs []*TypeReference) string {
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = r.Text
	}
	return strings.Join(parts, ", ")
}
