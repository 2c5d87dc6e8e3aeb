package sourcepath

import (
	"strings"
	"unicode"

	set "github.com/hashicorp/go-set/v2"

	"javasema/pkg/parser"
)

// References lists the qualified names cu may refer to, in the order they
// are first met. A simple type name yields every name it could denote
// under the unit's package and imports; which of them exist is for the
// caller to decide.
func References(cu *parser.CompilationUnit) []string {
	r := &references{cu: cu, seen: set.New[string](0)}
	for _, imp := range cu.Imports {
		switch {
		case imp.Static && imp.OnDemand:
			r.add(imp.Name)
		case imp.Static:
			r.add(qualifier(imp.Name))
		case !imp.OnDemand:
			r.add(imp.Name)
		}
	}
	for _, td := range cu.Types {
		r.declaration(td)
	}
	return r.names
}

// Qualify joins a package and a type name.
func Qualify(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}

func qualifier(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return ""
}

type references struct {
	cu    *parser.CompilationUnit
	seen  *set.Set[string]
	names []string
}

func (r *references) add(name string) {
	if name != "" && r.seen.Insert(name) {
		r.names = append(r.names, name)
	}
}

// simple adds the names a simple type name may denote.
func (r *references) simple(name string) {
	r.add(Qualify(r.cu.Package, name))
	for _, imp := range r.cu.Imports {
		switch {
		case imp.Static:
		case imp.OnDemand:
			r.add(imp.Name + "." + name)
		case strings.HasSuffix(imp.Name, "."+name):
			r.add(imp.Name)
		}
	}
}

// typeName adds the names a type reference may denote, including those in
// its type arguments and bounds.
func (r *references) typeName(ref *parser.TypeReference) {
	if ref.IsInferred() {
		return
	}
	for _, tok := range strings.FieldsFunc(ref.Text, func(c rune) bool {
		return !(unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' || c == '$' || c == '.')
	}) {
		switch tok {
		case "extends", "super", "boolean", "byte", "char", "short", "int", "long", "float", "double", "void":
			continue
		}
		if first, _, dotted := strings.Cut(tok, "."); dotted {
			r.add(tok)
			r.simple(first)
		} else {
			r.simple(tok)
		}
	}
}

func (r *references) typeNames(refs []*parser.TypeReference) {
	for _, ref := range refs {
		r.typeName(ref)
	}
}

func (r *references) typeParameters(tps []*parser.TypeParameter) {
	for _, tp := range tps {
		r.typeNames(tp.Bounds)
	}
}

func (r *references) declaration(td *parser.TypeDeclaration) {
	r.typeParameters(td.TypeParameters)
	if td.Superclass != nil {
		r.typeName(td.Superclass)
	}
	r.typeNames(td.Interfaces)
	for _, rc := range td.RecordComponents {
		r.typeName(rc.Type)
	}
	for _, f := range td.Fields {
		r.typeName(f.Type)
		r.statements(f.Value)
	}
	for _, m := range td.Methods {
		r.typeParameters(m.TypeParameters)
		if m.ReturnType != nil {
			r.typeName(m.ReturnType)
		}
		for _, p := range m.Parameters {
			r.typeName(p.Type)
		}
		r.typeNames(m.Throws)
		if m.Body != nil {
			r.statements(m.Body.Statements)
		}
	}
	for _, in := range td.Initializers {
		r.statements(in.Body.Statements)
	}
	for _, c := range td.EnumConstants {
		r.statements(c.Arguments)
		if c.Body != nil {
			r.declaration(c.Body)
		}
	}
	for _, mt := range td.MemberTypes {
		r.declaration(mt)
	}
}

func (r *references) statements(stmts []parser.Statement) {
	for _, st := range stmts {
		switch st := st.(type) {
		case *parser.Block:
			r.statements(st.Statements)
		case *parser.LocalVariable:
			r.typeName(st.Type)
			r.statements(st.Value)
		case *parser.LocalClass:
			r.declaration(st.Declaration)
		case *parser.AnonymousClass:
			if st.Super != nil {
				r.typeName(st.Super)
			}
			r.statements(st.Arguments)
			r.declaration(st.Body)
		case *parser.Lambda:
			for _, p := range st.Parameters {
				r.typeName(p.Type)
			}
			r.statements(st.Body.Statements)
		case *parser.NameReference:
			// a capitalized name read as a variable is most likely a type
			// qualifying a static member
			if c := []rune(st.Name); len(c) > 0 && unicode.IsUpper(c[0]) {
				r.simple(st.Name)
			}
		}
	}
}
