// Package parser turns Java source into the declaration trees the binder
// consumes. Parsing is done by tree-sitter; this package only walks the
// concrete syntax tree and keeps what name binding needs.
package parser

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"javasema/pkg/errors"
	"javasema/pkg/source"
)

// --- Debug Flag ---
const debugParser = false

func debugPrintf(format string, args ...interface{}) {
	if debugParser {
		logrus.Debugf(format, args...)
	}
}

// --- End Debug Flag ---

const tracerName = "javasema.parser"

// Parse builds the declaration tree of file. Syntax errors do not fail the
// parse: tree-sitter recovers and they are collected on the unit. An error
// is returned only when parsing could not run, e.g. ctx was cancelled.
//
// Parse is safe for concurrent use; every call gets its own tree-sitter
// parser.
func Parse(ctx context.Context, file *source.SourceFile) (*CompilationUnit, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "parser.Parse",
		trace.WithAttributes(
			attribute.String("file", file.DisplayPath()),
			attribute.Int("bytes", len(file.Content)),
		),
	)
	defer span.End()

	if err := ctx.Err(); err != nil {
		span.SetStatus(codes.Error, "cancelled")
		return nil, fmt.Errorf("parsing %s: %w", file.DisplayPath(), err)
	}
	content := []byte(file.Content)
	p := sitter.NewParser()
	p.SetLanguage(java.GetLanguage())
	tree, err := p.ParseCtx(ctx, nil, content)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "tree-sitter parse failed")
		return nil, fmt.Errorf("parsing %s: %w", file.DisplayPath(), err)
	}
	defer tree.Close()

	b := &builder{file: file, src: content}
	root := tree.RootNode()
	cu := b.compilationUnit(root)
	if root.HasError() {
		b.collectErrors(root)
	}
	cu.Errors = b.errors

	span.SetAttributes(
		attribute.Int("types", len(cu.Types)),
		attribute.Int("syntax_errors", len(cu.Errors)),
	)
	debugPrintf("// [Parser] %s: %d types, %d syntax errors", file.Name, len(cu.Types), len(cu.Errors))
	return cu, nil
}

// builder walks one tree-sitter tree.
type builder struct {
	file   *source.SourceFile
	src    []byte
	errors []*errors.SyntaxError
}

func (b *builder) text(n *sitter.Node) string { return n.Content(b.src) }

func (b *builder) pos(n *sitter.Node) errors.Position {
	start := n.StartPoint()
	return errors.Position{
		Line:     int(start.Row) + 1,
		Column:   int(start.Column) + 1,
		StartPos: int(n.StartByte()),
		EndPos:   int(n.EndByte()),
		Source:   b.file,
	}
}

func namedChildren(n *sitter.Node) []*sitter.Node {
	out := make([]*sitter.Node, 0, n.NamedChildCount())
	for i := 0; i < int(n.NamedChildCount()); i++ {
		out = append(out, n.NamedChild(i))
	}
	return out
}

func firstNamedChildOf(n *sitter.Node, kinds ...string) *sitter.Node {
	for _, c := range namedChildren(n) {
		for _, k := range kinds {
			if c.Type() == k {
				return c
			}
		}
	}
	return nil
}

// isTypeNode reports whether kind is one of the grammar's type nodes.
func isTypeNode(kind string) bool {
	switch kind {
	case "type_identifier", "scoped_type_identifier", "generic_type", "array_type",
		"integral_type", "floating_point_type", "boolean_type", "void_type":
		return true
	}
	return false
}

func isTypeDeclaration(kind string) bool {
	switch kind {
	case "class_declaration", "interface_declaration", "enum_declaration",
		"record_declaration", "annotation_type_declaration":
		return true
	}
	return false
}

// collectErrors records ERROR and MISSING nodes below n.
func (b *builder) collectErrors(n *sitter.Node) {
	switch {
	case n.Type() == "ERROR":
		snippet := strings.Join(strings.Fields(b.text(n)), " ")
		if len(snippet) > 24 {
			snippet = snippet[:24] + "..."
		}
		b.errors = append(b.errors, &errors.SyntaxError{Position: b.pos(n), Msg: fmt.Sprintf("unexpected %q", snippet)})
		return
	case n.IsMissing():
		b.errors = append(b.errors, &errors.SyntaxError{Position: b.pos(n), Msg: "missing " + n.Type()})
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if c := n.Child(i); c.HasError() || c.IsMissing() {
			b.collectErrors(c)
		}
	}
}

// --- Declarations ---

func (b *builder) compilationUnit(root *sitter.Node) *CompilationUnit {
	cu := &CompilationUnit{File: b.file}
	for _, n := range namedChildren(root) {
		switch kind := n.Type(); {
		case kind == "package_declaration":
			if name := firstNamedChildOf(n, "scoped_identifier", "identifier"); name != nil {
				cu.Package = b.text(name)
			}
		case kind == "import_declaration":
			cu.Imports = append(cu.Imports, b.importDeclaration(n))
		case isTypeDeclaration(kind):
			cu.Types = append(cu.Types, b.typeDeclaration(n))
		}
	}
	return cu
}

func (b *builder) importDeclaration(n *sitter.Node) *ImportDeclaration {
	imp := &ImportDeclaration{Position: b.pos(n)}
	text := strings.TrimSpace(b.text(n))
	text = strings.TrimSuffix(strings.TrimPrefix(text, "import"), ";")
	text = strings.TrimSpace(text)
	if rest, ok := strings.CutPrefix(text, "static"); ok && (rest == "" || rest[0] == ' ' || rest[0] == '\t' || rest[0] == '\n') {
		imp.Static = true
		text = rest
	}
	text = strings.Join(strings.Fields(text), "")
	if name, ok := strings.CutSuffix(text, ".*"); ok {
		imp.OnDemand = true
		text = name
	}
	imp.Name = text
	return imp
}

func (b *builder) typeDeclaration(n *sitter.Node) *TypeDeclaration {
	td := &TypeDeclaration{Position: b.pos(n)}
	switch n.Type() {
	case "interface_declaration":
		td.Kind = InterfaceKind
	case "enum_declaration":
		td.Kind = EnumKind
	case "record_declaration":
		td.Kind = RecordKind
	case "annotation_type_declaration":
		td.Kind = AnnotationKind
	}
	if name := n.ChildByFieldName("name"); name != nil {
		td.Name = b.text(name)
	}
	for _, c := range namedChildren(n) {
		switch c.Type() {
		case "modifiers":
			td.Modifiers = b.modifiers(c)
		case "type_parameters":
			td.TypeParameters = b.typeParameters(c)
		case "superclass":
			if t := firstTypeChild(c); t != nil {
				td.Superclass = b.typeRef(t, nil)
			}
		case "super_interfaces", "extends_interfaces":
			td.Interfaces = append(td.Interfaces, b.typeList(c)...)
		case "formal_parameters":
			td.RecordComponents = b.parameters(c)
		case "class_body", "interface_body", "enum_body", "annotation_type_body":
			b.body(td, c)
		}
	}
	debugPrintf("// [Parser] %s %s", td.Kind.Keyword(), td.Name)
	return td
}

func (b *builder) anonymousBody(n *sitter.Node) *TypeDeclaration {
	td := &TypeDeclaration{Kind: ClassKind, Position: b.pos(n)}
	b.body(td, n)
	return td
}

func (b *builder) body(td *TypeDeclaration, n *sitter.Node) {
	for _, m := range namedChildren(n) {
		switch kind := m.Type(); {
		case kind == "field_declaration" || kind == "constant_declaration":
			td.Fields = append(td.Fields, b.fields(m)...)
		case kind == "method_declaration" || kind == "annotation_type_element_declaration":
			td.Methods = append(td.Methods, b.method(m))
		case kind == "constructor_declaration":
			td.Methods = append(td.Methods, b.method(m))
		case kind == "compact_constructor_declaration":
			ctor := b.method(m)
			ctor.Parameters = td.RecordComponents
			td.Methods = append(td.Methods, ctor)
		case isTypeDeclaration(kind):
			td.MemberTypes = append(td.MemberTypes, b.typeDeclaration(m))
		case kind == "static_initializer":
			if blk := firstNamedChildOf(m, "block"); blk != nil {
				td.Initializers = append(td.Initializers, &Initializer{Static: true, Body: b.block(blk), Position: b.pos(m)})
			}
		case kind == "block":
			td.Initializers = append(td.Initializers, &Initializer{Body: b.block(m), Position: b.pos(m)})
		case kind == "enum_constant":
			td.EnumConstants = append(td.EnumConstants, b.enumConstant(m))
		case kind == "enum_body_declarations":
			b.body(td, m)
		}
	}
}

func (b *builder) enumConstant(n *sitter.Node) *EnumConstant {
	c := &EnumConstant{Position: b.pos(n)}
	if name := n.ChildByFieldName("name"); name != nil {
		c.Name = b.text(name)
	}
	if args := n.ChildByFieldName("arguments"); args != nil {
		c.Arguments = b.expression(args)
	}
	if body := n.ChildByFieldName("body"); body != nil {
		c.Body = b.anonymousBody(body)
	}
	return c
}

func (b *builder) modifiers(n *sitter.Node) []string {
	var out []string
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		switch c.Type() {
		case "annotation", "marker_annotation", "line_comment", "block_comment":
			continue
		}
		out = append(out, b.text(c))
	}
	return out
}

func (b *builder) hasFinal(n *sitter.Node) bool {
	if mods := firstNamedChildOf(n, "modifiers"); mods != nil {
		return hasModifier(b.modifiers(mods), "final")
	}
	return false
}

func (b *builder) typeParameters(n *sitter.Node) []*TypeParameter {
	var out []*TypeParameter
	for _, c := range namedChildren(n) {
		if c.Type() != "type_parameter" {
			continue
		}
		tp := &TypeParameter{Position: b.pos(c)}
		if name := firstNamedChildOf(c, "type_identifier", "identifier"); name != nil {
			tp.Name = b.text(name)
		}
		if bound := firstNamedChildOf(c, "type_bound"); bound != nil {
			for _, t := range namedChildren(bound) {
				if isTypeNode(t.Type()) {
					tp.Bounds = append(tp.Bounds, b.typeRef(t, nil))
				}
			}
		}
		out = append(out, tp)
	}
	return out
}

func firstTypeChild(n *sitter.Node) *sitter.Node {
	for _, c := range namedChildren(n) {
		if isTypeNode(c.Type()) {
			return c
		}
	}
	return nil
}

// typeList collects the types of an implements or extends clause.
func (b *builder) typeList(n *sitter.Node) []*TypeReference {
	var out []*TypeReference
	for _, c := range namedChildren(n) {
		switch {
		case c.Type() == "type_list":
			out = append(out, b.typeList(c)...)
		case isTypeNode(c.Type()):
			out = append(out, b.typeRef(c, nil))
		}
	}
	return out
}

// typeRef renders a type node as source text; dims is an optional trailing
// dimensions node, as in "int x[]".
func (b *builder) typeRef(n, dims *sitter.Node) *TypeReference {
	text := strings.Join(strings.Fields(b.text(n)), " ")
	if dims != nil {
		text += strings.Join(strings.Fields(b.text(dims)), "")
	}
	return &TypeReference{Text: text, Position: b.pos(n)}
}

func (b *builder) fields(n *sitter.Node) []*FieldDeclaration {
	var mods []string
	if m := firstNamedChildOf(n, "modifiers"); m != nil {
		mods = b.modifiers(m)
	}
	typ := n.ChildByFieldName("type")
	var out []*FieldDeclaration
	for _, d := range namedChildren(n) {
		if d.Type() != "variable_declarator" {
			continue
		}
		f := &FieldDeclaration{Modifiers: mods, Position: b.pos(d)}
		if name := d.ChildByFieldName("name"); name != nil {
			f.Name = b.text(name)
		}
		if typ != nil {
			f.Type = b.typeRef(typ, d.ChildByFieldName("dimensions"))
		}
		if v := d.ChildByFieldName("value"); v != nil {
			f.Value = b.expression(v)
		}
		out = append(out, f)
	}
	return out
}

func (b *builder) method(n *sitter.Node) *MethodDeclaration {
	md := &MethodDeclaration{Position: b.pos(n)}
	switch n.Type() {
	case "constructor_declaration", "compact_constructor_declaration":
		md.Constructor = true
	}
	if name := n.ChildByFieldName("name"); name != nil {
		md.Name = b.text(name)
	}
	for _, c := range namedChildren(n) {
		switch c.Type() {
		case "modifiers":
			md.Modifiers = b.modifiers(c)
		case "type_parameters":
			md.TypeParameters = b.typeParameters(c)
		case "formal_parameters":
			md.Parameters = b.parameters(c)
		case "throws":
			for _, t := range namedChildren(c) {
				if isTypeNode(t.Type()) {
					md.Throws = append(md.Throws, b.typeRef(t, nil))
				}
			}
		}
	}
	if !md.Constructor {
		if typ := n.ChildByFieldName("type"); typ != nil {
			md.ReturnType = b.typeRef(typ, n.ChildByFieldName("dimensions"))
		}
	}
	if body := n.ChildByFieldName("body"); body != nil {
		md.Body = b.block(body)
	}
	return md
}

func (b *builder) parameters(n *sitter.Node) []*Parameter {
	var out []*Parameter
	for _, c := range namedChildren(n) {
		switch c.Type() {
		case "formal_parameter":
			p := &Parameter{Position: b.pos(c), Final: b.hasFinal(c)}
			if name := c.ChildByFieldName("name"); name != nil {
				p.Name = b.text(name)
			}
			if typ := c.ChildByFieldName("type"); typ != nil {
				p.Type = b.typeRef(typ, c.ChildByFieldName("dimensions"))
			}
			out = append(out, p)
		case "spread_parameter":
			p := &Parameter{Position: b.pos(c), Final: b.hasFinal(c), Varargs: true}
			if typ := firstTypeChild(c); typ != nil {
				p.Type = b.typeRef(typ, nil)
			}
			if d := firstNamedChildOf(c, "variable_declarator"); d != nil {
				if name := d.ChildByFieldName("name"); name != nil {
					p.Name = b.text(name)
				}
			}
			out = append(out, p)
		case "identifier":
			// inferred lambda parameter
			out = append(out, &Parameter{Name: b.text(c), Position: b.pos(c)})
		}
	}
	return out
}

// --- Bodies ---

func (b *builder) block(n *sitter.Node) *Block {
	blk := &Block{Position: b.pos(n)}
	for _, c := range namedChildren(n) {
		b.walk(c, &blk.Statements)
	}
	return blk
}

// expression reduces an expression to the statements it contains.
func (b *builder) expression(n *sitter.Node) []Statement {
	var out []Statement
	b.walk(n, &out)
	return out
}

func (b *builder) walkChildren(n *sitter.Node, out *[]Statement) {
	for _, c := range namedChildren(n) {
		b.walk(c, out)
	}
}

// walk appends to out what n declares, opens or reads.
func (b *builder) walk(n *sitter.Node, out *[]Statement) {
	if n == nil {
		return
	}
	switch kind := n.Type(); {
	case kind == "block" || kind == "constructor_body" || kind == "switch_block":
		*out = append(*out, b.block(n))

	case kind == "local_variable_declaration":
		*out = append(*out, b.locals(n)...)

	case isTypeDeclaration(kind):
		*out = append(*out, &LocalClass{Declaration: b.typeDeclaration(n)})

	case kind == "for_statement":
		scope := &Block{Position: b.pos(n)}
		b.walkChildren(n, &scope.Statements)
		*out = append(*out, scope)

	case kind == "enhanced_for_statement":
		b.walk(n.ChildByFieldName("value"), out)
		scope := &Block{Position: b.pos(n)}
		if name := n.ChildByFieldName("name"); name != nil {
			lv := &LocalVariable{Name: b.text(name), Final: b.hasFinal(n), Position: b.pos(name)}
			if typ := n.ChildByFieldName("type"); typ != nil {
				lv.Type = b.typeRef(typ, n.ChildByFieldName("dimensions"))
			}
			scope.Statements = append(scope.Statements, lv)
		}
		b.walk(n.ChildByFieldName("body"), &scope.Statements)
		*out = append(*out, scope)

	case kind == "catch_clause":
		scope := &Block{Position: b.pos(n)}
		if param := firstNamedChildOf(n, "catch_formal_parameter"); param != nil {
			lv := &LocalVariable{Final: b.hasFinal(param), Position: b.pos(param)}
			if name := param.ChildByFieldName("name"); name != nil {
				lv.Name = b.text(name)
			}
			// a multi-catch local is typed by its first alternative
			if ct := firstNamedChildOf(param, "catch_type"); ct != nil {
				if t := firstTypeChild(ct); t != nil {
					lv.Type = b.typeRef(t, nil)
				}
			}
			scope.Statements = append(scope.Statements, lv)
		}
		b.walk(n.ChildByFieldName("body"), &scope.Statements)
		*out = append(*out, scope)

	case kind == "try_with_resources_statement":
		scope := &Block{Position: b.pos(n)}
		if res := n.ChildByFieldName("resources"); res != nil {
			for _, r := range namedChildren(res) {
				b.resource(r, &scope.Statements)
			}
		}
		b.walk(n.ChildByFieldName("body"), &scope.Statements)
		*out = append(*out, scope)
		for _, c := range namedChildren(n) {
			if c.Type() == "catch_clause" || c.Type() == "finally_clause" {
				b.walk(c, out)
			}
		}

	case kind == "lambda_expression":
		*out = append(*out, b.lambda(n))

	case kind == "object_creation_expression":
		var args []Statement
		var body *sitter.Node
		for _, c := range namedChildren(n) {
			switch {
			case c.Type() == "class_body":
				body = c
			case isTypeNode(c.Type()) || c.Type() == "type_arguments":
			default:
				b.walk(c, &args)
			}
		}
		if body == nil {
			*out = append(*out, args...)
			return
		}
		ac := &AnonymousClass{Arguments: args, Body: b.anonymousBody(body), Position: b.pos(n)}
		if typ := n.ChildByFieldName("type"); typ != nil {
			ac.Super = b.typeRef(typ, nil)
		}
		*out = append(*out, ac)

	case kind == "method_invocation":
		b.walk(n.ChildByFieldName("object"), out)
		b.walk(n.ChildByFieldName("arguments"), out)

	case kind == "field_access":
		b.walk(n.ChildByFieldName("object"), out)

	case kind == "method_reference":
		if n.NamedChildCount() > 0 {
			b.walk(n.NamedChild(0), out)
		}

	case kind == "explicit_constructor_invocation":
		b.walk(n.ChildByFieldName("object"), out)
		b.walk(n.ChildByFieldName("arguments"), out)

	case kind == "cast_expression":
		b.walk(n.ChildByFieldName("value"), out)

	case kind == "assignment_expression":
		left := n.ChildByFieldName("left")
		if left == nil || left.Type() != "identifier" {
			b.walkChildren(n, out)
			return
		}
		if op := n.ChildByFieldName("operator"); op != nil && op.Type() != "=" {
			*out = append(*out, &NameReference{Name: b.text(left), Position: b.pos(left)})
		}
		b.walk(n.ChildByFieldName("right"), out)
		*out = append(*out, &Assignment{Name: b.text(left), Position: b.pos(left)})

	case kind == "update_expression":
		operand := firstNamedChildOf(n, "identifier")
		if operand == nil {
			b.walkChildren(n, out)
			return
		}
		*out = append(*out,
			&NameReference{Name: b.text(operand), Position: b.pos(operand)},
			&Assignment{Name: b.text(operand), Position: b.pos(operand)},
		)

	case kind == "instanceof_expression":
		b.walk(n.ChildByFieldName("left"), out)
		if name := n.ChildByFieldName("name"); name != nil {
			lv := &LocalVariable{Name: b.text(name), Position: b.pos(name)}
			if typ := n.ChildByFieldName("right"); typ != nil {
				lv.Type = b.typeRef(typ, nil)
			}
			*out = append(*out, lv)
		}

	case kind == "labeled_statement":
		for i, c := range namedChildren(n) {
			if i > 0 {
				b.walk(c, out)
			}
		}

	case kind == "switch_label":
		// enum constant labels are not names in scope
		for _, c := range namedChildren(n) {
			if c.Type() != "identifier" {
				b.walk(c, out)
			}
		}

	case kind == "identifier":
		*out = append(*out, &NameReference{Name: b.text(n), Position: b.pos(n)})

	case isTypeNode(kind):
	case kind == "modifiers", kind == "annotation", kind == "marker_annotation", kind == "type_arguments",
		kind == "scoped_identifier", kind == "break_statement", kind == "continue_statement",
		kind == "class_literal", kind == "this", kind == "super", kind == "ERROR",
		kind == "line_comment", kind == "block_comment":

	default:
		b.walkChildren(n, out)
	}
}

func (b *builder) locals(n *sitter.Node) []Statement {
	final := b.hasFinal(n)
	typ := n.ChildByFieldName("type")
	var out []Statement
	for _, d := range namedChildren(n) {
		if d.Type() != "variable_declarator" {
			continue
		}
		lv := &LocalVariable{Final: final, Position: b.pos(d)}
		if name := d.ChildByFieldName("name"); name != nil {
			lv.Name = b.text(name)
			lv.Position = b.pos(name)
		}
		if typ != nil {
			lv.Type = b.typeRef(typ, d.ChildByFieldName("dimensions"))
		}
		if v := d.ChildByFieldName("value"); v != nil {
			lv.Value = b.expression(v)
		} else {
			lv.Blank = true
		}
		out = append(out, lv)
	}
	return out
}

// resource handles one resource of a try-with-resources; declared
// resources are implicitly final.
func (b *builder) resource(n *sitter.Node, out *[]Statement) {
	name := n.ChildByFieldName("name")
	if n.Type() != "resource" || name == nil {
		b.walk(n, out)
		return
	}
	lv := &LocalVariable{Name: b.text(name), Final: true, Position: b.pos(name)}
	if typ := n.ChildByFieldName("type"); typ != nil {
		lv.Type = b.typeRef(typ, nil)
	}
	if v := n.ChildByFieldName("value"); v != nil {
		lv.Value = b.expression(v)
	}
	*out = append(*out, lv)
}

func (b *builder) lambda(n *sitter.Node) *Lambda {
	l := &Lambda{Position: b.pos(n)}
	if params := n.ChildByFieldName("parameters"); params != nil {
		switch params.Type() {
		case "identifier":
			l.Parameters = []*Parameter{{Name: b.text(params), Position: b.pos(params)}}
		default:
			l.Parameters = b.parameters(params)
		}
	}
	body := n.ChildByFieldName("body")
	switch {
	case body == nil:
		l.Body = &Block{Position: l.Position}
	case body.Type() == "block":
		l.Body = b.block(body)
	default:
		l.Body = &Block{Position: b.pos(body), Statements: b.expression(body)}
	}
	return l
}
