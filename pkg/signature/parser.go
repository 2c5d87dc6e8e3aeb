package signature

import (
	"fmt"
	"strings"
)

// SyntaxError reports where a reference failed to parse.
type SyntaxError struct {
	Input  string
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("signature: %s at offset %d in %q", e.Msg, e.Offset, e.Input)
}

// Parser is a recursive descent parser over source-syntax type text.
type Parser struct {
	l         *lexer
	curToken  token
	peekToken token
}

// NewParser prepares a parser over src.
func NewParser(src string) *Parser {
	p := &Parser{l: &lexer{src: src}}
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.next()
}

func (p *Parser) curTokenIs(k tokenKind) bool  { return p.curToken.kind == k }
func (p *Parser) peekTokenIs(k tokenKind) bool { return p.peekToken.kind == k }

func (p *Parser) errorf(format string, args ...interface{}) error {
	return &SyntaxError{Input: p.l.src, Offset: p.curToken.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *Parser) expect(k tokenKind, what string) error {
	if !p.curTokenIs(k) {
		return p.errorf("expected %s, found %s", what, p.curToken)
	}
	p.nextToken()
	return nil
}

func (p *Parser) done() error {
	if !p.curTokenIs(tokEOF) {
		return p.errorf("unexpected %s", p.curToken)
	}
	return nil
}

// ParseType parses a complete source-syntax type reference.
func ParseType(src string) (*Ref, error) {
	p := NewParser(src)
	ref, err := p.parseType()
	if err != nil {
		return nil, err
	}
	return ref, p.done()
}

// ParseTypeParameters parses <A, B extends X & Y>.
func ParseTypeParameters(src string) ([]TypeParameter, error) {
	p := NewParser(src)
	tps, err := p.parseTypeParameters()
	if err != nil {
		return nil, err
	}
	return tps, p.done()
}

func (p *Parser) parseType() (*Ref, error) {
	p.skipAnnotations()
	if p.curTokenIs(tokQuestion) {
		p.nextToken()
		w := &Ref{Wildcard: Unbounded, Name: "?"}
		if p.curTokenIs(tokIdent) && (p.curToken.lit == "extends" || p.curToken.lit == "super") {
			w.Wildcard = Extends
			if p.curToken.lit == "super" {
				w.Wildcard = Super
			}
			p.nextToken()
			bound, err := p.parseType()
			if err != nil {
				return nil, err
			}
			w.Bound = bound
		}
		return w, nil
	}
	ref, err := p.parseClassOrPrimitive()
	if err != nil {
		return nil, err
	}
	for p.curTokenIs(tokLBracket) && p.peekTokenIs(tokRBracket) {
		p.nextToken()
		p.nextToken()
		ref.Dims++
	}
	return ref, nil
}

func (p *Parser) parseClassOrPrimitive() (*Ref, error) {
	if !p.curTokenIs(tokIdent) || !isIdentifier(p.curToken.lit) {
		return nil, p.errorf("expected type name, found %s", p.curToken)
	}
	ref := &Ref{Name: p.curToken.lit}
	p.nextToken()
	for {
		if p.curTokenIs(tokLT) {
			args, diamond, err := p.parseTypeArguments()
			if err != nil {
				return nil, err
			}
			ref.Args, ref.Diamond = args, diamond
		}
		if !(p.curTokenIs(tokDot) && p.peekTokenIs(tokIdent)) {
			return ref, nil
		}
		p.nextToken()
		seg := p.curToken.lit
		p.nextToken()
		if len(ref.Args) > 0 || ref.Outer != nil {
			ref = &Ref{Name: ref.Name + "." + seg, Outer: ref}
		} else {
			ref.Name += "." + seg
		}
	}
}

func (p *Parser) parseTypeArguments() ([]*Ref, bool, error) {
	if err := p.expect(tokLT, "'<'"); err != nil {
		return nil, false, err
	}
	if p.curTokenIs(tokGT) {
		p.nextToken()
		return nil, true, nil
	}
	var args []*Ref
	for {
		arg, err := p.parseType()
		if err != nil {
			return nil, false, err
		}
		args = append(args, arg)
		if !p.curTokenIs(tokComma) {
			break
		}
		p.nextToken()
	}
	if err := p.expect(tokGT, "'>'"); err != nil {
		return nil, false, err
	}
	return args, false, nil
}

func (p *Parser) parseTypeParameters() ([]TypeParameter, error) {
	if err := p.expect(tokLT, "'<'"); err != nil {
		return nil, err
	}
	var tps []TypeParameter
	for {
		p.skipAnnotations()
		if !p.curTokenIs(tokIdent) {
			return nil, p.errorf("expected type parameter name, found %s", p.curToken)
		}
		tp := TypeParameter{Name: p.curToken.lit}
		p.nextToken()
		if p.curTokenIs(tokIdent) && p.curToken.lit == "extends" {
			p.nextToken()
			for {
				b, err := p.parseType()
				if err != nil {
					return nil, err
				}
				tp.Bounds = append(tp.Bounds, b)
				if !p.curTokenIs(tokAmp) {
					break
				}
				p.nextToken()
			}
		}
		tps = append(tps, tp)
		if !p.curTokenIs(tokComma) {
			break
		}
		p.nextToken()
	}
	return tps, p.expect(tokGT, "'>'")
}

// skipAnnotations drops type annotations like @NonNull; they carry no
// meaning for binding.
func (p *Parser) skipAnnotations() {
	for p.curTokenIs(tokAt) && p.peekTokenIs(tokIdent) && p.peekToken.lit != "interface" {
		p.nextToken()
		p.nextToken()
		for p.curTokenIs(tokDot) && p.peekTokenIs(tokIdent) {
			p.nextToken()
			p.nextToken()
		}
		if p.curTokenIs(tokLParen) {
			depth := 0
			for !p.curTokenIs(tokEOF) {
				if p.curTokenIs(tokLParen) {
					depth++
				} else if p.curTokenIs(tokRParen) {
					depth--
					if depth == 0 {
						p.nextToken()
						break
					}
				}
				p.nextToken()
			}
		}
	}
}

var modifierKeywords = map[string]bool{
	"public": true, "protected": true, "private": true, "static": true,
	"final": true, "abstract": true, "default": true, "synchronized": true,
	"native": true, "strictfp": true, "transient": true, "volatile": true,
	"sealed": true,
}

func (p *Parser) parseModifiers() []string {
	var mods []string
	for {
		p.skipAnnotations()
		if p.curTokenIs(tokIdent) && modifierKeywords[p.curToken.lit] {
			mods = append(mods, p.curToken.lit)
			p.nextToken()
			continue
		}
		return mods
	}
}

// ParseMethod parses a method stub: [modifiers] [<T>] Ret name(T1, T2...) [throws X].
// Constructors omit the return type.
func ParseMethod(src string) (*MethodSignature, error) {
	p := NewParser(src)
	m := &MethodSignature{Modifiers: p.parseModifiers()}
	if p.curTokenIs(tokLT) {
		tps, err := p.parseTypeParameters()
		if err != nil {
			return nil, err
		}
		m.TypeParameters = tps
	}
	if p.curTokenIs(tokIdent) && p.peekTokenIs(tokLParen) {
		m.Name = p.curToken.lit
		p.nextToken()
	} else {
		ret, err := p.parseType()
		if err != nil {
			return nil, err
		}
		m.Return = ret
		if !p.curTokenIs(tokIdent) {
			return nil, p.errorf("expected method name, found %s", p.curToken)
		}
		m.Name = p.curToken.lit
		p.nextToken()
	}
	if err := p.expect(tokLParen, "'('"); err != nil {
		return nil, err
	}
	for !p.curTokenIs(tokRParen) {
		if m.Varargs {
			return nil, p.errorf("variable arity parameter must be last")
		}
		param, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if p.curTokenIs(tokEllipsis) {
			p.nextToken()
			param.Dims++
			m.Varargs = true
		}
		// an optional parameter name
		if p.curTokenIs(tokIdent) {
			p.nextToken()
		}
		m.Parameters = append(m.Parameters, param)
		if p.curTokenIs(tokComma) {
			p.nextToken()
			continue
		}
		if !p.curTokenIs(tokRParen) {
			return nil, p.errorf("expected ',' or ')', found %s", p.curToken)
		}
	}
	p.nextToken()
	if p.curTokenIs(tokIdent) && p.curToken.lit == "throws" {
		p.nextToken()
		list, err := p.parseTypeList()
		if err != nil {
			return nil, err
		}
		m.Throws = list
	}
	return m, p.done()
}

func (p *Parser) parseTypeList() ([]*Ref, error) {
	var list []*Ref
	for {
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		list = append(list, t)
		if !p.curTokenIs(tokComma) {
			return list, nil
		}
		p.nextToken()
	}
}

// ParseTypeHeader parses a type declaration header.
func ParseTypeHeader(src string) (*TypeHeader, error) {
	p := NewParser(src)
	h := &TypeHeader{Modifiers: p.parseModifiers()}
	if p.curTokenIs(tokAt) && p.peekTokenIs(tokIdent) && p.peekToken.lit == "interface" {
		p.nextToken()
		h.Keyword = "@interface"
	} else if p.curTokenIs(tokIdent) {
		h.Keyword = p.curToken.lit
	}
	switch h.Keyword {
	case "class", "interface", "enum", "record", "@interface":
	default:
		return nil, p.errorf("expected class, interface, enum or record, found %s", p.curToken)
	}
	p.nextToken()
	if !p.curTokenIs(tokIdent) {
		return nil, p.errorf("expected type name, found %s", p.curToken)
	}
	h.Name = p.curToken.lit
	p.nextToken()
	if p.curTokenIs(tokLT) {
		tps, err := p.parseTypeParameters()
		if err != nil {
			return nil, err
		}
		h.TypeParameters = tps
	}
	for p.curTokenIs(tokIdent) {
		switch p.curToken.lit {
		case "extends":
			p.nextToken()
			list, err := p.parseTypeList()
			if err != nil {
				return nil, err
			}
			h.Extends = list
		case "implements":
			p.nextToken()
			list, err := p.parseTypeList()
			if err != nil {
				return nil, err
			}
			h.Implements = list
		default:
			return nil, p.errorf("unexpected %s", p.curToken)
		}
	}
	return h, p.done()
}

// HasModifier reports whether mods contains kw.
func HasModifier(mods []string, kw string) bool {
	for _, m := range mods {
		if strings.EqualFold(m, kw) {
			return true
		}
	}
	return false
}
