package signature

import (
	"fmt"
	"strings"
)

var baseTypes = map[byte]string{
	'B': "byte", 'C': "char", 'D': "double", 'F': "float",
	'I': "int", 'J': "long", 'S': "short", 'Z': "boolean", 'V': "void",
}

// IsDescriptor guesses whether s is JVM syntax rather than source syntax.
func IsDescriptor(s string) bool {
	if s == "" {
		return false
	}
	if _, ok := baseTypes[s[0]]; ok && len(s) == 1 {
		return true
	}
	switch s[0] {
	case '[', '(':
		return true
	case 'L', 'T':
		return strings.HasSuffix(s, ";")
	}
	return false
}

type descParser struct {
	src string
	pos int
}

func (d *descParser) errorf(format string, args ...interface{}) error {
	return &SyntaxError{Input: d.src, Offset: d.pos, Msg: fmt.Sprintf(format, args...)}
}

func (d *descParser) peek() byte {
	if d.pos >= len(d.src) {
		return 0
	}
	return d.src[d.pos]
}

// ParseDescriptor parses a field descriptor or generic field signature,
// e.g. I, [[Ljava/lang/String;, Ljava/util/Map<TK;+Ljava/lang/Number;>;.
func ParseDescriptor(src string) (*Ref, error) {
	d := &descParser{src: src}
	ref, err := d.fieldType()
	if err != nil {
		return nil, err
	}
	if d.pos != len(src) {
		return nil, d.errorf("trailing characters")
	}
	return ref, nil
}

// ParseMethodDescriptor parses (params)return.
func ParseMethodDescriptor(src string) (params []*Ref, ret *Ref, err error) {
	d := &descParser{src: src}
	if d.peek() != '(' {
		return nil, nil, d.errorf("expected '('")
	}
	d.pos++
	for d.peek() != ')' {
		if d.pos >= len(src) {
			return nil, nil, d.errorf("unterminated parameter list")
		}
		p, err := d.fieldType()
		if err != nil {
			return nil, nil, err
		}
		params = append(params, p)
	}
	d.pos++
	ret, err = d.fieldType()
	if err != nil {
		return nil, nil, err
	}
	if d.pos != len(src) {
		return nil, nil, d.errorf("trailing characters")
	}
	return params, ret, nil
}

func (d *descParser) fieldType() (*Ref, error) {
	c := d.peek()
	switch {
	case c == '[':
		d.pos++
		elem, err := d.fieldType()
		if err != nil {
			return nil, err
		}
		elem.Dims++
		return elem, nil
	case c == 'L':
		d.pos++
		return d.classType()
	case c == 'T':
		d.pos++
		end := strings.IndexByte(d.src[d.pos:], ';')
		if end <= 0 {
			return nil, d.errorf("unterminated type variable")
		}
		name := d.src[d.pos : d.pos+end]
		d.pos += end + 1
		return &Ref{Name: name, Variable: true}, nil
	}
	if name, ok := baseTypes[c]; ok {
		d.pos++
		return &Ref{Name: name}, nil
	}
	if c == 0 {
		return nil, d.errorf("unexpected end of descriptor")
	}
	return nil, d.errorf("unexpected %q", c)
}

func (d *descParser) classType() (*Ref, error) {
	var ref *Ref
	name := ""
	for {
		start := d.pos
		for d.pos < len(d.src) && !strings.ContainsRune(";<.", rune(d.src[d.pos])) {
			d.pos++
		}
		if d.pos >= len(d.src) {
			return nil, d.errorf("unterminated class type")
		}
		seg := strings.NewReplacer("/", ".", "$", ".").Replace(d.src[start:d.pos])
		if name == "" {
			name = seg
		} else {
			name += "." + seg
		}
		cur := &Ref{Name: name}
		if ref != nil && (len(ref.Args) > 0 || ref.Outer != nil) {
			cur.Outer = ref
		}
		ref = cur
		if d.peek() == '<' {
			d.pos++
			for d.peek() != '>' {
				arg, err := d.typeArgument()
				if err != nil {
					return nil, err
				}
				ref.Args = append(ref.Args, arg)
			}
			d.pos++
		}
		switch d.peek() {
		case ';':
			d.pos++
			return ref, nil
		case '.':
			d.pos++
		default:
			return nil, d.errorf("expected ';'")
		}
	}
}

func (d *descParser) typeArgument() (*Ref, error) {
	switch d.peek() {
	case '*':
		d.pos++
		return &Ref{Name: "?", Wildcard: Unbounded}, nil
	case '+', '-':
		kind := Extends
		if d.peek() == '-' {
			kind = Super
		}
		d.pos++
		bound, err := d.fieldType()
		if err != nil {
			return nil, err
		}
		return &Ref{Name: "?", Wildcard: kind, Bound: bound}, nil
	case 0:
		return nil, d.errorf("unterminated type arguments")
	}
	return d.fieldType()
}
