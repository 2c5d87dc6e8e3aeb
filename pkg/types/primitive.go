package types

// PrimitiveType is one of the fixed Java primitive types (plus void).
// Primitives and the null type are process-wide singletons; they never
// belong to an Environment.
type PrimitiveType struct {
	typeBase
	Name string
	// index into the conversion table
	index int
	// BoxName is the qualified name of the wrapper class.
	BoxName string
	// Slots is the number of local variable slots a value occupies.
	Slots int
}

func (p *PrimitiveType) Kind() Kind     { return KindPrimitive }
func (p *PrimitiveType) String() string { return p.Name }
func (p *PrimitiveType) Erasure() Type  { return p }

// IsNumeric reports whether p takes part in numeric promotion.
func (p *PrimitiveType) IsNumeric() bool {
	return p != Boolean && p != Void
}

const (
	idxBoolean = iota
	idxByte
	idxShort
	idxChar
	idxInt
	idxLong
	idxFloat
	idxDouble
	idxVoid
)

// Pre-defined instances for the primitive types
var (
	Boolean = &PrimitiveType{typeBase{1}, "boolean", idxBoolean, "java.lang.Boolean", 1}
	Byte    = &PrimitiveType{typeBase{2}, "byte", idxByte, "java.lang.Byte", 1}
	Short   = &PrimitiveType{typeBase{3}, "short", idxShort, "java.lang.Short", 1}
	Char    = &PrimitiveType{typeBase{4}, "char", idxChar, "java.lang.Character", 1}
	Int     = &PrimitiveType{typeBase{5}, "int", idxInt, "java.lang.Integer", 1}
	Long    = &PrimitiveType{typeBase{6}, "long", idxLong, "java.lang.Long", 2}
	Float   = &PrimitiveType{typeBase{7}, "float", idxFloat, "java.lang.Float", 1}
	Double  = &PrimitiveType{typeBase{8}, "double", idxDouble, "java.lang.Double", 2}
	Void    = &PrimitiveType{typeBase{9}, "void", idxVoid, "java.lang.Void", 0}
)

// Primitives lists every primitive except void, in table order.
var Primitives = []*PrimitiveType{Boolean, Byte, Short, Char, Int, Long, Float, Double}

// PrimitiveByName maps a keyword to its primitive, nil otherwise.
func PrimitiveByName(name string) *PrimitiveType {
	switch name {
	case "boolean":
		return Boolean
	case "byte":
		return Byte
	case "short":
		return Short
	case "char":
		return Char
	case "int":
		return Int
	case "long":
		return Long
	case "float":
		return Float
	case "double":
		return Double
	case "void":
		return Void
	}
	return nil
}

// Conversion classifies a primitive-to-primitive conversion.
type Conversion uint8

const (
	NoConversion Conversion = iota
	IdentityConversion
	WideningConversion
	NarrowingConversion
	// WideningAndNarrowing is byte to char: widen to int, then narrow.
	WideningAndNarrowing
)

const (
	nc = NoConversion
	ic = IdentityConversion
	wc = WideningConversion
	nr = NarrowingConversion
	wn = WideningAndNarrowing
)

// conversionTable[from][to]
var conversionTable = [9][9]Conversion{
	//          bool byte short char int long float double void
	idxBoolean: {ic, nc, nc, nc, nc, nc, nc, nc, nc},
	idxByte:    {nc, ic, wc, wn, wc, wc, wc, wc, nc},
	idxShort:   {nc, nr, ic, nr, wc, wc, wc, wc, nc},
	idxChar:    {nc, nr, nr, ic, wc, wc, wc, wc, nc},
	idxInt:     {nc, nr, nr, nr, ic, wc, wc, wc, nc},
	idxLong:    {nc, nr, nr, nr, nr, ic, wc, wc, nc},
	idxFloat:   {nc, nr, nr, nr, nr, nr, ic, wc, nc},
	idxDouble:  {nc, nr, nr, nr, nr, nr, nr, ic, nc},
	idxVoid:    {nc, nc, nc, nc, nc, nc, nc, nc, ic},
}

// PrimitiveConversion looks up the conversion from one primitive to another.
func PrimitiveConversion(from, to *PrimitiveType) Conversion {
	return conversionTable[from.index][to.index]
}

// IsWidening reports identity or widening primitive conversion, the only
// primitive conversions allowed in assignment and invocation contexts.
func IsWidening(from, to *PrimitiveType) bool {
	c := PrimitiveConversion(from, to)
	return c == IdentityConversion || c == WideningConversion
}

// NullType is the type of the null literal: a bottom reference type,
// compatible with every reference type and never a substitution target.
type NullType struct {
	typeBase
}

func (n *NullType) Kind() Kind     { return KindNull }
func (n *NullType) String() string { return "null" }
func (n *NullType) Erasure() Type  { return n }

// Null is the process-wide null type singleton.
var Null = &NullType{typeBase{10}}

// firstEnvironmentID leaves room for the singletons above.
const firstEnvironmentID = 64
