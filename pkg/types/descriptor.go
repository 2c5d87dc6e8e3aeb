package types

import "strings"

var primitiveDescriptors = map[*PrimitiveType]byte{
	Boolean: 'Z', Byte: 'B', Short: 'S', Char: 'C',
	Int: 'I', Long: 'J', Float: 'F', Double: 'D', Void: 'V',
}

// PrimitiveByDescriptor maps a JVM base type character to its primitive.
func PrimitiveByDescriptor(c byte) *PrimitiveType {
	for p, d := range primitiveDescriptors {
		if d == c {
			return p
		}
	}
	return nil
}

// Descriptor renders the JVM field descriptor of t's erasure, e.g.
// [Ljava/lang/String;.
func Descriptor(t Type) string {
	var sb strings.Builder
	writeDescriptor(&sb, t.Erasure())
	return sb.String()
}

func writeDescriptor(sb *strings.Builder, t Type) {
	switch tt := t.(type) {
	case *PrimitiveType:
		sb.WriteByte(primitiveDescriptors[tt])
	case *ArrayType:
		for i := 0; i < tt.dimensions; i++ {
			sb.WriteByte('[')
		}
		writeDescriptor(sb, tt.leaf)
	case ClassType:
		sb.WriteByte('L')
		sb.WriteString(tt.Declaration().BinaryName())
		sb.WriteByte(';')
	default:
		writeDescriptor(sb, t.Erasure())
	}
}

// MethodDescriptor renders (params)return over erasures. Two methods with
// equal descriptors would collide in a class file.
func MethodDescriptor(m *MethodBinding) string {
	var sb strings.Builder
	sb.WriteByte('(')
	for _, p := range m.Parameters {
		writeDescriptor(&sb, p.Erasure())
	}
	sb.WriteByte(')')
	writeDescriptor(&sb, m.ReturnType.Erasure())
	return sb.String()
}

// Signature renders the generic JVM signature of t, e.g.
// Ljava/util/List<Ljava/lang/String;>;.
func Signature(t Type) string {
	var sb strings.Builder
	writeSignature(&sb, t)
	return sb.String()
}

func writeSignature(sb *strings.Builder, t Type) {
	switch tt := t.(type) {
	case *ParameterizedType:
		sb.WriteByte('L')
		sb.WriteString(tt.generic.BinaryName())
		sb.WriteByte('<')
		for _, a := range tt.args {
			writeSignature(sb, a)
		}
		sb.WriteString(">;")
	case *WildcardType:
		switch tt.BoundKind {
		case Unbounded:
			sb.WriteByte('*')
		case Extends:
			sb.WriteByte('+')
			writeSignature(sb, tt.bound)
		case Super:
			sb.WriteByte('-')
			writeSignature(sb, tt.bound)
		}
	case *TypeVariable:
		sb.WriteByte('T')
		sb.WriteString(tt.Name)
		sb.WriteByte(';')
	case *ArrayType:
		for i := 0; i < tt.dimensions; i++ {
			sb.WriteByte('[')
		}
		writeSignature(sb, tt.leaf)
	default:
		writeDescriptor(sb, t.Erasure())
	}
}
