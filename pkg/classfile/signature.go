package classfile

import (
	"strings"

	"github.com/google/turbine/pkg/sym"
)

// TypeParamSig is one formal type parameter for a class or method Signature
// (JVMS 4.7.9.1 TypeParameter). ClassBound is the empty Type (sym.ERROR is
// never used here; use a nil-valued sym.Type via HasClassBound) when the
// parameter's first bound is an interface, in which case the grammar still
// requires a leading ':' with nothing between it and the next ':'.
type TypeParamSig struct {
	Name            string
	ClassBound      sym.Type // nil iff HasClassBound is false
	HasClassBound   bool
	InterfaceBounds []sym.Type
}

// SignatureWriter serialises JVMS 4.7.9.1 signatures: ClassSignature,
// MethodSignature, and the JavaTypeSignature/ReferenceTypeSignature
// productions they're built from. Type variable bounds are separated by
// ':'; a leading ':' denotes a missing class bound (§4.B).
type SignatureWriter struct{}

// NewSignatureWriter constructs a SignatureWriter.
func NewSignatureWriter() *SignatureWriter { return &SignatureWriter{} }

// ClassSignature renders a full ClassSignature attribute value.
func (s *SignatureWriter) ClassSignature(typeParams []TypeParamSig, super sym.Type, ifaces []sym.Type) string {
	var b strings.Builder

	s.writeTypeParams(&b, typeParams)
	b.WriteString(s.TypeSignature(super))

	for _, i := range ifaces {
		b.WriteString(s.TypeSignature(i))
	}

	return b.String()
}

// MethodSignature renders a full MethodSignature attribute value.
func (s *SignatureWriter) MethodSignature(
	typeParams []TypeParamSig, params []sym.Type, result sym.Type, throws []sym.Type,
) string {
	var b strings.Builder

	s.writeTypeParams(&b, typeParams)
	b.WriteByte('(')

	for _, p := range params {
		b.WriteString(s.TypeSignature(p))
	}

	b.WriteByte(')')

	if _, ok := result.(sym.VoidType); ok {
		b.WriteByte('V')
	} else {
		b.WriteString(s.TypeSignature(result))
	}

	for _, t := range throws {
		b.WriteByte('^')
		b.WriteString(s.TypeSignature(t))
	}

	return b.String()
}

// writeTypeParams renders the optional leading "<...>" of a ClassSignature
// or MethodSignature.
func (s *SignatureWriter) writeTypeParams(b *strings.Builder, params []TypeParamSig) {
	if len(params) == 0 {
		return
	}

	b.WriteByte('<')

	for _, p := range params {
		b.WriteString(p.Name)
		b.WriteByte(':')

		if p.HasClassBound {
			b.WriteString(s.TypeSignature(p.ClassBound))
		}
		// else: leading ':' alone denotes a missing class bound.

		for _, ib := range p.InterfaceBounds {
			b.WriteByte(':')
			b.WriteString(s.TypeSignature(ib))
		}
	}

	b.WriteByte('>')
}

// TypeSignature renders a JavaTypeSignature (primitive descriptor char, or a
// ReferenceTypeSignature for anything else).
func (s *SignatureWriter) TypeSignature(t sym.Type) string {
	switch v := t.(type) {
	case sym.PrimitiveType:
		return primitiveDescriptor(v.Kind)
	case sym.VoidType:
		return "V"
	case sym.ClassType:
		return s.classTypeSignature(v)
	case sym.ArrayType:
		return "[" + s.TypeSignature(v.Element)
	case sym.TyVarRefType:
		return "T" + v.Sym.Name + ";"
	case sym.WildcardType:
		switch v.Kind {
		case sym.WildcardUpper:
			return "+" + s.TypeSignature(v.Bound)
		case sym.WildcardLower:
			return "-" + s.TypeSignature(v.Bound)
		default:
			return "*"
		}
	case sym.IntersectionType:
		// Only valid as a type-parameter bound list, handled by
		// writeTypeParams; as a standalone signature fall back to the first
		// (class) bound.
		if len(v.Components) > 0 {
			return s.TypeSignature(v.Components[0])
		}

		return "Ljava/lang/Object;"
	case sym.ErrorType:
		return "Ljava/lang/Object;"
	default:
		return "Ljava/lang/Object;"
	}
}

// classTypeSignature renders a ClassTypeSignature: L Identifier
// [TypeArguments] {. Identifier [TypeArguments]} ;, e.g.
// "La/A<Ljava/lang/String;>.Inner;" for a ClassType built by Canonicalize
// (§8 item 5).
func (s *SignatureWriter) classTypeSignature(c sym.ClassType) string {
	var b strings.Builder

	b.WriteByte('L')

	for i, comp := range c.Components {
		if i == 0 {
			b.WriteString(comp.Sym.BinaryName())
		} else {
			b.WriteByte('.')
			b.WriteString(comp.Sym.SimpleName())
		}

		if len(comp.TypeArgs) > 0 {
			b.WriteByte('<')

			for _, a := range comp.TypeArgs {
				b.WriteString(s.TypeSignature(a))
			}

			b.WriteByte('>')
		}
	}

	b.WriteByte(';')

	return b.String()
}

func primitiveDescriptor(k sym.PrimitiveKind) string {
	switch k {
	case sym.Boolean:
		return "Z"
	case sym.Byte:
		return "B"
	case sym.Char:
		return "C"
	case sym.Short:
		return "S"
	case sym.Int:
		return "I"
	case sym.Long:
		return "J"
	case sym.Float:
		return "F"
	case sym.Double:
		return "D"
	default:
		return "I"
	}
}
