package classfile

import (
	"strings"

	"github.com/google/turbine/pkg/sym"
)

// Descriptor renders the JVMS 4.3.2/4.3.3 field/method descriptor for an
// erased type: unlike Signature, a descriptor carries no generics, so a
// ClassType is rendered from only its innermost component's raw class name.
func Descriptor(t sym.Type) string {
	switch v := t.(type) {
	case sym.PrimitiveType:
		return primitiveDescriptor(v.Kind)
	case sym.VoidType:
		return "V"
	case sym.ClassType:
		return "L" + v.Sym().BinaryName() + ";"
	case sym.ArrayType:
		return "[" + Descriptor(v.Element)
	case sym.TyVarRefType:
		return eraseTyVarDescriptor(v)
	case sym.WildcardType:
		if v.Kind == sym.WildcardUpper {
			return Descriptor(v.Bound)
		}

		return "Ljava/lang/Object;"
	case sym.IntersectionType:
		if len(v.Components) > 0 {
			return Descriptor(v.Components[0])
		}

		return "Ljava/lang/Object;"
	default:
		return "Ljava/lang/Object;"
	}
}

// eraseTyVarDescriptor erases a type-variable reference to Object, since a
// descriptor (unlike a Signature) has no notion of a type variable; callers
// that know the variable's first bound should substitute it directly rather
// than calling this fallback.
func eraseTyVarDescriptor(sym.TyVarRefType) string {
	return "Ljava/lang/Object;"
}

// MethodDescriptor renders a full method descriptor "(ParameterDescriptor*)ReturnDescriptor".
func MethodDescriptor(params []sym.Type, result sym.Type) string {
	var b strings.Builder

	b.WriteByte('(')

	for _, p := range params {
		b.WriteString(Descriptor(p))
	}

	b.WriteByte(')')

	if _, ok := result.(sym.VoidType); ok {
		b.WriteByte('V')
	} else {
		b.WriteString(Descriptor(result))
	}

	return b.String()
}
