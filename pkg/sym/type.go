package sym

import "strings"

// Type is the sum type over every shape a bound Java type can take (§3):
// primitive, void, class, array, type-variable reference, wildcard,
// intersection, or error. Concrete types implement this as a closed set;
// callers switch on the concrete type the way the teacher's ast.Type
// implementations are discriminated by Go type-switch rather than by an
// explicit tag field.
type Type interface {
	// IsError reports whether this is the distinguished error type, used to
	// let binding continue after a resolution failure without cascading
	// nil-checks through every caller.
	IsError() bool
	// String renders a debug form (not a JVMS descriptor/signature; see
	// pkg/lower for that).
	String() string
}

// PrimitiveKind enumerates the eight JVMS primitive types.
type PrimitiveKind int

// Primitive kinds, per JVMS 2.3 / 4.3.2.
const (
	Boolean PrimitiveKind = iota
	Byte
	Char
	Short
	Int
	Long
	Float
	Double
)

// String renders the Java source keyword for this primitive kind.
func (k PrimitiveKind) String() string {
	switch k {
	case Boolean:
		return "boolean"
	case Byte:
		return "byte"
	case Char:
		return "char"
	case Short:
		return "short"
	case Int:
		return "int"
	case Long:
		return "long"
	case Float:
		return "float"
	case Double:
		return "double"
	default:
		return "?"
	}
}

// PrimitiveType is one of the eight JVMS primitives.
type PrimitiveType struct {
	Kind        PrimitiveKind
	Annotations []TypeAnnotation
}

// IsError implements Type.
func (p PrimitiveType) IsError() bool { return false }

// String implements Type.
func (p PrimitiveType) String() string { return p.Kind.String() }

// VoidType is the pseudo-type of a method with no return value.
type VoidType struct{}

// IsError implements Type.
func (VoidType) IsError() bool { return false }

// String implements Type.
func (VoidType) String() string { return "void" }

// SimpleClassTy is one component of a (possibly qualified) class type, e.g.
// the "B" in "A.B.C". Type factories enforce that a ClassType's sequence is
// non-empty and that each component's annotations describe only that
// component (§4.A).
type SimpleClassTy struct {
	Sym         ClassSymbol
	TypeArgs    []Type
	Annotations []TypeAnnotation
}

// ClassType is the ordered, non-empty sequence of SimpleClassTy representing
// the "A.B.C" nesting chain of a (possibly parameterized, possibly
// qualified-by-enclosing-instance) class type.
type ClassType struct {
	// Components, outermost first: for "A<String>.Inner" this is
	// [{A,[String]}, {Inner,nil}].
	Components []SimpleClassTy
}

// NewClassType constructs a ClassType from a non-empty component sequence.
// Panics on an empty sequence: the type factory invariant (§4.A) that a
// class-type sequence is never empty is enforced at construction, not at use.
func NewClassType(components ...SimpleClassTy) ClassType {
	if len(components) == 0 {
		panic("sym: class type must have at least one component")
	}

	return ClassType{components}
}

// IsError implements Type.
func (ClassType) IsError() bool { return false }

// Sym returns the symbol of the innermost (last) component, i.e. the class
// actually being referenced.
func (c ClassType) Sym() ClassSymbol {
	return c.Components[len(c.Components)-1].Sym
}

// String implements Type.
func (c ClassType) String() string {
	var b strings.Builder

	for i, comp := range c.Components {
		if i > 0 {
			b.WriteByte('.')
		}

		b.WriteString(comp.Sym.SimpleName())

		if len(comp.TypeArgs) > 0 {
			b.WriteByte('<')

			for j, a := range comp.TypeArgs {
				if j > 0 {
					b.WriteByte(',')
				}

				b.WriteString(a.String())
			}

			b.WriteByte('>')
		}
	}

	return b.String()
}

// ArrayType is an array of some element type with a fixed annotation set on
// this dimension; nested arrays are represented by nesting ArrayType values,
// not by a dimension count field, so each dimension can carry its own
// type-use annotations (JVMS 4.7.20.2 array dimension TypePath entries).
type ArrayType struct {
	Element     Type
	Annotations []TypeAnnotation
}

// IsError implements Type.
func (ArrayType) IsError() bool { return false }

// String implements Type.
func (a ArrayType) String() string { return a.Element.String() + "[]" }

// TyVarRefType references a declared type variable.
type TyVarRefType struct {
	Sym         TyVarSymbol
	Annotations []TypeAnnotation
}

// IsError implements Type.
func (TyVarRefType) IsError() bool { return false }

// String implements Type.
func (t TyVarRefType) String() string { return t.Sym.Name }

// WildcardKind enumerates the three wildcard forms.
type WildcardKind int

// Wildcard kinds.
const (
	WildcardUnbounded WildcardKind = iota
	WildcardUpper                  // ? extends Bound
	WildcardLower                  // ? super Bound
)

// WildcardType is a type-argument wildcard: unbounded, upper- or
// lower-bounded.
type WildcardType struct {
	Kind        WildcardKind
	Bound       Type // nil iff Kind == WildcardUnbounded
	Annotations []TypeAnnotation
}

// IsError implements Type.
func (WildcardType) IsError() bool { return false }

// String implements Type.
func (w WildcardType) String() string {
	switch w.Kind {
	case WildcardUpper:
		return "? extends " + w.Bound.String()
	case WildcardLower:
		return "? super " + w.Bound.String()
	default:
		return "?"
	}
}

// IntersectionType is an ordered list of component types, e.g. the bound of
// a type variable with more than one interface bound, or a lambda target
// type with several functional-ish supertypes. Order matters: the first
// component that is not an interface becomes the class bound (§4.G item 2).
type IntersectionType struct {
	Components []Type
}

// IsError implements Type.
func (IntersectionType) IsError() bool { return false }

// String implements Type.
func (i IntersectionType) String() string {
	var b strings.Builder

	for j, c := range i.Components {
		if j > 0 {
			b.WriteString(" & ")
		}

		b.WriteString(c.String())
	}

	return b.String()
}

// ErrorType is the distinguished sentinel returned whenever a type could not
// be resolved; binding continues past the error rather than aborting, with
// the originating diagnostic already logged by the caller that produced it.
type ErrorType struct{}

// IsError implements Type.
func (ErrorType) IsError() bool { return true }

// String implements Type.
func (ErrorType) String() string { return "<error>" }

// ERROR is the shared ErrorType value.
var ERROR Type = ErrorType{}

// TypeAnnotation is a type-use annotation attached to a particular component
// of a Type (§3 "Each node carries its type-use annotations"). Binding is
// deferred: as bound by TypeBinder, Expr holds the unbound AST node; the
// TypeAnnotations Disambiguate produces hold a bound.AnnotationUse, whose
// arguments ConstBinder has already evaluated (§4.H).
type TypeAnnotation struct {
	Sym  ClassSymbol
	Expr any // ast node; see pkg/tree.Annotation
}
