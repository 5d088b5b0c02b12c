package sym

import "fmt"

// ConstKind tags the primitive kind carried by a Value (JVMS 4.4).
type ConstKind int

// Constant value kinds.
const (
	ConstByte ConstKind = iota
	ConstChar
	ConstShort
	ConstInt
	ConstLong
	ConstFloat
	ConstDouble
	ConstBoolean
	ConstString
	ConstClass      // class literal, e.g. Foo.class
	ConstEnum       // enum-constant reference
	ConstAnnotation // nested annotation value
	ConstArray      // ordered array of Values
)

// Value is a tagged constant value as evaluated by ConstEvaluator (§3, §4.H):
// a primitive/String literal, a class literal, an enum-constant reference, a
// nested annotation, or an ordered array of Values. Exactly one payload
// field is meaningful for a given Kind.
type Value struct {
	Kind ConstKind

	// Numeric/boolean/string payloads (mutually exclusive by Kind).
	Int     int32
	Long    int64
	Float   float32
	Double  float64
	Bool    bool
	Str     string
	ByteVal int8
	CharVal uint16

	// ConstClass: the literal's named type.
	ClassLit Type

	// ConstEnum: owning enum class + constant name.
	EnumOwner ClassSymbol
	EnumName  string

	// ConstAnnotation: nested annotation.
	Annotation *AnnotationValue

	// ConstArray: ordered element values.
	Elements []Value
}

// AnnotationValue is a bound annotation: its type and its evaluated
// name=value arguments, in declaration order of the annotation type's
// element methods (stable regardless of the source's argument order).
type AnnotationValue struct {
	Sym  ClassSymbol
	Args []AnnotationArg
}

// AnnotationArg is one bound element=value pair of an annotation.
type AnnotationArg struct {
	Name  string
	Value Value
}

// Int32 constructs an int Value.
func Int32(v int32) Value { return Value{Kind: ConstInt, Int: v} }

// Int64 constructs a long Value.
func Int64(v int64) Value { return Value{Kind: ConstLong, Long: v} }

// Float32 constructs a float Value.
func Float32(v float32) Value { return Value{Kind: ConstFloat, Float: v} }

// Float64 constructs a double Value.
func Float64(v float64) Value { return Value{Kind: ConstDouble, Double: v} }

// Boolean constructs a boolean Value.
func Boolean(v bool) Value { return Value{Kind: ConstBoolean, Bool: v} }

// String constructs a String Value.
func String(v string) Value { return Value{Kind: ConstString, Str: v} }

// Byte constructs a byte Value.
func Byte(v int8) Value { return Value{Kind: ConstByte, ByteVal: v} }

// Short constructs a short Value.
func Short(v int32) Value { return Value{Kind: ConstShort, Int: v} }

// Char constructs a char Value.
func Char(v uint16) Value { return Value{Kind: ConstChar, CharVal: v} }

// IsNumeric reports whether this value's kind is one of the eight JVMS
// numeric/boolean primitive kinds (i.e. excludes String/Class/Enum/
// Annotation/Array).
func (v Value) IsNumeric() bool {
	switch v.Kind {
	case ConstByte, ConstChar, ConstShort, ConstInt, ConstLong, ConstFloat, ConstDouble, ConstBoolean:
		return true
	default:
		return false
	}
}

// String renders a debug form of this value.
func (v Value) String() string {
	switch v.Kind {
	case ConstByte:
		return fmt.Sprintf("%d", v.ByteVal)
	case ConstChar:
		return fmt.Sprintf("%q", rune(v.CharVal))
	case ConstShort, ConstInt:
		return fmt.Sprintf("%d", v.Int)
	case ConstLong:
		return fmt.Sprintf("%dL", v.Long)
	case ConstFloat:
		return fmt.Sprintf("%gf", v.Float)
	case ConstDouble:
		return fmt.Sprintf("%g", v.Double)
	case ConstBoolean:
		return fmt.Sprintf("%t", v.Bool)
	case ConstString:
		return fmt.Sprintf("%q", v.Str)
	case ConstClass:
		return v.ClassLit.String() + ".class"
	case ConstEnum:
		return v.EnumOwner.SimpleName() + "." + v.EnumName
	case ConstAnnotation:
		return "@" + v.Annotation.Sym.SimpleName()
	case ConstArray:
		return fmt.Sprintf("%v", v.Elements)
	default:
		return "<const>"
	}
}
