package classfile

// Annotation is a JVMS 4.7.16 annotation structure: a type descriptor plus
// an ordered list of element=value pairs.
type Annotation struct {
	Type     string // field descriptor of the annotation interface, e.g. "Ljava/lang/Override;"
	Elements []ElementValuePair
}

// ElementValuePair is one "name=value" entry of an annotation.
type ElementValuePair struct {
	Name  string
	Value ElementValue
}

// ElementValueTag is one of the single-character tags of JVMS 4.7.16.1.
type ElementValueTag byte

// Element value tags (JVMS Table 4.7.16.1-A).
const (
	TagByte           ElementValueTag = 'B'
	TagChar           ElementValueTag = 'C'
	TagDouble         ElementValueTag = 'D'
	TagFloat          ElementValueTag = 'F'
	TagInt            ElementValueTag = 'I'
	TagLong           ElementValueTag = 'J'
	TagShort          ElementValueTag = 'S'
	TagBoolean        ElementValueTag = 'Z'
	TagString         ElementValueTag = 's'
	TagEnum           ElementValueTag = 'e'
	TagClass          ElementValueTag = 'c'
	TagAnnotation     ElementValueTag = '@'
	TagArray          ElementValueTag = '['
)

// ElementValue is a tagged JVMS 4.7.16.1 element_value. Exactly the field(s)
// implied by Tag are meaningful.
type ElementValue struct {
	Tag ElementValueTag

	ConstInt    int32   // B, C, I, S, Z (Z: 0/1)
	ConstLong   int64   // J
	ConstFloat  float32 // F
	ConstDouble float64 // D
	ConstString string  // s

	// e: enum_const_value.
	EnumType string
	EnumName string

	// c: class_info_index, stored as the field descriptor of the named type
	// (e.g. "Ljava/lang/String;" or "V" for void.class), per JVMS 4.7.16.1.
	ClassDescriptor string

	// @: nested annotation.
	Annotation *Annotation

	// [: ordered array of element values.
	Array []ElementValue
}

// TypePath is the JVMS 4.7.20.2 sequence of (type_path_kind,
// type_argument_index) steps locating a type annotation inside a composite
// type.
type TypePath struct {
	Steps []TypePathStep
}

// TypePathKind enumerates the four JVMS 4.7.20.2 path-kind values.
type TypePathKind byte

// Type path kinds.
const (
	PathArray        TypePathKind = 0 // deeper in an array type
	PathNested       TypePathKind = 1 // deeper in a nested type
	PathWildcard     TypePathKind = 2 // on the bound of a wildcard type argument
	PathTypeArgument TypePathKind = 3 // on a type argument of a parameterized type
)

// TypePathStep is one entry of a TypePath.
type TypePathStep struct {
	Kind                TypePathKind
	TypeArgumentIndex byte // meaningful only when Kind == PathTypeArgument
}

// TypeAnnotationTargetKind enumerates the JVMS 4.7.20.1 target_type values
// this codec emits: field header members only use the "empty" targets since
// method bodies are out of scope, but generic/throws targets on headers are
// still required.
type TypeAnnotationTargetKind byte

// Target kinds actually produced by a header compiler (subset of JVMS
// 4.7.20.1 — the full table includes many code-relative targets that never
// arise without method bodies).
const (
	TargetClassTypeParameter        TypeAnnotationTargetKind = 0x00
	TargetMethodTypeParameter       TypeAnnotationTargetKind = 0x01
	TargetClassExtends              TypeAnnotationTargetKind = 0x10
	TargetClassTypeParameterBound    TypeAnnotationTargetKind = 0x11
	TargetMethodTypeParameterBound   TypeAnnotationTargetKind = 0x12
	TargetField                     TypeAnnotationTargetKind = 0x13
	TargetMethodReturn               TypeAnnotationTargetKind = 0x14
	TargetMethodReceiver             TypeAnnotationTargetKind = 0x15
	TargetMethodFormalParameter      TypeAnnotationTargetKind = 0x16
	TargetThrows                     TypeAnnotationTargetKind = 0x17
)

// TypeAnnotationTarget identifies where a type annotation attaches.
type TypeAnnotationTarget struct {
	Kind TypeAnnotationTargetKind

	// Index is the type-parameter index, supertype index (0xFFFF for
	// extends, 0-based for an implements entry), parameter index, or
	// throws-clause index, according to Kind.
	Index uint16
}

// TypeAnnotation is a JVMS 4.7.20 type_annotation: a target, a path into the
// annotated type, and the annotation itself.
type TypeAnnotation struct {
	Target TypeAnnotationTarget
	Path   TypePath
	Annotation
}
