// Package classfile implements the JVMS chapter 4 ClassFile codec (§4.B):
// an append-only, deduplicating constant pool builder/reader, bit-exact
// attribute writers, a signature serializer, and the ClassFile reader/writer
// pair tested for round-trip fidelity by §8 item 1.
//
// Method bodies are entirely out of scope (§1 Non-goals): there is no Code
// attribute, no bytecode instruction encoding, no stack-map frames.
package classfile

// ClassVersion is the (major, minor) class-file version pair (JVMS 4.1).
type ClassVersion struct {
	Major uint16
	Minor uint16
}

// Java17 is the newest class-file version this codec targets (JVMS chapter 4
// for class files up to version 61, i.e. Java 17, per §6).
var Java17 = ClassVersion{Major: 61, Minor: 0}

// MinSupportedMajor is the oldest major version ClassReader accepts; majors
// at or below 44 (JDK 1.0.2) predate the modifier/attribute conventions this
// codec assumes and are rejected (§4.B "rejects ... major ≤ 44").
const MinSupportedMajor = 44

// Magic is the JVMS 4.1 ClassFile magic number.
const Magic uint32 = 0xCAFEBABE

// ClassFile is the fully-materialized in-memory form of a JVMS ClassFile
// structure (§4.B), holding everything the codec can read or write.
type ClassFile struct {
	Version ClassVersion

	AccessFlags uint16
	Name        string // this_class binary name
	Signature   string // "" iff no Signature attribute
	SuperName   string // "" iff this is java/lang/Object
	Interfaces  []string

	Fields  []FieldInfo
	Methods []MethodInfo

	Annotations         []Annotation // declaration annotations on the class itself
	InvisibleAnnotations []Annotation

	InnerClasses []InnerClass

	Module            *ModuleInfo
	NestHost          string   // "" iff none
	NestMembers       []string // nil iff none
	Record            *RecordInfo
	PermittedSubclasses []string // nil iff not sealed

	// TransitiveJar, when non-empty, marks this class as a repackaged
	// classpath dependency and names the jar it originated from (the
	// Turbine-private TurbineTransitiveJar attribute, §4.B/§6).
	TransitiveJar string

	Deprecated bool
}

// FieldInfo is a JVMS field_info, plus the bound-IR detail the writer needs
// to reconstruct its attribute list (Signature, ConstantValue, annotations).
type FieldInfo struct {
	AccessFlags uint16
	Name        string
	Descriptor  string
	Signature   string // "" iff none

	// ConstantValue, when non-nil, is written as a ConstantValue attribute
	// (§3 "Constant fields").
	ConstantValue *ConstantValue

	Annotations          []Annotation
	InvisibleAnnotations []Annotation
	TypeAnnotations      []TypeAnnotation
	InvisibleTypeAnnotations []TypeAnnotation

	Deprecated bool
}

// ConstantValue is the payload of a ConstantValue attribute: exactly one of
// a primitive numeric/boolean value or a String, tagged by Kind.
type ConstantValue struct {
	Kind   ConstantValueKind
	Int    int32   // Kind in {Int, Short, Byte, Char, Boolean}
	Long   int64   // Kind == Long
	Float  float32 // Kind == Float
	Double float64 // Kind == Double
	String string  // Kind == String
}

// ConstantValueKind tags the payload kind of a ConstantValue.
type ConstantValueKind int

// ConstantValue kinds.
const (
	CVInt ConstantValueKind = iota
	CVShort
	CVByte
	CVChar
	CVBoolean
	CVLong
	CVFloat
	CVDouble
	CVString
)

// MethodInfo is a JVMS method_info for a header class: signature and
// annotation metadata only, no Code attribute.
type MethodInfo struct {
	AccessFlags uint16
	Name        string
	Descriptor  string
	Signature   string // "" iff none

	Exceptions []string // checked exception class names

	Annotations          []Annotation
	InvisibleAnnotations []Annotation
	TypeAnnotations      []TypeAnnotation
	InvisibleTypeAnnotations []TypeAnnotation

	ParameterAnnotations         [][]Annotation // outer index is parameter position
	InvisibleParameterAnnotations [][]Annotation

	// AnnotationDefault, when non-nil, is the default element value of an
	// annotation-type method.
	AnnotationDefault *ElementValue

	// Parameters is non-nil only when source named parameters exist (§4.J
	// "produce MethodParameters only when source named parameters exist").
	Parameters []MethodParameter

	Deprecated bool
}

// MethodParameter is one entry of a MethodParameters attribute.
type MethodParameter struct {
	Name        string // "" permitted (anonymous formal parameter)
	AccessFlags uint16
}

// InnerClass is one entry of an InnerClasses attribute.
type InnerClass struct {
	InnerName       string // binary name of the inner class
	OuterName       string // "" iff not a member of another class
	InnerSimpleName string // "" iff anonymous
	AccessFlags     uint16
}

// ModuleInfo is the payload of a Module attribute.
type ModuleInfo struct {
	Name        string
	Flags       uint16
	Version     string
	Requires    []ModuleRequires
	Exports     []ModulePackage
	Opens       []ModulePackage
	Uses        []string
	Provides    []ModuleProvides
}

// ModuleRequires is one requires directive.
type ModuleRequires struct {
	Module  string
	Flags   uint16
	Version string
}

// ModulePackage is one exports/opens directive.
type ModulePackage struct {
	Package string
	Flags   uint16
	To      []string
}

// ModuleProvides is one provides directive.
type ModuleProvides struct {
	Service string
	With    []string
}

// RecordInfo is the payload of a Record attribute.
type RecordInfo struct {
	Components []RecordComponent
}

// RecordComponent is one component of a Record attribute.
type RecordComponent struct {
	Name       string
	Descriptor string
	Signature  string

	Annotations          []Annotation
	InvisibleAnnotations []Annotation
	TypeAnnotations      []TypeAnnotation
	InvisibleTypeAnnotations []TypeAnnotation
}
