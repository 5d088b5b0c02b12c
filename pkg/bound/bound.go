// Package bound implements the layered bound-class representation of §3:
// each phase of pkg/bind produces a new, immutable layer that embeds and
// extends its predecessor, culminating in the SourceTypeBoundClass that
// pkg/lower reads to build a classfile.ClassFile.
package bound

import (
	"github.com/google/turbine/internal/util"
	"github.com/google/turbine/pkg/index"
	"github.com/google/turbine/pkg/sym"
	"github.com/google/turbine/pkg/tree"
)

// SourceBoundClass is the first bound layer (§4.E / §3 item 1): the symbol
// itself, its owner (if nested), declared access flags (implicit flags
// already folded in), the map of nested simple names to their ClassSymbols,
// and the originating declaration.
type SourceBoundClass struct {
	Sym      sym.ClassSymbol
	Owner    util.Option[sym.ClassSymbol]
	Access   uint16
	Kind     tree.TypeKind
	Children map[string]sym.ClassSymbol
	Decl     *tree.TypeDecl
}

// PackageSourceBoundClass (§3 item 2) adds the compilation-unit scope chain
// and the static member-import index, both needed before any type can be
// resolved by simple name.
type PackageSourceBoundClass struct {
	SourceBoundClass

	Package       string
	Scope         index.Scope
	MemberImports *index.MemberImportIndex
}

// SourceHeaderBoundClass (§3 item 3) adds the resolved superclass and
// interface symbols and the minted type-parameter symbols, without yet
// binding full Types (that's TypeBinder's job).
type SourceHeaderBoundClass struct {
	PackageSourceBoundClass

	Superclass     sym.ClassSymbol // zero value for java/lang/Object and for interface and annotation types
	Interfaces     []sym.ClassSymbol
	TypeParameters []sym.TyVarSymbol
}

// TypeParameterBound is one type parameter's bound set, split into the
// (optional) class bound and the interface bounds (§4.G item 2).
type TypeParameterBound struct {
	Sym             sym.TyVarSymbol
	ClassBound      sym.Type // nil iff HasClassBound is false
	HasClassBound   bool
	InterfaceBounds []sym.Type
}

// FieldInfo is a bound field (§4.G item 4, §3 "constant fields"): type and
// access are always present; Value is filled in (or left nil, meaning "not
// a constant") by ConstEvaluator.
type FieldInfo struct {
	Sym         sym.FieldSymbol
	Type        sym.Type
	Access      uint16
	Decl        *tree.FieldDecl
	InitExpr    tree.Expression // the unbound initializer, or nil

	Annotations         []AnnotationUse // pre-Disambiguate: all declaration-position annotations
	TypeAnnotations     []sym.TypeAnnotation

	Value    *sym.Value // non-nil iff a constant value was successfully folded
}

// ParamInfo is one bound method parameter.
type ParamInfo struct {
	Name   string
	Type   sym.Type
	Access uint16
}

// MethodInfo is a bound method (§4.G item 4).
type MethodInfo struct {
	Sym           sym.MethodSymbol
	Access        uint16
	IsConstructor bool

	TypeParameters []sym.TyVarSymbol
	TypeParameterBounds map[sym.TyVarSymbol]TypeParameterBound

	Parameters []ParamInfo
	Result     sym.Type
	Throws     []sym.Type

	Annotations     []AnnotationUse
	TypeAnnotations []sym.TypeAnnotation

	// ParamAnnotations mirrors Parameters by index.
	ParamAnnotations [][]AnnotationUse

	AnnotationDefault tree.Expression // unbound; bound lazily by ConstBinder
	AnnotationDefaultValue *sym.Value

	// Synthetic marks a member TypeBinder added (default ctor, enum
	// values()/valueOf(), enum (String,int) ctor) rather than one the
	// source declared.
	Synthetic bool
}

// AnnotationUse is a bound (but not yet const-evaluated) annotation
// instance: the annotation type is resolved, but each argument's value
// expression is still AST until ConstBinder runs.
type AnnotationUse struct {
	Sym  sym.ClassSymbol
	Args []AnnotationArgUse
}

// AnnotationArgUse is one "name=expr" annotation argument prior to
// evaluation.
type AnnotationArgUse struct {
	Name string
	Expr tree.Expression

	// Value is filled in by ConstBinder once the argument has been
	// evaluated against the annotation type's declared method signature.
	Value *sym.Value
}

// SourceTypeBoundClass is the final source-class layer (§3 items 4-5): once
// Canonicalize/Disambiguate have run, SuperClassType/InterfaceTypes/field
// and parameter types are canonical, Fields' Values are populated where
// constant, and Annotations/TypeAnnotations are split by use-site.
type SourceTypeBoundClass struct {
	SourceHeaderBoundClass

	SuperClassType sym.Type // nil iff Superclass is invalid (java/lang/Object, interfaces, annotations)
	InterfaceTypes []sym.Type

	TypeParameterBounds map[sym.TyVarSymbol]TypeParameterBound

	Fields  []FieldInfo
	Methods []MethodInfo

	Annotations     []AnnotationUse
	TypeAnnotations []sym.TypeAnnotation

	// RetentionPolicy/TargetKinds/RepeatableContainer are populated only for
	// annotation-kind declarations (§4.H "Annotation metadata").
	RetentionPolicy    string // "SOURCE", "CLASS" (default), "RUNTIME"
	TargetKinds        []string
	RepeatableContainer sym.ClassSymbol // zero value iff not @Repeatable
}

// BytecodeBoundClass mirrors SourceTypeBoundClass for a classpath class,
// populated lazily from class-file bytes on first access (§3 "mirrors (4)-
// (5) ... lazily populating from class-file bytes").
type BytecodeBoundClass struct {
	Sym sym.ClassSymbol

	// bytes is the raw class-file content; Load parses it into the fields
	// below on first access, per the §5 "classpath entries are read once
	// into memory" / "class file for a given ClassSymbol is parsed at most
	// once" sharing rule.
	bytes  []byte
	loaded bool

	Superclass     sym.ClassSymbol
	Interfaces     []sym.ClassSymbol
	TypeParameters []sym.TyVarSymbol
	SuperClassType sym.Type
	InterfaceTypes []sym.Type
	Fields         []FieldInfo
	Methods        []MethodInfo
	Access         uint16
}

// NewBytecodeBoundClass wraps unparsed class-file bytes; pkg/classpath.Load
// parses them into the fields above, and Loaded reports whether it has.
func NewBytecodeBoundClass(cs sym.ClassSymbol, data []byte) *BytecodeBoundClass {
	return &BytecodeBoundClass{Sym: cs, bytes: data}
}

// Bytes returns the raw class-file bytes backing this lazily-loaded class.
func (b *BytecodeBoundClass) Bytes() []byte { return b.bytes }

// MarkLoaded records that the lazy fields have been populated, so repeat
// calls through a LazyEnv completer are idempotent.
func (b *BytecodeBoundClass) MarkLoaded() { b.loaded = true }

// Loaded reports whether this class's lazy fields have been populated.
func (b *BytecodeBoundClass) Loaded() bool { return b.loaded }
