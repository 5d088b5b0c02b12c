// Package tree defines the collaborator AST (§6 "Parser: parse(SourceFile)
// → CompilationUnit"): the shape a lexer/parser would hand the binder. The
// parser itself is out of scope; these types exist so the binder packages
// have a concrete, typed input to walk.
package tree

// CompilationUnit is one parsed source file.
type CompilationUnit struct {
	// Package is the dot-free, slash-joined package name ("" for the
	// unnamed package); §4.E derives it by path-joining the declared
	// package identifiers with '/'.
	Package string

	PackageAnnotations []Annotation

	Imports []Import
	Types   []TypeDecl
}

// Import is one import declaration.
type Import struct {
	// Path is the dot-joined qualified name being imported, e.g.
	// "java.util.List" or "java.util" for an on-demand import, or
	// "java.lang.Math.PI" for a static single import.
	Path     string
	Static   bool
	OnDemand bool // "import a.b.*;" or "import static a.B.*;"
}

// TypeKind discriminates the four declaration kinds §4.E desugars
// differently.
type TypeKind int

const (
	KindClass TypeKind = iota
	KindInterface
	KindEnum
	KindAnnotation
)

// TypeDecl is one class/interface/enum/annotation declaration, possibly
// nested inside another.
type TypeDecl struct {
	Kind        TypeKind
	Name        string
	Access      uint16 // explicit source modifiers only; implicit flags added by §4.E
	Annotations []Annotation

	TypeParameters []TypeParameter

	// Extends is nil for an interface/annotation/enum (handled implicitly)
	// and for "extends Object" written explicitly; otherwise the
	// superclass type expression.
	Extends    TypeExpr
	Implements []TypeExpr

	Fields    []FieldDecl
	Methods   []MethodDecl
	EnumConstants []EnumConstant

	Members []TypeDecl // nested type declarations
}

// TypeParameter is one formal type parameter, e.g. "T extends Number & Comparable<T>".
type TypeParameter struct {
	Name   string
	Bounds []TypeExpr // first may be a class bound; JLS requires interfaces after
}

// EnumConstant is one "NAME(args) { body }" enum constant.
type EnumConstant struct {
	Name        string
	Annotations []Annotation
	Arguments   []Expression
	HasBody     bool
}

// FieldDecl is one field declaration (one variable; the parser is assumed
// to have already split "int a, b;" into two FieldDecls).
type FieldDecl struct {
	Name        string
	Access      uint16
	Annotations []Annotation
	Type        TypeExpr
	Init        Expression // nil if no initializer
}

// MethodDecl is one method or constructor declaration.
type MethodDecl struct {
	// Name is the method's simple name, or the enclosing type's simple name
	// for a constructor (IsConstructor true).
	Name          string
	IsConstructor bool
	Access        uint16
	Annotations   []Annotation

	TypeParameters []TypeParameter
	Receiver       *Param // explicit "this" parameter, or nil
	Parameters     []Param
	Result         TypeExpr // nil for a constructor
	Throws         []TypeExpr

	// AnnotationDefault is the default element value of an annotation-type
	// method, or nil.
	AnnotationDefault Expression

	// HasBody distinguishes a method with a body (even if Turbine never
	// lowers it) from an abstract/interface/native declaration, needed to
	// decide ACC_ABSTRACT desugaring (§4.G).
	HasBody bool
}

// Param is one formal parameter.
type Param struct {
	Name        string
	Annotations []TypeAnnotationExpr
	Type        TypeExpr
	Varargs     bool
}

// TypeAnnotationExpr is a type-use annotation written directly on a type in
// source, prior to Disambiguate splitting it by @Target (§4.I).
type TypeAnnotationExpr struct {
	Annotation
}

// Annotation is a source annotation use, "@Type(name=value, ...)" or the
// shorthand "@Type(value)" / "@Type".
type Annotation struct {
	Type TypeExpr
	Args []AnnotationArgExpr
}

// AnnotationArgExpr is one "name=value" (or bare "value") annotation
// argument, still unbound (§4.H evaluates it against the annotation type's
// declared methods).
type AnnotationArgExpr struct {
	Name  string // "" for the implicit "value" shorthand
	Value Expression
}
