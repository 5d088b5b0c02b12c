package tree

// Expression is the sum type over unbound source expressions that the
// const evaluator and annotation binder consume (§4.H). Only the
// productions named by §4.H are represented: literals, constant field
// references, class literals, unary/binary/cast/conditional expressions,
// annotation uses, and array initializers.
type Expression interface {
	isExpression()
}

// LiteralKind tags the primitive kind of a Literal node.
type LiteralKind int

const (
	LiteralInt LiteralKind = iota
	LiteralLong
	LiteralFloat
	LiteralDouble
	LiteralBoolean
	LiteralChar
	LiteralString
	LiteralNull
)

// Literal is a source literal token, already parsed to its Go-native value.
type Literal struct {
	Kind LiteralKind

	IntVal     int32
	LongVal    int64
	FloatVal   float32
	DoubleVal  float64
	BoolVal    bool
	CharVal    uint16
	StringVal  string
}

func (Literal) isExpression() {}

// Ident is a bare identifier reference: a field, a local (never constant-
// foldable, but representable), an enum constant, or a package/type prefix
// before further qualification is known.
type Ident struct {
	Name string
}

func (Ident) isExpression() {}

// FieldAccess is "expr.name" — a qualified field or enum-constant
// reference, or a further qualification of a package/type name.
type FieldAccess struct {
	Target Expression
	Name   string
}

func (FieldAccess) isExpression() {}

// ClassLiteral is "Type.class".
type ClassLiteral struct {
	Type TypeExpr
}

func (ClassLiteral) isExpression() {}

// UnaryOp is a prefix unary expression: "+", "-", "~", "!".
type UnaryOp struct {
	Op      string
	Operand Expression
}

func (UnaryOp) isExpression() {}

// BinaryOp is an infix binary expression, e.g. "+", "-", "*", "/", "%",
// "<<", ">>", ">>>", "&", "|", "^", "&&", "||", "==", "!=", "<", "<=", ">",
// ">=".
type BinaryOp struct {
	Op          string
	Left, Right Expression
}

func (BinaryOp) isExpression() {}

// Conditional is "cond ? then : else".
type Conditional struct {
	Cond, Then, Else Expression
}

func (Conditional) isExpression() {}

// Cast is "(Type) expr".
type Cast struct {
	Type   TypeExpr
	Target Expression
}

func (Cast) isExpression() {}

// ArrayInit is "{ e1, e2, ... }", valid as a constant/annotation array
// value.
type ArrayInit struct {
	Elements []Expression
}

func (ArrayInit) isExpression() {}

// AnnotationExpr lets an annotation appear where a constant expression is
// expected (an annotation-typed annotation argument).
type AnnotationExpr struct {
	Annotation Annotation
}

func (AnnotationExpr) isExpression() {}
