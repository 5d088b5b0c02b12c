package tree

import "encoding/gob"

// init registers every concrete TypeExpr/Expression case so a
// []*CompilationUnit can round-trip through encoding/gob despite the two
// sum types being represented as interfaces: gob only needs to know the
// concrete type once, at either end of the wire, matching the teacher's own
// "serialise as a gob file" artifact convention (pkg/cmd's compile command).
func init() {
	gob.Register(PrimitiveTypeExpr{})
	gob.Register(VoidTypeExpr{})
	gob.Register(ClassTypeExpr{})
	gob.Register(ArrayTypeExpr{})
	gob.Register(WildcardTypeExpr{})

	gob.Register(Literal{})
	gob.Register(Ident{})
	gob.Register(FieldAccess{})
	gob.Register(ClassLiteral{})
	gob.Register(UnaryOp{})
	gob.Register(BinaryOp{})
	gob.Register(Conditional{})
	gob.Register(Cast{})
	gob.Register(ArrayInit{})
	gob.Register(AnnotationExpr{})
}
