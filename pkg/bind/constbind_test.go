package bind

import (
	"testing"

	"github.com/google/turbine/pkg/bound"
	"github.com/google/turbine/pkg/classfile"
	"github.com/google/turbine/pkg/diag"
	"github.com/google/turbine/pkg/sym"
	"github.com/google/turbine/pkg/tree"
)

func intLit(v int32) tree.Expression { return tree.Literal{Kind: tree.LiteralInt, IntVal: v} }

// buildClasses runs Preprocess through ClassBinder for one package of
// compilation units and returns the class-bound result plus a ConstBinder
// ready to fold it.
func buildClasses(t *testing.T, units []*tree.CompilationUnit) (map[sym.ClassSymbol]*bound.SourceTypeBoundClass, *ConstBinder, *diag.Log) {
	t.Helper()

	log := diag.NewLog()
	idx, classes, roots := Preprocess(units, log)
	psb := BuildScopes(units, classes, roots, idx, log)
	headers := NewHierarchyBinder(psb, nil, log).Bind()
	tb := NewTypeBinder(headers)
	stb := NewClassBinder(headers, log).BindAll()

	return stb, NewConstBinder(stb, tb, log), log
}

func stringTypeExpr() tree.ClassTypeExpr {
	return tree.ClassTypeExpr{Segments: []tree.ClassTypeExprSegment{{Name: "String"}}}
}

// javaLangStringUnit supplies a minimal java.lang.String so that a bare
// "String" type reference resolves through the implicit java.lang package
// scope (§4.D); none of these fixtures load an actual classpath.
func javaLangStringUnit() *tree.CompilationUnit {
	return &tree.CompilationUnit{
		Package: "java/lang",
		Types:   []tree.TypeDecl{{Kind: tree.KindClass, Name: "String"}},
	}
}

func TestConstBinderFoldsLiteralAndArithmetic(t *testing.T) {
	unit := &tree.CompilationUnit{
		Package: "a",
		Types: []tree.TypeDecl{
			{
				Kind: tree.KindClass, Name: "C",
				Fields: []tree.FieldDecl{
					{Name: "X", Access: classfile.AccStatic | classfile.AccFinal, Type: tree.PrimitiveTypeExpr{Name: "int"}, Init: intLit(2)},
					{
						Name: "Y", Access: classfile.AccStatic | classfile.AccFinal, Type: tree.PrimitiveTypeExpr{Name: "int"},
						Init: tree.BinaryOp{Op: "+", Left: intLit(3), Right: intLit(4)},
					},
				},
			},
		},
	}

	stb, cbd, log := buildClasses(t, []*tree.CompilationUnit{unit})
	cbd.BindAll()

	if log.HasErrors() {
		t.Fatalf("unexpected errors: %v", log.Err())
	}

	c := stb[sym.NewClassSymbol("a/C")]
	if c == nil {
		t.Fatalf("a/C missing from bound result")
	}

	var x, y *sym.Value

	for i := range c.Fields {
		switch c.Fields[i].Sym.Name {
		case "X":
			x = c.Fields[i].Value
		case "Y":
			y = c.Fields[i].Value
		}
	}

	if x == nil || x.Kind != sym.ConstInt || x.Int != 2 {
		t.Fatalf("expected X folded to int 2, got %+v", x)
	}

	if y == nil || y.Kind != sym.ConstInt || y.Int != 7 {
		t.Fatalf("expected Y folded to int 7, got %+v", y)
	}
}

func TestConstBinderCrossFieldReference(t *testing.T) {
	unit := &tree.CompilationUnit{
		Package: "a",
		Types: []tree.TypeDecl{
			{
				Kind: tree.KindClass, Name: "C",
				Fields: []tree.FieldDecl{
					{Name: "BASE", Access: classfile.AccStatic | classfile.AccFinal, Type: tree.PrimitiveTypeExpr{Name: "int"}, Init: intLit(10)},
					{
						Name: "DERIVED", Access: classfile.AccStatic | classfile.AccFinal, Type: tree.PrimitiveTypeExpr{Name: "int"},
						Init: tree.BinaryOp{Op: "*", Left: tree.Ident{Name: "BASE"}, Right: intLit(2)},
					},
				},
			},
		},
	}

	stb, cbd, log := buildClasses(t, []*tree.CompilationUnit{unit})
	cbd.BindAll()

	if log.HasErrors() {
		t.Fatalf("unexpected errors: %v", log.Err())
	}

	c := stb[sym.NewClassSymbol("a/C")]

	var derived *sym.Value

	for i := range c.Fields {
		if c.Fields[i].Sym.Name == "DERIVED" {
			derived = c.Fields[i].Value
		}
	}

	if derived == nil || derived.Kind != sym.ConstInt || derived.Int != 20 {
		t.Fatalf("expected DERIVED folded to int 20, got %+v", derived)
	}
}

func TestConstBinderSelfCycleIsNotConstant(t *testing.T) {
	unit := &tree.CompilationUnit{
		Package: "a",
		Types: []tree.TypeDecl{
			{
				Kind: tree.KindClass, Name: "C",
				Fields: []tree.FieldDecl{
					{
						Name: "X", Access: classfile.AccStatic | classfile.AccFinal, Type: tree.PrimitiveTypeExpr{Name: "int"},
						Init: tree.BinaryOp{Op: "+", Left: tree.Ident{Name: "X"}, Right: intLit(1)},
					},
				},
			},
		},
	}

	stb, cbd, log := buildClasses(t, []*tree.CompilationUnit{unit})
	cbd.BindAll()

	if log.HasErrors() {
		t.Fatalf("a self-referential initializer should not be an error, got: %v", log.Err())
	}

	c := stb[sym.NewClassSymbol("a/C")]

	for i := range c.Fields {
		if c.Fields[i].Sym.Name == "X" && c.Fields[i].Value != nil {
			t.Fatalf("expected X to be left non-constant, got %+v", c.Fields[i].Value)
		}
	}
}

func TestConstBinderStringConcatenation(t *testing.T) {
	unit := &tree.CompilationUnit{
		Package: "a",
		Types: []tree.TypeDecl{
			{
				Kind: tree.KindClass, Name: "C",
				Fields: []tree.FieldDecl{
					{
						Name: "S", Access: classfile.AccStatic | classfile.AccFinal, Type: stringTypeExpr(),
						Init: tree.BinaryOp{
							Op:    "+",
							Left:  tree.Literal{Kind: tree.LiteralString, StringVal: "n="},
							Right: intLit(3),
						},
					},
				},
			},
		},
	}

	stb, cbd, log := buildClasses(t, []*tree.CompilationUnit{javaLangStringUnit(), unit})
	cbd.BindAll()

	if log.HasErrors() {
		t.Fatalf("unexpected errors: %v", log.Err())
	}

	c := stb[sym.NewClassSymbol("a/C")]

	var s *sym.Value

	for i := range c.Fields {
		if c.Fields[i].Sym.Name == "S" {
			s = c.Fields[i].Value
		}
	}

	if s == nil || s.Kind != sym.ConstString || s.Str != "n=3" {
		t.Fatalf("expected S folded to string \"n=3\", got %+v", s)
	}
}

// TestConstBinderAnnotationArrayAutoWrap exercises the "@Tags(\"x\")" shorthand
// for an element declared "String[] value()": a single non-array argument
// must be wrapped into a one-element ConstArray.
func TestConstBinderAnnotationArrayAutoWrap(t *testing.T) {
	unit := &tree.CompilationUnit{
		Package: "a",
		Types: []tree.TypeDecl{
			{
				Kind: tree.KindAnnotation, Name: "Tags",
				Methods: []tree.MethodDecl{
					{Name: "value", Result: tree.ArrayTypeExpr{Element: stringTypeExpr()}},
				},
			},
			{
				Kind: tree.KindClass, Name: "C",
				Fields: []tree.FieldDecl{
					{
						Name: "f", Type: tree.PrimitiveTypeExpr{Name: "int"},
						Annotations: []tree.Annotation{
							{
								Type: tree.ClassTypeExpr{Segments: []tree.ClassTypeExprSegment{{Name: "Tags"}}},
								Args: []tree.AnnotationArgExpr{{Value: tree.Literal{Kind: tree.LiteralString, StringVal: "x"}}},
							},
						},
					},
				},
			},
		},
	}

	stb, cbd, log := buildClasses(t, []*tree.CompilationUnit{javaLangStringUnit(), unit})
	cbd.BindAll()

	if log.HasErrors() {
		t.Fatalf("unexpected errors: %v", log.Err())
	}

	c := stb[sym.NewClassSymbol("a/C")]
	if c == nil {
		t.Fatalf("a/C missing from bound result")
	}

	var f *bound.FieldInfo

	for i := range c.Fields {
		if c.Fields[i].Sym.Name == "f" {
			f = &c.Fields[i]
		}
	}

	if f == nil || len(f.Annotations) != 1 || len(f.Annotations[0].Args) != 1 {
		t.Fatalf("expected field f to carry one @Tags annotation with one argument, got %+v", f)
	}

	v := f.Annotations[0].Args[0].Value
	if v == nil || v.Kind != sym.ConstArray || len(v.Elements) != 1 || v.Elements[0].Str != "x" {
		t.Fatalf("expected the bare value to auto-wrap into a one-element array, got %+v", v)
	}
}

// TestConstBinderCastStringConstantStaysConstant covers the one reference-type
// cast JLS 15.28 allows in a constant expression: (String) of an
// already-String-typed constant.
func TestConstBinderCastStringConstantStaysConstant(t *testing.T) {
	unit := &tree.CompilationUnit{
		Package: "a",
		Types: []tree.TypeDecl{
			{
				Kind: tree.KindClass, Name: "C",
				Fields: []tree.FieldDecl{
					{
						Name: "X", Access: classfile.AccStatic | classfile.AccFinal, Type: stringTypeExpr(),
						Init: tree.Cast{Type: stringTypeExpr(), Target: tree.Literal{Kind: tree.LiteralString, StringVal: "hi"}},
					},
				},
			},
		},
	}

	stb, cbd, log := buildClasses(t, []*tree.CompilationUnit{javaLangStringUnit(), unit})
	cbd.BindAll()

	if log.HasErrors() {
		t.Fatalf("unexpected errors: %v", log.Err())
	}

	c := stb[sym.NewClassSymbol("a/C")]

	var x *sym.Value

	for i := range c.Fields {
		if c.Fields[i].Sym.Name == "X" {
			x = c.Fields[i].Value
		}
	}

	if x == nil || x.Kind != sym.ConstString || x.Str != "hi" {
		t.Fatalf("expected X folded to the String constant \"hi\", got %+v", x)
	}
}

// TestConstBinderCastIntToStringIsNotConstant covers the bug this guards
// against: (String) of a non-String constant must not silently succeed as a
// mislabeled int.
func TestConstBinderCastIntToStringIsNotConstant(t *testing.T) {
	unit := &tree.CompilationUnit{
		Package: "a",
		Types: []tree.TypeDecl{
			{
				Kind: tree.KindClass, Name: "C",
				Fields: []tree.FieldDecl{
					{
						Name: "X", Access: classfile.AccStatic | classfile.AccFinal, Type: stringTypeExpr(),
						Init: tree.Cast{Type: stringTypeExpr(), Target: intLit(5)},
					},
				},
			},
		},
	}

	stb, cbd, log := buildClasses(t, []*tree.CompilationUnit{javaLangStringUnit(), unit})
	cbd.BindAll()

	c := stb[sym.NewClassSymbol("a/C")]

	var x *sym.Value

	for i := range c.Fields {
		if c.Fields[i].Sym.Name == "X" {
			x = c.Fields[i].Value
		}
	}

	if x != nil {
		t.Fatalf("expected (String) 5 to not fold to a constant, got %+v", x)
	}
}

// TestConstBinderCastToArbitraryReferenceTypeIsNotConstant covers a
// reference-type cast target other than String, which JLS 15.28 never
// permits in a constant expression.
func TestConstBinderCastToArbitraryReferenceTypeIsNotConstant(t *testing.T) {
	objType := tree.ClassTypeExpr{Segments: []tree.ClassTypeExprSegment{{Name: "Object"}}}

	unit := &tree.CompilationUnit{
		Package: "a",
		Types: []tree.TypeDecl{
			{
				Kind: tree.KindClass, Name: "C",
				Fields: []tree.FieldDecl{
					{
						Name: "X", Access: classfile.AccStatic | classfile.AccFinal, Type: objType,
						Init: tree.Cast{Type: objType, Target: intLit(5)},
					},
				},
			},
		},
	}

	lang := javaLangStringUnit()
	lang.Types = append(lang.Types, tree.TypeDecl{Kind: tree.KindClass, Name: "Object"})

	stb, cbd, log := buildClasses(t, []*tree.CompilationUnit{lang, unit})
	cbd.BindAll()

	c := stb[sym.NewClassSymbol("a/C")]

	var x *sym.Value

	for i := range c.Fields {
		if c.Fields[i].Sym.Name == "X" {
			x = c.Fields[i].Value
		}
	}

	if x != nil {
		t.Fatalf("expected (Object) 5 to not fold to a constant, got %+v", x)
	}
}
