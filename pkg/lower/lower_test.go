package lower

import (
	"testing"

	"github.com/google/turbine/pkg/bind"
	"github.com/google/turbine/pkg/bound"
	"github.com/google/turbine/pkg/classfile"
	"github.com/google/turbine/pkg/diag"
	"github.com/google/turbine/pkg/sym"
	"github.com/google/turbine/pkg/tree"
)

func classTypeExpr(names ...string) tree.ClassTypeExpr {
	segs := make([]tree.ClassTypeExprSegment, len(names))
	for i, n := range names {
		segs[i] = tree.ClassTypeExprSegment{Name: n}
	}

	return tree.ClassTypeExpr{Segments: segs}
}

func intLit(v int32) tree.Expression { return tree.Literal{Kind: tree.LiteralInt, IntVal: v} }

// javaLangUnit supplies minimal java/lang classes so unqualified references
// to String/Object/Deprecated resolve through the implicit java.lang scope;
// none of these fixtures load an actual classpath.
func javaLangUnit() *tree.CompilationUnit {
	return &tree.CompilationUnit{
		Package: "java/lang",
		Types: []tree.TypeDecl{
			{Kind: tree.KindClass, Name: "Object"},
			{Kind: tree.KindClass, Name: "String"},
			{Kind: tree.KindAnnotation, Name: "Deprecated"},
		},
	}
}

// buildAll runs the full binder pipeline through Disambiguate and returns the
// header and fully bound class sets a Lowerer needs.
func buildAll(t *testing.T, units []*tree.CompilationUnit) (map[sym.ClassSymbol]*bound.SourceHeaderBoundClass, map[sym.ClassSymbol]*bound.SourceTypeBoundClass) {
	t.Helper()

	log := diag.NewLog()
	idx, classes, roots := bind.Preprocess(units, log)
	psb := bind.BuildScopes(units, classes, roots, idx, log)
	headers := bind.NewHierarchyBinder(psb, nil, log).Bind()
	tb := bind.NewTypeBinder(headers)
	stb := bind.NewClassBinder(headers, log).BindAll()

	if log.HasErrors() {
		t.Fatalf("unexpected binding errors: %v", log.Err())
	}

	bind.NewConstBinder(stb, tb, log).BindAll()

	if log.HasErrors() {
		t.Fatalf("unexpected const-binding errors: %v", log.Err())
	}

	bind.CanonicalizeAll(headers, stb)
	bind.DisambiguateAll(stb, log)

	if log.HasErrors() {
		t.Fatalf("unexpected disambiguation errors: %v", log.Err())
	}

	return headers, stb
}

func TestLowerSimpleClassShape(t *testing.T) {
	unit := &tree.CompilationUnit{
		Package: "a",
		Types: []tree.TypeDecl{
			{
				Kind: tree.KindClass, Name: "C", Access: classfile.AccPublic,
				Fields: []tree.FieldDecl{
					{Name: "n", Access: classfile.AccPrivate, Type: tree.PrimitiveTypeExpr{Name: "int"}},
				},
				Methods: []tree.MethodDecl{
					{
						Name: "get", Access: classfile.AccPublic, Result: tree.PrimitiveTypeExpr{Name: "int"},
						HasBody: true,
					},
				},
			},
		},
	}

	headers, stb := buildAll(t, []*tree.CompilationUnit{unit})

	cf := NewLowerer(headers, stb).LowerOne(sym.NewClassSymbol("a/C"))
	if cf == nil {
		t.Fatalf("expected a ClassFile for a/C")
	}

	if cf.Name != "a/C" {
		t.Fatalf("expected Name a/C, got %s", cf.Name)
	}

	if cf.SuperName != "java/lang/Object" {
		t.Fatalf("expected implicit superclass java/lang/Object, got %s", cf.SuperName)
	}

	if len(cf.Fields) != 1 || cf.Fields[0].Name != "n" || cf.Fields[0].Descriptor != "I" {
		t.Fatalf("expected one int field n, got %+v", cf.Fields)
	}

	var got *classfile.MethodInfo

	for i := range cf.Methods {
		if cf.Methods[i].Name == "get" {
			got = &cf.Methods[i]
		}
	}

	if got == nil || got.Descriptor != "()I" {
		t.Fatalf("expected method get with descriptor ()I, got %+v", cf.Methods)
	}
}

func TestLowerConstantFieldEncodesConstantValue(t *testing.T) {
	unit := &tree.CompilationUnit{
		Package: "a",
		Types: []tree.TypeDecl{
			{
				Kind: tree.KindClass, Name: "C",
				Fields: []tree.FieldDecl{
					{
						Name: "X", Access: classfile.AccStatic | classfile.AccFinal,
						Type: tree.PrimitiveTypeExpr{Name: "int"}, Init: intLit(7),
					},
				},
			},
		},
	}

	headers, stb := buildAll(t, []*tree.CompilationUnit{unit})

	cf := NewLowerer(headers, stb).LowerOne(sym.NewClassSymbol("a/C"))

	var x *classfile.FieldInfo

	for i := range cf.Fields {
		if cf.Fields[i].Name == "X" {
			x = &cf.Fields[i]
		}
	}

	if x == nil || x.ConstantValue == nil {
		t.Fatalf("expected X to carry a ConstantValue, got %+v", x)
	}

	if x.ConstantValue.Kind != classfile.CVInt || x.ConstantValue.Int != 7 {
		t.Fatalf("expected ConstantValue int 7, got %+v", x.ConstantValue)
	}
}

// TestLowerAnnotationRetentionPartitioning exercises all three retention
// policies: SOURCE dropped entirely, CLASS invisible, RUNTIME visible.
func TestLowerAnnotationRetentionPartitioning(t *testing.T) {
	unit := &tree.CompilationUnit{
		Package: "a",
		Types: []tree.TypeDecl{
			{Kind: tree.KindAnnotation, Name: "AtSource"},
			{Kind: tree.KindAnnotation, Name: "AtClass"},
			{Kind: tree.KindAnnotation, Name: "AtRuntime"},
			{
				Kind: tree.KindClass, Name: "C",
				Annotations: []tree.Annotation{
					{Type: classTypeExpr("AtSource")},
					{Type: classTypeExpr("AtClass")},
					{Type: classTypeExpr("AtRuntime")},
				},
			},
		},
	}

	headers, stb := buildAll(t, []*tree.CompilationUnit{unit})

	stb[sym.NewClassSymbol("a/AtSource")].RetentionPolicy = "SOURCE"
	stb[sym.NewClassSymbol("a/AtClass")].RetentionPolicy = "CLASS"
	stb[sym.NewClassSymbol("a/AtRuntime")].RetentionPolicy = "RUNTIME"

	cf := NewLowerer(headers, stb).LowerOne(sym.NewClassSymbol("a/C"))

	if len(cf.Annotations) != 1 || cf.Annotations[0].Type != classAnnotationDescriptor(sym.NewClassSymbol("a/AtRuntime")) {
		t.Fatalf("expected exactly the RUNTIME annotation visible, got %+v", cf.Annotations)
	}

	if len(cf.InvisibleAnnotations) != 1 || cf.InvisibleAnnotations[0].Type != classAnnotationDescriptor(sym.NewClassSymbol("a/AtClass")) {
		t.Fatalf("expected exactly the CLASS annotation invisible, got %+v", cf.InvisibleAnnotations)
	}
}

func TestLowerDeprecatedFlag(t *testing.T) {
	unit := &tree.CompilationUnit{
		Package: "a",
		Types: []tree.TypeDecl{
			{
				Kind: tree.KindClass, Name: "C",
				Annotations: []tree.Annotation{{Type: classTypeExpr("Deprecated")}},
			},
		},
	}

	headers, stb := buildAll(t, []*tree.CompilationUnit{javaLangUnit(), unit})

	cf := NewLowerer(headers, stb).LowerOne(sym.NewClassSymbol("a/C"))

	if !cf.Deprecated {
		t.Fatalf("expected C to be marked Deprecated")
	}
}

// TestLowerNestHostAndMembers exercises a two-level nest: the top-level
// class is the host (NestMembers listing both nested classes, no NestHost
// of its own); every nested class gets a NestHost pointing at the top-level
// ancestor, never NestMembers.
func TestLowerNestHostAndMembers(t *testing.T) {
	unit := &tree.CompilationUnit{
		Package: "a",
		Types: []tree.TypeDecl{
			{
				Kind: tree.KindClass, Name: "Outer",
				Members: []tree.TypeDecl{
					{
						Kind: tree.KindClass, Name: "Inner",
						Members: []tree.TypeDecl{
							{Kind: tree.KindClass, Name: "Innermost"},
						},
					},
				},
			},
		},
	}

	headers, stb := buildAll(t, []*tree.CompilationUnit{unit})
	lowerer := NewLowerer(headers, stb)

	outer := lowerer.LowerOne(sym.NewClassSymbol("a/Outer"))
	if outer.NestHost != "" {
		t.Fatalf("expected the top-level class to have no NestHost, got %q", outer.NestHost)
	}

	want := map[string]bool{"a/Outer$Inner": true, "a/Outer$Inner$Innermost": true}

	if len(outer.NestMembers) != len(want) {
		t.Fatalf("expected %d nest members, got %+v", len(want), outer.NestMembers)
	}

	for _, m := range outer.NestMembers {
		if !want[m] {
			t.Fatalf("unexpected nest member %q", m)
		}
	}

	inner := lowerer.LowerOne(sym.NewClassSymbol("a/Outer$Inner"))
	if inner.NestHost != "a/Outer" {
		t.Fatalf("expected Inner's NestHost to be a/Outer, got %q", inner.NestHost)
	}

	if len(inner.NestMembers) != 0 {
		t.Fatalf("expected Inner to carry no NestMembers of its own, got %+v", inner.NestMembers)
	}

	innermost := lowerer.LowerOne(sym.NewClassSymbol("a/Outer$Inner$Innermost"))
	if innermost.NestHost != "a/Outer" {
		t.Fatalf("expected Innermost's NestHost to be the top-level a/Outer, got %q", innermost.NestHost)
	}
}

// TestLowerInnerClassesFromAnnotationArgument exercises the "referenced only
// through an annotation" case: C never mentions Outer.Inner in its own
// supertype or member types, only as a @UsesClass(Inner.class) argument.
func TestLowerInnerClassesFromAnnotationArgument(t *testing.T) {
	unit := &tree.CompilationUnit{
		Package: "a",
		Types: []tree.TypeDecl{
			{
				Kind: tree.KindAnnotation, Name: "UsesClass",
				Methods: []tree.MethodDecl{
					{Name: "value", Result: classTypeExpr("Class")},
				},
			},
			{
				Kind: tree.KindClass, Name: "Outer",
				Members: []tree.TypeDecl{
					{Kind: tree.KindClass, Name: "Inner"},
				},
			},
			{
				Kind: tree.KindClass, Name: "C",
				Annotations: []tree.Annotation{
					{
						Type: classTypeExpr("UsesClass"),
						Args: []tree.AnnotationArgExpr{{Value: tree.ClassLiteral{Type: classTypeExpr("Outer", "Inner")}}},
					},
				},
			},
		},
	}

	lang := javaLangUnit()
	lang.Types = append(lang.Types, tree.TypeDecl{Kind: tree.KindClass, Name: "Class"})

	headers, stb := buildAll(t, []*tree.CompilationUnit{lang, unit})

	cf := NewLowerer(headers, stb).LowerOne(sym.NewClassSymbol("a/C"))

	found := false

	for _, ic := range cf.InnerClasses {
		if ic.InnerName == "a/Outer$Inner" {
			found = true
		}
	}

	if !found {
		t.Fatalf("expected an InnerClasses entry for a/Outer$Inner referenced only via an annotation argument, got %+v", cf.InnerClasses)
	}
}
