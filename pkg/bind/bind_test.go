package bind

import (
	"testing"

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

func TestPipelineSimpleHierarchy(t *testing.T) {
	unitA := &tree.CompilationUnit{
		Package: "a",
		Types: []tree.TypeDecl{
			{Kind: tree.KindClass, Name: "Base", Access: 0x1},
			{
				Kind: tree.KindClass, Name: "Sub", Access: 0x1,
				Extends: classTypeExpr("Base"),
			},
		},
	}

	log := diag.NewLog()
	idx, classes, roots := Preprocess([]*tree.CompilationUnit{unitA}, log)

	if log.HasErrors() {
		t.Fatalf("unexpected preprocess errors: %v", log.Err())
	}

	psb := BuildScopes([]*tree.CompilationUnit{unitA}, classes, roots, idx, log)
	if log.HasErrors() {
		t.Fatalf("unexpected scope errors: %v", log.Err())
	}

	hb := NewHierarchyBinder(psb, nil, log)
	headers := hb.Bind()

	if log.HasErrors() {
		t.Fatalf("unexpected hierarchy errors: %v", log.Err())
	}

	sub := sym.NewClassSymbol("a/Sub")

	h, ok := headers[sub]
	if !ok {
		t.Fatalf("a/Sub missing from hierarchy result")
	}

	if h.Superclass != sym.NewClassSymbol("a/Base") {
		t.Fatalf("expected a/Sub to extend a/Base, got %v", h.Superclass)
	}

	base := sym.NewClassSymbol("a/Base")

	baseHeader, ok := headers[base]
	if !ok {
		t.Fatalf("a/Base missing from hierarchy result")
	}

	if baseHeader.Superclass != sym.NewClassSymbol("java/lang/Object") {
		t.Fatalf("expected a/Base to implicitly extend Object, got %v", baseHeader.Superclass)
	}

	cbind := NewClassBinder(headers, log)
	stb := cbind.BindAll()

	if log.HasErrors() {
		t.Fatalf("unexpected class-binding errors: %v", log.Err())
	}

	subBound, ok := stb[sub]
	if !ok {
		t.Fatalf("a/Sub missing from bound result")
	}

	// Sub has no declared constructor, so a synthetic default one is added.
	foundCtor := false

	for _, m := range subBound.Methods {
		if m.IsConstructor && m.Synthetic {
			foundCtor = true
		}
	}

	if !foundCtor {
		t.Fatalf("expected a synthesized default constructor on a/Sub")
	}
}

func TestPipelineCyclicHierarchyDetected(t *testing.T) {
	unit := &tree.CompilationUnit{
		Package: "a",
		Types: []tree.TypeDecl{
			{Kind: tree.KindClass, Name: "X", Extends: classTypeExpr("Y")},
			{Kind: tree.KindClass, Name: "Y", Extends: classTypeExpr("X")},
		},
	}

	log := diag.NewLog()
	idx, classes, roots := Preprocess([]*tree.CompilationUnit{unit}, log)
	psb := BuildScopes([]*tree.CompilationUnit{unit}, classes, roots, idx, log)

	hb := NewHierarchyBinder(psb, nil, log)
	headers := hb.Bind()

	if !log.HasErrors() {
		t.Fatalf("expected a CYCLIC_HIERARCHY diagnostic")
	}

	foundCycle := false

	for _, d := range log.Diagnostics() {
		if d.Code == diag.CyclicHierarchy {
			foundCycle = true
		}
	}

	if !foundCycle {
		t.Fatalf("expected CYCLIC_HIERARCHY among diagnostics, got %v", log.Diagnostics())
	}

	if _, ok := headers[sym.NewClassSymbol("a/X")]; ok {
		t.Fatalf("a/X should not have completed given the cycle")
	}
}

func TestPreprocessDuplicateDeclaration(t *testing.T) {
	unit := &tree.CompilationUnit{
		Package: "a",
		Types: []tree.TypeDecl{
			{Kind: tree.KindClass, Name: "Dup"},
			{Kind: tree.KindClass, Name: "Dup"},
		},
	}

	log := diag.NewLog()
	Preprocess([]*tree.CompilationUnit{unit}, log)

	if !log.HasErrors() {
		t.Fatalf("expected a DUPLICATE_DECLARATION diagnostic")
	}
}

func TestEnumSynthesizesConstructorAndValues(t *testing.T) {
	unit := &tree.CompilationUnit{
		Package: "a",
		Types: []tree.TypeDecl{
			{
				Kind: tree.KindEnum, Name: "Color",
				EnumConstants: []tree.EnumConstant{{Name: "RED"}, {Name: "GREEN"}},
			},
		},
	}

	log := diag.NewLog()
	idx, classes, roots := Preprocess([]*tree.CompilationUnit{unit}, log)
	psb := BuildScopes([]*tree.CompilationUnit{unit}, classes, roots, idx, log)
	headers := NewHierarchyBinder(psb, nil, log).Bind()
	stb := NewClassBinder(headers, log).BindAll()

	if log.HasErrors() {
		t.Fatalf("unexpected errors: %v", log.Err())
	}

	color := stb[sym.NewClassSymbol("a/Color")]
	if color == nil {
		t.Fatalf("a/Color missing from bound result")
	}

	var hasCtor, hasValues, hasValueOf bool

	for _, m := range color.Methods {
		switch {
		case m.IsConstructor:
			hasCtor = true
		case m.Sym.Name == "values":
			hasValues = true
		case m.Sym.Name == "valueOf":
			hasValueOf = true
		}
	}

	if !hasCtor || !hasValues || !hasValueOf {
		t.Fatalf("expected synthesized enum constructor/values/valueOf, got methods %+v", color.Methods)
	}

	var redCount int

	for _, f := range color.Fields {
		if f.Sym.Name == "RED" || f.Sym.Name == "GREEN" {
			redCount++
		}
	}

	if redCount != 2 {
		t.Fatalf("expected 2 enum constant fields, got %d", redCount)
	}
}
