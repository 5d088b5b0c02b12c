package bind

import (
	"testing"

	"github.com/google/turbine/pkg/diag"
	"github.com/google/turbine/pkg/sym"
	"github.com/google/turbine/pkg/tree"
)

// TestCanonicalizeRebuildsEnclosingChain exercises the enclosing-instance
// inference case of §4.I: "Inner" referenced by simple name from inside its
// own outer class binds (via TypeBinder) to a one-component ClassType;
// Canonicalize must rebuild the full "Outer.Inner" qualifier chain.
func TestCanonicalizeRebuildsEnclosingChain(t *testing.T) {
	unit := &tree.CompilationUnit{
		Package: "a",
		Types: []tree.TypeDecl{
			{
				Kind: tree.KindClass, Name: "Outer",
				Members: []tree.TypeDecl{
					{Kind: tree.KindClass, Name: "Inner"},
				},
				Fields: []tree.FieldDecl{
					{Name: "f", Type: classTypeExpr("Inner")},
				},
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

	CanonicalizeAll(headers, stb)

	outer := stb[sym.NewClassSymbol("a/Outer")]
	if outer == nil {
		t.Fatalf("a/Outer missing from bound result")
	}

	var fieldType sym.Type

	for i := range outer.Fields {
		if outer.Fields[i].Sym.Name == "f" {
			fieldType = outer.Fields[i].Type
		}
	}

	ct, ok := fieldType.(sym.ClassType)
	if !ok {
		t.Fatalf("expected f's type to be a class type, got %T", fieldType)
	}

	if len(ct.Components) != 2 {
		t.Fatalf("expected a 2-component Outer.Inner qualifier chain, got %v", ct.Components)
	}

	if ct.Components[0].Sym != sym.NewClassSymbol("a/Outer") || ct.Components[1].Sym != sym.NewClassSymbol("a/Outer$Inner") {
		t.Fatalf("unexpected canonicalized chain: %v", ct.Components)
	}
}
