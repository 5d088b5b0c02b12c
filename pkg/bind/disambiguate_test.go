package bind

import (
	"testing"

	"github.com/google/turbine/pkg/diag"
	"github.com/google/turbine/pkg/sym"
	"github.com/google/turbine/pkg/tree"
)

func TestDisambiguateGroupsRepeatableAnnotations(t *testing.T) {
	unit := &tree.CompilationUnit{
		Package: "a",
		Types: []tree.TypeDecl{
			{Kind: tree.KindAnnotation, Name: "Tags"},
			{
				Kind: tree.KindAnnotation, Name: "TagList",
				Methods: []tree.MethodDecl{
					{Name: "value", Result: tree.ArrayTypeExpr{Element: classTypeExpr("Tags")}},
				},
			},
			{
				Kind: tree.KindClass, Name: "C",
				Fields: []tree.FieldDecl{
					{
						Name: "f", Type: tree.PrimitiveTypeExpr{Name: "int"},
						Annotations: []tree.Annotation{
							{Type: classTypeExpr("Tags")},
							{Type: classTypeExpr("Tags")},
						},
					},
				},
			},
		},
	}

	stb, cbd, log := buildClasses(t, []*tree.CompilationUnit{unit})

	tagsSym := sym.NewClassSymbol("a/Tags")
	stb[tagsSym].RepeatableContainer = sym.NewClassSymbol("a/TagList")
	stb[tagsSym].TargetKinds = []string{"FIELD"}

	cbd.BindAll()

	if log.HasErrors() {
		t.Fatalf("unexpected errors before disambiguation: %v", log.Err())
	}

	DisambiguateAll(stb, log)

	if log.HasErrors() {
		t.Fatalf("unexpected errors: %v", log.Err())
	}

	c := stb[sym.NewClassSymbol("a/C")]

	for i := range c.Fields {
		if c.Fields[i].Sym.Name != "f" {
			continue
		}

		if len(c.Fields[i].Annotations) != 1 {
			t.Fatalf("expected the two @Tags uses to collapse into one @TagList, got %d annotations", len(c.Fields[i].Annotations))
		}

		got := c.Fields[i].Annotations[0].Sym

		if got != sym.NewClassSymbol("a/TagList") {
			t.Fatalf("expected the grouped annotation to be a/TagList, got %s", got)
		}

		if len(c.Fields[i].Annotations[0].Args) != 1 || c.Fields[i].Annotations[0].Args[0].Value.Kind != sym.ConstArray {
			t.Fatalf("expected a single array-valued argument, got %+v", c.Fields[i].Annotations[0].Args)
		}

		if len(c.Fields[i].Annotations[0].Args[0].Value.Elements) != 2 {
			t.Fatalf("expected 2 grouped elements, got %d", len(c.Fields[i].Annotations[0].Args[0].Value.Elements))
		}
	}
}

func TestDisambiguateFlagsNonrepeatableRepeat(t *testing.T) {
	unit := &tree.CompilationUnit{
		Package: "a",
		Types: []tree.TypeDecl{
			{Kind: tree.KindAnnotation, Name: "Tag"},
			{
				Kind: tree.KindClass, Name: "C",
				Fields: []tree.FieldDecl{
					{
						Name: "f", Type: tree.PrimitiveTypeExpr{Name: "int"},
						Annotations: []tree.Annotation{
							{Type: classTypeExpr("Tag")},
							{Type: classTypeExpr("Tag")},
						},
					},
				},
			},
		},
	}

	stb, cbd, log := buildClasses(t, []*tree.CompilationUnit{unit})
	cbd.BindAll()

	DisambiguateAll(stb, log)

	if !log.HasErrors() {
		t.Fatalf("expected a NONREPEATABLE_ANNOTATION diagnostic")
	}

	found := false

	for _, d := range log.Diagnostics() {
		if d.Code == diag.NonrepeatableAnnotation {
			found = true
		}
	}

	if !found {
		t.Fatalf("expected NONREPEATABLE_ANNOTATION among diagnostics, got %v", log.Diagnostics())
	}
}

func TestDisambiguateSplitsTypeUseAnnotation(t *testing.T) {
	unit := &tree.CompilationUnit{
		Package: "a",
		Types: []tree.TypeDecl{
			{Kind: tree.KindAnnotation, Name: "NonNull"},
			{
				Kind: tree.KindClass, Name: "C",
				Fields: []tree.FieldDecl{
					{
						Name: "f", Type: classTypeExpr("String"),
						Annotations: []tree.Annotation{{Type: classTypeExpr("NonNull")}},
					},
				},
			},
		},
	}

	stb, cbd, log := buildClasses(t, []*tree.CompilationUnit{javaLangStringUnit(), unit})

	nonNull := sym.NewClassSymbol("a/NonNull")
	stb[nonNull].TargetKinds = []string{"FIELD", "TYPE_USE"}

	cbd.BindAll()

	DisambiguateAll(stb, log)

	if log.HasErrors() {
		t.Fatalf("unexpected errors: %v", log.Err())
	}

	c := stb[sym.NewClassSymbol("a/C")]

	for i := range c.Fields {
		if c.Fields[i].Sym.Name != "f" {
			continue
		}

		if len(c.Fields[i].Annotations) != 1 {
			t.Fatalf("expected @NonNull to remain a declaration annotation too, got %d", len(c.Fields[i].Annotations))
		}

		if len(c.Fields[i].TypeAnnotations) != 1 {
			t.Fatalf("expected @NonNull to also be classified as a type-use annotation, got %d", len(c.Fields[i].TypeAnnotations))
		}

		ct, ok := c.Fields[i].Type.(sym.ClassType)
		if !ok || len(ct.Components[0].Annotations) != 1 {
			t.Fatalf("expected the type-use annotation attached to the type's left-most component, got %+v", c.Fields[i].Type)
		}
	}
}
