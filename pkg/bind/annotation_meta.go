package bind

import (
	"strings"

	"github.com/google/turbine/pkg/bound"
	"github.com/google/turbine/pkg/sym"
	"github.com/google/turbine/pkg/tree"
)

// defaultTargetKinds is the JLS 9.6.4.1 default applicable-target set used
// when an annotation type declares no @Target: every element kind except
// TYPE_PARAMETER and TYPE_USE.
func defaultTargetKinds() []string {
	return []string{
		"ANNOTATION_TYPE", "CONSTRUCTOR", "FIELD", "LOCAL_VARIABLE",
		"METHOD", "PACKAGE", "PARAMETER", "TYPE", "MODULE",
	}
}

// applyAnnotationMetadata scans an annotation-kind declaration's own
// annotations for @Retention/@Target/@Repeatable (§4.H "annotation metadata
// scanning"). This runs at TypeBinder time, before ConstEvaluator, so
// values are recovered structurally (an enum constant reference's simple
// name, a class literal's written name) rather than through full constant
// folding; this is sufficient for well-formed meta-annotations, which are
// always a bare enum constant, an array of them, or a class literal.
func applyAnnotationMetadata(stb *bound.SourceTypeBoundClass) {
	if stb.Kind != tree.KindAnnotation {
		return
	}

	stb.RetentionPolicy = "CLASS"
	stb.TargetKinds = defaultTargetKinds()

	for _, au := range stb.Annotations {
		if len(au.Args) == 0 {
			continue
		}

		switch au.Sym.BinaryName() {
		case "java/lang/annotation/Retention":
			if name, ok := enumConstantName(au.Args[0].Expr); ok {
				stb.RetentionPolicy = name
			}
		case "java/lang/annotation/Target":
			stb.TargetKinds = extractTargetKinds(au.Args[0].Expr)
		case "java/lang/annotation/Repeatable":
			if cl, ok := au.Args[0].Expr.(tree.ClassLiteral); ok {
				if ct, ok := cl.Type.(tree.ClassTypeExpr); ok && len(ct.Segments) > 0 {
					stb.RepeatableContainer = sym.NewClassSymbol(joinSegmentNames(ct.Segments))
				}
			}
		}
	}
}

func extractTargetKinds(e tree.Expression) []string {
	if arr, ok := e.(tree.ArrayInit); ok {
		kinds := make([]string, 0, len(arr.Elements))

		for _, el := range arr.Elements {
			if name, ok := enumConstantName(el); ok {
				kinds = append(kinds, name)
			}
		}

		return kinds
	}

	if name, ok := enumConstantName(e); ok {
		return []string{name}
	}

	return nil
}

// enumConstantName recovers the simple name of a (possibly qualified) enum
// constant reference, e.g. both "RUNTIME" and "RetentionPolicy.RUNTIME"
// yield "RUNTIME".
func enumConstantName(e tree.Expression) (string, bool) {
	switch v := e.(type) {
	case tree.Ident:
		return v.Name, true
	case tree.FieldAccess:
		return v.Name, true
	default:
		return "", false
	}
}

// joinSegmentNames approximates a binary name from a written (not yet
// canonicalized) class type expression; Disambiguate corrects qualifiers
// to the declaring class once the full hierarchy is available, but a
// @Repeatable container reference is only ever a simple or already-
// canonical name in practice, so this approximation is not revisited.
func joinSegmentNames(segs []tree.ClassTypeExprSegment) string {
	names := make([]string, len(segs))
	for i, s := range segs {
		names[i] = s.Name
	}

	return strings.Join(names, "/")
}
