// Package bind implements the core binder phases (§4.E-§4.I): walking the
// collaborator AST (pkg/tree) into progressively richer bound.* layers,
// culminating in the canonical, disambiguated SourceTypeBoundClass that
// pkg/lower reads.
package bind

import (
	"github.com/google/turbine/internal/util"
	"github.com/google/turbine/pkg/bound"
	"github.com/google/turbine/pkg/classfile"
	"github.com/google/turbine/pkg/diag"
	"github.com/google/turbine/pkg/index"
	"github.com/google/turbine/pkg/sym"
	"github.com/google/turbine/pkg/tree"
)

// implicitFlags returns the kind-mandated access flags of §4.E's table,
// given whether any enum constant in an enum declaration has a body.
func implicitFlags(kind tree.TypeKind, anyEnumConstantHasBody bool) uint16 {
	switch kind {
	case tree.KindClass:
		return classfile.AccSuper
	case tree.KindInterface:
		return classfile.AccInterface | classfile.AccAbstract
	case tree.KindEnum:
		if anyEnumConstantHasBody {
			return classfile.AccEnum | classfile.AccSuper | classfile.AccAbstract
		}

		return classfile.AccEnum | classfile.AccSuper | classfile.AccFinal
	case tree.KindAnnotation:
		return classfile.AccInterface | classfile.AccAbstract | classfile.AccAnnotation
	default:
		return 0
	}
}

// Preprocess walks every compilation unit's type declarations (§4.E),
// minting a ClassSymbol per declaration, desugaring implicit access flags,
// synthesizing a package-info declaration where the package itself carries
// annotations, and populating a TopLevelIndex with every minted symbol.
// Duplicate declarations (same binary name, or same simple name twice
// inside one enclosing class) are logged as DUPLICATE_DECLARATION and the
// later declaration is skipped.
// Roots, aligned 1:1 with units, lists the ClassSymbols minted directly at
// each compilation unit's top level (including a synthesized package-info),
// letting a later pass (BuildScopes) walk Children to reach every nested
// class declared in that unit without re-deriving binary names.
func Preprocess(units []*tree.CompilationUnit, log *diag.Log) (*index.TopLevelIndex, map[sym.ClassSymbol]*bound.SourceBoundClass, [][]sym.ClassSymbol) {
	idx := index.NewTopLevelIndex()
	classes := make(map[sym.ClassSymbol]*bound.SourceBoundClass)
	roots := make([][]sym.ClassSymbol, len(units))

	for i, u := range units {
		decls := u.Types

		if len(u.PackageAnnotations) > 0 {
			decls = append(append([]tree.TypeDecl(nil), u.Types...), syntheticPackageInfo(u.PackageAnnotations))
		}

		for _, d := range decls {
			cs := mintClass(u.Package, d, util.None[sym.ClassSymbol](), false, idx, classes, log)
			if cs.IsValid() {
				roots[i] = append(roots[i], cs)
			}
		}
	}

	return idx, classes, roots
}

// syntheticPackageInfo builds the implicit "package-info" interface
// declaration §4.E mints when a package declares annotations.
func syntheticPackageInfo(annos []tree.Annotation) tree.TypeDecl {
	return tree.TypeDecl{
		Kind:        tree.KindInterface,
		Name:        "package-info",
		Access:      classfile.AccSynthetic,
		Annotations: annos,
	}
}

func mintClass(
	pkg string,
	decl tree.TypeDecl,
	owner util.Option[sym.ClassSymbol],
	inheritedStrict bool,
	idx *index.TopLevelIndex,
	classes map[sym.ClassSymbol]*bound.SourceBoundClass,
	log *diag.Log,
) sym.ClassSymbol {
	var binary string

	if owner.HasValue() {
		binary = owner.Unwrap().BinaryName() + "$" + decl.Name
	} else if pkg != "" {
		binary = pkg + "/" + decl.Name
	} else {
		binary = decl.Name
	}

	cs := sym.NewClassSymbol(binary)

	if _, dup := classes[cs]; dup {
		log.Error(diag.DuplicateDeclaration, binary, "duplicate declaration of %s", binary)
		return sym.ClassSymbol{}
	}

	anyBody := false

	for _, ec := range decl.EnumConstants {
		if ec.HasBody {
			anyBody = true
			break
		}
	}

	access := decl.Access | implicitFlags(decl.Kind, anyBody)

	if owner.HasValue() {
		ownerClass := classes[owner.Unwrap()]
		if ownerClass != nil && (ownerClass.Kind == tree.KindInterface || ownerClass.Kind == tree.KindAnnotation) {
			// "Inside an interface/annotation nested types are implicitly
			// public static" (§4.E).
			access |= classfile.AccPublic | classfile.AccStatic
		}

		if decl.Kind == tree.KindEnum || decl.Kind == tree.KindInterface || decl.Kind == tree.KindAnnotation {
			// "nested enums/interfaces/annotations are implicitly static".
			access |= classfile.AccStatic
		}
	}

	if inheritedStrict {
		access |= classfile.AccStrict
	}

	sb := &bound.SourceBoundClass{
		Sym:      cs,
		Owner:    owner,
		Access:   access,
		Kind:     decl.Kind,
		Children: make(map[string]sym.ClassSymbol),
		Decl:     &decl,
	}

	classes[cs] = sb
	idx.Insert(cs)

	if owner.HasValue() {
		if parent, ok := classes[owner.Unwrap()]; ok {
			if _, exists := parent.Children[decl.Name]; exists {
				log.Error(diag.DuplicateDeclaration, binary, "duplicate nested type name %q in %s", decl.Name, owner.Unwrap())
			} else {
				parent.Children[decl.Name] = cs
			}
		}
	}

	strictForChildren := access&classfile.AccStrict != 0

	for _, m := range decl.Members {
		mintClass(pkg, m, util.Some(cs), strictForChildren, idx, classes, log)
	}

	return cs
}
