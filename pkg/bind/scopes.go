package bind

import (
	"fmt"
	"strings"

	"github.com/google/turbine/pkg/bound"
	"github.com/google/turbine/pkg/diag"
	"github.com/google/turbine/pkg/index"
	"github.com/google/turbine/pkg/sym"
	"github.com/google/turbine/pkg/tree"
)

// BuildScopes layers each compilation unit's import scope over its package
// scope (§4.D), producing a PackageSourceBoundClass for every class the
// unit declares (its own top-level types and everything nested beneath
// them, reached through roots/Children). Resolution of an import that
// requires walking an inherited (rather than declared) nested-type chain is
// deferred: the hierarchy isn't known yet at this phase, so such an import
// is logged as SYMBOL_NOT_FOUND rather than guessed at.
func BuildScopes(
	units []*tree.CompilationUnit,
	classes map[sym.ClassSymbol]*bound.SourceBoundClass,
	roots [][]sym.ClassSymbol,
	topLevel *index.TopLevelIndex,
	log *diag.Log,
) map[sym.ClassSymbol]*bound.PackageSourceBoundClass {
	result := make(map[sym.ClassSymbol]*bound.PackageSourceBoundClass)

	for i, u := range units {
		singleImports := index.NewImportScope()
		memberImports := index.NewMemberImportIndex()

		var wildPackages []index.Scope

		for _, imp := range u.Imports {
			segments := strings.Split(imp.Path, ".")

			switch {
			case imp.Static && imp.OnDemand:
				owner, _, err := resolveImportPath(classes, topLevel, segments)
				if err != nil {
					log.Warn(diag.SymbolNotFound, u.Package, "%s", err)
					continue
				}

				memberImports.AddOnDemand(owner)

			case imp.Static:
				if len(segments) < 2 {
					log.Warn(diag.SymbolNotFound, u.Package, "malformed static import %q", imp.Path)
					continue
				}

				ownerSegs, member := segments[:len(segments)-1], segments[len(segments)-1]

				owner, _, err := resolveImportPath(classes, topLevel, ownerSegs)
				if err != nil {
					log.Warn(diag.SymbolNotFound, u.Package, "%s", err)
					continue
				}

				memberImports.AddSingle(member, owner)

			case imp.OnDemand:
				wildPackages = append(wildPackages, topLevel.PackageScope(strings.Join(segments, "/")))

			default:
				cs, canonical, err := resolveImportPath(classes, topLevel, segments)
				if err != nil {
					log.Error(diag.SymbolNotFound, u.Package, "%s", err)
					continue
				}

				simpleName := segments[len(segments)-1]
				singleImports.Add(simpleName, cs, canonical)

				if !canonical {
					log.Warn(diag.SymbolNotFound, u.Package, "import %q does not name its declaring class (permitted but non-canonical)", imp.Path)
				}
			}
		}

		scope := index.NewCompoundScope(
			singleImports,
			topLevel.PackageScope(u.Package),
			index.NewWildImportScope(wildPackages...),
			topLevel.PackageScope("java/lang"),
		)

		for _, root := range roots[i] {
			attach(root, u.Package, scope, memberImports, classes, result)
		}
	}

	return result
}

// attach wraps cs and every class nested beneath it into a
// PackageSourceBoundClass sharing scope/memberImports, recursing through
// Children.
func attach(
	cs sym.ClassSymbol,
	pkg string,
	scope index.Scope,
	memberImports *index.MemberImportIndex,
	classes map[sym.ClassSymbol]*bound.SourceBoundClass,
	result map[sym.ClassSymbol]*bound.PackageSourceBoundClass,
) {
	sb, ok := classes[cs]
	if !ok {
		return
	}

	result[cs] = &bound.PackageSourceBoundClass{
		SourceBoundClass: *sb,
		Package:          pkg,
		Scope:            scope,
		MemberImports:    memberImports,
	}

	for _, child := range sb.Children {
		attach(child, pkg, scope, memberImports, classes, result)
	}
}

// resolveImportPath resolves a dotted import path through topLevel, then
// through declared (not inherited) nesting for any remaining components.
// canonical is always true on success: a path that would require climbing
// an inherited member chain is reported as an error instead of guessed at,
// since hierarchy information isn't available until HierarchyBinder runs.
func resolveImportPath(classes map[sym.ClassSymbol]*bound.SourceBoundClass, topLevel *index.TopLevelIndex, segments []string) (sym.ClassSymbol, bool, error) {
	root, ok := topLevel.Lookup(segments)
	if !ok {
		return sym.ClassSymbol{}, false, fmt.Errorf("bind: cannot resolve import %q", strings.Join(segments, "."))
	}

	current := root.Sym

	for _, name := range root.Remaining {
		sb, ok := classes[current]
		if !ok {
			return sym.ClassSymbol{}, false, fmt.Errorf("bind: cannot resolve nested import %q in %s", name, current)
		}

		child, ok := sb.Children[name]
		if !ok {
			return sym.ClassSymbol{}, false, fmt.Errorf(
				"bind: cannot resolve nested import %q in %s (inherited members are not available before hierarchy binding)",
				name, current,
			)
		}

		current = child
	}

	return current, true, nil
}
