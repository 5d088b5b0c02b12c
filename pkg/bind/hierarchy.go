package bind

import (
	"fmt"

	"github.com/google/turbine/pkg/bound"
	"github.com/google/turbine/pkg/diag"
	"github.com/google/turbine/pkg/env"
	"github.com/google/turbine/pkg/index"
	"github.com/google/turbine/pkg/sym"
	"github.com/google/turbine/pkg/tree"
)

// hierarchyEnv is the LazyEnv instantiation HierarchyBinder forces: binding
// one class's header may need another's, which is exactly what makes a
// LazyEnv (rather than a plain topological sort) the right tool (§4.F).
type hierarchyEnv = env.LazyEnv[sym.ClassSymbol, *bound.SourceHeaderBoundClass]

// HierarchyBinder resolves each source class's superclass, interfaces and
// type parameter symbols (§4.F), without yet binding full generic Types
// (TypeBinder's job). It only needs the declared supertype names to be
// resolvable through the class's own Scope plus nested-type lookups on
// other source classes; classpath supertypes are served through the
// optional fallback env.
type HierarchyBinder struct {
	classes  map[sym.ClassSymbol]*bound.PackageSourceBoundClass
	fallback env.Env[sym.ClassSymbol, *bound.SourceHeaderBoundClass]
	log      *diag.Log
}

// NewHierarchyBinder constructs a HierarchyBinder over classes. fallback
// resolves headers for classes HierarchyBinder doesn't own (i.e. classpath
// classes); it may be nil, in which case a superclass or interface outside
// classes is reported as CANNOT_RESOLVE.
func NewHierarchyBinder(classes map[sym.ClassSymbol]*bound.PackageSourceBoundClass, fallback env.Env[sym.ClassSymbol, *bound.SourceHeaderBoundClass], log *diag.Log) *HierarchyBinder {
	return &HierarchyBinder{classes: classes, fallback: fallback, log: log}
}

// Bind completes every class's header, logging CYCLIC_HIERARCHY for classes
// caught in an inheritance cycle and CANNOT_RESOLVE for any other failure,
// returning only the classes that completed successfully.
func (h *HierarchyBinder) Bind() map[sym.ClassSymbol]*bound.SourceHeaderBoundClass {
	lenv := env.NewLazyEnv[sym.ClassSymbol, *bound.SourceHeaderBoundClass](h.fallback)

	for cs := range h.classes {
		cs := cs
		lenv.Put(cs, func(k sym.ClassSymbol, self *hierarchyEnv) (*bound.SourceHeaderBoundClass, error) {
			return h.complete(k, self)
		})
	}

	result := make(map[sym.ClassSymbol]*bound.SourceHeaderBoundClass, len(h.classes))

	for cs := range h.classes {
		v, err := lenv.Get(cs)
		if err != nil {
			if cyc, ok := env.IsCycle[sym.ClassSymbol](err); ok {
				h.log.Error(diag.CyclicHierarchy, cs.String(), "%s", cyc.Error())
			} else {
				h.log.Error(diag.CannotResolve, cs.String(), "%s", err.Error())
			}

			continue
		}

		result[cs] = v
	}

	return result
}

func (h *HierarchyBinder) complete(cs sym.ClassSymbol, self *hierarchyEnv) (*bound.SourceHeaderBoundClass, error) {
	psb := h.classes[cs]
	decl := psb.Decl

	typeParams := make([]sym.TyVarSymbol, len(decl.TypeParameters))
	for i, tp := range decl.TypeParameters {
		typeParams[i] = sym.TyVarSymbol{Owner: sym.ClassOwner(cs), Name: tp.Name}
	}

	var superclass sym.ClassSymbol

	var interfaces []sym.ClassSymbol

	switch decl.Kind {
	case tree.KindInterface:
		// Interfaces have no superclass.
	case tree.KindAnnotation:
		// §4.F: annotation types implicitly extend java.lang.annotation.Annotation.
		interfaces = append(interfaces, sym.NewClassSymbol("java/lang/annotation/Annotation"))
	case tree.KindEnum:
		if cs.BinaryName() != "java/lang/Enum" {
			superclass = sym.NewClassSymbol("java/lang/Enum")
		}
	default:
		if decl.Extends != nil {
			resolved, err := h.resolveType(psb.Scope, decl.Extends, self)
			if err != nil {
				return nil, err
			}

			// Forcing the superclass's header is what surfaces an inheritance
			// cycle as a LazyBindingError.
			if _, err := self.Get(resolved); err != nil {
				return nil, err
			}

			superclass = resolved
		} else if cs.BinaryName() != "java/lang/Object" {
			superclass = sym.NewClassSymbol("java/lang/Object")
		}
	}

	for _, ifc := range decl.Implements {
		resolved, err := h.resolveType(psb.Scope, ifc, self)
		if err != nil {
			return nil, err
		}

		if _, err := self.Get(resolved); err != nil {
			return nil, err
		}

		interfaces = append(interfaces, resolved)
	}

	return &bound.SourceHeaderBoundClass{
		PackageSourceBoundClass: *psb,
		Superclass:              superclass,
		Interfaces:              interfaces,
		TypeParameters:          typeParams,
	}, nil
}

// resolveType flattens a (possibly qualified) ClassTypeExpr "X<...>.Y.Z"
// into its segment names, resolving the first through scope and each
// subsequent one as a member-type lookup on the previous result (§4.F
// "qualified superclass resolution flattens X<...>.Y into [X, Y], consults
// the compound scope, then climbs member resolution for the tail").
func (h *HierarchyBinder) resolveType(scope index.Scope, te tree.TypeExpr, self *hierarchyEnv) (sym.ClassSymbol, error) {
	cte, ok := te.(tree.ClassTypeExpr)
	if !ok || len(cte.Segments) == 0 {
		return sym.ClassSymbol{}, fmt.Errorf("bind: expected a class type expression")
	}

	first := cte.Segments[0].Name

	current, ok := scope.Lookup(first)
	if !ok {
		return sym.ClassSymbol{}, fmt.Errorf("bind: cannot resolve %q", first)
	}

	for _, seg := range cte.Segments[1:] {
		member, err := h.resolveMember(current, seg.Name, self)
		if err != nil {
			return sym.ClassSymbol{}, err
		}

		current = member
	}

	return current, nil
}

// resolveMember finds the member type named name on owner: first among
// owner's own declared nested types, else by forcing owner's header (which
// may itself force further classes, hence the LazyEnv) and climbing its
// superclass and interface chain.
func (h *HierarchyBinder) resolveMember(owner sym.ClassSymbol, name string, self *hierarchyEnv) (sym.ClassSymbol, error) {
	if psb, ok := h.classes[owner]; ok {
		if child, ok := psb.Children[name]; ok {
			return child, nil
		}
	}

	header, err := self.Get(owner)
	if err != nil {
		return sym.ClassSymbol{}, err
	}

	if header.Superclass.IsValid() {
		if m, err := h.resolveMember(header.Superclass, name, self); err == nil {
			return m, nil
		}
	}

	for _, ifc := range header.Interfaces {
		if m, err := h.resolveMember(ifc, name, self); err == nil {
			return m, nil
		}
	}

	return sym.ClassSymbol{}, fmt.Errorf("bind: cannot resolve member type %q of %s", name, owner)
}
