package bind

import (
	"fmt"

	"github.com/google/turbine/pkg/bound"
	"github.com/google/turbine/pkg/index"
	"github.com/google/turbine/pkg/sym"
	"github.com/google/turbine/pkg/tree"
)

// TypeBinder turns the unbound tree.TypeExpr nodes of §4.G into sym.Type,
// given a fully hierarchy-bound class set: resolving "A<String>.Inner"
// requires knowing A's nested types, which is exactly the information
// HierarchyBinder (§4.F) just finished computing.
type TypeBinder struct {
	classes map[sym.ClassSymbol]*bound.SourceHeaderBoundClass
}

// NewTypeBinder constructs a TypeBinder over a hierarchy-bound class set.
func NewTypeBinder(classes map[sym.ClassSymbol]*bound.SourceHeaderBoundClass) *TypeBinder {
	return &TypeBinder{classes: classes}
}

// tyVarScope maps a simple type-variable name to its symbol, for the type
// parameters currently in scope (class, then enclosing classes, then
// method, innermost wins — callers build this chain by overriding entries).
type tyVarScope map[string]sym.TyVarSymbol

// lexicalScope builds the Scope chain §4.G binds names against: the
// owner's own and every lexically enclosing class's declared nested types
// (so sibling nested types resolve unqualified), then the compilation
// unit's import/package/wildcard scope.
func (tb *TypeBinder) lexicalScope(owner sym.ClassSymbol) index.Scope {
	var layers []index.Scope

	for cur := owner; cur.IsValid(); {
		header, ok := tb.classes[cur]
		if !ok {
			break
		}

		layers = append(layers, childScope(header.Children))

		if header.Owner.IsEmpty() {
			layers = append(layers, header.Scope)

			break
		}

		cur = header.Owner.Unwrap()
	}

	return index.NewCompoundScope(layers...)
}

// childScope adapts a SourceBoundClass.Children map to Scope.
type childScope map[string]sym.ClassSymbol

func (s childScope) Lookup(name string) (sym.ClassSymbol, bool) {
	cs, ok := s[name]
	return cs, ok
}

// Bind resolves te against owner's lexical scope and the given type-variable
// scope (checked first, since a bare identifier matching an in-scope type
// parameter shadows any same-named class).
func (tb *TypeBinder) Bind(owner sym.ClassSymbol, vars tyVarScope, te tree.TypeExpr) (sym.Type, error) {
	switch t := te.(type) {
	case tree.PrimitiveTypeExpr:
		kind, ok := primitiveKind(t.Name)
		if !ok {
			return nil, fmt.Errorf("bind: unknown primitive type %q", t.Name)
		}

		return sym.PrimitiveType{Kind: kind}, nil

	case tree.VoidTypeExpr:
		return sym.VoidType{}, nil

	case tree.ArrayTypeExpr:
		elem, err := tb.Bind(owner, vars, t.Element)
		if err != nil {
			return nil, err
		}

		return sym.ArrayType{Element: elem, Annotations: tb.convertAnnotations(owner, vars, t.Annotations)}, nil

	case tree.WildcardTypeExpr:
		switch t.Kind {
		case tree.WildcardExprUnbounded:
			return sym.WildcardType{Kind: sym.WildcardUnbounded}, nil
		case tree.WildcardExprExtends:
			b, err := tb.Bind(owner, vars, t.Bound)
			if err != nil {
				return nil, err
			}

			return sym.WildcardType{Kind: sym.WildcardUpper, Bound: b}, nil
		default:
			b, err := tb.Bind(owner, vars, t.Bound)
			if err != nil {
				return nil, err
			}

			return sym.WildcardType{Kind: sym.WildcardLower, Bound: b}, nil
		}

	case tree.ClassTypeExpr:
		return tb.bindClassType(owner, vars, t)

	default:
		return nil, fmt.Errorf("bind: unsupported type expression %T", te)
	}
}

func (tb *TypeBinder) bindClassType(owner sym.ClassSymbol, vars tyVarScope, t tree.ClassTypeExpr) (sym.Type, error) {
	if len(t.Segments) == 0 {
		return nil, fmt.Errorf("bind: empty class type expression")
	}

	first := t.Segments[0]

	if len(t.Segments) == 1 {
		if tv, ok := vars[first.Name]; ok {
			return sym.TyVarRefType{Sym: tv, Annotations: tb.convertAnnotations(owner, vars, first.Annotations)}, nil
		}
	}

	scope := tb.lexicalScope(owner)

	root, ok := scope.Lookup(first.Name)
	if !ok {
		return nil, fmt.Errorf("bind: cannot resolve type %q", first.Name)
	}

	comp, err := tb.bindSegment(owner, vars, root, first)
	if err != nil {
		return nil, err
	}

	components := []sym.SimpleClassTy{comp}
	current := root

	for _, seg := range t.Segments[1:] {
		member, err := tb.resolveMemberType(current, seg.Name)
		if err != nil {
			return nil, err
		}

		comp, err := tb.bindSegment(owner, vars, member, seg)
		if err != nil {
			return nil, err
		}

		components = append(components, comp)
		current = member
	}

	ct := sym.NewClassType(components...)
	_ = t.Annotations // whole-expression annotations are not copied into ct; only each segment's own Annotations are bound (bindSegment)

	return ct, nil
}

func (tb *TypeBinder) bindSegment(owner sym.ClassSymbol, vars tyVarScope, cs sym.ClassSymbol, seg tree.ClassTypeExprSegment) (sym.SimpleClassTy, error) {
	args := make([]sym.Type, len(seg.TypeArgs))

	for i, a := range seg.TypeArgs {
		argTy, err := tb.Bind(owner, vars, a)
		if err != nil {
			return sym.SimpleClassTy{}, err
		}

		args[i] = argTy
	}

	return sym.SimpleClassTy{Sym: cs, TypeArgs: args, Annotations: tb.convertAnnotations(owner, vars, seg.Annotations)}, nil
}

// resolveMemberType finds the nested type named name declared somewhere in
// owner's own declaration (§4.G type binding operates on an already
// hierarchy-bound set, so climbing the superclass/interface chain for
// inherited nested types is safe: no further forcing is needed).
func (tb *TypeBinder) resolveMemberType(owner sym.ClassSymbol, name string) (sym.ClassSymbol, error) {
	seen := map[sym.ClassSymbol]bool{}

	var climb func(cs sym.ClassSymbol) (sym.ClassSymbol, bool)

	climb = func(cs sym.ClassSymbol) (sym.ClassSymbol, bool) {
		if seen[cs] {
			return sym.ClassSymbol{}, false
		}

		seen[cs] = true

		header, ok := tb.classes[cs]
		if !ok {
			return sym.ClassSymbol{}, false
		}

		if child, ok := header.Children[name]; ok {
			return child, true
		}

		if header.Superclass.IsValid() {
			if m, ok := climb(header.Superclass); ok {
				return m, true
			}
		}

		for _, ifc := range header.Interfaces {
			if m, ok := climb(ifc); ok {
				return m, true
			}
		}

		return sym.ClassSymbol{}, false
	}

	if m, ok := climb(owner); ok {
		return m, nil
	}

	return sym.ClassSymbol{}, fmt.Errorf("bind: cannot resolve member type %q of %s", name, owner)
}

func primitiveKind(name string) (sym.PrimitiveKind, bool) {
	switch name {
	case "boolean":
		return sym.Boolean, true
	case "byte":
		return sym.Byte, true
	case "char":
		return sym.Char, true
	case "short":
		return sym.Short, true
	case "int":
		return sym.Int, true
	case "long":
		return sym.Long, true
	case "float":
		return sym.Float, true
	case "double":
		return sym.Double, true
	default:
		return 0, false
	}
}

// extractTypeAnnotations flattens every TypeAnnotation attached anywhere in
// t's component tree, in outermost-to-innermost order. TypePath computation
// (JVMS 4.7.20.1, which component/array-dimension/type-argument each
// annotation actually targets) is deferred to pkg/lower (§4.J); this only
// gathers the flat set ConstBinder will later evaluate.
func extractTypeAnnotations(t sym.Type) []sym.TypeAnnotation {
	switch v := t.(type) {
	case sym.PrimitiveType:
		return v.Annotations
	case sym.ArrayType:
		return append(append([]sym.TypeAnnotation(nil), v.Annotations...), extractTypeAnnotations(v.Element)...)
	case sym.ClassType:
		var out []sym.TypeAnnotation

		for _, c := range v.Components {
			out = append(out, c.Annotations...)

			for _, a := range c.TypeArgs {
				out = append(out, extractTypeAnnotations(a)...)
			}
		}

		return out
	case sym.TyVarRefType:
		return v.Annotations
	case sym.WildcardType:
		out := append([]sym.TypeAnnotation(nil), v.Annotations...)
		if v.Bound != nil {
			out = append(out, extractTypeAnnotations(v.Bound)...)
		}

		return out
	default:
		return nil
	}
}

// convertAnnotations resolves each type-use annotation's own type eagerly
// (so Sym is available without waiting on ConstBinder) but leaves its
// arguments as the unbound AST node (§3 "Each node carries its type-use
// annotations"); a type-use annotation whose type can't be resolved here is
// kept with a zero Sym rather than failing the whole type binding, since
// the annotation itself is never required for ABI correctness, only for
// round-tripping it back out in pkg/lower.
func (tb *TypeBinder) convertAnnotations(owner sym.ClassSymbol, vars tyVarScope, annos []tree.Annotation) []sym.TypeAnnotation {
	if len(annos) == 0 {
		return nil
	}

	out := make([]sym.TypeAnnotation, len(annos))

	for i, a := range annos {
		out[i] = sym.TypeAnnotation{Expr: a}

		if t, err := tb.Bind(owner, vars, a.Type); err == nil {
			if ct, ok := t.(sym.ClassType); ok {
				out[i].Sym = ct.Sym()
			}
		}
	}

	return out
}
