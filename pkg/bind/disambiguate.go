package bind

import (
	"github.com/google/turbine/pkg/bound"
	"github.com/google/turbine/pkg/diag"
	"github.com/google/turbine/pkg/sym"
)

// DisambiguateAll implements §4.I's second half over every class-bound
// class: groups repeated annotations under their @Repeatable container
// (flagging repeats without one), then splits each declaration-position
// annotation into the declaration-annotation bucket, the type-use bucket,
// or both, by consulting the annotation type's own @Target set. Must run
// after ConstBinder, since a repeated annotation's container value is
// itself a const-evaluated nested-annotation array.
func DisambiguateAll(classes map[sym.ClassSymbol]*bound.SourceTypeBoundClass, log *diag.Log) {
	for cs, stb := range classes {
		decl, extra := disambiguateSet(classes, log, cs, "TYPE", stb.Annotations)
		stb.Annotations = decl
		stb.TypeAnnotations = append(stb.TypeAnnotations, extra...)

		for i := range stb.Fields {
			f := &stb.Fields[i]

			decl, extra := disambiguateSet(classes, log, cs, "FIELD", f.Annotations)
			f.Annotations = decl
			f.TypeAnnotations = append(f.TypeAnnotations, extra...)

			for _, ta := range extra {
				f.Type = attachTypeAnnotation(f.Type, ta)
			}
		}

		for i := range stb.Methods {
			m := &stb.Methods[i]

			kind := "METHOD"
			if m.IsConstructor {
				kind = "CONSTRUCTOR"
			}

			decl, extra := disambiguateSet(classes, log, cs, kind, m.Annotations)
			m.Annotations = decl
			m.TypeAnnotations = append(m.TypeAnnotations, extra...)

			for _, ta := range extra {
				m.Result = attachTypeAnnotation(m.Result, ta)
			}

			for j := range m.ParamAnnotations {
				decl, extra := disambiguateSet(classes, log, cs, "PARAMETER", m.ParamAnnotations[j])
				m.ParamAnnotations[j] = decl

				for _, ta := range extra {
					m.Parameters[j].Type = attachTypeAnnotation(m.Parameters[j].Type, ta)
				}
			}
		}
	}
}

// disambiguateSet groups repeats, then classifies each (possibly grouped)
// annotation use into the declaration and/or type-use buckets.
func disambiguateSet(
	classes map[sym.ClassSymbol]*bound.SourceTypeBoundClass,
	log *diag.Log,
	owner sym.ClassSymbol,
	elementKind string,
	annos []bound.AnnotationUse,
) ([]bound.AnnotationUse, []sym.TypeAnnotation) {
	grouped := groupRepeats(classes, log, owner, annos)

	var decl []bound.AnnotationUse

	var typeAnnos []sym.TypeAnnotation

	for _, au := range grouped {
		isDecl, isTypeUse := classifyAnnotationTarget(classes, au.Sym, elementKind)

		if isDecl {
			decl = append(decl, au)
		}

		if isTypeUse {
			typeAnnos = append(typeAnnos, sym.TypeAnnotation{Sym: au.Sym, Expr: au})
		}
	}

	return decl, typeAnnos
}

// groupRepeats collapses repeated uses of the same annotation type into one
// use of its @Repeatable container, or logs NONREPEATABLE_ANNOTATION when
// there is no container to group under.
func groupRepeats(
	classes map[sym.ClassSymbol]*bound.SourceTypeBoundClass,
	log *diag.Log,
	owner sym.ClassSymbol,
	annos []bound.AnnotationUse,
) []bound.AnnotationUse {
	if len(annos) <= 1 {
		return annos
	}

	var order []sym.ClassSymbol

	byType := map[sym.ClassSymbol][]bound.AnnotationUse{}

	for _, au := range annos {
		if _, seen := byType[au.Sym]; !seen {
			order = append(order, au.Sym)
		}

		byType[au.Sym] = append(byType[au.Sym], au)
	}

	out := make([]bound.AnnotationUse, 0, len(annos))

	for _, s := range order {
		uses := byType[s]
		if len(uses) == 1 {
			out = append(out, uses[0])
			continue
		}

		meta, ok := classes[s]
		if !ok || !meta.RepeatableContainer.IsValid() {
			log.Error(diag.NonrepeatableAnnotation, owner.String(), "%s is not @Repeatable but is used %d times", s, len(uses))
			out = append(out, uses...)

			continue
		}

		elems := make([]sym.Value, 0, len(uses))

		for _, u := range uses {
			elems = append(elems, sym.Value{Kind: sym.ConstAnnotation, Annotation: &sym.AnnotationValue{Sym: u.Sym, Args: toAnnotationArgs(u.Args)}})
		}

		container := bound.AnnotationUse{
			Sym: meta.RepeatableContainer,
			Args: []bound.AnnotationArgUse{{
				Name:  "value",
				Expr:  nil,
				Value: &sym.Value{Kind: sym.ConstArray, Elements: elems},
			}},
		}

		out = append(out, container)
	}

	return out
}

func toAnnotationArgs(args []bound.AnnotationArgUse) []sym.AnnotationArg {
	out := make([]sym.AnnotationArg, 0, len(args))

	for _, a := range args {
		if a.Value == nil {
			continue
		}

		name := a.Name
		if name == "" {
			name = "value"
		}

		out = append(out, sym.AnnotationArg{Name: name, Value: *a.Value})
	}

	return out
}

// classifyAnnotationTarget reports whether an annotation of type annoSym may
// appear as a declaration annotation on elementKind, and/or as a type-use
// annotation (TYPE_USE in its @Target). A classpath annotation (no source
// metadata available yet) defaults to declaration-only, since classpath
// loading isn't wired into the binder yet (consistent with the same
// simplification ClassBinder.isInterfaceType documents).
func classifyAnnotationTarget(classes map[sym.ClassSymbol]*bound.SourceTypeBoundClass, annoSym sym.ClassSymbol, elementKind string) (isDecl, isTypeUse bool) {
	meta, ok := classes[annoSym]
	if !ok || len(meta.TargetKinds) == 0 {
		return true, false
	}

	return containsString(meta.TargetKinds, elementKind), containsString(meta.TargetKinds, "TYPE_USE")
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}

	return false
}

// attachTypeAnnotation attaches ta to the left-most annotatable component of
// t (§4.I): the outermost SimpleClassTy for a class type, or the type
// itself for every other shape. Precise per-component TypePath placement
// (JVMS 4.7.20.1) is pkg/lower's job; this only needs to preserve the
// annotation somewhere reachable from t.
func attachTypeAnnotation(t sym.Type, ta sym.TypeAnnotation) sym.Type {
	switch v := t.(type) {
	case sym.ClassType:
		comps := append([]sym.SimpleClassTy(nil), v.Components...)
		comps[0].Annotations = append(append([]sym.TypeAnnotation(nil), comps[0].Annotations...), ta)

		return sym.NewClassType(comps...)
	case sym.ArrayType:
		v.Annotations = append(append([]sym.TypeAnnotation(nil), v.Annotations...), ta)
		return v
	case sym.PrimitiveType:
		v.Annotations = append(append([]sym.TypeAnnotation(nil), v.Annotations...), ta)
		return v
	case sym.TyVarRefType:
		v.Annotations = append(append([]sym.TypeAnnotation(nil), v.Annotations...), ta)
		return v
	case sym.WildcardType:
		v.Annotations = append(append([]sym.TypeAnnotation(nil), v.Annotations...), ta)
		return v
	default:
		return t
	}
}
