package lower

import (
	"github.com/google/turbine/pkg/bound"
	"github.com/google/turbine/pkg/classfile"
	"github.com/google/turbine/pkg/sym"
)

// partitionAnnotations converts a bound (const-evaluated) annotation list
// into the visible/invisible pair the writer wants, per §4.J "encode
// annotations partitioned into runtime-visible vs runtime-invisible per
// retention". A SOURCE-retention annotation is dropped entirely: javac never
// writes one to the class file at all.
func (l *Lowerer) partitionAnnotations(annos []bound.AnnotationUse) (visible, invisible []classfile.Annotation) {
	for _, au := range annos {
		switch l.retention(au.Sym) {
		case "SOURCE":
			continue
		case "RUNTIME":
			visible = append(visible, convertAnnotation(au))
		default:
			invisible = append(invisible, convertAnnotation(au))
		}
	}

	return visible, invisible
}

// retention reports an annotation type's @Retention, defaulting to "CLASS"
// per JLS 9.6.4.2 when the type isn't source-bound (a classpath annotation)
// or declares none.
func (l *Lowerer) retention(annoSym sym.ClassSymbol) string {
	if meta, ok := l.classes[annoSym]; ok && meta.RetentionPolicy != "" {
		return meta.RetentionPolicy
	}

	return "CLASS"
}

func convertAnnotation(au bound.AnnotationUse) classfile.Annotation {
	a := classfile.Annotation{Type: classAnnotationDescriptor(au.Sym)}

	for _, arg := range au.Args {
		if arg.Value == nil {
			continue
		}

		name := arg.Name
		if name == "" {
			name = "value"
		}

		a.Elements = append(a.Elements, classfile.ElementValuePair{Name: name, Value: elementValue(*arg.Value)})
	}

	return a
}

func classAnnotationDescriptor(cs sym.ClassSymbol) string {
	return classfile.Descriptor(sym.NewClassType(sym.SimpleClassTy{Sym: cs}))
}

// elementValue converts a folded constant Value into a JVMS 4.7.16.1
// element_value. Every sym.ConstKind has a direct JVMS tag; no kind ConstBinder
// produces here is left unconvertible.
func elementValue(v sym.Value) classfile.ElementValue {
	switch v.Kind {
	case sym.ConstByte:
		return classfile.ElementValue{Tag: classfile.TagByte, ConstInt: int32(v.ByteVal)}
	case sym.ConstChar:
		return classfile.ElementValue{Tag: classfile.TagChar, ConstInt: int32(v.CharVal)}
	case sym.ConstShort:
		return classfile.ElementValue{Tag: classfile.TagShort, ConstInt: v.Int}
	case sym.ConstInt:
		return classfile.ElementValue{Tag: classfile.TagInt, ConstInt: v.Int}
	case sym.ConstLong:
		return classfile.ElementValue{Tag: classfile.TagLong, ConstLong: v.Long}
	case sym.ConstFloat:
		return classfile.ElementValue{Tag: classfile.TagFloat, ConstFloat: v.Float}
	case sym.ConstDouble:
		return classfile.ElementValue{Tag: classfile.TagDouble, ConstDouble: v.Double}
	case sym.ConstBoolean:
		b := int32(0)
		if v.Bool {
			b = 1
		}

		return classfile.ElementValue{Tag: classfile.TagBoolean, ConstInt: b}
	case sym.ConstString:
		return classfile.ElementValue{Tag: classfile.TagString, ConstString: v.Str}
	case sym.ConstClass:
		return classfile.ElementValue{Tag: classfile.TagClass, ClassDescriptor: classfile.Descriptor(v.ClassLit)}
	case sym.ConstEnum:
		return classfile.ElementValue{
			Tag:      classfile.TagEnum,
			EnumType: classAnnotationDescriptor(v.EnumOwner),
			EnumName: v.EnumName,
		}
	case sym.ConstAnnotation:
		anno := convertAnnotation(bound.AnnotationUse{Sym: v.Annotation.Sym, Args: annotationValueArgs(v.Annotation.Args)})
		return classfile.ElementValue{Tag: classfile.TagAnnotation, Annotation: &anno}
	case sym.ConstArray:
		out := make([]classfile.ElementValue, len(v.Elements))
		for i, e := range v.Elements {
			out[i] = elementValue(e)
		}

		return classfile.ElementValue{Tag: classfile.TagArray, Array: out}
	default:
		return classfile.ElementValue{}
	}
}

// annotationValueArgs adapts a folded sym.AnnotationValue's arguments back
// into AnnotationArgUse shape so convertAnnotation can be reused for a
// nested annotation value.
func annotationValueArgs(args []sym.AnnotationArg) []bound.AnnotationArgUse {
	out := make([]bound.AnnotationArgUse, len(args))
	for i, a := range args {
		v := a.Value
		out[i] = bound.AnnotationArgUse{Name: a.Name, Value: &v}
	}

	return out
}

// topLevelTypeAnnotations reads the annotation list Disambiguate would have
// attached to t's own outermost position, mirroring attachTypeAnnotation's
// own attachment convention (§4.I): a ClassType takes them on its first
// (outermost) component, every other shape carries its own Annotations
// field directly. Used for a parameter type, which (unlike a field or a
// method's return type) has no flat TypeAnnotations list of its own to read.
func topLevelTypeAnnotations(t sym.Type) []sym.TypeAnnotation {
	switch v := t.(type) {
	case sym.ClassType:
		return v.Components[0].Annotations
	case sym.ArrayType:
		return v.Annotations
	case sym.PrimitiveType:
		return v.Annotations
	case sym.TyVarRefType:
		return v.Annotations
	case sym.WildcardType:
		return v.Annotations
	default:
		return nil
	}
}

// partitionTypeAnnotations converts a flat list of already-folded type-use
// annotations (Disambiguate's output: Expr is a bound.AnnotationUse, never a
// raw tree.Annotation) into the writer's visible/invisible TypeAnnotation
// pair, all sharing the same JVMS target (the caller knows which field,
// return type, or throws-clause entry this list belongs to) and an empty
// TypePath: Disambiguate attaches every reclassified annotation at the
// type's own outermost position (§4.I), never at a nested array dimension or
// type argument, so there is never a non-empty path to compute here.
//
// A type-use annotation written directly in source on a sub-position (e.g.
// "List<@NonNull String>") is not emitted by this function: ConstBinder
// never folds annotations embedded inside a bound Type's own Annotations
// field (only declaration-position annotation lists), so such a node's Expr
// is still a raw tree.Annotation at this point and is skipped.
func (l *Lowerer) partitionTypeAnnotations(annos []sym.TypeAnnotation, target classfile.TypeAnnotationTarget) (visible, invisible []classfile.TypeAnnotation) {
	for _, ta := range annos {
		au, ok := ta.Expr.(bound.AnnotationUse)
		if !ok {
			continue
		}

		conv := classfile.TypeAnnotation{Target: target, Annotation: convertAnnotation(au)}

		switch l.retention(ta.Sym) {
		case "SOURCE":
			continue
		case "RUNTIME":
			visible = append(visible, conv)
		default:
			invisible = append(invisible, conv)
		}
	}

	return visible, invisible
}
