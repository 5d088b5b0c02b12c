package lower

import (
	"github.com/google/turbine/pkg/bound"
	"github.com/google/turbine/pkg/classfile"
	"github.com/google/turbine/pkg/sym"
)

func (l *Lowerer) lowerField(f *bound.FieldInfo) classfile.FieldInfo {
	fi := classfile.FieldInfo{
		AccessFlags: f.Access,
		Name:        f.Sym.Name,
		Descriptor:  classfile.Descriptor(f.Type),
	}

	if needsSignature(f.Type) {
		fi.Signature = l.sig.TypeSignature(f.Type)
	}

	if f.Value != nil {
		fi.ConstantValue = constantValue(*f.Value)
	}

	visible, invisible := l.partitionAnnotations(f.Annotations)
	fi.Annotations = visible
	fi.InvisibleAnnotations = invisible
	fi.Deprecated = hasAnnotation(f.Annotations, deprecatedSym)

	fi.TypeAnnotations, fi.InvisibleTypeAnnotations = l.partitionTypeAnnotations(
		f.TypeAnnotations, classfile.TypeAnnotationTarget{Kind: classfile.TargetField},
	)

	return fi
}

func (l *Lowerer) lowerMethod(m *bound.MethodInfo) classfile.MethodInfo {
	paramTypes := make([]sym.Type, len(m.Parameters))
	for i, p := range m.Parameters {
		paramTypes[i] = p.Type
	}

	mi := classfile.MethodInfo{
		AccessFlags: m.Access,
		Name:        m.Sym.Name,
		Descriptor:  classfile.MethodDescriptor(paramTypes, m.Result),
	}

	params := l.typeParamSigs(m.TypeParameters, m.TypeParameterBounds)

	if len(params) > 0 || needsSignature(m.Result) || anyNeedsSignature(paramTypes) || anyNeedsSignature(m.Throws) {
		mi.Signature = l.sig.MethodSignature(params, paramTypes, m.Result, m.Throws)
	}

	for _, th := range m.Throws {
		mi.Exceptions = append(mi.Exceptions, classTypeSym(th).BinaryName())
	}

	visible, invisible := l.partitionAnnotations(m.Annotations)
	mi.Annotations = visible
	mi.InvisibleAnnotations = invisible
	mi.Deprecated = hasAnnotation(m.Annotations, deprecatedSym)

	mi.TypeAnnotations, mi.InvisibleTypeAnnotations = l.partitionTypeAnnotations(
		m.TypeAnnotations, classfile.TypeAnnotationTarget{Kind: classfile.TargetMethodReturn},
	)

	if len(m.ParamAnnotations) > 0 {
		mi.ParameterAnnotations = make([][]classfile.Annotation, len(m.ParamAnnotations))
		mi.InvisibleParameterAnnotations = make([][]classfile.Annotation, len(m.ParamAnnotations))

		for i, pa := range m.ParamAnnotations {
			v, iv := l.partitionAnnotations(pa)
			mi.ParameterAnnotations[i] = v
			mi.InvisibleParameterAnnotations[i] = iv

			paramTarget := classfile.TypeAnnotationTarget{Kind: classfile.TargetMethodFormalParameter, Index: uint16(i)}

			tv, tiv := l.partitionTypeAnnotations(topLevelTypeAnnotations(m.Parameters[i].Type), paramTarget)
			mi.TypeAnnotations = append(mi.TypeAnnotations, tv...)
			mi.InvisibleTypeAnnotations = append(mi.InvisibleTypeAnnotations, tiv...)
		}
	}

	if m.AnnotationDefaultValue != nil {
		ev := elementValue(*m.AnnotationDefaultValue)
		mi.AnnotationDefault = &ev
	}

	// MethodParameters is only meaningful for a method whose parameter names
	// came from source, not one turbine itself synthesized (default
	// constructor, enum values()/valueOf(), the enum (String,int) ctor):
	// those carry compiler-internal names ("$enum$name") that aren't a
	// MethodParameters entry's job to expose (§4.J).
	if !m.Synthetic && len(m.Parameters) > 0 {
		mi.Parameters = make([]classfile.MethodParameter, len(m.Parameters))
		for i, p := range m.Parameters {
			mi.Parameters[i] = classfile.MethodParameter{Name: p.Name, AccessFlags: p.Access}
		}
	}

	return mi
}

// constantValue converts a folded field initializer into the ConstantValue
// attribute payload. Only the eight primitive kinds and String are legal
// here; ConstBinder never folds a field initializer to anything
// else (a class/enum/annotation literal can't appear where a ConstantValue
// is required, since those aren't "constant expressions" per JLS 15.28).
func constantValue(v sym.Value) *classfile.ConstantValue {
	switch v.Kind {
	case sym.ConstByte:
		return &classfile.ConstantValue{Kind: classfile.CVByte, Int: int32(v.ByteVal)}
	case sym.ConstChar:
		return &classfile.ConstantValue{Kind: classfile.CVChar, Int: int32(v.CharVal)}
	case sym.ConstShort:
		return &classfile.ConstantValue{Kind: classfile.CVShort, Int: v.Int}
	case sym.ConstInt:
		return &classfile.ConstantValue{Kind: classfile.CVInt, Int: v.Int}
	case sym.ConstLong:
		return &classfile.ConstantValue{Kind: classfile.CVLong, Long: v.Long}
	case sym.ConstFloat:
		return &classfile.ConstantValue{Kind: classfile.CVFloat, Float: v.Float}
	case sym.ConstDouble:
		return &classfile.ConstantValue{Kind: classfile.CVDouble, Double: v.Double}
	case sym.ConstBoolean:
		b := int32(0)
		if v.Bool {
			b = 1
		}

		return &classfile.ConstantValue{Kind: classfile.CVBoolean, Int: b}
	case sym.ConstString:
		return &classfile.ConstantValue{Kind: classfile.CVString, String: v.Str}
	default:
		return nil
	}
}
