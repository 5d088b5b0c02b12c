package classfile

// annotationWriter encodes JVMS 4.7.16 annotation structures and their
// element values, using the single-character tags of Table 4.7.16.1-A.
type annotationWriter struct {
	pool *PoolBuilder
}

func newAnnotationWriter(pool *PoolBuilder) *annotationWriter {
	return &annotationWriter{pool}
}

func (a *annotationWriter) writeAnnotation(w *byteWriter, anno Annotation) {
	w.u2(a.pool.Utf8(anno.Type))
	w.u2(uint16(len(anno.Elements)))

	for _, el := range anno.Elements {
		w.u2(a.pool.Utf8(el.Name))
		a.writeElementValue(w, el.Value)
	}
}

func (a *annotationWriter) writeTypeAnnotation(w *byteWriter, ta TypeAnnotation) {
	a.writeTarget(w, ta.Target)
	a.writeTypePath(w, ta.Path)
	a.writeAnnotation(w, ta.Annotation)
}

func (a *annotationWriter) writeTarget(w *byteWriter, t TypeAnnotationTarget) {
	w.u1(uint8(t.Kind))

	switch t.Kind {
	case TargetClassTypeParameter, TargetMethodTypeParameter:
		w.u1(uint8(t.Index))
	case TargetClassExtends:
		w.u2(t.Index)
	case TargetClassTypeParameterBound, TargetMethodTypeParameterBound:
		// type_parameter_index u1, bound_index u1; callers pack both into
		// Index as (paramIndex<<8 | boundIndex).
		w.u1(uint8(t.Index >> 8))
		w.u1(uint8(t.Index))
	case TargetField, TargetMethodReturn, TargetMethodReceiver:
		// empty_target: no further bytes.
	case TargetMethodFormalParameter:
		w.u1(uint8(t.Index))
	case TargetThrows:
		w.u2(t.Index)
	}
}

func (a *annotationWriter) writeTypePath(w *byteWriter, p TypePath) {
	w.u1(uint8(len(p.Steps)))

	for _, s := range p.Steps {
		w.u1(uint8(s.Kind))
		w.u1(s.TypeArgumentIndex)
	}
}

func (a *annotationWriter) writeElementValue(w *byteWriter, ev ElementValue) {
	w.u1(uint8(ev.Tag))

	switch ev.Tag {
	case TagByte, TagShort, TagInt, TagChar:
		w.u2(a.pool.Integer(ev.ConstInt))
	case TagBoolean:
		v := int32(0)
		if ev.ConstInt != 0 {
			v = 1
		}

		w.u2(a.pool.Integer(v))
	case TagLong:
		w.u2(a.pool.Long(ev.ConstLong))
	case TagFloat:
		w.u2(a.pool.Float(floatBits(ev.ConstFloat)))
	case TagDouble:
		w.u2(a.pool.Double(doubleBits(ev.ConstDouble)))
	case TagString:
		w.u2(a.pool.Utf8(ev.ConstString))
	case TagEnum:
		w.u2(a.pool.Utf8(ev.EnumType))
		w.u2(a.pool.Utf8(ev.EnumName))
	case TagClass:
		w.u2(a.pool.Utf8(ev.ClassDescriptor))
	case TagAnnotation:
		a.writeAnnotation(w, *ev.Annotation)
	case TagArray:
		w.u2(uint16(len(ev.Array)))

		for _, el := range ev.Array {
			a.writeElementValue(w, el)
		}
	}
}
