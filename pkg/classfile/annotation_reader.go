package classfile

// annotationReader is the inverse of annotationWriter.
type annotationReader struct {
	pool *ConstantPoolReader
}

func newAnnotationReader(pool *ConstantPoolReader) *annotationReader {
	return &annotationReader{pool}
}

func (a *annotationReader) readAnnotation(r *byteReader) (Annotation, error) {
	typeIdx, err := r.u2()
	if err != nil {
		return Annotation{}, err
	}

	typ, err := a.pool.Utf8(typeIdx)
	if err != nil {
		return Annotation{}, err
	}

	count, err := r.u2()
	if err != nil {
		return Annotation{}, err
	}

	elems := make([]ElementValuePair, 0, count)

	for i := uint16(0); i < count; i++ {
		nameIdx, err := r.u2()
		if err != nil {
			return Annotation{}, err
		}

		name, err := a.pool.Utf8(nameIdx)
		if err != nil {
			return Annotation{}, err
		}

		val, err := a.readElementValue(r)
		if err != nil {
			return Annotation{}, err
		}

		elems = append(elems, ElementValuePair{name, val})
	}

	return Annotation{typ, elems}, nil
}

func (a *annotationReader) readElementValue(r *byteReader) (ElementValue, error) {
	tagByte, err := r.u1()
	if err != nil {
		return ElementValue{}, err
	}

	tag := ElementValueTag(tagByte)

	switch tag {
	case TagByte, TagShort, TagInt, TagChar, TagBoolean:
		idx, err := r.u2()
		if err != nil {
			return ElementValue{}, err
		}

		v, err := a.pool.Integer(idx)
		if err != nil {
			return ElementValue{}, err
		}

		return ElementValue{Tag: tag, ConstInt: v}, nil
	case TagLong:
		idx, err := r.u2()
		if err != nil {
			return ElementValue{}, err
		}

		v, err := a.pool.Long(idx)
		if err != nil {
			return ElementValue{}, err
		}

		return ElementValue{Tag: tag, ConstLong: v}, nil
	case TagFloat:
		idx, err := r.u2()
		if err != nil {
			return ElementValue{}, err
		}

		bits, err := a.pool.FloatBits(idx)
		if err != nil {
			return ElementValue{}, err
		}

		return ElementValue{Tag: tag, ConstFloat: bitsToFloat(bits)}, nil
	case TagDouble:
		idx, err := r.u2()
		if err != nil {
			return ElementValue{}, err
		}

		bits, err := a.pool.DoubleBits(idx)
		if err != nil {
			return ElementValue{}, err
		}

		return ElementValue{Tag: tag, ConstDouble: bitsToDouble(bits)}, nil
	case TagString:
		idx, err := r.u2()
		if err != nil {
			return ElementValue{}, err
		}

		s, err := a.pool.Utf8(idx)
		if err != nil {
			return ElementValue{}, err
		}

		return ElementValue{Tag: tag, ConstString: s}, nil
	case TagEnum:
		typeIdx, err := r.u2()
		if err != nil {
			return ElementValue{}, err
		}

		nameIdx, err := r.u2()
		if err != nil {
			return ElementValue{}, err
		}

		typ, err := a.pool.Utf8(typeIdx)
		if err != nil {
			return ElementValue{}, err
		}

		name, err := a.pool.Utf8(nameIdx)
		if err != nil {
			return ElementValue{}, err
		}

		return ElementValue{Tag: tag, EnumType: typ, EnumName: name}, nil
	case TagClass:
		idx, err := r.u2()
		if err != nil {
			return ElementValue{}, err
		}

		d, err := a.pool.Utf8(idx)
		if err != nil {
			return ElementValue{}, err
		}

		return ElementValue{Tag: tag, ClassDescriptor: d}, nil
	case TagAnnotation:
		nested, err := a.readAnnotation(r)
		if err != nil {
			return ElementValue{}, err
		}

		return ElementValue{Tag: tag, Annotation: &nested}, nil
	case TagArray:
		count, err := r.u2()
		if err != nil {
			return ElementValue{}, err
		}

		arr := make([]ElementValue, 0, count)

		for i := uint16(0); i < count; i++ {
			el, err := a.readElementValue(r)
			if err != nil {
				return ElementValue{}, err
			}

			arr = append(arr, el)
		}

		return ElementValue{Tag: tag, Array: arr}, nil
	default:
		return ElementValue{}, errTruncated
	}
}

func (a *annotationReader) readTypeAnnotation(r *byteReader) (TypeAnnotation, error) {
	target, err := a.readTarget(r)
	if err != nil {
		return TypeAnnotation{}, err
	}

	path, err := a.readTypePath(r)
	if err != nil {
		return TypeAnnotation{}, err
	}

	anno, err := a.readAnnotation(r)
	if err != nil {
		return TypeAnnotation{}, err
	}

	return TypeAnnotation{Target: target, Path: path, Annotation: anno}, nil
}

func (a *annotationReader) readTarget(r *byteReader) (TypeAnnotationTarget, error) {
	kindByte, err := r.u1()
	if err != nil {
		return TypeAnnotationTarget{}, err
	}

	kind := TypeAnnotationTargetKind(kindByte)

	switch kind {
	case TargetClassTypeParameter, TargetMethodTypeParameter, TargetMethodFormalParameter:
		idx, err := r.u1()
		if err != nil {
			return TypeAnnotationTarget{}, err
		}

		return TypeAnnotationTarget{Kind: kind, Index: uint16(idx)}, nil
	case TargetClassExtends, TargetThrows:
		idx, err := r.u2()
		if err != nil {
			return TypeAnnotationTarget{}, err
		}

		return TypeAnnotationTarget{Kind: kind, Index: idx}, nil
	case TargetClassTypeParameterBound, TargetMethodTypeParameterBound:
		paramIdx, err := r.u1()
		if err != nil {
			return TypeAnnotationTarget{}, err
		}

		boundIdx, err := r.u1()
		if err != nil {
			return TypeAnnotationTarget{}, err
		}

		return TypeAnnotationTarget{Kind: kind, Index: uint16(paramIdx)<<8 | uint16(boundIdx)}, nil
	case TargetField, TargetMethodReturn, TargetMethodReceiver:
		return TypeAnnotationTarget{Kind: kind}, nil
	default:
		return TypeAnnotationTarget{}, errTruncated
	}
}

func (a *annotationReader) readTypePath(r *byteReader) (TypePath, error) {
	count, err := r.u1()
	if err != nil {
		return TypePath{}, err
	}

	steps := make([]TypePathStep, 0, count)

	for i := uint8(0); i < count; i++ {
		kind, err := r.u1()
		if err != nil {
			return TypePath{}, err
		}

		argIdx, err := r.u1()
		if err != nil {
			return TypePath{}, err
		}

		steps = append(steps, TypePathStep{Kind: TypePathKind(kind), TypeArgumentIndex: argIdx})
	}

	return TypePath{steps}, nil
}
