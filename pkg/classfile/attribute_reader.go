package classfile

import "fmt"

// attributeReader decodes the payload of one JVMS attribute_info, once the
// caller has already resolved its name and sliced out its length-prefixed
// bytes. It is the inverse of attributeWriter; unknown attribute names never
// reach a decode method: readAttributeTable (below) hands every attribute to
// its caller's apply callback, which ignores names it does not recognise.
type attributeReader struct {
	pool *ConstantPoolReader
	ar   *annotationReader
}

func newAttributeReader(pool *ConstantPoolReader) *attributeReader {
	return &attributeReader{pool, newAnnotationReader(pool)}
}

func (a *attributeReader) signature(r *byteReader) (string, error) {
	idx, err := r.u2()
	if err != nil {
		return "", err
	}

	return a.pool.Utf8(idx)
}

func (a *attributeReader) exceptions(r *byteReader) ([]string, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, count)

	for i := uint16(0); i < count; i++ {
		idx, err := r.u2()
		if err != nil {
			return nil, err
		}

		name, err := a.pool.ClassName(idx)
		if err != nil {
			return nil, err
		}

		out = append(out, name)
	}

	return out, nil
}

func (a *attributeReader) constantValue(r *byteReader) (*ConstantValue, error) {
	idx, err := r.u2()
	if err != nil {
		return nil, err
	}

	tag, err := a.pool.Tag(idx)
	if err != nil {
		return nil, err
	}

	switch tag {
	case TagLong:
		v, err := a.pool.Long(idx)
		if err != nil {
			return nil, err
		}

		return &ConstantValue{Kind: CVLong, Long: v}, nil
	case TagFloat:
		bits, err := a.pool.FloatBits(idx)
		if err != nil {
			return nil, err
		}

		return &ConstantValue{Kind: CVFloat, Float: bitsToFloat(bits)}, nil
	case TagDouble:
		bits, err := a.pool.DoubleBits(idx)
		if err != nil {
			return nil, err
		}

		return &ConstantValue{Kind: CVDouble, Double: bitsToDouble(bits)}, nil
	case TagString:
		s, err := a.pool.String(idx)
		if err != nil {
			return nil, err
		}

		return &ConstantValue{Kind: CVString, String: s}, nil
	default: // TagInteger: the field descriptor, not the pool, distinguishes
		// int/short/byte/char/boolean; callers that care consult Descriptor.
		v, err := a.pool.Integer(idx)
		if err != nil {
			return nil, err
		}

		return &ConstantValue{Kind: CVInt, Int: v}, nil
	}
}

func (a *attributeReader) innerClasses(r *byteReader) ([]InnerClass, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}

	out := make([]InnerClass, 0, count)

	for i := uint16(0); i < count; i++ {
		innerIdx, err := r.u2()
		if err != nil {
			return nil, err
		}

		outerIdx, err := r.u2()
		if err != nil {
			return nil, err
		}

		simpleIdx, err := r.u2()
		if err != nil {
			return nil, err
		}

		flags, err := r.u2()
		if err != nil {
			return nil, err
		}

		inner, err := a.pool.ClassName(innerIdx)
		if err != nil {
			return nil, err
		}

		var outer, simple string

		if outerIdx != 0 {
			if outer, err = a.pool.ClassName(outerIdx); err != nil {
				return nil, err
			}
		}

		if simpleIdx != 0 {
			if simple, err = a.pool.Utf8(simpleIdx); err != nil {
				return nil, err
			}
		}

		out = append(out, InnerClass{inner, outer, simple, flags})
	}

	return out, nil
}

func (a *attributeReader) methodParameters(r *byteReader) ([]MethodParameter, error) {
	count, err := r.u1()
	if err != nil {
		return nil, err
	}

	out := make([]MethodParameter, 0, count)

	for i := uint8(0); i < count; i++ {
		nameIdx, err := r.u2()
		if err != nil {
			return nil, err
		}

		flags, err := r.u2()
		if err != nil {
			return nil, err
		}

		var name string

		if nameIdx != 0 {
			if name, err = a.pool.Utf8(nameIdx); err != nil {
				return nil, err
			}
		}

		out = append(out, MethodParameter{name, flags})
	}

	return out, nil
}

func (a *attributeReader) classInfoList(r *byteReader) ([]string, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, count)

	for i := uint16(0); i < count; i++ {
		idx, err := r.u2()
		if err != nil {
			return nil, err
		}

		name, err := a.pool.ClassName(idx)
		if err != nil {
			return nil, err
		}

		out = append(out, name)
	}

	return out, nil
}

func (a *attributeReader) nestHost(r *byteReader) (string, error) {
	idx, err := r.u2()
	if err != nil {
		return "", err
	}

	return a.pool.ClassName(idx)
}

func (a *attributeReader) turbineTransitiveJar(r *byteReader) (string, error) {
	idx, err := r.u2()
	if err != nil {
		return "", err
	}

	return a.pool.Utf8(idx)
}

func (a *attributeReader) annotations(r *byteReader) ([]Annotation, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}

	out := make([]Annotation, 0, count)

	for i := uint16(0); i < count; i++ {
		an, err := a.ar.readAnnotation(r)
		if err != nil {
			return nil, err
		}

		out = append(out, an)
	}

	return out, nil
}

func (a *attributeReader) typeAnnotations(r *byteReader) ([]TypeAnnotation, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}

	out := make([]TypeAnnotation, 0, count)

	for i := uint16(0); i < count; i++ {
		ta, err := a.ar.readTypeAnnotation(r)
		if err != nil {
			return nil, err
		}

		out = append(out, ta)
	}

	return out, nil
}

func (a *attributeReader) parameterAnnotations(r *byteReader) ([][]Annotation, error) {
	count, err := r.u1()
	if err != nil {
		return nil, err
	}

	out := make([][]Annotation, 0, count)

	for i := uint8(0); i < count; i++ {
		n, err := r.u2()
		if err != nil {
			return nil, err
		}

		annos := make([]Annotation, 0, n)

		for j := uint16(0); j < n; j++ {
			an, err := a.ar.readAnnotation(r)
			if err != nil {
				return nil, err
			}

			annos = append(annos, an)
		}

		out = append(out, annos)
	}

	return out, nil
}

func (a *attributeReader) annotationDefault(r *byteReader) (*ElementValue, error) {
	ev, err := a.ar.readElementValue(r)
	if err != nil {
		return nil, err
	}

	return &ev, nil
}

func (a *attributeReader) record(r *byteReader) (*RecordInfo, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}

	rec := &RecordInfo{Components: make([]RecordComponent, 0, count)}

	for i := uint16(0); i < count; i++ {
		nameIdx, err := r.u2()
		if err != nil {
			return nil, err
		}

		descIdx, err := r.u2()
		if err != nil {
			return nil, err
		}

		name, err := a.pool.Utf8(nameIdx)
		if err != nil {
			return nil, err
		}

		desc, err := a.pool.Utf8(descIdx)
		if err != nil {
			return nil, err
		}

		comp := RecordComponent{Name: name, Descriptor: desc}

		if err := readAttributeTable(r, a.pool, func(attrName string, payload *byteReader) error {
			switch attrName {
			case "Signature":
				s, err := a.signature(payload)
				comp.Signature = s

				return err
			case "RuntimeVisibleAnnotations":
				v, err := a.annotations(payload)
				comp.Annotations = v

				return err
			case "RuntimeInvisibleAnnotations":
				v, err := a.annotations(payload)
				comp.InvisibleAnnotations = v

				return err
			case "RuntimeVisibleTypeAnnotations":
				v, err := a.typeAnnotations(payload)
				comp.TypeAnnotations = v

				return err
			case "RuntimeInvisibleTypeAnnotations":
				v, err := a.typeAnnotations(payload)
				comp.InvisibleTypeAnnotations = v

				return err
			default:
				return nil
			}
		}); err != nil {
			return nil, err
		}

		rec.Components = append(rec.Components, comp)
	}

	return rec, nil
}

func (a *attributeReader) module(r *byteReader) (*ModuleInfo, error) {
	// named resolves a CONSTANT_Module_info or CONSTANT_Package_info index,
	// the entry kinds attributeWriter emits for module and package names.
	named := func(idx uint16, want PoolTag) (string, error) {
		e, err := a.pool.get(idx)
		if err == nil && e.tag != want {
			err = fmt.Errorf("classfile: constant pool index %d has tag %d, want %d", idx, e.tag, want)
		}

		if err != nil {
			return "", err
		}

		return a.pool.Utf8(e.ref1)
	}

	nameIdx, err := r.u2()
	if err != nil {
		return nil, err
	}

	name, err := named(nameIdx, TagModule)
	if err != nil {
		return nil, err
	}

	flags, err := r.u2()
	if err != nil {
		return nil, err
	}

	versionIdx, err := r.u2()
	if err != nil {
		return nil, err
	}

	var version string

	if versionIdx != 0 {
		if version, err = a.pool.Utf8(versionIdx); err != nil {
			return nil, err
		}
	}

	m := &ModuleInfo{Name: name, Flags: flags, Version: version}

	reqCount, err := r.u2()
	if err != nil {
		return nil, err
	}

	for i := uint16(0); i < reqCount; i++ {
		modIdx, err := r.u2()
		if err != nil {
			return nil, err
		}

		rflags, err := r.u2()
		if err != nil {
			return nil, err
		}

		rversionIdx, err := r.u2()
		if err != nil {
			return nil, err
		}

		modName, err := named(modIdx, TagModule)
		if err != nil {
			return nil, err
		}

		var rversion string

		if rversionIdx != 0 {
			if rversion, err = a.pool.Utf8(rversionIdx); err != nil {
				return nil, err
			}
		}

		m.Requires = append(m.Requires, ModuleRequires{modName, rflags, rversion})
	}

	readPackages := func() ([]ModulePackage, error) {
		n, err := r.u2()
		if err != nil {
			return nil, err
		}

		out := make([]ModulePackage, 0, n)

		for i := uint16(0); i < n; i++ {
			pkgIdx, err := r.u2()
			if err != nil {
				return nil, err
			}

			pflags, err := r.u2()
			if err != nil {
				return nil, err
			}

			toCount, err := r.u2()
			if err != nil {
				return nil, err
			}

			pkg, err := named(pkgIdx, TagPackage)
			if err != nil {
				return nil, err
			}

			to := make([]string, 0, toCount)

			for j := uint16(0); j < toCount; j++ {
				toIdx, err := r.u2()
				if err != nil {
					return nil, err
				}

				toName, err := named(toIdx, TagModule)
				if err != nil {
					return nil, err
				}

				to = append(to, toName)
			}

			out = append(out, ModulePackage{pkg, pflags, to})
		}

		return out, nil
	}

	if m.Exports, err = readPackages(); err != nil {
		return nil, err
	}

	if m.Opens, err = readPackages(); err != nil {
		return nil, err
	}

	usesCount, err := r.u2()
	if err != nil {
		return nil, err
	}

	for i := uint16(0); i < usesCount; i++ {
		idx, err := r.u2()
		if err != nil {
			return nil, err
		}

		u, err := a.pool.ClassName(idx)
		if err != nil {
			return nil, err
		}

		m.Uses = append(m.Uses, u)
	}

	providesCount, err := r.u2()
	if err != nil {
		return nil, err
	}

	for i := uint16(0); i < providesCount; i++ {
		svcIdx, err := r.u2()
		if err != nil {
			return nil, err
		}

		withCount, err := r.u2()
		if err != nil {
			return nil, err
		}

		svc, err := a.pool.ClassName(svcIdx)
		if err != nil {
			return nil, err
		}

		with := make([]string, 0, withCount)

		for j := uint16(0); j < withCount; j++ {
			idx, err := r.u2()
			if err != nil {
				return nil, err
			}

			withName, err := a.pool.ClassName(idx)
			if err != nil {
				return nil, err
			}

			with = append(with, withName)
		}

		m.Provides = append(m.Provides, ModuleProvides{svc, with})
	}

	return m, nil
}

// readAttributeTable reads an attributes_count-prefixed sequence and invokes
// apply once per attribute with its resolved name and a byteReader scoped to
// exactly its payload; apply may ignore a name it doesn't recognise, which is
// how unknown attributes are skipped (§4.B "unknown attribute kinds are
// ignored").
func readAttributeTable(r *byteReader, pool *ConstantPoolReader, apply func(name string, payload *byteReader) error) error {
	count, err := r.u2()
	if err != nil {
		return err
	}

	for i := uint16(0); i < count; i++ {
		nameIdx, err := r.u2()
		if err != nil {
			return err
		}

		length, err := r.u4()
		if err != nil {
			return err
		}

		raw, err := r.take(int(length))
		if err != nil {
			return err
		}

		name, err := pool.Utf8(nameIdx)
		if err != nil {
			return err
		}

		if err := apply(name, newByteReader(raw)); err != nil {
			return err
		}
	}

	return nil
}
