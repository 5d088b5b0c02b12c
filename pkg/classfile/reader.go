package classfile

import "fmt"

// Read parses a JVMS 4.1 ClassFile byte stream, the inverse of Write. It
// rejects a bad magic number or a major version at or below
// MinSupportedMajor, builds a ConstantPoolReader over the raw pool entries,
// and is tolerant of attributes appearing out of the order Write emits them;
// unknown attribute kinds are skipped by their declared length rather than
// rejected (§4.B).
func Read(data []byte) (*ClassFile, error) {
	r := newByteReader(data)

	magic, err := r.u4()
	if err != nil {
		return nil, err
	}

	if magic != Magic {
		return nil, fmt.Errorf("classfile: bad magic %#08x", magic)
	}

	minor, err := r.u2()
	if err != nil {
		return nil, err
	}

	major, err := r.u2()
	if err != nil {
		return nil, err
	}

	if major <= MinSupportedMajor {
		return nil, fmt.Errorf("classfile: unsupported major version %d", major)
	}

	entries, err := readPool(r)
	if err != nil {
		return nil, err
	}

	pool := NewConstantPoolReader(entries)
	ar := newAttributeReader(pool)

	accessFlags, err := r.u2()
	if err != nil {
		return nil, err
	}

	thisIdx, err := r.u2()
	if err != nil {
		return nil, err
	}

	superIdx, err := r.u2()
	if err != nil {
		return nil, err
	}

	thisName, err := pool.ClassName(thisIdx)
	if err != nil {
		return nil, err
	}

	var superName string

	if superIdx != 0 {
		if superName, err = pool.ClassName(superIdx); err != nil {
			return nil, err
		}
	}

	ifaceCount, err := r.u2()
	if err != nil {
		return nil, err
	}

	interfaces := make([]string, 0, ifaceCount)

	for i := uint16(0); i < ifaceCount; i++ {
		idx, err := r.u2()
		if err != nil {
			return nil, err
		}

		name, err := pool.ClassName(idx)
		if err != nil {
			return nil, err
		}

		interfaces = append(interfaces, name)
	}

	fieldCount, err := r.u2()
	if err != nil {
		return nil, err
	}

	fields := make([]FieldInfo, 0, fieldCount)

	for i := uint16(0); i < fieldCount; i++ {
		f, err := readField(r, pool, ar)
		if err != nil {
			return nil, err
		}

		fields = append(fields, f)
	}

	methodCount, err := r.u2()
	if err != nil {
		return nil, err
	}

	methods := make([]MethodInfo, 0, methodCount)

	for i := uint16(0); i < methodCount; i++ {
		m, err := readMethod(r, pool, ar)
		if err != nil {
			return nil, err
		}

		methods = append(methods, m)
	}

	cf := &ClassFile{
		Version:     ClassVersion{Major: major, Minor: minor},
		AccessFlags: accessFlags,
		Name:        thisName,
		SuperName:   superName,
		Interfaces:  interfaces,
		Fields:      fields,
		Methods:     methods,
	}

	err = readAttributeTable(r, pool, func(name string, payload *byteReader) error {
		switch name {
		case "Signature":
			v, err := ar.signature(payload)
			cf.Signature = v

			return err
		case "Deprecated":
			cf.Deprecated = true
			return nil
		case "RuntimeVisibleAnnotations":
			v, err := ar.annotations(payload)
			cf.Annotations = v

			return err
		case "RuntimeInvisibleAnnotations":
			v, err := ar.annotations(payload)
			cf.InvisibleAnnotations = v

			return err
		case "InnerClasses":
			v, err := ar.innerClasses(payload)
			cf.InnerClasses = v

			return err
		case "Module":
			v, err := ar.module(payload)
			cf.Module = v

			return err
		case "NestHost":
			v, err := ar.nestHost(payload)
			cf.NestHost = v

			return err
		case "NestMembers":
			v, err := ar.classInfoList(payload)
			cf.NestMembers = v

			return err
		case "Record":
			v, err := ar.record(payload)
			cf.Record = v

			return err
		case "PermittedSubclasses":
			v, err := ar.classInfoList(payload)
			cf.PermittedSubclasses = v

			return err
		case "TurbineTransitiveJar":
			v, err := ar.turbineTransitiveJar(payload)
			cf.TransitiveJar = v

			return err
		default:
			return nil // unknown attribute kinds are ignored
		}
	})
	if err != nil {
		return nil, err
	}

	return cf, nil
}

func readField(r *byteReader, pool *ConstantPoolReader, ar *attributeReader) (FieldInfo, error) {
	accessFlags, err := r.u2()
	if err != nil {
		return FieldInfo{}, err
	}

	nameIdx, err := r.u2()
	if err != nil {
		return FieldInfo{}, err
	}

	descIdx, err := r.u2()
	if err != nil {
		return FieldInfo{}, err
	}

	name, err := pool.Utf8(nameIdx)
	if err != nil {
		return FieldInfo{}, err
	}

	desc, err := pool.Utf8(descIdx)
	if err != nil {
		return FieldInfo{}, err
	}

	f := FieldInfo{AccessFlags: accessFlags, Name: name, Descriptor: desc}

	err = readAttributeTable(r, pool, func(attrName string, payload *byteReader) error {
		switch attrName {
		case "Signature":
			v, err := ar.signature(payload)
			f.Signature = v

			return err
		case "Deprecated":
			f.Deprecated = true
			return nil
		case "ConstantValue":
			v, err := ar.constantValue(payload)
			f.ConstantValue = v

			return err
		case "RuntimeVisibleAnnotations":
			v, err := ar.annotations(payload)
			f.Annotations = v

			return err
		case "RuntimeInvisibleAnnotations":
			v, err := ar.annotations(payload)
			f.InvisibleAnnotations = v

			return err
		case "RuntimeVisibleTypeAnnotations":
			v, err := ar.typeAnnotations(payload)
			f.TypeAnnotations = v

			return err
		case "RuntimeInvisibleTypeAnnotations":
			v, err := ar.typeAnnotations(payload)
			f.InvisibleTypeAnnotations = v

			return err
		default:
			return nil
		}
	})

	return f, err
}

func readMethod(r *byteReader, pool *ConstantPoolReader, ar *attributeReader) (MethodInfo, error) {
	accessFlags, err := r.u2()
	if err != nil {
		return MethodInfo{}, err
	}

	nameIdx, err := r.u2()
	if err != nil {
		return MethodInfo{}, err
	}

	descIdx, err := r.u2()
	if err != nil {
		return MethodInfo{}, err
	}

	name, err := pool.Utf8(nameIdx)
	if err != nil {
		return MethodInfo{}, err
	}

	desc, err := pool.Utf8(descIdx)
	if err != nil {
		return MethodInfo{}, err
	}

	m := MethodInfo{AccessFlags: accessFlags, Name: name, Descriptor: desc}

	err = readAttributeTable(r, pool, func(attrName string, payload *byteReader) error {
		switch attrName {
		case "Signature":
			v, err := ar.signature(payload)
			m.Signature = v

			return err
		case "Deprecated":
			m.Deprecated = true
			return nil
		case "Exceptions":
			v, err := ar.exceptions(payload)
			m.Exceptions = v

			return err
		case "RuntimeVisibleAnnotations":
			v, err := ar.annotations(payload)
			m.Annotations = v

			return err
		case "RuntimeInvisibleAnnotations":
			v, err := ar.annotations(payload)
			m.InvisibleAnnotations = v

			return err
		case "RuntimeVisibleTypeAnnotations":
			v, err := ar.typeAnnotations(payload)
			m.TypeAnnotations = v

			return err
		case "RuntimeInvisibleTypeAnnotations":
			v, err := ar.typeAnnotations(payload)
			m.InvisibleTypeAnnotations = v

			return err
		case "RuntimeVisibleParameterAnnotations":
			v, err := ar.parameterAnnotations(payload)
			m.ParameterAnnotations = v

			return err
		case "RuntimeInvisibleParameterAnnotations":
			v, err := ar.parameterAnnotations(payload)
			m.InvisibleParameterAnnotations = v

			return err
		case "AnnotationDefault":
			v, err := ar.annotationDefault(payload)
			m.AnnotationDefault = v

			return err
		case "MethodParameters":
			v, err := ar.methodParameters(payload)
			m.Parameters = v

			return err
		default:
			return nil
		}
	})

	return m, err
}

// readPool decodes the constant_pool array, mirroring writePool's layout:
// Long/Double entries occupy their successor's index as an unusable
// placeholder, so the loop advances an extra step after reading one.
func readPool(r *byteReader) ([]entry, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}

	entries := make([]entry, count) // entries[0] unused

	for i := uint16(1); i < count; i++ {
		tagByte, err := r.u1()
		if err != nil {
			return nil, err
		}

		tag := PoolTag(tagByte)

		e := entry{tag: tag}

		switch tag {
		case TagUtf8:
			length, err := r.u2()
			if err != nil {
				return nil, err
			}

			b, err := r.take(int(length))
			if err != nil {
				return nil, err
			}

			e.utf8 = string(b)
		case TagInteger, TagFloat:
			v, err := r.u4()
			if err != nil {
				return nil, err
			}

			e.bits32 = v
		case TagLong, TagDouble:
			v, err := r.u8()
			if err != nil {
				return nil, err
			}

			e.bits64 = v
		case TagClass, TagString, TagMethodType, TagModule, TagPackage:
			v, err := r.u2()
			if err != nil {
				return nil, err
			}

			e.ref1 = v
		case TagFieldref, TagMethodref, TagInterfaceMethodref, TagNameAndType:
			v1, err := r.u2()
			if err != nil {
				return nil, err
			}

			v2, err := r.u2()
			if err != nil {
				return nil, err
			}

			e.ref1, e.ref2 = v1, v2
		case TagMethodHandle:
			kind, err := r.u1()
			if err != nil {
				return nil, err
			}

			refIdx, err := r.u2()
			if err != nil {
				return nil, err
			}

			e.ref1, e.ref2 = uint16(kind), refIdx
		case TagDynamic, TagInvokeDynamic:
			bootstrap, err := r.u2()
			if err != nil {
				return nil, err
			}

			nt, err := r.u2()
			if err != nil {
				return nil, err
			}

			e.bootstrapIndex, e.ref2 = bootstrap, nt
		default:
			return nil, fmt.Errorf("classfile: unknown constant pool tag %d at index %d", tag, i)
		}

		entries[i] = e

		if tag == TagLong || tag == TagDouble {
			i++ // the following index is an unusable placeholder
		}
	}

	return entries, nil
}
