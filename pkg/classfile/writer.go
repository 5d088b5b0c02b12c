package classfile

// Write serialises a ClassFile to its JVMS 4.1 byte encoding, bit-exact for
// the attribute kinds listed in §4.B. The constant pool is built in a single
// pass as the rest of the structure is visited, so the final pool contents
// are only known once the whole class has been walked; the pool is written
// last (its length is a prefix of the stream, so the header is built after
// the body using a second buffer).
func Write(cf *ClassFile) []byte {
	pool := NewPoolBuilder()
	aw := newAttributeWriter(pool)

	var body byteWriter

	thisClass := pool.ClassInfo(cf.Name)

	var superClass uint16
	if cf.SuperName != "" {
		superClass = pool.ClassInfo(cf.SuperName)
	}

	body.u2(cf.AccessFlags)
	body.u2(thisClass)
	body.u2(superClass)
	body.u2(uint16(len(cf.Interfaces)))

	for _, i := range cf.Interfaces {
		body.u2(pool.ClassInfo(i))
	}

	body.u2(uint16(len(cf.Fields)))

	for _, f := range cf.Fields {
		writeField(&body, pool, aw, f)
	}

	body.u2(uint16(len(cf.Methods)))

	for _, m := range cf.Methods {
		writeMethod(&body, pool, aw, m)
	}

	var classAttrs byteWriter

	aw.signature(&classAttrs, cf.Signature)
	aw.deprecated(&classAttrs, cf.Deprecated)
	aw.annotations(&classAttrs, "RuntimeVisibleAnnotations", cf.Annotations)
	aw.annotations(&classAttrs, "RuntimeInvisibleAnnotations", cf.InvisibleAnnotations)
	aw.innerClasses(&classAttrs, cf.InnerClasses)
	aw.module(&classAttrs, cf.Module)
	aw.nestHost(&classAttrs, cf.NestHost)
	aw.nestMembers(&classAttrs, cf.NestMembers)
	aw.record(&classAttrs, cf.Record)
	aw.permittedSubclasses(&classAttrs, cf.PermittedSubclasses)
	aw.turbineTransitiveJar(&classAttrs, cf.TransitiveJar)

	attrCount, attrBytes := countAttributes(classAttrs.Bytes())
	body.u2(attrCount)
	body.bytesRaw(attrBytes)

	// Now that every pool entry has been interned, emit magic/version/pool
	// followed by the body built above.
	var out byteWriter

	out.u4(Magic)
	out.u2(cf.Version.Minor)
	out.u2(cf.Version.Major)
	writePool(&out, pool)
	out.bytesRaw(body.Bytes())

	return out.Bytes()
}

func writePool(w *byteWriter, pool *PoolBuilder) {
	entries := pool.Entries()
	w.u2(pool.Len())

	i := 1
	for i < len(entries) {
		e := entries[i]
		w.u1(uint8(e.tag))

		switch e.tag {
		case TagUtf8:
			b := []byte(e.utf8)
			w.u2(uint16(len(b)))
			w.bytesRaw(b)
		case TagInteger, TagFloat:
			w.u4(e.bits32)
		case TagLong, TagDouble:
			w.u4(uint32(e.bits64 >> 32))
			w.u4(uint32(e.bits64))
			i++ // skip the placeholder slot
		case TagClass, TagString, TagMethodType, TagModule, TagPackage:
			w.u2(e.ref1)
		case TagFieldref, TagMethodref, TagInterfaceMethodref, TagNameAndType:
			w.u2(e.ref1)
			w.u2(e.ref2)
		case TagMethodHandle:
			w.u1(uint8(e.ref1))
			w.u2(e.ref2)
		case TagDynamic, TagInvokeDynamic:
			w.u2(e.bootstrapIndex)
			w.u2(e.ref2)
		}

		i++
	}
}

func writeField(body *byteWriter, pool *PoolBuilder, aw *attributeWriter, f FieldInfo) {
	body.u2(f.AccessFlags)
	body.u2(pool.Utf8(f.Name))
	body.u2(pool.Utf8(f.Descriptor))

	var attrs byteWriter

	aw.constantValue(&attrs, f.ConstantValue)
	aw.signature(&attrs, f.Signature)
	aw.deprecated(&attrs, f.Deprecated)
	aw.annotations(&attrs, "RuntimeVisibleAnnotations", f.Annotations)
	aw.annotations(&attrs, "RuntimeInvisibleAnnotations", f.InvisibleAnnotations)
	aw.typeAnnotations(&attrs, "RuntimeVisibleTypeAnnotations", f.TypeAnnotations)
	aw.typeAnnotations(&attrs, "RuntimeInvisibleTypeAnnotations", f.InvisibleTypeAnnotations)

	count, raw := countAttributes(attrs.Bytes())
	body.u2(count)
	body.bytesRaw(raw)
}

func writeMethod(body *byteWriter, pool *PoolBuilder, aw *attributeWriter, m MethodInfo) {
	body.u2(m.AccessFlags)
	body.u2(pool.Utf8(m.Name))
	body.u2(pool.Utf8(m.Descriptor))

	var attrs byteWriter

	aw.signature(&attrs, m.Signature)
	aw.exceptions(&attrs, m.Exceptions)
	aw.deprecated(&attrs, m.Deprecated)
	aw.annotations(&attrs, "RuntimeVisibleAnnotations", m.Annotations)
	aw.annotations(&attrs, "RuntimeInvisibleAnnotations", m.InvisibleAnnotations)
	aw.typeAnnotations(&attrs, "RuntimeVisibleTypeAnnotations", m.TypeAnnotations)
	aw.typeAnnotations(&attrs, "RuntimeInvisibleTypeAnnotations", m.InvisibleTypeAnnotations)
	aw.parameterAnnotations(&attrs, "RuntimeVisibleParameterAnnotations", m.ParameterAnnotations)
	aw.parameterAnnotations(&attrs, "RuntimeInvisibleParameterAnnotations", m.InvisibleParameterAnnotations)
	aw.annotationDefault(&attrs, m.AnnotationDefault)
	aw.methodParameters(&attrs, m.Parameters)

	count, raw := countAttributes(attrs.Bytes())
	body.u2(count)
	body.bytesRaw(raw)
}
