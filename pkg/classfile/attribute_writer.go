package classfile

// attributeWriter encodes one JVMS attribute_info: name_index, length, then
// payload. Every attribute kind the writer handles (§4.B) is built here.
// Variable-length attributes are first serialised into a scratch buffer so
// their length can be computed before the outer name_index/length/payload
// triple is emitted, matching §4.B's "lengths must be computed before
// emission" requirement.
type attributeWriter struct {
	pool *PoolBuilder
}

func newAttributeWriter(pool *PoolBuilder) *attributeWriter {
	return &attributeWriter{pool}
}

// emit writes one attribute: name_index u2, attribute_length u4, payload.
func (a *attributeWriter) emit(w *byteWriter, name string, payload []byte) {
	w.u2(a.pool.Utf8(name))
	w.u4(uint32(len(payload)))
	w.bytesRaw(payload)
}

func (a *attributeWriter) signature(w *byteWriter, sig string) {
	if sig == "" {
		return
	}

	var scratch byteWriter

	scratch.u2(a.pool.Utf8(sig))
	a.emit(w, "Signature", scratch.Bytes())
}

func (a *attributeWriter) deprecated(w *byteWriter, deprecated bool) {
	if !deprecated {
		return
	}

	a.emit(w, "Deprecated", nil)
}

func (a *attributeWriter) exceptions(w *byteWriter, exceptions []string) {
	if len(exceptions) == 0 {
		return
	}

	var scratch byteWriter

	scratch.u2(uint16(len(exceptions)))

	for _, e := range exceptions {
		scratch.u2(a.pool.ClassInfo(e))
	}

	a.emit(w, "Exceptions", scratch.Bytes())
}

func (a *attributeWriter) constantValue(w *byteWriter, cv *ConstantValue) {
	if cv == nil {
		return
	}

	var scratch byteWriter

	var idx uint16

	switch cv.Kind {
	case CVLong:
		idx = a.pool.Long(cv.Long)
	case CVFloat:
		idx = a.pool.Float(floatBits(cv.Float))
	case CVDouble:
		idx = a.pool.Double(doubleBits(cv.Double))
	case CVString:
		idx = a.pool.String(cv.String)
	case CVBoolean:
		v := int32(0)
		if cv.Int != 0 {
			v = 1
		}

		idx = a.pool.Integer(v)
	default: // CVInt, CVShort, CVByte, CVChar
		idx = a.pool.Integer(cv.Int)
	}

	scratch.u2(idx)
	a.emit(w, "ConstantValue", scratch.Bytes())
}

func (a *attributeWriter) innerClasses(w *byteWriter, inner []InnerClass) {
	if len(inner) == 0 {
		return
	}

	var scratch byteWriter

	scratch.u2(uint16(len(inner)))

	for _, ic := range inner {
		scratch.u2(a.pool.ClassInfo(ic.InnerName))

		if ic.OuterName != "" {
			scratch.u2(a.pool.ClassInfo(ic.OuterName))
		} else {
			scratch.u2(0)
		}

		if ic.InnerSimpleName != "" {
			scratch.u2(a.pool.Utf8(ic.InnerSimpleName))
		} else {
			scratch.u2(0)
		}

		scratch.u2(ic.AccessFlags)
	}

	a.emit(w, "InnerClasses", scratch.Bytes())
}

func (a *attributeWriter) methodParameters(w *byteWriter, params []MethodParameter) {
	if params == nil {
		return
	}

	var scratch byteWriter

	scratch.u1(uint8(len(params)))

	for _, p := range params {
		if p.Name != "" {
			scratch.u2(a.pool.Utf8(p.Name))
		} else {
			scratch.u2(0)
		}

		scratch.u2(p.AccessFlags)
	}

	a.emit(w, "MethodParameters", scratch.Bytes())
}

func (a *attributeWriter) nestHost(w *byteWriter, host string) {
	if host == "" {
		return
	}

	var scratch byteWriter

	scratch.u2(a.pool.ClassInfo(host))
	a.emit(w, "NestHost", scratch.Bytes())
}

func (a *attributeWriter) nestMembers(w *byteWriter, members []string) {
	if len(members) == 0 {
		return
	}

	var scratch byteWriter

	scratch.u2(uint16(len(members)))

	for _, m := range members {
		scratch.u2(a.pool.ClassInfo(m))
	}

	a.emit(w, "NestMembers", scratch.Bytes())
}

func (a *attributeWriter) permittedSubclasses(w *byteWriter, subs []string) {
	if len(subs) == 0 {
		return
	}

	var scratch byteWriter

	scratch.u2(uint16(len(subs)))

	for _, s := range subs {
		scratch.u2(a.pool.ClassInfo(s))
	}

	a.emit(w, "PermittedSubclasses", scratch.Bytes())
}

func (a *attributeWriter) turbineTransitiveJar(w *byteWriter, originJar string) {
	if originJar == "" {
		return
	}

	var scratch byteWriter

	scratch.u2(a.pool.Utf8(originJar))
	a.emit(w, "TurbineTransitiveJar", scratch.Bytes())
}

func (a *attributeWriter) annotations(w *byteWriter, name string, annos []Annotation) {
	if len(annos) == 0 {
		return
	}

	var scratch byteWriter

	scratch.u2(uint16(len(annos)))

	aw := newAnnotationWriter(a.pool)
	for _, an := range annos {
		aw.writeAnnotation(&scratch, an)
	}

	a.emit(w, name, scratch.Bytes())
}

func (a *attributeWriter) parameterAnnotations(w *byteWriter, name string, paramAnnos [][]Annotation) {
	if paramAnnos == nil {
		return
	}

	var scratch byteWriter

	scratch.u1(uint8(len(paramAnnos)))

	aw := newAnnotationWriter(a.pool)
	for _, annos := range paramAnnos {
		scratch.u2(uint16(len(annos)))

		for _, an := range annos {
			aw.writeAnnotation(&scratch, an)
		}
	}

	a.emit(w, name, scratch.Bytes())
}

func (a *attributeWriter) typeAnnotations(w *byteWriter, name string, annos []TypeAnnotation) {
	if len(annos) == 0 {
		return
	}

	var scratch byteWriter

	scratch.u2(uint16(len(annos)))

	aw := newAnnotationWriter(a.pool)
	for _, ta := range annos {
		aw.writeTypeAnnotation(&scratch, ta)
	}

	a.emit(w, name, scratch.Bytes())
}

func (a *attributeWriter) annotationDefault(w *byteWriter, ev *ElementValue) {
	if ev == nil {
		return
	}

	var scratch byteWriter

	aw := newAnnotationWriter(a.pool)
	aw.writeElementValue(&scratch, *ev)
	a.emit(w, "AnnotationDefault", scratch.Bytes())
}

func (a *attributeWriter) record(w *byteWriter, rec *RecordInfo) {
	if rec == nil {
		return
	}

	var scratch byteWriter

	scratch.u2(uint16(len(rec.Components)))

	for _, c := range rec.Components {
		scratch.u2(a.pool.Utf8(c.Name))
		scratch.u2(a.pool.Utf8(c.Descriptor))

		var compAttrs byteWriter
		a.signature(&compAttrs, c.Signature)
		a.annotations(&compAttrs, "RuntimeVisibleAnnotations", c.Annotations)
		a.annotations(&compAttrs, "RuntimeInvisibleAnnotations", c.InvisibleAnnotations)
		a.typeAnnotations(&compAttrs, "RuntimeVisibleTypeAnnotations", c.TypeAnnotations)
		a.typeAnnotations(&compAttrs, "RuntimeInvisibleTypeAnnotations", c.InvisibleTypeAnnotations)

		count, raw := countAttributes(compAttrs.Bytes())
		scratch.u2(count)
		scratch.bytesRaw(raw)
	}

	a.emit(w, "Record", scratch.Bytes())
}

func (a *attributeWriter) module(w *byteWriter, m *ModuleInfo) {
	if m == nil {
		return
	}

	var scratch byteWriter

	scratch.u2(a.pool.ModuleInfoEntry(m.Name))
	scratch.u2(m.Flags)

	if m.Version != "" {
		scratch.u2(a.pool.Utf8(m.Version))
	} else {
		scratch.u2(0)
	}

	scratch.u2(uint16(len(m.Requires)))

	for _, r := range m.Requires {
		scratch.u2(a.pool.ModuleInfoEntry(r.Module))
		scratch.u2(r.Flags)

		if r.Version != "" {
			scratch.u2(a.pool.Utf8(r.Version))
		} else {
			scratch.u2(0)
		}
	}

	scratch.u2(uint16(len(m.Exports)))

	for _, e := range m.Exports {
		scratch.u2(a.pool.PackageInfo(e.Package))
		scratch.u2(e.Flags)
		scratch.u2(uint16(len(e.To)))

		for _, to := range e.To {
			scratch.u2(a.pool.ModuleInfoEntry(to))
		}
	}

	scratch.u2(uint16(len(m.Opens)))

	for _, o := range m.Opens {
		scratch.u2(a.pool.PackageInfo(o.Package))
		scratch.u2(o.Flags)
		scratch.u2(uint16(len(o.To)))

		for _, to := range o.To {
			scratch.u2(a.pool.ModuleInfoEntry(to))
		}
	}

	scratch.u2(uint16(len(m.Uses)))

	for _, u := range m.Uses {
		scratch.u2(a.pool.ClassInfo(u))
	}

	scratch.u2(uint16(len(m.Provides)))

	for _, p := range m.Provides {
		scratch.u2(a.pool.ClassInfo(p.Service))
		scratch.u2(uint16(len(p.With)))

		for _, with := range p.With {
			scratch.u2(a.pool.ClassInfo(with))
		}
	}

	a.emit(w, "Module", scratch.Bytes())
}

// countAttributes wraps a concatenated sequence of already-encoded
// attribute_info entries with its attributes_count, so callers that build a
// nested attribute table (e.g. Record component attributes) can reuse the
// same emit helpers used for the top-level ClassFile attribute table.
func countAttributes(encoded []byte) (count uint16, raw []byte) {
	r := newByteReader(encoded)

	for r.remaining() > 0 {
		count++

		if _, err := r.u2(); err != nil {
			break
		}

		length, err := r.u4()
		if err != nil {
			break
		}

		if err := r.skip(int(length)); err != nil {
			break
		}
	}

	return count, encoded
}
