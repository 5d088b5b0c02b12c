package classfile

import "fmt"

// PoolTag is a JVMS 4.4 constant_pool tag byte.
type PoolTag byte

// Constant pool tags (JVMS Table 4.4-A).
const (
	TagUtf8               PoolTag = 1
	TagInteger            PoolTag = 3
	TagFloat              PoolTag = 4
	TagLong               PoolTag = 5
	TagDouble             PoolTag = 6
	TagClass              PoolTag = 7
	TagString             PoolTag = 8
	TagFieldref           PoolTag = 9
	TagMethodref           PoolTag = 10
	TagInterfaceMethodref PoolTag = 11
	TagNameAndType        PoolTag = 12
	TagMethodHandle       PoolTag = 15
	TagMethodType         PoolTag = 16
	TagDynamic            PoolTag = 17
	TagInvokeDynamic      PoolTag = 18
	TagModule             PoolTag = 19
	TagPackage            PoolTag = 20
)

// entry is one constant_pool slot. Exactly the fields implied by Tag are
// meaningful; entry values are compared by Go equality for builder
// deduplication, so every variant must be expressed with plain comparable
// fields (strings/ints), never pointers.
type entry struct {
	tag PoolTag

	// TagUtf8
	utf8 string

	// TagInteger / TagFloat (stored bit-for-bit as uint32)
	bits32 uint32

	// TagLong / TagDouble (stored bit-for-bit as uint64)
	bits64 uint64

	// TagClass / TagString / TagMethodType / TagModule / TagPackage: index of
	// referenced Utf8.
	ref1 uint16

	// TagFieldref / TagMethodref / TagInterfaceMethodref: class index,
	// name_and_type index. TagNameAndType: name index, descriptor index.
	// TagMethodHandle: reference_kind (low byte of ref1), reference index.
	ref2 uint16

	// TagDynamic / TagInvokeDynamic: bootstrap_method_attr_index.
	bootstrapIndex uint16
}

// ReferenceKind enumerates the JVMS 4.4.8 method handle reference kinds.
type ReferenceKind byte

// Method handle reference kinds.
const (
	RefGetField         ReferenceKind = 1
	RefGetStatic        ReferenceKind = 2
	RefPutField         ReferenceKind = 3
	RefPutStatic        ReferenceKind = 4
	RefInvokeVirtual    ReferenceKind = 5
	RefInvokeStatic     ReferenceKind = 6
	RefInvokeSpecial    ReferenceKind = 7
	RefNewInvokeSpecial ReferenceKind = 8
	RefInvokeInterface  ReferenceKind = 9
)

// PoolBuilder incrementally constructs a constant pool, deduplicating on
// value (§4.B "Deduplicates on value"): repeated calls with the same
// argument(s) return the same index (§8 item 2).
//
// Indices are 1-based; LONG and DOUBLE each consume two consecutive slots,
// every other kind consumes one, matching JVMS 4.4.5's "in retrospect, making
// 8-byte constants take two constant pool entries ... was a poor choice".
type PoolBuilder struct {
	entries []entry       // index 0 unused; entries[i] is slot i (or the first of a 2-slot entry)
	index   map[entry]uint16
}

// NewPoolBuilder constructs an empty pool builder (the implicit slot 0 is
// reserved, as no valid constant_pool index is ever zero).
func NewPoolBuilder() *PoolBuilder {
	return &PoolBuilder{
		entries: []entry{{}}, // placeholder for index 0
		index:   make(map[entry]uint16),
	}
}

// insert appends e if not already present (by value) and returns its index;
// wide is true for Long/Double, which additionally reserve the following
// slot as an unusable placeholder (JVMS 4.4.5).
func (b *PoolBuilder) insert(e entry, wide bool) uint16 {
	if idx, ok := b.index[e]; ok {
		return idx
	}

	idx := uint16(len(b.entries))
	b.entries = append(b.entries, e)
	b.index[e] = idx

	if wide {
		b.entries = append(b.entries, entry{}) // unusable placeholder slot
	}

	return idx
}

// Utf8 inserts (or finds) a CONSTANT_Utf8_info.
func (b *PoolBuilder) Utf8(s string) uint16 {
	return b.insert(entry{tag: TagUtf8, utf8: s}, false)
}

// ClassInfo inserts (or finds) a CONSTANT_Class_info naming the given binary
// class name (not a Utf8 index — the caller supplies the name, and this
// method interns the backing Utf8 itself, per §4.B "classInfo(utf8)").
func (b *PoolBuilder) ClassInfo(binaryName string) uint16 {
	u := b.Utf8(binaryName)
	return b.insert(entry{tag: TagClass, ref1: u}, false)
}

// String inserts (or finds) a CONSTANT_String_info for the given text.
func (b *PoolBuilder) String(s string) uint16 {
	u := b.Utf8(s)
	return b.insert(entry{tag: TagString, ref1: u}, false)
}

// Integer inserts (or finds) a CONSTANT_Integer_info.
func (b *PoolBuilder) Integer(v int32) uint16 {
	return b.insert(entry{tag: TagInteger, bits32: uint32(v)}, false)
}

// Long inserts (or finds) a CONSTANT_Long_info (consumes two slots).
func (b *PoolBuilder) Long(v int64) uint16 {
	return b.insert(entry{tag: TagLong, bits64: uint64(v)}, true)
}

// Float inserts (or finds) a CONSTANT_Float_info, keyed on the IEEE-754 bit
// pattern so that +0.0/-0.0 and distinct NaN payloads are not conflated with
// Integer's bits32 representation (the tag differentiates them regardless).
func (b *PoolBuilder) Float(bits uint32) uint16 {
	return b.insert(entry{tag: TagFloat, bits32: bits}, false)
}

// Double inserts (or finds) a CONSTANT_Double_info (consumes two slots),
// keyed on the IEEE-754 bit pattern.
func (b *PoolBuilder) Double(bits uint64) uint16 {
	return b.insert(entry{tag: TagDouble, bits64: bits}, true)
}

// NameAndType inserts (or finds) a CONSTANT_NameAndType_info.
func (b *PoolBuilder) NameAndType(name, descriptor string) uint16 {
	n := b.Utf8(name)
	d := b.Utf8(descriptor)

	return b.insert(entry{tag: TagNameAndType, ref1: n, ref2: d}, false)
}

// FieldRef inserts (or finds) a CONSTANT_Fieldref_info.
func (b *PoolBuilder) FieldRef(owner, name, descriptor string) uint16 {
	c := b.ClassInfo(owner)
	nt := b.NameAndType(name, descriptor)

	return b.insert(entry{tag: TagFieldref, ref1: c, ref2: nt}, false)
}

// MethodRef inserts (or finds) a CONSTANT_Methodref_info.
func (b *PoolBuilder) MethodRef(owner, name, descriptor string) uint16 {
	c := b.ClassInfo(owner)
	nt := b.NameAndType(name, descriptor)

	return b.insert(entry{tag: TagMethodref, ref1: c, ref2: nt}, false)
}

// InterfaceMethodRef inserts (or finds) a CONSTANT_InterfaceMethodref_info.
func (b *PoolBuilder) InterfaceMethodRef(owner, name, descriptor string) uint16 {
	c := b.ClassInfo(owner)
	nt := b.NameAndType(name, descriptor)

	return b.insert(entry{tag: TagInterfaceMethodref, ref1: c, ref2: nt}, false)
}

// MethodHandle inserts (or finds) a CONSTANT_MethodHandle_info referencing a
// field or method depending on kind.
func (b *PoolBuilder) MethodHandle(kind ReferenceKind, refIndex uint16) uint16 {
	return b.insert(entry{tag: TagMethodHandle, ref1: uint16(kind), ref2: refIndex}, false)
}

// MethodType inserts (or finds) a CONSTANT_MethodType_info for the given
// method descriptor.
func (b *PoolBuilder) MethodType(descriptor string) uint16 {
	u := b.Utf8(descriptor)
	return b.insert(entry{tag: TagMethodType, ref1: u}, false)
}

// Dynamic inserts (or finds) a CONSTANT_Dynamic_info.
func (b *PoolBuilder) Dynamic(bootstrapIndex uint16, name, descriptor string) uint16 {
	nt := b.NameAndType(name, descriptor)
	return b.insert(entry{tag: TagDynamic, bootstrapIndex: bootstrapIndex, ref2: nt}, false)
}

// InvokeDynamic inserts (or finds) a CONSTANT_InvokeDynamic_info.
func (b *PoolBuilder) InvokeDynamic(bootstrapIndex uint16, name, descriptor string) uint16 {
	nt := b.NameAndType(name, descriptor)
	return b.insert(entry{tag: TagInvokeDynamic, bootstrapIndex: bootstrapIndex, ref2: nt}, false)
}

// ModuleInfoEntry inserts (or finds) a CONSTANT_Module_info.
func (b *PoolBuilder) ModuleInfoEntry(name string) uint16 {
	u := b.Utf8(name)
	return b.insert(entry{tag: TagModule, ref1: u}, false)
}

// PackageInfo inserts (or finds) a CONSTANT_Package_info.
func (b *PoolBuilder) PackageInfo(name string) uint16 {
	u := b.Utf8(name)
	return b.insert(entry{tag: TagPackage, ref1: u}, false)
}

// Len returns the constant_pool_count value (one more than the highest valid
// index, per JVMS 4.1).
func (b *PoolBuilder) Len() uint16 {
	return uint16(len(b.entries))
}

// Entries exposes the raw slots in index order for the writer; index 0 and
// the placeholder slot following a Long/Double are zero-value entries.
func (b *PoolBuilder) Entries() []entry {
	return b.entries
}

// ConstantPoolReader is the read-side counterpart: it stores raw entries
// read off the wire and materialises Utf8 strings (and anything built on
// top of them) lazily, validating the tag matches what the caller expected
// (§4.B "materialises strings lazily via a ConstantPoolReader that validates
// tags on demand").
type ConstantPoolReader struct {
	entries []entry
}

// NewConstantPoolReader wraps a decoded entry slice (produced by ClassReader).
func NewConstantPoolReader(entries []entry) *ConstantPoolReader {
	return &ConstantPoolReader{entries}
}

func (r *ConstantPoolReader) get(index uint16) (entry, error) {
	if index == 0 || int(index) >= len(r.entries) {
		return entry{}, fmt.Errorf("classfile: constant pool index %d out of range", index)
	}

	return r.entries[index], nil
}

// Utf8 returns the Utf8 string at index, validating the tag.
func (r *ConstantPoolReader) Utf8(index uint16) (string, error) {
	e, err := r.get(index)
	if err != nil {
		return "", err
	}

	if e.tag != TagUtf8 {
		return "", fmt.Errorf("classfile: constant pool index %d is not CONSTANT_Utf8 (tag %d)", index, e.tag)
	}

	return e.utf8, nil
}

// ClassName resolves a CONSTANT_Class_info at index to its binary name.
func (r *ConstantPoolReader) ClassName(index uint16) (string, error) {
	e, err := r.get(index)
	if err != nil {
		return "", err
	}

	if e.tag != TagClass {
		return "", fmt.Errorf("classfile: constant pool index %d is not CONSTANT_Class (tag %d)", index, e.tag)
	}

	return r.Utf8(e.ref1)
}

// String resolves a CONSTANT_String_info at index to its text.
func (r *ConstantPoolReader) String(index uint16) (string, error) {
	e, err := r.get(index)
	if err != nil {
		return "", err
	}

	if e.tag != TagString {
		return "", fmt.Errorf("classfile: constant pool index %d is not CONSTANT_String (tag %d)", index, e.tag)
	}

	return r.Utf8(e.ref1)
}

// Integer resolves a CONSTANT_Integer_info at index.
func (r *ConstantPoolReader) Integer(index uint16) (int32, error) {
	e, err := r.get(index)
	if err != nil {
		return 0, err
	}

	if e.tag != TagInteger {
		return 0, fmt.Errorf("classfile: constant pool index %d is not CONSTANT_Integer (tag %d)", index, e.tag)
	}

	return int32(e.bits32), nil
}

// FloatBits resolves a CONSTANT_Float_info at index to its raw IEEE-754 bits.
func (r *ConstantPoolReader) FloatBits(index uint16) (uint32, error) {
	e, err := r.get(index)
	if err != nil {
		return 0, err
	}

	if e.tag != TagFloat {
		return 0, fmt.Errorf("classfile: constant pool index %d is not CONSTANT_Float (tag %d)", index, e.tag)
	}

	return e.bits32, nil
}

// Long resolves a CONSTANT_Long_info at index.
func (r *ConstantPoolReader) Long(index uint16) (int64, error) {
	e, err := r.get(index)
	if err != nil {
		return 0, err
	}

	if e.tag != TagLong {
		return 0, fmt.Errorf("classfile: constant pool index %d is not CONSTANT_Long (tag %d)", index, e.tag)
	}

	return int64(e.bits64), nil
}

// DoubleBits resolves a CONSTANT_Double_info at index to its raw IEEE-754 bits.
func (r *ConstantPoolReader) DoubleBits(index uint16) (uint64, error) {
	e, err := r.get(index)
	if err != nil {
		return 0, err
	}

	if e.tag != TagDouble {
		return 0, fmt.Errorf("classfile: constant pool index %d is not CONSTANT_Double (tag %d)", index, e.tag)
	}

	return e.bits64, nil
}

// NameAndType resolves a CONSTANT_NameAndType_info at index to its name and
// descriptor.
func (r *ConstantPoolReader) NameAndType(index uint16) (name, descriptor string, err error) {
	e, err := r.get(index)
	if err != nil {
		return "", "", err
	}

	if e.tag != TagNameAndType {
		return "", "", fmt.Errorf("classfile: constant pool index %d is not CONSTANT_NameAndType (tag %d)", index, e.tag)
	}

	if name, err = r.Utf8(e.ref1); err != nil {
		return "", "", err
	}

	descriptor, err = r.Utf8(e.ref2)

	return name, descriptor, err
}

// Tag returns the raw tag at index, for attribute/annotation decoding that
// branches on constant kind (e.g. element_value's const_value_index).
func (r *ConstantPoolReader) Tag(index uint16) (PoolTag, error) {
	e, err := r.get(index)
	if err != nil {
		return 0, err
	}

	return e.tag, nil
}
