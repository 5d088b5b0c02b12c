package classfile

import (
	"reflect"
	"testing"
)

// roundTrip serialises cf, re-parses the bytes, and returns the result,
// failing the test on any codec error (§8 item 1: "Write(Read(bytes)) and
// Read(Write(classfile)) are both identity, modulo constant pool layout").
func roundTrip(t *testing.T, cf *ClassFile) *ClassFile {
	t.Helper()

	data := Write(cf)

	got, err := Read(data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	return got
}

func TestRoundTripMinimalClass(t *testing.T) {
	cf := &ClassFile{
		Version:     Java17,
		AccessFlags: AccPublic | AccSuper,
		Name:        "a/A",
		SuperName:   "java/lang/Object",
	}

	got := roundTrip(t, cf)

	if got.Name != cf.Name || got.SuperName != cf.SuperName {
		t.Fatalf("identity mismatch: %+v vs %+v", got, cf)
	}

	if got.Version != cf.Version {
		t.Fatalf("version mismatch: %+v vs %+v", got.Version, cf.Version)
	}

	if got.AccessFlags != cf.AccessFlags {
		t.Fatalf("access flags mismatch: %#x vs %#x", got.AccessFlags, cf.AccessFlags)
	}
}

func TestRoundTripFieldsAndMethods(t *testing.T) {
	cf := &ClassFile{
		Version:     Java17,
		AccessFlags: AccPublic,
		Name:        "a/A",
		SuperName:   "java/lang/Object",
		Interfaces:  []string{"java/io/Serializable", "java/lang/Comparable"},
		Fields: []FieldInfo{
			{
				AccessFlags:   AccPrivate | AccStatic | AccFinal,
				Name:          "X",
				Descriptor:    "I",
				ConstantValue: &ConstantValue{Kind: CVInt, Int: 42},
			},
			{
				AccessFlags: AccPublic,
				Name:        "name",
				Descriptor:  "Ljava/lang/String;",
				Signature:   "Ljava/lang/String;",
			},
		},
		Methods: []MethodInfo{
			{
				AccessFlags: AccPublic,
				Name:        "<init>",
				Descriptor:  "()V",
			},
			{
				AccessFlags: AccPublic | AccAbstract,
				Name:        "get",
				Descriptor:  "()Ljava/lang/Object;",
				Signature:   "()TT;",
				Exceptions:  []string{"java/io/IOException"},
			},
		},
		Deprecated: true,
	}

	got := roundTrip(t, cf)

	if len(got.Fields) != 2 || len(got.Methods) != 2 {
		t.Fatalf("member count mismatch: %d fields, %d methods", len(got.Fields), len(got.Methods))
	}

	if got.Fields[0].ConstantValue == nil || got.Fields[0].ConstantValue.Int != 42 {
		t.Fatalf("constant value not preserved: %+v", got.Fields[0].ConstantValue)
	}

	if got.Fields[1].Signature != "Ljava/lang/String;" {
		t.Fatalf("field signature not preserved: %q", got.Fields[1].Signature)
	}

	if got.Methods[1].Signature != "()TT;" {
		t.Fatalf("method signature not preserved: %q", got.Methods[1].Signature)
	}

	if !reflect.DeepEqual(got.Methods[1].Exceptions, []string{"java/io/IOException"}) {
		t.Fatalf("exceptions not preserved: %+v", got.Methods[1].Exceptions)
	}

	if !got.Deprecated {
		t.Fatalf("Deprecated not preserved")
	}

	if !reflect.DeepEqual(got.Interfaces, cf.Interfaces) {
		t.Fatalf("interfaces not preserved: %+v vs %+v", got.Interfaces, cf.Interfaces)
	}
}

func TestRoundTripAnnotationsAndTypeAnnotations(t *testing.T) {
	anno := Annotation{
		Type: "Ljava/lang/Deprecated;",
		Elements: []ElementValuePair{
			{Name: "forRemoval", Value: ElementValue{Tag: TagBoolean, ConstInt: 1}},
		},
	}

	ta := TypeAnnotation{
		Target:     TypeAnnotationTarget{Kind: TargetField},
		Path:       TypePath{},
		Annotation: Annotation{Type: "Lorg/checkerframework/checker/nullness/qual/NonNull;"},
	}

	cf := &ClassFile{
		Version:     Java17,
		AccessFlags: AccPublic,
		Name:        "a/A",
		SuperName:   "java/lang/Object",
		Fields: []FieldInfo{
			{
				AccessFlags:         AccPublic,
				Name:                "x",
				Descriptor:          "Ljava/lang/Object;",
				Annotations:         []Annotation{anno},
				TypeAnnotations:     []TypeAnnotation{ta},
			},
		},
	}

	got := roundTrip(t, cf)

	f := got.Fields[0]

	if len(f.Annotations) != 1 || f.Annotations[0].Type != anno.Type {
		t.Fatalf("annotation not preserved: %+v", f.Annotations)
	}

	if f.Annotations[0].Elements[0].Value.ConstInt != 1 {
		t.Fatalf("annotation element not preserved: %+v", f.Annotations[0].Elements)
	}

	if len(f.TypeAnnotations) != 1 || f.TypeAnnotations[0].Target.Kind != TargetField {
		t.Fatalf("type annotation not preserved: %+v", f.TypeAnnotations)
	}
}

func TestRoundTripNestAndPermittedSubclasses(t *testing.T) {
	cf := &ClassFile{
		Version:             Java17,
		AccessFlags:         AccPublic | AccFinal | AccSuper,
		Name:                "a/A$B",
		SuperName:           "java/lang/Object",
		NestHost:            "a/A",
		NestMembers:         []string{"a/A$B", "a/A$C"},
		PermittedSubclasses: []string{"a/A$X", "a/A$Y"},
		TransitiveJar:       "libs/foo.jar",
	}

	got := roundTrip(t, cf)

	if got.NestHost != cf.NestHost {
		t.Fatalf("nest host not preserved: %q", got.NestHost)
	}

	if !reflect.DeepEqual(got.NestMembers, cf.NestMembers) {
		t.Fatalf("nest members not preserved: %+v", got.NestMembers)
	}

	if !reflect.DeepEqual(got.PermittedSubclasses, cf.PermittedSubclasses) {
		t.Fatalf("permitted subclasses not preserved: %+v", got.PermittedSubclasses)
	}

	if got.TransitiveJar != cf.TransitiveJar {
		t.Fatalf("transitive jar not preserved: %q", got.TransitiveJar)
	}
}

func TestRoundTripRecord(t *testing.T) {
	cf := &ClassFile{
		Version:     Java17,
		AccessFlags: AccPublic | AccFinal | AccSuper,
		Name:        "a/Point",
		SuperName:   "java/lang/Record",
		Record: &RecordInfo{
			Components: []RecordComponent{
				{Name: "x", Descriptor: "I"},
				{Name: "y", Descriptor: "I", Signature: ""},
			},
		},
	}

	got := roundTrip(t, cf)

	if got.Record == nil || len(got.Record.Components) != 2 {
		t.Fatalf("record not preserved: %+v", got.Record)
	}

	if got.Record.Components[0].Name != "x" || got.Record.Components[1].Name != "y" {
		t.Fatalf("record component names not preserved: %+v", got.Record.Components)
	}
}

func TestRoundTripModule(t *testing.T) {
	cf := &ClassFile{
		Version:     Java17,
		AccessFlags: AccModule,
		Name:        "module-info",
		Module: &ModuleInfo{
			Name:     "com.example.foo",
			Flags:    0,
			Requires: []ModuleRequires{{Module: "java.base", Flags: AccMandated}},
			Exports:  []ModulePackage{{Package: "com/example/foo", To: nil}},
			Uses:     []string{"com/example/foo/Service"},
			Provides: []ModuleProvides{{Service: "com/example/foo/Service", With: []string{"com/example/foo/Impl"}}},
		},
	}

	got := roundTrip(t, cf)

	if got.Module == nil || got.Module.Name != "com.example.foo" {
		t.Fatalf("module not preserved: %+v", got.Module)
	}

	if len(got.Module.Requires) != 1 || got.Module.Requires[0].Module != "java.base" {
		t.Fatalf("module requires not preserved: %+v", got.Module.Requires)
	}

	if len(got.Module.Provides) != 1 || got.Module.Provides[0].With[0] != "com/example/foo/Impl" {
		t.Fatalf("module provides not preserved: %+v", got.Module.Provides)
	}
}

func TestRoundTripMethodParametersAndAnnotationDefault(t *testing.T) {
	cf := &ClassFile{
		Version:     Java17,
		AccessFlags: AccInterface | AccAbstract,
		Name:        "a/Anno",
		SuperName:   "java/lang/Object",
		Interfaces:  []string{"java/lang/annotation/Annotation"},
		Methods: []MethodInfo{
			{
				AccessFlags:       AccPublic | AccAbstract,
				Name:              "value",
				Descriptor:        "()I",
				AnnotationDefault: &ElementValue{Tag: TagInt, ConstInt: 0},
			},
			{
				AccessFlags: AccPublic,
				Name:        "m",
				Descriptor:  "(I)V",
				Parameters:  []MethodParameter{{Name: "count", AccessFlags: 0}},
			},
		},
	}

	got := roundTrip(t, cf)

	if got.Methods[0].AnnotationDefault == nil || got.Methods[0].AnnotationDefault.ConstInt != 0 {
		t.Fatalf("annotation default not preserved: %+v", got.Methods[0].AnnotationDefault)
	}

	if len(got.Methods[1].Parameters) != 1 || got.Methods[1].Parameters[0].Name != "count" {
		t.Fatalf("method parameters not preserved: %+v", got.Methods[1].Parameters)
	}
}

func TestReadRejectsBadMagic(t *testing.T) {
	_, err := Read([]byte{0, 0, 0, 0})
	if err == nil {
		t.Fatal("expected error for bad magic")
	}
}

func TestReadRejectsOldMajorVersion(t *testing.T) {
	var w byteWriter

	w.u4(Magic)
	w.u2(0)
	w.u2(44) // at MinSupportedMajor, must be rejected
	w.u2(1)  // constant_pool_count = 1 (empty pool)

	_, err := Read(w.Bytes())
	if err == nil {
		t.Fatal("expected error for major version at MinSupportedMajor")
	}
}

// TestPoolBuilderDedup covers §8 item 2: repeated inserts of the same value
// return the same index, so a class referencing the same literal or class
// name many times doesn't bloat the constant pool.
func TestPoolBuilderDedup(t *testing.T) {
	pool := NewPoolBuilder()

	i1 := pool.Utf8("java/lang/Object")
	i2 := pool.Utf8("java/lang/Object")

	if i1 != i2 {
		t.Fatalf("Utf8 dedup failed: %d != %d", i1, i2)
	}

	c1 := pool.ClassInfo("a/A")
	c2 := pool.ClassInfo("a/A")

	if c1 != c2 {
		t.Fatalf("ClassInfo dedup failed: %d != %d", c1, c2)
	}

	n1 := pool.Integer(7)
	n2 := pool.Integer(7)

	if n1 != n2 {
		t.Fatalf("Integer dedup failed: %d != %d", n1, n2)
	}

	// Long and Integer must not collide despite equal numeric value.
	l1 := pool.Long(7)
	if l1 == n1 {
		t.Fatalf("Long and Integer entries unexpectedly share an index")
	}
}

func TestPoolBuilderLongDoubleReserveTwoSlots(t *testing.T) {
	pool := NewPoolBuilder()

	before := pool.Len()
	idx := pool.Long(123456789)
	after := pool.Len()

	if after != before+2 {
		t.Fatalf("Long entry should consume two slots: before=%d after=%d", before, after)
	}

	if idx != before {
		t.Fatalf("unexpected Long index: %d", idx)
	}
}

func TestDescriptorAndMethodDescriptor(t *testing.T) {
	cf := &ClassFile{
		Version:     Java17,
		AccessFlags: AccPublic,
		Name:        "a/A",
		SuperName:   "java/lang/Object",
		Methods: []MethodInfo{
			{AccessFlags: AccPublic, Name: "m", Descriptor: "(ILjava/lang/String;)[J"},
		},
	}

	got := roundTrip(t, cf)

	if got.Methods[0].Descriptor != "(ILjava/lang/String;)[J" {
		t.Fatalf("descriptor not preserved: %q", got.Methods[0].Descriptor)
	}
}
