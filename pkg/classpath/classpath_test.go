package classpath

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"

	"github.com/google/turbine/pkg/classfile"
	"github.com/google/turbine/pkg/diag"
	"github.com/google/turbine/pkg/sym"
)

func TestByteSupplierMemoizesFetch(t *testing.T) {
	calls := 0

	s := NewByteSupplier(func() ([]byte, error) {
		calls++
		return []byte("x"), nil
	})

	for i := 0; i < 3; i++ {
		data, err := s.Get()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if string(data) != "x" {
			t.Fatalf("got %q, want x", data)
		}
	}

	if calls != 1 {
		t.Fatalf("expected fetch to run exactly once, ran %d times", calls)
	}
}

func TestByteSupplierMemoizesError(t *testing.T) {
	calls := 0
	want := errors.New("boom")

	s := NewByteSupplier(func() ([]byte, error) {
		calls++
		return nil, want
	})

	for i := 0; i < 2; i++ {
		if _, err := s.Get(); !errors.Is(err, want) {
			t.Fatalf("got err %v, want %v", err, want)
		}
	}

	if calls != 1 {
		t.Fatalf("expected fetch to run exactly once even on error, ran %d times", calls)
	}
}

func buildZip(t *testing.T, files map[string]string) *zip.Reader {
	t.Helper()

	var buf bytes.Buffer

	w := zip.NewWriter(&buf)

	for name, content := range files {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("zip.Create: %v", err)
		}

		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("zip write: %v", err)
		}
	}

	if err := w.Close(); err != nil {
		t.Fatalf("zip.Close: %v", err)
	}

	r, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("zip.NewReader: %v", err)
	}

	return r
}

func TestJarProviderServesClassEntry(t *testing.T) {
	r := buildZip(t, map[string]string{"a/A.class": "bytes", "META-INF/MANIFEST.MF": "x"})

	p := NewJarProvider("a.jar", r)

	s, ok := p.Get("a/A")
	if !ok {
		t.Fatalf("expected a/A to be served")
	}

	data, err := s.Get()
	if err != nil || string(data) != "bytes" {
		t.Fatalf("got (%q, %v)", data, err)
	}

	if _, ok := p.Get("a/B"); ok {
		t.Fatalf("expected a/B to be absent")
	}
}

func TestCtSymProviderFiltersByRelease(t *testing.T) {
	r := buildZip(t, map[string]string{
		"H/java/util/List.sig": "r17",
		"A/java/util/List.sig": "r10",
	})

	p, err := NewCtSymProvider("lib/ct.sym", "17", r)
	if err != nil {
		t.Fatalf("NewCtSymProvider: %v", err)
	}

	s, ok := p.Get("java/util/List")
	if !ok {
		t.Fatalf("expected java/util/List to be served for release 17")
	}

	data, err := s.Get()
	if err != nil || string(data) != "r17" {
		t.Fatalf("got (%q, %v), want r17", data, err)
	}

	p10, err := NewCtSymProvider("lib/ct.sym", "10", r)
	if err != nil {
		t.Fatalf("NewCtSymProvider: %v", err)
	}

	s10, ok := p10.Get("java/util/List")
	if !ok {
		t.Fatalf("expected java/util/List to be served for release 10")
	}

	data10, _ := s10.Get()
	if string(data10) != "r10" {
		t.Fatalf("got %q, want r10", data10)
	}
}

func minimalClassBytes(name, super string, interfaces ...string) []byte {
	return classfile.Write(&classfile.ClassFile{
		Version:     classfile.Java17,
		AccessFlags: classfile.AccPublic | classfile.AccSuper,
		Name:        name,
		SuperName:   super,
		Interfaces:  interfaces,
	})
}

func TestEnvResolvesClasspathSupertype(t *testing.T) {
	data := minimalClassBytes("a/Impl", "java/lang/Object", "a/Iface")

	r := buildZip(t, map[string]string{"a/Impl.class": string(data)})
	p := NewJarProvider("a.jar", r)

	log := diag.NewLog()
	env := NewEnv(log, p)

	header, ok := env.Get(sym.NewClassSymbol("a/Impl"))
	if !ok {
		t.Fatalf("expected a/Impl to resolve, diagnostics: %v", log.Diagnostics())
	}

	if header.Superclass != sym.NewClassSymbol("java/lang/Object") {
		t.Fatalf("expected superclass java/lang/Object, got %+v", header.Superclass)
	}

	if len(header.Interfaces) != 1 || header.Interfaces[0] != sym.NewClassSymbol("a/Iface") {
		t.Fatalf("expected interface a/Iface, got %+v", header.Interfaces)
	}

	// A second Get must hit the cache rather than re-parsing: corrupt the
	// underlying bytes indirectly by checking the result is the same pointer.
	header2, ok := env.Get(sym.NewClassSymbol("a/Impl"))
	if !ok || header2 != header {
		t.Fatalf("expected Get to return the cached header on a repeat call")
	}
}

func TestEnvMissingEntryReturnsNotOk(t *testing.T) {
	r := buildZip(t, map[string]string{})
	p := NewJarProvider("a.jar", r)

	log := diag.NewLog()
	env := NewEnv(log, p)

	if _, ok := env.Get(sym.NewClassSymbol("a/Missing")); ok {
		t.Fatalf("expected a/Missing to not resolve")
	}
}
