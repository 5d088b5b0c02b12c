package driver

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/google/turbine/pkg/classfile"
	"github.com/google/turbine/pkg/classpath"
	"github.com/google/turbine/pkg/diag"
	"github.com/google/turbine/pkg/sym"
	"github.com/google/turbine/pkg/tree"
	"github.com/sirupsen/logrus"
)

func classTypeExpr(names ...string) tree.ClassTypeExpr {
	segs := make([]tree.ClassTypeExprSegment, len(names))
	for i, n := range names {
		segs[i] = tree.ClassTypeExprSegment{Name: n}
	}

	return tree.ClassTypeExpr{Segments: segs}
}

func buildJar(t *testing.T, files map[string][]byte) *zip.Reader {
	t.Helper()

	var buf bytes.Buffer

	w := zip.NewWriter(&buf)

	for name, content := range files {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("zip.Create: %v", err)
		}

		if _, err := f.Write(content); err != nil {
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

func TestBindRunsEveryPhaseToLoweredClassFiles(t *testing.T) {
	base := classfile.Write(&classfile.ClassFile{
		Version:     classfile.Java17,
		AccessFlags: classfile.AccPublic | classfile.AccSuper,
		Name:        "c/Base",
		SuperName:   "java/lang/Object",
	})

	libJar := buildJar(t, map[string][]byte{"c/Base.class": base})
	deadJar := buildJar(t, map[string][]byte{"z/Dead.class": []byte("unused")})

	log := diag.NewLog()

	env := classpath.NewEnv(log,
		classpath.NewJarProvider("lib.jar", libJar),
		classpath.NewJarProvider("dead.jar", deadJar),
	)

	unit := &tree.CompilationUnit{
		Package: "a",
		Types: []tree.TypeDecl{
			{
				Kind: tree.KindClass, Name: "Sub", Access: 0x1,
				Extends: classTypeExpr("c", "Base"),
			},
		},
	}

	entry := logrus.NewEntry(logrus.New())

	result, err := Bind([]*tree.CompilationUnit{unit}, env, log, entry)
	if err != nil {
		t.Fatalf("unexpected error: %v (diagnostics: %v)", err, log.Diagnostics())
	}

	sub := sym.NewClassSymbol("a/Sub")

	cf, ok := result.ClassFiles[sub]
	if !ok {
		t.Fatalf("a/Sub missing from lowered class files")
	}

	if cf.SuperName != "c/Base" {
		t.Fatalf("expected a/Sub to extend c/Base, got %q", cf.SuperName)
	}

	deps := Deps(env, result.Headers)

	if deps["lib.jar"] != Explicit {
		t.Fatalf("expected lib.jar to be classified EXPLICIT, got %s", deps["lib.jar"])
	}

	if deps["dead.jar"] != Unused {
		t.Fatalf("expected dead.jar to be classified UNUSED, got %s", deps["dead.jar"])
	}
}
