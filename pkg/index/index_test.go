package index

import (
	"testing"

	"github.com/google/turbine/pkg/classfile"
	"github.com/google/turbine/pkg/sym"
)

func TestTopLevelIndexLookup(t *testing.T) {
	idx := NewTopLevelIndex()
	idx.Insert(sym.NewClassSymbol("a/b/C"))
	idx.Insert(sym.NewClassSymbol("a/D"))

	r, ok := idx.Lookup([]string{"a", "b", "C"})
	if !ok {
		t.Fatal("expected a.b.C to resolve")
	}

	if r.Sym.BinaryName() != "a/b/C" {
		t.Fatalf("unexpected symbol: %s", r.Sym)
	}

	if len(r.Remaining) != 0 {
		t.Fatalf("expected no remaining identifiers, got %v", r.Remaining)
	}

	r2, ok := idx.Lookup([]string{"a", "b", "C", "Inner", "Deeper"})
	if !ok {
		t.Fatal("expected partial resolution of a.b.C.Inner.Deeper")
	}

	if r2.Sym.BinaryName() != "a/b/C" || len(r2.Remaining) != 2 {
		t.Fatalf("unexpected partial result: %+v", r2)
	}

	if _, ok := idx.Lookup([]string{"x", "y"}); ok {
		t.Fatal("expected miss for unknown path")
	}
}

func TestCompoundTopLevelIndexEarliestLayerWins(t *testing.T) {
	source := NewTopLevelIndex()
	source.Insert(sym.NewClassSymbol("a/C"))

	classpath := NewTopLevelIndex()
	classpath.Insert(sym.NewClassSymbol("a/C")) // shadowed by source
	classpath.Insert(sym.NewClassSymbol("a/D"))

	c := NewCompoundTopLevelIndex(source, classpath)

	r, ok := c.Lookup([]string{"a", "D"})
	if !ok || r.Sym.BinaryName() != "a/D" {
		t.Fatalf("expected classpath-only symbol to resolve: %+v", r)
	}

	if _, ok := c.Lookup([]string{"a", "C"}); !ok {
		t.Fatal("expected a.C to resolve from the earliest layer")
	}
}

func TestImportScopeCanonicalFlag(t *testing.T) {
	s := NewImportScope()
	s.Add("C", sym.NewClassSymbol("a/C"), true)
	s.Add("Inner", sym.NewClassSymbol("a/Sub$Inner"), false)

	if !s.IsCanonical("C") {
		t.Fatal("expected C to be canonical")
	}

	if s.IsCanonical("Inner") {
		t.Fatal("expected Inner to be flagged non-canonical")
	}

	if cs, ok := s.Lookup("Inner"); !ok || cs.BinaryName() != "a/Sub$Inner" {
		t.Fatalf("unexpected lookup result: %+v ok=%v", cs, ok)
	}
}

func TestCompoundScopePrefersFirstLayer(t *testing.T) {
	imports := NewImportScope()
	imports.Add("C", sym.NewClassSymbol("a/C"), true)

	wild := NewWildImportScope(classMapScope{"C": sym.NewClassSymbol("b/C")})

	compound := NewCompoundScope(imports, wild)

	cs, ok := compound.Lookup("C")
	if !ok || cs.BinaryName() != "a/C" {
		t.Fatalf("expected single-type import to win, got %+v", cs)
	}
}

func TestMemberImportIndex(t *testing.T) {
	m := NewMemberImportIndex()
	m.AddSingle("FOO", sym.NewClassSymbol("a/Constants"))
	m.AddOnDemand(sym.NewClassSymbol("a/Other"))

	mi, ok := m.SingleMemberImport("FOO")
	if !ok || mi.Owner.BinaryName() != "a/Constants" {
		t.Fatalf("unexpected single member import: %+v", mi)
	}

	od := m.OnDemand()
	if len(od) != 1 || od[0].BinaryName() != "a/Other" {
		t.Fatalf("unexpected on-demand list: %+v", od)
	}
}

func TestResolveCanonical(t *testing.T) {
	root := LookupResult{
		Sym:       sym.NewClassSymbol("a/Outer"),
		Remaining: []string{"Inner", "Deepest"},
	}

	members := map[string]map[string]struct {
		sym   sym.ClassSymbol
		flags uint16
	}{
		"a/Outer": {
			"Inner": {sym.NewClassSymbol("a/Outer$Inner"), classfile.AccPublic},
		},
		"a/Outer$Inner": {
			"Deepest": {sym.NewClassSymbol("a/Outer$Inner$Deepest"), classfile.AccPublic},
		},
	}

	lookup := func(owner sym.ClassSymbol, name string) (sym.ClassSymbol, uint16, bool) {
		byName, ok := members[owner.BinaryName()]
		if !ok {
			return sym.ClassSymbol{}, 0, false
		}

		e, ok := byName[name]

		return e.sym, e.flags, ok
	}

	resolved, err := ResolveCanonical(root, lookup, "a")
	if err != nil {
		t.Fatalf("ResolveCanonical: %v", err)
	}

	if resolved.BinaryName() != "a/Outer$Inner$Deepest" {
		t.Fatalf("unexpected resolution: %s", resolved)
	}
}

func TestResolveCanonicalRejectsInvisibleMember(t *testing.T) {
	root := LookupResult{Sym: sym.NewClassSymbol("a/Outer"), Remaining: []string{"Hidden"}}

	lookup := func(owner sym.ClassSymbol, name string) (sym.ClassSymbol, uint16, bool) {
		return sym.NewClassSymbol("b/Outer$Hidden"), 0 /* package-private */, true
	}

	if _, err := ResolveCanonical(root, lookup, "a"); err == nil {
		t.Fatal("expected visibility error across packages")
	}
}
