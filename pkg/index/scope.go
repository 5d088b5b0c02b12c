package index

import "github.com/google/turbine/pkg/sym"

// Scope resolves a single simple name to a ClassSymbol (§4.D).
type Scope interface {
	Lookup(name string) (sym.ClassSymbol, bool)
}

// classMapScope is the simplest Scope: a plain simple-name to ClassSymbol
// map, e.g. what TopLevelIndex.PackageScope exposes.
type classMapScope map[string]sym.ClassSymbol

func (s classMapScope) Lookup(name string) (sym.ClassSymbol, bool) {
	cs, ok := s[name]
	return cs, ok
}

// ImportScope resolves single-type imports ("import a.b.C;"). Canonical is
// false for an import that resolves through an inherited member rather than
// the type's own declaring package (e.g. "import a.Sub.Inner;" where Inner
// is inherited by Sub from a superclass) — permitted, but the binder flags
// it as a diagnostic rather than silently accepting it (§4.D).
type ImportScope struct {
	entries map[string]importEntry
}

type importEntry struct {
	sym       sym.ClassSymbol
	canonical bool
}

// NewImportScope constructs an empty ImportScope.
func NewImportScope() *ImportScope {
	return &ImportScope{entries: make(map[string]importEntry)}
}

// Add registers a single-type import under its simple name.
func (s *ImportScope) Add(simpleName string, cs sym.ClassSymbol, canonical bool) {
	s.entries[simpleName] = importEntry{cs, canonical}
}

// Lookup implements Scope.
func (s *ImportScope) Lookup(name string) (sym.ClassSymbol, bool) {
	e, ok := s.entries[name]
	if !ok {
		return sym.ClassSymbol{}, false
	}

	return e.sym, true
}

// IsCanonical reports whether the import registered under name resolved
// through the type's own declaring package, as opposed to an inherited
// member.
func (s *ImportScope) IsCanonical(name string) bool {
	return s.entries[name].canonical
}

// WildImportScope resolves on-demand imports ("import a.b.*;") by deferring
// to the package scope of each imported-on-demand package, in declaration
// order (first match wins, matching single-type imports always winning over
// on-demand ones is enforced by CompoundScope ordering, not here).
type WildImportScope struct {
	packages []Scope
}

// NewWildImportScope builds a WildImportScope consulting each package scope
// in order.
func NewWildImportScope(packages ...Scope) *WildImportScope {
	return &WildImportScope{packages}
}

// Lookup implements Scope.
func (s *WildImportScope) Lookup(name string) (sym.ClassSymbol, bool) {
	for _, p := range s.packages {
		if p == nil {
			continue
		}

		if cs, ok := p.Lookup(name); ok {
			return cs, true
		}
	}

	return sym.ClassSymbol{}, false
}

// MemberImport is the target of a single static-member import
// ("import static a.B.C;"): C may name a field, method, or nested type
// declared (or inherited) on Owner.
type MemberImport struct {
	Owner sym.ClassSymbol
	Name  string
}

// MemberImportIndex resolves static member imports: single imports by exact
// name, plus an ordered list of on-demand ("import static a.B.*;") owners to
// search when no single import matches.
type MemberImportIndex struct {
	single   map[string]MemberImport
	onDemand []sym.ClassSymbol
}

// NewMemberImportIndex constructs an empty index.
func NewMemberImportIndex() *MemberImportIndex {
	return &MemberImportIndex{single: make(map[string]MemberImport)}
}

// AddSingle registers a single static-member import.
func (m *MemberImportIndex) AddSingle(name string, owner sym.ClassSymbol) {
	m.single[name] = MemberImport{owner, name}
}

// AddOnDemand registers an on-demand static-member import owner.
func (m *MemberImportIndex) AddOnDemand(owner sym.ClassSymbol) {
	m.onDemand = append(m.onDemand, owner)
}

// SingleMemberImport looks up a single static-member import by name.
func (m *MemberImportIndex) SingleMemberImport(name string) (MemberImport, bool) {
	mi, ok := m.single[name]
	return mi, ok
}

// OnDemand returns the on-demand static-member import owners, in
// declaration order, for the caller to search when no single import
// matches.
func (m *MemberImportIndex) OnDemand() []sym.ClassSymbol {
	return m.onDemand
}

// CompoundScope chains scopes in priority order: Lookup returns the first
// hit.
type CompoundScope struct {
	layers []Scope
}

// NewCompoundScope builds a CompoundScope trying layers in the given order.
func NewCompoundScope(layers ...Scope) *CompoundScope {
	return &CompoundScope{layers}
}

// Lookup implements Scope.
func (s *CompoundScope) Lookup(name string) (sym.ClassSymbol, bool) {
	for _, l := range s.layers {
		if l == nil {
			continue
		}

		if cs, ok := l.Lookup(name); ok {
			return cs, true
		}
	}

	return sym.ClassSymbol{}, false
}
