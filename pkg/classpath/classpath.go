// Package classpath implements the §5 "Classpath inputs" collaborators:
// flat jar providers, a lib/ct.sym provider for the platform classpath, and
// the lazy, memoized byte supplier both are built from ("first get() reads
// and caches bytes", §5 "Shared resources"). Load turns a supplier's bytes
// into the minimal SourceHeaderBoundClass HierarchyBinder needs to resolve
// a classpath supertype.
package classpath

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"

	"github.com/google/turbine/internal/util"
	"github.com/google/turbine/pkg/bound"
	"github.com/google/turbine/pkg/classfile"
	"github.com/google/turbine/pkg/diag"
	"github.com/google/turbine/pkg/sym"
	"github.com/google/turbine/pkg/tree"
	"go.uber.org/atomic"
)

// bytesBox is the value stored in a ByteSupplier's atomic.Value: a single
// struct so one Store covers both the bytes and any read error, avoiding
// the two-field race a pair of plain atomics would have.
type bytesBox struct {
	data []byte
	err  error
}

// ByteSupplier lazily reads and caches a classpath entry's bytes: the first
// Get call runs fetch and memoizes the result; every later call returns the
// cached value without touching the underlying jar again (§5 "classpath
// byte suppliers are memoised").
type ByteSupplier struct {
	loaded atomic.Bool
	box    atomic.Value
	fetch  func() ([]byte, error)
}

// NewByteSupplier wraps fetch in a memoizing supplier. fetch is called at
// most once, the first time Get is called.
func NewByteSupplier(fetch func() ([]byte, error)) *ByteSupplier {
	return &ByteSupplier{fetch: fetch}
}

// Get returns the entry's bytes, reading and caching them on first call.
func (s *ByteSupplier) Get() ([]byte, error) {
	if s.loaded.Load() {
		box := s.box.Load().(bytesBox)
		return box.data, box.err
	}

	box := bytesBox{}
	box.data, box.err = s.fetch()

	s.box.Store(box)
	s.loaded.Store(true)

	return box.data, box.err
}

// Provider resolves a binary name to the bytes of the .class file
// declaring it, if this classpath entry contributes one. Path identifies
// the entry (a jar file path, or "ct.sym") for the §6 deps-output map,
// which is keyed by classpath entry rather than by class.
type Provider interface {
	Get(binary string) (*ByteSupplier, bool)
	Path() string
}

// JarProvider serves class files out of a flat .jar (§5 "flat jar files").
type JarProvider struct {
	path    string
	entries map[string]*zip.File
}

// NewJarProvider indexes every "<binary>.class" entry in r by binary name.
func NewJarProvider(path string, r *zip.Reader) *JarProvider {
	entries := make(map[string]*zip.File)

	for _, f := range r.File {
		if binary, ok := strings.CutSuffix(f.Name, ".class"); ok {
			entries[binary] = f
		}
	}

	return &JarProvider{path: path, entries: entries}
}

// Get implements Provider.
func (p *JarProvider) Get(binary string) (*ByteSupplier, bool) {
	f, ok := p.entries[binary]
	if !ok {
		return nil, false
	}

	return NewByteSupplier(func() ([]byte, error) { return readZipFile(f) }), true
}

// Path implements Provider.
func (p *JarProvider) Path() string { return p.path }

// CtSymProvider serves the platform classpath out of a JDK lib/ct.sym,
// restricted to entries encoded for one release (§5 "entries named
// <release>/…/<binary>.sig; release encoded as upper-case base-36 digits").
type CtSymProvider struct {
	path    string
	release string
	entries map[string]*zip.File
}

// NewCtSymProvider indexes every ct.sym entry matching releaseNum (a
// decimal JDK release, e.g. "17") found in r. path identifies the ct.sym
// jar itself for deps-output purposes.
func NewCtSymProvider(path, releaseNum string, r *zip.Reader) (*CtSymProvider, error) {
	release, err := formatReleaseVersion(releaseNum)
	if err != nil {
		return nil, err
	}

	entries := make(map[string]*zip.File)

	for _, f := range r.File {
		entry, ok := parseCtSymEntry(f.Name)
		if !ok || entry.Release != release {
			continue
		}

		entries[entry.Binary] = f
	}

	return &CtSymProvider{path: path, release: release, entries: entries}, nil
}

// Get implements Provider.
func (p *CtSymProvider) Get(binary string) (*ByteSupplier, bool) {
	f, ok := p.entries[binary]
	if !ok {
		return nil, false
	}

	return NewByteSupplier(func() ([]byte, error) { return readZipFile(f) }), true
}

// Path implements Provider.
func (p *CtSymProvider) Path() string { return p.path }

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}

// Env layers a sequence of classpath Providers (bootclasspath first, then
// classpath, matching §5's "fixed order by bootclasspath then classpath")
// into an env.Env HierarchyBinder can use as its classpath fallback: each
// Get parses a classpath class's bytes at most once (§5 "class file for a
// given ClassSymbol is parsed at most once") and caches the resulting
// header. Env also records, per provider, whether it ever served a class —
// the bit pkg/driver's deps output reads to tell a used classpath entry
// from a dead one.
type Env struct {
	providers []Provider
	log       *diag.Log

	cache    map[sym.ClassSymbol]*bound.SourceHeaderBoundClass
	served   map[string]bool
	servedBy map[sym.ClassSymbol]string
}

// NewEnv builds a classpath Env from providers in lookup order.
func NewEnv(log *diag.Log, providers ...Provider) *Env {
	return &Env{
		providers: providers,
		log:       log,
		cache:     make(map[sym.ClassSymbol]*bound.SourceHeaderBoundClass),
		served:    make(map[string]bool),
		servedBy:  make(map[sym.ClassSymbol]string),
	}
}

// Get implements env.Env[sym.ClassSymbol, *bound.SourceHeaderBoundClass].
func (e *Env) Get(cs sym.ClassSymbol) (*bound.SourceHeaderBoundClass, bool) {
	if h, ok := e.cache[cs]; ok {
		return h, true
	}

	for _, p := range e.providers {
		supplier, ok := p.Get(cs.BinaryName())
		if !ok {
			continue
		}

		data, err := supplier.Get()
		if err != nil {
			e.log.Error(diag.ClassFileNotFound, cs.BinaryName(), "reading classpath entry: %s", err)
			return nil, false
		}

		bc := bound.NewBytecodeBoundClass(cs, data)

		if err := Load(bc); err != nil {
			e.log.Error(diag.ClassFileNotFound, cs.BinaryName(), "parsing classpath entry: %s", err)
			return nil, false
		}

		header := Header(bc)
		e.cache[cs] = header
		e.served[p.Path()] = true
		e.servedBy[cs] = p.Path()

		return header, true
	}

	return nil, false
}

// Served reports whether any class was ever resolved through the provider
// at path.
func (e *Env) Served(path string) bool {
	return e.served[path]
}

// ServedBy reports which provider path resolved cs, if any. pkg/driver's
// deps classification uses this to tell which classpath entry a given
// symbol reference came from.
func (e *Env) ServedBy(cs sym.ClassSymbol) (string, bool) {
	path, ok := e.servedBy[cs]
	return path, ok
}

// Providers returns the providers this Env was built from, in lookup order.
func (e *Env) Providers() []Provider {
	return e.providers
}

// Load parses a classpath class's raw bytes into bc's Superclass,
// Interfaces and Access, the minimal shape HierarchyBinder needs to
// resolve a classpath supertype (§5 "lazily populating from class-file
// bytes"). Field and method descriptors are left undecoded: no descriptor
// decoder exists yet (a known gap, tracked in DESIGN.md), so classpath
// member types remain out of reach until one is written — classpath
// supertype resolution is the one consumer this wires today.
func Load(bc *bound.BytecodeBoundClass) error {
	cf, err := classfile.Read(bc.Bytes())
	if err != nil {
		return fmt.Errorf("classpath: %s: %w", bc.Sym.BinaryName(), err)
	}

	bc.Access = cf.AccessFlags

	if cf.SuperName != "" {
		bc.Superclass = sym.NewClassSymbol(cf.SuperName)
	}

	for _, i := range cf.Interfaces {
		bc.Interfaces = append(bc.Interfaces, sym.NewClassSymbol(i))
	}

	bc.MarkLoaded()

	return nil
}

// Header adapts a loaded BytecodeBoundClass into the SourceHeaderBoundClass
// shape HierarchyBinder's fallback Env returns: only the fields a classpath
// supertype lookup actually reads (Superclass, Interfaces, Kind, Owner) are
// populated.
func Header(bc *bound.BytecodeBoundClass) *bound.SourceHeaderBoundClass {
	owner := util.None[sym.ClassSymbol]()

	if i := strings.LastIndexByte(bc.Sym.Binary, '$'); i >= 0 {
		owner = util.Some(sym.NewClassSymbol(bc.Sym.Binary[:i]))
	}

	return &bound.SourceHeaderBoundClass{
		PackageSourceBoundClass: bound.PackageSourceBoundClass{
			SourceBoundClass: bound.SourceBoundClass{
				Sym:      bc.Sym,
				Owner:    owner,
				Access:   bc.Access,
				Kind:     classKind(bc.Access),
				Children: map[string]sym.ClassSymbol{},
			},
			Package: bc.Sym.PackageName(),
		},
		Superclass: bc.Superclass,
		Interfaces: bc.Interfaces,
	}
}

func classKind(access uint16) tree.TypeKind {
	switch {
	case access&classfile.AccAnnotation != 0:
		return tree.KindAnnotation
	case access&classfile.AccEnum != 0:
		return tree.KindEnum
	case access&classfile.AccInterface != 0:
		return tree.KindInterface
	default:
		return tree.KindClass
	}
}
