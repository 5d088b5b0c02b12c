// Package index implements TopLevelIndex and the import/member Scope chain
// of §4.D: resolving a compound name like "a.b.C.D" into a symbol plus the
// identifiers left over for member-type resolution.
package index

import (
	"strings"

	"github.com/google/turbine/pkg/sym"
)

// LookupResult is a resolved symbol plus the identifiers that remain after
// it, for a subsequent round of member-type resolution (§4.D).
type LookupResult struct {
	Sym       sym.ClassSymbol
	Remaining []string
}

// packageNode is one trie node, keyed by a single JVMS package-path
// component; it also holds the classes declared directly inside it.
type packageNode struct {
	children map[string]*packageNode
	classes  map[string]sym.ClassSymbol
}

func newPackageNode() *packageNode {
	return &packageNode{children: make(map[string]*packageNode), classes: make(map[string]sym.ClassSymbol)}
}

// TopLevelIndex is a trie over package path components, mapping each
// top-level class to its declaring package node; nested classes are not
// stored here and are reached through member-type resolution.
type TopLevelIndex struct {
	root *packageNode
}

// NewTopLevelIndex constructs an empty index.
func NewTopLevelIndex() *TopLevelIndex {
	return &TopLevelIndex{root: newPackageNode()}
}

// Insert adds cs to the index, creating package nodes as needed.
func (idx *TopLevelIndex) Insert(cs sym.ClassSymbol) {
	node := idx.root

	pkg := cs.PackageName()
	if pkg != "" {
		for _, comp := range strings.Split(pkg, "/") {
			child, ok := node.children[comp]
			if !ok {
				child = newPackageNode()
				node.children[comp] = child
			}

			node = child
		}
	}

	// Only the outermost simple name is registered here; nested classes are
	// reached through member resolution (Remaining), not the package trie.
	name := cs.Binary
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}

	if i := strings.IndexByte(name, '$'); i >= 0 {
		name = name[:i]
	}

	node.classes[name] = sym.NewClassSymbol(joinBinary(pkg, name))
}

func joinBinary(pkg, name string) string {
	if pkg == "" {
		return name
	}

	return pkg + "/" + name
}

// PackageScope returns the Scope of classes declared directly in the named
// package (slash-separated), or nil if the package is unknown.
func (idx *TopLevelIndex) PackageScope(pkg string) Scope {
	node := idx.root

	if pkg != "" {
		for _, comp := range strings.Split(pkg, "/") {
			child, ok := node.children[comp]
			if !ok {
				return nil
			}

			node = child
		}
	}

	return classMapScope(node.classes)
}

// Lookup resolves an ordered list of identifiers (§4.D "Lookup key: an
// ordered list of identifiers"): it walks package nodes as long as the next
// identifier names a child package absent a same-named top-level class in
// the current node (a type always shadows a package of the same name at the
// point it's found), then returns the first class hit plus the remaining
// identifiers.
func (idx *TopLevelIndex) Lookup(path []string) (LookupResult, bool) {
	node := idx.root

	for i, comp := range path {
		if cs, ok := node.classes[comp]; ok {
			return LookupResult{Sym: cs, Remaining: append([]string(nil), path[i+1:]...)}, true
		}

		child, ok := node.children[comp]
		if !ok {
			return LookupResult{}, false
		}

		node = child
	}

	return LookupResult{}, false
}

// CompoundTopLevelIndex chains indices in source/bootclasspath/user-classpath
// order (§5 "extended in fixed order by bootclasspath then classpath"),
// returning hits from the earliest layer.
type CompoundTopLevelIndex struct {
	layers []*TopLevelIndex
}

// NewCompoundTopLevelIndex builds a chain trying layers in the given order.
func NewCompoundTopLevelIndex(layers ...*TopLevelIndex) *CompoundTopLevelIndex {
	return &CompoundTopLevelIndex{layers}
}

// Lookup tries each layer in order and returns the first hit.
func (c *CompoundTopLevelIndex) Lookup(path []string) (LookupResult, bool) {
	for _, l := range c.layers {
		if r, ok := l.Lookup(path); ok {
			return r, true
		}
	}

	return LookupResult{}, false
}

// PackageScope returns a CompoundScope over every layer's scope for pkg.
func (c *CompoundTopLevelIndex) PackageScope(pkg string) Scope {
	var scopes []Scope

	for _, l := range c.layers {
		if s := l.PackageScope(pkg); s != nil {
			scopes = append(scopes, s)
		}
	}

	return NewCompoundScope(scopes...)
}
