package driver

import (
	"os"

	"github.com/google/turbine/pkg/bound"
	"github.com/google/turbine/pkg/classpath"
	"github.com/google/turbine/pkg/sym"
	"github.com/segmentio/encoding/json"
)

// Usage is one entry of the §6 "Deps output" map: how a classpath entry was
// actually used by this compilation.
type Usage string

const (
	// Explicit means a source type directly names a symbol this entry
	// contributed (a written extends/implements clause resolved here).
	Explicit Usage = "EXPLICIT"
	// Implicit means this entry served a symbol, but never as a supertype
	// written directly on a source class — e.g. it only ever completed a
	// classpath class's own ancestor. Reserved: the current HierarchyBinder
	// wiring only ever resolves a fallback symbol once, against a source
	// class's own declared clause, so this value is never produced today,
	// but the wire format keeps the slot for when transitive ancestor
	// chasing through the classpath is added.
	Implicit Usage = "IMPLICIT"
	// Unused means this classpath entry never resolved a requested symbol.
	Unused Usage = "UNUSED"
)

// Deps classifies every classpath entry env was built from against the
// bound headers a compilation produced (§6: "{path -> {EXPLICIT, IMPLICIT,
// UNUSED}}", keyed by classpath entry rather than by class).
func Deps(env *classpath.Env, headers map[sym.ClassSymbol]*bound.SourceHeaderBoundClass) map[string]Usage {
	result := make(map[string]Usage, len(env.Providers()))
	for _, p := range env.Providers() {
		result[p.Path()] = Unused
	}

	directRefs := make(map[sym.ClassSymbol]bool)

	for _, h := range headers {
		if h.Superclass != (sym.ClassSymbol{}) {
			directRefs[h.Superclass] = true
		}

		for _, i := range h.Interfaces {
			directRefs[i] = true
		}
	}

	for cs := range directRefs {
		path, ok := env.ServedBy(cs)
		if !ok {
			continue
		}

		result[path] = Explicit
	}

	for _, p := range env.Providers() {
		if result[p.Path()] == Unused && env.Served(p.Path()) {
			result[p.Path()] = Implicit
		}
	}

	return result
}

// WriteDeps serializes the classification in deps-output order to path
// using segmentio/encoding/json's fast encoder, matching §6's wire shape.
func WriteDeps(path string, deps map[string]Usage) error {
	data, err := json.MarshalIndent(deps, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}
