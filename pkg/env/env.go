// Package env implements the Env/LazyEnv abstraction of §4.C: memoized,
// cycle-detecting lookups from a symbol to its bound information, used
// throughout the binder to let one class's completion force another's.
package env

// Env is a lookup from K to V that may not have an entry for every key.
type Env[K comparable, V any] interface {
	Get(k K) (V, bool)
}

// SimpleEnv is an immutable map-backed Env.
type SimpleEnv[K comparable, V any] struct {
	m map[K]V
}

// NewSimpleEnv wraps m as an Env. The caller must not mutate m afterwards.
func NewSimpleEnv[K comparable, V any](m map[K]V) *SimpleEnv[K, V] {
	return &SimpleEnv[K, V]{m}
}

// Get implements Env.
func (e *SimpleEnv[K, V]) Get(k K) (V, bool) {
	v, ok := e.m[k]
	return v, ok
}

// CompoundEnv chains a stack of Envs; Get tries each layer in order and
// returns the first hit, matching the ordering guarantees of §4.D's
// CompoundTopLevelIndex (earliest layer wins) and §5's fixed bootclasspath-
// then-classpath extension order.
type CompoundEnv[K comparable, V any] struct {
	layers []Env[K, V]
}

// NewCompoundEnv builds a CompoundEnv trying layers in the given order,
// first argument highest priority.
func NewCompoundEnv[K comparable, V any](layers ...Env[K, V]) *CompoundEnv[K, V] {
	return &CompoundEnv[K, V]{layers}
}

// Get implements Env.
func (e *CompoundEnv[K, V]) Get(k K) (V, bool) {
	for _, l := range e.layers {
		if v, ok := l.Get(k); ok {
			return v, true
		}
	}

	var zero V

	return zero, false
}
