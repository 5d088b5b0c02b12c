package env

import (
	"fmt"
	"strings"

	"github.com/google/turbine/internal/util"
)

// Completer produces the Info for k on demand. A completer is pure with
// respect to its inputs (§4.C): given the same surrounding env it must
// return the same result, and it must not observe its own symbol's entry
// before it has finished — LazyEnv enforces the latter by raising a
// LazyBindingError if the completer (directly or transitively) calls back
// into Get(k) for the same k it is completing.
type Completer[K comparable, V any] func(k K, self *LazyEnv[K, V]) (V, error)

// LazyBindingError is raised when a completer re-enters a symbol that is
// already being completed. Callers translate this into a diagnostic
// (CYCLIC_HIERARCHY) or "not a constant" depending on which binder phase is
// forcing the lookup (§4.C, §4.H).
type LazyBindingError[K comparable] struct {
	Cycle []K
}

func (e *LazyBindingError[K]) Error() string {
	parts := make([]string, len(e.Cycle))
	for i, k := range e.Cycle {
		parts[i] = fmt.Sprint(k)
	}

	return "env: cycle detected: " + strings.Join(parts, " -> ")
}

// LazyEnv holds a map of not-yet-forced completers plus a fallback env for
// keys it doesn't own. Get either returns a cached result or invokes the
// completer, tracking in-progress keys so a cycle raises a LazyBindingError
// instead of recursing forever.
type LazyEnv[K comparable, V any] struct {
	completers map[K]Completer[K, V]
	fallback   Env[K, V]

	cache      map[K]V
	done       map[K]bool
	inProgress *util.KeyedSeenSet[K] // bitset-backed in-progress tracker (§4.C)
}

// NewLazyEnv constructs an empty LazyEnv falling back to fallback for keys
// with no registered completer. fallback may be nil.
func NewLazyEnv[K comparable, V any](fallback Env[K, V]) *LazyEnv[K, V] {
	return &LazyEnv[K, V]{
		completers: make(map[K]Completer[K, V]),
		fallback:   fallback,
		cache:      make(map[K]V),
		done:       make(map[K]bool),
		inProgress: util.NewKeyedSeenSet[K](),
	}
}

// Put registers a completer for k. It is an error to Put after k has already
// been forced; callers build the full completer map before any Get.
func (e *LazyEnv[K, V]) Put(k K, c Completer[K, V]) {
	e.completers[k] = c
}

// Get returns the (possibly newly-completed) value for k.
func (e *LazyEnv[K, V]) Get(k K) (V, error) {
	if e.done[k] {
		return e.cache[k], nil
	}

	c, ok := e.completers[k]
	if !ok {
		if e.fallback != nil {
			if v, ok := e.fallback.Get(k); ok {
				return v, nil
			}
		}

		var zero V

		return zero, fmt.Errorf("env: no completer for %v", k)
	}

	if e.inProgress.Contains(k) {
		cycle := append(e.inProgress.Chain(), k)
		return *new(V), &LazyBindingError[K]{Cycle: cycle}
	}

	e.inProgress.Push(k)

	v, err := c(k, e)

	e.inProgress.Pop()

	if err != nil {
		var zero V

		return zero, err
	}

	e.cache[k] = v
	e.done[k] = true

	return v, nil
}

// IsCycle reports whether err is a LazyBindingError for the given key type,
// letting callers branch on cycle-vs-other-failure without a type switch at
// every call site.
func IsCycle[K comparable](err error) (*LazyBindingError[K], bool) {
	lbe, ok := err.(*LazyBindingError[K])
	return lbe, ok
}
