package util

import "github.com/bits-and-blooms/bitset"

// SeenSet tracks a set of dense, non-negative integer ids ("indices" assigned
// by a caller, e.g. to ClassSymbols or FieldSymbols) using a bitset for O(1)
// membership while retaining push/pop order for cycle-diagnostic reporting.
//
// This grounds the "thread-local (or single-threaded) ordered set" the spec
// calls for in LazyEnv's in-progress tracking (§4.C) and in Canonicalize's
// cycle-breaking seen-set (§4.D): a bitset answers "is this id already on the
// stack" in O(1), while the parallel slice preserves the order needed to
// report a cycle's full chain.
type SeenSet struct {
	bits  *bitset.BitSet
	stack []uint
}

// NewSeenSet constructs an empty seen-set.
func NewSeenSet() *SeenSet {
	return &SeenSet{bitset.New(64), nil}
}

// Push marks id as in-progress. Returns false (and does not push) if id is
// already in-progress, indicating a cycle.
func (s *SeenSet) Push(id uint) bool {
	if s.bits.Test(id) {
		return false
	}

	s.bits.Set(id)
	s.stack = append(s.stack, id)

	return true
}

// Pop removes the most recently pushed id.
func (s *SeenSet) Pop() {
	n := len(s.stack) - 1
	id := s.stack[n]
	s.stack = s.stack[:n]
	s.bits.Clear(id)
}

// Contains reports whether id is currently in-progress.
func (s *SeenSet) Contains(id uint) bool {
	return s.bits.Test(id)
}

// Chain returns the in-progress ids in push order, e.g. for rendering a
// CYCLIC_HIERARCHY diagnostic naming every symbol on the cycle.
func (s *SeenSet) Chain() []uint {
	out := make([]uint, len(s.stack))
	copy(out, s.stack)

	return out
}

// KeyedSeenSet adapts SeenSet to track membership by an arbitrary
// comparable key (a ClassSymbol, a FieldSymbol) instead of a pre-assigned
// dense id: each key seen for the first time is interned to the next free
// id, so the bitset still backs an O(1) Push/Contains, while Chain reports
// back the original keys rather than the interned ids.
type KeyedSeenSet[K comparable] struct {
	inner *SeenSet
	ids   map[K]uint
	keys  []K
}

// NewKeyedSeenSet constructs an empty keyed seen-set.
func NewKeyedSeenSet[K comparable]() *KeyedSeenSet[K] {
	return &KeyedSeenSet[K]{inner: NewSeenSet(), ids: make(map[K]uint)}
}

func (s *KeyedSeenSet[K]) idFor(k K) uint {
	if id, ok := s.ids[k]; ok {
		return id
	}

	id := uint(len(s.keys))
	s.ids[k] = id
	s.keys = append(s.keys, k)

	return id
}

// Push marks k as in-progress. Returns false (and does not push) if k is
// already in-progress, indicating a cycle.
func (s *KeyedSeenSet[K]) Push(k K) bool {
	return s.inner.Push(s.idFor(k))
}

// Pop removes the most recently pushed key. Callers must pop in the reverse
// order they pushed (LIFO), as with any recursion-tracking stack.
func (s *KeyedSeenSet[K]) Pop() {
	s.inner.Pop()
}

// Contains reports whether k is currently in-progress.
func (s *KeyedSeenSet[K]) Contains(k K) bool {
	id, ok := s.ids[k]
	return ok && s.inner.Contains(id)
}

// Chain returns the in-progress keys in push order.
func (s *KeyedSeenSet[K]) Chain() []K {
	ids := s.inner.Chain()
	out := make([]K, len(ids))

	for i, id := range ids {
		out[i] = s.keys[id]
	}

	return out
}
