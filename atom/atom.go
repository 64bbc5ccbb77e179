// Package atom provides a mutex-guarded box for a value shared
// between goroutines. Updates go through Swap so readers never
// observe a partially-applied change.
package atom

import "sync"

type Atom[T any] struct {
	mu sync.RWMutex
	v  T
}

func New[T any](v T) *Atom[T] {
	return &Atom[T]{v: v}
}

// Deref returns the current value.
func (at *Atom[T]) Deref() T {
	at.mu.RLock()
	defer at.mu.RUnlock()

	return at.v
}

// Swap replaces the value with fn(current) and returns the new value.
func (at *Atom[T]) Swap(fn func(T) T) T {
	at.mu.Lock()
	defer at.mu.Unlock()

	at.v = fn(at.v)
	return at.v
}

// Reset replaces the value unconditionally.
func (at *Atom[T]) Reset(v T) {
	at.mu.Lock()
	defer at.mu.Unlock()

	at.v = v
}
