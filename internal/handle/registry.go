// Package handle issues opaque integer handles for engine instances and
// serializes all access to them.
//
// Handles are small integers rather than raw pointers: they are safe to
// hand to a foreign runtime under the cgo pointer-passing rules, a stale
// or forged handle fails lookup instead of corrupting memory, and the
// table makes double-destroy structurally harmless for every call except
// the destroy pair itself (which remains a documented caller contract).
package handle

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/Iandenh/frontendengine/internal/engine"
)

// ErrNullHandle reports a zero or unknown handle.
var ErrNullHandle = errors.New("null or unknown engine handle")

// Handle identifies one engine instance across the boundary. 0 is never
// issued and always invalid. Values are never reused within a process.
type Handle uintptr

type entry struct {
	// refs counts the owner reference plus one borrow per in-flight
	// call. The engine is unreachable once it hits zero.
	refs   atomic.Int64
	mu     sync.Mutex
	engine *engine.State
}

func (e *entry) release() {
	e.refs.Add(-1)
}

// Registry maps handles to engine instances. The zero value is not
// usable; call [NewRegistry].
type Registry struct {
	mu      sync.RWMutex
	entries map[Handle]*entry
	next    atomic.Uintptr
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[Handle]*entry)}
}

// Create allocates a fresh engine in its default empty state and returns
// its handle with the single owner reference. It never fails.
func (r *Registry) Create() Handle {
	e := &entry{engine: engine.NewState()}
	e.refs.Store(1)

	h := Handle(r.next.Add(1))
	r.mu.Lock()
	r.entries[h] = e
	r.mu.Unlock()
	return h
}

// Destroy drops the owner reference and removes the handle from the
// table, so no new call can borrow it. Calls already holding a borrow
// finish safely before the engine becomes collectable. Destroying handle
// 0 is a no-op; destroying the same live handle twice is a caller-
// contract violation (the second call is a harmless no-op here, unlike a
// raw-pointer double free, but callers must not rely on that). The
// return value reports whether the handle was live.
func (r *Registry) Destroy(h Handle) bool {
	if h == 0 {
		return false
	}

	r.mu.Lock()
	e, ok := r.entries[h]
	delete(r.entries, h)
	r.mu.Unlock()

	if ok {
		e.release()
	}
	return ok
}

// With borrows the engine behind h for the duration of f, holding its
// lock so no two calls can touch the same engine concurrently. The
// borrow is taken under the table lock, so a concurrent Destroy cannot
// invalidate the engine mid-call. The engine lock is released via defer,
// so a panicking f cannot leave the lock wedged for the next caller.
func (r *Registry) With(h Handle, f func(*engine.State) error) error {
	if h == 0 {
		return ErrNullHandle
	}

	r.mu.RLock()
	e, ok := r.entries[h]
	if ok {
		e.refs.Add(1)
	}
	r.mu.RUnlock()
	if !ok {
		return ErrNullHandle
	}
	defer e.release()

	e.mu.Lock()
	defer e.mu.Unlock()
	return f(e.engine)
}

// Len reports the number of live handles. Used by tests and the metrics
// surface.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
