package keylock

import (
	"context"
	"errors"
	"strconv"
	"sync"
)

// ConcertKey builds the registry key guarding one concert's inventory. All
// mutators of a concert (booking, admin edits, compensating adjustments)
// must lock through this key.
func ConcertKey(id uint) string {
	return "concert:" + strconv.FormatUint(uint64(id), 10)
}

// ErrAcquireTimeout is returned when the context expires before the key's
// lock could be taken. Callers are expected to treat it as retryable.
var ErrAcquireTimeout = errors.New("keylock: acquire timed out")

// Registry serialises mutating operations per key (concert id) within one
// process. Every key gets its own one-slot semaphore, so operations on
// different concerts proceed fully in parallel while operations on the same
// concert never interleave.
//
// The registry is process-local only: it provides no protection across
// multiple instances. Cross-process safety comes from the row-level locking
// the repositories do inside their transactions.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	sem  chan struct{} // one-slot token; token present means the key is free
	refs int           // holders + waiters, entry is dropped at zero
}

// New constructs an empty lock registry.
func New() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Acquire blocks until no other caller holds key, or until ctx expires.
// Not reentrant: a goroutine acquiring the same key twice deadlocks itself
// until the context runs out.
func (r *Registry) Acquire(ctx context.Context, key string) error {
	r.mu.Lock()
	e, ok := r.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		e.sem <- struct{}{}
		r.entries[key] = e
	}
	e.refs++
	r.mu.Unlock()

	select {
	case <-e.sem:
		return nil
	case <-ctx.Done():
		r.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(r.entries, key)
		}
		r.mu.Unlock()
		return ErrAcquireTimeout
	}
}

// Release frees key. Releasing a key that is not held is a no-op.
func (r *Registry) Release(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[key]
	if !ok {
		return
	}

	select {
	case e.sem <- struct{}{}:
		e.refs--
		if e.refs == 0 {
			delete(r.entries, key)
		}
	default:
		// token already present, key was never held
	}
}

// WithLock runs fn while holding key and guarantees the lock is freed on
// every exit path, including panics inside fn.
func (r *Registry) WithLock(ctx context.Context, key string, fn func() error) error {
	if err := r.Acquire(ctx, key); err != nil {
		return err
	}
	defer r.Release(key)
	return fn()
}

// Len reports how many keys currently have holders or waiters. Steady state
// is zero; it is exposed for tests and health reporting.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
