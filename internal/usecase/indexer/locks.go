package indexer

import "sync"

// keyedMutex serializes work per item id while letting distinct ids
// proceed in parallel. Entries are reference-counted and dropped when the
// last holder releases, so the map does not grow with catalog churn.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*lockEntry)}
}

// Lock acquires the mutex for an id, creating it on first use.
func (k *keyedMutex) Lock(id string) {
	k.mu.Lock()
	e, ok := k.locks[id]
	if !ok {
		e = &lockEntry{}
		k.locks[id] = e
	}
	e.refs++
	k.mu.Unlock()

	e.Lock()
}

// Unlock releases the mutex for an id.
func (k *keyedMutex) Unlock(id string) {
	k.mu.Lock()
	e := k.locks[id]
	e.refs--
	if e.refs == 0 {
		delete(k.locks, id)
	}
	k.mu.Unlock()

	e.Unlock()
}
