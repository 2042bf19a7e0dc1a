package service

import "sync"

// tripLocks hands out one mutex per trip id so reconciliation (the
// "replace pending settlements" step) is serialized per trip while
// balance reads stay lock-free. Entries are never evicted; the map is
// bounded by the number of trips this process has reconciled.
type tripLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newTripLocks() *tripLocks {
	return &tripLocks{locks: make(map[string]*sync.Mutex)}
}

func (t *tripLocks) get(tripID string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	lock, ok := t.locks[tripID]
	if !ok {
		lock = &sync.Mutex{}
		t.locks[tripID] = lock
	}
	return lock
}
