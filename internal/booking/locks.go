package booking

import (
	"sync"
	"time"
)

// slotLocks serializes check-and-insert per resource+date. Without it two
// concurrent requests for the same overlapping slot can both pass the
// availability check before either inserts. The storage-level exclusion
// constraint remains the backstop for multi-instance deployments.
type slotLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSlotLocks() *slotLocks {
	return &slotLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the resource+date key and returns the unlock func.
func (l *slotLocks) acquire(resourceID string, date time.Time) func() {
	key := resourceID + "|" + date.UTC().Format("2006-01-02")

	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
