package statement

import (
	"sync"
)

// syncLocks guarantees at most one in-flight sync per user. Held across the
// whole orchestrator run, including waits, so a scheduled run and a manual
// run cannot interleave upstream calls against the same token.
type syncLocks struct {
	mu     sync.Mutex
	active map[int64]struct{}
}

func newSyncLocks() *syncLocks {
	return &syncLocks{active: make(map[int64]struct{})}
}

// tryAcquire reports whether the lock for userID was acquired. It never
// blocks; a busy user fails fast.
func (l *syncLocks) tryAcquire(userID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.active[userID]; busy {
		return false
	}
	l.active[userID] = struct{}{}
	return true
}

// held reports whether a sync is currently running for userID.
func (l *syncLocks) held(userID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, busy := l.active[userID]
	return busy
}

func (l *syncLocks) release(userID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.active, userID)
}
