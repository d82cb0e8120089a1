package aggregate

import "sync"

// Latest keeps the most recent snapshot when several List calls race.
//
// Each fetch takes a token from Begin before reading. Commit stores the
// result only if no fetch with a larger token has committed, so a slow,
// older read can never replace a newer one.
type Latest struct {
	mu        sync.Mutex
	next      uint64
	committed uint64
	snap      Snapshot
	has       bool
}

// Begin returns a new request token. Tokens increase monotonically.
func (l *Latest) Begin() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next++
	return l.next
}

// Commit stores snap if token is newer than the last committed token.
// It reports whether snap was stored.
func (l *Latest) Commit(token uint64, snap Snapshot) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if token <= l.committed {
		return false
	}
	l.committed = token
	l.snap = snap
	l.has = true
	return true
}

// Snapshot returns the last committed snapshot and whether one exists.
func (l *Latest) Snapshot() (Snapshot, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snap, l.has
}

// Invalidate drops the stored snapshot after a write. Tokens handed out
// before the call can no longer commit, so a fetch that started before the
// write cannot restore pre-write data.
func (l *Latest) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.committed = l.next
	l.snap = Snapshot{}
	l.has = false
}
