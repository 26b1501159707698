package evaluation

import "sync"

// loadLocks serializes evaluations per load. Evaluating one quote rewrites
// the status of every SENT quote on the same load, so two concurrent
// evaluations over the same pool could each declare a different winner and
// break the single-accepted-quote invariant. Different loads are independent
// and run in parallel.
type loadLocks struct {
	mu sync.Mutex
	m  map[uint64]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newLoadLocks() *loadLocks {
	return &loadLocks{m: make(map[uint64]*lockEntry)}
}

// lock blocks until the per-load mutex is held and returns the unlock func.
// Entries are reference-counted and removed when the last holder leaves.
func (l *loadLocks) lock(loadID uint64) func() {
	l.mu.Lock()
	e, ok := l.m[loadID]
	if !ok {
		e = &lockEntry{}
		l.m[loadID] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.m, loadID)
		}
		l.mu.Unlock()
	}
}
