package scanner

import "sync"

// heightLocks hands out one mutex per height. Entries are dropped once no
// goroutine holds or waits for them.
type heightLocks struct {
	mu    sync.Mutex
	locks map[uint64]*heightLock
}

type heightLock struct {
	mu   sync.Mutex
	refs int
}

func newHeightLocks() *heightLocks {
	return &heightLocks{locks: make(map[uint64]*heightLock)}
}

// Lock blocks until height is free and returns the matching unlock.
func (l *heightLocks) Lock(height uint64) func() {
	l.mu.Lock()
	lk, ok := l.locks[height]
	if !ok {
		lk = &heightLock{}
		l.locks[height] = lk
	}
	lk.refs++
	l.mu.Unlock()

	lk.mu.Lock()
	return func() {
		lk.mu.Unlock()
		l.mu.Lock()
		lk.refs--
		if lk.refs == 0 {
			delete(l.locks, height)
		}
		l.mu.Unlock()
	}
}

func (l *heightLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
