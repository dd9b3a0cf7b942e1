package service

import "sync"

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// userLocks serialises work per user id. Entries live only while someone
// holds or waits for them.
type userLocks struct {
	mu      sync.Mutex
	entries map[int64]*lockEntry
}

func newUserLocks() *userLocks {
	return &userLocks{entries: make(map[int64]*lockEntry)}
}

// Lock blocks until the user's lock is held and returns its release func.
func (l *userLocks) Lock(userID int64) func() {
	l.mu.Lock()
	e, ok := l.entries[userID]
	if !ok {
		e = &lockEntry{}
		l.entries[userID] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.entries, userID)
		}
		l.mu.Unlock()
	}
}

func (l *userLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
