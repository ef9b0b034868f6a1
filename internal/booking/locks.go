package booking

import "sync"

// screeningLocks hands out one mutex per screening id, created lazily on
// first access and retained for the screening's lifetime. Locks for different
// screenings are independent, so unrelated screenings never contend.
type screeningLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newScreeningLocks() *screeningLocks {
	return &screeningLocks{
		locks: make(map[string]*sync.Mutex),
	}
}

func (l *screeningLocks) forScreening(screeningID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[screeningID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[screeningID] = lock
	}

	return lock
}
