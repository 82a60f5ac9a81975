package service

import "sync"

// keyedMutex provides one mutex per student ID so that check-then-commit
// sequences for the same student serialize, while different students never
// contend. Entries are kept for the process lifetime; the population is
// bounded by the number of distinct students seen.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key and returns it for unlocking.
func (k *keyedMutex) Lock(key string) *sync.Mutex {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m
}
