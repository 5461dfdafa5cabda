// Package keylock serializes work per key inside one process.
package keylock

import (
	"sync"
)

type Storage struct {
	locks map[string]*entry
	mutex sync.Mutex
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func New() *Storage {
	return &Storage{
		locks: make(map[string]*entry),
	}
}

// Lock blocks until key is free and returns the function that releases it.
func (s *Storage) Lock(key string) func() {
	s.mutex.Lock()
	e, ok := s.locks[key]
	if !ok {
		e = &entry{}
		s.locks[key] = e
	}
	e.refs++
	s.mutex.Unlock()

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()

			s.mutex.Lock()
			defer s.mutex.Unlock()
			e.refs--
			if e.refs == 0 {
				delete(s.locks, key)
			}
		})
	}
}

// Len reports how many keys are held or awaited.
func (s *Storage) Len() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.locks)
}
