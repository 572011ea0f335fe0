package asyncgit

import "sync"

// slot is a mutex guarded optional value shared between the UI goroutine and
// the goroutines of a job.
type slot[T any] struct {
	mu  sync.Mutex
	v   T
	set bool
}

func (s *slot[T]) Get() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v, s.set
}

func (s *slot[T]) Set(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v, s.set = v, true
}

func (s *slot[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	s.v, s.set = zero, false
}

func (s *slot[T]) IsSet() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set
}

// claim stores v only if the slot is empty, checking and setting under one
// lock.
func (s *slot[T]) claim(v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.set {
		return false
	}
	s.v, s.set = v, true
	return true
}
