package signals

import "sync"

// Store guards one Vehicle. Writers mutate it through Update, one frame per call, so a
// reader never sees half of a frame's channels.
type Store struct {
	mu sync.RWMutex
	v  Vehicle
}

func NewStore(kmFactor float64) *Store {
	s := &Store{}
	s.v.Trip.Odometer = NewOdometer(kmFactor)
	return s
}

// Update runs fn with exclusive access. fn must not block.
func (s *Store) Update(fn func(v *Vehicle)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.v)
}

// Snapshot returns a copy of every channel.
func (s *Store) Snapshot() Vehicle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v
}

// View runs fn with shared access, for readers that only need a few channels.
func (s *Store) View(fn func(v *Vehicle)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.v)
}

// Read returns a single channel.
func Read[T any](s *Store, get func(v *Vehicle) Reading[T]) Reading[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return get(&s.v)
}
