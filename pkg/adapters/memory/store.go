package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mkuleshov/pgdbot/pkg/domain"
)

// Store implements ports.SessionStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Session
	mu   sync.RWMutex

	ttl   time.Duration
	clock func() time.Time
}

// Option configures the Store.
type Option func(*Store)

// WithTTL enables lazy idle-session eviction: a session whose UpdatedAt
// is older than ttl at Load time is dropped as if it never existed.
// Zero disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithClock overrides the time source (tests).
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		s.clock = clock
	}
}

// NewStore creates a new in-memory store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		data:  make(map[string]*domain.Session),
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save persists the session in memory.
func (s *Store) Save(ctx context.Context, identity string, sess *domain.Session) error {
	// Deep copy to ensure isolation, similar to serialization
	copied := sess.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[identity] = copied
	return nil
}

// Load retrieves the session from memory.
func (s *Store) Load(ctx context.Context, identity string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.data[identity]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	if s.ttl > 0 && s.clock().Sub(sess.UpdatedAt) > s.ttl {
		delete(s.data, identity)
		return nil, domain.ErrSessionNotFound
	}

	// Copy on read so the caller can't mutate store state through the pointer
	return sess.Clone(), nil
}

// Delete removes the session.
func (s *Store) Delete(ctx context.Context, identity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, identity)
	return nil
}

// List returns active session identities, skipping any past their TTL.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.clock()
	ids := make([]string, 0, len(s.data))
	for id, sess := range s.data {
		if s.ttl > 0 && now.Sub(sess.UpdatedAt) > s.ttl {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
