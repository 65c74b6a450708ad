package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mkuleshov/pgdbot/pkg/domain"
	"github.com/mkuleshov/pgdbot/pkg/ports"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks: the map
// mutex only guards the lock table and is never held across store I/O.
type Manager struct {
	store ports.SessionStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	clock func() time.Time
}

// Option configures the Manager.
type Option func(*Manager)

// WithClock overrides the time source (tests).
func WithClock(clock func() time.Time) Option {
	return func(m *Manager) {
		m.clock = clock
	}
}

// NewManager creates a new session Manager over the given store.
func NewManager(store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store: store,
		locks: make(map[string]*lockEntry),
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(identity) after unlocking.
func (m *Manager) acquire(identity string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[identity]
	if !exists {
		entry = &lockEntry{}
		m.locks[identity] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(identity string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[identity]
	if !exists {
		return // Should not happen if paired correctly
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, identity)
	}
}

// WithLock executes fn while holding the lock for the identity. All event
// handling for one conversation goes through here, which is what makes a
// session's transitions strictly sequential.
func (m *Manager) WithLock(ctx context.Context, identity string, fn func(context.Context) error) error {
	entry := m.acquire(identity)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(identity)
	}()

	return fn(ctx)
}

// Load retrieves an existing session from the store.
func (m *Manager) Load(ctx context.Context, identity string) (*domain.Session, error) {
	var sess *domain.Session
	err := m.WithLock(ctx, identity, func(ctx context.Context) error {
		var err error
		sess, err = m.store.Load(ctx, identity)
		return err
	})
	return sess, err
}

// Reset discards any prior session for the identity and starts a fresh
// one at the first input phase. Used by the start event, which always
// supersedes whatever came before.
func (m *Manager) Reset(ctx context.Context, identity string, mode domain.Mode) (*domain.Session, error) {
	var sess *domain.Session
	err := m.WithLock(ctx, identity, func(ctx context.Context) error {
		if err := m.store.Delete(ctx, identity); err != nil {
			return fmt.Errorf("failed to discard previous session: %w", err)
		}

		sess = domain.NewSession(mode, m.clock())
		if err := m.store.Save(ctx, identity, sess); err != nil {
			return fmt.Errorf("failed to initialize session: %w", err)
		}
		return nil
	})
	return sess, err
}

// Save persists the session state, stamping UpdatedAt.
func (m *Manager) Save(ctx context.Context, identity string, sess *domain.Session) error {
	return m.WithLock(ctx, identity, func(ctx context.Context) error {
		return m.save(ctx, identity, sess)
	})
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, identity string) error {
	return m.WithLock(ctx, identity, func(ctx context.Context) error {
		return m.store.Delete(ctx, identity)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// LoadLocked is Load for callers already inside WithLock.
func (m *Manager) LoadLocked(ctx context.Context, identity string) (*domain.Session, error) {
	return m.store.Load(ctx, identity)
}

// SaveLocked is Save for callers already inside WithLock.
func (m *Manager) SaveLocked(ctx context.Context, identity string, sess *domain.Session) error {
	return m.save(ctx, identity, sess)
}

// DeleteLocked is Delete for callers already inside WithLock.
func (m *Manager) DeleteLocked(ctx context.Context, identity string) error {
	return m.store.Delete(ctx, identity)
}

// ResetLocked is Reset for callers already inside WithLock.
func (m *Manager) ResetLocked(ctx context.Context, identity string, mode domain.Mode) (*domain.Session, error) {
	if err := m.store.Delete(ctx, identity); err != nil {
		return nil, fmt.Errorf("failed to discard previous session: %w", err)
	}

	sess := domain.NewSession(mode, m.clock())
	if err := m.store.Save(ctx, identity, sess); err != nil {
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}
	return sess, nil
}

func (m *Manager) save(ctx context.Context, identity string, sess *domain.Session) error {
	sess.UpdatedAt = m.clock()
	return m.store.Save(ctx, identity, sess)
}

// Exists reports whether an active session is present.
func (m *Manager) Exists(ctx context.Context, identity string) (bool, error) {
	_, err := m.Load(ctx, identity)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domain.ErrSessionNotFound) {
		return false, nil
	}
	return false, err
}
