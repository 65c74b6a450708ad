package ports

import (
	"context"

	"github.com/mkuleshov/pgdbot/pkg/domain"
)

// SessionStore defines the interface for persisting session state.
// Implementations must be safe for concurrent use; per-event atomicity
// for one identity is provided on top by session.Manager.
type SessionStore interface {
	// Save persists the session for a given identity.
	Save(ctx context.Context, identity string, s *domain.Session) error

	// Load retrieves the session for a given identity.
	// Returns domain.ErrSessionNotFound if no session exists.
	Load(ctx context.Context, identity string) (*domain.Session, error)

	// Delete removes the session for a given identity. Deleting a
	// missing session is not an error.
	Delete(ctx context.Context, identity string) error

	// List returns the identities with an active session.
	List(ctx context.Context) ([]string, error)
}
