package ports

import (
	"context"

	"github.com/aretw0/tutorgraph/pkg/domain"
)

// SessionStore persists learning sessions.
// The pipeline core never touches it; only the session manager does.
type SessionStore interface {
	// Save persists the session under its ID, replacing any previous value.
	Save(ctx context.Context, session *domain.Session) error

	// Load retrieves a session by ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Session, error)

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of the stored sessions.
	List(ctx context.Context) ([]string, error)
}
