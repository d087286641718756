package storage

import (
	"context"

	"github.com/iudanet/cmdbase/internal/models"
)

// SessionStorage defines interface for server-side session records.
// A session row must exist and be unexpired for its token to be accepted,
// which makes logout an actual revocation.
type SessionStorage interface {
	// SaveSession stores a new session
	SaveSession(ctx context.Context, session *models.Session) error

	// GetSession retrieves session by ID
	// Returns ErrSessionNotFound if session doesn't exist
	GetSession(ctx context.Context, sessionID string) (*models.Session, error)

	// DeleteUserSessions deletes all sessions of a user, returns count
	// Logout uses this to revoke every token the user holds
	DeleteUserSessions(ctx context.Context, userID string) (int, error)

	// DeleteExpiredSessions removes all expired sessions, returns count
	DeleteExpiredSessions(ctx context.Context) (int, error)
}
