package storage

import (
	"context"

	"github.com/iudanet/cmdbase/internal/models"
)

// UserStorage defines interface for user data persistence
type UserStorage interface {
	// CreateUserWithDepartment creates a user and, if the named department
	// does not exist yet, the department with dept's role sets, atomically.
	// An existing department keeps its role sets untouched. On any failure
	// neither the user nor the department is persisted.
	// Returns ErrUserAlreadyExists if username is taken
	CreateUserWithDepartment(ctx context.Context, user *models.User, dept *models.Department) error

	// GetUserByUsername retrieves user by username (case-sensitive)
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetUserByID retrieves user by ID
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
}
