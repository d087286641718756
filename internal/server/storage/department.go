package storage

import (
	"context"

	"github.com/iudanet/cmdbase/internal/models"
)

// DepartmentStorage defines interface for the department directory
type DepartmentStorage interface {
	// CreateDepartment creates a department with initial role sets
	// Returns ErrDepartmentExists if the name is taken
	// Both role sets must be non-empty (validated by the caller)
	CreateDepartment(ctx context.Context, dept *models.Department) error

	// GetDepartment retrieves department by name with role sets populated
	// Returns ErrDepartmentNotFound if department doesn't exist
	GetDepartment(ctx context.Context, name string) (*models.Department, error)

	// AddManager adds username to the manager set, idempotently
	// Returns ErrDepartmentNotFound if department doesn't exist
	AddManager(ctx context.Context, department, username string) error

	// AddTeamLead adds username to the team lead set, idempotently
	// Returns ErrDepartmentNotFound if department doesn't exist
	AddTeamLead(ctx context.Context, department, username string) error
}
