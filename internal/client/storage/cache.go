package storage

import (
	"context"

	"github.com/iudanet/cmdbase/internal/models"
)

// CacheStorage defines interface for the local mirror of the department's
// registry. The mirror is replaced wholesale on each successful fetch and is
// never touched when a request fails, so offline reads keep showing the last
// known good state.
type CacheStorage interface {
	// SaveCommands replaces the cached command list
	SaveCommands(ctx context.Context, commands []models.Command) error

	// GetCommands returns the cached command list
	// Returns ErrCacheEmpty if commands have never been fetched
	GetCommands(ctx context.Context) ([]models.Command, error)

	// SaveDevices replaces the cached device list
	SaveDevices(ctx context.Context, devices []models.Device) error

	// GetDevices returns the cached device list
	// Returns ErrCacheEmpty if devices have never been fetched
	GetDevices(ctx context.Context) ([]models.Device, error)

	// ClearCache drops both mirrors (logout)
	ClearCache(ctx context.Context) error
}
