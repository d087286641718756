package storage

import (
	"context"

	"github.com/iudanet/cmdbase/internal/models"
)

// CommandImport is one entry of a bulk command import
type CommandImport struct {
	Command     string
	Description string
}

// DeviceImport is one entry of a bulk device import
type DeviceImport struct {
	Device string
	IP     string
}

// RegistryStorage defines interface for department-scoped command and device
// collections. Every operation takes the department name resolved from the
// caller's session; ids from other departments are never visible here.
type RegistryStorage interface {
	// ListCommands returns the department's commands in insertion order
	ListCommands(ctx context.Context, department string) ([]models.Command, error)

	// AddCommand inserts a command with a fresh department-scoped id and
	// last_used set to today. The id counter and the insert commit atomically.
	AddCommand(ctx context.Context, department, command, description string) (*models.Command, error)

	// RemoveCommand deletes command by id
	// Returns ErrCommandNotFound if the id is absent from the department
	RemoveCommand(ctx context.Context, department string, id int64) error

	// TouchCommand sets last_used to today and returns the updated command.
	// last_used only moves forward. Returns ErrCommandNotFound if absent.
	TouchCommand(ctx context.Context, department string, id int64) (*models.Command, error)

	// UpdateCommand updates non-nil fields of a command by id
	// Returns ErrCommandNotFound if the id is absent from the department
	UpdateCommand(ctx context.Context, department string, id int64, command, description *string) error

	// ImportCommands inserts every entry with a fresh id and last_used set to
	// today; entries without command text are skipped. Returns imported count.
	ImportCommands(ctx context.Context, department string, entries []CommandImport) (int, error)

	// ListDevices returns the department's devices in insertion order
	ListDevices(ctx context.Context, department string) ([]models.Device, error)

	// AddDevice inserts a device with a fresh department-scoped id
	AddDevice(ctx context.Context, department, device, ip string) (*models.Device, error)

	// RemoveDevice deletes device by id
	// Returns ErrDeviceNotFound if the id is absent from the department
	RemoveDevice(ctx context.Context, department string, id int64) error

	// UpdateDevice updates non-nil fields of a device by id
	// Returns ErrDeviceNotFound if the id is absent from the department
	UpdateDevice(ctx context.Context, department string, id int64, device, ip *string) error

	// ImportDevices inserts every entry with a fresh id; entries missing
	// device label or ip are skipped. Returns imported count.
	ImportDevices(ctx context.Context, department string, entries []DeviceImport) (int, error)
}
