package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/iudanet/cmdbase/internal/models"
	"github.com/iudanet/cmdbase/internal/server/storage"
)

// ListDevices returns the department's devices in insertion (id) order
func (s *Storage) ListDevices(ctx context.Context, department string) ([]models.Device, error) {
	query := `
		SELECT id, device, ip
		FROM devices
		WHERE department = ?
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query, department)
	if err != nil {
		return nil, fmt.Errorf("failed to query devices: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var devices []models.Device
	for rows.Next() {
		var d models.Device
		if err := rows.Scan(&d.ID, &d.Device, &d.IP); err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		devices = append(devices, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return devices, nil
}

// AddDevice inserts a device with a fresh department-scoped id
func (s *Storage) AddDevice(ctx context.Context, department, device, ip string) (*models.Device, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	id, err := nextID(ctx, tx, "next_device_id", department)
	if err != nil {
		return nil, err
	}

	dev := &models.Device{
		ID:     id,
		Device: device,
		IP:     ip,
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO devices (department, id, device, ip) VALUES (?, ?, ?, ?)`,
		department, dev.ID, dev.Device, dev.IP,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert device: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return dev, nil
}

// RemoveDevice deletes device by id within the department
func (s *Storage) RemoveDevice(ctx context.Context, department string, id int64) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM devices WHERE department = ? AND id = ?`,
		department, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete device: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrDeviceNotFound
	}

	return nil
}

// UpdateDevice updates non-nil fields of a device by id
func (s *Storage) UpdateDevice(ctx context.Context, department string, id int64, device, ip *string) error {
	sets := make([]string, 0, 2)
	args := make([]any, 0, 4)

	if device != nil {
		sets = append(sets, "device = ?")
		args = append(args, *device)
	}
	if ip != nil {
		sets = append(sets, "ip = ?")
		args = append(args, *ip)
	}

	if len(sets) == 0 {
		return nil
	}

	args = append(args, department, id)
	query := fmt.Sprintf(`UPDATE devices SET %s WHERE department = ? AND id = ?`, strings.Join(sets, ", "))

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update device: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrDeviceNotFound
	}

	return nil
}

// ImportDevices inserts entries with fresh ids; entries missing device label
// or ip are skipped. Returns the number imported.
func (s *Storage) ImportDevices(ctx context.Context, department string, entries []storage.DeviceImport) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	imported := 0

	for _, entry := range entries {
		if strings.TrimSpace(entry.Device) == "" || strings.TrimSpace(entry.IP) == "" {
			continue
		}

		id, err := nextID(ctx, tx, "next_device_id", department)
		if err != nil {
			return 0, err
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO devices (department, id, device, ip) VALUES (?, ?, ?, ?)`,
			department, id, entry.Device, entry.IP,
		); err != nil {
			return 0, fmt.Errorf("failed to insert device: %w", err)
		}

		imported++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return imported, nil
}
