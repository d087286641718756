package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iudanet/cmdbase/internal/models"
	"github.com/iudanet/cmdbase/internal/server/storage"
)

// CreateDepartment creates a department together with its role sets
// in a single transaction
func (s *Storage) CreateDepartment(ctx context.Context, dept *models.Department) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := insertDepartmentTx(ctx, tx, dept); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// insertDepartmentTx вставляет отдел и его роли внутри открытой транзакции
// Используется и при явном создании отдела, и при регистрации пользователя
// с еще не существующим отделом
func insertDepartmentTx(ctx context.Context, tx *sql.Tx, dept *models.Department) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO departments (name) VALUES (?)`,
		dept.Name,
	)
	if err != nil {
		// Проверяем на duplicate name
		if strings.Contains(err.Error(), "UNIQUE constraint failed") ||
			strings.Contains(err.Error(), "PRIMARY KEY constraint failed") {
			return storage.ErrDepartmentExists
		}
		return fmt.Errorf("failed to insert department: %w", err)
	}

	// Роли храним в отдельных таблицах с composite PK: set-семантика
	for _, username := range dept.Managers {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO department_managers (department, username) VALUES (?, ?)`,
			dept.Name, username,
		); err != nil {
			return fmt.Errorf("failed to insert manager: %w", err)
		}
	}

	for _, username := range dept.TeamLeads {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO department_teamleads (department, username) VALUES (?, ?)`,
			dept.Name, username,
		); err != nil {
			return fmt.Errorf("failed to insert team lead: %w", err)
		}
	}

	return nil
}

// GetDepartment retrieves department by name with role sets populated
func (s *Storage) GetDepartment(ctx context.Context, name string) (*models.Department, error) {
	dept := &models.Department{}

	err := s.db.QueryRowContext(ctx,
		`SELECT name, next_command_id, next_device_id FROM departments WHERE name = ?`,
		name,
	).Scan(&dept.Name, &dept.NextCommandID, &dept.NextDeviceID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("failed to get department: %w", err)
	}

	dept.Managers, err = s.listRole(ctx, "department_managers", name)
	if err != nil {
		return nil, err
	}

	dept.TeamLeads, err = s.listRole(ctx, "department_teamleads", name)
	if err != nil {
		return nil, err
	}

	return dept, nil
}

// AddManager adds username to the manager set, idempotently
func (s *Storage) AddManager(ctx context.Context, department, username string) error {
	return s.addRole(ctx, "department_managers", department, username)
}

// AddTeamLead adds username to the team lead set, idempotently
func (s *Storage) AddTeamLead(ctx context.Context, department, username string) error {
	return s.addRole(ctx, "department_teamleads", department, username)
}

// addRole вставляет запись о роли; повторная вставка - no-op
func (s *Storage) addRole(ctx context.Context, table, department, username string) error {
	// Сначала проверяем, что отдел существует
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM departments WHERE name = ?`, department,
	).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrDepartmentNotFound
		}
		return fmt.Errorf("failed to check department: %w", err)
	}

	query := fmt.Sprintf(`INSERT OR IGNORE INTO %s (department, username) VALUES (?, ?)`, table)
	if _, err := s.db.ExecContext(ctx, query, department, username); err != nil {
		return fmt.Errorf("failed to add role: %w", err)
	}

	return nil
}

// listRole возвращает отсортированный список usernames роли
func (s *Storage) listRole(ctx context.Context, table, department string) ([]string, error) {
	query := fmt.Sprintf(`SELECT username FROM %s WHERE department = ? ORDER BY username`, table)

	rows, err := s.db.QueryContext(ctx, query, department)
	if err != nil {
		return nil, fmt.Errorf("failed to query roles: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var usernames []string
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		usernames = append(usernames, username)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return usernames, nil
}
