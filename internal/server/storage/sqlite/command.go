package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iudanet/cmdbase/internal/models"
	"github.com/iudanet/cmdbase/internal/server/storage"
)

// dateLayout формат хранения last_used
const dateLayout = "2006-01-02"

func today() string {
	return time.Now().Format(dateLayout)
}

// ListCommands returns the department's commands in insertion (id) order
func (s *Storage) ListCommands(ctx context.Context, department string) ([]models.Command, error) {
	query := `
		SELECT id, command, description, last_used
		FROM commands
		WHERE department = ?
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query, department)
	if err != nil {
		return nil, fmt.Errorf("failed to query commands: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var commands []models.Command
	for rows.Next() {
		var c models.Command
		if err := rows.Scan(&c.ID, &c.Command, &c.Description, &c.LastUsed); err != nil {
			return nil, fmt.Errorf("failed to scan command: %w", err)
		}
		commands = append(commands, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return commands, nil
}

// AddCommand inserts a command with a fresh department-scoped id
// Счетчик id и вставка коммитятся атомарно: либо оба, либо ни одного
func (s *Storage) AddCommand(ctx context.Context, department, command, description string) (*models.Command, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	id, err := nextID(ctx, tx, "next_command_id", department)
	if err != nil {
		return nil, err
	}

	cmd := &models.Command{
		ID:          id,
		Command:     command,
		Description: description,
		LastUsed:    today(),
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO commands (department, id, command, description, last_used) VALUES (?, ?, ?, ?, ?)`,
		department, cmd.ID, cmd.Command, cmd.Description, cmd.LastUsed,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert command: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return cmd, nil
}

// RemoveCommand deletes command by id within the department
func (s *Storage) RemoveCommand(ctx context.Context, department string, id int64) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM commands WHERE department = ? AND id = ?`,
		department, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete command: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrCommandNotFound
	}

	return nil
}

// TouchCommand marks the command as just used: last_used становится сегодняшней
// датой и никогда не двигается назад
func (s *Storage) TouchCommand(ctx context.Context, department string, id int64) (*models.Command, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	cmd := &models.Command{}
	err = tx.QueryRowContext(ctx,
		`SELECT id, command, description, last_used FROM commands WHERE department = ? AND id = ?`,
		department, id,
	).Scan(&cmd.ID, &cmd.Command, &cmd.Description, &cmd.LastUsed)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrCommandNotFound
		}
		return nil, fmt.Errorf("failed to get command: %w", err)
	}

	// ISO-даты сравниваются лексикографически
	if now := today(); now > cmd.LastUsed {
		if _, err := tx.ExecContext(ctx,
			`UPDATE commands SET last_used = ? WHERE department = ? AND id = ?`,
			now, department, id,
		); err != nil {
			return nil, fmt.Errorf("failed to update last_used: %w", err)
		}
		cmd.LastUsed = now
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return cmd, nil
}

// UpdateCommand updates non-nil fields of a command by id
func (s *Storage) UpdateCommand(ctx context.Context, department string, id int64, command, description *string) error {
	sets := make([]string, 0, 2)
	args := make([]any, 0, 4)

	if command != nil {
		sets = append(sets, "command = ?")
		args = append(args, *command)
	}
	if description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *description)
	}

	if len(sets) == 0 {
		return nil
	}

	args = append(args, department, id)
	query := fmt.Sprintf(`UPDATE commands SET %s WHERE department = ? AND id = ?`, strings.Join(sets, ", "))

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update command: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrCommandNotFound
	}

	return nil
}

// ImportCommands inserts entries with fresh ids; entries without command text
// are skipped (partial success by design). Returns the number imported.
func (s *Storage) ImportCommands(ctx context.Context, department string, entries []storage.CommandImport) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := today()
	imported := 0

	for _, entry := range entries {
		if strings.TrimSpace(entry.Command) == "" {
			continue
		}

		id, err := nextID(ctx, tx, "next_command_id", department)
		if err != nil {
			return 0, err
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO commands (department, id, command, description, last_used) VALUES (?, ?, ?, ?, ?)`,
			department, id, entry.Command, entry.Description, now,
		); err != nil {
			return 0, fmt.Errorf("failed to insert command: %w", err)
		}

		imported++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return imported, nil
}

// nextID выдает следующий id из счетчика отдела внутри транзакции
// Счетчик только растет, поэтому id не переиспользуются после удаления
func nextID(ctx context.Context, tx *sql.Tx, counter, department string) (int64, error) {
	query := fmt.Sprintf(
		`UPDATE departments SET %s = %s + 1 WHERE name = ? RETURNING %s - 1`,
		counter, counter, counter,
	)

	var id int64
	err := tx.QueryRowContext(ctx, query, department).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, storage.ErrDepartmentNotFound
		}
		return 0, fmt.Errorf("failed to advance id counter: %w", err)
	}

	return id, nil
}
