package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/cmdbase/internal/server/storage"
)

func TestCommandStorage_AddAndList(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	createTestDepartment(t, ctx, s, "Ops")

	cmd, err := s.AddCommand(ctx, "Ops", "uptime", "show uptime")
	require.NoError(t, err)
	assert.Equal(t, int64(1), cmd.ID)
	assert.Equal(t, time.Now().Format(dateLayout), cmd.LastUsed)

	cmd2, err := s.AddCommand(ctx, "Ops", "df -h", "disk usage")
	require.NoError(t, err)
	assert.Equal(t, int64(2), cmd2.ID)

	commands, err := s.ListCommands(ctx, "Ops")
	require.NoError(t, err)
	require.Len(t, commands, 2)
	assert.Equal(t, "uptime", commands[0].Command)
	assert.Equal(t, "show uptime", commands[0].Description)
	assert.Equal(t, "df -h", commands[1].Command)
}

func TestCommandStorage_IDsNeverReused(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	createTestDepartment(t, ctx, s, "Ops")

	first, err := s.AddCommand(ctx, "Ops", "ls", "")
	require.NoError(t, err)
	require.NoError(t, s.RemoveCommand(ctx, "Ops", first.ID))

	// id удаленной команды не возвращается в оборот
	second, err := s.AddCommand(ctx, "Ops", "pwd", "")
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)
}

func TestCommandStorage_RemoveNotFound(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	createTestDepartment(t, ctx, s, "Ops")

	err := s.RemoveCommand(ctx, "Ops", 99)
	assert.ErrorIs(t, err, storage.ErrCommandNotFound)
}

func TestCommandStorage_DepartmentScoping(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	createTestDepartment(t, ctx, s, "Ops")
	createTestDepartment(t, ctx, s, "Help Desk")

	cmd, err := s.AddCommand(ctx, "Ops", "reboot", "")
	require.NoError(t, err)

	// id существует в Ops, но для Help Desk это NotFound, а не утечка
	err = s.RemoveCommand(ctx, "Help Desk", cmd.ID)
	assert.ErrorIs(t, err, storage.ErrCommandNotFound)

	_, err = s.TouchCommand(ctx, "Help Desk", cmd.ID)
	assert.ErrorIs(t, err, storage.ErrCommandNotFound)

	opsCommands, err := s.ListCommands(ctx, "Ops")
	require.NoError(t, err)
	assert.Len(t, opsCommands, 1)

	hdCommands, err := s.ListCommands(ctx, "Help Desk")
	require.NoError(t, err)
	assert.Empty(t, hdCommands)
}

func TestCommandStorage_Touch(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	createTestDepartment(t, ctx, s, "Ops")

	cmd, err := s.AddCommand(ctx, "Ops", "ssh gw1", "")
	require.NoError(t, err)

	// Состарим запись напрямую через БД
	_, err = s.DB().ExecContext(ctx,
		`UPDATE commands SET last_used = '2020-01-01' WHERE department = 'Ops' AND id = ?`, cmd.ID)
	require.NoError(t, err)

	touched, err := s.TouchCommand(ctx, "Ops", cmd.ID)
	require.NoError(t, err)
	assert.Equal(t, time.Now().Format(dateLayout), touched.LastUsed)

	// last_used движется только вперед
	future := time.Now().AddDate(1, 0, 0).Format(dateLayout)
	_, err = s.DB().ExecContext(ctx,
		`UPDATE commands SET last_used = ? WHERE department = 'Ops' AND id = ?`, future, cmd.ID)
	require.NoError(t, err)

	touched, err = s.TouchCommand(ctx, "Ops", cmd.ID)
	require.NoError(t, err)
	assert.Equal(t, future, touched.LastUsed)
}

func TestCommandStorage_Update(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	createTestDepartment(t, ctx, s, "Ops")

	cmd, err := s.AddCommand(ctx, "Ops", "ls", "list")
	require.NoError(t, err)

	newText := "ls -la"
	require.NoError(t, s.UpdateCommand(ctx, "Ops", cmd.ID, &newText, nil))

	commands, err := s.ListCommands(ctx, "Ops")
	require.NoError(t, err)
	require.Len(t, commands, 1)
	assert.Equal(t, "ls -la", commands[0].Command)
	assert.Equal(t, "list", commands[0].Description)

	err = s.UpdateCommand(ctx, "Ops", 42, &newText, nil)
	assert.ErrorIs(t, err, storage.ErrCommandNotFound)
}

func TestCommandStorage_Import_PartialSuccess(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	createTestDepartment(t, ctx, s, "Ops")

	count, err := s.ImportCommands(ctx, "Ops", []storage.CommandImport{
		{Command: "ls", Description: ""},
		{Command: "", Description: "no text"},
		{Command: "  ", Description: "blank text"},
		{Command: "uptime", Description: "show uptime"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	commands, err := s.ListCommands(ctx, "Ops")
	require.NoError(t, err)
	require.Len(t, commands, 2)
	assert.Equal(t, "ls", commands[0].Command)
	assert.Equal(t, "uptime", commands[1].Command)
	assert.Equal(t, int64(1), commands[0].ID)
	assert.Equal(t, int64(2), commands[1].ID)
}

func TestCommandStorage_Add_DepartmentNotFound(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	_, err := s.AddCommand(ctx, "Nowhere", "ls", "")
	assert.ErrorIs(t, err, storage.ErrDepartmentNotFound)
}
