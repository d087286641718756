package handlers

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/iudanet/cmdbase/internal/models"
	"github.com/iudanet/cmdbase/internal/server/storage"
)

// mockUserStorage is a mock implementation of UserStorage for testing
// departments ссылается на mockDepartmentStorage, чтобы комбинированное
// создание вело себя как одна транзакция: при сбое не остается ни
// пользователя, ни отдела
type mockUserStorage struct {
	users        map[string]*models.User // username -> User
	departments  *mockDepartmentStorage
	createError  error
	getUserError error
}

func newMockUserStorage(departments *mockDepartmentStorage) *mockUserStorage {
	return &mockUserStorage{
		users:       make(map[string]*models.User),
		departments: departments,
	}
}

func (m *mockUserStorage) CreateUserWithDepartment(ctx context.Context, user *models.User, dept *models.Department) error {
	if m.createError != nil {
		return m.createError
	}
	if _, exists := m.users[user.Username]; exists {
		return storage.ErrUserAlreadyExists
	}
	if _, ok := m.departments.departments[dept.Name]; !ok {
		if err := m.departments.CreateDepartment(ctx, dept); err != nil {
			return err
		}
	}
	m.users[user.Username] = user
	return nil
}

func (m *mockUserStorage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.getUserError != nil {
		return nil, m.getUserError
	}
	user, ok := m.users[username]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserStorage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if m.getUserError != nil {
		return nil, m.getUserError
	}
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

// mockDepartmentStorage is a mock implementation of DepartmentStorage
type mockDepartmentStorage struct {
	departments map[string]*models.Department
	createError error
	getError    error
}

func newMockDepartmentStorage() *mockDepartmentStorage {
	return &mockDepartmentStorage{departments: make(map[string]*models.Department)}
}

func (m *mockDepartmentStorage) CreateDepartment(ctx context.Context, dept *models.Department) error {
	if m.createError != nil {
		return m.createError
	}
	if _, exists := m.departments[dept.Name]; exists {
		return storage.ErrDepartmentExists
	}
	m.departments[dept.Name] = dept
	return nil
}

func (m *mockDepartmentStorage) GetDepartment(ctx context.Context, name string) (*models.Department, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	dept, ok := m.departments[name]
	if !ok {
		return nil, storage.ErrDepartmentNotFound
	}
	return dept, nil
}

func (m *mockDepartmentStorage) AddManager(ctx context.Context, department, username string) error {
	dept, ok := m.departments[department]
	if !ok {
		return storage.ErrDepartmentNotFound
	}
	if !slices.Contains(dept.Managers, username) {
		dept.Managers = append(dept.Managers, username)
	}
	return nil
}

func (m *mockDepartmentStorage) AddTeamLead(ctx context.Context, department, username string) error {
	dept, ok := m.departments[department]
	if !ok {
		return storage.ErrDepartmentNotFound
	}
	if !slices.Contains(dept.TeamLeads, username) {
		dept.TeamLeads = append(dept.TeamLeads, username)
	}
	return nil
}

// mockRegistryStorage is an in-memory implementation of RegistryStorage
// Commands and devices are keyed by department, ids are never reused
type mockRegistryStorage struct {
	commands      map[string][]models.Command
	devices       map[string][]models.Device
	nextCommandID map[string]int64
	nextDeviceID  map[string]int64
	listError     error
	addError      error
}

func newMockRegistryStorage() *mockRegistryStorage {
	return &mockRegistryStorage{
		commands:      make(map[string][]models.Command),
		devices:       make(map[string][]models.Device),
		nextCommandID: make(map[string]int64),
		nextDeviceID:  make(map[string]int64),
	}
}

func (m *mockRegistryStorage) nextID(counters map[string]int64, department string) int64 {
	if counters[department] == 0 {
		counters[department] = 1
	}
	id := counters[department]
	counters[department]++
	return id
}

func (m *mockRegistryStorage) ListCommands(ctx context.Context, department string) ([]models.Command, error) {
	if m.listError != nil {
		return nil, m.listError
	}
	return m.commands[department], nil
}

func (m *mockRegistryStorage) AddCommand(ctx context.Context, department, command, description string) (*models.Command, error) {
	if m.addError != nil {
		return nil, m.addError
	}
	c := models.Command{
		ID:          m.nextID(m.nextCommandID, department),
		Command:     command,
		Description: description,
		LastUsed:    time.Now().Format("2006-01-02"),
	}
	m.commands[department] = append(m.commands[department], c)
	return &c, nil
}

func (m *mockRegistryStorage) RemoveCommand(ctx context.Context, department string, id int64) error {
	list := m.commands[department]
	for i, c := range list {
		if c.ID == id {
			m.commands[department] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return storage.ErrCommandNotFound
}

func (m *mockRegistryStorage) TouchCommand(ctx context.Context, department string, id int64) (*models.Command, error) {
	list := m.commands[department]
	for i := range list {
		if list[i].ID == id {
			today := time.Now().Format("2006-01-02")
			if today > list[i].LastUsed {
				list[i].LastUsed = today
			}
			return &list[i], nil
		}
	}
	return nil, storage.ErrCommandNotFound
}

func (m *mockRegistryStorage) UpdateCommand(ctx context.Context, department string, id int64, command, description *string) error {
	list := m.commands[department]
	for i := range list {
		if list[i].ID == id {
			if command != nil {
				list[i].Command = *command
			}
			if description != nil {
				list[i].Description = *description
			}
			return nil
		}
	}
	return storage.ErrCommandNotFound
}

func (m *mockRegistryStorage) ImportCommands(ctx context.Context, department string, entries []storage.CommandImport) (int, error) {
	imported := 0
	for _, e := range entries {
		if strings.TrimSpace(e.Command) == "" {
			continue
		}
		if _, err := m.AddCommand(ctx, department, e.Command, e.Description); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

func (m *mockRegistryStorage) ListDevices(ctx context.Context, department string) ([]models.Device, error) {
	if m.listError != nil {
		return nil, m.listError
	}
	return m.devices[department], nil
}

func (m *mockRegistryStorage) AddDevice(ctx context.Context, department, device, ip string) (*models.Device, error) {
	if m.addError != nil {
		return nil, m.addError
	}
	d := models.Device{
		ID:     m.nextID(m.nextDeviceID, department),
		Device: device,
		IP:     ip,
	}
	m.devices[department] = append(m.devices[department], d)
	return &d, nil
}

func (m *mockRegistryStorage) RemoveDevice(ctx context.Context, department string, id int64) error {
	list := m.devices[department]
	for i, d := range list {
		if d.ID == id {
			m.devices[department] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return storage.ErrDeviceNotFound
}

func (m *mockRegistryStorage) UpdateDevice(ctx context.Context, department string, id int64, device, ip *string) error {
	list := m.devices[department]
	for i := range list {
		if list[i].ID == id {
			if device != nil {
				list[i].Device = *device
			}
			if ip != nil {
				list[i].IP = *ip
			}
			return nil
		}
	}
	return storage.ErrDeviceNotFound
}

func (m *mockRegistryStorage) ImportDevices(ctx context.Context, department string, entries []storage.DeviceImport) (int, error) {
	imported := 0
	for _, e := range entries {
		if strings.TrimSpace(e.Device) == "" || strings.TrimSpace(e.IP) == "" {
			continue
		}
		if _, err := m.AddDevice(ctx, department, e.Device, e.IP); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

// mockSessionStorage is a mock implementation of SessionStorage
type mockSessionStorage struct {
	sessions  map[string]*models.Session
	saveError error
}

func newMockSessionStorage() *mockSessionStorage {
	return &mockSessionStorage{sessions: make(map[string]*models.Session)}
}

func (m *mockSessionStorage) SaveSession(ctx context.Context, session *models.Session) error {
	if m.saveError != nil {
		return m.saveError
	}
	m.sessions[session.ID] = session
	return nil
}

func (m *mockSessionStorage) GetSession(ctx context.Context, id string) (*models.Session, error) {
	session, ok := m.sessions[id]
	if !ok {
		return nil, storage.ErrSessionNotFound
	}
	return session, nil
}

func (m *mockSessionStorage) DeleteUserSessions(ctx context.Context, userID string) (int, error) {
	deleted := 0
	for id, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *mockSessionStorage) DeleteExpiredSessions(ctx context.Context) (int, error) {
	deleted := 0
	now := time.Now()
	for id, s := range m.sessions {
		if now.After(s.ExpiresAt) {
			delete(m.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}
