package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/cmdbase/pkg/api"
)

// authedRequest строит запрос с отделом и пользователем в контексте,
// как их кладет auth middleware
func authedRequest(t *testing.T, method, target, department string, body any) *http.Request {
	t.Helper()

	var req *http.Request
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, target, bytes.NewReader(data))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	ctx := context.WithValue(req.Context(), UserIDKey, "user-1")
	ctx = context.WithValue(ctx, UsernameKey, "alice")
	ctx = context.WithValue(ctx, DepartmentKey, department)
	return req.WithContext(ctx)
}

func newTestRegistryHandler() (*RegistryHandler, *mockRegistryStorage) {
	storage := newMockRegistryStorage()
	return NewRegistryHandler(testLogger(), storage), storage
}

func TestRegistryHandler_AddAndListCommands(t *testing.T) {
	h, _ := newTestRegistryHandler()

	w := httptest.NewRecorder()
	h.AddCommand(w, authedRequest(t, http.MethodPost, "/commands", "Help Desk", api.AddCommandRequest{
		Command:     "ping 8.8.8.8",
		Description: "connectivity check",
	}))
	require.Equal(t, http.StatusCreated, w.Code)

	var added api.CommandResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&added))
	assert.True(t, added.Success)
	assert.Equal(t, int64(1), added.Command.ID)
	assert.NotEmpty(t, added.Command.LastUsed)

	w = httptest.NewRecorder()
	h.ListCommands(w, authedRequest(t, http.MethodGet, "/commands", "Help Desk", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var list api.CommandsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	assert.True(t, list.Success)
	require.Len(t, list.Commands, 1)
	assert.Equal(t, "ping 8.8.8.8", list.Commands[0].Command)
}

func TestRegistryHandler_AddCommand_RequiresText(t *testing.T) {
	h, storage := newTestRegistryHandler()

	w := httptest.NewRecorder()
	h.AddCommand(w, authedRequest(t, http.MethodPost, "/commands", "Help Desk", api.AddCommandRequest{
		Command: "   ",
	}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, storage.commands["Help Desk"])
}

func TestRegistryHandler_ListCommands_Search(t *testing.T) {
	h, storage := newTestRegistryHandler()
	ctx := context.Background()

	_, err := storage.AddCommand(ctx, "Help Desk", "ping 8.8.8.8", "connectivity check")
	require.NoError(t, err)
	_, err = storage.AddCommand(ctx, "Help Desk", "traceroute 10.0.0.1", "path trace")
	require.NoError(t, err)

	// Поиск по умолчанию идет по тексту команды
	w := httptest.NewRecorder()
	h.ListCommands(w, authedRequest(t, http.MethodGet, "/commands?search=PING", "Help Desk", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var list api.CommandsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	require.Len(t, list.Commands, 1)
	assert.Equal(t, "ping 8.8.8.8", list.Commands[0].Command)

	// Явное поле description
	w = httptest.NewRecorder()
	h.ListCommands(w, authedRequest(t, http.MethodGet, "/commands?search=trace&field=description", "Help Desk", nil))
	require.Equal(t, http.StatusOK, w.Code)

	list = api.CommandsResponse{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	require.Len(t, list.Commands, 1)
	assert.Equal(t, "traceroute 10.0.0.1", list.Commands[0].Command)

	// Неизвестное поле - ошибка клиента
	w = httptest.NewRecorder()
	h.ListCommands(w, authedRequest(t, http.MethodGet, "/commands?search=x&field=bogus", "Help Desk", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegistryHandler_RemoveCommand(t *testing.T) {
	h, storage := newTestRegistryHandler()

	c, err := storage.AddCommand(context.Background(), "Help Desk", "ping 8.8.8.8", "")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	h.RemoveCommand(w, authedRequest(t, http.MethodDelete, "/commands", "Help Desk", api.RemoveRequest{ID: c.ID}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, storage.commands["Help Desk"])

	// Повторное удаление - 404
	w = httptest.NewRecorder()
	h.RemoveCommand(w, authedRequest(t, http.MethodDelete, "/commands", "Help Desk", api.RemoveRequest{ID: c.ID}))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegistryHandler_CommandScopedToDepartment(t *testing.T) {
	h, storage := newTestRegistryHandler()

	c, err := storage.AddCommand(context.Background(), "Help Desk", "ping 8.8.8.8", "")
	require.NoError(t, err)

	// id чужого отдела невидим: удаление из другого отдела - 404
	w := httptest.NewRecorder()
	h.RemoveCommand(w, authedRequest(t, http.MethodDelete, "/commands", "Network Ops", api.RemoveRequest{ID: c.ID}))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Len(t, storage.commands["Help Desk"], 1)

	// и в листинге другого отдела команда не появляется
	w = httptest.NewRecorder()
	h.ListCommands(w, authedRequest(t, http.MethodGet, "/commands", "Network Ops", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var list api.CommandsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	assert.Empty(t, list.Commands)
}

func TestRegistryHandler_TouchCommand(t *testing.T) {
	h, storage := newTestRegistryHandler()

	c, err := storage.AddCommand(context.Background(), "Help Desk", "ping 8.8.8.8", "")
	require.NoError(t, err)
	storage.commands["Help Desk"][0].LastUsed = "2020-01-01"

	w := httptest.NewRecorder()
	h.TouchCommand(w, authedRequest(t, http.MethodPost, "/commands/touch", "Help Desk", api.TouchRequest{ID: c.ID}))
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.CommandResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Greater(t, resp.Command.LastUsed, "2020-01-01")

	w = httptest.NewRecorder()
	h.TouchCommand(w, authedRequest(t, http.MethodPost, "/commands/touch", "Help Desk", api.TouchRequest{ID: 999}))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegistryHandler_UpdateCommand(t *testing.T) {
	h, storage := newTestRegistryHandler()

	c, err := storage.AddCommand(context.Background(), "Help Desk", "ping 8.8.8.8", "old")
	require.NoError(t, err)

	desc := "connectivity check"
	w := httptest.NewRecorder()
	h.UpdateCommand(w, authedRequest(t, http.MethodPut, "/commands/update", "Help Desk", api.UpdateCommandRequest{
		ID:          c.ID,
		Description: &desc,
	}))
	require.Equal(t, http.StatusOK, w.Code)

	got := storage.commands["Help Desk"][0]
	assert.Equal(t, "ping 8.8.8.8", got.Command)
	assert.Equal(t, "connectivity check", got.Description)

	// Запрос без полей отклоняется
	w = httptest.NewRecorder()
	h.UpdateCommand(w, authedRequest(t, http.MethodPut, "/commands/update", "Help Desk", api.UpdateCommandRequest{ID: c.ID}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegistryHandler_ImportCommands_PartialSuccess(t *testing.T) {
	h, storage := newTestRegistryHandler()

	w := httptest.NewRecorder()
	h.ImportCommands(w, authedRequest(t, http.MethodPost, "/commands/import", "Help Desk", api.ImportCommandsRequest{
		Commands: []api.Command{
			{Command: "ping 8.8.8.8", Description: "connectivity"},
			{Command: "", Description: "no command text"},
			{Command: "traceroute 10.0.0.1"},
		},
	}))
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.ImportResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Imported)
	assert.Len(t, storage.commands["Help Desk"], 2)
}

// Полный цикл через handlers: signup -> add -> list -> remove -> list
func TestRegistry_EndToEnd(t *testing.T) {
	auth, users, _, registryStorage, _ := newTestAuthHandler()
	h := NewRegistryHandler(testLogger(), registryStorage)

	w := doJSON(t, auth.Signup, http.MethodPost, "/signup", api.SignupRequest{
		Username: "alice",
		Password: "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	department := users.users["alice"].Department

	w = httptest.NewRecorder()
	h.AddCommand(w, authedRequest(t, http.MethodPost, "/commands", department, api.AddCommandRequest{
		Command: "ssh admin@core-sw-1",
	}))
	require.Equal(t, http.StatusCreated, w.Code)

	var added api.CommandResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&added))

	w = httptest.NewRecorder()
	h.ListCommands(w, authedRequest(t, http.MethodGet, "/commands", department, nil))
	var list api.CommandsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	require.Len(t, list.Commands, 1)

	w = httptest.NewRecorder()
	h.RemoveCommand(w, authedRequest(t, http.MethodDelete, "/commands", department, api.RemoveRequest{ID: added.Command.ID}))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ListCommands(w, authedRequest(t, http.MethodGet, "/commands", department, nil))
	list = api.CommandsResponse{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	assert.Empty(t, list.Commands)
}
