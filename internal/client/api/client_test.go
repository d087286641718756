package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/cmdbase/pkg/api"
)

func TestClient_Login(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/login", r.URL.Path)

		var req api.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice", req.Username)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.AuthResponse{
			Success:  true,
			Username: "alice",
			Token:    "session-token",
			Commands: []api.Command{{ID: 1, Command: "ping 8.8.8.8"}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.Login(context.Background(), api.LoginRequest{
		Username: "alice",
		Password: "password123",
	})

	require.NoError(t, err)
	assert.Equal(t, "session-token", resp.Token)
	require.Len(t, resp.Commands, 1)
	assert.Equal(t, "ping 8.8.8.8", resp.Commands[0].Command)
}

func TestClient_SendsBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer session-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.CommandsResponse{Success: true})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.SetToken("session-token")

	_, err := client.ListCommands(context.Background(), "", "")
	require.NoError(t, err)
}

func TestClient_ListCommands_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ping", r.URL.Query().Get("search"))
		assert.Equal(t, "description", r.URL.Query().Get("field"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.CommandsResponse{Success: true})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.ListCommands(context.Background(), "ping", "description")
	require.NoError(t, err)
}

func TestClient_ServerErrorMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(api.ErrorResponse{
			Success: false,
			Message: "username already taken",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Signup(context.Background(), api.SignupRequest{
		Username: "alice",
		Password: "password123",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "username already taken")
	assert.Contains(t, err.Error(), "409")
}

func TestClient_RemoveCommand(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)

		var req api.RemoveRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(42), req.ID)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.StatusResponse{Success: true})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	require.NoError(t, client.RemoveCommand(context.Background(), 42))
}

func TestClient_ImportDevices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req api.ImportDevicesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Devices, 2)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.ImportResponse{Success: true, Imported: 1})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.ImportDevices(context.Background(), []api.Device{
		{Device: "core-sw-1", IP: "10.0.0.1"},
		{Device: "no-ip"},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, resp.Imported)
}
