package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/cmdbase/internal/registry"
	"github.com/iudanet/cmdbase/internal/server/storage"
	"github.com/iudanet/cmdbase/internal/validation"
	"github.com/iudanet/cmdbase/pkg/api"
)

// RegistryHandler обрабатывает запросы к реестру команд и устройств
// Отдел всегда берется из контекста запроса (auth middleware)
type RegistryHandler struct {
	logger  *slog.Logger
	storage storage.RegistryStorage
}

// NewRegistryHandler создает новый handler для реестра
func NewRegistryHandler(logger *slog.Logger, s storage.RegistryStorage) *RegistryHandler {
	return &RegistryHandler{
		logger:  logger,
		storage: s,
	}
}

// department извлекает отдел вызывающего или отвечает 401
func (h *RegistryHandler) department(w http.ResponseWriter, r *http.Request) (string, bool) {
	department, ok := GetDepartment(r.Context())
	if !ok {
		h.logger.Error("department not found in context")
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return "", false
	}
	return department, true
}

// ListCommands обрабатывает GET /commands
// Параметры ?search= и ?field= включают фильтрацию по подстроке
func (h *RegistryHandler) ListCommands(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	department, ok := h.department(w, r)
	if !ok {
		return
	}

	commands, err := h.storage.ListCommands(ctx, department)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list commands",
			slog.String("department", department), slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	if term := r.URL.Query().Get("search"); term != "" {
		commands, err = registry.FilterCommands(commands, r.URL.Query().Get("field"), term)
		if err != nil {
			sendError(h.logger, w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	sendJSON(h.logger, w, api.CommandsResponse{
		Success:  true,
		Commands: toAPICommands(commands),
	}, http.StatusOK)
}

// AddCommand обрабатывает POST /commands
func (h *RegistryHandler) AddCommand(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	department, ok := h.department(w, r)
	if !ok {
		return
	}

	var req api.AddCommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := validation.ValidateRequired("command", req.Command); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	command, err := h.storage.AddCommand(ctx, department, req.Command, req.Description)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to add command",
			slog.String("department", department), slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "command added",
		slog.String("department", department),
		slog.Int64("id", command.ID))

	sendJSON(h.logger, w, api.CommandResponse{
		Success: true,
		Command: toAPICommand(*command),
	}, http.StatusCreated)
}

// RemoveCommand обрабатывает DELETE /commands
func (h *RegistryHandler) RemoveCommand(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	department, ok := h.department(w, r)
	if !ok {
		return
	}

	var req api.RemoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.storage.RemoveCommand(ctx, department, req.ID); err != nil {
		if errors.Is(err, storage.ErrCommandNotFound) {
			sendError(h.logger, w, "command not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to remove command",
			slog.String("department", department), slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "command removed",
		slog.String("department", department),
		slog.Int64("id", req.ID))

	sendJSON(h.logger, w, api.StatusResponse{Success: true}, http.StatusOK)
}

// TouchCommand обрабатывает POST /commands/touch
// Отмечает использование команды: last_used становится сегодняшней датой
func (h *RegistryHandler) TouchCommand(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	department, ok := h.department(w, r)
	if !ok {
		return
	}

	var req api.TouchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	command, err := h.storage.TouchCommand(ctx, department, req.ID)
	if err != nil {
		if errors.Is(err, storage.ErrCommandNotFound) {
			sendError(h.logger, w, "command not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to touch command",
			slog.String("department", department), slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, api.CommandResponse{
		Success: true,
		Command: toAPICommand(*command),
	}, http.StatusOK)
}

// UpdateCommand обрабатывает PUT /commands/update
// Меняет только присланные поля; id изменить нельзя
func (h *RegistryHandler) UpdateCommand(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	department, ok := h.department(w, r)
	if !ok {
		return
	}

	var req api.UpdateCommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Command == nil && req.Description == nil {
		sendError(h.logger, w, "nothing to update", http.StatusBadRequest)
		return
	}
	if req.Command != nil && strings.TrimSpace(*req.Command) == "" {
		sendError(h.logger, w, "command cannot be empty", http.StatusBadRequest)
		return
	}

	if err := h.storage.UpdateCommand(ctx, department, req.ID, req.Command, req.Description); err != nil {
		if errors.Is(err, storage.ErrCommandNotFound) {
			sendError(h.logger, w, "command not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to update command",
			slog.String("department", department), slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "command updated",
		slog.String("department", department),
		slog.Int64("id", req.ID))

	sendJSON(h.logger, w, api.StatusResponse{Success: true}, http.StatusOK)
}

// ImportCommands обрабатывает POST /commands/import
// Частичный успех: записи без текста команды пропускаются без ошибки
func (h *RegistryHandler) ImportCommands(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	department, ok := h.department(w, r)
	if !ok {
		return
	}

	var req api.ImportCommandsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	entries := make([]storage.CommandImport, 0, len(req.Commands))
	for _, c := range req.Commands {
		entries = append(entries, storage.CommandImport{
			Command:     c.Command,
			Description: c.Description,
		})
	}

	imported, err := h.storage.ImportCommands(ctx, department, entries)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to import commands",
			slog.String("department", department), slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "commands imported",
		slog.String("department", department),
		slog.Int("imported", imported),
		slog.Int("received", len(req.Commands)))

	sendJSON(h.logger, w, api.ImportResponse{
		Success:  true,
		Imported: imported,
	}, http.StatusOK)
}
