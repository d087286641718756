package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/iudanet/cmdbase/internal/models"
	"github.com/iudanet/cmdbase/internal/server/storage"
	"github.com/iudanet/cmdbase/internal/validation"
	"github.com/iudanet/cmdbase/pkg/api"
)

// DepartmentHandler обрабатывает запросы администрирования отделов
type DepartmentHandler struct {
	logger  *slog.Logger
	storage storage.DepartmentStorage
}

// NewDepartmentHandler создает новый handler для отделов
func NewDepartmentHandler(logger *slog.Logger, s storage.DepartmentStorage) *DepartmentHandler {
	return &DepartmentHandler{
		logger:  logger,
		storage: s,
	}
}

// Get обрабатывает GET /departments
// Возвращает отдел вызывающего с наборами ролей
func (h *DepartmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	department, ok := GetDepartment(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	dept, err := h.storage.GetDepartment(ctx, department)
	if err != nil {
		if errors.Is(err, storage.ErrDepartmentNotFound) {
			sendError(h.logger, w, "department not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get department",
			slog.String("department", department), slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, api.DepartmentResponse{
		Success:   true,
		Name:      dept.Name,
		Managers:  dept.Managers,
		TeamLeads: dept.TeamLeads,
	}, http.StatusOK)
}

// Create обрабатывает POST /departments/create
// Оба набора ролей обязаны быть непустыми
func (h *DepartmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CreateDepartmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if err := validation.ValidateDepartment(req.Name); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Managers) == 0 || len(req.TeamLeads) == 0 {
		sendError(h.logger, w, "at least one manager and one team lead required", http.StatusBadRequest)
		return
	}

	dept := &models.Department{
		Name:      req.Name,
		Managers:  req.Managers,
		TeamLeads: req.TeamLeads,
	}
	if err := h.storage.CreateDepartment(ctx, dept); err != nil {
		if errors.Is(err, storage.ErrDepartmentExists) {
			sendError(h.logger, w, "department already exists", http.StatusConflict)
			return
		}
		h.logger.ErrorContext(ctx, "failed to create department",
			slog.String("name", req.Name), slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "department created", slog.String("name", req.Name))

	sendJSON(h.logger, w, api.StatusResponse{Success: true}, http.StatusCreated)
}

// AddManager обрабатывает POST /departments/managers/add
// Доступно только менеджерам отдела вызывающего
func (h *DepartmentHandler) AddManager(w http.ResponseWriter, r *http.Request) {
	h.addRole(w, r, "manager", h.storage.AddManager)
}

// AddTeamLead обрабатывает POST /departments/teamleads/add
// Доступно только менеджерам отдела вызывающего
func (h *DepartmentHandler) AddTeamLead(w http.ResponseWriter, r *http.Request) {
	h.addRole(w, r, "team lead", h.storage.AddTeamLead)
}

func (h *DepartmentHandler) addRole(
	w http.ResponseWriter,
	r *http.Request,
	role string,
	add func(ctx context.Context, department, username string) error,
) {
	ctx := r.Context()

	department, ok := GetDepartment(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}
	caller, ok := GetUsername(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.RoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		sendError(h.logger, w, "username is required", http.StatusBadRequest)
		return
	}

	dept, err := h.storage.GetDepartment(ctx, department)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get department",
			slog.String("department", department), slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	// Роли назначают только менеджеры своего отдела
	if !slices.Contains(dept.Managers, caller) {
		h.logger.WarnContext(ctx, "role change denied: caller is not a manager",
			slog.String("department", department),
			slog.String("caller", caller))
		sendError(h.logger, w, "forbidden", http.StatusForbidden)
		return
	}

	if err := add(ctx, department, req.Username); err != nil {
		h.logger.ErrorContext(ctx, "failed to add role",
			slog.String("department", department),
			slog.String("role", role), slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "role granted",
		slog.String("department", department),
		slog.String("role", role),
		slog.String("username", req.Username),
		slog.String("granted_by", caller))

	sendJSON(h.logger, w, api.StatusResponse{Success: true}, http.StatusOK)
}
