package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/cmdbase/internal/models"
	"github.com/iudanet/cmdbase/internal/server/storage"
	"github.com/iudanet/cmdbase/internal/validation"
	"github.com/iudanet/cmdbase/pkg/api"
)

// AuthHandler обрабатывает запросы авторизации
type AuthHandler struct {
	logger   *slog.Logger
	users    storage.UserStorage
	registry storage.RegistryStorage
	sessions storage.SessionStorage
	cfg      SessionConfig
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(
	logger *slog.Logger,
	users storage.UserStorage,
	registry storage.RegistryStorage,
	sessions storage.SessionStorage,
	cfg SessionConfig,
) *AuthHandler {
	return &AuthHandler{
		logger:   logger,
		users:    users,
		registry: registry,
		sessions: sessions,
		cfg:      cfg,
	}
}

// Signup обрабатывает POST /signup
// Регистрация нового пользователя; отдел по умолчанию - Help Desk
// Несуществующий отдел создается с новым пользователем в обеих ролях
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode signup request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	req.Username = strings.TrimSpace(req.Username)

	// Валидация username и пароля до любых изменений состояния
	if err := validation.ValidateUsername(req.Username); err != nil {
		h.logger.WarnContext(ctx, "invalid username", slog.String("username", req.Username), slog.Any("error", err))
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	department := strings.TrimSpace(req.Department)
	if department == "" {
		department = models.DefaultDepartment
	}
	if err := validation.ValidateDepartment(department); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	// Хешируем пароль (plaintext никогда не сохраняется)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to hash password", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		PasswordHash: string(passwordHash),
		Department:   department,
		CreatedAt:    time.Now(),
	}

	// Несуществующий отдел создается с новым пользователем как первым
	// менеджером и тимлидом (оба набора ролей обязаны быть непустыми).
	// Пользователь и отдел пишутся атомарно: сбой на любом шаге
	// оставляет состояние сервера нетронутым
	dept := &models.Department{
		Name:      department,
		Managers:  []string{user.Username},
		TeamLeads: []string{user.Username},
	}
	if err := h.users.CreateUserWithDepartment(ctx, user, dept); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			h.logger.WarnContext(ctx, "user already exists", slog.String("username", req.Username))
			sendError(h.logger, w, "username already taken", http.StatusConflict)
			return
		}
		h.logger.ErrorContext(ctx, "failed to create user", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	token, err := h.issueSession(ctx, user)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue session", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "user registered successfully",
		slog.String("username", user.Username),
		slog.String("user_id", user.ID),
		slog.String("department", department))

	h.sendAuthResponse(ctx, w, user, token, http.StatusCreated)
}

// Login обрабатывает POST /login
// Аутентификация пользователя; в ответе сразу данные его отдела
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode login request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		sendError(h.logger, w, "username and password required", http.StatusBadRequest)
		return
	}

	user, err := h.users.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			// Неизвестный пользователь и неверный пароль дают одинаковый
			// ответ: не раскрываем, какие usernames существуют
			h.logger.WarnContext(ctx, "login failed: user not found", slog.String("username", req.Username))
			sendError(h.logger, w, "invalid username or password", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		h.logger.WarnContext(ctx, "login failed: invalid password", slog.String("username", req.Username))
		sendError(h.logger, w, "invalid username or password", http.StatusUnauthorized)
		return
	}

	token, err := h.issueSession(ctx, user)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue session", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "user logged in successfully",
		slog.String("username", user.Username),
		slog.String("user_id", user.ID))

	h.sendAuthResponse(ctx, w, user, token, http.StatusOK)
}

// Logout обрабатывает POST /logout (за auth middleware)
// Удаляет все серверные сессии пользователя: ни один ранее выданный
// токен больше не принимается
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		h.logger.Error("user id not found in context")
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	deleted, err := h.sessions.DeleteUserSessions(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to delete sessions", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "user logged out",
		slog.String("user_id", userID),
		slog.Int("sessions_revoked", deleted))

	w.WriteHeader(http.StatusNoContent)
}

// issueSession создает запись сессии и подписанный токен для нее
func (h *AuthHandler) issueSession(ctx context.Context, user *models.User) (string, error) {
	sessionID := uuid.New().String()

	token, expiresAt, err := GenerateSessionToken(h.cfg, sessionID, user.ID, user.Username)
	if err != nil {
		return "", err
	}

	session := &models.Session{
		ID:        sessionID,
		UserID:    user.ID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	if err := h.sessions.SaveSession(ctx, session); err != nil {
		return "", err
	}

	return token, nil
}

// sendAuthResponse отправляет ответ login/signup с данными отдела
func (h *AuthHandler) sendAuthResponse(ctx context.Context, w http.ResponseWriter, user *models.User, token string, statusCode int) {
	commands, err := h.registry.ListCommands(ctx, user.Department)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list commands", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	devices, err := h.registry.ListDevices(ctx, user.Department)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list devices", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := api.AuthResponse{
		Success:  true,
		Username: user.Username,
		Token:    token,
		Commands: toAPICommands(commands),
		Devices:  toAPIDevices(devices),
	}

	sendJSON(h.logger, w, resp, statusCode)
}
