package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/iudanet/cmdbase/internal/server/handlers"
	"github.com/iudanet/cmdbase/internal/server/storage"
	"github.com/iudanet/cmdbase/pkg/api"
)

// maxTokenBodySize ограничивает чтение тела при поиске токена
const maxTokenBodySize = 1 << 20 // 1 MB

// AuthMiddleware создает middleware для проверки токена сессии
// Токен принимается тремя способами, в порядке приоритета:
//  1. заголовок Authorization: Bearer <token>
//  2. поле "token" в JSON теле запроса
//  3. query-параметр ?token=
//
// Валидный токен должен иметь верную подпись И живую запись сессии на
// сервере: после logout или истечения TTL запрос отклоняется.
// Отдел пользователя кладется в контекст; любое имя отдела из параметров
// запроса для авторизации игнорируется.
func AuthMiddleware(
	logger *slog.Logger,
	cfg handlers.SessionConfig,
	sessions storage.SessionStorage,
	users storage.UserStorage,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			tokenString := extractToken(r)
			if tokenString == "" {
				sendUnauthorized(logger, w, "missing token")
				return
			}

			claims, err := handlers.ValidateSessionToken(cfg, tokenString)
			if err != nil {
				logger.WarnContext(ctx, "invalid token", slog.Any("error", err))
				sendUnauthorized(logger, w, "invalid or expired token")
				return
			}

			// Подписи недостаточно: сессия должна существовать на сервере
			session, err := sessions.GetSession(ctx, claims.ID)
			if err != nil {
				if errors.Is(err, storage.ErrSessionNotFound) {
					logger.WarnContext(ctx, "session revoked or unknown",
						slog.String("session_id", claims.ID))
					sendUnauthorized(logger, w, "invalid or expired token")
					return
				}
				logger.ErrorContext(ctx, "failed to get session", slog.Any("error", err))
				sendUnauthorized(logger, w, "invalid or expired token")
				return
			}
			if time.Now().After(session.ExpiresAt) {
				logger.WarnContext(ctx, "session expired",
					slog.String("session_id", session.ID))
				sendUnauthorized(logger, w, "invalid or expired token")
				return
			}

			user, err := users.GetUserByID(ctx, session.UserID)
			if err != nil {
				logger.ErrorContext(ctx, "failed to get session user",
					slog.String("user_id", session.UserID), slog.Any("error", err))
				sendUnauthorized(logger, w, "invalid or expired token")
				return
			}

			ctx = context.WithValue(ctx, handlers.UserIDKey, user.ID)
			ctx = context.WithValue(ctx, handlers.UsernameKey, user.Username)
			ctx = context.WithValue(ctx, handlers.DepartmentKey, user.Department)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken достает токен из запроса: заголовок, тело, query
func extractToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}

	if token := tokenFromBody(r); token != "" {
		return token
	}

	return r.URL.Query().Get("token")
}

// tokenFromBody читает поле "token" из JSON тела, восстанавливая
// r.Body для последующего чтения handler-ом
func tokenFromBody(r *http.Request) string {
	if r.Body == nil || r.Body == http.NoBody {
		return ""
	}
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxTokenBodySize))
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Token
}

// sendUnauthorized отправляет 401 в общем формате ошибок API
func sendUnauthorized(logger *slog.Logger, w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	resp := api.ErrorResponse{Success: false, Message: message}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error("failed to encode unauthorized response", slog.Any("error", err))
	}
}
