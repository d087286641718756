package handlers

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims представляет JWT claims токена сессии
// ID сессии лежит в RegisteredClaims.ID (jti) и указывает на серверную запись
type SessionClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// SessionConfig содержит конфигурацию выдачи токенов
type SessionConfig struct {
	Secret     []byte
	SessionTTL time.Duration
}

// GenerateSessionToken создает подписанный токен сессии
// Токен непрозрачен для клиента; сервер дополнительно хранит запись сессии
// с тем же sessionID, что позволяет отзывать токен при logout
func GenerateSessionToken(cfg SessionConfig, sessionID, userID, username string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(cfg.SessionTTL)

	claims := SessionClaims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "cmdbase",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(cfg.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateSessionToken валидирует и парсит токен сессии
// Проверка существования сессии на сервере выполняется отдельно (middleware)
func ValidateSessionToken(cfg SessionConfig, tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Проверяем что используется правильный алгоритм подписи
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return cfg.Secret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
