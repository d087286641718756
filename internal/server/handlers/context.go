package handlers

import "context"

// contextKey тип для ключей контекста
type contextKey string

const (
	// UserIDKey ключ для хранения user_id в контексте
	UserIDKey contextKey = "user_id"
	// UsernameKey ключ для хранения username в контексте
	UsernameKey contextKey = "username"
	// DepartmentKey ключ для хранения отдела пользователя в контексте
	DepartmentKey contextKey = "department"
)

// GetUserID извлекает user_id из контекста запроса
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}

// GetUsername извлекает username из контекста запроса
func GetUsername(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameKey).(string)
	return username, ok
}

// GetDepartment извлекает отдел вызывающего из контекста запроса
// Это единственный источник отдела для registry-операций: любое имя отдела,
// присланное клиентом в параметрах, для авторизации игнорируется
func GetDepartment(ctx context.Context) (string, bool) {
	department, ok := ctx.Value(DepartmentKey).(string)
	return department, ok
}
