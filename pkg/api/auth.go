package api

// SignupRequest представляет запрос на регистрацию нового пользователя
type SignupRequest struct {
	Username   string `json:"username"`             // username пользователя
	Password   string `json:"password"`             // пароль (plaintext, хешируется на сервере)
	Department string `json:"department,omitempty"` // отдел; пустое значение = отдел по умолчанию
}

// LoginRequest представляет запрос на аутентификацию
type LoginRequest struct {
	Username string `json:"username"` // username пользователя
	Password string `json:"password"` // пароль
}

// AuthResponse представляет ответ на успешный login/signup
// Вместе с токеном сразу возвращаются данные отдела пользователя
type AuthResponse struct {
	Username string    `json:"username,omitempty"`
	Token    string    `json:"token,omitempty"`   // bearer токен сессии
	Message  string    `json:"message,omitempty"` // сообщение об ошибке/успехе
	Commands []Command `json:"commands"`          // команды отдела
	Devices  []Device  `json:"devices"`           // устройства отдела
	Success  bool      `json:"success"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Message string `json:"message,omitempty"` // описание ошибки
	Success bool   `json:"success"`           // всегда false
}
