package models

import "time"

// DefaultDepartment отдел по умолчанию при регистрации без указания отдела
const DefaultDepartment = "Help Desk"

// User представляет пользователя в системе
type User struct {
	ID           string    `json:"id"`            // UUID пользователя
	Username     string    `json:"username"`      // уникальный username (case-sensitive)
	PasswordHash string    `json:"password_hash"` // bcrypt хеш пароля
	Department   string    `json:"department"`    // имя отдела пользователя
	CreatedAt    time.Time `json:"created_at"`    // время создания
}

// Department представляет отдел: границу данных для команд и устройств
// Менеджеры и тимлиды хранятся как множества (дубликаты невозможны)
type Department struct {
	Name          string   `json:"name"`       // уникальное имя отдела
	Managers      []string `json:"managers"`   // usernames менеджеров
	TeamLeads     []string `json:"team_leads"` // usernames тимлидов
	NextCommandID int64    `json:"-"`          // монотонный счетчик id команд
	NextDeviceID  int64    `json:"-"`          // монотонный счетчик id устройств
}

// Command представляет сохраненную shell-команду отдела
// ID уникален внутри отдела и никогда не переиспользуется после удаления
type Command struct {
	ID          int64  `json:"id"`
	Command     string `json:"command"`     // текст команды
	Description string `json:"description"` // описание
	LastUsed    string `json:"last_used"`   // дата последнего использования, YYYY-MM-DD
}

// Device представляет сетевое устройство отдела
type Device struct {
	ID     int64  `json:"id"`
	Device string `json:"device"` // имя/метка устройства
	IP     string `json:"ip"`     // ip адрес
}

// Session представляет выданную сессию пользователя
// Токен подписан (JWT), но сессия дополнительно хранится на сервере,
// что позволяет отзывать ее при logout
type Session struct {
	ID        string    `json:"id"`         // UUID сессии (jti в токене)
	UserID    string    `json:"user_id"`    // ID пользователя
	ExpiresAt time.Time `json:"expires_at"` // время истечения
	CreatedAt time.Time `json:"created_at"` // время создания
}
