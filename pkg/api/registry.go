package api

// Command представляет команду в wire-формате
type Command struct {
	Command     string `json:"command"`
	Description string `json:"description"`
	LastUsed    string `json:"last_used"` // YYYY-MM-DD
	ID          int64  `json:"id"`
}

// Device представляет устройство в wire-формате
type Device struct {
	Device string `json:"device"`
	IP     string `json:"ip"`
	ID     int64  `json:"id"`
}

// CommandsResponse представляет список команд отдела
type CommandsResponse struct {
	Commands []Command `json:"commands"`
	Success  bool      `json:"success"`
}

// DevicesResponse представляет список устройств отдела
type DevicesResponse struct {
	Devices []Device `json:"devices"`
	Success bool     `json:"success"`
}

// AddCommandRequest запрос на добавление команды
// Token может прийти в теле запроса (см. middleware.Auth)
type AddCommandRequest struct {
	Token       string `json:"token,omitempty"`
	Command     string `json:"command"`
	Description string `json:"description"`
}

// UpdateCommandRequest запрос на изменение полей команды по id
type UpdateCommandRequest struct {
	Token       string  `json:"token,omitempty"`
	Command     *string `json:"command,omitempty"`
	Description *string `json:"description,omitempty"`
	ID          int64   `json:"id"`
}

// CommandResponse ответ с одной командой (add, touch)
type CommandResponse struct {
	Command Command `json:"command"`
	Message string  `json:"message,omitempty"`
	Success bool    `json:"success"`
}

// RemoveRequest запрос на удаление записи по id (команды или устройства)
type RemoveRequest struct {
	Token string `json:"token,omitempty"`
	ID    int64  `json:"id"`
}

// TouchRequest запрос на отметку использования команды
type TouchRequest struct {
	Token string `json:"token,omitempty"`
	ID    int64  `json:"id"`
}

// ImportCommandsRequest запрос на массовый импорт команд
type ImportCommandsRequest struct {
	Token    string    `json:"token,omitempty"`
	Commands []Command `json:"commands"`
}

// AddDeviceRequest запрос на добавление устройства
type AddDeviceRequest struct {
	Token  string `json:"token,omitempty"`
	Device string `json:"device"`
	IP     string `json:"ip"`
}

// UpdateDeviceRequest запрос на изменение полей устройства по id
type UpdateDeviceRequest struct {
	Token  string  `json:"token,omitempty"`
	Device *string `json:"device,omitempty"`
	IP     *string `json:"ip,omitempty"`
	ID     int64   `json:"id"`
}

// DeviceResponse ответ с одним устройством
type DeviceResponse struct {
	Device  Device `json:"device"`
	Message string `json:"message,omitempty"`
	Success bool   `json:"success"`
}

// ImportDevicesRequest запрос на массовый импорт устройств
type ImportDevicesRequest struct {
	Token   string   `json:"token,omitempty"`
	Devices []Device `json:"devices"`
}

// ImportResponse ответ на импорт: количество принятых записей
// Записи без обязательных полей молча пропускаются
type ImportResponse struct {
	Message  string `json:"message,omitempty"`
	Imported int    `json:"imported"`
	Success  bool   `json:"success"`
}

// StatusResponse универсальный ответ об успехе операции
type StatusResponse struct {
	Message string `json:"message,omitempty"`
	Success bool   `json:"success"`
}

// CreateDepartmentRequest запрос на создание отдела
// Оба набора ролей обязаны быть непустыми
type CreateDepartmentRequest struct {
	Token     string   `json:"token,omitempty"`
	Name      string   `json:"name"`
	Managers  []string `json:"managers"`
	TeamLeads []string `json:"team_leads"`
}

// RoleRequest запрос на назначение роли в отделе вызывающего
type RoleRequest struct {
	Token    string `json:"token,omitempty"`
	Username string `json:"username"`
}

// DepartmentResponse представляет отдел вызывающего
type DepartmentResponse struct {
	Name      string   `json:"name"`
	Managers  []string `json:"managers"`
	TeamLeads []string `json:"team_leads"`
	Success   bool     `json:"success"`
}
