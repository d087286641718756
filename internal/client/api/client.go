package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/iudanet/cmdbase/pkg/api"
)

// Client представляет HTTP клиент для взаимодействия с сервером
// Токен сессии передается в заголовке Authorization: Bearer
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient создает новый API клиент
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовок Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// SetToken устанавливает токен сессии для последующих запросов
func (c *Client) SetToken(token string) {
	c.token = token
}

// Signup регистрирует нового пользователя
func (c *Client) Signup(ctx context.Context, req api.SignupRequest) (*api.AuthResponse, error) {
	var resp api.AuthResponse
	if err := c.doRequest(ctx, http.MethodPost, "/signup", req, &resp); err != nil {
		return nil, fmt.Errorf("signup request failed: %w", err)
	}
	return &resp, nil
}

// Login выполняет аутентификацию пользователя
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.AuthResponse, error) {
	var resp api.AuthResponse
	if err := c.doRequest(ctx, http.MethodPost, "/login", req, &resp); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

// Logout отзывает текущую сессию на сервере
func (c *Client) Logout(ctx context.Context) error {
	if err := c.doRequest(ctx, http.MethodPost, "/logout", nil, nil); err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	return nil
}

// ListCommands загружает команды отдела
// Непустой term включает серверную фильтрацию; field выбирает поле поиска
func (c *Client) ListCommands(ctx context.Context, term, field string) (*api.CommandsResponse, error) {
	var resp api.CommandsResponse
	if err := c.doRequest(ctx, http.MethodGet, "/commands"+searchQuery(term, field), nil, &resp); err != nil {
		return nil, fmt.Errorf("list commands request failed: %w", err)
	}
	return &resp, nil
}

// AddCommand добавляет команду в реестр отдела
func (c *Client) AddCommand(ctx context.Context, req api.AddCommandRequest) (*api.CommandResponse, error) {
	var resp api.CommandResponse
	if err := c.doRequest(ctx, http.MethodPost, "/commands/add", req, &resp); err != nil {
		return nil, fmt.Errorf("add command request failed: %w", err)
	}
	return &resp, nil
}

// RemoveCommand удаляет команду по id
func (c *Client) RemoveCommand(ctx context.Context, id int64) error {
	req := api.RemoveRequest{ID: id}
	if err := c.doRequest(ctx, http.MethodDelete, "/commands/remove", req, nil); err != nil {
		return fmt.Errorf("remove command request failed: %w", err)
	}
	return nil
}

// TouchCommand отмечает использование команды
func (c *Client) TouchCommand(ctx context.Context, id int64) (*api.CommandResponse, error) {
	var resp api.CommandResponse
	req := api.TouchRequest{ID: id}
	if err := c.doRequest(ctx, http.MethodPost, "/commands/touch", req, &resp); err != nil {
		return nil, fmt.Errorf("touch command request failed: %w", err)
	}
	return &resp, nil
}

// UpdateCommand меняет присланные поля команды
func (c *Client) UpdateCommand(ctx context.Context, req api.UpdateCommandRequest) error {
	if err := c.doRequest(ctx, http.MethodPut, "/commands/update", req, nil); err != nil {
		return fmt.Errorf("update command request failed: %w", err)
	}
	return nil
}

// ImportCommands выполняет массовый импорт команд
func (c *Client) ImportCommands(ctx context.Context, commands []api.Command) (*api.ImportResponse, error) {
	var resp api.ImportResponse
	req := api.ImportCommandsRequest{Commands: commands}
	if err := c.doRequest(ctx, http.MethodPost, "/commands/import", req, &resp); err != nil {
		return nil, fmt.Errorf("import commands request failed: %w", err)
	}
	return &resp, nil
}

// ListDevices загружает устройства отдела
func (c *Client) ListDevices(ctx context.Context, term, field string) (*api.DevicesResponse, error) {
	var resp api.DevicesResponse
	if err := c.doRequest(ctx, http.MethodGet, "/devices"+searchQuery(term, field), nil, &resp); err != nil {
		return nil, fmt.Errorf("list devices request failed: %w", err)
	}
	return &resp, nil
}

// AddDevice добавляет устройство в реестр отдела
func (c *Client) AddDevice(ctx context.Context, req api.AddDeviceRequest) (*api.DeviceResponse, error) {
	var resp api.DeviceResponse
	if err := c.doRequest(ctx, http.MethodPost, "/devices/add", req, &resp); err != nil {
		return nil, fmt.Errorf("add device request failed: %w", err)
	}
	return &resp, nil
}

// RemoveDevice удаляет устройство по id
func (c *Client) RemoveDevice(ctx context.Context, id int64) error {
	req := api.RemoveRequest{ID: id}
	if err := c.doRequest(ctx, http.MethodDelete, "/devices/remove", req, nil); err != nil {
		return fmt.Errorf("remove device request failed: %w", err)
	}
	return nil
}

// UpdateDevice меняет присланные поля устройства
func (c *Client) UpdateDevice(ctx context.Context, req api.UpdateDeviceRequest) error {
	if err := c.doRequest(ctx, http.MethodPut, "/devices/update", req, nil); err != nil {
		return fmt.Errorf("update device request failed: %w", err)
	}
	return nil
}

// ImportDevices выполняет массовый импорт устройств
func (c *Client) ImportDevices(ctx context.Context, devices []api.Device) (*api.ImportResponse, error) {
	var resp api.ImportResponse
	req := api.ImportDevicesRequest{Devices: devices}
	if err := c.doRequest(ctx, http.MethodPost, "/devices/import", req, &resp); err != nil {
		return nil, fmt.Errorf("import devices request failed: %w", err)
	}
	return &resp, nil
}

// GetDepartment возвращает отдел вызывающего с наборами ролей
func (c *Client) GetDepartment(ctx context.Context) (*api.DepartmentResponse, error) {
	var resp api.DepartmentResponse
	if err := c.doRequest(ctx, http.MethodGet, "/departments", nil, &resp); err != nil {
		return nil, fmt.Errorf("get department request failed: %w", err)
	}
	return &resp, nil
}

// searchQuery собирает query string для поиска
func searchQuery(term, field string) string {
	if term == "" {
		return ""
	}
	q := url.Values{}
	q.Set("search", term)
	if field != "" {
		q.Set("field", field)
	}
	return "?" + q.Encode()
}

// doRequest выполняет HTTP запрос
func (c *Client) doRequest(ctx context.Context, method, path string, body, result interface{}) error {
	reqURL := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Message != "" {
			return fmt.Errorf("server error (%d): %s", resp.StatusCode, errResp.Message)
		}
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
