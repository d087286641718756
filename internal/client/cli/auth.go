package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/iudanet/cmdbase/internal/client/storage"
	"github.com/iudanet/cmdbase/internal/validation"
	pkgapi "github.com/iudanet/cmdbase/pkg/api"
)

func (c *Cli) runSignup(ctx context.Context) error {
	c.io.Println("=== Sign up ===")
	c.io.Println()

	username, err := c.io.ReadInput("Username: ")
	if err != nil {
		return fmt.Errorf("failed to read username: %w", err)
	}
	if err := validation.ValidateUsername(username); err != nil {
		return err
	}

	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return err
	}

	confirm, err := c.io.ReadPassword("Confirm password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if password != confirm {
		return errors.New("passwords do not match")
	}

	department, err := c.io.ReadInput("Department (empty for Help Desk): ")
	if err != nil {
		return fmt.Errorf("failed to read department: %w", err)
	}

	resp, err := c.apiClient.Signup(ctx, pkgapi.SignupRequest{
		Username:   username,
		Password:   password,
		Department: department,
	})
	if err != nil {
		return err
	}

	if err := c.saveSession(ctx, resp); err != nil {
		return err
	}

	c.io.Println()
	c.io.Printf("Registered as %s\n", resp.Username)
	return nil
}

func (c *Cli) runLogin(ctx context.Context) error {
	c.io.Println("=== Login ===")
	c.io.Println()

	username, err := c.io.ReadInput("Username: ")
	if err != nil {
		return fmt.Errorf("failed to read username: %w", err)
	}

	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	resp, err := c.apiClient.Login(ctx, pkgapi.LoginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return err
	}

	if err := c.saveSession(ctx, resp); err != nil {
		return err
	}

	c.io.Println()
	c.io.Printf("Logged in as %s (%d commands, %d devices)\n",
		resp.Username, len(resp.Commands), len(resp.Devices))
	return nil
}

// saveSession сохраняет токен и заполняет зеркало данными из ответа
func (c *Cli) saveSession(ctx context.Context, resp *pkgapi.AuthResponse) error {
	auth := &storage.AuthData{
		Username: resp.Username,
		Token:    resp.Token,
	}
	if err := c.storage.SaveAuth(ctx, auth); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	c.apiClient.SetToken(resp.Token)

	// login/signup сразу возвращают реестр отдела
	if err := c.storage.SaveCommands(ctx, fromAPICommands(resp.Commands)); err != nil {
		return fmt.Errorf("failed to cache commands: %w", err)
	}
	if err := c.storage.SaveDevices(ctx, fromAPIDevices(resp.Devices)); err != nil {
		return fmt.Errorf("failed to cache devices: %w", err)
	}

	return nil
}

func (c *Cli) runLogout(ctx context.Context) error {
	if err := c.ensureAuth(ctx); err != nil {
		return err
	}

	// Отзываем сессию на сервере; локальное состояние чистим в любом случае
	if err := c.apiClient.Logout(ctx); err != nil {
		c.io.Printf("Warning: server logout failed: %v\n", err)
	}

	if err := c.storage.DeleteAuth(ctx); err != nil && !errors.Is(err, storage.ErrAuthNotFound) {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if err := c.storage.ClearCache(ctx); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	c.io.Println("Logged out")
	return nil
}

func (c *Cli) runStatus(ctx context.Context) error {
	auth, err := c.storage.GetAuth(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			c.io.Println("Not authenticated")
			return nil
		}
		return fmt.Errorf("failed to get auth data: %w", err)
	}

	c.io.Printf("Logged in as: %s\n", auth.Username)

	commands, err := c.storage.GetCommands(ctx)
	if err == nil {
		c.io.Printf("Cached commands: %d\n", len(commands))
	}
	devices, err := c.storage.GetDevices(ctx)
	if err == nil {
		c.io.Printf("Cached devices: %d\n", len(devices))
	}

	return nil
}

func (c *Cli) runDepartment(ctx context.Context) error {
	if err := c.ensureAuth(ctx); err != nil {
		return err
	}

	resp, err := c.apiClient.GetDepartment(ctx)
	if err != nil {
		return err
	}

	c.io.Printf("Department: %s\n", resp.Name)
	c.io.Printf("Managers:   %v\n", resp.Managers)
	c.io.Printf("Team leads: %v\n", resp.TeamLeads)
	return nil
}
