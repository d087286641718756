package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/iudanet/cmdbase/internal/client/api"
	"github.com/iudanet/cmdbase/internal/client/iocli"
	"github.com/iudanet/cmdbase/internal/client/storage"
	"github.com/iudanet/cmdbase/internal/models"
	pkgapi "github.com/iudanet/cmdbase/pkg/api"
)

// clientStorage объединяет локальную сессию и зеркало реестра
type clientStorage interface {
	storage.AuthStorage
	storage.CacheStorage
}

type Cli struct {
	io        iocli.IO
	apiClient *api.Client
	storage   clientStorage
}

func New(io iocli.IO, apiClient *api.Client, store clientStorage) *Cli {
	return &Cli{
		io:        io,
		apiClient: apiClient,
		storage:   store,
	}
}

// Run выполняет команду верхнего уровня
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "signup":
		return c.runSignup(ctx)
	case "login":
		return c.runLogin(ctx)
	case "logout":
		return c.runLogout(ctx)
	case "status":
		return c.runStatus(ctx)
	case "commands":
		return c.runCommands(ctx, args)
	case "devices":
		return c.runDevices(ctx, args)
	case "department":
		return c.runDepartment(ctx)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

// ensureAuth загружает сохраненную сессию и настраивает API клиент
func (c *Cli) ensureAuth(ctx context.Context) error {
	auth, err := c.storage.GetAuth(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			return fmt.Errorf("not authenticated. Please run 'cmdbase login' first")
		}
		return fmt.Errorf("failed to get auth data: %w", err)
	}

	c.apiClient.SetToken(auth.Token)
	return nil
}

// printCommands выводит таблицу команд
func (c *Cli) printCommands(commands []models.Command) {
	if len(commands) == 0 {
		c.io.Println("No commands found")
		return
	}

	w := tabwriter.NewWriter(c.io, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCOMMAND\tDESCRIPTION\tLAST USED")
	for _, cmd := range commands {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", cmd.ID, cmd.Command, cmd.Description, cmd.LastUsed)
	}
	_ = w.Flush()
}

// printDevices выводит таблицу устройств
func (c *Cli) printDevices(devices []models.Device) {
	if len(devices) == 0 {
		c.io.Println("No devices found")
		return
	}

	w := tabwriter.NewWriter(c.io, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDEVICE\tIP")
	for _, d := range devices {
		fmt.Fprintf(w, "%d\t%s\t%s\n", d.ID, d.Device, d.IP)
	}
	_ = w.Flush()
}

// fromAPICommands переводит wire-формат в локальные модели
func fromAPICommands(commands []pkgapi.Command) []models.Command {
	out := make([]models.Command, 0, len(commands))
	for _, c := range commands {
		out = append(out, models.Command{
			ID:          c.ID,
			Command:     c.Command,
			Description: c.Description,
			LastUsed:    c.LastUsed,
		})
	}
	return out
}

func fromAPIDevices(devices []pkgapi.Device) []models.Device {
	out := make([]models.Device, 0, len(devices))
	for _, d := range devices {
		out = append(out, models.Device{
			ID:     d.ID,
			Device: d.Device,
			IP:     d.IP,
		})
	}
	return out
}

func PrintUsage() {
	fmt.Println("cmdbase client")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  cmdbase [OPTIONS] COMMAND")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version      Show version information")
	fmt.Println("  --server URL   Server URL (default: http://localhost:8080)")
	fmt.Println("  --db PATH      Path to local database (default: cmdbase-client.db)")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  signup                            Register new user")
	fmt.Println("  login                             Login to server")
	fmt.Println("  logout                            Logout and clear local state")
	fmt.Println("  status                            Show authentication and cache status")
	fmt.Println("  department                        Show your department and its roles")
	fmt.Println("  commands list                     Fetch and show department commands")
	fmt.Println("  commands cached                   Show last fetched commands (offline)")
	fmt.Println("  commands search <term> [field]    Search commands (field: command, description, last_used)")
	fmt.Println("  commands add                      Add a command")
	fmt.Println("  commands remove <id>              Remove a command")
	fmt.Println("  commands touch <id>               Mark a command as used today")
	fmt.Println("  commands import <file.json>       Bulk import commands from JSON")
	fmt.Println("  commands export <file.json>       Export commands to JSON")
	fmt.Println("  devices list                      Fetch and show department devices")
	fmt.Println("  devices cached                    Show last fetched devices (offline)")
	fmt.Println("  devices search <term> [field]     Search devices (field: device, ip)")
	fmt.Println("  devices add                       Add a device")
	fmt.Println("  devices remove <id>               Remove a device")
	fmt.Println("  devices import <file.json>        Bulk import devices from JSON")
	fmt.Println("  devices export <file.json>        Export devices to JSON")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  cmdbase signup")
	fmt.Println("  cmdbase commands list")
	fmt.Println("  cmdbase commands search ping")
	fmt.Println("  cmdbase --server https://cmdbase.example.com login")
}
