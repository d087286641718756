package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	pkgapi "github.com/iudanet/cmdbase/pkg/api"
)

func (c *Cli) runDevices(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing subcommand. Usage: cmdbase devices <list|cached|search|add|remove|import|export>")
	}

	switch args[0] {
	case "list":
		return c.listDevices(ctx, "", "")
	case "cached":
		return c.cachedDevices(ctx)
	case "search":
		if len(args) < 2 {
			return fmt.Errorf("missing search term. Usage: cmdbase devices search <term> [field]")
		}
		field := ""
		if len(args) > 2 {
			field = args[2]
		}
		return c.listDevices(ctx, args[1], field)
	case "add":
		return c.addDevice(ctx)
	case "remove":
		if len(args) < 2 {
			return fmt.Errorf("missing id. Usage: cmdbase devices remove <id>")
		}
		return c.removeDevice(ctx, args[1])
	case "import":
		if len(args) < 2 {
			return fmt.Errorf("missing file. Usage: cmdbase devices import <file.json>")
		}
		return c.importDevices(ctx, args[1])
	case "export":
		if len(args) < 2 {
			return fmt.Errorf("missing file. Usage: cmdbase devices export <file.json>")
		}
		return c.exportDevices(ctx, args[1])
	default:
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}
}

func (c *Cli) listDevices(ctx context.Context, term, field string) error {
	if err := c.ensureAuth(ctx); err != nil {
		return err
	}

	resp, err := c.apiClient.ListDevices(ctx, term, field)
	if err != nil {
		return err
	}

	devices := fromAPIDevices(resp.Devices)

	if term == "" {
		if err := c.storage.SaveDevices(ctx, devices); err != nil {
			return fmt.Errorf("failed to cache devices: %w", err)
		}
	}

	c.printDevices(devices)
	return nil
}

func (c *Cli) cachedDevices(ctx context.Context) error {
	devices, err := c.storage.GetDevices(ctx)
	if err != nil {
		return fmt.Errorf("no cached devices, run 'cmdbase devices list' first: %w", err)
	}
	c.printDevices(devices)
	return nil
}

func (c *Cli) addDevice(ctx context.Context) error {
	if err := c.ensureAuth(ctx); err != nil {
		return err
	}

	device, err := c.io.ReadInput("Device: ")
	if err != nil {
		return fmt.Errorf("failed to read device: %w", err)
	}
	if device == "" {
		return fmt.Errorf("device cannot be empty")
	}

	ip, err := c.io.ReadInput("IP: ")
	if err != nil {
		return fmt.Errorf("failed to read ip: %w", err)
	}
	if ip == "" {
		return fmt.Errorf("ip cannot be empty")
	}

	resp, err := c.apiClient.AddDevice(ctx, pkgapi.AddDeviceRequest{
		Device: device,
		IP:     ip,
	})
	if err != nil {
		return err
	}

	c.io.Printf("Added device %d\n", resp.Device.ID)
	return nil
}

func (c *Cli) removeDevice(ctx context.Context, rawID string) error {
	if err := c.ensureAuth(ctx); err != nil {
		return err
	}

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", rawID)
	}

	if err := c.apiClient.RemoveDevice(ctx, id); err != nil {
		return err
	}

	c.io.Printf("Removed device %d\n", id)
	return nil
}

func (c *Cli) importDevices(ctx context.Context, path string) error {
	if err := c.ensureAuth(ctx); err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var devices []pkgapi.Device
	if err := json.Unmarshal(data, &devices); err != nil {
		return fmt.Errorf("failed to parse file: %w", err)
	}

	resp, err := c.apiClient.ImportDevices(ctx, devices)
	if err != nil {
		return err
	}

	c.io.Printf("Imported %d of %d devices\n", resp.Imported, len(devices))
	return nil
}

func (c *Cli) exportDevices(ctx context.Context, path string) error {
	if err := c.ensureAuth(ctx); err != nil {
		return err
	}

	resp, err := c.apiClient.ListDevices(ctx, "", "")
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(resp.Devices, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal devices: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	c.io.Printf("Exported %d devices to %s\n", len(resp.Devices), path)
	return nil
}
