package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	pkgapi "github.com/iudanet/cmdbase/pkg/api"
)

func (c *Cli) runCommands(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing subcommand. Usage: cmdbase commands <list|cached|search|add|remove|touch|import|export>")
	}

	switch args[0] {
	case "list":
		return c.listCommands(ctx, "", "")
	case "cached":
		return c.cachedCommands(ctx)
	case "search":
		if len(args) < 2 {
			return fmt.Errorf("missing search term. Usage: cmdbase commands search <term> [field]")
		}
		field := ""
		if len(args) > 2 {
			field = args[2]
		}
		return c.listCommands(ctx, args[1], field)
	case "add":
		return c.addCommand(ctx)
	case "remove":
		if len(args) < 2 {
			return fmt.Errorf("missing id. Usage: cmdbase commands remove <id>")
		}
		return c.removeCommand(ctx, args[1])
	case "touch":
		if len(args) < 2 {
			return fmt.Errorf("missing id. Usage: cmdbase commands touch <id>")
		}
		return c.touchCommand(ctx, args[1])
	case "import":
		if len(args) < 2 {
			return fmt.Errorf("missing file. Usage: cmdbase commands import <file.json>")
		}
		return c.importCommands(ctx, args[1])
	case "export":
		if len(args) < 2 {
			return fmt.Errorf("missing file. Usage: cmdbase commands export <file.json>")
		}
		return c.exportCommands(ctx, args[1])
	default:
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}
}

// listCommands загружает команды с сервера и обновляет зеркало
// Зеркало обновляется только при успешном ответе
func (c *Cli) listCommands(ctx context.Context, term, field string) error {
	if err := c.ensureAuth(ctx); err != nil {
		return err
	}

	resp, err := c.apiClient.ListCommands(ctx, term, field)
	if err != nil {
		return err
	}

	commands := fromAPICommands(resp.Commands)

	// Поиск не трогает зеркало: оно хранит полный список
	if term == "" {
		if err := c.storage.SaveCommands(ctx, commands); err != nil {
			return fmt.Errorf("failed to cache commands: %w", err)
		}
	}

	c.printCommands(commands)
	return nil
}

// cachedCommands показывает зеркало без обращения к серверу
func (c *Cli) cachedCommands(ctx context.Context) error {
	commands, err := c.storage.GetCommands(ctx)
	if err != nil {
		return fmt.Errorf("no cached commands, run 'cmdbase commands list' first: %w", err)
	}
	c.printCommands(commands)
	return nil
}

func (c *Cli) addCommand(ctx context.Context) error {
	if err := c.ensureAuth(ctx); err != nil {
		return err
	}

	command, err := c.io.ReadInput("Command: ")
	if err != nil {
		return fmt.Errorf("failed to read command: %w", err)
	}
	if command == "" {
		return fmt.Errorf("command cannot be empty")
	}

	description, err := c.io.ReadInput("Description: ")
	if err != nil {
		return fmt.Errorf("failed to read description: %w", err)
	}

	resp, err := c.apiClient.AddCommand(ctx, pkgapi.AddCommandRequest{
		Command:     command,
		Description: description,
	})
	if err != nil {
		return err
	}

	c.io.Printf("Added command %d\n", resp.Command.ID)
	return nil
}

func (c *Cli) removeCommand(ctx context.Context, rawID string) error {
	if err := c.ensureAuth(ctx); err != nil {
		return err
	}

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", rawID)
	}

	if err := c.apiClient.RemoveCommand(ctx, id); err != nil {
		return err
	}

	c.io.Printf("Removed command %d\n", id)
	return nil
}

func (c *Cli) touchCommand(ctx context.Context, rawID string) error {
	if err := c.ensureAuth(ctx); err != nil {
		return err
	}

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", rawID)
	}

	resp, err := c.apiClient.TouchCommand(ctx, id)
	if err != nil {
		return err
	}

	c.io.Printf("Command %d last used %s\n", resp.Command.ID, resp.Command.LastUsed)
	return nil
}

func (c *Cli) importCommands(ctx context.Context, path string) error {
	if err := c.ensureAuth(ctx); err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var commands []pkgapi.Command
	if err := json.Unmarshal(data, &commands); err != nil {
		return fmt.Errorf("failed to parse file: %w", err)
	}

	resp, err := c.apiClient.ImportCommands(ctx, commands)
	if err != nil {
		return err
	}

	c.io.Printf("Imported %d of %d commands\n", resp.Imported, len(commands))
	return nil
}

// exportCommands выгружает актуальный список с сервера в JSON файл
func (c *Cli) exportCommands(ctx context.Context, path string) error {
	if err := c.ensureAuth(ctx); err != nil {
		return err
	}

	resp, err := c.apiClient.ListCommands(ctx, "", "")
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(resp.Commands, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal commands: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	c.io.Printf("Exported %d commands to %s\n", len(resp.Commands), path)
	return nil
}
