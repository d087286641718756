package handlers

import (
	"github.com/iudanet/cmdbase/internal/models"
	"github.com/iudanet/cmdbase/pkg/api"
)

func toAPICommand(c models.Command) api.Command {
	return api.Command{
		ID:          c.ID,
		Command:     c.Command,
		Description: c.Description,
		LastUsed:    c.LastUsed,
	}
}

func toAPICommands(commands []models.Command) []api.Command {
	out := make([]api.Command, 0, len(commands))
	for _, c := range commands {
		out = append(out, toAPICommand(c))
	}
	return out
}

func toAPIDevice(d models.Device) api.Device {
	return api.Device{
		ID:     d.ID,
		Device: d.Device,
		IP:     d.IP,
	}
}

func toAPIDevices(devices []models.Device) []api.Device {
	out := make([]api.Device, 0, len(devices))
	for _, d := range devices {
		out = append(out, toAPIDevice(d))
	}
	return out
}
