// Package registry содержит общую для сервера и клиента логику
// фильтрации коллекций команд и устройств.
package registry

import (
	"fmt"
	"strings"

	"github.com/iudanet/cmdbase/internal/models"
)

// Поля, по которым допустима фильтрация
const (
	FieldCommand     = "command"
	FieldDescription = "description"
	FieldLastUsed    = "last_used"
	FieldDevice      = "device"
	FieldIP          = "ip"
)

// FilterCommands возвращает команды, у которых выбранное поле содержит term
// (без учета регистра). Пустой term возвращает вход без изменений,
// порядок всегда сохраняется. Пустое поле означает FieldCommand.
func FilterCommands(commands []models.Command, field, term string) ([]models.Command, error) {
	if field == "" {
		field = FieldCommand
	}

	if field != FieldCommand && field != FieldDescription && field != FieldLastUsed {
		return nil, fmt.Errorf("unknown command filter field: %q", field)
	}

	if term == "" {
		return commands, nil
	}

	needle := strings.ToLower(term)
	filtered := make([]models.Command, 0, len(commands))

	for _, c := range commands {
		var value string
		switch field {
		case FieldCommand:
			value = c.Command
		case FieldDescription:
			value = c.Description
		case FieldLastUsed:
			value = c.LastUsed
		}

		if strings.Contains(strings.ToLower(value), needle) {
			filtered = append(filtered, c)
		}
	}

	return filtered, nil
}

// FilterDevices возвращает устройства, у которых выбранное поле содержит term
// (без учета регистра). Пустое поле означает FieldDevice.
func FilterDevices(devices []models.Device, field, term string) ([]models.Device, error) {
	if field == "" {
		field = FieldDevice
	}

	if field != FieldDevice && field != FieldIP {
		return nil, fmt.Errorf("unknown device filter field: %q", field)
	}

	if term == "" {
		return devices, nil
	}

	needle := strings.ToLower(term)
	filtered := make([]models.Device, 0, len(devices))

	for _, d := range devices {
		value := d.Device
		if field == FieldIP {
			value = d.IP
		}

		if strings.Contains(strings.ToLower(value), needle) {
			filtered = append(filtered, d)
		}
	}

	return filtered, nil
}
