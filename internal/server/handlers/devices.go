package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/cmdbase/internal/registry"
	"github.com/iudanet/cmdbase/internal/server/storage"
	"github.com/iudanet/cmdbase/internal/validation"
	"github.com/iudanet/cmdbase/pkg/api"
)

// ListDevices обрабатывает GET /devices
// Параметры ?search= и ?field= включают фильтрацию по подстроке
func (h *RegistryHandler) ListDevices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	department, ok := h.department(w, r)
	if !ok {
		return
	}

	devices, err := h.storage.ListDevices(ctx, department)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list devices",
			slog.String("department", department), slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	if term := r.URL.Query().Get("search"); term != "" {
		devices, err = registry.FilterDevices(devices, r.URL.Query().Get("field"), term)
		if err != nil {
			sendError(h.logger, w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	sendJSON(h.logger, w, api.DevicesResponse{
		Success: true,
		Devices: toAPIDevices(devices),
	}, http.StatusOK)
}

// AddDevice обрабатывает POST /devices
func (h *RegistryHandler) AddDevice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	department, ok := h.department(w, r)
	if !ok {
		return
	}

	var req api.AddDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := validation.ValidateRequired("device", req.Device); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateRequired("ip", req.IP); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	device, err := h.storage.AddDevice(ctx, department, req.Device, req.IP)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to add device",
			slog.String("department", department), slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "device added",
		slog.String("department", department),
		slog.Int64("id", device.ID))

	sendJSON(h.logger, w, api.DeviceResponse{
		Success: true,
		Device:  toAPIDevice(*device),
	}, http.StatusCreated)
}

// RemoveDevice обрабатывает DELETE /devices
func (h *RegistryHandler) RemoveDevice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	department, ok := h.department(w, r)
	if !ok {
		return
	}

	var req api.RemoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.storage.RemoveDevice(ctx, department, req.ID); err != nil {
		if errors.Is(err, storage.ErrDeviceNotFound) {
			sendError(h.logger, w, "device not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to remove device",
			slog.String("department", department), slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "device removed",
		slog.String("department", department),
		slog.Int64("id", req.ID))

	sendJSON(h.logger, w, api.StatusResponse{Success: true}, http.StatusOK)
}

// UpdateDevice обрабатывает PUT /devices/update
// Меняет только присланные поля; id изменить нельзя
func (h *RegistryHandler) UpdateDevice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	department, ok := h.department(w, r)
	if !ok {
		return
	}

	var req api.UpdateDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Device == nil && req.IP == nil {
		sendError(h.logger, w, "nothing to update", http.StatusBadRequest)
		return
	}
	if req.Device != nil && strings.TrimSpace(*req.Device) == "" {
		sendError(h.logger, w, "device cannot be empty", http.StatusBadRequest)
		return
	}
	if req.IP != nil && strings.TrimSpace(*req.IP) == "" {
		sendError(h.logger, w, "ip cannot be empty", http.StatusBadRequest)
		return
	}

	if err := h.storage.UpdateDevice(ctx, department, req.ID, req.Device, req.IP); err != nil {
		if errors.Is(err, storage.ErrDeviceNotFound) {
			sendError(h.logger, w, "device not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to update device",
			slog.String("department", department), slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "device updated",
		slog.String("department", department),
		slog.Int64("id", req.ID))

	sendJSON(h.logger, w, api.StatusResponse{Success: true}, http.StatusOK)
}

// ImportDevices обрабатывает POST /devices/import
// Частичный успех: записи без имени или ip пропускаются без ошибки
func (h *RegistryHandler) ImportDevices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	department, ok := h.department(w, r)
	if !ok {
		return
	}

	var req api.ImportDevicesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	entries := make([]storage.DeviceImport, 0, len(req.Devices))
	for _, d := range req.Devices {
		entries = append(entries, storage.DeviceImport{
			Device: d.Device,
			IP:     d.IP,
		})
	}

	imported, err := h.storage.ImportDevices(ctx, department, entries)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to import devices",
			slog.String("department", department), slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "devices imported",
		slog.String("department", department),
		slog.Int("imported", imported),
		slog.Int("received", len(req.Devices)))

	sendJSON(h.logger, w, api.ImportResponse{
		Success:  true,
		Imported: imported,
	}, http.StatusOK)
}
