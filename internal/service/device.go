package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ameyamatmk/voice-diary/internal/logger"
	"github.com/ameyamatmk/voice-diary/internal/model"
)

// DeviceRegistry manages the credentials of the signed-in identity. The last
// remaining credential is never deleted.
type DeviceRegistry struct {
	store  model.DeviceStore
	logger *logger.Logger
}

func NewDeviceRegistry(store model.DeviceStore, logger *logger.Logger) *DeviceRegistry {
	return &DeviceRegistry{
		store:  store,
		logger: logger,
	}
}

func (r *DeviceRegistry) List(ctx context.Context) ([]model.Device, error) {
	devices, err := r.store.ListDevices(ctx)
	if err != nil {
		r.logger.Error("Device registry: failed to list devices",
			"error", err.Error())
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	r.logger.Debug("Device registry: devices listed",
		"count", len(devices))

	return devices, nil
}

func (r *DeviceRegistry) Rename(ctx context.Context, id model.ID, name string) (model.Device, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Device{}, model.NewErrInvalidInput("device name must not be empty")
	}

	device, err := r.store.UpdateDevice(ctx, id, model.DeviceUpdate{DeviceName: &name})
	if err != nil {
		r.logger.Error("Device registry: failed to rename device",
			"device_id", id.String(),
			"error", err.Error())
		return model.Device{}, fmt.Errorf("failed to rename device: %w", err)
	}

	r.logger.Info("Device registry: device renamed",
		"device_id", id.String(),
		"device_name", name)

	return device, nil
}

// Delete removes a credential after re-listing to make sure another one remains.
func (r *DeviceRegistry) Delete(ctx context.Context, id model.ID) error {
	devices, err := r.List(ctx)
	if err != nil {
		return err
	}

	if !CanDelete(devices) {
		r.logger.Info("Device registry: refused to delete last device",
			"device_id", id.String())
		return model.ErrLastDevice
	}
	if !containsDevice(devices, id) {
		return fmt.Errorf("device %s: %w", id, model.ErrNotFound)
	}

	if err := r.store.DeleteDevice(ctx, id); err != nil {
		r.logger.Error("Device registry: failed to delete device",
			"device_id", id.String(),
			"error", err.Error())
		return fmt.Errorf("failed to delete device: %w", err)
	}

	r.logger.Info("Device registry: device deleted",
		"device_id", id.String())

	return nil
}

// CanDelete reports whether a delete action may be offered for devices.
func CanDelete(devices []model.Device) bool {
	return len(devices) > 1
}

func containsDevice(devices []model.Device, id model.ID) bool {
	for _, d := range devices {
		if d.ID == id {
			return true
		}
	}
	return false
}
