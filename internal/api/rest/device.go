package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/ameyamatmk/voice-diary/internal/model"
)

// ListDevices returns the credentials of the current identity.
func (c *Client) ListDevices(ctx context.Context) ([]model.Device, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, c.endpoint("devices"), nil, &raw); err != nil {
		return nil, err
	}

	var devices []model.Device
	if err := decodeEnvelope(raw, "devices", &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// UpdateDevice renames a credential.
func (c *Client) UpdateDevice(ctx context.Context, id model.ID, update model.DeviceUpdate) (model.Device, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPut, c.endpoint("devices", url.PathEscape(id.String())), update, &raw); err != nil {
		return model.Device{}, err
	}

	var device model.Device
	if err := decodeEnvelope(raw, "device", &device); err != nil {
		return model.Device{}, err
	}
	return device, nil
}

// DeleteDevice removes a credential.
func (c *Client) DeleteDevice(ctx context.Context, id model.ID) error {
	return c.do(ctx, http.MethodDelete, c.endpoint("devices", url.PathEscape(id.String())), nil, nil)
}
