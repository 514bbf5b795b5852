package model

import "context"

// Device is a passkey credential bound to the current identity.
type Device struct {
	ID         ID         `json:"id"`
	DeviceName string     `json:"device_name"`
	DeviceType string     `json:"device_type,omitempty"`
	Username   string     `json:"username,omitempty"`
	CreatedAt  Timestamp  `json:"created_at"`
	LastUsed   *Timestamp `json:"last_used,omitempty"`
}

// DeviceUpdate carries mutable device fields.
type DeviceUpdate struct {
	DeviceName *string `json:"device_name,omitempty"`
}

// DeviceStore lists and edits the credentials of the current identity.
type DeviceStore interface {
	ListDevices(ctx context.Context) ([]Device, error)
	UpdateDevice(ctx context.Context, id ID, update DeviceUpdate) (Device, error)
	DeleteDevice(ctx context.Context, id ID) error
}
