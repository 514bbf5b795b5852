package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ameyamatmk/voice-diary/internal/mocks"
	"github.com/ameyamatmk/voice-diary/internal/model"
	"github.com/ameyamatmk/voice-diary/internal/testutil"
)

var (
	laptop = model.Device{ID: "1", DeviceName: "Laptop", DeviceType: "platform", Username: "alice"}
	phone  = model.Device{ID: "2", DeviceName: "Phone", DeviceType: "platform", Username: "alice"}
)

func TestDeviceRegistry_List(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		store := mocks.NewDeviceStore(t)
		store.On("ListDevices", mock.Anything).Return([]model.Device{laptop, phone}, nil).Once()

		devices, err := NewDeviceRegistry(store, testutil.MakeNoopLogger()).List(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []model.Device{laptop, phone}, devices)
	})

	t.Run("error", func(t *testing.T) {
		store := mocks.NewDeviceStore(t)
		store.On("ListDevices", mock.Anything).Return(nil, model.ErrNetworkFailure).Once()

		_, err := NewDeviceRegistry(store, testutil.MakeNoopLogger()).List(context.Background())
		assert.ErrorIs(t, err, model.ErrNetworkFailure)
	})
}

func TestDeviceRegistry_Rename(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		setup   func(store *mocks.DeviceStore)
		wantErr error
	}{
		{
			name:  "trimmed name",
			input: "  Work laptop ",
			setup: func(store *mocks.DeviceStore) {
				store.On("UpdateDevice", mock.Anything, model.ID("1"), mock.MatchedBy(func(u model.DeviceUpdate) bool {
					return u.DeviceName != nil && *u.DeviceName == "Work laptop"
				})).Return(model.Device{ID: "1", DeviceName: "Work laptop"}, nil).Once()
			},
		},
		{
			name:    "empty name",
			input:   "   ",
			setup:   func(*mocks.DeviceStore) {},
			wantErr: model.ErrInvalidInput,
		},
		{
			name:  "server rejects",
			input: "Laptop",
			setup: func(store *mocks.DeviceStore) {
				store.On("UpdateDevice", mock.Anything, model.ID("1"), mock.Anything).
					Return(model.Device{}, &model.ServerError{Status: 404, Message: "Device not found"}).Once()
			},
			wantErr: model.ErrServerRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mocks.NewDeviceStore(t)
			tt.setup(store)

			device, err := NewDeviceRegistry(store, testutil.MakeNoopLogger()).Rename(context.Background(), "1", tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Work laptop", device.DeviceName)
		})
	}
}

func TestDeviceRegistry_Delete(t *testing.T) {
	tests := []struct {
		name    string
		id      model.ID
		devices []model.Device
		delErr  error
		deletes bool
		wantErr error
	}{
		{name: "one of two", id: "2", devices: []model.Device{laptop, phone}, deletes: true},
		{name: "last device", id: "1", devices: []model.Device{laptop}, wantErr: model.ErrLastDevice},
		{name: "no devices", id: "1", devices: nil, wantErr: model.ErrLastDevice},
		{name: "unknown device", id: "9", devices: []model.Device{laptop, phone}, wantErr: model.ErrNotFound},
		{
			name: "server refuses", id: "2", devices: []model.Device{laptop, phone}, deletes: true,
			delErr: &model.ServerError{Status: 400, Message: "Cannot delete the last device"}, wantErr: model.ErrServerRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mocks.NewDeviceStore(t)
			store.On("ListDevices", mock.Anything).Return(tt.devices, nil).Once()
			if tt.deletes {
				store.On("DeleteDevice", mock.Anything, tt.id).Return(tt.delErr).Once()
			}

			err := NewDeviceRegistry(store, testutil.MakeNoopLogger()).Delete(context.Background(), tt.id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestDeviceRegistry_Delete_ListFails(t *testing.T) {
	store := mocks.NewDeviceStore(t)
	store.On("ListDevices", mock.Anything).Return(nil, errors.New("boom")).Once()

	err := NewDeviceRegistry(store, testutil.MakeNoopLogger()).Delete(context.Background(), "1")
	require.Error(t, err)
}

func TestCanDelete(t *testing.T) {
	assert.False(t, CanDelete(nil))
	assert.False(t, CanDelete([]model.Device{laptop}))
	assert.True(t, CanDelete([]model.Device{laptop, phone}))
}
