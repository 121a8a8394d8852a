package device

import (
	"time"
)

// Device represents one physical ad-display unit.
type Device struct {
	ID              string    `json:"device_id"`
	Name            string    `json:"name"`
	City            string    `json:"city,omitempty"`
	Building        string    `json:"building,omitempty"`
	Lon             *float64  `json:"lon,omitempty"`
	Lat             *float64  `json:"lat,omitempty"`
	FirmwareVersion string    `json:"firmware_version,omitempty"`
	Tags            []string  `json:"tags"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// RegisterRequest is a device announcing itself to the control plane.
type RegisterRequest struct {
	Name            string   `json:"name"`
	City            string   `json:"city,omitempty"`
	Building        string   `json:"building,omitempty"`
	Lon             *float64 `json:"lon,omitempty"`
	Lat             *float64 `json:"lat,omitempty"`
	FirmwareVersion string   `json:"firmware_version,omitempty"`
	Tags            []string `json:"tags,omitempty"`
}

// RegisterResponse carries the generated identity and its connection token.
type RegisterResponse struct {
	DeviceID string `json:"device_id"`
	Token    string `json:"token"`
}

// DeviceRepository is the persistence boundary for devices.
type DeviceRepository interface {
	Create(d *Device) error
	GetByID(id string) (*Device, error)
	List(offset, limit int, query string) ([]Device, int64, error)
}

// TokenStore holds device auth tokens and online presence flags in the
// key-value namespace (auth:<id>, device:online:<id>).
type TokenStore interface {
	SaveToken(deviceID, token string) error
	CheckToken(deviceID, token string) (bool, error)
	SetOnline(deviceID string, ttl time.Duration) error
	IsOnline(deviceID string) (bool, error)
	OnlineDevices() ([]string, error)
}
