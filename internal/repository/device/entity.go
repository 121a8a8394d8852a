package device

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/liftsign/controlplane/internal/domains/device"
)

// TagList is a custom type for handling JSON serialization of string slices
type TagList []string

// Value implements driver.Valuer interface for GORM
func (t TagList) Value() (driver.Value, error) {
	if len(t) == 0 {
		return "[]", nil
	}
	return json.Marshal(t)
}

// Scan implements sql.Scanner interface for GORM
func (t *TagList) Scan(value interface{}) error {
	if value == nil {
		*t = TagList{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, t)
	case string:
		return json.Unmarshal([]byte(v), t)
	default:
		*t = TagList{}
		return nil
	}
}

// DeviceEntity represents the database entity for Device with GORM tags
type DeviceEntity struct {
	ID              string    `gorm:"primaryKey;type:varchar(32);not null"`
	Name            string    `gorm:"column:name;type:varchar(200)"`
	City            string    `gorm:"column:city;type:varchar(100)"`
	Building        string    `gorm:"column:building;type:varchar(200)"`
	Lon             *float64  `gorm:"column:lon"`
	Lat             *float64  `gorm:"column:lat"`
	FirmwareVersion string    `gorm:"column:firmware_version;type:varchar(50)"`
	Tags            TagList   `gorm:"type:json;column:tags"`
	CreatedAt       time.Time `gorm:"autoCreateTime(3)"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime(3)"`
}

// TableName returns the table name for GORM
func (DeviceEntity) TableName() string {
	return "devices"
}

// ToDomain converts DeviceEntity to domain Device
func (e *DeviceEntity) ToDomain() *device.Device {
	tags := []string(e.Tags)
	if tags == nil {
		tags = []string{}
	}
	return &device.Device{
		ID:              e.ID,
		Name:            e.Name,
		City:            e.City,
		Building:        e.Building,
		Lon:             e.Lon,
		Lat:             e.Lat,
		FirmwareVersion: e.FirmwareVersion,
		Tags:            tags,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

// FromDomain converts domain Device to DeviceEntity
func (e *DeviceEntity) FromDomain(d *device.Device) {
	e.ID = d.ID
	e.Name = d.Name
	e.City = d.City
	e.Building = d.Building
	e.Lon = d.Lon
	e.Lat = d.Lat
	e.FirmwareVersion = d.FirmwareVersion
	e.Tags = TagList(d.Tags)
	e.CreatedAt = d.CreatedAt
	e.UpdatedAt = d.UpdatedAt
}
