package material

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/liftsign/controlplane/internal/domains/material"
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

// ExtraMap is a custom type for handling JSON serialization of the
// extensible metadata column
type ExtraMap map[string]any

// Value implements driver.Valuer interface for GORM
func (m ExtraMap) Value() (driver.Value, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner interface for GORM
func (m *ExtraMap) Scan(value interface{}) error {
	if value == nil {
		*m = ExtraMap{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		*m = ExtraMap{}
		return nil
	}
}

// MaterialEntity represents the database entity for Material with GORM tags
type MaterialEntity struct {
	ID          string    `gorm:"primaryKey;type:varchar(32);not null"`
	FileName    string    `gorm:"column:file_name;type:varchar(255);not null"`
	MD5         string    `gorm:"column:md5;type:char(32);not null"`
	SizeBytes   int64     `gorm:"column:size_bytes"`
	Type        string    `gorm:"column:type;type:varchar(30)"`
	DurationSec int       `gorm:"column:duration_sec"`
	Advertiser  string    `gorm:"column:advertiser;type:varchar(200)"`
	UploaderID  string    `gorm:"column:uploader_id;type:varchar(64)"`
	Status      string    `gorm:"column:status;type:varchar(20);not null;index;default:uploaded"`
	StoragePath string    `gorm:"column:storage_path;type:varchar(500)"`
	Tags        TagList   `gorm:"type:json;column:tags"`
	Extra       ExtraMap  `gorm:"type:json;column:extra"`
	CreatedAt   time.Time `gorm:"autoCreateTime(3)"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime(3)"`
}

// TableName returns the table name for GORM
func (MaterialEntity) TableName() string {
	return "materials"
}

// ToDomain converts MaterialEntity to domain Material
func (e *MaterialEntity) ToDomain() *material.Material {
	tags := []string(e.Tags)
	if tags == nil {
		tags = []string{}
	}
	extra := map[string]any(e.Extra)
	if extra == nil {
		extra = map[string]any{}
	}
	return &material.Material{
		ID:          e.ID,
		FileName:    e.FileName,
		MD5:         e.MD5,
		SizeBytes:   e.SizeBytes,
		Type:        e.Type,
		DurationSec: e.DurationSec,
		Advertiser:  e.Advertiser,
		UploaderID:  e.UploaderID,
		Status:      material.MaterialStatus(e.Status),
		StoragePath: e.StoragePath,
		Tags:        tags,
		Extra:       extra,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// FromDomain converts domain Material to MaterialEntity
func (e *MaterialEntity) FromDomain(m *material.Material) {
	e.ID = m.ID
	e.FileName = m.FileName
	e.MD5 = m.MD5
	e.SizeBytes = m.SizeBytes
	e.Type = m.Type
	e.DurationSec = m.DurationSec
	e.Advertiser = m.Advertiser
	e.UploaderID = m.UploaderID
	e.Status = string(m.Status)
	e.StoragePath = m.StoragePath
	e.Tags = TagList(m.Tags)
	e.Extra = ExtraMap(m.Extra)
	e.CreatedAt = m.CreatedAt
	e.UpdatedAt = m.UpdatedAt
}
