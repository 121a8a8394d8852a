package material

import (
	"time"
)

// MaterialStatus represents the lifecycle state of an uploaded asset
type MaterialStatus string

const (
	StatusUploaded    MaterialStatus = "uploaded"
	StatusTranscoding MaterialStatus = "transcoding"
	StatusDone        MaterialStatus = "done"
	StatusFailed      MaterialStatus = "failed"
)

// IsValid checks if the material status is valid
func (s MaterialStatus) IsValid() bool {
	switch s {
	case StatusUploaded, StatusTranscoding, StatusDone, StatusFailed:
		return true
	default:
		return false
	}
}

// Material represents one uploaded ad asset tracked through its lifecycle
type Material struct {
	ID          string         `json:"material_id"`
	FileName    string         `json:"file_name"`
	MD5         string         `json:"md5"`
	SizeBytes   int64          `json:"size_bytes"`
	Type        string         `json:"type,omitempty"`
	DurationSec int            `json:"duration_sec,omitempty"`
	Advertiser  string         `json:"advertiser,omitempty"`
	UploaderID  string         `json:"uploader_id,omitempty"`
	Status      MaterialStatus `json:"status"`
	StoragePath string         `json:"storage_path,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// MaterialRepository is the persistence boundary for materials. Two
// implementations exist: the GORM store and the on-disk JSON index used
// when the database is unavailable; one is selected at startup.
type MaterialRepository interface {
	Create(m *Material) error
	GetByID(id string) (*Material, error)
	List(offset, limit int) ([]Material, int64, error)
	Update(m *Material) error
	Delete(id string) error
}
