package campaign

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/liftsign/controlplane/internal/domains/campaign"
)

// ScheduleJSON stores the canonical schedule document as a JSON column
type ScheduleJSON campaign.ScheduleDocument

// Value implements driver.Valuer interface for GORM
func (s ScheduleJSON) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner interface for GORM
func (s *ScheduleJSON) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return nil
	}
}

// DeviceList is a custom type for handling JSON serialization of target devices
type DeviceList []string

// Value implements driver.Valuer interface for GORM
func (d DeviceList) Value() (driver.Value, error) {
	if len(d) == 0 {
		return "[]", nil
	}
	return json.Marshal(d)
}

// Scan implements sql.Scanner interface for GORM
func (d *DeviceList) Scan(value interface{}) error {
	if value == nil {
		*d = DeviceList{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	default:
		*d = DeviceList{}
		return nil
	}
}

// RulesMap is a custom type for the free-form time rules column
type RulesMap map[string]any

// Value implements driver.Valuer interface for GORM
func (m RulesMap) Value() (driver.Value, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner interface for GORM
func (m *RulesMap) Scan(value interface{}) error {
	if value == nil {
		*m = RulesMap{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		*m = RulesMap{}
		return nil
	}
}

// CampaignEntity represents the database entity for Campaign with GORM tags
type CampaignEntity struct {
	ID            string       `gorm:"primaryKey;type:varchar(32);not null"`
	ScheduleID    string       `gorm:"column:schedule_id;type:varchar(32);not null;index"`
	Schedule      ScheduleJSON `gorm:"type:json;column:schedule_json"`
	TargetDevices DeviceList   `gorm:"type:json;column:target_devices"`
	TimeRules     RulesMap     `gorm:"type:json;column:time_rules"`
	CreatedAt     time.Time    `gorm:"autoCreateTime(3)"`
	UpdatedAt     time.Time    `gorm:"autoUpdateTime(3)"`
}

// TableName returns the table name for GORM
func (CampaignEntity) TableName() string {
	return "campaigns"
}

// ToDomain converts CampaignEntity to domain Campaign
func (e *CampaignEntity) ToDomain() *campaign.Campaign {
	devices := []string(e.TargetDevices)
	if devices == nil {
		devices = []string{}
	}
	return &campaign.Campaign{
		ID:            e.ID,
		ScheduleID:    e.ScheduleID,
		Schedule:      campaign.ScheduleDocument(e.Schedule),
		TargetDevices: devices,
		TimeRules:     map[string]any(e.TimeRules),
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

// FromDomain converts domain Campaign to CampaignEntity
func (e *CampaignEntity) FromDomain(c *campaign.Campaign) {
	e.ID = c.ID
	e.ScheduleID = c.ScheduleID
	e.Schedule = ScheduleJSON(c.Schedule)
	e.TargetDevices = DeviceList(c.TargetDevices)
	e.TimeRules = RulesMap(c.TimeRules)
	e.CreatedAt = c.CreatedAt
	e.UpdatedAt = c.UpdatedAt
}
