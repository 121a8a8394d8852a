package campaign

import (
	"time"
)

// AdItem is one ad in a submitted strategy request.
type AdItem struct {
	ID       string   `json:"id" binding:"required"`
	File     string   `json:"file"`
	MD5      string   `json:"md5"`
	Priority int      `json:"priority"`
	Slots    []string `json:"slots"`
}

// PlaylistItem is one entry of the canonical schedule document. Fields are
// carried over verbatim from the submitted ad.
type PlaylistItem struct {
	ID       string   `json:"id"`
	File     string   `json:"file"`
	MD5      string   `json:"md5"`
	Priority int      `json:"priority"`
	Slots    []string `json:"slots"`
}

// ScheduleDocument is the validated, normalized playlist pushed to devices.
type ScheduleDocument struct {
	Type            string         `json:"type"`
	Version         string         `json:"version"`
	DownloadBaseURL string         `json:"download_base_url"`
	Playlist        []PlaylistItem `json:"playlist"`
}

// StrategyRequest is the raw campaign submission.
type StrategyRequest struct {
	AdsList         []AdItem       `json:"ads_list" binding:"required"`
	DevicesList     []string       `json:"devices_list"`
	TimeRules       map[string]any `json:"time_rules"`
	DownloadBaseURL string         `json:"download_base_url,omitempty"`
}

// Campaign is a stored strategy with its canonical schedule.
type Campaign struct {
	ID            string           `json:"campaign_id"`
	ScheduleID    string           `json:"schedule_id"`
	Schedule      ScheduleDocument `json:"schedule_config"`
	TargetDevices []string         `json:"target_devices"`
	TimeRules     map[string]any   `json:"time_rules,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// PublishResult reports the per-device outcome of a schedule push.
type PublishResult struct {
	DeviceID string `json:"device_id"`
	OK       bool   `json:"ok"`
	Error    string `json:"error,omitempty"`
}

// CampaignRepository is the persistence boundary for campaigns.
type CampaignRepository interface {
	Create(c *Campaign) error
	GetByID(id string) (*Campaign, error)
	List(offset, limit int) ([]Campaign, int64, error)
}
