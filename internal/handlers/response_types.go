package handlers

import (
	"github.com/liftsign/controlplane/internal/domains/campaign"
	"github.com/liftsign/controlplane/internal/domains/command"
	"github.com/liftsign/controlplane/internal/domains/device"
	"github.com/liftsign/controlplane/internal/domains/material"
)

// Response wrapper types shared by the API handlers

// SuccessResponse represents a generic success response
type SuccessResponse struct {
	Message string `json:"message" example:"Operation completed successfully"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error" example:"Something went wrong"`
	Details string `json:"details,omitempty" example:"Validation error details"`
}

// PaginationInfo represents pagination information
type PaginationInfo struct {
	Total  int64 `json:"total" example:"150"`
	Offset int   `json:"offset" example:"0"`
	Limit  int   `json:"limit" example:"20"`
}

// RegisterDeviceResponse wraps a successful device registration
type RegisterDeviceResponse struct {
	Message string                  `json:"message" example:"Device registered successfully"`
	Device  device.RegisterResponse `json:"device"`
}

// ListDevicesResponse lists devices; Message carries a diagnostic when the
// store was unavailable and the listing degraded to an empty collection.
type ListDevicesResponse struct {
	Devices    []device.Device `json:"devices"`
	Pagination PaginationInfo  `json:"pagination"`
	Message    string          `json:"message,omitempty"`
}

// DeviceResponse wraps a single device
type DeviceResponse struct {
	Device device.Device `json:"device"`
}

// SnapshotResponse is the result of a snapshot round trip
type SnapshotResponse struct {
	DeviceID    string `json:"device_id"`
	SnapshotURL string `json:"snapshot_url"`
}

// SendCommandRequest is the admin frontend's command submission
type SendCommandRequest struct {
	TargetDeviceID string         `json:"target_device_id" binding:"required"`
	Action         string         `json:"action" binding:"required"`
	Data           map[string]any `json:"data,omitempty"`
}

// SendCommandResponse wraps a dispatched command
type SendCommandResponse struct {
	Status string                 `json:"status" example:"success"`
	CmdID  string                 `json:"cmd_id"`
	Data   map[string]any         `json:"data,omitempty"`
	Record *command.CommandRecord `json:"record,omitempty"`
}

// ListCommandsResponse lists the recent command history
type ListCommandsResponse struct {
	Items []command.CommandRecord `json:"items"`
	Total int                     `json:"total"`
}

// SnapshotCallbackRequest is what the gateway posts when a device answered
type SnapshotCallbackRequest struct {
	DeviceID    string         `json:"device_id" binding:"required"`
	ReqID       string         `json:"req_id,omitempty"`
	SnapshotURL string         `json:"snapshot_url,omitempty"`
	Result      string         `json:"result,omitempty"`
	Status      string         `json:"status,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
}

// MaterialUploadResponse wraps a stored upload
type MaterialUploadResponse struct {
	Message  string            `json:"message" example:"Material uploaded successfully"`
	Material material.Material `json:"material"`
}

// MaterialResponse wraps a single material
type MaterialResponse struct {
	Material material.Material `json:"material"`
}

// ListMaterialsResponse lists materials with the degrade-to-empty contract
type ListMaterialsResponse struct {
	Materials  []material.Material `json:"materials"`
	Pagination PaginationInfo      `json:"pagination"`
	Message    string              `json:"message,omitempty"`
}

// UpdateMaterialStatusRequest targets a new lifecycle status
type UpdateMaterialStatusRequest struct {
	Status material.MaterialStatus `json:"status" binding:"required" example:"transcoding"`
}

// CampaignStrategyResponse wraps a created campaign with its schedule
type CampaignStrategyResponse struct {
	CampaignID     string                    `json:"campaign_id"`
	ScheduleID     string                    `json:"schedule_id"`
	ScheduleConfig campaign.ScheduleDocument `json:"schedule_config"`
}

// ListCampaignsResponse lists campaigns with the degrade-to-empty contract
type ListCampaignsResponse struct {
	Campaigns  []campaign.Campaign `json:"campaigns"`
	Pagination PaginationInfo      `json:"pagination"`
	Message    string              `json:"message,omitempty"`
}

// PublishCampaignResponse enumerates per-device push outcomes
type PublishCampaignResponse struct {
	CampaignID string                   `json:"campaign_id"`
	Results    []campaign.PublishResult `json:"results"`
}
