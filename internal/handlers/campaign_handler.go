package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/liftsign/controlplane/internal/domains/campaign"
	"github.com/liftsign/controlplane/pkg/Logger"
)

// CampaignHandler handles campaign-related HTTP requests
type CampaignHandler struct {
	campaignService campaign.CampaignService
	logger          *Logger.Logger
}

// NewCampaignHandler creates a new campaign handler
func NewCampaignHandler(campaignService campaign.CampaignService, logger *Logger.Logger) *CampaignHandler {
	return &CampaignHandler{
		campaignService: campaignService,
		logger:          logger,
	}
}

// CreateStrategy handles a campaign strategy submission
// @Summary Submit a campaign strategy
// @Description Validate time slots and produce the canonical schedule document
// @Tags Campaigns
// @Accept json
// @Produce json
// @Param request body campaign.StrategyRequest true "Strategy"
// @Success 201 {object} CampaignStrategyResponse "Schedule created"
// @Failure 400 {object} ErrorResponse "Invalid slots or empty strategy"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /campaigns/strategy [post]
func (h *CampaignHandler) CreateStrategy(c *gin.Context) {
	var req campaign.StrategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request data",
			Details: err.Error(),
		})
		return
	}

	created, err := h.campaignService.CreateStrategy(c.Request.Context(), req)
	if err != nil {
		var validation *campaign.ValidationError
		switch {
		case errors.Is(err, campaign.ErrEmptyStrategy):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Strategy must contain at least one ad"})
		case errors.As(err, &validation):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid time slots", Details: validation.Error()})
		default:
			h.logger.Errorf("create strategy error: %v", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, CampaignStrategyResponse{
		CampaignID:     created.ID,
		ScheduleID:     created.ScheduleID,
		ScheduleConfig: created.Schedule,
	})
}

// List handles listing campaigns
// @Summary List campaigns
// @Tags Campaigns
// @Produce json
// @Param offset query int false "Offset"
// @Param limit query int false "Limit"
// @Success 200 {object} ListCampaignsResponse "Campaigns"
// @Router /campaigns [get]
func (h *CampaignHandler) List(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	campaigns, total, err := h.campaignService.List(c.Request.Context(), offset, limit)
	if err != nil {
		h.logger.Warnf("campaign listing degraded: %v", err)
		c.JSON(http.StatusOK, ListCampaignsResponse{
			Campaigns:  []campaign.Campaign{},
			Pagination: PaginationInfo{Offset: offset, Limit: limit},
			Message:    "campaign store unavailable, showing empty list",
		})
		return
	}

	c.JSON(http.StatusOK, ListCampaignsResponse{
		Campaigns: campaigns,
		Pagination: PaginationInfo{
			Total:  total,
			Offset: offset,
			Limit:  limit,
		},
	})
}

// Publish handles pushing a stored schedule to its target devices
// @Summary Publish a campaign
// @Description Push the schedule document to every target device via the gateway
// @Tags Campaigns
// @Produce json
// @Param id path string true "Campaign ID"
// @Success 200 {object} PublishCampaignResponse "Per-device outcomes"
// @Failure 404 {object} ErrorResponse "Campaign not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /campaigns/{id}/publish [post]
func (h *CampaignHandler) Publish(c *gin.Context) {
	campaignID := c.Param("id")

	results, err := h.campaignService.Publish(c.Request.Context(), campaignID)
	if err != nil {
		switch {
		case errors.Is(err, campaign.ErrCampaignNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Campaign not found"})
		default:
			h.logger.Errorf("publish campaign error: %v", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, PublishCampaignResponse{
		CampaignID: campaignID,
		Results:    results,
	})
}
