package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/liftsign/controlplane/internal/domains/device"
	"github.com/liftsign/controlplane/pkg/Logger"
)

// DeviceHandler handles device-related HTTP requests
type DeviceHandler struct {
	deviceService device.DeviceService
	logger        *Logger.Logger
}

// NewDeviceHandler creates a new device handler
func NewDeviceHandler(deviceService device.DeviceService, logger *Logger.Logger) *DeviceHandler {
	return &DeviceHandler{
		deviceService: deviceService,
		logger:        logger,
	}
}

// Register handles device registration
// @Summary Register a device
// @Description Register a new display device and issue its connection token
// @Tags Devices
// @Accept json
// @Produce json
// @Param request body device.RegisterRequest true "Device registration data"
// @Success 201 {object} RegisterDeviceResponse "Device registered"
// @Failure 400 {object} ErrorResponse "Invalid request data"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /devices/register [post]
func (h *DeviceHandler) Register(c *gin.Context) {
	var req device.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request data",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.deviceService.Register(c.Request.Context(), req)
	if err != nil {
		h.logger.Errorf("register device error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}

	c.JSON(http.StatusCreated, RegisterDeviceResponse{
		Message: "Device registered successfully",
		Device:  *resp,
	})
}

// List handles listing devices
// @Summary List devices
// @Description List registered devices; degrades to an empty list when the store is down
// @Tags Devices
// @Produce json
// @Param offset query int false "Offset"
// @Param limit query int false "Limit"
// @Param q query string false "Search by id or name"
// @Success 200 {object} ListDevicesResponse "Devices"
// @Router /devices [get]
func (h *DeviceHandler) List(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	query := c.Query("q")

	devices, total, err := h.deviceService.List(c.Request.Context(), offset, limit, query)
	if err != nil {
		// Read endpoints never hard-fail on a down store.
		h.logger.Warnf("device listing degraded: %v", err)
		c.JSON(http.StatusOK, ListDevicesResponse{
			Devices:    []device.Device{},
			Pagination: PaginationInfo{Offset: offset, Limit: limit},
			Message:    "device store unavailable, showing empty list",
		})
		return
	}

	c.JSON(http.StatusOK, ListDevicesResponse{
		Devices: devices,
		Pagination: PaginationInfo{
			Total:  total,
			Offset: offset,
			Limit:  limit,
		},
	})
}

// Get handles getting a specific device
// @Summary Get device by ID
// @Tags Devices
// @Produce json
// @Param id path string true "Device ID"
// @Success 200 {object} DeviceResponse "Device data"
// @Failure 404 {object} ErrorResponse "Device not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /devices/{id} [get]
func (h *DeviceHandler) Get(c *gin.Context) {
	deviceID := c.Param("id")
	if deviceID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Device ID is required"})
		return
	}

	d, err := h.deviceService.Get(c.Request.Context(), deviceID)
	if err != nil {
		switch err {
		case device.ErrDeviceNotFound:
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Device not found"})
		default:
			h.logger.Errorf("get device error: %v", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, DeviceResponse{Device: *d})
}

// Stats handles the online-fleet summary
// @Summary Online device stats
// @Tags Devices
// @Produce json
// @Success 200 {object} device.Stats "Online summary"
// @Router /devices/stats [get]
func (h *DeviceHandler) Stats(c *gin.Context) {
	stats, err := h.deviceService.Stats(c.Request.Context())
	if err != nil {
		h.logger.Warnf("presence store unavailable: %v", err)
		c.JSON(http.StatusOK, device.Stats{OnlineCount: 0, Devices: []string{}})
		return
	}
	c.JSON(http.StatusOK, stats)
}
