package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/liftsign/controlplane/internal/domains/command"
	"github.com/liftsign/controlplane/pkg/Logger"
)

// CommandHandler handles command dispatch and the snapshot round trip
type CommandHandler struct {
	commandService  command.CommandService
	snapshotTimeout time.Duration
	logger          *Logger.Logger
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(commandService command.CommandService, snapshotTimeout time.Duration, logger *Logger.Logger) *CommandHandler {
	return &CommandHandler{
		commandService:  commandService,
		snapshotTimeout: snapshotTimeout,
		logger:          logger,
	}
}

// Snapshot handles a blocking snapshot request
// @Summary Request a device snapshot
// @Description Push a SNAPSHOT command and wait for the device callback
// @Tags Commands
// @Produce json
// @Param id path string true "Device ID"
// @Param timeout query int false "Wait timeout in seconds"
// @Success 200 {object} SnapshotResponse "Snapshot URL"
// @Failure 409 {object} ErrorResponse "A snapshot request is already pending"
// @Failure 502 {object} ErrorResponse "Gateway unavailable"
// @Failure 504 {object} ErrorResponse "Device did not respond in time"
// @Router /devices/{id}/snapshot [get]
func (h *CommandHandler) Snapshot(c *gin.Context) {
	deviceID := c.Param("id")
	if deviceID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Device ID is required"})
		return
	}

	timeout := h.snapshotTimeout
	if secs, err := strconv.Atoi(c.Query("timeout")); err == nil && secs > 0 {
		timeout = time.Duration(secs) * time.Second
	}

	url, err := h.commandService.RequestSnapshot(c.Request.Context(), deviceID, timeout)
	if err != nil {
		switch {
		case errors.Is(err, command.ErrRequestPending):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "A snapshot request is already pending for this device"})
		case errors.Is(err, command.ErrDispatchFailed):
			c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Gateway unavailable", Details: err.Error()})
		case errors.Is(err, command.ErrAwaitTimeout):
			// Retryable: the command was sent but the device never answered.
			c.JSON(http.StatusGatewayTimeout, ErrorResponse{Error: "Device did not respond in time"})
		default:
			h.logger.Errorf("snapshot request error: %v", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, SnapshotResponse{DeviceID: deviceID, SnapshotURL: url})
}

// Send handles a fire-and-forget command submission
// @Summary Send a command to a device
// @Tags Commands
// @Accept json
// @Produce json
// @Param request body SendCommandRequest true "Command"
// @Success 200 {object} SendCommandResponse "Dispatched"
// @Failure 400 {object} ErrorResponse "Invalid request data"
// @Failure 409 {object} ErrorResponse "A snapshot request is already pending"
// @Failure 502 {object} ErrorResponse "Gateway unavailable"
// @Failure 504 {object} ErrorResponse "Device did not respond in time"
// @Router /commands [post]
func (h *CommandHandler) Send(c *gin.Context) {
	var req SendCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request data",
			Details: err.Error(),
		})
		return
	}

	// Capture runs the full snapshot round trip; everything else is one-way.
	if req.Action == "capture" {
		url, err := h.commandService.RequestSnapshot(c.Request.Context(), req.TargetDeviceID, h.snapshotTimeout)
		if err != nil {
			switch {
			case errors.Is(err, command.ErrRequestPending):
				c.JSON(http.StatusConflict, ErrorResponse{Error: "A snapshot request is already pending for this device"})
			case errors.Is(err, command.ErrDispatchFailed):
				c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Gateway unavailable", Details: err.Error()})
			case errors.Is(err, command.ErrAwaitTimeout):
				c.JSON(http.StatusGatewayTimeout, ErrorResponse{Error: "Device did not respond in time"})
			default:
				h.logger.Errorf("capture command error: %v", err)
				c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
			}
			return
		}
		c.JSON(http.StatusOK, SendCommandResponse{
			Status: "success",
			Data:   map[string]any{"url": url},
		})
		return
	}

	var data json.RawMessage
	if req.Data != nil {
		data, _ = json.Marshal(req.Data)
	}
	rec, err := h.commandService.SendCommand(c.Request.Context(), req.TargetDeviceID, req.Action, data)
	if err != nil {
		if errors.Is(err, command.ErrDispatchFailed) {
			c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Gateway unavailable", Details: err.Error()})
			return
		}
		h.logger.Errorf("send command error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, SendCommandResponse{
		Status: "success",
		CmdID:  rec.CmdID,
		Record: rec,
	})
}

// List handles the recent command history
// @Summary List command history
// @Tags Commands
// @Produce json
// @Param limit query int false "Limit"
// @Success 200 {object} ListCommandsResponse "History"
// @Router /commands [get]
func (h *CommandHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	items := h.commandService.ListCommands(limit)
	c.JSON(http.StatusOK, ListCommandsResponse{Items: items, Total: len(items)})
}

// SnapshotCallback handles the gateway's asynchronous result report
// @Summary Snapshot/result callback
// @Description Resolves the pending request matching the callback; late or duplicate callbacks are no-ops
// @Tags Commands
// @Accept json
// @Produce json
// @Param request body SnapshotCallbackRequest true "Callback payload"
// @Success 200 {object} SuccessResponse "Accepted"
// @Failure 400 {object} ErrorResponse "Invalid request data"
// @Router /devices/snapshot/callback [post]
func (h *CommandHandler) SnapshotCallback(c *gin.Context) {
	var req SnapshotCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request data",
			Details: err.Error(),
		})
		return
	}

	matched := h.commandService.ResolveCallback(req.DeviceID, req.ReqID, command.Result{
		SnapshotURL: req.SnapshotURL,
		Output:      req.Result,
		Status:      req.Status,
		Extra:       req.Extra,
	})
	if !matched {
		h.logger.Debugf("callback for %s matched no pending request", req.DeviceID)
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "ok"})
}
