package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/liftsign/controlplane/internal/domains/material"
	"github.com/liftsign/controlplane/pkg/Logger"
)

// MaterialHandler handles material-related HTTP requests
type MaterialHandler struct {
	materialService material.MaterialService
	logger          *Logger.Logger
}

// NewMaterialHandler creates a new material handler
func NewMaterialHandler(materialService material.MaterialService, logger *Logger.Logger) *MaterialHandler {
	return &MaterialHandler{
		materialService: materialService,
		logger:          logger,
	}
}

// Upload handles a multipart material upload
// @Summary Upload a material
// @Description Store an ad asset, compute its checksum and start its lifecycle
// @Tags Materials
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Asset file"
// @Param advertiser formData string false "Advertiser name"
// @Param uploader_id formData string false "Uploader id"
// @Param tags formData string false "Comma-separated tags"
// @Success 201 {object} MaterialUploadResponse "Material stored"
// @Failure 400 {object} ErrorResponse "Invalid upload"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /materials/upload [post]
func (h *MaterialHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "file field is required", Details: err.Error()})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "could not read upload", Details: err.Error()})
		return
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "could not read upload", Details: err.Error()})
		return
	}

	var tags []string
	if raw := c.PostForm("tags"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}

	m, err := h.materialService.Upload(c.Request.Context(), material.UploadRequest{
		FileName:   fileHeader.Filename,
		Content:    content,
		Advertiser: c.PostForm("advertiser"),
		UploaderID: c.PostForm("uploader_id"),
		Tags:       tags,
	})
	if err != nil {
		if errors.Is(err, material.ErrInvalidUpload) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid upload"})
			return
		}
		h.logger.Errorf("upload material error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}

	c.JSON(http.StatusCreated, MaterialUploadResponse{
		Message:  "Material uploaded successfully",
		Material: *m,
	})
}

// List handles listing materials
// @Summary List materials
// @Tags Materials
// @Produce json
// @Param offset query int false "Offset"
// @Param limit query int false "Limit"
// @Success 200 {object} ListMaterialsResponse "Materials"
// @Router /materials [get]
func (h *MaterialHandler) List(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	materials, total, err := h.materialService.List(c.Request.Context(), offset, limit)
	if err != nil {
		h.logger.Warnf("material listing degraded: %v", err)
		c.JSON(http.StatusOK, ListMaterialsResponse{
			Materials:  []material.Material{},
			Pagination: PaginationInfo{Offset: offset, Limit: limit},
			Message:    "material store unavailable, showing empty list",
		})
		return
	}

	c.JSON(http.StatusOK, ListMaterialsResponse{
		Materials: materials,
		Pagination: PaginationInfo{
			Total:  total,
			Offset: offset,
			Limit:  limit,
		},
	})
}

// Get handles getting a specific material
// @Summary Get material by ID
// @Tags Materials
// @Produce json
// @Param id path string true "Material ID"
// @Success 200 {object} MaterialResponse "Material data"
// @Failure 404 {object} ErrorResponse "Material not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /materials/{id} [get]
func (h *MaterialHandler) Get(c *gin.Context) {
	m, err := h.materialService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, material.ErrMaterialNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Material not found"})
		default:
			h.logger.Errorf("get material error: %v", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		}
		return
	}
	c.JSON(http.StatusOK, MaterialResponse{Material: *m})
}

// UpdateStatus handles a material status transition
// @Summary Update material status
// @Description Move a material along its lifecycle; illegal edges are rejected
// @Tags Materials
// @Accept json
// @Produce json
// @Param id path string true "Material ID"
// @Param request body UpdateMaterialStatusRequest true "Target status"
// @Success 200 {object} MaterialResponse "Updated material"
// @Failure 400 {object} ErrorResponse "Illegal status transition"
// @Failure 404 {object} ErrorResponse "Material not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /materials/{id}/status [post]
func (h *MaterialHandler) UpdateStatus(c *gin.Context) {
	var req UpdateMaterialStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request data",
			Details: err.Error(),
		})
		return
	}

	m, err := h.materialService.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		var invalid *material.InvalidTransitionError
		switch {
		case errors.Is(err, material.ErrMaterialNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Material not found"})
		case errors.Is(err, material.ErrUnknownStatus):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Unknown material status"})
		case errors.As(err, &invalid):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Illegal status transition", Details: invalid.Error()})
		default:
			h.logger.Errorf("update material status error: %v", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, MaterialResponse{Material: *m})
}

// TranscodeCallback handles the external transcoder's completion report
// @Summary Transcode callback
// @Tags Materials
// @Accept json
// @Produce json
// @Param id path string true "Material ID"
// @Param request body material.TranscodeCallbackRequest true "Transcode result"
// @Success 200 {object} MaterialResponse "Updated material"
// @Failure 400 {object} ErrorResponse "Illegal status transition"
// @Failure 404 {object} ErrorResponse "Material not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /materials/{id}/transcode/callback [post]
func (h *MaterialHandler) TranscodeCallback(c *gin.Context) {
	var req material.TranscodeCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request data",
			Details: err.Error(),
		})
		return
	}

	m, err := h.materialService.ApplyTranscodeCallback(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		var invalid *material.InvalidTransitionError
		switch {
		case errors.Is(err, material.ErrMaterialNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Material not found"})
		case errors.Is(err, material.ErrNonTerminalStatus):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Callback status must be done or failed"})
		case errors.As(err, &invalid):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Illegal status transition", Details: invalid.Error()})
		default:
			h.logger.Errorf("transcode callback error: %v", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, MaterialResponse{Material: *m})
}

// Delete handles removing a material and its backing file
// @Summary Delete material
// @Tags Materials
// @Produce json
// @Param id path string true "Material ID"
// @Success 200 {object} SuccessResponse "Deleted"
// @Failure 404 {object} ErrorResponse "Material not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /materials/{id} [delete]
func (h *MaterialHandler) Delete(c *gin.Context) {
	if err := h.materialService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		switch {
		case errors.Is(err, material.ErrMaterialNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Material not found"})
		default:
			h.logger.Errorf("delete material error: %v", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		}
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Material deleted successfully"})
}
