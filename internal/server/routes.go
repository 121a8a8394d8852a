package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/liftsign/controlplane/internal/domains/campaign"
	"github.com/liftsign/controlplane/internal/domains/command"
	"github.com/liftsign/controlplane/internal/domains/device"
	"github.com/liftsign/controlplane/internal/domains/material"
	"github.com/liftsign/controlplane/internal/handlers"
	"github.com/liftsign/controlplane/pkg/Logger"
)

// Dependencies carries everything the routes need.
type Dependencies struct {
	DeviceService   device.DeviceService
	MaterialService material.MaterialService
	CampaignService campaign.CampaignService
	CommandService  command.CommandService
	SnapshotTimeout time.Duration
	Logger          *Logger.Logger
}

// InitializeRoutes wires the API surface onto the gin engine.
func InitializeRoutes(r *gin.Engine, dep Dependencies) {
	r.Use(handlers.CORSMiddleware())

	r.GET("/", func(ctx *gin.Context) { ctx.JSON(200, gin.H{"message": "Server healthy"}) })
	r.GET("/health", func(ctx *gin.Context) { ctx.JSON(200, gin.H{"status": "ok"}) })

	deviceHandler := handlers.NewDeviceHandler(dep.DeviceService, dep.Logger)
	materialHandler := handlers.NewMaterialHandler(dep.MaterialService, dep.Logger)
	campaignHandler := handlers.NewCampaignHandler(dep.CampaignService, dep.Logger)
	commandHandler := handlers.NewCommandHandler(dep.CommandService, dep.SnapshotTimeout, dep.Logger)

	v1 := r.Group("/api/v1")
	{
		devices := v1.Group("/devices")
		{
			devices.POST("/register", deviceHandler.Register)
			devices.GET("", deviceHandler.List)
			devices.GET("/stats", deviceHandler.Stats)
			devices.POST("/snapshot/callback", commandHandler.SnapshotCallback)
			devices.GET("/:id", deviceHandler.Get)
			devices.GET("/:id/snapshot", commandHandler.Snapshot)
		}

		commands := v1.Group("/commands")
		{
			commands.POST("", commandHandler.Send)
			commands.GET("", commandHandler.List)
		}

		materials := v1.Group("/materials")
		{
			materials.POST("/upload", materialHandler.Upload)
			materials.GET("", materialHandler.List)
			materials.GET("/:id", materialHandler.Get)
			materials.POST("/:id/status", materialHandler.UpdateStatus)
			materials.POST("/:id/transcode/callback", materialHandler.TranscodeCallback)
			materials.DELETE("/:id", materialHandler.Delete)
		}

		campaigns := v1.Group("/campaigns")
		{
			campaigns.POST("/strategy", campaignHandler.CreateStrategy)
			campaigns.GET("", campaignHandler.List)
			campaigns.POST("/:id/publish", campaignHandler.Publish)
		}
	}
}
