package app

import (
	"github.com/go-redis/redis"
	"github.com/liftsign/controlplane/internal/config"
	"github.com/liftsign/controlplane/internal/database"
	"github.com/liftsign/controlplane/internal/domains/campaign"
	"github.com/liftsign/controlplane/internal/domains/command"
	"github.com/liftsign/controlplane/internal/domains/device"
	"github.com/liftsign/controlplane/internal/domains/material"
	"github.com/liftsign/controlplane/internal/gateway"
	campaignRepo "github.com/liftsign/controlplane/internal/repository/campaign"
	deviceRepo "github.com/liftsign/controlplane/internal/repository/device"
	materialRepo "github.com/liftsign/controlplane/internal/repository/material"
	"github.com/liftsign/controlplane/internal/repository/tokenstore"
	"github.com/liftsign/controlplane/internal/server"
	"github.com/liftsign/controlplane/pkg/Logger"
	"gorm.io/gorm"
)

// App represents the application with all its dependencies
type App struct {
	Config *config.Settings
	Logger *Logger.Logger
	DB     *gorm.DB // nil when running on the file-index fallback
	RC     *redis.Client

	Correlator *command.Correlator
	Gateway    *gateway.Client

	ServerDeps server.Dependencies
}

// NewApp creates a new application instance with all dependencies properly wired
func NewApp(cfg *config.Settings, logger *Logger.Logger, rc *redis.Client) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
		RC:     rc,
	}

	if err := app.setupDependencies(); err != nil {
		return nil, err
	}

	return app, nil
}

// setupDependencies initializes all application dependencies. The persistence
// backend is selected here, once: GORM when the database answers, the on-disk
// material index otherwise. Per-call fallback branching is deliberately
// avoided.
func (a *App) setupDependencies() error {
	var (
		materials material.MaterialRepository
		devices   device.DeviceRepository
		campaigns campaign.CampaignRepository
	)

	db, err := database.InitDB(a.Config)
	if err != nil {
		a.Logger.Warnf("database unavailable, falling back to file-backed material index: %v", err)
		fileRepo, ferr := materialRepo.NewFileMaterialRepo(a.Config.Materials.IndexPath)
		if ferr != nil {
			return ferr
		}
		materials = fileRepo
		devices = unavailableDeviceRepo{}
		campaigns = unavailableCampaignRepo{}
	} else {
		a.DB = db
		if err := database.MigrateDB(db); err != nil {
			return err
		}
		materials = materialRepo.NewGormMaterialRepo(db)
		devices = deviceRepo.NewGormDeviceRepo(db)
		campaigns = campaignRepo.NewGormCampaignRepo(db)
	}

	tokens := tokenstore.NewRedisTokenStore(a.RC)

	a.Gateway = gateway.NewClient(a.Config.Gateway.BaseURL, a.Config.Gateway.Timeout(), a.Logger)
	a.Correlator = command.NewCorrelator(a.Logger)

	a.ServerDeps = server.Dependencies{
		DeviceService:   device.NewService(devices, tokens, a.Logger),
		MaterialService: material.NewService(materials, a.Config.Materials.StorageDir, a.Logger),
		CampaignService: campaign.NewService(campaigns, a.Gateway, a.Logger),
		CommandService:  command.NewService(a.Correlator, a.Gateway, a.Logger),
		SnapshotTimeout: a.Config.Snapshot.WaitTimeout(),
		Logger:          a.Logger,
	}

	return nil
}

// GetServerDependencies returns the server dependencies
func (a *App) GetServerDependencies() server.Dependencies {
	return a.ServerDeps
}
