package database

import (
	campaignRepo "github.com/liftsign/controlplane/internal/repository/campaign"
	deviceRepo "github.com/liftsign/controlplane/internal/repository/device"
	materialRepo "github.com/liftsign/controlplane/internal/repository/material"
	"gorm.io/gorm"
)

func MigrateDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&deviceRepo.DeviceEntity{},
		&materialRepo.MaterialEntity{},
		&campaignRepo.CampaignEntity{},
	)
}
