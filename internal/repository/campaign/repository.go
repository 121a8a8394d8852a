package campaign

import (
	"errors"
	"fmt"

	"github.com/liftsign/controlplane/internal/domains/campaign"
	"gorm.io/gorm"
)

type GormCampaignRepo struct {
	db *gorm.DB
}

func NewGormCampaignRepo(db *gorm.DB) *GormCampaignRepo {
	return &GormCampaignRepo{db: db}
}

// Create implements campaign.CampaignRepository
func (g *GormCampaignRepo) Create(c *campaign.Campaign) error {
	entity := &CampaignEntity{}
	entity.FromDomain(c)
	if err := g.db.Create(entity).Error; err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}
	*c = *entity.ToDomain()
	return nil
}

// GetByID implements campaign.CampaignRepository
func (g *GormCampaignRepo) GetByID(id string) (*campaign.Campaign, error) {
	var entity CampaignEntity
	if err := g.db.Where("id = ?", id).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, campaign.ErrCampaignNotFound
		}
		return nil, fmt.Errorf("failed to get campaign by ID: %w", err)
	}
	return entity.ToDomain(), nil
}

// List implements campaign.CampaignRepository
func (g *GormCampaignRepo) List(offset, limit int) ([]campaign.Campaign, int64, error) {
	var total int64
	if err := g.db.Model(&CampaignEntity{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count campaigns: %w", err)
	}

	var entities []CampaignEntity
	if err := g.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&entities).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list campaigns: %w", err)
	}

	campaigns := make([]campaign.Campaign, len(entities))
	for i, entity := range entities {
		campaigns[i] = *entity.ToDomain()
	}
	return campaigns, total, nil
}
