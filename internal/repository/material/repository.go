package material

import (
	"errors"
	"fmt"

	"github.com/liftsign/controlplane/internal/domains/material"
	"gorm.io/gorm"
)

type GormMaterialRepo struct {
	db *gorm.DB
}

func NewGormMaterialRepo(db *gorm.DB) *GormMaterialRepo {
	return &GormMaterialRepo{db: db}
}

// Create implements material.MaterialRepository
func (g *GormMaterialRepo) Create(m *material.Material) error {
	entity := &MaterialEntity{}
	entity.FromDomain(m)
	if err := g.db.Create(entity).Error; err != nil {
		return fmt.Errorf("failed to create material: %w", err)
	}
	*m = *entity.ToDomain()
	return nil
}

// GetByID implements material.MaterialRepository
func (g *GormMaterialRepo) GetByID(id string) (*material.Material, error) {
	var entity MaterialEntity
	if err := g.db.Where("id = ?", id).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, material.ErrMaterialNotFound
		}
		return nil, fmt.Errorf("failed to get material by ID: %w", err)
	}
	return entity.ToDomain(), nil
}

// List implements material.MaterialRepository
func (g *GormMaterialRepo) List(offset, limit int) ([]material.Material, int64, error) {
	var total int64
	if err := g.db.Model(&MaterialEntity{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count materials: %w", err)
	}

	var entities []MaterialEntity
	if err := g.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&entities).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list materials: %w", err)
	}

	materials := make([]material.Material, len(entities))
	for i, entity := range entities {
		materials[i] = *entity.ToDomain()
	}
	return materials, total, nil
}

// Update implements material.MaterialRepository
func (g *GormMaterialRepo) Update(m *material.Material) error {
	entity := &MaterialEntity{}
	entity.FromDomain(m)
	res := g.db.Model(&MaterialEntity{}).Where("id = ?", m.ID).Updates(map[string]interface{}{
		"status":       entity.Status,
		"type":         entity.Type,
		"duration_sec": entity.DurationSec,
		"extra":        entity.Extra,
		"updated_at":   entity.UpdatedAt,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update material: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return material.ErrMaterialNotFound
	}
	return nil
}

// Delete implements material.MaterialRepository
func (g *GormMaterialRepo) Delete(id string) error {
	res := g.db.Where("id = ?", id).Delete(&MaterialEntity{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete material: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return material.ErrMaterialNotFound
	}
	return nil
}
