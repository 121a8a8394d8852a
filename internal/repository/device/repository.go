package device

import (
	"errors"
	"fmt"

	"github.com/liftsign/controlplane/internal/domains/device"
	"gorm.io/gorm"
)

type GormDeviceRepo struct {
	db *gorm.DB
}

func NewGormDeviceRepo(db *gorm.DB) *GormDeviceRepo {
	return &GormDeviceRepo{db: db}
}

// Create implements device.DeviceRepository
func (g *GormDeviceRepo) Create(d *device.Device) error {
	entity := &DeviceEntity{}
	entity.FromDomain(d)
	if err := g.db.Create(entity).Error; err != nil {
		return fmt.Errorf("failed to create device: %w", err)
	}
	*d = *entity.ToDomain()
	return nil
}

// GetByID implements device.DeviceRepository
func (g *GormDeviceRepo) GetByID(id string) (*device.Device, error) {
	var entity DeviceEntity
	if err := g.db.Where("id = ?", id).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, device.ErrDeviceNotFound
		}
		return nil, fmt.Errorf("failed to get device by ID: %w", err)
	}
	return entity.ToDomain(), nil
}

// List implements device.DeviceRepository
func (g *GormDeviceRepo) List(offset, limit int, query string) ([]device.Device, int64, error) {
	q := g.db.Model(&DeviceEntity{})
	if query != "" {
		like := "%" + query + "%"
		q = q.Where("id ILIKE ? OR name ILIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count devices: %w", err)
	}

	var entities []DeviceEntity
	if err := q.Order("id ASC").Offset(offset).Limit(limit).Find(&entities).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list devices: %w", err)
	}

	devices := make([]device.Device, len(entities))
	for i, entity := range entities {
		devices[i] = *entity.ToDomain()
	}
	return devices, total, nil
}
