package repository

import (
	"errors"

	"github.com/sveneberth/viur-shop/internal/models"

	"gorm.io/gorm"
)

// ShippingRepository 运费数据访问接口
type ShippingRepository interface {
	GetByID(id uint) (*models.Shipping, error)
	List() ([]models.Shipping, error)
	Create(shipping *models.Shipping) error
	Update(shipping *models.Shipping) error
	Delete(id uint) error
	GetConfig(id uint) (*models.ShippingConfig, error)
	ListConfigsByIDs(ids []uint) ([]models.ShippingConfig, error)
	CreateConfig(config *models.ShippingConfig, shippingIDs []uint) error
}

// GormShippingRepository GORM 实现
type GormShippingRepository struct {
	db *gorm.DB
}

// NewShippingRepository 创建运费仓库
func NewShippingRepository(db *gorm.DB) *GormShippingRepository {
	return &GormShippingRepository{db: db}
}

// GetByID 根据ID获取运费方案
func (r *GormShippingRepository) GetByID(id uint) (*models.Shipping, error) {
	var shipping models.Shipping
	if err := r.db.Preload("Precondition").First(&shipping, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shipping, nil
}

// List 获取全部运费方案
func (r *GormShippingRepository) List() ([]models.Shipping, error) {
	var shippings []models.Shipping
	if err := r.db.Preload("Precondition").Order("id asc").Find(&shippings).Error; err != nil {
		return nil, err
	}
	return shippings, nil
}

// Create 创建运费方案（可带适用条件）
func (r *GormShippingRepository) Create(shipping *models.Shipping) error {
	return r.db.Create(shipping).Error
}

// Update 更新运费方案
func (r *GormShippingRepository) Update(shipping *models.Shipping) error {
	return r.db.Omit("Precondition").Save(shipping).Error
}

// Delete 删除运费方案
func (r *GormShippingRepository) Delete(id uint) error {
	return r.db.Delete(&models.Shipping{}, id).Error
}

// GetConfig 获取运费配置及其方案
func (r *GormShippingRepository) GetConfig(id uint) (*models.ShippingConfig, error) {
	var config models.ShippingConfig
	if err := r.db.Preload("Shippings.Precondition").First(&config, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &config, nil
}

// ListConfigsByIDs 批量获取运费配置
func (r *GormShippingRepository) ListConfigsByIDs(ids []uint) ([]models.ShippingConfig, error) {
	if len(ids) == 0 {
		return []models.ShippingConfig{}, nil
	}
	var configs []models.ShippingConfig
	if err := r.db.Preload("Shippings", func(db *gorm.DB) *gorm.DB {
		return db.Order("shippings.id asc")
	}).Preload("Shippings.Precondition").Where("id IN ?", ids).Order("id asc").Find(&configs).Error; err != nil {
		return nil, err
	}
	return configs, nil
}

// CreateConfig 创建运费配置并关联方案
func (r *GormShippingRepository) CreateConfig(config *models.ShippingConfig, shippingIDs []uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Shippings").Create(config).Error; err != nil {
			return err
		}
		if len(shippingIDs) == 0 {
			return nil
		}
		var shippings []models.Shipping
		if err := tx.Where("id IN ?", shippingIDs).Find(&shippings).Error; err != nil {
			return err
		}
		return tx.Model(config).Association("Shippings").Append(&shippings)
	})
}
