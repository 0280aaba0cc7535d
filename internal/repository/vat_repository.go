package repository

import (
	"errors"

	"github.com/sveneberth/viur-shop/internal/models"

	"gorm.io/gorm"
)

// VatRepository 税率数据访问接口
type VatRepository interface {
	GetByID(id uint) (*models.Vat, error)
	List() ([]models.Vat, error)
	Create(vat *models.Vat) error
	Update(vat *models.Vat) error
	Delete(id uint) error
}

// GormVatRepository GORM 实现
type GormVatRepository struct {
	db *gorm.DB
}

// NewVatRepository 创建税率仓库
func NewVatRepository(db *gorm.DB) *GormVatRepository {
	return &GormVatRepository{db: db}
}

// GetByID 根据ID获取税率
func (r *GormVatRepository) GetByID(id uint) (*models.Vat, error) {
	var vat models.Vat
	if err := r.db.First(&vat, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &vat, nil
}

// List 获取全部税率
func (r *GormVatRepository) List() ([]models.Vat, error) {
	var vats []models.Vat
	if err := r.db.Order("rate asc").Find(&vats).Error; err != nil {
		return nil, err
	}
	return vats, nil
}

// Create 创建税率
func (r *GormVatRepository) Create(vat *models.Vat) error {
	return r.db.Create(vat).Error
}

// Update 更新税率
func (r *GormVatRepository) Update(vat *models.Vat) error {
	return r.db.Save(vat).Error
}

// Delete 删除税率
func (r *GormVatRepository) Delete(id uint) error {
	return r.db.Delete(&models.Vat{}, id).Error
}
