package repository

import (
	"errors"

	"github.com/sveneberth/viur-shop/internal/models"

	"gorm.io/gorm"
)

// DiscountRepository 优惠活动数据访问接口
type DiscountRepository interface {
	GetByID(id uint) (*models.Discount, error)
	ListByIDs(ids []uint) ([]models.Discount, error)
	ListByConditionIDs(conditionIDs []uint, limit int) ([]models.Discount, error)
	ListAutomatic(limit int) ([]models.Discount, error)
	Create(discount *models.Discount) error
	Update(discount *models.Discount) error
	Delete(id uint) error
	List(filter DiscountListFilter) ([]models.Discount, int64, error)
	WithTx(tx *gorm.DB) *GormDiscountRepository
}

// GormDiscountRepository GORM 实现
type GormDiscountRepository struct {
	db *gorm.DB
}

// NewDiscountRepository 创建优惠仓库
func NewDiscountRepository(db *gorm.DB) *GormDiscountRepository {
	return &GormDiscountRepository{db: db}
}

// WithTx 绑定事务
func (r *GormDiscountRepository) WithTx(tx *gorm.DB) *GormDiscountRepository {
	if tx == nil {
		return r
	}
	return &GormDiscountRepository{db: tx}
}

func (r *GormDiscountRepository) withRelations() *gorm.DB {
	return r.db.Preload("Conditions", func(db *gorm.DB) *gorm.DB {
		return db.Order("id asc")
	}).Preload("FreeArticle")
}

// GetByID 根据ID获取优惠（含条件）
func (r *GormDiscountRepository) GetByID(id uint) (*models.Discount, error) {
	var discount models.Discount
	if err := r.withRelations().First(&discount, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &discount, nil
}

// ListByIDs 批量获取优惠，保持 ID 升序
func (r *GormDiscountRepository) ListByIDs(ids []uint) ([]models.Discount, error) {
	if len(ids) == 0 {
		return []models.Discount{}, nil
	}
	var discounts []models.Discount
	if err := r.withRelations().Where("id IN ?", ids).Order("id asc").Find(&discounts).Error; err != nil {
		return nil, err
	}
	return discounts, nil
}

// ListByConditionIDs 获取挂载了任一条件的优惠
func (r *GormDiscountRepository) ListByConditionIDs(conditionIDs []uint, limit int) ([]models.Discount, error) {
	if len(conditionIDs) == 0 {
		return []models.Discount{}, nil
	}
	sub := r.db.Model(&models.DiscountCondition{}).Select("discount_id").Where("id IN ? AND discount_id IS NOT NULL", conditionIDs)
	var discounts []models.Discount
	query := r.withRelations().Where("id IN (?)", sub).Order("id asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&discounts).Error; err != nil {
		return nil, err
	}
	return discounts, nil
}

// ListAutomatic 获取自动生效的优惠
func (r *GormDiscountRepository) ListAutomatic(limit int) ([]models.Discount, error) {
	var discounts []models.Discount
	query := r.withRelations().Where("activate_automatically = ?", true).Order("id asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&discounts).Error; err != nil {
		return nil, err
	}
	return discounts, nil
}

// Create 创建优惠（连同条件）
func (r *GormDiscountRepository) Create(discount *models.Discount) error {
	return r.db.Omit("FreeArticle").Create(discount).Error
}

// Update 更新优惠；条件整体替换
func (r *GormDiscountRepository) Update(discount *models.Discount) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Conditions", "FreeArticle").Save(discount).Error; err != nil {
			return err
		}
		keep := make([]uint, 0, len(discount.Conditions))
		for i := range discount.Conditions {
			cond := &discount.Conditions[i]
			cond.DiscountID = &discount.ID
			if err := tx.Save(cond).Error; err != nil {
				return err
			}
			keep = append(keep, cond.ID)
		}
		stale := tx.Where("discount_id = ?", discount.ID)
		if len(keep) > 0 {
			stale = stale.Where("id NOT IN ?", keep)
		}
		return stale.Delete(&models.DiscountCondition{}).Error
	})
}

// Delete 删除优惠及其条件
func (r *GormDiscountRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("discount_id = ?", id).Delete(&models.DiscountCondition{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Discount{}, id).Error
	})
}

// List 获取优惠列表
func (r *GormDiscountRepository) List(filter DiscountListFilter) ([]models.Discount, int64, error) {
	query := applySearch(r.db.Model(&models.Discount{}), filter.Search, "name", "description")
	if filter.ActivateAutomatically != nil {
		query = query.Where("activate_automatically = ?", *filter.ActivateAutomatically)
	}
	return listPage[models.Discount](query, filter.Page, filter.PageSize, "Conditions")
}
