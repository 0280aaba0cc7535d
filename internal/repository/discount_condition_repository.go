package repository

import (
	"errors"
	"strings"

	"github.com/sveneberth/viur-shop/internal/models"

	"gorm.io/gorm"
)

// DiscountConditionRepository 优惠条件数据访问接口
type DiscountConditionRepository interface {
	GetByID(id uint) (*models.DiscountCondition, error)
	ListByCode(code string, limit int) ([]models.DiscountCondition, error)
	GetSubcode(parentID uint, code string) (*models.DiscountCondition, error)
	CountByCode(code string, excludeID uint) (int64, error)
	CountSubcodes(parentID uint) (int64, error)
	CreateBatch(conditions []models.DiscountCondition) error
	IncrementUsed(ids []uint, delta int) error
}

// GormDiscountConditionRepository GORM 实现
type GormDiscountConditionRepository struct {
	db *gorm.DB
}

// NewDiscountConditionRepository 创建优惠条件仓库
func NewDiscountConditionRepository(db *gorm.DB) *GormDiscountConditionRepository {
	return &GormDiscountConditionRepository{db: db}
}

// GetByID 根据ID获取条件
func (r *GormDiscountConditionRepository) GetByID(id uint) (*models.DiscountCondition, error) {
	var cond models.DiscountCondition
	if err := r.db.First(&cond, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cond, nil
}

// ListByCode 按优惠码（不区分大小写）查找条件，包括个人子码
func (r *GormDiscountConditionRepository) ListByCode(code string, limit int) ([]models.DiscountCondition, error) {
	normalized := strings.ToLower(strings.TrimSpace(code))
	if normalized == "" {
		return []models.DiscountCondition{}, nil
	}
	var conds []models.DiscountCondition
	query := r.db.Where("LOWER(scope_code) = ?", normalized).Order("id asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&conds).Error; err != nil {
		return nil, err
	}
	return conds, nil
}

// GetSubcode 获取父条件下指定码的子条件
func (r *GormDiscountConditionRepository) GetSubcode(parentID uint, code string) (*models.DiscountCondition, error) {
	var cond models.DiscountCondition
	err := r.db.Where("parent_code_id = ? AND LOWER(scope_code) = ?", parentID, strings.ToLower(strings.TrimSpace(code))).First(&cond).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cond, nil
}

// CountByCode 统计使用同一优惠码的条件数量
func (r *GormDiscountConditionRepository) CountByCode(code string, excludeID uint) (int64, error) {
	var count int64
	query := r.db.Model(&models.DiscountCondition{}).Where("LOWER(scope_code) = ?", strings.ToLower(strings.TrimSpace(code)))
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountSubcodes 统计已生成的子码数量
func (r *GormDiscountConditionRepository) CountSubcodes(parentID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.DiscountCondition{}).Where("parent_code_id = ?", parentID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CreateBatch 批量创建条件
func (r *GormDiscountConditionRepository) CreateBatch(conditions []models.DiscountCondition) error {
	if len(conditions) == 0 {
		return nil
	}
	return r.db.CreateInBatches(conditions, 100).Error
}

// IncrementUsed 累加条件用量
func (r *GormDiscountConditionRepository) IncrementUsed(ids []uint, delta int) error {
	if len(ids) == 0 || delta == 0 {
		return nil
	}
	return r.db.Model(&models.DiscountCondition{}).
		Where("id IN ?", ids).
		UpdateColumn("quantity_used", gorm.Expr("quantity_used + ?", delta)).Error
}
