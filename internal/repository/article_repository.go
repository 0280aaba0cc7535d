package repository

import (
	"errors"

	"github.com/sveneberth/viur-shop/internal/models"

	"gorm.io/gorm"
)

// ArticleRepository 商品数据访问接口
type ArticleRepository interface {
	GetByID(id uint) (*models.Article, error)
	Create(article *models.Article) error
	Update(article *models.Article) error
	Delete(id uint) error
	List(filter ArticleListFilter) ([]models.Article, int64, error)
	WithTx(tx *gorm.DB) *GormArticleRepository
}

// GormArticleRepository GORM 实现
type GormArticleRepository struct {
	db *gorm.DB
}

// NewArticleRepository 创建商品仓库
func NewArticleRepository(db *gorm.DB) *GormArticleRepository {
	return &GormArticleRepository{db: db}
}

// WithTx 绑定事务
func (r *GormArticleRepository) WithTx(tx *gorm.DB) *GormArticleRepository {
	if tx == nil {
		return r
	}
	return &GormArticleRepository{db: tx}
}

// GetByID 根据ID获取商品（含税率与运费配置）
func (r *GormArticleRepository) GetByID(id uint) (*models.Article, error) {
	var article models.Article
	err := r.db.Preload("Vat").Preload("ShippingConfig.Shippings.Precondition").First(&article, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &article, nil
}

// Create 创建商品
func (r *GormArticleRepository) Create(article *models.Article) error {
	return r.db.Omit("Vat", "ShippingConfig").Create(article).Error
}

// Update 更新商品
func (r *GormArticleRepository) Update(article *models.Article) error {
	return r.db.Omit("Vat", "ShippingConfig").Save(article).Error
}

// Delete 删除商品
func (r *GormArticleRepository) Delete(id uint) error {
	return r.db.Delete(&models.Article{}, id).Error
}

// List 获取商品列表
func (r *GormArticleRepository) List(filter ArticleListFilter) ([]models.Article, int64, error) {
	query := applySearch(r.db.Model(&models.Article{}), filter.Search, "name", "art_no_or_gtin")
	if filter.OnlyListed {
		query = query.Where("listed = ?", true)
	}
	return listPage[models.Article](query, filter.Page, filter.PageSize, "Vat")
}
