package repository

import (
	"errors"

	"github.com/sveneberth/viur-shop/internal/models"

	"gorm.io/gorm"
)

// CartRepository 购物车树数据访问接口
type CartRepository interface {
	GetNode(id uint) (*models.CartNode, error)
	CreateNode(node *models.CartNode) error
	UpdateNode(node *models.CartNode) error
	DeleteNode(id uint) error
	ListChildNodes(parentID uint, limit int) ([]models.CartNode, error)
	ListRootNodesByUser(userID uint, cartType string) ([]models.CartNode, error)
	FindSessionRoot(sessionKey string) (*models.CartNode, error)
	FindChildNodeByDiscount(parentID, discountID uint) (*models.CartNode, error)
	ListNodesByRepoAndDiscount(repoID, discountID uint) ([]models.CartNode, error)
	SetNodeDiscount(nodeID uint, discountID *uint) error

	GetItem(id uint) (*models.CartItem, error)
	GetItemByArticle(parentID, articleID uint) (*models.CartItem, error)
	CreateItem(item *models.CartItem) error
	UpdateItem(item *models.CartItem) error
	DeleteItem(id uint) error
	ListChildItems(parentID uint, limit int) ([]models.CartItem, error)
	ListItemsByRepoAndArticles(repoID uint, articleIDs []uint) ([]models.CartItem, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormCartRepository
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartRepository) WithTx(tx *gorm.DB) *GormCartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

// Transaction 在事务中执行
func (r *GormCartRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

func (r *GormCartRepository) nodeQuery() *gorm.DB {
	return r.db.Preload("Discount.Conditions").Preload("ShippingAddress").Preload("Shipping")
}

func (r *GormCartRepository) itemQuery() *gorm.DB {
	return r.db.Preload("Article.Vat").Preload("Article.ShippingConfig.Shippings.Precondition")
}

// GetNode 根据ID获取节点
func (r *GormCartRepository) GetNode(id uint) (*models.CartNode, error) {
	var node models.CartNode
	if err := r.nodeQuery().First(&node, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &node, nil
}

// CreateNode 创建节点
func (r *GormCartRepository) CreateNode(node *models.CartNode) error {
	return r.db.Create(node).Error
}

// UpdateNode 更新节点
func (r *GormCartRepository) UpdateNode(node *models.CartNode) error {
	return r.db.Omit("Discount", "ShippingAddress", "Shipping").Save(node).Error
}

// DeleteNode 删除节点（不含子节点）
func (r *GormCartRepository) DeleteNode(id uint) error {
	return r.db.Delete(&models.CartNode{}, id).Error
}

// ListChildNodes 获取直接子节点
func (r *GormCartRepository) ListChildNodes(parentID uint, limit int) ([]models.CartNode, error) {
	var nodes []models.CartNode
	query := r.nodeQuery().Where("parent_entry_id = ?", parentID).Order("id asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&nodes).Error; err != nil {
		return nil, err
	}
	return nodes, nil
}

// ListRootNodesByUser 获取用户的根节点
func (r *GormCartRepository) ListRootNodesByUser(userID uint, cartType string) ([]models.CartNode, error) {
	var nodes []models.CartNode
	query := r.nodeQuery().Where("is_root_node = ? AND user_id = ?", true, userID)
	if cartType != "" {
		query = query.Where("cart_type = ?", cartType)
	}
	if err := query.Order("id asc").Find(&nodes).Error; err != nil {
		return nil, err
	}
	return nodes, nil
}

// FindSessionRoot 根据会话标识查找会话购物车
func (r *GormCartRepository) FindSessionRoot(sessionKey string) (*models.CartNode, error) {
	if sessionKey == "" {
		return nil, nil
	}
	var node models.CartNode
	err := r.nodeQuery().
		Where("is_root_node = ? AND session_key = ?", true, sessionKey).
		Order("id desc").
		First(&node).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &node, nil
}

// FindChildNodeByDiscount 查找携带指定优惠的直接子节点
func (r *GormCartRepository) FindChildNodeByDiscount(parentID, discountID uint) (*models.CartNode, error) {
	var node models.CartNode
	if err := r.db.Where("parent_entry_id = ? AND discount_id = ?", parentID, discountID).First(&node).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &node, nil
}

// ListNodesByRepoAndDiscount 查找同一购物车内携带指定优惠的节点
func (r *GormCartRepository) ListNodesByRepoAndDiscount(repoID, discountID uint) ([]models.CartNode, error) {
	var nodes []models.CartNode
	if err := r.db.Where("parent_repo_id = ? AND discount_id = ?", repoID, discountID).Order("id asc").Find(&nodes).Error; err != nil {
		return nil, err
	}
	return nodes, nil
}

// SetNodeDiscount 设置或清除节点优惠
func (r *GormCartRepository) SetNodeDiscount(nodeID uint, discountID *uint) error {
	return r.db.Model(&models.CartNode{}).Where("id = ?", nodeID).Update("discount_id", discountID).Error
}

// GetItem 根据ID获取商品行
func (r *GormCartRepository) GetItem(id uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.itemQuery().First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// GetItemByArticle 获取节点下指定商品的行
func (r *GormCartRepository) GetItemByArticle(parentID, articleID uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.itemQuery().Where("parent_entry_id = ? AND article_id = ?", parentID, articleID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// CreateItem 创建商品行
func (r *GormCartRepository) CreateItem(item *models.CartItem) error {
	return r.db.Omit("Article").Create(item).Error
}

// UpdateItem 更新商品行
func (r *GormCartRepository) UpdateItem(item *models.CartItem) error {
	return r.db.Omit("Article").Save(item).Error
}

// DeleteItem 删除商品行
func (r *GormCartRepository) DeleteItem(id uint) error {
	return r.db.Delete(&models.CartItem{}, id).Error
}

// ListChildItems 获取节点下的商品行
func (r *GormCartRepository) ListChildItems(parentID uint, limit int) ([]models.CartItem, error) {
	var items []models.CartItem
	query := r.itemQuery().Where("parent_entry_id = ?", parentID).Order("id asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListItemsByRepoAndArticles 获取购物车内指定商品的所有行
func (r *GormCartRepository) ListItemsByRepoAndArticles(repoID uint, articleIDs []uint) ([]models.CartItem, error) {
	if len(articleIDs) == 0 {
		return []models.CartItem{}, nil
	}
	var items []models.CartItem
	if err := r.db.Where("parent_repo_id = ? AND article_id IN ?", repoID, articleIDs).Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
