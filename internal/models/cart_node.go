package models

import (
	"time"

	"gorm.io/gorm"
)

// CartNode 购物车树节点（根节点即一个购物车或心愿单）
type CartNode struct {
	ID                uint           `gorm:"primarykey" json:"id"`                                                        // 主键
	ParentEntryID     *uint          `gorm:"index" json:"parententry"`                                                    // 父节点ID（根节点为空）
	ParentRepoID      *uint          `gorm:"index" json:"parentrepo"`                                                     // 所属根节点ID（根节点为空）
	IsRootNode        bool           `gorm:"not null;default:false;index" json:"is_root_node"`                            // 是否根节点
	UserID            *uint          `gorm:"index" json:"user_id,omitempty"`                                              // 根节点所属用户
	SessionKey        string         `gorm:"type:varchar(64);index" json:"-"`                                             // 访客会话标识（仅会话购物车）
	CartType          string         `gorm:"type:varchar(20)" json:"cart_type" validate:"omitempty,oneof=basket wishlist"` // 购物车类型
	Name              string         `gorm:"type:varchar(255)" json:"name"`                                               // 名称
	CustomerComment   string         `gorm:"type:text" json:"customer_comment"`                                           // 客户备注
	ShippingAddressID *uint          `gorm:"index" json:"shipping_address_id"`                                            // 收货地址ID
	ShippingID        *uint          `gorm:"index" json:"shipping_id"`                                                    // 运费方案ID
	DiscountID        *uint          `gorm:"index" json:"discount_id"`                                                    // 优惠ID
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`                                                     // 创建时间
	UpdatedAt         time.Time      `gorm:"index" json:"updated_at"`                                                     // 更新时间
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`                                                              // 软删除时间

	ShippingAddress *Address  `gorm:"foreignKey:ShippingAddressID" json:"shipping_address,omitempty"` // 关联收货地址
	Shipping        *Shipping `gorm:"foreignKey:ShippingID" json:"shipping,omitempty"`               // 关联运费方案
	Discount        *Discount `gorm:"foreignKey:DiscountID" json:"discount,omitempty"`               // 关联优惠
}

// TableName 指定表名
func (CartNode) TableName() string {
	return "cart_nodes"
}

// RepoID 节点所属根节点ID
func (n *CartNode) RepoID() uint {
	if n.IsRootNode || n.ParentRepoID == nil {
		return n.ID
	}
	return *n.ParentRepoID
}

// Validate 结构校验
func (n *CartNode) Validate() error {
	result := validateRecord(n)
	if n.IsRootNode && n.ParentEntryID != nil {
		result.Add("parententry", "root node must not have a parent")
	}
	if !n.IsRootNode && n.ParentEntryID == nil {
		result.Add("parententry", "required")
	}
	return result.orNil()
}
