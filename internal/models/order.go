package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单（仅记录下单结果，用于客户分组判定）
type Order struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                     // 主键
	OrderNo     string         `gorm:"uniqueIndex;not null" json:"order_no"`                     // 订单编号
	UserID      uint           `gorm:"index;not null" json:"user_id"`                            // 用户ID
	CartID      uint           `gorm:"index;not null" json:"cart_id"`                            // 下单时的购物车根节点
	Status      string         `gorm:"index;not null" json:"status"`                             // 订单状态
	TotalAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"` // 实付金额
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                                  // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`                                  // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                           // 软删除时间
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
