package models

import (
	"strconv"
	"time"

	"gorm.io/gorm"
)

// Shipping 运费方案
type Shipping struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                                       // 主键
	Name            string         `gorm:"type:varchar(255);not null" json:"name" validate:"required"`                 // 名称
	Description     string         `gorm:"type:text" json:"description"`                                               // 描述
	ShippingCost    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"shipping_cost" validate:"gte=0"` // 运费
	ArtNo           string         `gorm:"type:varchar(64)" json:"art_no"`                                             // 运费货号
	Supplier        string         `gorm:"type:varchar(64)" json:"supplier"`                                           // 承运方
	DeliveryTimeMin int            `gorm:"not null;default:0" json:"delivery_time_min" validate:"gte=0"`               // 最短送达天数
	DeliveryTimeMax int            `gorm:"not null;default:0" json:"delivery_time_max" validate:"gtefield=DeliveryTimeMin"` // 最长送达天数
	PreconditionID  *uint          `gorm:"index" json:"precondition_id"`                                               // 适用条件ID
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                                                    // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`                                                    // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                                             // 软删除时间

	Precondition *ShippingPrecondition `gorm:"foreignKey:PreconditionID" json:"precondition,omitempty"` // 关联适用条件
}

// TableName 指定表名
func (Shipping) TableName() string {
	return "shippings"
}

// Validate 结构校验
func (s *Shipping) Validate() error {
	return validateRecord(s).orNil()
}

// DeliveryTimeRange 送达时间区间文本
func (s *Shipping) DeliveryTimeRange() string {
	if s.DeliveryTimeMin == s.DeliveryTimeMax {
		return strconv.Itoa(s.DeliveryTimeMin)
	}
	return strconv.Itoa(s.DeliveryTimeMin) + " - " + strconv.Itoa(s.DeliveryTimeMax)
}

// ShippingPrecondition 运费适用条件
type ShippingPrecondition struct {
	ID                uint           `gorm:"primarykey" json:"id"`                                                            // 主键
	Name              string         `gorm:"type:varchar(255)" json:"name"`                                                   // 名称
	MinimumOrderValue Money          `gorm:"type:decimal(20,2);not null;default:0" json:"minimum_order_value" validate:"gte=0"` // 最低订单金额
	Country           StringArray    `gorm:"type:text" json:"country"`                                                        // 适用国家
	ZipCode           StringArray    `gorm:"type:text" json:"zip_code"`                                                       // 适用邮编
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`                                                         // 创建时间
	UpdatedAt         time.Time      `gorm:"index" json:"updated_at"`                                                         // 更新时间
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`                                                                  // 软删除时间
}

// TableName 指定表名
func (ShippingPrecondition) TableName() string {
	return "shipping_preconditions"
}

// ShippingConfig 运费配置（一组可选运费方案）
type ShippingConfig struct {
	ID        uint           `gorm:"primarykey" json:"id"`                  // 主键
	Name      string         `gorm:"type:varchar(255)" json:"name"`         // 名称
	CreatedAt time.Time      `gorm:"index" json:"created_at"`               // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`               // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                        // 软删除时间

	Shippings []Shipping `gorm:"many2many:shipping_config_shippings" json:"shippings,omitempty"` // 可选运费方案
}

// TableName 指定表名
func (ShippingConfig) TableName() string {
	return "shipping_configs"
}
