package models

import (
	"time"

	"gorm.io/gorm"
)

// Article 商品（目录侧的实时数据）
type Article struct {
	ID               uint           `gorm:"primarykey" json:"id"`                                                                   // 主键
	Name             string         `gorm:"type:varchar(255);not null" json:"name" validate:"required"`                             // 名称
	Description      string         `gorm:"type:text" json:"description"`                                                           // 描述
	ArtNoOrGtin      string         `gorm:"type:varchar(64);index" json:"art_no_or_gtin"`                                           // 货号或 GTIN
	PriceRetail      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price_retail" validate:"gte=0"`             // 零售价
	PriceRecommended Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price_recommended" validate:"gte=0"`        // 建议零售价
	Availability     string         `gorm:"type:varchar(32);not null;default:'instock'" json:"availability"`                        // 库存状态
	Listed           bool           `gorm:"not null;default:true" json:"listed"`                                                    // 是否上架
	Image            string         `gorm:"type:varchar(500)" json:"image"`                                                         // 主图
	VatID            *uint          `gorm:"index" json:"vat_id"`                                                                    // 税率ID
	ShippingConfigID *uint          `gorm:"index" json:"shipping_config_id"`                                                        // 运费配置ID
	IsWeee           bool           `gorm:"not null;default:false" json:"is_weee"`                                                  // 是否电子废弃物类
	IsLowPrice       bool           `gorm:"not null;default:false" json:"is_low_price"`                                             // 是否低价商品
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`                                                                // 创建时间
	UpdatedAt        time.Time      `gorm:"index" json:"updated_at"`                                                                // 更新时间
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`                                                                         // 软删除时间

	Vat            *Vat            `gorm:"foreignKey:VatID" json:"vat,omitempty"`                       // 关联税率
	ShippingConfig *ShippingConfig `gorm:"foreignKey:ShippingConfigID" json:"shipping_config,omitempty"` // 关联运费配置
}

// TableName 指定表名
func (Article) TableName() string {
	return "articles"
}

// Validate 结构校验
func (a *Article) Validate() error {
	return validateRecord(a).orNil()
}
