package models

import (
	"time"

	"gorm.io/gorm"
)

// Vat 税率
type Vat struct {
	ID        uint           `gorm:"primarykey" json:"id"`                                     // 主键
	Name      string         `gorm:"type:varchar(32);not null" json:"name"`                    // 名称（"{rate} %"）
	Rate      Money          `gorm:"type:decimal(5,2);not null;default:0" json:"rate" validate:"gte=0,lte=100"` // 税率百分比
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                                  // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`                                  // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                           // 软删除时间
}

// TableName 指定表名
func (Vat) TableName() string {
	return "vats"
}

// Validate 结构校验
func (v *Vat) Validate() error {
	return validateRecord(v).orNil()
}

// BeforeSave 名称始终由税率生成
func (v *Vat) BeforeSave(tx *gorm.DB) error {
	v.Name = v.Rate.Decimal.Round(2).String() + " %"
	return nil
}
