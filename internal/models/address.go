package models

import (
	"time"

	"gorm.io/gorm"
)

// Address 收货地址
type Address struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                                     // 主键
	UserID      *uint          `gorm:"index" json:"user_id,omitempty"`                                           // 所属用户
	Name        string         `gorm:"type:varchar(255)" json:"name"`                                            // 收件人
	Street      string         `gorm:"type:varchar(255)" json:"street"`                                          // 街道
	ZipCode     string         `gorm:"type:varchar(32)" json:"zip_code"`                                         // 邮编
	City        string         `gorm:"type:varchar(128)" json:"city"`                                            // 城市
	CountryCode string         `gorm:"type:varchar(8);not null" json:"country_code" validate:"required,len=2"`  // 国家（ISO 3166-1 alpha-2）
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                                                  // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`                                                  // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                                           // 软删除时间
}

// TableName 指定表名
func (Address) TableName() string {
	return "addresses"
}

// Validate 结构校验
func (a *Address) Validate() error {
	return validateRecord(a).orNil()
}
