package models

import (
	"time"

	"github.com/sveneberth/viur-shop/internal/constants"

	"gorm.io/gorm"
)

// Discount 优惠活动
type Discount struct {
	ID                    uint           `gorm:"primarykey" json:"id"`                                                                              // 主键
	Name                  string         `gorm:"type:varchar(255);not null" json:"name" validate:"required"`                                        // 名称
	Description           string         `gorm:"type:text" json:"description"`                                                                      // 描述
	DiscountType          string         `gorm:"type:varchar(20);not null" json:"discount_type" validate:"required,oneof=percentage absolute free_article"` // 优惠类型
	Absolute              Money          `gorm:"type:decimal(20,2);not null;default:0" json:"absolute" validate:"gte=0"`                            // 立减金额
	Percentage            Money          `gorm:"type:decimal(5,2);not null;default:0" json:"percentage" validate:"gte=0,lte=100"`                   // 折扣百分比
	ConditionOperator     string         `gorm:"type:varchar(20);not null;default:'one_of'" json:"condition_operator" validate:"required,oneof=one_of all"` // 条件组合方式
	ActivateAutomatically bool           `gorm:"not null;default:false;index" json:"activate_automatically"`                                       // 是否自动生效
	FreeArticleID         *uint          `gorm:"index" json:"free_article_id"`                                                                      // 赠品商品ID
	CreatedAt             time.Time      `gorm:"index" json:"created_at"`                                                                           // 创建时间
	UpdatedAt             time.Time      `gorm:"index" json:"updated_at"`                                                                           // 更新时间
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`                                                                                    // 软删除时间

	Conditions  []DiscountCondition `gorm:"foreignKey:DiscountID" json:"conditions,omitempty"`  // 条件（归属本活动）
	FreeArticle *Article            `gorm:"foreignKey:FreeArticleID" json:"free_article,omitempty"` // 关联赠品
}

// TableName 指定表名
func (Discount) TableName() string {
	return "discounts"
}

// Validate 结构校验
func (d *Discount) Validate() error {
	result := validateRecord(d)
	if d.DiscountType == constants.DiscountTypeFreeArticle && d.FreeArticleID == nil {
		result.Add("free_article_id", "required")
	}
	for i := range d.Conditions {
		if err := d.Conditions[i].validate(); err != nil {
			for _, field := range err.Fields {
				result.Add("conditions."+field, "invalid")
			}
		}
	}
	return result.orNil()
}

// ApplicationDomain 活动的作用域
// 取各条件作用域去掉 ALL 后的唯一值；为空时返回空串，多个不同值时返回 false
func (d *Discount) ApplicationDomain() (string, bool) {
	domains := make(map[string]struct{})
	for _, cond := range d.Conditions {
		if cond.ApplicationDomain == constants.ApplicationDomainAll {
			continue
		}
		domains[cond.ApplicationDomain] = struct{}{}
	}
	if len(domains) > 1 {
		return "", false
	}
	for domain := range domains {
		return domain, true
	}
	return "", true
}

// ItemScoped 是否作用于单个商品行（而不是整个节点合计）
func (d *Discount) ItemScoped() bool {
	if d.DiscountType == constants.DiscountTypeFreeArticle {
		return true
	}
	domain, _ := d.ApplicationDomain()
	return domain == constants.ApplicationDomainArticle
}
