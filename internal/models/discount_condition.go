package models

import (
	"strings"
	"time"

	"github.com/sveneberth/viur-shop/internal/constants"

	"gorm.io/gorm"
)

// DiscountCondition 优惠条件
// 个人码（INDIVIDUAL）会生成若干子条件，子条件通过 ParentCodeID 指回父条件
type DiscountCondition struct {
	ID                           uint           `gorm:"primarykey" json:"id"`                                                                                         // 主键
	DiscountID                   *uint          `gorm:"index" json:"discount_id,omitempty"`                                                                           // 所属优惠（子码为空）
	Name                         string         `gorm:"type:varchar(255)" json:"name"`                                                                                // 名称
	Description                  string         `gorm:"type:text" json:"description"`                                                                                 // 描述
	CodeType                     string         `gorm:"type:varchar(20);not null;default:'none'" json:"code_type" validate:"required,oneof=none universal individual"` // 优惠码类型
	ApplicationDomain            string         `gorm:"type:varchar(20);not null;default:'basket'" json:"application_domain" validate:"required,oneof=basket article all"` // 作用域
	QuantityVolume               int            `gorm:"not null;default:-1" json:"quantity_volume" validate:"gte=-1"`                                                 // 可用次数（-1 不限）
	QuantityUsed                 int            `gorm:"not null;default:0" json:"quantity_used" validate:"gte=0"`                                                     // 已用次数
	IndividualCodesAmount        int            `gorm:"not null;default:0" json:"individual_codes_amount" validate:"gte=0"`                                           // 个人码数量
	IndividualCodesPrefix        string         `gorm:"type:varchar(32);index" json:"individual_codes_prefix"`                                                        // 个人码前缀
	ScopeCode                    string         `gorm:"type:varchar(64);index" json:"scope_code"`                                                                     // 优惠码
	ScopeMinimumOrderValue       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"scope_minimum_order_value" validate:"gte=0"`                      // 最低订单金额
	ScopeDateStart               *time.Time     `gorm:"index" json:"scope_date_start"`                                                                                // 开始时间
	ScopeDateEnd                 *time.Time     `gorm:"index" json:"scope_date_end"`                                                                                  // 结束时间
	ScopeLanguage                StringArray    `gorm:"type:text" json:"scope_language"`                                                                              // 适用语言
	ScopeCountry                 StringArray    `gorm:"type:text" json:"scope_country"`                                                                               // 适用国家
	ScopeMinimumQuantity         int            `gorm:"not null;default:0" json:"scope_minimum_quantity" validate:"gte=0"`                                            // 最少数量
	ScopeCustomerGroup           string         `gorm:"type:varchar(20);not null;default:'all'" json:"scope_customer_group" validate:"omitempty,oneof=all first_order further_order"` // 客户分组
	ScopeCombinableOtherDiscount bool           `gorm:"not null;default:false" json:"scope_combinable_other_discount"`                                               // 可与其他优惠叠加
	ScopeCombinableLowPrice      bool           `gorm:"not null;default:false" json:"scope_combinable_low_price"`                                                    // 可用于低价商品
	ScopeArticle                 UintArray      `gorm:"type:text" json:"scope_article"`                                                                               // 适用商品
	ParentCodeID                 *uint          `gorm:"index" json:"parent_code_id,omitempty"`                                                                        // 父条件（子码）
	CreatedAt                    time.Time      `gorm:"index" json:"created_at"`                                                                                      // 创建时间
	UpdatedAt                    time.Time      `gorm:"index" json:"updated_at"`                                                                                      // 更新时间
	DeletedAt                    gorm.DeletedAt `gorm:"index" json:"-"`                                                                                               // 软删除时间
}

// TableName 指定表名
func (DiscountCondition) TableName() string {
	return "discount_conditions"
}

// IsSubcode 是否为个人码子条件
func (c *DiscountCondition) IsSubcode() bool {
	return c.ParentCodeID != nil
}

// Exhausted 用量是否已达上限
func (c *DiscountCondition) Exhausted() bool {
	return c.QuantityVolume != constants.QuantityVolumeUnlimited && c.QuantityUsed >= c.QuantityVolume
}

// Validate 结构校验
func (c *DiscountCondition) Validate() error {
	return c.validate().orNil()
}

func (c *DiscountCondition) validate() *ValidationError {
	result := validateRecord(c)
	if c.CodeType == constants.CodeTypeIndividual && !c.IsSubcode() {
		if c.IndividualCodesAmount <= 0 {
			result.Add("individual_codes_amount", "individual_codes_amount must be greater than 0")
		}
		if strings.TrimSpace(c.IndividualCodesPrefix) == "" {
			result.Add("individual_codes_prefix", "individual_codes_prefix must be not-empty")
		}
	}
	if c.CodeType == constants.CodeTypeUniversal && strings.TrimSpace(c.ScopeCode) == "" {
		result.Add("scope_code", "required")
	}
	if c.ApplicationDomain == constants.ApplicationDomainArticle && len(c.ScopeArticle) == 0 {
		result.Add("scope_article", "required")
	}
	if c.ScopeDateStart != nil && c.ScopeDateEnd != nil && c.ScopeDateEnd.Before(*c.ScopeDateStart) {
		result.Add("scope_date_end", "must not be before scope_date_start")
	}
	return result
}
