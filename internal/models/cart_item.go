package models

import (
	"time"

	"gorm.io/gorm"
)

// CartItem 购物车叶子节点（商品行）
// shop_* 字段是加入购物车时的商品快照，之后不会随商品自动同步
type CartItem struct {
	ID                   uint           `gorm:"primarykey" json:"id"`                                                  // 主键
	ParentEntryID        uint           `gorm:"index;not null" json:"parententry"`                                     // 父节点ID
	ParentRepoID         uint           `gorm:"index;not null" json:"parentrepo"`                                      // 所属根节点ID
	ArticleID            uint           `gorm:"index;not null" json:"article_id" validate:"required"`                  // 商品ID
	Quantity             int            `gorm:"not null;default:0" json:"quantity" validate:"gte=0"`                   // 数量
	ProjectData          JSON           `gorm:"type:json" json:"project_data"`                                         // 自定义项目数据
	ShopName             string         `gorm:"type:varchar(255)" json:"shop_name"`                                    // 快照：名称
	ShopDescription      string         `gorm:"type:text" json:"shop_description"`                                     // 快照：描述
	ShopPriceRetail      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"shop_price_retail"`        // 快照：零售价
	ShopPriceRecommended Money          `gorm:"type:decimal(20,2);not null;default:0" json:"shop_price_recommended"`   // 快照：建议零售价
	ShopAvailability     string         `gorm:"type:varchar(32)" json:"shop_availability"`                             // 快照：库存状态
	ShopListed           bool           `gorm:"not null;default:false" json:"shop_listed"`                             // 快照：是否上架
	ShopImage            string         `gorm:"type:varchar(500)" json:"shop_image"`                                   // 快照：主图
	ShopArtNoOrGtin      string         `gorm:"type:varchar(64)" json:"shop_art_no_or_gtin"`                           // 快照：货号
	ShopVatID            *uint          `gorm:"index" json:"shop_vat_id"`                                              // 快照：税率ID
	ShopShippingConfigID *uint          `gorm:"index" json:"shop_shipping_config_id"`                                  // 快照：运费配置ID
	ShopIsWeee           bool           `gorm:"not null;default:false" json:"shop_is_weee"`                            // 快照：电子废弃物类
	ShopIsLowPrice       bool           `gorm:"not null;default:false" json:"shop_is_low_price"`                       // 快照：低价商品
	CreatedAt            time.Time      `gorm:"index" json:"created_at"`                                               // 创建时间
	UpdatedAt            time.Time      `gorm:"index" json:"updated_at"`                                               // 更新时间
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`                                                        // 软删除时间

	Article *Article `gorm:"foreignKey:ArticleID" json:"article,omitempty"` // 关联商品（实时数据）
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}

// Validate 结构校验
func (i *CartItem) Validate() error {
	return validateRecord(i).orNil()
}

// CopySnapshot 从商品复制 shop_* 快照字段
func (i *CartItem) CopySnapshot(article *Article) {
	if article == nil {
		return
	}
	i.ShopName = article.Name
	i.ShopDescription = article.Description
	i.ShopPriceRetail = article.PriceRetail
	i.ShopPriceRecommended = article.PriceRecommended
	i.ShopAvailability = article.Availability
	i.ShopListed = article.Listed
	i.ShopImage = article.Image
	i.ShopArtNoOrGtin = article.ArtNoOrGtin
	i.ShopVatID = article.VatID
	i.ShopShippingConfigID = article.ShippingConfigID
	i.ShopIsWeee = article.IsWeee
	i.ShopIsLowPrice = article.IsLowPrice
}
