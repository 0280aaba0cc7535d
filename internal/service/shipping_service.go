package service

import (
	"context"
	"strings"

	"github.com/sveneberth/viur-shop/internal/constants"
	"github.com/sveneberth/viur-shop/internal/logger"
	"github.com/sveneberth/viur-shop/internal/models"
	"github.com/sveneberth/viur-shop/internal/repository"

	"github.com/shopspring/decimal"
)

// ShippingService 运费方案查询（只负责价格与适用性，不对接承运商）
type ShippingService struct {
	shippingRepo repository.ShippingRepository
	tree         *CartTree
	aggregator   *CartAggregator
}

// NewShippingService 创建运费服务
func NewShippingService(shippingRepo repository.ShippingRepository, tree *CartTree, aggregator *CartAggregator) *ShippingService {
	return &ShippingService{
		shippingRepo: shippingRepo,
		tree:         tree,
		aggregator:   aggregator,
	}
}

// shippingTarget 运费适用性判断的上下文，商品与购物车二选一
type shippingTarget struct {
	article *models.Article
	cart    *models.CartNode
	total   decimal.Decimal
	country string
}

func (t shippingTarget) effectiveCountry(rs *RequestState) string {
	if t.country != "" {
		return strings.ToUpper(t.country)
	}
	if t.cart != nil && t.cart.ShippingAddress != nil {
		return strings.ToUpper(t.cart.ShippingAddress.CountryCode)
	}
	return strings.ToUpper(rs.Country)
}

func shippingApplicable(rs *RequestState, shipping *models.Shipping, target shippingTarget) (bool, string) {
	pre := shipping.Precondition
	if pre == nil {
		return true, ""
	}
	if pre.MinimumOrderValue.IsPositive() {
		value := target.total
		if target.article != nil {
			value = target.article.PriceRetail.Decimal
		}
		if value.LessThan(pre.MinimumOrderValue.Decimal) {
			return false, "minimum_order_value"
		}
	}
	if len(pre.Country) > 0 {
		country := target.effectiveCountry(rs)
		if country == "" || !pre.Country.Contains(country) {
			return false, "country"
		}
	}
	if len(pre.ZipCode) > 0 && target.cart != nil {
		address := target.cart.ShippingAddress
		if address == nil || !pre.ZipCode.Contains(strings.TrimSpace(address.ZipCode)) {
			return false, "zip_code"
		}
	}
	return true, ""
}

func (s *ShippingService) configFor(article *models.Article) (*models.ShippingConfig, error) {
	if article.ShippingConfig != nil {
		return article.ShippingConfig, nil
	}
	if article.ShippingConfigID == nil {
		return nil, nil
	}
	return s.shippingRepo.GetConfig(*article.ShippingConfigID)
}

// ChooseShippingForArticle 商品运费配置中最便宜的适用方案
// 未配置或无适用方案时返回 nil
func (s *ShippingService) ChooseShippingForArticle(rs *RequestState, article *models.Article, country string) (*models.Shipping, error) {
	if article == nil {
		return nil, notFound("article")
	}
	config, err := s.configFor(article)
	if err != nil {
		return nil, err
	}
	if config == nil {
		logger.Debugw("article_without_shipping_config", "article_id", article.ID)
		return nil, nil
	}
	var cheapest *models.Shipping
	target := shippingTarget{article: article, country: country}
	for i := range config.Shippings {
		ok, reason := shippingApplicable(rs, &config.Shippings[i], target)
		if !ok {
			logger.Debugw("shipping_not_applicable", "shipping_id", config.Shippings[i].ID, "reason", reason)
			continue
		}
		if cheapest == nil || config.Shippings[i].ShippingCost.LessThan(cheapest.ShippingCost.Decimal) {
			cheapest = &config.Shippings[i]
		}
	}
	if cheapest == nil {
		logger.Warnw("no_suitable_shipping", "article_id", article.ID)
	}
	return cheapest, nil
}

// ShippingsForCart 购物车内全部商品的适用运费方案
// 若有方案命中收货邮编，只返回这些方案
func (s *ShippingService) ShippingsForCart(ctx context.Context, rs *RequestState, cart *models.CartNode, country string) ([]models.Shipping, error) {
	if cart == nil {
		return nil, notFound("cart node")
	}
	var configIDs []uint
	seen := make(map[uint]struct{})
	queue := []uint{cart.ID}
	for len(queue) > 0 {
		nodeID := queue[0]
		queue = queue[1:]
		children, err := s.tree.Children(rs, nodeID)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			switch child.Kind {
			case constants.SkelTypeNode:
				queue = append(queue, child.Node.ID)
			case constants.SkelTypeLeaf:
				id := leafShippingConfigID(child.Leaf)
				if id == 0 {
					continue
				}
				if _, ok := seen[id]; ok {
					continue
				}
				seen[id] = struct{}{}
				configIDs = append(configIDs, id)
			}
		}
	}
	if len(configIDs) == 0 {
		logger.Debugw("cart_without_shipping_config", "cart_id", cart.ID)
		return []models.Shipping{}, nil
	}
	configs, err := s.shippingRepo.ListConfigsByIDs(configIDs)
	if err != nil {
		return nil, err
	}
	totals, err := s.aggregator.Totals(ctx, rs, cart)
	if err != nil {
		return nil, err
	}
	target := shippingTarget{cart: cart, total: totals.TotalDiscountPrice, country: country}

	applicable := make([]models.Shipping, 0)
	for _, config := range configs {
		for i := range config.Shippings {
			if ok, _ := shippingApplicable(rs, &config.Shippings[i], target); ok {
				applicable = append(applicable, config.Shippings[i])
			}
		}
	}

	if address := cart.ShippingAddress; address != nil {
		zipOnly := make([]models.Shipping, 0)
		for _, shipping := range applicable {
			pre := shipping.Precondition
			if pre != nil && len(pre.ZipCode) > 0 && pre.ZipCode.Contains(strings.TrimSpace(address.ZipCode)) {
				zipOnly = append(zipOnly, shipping)
			}
		}
		if len(zipOnly) > 0 {
			logger.Debugw("zip_code_shippings_found", "cart_id", cart.ID, "count", len(zipOnly))
			return zipOnly, nil
		}
	}
	if len(applicable) == 0 {
		logger.Warnw("no_suitable_shipping", "cart_id", cart.ID)
	}
	return applicable, nil
}

func leafShippingConfigID(item *models.CartItem) uint {
	if item.Article != nil && item.Article.ShippingConfigID != nil {
		return *item.Article.ShippingConfigID
	}
	if item.ShopShippingConfigID != nil {
		return *item.ShopShippingConfigID
	}
	return 0
}
