package service

import (
	"context"

	"github.com/sveneberth/viur-shop/internal/constants"
	"github.com/sveneberth/viur-shop/internal/models"
)

// CartNodeView 节点及其汇总值
type CartNodeView struct {
	SkelType string `json:"skel_type"`
	*models.CartNode
	Total              models.Money `json:"total"`
	TotalDiscountPrice models.Money `json:"total_discount_price"`
	VatTotal           models.Money `json:"vat_total"`
	VatRate            []VatRateRef `json:"vat_rate"`
	TotalQuantity      int          `json:"total_quantity"`
}

// CartItemView 商品条目及其价格与运费
type CartItemView struct {
	SkelType string `json:"skel_type"`
	*models.CartItem
	Price    PriceView        `json:"price"`
	Shipping *models.Shipping `json:"shipping"`
}

// ArticleView 独立商品及其价格
type ArticleView struct {
	*models.Article
	Price    PriceView        `json:"price"`
	Shipping *models.Shipping `json:"shipping"`
}

// RootNodeView 可用的根节点
type RootNodeView struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	CartType string `json:"cart_type"`
}

// NodeView 构建节点视图
func (s *CartService) NodeView(ctx context.Context, rs *RequestState, node *models.CartNode) (*CartNodeView, error) {
	totals, err := s.aggregator.Totals(ctx, rs, node)
	if err != nil {
		return nil, err
	}
	rates := totals.VatRates
	if rates == nil {
		rates = []VatRateRef{}
	}
	return &CartNodeView{
		SkelType:           constants.SkelTypeNode,
		CartNode:           node,
		Total:              models.NewMoneyFromDecimal(totals.Total),
		TotalDiscountPrice: models.NewMoneyFromDecimal(totals.TotalDiscountPrice),
		VatTotal:           models.NewMoneyFromDecimal(totals.VatTotal),
		VatRate:            rates,
		TotalQuantity:      totals.TotalQuantity,
	}, nil
}

// ItemView 构建商品条目视图
func (s *CartService) ItemView(ctx context.Context, rs *RequestState, item *models.CartItem) (*CartItemView, error) {
	price, err := s.aggregator.Resolver().ForItem(ctx, rs, item)
	if err != nil {
		return nil, err
	}
	view := &CartItemView{
		SkelType: constants.SkelTypeLeaf,
		CartItem: item,
		Price:    price.View(),
	}
	if s.shipping != nil && item.Article != nil {
		shipping, err := s.shipping.ChooseShippingForArticle(rs, item.Article, "")
		if err != nil {
			return nil, err
		}
		view.Shipping = shipping
	}
	return view, nil
}

// ChildView 按类型构建子元素视图
func (s *CartService) ChildView(ctx context.Context, rs *RequestState, child CartChild) (interface{}, error) {
	switch child.Kind {
	case constants.SkelTypeNode:
		return s.NodeView(ctx, rs, child.Node)
	case constants.SkelTypeLeaf:
		return s.ItemView(ctx, rs, child.Leaf)
	}
	return nil, invalidState("unknown cart child kind %q", child.Kind)
}

// ArticleView 构建独立商品视图
func (s *CartService) ArticleView(ctx context.Context, rs *RequestState, articleID uint) (*ArticleView, error) {
	article, err := s.articleRepo.GetByID(articleID)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, notFound("article %d", articleID)
	}
	price, err := s.aggregator.Resolver().ForArticle(ctx, rs, article)
	if err != nil {
		return nil, err
	}
	view := &ArticleView{Article: article, Price: price.View()}
	if s.shipping != nil {
		shipping, err := s.shipping.ChooseShippingForArticle(rs, article, "")
		if err != nil {
			return nil, err
		}
		view.Shipping = shipping
	}
	return view, nil
}
