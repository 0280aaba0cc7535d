package service

import (
	"context"

	"github.com/sveneberth/viur-shop/internal/constants"
	"github.com/sveneberth/viur-shop/internal/models"

	"github.com/shopspring/decimal"
)

// VatRateRef 节点下出现过的税率
type VatRateRef struct {
	ID   uint         `json:"id"`
	Name string       `json:"name"`
	Rate models.Money `json:"rate"`
}

// NodeTotals 节点的汇总值，每次读取时自底向上重新计算
type NodeTotals struct {
	Total              decimal.Decimal
	TotalDiscountPrice decimal.Decimal
	VatTotal           decimal.Decimal
	VatRates           []VatRateRef
	// TotalQuantity 按商品行计数，不乘以数量
	TotalQuantity int
}

func (t *NodeTotals) addVatRate(ref VatRateRef) {
	for _, existing := range t.VatRates {
		if existing.ID == ref.ID {
			return
		}
	}
	t.VatRates = append(t.VatRates, ref)
}

// CartAggregator 节点汇总计算
type CartAggregator struct {
	tree     *CartTree
	resolver *PriceResolver
}

// NewCartAggregator 创建节点汇总器
func NewCartAggregator(tree *CartTree, resolver *PriceResolver) *CartAggregator {
	return &CartAggregator{tree: tree, resolver: resolver}
}

// Resolver 返回价格计算器
func (a *CartAggregator) Resolver() *PriceResolver {
	return a.resolver
}

// Totals 计算节点汇总
func (a *CartAggregator) Totals(ctx context.Context, rs *RequestState, node *models.CartNode) (*NodeTotals, error) {
	if node == nil {
		return nil, notFound("cart node")
	}
	if cached, ok := rs.totals[node.ID]; ok {
		return cached, nil
	}
	children, err := a.tree.Children(rs, node.ID)
	if err != nil {
		return nil, err
	}
	totals := &NodeTotals{
		Total:              decimal.Zero,
		TotalDiscountPrice: decimal.Zero,
		VatTotal:           decimal.Zero,
	}
	for _, child := range children {
		switch child.Kind {
		case constants.SkelTypeNode:
			sub, err := a.Totals(ctx, rs, child.Node)
			if err != nil {
				return nil, err
			}
			totals.Total = totals.Total.Add(sub.TotalDiscountPrice)
			totals.VatTotal = totals.VatTotal.Add(sub.VatTotal)
			totals.TotalQuantity += sub.TotalQuantity
			for _, ref := range sub.VatRates {
				totals.addVatRate(ref)
			}
		case constants.SkelTypeLeaf:
			price, err := a.resolver.ForItem(ctx, rs, child.Leaf)
			if err != nil {
				return nil, err
			}
			quantity := decimal.NewFromInt(int64(child.Leaf.Quantity))
			totals.Total = totals.Total.Add(price.Current.Mul(quantity))
			totals.VatTotal = totals.VatTotal.Add(price.VatValue().Mul(quantity))
			totals.TotalQuantity++
			if vat := leafVat(child.Leaf); vat != nil {
				totals.addVatRate(VatRateRef{ID: vat.ID, Name: vat.Name, Rate: vat.Rate})
			}
		}
	}

	totals.TotalDiscountPrice = totals.Total
	if node.Discount != nil && !node.Discount.ItemScoped() {
		discounted, err := ApplyDiscount(node.Discount, totals.Total)
		if err != nil {
			return nil, err
		}
		if discounted.IsNegative() {
			discounted = decimal.Zero
		}
		totals.TotalDiscountPrice = discounted
	}
	rs.totals[node.ID] = totals
	return totals, nil
}

func leafVat(item *models.CartItem) *models.Vat {
	if item.Article != nil && item.Article.Vat != nil {
		return item.Article.Vat
	}
	return nil
}
