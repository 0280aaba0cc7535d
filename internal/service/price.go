package service

import (
	"context"

	"github.com/sveneberth/viur-shop/internal/constants"
	"github.com/sveneberth/viur-shop/internal/logger"
	"github.com/sveneberth/viur-shop/internal/models"
	"github.com/sveneberth/viur-shop/internal/repository"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Price 单个商品（独立或购物车内）的价格明细
type Price struct {
	Retail      decimal.Decimal
	Recommended decimal.Decimal
	Current     decimal.Decimal
	VatRate     decimal.Decimal // 0~1

	InCart          bool
	CartDiscounts   []models.Discount
	ArticleDiscount *models.Discount
	// BestDiscounts 购物车内最终采用的优惠组合
	BestDiscounts []models.Discount
}

// Saved 节省金额
func (p *Price) Saved() decimal.Decimal {
	return p.Retail.Sub(p.Current)
}

// SavedPercentage 节省比例（0~1），零售价为 0 时返回 0
func (p *Price) SavedPercentage() decimal.Decimal {
	if p.Retail.IsZero() {
		return decimal.Zero
	}
	return p.Saved().Div(p.Retail)
}

// VatValue 当前价格中包含的税额
func (p *Price) VatValue() decimal.Decimal {
	return p.VatRate.Mul(p.Current)
}

// PriceView 价格的对外表示
type PriceView struct {
	Retail             models.Money `json:"retail"`
	Recommended        models.Money `json:"recommended"`
	Current            models.Money `json:"current"`
	Saved              models.Money `json:"saved"`
	SavedPercentage    float64      `json:"saved_percentage"`
	VatRate            float64      `json:"vat_rate"`
	VatValue           models.Money `json:"vat_value"`
	ArticleDiscountID  *uint        `json:"article_discount_id,omitempty"`
	AppliedDiscountIDs []uint       `json:"applied_discount_ids,omitempty"`
}

// View 转换为对外表示
func (p *Price) View() PriceView {
	view := PriceView{
		Retail:          models.NewMoneyFromDecimal(p.Retail),
		Recommended:     models.NewMoneyFromDecimal(p.Recommended),
		Current:         models.NewMoneyFromDecimal(p.Current),
		Saved:           models.NewMoneyFromDecimal(p.Saved()),
		SavedPercentage: p.SavedPercentage().Round(4).InexactFloat64(),
		VatRate:         p.VatRate.Round(4).InexactFloat64(),
		VatValue:        models.NewMoneyFromDecimal(p.VatValue()),
	}
	if p.ArticleDiscount != nil {
		id := p.ArticleDiscount.ID
		view.ArticleDiscountID = &id
	}
	for _, discount := range p.BestDiscounts {
		view.AppliedDiscountIDs = append(view.AppliedDiscountIDs, discount.ID)
	}
	return view
}

// ApplyDiscount 将单个优惠作用在价格上
func ApplyDiscount(discount *models.Discount, price decimal.Decimal) (decimal.Decimal, error) {
	switch discount.DiscountType {
	case constants.DiscountTypeFreeArticle:
		return decimal.Zero, nil
	case constants.DiscountTypeAbsolute:
		return price.Sub(discount.Absolute.Decimal), nil
	case constants.DiscountTypePercentage:
		return price.Sub(price.Mul(discount.Percentage.Decimal).Div(hundred)), nil
	}
	return decimal.Zero, notImplemented("discount type %q", discount.DiscountType)
}

// combinable 判断优惠能否加入组合集合
func combinable(discount *models.Discount) bool {
	switch discount.ConditionOperator {
	case constants.ConditionOperatorAll:
		for _, cond := range discount.Conditions {
			if !cond.ScopeCombinableOtherDiscount {
				return false
			}
		}
		return true
	case constants.ConditionOperatorOneOf:
		if len(discount.Conditions) == 1 {
			return true
		}
		for _, cond := range discount.Conditions {
			if cond.ScopeCombinableOtherDiscount {
				// 多条件中只有部分可叠加时按可叠加处理，保存时已告警
				logger.Debugw("discount_combinable_partial_one_of", "discount_id", discount.ID)
				return true
			}
		}
	}
	return false
}

// partiallyCombinable ONE_OF 多条件中仅部分条件允许叠加
func partiallyCombinable(discount *models.Discount) bool {
	if discount.ConditionOperator != constants.ConditionOperatorOneOf || len(discount.Conditions) < 2 {
		return false
	}
	some, all := false, true
	for _, cond := range discount.Conditions {
		if cond.ScopeCombinableOtherDiscount {
			some = true
		} else {
			all = false
		}
	}
	return some && !all
}

// ChooseBestDiscountSet 在单个优惠与可叠加组合之间选出最低价
// 每个候选集合都从零售价开始依次计算，每一步不低于 0；价格相同时保留先出现的集合
func ChooseBestDiscountSet(retail decimal.Decimal, discounts []models.Discount) (decimal.Decimal, []models.Discount, error) {
	candidates := make([][]models.Discount, 0, len(discounts)+1)
	var combined []models.Discount
	for i := range discounts {
		candidates = append(candidates, discounts[i:i+1])
		if combinable(&discounts[i]) {
			combined = append(combined, discounts[i])
		} else {
			logger.Debugw("discount_not_combinable", "discount_id", discounts[i].ID)
		}
	}
	candidates = append(candidates, combined)

	best := retail
	var bestSet []models.Discount
	for _, candidate := range candidates {
		price := retail
		for i := range candidate {
			next, err := ApplyDiscount(&candidate[i], price)
			if err != nil {
				return decimal.Zero, nil, err
			}
			if next.IsNegative() {
				next = decimal.Zero
			}
			price = next
		}
		if price.LessThan(best) {
			best = price
			bestSet = candidate
		}
	}
	return best, bestSet, nil
}

// PriceResolver 计算商品与购物车条目的价格，结果按请求缓存
type PriceResolver struct {
	tree      *CartTree
	evaluator *DiscountEvaluator
	vatRepo   repository.VatRepository
}

// NewPriceResolver 创建价格计算器
func NewPriceResolver(tree *CartTree, evaluator *DiscountEvaluator, vatRepo repository.VatRepository) *PriceResolver {
	return &PriceResolver{tree: tree, evaluator: evaluator, vatRepo: vatRepo}
}

// ForArticle 独立商品的价格（仅考虑自动优惠）
func (r *PriceResolver) ForArticle(ctx context.Context, rs *RequestState, article *models.Article) (*Price, error) {
	if article == nil {
		return nil, notFound("article")
	}
	key := priceKey{kind: "article", id: article.ID}
	if cached, ok := rs.prices[key]; ok {
		return cached, nil
	}
	price, err := r.build(ctx, rs, article, nil)
	if err != nil {
		return nil, err
	}
	rs.prices[key] = price
	return price, nil
}

// ForItem 购物车条目的价格，汇总祖先节点上作用于商品的优惠
func (r *PriceResolver) ForItem(ctx context.Context, rs *RequestState, item *models.CartItem) (*Price, error) {
	if item == nil {
		return nil, notFound("cart item")
	}
	key := priceKey{kind: constants.SkelTypeLeaf, id: item.ID}
	if cached, ok := rs.prices[key]; ok {
		return cached, nil
	}
	article, err := r.articleForItem(item)
	if err != nil {
		return nil, err
	}
	price, err := r.build(ctx, rs, article, item)
	if err != nil {
		return nil, err
	}
	rs.prices[key] = price
	return price, nil
}

func (r *PriceResolver) build(ctx context.Context, rs *RequestState, article *models.Article, item *models.CartItem) (*Price, error) {
	price := &Price{
		Retail:      article.PriceRetail.Decimal,
		Recommended: article.PriceRecommended.Decimal,
		VatRate:     decimal.Zero,
		InCart:      item != nil,
	}
	if article.Vat != nil {
		price.VatRate = article.Vat.Rate.Decimal.Div(hundred)
	}
	if item != nil {
		discounts, err := r.discountsForItem(rs, item)
		if err != nil {
			return nil, err
		}
		price.CartDiscounts = discounts
	}
	articleDiscount, err := r.articleDiscount(ctx, rs, article, price.Retail)
	if err != nil {
		return nil, err
	}
	price.ArticleDiscount = articleDiscount

	switch {
	case len(price.CartDiscounts) == 0 && price.ArticleDiscount != nil:
		current, err := ApplyDiscount(price.ArticleDiscount, price.Retail)
		if err != nil {
			return nil, err
		}
		price.Current = current
	case len(price.CartDiscounts) > 0:
		current, best, err := ChooseBestDiscountSet(price.Retail, price.CartDiscounts)
		if err != nil {
			return nil, err
		}
		price.Current = current
		price.BestDiscounts = best
	default:
		price.Current = price.Retail
	}
	if price.Current.IsNegative() {
		price.Current = decimal.Zero
	}
	return price, nil
}

// discountsForItem 从根节点到父节点依次收集作用于商品的优惠
func (r *PriceResolver) discountsForItem(rs *RequestState, item *models.CartItem) ([]models.Discount, error) {
	path, err := r.tree.Ancestors(rs, item.ParentEntryID)
	if err != nil {
		return nil, err
	}
	var discounts []models.Discount
	for _, node := range path {
		if node.Discount == nil || !node.Discount.ItemScoped() {
			continue
		}
		discounts = append(discounts, *node.Discount)
	}
	return discounts, nil
}

// articleDiscount 当前可用的自动优惠中价格最低的一个
func (r *PriceResolver) articleDiscount(ctx context.Context, rs *RequestState, article *models.Article, retail decimal.Decimal) (*models.Discount, error) {
	if r.evaluator == nil || !retail.IsPositive() {
		return nil, nil
	}
	automatic, err := r.evaluator.CurrentAutomaticallyDiscounts(ctx, rs)
	if err != nil {
		return nil, err
	}
	var best *models.Discount
	var bestPrice decimal.Decimal
	for i := range automatic {
		ok, _, err := r.evaluator.CanApply(rs, &automatic[i], CanApplyInput{
			Context: constants.DiscountContextAutomaticallyLive,
			Article: article,
		})
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		candidate, err := ApplyDiscount(&automatic[i], retail)
		if err != nil {
			return nil, err
		}
		if best == nil || candidate.LessThan(bestPrice) {
			best = &automatic[i]
			bestPrice = candidate
		}
	}
	return best, nil
}

// articleForItem 优先使用实时商品，商品已删除时退回快照
func (r *PriceResolver) articleForItem(item *models.CartItem) (*models.Article, error) {
	if item.Article != nil {
		return item.Article, nil
	}
	article := &models.Article{
		ID:               item.ArticleID,
		Name:             item.ShopName,
		Description:      item.ShopDescription,
		ArtNoOrGtin:      item.ShopArtNoOrGtin,
		PriceRetail:      item.ShopPriceRetail,
		PriceRecommended: item.ShopPriceRecommended,
		Availability:     item.ShopAvailability,
		Listed:           item.ShopListed,
		Image:            item.ShopImage,
		VatID:            item.ShopVatID,
		ShippingConfigID: item.ShopShippingConfigID,
		IsWeee:           item.ShopIsWeee,
		IsLowPrice:       item.ShopIsLowPrice,
	}
	if item.ShopVatID != nil && r.vatRepo != nil {
		vat, err := r.vatRepo.GetByID(*item.ShopVatID)
		if err != nil {
			return nil, err
		}
		article.Vat = vat
	}
	return article, nil
}
