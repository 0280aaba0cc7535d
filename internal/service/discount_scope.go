package service

import (
	"strings"
	"time"

	"github.com/sveneberth/viur-shop/internal/constants"
	"github.com/sveneberth/viur-shop/internal/models"

	"github.com/shopspring/decimal"
)

// scopeCheck 单个条件在一次校验中的输入
type scopeCheck struct {
	rs        *RequestState
	evaluator *DiscountEvaluator
	condition *models.DiscountCondition
	input     *CanApplyInput
}

// discountScope 条件的一个校验维度
// applicable 为 false 时该维度视为满足
type discountScope struct {
	name       string
	contexts   []string
	applicable func(c *scopeCheck) bool
	fulfilled  func(c *scopeCheck) (bool, error)
}

var defaultScopeContexts = []string{
	constants.DiscountContextNormal,
	constants.DiscountContextAutomaticallyLive,
}

var allScopeContexts = []string{
	constants.DiscountContextNormal,
	constants.DiscountContextAutomaticallyPrevalidate,
	constants.DiscountContextAutomaticallyLive,
}

func (s discountScope) allows(context string) bool {
	contexts := s.contexts
	if len(contexts) == 0 {
		contexts = defaultScopeContexts
	}
	for _, item := range contexts {
		if item == context {
			return true
		}
	}
	return false
}

// discountScopes 按顺序注册的全部校验维度
var discountScopes = []discountScope{
	{
		name: "code",
		applicable: func(c *scopeCheck) bool {
			codeType := c.condition.CodeType
			return (codeType == constants.CodeTypeUniversal || codeType == constants.CodeTypeIndividual) &&
				(c.input.RequireCode || strings.TrimSpace(c.input.Code) != "")
		},
		fulfilled: func(c *scopeCheck) (bool, error) {
			code := strings.TrimSpace(c.input.Code)
			if code == "" {
				return false, nil
			}
			if c.condition.CodeType == constants.CodeTypeUniversal {
				return strings.EqualFold(c.condition.ScopeCode, code), nil
			}
			sub, err := c.evaluator.conditionRepo.GetSubcode(c.condition.ID, code)
			if err != nil {
				return false, err
			}
			return sub != nil && sub.QuantityUsed == 0, nil
		},
	},
	{
		name:     "quantity_volume",
		contexts: allScopeContexts,
		applicable: func(c *scopeCheck) bool {
			return c.condition.QuantityVolume != constants.QuantityVolumeUnlimited
		},
		fulfilled: func(c *scopeCheck) (bool, error) {
			return !c.condition.Exhausted(), nil
		},
	},
	{
		name: "minimum_order_value",
		applicable: func(c *scopeCheck) bool {
			return c.condition.ScopeMinimumOrderValue.IsPositive() &&
				(c.input.Article != nil || c.basketCart())
		},
		fulfilled: func(c *scopeCheck) (bool, error) {
			minimum := c.condition.ScopeMinimumOrderValue.Decimal
			if c.basketCart() {
				total := decimal.Zero
				if c.input.CartTotals != nil {
					total = c.input.CartTotals.Total
				}
				return minimum.LessThanOrEqual(total), nil
			}
			if c.input.Article == nil {
				return false, invalidState("missing context article")
			}
			return minimum.LessThanOrEqual(c.input.Article.PriceRetail.Decimal), nil
		},
	},
	{
		name: "date_start",
		applicable: func(c *scopeCheck) bool {
			return c.condition.ScopeDateStart != nil
		},
		fulfilled: func(c *scopeCheck) (bool, error) {
			return !c.condition.ScopeDateStart.After(c.rs.Now), nil
		},
	},
	{
		name:     "date_start_prevalidation",
		contexts: []string{constants.DiscountContextAutomaticallyPrevalidate},
		applicable: func(c *scopeCheck) bool {
			return c.condition.ScopeDateStart != nil
		},
		fulfilled: func(c *scopeCheck) (bool, error) {
			horizon := c.rs.Now.Add(c.evaluator.prevalidationWindow())
			return !c.condition.ScopeDateStart.After(horizon), nil
		},
	},
	{
		name:     "date_end",
		contexts: allScopeContexts,
		applicable: func(c *scopeCheck) bool {
			return c.condition.ScopeDateEnd != nil
		},
		fulfilled: func(c *scopeCheck) (bool, error) {
			return !c.condition.ScopeDateEnd.Before(c.rs.Now), nil
		},
	},
	{
		name: "language",
		applicable: func(c *scopeCheck) bool {
			return len(c.condition.ScopeLanguage) > 0
		},
		fulfilled: func(c *scopeCheck) (bool, error) {
			return c.condition.ScopeLanguage.Contains(c.rs.Language), nil
		},
	},
	{
		name: "country",
		applicable: func(c *scopeCheck) bool {
			return len(c.condition.ScopeCountry) > 0
		},
		fulfilled: func(c *scopeCheck) (bool, error) {
			if cart := c.input.Cart; cart != nil && cart.ShippingAddress != nil {
				return c.condition.ScopeCountry.Contains(strings.ToUpper(cart.ShippingAddress.CountryCode)), nil
			}
			if c.rs.Country == "" {
				return false, nil
			}
			return c.condition.ScopeCountry.Contains(strings.ToUpper(c.rs.Country)), nil
		},
	},
	{
		name: "minimum_quantity",
		applicable: func(c *scopeCheck) bool {
			return c.condition.ScopeMinimumQuantity > 0 && c.input.Cart != nil
		},
		fulfilled: func(c *scopeCheck) (bool, error) {
			quantity := 0
			if c.input.CartTotals != nil {
				quantity = c.input.CartTotals.TotalQuantity
			}
			return c.condition.ScopeMinimumQuantity <= quantity, nil
		},
	},
	{
		name: "customer_group",
		applicable: func(c *scopeCheck) bool {
			return c.condition.ScopeCustomerGroup != "" && c.input.Cart != nil
		},
		fulfilled: func(c *scopeCheck) (bool, error) {
			group := c.condition.ScopeCustomerGroup
			if group == constants.CustomerGroupAll {
				return true, nil
			}
			if c.rs.UserID == nil {
				return false, nil
			}
			orders, err := c.evaluator.orderCount(c.rs, *c.rs.UserID)
			if err != nil {
				return false, err
			}
			switch group {
			case constants.CustomerGroupFirstOrder:
				return orders == 0, nil
			case constants.CustomerGroupFurtherOrder:
				return orders > 0, nil
			}
			return false, notImplemented("customer group %s", group)
		},
	},
	{
		name: "combinable_low_price",
		applicable: func(c *scopeCheck) bool {
			return c.input.Article != nil
		},
		fulfilled: func(c *scopeCheck) (bool, error) {
			return !c.input.Article.IsLowPrice || c.condition.ScopeCombinableLowPrice, nil
		},
	},
	{
		name: "article",
		applicable: func(c *scopeCheck) bool {
			return len(c.condition.ScopeArticle) > 0 && (c.input.Article != nil || c.basketCart())
		},
		fulfilled: func(c *scopeCheck) (bool, error) {
			if c.basketCart() {
				items, err := c.evaluator.cartRepo.ListItemsByRepoAndArticles(c.input.Cart.RepoID(), c.condition.ScopeArticle)
				if err != nil {
					return false, err
				}
				return len(items) > 0, nil
			}
			if c.input.Article == nil {
				return false, invalidState("missing context article")
			}
			return c.condition.ScopeArticle.Contains(c.input.Article.ID), nil
		},
	},
}

func (c *scopeCheck) basketCart() bool {
	return c.input.Cart != nil && c.condition.ApplicationDomain == constants.ApplicationDomainBasket
}

// DefaultPrevalidationWindow 预校验时提前纳入即将开始的活动
const DefaultPrevalidationWindow = 7 * 24 * time.Hour
