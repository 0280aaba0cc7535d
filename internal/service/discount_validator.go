package service

import (
	"context"
	"time"

	"github.com/sveneberth/viur-shop/internal/constants"
	"github.com/sveneberth/viur-shop/internal/logger"
	"github.com/sveneberth/viur-shop/internal/models"
	"github.com/sveneberth/viur-shop/internal/repository"
)

// CanApplyInput 一次可用性校验的上下文
type CanApplyInput struct {
	Context     string
	Cart        *models.CartNode
	CartTotals  *NodeTotals
	Article     *models.Article
	Code        string
	RequireCode bool // 为 true 时码类条件未携带优惠码即不满足
}

// ScopeTrace 单个维度的校验结果
type ScopeTrace struct {
	Scope      string `json:"scope"`
	Applicable bool   `json:"applicable"`
	Fulfilled  bool   `json:"fulfilled"`
}

// ConditionTrace 单个条件的校验结果
type ConditionTrace struct {
	ConditionID uint         `json:"condition_id"`
	Fulfilled   bool         `json:"fulfilled"`
	Scopes      []ScopeTrace `json:"scopes"`
}

// ValidatorTrace 优惠校验过程记录，用于诊断
type ValidatorTrace struct {
	DiscountID uint             `json:"discount_id"`
	Context    string           `json:"context"`
	Operator   string           `json:"operator"`
	Fulfilled  bool             `json:"fulfilled"`
	Conditions []ConditionTrace `json:"conditions"`
}

// DiscountEvaluatorOptions 校验器配置
type DiscountEvaluatorOptions struct {
	DebugTrace          bool
	PrevalidationWindow time.Duration
	QueryLimit          int
}

// DiscountEvaluator 优惠可用性校验
type DiscountEvaluator struct {
	discountRepo  repository.DiscountRepository
	conditionRepo repository.DiscountConditionRepository
	cartRepo      repository.CartRepository
	orderRepo     repository.OrderRepository
	automatic     *AutomaticDiscountCache
	options       DiscountEvaluatorOptions
}

// NewDiscountEvaluator 创建优惠校验器
func NewDiscountEvaluator(
	discountRepo repository.DiscountRepository,
	conditionRepo repository.DiscountConditionRepository,
	cartRepo repository.CartRepository,
	orderRepo repository.OrderRepository,
	automatic *AutomaticDiscountCache,
	options DiscountEvaluatorOptions,
) *DiscountEvaluator {
	if automatic == nil {
		automatic = NewAutomaticDiscountCache(DefaultAutomaticDiscountTTL, nil)
	}
	return &DiscountEvaluator{
		discountRepo:  discountRepo,
		conditionRepo: conditionRepo,
		cartRepo:      cartRepo,
		orderRepo:     orderRepo,
		automatic:     automatic,
		options:       options,
	}
}

func (e *DiscountEvaluator) prevalidationWindow() time.Duration {
	if e.options.PrevalidationWindow > 0 {
		return e.options.PrevalidationWindow
	}
	return DefaultPrevalidationWindow
}

func (e *DiscountEvaluator) queryLimit() int {
	if e.options.QueryLimit > 0 {
		return e.options.QueryLimit
	}
	return defaultQueryLimit
}

// CanApply 判断优惠在给定上下文中是否可用
// NORMAL 上下文下自动生效的优惠直接返回不可用
func (e *DiscountEvaluator) CanApply(rs *RequestState, discount *models.Discount, input CanApplyInput) (bool, *ValidatorTrace, error) {
	if discount == nil {
		return false, nil, notFound("discount")
	}
	if input.Context == "" {
		input.Context = constants.DiscountContextNormal
	}
	if input.Context == constants.DiscountContextNormal && discount.ActivateAutomatically {
		return false, nil, nil
	}
	trace, err := e.validate(rs, discount, &input)
	if e.options.DebugTrace {
		logger.Debugw("discount_validation_trace",
			"discount_id", discount.ID,
			"context", input.Context,
			"fulfilled", trace.Fulfilled,
			"trace", trace,
			"error", err,
		)
	}
	if err != nil {
		return false, trace, err
	}
	return trace.Fulfilled, trace, nil
}

func (e *DiscountEvaluator) validate(rs *RequestState, discount *models.Discount, input *CanApplyInput) (*ValidatorTrace, error) {
	trace := &ValidatorTrace{
		DiscountID: discount.ID,
		Context:    input.Context,
		Operator:   discount.ConditionOperator,
	}
	if discount.ConditionOperator != constants.ConditionOperatorOneOf && discount.ConditionOperator != constants.ConditionOperatorAll {
		return trace, invalidState("invalid condition operator %q on discount %d", discount.ConditionOperator, discount.ID)
	}
	// 每个条件都会被校验，应用商品优惠时需要知道全部满足的条件
	anyFulfilled, allFulfilled := false, true
	for i := range discount.Conditions {
		ct, err := e.validateCondition(rs, &discount.Conditions[i], input)
		trace.Conditions = append(trace.Conditions, ct)
		if err != nil {
			return trace, err
		}
		anyFulfilled = anyFulfilled || ct.Fulfilled
		allFulfilled = allFulfilled && ct.Fulfilled
	}
	if discount.ConditionOperator == constants.ConditionOperatorOneOf {
		trace.Fulfilled = anyFulfilled
	} else {
		trace.Fulfilled = allFulfilled
	}
	return trace, nil
}

// FulfilledConditionIDs 满足的条件ID
func (t *ValidatorTrace) FulfilledConditionIDs() map[uint]struct{} {
	ids := make(map[uint]struct{})
	if t == nil {
		return ids
	}
	for _, ct := range t.Conditions {
		if ct.Fulfilled {
			ids[ct.ConditionID] = struct{}{}
		}
	}
	return ids
}

func (e *DiscountEvaluator) validateCondition(rs *RequestState, condition *models.DiscountCondition, input *CanApplyInput) (ConditionTrace, error) {
	ct := ConditionTrace{ConditionID: condition.ID, Fulfilled: true}
	check := &scopeCheck{rs: rs, evaluator: e, condition: condition, input: input}
	for _, scope := range discountScopes {
		if !scope.allows(input.Context) || !scope.applicable(check) {
			continue
		}
		ok, err := scope.fulfilled(check)
		ct.Scopes = append(ct.Scopes, ScopeTrace{Scope: scope.name, Applicable: true, Fulfilled: ok})
		if err != nil {
			ct.Fulfilled = false
			return ct, err
		}
		if !ok {
			ct.Fulfilled = false
			return ct, nil
		}
	}
	return ct, nil
}

func (e *DiscountEvaluator) orderCount(rs *RequestState, userID uint) (int64, error) {
	if count, ok := rs.orderCounts[userID]; ok {
		return count, nil
	}
	if e.orderRepo == nil {
		return 0, nil
	}
	count, err := e.orderRepo.CountByUser(userID)
	if err != nil {
		return 0, err
	}
	rs.orderCounts[userID] = count
	return count, nil
}

// CurrentAutomaticallyDiscounts 当前预校验通过的自动优惠（跨请求缓存）
func (e *DiscountEvaluator) CurrentAutomaticallyDiscounts(ctx context.Context, rs *RequestState) ([]models.Discount, error) {
	return e.automatic.Get(ctx, e.discountRepo.ListByIDs, func() ([]models.Discount, error) {
		return e.prevalidateAutomatic(rs)
	})
}

// RefreshAutomaticallyDiscounts 强制重新计算自动优惠缓存
func (e *DiscountEvaluator) RefreshAutomaticallyDiscounts(ctx context.Context, rs *RequestState) ([]models.Discount, error) {
	return e.automatic.Refresh(ctx, func() ([]models.Discount, error) {
		return e.prevalidateAutomatic(rs)
	})
}

// AutomaticCache 返回自动优惠缓存
func (e *DiscountEvaluator) AutomaticCache() *AutomaticDiscountCache {
	return e.automatic
}

func (e *DiscountEvaluator) prevalidateAutomatic(rs *RequestState) ([]models.Discount, error) {
	candidates, err := e.discountRepo.ListAutomatic(e.queryLimit())
	if err != nil {
		return nil, err
	}
	result := make([]models.Discount, 0, len(candidates))
	for i := range candidates {
		ok, _, err := e.CanApply(rs, &candidates[i], CanApplyInput{
			Context: constants.DiscountContextAutomaticallyPrevalidate,
		})
		if err != nil {
			logger.Warnw("automatic_discount_prevalidate_failed", "discount_id", candidates[i].ID, "error", err)
			continue
		}
		if ok {
			result = append(result, candidates[i])
		}
	}
	logger.Debugw("automatic_discounts_prevalidated", "candidates", len(candidates), "eligible", len(result))
	return result, nil
}

const defaultQueryLimit = 100
