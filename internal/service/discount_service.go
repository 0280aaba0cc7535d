package service

import (
	"context"
	"strings"

	"github.com/sveneberth/viur-shop/internal/constants"
	"github.com/sveneberth/viur-shop/internal/logger"
	"github.com/sveneberth/viur-shop/internal/metrics"
	"github.com/sveneberth/viur-shop/internal/models"
	"github.com/sveneberth/viur-shop/internal/repository"

	"github.com/google/uuid"
)

const individualCodeSuffixLength = 8

// ApplyDiscountResult 优惠应用结果
type ApplyDiscountResult struct {
	Discount *models.Discount   `json:"discount"`
	CartNode *models.CartNode   `json:"cart_node,omitempty"`
	CartItem *models.CartItem   `json:"cart_item,omitempty"`
	Nodes    []*models.CartNode `json:"nodes,omitempty"`
}

// RemoveDiscountResult 优惠移除结果
type RemoveDiscountResult struct {
	Discount *models.Discount  `json:"discount"`
	Nodes    []models.CartNode `json:"nodes,omitempty"`
}

// DiscountService 优惠查找、应用与移除
type DiscountService struct {
	discountRepo  repository.DiscountRepository
	conditionRepo repository.DiscountConditionRepository
	cartRepo      repository.CartRepository
	evaluator     *DiscountEvaluator
	carts         *CartService
	metrics       *metrics.ShopMetrics
	queryLimit    int
}

// NewDiscountService 创建优惠服务
func NewDiscountService(
	discountRepo repository.DiscountRepository,
	conditionRepo repository.DiscountConditionRepository,
	cartRepo repository.CartRepository,
	evaluator *DiscountEvaluator,
	carts *CartService,
	shopMetrics *metrics.ShopMetrics,
) *DiscountService {
	return &DiscountService{
		discountRepo:  discountRepo,
		conditionRepo: conditionRepo,
		cartRepo:      cartRepo,
		evaluator:     evaluator,
		carts:         carts,
		metrics:       shopMetrics,
		queryLimit:    evaluator.queryLimit(),
	}
}

// Evaluator 返回可用性校验器
func (s *DiscountService) Evaluator() *DiscountEvaluator {
	return s.evaluator
}

// Search 按优惠 key 或优惠码查找优惠，两者必须且只能提供一个
func (s *DiscountService) Search(code string, discountID *uint) ([]models.Discount, error) {
	code = strings.TrimSpace(code)
	if (code != "") == (discountID != nil) {
		return nil, invalidArgument("need code xor discount_key")
	}
	if discountID != nil {
		discount, err := s.discountRepo.GetByID(*discountID)
		if err != nil {
			return nil, err
		}
		if discount == nil {
			return nil, notFound("discount %d", *discountID)
		}
		return []models.Discount{*discount}, nil
	}

	conditions, err := s.conditionRepo.ListByCode(code, s.queryLimit)
	if err != nil {
		return nil, err
	}
	logger.Debugw("discount_code_conditions", "code", code, "count", len(conditions))
	if len(conditions) == 0 {
		return nil, notFound("discount code")
	}
	ids := make([]uint, 0, len(conditions))
	for _, cond := range conditions {
		if cond.IsSubcode() {
			ids = append(ids, *cond.ParentCodeID)
			continue
		}
		ids = append(ids, cond.ID)
	}
	discounts, err := s.discountRepo.ListByConditionIDs(ids, s.queryLimit)
	if err != nil {
		return nil, err
	}
	if len(discounts) == 0 {
		return nil, notFound("discount code")
	}
	return discounts, nil
}

// CanApplyToCart 在购物车上下文中校验优惠（自动计算购物车汇总）
func (s *DiscountService) CanApplyToCart(ctx context.Context, rs *RequestState, discount *models.Discount, cart *models.CartNode, code, validationContext string) (bool, *ValidatorTrace, error) {
	return s.canApplyToCart(ctx, rs, discount, cart, CanApplyInput{Context: validationContext, Code: code})
}

func (s *DiscountService) canApplyToCart(ctx context.Context, rs *RequestState, discount *models.Discount, cart *models.CartNode, input CanApplyInput) (bool, *ValidatorTrace, error) {
	if cart != nil {
		totals, err := s.carts.Aggregator().Totals(ctx, rs, cart)
		if err != nil {
			return false, nil, err
		}
		input.Cart = cart
		input.CartTotals = totals
	}
	return s.evaluator.CanApply(rs, discount, input)
}

// Apply 将优惠应用到当前会话购物车
func (s *DiscountService) Apply(ctx context.Context, rs *RequestState, code string, discountID *uint) (*ApplyDiscountResult, error) {
	return s.apply(ctx, rs, code, discountID, false)
}

// ApplyForCustomer 顾客侧应用优惠；带码条件必须提供优惠码，不能仅凭 discount_key 兑换
func (s *DiscountService) ApplyForCustomer(ctx context.Context, rs *RequestState, code string, discountID *uint) (*ApplyDiscountResult, error) {
	return s.apply(ctx, rs, code, discountID, true)
}

func (s *DiscountService) apply(ctx context.Context, rs *RequestState, code string, discountID *uint, requireCode bool) (result *ApplyDiscountResult, err error) {
	var discountType, domain string
	defer func() {
		s.metrics.ObserveDiscountApply(discountType, domain, err)
	}()

	cart, err := s.carts.CurrentSessionCart(rs)
	if err != nil {
		return nil, err
	}
	candidates, err := s.Search(code, discountID)
	if err != nil {
		return nil, err
	}

	var discount *models.Discount
	var trace *ValidatorTrace
	for i := range candidates {
		ok, tr, err := s.canApplyToCart(ctx, rs, &candidates[i], cart, CanApplyInput{
			Context:     constants.DiscountContextNormal,
			Code:        code,
			RequireCode: requireCode,
		})
		if err != nil {
			return nil, err
		}
		if ok {
			discount = &candidates[i]
			trace = tr
			break
		}
		logger.Infow("discount_not_applicable", "discount_id", candidates[i].ID, "cart_id", cart.ID)
	}
	if discount == nil {
		return nil, notFound("no valid code found")
	}
	discountType = discount.DiscountType

	appDomain, ok := discount.ApplicationDomain()
	if !ok {
		return nil, invalidState("application_domain not set on discount %d", discount.ID)
	}
	domain = appDomain

	switch {
	case discount.DiscountType == constants.DiscountTypeFreeArticle:
		return s.applyFreeArticle(rs, cart, discount)
	case appDomain == constants.ApplicationDomainBasket &&
		(discount.DiscountType == constants.DiscountTypePercentage || discount.DiscountType == constants.DiscountTypeAbsolute):
		id := discount.ID
		node, err := s.carts.CartUpdate(rs, cart.ID, CartNodeInput{}.withDiscount(id))
		if err != nil {
			return nil, err
		}
		logger.Infow("discount_applied_to_basket", "discount_id", discount.ID, "cart_id", cart.ID)
		return &ApplyDiscountResult{Discount: discount, CartNode: node}, nil
	case appDomain == constants.ApplicationDomainArticle:
		return s.applyToArticles(rs, cart, discount, trace)
	}
	return nil, notImplemented("discount type %s with application domain %q", discount.DiscountType, appDomain)
}

func (s *DiscountService) applyFreeArticle(rs *RequestState, cart *models.CartNode, discount *models.Discount) (*ApplyDiscountResult, error) {
	if discount.FreeArticleID == nil {
		return nil, invalidState("free article not set on discount %d", discount.ID)
	}
	name := "Free Article"
	id := discount.ID
	node, err := s.carts.CartAdd(rs, CartNodeInput{ParentID: &cart.ID, Name: &name}.withDiscount(id))
	if err != nil {
		return nil, err
	}
	item, err := s.carts.AddOrUpdateArticle(rs, AddOrUpdateArticleInput{
		ArticleID:    *discount.FreeArticleID,
		ParentID:     node.ID,
		Quantity:     1,
		QuantityMode: constants.QuantityModeReplace,
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("free_article_discount_applied", "discount_id", discount.ID, "node_id", node.ID)
	return &ApplyDiscountResult{Discount: discount, CartNode: node, CartItem: item}, nil
}

// applyToArticles 为每个命中的商品条目套一层携带优惠的节点
func (s *DiscountService) applyToArticles(rs *RequestState, cart *models.CartNode, discount *models.Discount, trace *ValidatorTrace) (*ApplyDiscountResult, error) {
	fulfilled := trace.FulfilledConditionIDs()
	result := &ApplyDiscountResult{Discount: discount}
	for _, cond := range discount.Conditions {
		if _, ok := fulfilled[cond.ID]; !ok || len(cond.ScopeArticle) == 0 {
			continue
		}
		items, err := s.cartRepo.ListItemsByRepoAndArticles(cart.ID, cond.ScopeArticle)
		if err != nil {
			return nil, err
		}
		for i := range items {
			carries, err := s.ancestorCarries(rs, items[i].ParentEntryID, discount.ID)
			if err != nil {
				return nil, err
			}
			if carries {
				logger.Debugw("discount_already_on_ancestor", "discount_id", discount.ID, "item_id", items[i].ID)
				continue
			}
			node, err := s.carts.AddNewParent(rs, &items[i], "Discount "+discount.Name)
			if err != nil {
				return nil, err
			}
			id := discount.ID
			node, err = s.carts.CartUpdate(rs, node.ID, CartNodeInput{}.withDiscount(id))
			if err != nil {
				return nil, err
			}
			result.Nodes = append(result.Nodes, node)
		}
	}
	if len(result.Nodes) == 0 {
		return nil, notFound("expected article is missing on cart (or discount exist already)")
	}
	logger.Infow("article_discount_applied", "discount_id", discount.ID, "nodes", len(result.Nodes))
	return result, nil
}

func (s *DiscountService) ancestorCarries(rs *RequestState, nodeID, discountID uint) (bool, error) {
	path, err := s.carts.Tree().Ancestors(rs, nodeID)
	if err != nil {
		return false, err
	}
	for _, node := range path {
		if node.DiscountID != nil && *node.DiscountID == discountID {
			return true, nil
		}
	}
	return false, nil
}

// Remove 从当前会话购物车移除优惠
func (s *DiscountService) Remove(ctx context.Context, rs *RequestState, discountID uint) (result *RemoveDiscountResult, err error) {
	defer func() {
		s.metrics.ObserveDiscountRemove(err)
	}()

	cart, err := s.carts.CurrentSessionCart(rs)
	if err != nil {
		return nil, err
	}
	discount, err := s.discountRepo.GetByID(discountID)
	if err != nil {
		return nil, err
	}
	if discount == nil {
		return nil, notFound("discount %d", discountID)
	}
	domain, ok := discount.ApplicationDomain()
	if !ok {
		return nil, invalidState("application_domain not set on discount %d", discount.ID)
	}

	switch {
	case discount.DiscountType == constants.DiscountTypeFreeArticle:
		node, err := s.cartRepo.FindChildNodeByDiscount(cart.ID, discount.ID)
		if err != nil {
			return nil, err
		}
		if node == nil {
			return nil, notFound("discount %d not applied", discount.ID)
		}
		if err := s.carts.CartRemove(rs, node.ID); err != nil {
			return nil, err
		}
		return &RemoveDiscountResult{Discount: discount, Nodes: []models.CartNode{*node}}, nil
	case domain == constants.ApplicationDomainBasket:
		if cart.DiscountID == nil || *cart.DiscountID != discount.ID {
			return nil, notFound("discount %d not applied", discount.ID)
		}
		none := uint(0)
		if _, err := s.carts.CartUpdate(rs, cart.ID, CartNodeInput{}.withDiscount(none)); err != nil {
			return nil, err
		}
		return &RemoveDiscountResult{Discount: discount}, nil
	case domain == constants.ApplicationDomainArticle:
		nodes, err := s.cartRepo.ListNodesByRepoAndDiscount(cart.ID, discount.ID)
		if err != nil {
			return nil, err
		}
		if len(nodes) == 0 {
			return nil, notFound("discount not used by any cart")
		}
		// 包装节点保留在原处
		for _, node := range nodes {
			if err := s.cartRepo.SetNodeDiscount(node.ID, nil); err != nil {
				return nil, err
			}
		}
		rs.InvalidateCart()
		return &RemoveDiscountResult{Discount: discount, Nodes: nodes}, nil
	}
	return nil, notImplemented("discount type %s with application domain %q", discount.DiscountType, domain)
}

// MarkConditionsUsed 下单后累加优惠各条件的用量，个人码同时标记子码
func (s *DiscountService) MarkConditionsUsed(discountID uint, code string) error {
	discount, err := s.discountRepo.GetByID(discountID)
	if err != nil {
		return err
	}
	if discount == nil {
		return notFound("discount %d", discountID)
	}
	ids := make([]uint, 0, len(discount.Conditions)+1)
	for _, cond := range discount.Conditions {
		ids = append(ids, cond.ID)
		if cond.CodeType != constants.CodeTypeIndividual || strings.TrimSpace(code) == "" {
			continue
		}
		sub, err := s.conditionRepo.GetSubcode(cond.ID, code)
		if err != nil {
			return err
		}
		if sub != nil {
			ids = append(ids, sub.ID)
		}
	}
	if err := s.conditionRepo.IncrementUsed(ids, 1); err != nil {
		return err
	}
	logger.Infow("discount_conditions_used", "discount_id", discountID, "conditions", ids)
	return nil
}

// GenerateIndividualCodes 为个人码条件补齐子码，返回新生成的数量
func (s *DiscountService) GenerateIndividualCodes(conditionID uint) (int, error) {
	cond, err := s.conditionRepo.GetByID(conditionID)
	if err != nil {
		return 0, err
	}
	if cond == nil {
		return 0, notFound("discount condition %d", conditionID)
	}
	if cond.CodeType != constants.CodeTypeIndividual || cond.IsSubcode() {
		return 0, invalidArgument("condition %d does not generate individual codes", conditionID)
	}
	existing, err := s.conditionRepo.CountSubcodes(cond.ID)
	if err != nil {
		return 0, err
	}
	missing := cond.IndividualCodesAmount - int(existing)
	if missing <= 0 {
		return 0, nil
	}

	parentID := cond.ID
	seen := make(map[string]struct{}, missing)
	subcodes := make([]models.DiscountCondition, 0, missing)
	for len(subcodes) < missing {
		code := cond.IndividualCodesPrefix + randomCodeSuffix()
		key := strings.ToLower(code)
		if _, dup := seen[key]; dup {
			continue
		}
		count, err := s.conditionRepo.CountByCode(code, 0)
		if err != nil {
			return 0, err
		}
		if count > 0 {
			continue
		}
		seen[key] = struct{}{}
		subcodes = append(subcodes, models.DiscountCondition{
			CodeType:          constants.CodeTypeIndividual,
			ApplicationDomain: cond.ApplicationDomain,
			ScopeCode:         code,
			QuantityVolume:    1,
			ParentCodeID:      &parentID,
		})
	}
	if err := s.conditionRepo.CreateBatch(subcodes); err != nil {
		return 0, err
	}
	s.metrics.AddCodesGenerated(len(subcodes))
	logger.Infow("individual_codes_generated", "condition_id", cond.ID, "count", len(subcodes))
	return len(subcodes), nil
}

func randomCodeSuffix() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:individualCodeSuffixLength])
}
