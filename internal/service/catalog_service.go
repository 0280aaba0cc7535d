package service

import (
	"context"
	"strings"

	"github.com/sveneberth/viur-shop/internal/constants"
	"github.com/sveneberth/viur-shop/internal/logger"
	"github.com/sveneberth/viur-shop/internal/models"
	"github.com/sveneberth/viur-shop/internal/queue"
	"github.com/sveneberth/viur-shop/internal/repository"
)

// CatalogService 商品、税率、运费与优惠的后台维护
type CatalogService struct {
	articleRepo   repository.ArticleRepository
	vatRepo       repository.VatRepository
	shippingRepo  repository.ShippingRepository
	discountRepo  repository.DiscountRepository
	conditionRepo repository.DiscountConditionRepository
	discounts     *DiscountService
	queueClient   *queue.Client
}

// NewCatalogService 创建后台维护服务
func NewCatalogService(
	articleRepo repository.ArticleRepository,
	vatRepo repository.VatRepository,
	shippingRepo repository.ShippingRepository,
	discountRepo repository.DiscountRepository,
	conditionRepo repository.DiscountConditionRepository,
	discounts *DiscountService,
	queueClient *queue.Client,
) *CatalogService {
	return &CatalogService{
		articleRepo:   articleRepo,
		vatRepo:       vatRepo,
		shippingRepo:  shippingRepo,
		discountRepo:  discountRepo,
		conditionRepo: conditionRepo,
		discounts:     discounts,
		queueClient:   queueClient,
	}
}

// ListArticles 商品列表
func (s *CatalogService) ListArticles(filter repository.ArticleListFilter) ([]models.Article, int64, error) {
	return s.articleRepo.List(filter)
}

// GetArticle 获取商品
func (s *CatalogService) GetArticle(id uint) (*models.Article, error) {
	article, err := s.articleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, notFound("article %d", id)
	}
	return article, nil
}

// CreateArticle 创建商品
func (s *CatalogService) CreateArticle(article *models.Article) (*models.Article, error) {
	article.ID = 0
	if err := s.prepareArticle(article); err != nil {
		return nil, err
	}
	if err := s.articleRepo.Create(article); err != nil {
		return nil, err
	}
	return article, nil
}

// UpdateArticle 更新商品
func (s *CatalogService) UpdateArticle(id uint, input *models.Article) (*models.Article, error) {
	current, err := s.GetArticle(id)
	if err != nil {
		return nil, err
	}
	input.ID = current.ID
	input.CreatedAt = current.CreatedAt
	if err := s.prepareArticle(input); err != nil {
		return nil, err
	}
	if err := s.articleRepo.Update(input); err != nil {
		return nil, err
	}
	return input, nil
}

// DeleteArticle 删除商品；已在购物车中的行保留快照
func (s *CatalogService) DeleteArticle(id uint) error {
	if _, err := s.GetArticle(id); err != nil {
		return err
	}
	return s.articleRepo.Delete(id)
}

func (s *CatalogService) prepareArticle(article *models.Article) error {
	article.Name = strings.TrimSpace(article.Name)
	article.Vat = nil
	article.ShippingConfig = nil
	if err := article.Validate(); err != nil {
		return err
	}
	if article.VatID != nil {
		vat, err := s.vatRepo.GetByID(*article.VatID)
		if err != nil {
			return err
		}
		if vat == nil {
			return notFound("vat %d", *article.VatID)
		}
	}
	if article.ShippingConfigID != nil {
		config, err := s.shippingRepo.GetConfig(*article.ShippingConfigID)
		if err != nil {
			return err
		}
		if config == nil {
			return notFound("shipping config %d", *article.ShippingConfigID)
		}
	}
	return nil
}

// ListVats 税率列表
func (s *CatalogService) ListVats() ([]models.Vat, error) {
	return s.vatRepo.List()
}

// CreateVat 创建税率
func (s *CatalogService) CreateVat(vat *models.Vat) (*models.Vat, error) {
	vat.ID = 0
	if err := vat.Validate(); err != nil {
		return nil, err
	}
	if err := s.vatRepo.Create(vat); err != nil {
		return nil, err
	}
	return vat, nil
}

// UpdateVat 更新税率
func (s *CatalogService) UpdateVat(id uint, input *models.Vat) (*models.Vat, error) {
	current, err := s.vatRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, notFound("vat %d", id)
	}
	current.Rate = input.Rate
	if err := current.Validate(); err != nil {
		return nil, err
	}
	if err := s.vatRepo.Update(current); err != nil {
		return nil, err
	}
	return current, nil
}

// DeleteVat 删除税率
func (s *CatalogService) DeleteVat(id uint) error {
	current, err := s.vatRepo.GetByID(id)
	if err != nil {
		return err
	}
	if current == nil {
		return notFound("vat %d", id)
	}
	return s.vatRepo.Delete(id)
}

// ListShippings 运费方案列表
func (s *CatalogService) ListShippings() ([]models.Shipping, error) {
	return s.shippingRepo.List()
}

// CreateShipping 创建运费方案
func (s *CatalogService) CreateShipping(shipping *models.Shipping) (*models.Shipping, error) {
	shipping.ID = 0
	if err := shipping.Validate(); err != nil {
		return nil, err
	}
	if shipping.Precondition != nil {
		shipping.Precondition.ID = 0
		shipping.PreconditionID = nil
	}
	if err := s.shippingRepo.Create(shipping); err != nil {
		return nil, err
	}
	return shipping, nil
}

// UpdateShipping 更新运费方案（适用条件不随之更新）
func (s *CatalogService) UpdateShipping(id uint, input *models.Shipping) (*models.Shipping, error) {
	current, err := s.shippingRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, notFound("shipping %d", id)
	}
	input.ID = current.ID
	input.CreatedAt = current.CreatedAt
	input.Precondition = nil
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if err := s.shippingRepo.Update(input); err != nil {
		return nil, err
	}
	return s.shippingRepo.GetByID(id)
}

// DeleteShipping 删除运费方案
func (s *CatalogService) DeleteShipping(id uint) error {
	current, err := s.shippingRepo.GetByID(id)
	if err != nil {
		return err
	}
	if current == nil {
		return notFound("shipping %d", id)
	}
	return s.shippingRepo.Delete(id)
}

// GetShippingConfig 获取运费配置
func (s *CatalogService) GetShippingConfig(id uint) (*models.ShippingConfig, error) {
	config, err := s.shippingRepo.GetConfig(id)
	if err != nil {
		return nil, err
	}
	if config == nil {
		return nil, notFound("shipping config %d", id)
	}
	return config, nil
}

// CreateShippingConfig 创建运费配置
func (s *CatalogService) CreateShippingConfig(name string, shippingIDs []uint) (*models.ShippingConfig, error) {
	config := &models.ShippingConfig{Name: strings.TrimSpace(name)}
	if err := s.shippingRepo.CreateConfig(config, shippingIDs); err != nil {
		return nil, err
	}
	return s.GetShippingConfig(config.ID)
}

// ListDiscounts 优惠列表
func (s *CatalogService) ListDiscounts(filter repository.DiscountListFilter) ([]models.Discount, int64, error) {
	return s.discountRepo.List(filter)
}

// GetDiscount 获取优惠
func (s *CatalogService) GetDiscount(id uint) (*models.Discount, error) {
	discount, err := s.discountRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if discount == nil {
		return nil, notFound("discount %d", id)
	}
	return discount, nil
}

// CreateDiscount 创建优惠（连同条件）
func (s *CatalogService) CreateDiscount(ctx context.Context, discount *models.Discount) (*models.Discount, error) {
	discount.ID = 0
	for i := range discount.Conditions {
		discount.Conditions[i].ID = 0
	}
	if err := s.prepareDiscount(discount); err != nil {
		return nil, err
	}
	if err := s.discountRepo.Create(discount); err != nil {
		return nil, err
	}
	logger.Infow("discount_created", "discount_id", discount.ID, "type", discount.DiscountType)
	s.afterDiscountChange(ctx, discount)
	return s.GetDiscount(discount.ID)
}

// UpdateDiscount 更新优惠；未携带 ID 的条件视为新增，缺失的条件被删除
func (s *CatalogService) UpdateDiscount(ctx context.Context, id uint, input *models.Discount) (*models.Discount, error) {
	current, err := s.GetDiscount(id)
	if err != nil {
		return nil, err
	}
	owned := make(map[uint]struct{}, len(current.Conditions))
	for _, cond := range current.Conditions {
		owned[cond.ID] = struct{}{}
	}
	for i := range input.Conditions {
		if _, ok := owned[input.Conditions[i].ID]; !ok {
			input.Conditions[i].ID = 0
		}
	}
	input.ID = current.ID
	input.CreatedAt = current.CreatedAt
	if err := s.prepareDiscount(input); err != nil {
		return nil, err
	}
	if err := s.discountRepo.Update(input); err != nil {
		return nil, err
	}
	logger.Infow("discount_updated", "discount_id", input.ID)
	s.afterDiscountChange(ctx, input)
	return s.GetDiscount(id)
}

// DeleteDiscount 删除优惠
func (s *CatalogService) DeleteDiscount(ctx context.Context, id uint) error {
	if _, err := s.GetDiscount(id); err != nil {
		return err
	}
	if err := s.discountRepo.Delete(id); err != nil {
		return err
	}
	logger.Infow("discount_deleted", "discount_id", id)
	s.discounts.Evaluator().AutomaticCache().Purge(ctx)
	return nil
}

func (s *CatalogService) prepareDiscount(discount *models.Discount) error {
	discount.Name = strings.TrimSpace(discount.Name)
	discount.FreeArticle = nil
	for i := range discount.Conditions {
		cond := &discount.Conditions[i]
		cond.ScopeCode = strings.TrimSpace(cond.ScopeCode)
		cond.ParentCodeID = nil
		if cond.QuantityVolume == 0 && cond.ID == 0 {
			cond.QuantityVolume = constants.QuantityVolumeUnlimited
		}
	}
	if err := discount.Validate(); err != nil {
		return err
	}
	if _, ok := discount.ApplicationDomain(); !ok {
		return invalidArgument("discount conditions mix application domains")
	}
	if partiallyCombinable(discount) {
		logger.Warnw("discount_combinable_partial_one_of", "discount_id", discount.ID, "name", discount.Name)
	}
	if discount.FreeArticleID != nil {
		article, err := s.articleRepo.GetByID(*discount.FreeArticleID)
		if err != nil {
			return err
		}
		if article == nil {
			return notFound("article %d", *discount.FreeArticleID)
		}
	}
	return s.checkCodes(discount)
}

// checkCodes 优惠码全局唯一（大小写不敏感）
func (s *CatalogService) checkCodes(discount *models.Discount) error {
	seen := make(map[string]struct{}, len(discount.Conditions))
	for _, cond := range discount.Conditions {
		if cond.CodeType != constants.CodeTypeUniversal {
			continue
		}
		key := strings.ToLower(cond.ScopeCode)
		if _, dup := seen[key]; dup {
			return invalidArgument("duplicate code %q", cond.ScopeCode)
		}
		seen[key] = struct{}{}
		count, err := s.conditionRepo.CountByCode(cond.ScopeCode, cond.ID)
		if err != nil {
			return err
		}
		if count > 0 {
			return invalidArgument("code %q already in use", cond.ScopeCode)
		}
	}
	return nil
}

// afterDiscountChange 清理自动优惠缓存并补齐个人码
func (s *CatalogService) afterDiscountChange(ctx context.Context, discount *models.Discount) {
	s.discounts.Evaluator().AutomaticCache().Purge(ctx)
	for _, cond := range discount.Conditions {
		if cond.CodeType != constants.CodeTypeIndividual || cond.IsSubcode() || cond.ID == 0 {
			continue
		}
		if s.queueClient.Enabled() {
			if err := s.queueClient.EnqueueGenerateCodes(queue.GenerateCodesPayload{ConditionID: cond.ID}); err != nil {
				logger.Warnw("individual_codes_enqueue_failed", "condition_id", cond.ID, "error", err)
			}
			continue
		}
		if _, err := s.discounts.GenerateIndividualCodes(cond.ID); err != nil {
			logger.Warnw("individual_codes_generate_failed", "condition_id", cond.ID, "error", err)
		}
	}
}
