package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sveneberth/viur-shop/internal/config"
	"github.com/sveneberth/viur-shop/internal/constants"
	"github.com/sveneberth/viur-shop/internal/metrics"
	"github.com/sveneberth/viur-shop/internal/models"
	"github.com/sveneberth/viur-shop/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type shopTestEnv struct {
	db        *gorm.DB
	metrics   *metrics.ShopMetrics
	evaluator *DiscountEvaluator
	resolver  *PriceResolver
	shipping  *ShippingService
	carts     *CartService
	discounts *DiscountService
	catalog   *CatalogService
	users     *UserAuthService
}

func setupShopTest(t *testing.T) *shopTestEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{DisableForeignKeyConstraintWhenMigrating: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.AutoMigrateWith(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	cfg := &config.Config{
		UserJWT: config.JWTConfig{SecretKey: "user-test-secret-0123456789abcdef", ExpireHours: 1, RememberMeExpireHours: 24},
		Shop:    config.ShopConfig{Language: "de", Country: "DE"},
		Security: config.SecurityConfig{
			PasswordPolicy: config.PasswordPolicyConfig{MinLength: 8, RequireNumber: true},
		},
	}

	cartRepo := repository.NewCartRepository(db)
	articleRepo := repository.NewArticleRepository(db)
	vatRepo := repository.NewVatRepository(db)
	shippingRepo := repository.NewShippingRepository(db)
	discountRepo := repository.NewDiscountRepository(db)
	conditionRepo := repository.NewDiscountConditionRepository(db)
	userRepo := repository.NewUserRepository(db)

	env := &shopTestEnv{db: db, metrics: metrics.NewShopMetrics(prometheus.NewRegistry())}
	env.evaluator = NewDiscountEvaluator(
		discountRepo,
		conditionRepo,
		cartRepo,
		repository.NewOrderRepository(db),
		NewAutomaticDiscountCache(time.Hour, nil),
		DiscountEvaluatorOptions{QueryLimit: 100},
	)
	tree := NewCartTree(cartRepo, 100)
	env.resolver = NewPriceResolver(tree, env.evaluator, vatRepo)
	aggregator := NewCartAggregator(tree, env.resolver)
	env.shipping = NewShippingService(shippingRepo, tree, aggregator)
	env.carts = NewCartService(
		cartRepo,
		articleRepo,
		userRepo,
		repository.NewAddressRepository(db),
		shippingRepo,
		discountRepo,
		tree,
		aggregator,
		env.shipping,
	)
	env.discounts = NewDiscountService(discountRepo, conditionRepo, cartRepo, env.evaluator, env.carts, env.metrics)
	env.catalog = NewCatalogService(articleRepo, vatRepo, shippingRepo, discountRepo, conditionRepo, env.discounts, nil)
	env.users = NewUserAuthService(cfg, userRepo)
	return env
}

func money(v float64) models.Money {
	return models.NewMoneyFromDecimal(decimal.NewFromFloat(v))
}

func (e *shopTestEnv) session(key string) *RequestState {
	rs := NewRequestState(time.Now())
	rs.Language = "de"
	rs.Country = "DE"
	rs.SessionKey = key
	return rs
}

func (e *shopTestEnv) createVat(t *testing.T, rate int64) *models.Vat {
	t.Helper()
	vat := &models.Vat{Rate: models.NewMoneyFromDecimal(decimal.NewFromInt(rate))}
	if err := e.db.Create(vat).Error; err != nil {
		t.Fatalf("create vat failed: %v", err)
	}
	return vat
}

func (e *shopTestEnv) createArticle(t *testing.T, name string, retail float64, vat *models.Vat) *models.Article {
	t.Helper()
	article := &models.Article{
		Name:             name,
		PriceRetail:      money(retail),
		PriceRecommended: money(retail),
		Availability:     "instock",
		Listed:           true,
	}
	if vat != nil {
		article.VatID = &vat.ID
	}
	if err := e.db.Create(article).Error; err != nil {
		t.Fatalf("create article failed: %v", err)
	}
	return article
}

func (e *shopTestEnv) createDiscount(t *testing.T, discount *models.Discount) *models.Discount {
	t.Helper()
	if discount.ConditionOperator == "" {
		discount.ConditionOperator = constants.ConditionOperatorOneOf
	}
	for i := range discount.Conditions {
		cond := &discount.Conditions[i]
		if cond.CodeType == "" {
			cond.CodeType = constants.CodeTypeNone
		}
		if cond.ApplicationDomain == "" {
			cond.ApplicationDomain = constants.ApplicationDomainBasket
		}
		if cond.ScopeCustomerGroup == "" {
			cond.ScopeCustomerGroup = constants.CustomerGroupAll
		}
		if cond.QuantityVolume == 0 {
			cond.QuantityVolume = constants.QuantityVolumeUnlimited
		}
	}
	if err := e.db.Create(discount).Error; err != nil {
		t.Fatalf("create discount failed: %v", err)
	}
	return discount
}

func (e *shopTestEnv) basket(t *testing.T, rs *RequestState) *models.CartNode {
	t.Helper()
	cart, err := e.carts.CurrentSessionCart(rs)
	if err != nil {
		t.Fatalf("current session cart failed: %v", err)
	}
	return cart
}

func (e *shopTestEnv) addArticle(t *testing.T, rs *RequestState, articleID, parentID uint, quantity int) *models.CartItem {
	t.Helper()
	item, err := e.carts.AddOrUpdateArticle(rs, AddOrUpdateArticleInput{
		ArticleID:    articleID,
		ParentID:     parentID,
		Quantity:     quantity,
		QuantityMode: constants.QuantityModeReplace,
	})
	if err != nil {
		t.Fatalf("add article failed: %v", err)
	}
	return item
}

func assertDecimal(t *testing.T, label string, got decimal.Decimal, want string) {
	t.Helper()
	expected := decimal.RequireFromString(want)
	if !got.Equal(expected) {
		t.Fatalf("%s: want %s, got %s", label, want, got.String())
	}
}
