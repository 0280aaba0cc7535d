package provider

import (
	"time"

	"github.com/sveneberth/viur-shop/internal/authz"
	"github.com/sveneberth/viur-shop/internal/cache"
	"github.com/sveneberth/viur-shop/internal/config"
	"github.com/sveneberth/viur-shop/internal/logger"
	"github.com/sveneberth/viur-shop/internal/metrics"
	"github.com/sveneberth/viur-shop/internal/models"
	"github.com/sveneberth/viur-shop/internal/queue"
	"github.com/sveneberth/viur-shop/internal/repository"
	"github.com/sveneberth/viur-shop/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Registry    *prometheus.Registry
	HTTPMetrics *metrics.HTTPMetrics
	ShopMetrics *metrics.ShopMetrics

	// Repositories
	AdminRepo             repository.AdminRepository
	UserRepo              repository.UserRepository
	OrderRepo             repository.OrderRepository
	AddressRepo           repository.AddressRepository
	ArticleRepo           repository.ArticleRepository
	VatRepo               repository.VatRepository
	CartRepo              repository.CartRepository
	DiscountRepo          repository.DiscountRepository
	DiscountConditionRepo repository.DiscountConditionRepository
	ShippingRepo          repository.ShippingRepository

	// Services
	AuthzService      *authz.Service
	AuthService       *service.AuthService
	UserAuthService   *service.UserAuthService
	DiscountEvaluator *service.DiscountEvaluator
	CartTree          *service.CartTree
	PriceResolver     *service.PriceResolver
	CartAggregator    *service.CartAggregator
	ShippingService   *service.ShippingService
	CartService       *service.CartService
	DiscountService   *service.DiscountService
	CatalogService    *service.CatalogService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := NewContainerWithDB(cfg, models.DB, queueClient, prometheus.NewRegistry())
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}
	return c
}

// NewContainerWithDB 基于给定数据库构建容器（不初始化 Redis 与预置角色）
func NewContainerWithDB(cfg *config.Config, db *gorm.DB, queueClient *queue.Client, reg *prometheus.Registry) *Container {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		Registry:    reg,
		HTTPMetrics: metrics.NewHTTPMetrics(reg),
		ShopMetrics: metrics.NewShopMetrics(reg),
	}

	// 1. 初始化 Repositories
	c.initRepositories(db)

	// 2. 初始化 Services
	c.initServices(db)

	return c
}

func (c *Container) initRepositories(db *gorm.DB) {
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.AddressRepo = repository.NewAddressRepository(db)
	c.ArticleRepo = repository.NewArticleRepository(db)
	c.VatRepo = repository.NewVatRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.DiscountRepo = repository.NewDiscountRepository(db)
	c.DiscountConditionRepo = repository.NewDiscountConditionRepository(db)
	c.ShippingRepo = repository.NewShippingRepository(db)
}

func (c *Container) initServices(db *gorm.DB) {
	authzService, err := authz.NewService(db)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService

	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo)

	discountCfg := c.Config.Discount
	var store service.AutomaticDiscountStore
	if redisStore := cache.NewAutomaticDiscountStore(); redisStore != nil {
		store = redisStore
	}
	automatic := service.NewAutomaticDiscountCache(discountCfg.AutomaticCacheTTL(), store)
	c.DiscountEvaluator = service.NewDiscountEvaluator(
		c.DiscountRepo,
		c.DiscountConditionRepo,
		c.CartRepo,
		c.OrderRepo,
		automatic,
		service.DiscountEvaluatorOptions{
			DebugTrace:          discountCfg.DebugTrace,
			PrevalidationWindow: discountCfg.PrevalidationWindow(),
			QueryLimit:          discountCfg.QueryLimit,
		},
	)
	c.CartTree = service.NewCartTree(c.CartRepo, discountCfg.QueryLimit)
	c.PriceResolver = service.NewPriceResolver(c.CartTree, c.DiscountEvaluator, c.VatRepo)
	c.CartAggregator = service.NewCartAggregator(c.CartTree, c.PriceResolver)
	c.ShippingService = service.NewShippingService(c.ShippingRepo, c.CartTree, c.CartAggregator)
	c.CartService = service.NewCartService(
		c.CartRepo,
		c.ArticleRepo,
		c.UserRepo,
		c.AddressRepo,
		c.ShippingRepo,
		c.DiscountRepo,
		c.CartTree,
		c.CartAggregator,
		c.ShippingService,
	)
	c.DiscountService = service.NewDiscountService(
		c.DiscountRepo,
		c.DiscountConditionRepo,
		c.CartRepo,
		c.DiscountEvaluator,
		c.CartService,
		c.ShopMetrics,
	)
	c.CatalogService = service.NewCatalogService(
		c.ArticleRepo,
		c.VatRepo,
		c.ShippingRepo,
		c.DiscountRepo,
		c.DiscountConditionRepo,
		c.DiscountService,
		c.QueueClient,
	)
}

// NewRequestState 按配置创建请求上下文
func (c *Container) NewRequestState(language, country, sessionKey string, userID uint) *service.RequestState {
	shop := c.Config.Shop
	if language == "" {
		language = shop.Language
	}
	if country == "" {
		country = shop.Country
	}
	rs := service.NewRequestState(time.Now())
	rs.Language = language
	rs.Country = country
	rs.SessionKey = sessionKey
	return rs.WithUser(userID)
}
