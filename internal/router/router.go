package router

import (
	"sort"
	"strings"

	"github.com/sveneberth/viur-shop/internal/authz"
	"github.com/sveneberth/viur-shop/internal/cache"
	"github.com/sveneberth/viur-shop/internal/config"
	adminhandlers "github.com/sveneberth/viur-shop/internal/http/handlers/admin"
	publichandlers "github.com/sveneberth/viur-shop/internal/http/handlers/public"
	"github.com/sveneberth/viur-shop/internal/http/response"
	"github.com/sveneberth/viur-shop/internal/logger"
	"github.com/sveneberth/viur-shop/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	sessionHeader := strings.TrimSpace(cfg.Shop.SessionHeader)
	if sessionHeader == "" {
		sessionHeader = "X-Session-Key"
	}
	redisClient := cache.Client()
	loginRule := NewRateLimitRule("login", cfg.Security.LoginRateLimit)
	adminLoginRule := NewRateLimitRule("admin_login", cfg.Security.LoginRateLimit)
	discountRule := NewRateLimitRule("discount", cfg.Security.DiscountRateLimit)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))
	r.Use(MetricsMiddleware(c.HTTPMetrics))

	apiV1 := r.Group("/api/v1")
	{
		// 用户认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.UserRegister)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.UserLogin)
		}

		// 商店接口：游客或登录顾客，均以会话 key 区分购物车
		shop := apiV1.Group("/shop")
		shop.Use(OptionalUserJWTMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		shop.Use(SessionMiddleware(cfg.Shop, c.NewRequestState))
		{
			shop.GET("/article/:article_key", publicHandler.GetArticle)

			shop.POST("/cart/article", publicHandler.AddCartArticle)
			shop.PUT("/cart/article", publicHandler.UpdateCartArticle)
			shop.DELETE("/cart/article", publicHandler.RemoveCartArticle)
			shop.POST("/cart/article/move", publicHandler.MoveCartArticle)

			shop.POST("/cart/node", publicHandler.AddCartNode)
			shop.PUT("/cart/node/:cart_key", publicHandler.UpdateCartNode)
			shop.DELETE("/cart/node/:cart_key", publicHandler.RemoveCartNode)
			shop.POST("/cart/node/:cart_key/clear", publicHandler.ClearCartNode)
			shop.GET("/cart/list", publicHandler.ListCart)

			shop.POST("/discount", RateLimitMiddleware(redisClient, discountRule, KeyByHeaderAndIP(sessionHeader)), publicHandler.ApplyDiscount)
			shop.DELETE("/discount/:discount_key", publicHandler.RemoveDiscount)

			shop.GET("/shipping", publicHandler.ListShippings)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIPAndJSONField("username")), adminHandler.AdminLogin)

			authorized := admin.Group("")
			authorized.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo))
			authorized.Use(AdminRBACMiddleware(c.AuthzService))
			{
				// 商品
				authorized.GET("/articles", adminHandler.GetAdminArticles)
				authorized.GET("/articles/:id", adminHandler.GetAdminArticle)
				authorized.POST("/articles", adminHandler.CreateArticle)
				authorized.PUT("/articles/:id", adminHandler.UpdateArticle)
				authorized.DELETE("/articles/:id", adminHandler.DeleteArticle)

				// 税率
				authorized.GET("/vats", adminHandler.GetAdminVats)
				authorized.POST("/vats", adminHandler.CreateVat)
				authorized.PUT("/vats/:id", adminHandler.UpdateVat)
				authorized.DELETE("/vats/:id", adminHandler.DeleteVat)

				// 运费
				authorized.GET("/shippings", adminHandler.GetAdminShippings)
				authorized.POST("/shippings", adminHandler.CreateShipping)
				authorized.PUT("/shippings/:id", adminHandler.UpdateShipping)
				authorized.DELETE("/shippings/:id", adminHandler.DeleteShipping)
				authorized.GET("/shipping-configs/:id", adminHandler.GetAdminShippingConfig)
				authorized.POST("/shipping-configs", adminHandler.CreateShippingConfig)

				// 优惠
				authorized.GET("/discounts", adminHandler.GetAdminDiscounts)
				authorized.GET("/discounts/:id", adminHandler.GetAdminDiscount)
				authorized.POST("/discounts", adminHandler.CreateDiscount)
				authorized.PUT("/discounts/:id", adminHandler.UpdateDiscount)
				authorized.DELETE("/discounts/:id", adminHandler.DeleteDiscount)
				authorized.POST("/discounts/conditions/:id/codes", adminHandler.GenerateConditionCodes)
				authorized.POST("/discounts/automatic/refresh", adminHandler.RefreshAutomaticDiscounts)

				// 权限管理
				authorized.GET("/authz/me", adminHandler.GetAuthzMe)
				authorized.GET("/authz/roles", adminHandler.ListAuthzRoles)
				authorized.GET("/authz/admins", adminHandler.ListAuthzAdmins)
				authorized.POST("/authz/policies", adminHandler.GrantAuthzPolicy)
				authorized.PUT("/authz/admins/:id/roles", adminHandler.SetAuthzAdminRoles)
				authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
					response.Success(ctx, buildAdminPermissionCatalog(r))
				})
			}
		}
	}

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{})))

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "redis": cache.Ping(c.Request.Context())})
	})

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") || item.Path == "/api/v1/admin/login" {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module != items[j].Module {
			return items[i].Module < items[j].Module
		}
		if items[i].Object != items[j].Object {
			return items[i].Object < items[j].Object
		}
		return items[i].Method < items[j].Method
	})
	return items
}

// deriveAdminPermissionModule 按 /admin/<module>/... 归类；shipping-configs 归入 shippings
func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 || segments[0] != "admin" {
		return segments[0]
	}
	if segments[1] == "shipping-configs" {
		return "shippings"
	}
	return segments[1]
}
