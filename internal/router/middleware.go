package router

import (
	"strconv"
	"strings"
	"time"

	"github.com/sveneberth/viur-shop/internal/authz"
	"github.com/sveneberth/viur-shop/internal/cache"
	"github.com/sveneberth/viur-shop/internal/config"
	"github.com/sveneberth/viur-shop/internal/constants"
	"github.com/sveneberth/viur-shop/internal/http/response"
	"github.com/sveneberth/viur-shop/internal/i18n"
	"github.com/sveneberth/viur-shop/internal/logger"
	"github.com/sveneberth/viur-shop/internal/metrics"
	"github.com/sveneberth/viur-shop/internal/repository"
	"github.com/sveneberth/viur-shop/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDKey = "request_id"
const requestIDHeader = "X-Request-ID"
const adminIsSuperContextKey = "admin_is_super"
const userIDContextKey = "user_id"
const requestStateContextKey = "request_state"

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowedMethods := cfg.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	allowedHeaders := cfg.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{
			"Content-Type",
			"Content-Length",
			"Accept-Encoding",
			"Authorization",
			"Cache-Control",
			"X-Requested-With",
			"X-CSRF-Token",
			"X-Session-Key",
		}
	}
	methodsHeader := strings.Join(allowedMethods, ", ")
	headersHeader := strings.Join(allowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowedOrigin := resolveAllowedOrigin(origin, allowedOrigins, cfg.AllowCredentials)
		if allowedOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			if allowedOrigin != "*" {
				c.Writer.Header().Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", headersHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", methodsHeader)
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID, X-Session-Key")
		if cfg.MaxAge > 0 {
			c.Writer.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	if len(allowedOrigins) == 0 {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			if allowCredentials && origin != "" {
				return origin
			}
			return "*"
		}
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件
func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.L()
	}
	sugar := logger.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := sugar.With(
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if len(c.Errors) > 0 {
			log.Errorw("request", "errors", c.Errors.String())
			return
		}
		log.Infow("request")
	}
}

func getRequestID(c *gin.Context) string {
	value, ok := c.Get(requestIDKey)
	if !ok {
		return ""
	}
	if requestID, ok := value.(string); ok {
		return requestID
	}
	return ""
}

// abortWithKey 按 i18n 键写入错误响应并中止后续处理
func abortWithKey(c *gin.Context, code int, key string) {
	response.Abort(c, code, i18n.T(i18n.ResolveLocale(c), key))
}

// JWTAuthMiddleware JWT 鉴权中间件
func JWTAuthMiddleware(secretKey string, adminRepo repository.AdminRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secretKey == "" {
			abortWithKey(c, response.CodeUnauthorized, "error.jwt_secret_missing")
			return
		}
		if adminRepo == nil {
			abortWithKey(c, response.CodeUnauthorized, "error.token_invalid")
			return
		}
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithKey(c, response.CodeUnauthorized, "error.auth_header_missing")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			abortWithKey(c, response.CodeUnauthorized, "error.auth_header_invalid")
			return
		}

		tokenString := parts[1]
		parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		claims := &service.JWTClaims{}
		token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(secretKey), nil
		})
		if err != nil || !token.Valid || claims.AdminID == 0 {
			abortWithKey(c, response.CodeUnauthorized, "error.token_invalid")
			return
		}

		if cached, hit, cacheErr := cache.GetAdminAuthState(c.Request.Context(), claims.AdminID); cacheErr == nil && hit && cached != nil {
			if claims.TokenVersion != cached.TokenVersion || !isIssuedAfterInvalidBeforeUnix(claims.IssuedAt, cached.TokenInvalidBefore) {
				abortWithKey(c, response.CodeUnauthorized, "error.token_revoked")
				return
			}
			c.Set("admin_id", claims.AdminID)
			c.Set("username", claims.Username)
			c.Set(adminIsSuperContextKey, cached.IsSuper)
			c.Next()
			return
		}

		admin, err := adminRepo.GetByID(claims.AdminID)
		if err != nil || admin == nil {
			abortWithKey(c, response.CodeUnauthorized, "error.token_invalid")
			return
		}
		var issuedAt *time.Time
		if claims.IssuedAt != nil {
			issuedAt = &claims.IssuedAt.Time
		}
		if !admin.AcceptsToken(claims.TokenVersion, issuedAt) {
			abortWithKey(c, response.CodeUnauthorized, "error.token_revoked")
			return
		}
		_ = cache.SetAdminAuthState(c.Request.Context(), cache.BuildAdminAuthState(admin))

		c.Set("admin_id", claims.AdminID)
		c.Set("username", claims.Username)
		c.Set(adminIsSuperContextKey, admin.IsSuper)
		c.Next()
	}
}

// AdminRBACMiddleware 管理端 RBAC 鉴权中间件
func AdminRBACMiddleware(authzService *authz.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authzService == nil {
			logger.Errorw("admin_rbac_service_unavailable")
			abortWithKey(c, response.CodeUnauthorized, "error.unauthorized")
			return
		}

		if isSuper, ok := c.Get(adminIsSuperContextKey); ok {
			if superValue, typeOK := isSuper.(bool); typeOK && superValue {
				c.Next()
				return
			}
		}

		adminIDRaw, exists := c.Get("admin_id")
		if !exists {
			abortWithKey(c, response.CodeUnauthorized, "error.unauthorized")
			return
		}

		var adminID uint
		switch value := adminIDRaw.(type) {
		case uint:
			adminID = value
		case int:
			if value > 0 {
				adminID = uint(value)
			}
		case float64:
			if value > 0 {
				adminID = uint(value)
			}
		}
		if adminID == 0 {
			abortWithKey(c, response.CodeUnauthorized, "error.unauthorized")
			return
		}

		resource := c.FullPath()
		if strings.TrimSpace(resource) == "" {
			resource = c.Request.URL.Path
		}

		allowed, err := authzService.EnforceAdmin(adminID, resource, c.Request.Method)
		if err != nil {
			logger.Errorw("admin_rbac_enforce_failed",
				"admin_id", adminID,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"error", err,
			)
			abortWithKey(c, response.CodeUnauthorized, "error.unauthorized")
			return
		}
		if !allowed {
			logger.Warnw("admin_rbac_permission_denied",
				"admin_id", adminID,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"resource", authz.NormalizeObject(resource),
			)
			abortWithKey(c, response.CodeForbidden, "error.forbidden")
			return
		}

		c.Next()
	}
}

// OptionalUserJWTMiddleware 顾客 JWT 鉴权中间件
// 未携带 Authorization 时按游客处理；携带但无效时拒绝
func OptionalUserJWTMiddleware(secretKey string, userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}
		if secretKey == "" {
			abortWithKey(c, response.CodeUnauthorized, "error.jwt_secret_missing")
			return
		}
		if userRepo == nil {
			abortWithKey(c, response.CodeUnauthorized, "error.token_invalid")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			abortWithKey(c, response.CodeUnauthorized, "error.auth_header_invalid")
			return
		}

		parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		claims := &service.UserJWTClaims{}
		token, err := parser.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(secretKey), nil
		})
		if err != nil || !token.Valid || claims.UserID == 0 {
			abortWithKey(c, response.CodeUnauthorized, "error.token_invalid")
			return
		}

		if cached, hit, cacheErr := cache.GetUserAuthState(c.Request.Context(), claims.UserID); cacheErr == nil && hit && cached != nil {
			if !isActiveUserStatus(cached.Status) {
				abortWithKey(c, response.CodeUnauthorized, "error.user_disabled")
				return
			}
			if claims.TokenVersion != cached.TokenVersion {
				abortWithKey(c, response.CodeUnauthorized, "error.token_revoked")
				return
			}
			c.Set(userIDContextKey, claims.UserID)
			c.Set("user_email", claims.Email)
			c.Next()
			return
		}

		user, err := userRepo.GetByID(claims.UserID)
		if err != nil || user == nil {
			abortWithKey(c, response.CodeUnauthorized, "error.token_invalid")
			return
		}
		if !isActiveUserStatus(user.Status) {
			abortWithKey(c, response.CodeUnauthorized, "error.user_disabled")
			return
		}
		if claims.TokenVersion != user.TokenVersion {
			abortWithKey(c, response.CodeUnauthorized, "error.token_revoked")
			return
		}
		_ = cache.SetUserAuthState(c.Request.Context(), cache.BuildUserAuthState(user))

		c.Set(userIDContextKey, claims.UserID)
		c.Set("user_email", claims.Email)
		c.Next()
	}
}

// RequestStateFactory 根据请求信息创建 RequestState
type RequestStateFactory func(language, country, sessionKey string, userID uint) *service.RequestState

// SessionMiddleware 解析会话 key 并为每个请求创建独立的 RequestState
// 缺少会话 key 时生成新的 uuid，并通过同名响应头返回
func SessionMiddleware(cfg config.ShopConfig, newState RequestStateFactory) gin.HandlerFunc {
	header := strings.TrimSpace(cfg.SessionHeader)
	if header == "" {
		header = "X-Session-Key"
	}
	return func(c *gin.Context) {
		sessionKey := strings.TrimSpace(c.GetHeader(header))
		if _, err := uuid.Parse(sessionKey); err != nil {
			sessionKey = uuid.NewString()
		}
		c.Writer.Header().Set(header, sessionKey)

		var userID uint
		if value, ok := c.Get(userIDContextKey); ok {
			if id, ok := value.(uint); ok {
				userID = id
			}
		}
		language := i18n.PrimaryLanguage(c.GetHeader("Accept-Language"), cfg.Language)
		rs := newState(language, cfg.Country, sessionKey, userID)
		c.Set(requestStateContextKey, rs)
		c.Next()
	}
}

// MetricsMiddleware 记录 HTTP 请求量、耗时与并发数
func MetricsMiddleware(m *metrics.HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		m.InFlight.Inc()
		defer m.InFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.ReqTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		m.ReqDur.WithLabelValues(c.Request.Method, route).Observe(metrics.DurationMillis(time.Since(start)))
	}
}

func isIssuedAfterInvalidBeforeUnix(issuedAt *jwt.NumericDate, invalidBeforeUnix int64) bool {
	if invalidBeforeUnix <= 0 {
		return true
	}
	if issuedAt == nil {
		return false
	}
	return issuedAt.Time.Unix() >= invalidBeforeUnix
}

func isActiveUserStatus(status string) bool {
	return strings.ToLower(strings.TrimSpace(status)) == constants.UserStatusActive
}
