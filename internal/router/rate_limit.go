package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/sveneberth/viur-shop/internal/cache"
	"github.com/sveneberth/viur-shop/internal/config"
	"github.com/sveneberth/viur-shop/internal/http/response"
	"github.com/sveneberth/viur-shop/internal/i18n"
	"github.com/sveneberth/viur-shop/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitKeyFunc 生成限流 key 的函数
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 限流规则；超过 MaxRequests 后封禁 BlockSeconds 秒
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
	BlockSeconds  int
	MessageKey    string
}

// NewRateLimitRule 由配置构造规则，键形如 <prefix>:rate:<name>:<key>
func NewRateLimitRule(name string, cfg config.RateLimitConfig) RateLimitRule {
	return RateLimitRule{
		Prefix:        cache.Key("rate", name),
		WindowSeconds: cfg.WindowSeconds,
		MaxRequests:   cfg.MaxAttempts,
		BlockSeconds:  cfg.BlockSeconds,
		MessageKey:    "error.rate_limited",
	}
}

func (r RateLimitRule) enabled() bool {
	return r.WindowSeconds > 0 && r.MaxRequests > 0
}

func (r RateLimitRule) key(c *gin.Context, keyFunc RateLimitKeyFunc) string {
	key := ""
	if keyFunc != nil {
		key = strings.TrimSpace(keyFunc(c))
	}
	if key == "" {
		key = c.ClientIP()
	}
	if r.Prefix == "" {
		return key
	}
	return r.Prefix + ":" + key
}

var rateLimitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
elseif current == tonumber(ARGV[2]) + 1 and tonumber(ARGV[3]) > 0 then
	redis.call("EXPIRE", KEYS[1], ARGV[3])
end
local ttl = redis.call("TTL", KEYS[1])
return {current, ttl}
`)

// hit 计数并返回当前次数与剩余秒数
func (r RateLimitRule) hit(ctx context.Context, client *redis.Client, key string) (count, ttl int64, err error) {
	result, err := rateLimitScript.Run(ctx, client, []string{key}, r.WindowSeconds, r.MaxRequests, r.BlockSeconds).Result()
	if err != nil {
		return 0, 0, err
	}
	values, ok := result.([]interface{})
	if !ok || len(values) < 2 {
		return 0, 0, fmt.Errorf("unexpected rate limit result %v", result)
	}
	count, ok = toInt64(values[0])
	if !ok {
		return 0, 0, fmt.Errorf("unexpected rate limit count %v", values[0])
	}
	ttl, _ = toInt64(values[1])
	return count, ttl, nil
}

// RateLimitMiddleware Redis 频率限制中间件；未启用 Redis 时放行
func RateLimitMiddleware(client *redis.Client, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || !rule.enabled() {
			c.Next()
			return
		}

		key := rule.key(c, keyFunc)
		count, ttl, err := rule.hit(c.Request.Context(), client, key)
		if err != nil {
			logger.Warnw("rate_limit_unavailable", "key", key, "error", err)
			abortWithKey(c, response.CodeInternal, "error.rate_limit_unavailable")
			return
		}
		if count <= int64(rule.MaxRequests) {
			c.Next()
			return
		}

		wait := int(ttl)
		if wait < 1 {
			wait = rule.WindowSeconds
		}
		if wait < 1 {
			wait = 1
		}
		msgKey := strings.TrimSpace(rule.MessageKey)
		if msgKey == "" {
			msgKey = "error.rate_limited"
		}
		logger.Infow("rate_limited", "key", key, "count", count, "wait_seconds", wait)
		response.Abort(c, response.CodeTooManyRequests, i18n.Sprintf(i18n.ResolveLocale(c), msgKey, wait))
	}
}

// KeyByIP 使用 IP 作为限流 key
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByIPAndJSONField 使用 IP + JSON 字段作为限流 key
func KeyByIPAndJSONField(field string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		value := strings.ToLower(strings.TrimSpace(readJSONField(c, field)))
		if value == "" {
			return c.ClientIP()
		}
		return fmt.Sprintf("%s|%s", value, c.ClientIP())
	}
}

// KeyByHeaderAndIP 使用请求头（如会话 key）+ IP 作为限流 key
func KeyByHeaderAndIP(header string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		value := strings.TrimSpace(c.GetHeader(header))
		if value == "" {
			return c.ClientIP()
		}
		return fmt.Sprintf("%s|%s", value, c.ClientIP())
	}
}

func readJSONField(c *gin.Context, field string) string {
	if c == nil || c.Request == nil || c.Request.Body == nil {
		return ""
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
	if len(body) == 0 {
		return ""
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	value, ok := payload[field]
	if !ok {
		return ""
	}
	if text, ok := value.(string); ok {
		return strings.TrimSpace(text)
	}
	return ""
}

func toInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int16:
		return int64(v), true
	case int8:
		return int64(v), true
	case uint64:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint8:
		return int64(v), true
	case float64:
		return int64(v), true
	case float32:
		return int64(v), true
	default:
		return 0, false
	}
}
