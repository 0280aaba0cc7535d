package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sveneberth/viur-shop/internal/config"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "shop"

var (
	redisClient *redis.Client
	redisPrefix = defaultPrefix
)

// InitRedis 初始化 Redis 客户端；重复调用时关闭旧连接，未启用时仅记录键前缀
func InitRedis(cfg *config.RedisConfig) error {
	if redisClient != nil {
		_ = redisClient.Close()
		redisClient = nil
	}
	redisPrefix = defaultPrefix
	if cfg == nil {
		return nil
	}
	if prefix := strings.TrimSpace(cfg.Prefix); prefix != "" {
		redisPrefix = prefix
	}
	if !cfg.Enabled {
		return nil
	}

	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	redisClient = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return nil
}

// Enabled 判断缓存是否启用
func Enabled() bool {
	return redisClient != nil
}

// Client 获取 Redis 客户端
func Client() *redis.Client {
	return redisClient
}

// Ping 检查 Redis 连通性，返回 disabled / ok / down
func Ping(ctx context.Context) string {
	if !Enabled() {
		return "disabled"
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return "down"
	}
	return "ok"
}

// Key 生成带前缀的完整键，如 Key("rate", "login") => shop:rate:login
func Key(parts ...interface{}) string {
	if rel := keyPath(parts...); rel != "" {
		return redisPrefix + ":" + rel
	}
	return redisPrefix
}

func keyPath(parts ...interface{}) string {
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if s := strings.TrimSpace(fmt.Sprint(part)); s != "" {
			segments = append(segments, s)
		}
	}
	return strings.Join(segments, ":")
}

// GetJSON 获取 JSON 缓存，key 不含前缀
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !Enabled() {
		return false, nil
	}
	val, err := redisClient.Get(ctx, Key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON 写入 JSON 缓存
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !Enabled() {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return redisClient.Set(ctx, Key(key), payload, ttl).Err()
}

// Del 删除缓存
func Del(ctx context.Context, key string) error {
	if !Enabled() {
		return nil
	}
	return redisClient.Del(ctx, Key(key)).Err()
}
