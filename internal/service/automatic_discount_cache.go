package service

import (
	"context"
	"sync"
	"time"

	"github.com/sveneberth/viur-shop/internal/logger"
	"github.com/sveneberth/viur-shop/internal/models"
)

// DefaultAutomaticDiscountTTL 自动优惠缓存默认有效期
const DefaultAutomaticDiscountTTL = time.Hour

// AutomaticDiscountStore 自动优惠的二级缓存（跨进程共享优惠 ID）
type AutomaticDiscountStore interface {
	LoadAutomaticDiscountIDs(ctx context.Context) ([]uint, bool, error)
	SaveAutomaticDiscountIDs(ctx context.Context, ids []uint, ttl time.Duration) error
}

type automaticDiscountClearer interface {
	ClearAutomaticDiscountIDs(ctx context.Context) error
}

// AutomaticDiscountCache 预校验通过的自动优惠的进程级缓存
type AutomaticDiscountCache struct {
	mu        sync.Mutex
	ttl       time.Duration
	store     AutomaticDiscountStore
	now       func() time.Time
	value     []models.Discount
	loaded    bool
	expiresAt time.Time
}

// NewAutomaticDiscountCache 创建自动优惠缓存，store 可为空
func NewAutomaticDiscountCache(ttl time.Duration, store AutomaticDiscountStore) *AutomaticDiscountCache {
	if ttl <= 0 {
		ttl = DefaultAutomaticDiscountTTL
	}
	return &AutomaticDiscountCache{
		ttl:   ttl,
		store: store,
		now:   time.Now,
	}
}

// Get 返回缓存值，过期时先尝试二级缓存再重新计算
func (c *AutomaticDiscountCache) Get(
	ctx context.Context,
	byIDs func(ids []uint) ([]models.Discount, error),
	compute func() ([]models.Discount, error),
) ([]models.Discount, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.loaded && now.Before(c.expiresAt) {
		return copyDiscounts(c.value), nil
	}
	if c.store != nil && byIDs != nil {
		ids, ok, err := c.store.LoadAutomaticDiscountIDs(ctx)
		if err != nil {
			logger.Warnw("automatic_discount_store_load_failed", "error", err)
		} else if ok {
			discounts, err := byIDs(ids)
			if err == nil {
				c.set(discounts, now)
				return copyDiscounts(c.value), nil
			}
			logger.Warnw("automatic_discount_store_resolve_failed", "error", err)
		}
	}
	return c.recompute(ctx, compute, now)
}

// Refresh 忽略有效期重新计算
func (c *AutomaticDiscountCache) Refresh(ctx context.Context, compute func() ([]models.Discount, error)) ([]models.Discount, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recompute(ctx, compute, c.now())
}

// Invalidate 清空进程内缓存
func (c *AutomaticDiscountCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = nil
	c.loaded = false
	c.expiresAt = time.Time{}
}

// Purge 清空进程内缓存与二级缓存（优惠数据变更后调用）
func (c *AutomaticDiscountCache) Purge(ctx context.Context) {
	c.Invalidate()
	clearer, ok := c.store.(automaticDiscountClearer)
	if !ok {
		return
	}
	if err := clearer.ClearAutomaticDiscountIDs(ctx); err != nil {
		logger.Warnw("automatic_discount_store_clear_failed", "error", err)
	}
}

// ExpiresAt 当前缓存的过期时间
func (c *AutomaticDiscountCache) ExpiresAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expiresAt
}

func (c *AutomaticDiscountCache) recompute(ctx context.Context, compute func() ([]models.Discount, error), now time.Time) ([]models.Discount, error) {
	discounts, err := compute()
	if err != nil {
		return nil, err
	}
	c.set(discounts, now)
	if c.store != nil {
		ids := make([]uint, 0, len(discounts))
		for _, discount := range discounts {
			ids = append(ids, discount.ID)
		}
		if err := c.store.SaveAutomaticDiscountIDs(ctx, ids, c.ttl); err != nil {
			logger.Warnw("automatic_discount_store_save_failed", "error", err)
		}
	}
	return copyDiscounts(c.value), nil
}

func (c *AutomaticDiscountCache) set(discounts []models.Discount, now time.Time) {
	c.value = discounts
	c.loaded = true
	c.expiresAt = now.Add(c.ttl)
}

func copyDiscounts(discounts []models.Discount) []models.Discount {
	if len(discounts) == 0 {
		return []models.Discount{}
	}
	return append([]models.Discount(nil), discounts...)
}
