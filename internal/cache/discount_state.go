package cache

import (
	"context"
	"time"
)

var automaticDiscountKey = keyPath("discount", "automatic")

// AutomaticDiscountStore 以 Redis 保存预校验通过的自动优惠 ID，供多实例共享
type AutomaticDiscountStore struct{}

// NewAutomaticDiscountStore Redis 未启用时返回 nil
func NewAutomaticDiscountStore() *AutomaticDiscountStore {
	if !Enabled() {
		return nil
	}
	return &AutomaticDiscountStore{}
}

// LoadAutomaticDiscountIDs 读取缓存的优惠 ID
func (s *AutomaticDiscountStore) LoadAutomaticDiscountIDs(ctx context.Context) ([]uint, bool, error) {
	var ids []uint
	hit, err := GetJSON(ctx, automaticDiscountKey, &ids)
	if err != nil || !hit {
		return nil, false, err
	}
	return ids, true, nil
}

// SaveAutomaticDiscountIDs 写入优惠 ID
func (s *AutomaticDiscountStore) SaveAutomaticDiscountIDs(ctx context.Context, ids []uint, ttl time.Duration) error {
	if ids == nil {
		ids = []uint{}
	}
	return SetJSON(ctx, automaticDiscountKey, ids, ttl)
}

// ClearAutomaticDiscountIDs 删除缓存（优惠变更后调用）
func (s *AutomaticDiscountStore) ClearAutomaticDiscountIDs(ctx context.Context) error {
	return Del(ctx, automaticDiscountKey)
}
