package service

import (
	"time"

	"github.com/sveneberth/viur-shop/internal/models"
)

// RequestState 单次请求内的上下文与缓存
// 每个请求新建一份，请求结束即丢弃，不得跨请求复用
type RequestState struct {
	Now        time.Time
	Language   string
	Country    string
	UserID     *uint
	SessionKey string

	prices      map[priceKey]*Price
	children    map[uint][]CartChild
	nodes       map[uint]*models.CartNode
	orderCounts map[uint]int64
	totals      map[uint]*NodeTotals
}

type priceKey struct {
	kind string
	id   uint
}

// NewRequestState 创建请求上下文
func NewRequestState(now time.Time) *RequestState {
	if now.IsZero() {
		now = time.Now()
	}
	return &RequestState{
		Now:         now,
		prices:      make(map[priceKey]*Price),
		children:    make(map[uint][]CartChild),
		nodes:       make(map[uint]*models.CartNode),
		orderCounts: make(map[uint]int64),
		totals:      make(map[uint]*NodeTotals),
	}
}

// WithUser 设置当前登录顾客
func (r *RequestState) WithUser(userID uint) *RequestState {
	if userID > 0 {
		r.UserID = &userID
	}
	return r
}

// InvalidateCart 购物车结构变化后清空树相关缓存
func (r *RequestState) InvalidateCart() {
	r.prices = make(map[priceKey]*Price)
	r.children = make(map[uint][]CartChild)
	r.nodes = make(map[uint]*models.CartNode)
	r.totals = make(map[uint]*NodeTotals)
}
