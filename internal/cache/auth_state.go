package cache

import (
	"context"
	"time"

	"github.com/sveneberth/viur-shop/internal/models"
)

const authStateCacheTTL = 10 * time.Minute

// UserAuthState 顾客鉴权快照
type UserAuthState struct {
	UserID       uint   `json:"user_id"`
	Status       string `json:"status"`
	TokenVersion uint64 `json:"token_version"`
	BasketID     uint   `json:"basket_id"`
}

// AdminAuthState 管理员鉴权快照
// token_invalid_before 为 Unix 秒时间戳，0 表示未设置
type AdminAuthState struct {
	AdminID            uint   `json:"admin_id"`
	Username           string `json:"username"`
	TokenVersion       uint64 `json:"token_version"`
	TokenInvalidBefore int64  `json:"token_invalid_before"`
	IsSuper            bool   `json:"is_super"`
}

// BuildUserAuthState 从顾客模型构建鉴权快照
func BuildUserAuthState(user *models.User) *UserAuthState {
	if user == nil {
		return nil
	}
	state := &UserAuthState{
		UserID:       user.ID,
		Status:       user.Status,
		TokenVersion: user.TokenVersion,
	}
	if user.BasketID != nil {
		state.BasketID = *user.BasketID
	}
	return state
}

// BuildAdminAuthState 从管理员模型构建鉴权快照
func BuildAdminAuthState(admin *models.Admin) *AdminAuthState {
	if admin == nil {
		return nil
	}
	state := &AdminAuthState{
		AdminID:      admin.ID,
		Username:     admin.Username,
		TokenVersion: admin.TokenVersion,
		IsSuper:      admin.IsSuper,
	}
	if admin.TokenInvalidBefore != nil {
		state.TokenInvalidBefore = admin.TokenInvalidBefore.Unix()
	}
	return state
}

// GetUserAuthState 获取顾客鉴权快照
func GetUserAuthState(ctx context.Context, userID uint) (*UserAuthState, bool, error) {
	if userID == 0 {
		return nil, false, nil
	}
	var state UserAuthState
	hit, err := GetJSON(ctx, keyPath("auth", "user", userID), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// SetUserAuthState 写入顾客鉴权快照
func SetUserAuthState(ctx context.Context, state *UserAuthState) error {
	if state == nil || state.UserID == 0 {
		return nil
	}
	return SetJSON(ctx, keyPath("auth", "user", state.UserID), state, authStateCacheTTL)
}

// DelUserAuthState 删除顾客鉴权快照（购物车切换后调用）
func DelUserAuthState(ctx context.Context, userID uint) error {
	if userID == 0 {
		return nil
	}
	return Del(ctx, keyPath("auth", "user", userID))
}

// GetAdminAuthState 获取管理员鉴权快照
func GetAdminAuthState(ctx context.Context, adminID uint) (*AdminAuthState, bool, error) {
	if adminID == 0 {
		return nil, false, nil
	}
	var state AdminAuthState
	hit, err := GetJSON(ctx, keyPath("auth", "admin", adminID), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// SetAdminAuthState 写入管理员鉴权快照
func SetAdminAuthState(ctx context.Context, state *AdminAuthState) error {
	if state == nil || state.AdminID == 0 {
		return nil
	}
	return SetJSON(ctx, keyPath("auth", "admin", state.AdminID), state, authStateCacheTTL)
}
