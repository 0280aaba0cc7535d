package models

import (
	"time"

	"gorm.io/gorm"
)

// Admin 商品与优惠的后台维护账号
type Admin struct {
	ID                 uint           `gorm:"primarykey" json:"id"`
	Username           string         `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash       string         `gorm:"not null" json:"-"`
	TokenVersion       uint64         `gorm:"not null;default:0" json:"-"` // 递增即让已签发的 Token 全部失效
	TokenInvalidBefore *time.Time     `gorm:"index" json:"-"`
	IsSuper            bool           `gorm:"not null;default:false;index" json:"is_super"` // 跳过 RBAC 校验
	LastLoginAt        *time.Time     `json:"last_login_at"`
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (Admin) TableName() string {
	return "admins"
}

// AcceptsToken 校验 Token 版本与签发时间；设置了失效时间点时缺少签发时间视为无效
func (a *Admin) AcceptsToken(version uint64, issuedAt *time.Time) bool {
	if a == nil || version != a.TokenVersion {
		return false
	}
	if a.TokenInvalidBefore == nil {
		return true
	}
	return issuedAt != nil && issuedAt.Unix() >= a.TokenInvalidBefore.Unix()
}

// MarkLogin 记录登录时间
func (a *Admin) MarkLogin(now time.Time) {
	a.LastLoginAt = &now
}
