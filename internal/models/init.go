package models

import (
	"strings"

	"github.com/sveneberth/viur-shop/internal/logger"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	defaultAdminUsername = "admin"
	defaultAdminPassword = "admin123"
)

// InitDefaultAdmin 初始化默认管理员账号
func InitDefaultAdmin(username, password string) error {
	return InitDefaultAdminWith(DB, username, password)
}

// InitDefaultAdminWith 在指定连接上初始化默认管理员；已有管理员时只保证 admin 为超级管理员
func InitDefaultAdminWith(db *gorm.DB, username, password string) error {
	var count int64
	if err := db.Model(&Admin{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		if err := db.Model(&Admin{}).Where("username = ?", defaultAdminUsername).Update("is_super", true).Error; err != nil {
			logger.Warnw("ensure_default_admin_super_failed", "error", err)
		}
		return nil
	}

	username = strings.TrimSpace(username)
	if username == "" {
		username = defaultAdminUsername
	}
	if password == "" {
		password = defaultAdminPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := Admin{
		Username:     username,
		PasswordHash: string(hash),
		IsSuper:      strings.EqualFold(username, defaultAdminUsername),
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	if password == defaultAdminPassword {
		logger.Warnw("default_admin_created_with_default_password", "username", username)
		logger.Warnw("default_admin_password_change_required", "username", username)
	} else {
		logger.Infow("default_admin_created", "username", username)
	}
	return nil
}
