package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/sveneberth/viur-shop/internal/cache"
	"github.com/sveneberth/viur-shop/internal/config"
	"github.com/sveneberth/viur-shop/internal/constants"
	"github.com/sveneberth/viur-shop/internal/logger"
	"github.com/sveneberth/viur-shop/internal/models"
	"github.com/sveneberth/viur-shop/internal/repository"

	"github.com/golang-jwt/jwt/v5"
)

const minPasswordLength = 8

// UserAuthService 顾客认证
type UserAuthService struct {
	cfg      *config.Config
	userRepo repository.UserRepository
}

// NewUserAuthService 创建顾客认证服务
func NewUserAuthService(cfg *config.Config, userRepo repository.UserRepository) *UserAuthService {
	return &UserAuthService{
		cfg:      cfg,
		userRepo: userRepo,
	}
}

// UserJWTClaims 顾客 JWT 声明
type UserJWTClaims struct {
	UserID       uint   `json:"user_id"`
	Email        string `json:"email"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// GenerateUserJWT 生成顾客 Token，rememberMe 时使用更长的有效期
func (s *UserAuthService) GenerateUserJWT(user *models.User, rememberMe bool) (string, time.Time, error) {
	hours := s.cfg.UserJWT.ExpireHours
	if rememberMe && s.cfg.UserJWT.RememberMeExpireHours > 0 {
		hours = s.cfg.UserJWT.RememberMeExpireHours
	}
	if hours <= 0 {
		hours = 24
	}
	now := time.Now()
	expiresAt := now.Add(time.Duration(hours) * time.Hour)
	claims := UserJWTClaims{
		UserID:       user.ID,
		Email:        user.Email,
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.UserJWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// ParseUserJWT 解析顾客 Token
func (s *UserAuthService) ParseUserJWT(tokenString string) (*UserJWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &UserJWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.UserJWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*UserJWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("无效的 token")
}

// Register 顾客注册
func (s *UserAuthService) Register(email, password, displayName string) (*models.User, string, time.Time, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	policy := s.cfg.Security.PasswordPolicy
	if policy.MinLength <= 0 {
		policy.MinLength = minPasswordLength
	}
	if err := validatePassword(policy, password); err != nil {
		return nil, "", time.Time{}, err
	}
	exist, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if exist != nil {
		return nil, "", time.Time{}, invalidArgument("email already registered")
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	user := &models.User{
		Email:        normalized,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(displayName),
		Status:       constants.UserStatusActive,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, "", time.Time{}, err
	}
	logger.Infow("user_registered", "user_id", user.ID)
	token, expiresAt, err := s.GenerateUserJWT(user, false)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, expiresAt, nil
}

// Login 顾客登录
func (s *UserAuthService) Login(email, password string, rememberMe bool) (*models.User, string, time.Time, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	user, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if user == nil || verifyPassword(user.PasswordHash, password) != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if !strings.EqualFold(user.Status, constants.UserStatusActive) {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	token, expiresAt, err := s.GenerateUserJWT(user, rememberMe)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(user); err != nil {
		return nil, "", time.Time{}, err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))
	return user, token, expiresAt, nil
}

// GetUser 根据 ID 获取顾客
func (s *UserAuthService) GetUser(id uint) (*models.User, error) {
	return s.userRepo.GetByID(id)
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", invalidArgument("email is required")
	}
	if _, err := mail.ParseAddress(normalized); err != nil {
		return "", invalidArgument("invalid email")
	}
	return normalized, nil
}
