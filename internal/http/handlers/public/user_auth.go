package public

import (
	"github.com/sveneberth/viur-shop/internal/http/response"
	"github.com/sveneberth/viur-shop/internal/models"

	"github.com/gin-gonic/gin"
)

// UserRegisterRequest 注册请求
type UserRegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name" binding:"omitempty,max=64"`
}

// UserLoginRequest 登录请求
type UserLoginRequest struct {
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

// UserRegister 顾客注册
func (h *Handler) UserRegister(c *gin.Context) {
	var req UserRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, token, expiresAt, err := h.UserAuthService.Register(req.Email, req.Password, req.DisplayName)
	if err != nil {
		respondUserAuthError(c, err)
		return
	}
	response.Success(c, userAuthPayload(user, token, expiresAt.Format("2006-01-02T15:04:05Z07:00")))
}

// UserLogin 顾客登录
func (h *Handler) UserLogin(c *gin.Context) {
	var req UserLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, token, expiresAt, err := h.UserAuthService.Login(req.Email, req.Password, req.RememberMe)
	if err != nil {
		respondUserAuthError(c, err)
		return
	}
	requestLog(c).Infow("user_login_success", "user_id", user.ID)
	response.Success(c, userAuthPayload(user, token, expiresAt.Format("2006-01-02T15:04:05Z07:00")))
}

func userAuthPayload(user *models.User, token, expiresAt string) gin.H {
	var basketKey interface{}
	if user.BasketID != nil {
		basketKey = *user.BasketID
	}
	return gin.H{
		"user": gin.H{
			"id":           user.ID,
			"email":        user.Email,
			"display_name": user.DisplayName,
			"basket":       basketKey,
		},
		"token":      token,
		"expires_at": expiresAt,
	}
}
