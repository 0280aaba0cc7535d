package admin

import (
	"errors"

	"github.com/sveneberth/viur-shop/internal/http/response"
	"github.com/sveneberth/viur-shop/internal/logger"
	"github.com/sveneberth/viur-shop/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token     string                 `json:"token"`
	User      map[string]interface{} `json:"user"`
	ExpiresAt string                 `json:"expires_at"`
}

// AdminLogin 管理员登录
func (h *Handler) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	admin, token, expiresAt, err := h.AuthService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			logger.Warnw("admin_login_rejected", "username", req.Username, "client_ip", c.ClientIP())
			respondError(c, response.CodeUnauthorized, "error.login_failed", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, LoginResponse{
		Token: token,
		User: map[string]interface{}{
			"id":       admin.ID,
			"username": admin.Username,
		},
		ExpiresAt: expiresAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

type authzPolicyPayload struct {
	Role   string `json:"role" binding:"required"`
	Object string `json:"object" binding:"required"`
	Action string `json:"action" binding:"required"`
}

type authzSetAdminRolesPayload struct {
	Roles []string `json:"roles"`
}

// GetAuthzMe 获取当前管理员权限快照
func (h *Handler) GetAuthzMe(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	isSuper := false
	if value, exists := c.Get("admin_is_super"); exists {
		if flag, typeOK := value.(bool); typeOK {
			isSuper = flag
		}
	}
	response.Success(c, gin.H{
		"admin_id": adminID,
		"username": currentUsername(c),
		"is_super": isSuper,
		"roles":    roles,
	})
}

// ListAuthzRoles 获取角色列表
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, roles)
}

// ListAuthzAdmins 获取管理员及其角色
func (h *Handler) ListAuthzAdmins(c *gin.Context) {
	admins, err := h.AdminRepo.List()
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	items := make([]gin.H, 0, len(admins))
	for _, admin := range admins {
		roles, roleErr := h.AuthzService.GetAdminRoles(admin.ID)
		if roleErr != nil {
			respondError(c, response.CodeInternal, "error.internal", roleErr)
			return
		}
		items = append(items, gin.H{
			"id":            admin.ID,
			"username":      admin.Username,
			"is_super":      admin.IsSuper,
			"last_login_at": admin.LastLoginAt,
			"roles":         roles,
		})
	}
	response.Success(c, items)
}

// GrantAuthzPolicy 授予角色策略
func (h *Handler) GrantAuthzPolicy(c *gin.Context) {
	var req authzPolicyPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if err := h.AuthzService.GrantRolePolicy(req.Role, req.Object, req.Action); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	logger.Infow("admin_authz_policy_granted",
		"operator_admin_id", currentAdminID(c),
		"role", req.Role,
		"object", req.Object,
		"action", req.Action,
	)
	response.Success(c, nil)
}

// SetAuthzAdminRoles 设置管理员角色
func (h *Handler) SetAuthzAdminRoles(c *gin.Context) {
	adminID, ok := parseIDParam(c)
	if !ok {
		return
	}
	admin, err := h.AdminRepo.GetByID(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	if admin == nil {
		respondError(c, response.CodeNotFound, "error.not_found", nil)
		return
	}

	var req authzSetAdminRolesPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if err := h.AuthzService.SetAdminRoles(adminID, req.Roles); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	logger.Infow("admin_authz_admin_roles_updated",
		"operator_admin_id", currentAdminID(c),
		"target_admin_id", adminID,
		"roles", req.Roles,
	)
	response.Success(c, nil)
}
