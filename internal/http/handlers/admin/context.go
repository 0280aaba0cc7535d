package admin

import (
	"strconv"
	"strings"

	handlershared "github.com/sveneberth/viur-shop/internal/http/handlers/shared"
	"github.com/sveneberth/viur-shop/internal/http/response"

	"github.com/gin-gonic/gin"
)

func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, "admin_id", "error.bad_request", "error.internal")
}

func currentAdminID(c *gin.Context) uint {
	return handlershared.OptionalContextUint(c, "admin_id")
}

func currentUsername(c *gin.Context) string {
	value, exists := c.Get("username")
	if !exists {
		return ""
	}
	if username, ok := value.(string); ok {
		return strings.TrimSpace(username)
	}
	return ""
}

// parseIDParam 读取路径中的 :id，非法时直接写入错误响应
func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.invalid_key", nil)
		return 0, false
	}
	return uint(id), true
}
