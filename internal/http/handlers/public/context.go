package public

import (
	handlershared "github.com/sveneberth/viur-shop/internal/http/handlers/shared"
	"github.com/sveneberth/viur-shop/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const requestStateContextKey = "request_state"

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondBindError(c *gin.Context, err error) {
	handlershared.RespondBindError(c, err)
}

// getRequestState 读取会话中间件写入的请求上下文；缺失时按配置新建游客上下文
func (h *Handler) getRequestState(c *gin.Context) *service.RequestState {
	if value, ok := c.Get(requestStateContextKey); ok {
		if rs, ok := value.(*service.RequestState); ok && rs != nil {
			return rs
		}
	}
	rs := h.NewRequestState("", "", "", handlershared.OptionalContextUint(c, "user_id"))
	c.Set(requestStateContextKey, rs)
	return rs
}
