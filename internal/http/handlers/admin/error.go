package admin

import (
	"errors"

	handlershared "github.com/sveneberth/viur-shop/internal/http/handlers/shared"
	"github.com/sveneberth/viur-shop/internal/http/response"
	"github.com/sveneberth/viur-shop/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondBindError(c *gin.Context, err error) {
	handlershared.RespondBindError(c, err)
}

type mappedAdminError struct {
	target error
	code   int
	key    string
}

var catalogErrorRules = []mappedAdminError{
	{target: service.ErrValidation, code: response.CodeBadRequest, key: "error.validation_failed"},
	{target: service.ErrInvalidArgument, code: response.CodeBadRequest, key: "error.invalid_argument"},
	{target: service.ErrInvalidKey, code: response.CodeBadRequest, key: "error.invalid_key"},
	{target: service.ErrNotFound, code: response.CodeNotFound, key: "error.not_found"},
	{target: service.ErrQueueUnavailable, code: response.CodeInternal, key: "error.queue_unavailable"},
	{target: service.ErrNotImplemented, code: response.CodeNotImplemented, key: "error.not_implemented"},
}

// respondServiceError 按业务错误类型映射响应码
func respondServiceError(c *gin.Context, err error) {
	for _, rule := range catalogErrorRules {
		if errors.Is(err, rule.target) {
			requestLog(c).Debugw("admin_mapped_error", "key", rule.key, "error", err)
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, response.CodeInternal, "error.internal", err)
}
