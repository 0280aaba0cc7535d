package shared

import (
	"errors"
	"strings"

	"github.com/sveneberth/viur-shop/internal/http/response"
	"github.com/sveneberth/viur-shop/internal/i18n"
	"github.com/sveneberth/viur-shop/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回国际化错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, key string, err error) {
	respondAppError(c, response.WrapError(code, key, i18n.T(i18n.ResolveLocale(c), key), err))
}

// RespondErrorWithMsg 返回自定义消息错误响应，并在有原始错误时记录日志。
func RespondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	respondAppError(c, response.WrapError(code, "", msg, err))
}

func respondAppError(c *gin.Context, appErr *response.AppError) {
	if appErr.Err != nil {
		RequestLog(c).Errorw("handler_error", appErr.LogFields()...)
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// RespondBindError 请求体绑定失败；字段校验错误附带字段名列表。
func RespondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field())+":"+fe.Tag())
	}
	RequestLog(c).Debugw("handler_bind_invalid", "fields", fields)
	locale := i18n.ResolveLocale(c)
	response.ErrorWithData(c, response.CodeBadRequest, i18n.T(locale, "error.validation_failed"), gin.H{"fields": fields})
}
