package public

import (
	"errors"

	handlershared "github.com/sveneberth/viur-shop/internal/http/handlers/shared"
	"github.com/sveneberth/viur-shop/internal/http/response"
	"github.com/sveneberth/viur-shop/internal/i18n"
	"github.com/sveneberth/viur-shop/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			requestLog(c).Debugw("handler_mapped_error", "key", rule.key, "error", err)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var shopCommonErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidKey, code: response.CodeBadRequest, key: "error.invalid_key"},
	{target: service.ErrValidation, code: response.CodeBadRequest, key: "error.validation_failed"},
	{target: service.ErrInvalidArgument, code: response.CodeBadRequest, key: "error.invalid_argument"},
	{target: service.ErrNotImplemented, code: response.CodeNotImplemented, key: "error.not_implemented"},
	{target: service.ErrInvalidState, code: response.CodeInternal, key: "error.invalid_state"},
}

var articleErrorRules = []mappedHandlerError{
	{target: service.ErrNotFound, code: response.CodeNotFound, key: "error.article_not_found"},
}

var cartErrorRules = []mappedHandlerError{
	{target: service.ErrNotFound, code: response.CodeNotFound, key: "error.cart_not_found"},
}

var discountErrorRules = []mappedHandlerError{
	{target: service.ErrNotFound, code: response.CodeNotFound, key: "error.discount_not_found"},
}

var userAuthErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidCredentials, code: response.CodeUnauthorized, key: "error.login_failed"},
}

func respondArticleError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(shopCommonErrorRules, articleErrorRules), response.CodeInternal, "error.internal")
}

func respondCartError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(shopCommonErrorRules, cartErrorRules), response.CodeInternal, "error.internal")
}

func respondDiscountError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(shopCommonErrorRules, discountErrorRules), response.CodeInternal, "error.internal")
}

func respondUserAuthError(c *gin.Context, err error) {
	var policyErr *service.PasswordPolicyError
	if errors.As(err, &policyErr) {
		msg := i18n.Sprintf(i18n.ResolveLocale(c), policyErr.Key(), policyErr.Args()...)
		handlershared.RespondErrorWithMsg(c, response.CodeBadRequest, msg, nil)
		return
	}
	respondWithMappedError(c, err, concatMappedHandlerErrors(userAuthErrorRules, shopCommonErrorRules), response.CodeInternal, "error.internal")
}
