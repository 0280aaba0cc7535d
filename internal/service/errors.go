package service

import (
	"errors"
	"fmt"

	"github.com/sveneberth/viur-shop/internal/models"
)

var (
	// ErrValidation 字段格式或取值不合法
	ErrValidation = models.ErrValidation
	// ErrInvalidArgument 参数组合在语义上不合法
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidKey 外部 key 无法解析
	ErrInvalidKey = errors.New("invalid key")
	// ErrNotFound 实体、优惠或优惠码不存在
	ErrNotFound = errors.New("not found")
	// ErrInvalidState 内部状态不一致
	ErrInvalidState = errors.New("invalid state")
	// ErrNotImplemented 已识别但未支持的优惠类型或作用域组合
	ErrNotImplemented = errors.New("not implemented")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWeakPassword       = errors.New("weak password")
	ErrQueueUnavailable   = errors.New("queue unavailable")
)

// InvalidKeyError 记录无法解析的 key 及其参数名
type InvalidKeyError struct {
	Value     string
	Parameter string
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid key %q for parameter %s", e.Value, e.Parameter)
}

// Unwrap 支持 errors.Is(err, ErrInvalidKey)
func (e *InvalidKeyError) Unwrap() error {
	return ErrInvalidKey
}

func notFound(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

func invalidArgument(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidArgument)
}

func invalidState(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidState)
}

func notImplemented(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotImplemented)
}
