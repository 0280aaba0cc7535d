package response

// AppError 处理器错误包装；Key 为 i18n 消息键，自定义消息时为空
type AppError struct {
	Code    int
	Key     string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// LogFields 返回结构化日志字段
func (e *AppError) LogFields() []interface{} {
	kv := []interface{}{"code", e.Code, "message", e.Message}
	if e.Key != "" {
		kv = append(kv, "key", e.Key)
	}
	if e.Err != nil {
		kv = append(kv, "error", e.Err)
	}
	return kv
}

// WrapError 包装错误
func WrapError(code int, key, message string, err error) *AppError {
	return &AppError{Code: code, Key: key, Message: message, Err: err}
}
