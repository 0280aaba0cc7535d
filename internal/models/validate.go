package models

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrValidation 字段校验失败
var ErrValidation = errors.New("validation failed")

// ValidationError 记录校验失败的字段
type ValidationError struct {
	Fields   []string
	Messages []string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	return ErrValidation.Error() + ": " + strings.Join(e.Fields, ", ")
}

// Unwrap 支持 errors.Is(err, ErrValidation)
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Add 追加一个失败字段
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, field)
	e.Messages = append(e.Messages, message)
}

func (e *ValidationError) orNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	// 金额按浮点参与 gte/lte 比较
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if m, ok := field.Interface().(Money); ok {
			f, _ := m.Float64()
			return f
		}
		return nil
	}, Money{})
	return v
}

// validateRecord 按 validate 标签校验结构体，返回 *ValidationError
func validateRecord(record interface{}) *ValidationError {
	result := &ValidationError{}
	err := structValidator.Struct(record)
	if err == nil {
		return result
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		result.Add("_", err.Error())
		return result
	}
	for _, fe := range fieldErrs {
		result.Add(fe.Field(), fe.Tag())
	}
	return result
}
