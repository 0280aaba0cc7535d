package service

import (
	"strconv"
	"strings"
)

// ParseKey 将外部字符串 key 转为内部主键
func ParseKey(value, parameter string) (uint, error) {
	trimmed := strings.TrimSpace(value)
	id, err := strconv.ParseUint(trimmed, 10, 64)
	if err != nil || id == 0 {
		return 0, &InvalidKeyError{Value: value, Parameter: parameter}
	}
	return uint(id), nil
}

// ParseOptionalKey 空字符串视为未提供
func ParseOptionalKey(value, parameter string) (*uint, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	id, err := ParseKey(value, parameter)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// FormatKey 将内部主键转为外部字符串 key
func FormatKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
