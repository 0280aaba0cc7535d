package models

import (
	"database/sql/driver"
	"encoding/json"
)

// JSON 任意结构的 JSON 字段
type JSON map[string]interface{}

// Value 实现 driver.Valuer 接口
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan 实现 sql.Scanner 接口
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSON)
		return nil
	}
	bytes, ok := scanBytes(value)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// StringArray 字符串数组类型，用于存储国家、语言、邮编等集合
type StringArray []string

// Value 实现 driver.Valuer 接口
func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan 实现 sql.Scanner 接口
func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = StringArray{}
		return nil
	}
	bytes, ok := scanBytes(value)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, s)
}

// Contains 判断集合是否包含指定值
func (s StringArray) Contains(value string) bool {
	for _, item := range s {
		if item == value {
			return true
		}
	}
	return false
}

// UintArray 主键数组类型，用于存储关联商品集合
type UintArray []uint

// Value 实现 driver.Valuer 接口
func (u UintArray) Value() (driver.Value, error) {
	if u == nil {
		return nil, nil
	}
	return json.Marshal(u)
}

// Scan 实现 sql.Scanner 接口
func (u *UintArray) Scan(value interface{}) error {
	if value == nil {
		*u = UintArray{}
		return nil
	}
	bytes, ok := scanBytes(value)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, u)
}

// Contains 判断集合是否包含指定主键
func (u UintArray) Contains(id uint) bool {
	for _, item := range u {
		if item == id {
			return true
		}
	}
	return false
}

func scanBytes(value interface{}) ([]byte, bool) {
	switch v := value.(type) {
	case []byte:
		return v, true
	case string:
		return []byte(v), true
	default:
		return nil, false
	}
}
