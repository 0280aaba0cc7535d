package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

const moneyPlaces = 2

// Money 价格与优惠金额，读写时统一舍入到分
type Money struct {
	decimal.Decimal
}

// NewMoneyFromDecimal 从 decimal 创建金额
func NewMoneyFromDecimal(amount decimal.Decimal) Money {
	return Money{Decimal: amount.Round(moneyPlaces)}
}

// NewMoneyFromFloat 从浮点数创建金额（测试与种子数据使用）
func NewMoneyFromFloat(amount float64) Money {
	return NewMoneyFromDecimal(decimal.NewFromFloat(amount))
}

// ZeroMoney 零金额
func ZeroMoney() Money {
	return Money{Decimal: decimal.Zero}
}

// MarshalJSON 输出两位小数的字符串，避免前端浮点误差
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON 接受 "12.50"、12.5 或 null
func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		m.Decimal = decimal.Zero
		return nil
	}
	raw := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
	}
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return err
	}
	m.Decimal = d.Round(moneyPlaces)
	return nil
}

// Value 用于数据库写入
func (m Money) Value() (driver.Value, error) {
	return m.Decimal.Round(moneyPlaces).Value()
}

// Scan 用于数据库读取
func (m *Money) Scan(value interface{}) error {
	if err := m.Decimal.Scan(value); err != nil {
		return err
	}
	m.Decimal = m.Decimal.Round(moneyPlaces)
	return nil
}

// String 返回两位小数格式
func (m Money) String() string {
	return m.Decimal.Round(moneyPlaces).StringFixed(moneyPlaces)
}
