package util

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	// 超过 int64 的金额在 IntPart 时会回绕
	maxMinorUnits = decimal.NewFromInt(math.MaxInt64)
)

// ParsePrice 将以主币单位表示的价格（字符串或数字）转换为最小币种单位
func ParsePrice(raw json.RawMessage) (int64, error) {
	text := strings.TrimSpace(string(raw))
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, NewValidationError("Invalid price value", "Price must be a valid number")
		}
		text = strings.TrimSpace(s)
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return 0, NewValidationError("Invalid price value", "Price must be a valid number")
	}
	if d.IsNegative() {
		return 0, NewValidationError("Invalid price value", "Price must not be negative")
	}

	minor := d.Mul(hundred).Round(0)
	if minor.GreaterThan(maxMinorUnits) {
		return 0, NewValidationError("Invalid price value", "Price is too large")
	}
	return minor.IntPart(), nil
}

// ParseMinorAmount 解析以最小币种单位表示的正整数金额
func ParseMinorAmount(raw json.RawMessage) (int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, NewValidationError("Amount is required", "")
	}
	if raw[0] == '"' {
		return 0, NewValidationError("Amount must be a positive number", "amount must be a JSON number")
	}

	d, err := decimal.NewFromString(string(raw))
	if err != nil {
		return 0, NewValidationError("Amount must be a positive number", err.Error())
	}
	if !d.IsPositive() {
		return 0, NewValidationError("Amount must be a positive number", "")
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, NewValidationError("Amount must be a positive number", "amount is expressed in minor currency units and must be an integer")
	}
	if d.GreaterThan(maxMinorUnits) {
		return 0, NewValidationError("Amount must be a positive number", "amount is too large")
	}
	return d.IntPart(), nil
}
