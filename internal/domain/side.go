package domain

import "fmt"

// Side 订单方向
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Sides 固定的两边集合，顺序即随机选择时的下标
var Sides = [2]Side{SideBuy, SideSell}

// Opposite 返回对手方向
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// ParseSide 解析交易所返回的 type 字段
func ParseSide(v string) (Side, error) {
	s := Side(v)
	if !s.Valid() {
		return "", &ValidationError{Field: "side", Reason: fmt.Sprintf("unknown side %q", v)}
	}
	return s, nil
}
