package domain

import (
	"fmt"
	"strings"
)

// PairSeparator 交易对分隔符（BASE_TARGET）
const PairSeparator = "_"

// Pair 交易对：Base 为被买卖的资产，Target 为计价货币
type Pair struct {
	Base   string
	Target string
}

// ParsePair 解析 "BTC_RUR" 形式的交易对，必须恰好拆成两个非空币种代码
func ParsePair(s string) (Pair, error) {
	parts := strings.Split(strings.ToUpper(strings.TrimSpace(s)), PairSeparator)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Pair{}, &ValidationError{Field: "pair", Reason: fmt.Sprintf("malformed pair %q", s)}
	}
	return Pair{Base: parts[0], Target: parts[1]}, nil
}

// MustParsePair 用于常量/测试，解析失败直接 panic
func MustParsePair(s string) Pair {
	p, err := ParsePair(s)
	if err != nil {
		panic(err)
	}
	return p
}

// ParsePairs 解析交易对列表，保持配置顺序
func ParsePairs(list []string) ([]Pair, error) {
	pairs := make([]Pair, 0, len(list))
	for _, s := range list {
		if strings.TrimSpace(s) == "" {
			continue
		}
		p, err := ParsePair(s)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}

func (p Pair) String() string {
	return p.Base + PairSeparator + p.Target
}

// Uses 交易对是否引用该币种（作为 base 或 target）
func (p Pair) Uses(currency string) bool {
	return p.Base == currency || p.Target == currency
}

// SpendCurrency 下单时消耗余额的币种：买单消耗 target，卖单消耗 base
func (p Pair) SpendCurrency(side Side) string {
	if side == SideBuy {
		return p.Target
	}
	return p.Base
}
