package domain

import "fmt"

// ReferenceRate 外部参考价：对手方最优买价/卖价
type ReferenceRate struct {
	Buy  float64
	Sell float64
}

// Price 返回指定方向的参考价
func (r ReferenceRate) Price(side Side) float64 {
	if side == SideBuy {
		return r.Buy
	}
	return r.Sell
}

// Valid 两边价格都必须为正
func (r ReferenceRate) Valid() bool {
	return r.Buy > 0 && r.Sell > 0
}

// Rates 交易对 -> 参考价
type Rates map[Pair]ReferenceRate

// Lookup 查找参考价；缺失视为 API 类错误，在真正定价时才向上传播
func (r Rates) Lookup(pair Pair) (ReferenceRate, error) {
	rate, ok := r[pair]
	if !ok {
		return ReferenceRate{}, &APIError{Op: "rate", Message: fmt.Sprintf("no reference rate for %s", pair)}
	}
	return rate, nil
}

// Merge 用 other 覆盖当前映射（后写入者优先）
func (r Rates) Merge(other Rates) {
	for k, v := range other {
		r[k] = v
	}
}
