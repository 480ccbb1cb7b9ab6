package domain

// Balances 币种 -> 可用余额
//
// 缺失的币种按 0 处理（交易所不会返回从未持有过的币种）。
type Balances map[string]float64

// Get 返回可用余额，缺失时为 0
func (b Balances) Get(currency string) float64 {
	if b == nil {
		return 0
	}
	v, ok := b[currency]
	if !ok || v < 0 {
		return 0
	}
	return v
}
