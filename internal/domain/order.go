package domain

import "github.com/shopspring/decimal"

// DisplayPrecision 日志展示时数量保留的小数位
const DisplayPrecision = 8

// Order 交易所返回的挂单快照（只读）
type Order struct {
	ID     string
	Pair   Pair
	Side   Side
	Price  float64
	Amount float64
}

// OrdersForPair 过滤出指定交易对的订单，保持原有顺序
func OrdersForPair(orders []Order, pair Pair) []Order {
	var out []Order
	for _, o := range orders {
		if o.Pair == pair {
			out = append(out, o)
		}
	}
	return out
}

// SplitBySide 按方向拆分订单
func SplitBySide(orders []Order) (buys, sells []Order) {
	for _, o := range orders {
		switch o.Side {
		case SideBuy:
			buys = append(buys, o)
		case SideSell:
			sells = append(sells, o)
		}
	}
	return buys, sells
}

// RoundAmount 按展示精度四舍五入（只用于日志，交易所收到的是原值）
func RoundAmount(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(DisplayPrecision)
}
