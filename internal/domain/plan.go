package domain

// PlannedOrder 规划出的一笔新订单（价格为规划价，提交时再叠加价差带）
type PlannedOrder struct {
	Price  float64
	Amount float64
}

// OrderPlan 单个交易对两边的新订单批次
type OrderPlan struct {
	Pair Pair
	Buy  []PlannedOrder
	Sell []PlannedOrder
}

// Orders 返回指定方向的批次
func (p OrderPlan) Orders(side Side) []PlannedOrder {
	if side == SideBuy {
		return p.Buy
	}
	return p.Sell
}

// Size 两边订单总数
func (p OrderPlan) Size() int {
	return len(p.Buy) + len(p.Sell)
}

// Notional 批次的名义价值合计（sum(price * amount)）
func Notional(orders []PlannedOrder) float64 {
	var sum float64
	for _, o := range orders {
		sum += o.Price * o.Amount
	}
	return sum
}
