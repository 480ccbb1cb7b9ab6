package marketmaker

import "github.com/betbot/pairmaker/internal/domain"

func totalAmount(orders []domain.Order) float64 {
	var sum float64
	for _, o := range orders {
		sum += o.Amount
	}
	return sum
}

// maxPrice / minPrice return 0 for an empty slice.
func maxPrice(orders []domain.Order) float64 {
	var m float64
	for i, o := range orders {
		if i == 0 || o.Price > m {
			m = o.Price
		}
	}
	return m
}

func minPrice(orders []domain.Order) float64 {
	var m float64
	for i, o := range orders {
		if i == 0 || o.Price < m {
			m = o.Price
		}
	}
	return m
}

// closingPrice is the price marketable against every opposite order:
// a buy takes the highest sell, a sell takes the lowest buy.
func closingPrice(op domain.Side, opposite []domain.Order) float64 {
	if op == domain.SideBuy {
		return maxPrice(opposite)
	}
	return minPrice(opposite)
}

// capClosingAmount limits a closing order to what the balance can pay for.
func capClosingAmount(op domain.Side, pair domain.Pair, total, price float64, balances domain.Balances) float64 {
	switch op {
	case domain.SideBuy:
		target := balances.Get(pair.Target)
		if target < total*price {
			return target / price
		}
	case domain.SideSell:
		base := balances.Get(pair.Base)
		if base < total {
			return base
		}
	}
	return total
}

// countSlots counts configured pairs that reference currency.
func countSlots(pairs []domain.Pair, currency string) int {
	n := 0
	for _, p := range pairs {
		if p.Uses(currency) {
			n++
		}
	}
	return n
}
