package marketmaker

import (
	"fmt"

	"github.com/betbot/pairmaker/internal/domain"
)

const (
	DefaultSpreadK = 1.0
	DefaultReserve = 0.99

	minBatch = 2
	maxBatch = 3
)

// Price bands applied at submission time around the planning price.
var (
	buyBand  = [2]float64{0.995, 0.9999}
	sellBand = [2]float64{1.0001, 1.005}
)

// PlannerConfig tunes the planner. Zero values fall back to defaults.
type PlannerConfig struct {
	SpreadK float64 // multiplier on the reference price
	Reserve float64 // share of funds put to work, the rest covers fees and rounding
}

func (c PlannerConfig) withDefaults() PlannerConfig {
	if c.SpreadK <= 0 {
		c.SpreadK = DefaultSpreadK
	}
	if c.Reserve <= 0 || c.Reserve > 1 {
		c.Reserve = DefaultReserve
	}
	return c
}

// Planner builds batches of new orders for a pair.
//
// A currency shared by several configured pairs has its balance split evenly
// across them (slots), so pairs in the same pass don't double-spend it.
type Planner struct {
	pairs []domain.Pair
	rnd   Random
	cfg   PlannerConfig
}

func NewPlanner(pairs []domain.Pair, rnd Random, cfg PlannerConfig) *Planner {
	return &Planner{pairs: pairs, rnd: rnd, cfg: cfg.withDefaults()}
}

// Slots is the number of configured pairs that can spend currency.
func (p *Planner) Slots(currency string) int {
	return countSlots(p.pairs, currency)
}

// Funds is the share of balance one pair may spend in currency.
func (p *Planner) Funds(currency string, balances domain.Balances) float64 {
	slots := p.Slots(currency)
	if slots == 0 {
		return 0
	}
	return balances.Get(currency) / float64(slots)
}

// PlanSide draws 2 or 3 orders for side. Prices are the opposite reference price
// times SpreadK; amounts split Reserve*funds by random weights so that
// sum(price*amount) == funds*Reserve.
func (p *Planner) PlanSide(pair domain.Pair, side domain.Side, balances domain.Balances, rate domain.ReferenceRate) ([]domain.PlannedOrder, error) {
	ref := rate.Price(side.Opposite())
	if ref <= 0 {
		return nil, &domain.APIError{Op: "rate", Message: fmt.Sprintf("no %s reference price for %s", side.Opposite(), pair)}
	}
	funds := p.Funds(pair.SpendCurrency(side), balances)
	if funds <= 0 {
		return nil, nil
	}

	n := minBatch + p.rnd.Intn(maxBatch-minBatch+1)
	orders := make([]domain.PlannedOrder, n)
	weights := make([]float64, n)
	var weightSum float64
	for i := range orders {
		orders[i].Price = ref * p.cfg.SpreadK
		weights[i] = p.rnd.Float64()
		weightSum += weights[i]
	}
	if weightSum <= 0 {
		for i := range weights {
			weights[i] = 1
		}
		weightSum = float64(n)
	}

	budget := funds * p.cfg.Reserve
	for i := range orders {
		orders[i].Amount = (weights[i] / weightSum) * budget / orders[i].Price
	}
	return orders, nil
}

// Plan builds both sides for pair from the pass-wide balance snapshot.
func (p *Planner) Plan(pair domain.Pair, balances domain.Balances, rates domain.Rates) (domain.OrderPlan, error) {
	plan := domain.OrderPlan{Pair: pair}
	rate, err := rates.Lookup(pair)
	if err != nil {
		return plan, err
	}
	if plan.Buy, err = p.PlanSide(pair, domain.SideBuy, balances, rate); err != nil {
		return plan, err
	}
	if plan.Sell, err = p.PlanSide(pair, domain.SideSell, balances, rate); err != nil {
		return plan, err
	}
	return plan, nil
}

// QuotePrice perturbs a planning price into the side's spread band:
// buys land in [0.995, 0.9999) of it, sells in [1.0001, 1.005).
func (p *Planner) QuotePrice(side domain.Side, price float64) float64 {
	band := sellBand
	if side == domain.SideBuy {
		band = buyBand
	}
	return price * uniform(p.rnd, band[0], band[1])
}
