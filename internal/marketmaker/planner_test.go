package marketmaker

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betbot/pairmaker/internal/domain"
)

var (
	btcUsd = domain.MustParsePair("BTC_USD")
	ethUsd = domain.MustParsePair("ETH_USD")
	ethBtc = domain.MustParsePair("ETH_BTC")
)

func TestPlanner_Slots(t *testing.T) {
	p := NewPlanner([]domain.Pair{btcUsd, ethUsd, ethBtc, btcRur}, &scriptedRandom{}, PlannerConfig{})
	assert.Equal(t, 3, p.Slots("BTC"))
	assert.Equal(t, 2, p.Slots("USD"))
	assert.Equal(t, 2, p.Slots("ETH"))
	assert.Equal(t, 1, p.Slots("RUR"))
	assert.Zero(t, p.Slots("DOGE"))
	assert.Equal(t, 500.0, p.Funds("USD", domain.Balances{"USD": 1000}))
	assert.Zero(t, p.Funds("DOGE", domain.Balances{"DOGE": 1000}))
}

func TestPlanner_NormalizesWeightsToFunds(t *testing.T) {
	rnd := &scriptedRandom{ints: []int{0}, floats: []float64{0.3, 0.7}}
	p := NewPlanner([]domain.Pair{btcUsd, ethUsd}, rnd, PlannerConfig{})
	rate := domain.ReferenceRate{Buy: 99, Sell: 100}

	orders, err := p.PlanSide(btcUsd, domain.SideBuy, domain.Balances{"USD": 1000}, rate)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	for _, o := range orders {
		assert.Equal(t, 100.0, o.Price)
	}
	assert.InDelta(t, 1.485, orders[0].Amount, 1e-9)
	assert.InDelta(t, 3.465, orders[1].Amount, 1e-9)
	assert.InDelta(t, 495.0, domain.Notional(orders), 1e-9)
}

func TestPlanner_SellUsesBaseAndBuyReference(t *testing.T) {
	rnd := &scriptedRandom{ints: []int{1}, floats: []float64{0.2, 0.2, 0.6}}
	p := NewPlanner([]domain.Pair{btcUsd}, rnd, PlannerConfig{})
	rate := domain.ReferenceRate{Buy: 99, Sell: 100}

	orders, err := p.PlanSide(btcUsd, domain.SideSell, domain.Balances{"BTC": 2, "USD": 1000}, rate)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	for _, o := range orders {
		assert.Equal(t, 99.0, o.Price)
	}
	// funds come from the base balance, the notional invariant still holds
	assert.InDelta(t, 2*0.99, domain.Notional(orders), 1e-12)
	assert.InDelta(t, 0.2*1.98/99, orders[0].Amount, 1e-12)
}

func TestPlanner_SpreadKScalesPlanningPrice(t *testing.T) {
	p := NewPlanner([]domain.Pair{btcUsd}, &scriptedRandom{}, PlannerConfig{SpreadK: 1.02, Reserve: 0.5})
	orders, err := p.PlanSide(btcUsd, domain.SideBuy, domain.Balances{"USD": 100}, domain.ReferenceRate{Buy: 90, Sell: 100})
	require.NoError(t, err)
	for _, o := range orders {
		assert.InDelta(t, 102.0, o.Price, 1e-9)
	}
	assert.InDelta(t, 50.0, domain.Notional(orders), 1e-9)
}

func TestPlanner_ZeroBalanceGivesEmptySide(t *testing.T) {
	p := NewPlanner([]domain.Pair{btcUsd}, &scriptedRandom{}, PlannerConfig{})
	orders, err := p.PlanSide(btcUsd, domain.SideBuy, domain.Balances{"BTC": 1}, domain.ReferenceRate{Buy: 1, Sell: 1})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestPlanner_AllZeroWeightsSplitEvenly(t *testing.T) {
	rnd := &scriptedRandom{ints: []int{0}, floats: []float64{0, 0}}
	p := NewPlanner([]domain.Pair{btcUsd}, rnd, PlannerConfig{})
	orders, err := p.PlanSide(btcUsd, domain.SideBuy, domain.Balances{"USD": 100}, domain.ReferenceRate{Buy: 9, Sell: 10})
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.InDelta(t, orders[0].Amount, orders[1].Amount, 1e-12)
	assert.InDelta(t, 99.0, domain.Notional(orders), 1e-9)
}

func TestPlanner_MissingRate(t *testing.T) {
	p := NewPlanner([]domain.Pair{btcUsd, ethUsd}, &scriptedRandom{}, PlannerConfig{})
	_, err := p.Plan(ethUsd, domain.Balances{"USD": 100}, domain.Rates{btcUsd: {Buy: 1, Sell: 2}})
	require.Error(t, err)
	assert.True(t, domain.IsAPIError(err))

	_, err = p.PlanSide(btcUsd, domain.SideBuy, domain.Balances{"USD": 100}, domain.ReferenceRate{Buy: 1})
	require.Error(t, err)
	assert.True(t, domain.IsAPIError(err))
}

func TestPlanner_BatchProperties(t *testing.T) {
	pairs := []domain.Pair{btcUsd, ethUsd, ethBtc}
	p := NewPlanner(pairs, NewRandom(42), PlannerConfig{})
	balances := domain.Balances{"USD": 12345.67, "BTC": 0.731, "ETH": 19.5}
	rates := domain.Rates{
		btcUsd: {Buy: 64000, Sell: 64100},
		ethUsd: {Buy: 3100, Sell: 3102},
		ethBtc: {Buy: 0.0483, Sell: 0.0485},
	}

	for i := 0; i < 200; i++ {
		for _, pair := range pairs {
			plan, err := p.Plan(pair, balances, rates)
			require.NoError(t, err)
			for _, side := range domain.Sides {
				orders := plan.Orders(side)
				require.GreaterOrEqual(t, len(orders), 2)
				require.LessOrEqual(t, len(orders), 3)

				funds := balances.Get(pair.SpendCurrency(side)) / float64(p.Slots(pair.SpendCurrency(side)))
				want := funds * DefaultReserve
				got := domain.Notional(orders)
				require.LessOrEqual(t, math.Abs(got-want)/want, 1e-6)

				ref := rates[pair].Price(side.Opposite())
				for _, o := range orders {
					q := p.QuotePrice(side, o.Price)
					if side == domain.SideBuy {
						require.GreaterOrEqual(t, q, ref*0.995)
						require.Less(t, q, ref*0.9999)
					} else {
						require.GreaterOrEqual(t, q, ref*1.0001)
						require.LessOrEqual(t, q, ref*1.005)
					}
				}
			}
		}
	}
}

func TestPlanner_QuotePriceBandEdges(t *testing.T) {
	p := NewPlanner(nil, &scriptedRandom{floats: []float64{0, 0.999999, 0, 0.999999}}, PlannerConfig{})
	assert.InDelta(t, 99.5, p.QuotePrice(domain.SideBuy, 100), 1e-9)
	assert.Less(t, p.QuotePrice(domain.SideBuy, 100), 99.99)
	assert.InDelta(t, 100.01, p.QuotePrice(domain.SideSell, 100), 1e-9)
	assert.Less(t, p.QuotePrice(domain.SideSell, 100), 100.5)
}
