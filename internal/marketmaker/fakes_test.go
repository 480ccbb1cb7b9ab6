package marketmaker

import (
	"context"
	"fmt"
	"sync"

	"github.com/betbot/pairmaker/internal/domain"
)

// scriptedRandom replays queued values; when a queue runs dry it returns 0.5 / 0.
type scriptedRandom struct {
	floats []float64
	ints   []int
}

func (s *scriptedRandom) Float64() float64 {
	if len(s.floats) == 0 {
		return 0.5
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func (s *scriptedRandom) Intn(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v % n
}

type createCall struct {
	Side   domain.Side
	Pair   domain.Pair
	Amount float64
	Price  float64
}

// fakeGateway is an in-memory exchange: created orders rest on the book until canceled.
type fakeGateway struct {
	mu sync.Mutex

	balances domain.Balances
	orders   []domain.Order
	nextID   int

	created  []createCall
	canceled []string
	calls    map[string]int

	balancesErr   error
	balancesOK    int // this many GetBalances calls succeed before balancesErr kicks in
	openOrdersErr error
	panicOnOpen   int // panic on this many GetOpenOrders calls
	createErr     func(n int, c createCall) error
	cancelErr     map[string]error
}

func newFakeGateway(balances domain.Balances, orders ...domain.Order) *fakeGateway {
	return &fakeGateway{
		balances:  balances,
		orders:    orders,
		nextID:    1000,
		calls:     make(map[string]int),
		cancelErr: make(map[string]error),
	}
}

func (g *fakeGateway) GetBalances(_ context.Context) (domain.Balances, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls["balances"]++
	if g.balancesErr != nil && g.calls["balances"] > g.balancesOK {
		return nil, g.balancesErr
	}
	out := make(domain.Balances, len(g.balances))
	for k, v := range g.balances {
		out[k] = v
	}
	return out, nil
}

func (g *fakeGateway) GetOpenOrders(_ context.Context) ([]domain.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls["open_orders"]++
	if g.panicOnOpen > 0 {
		g.panicOnOpen--
		panic("order book decode exploded")
	}
	if g.openOrdersErr != nil {
		return nil, g.openOrdersErr
	}
	return append([]domain.Order(nil), g.orders...), nil
}

func (g *fakeGateway) CreateOrder(_ context.Context, side domain.Side, pair domain.Pair, amount, price float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	c := createCall{Side: side, Pair: pair, Amount: amount, Price: price}
	n := g.calls["create"]
	g.calls["create"]++
	if g.createErr != nil {
		if err := g.createErr(n, c); err != nil {
			return err
		}
	}
	g.created = append(g.created, c)
	g.nextID++
	g.orders = append(g.orders, domain.Order{
		ID: fmt.Sprintf("%d", g.nextID), Pair: pair, Side: side, Price: price, Amount: amount,
	})
	return nil
}

func (g *fakeGateway) CancelOrder(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls["cancel"]++
	if err, ok := g.cancelErr[id]; ok {
		return err
	}
	for i, o := range g.orders {
		if o.ID == id {
			g.orders = append(g.orders[:i], g.orders[i+1:]...)
			g.canceled = append(g.canceled, id)
			return nil
		}
	}
	return &domain.APIError{Op: "order_cancel", Message: "order not found " + id}
}

func (g *fakeGateway) openFor(pair domain.Pair) []domain.Order {
	g.mu.Lock()
	defer g.mu.Unlock()
	return domain.OrdersForPair(g.orders, pair)
}

type fakeRates struct {
	rates domain.Rates
	err   error
}

func (f *fakeRates) GetReferenceRates(_ context.Context, _ []domain.Pair) (domain.Rates, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(domain.Rates, len(f.rates))
	out.Merge(f.rates)
	return out, nil
}
