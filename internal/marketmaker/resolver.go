package marketmaker

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/betbot/pairmaker/internal/domain"
	"github.com/betbot/pairmaker/internal/ports"
)

var log = logrus.WithField("component", "marketmaker")

// ResolverState classifies a pair's open orders at the start of a pass.
type ResolverState string

const (
	StateNoOrders ResolverState = "no_orders"
	StateBuyOnly  ResolverState = "buy_only"
	StateSellOnly ResolverState = "sell_only"
	StateBoth     ResolverState = "both"
)

func classify(buys, sells []domain.Order) ResolverState {
	switch {
	case len(buys) == 0 && len(sells) == 0:
		return StateNoOrders
	case len(sells) == 0:
		return StateBuyOnly
	case len(buys) == 0:
		return StateSellOnly
	default:
		return StateBoth
	}
}

// ClosingOrder is the single order sent to flatten a two-sided book.
type ClosingOrder struct {
	Side      domain.Side
	Pair      domain.Pair
	Amount    float64
	Price     float64
	Submitted bool
	Err       error
}

// Resolution is what the resolver did for one pair.
type Resolution struct {
	State        ResolverState
	Closing      *ClosingOrder
	Canceled     int
	CancelFailed int
}

// Resolver closes out and clears a pair's existing orders.
//
// Both sides open: pick a side at random, cancel our orders on it, then send one
// order on that side priced to cross every opposite order, capped by balance.
// Whatever the state, finish with a fresh cancel sweep so planning starts from zero.
type Resolver struct {
	gateway ports.Gateway
	rnd     Random
}

func NewResolver(gateway ports.Gateway, rnd Random) *Resolver {
	return &Resolver{gateway: gateway, rnd: rnd}
}

// Resolve runs the resolver for one pair. Order-level create/cancel failures are
// logged and counted; fetch failures are returned.
func (r *Resolver) Resolve(ctx context.Context, pair domain.Pair) (*Resolution, error) {
	return r.resolve(ctx, pair, log.WithField("pair", pair.String()))
}

func (r *Resolver) resolve(ctx context.Context, pair domain.Pair, lg *logrus.Entry) (*Resolution, error) {
	orders, err := r.gateway.GetOpenOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("get open orders: %w", err)
	}
	buys, sells := domain.SplitBySide(domain.OrdersForPair(orders, pair))
	res := &Resolution{State: classify(buys, sells)}

	switch res.State {
	case StateNoOrders:
		lg.Info("没有挂单")
	case StateBuyOnly:
		lg.Warnf("只有买单 (%d)，不需要平仓单", len(buys))
	case StateSellOnly:
		lg.Warnf("只有卖单 (%d)，不需要平仓单", len(sells))
	case StateBoth:
		closing, err := r.close(ctx, pair, buys, sells, res, lg)
		res.Closing = closing
		if err != nil {
			return res, err
		}
	}

	if err := r.cancelAll(ctx, pair, res, lg); err != nil {
		return res, err
	}
	return res, nil
}

func (r *Resolver) close(ctx context.Context, pair domain.Pair, buys, sells []domain.Order, res *Resolution, lg *logrus.Entry) (*ClosingOrder, error) {
	op := chooseSide(r.rnd)
	own, opposite := buys, sells
	if op == domain.SideSell {
		own, opposite = sells, buys
	}

	r.cancelOrders(ctx, own, res, lg)

	total := totalAmount(opposite)
	price := closingPrice(op, opposite)

	// fresh read: the plan-time snapshot is taken elsewhere and may be stale
	balances, err := r.gateway.GetBalances(ctx)
	if err != nil {
		return nil, fmt.Errorf("get balances: %w", err)
	}
	amount := capClosingAmount(op, pair, total, price, balances)

	c := &ClosingOrder{Side: op, Pair: pair, Amount: amount, Price: price}
	if amount <= 0 || price <= 0 {
		lg.Warnf("平仓单无法下：side=%s total=%s price=%v（余额不足）", op, domain.RoundAmount(total), price)
		return c, nil
	}

	lg.Infof("平仓单: %s %s @ %v (对手方合计 %s)", op, domain.RoundAmount(amount), price, domain.RoundAmount(total))
	if err := r.gateway.CreateOrder(ctx, op, pair, amount, price); err != nil {
		c.Err = err
		lg.WithError(err).Errorf("平仓单提交失败: %s %s @ %v", op, domain.RoundAmount(amount), price)
		return c, nil
	}
	c.Submitted = true
	return c, nil
}

// cancelAll re-reads the book and cancels every open order on pair.
func (r *Resolver) cancelAll(ctx context.Context, pair domain.Pair, res *Resolution, lg *logrus.Entry) error {
	orders, err := r.gateway.GetOpenOrders(ctx)
	if err != nil {
		return fmt.Errorf("get open orders for sweep: %w", err)
	}
	r.cancelOrders(ctx, domain.OrdersForPair(orders, pair), res, lg)
	return nil
}

func (r *Resolver) cancelOrders(ctx context.Context, orders []domain.Order, res *Resolution, lg *logrus.Entry) {
	for _, o := range orders {
		if err := r.gateway.CancelOrder(ctx, o.ID); err != nil {
			res.CancelFailed++
			lg.WithError(err).Errorf("撤单失败: id=%s %s %s @ %v", o.ID, o.Side, domain.RoundAmount(o.Amount), o.Price)
			continue
		}
		res.Canceled++
		lg.Debugf("已撤单: id=%s %s %s @ %v", o.ID, o.Side, domain.RoundAmount(o.Amount), o.Price)
	}
}
