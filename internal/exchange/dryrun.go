package exchange

import (
	"context"

	"github.com/betbot/pairmaker/internal/domain"
	"github.com/betbot/pairmaker/internal/ports"
)

// DryRunGateway reads from the real gateway and only logs writes.
// With a nil inner gateway it runs offline: no balances, no open orders.
type DryRunGateway struct {
	inner ports.Gateway

	Created  int
	Canceled int
}

func NewDryRunGateway(inner ports.Gateway) *DryRunGateway {
	return &DryRunGateway{inner: inner}
}

func (g *DryRunGateway) GetBalances(ctx context.Context) (domain.Balances, error) {
	if g.inner == nil {
		return domain.Balances{}, ctx.Err()
	}
	return g.inner.GetBalances(ctx)
}

func (g *DryRunGateway) GetOpenOrders(ctx context.Context) ([]domain.Order, error) {
	if g.inner == nil {
		return nil, ctx.Err()
	}
	return g.inner.GetOpenOrders(ctx)
}

func (g *DryRunGateway) CreateOrder(_ context.Context, side domain.Side, pair domain.Pair, amount, price float64) error {
	g.Created++
	log.WithField("pair", pair.String()).Infof("[dry-run] order_create %s %s @ %v", side, domain.RoundAmount(amount), price)
	return nil
}

func (g *DryRunGateway) CancelOrder(_ context.Context, orderID string) error {
	g.Canceled++
	log.Infof("[dry-run] order_cancel %s", orderID)
	return nil
}
