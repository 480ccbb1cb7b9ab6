package ports

import (
	"context"

	"github.com/betbot/pairmaker/internal/domain"
)

// Capability interfaces the market maker consumes. Implementations live in
// internal/exchange and internal/rates; tests use in-memory fakes.

type BalanceGetter interface {
	// GetBalances returns available (not reserved) amounts per currency.
	GetBalances(ctx context.Context) (domain.Balances, error)
}

type OpenOrdersGetter interface {
	// GetOpenOrders returns the caller's open orders across all pairs and sides.
	GetOpenOrders(ctx context.Context) ([]domain.Order, error)
}

type OrderCreator interface {
	CreateOrder(ctx context.Context, side domain.Side, pair domain.Pair, amount, price float64) error
}

type OrderCanceler interface {
	CancelOrder(ctx context.Context, orderID string) error
}

// Gateway is the full exchange surface needed for one pass.
type Gateway interface {
	BalanceGetter
	OpenOrdersGetter
	OrderCreator
	OrderCanceler
}

type Authenticator interface {
	Authenticate(ctx context.Context) error
}

// RateSource supplies per-pair reference rates.
type RateSource interface {
	GetReferenceRates(ctx context.Context, pairs []domain.Pair) (domain.Rates, error)
}
