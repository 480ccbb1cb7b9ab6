package rates

import (
	"context"
	"time"

	"github.com/betbot/pairmaker/internal/domain"
	sdkhttp "github.com/betbot/pairmaker/pkg/sdk/http"
)

const DefaultBinanceURL = "https://api.binance.com"

type bookTicker struct {
	Symbol   string `json:"symbol"`
	BidPrice string `json:"bidPrice"`
	AskPrice string `json:"askPrice"`
}

// BinanceFeed maps Binance best bid/ask onto configured pairs.
// A USD pair is served by the USDT market when no USD market exists.
type BinanceFeed struct {
	http *sdkhttp.Client
}

func NewBinanceFeed(url string, timeout time.Duration) *BinanceFeed {
	if url == "" {
		url = DefaultBinanceURL
	}
	return &BinanceFeed{http: sdkhttp.NewClient(url, timeout)}
}

func (f *BinanceFeed) Name() string { return "binance" }

type symbolRef struct {
	pair  domain.Pair
	exact bool
}

// symbols maps Binance symbols to requested pairs.
func symbols(pairs []domain.Pair) map[string]symbolRef {
	m := make(map[string]symbolRef, len(pairs))
	for _, orig := range pairs {
		p := normalizePair(orig)
		if p.Target == "USD" {
			if _, ok := m[p.Base+"USDT"]; !ok {
				m[p.Base+"USDT"] = symbolRef{pair: orig}
			}
		}
		m[p.Base+p.Target] = symbolRef{pair: orig, exact: true}
	}
	return m
}

func (f *BinanceFeed) Fetch(ctx context.Context, pairs []domain.Pair) (domain.Rates, error) {
	var tickers []bookTicker
	if err := f.http.GetJSON(ctx, "/api/v3/ticker/bookTicker", nil, &tickers); err != nil {
		return nil, err
	}
	bySymbol := symbols(pairs)
	out := make(domain.Rates)
	exact := make(map[domain.Pair]bool)
	for _, t := range tickers {
		ref, ok := bySymbol[t.Symbol]
		if !ok {
			continue
		}
		// exact market wins over the USDT fallback regardless of order
		if exact[ref.pair] && !ref.exact {
			continue
		}
		r := parseRate(t.BidPrice, t.AskPrice)
		if !r.Valid() {
			continue
		}
		out[ref.pair] = r
		exact[ref.pair] = ref.exact
	}
	return out, nil
}
