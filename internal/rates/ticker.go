package rates

import (
	"context"
	"time"

	"github.com/betbot/pairmaker/internal/domain"
	sdkhttp "github.com/betbot/pairmaker/pkg/sdk/http"
)

const DefaultTickerURL = "https://api.exmo.com/v1/ticker"

type tickerEntry struct {
	BuyPrice  string `json:"buy_price"`
	SellPrice string `json:"sell_price"`
}

// TickerFeed reads a {"BTC_RUB": {"buy_price": "...", "sell_price": "..."}} ticker.
type TickerFeed struct {
	http *sdkhttp.Client
}

func NewTickerFeed(url string, timeout time.Duration) *TickerFeed {
	if url == "" {
		url = DefaultTickerURL
	}
	return &TickerFeed{http: sdkhttp.NewClient(url, timeout)}
}

func (f *TickerFeed) Name() string { return "ticker" }

func (f *TickerFeed) Fetch(ctx context.Context, pairs []domain.Pair) (domain.Rates, error) {
	raw := map[string]tickerEntry{}
	if err := f.http.GetJSON(ctx, "", nil, &raw); err != nil {
		return nil, err
	}
	want := wanted(pairs)
	out := make(domain.Rates)
	for key, e := range raw {
		p, err := domain.ParsePair(key)
		if err != nil {
			continue
		}
		orig, ok := want[normalizePair(p)]
		if !ok {
			continue
		}
		r := parseRate(e.BuyPrice, e.SellPrice)
		if !r.Valid() {
			continue
		}
		out[orig] = r
	}
	return out, nil
}
