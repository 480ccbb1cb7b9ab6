package rates

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/betbot/pairmaker/internal/domain"
)

var log = logrus.WithField("component", "rates")

// Feed is one upstream source of reference rates.
type Feed interface {
	Name() string
	Fetch(ctx context.Context, pairs []domain.Pair) (domain.Rates, error)
}

// currencyAliases collapses locale-specific codes to the exchange's code.
var currencyAliases = map[string]string{
	"RUB": "RUR",
}

func normalizeCurrency(c string) string {
	c = strings.ToUpper(strings.TrimSpace(c))
	if alias, ok := currencyAliases[c]; ok {
		return alias
	}
	return c
}

func normalizePair(p domain.Pair) domain.Pair {
	return domain.Pair{Base: normalizeCurrency(p.Base), Target: normalizeCurrency(p.Target)}
}

// wanted maps normalized pairs back to the pairs the caller asked for.
func wanted(pairs []domain.Pair) map[domain.Pair]domain.Pair {
	m := make(map[domain.Pair]domain.Pair, len(pairs))
	for _, p := range pairs {
		m[normalizePair(p)] = p
	}
	return m
}

// parseRate 容忍空串或非法数字：返回无效的参考价，由调用方丢弃
func parseRate(buy, sell string) domain.ReferenceRate {
	b, errB := decimal.NewFromString(strings.TrimSpace(buy))
	s, errS := decimal.NewFromString(strings.TrimSpace(sell))
	if errB != nil || errS != nil {
		return domain.ReferenceRate{}
	}
	return domain.ReferenceRate{Buy: b.InexactFloat64(), Sell: s.InexactFloat64()}
}
