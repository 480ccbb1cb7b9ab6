package rates

import (
	"context"

	"github.com/betbot/pairmaker/internal/domain"
	"github.com/betbot/pairmaker/internal/ports"
)

var _ ports.RateSource = (*MergedSource)(nil)

// MergedSource queries feeds one after another and overwrites earlier entries
// with later ones. A feed that fails contributes nothing.
type MergedSource struct {
	feeds []Feed
}

func NewMergedSource(feeds ...Feed) *MergedSource {
	return &MergedSource{feeds: feeds}
}

func (m *MergedSource) GetReferenceRates(ctx context.Context, pairs []domain.Pair) (domain.Rates, error) {
	out := make(domain.Rates, len(pairs))
	for _, f := range m.feeds {
		got, err := f.Fetch(ctx, pairs)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			log.WithError(err).Warnf("行情源 %s 获取失败，按空结果处理", f.Name())
			continue
		}
		log.Debugf("行情源 %s 返回 %d 个参考价", f.Name(), len(got))
		out.Merge(got)
	}
	return out, nil
}
