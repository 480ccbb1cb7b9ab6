package marketmaker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/betbot/pairmaker/internal/domain"
	"github.com/betbot/pairmaker/internal/ports"
)

// Options wires an Orchestrator.
type Options struct {
	Pairs   []domain.Pair
	Planner PlannerConfig
	// Random defaults to a time-seeded source.
	Random Random
}

// Orchestrator runs one pass over the configured pairs, strictly in order:
// resolve existing orders, then plan and submit a fresh batch.
type Orchestrator struct {
	gateway  ports.Gateway
	rates    ports.RateSource
	pairs    []domain.Pair
	resolver *Resolver
	planner  *Planner
}

func NewOrchestrator(gateway ports.Gateway, rates ports.RateSource, opts Options) *Orchestrator {
	rnd := opts.Random
	if rnd == nil {
		rnd = NewRandom(time.Now().UnixNano())
	}
	return &Orchestrator{
		gateway:  gateway,
		rates:    rates,
		pairs:    opts.Pairs,
		resolver: NewResolver(gateway, rnd),
		planner:  NewPlanner(opts.Pairs, rnd, opts.Planner),
	}
}

// Run executes one pass. Errors inside a pair are logged and recorded in the
// report; only snapshot failures, auth failures and ctx cancellation end the pass.
func (o *Orchestrator) Run(ctx context.Context) (*RunReport, error) {
	report := &RunReport{RunID: uuid.NewString(), StartedAt: time.Now()}
	lg := log.WithField("run", report.RunID)
	defer func() { report.Duration = time.Since(report.StartedAt) }()

	balances, err := o.gateway.GetBalances(ctx)
	if err != nil {
		return report, fmt.Errorf("get balances: %w", err)
	}
	rates, err := o.rates.GetReferenceRates(ctx, o.pairs)
	if err != nil {
		return report, fmt.Errorf("get reference rates: %w", err)
	}
	lg.Infof("开始本轮：%d 个交易对，%d 个参考价", len(o.pairs), len(rates))

	for _, pair := range o.pairs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		pr, err := o.runPair(ctx, pair, balances, rates, lg.WithField("pair", pair.String()))
		report.Pairs = append(report.Pairs, pr)
		if err != nil {
			return report, err
		}
	}

	planned, submitted, failed := report.Totals()
	lg.Infof("本轮结束：planned=%d submitted=%d failed=%d", planned, submitted, failed)
	return report, nil
}

func (o *Orchestrator) runPair(ctx context.Context, pair domain.Pair, balances domain.Balances, rates domain.Rates, lg *logrus.Entry) (PairReport, error) {
	pr := PairReport{Pair: pair}

	pr.Resolution, pr.ResolveErr = o.resolveSafely(ctx, pair, lg)
	if pr.ResolveErr != nil {
		if domain.IsAuthError(pr.ResolveErr) {
			return pr, pr.ResolveErr
		}
		lg.WithError(pr.ResolveErr).Error("处理已有挂单失败，放弃该交易对剩余的撤单步骤")
	}

	plan, err := o.planner.Plan(pair, balances, rates)
	if err != nil {
		pr.PlanErr = err
		lg.WithError(err).Error("生成订单计划失败")
		return pr, nil
	}
	pr.Planned = plan.Size()

	for _, side := range domain.Sides {
		for _, po := range plan.Orders(side) {
			price := o.planner.QuotePrice(side, po.Price)
			if po.Amount <= 0 || price <= 0 {
				lg.Warnf("跳过无效订单: %s %v @ %v", side, po.Amount, price)
				pr.Failed++
				continue
			}
			if err := o.gateway.CreateOrder(ctx, side, pair, po.Amount, price); err != nil {
				if domain.IsAuthError(err) {
					return pr, err
				}
				pr.Failed++
				lg.WithError(err).Errorf("下单失败: %s %s @ %v", side, domain.RoundAmount(po.Amount), price)
				continue
			}
			pr.Submitted++
			lg.Infof("已下单: %s %s @ %v", side, domain.RoundAmount(po.Amount), price)
		}
	}
	return pr, nil
}

// resolveSafely turns a panic in the resolver into an error so one pair can't end the pass.
func (o *Orchestrator) resolveSafely(ctx context.Context, pair domain.Pair, lg *logrus.Entry) (res *Resolution, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("unexpected fault resolving %s: %v", pair, rec)
		}
	}()
	return o.resolver.resolve(ctx, pair, lg)
}
