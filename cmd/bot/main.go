package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/betbot/pairmaker/internal/dashboard"
	"github.com/betbot/pairmaker/internal/domain"
	"github.com/betbot/pairmaker/internal/exchange"
	"github.com/betbot/pairmaker/internal/marketmaker"
	"github.com/betbot/pairmaker/internal/ports"
	"github.com/betbot/pairmaker/internal/rates"
	"github.com/betbot/pairmaker/pkg/config"
	"github.com/betbot/pairmaker/pkg/logger"
	"github.com/betbot/pairmaker/pkg/ratelimit"
	"github.com/betbot/pairmaker/pkg/shutdown"
)

// feedOff 关闭某个行情源
const feedOff = "off"

var log = logger.WithField("component", "main")

func firstExistingFile(paths ...string) (string, bool) {
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

func main() {
	configPath := flag.String("config", "", "配置文件路径（支持 .yaml, .yml, .json）")
	dryRun := flag.Bool("dry-run", false, "纸交易模式：只读取余额和挂单，下单/撤单仅打印日志")
	seed := flag.Int64("seed", 0, "随机种子（0 表示按时间取种子）")
	flag.Parse()

	if err := logger.InitDefault(); err != nil {
		panic(fmt.Sprintf("初始化日志失败: %v", err))
	}

	path := *configPath
	if path == "" {
		if p, ok := firstExistingFile("yml/config.yaml", "config.yaml"); ok {
			path = p
			log.Infof("使用默认配置文件: %s", p)
		} else {
			log.Warnf("未指定配置文件，将使用环境变量和默认值")
		}
	}
	if *dryRun {
		os.Setenv("DRY_RUN", "true")
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Errorf("加载配置失败: %v", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		OutputFile: cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
		PerRun:     cfg.Log.PerRun,
	}); err != nil {
		log.Errorf("重新初始化日志失败: %v", err)
		os.Exit(1)
	}

	os.Exit(run(cfg, *seed))
}

func run(cfg *config.Config, seed int64) int {
	shutdowns := shutdown.NewManager()
	shutdowns.OnShutdown(func(context.Context) { _ = logger.Close() })
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		shutdowns.Shutdown(ctx)
	}()

	ctx, stop := shutdown.SignalContext(context.Background())
	defer stop()

	log.Infof("🚀 启动做市机器人：交易所=%s 交易对=%d dry_run=%v", cfg.Exchange.URL, len(cfg.Pairs), cfg.DryRun)

	gateway, err := newGateway(ctx, cfg)
	if err != nil {
		log.Errorf("交易所初始化失败: %v", err)
		return 1
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	orch := marketmaker.NewOrchestrator(gateway, newRateSource(cfg), marketmaker.Options{
		Pairs:   cfg.Pairs,
		Planner: marketmaker.PlannerConfig{SpreadK: cfg.Planner.SpreadK, Reserve: cfg.Planner.Reserve},
		Random:  marketmaker.NewRandom(seed),
	})

	report, err := orch.Run(ctx)
	fmt.Println(dashboard.RenderSummary(report))
	if err != nil {
		if domain.IsAuthError(err) {
			log.Errorf("鉴权失败，本轮中止: %v", err)
		} else {
			log.Errorf("本轮运行失败: %v", err)
		}
		return 1
	}
	return 0
}

func newGateway(ctx context.Context, cfg *config.Config) (ports.Gateway, error) {
	hasCreds := cfg.Exchange.Key != "" && cfg.Exchange.Secret != ""
	if !hasCreds {
		// 只有 dry-run 允许无凭证（Validate 已保证）
		log.Warnf("📝 未配置交易所凭证，dry-run 离线运行：余额为空，不会生成挂单")
		return exchange.NewDryRunGateway(nil), nil
	}

	var limiter ratelimit.RateLimiter = ratelimit.Unlimited{}
	if cfg.RateLimit.PerSecond > 0 {
		limiter = ratelimit.NewTokenBucket(cfg.RateLimit.Burst, cfg.RateLimit.PerSecond)
	}
	client := exchange.NewClient(
		exchange.Credentials{Key: cfg.Exchange.Key, Secret: cfg.Exchange.Secret},
		exchange.Options{URL: cfg.Exchange.URL, Timeout: cfg.Exchange.Timeout, Limiter: limiter},
	)
	if err := client.Authenticate(ctx); err != nil {
		return nil, err
	}
	log.Infof("交易所鉴权成功（凭证来源: %s）", cfg.CredentialsFrom)

	if cfg.DryRun {
		log.Warnf("📝 纸交易模式已启用：不会进行真实交易，订单信息仅记录在日志中")
		return exchange.NewDryRunGateway(client), nil
	}
	return client, nil
}

// newRateSource Binance 在前、交易所自身 ticker 在后，后者覆盖前者
func newRateSource(cfg *config.Config) ports.RateSource {
	var feeds []rates.Feed
	if !strings.EqualFold(cfg.Feeds.BinanceURL, feedOff) {
		feeds = append(feeds, rates.NewBinanceFeed(cfg.Feeds.BinanceURL, cfg.Exchange.Timeout))
	}
	if !strings.EqualFold(cfg.Feeds.TickerURL, feedOff) {
		tickerURL := cfg.Feeds.TickerURL
		if tickerURL == "" {
			tickerURL = strings.TrimSuffix(cfg.Exchange.URL, "/") + "/ticker"
		}
		feeds = append(feeds, rates.NewTickerFeed(tickerURL, cfg.Exchange.Timeout))
	}
	if len(feeds) == 0 {
		log.Warnf("所有行情源均已关闭，本轮不会生成挂单")
	}
	return rates.NewMergedSource(feeds...)
}
