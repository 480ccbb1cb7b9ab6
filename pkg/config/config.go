package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/betbot/pairmaker/internal/domain"
	"github.com/betbot/pairmaker/pkg/secretstore"
)

const (
	DefaultExchangeURL = "https://api.exmo.com/v1"
	DefaultPairs       = "BTC_USD, ETH_USD, BTC_RUR, ETH_BTC"
	DefaultSpreadK     = 1.0
	DefaultReserve     = 0.99
	DefaultRatePerSec  = 5.0
	DefaultHTTPTimeout = 15 * time.Second
)

// ExchangeConfig 交易所接入配置
type ExchangeConfig struct {
	URL     string
	Key     string
	Secret  string
	Timeout time.Duration
}

// FeedsConfig 参考价来源；留空使用各源默认地址，"off" 关闭该源
type FeedsConfig struct {
	TickerURL  string
	BinanceURL string
}

type PlannerConfig struct {
	SpreadK float64
	Reserve float64
}

// RateLimitConfig 私有接口限速
type RateLimitConfig struct {
	PerSecond float64
	Burst     int
}

type LogConfig struct {
	Level      string
	File       string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
	PerRun     bool
}

// SecretsConfig Badger 凭证库，key/secret 未直接配置时使用
type SecretsConfig struct {
	Path string
	Key  string
}

// ProxyConfig 代理配置
type ProxyConfig struct {
	Host string
	Port int
}

// Config 应用配置
type Config struct {
	Exchange  ExchangeConfig
	Pairs     []domain.Pair
	Feeds     FeedsConfig
	Planner   PlannerConfig
	RateLimit RateLimitConfig
	Log       LogConfig
	Secrets   SecretsConfig
	Proxy     *ProxyConfig
	DryRun    bool

	// CredentialsFrom 记录凭证来源：config / env / secretstore
	CredentialsFrom string
}

// ConfigFile 配置文件结构（YAML/JSON）；指针字段区分“未设置”和零值
type ConfigFile struct {
	Exchange struct {
		URL            string `yaml:"url" json:"url"`
		Key            string `yaml:"key" json:"key"`
		Secret         string `yaml:"secret" json:"secret"`
		TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds"`
	} `yaml:"exchange" json:"exchange"`
	Pairs []string `yaml:"pairs" json:"pairs"`
	Feeds struct {
		TickerURL  string `yaml:"ticker_url" json:"ticker_url"`
		BinanceURL string `yaml:"binance_url" json:"binance_url"`
	} `yaml:"feeds" json:"feeds"`
	Planner struct {
		SpreadK *float64 `yaml:"spread_k" json:"spread_k"`
		Reserve *float64 `yaml:"reserve" json:"reserve"`
	} `yaml:"planner" json:"planner"`
	RateLimit struct {
		PerSecond *float64 `yaml:"per_second" json:"per_second"`
		Burst     int      `yaml:"burst" json:"burst"`
	} `yaml:"rate_limit" json:"rate_limit"`
	Log struct {
		Level      string `yaml:"level" json:"level"`
		File       string `yaml:"file" json:"file"`
		MaxSize    int    `yaml:"max_size" json:"max_size"`
		MaxBackups int    `yaml:"max_backups" json:"max_backups"`
		MaxAge     int    `yaml:"max_age" json:"max_age"`
		Compress   *bool  `yaml:"compress" json:"compress"`
		PerRun     bool   `yaml:"per_run" json:"per_run"`
	} `yaml:"log" json:"log"`
	Secrets struct {
		Path string `yaml:"path" json:"path"`
		Key  string `yaml:"key" json:"key"`
	} `yaml:"secrets" json:"secrets"`
	Proxy struct {
		Host string `yaml:"host" json:"host"`
		Port int    `yaml:"port" json:"port"`
	} `yaml:"proxy" json:"proxy"`
	DryRun *bool `yaml:"dry_run" json:"dry_run"`
}

// Load 按 环境变量 > 配置文件 > 默认值 构建配置并校验。
// filePath 为空时只用环境变量和默认值；当前目录的 .env 会先被加载（不覆盖已有环境变量）。
func Load(filePath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(errors.Cause(err)) {
		return nil, errors.Wrap(err, "加载 .env 失败")
	}

	cf := &ConfigFile{}
	if filePath != "" {
		var err error
		cf, err = loadConfigFile(filePath)
		if err != nil {
			return nil, errors.Wrapf(err, "加载配置文件失败 %s", filePath)
		}
	}

	cfg, err := build(cf)
	if err != nil {
		return nil, err
	}
	if err := cfg.resolveSecrets(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "配置验证失败")
	}
	cfg.applyProxy()
	return cfg, nil
}

// loadConfigFile 加载配置文件（支持 YAML 和 JSON）
func loadConfigFile(filePath string) (*ConfigFile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrap(err, "读取配置文件失败")
	}

	var cf ConfigFile
	switch ext := strings.ToLower(filepath.Ext(filePath)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cf); err != nil {
			return nil, errors.Wrap(err, "解析 YAML 配置文件失败")
		}
	case ".json":
		if err := json.Unmarshal(data, &cf); err != nil {
			return nil, errors.Wrap(err, "解析 JSON 配置文件失败")
		}
	default:
		return nil, errors.Errorf("不支持的配置文件格式: %s (支持 .yaml, .yml, .json)", ext)
	}
	return &cf, nil
}

func build(cf *ConfigFile) (*Config, error) {
	pairList := splitList(DefaultPairs)
	if len(cf.Pairs) > 0 {
		pairList = cf.Pairs
	}
	if env := os.Getenv("PAIRS"); strings.TrimSpace(env) != "" {
		pairList = splitList(env)
	}
	pairs, err := domain.ParsePairs(pairList)
	if err != nil {
		return nil, errors.Wrap(err, "配置验证失败")
	}

	timeout := DefaultHTTPTimeout
	if cf.Exchange.TimeoutSeconds > 0 {
		timeout = time.Duration(cf.Exchange.TimeoutSeconds) * time.Second
	}

	cfg := &Config{
		Exchange: ExchangeConfig{
			URL:     getEnv("EXCHANGE_URL", orDefault(cf.Exchange.URL, DefaultExchangeURL)),
			Key:     getEnv("EXCHANGE_KEY", cf.Exchange.Key),
			Secret:  getEnv("EXCHANGE_SECRET", cf.Exchange.Secret),
			Timeout: timeout,
		},
		Pairs: pairs,
		Feeds: FeedsConfig{
			TickerURL:  getEnv("TICKER_FEED_URL", cf.Feeds.TickerURL),
			BinanceURL: getEnv("BINANCE_FEED_URL", cf.Feeds.BinanceURL),
		},
		Planner: PlannerConfig{
			SpreadK: parseFloatEnv("PLANNER_SPREAD_K", floatOr(cf.Planner.SpreadK, DefaultSpreadK)),
			Reserve: parseFloatEnv("PLANNER_RESERVE", floatOr(cf.Planner.Reserve, DefaultReserve)),
		},
		RateLimit: RateLimitConfig{
			PerSecond: parseFloatEnv("RATE_LIMIT_PER_SECOND", floatOr(cf.RateLimit.PerSecond, DefaultRatePerSec)),
			Burst:     cf.RateLimit.Burst,
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", orDefault(cf.Log.Level, "info")),
			File:       getEnv("LOG_FILE", orDefault(cf.Log.File, "logs/bot.log")),
			MaxSize:    intOr(cf.Log.MaxSize, 100),
			MaxBackups: intOr(cf.Log.MaxBackups, 3),
			MaxAge:     intOr(cf.Log.MaxAge, 7),
			Compress:   boolOr(cf.Log.Compress, true),
			PerRun:     cf.Log.PerRun,
		},
		Secrets: SecretsConfig{
			Path: getEnv("GOBET_SECRET_DB", cf.Secrets.Path),
			Key:  getEnv("GOBET_SECRET_KEY", cf.Secrets.Key),
		},
		DryRun: parseBoolEnv("DRY_RUN", boolOr(cf.DryRun, false)),
	}
	if cfg.RateLimit.Burst <= 0 {
		cfg.RateLimit.Burst = 1
	}

	if cf.Exchange.Key != "" || cf.Exchange.Secret != "" {
		cfg.CredentialsFrom = "config"
	}
	if os.Getenv("EXCHANGE_KEY") != "" || os.Getenv("EXCHANGE_SECRET") != "" {
		cfg.CredentialsFrom = "env"
	}

	host := getEnv("PROXY_HOST", cf.Proxy.Host)
	port := parseIntEnv("PROXY_PORT", cf.Proxy.Port)
	if host != "" && port > 0 {
		cfg.Proxy = &ProxyConfig{Host: host, Port: port}
	}
	return cfg, nil
}

// resolveSecrets 直接配置的凭证为空且配置了凭证库时，从 Badger 读取
func (c *Config) resolveSecrets() error {
	if c.Exchange.Key != "" && c.Exchange.Secret != "" {
		return nil
	}
	if strings.TrimSpace(c.Secrets.Path) == "" {
		return nil
	}
	encKey, err := secretstore.ParseKey(c.Secrets.Key)
	if err != nil {
		return &domain.ValidationError{Field: "secrets.key", Reason: err.Error()}
	}
	store, err := secretstore.Open(secretstore.OpenOptions{Path: c.Secrets.Path, EncryptionKey: encKey})
	if err != nil {
		return errors.Wrap(err, "打开凭证库失败")
	}
	defer store.Close()

	key, secret, err := store.Credentials()
	if err != nil {
		return errors.Wrap(err, "读取凭证失败")
	}
	if c.Exchange.Key == "" {
		c.Exchange.Key = key
	}
	if c.Exchange.Secret == "" {
		c.Exchange.Secret = secret
	}
	if key != "" || secret != "" {
		c.CredentialsFrom = "secretstore"
	}
	return nil
}

// applyProxy 设置代理环境变量，resty 会从环境变量读取
func (c *Config) applyProxy() {
	if c.Proxy == nil {
		return
	}
	proxyURL := fmt.Sprintf("http://%s:%d", c.Proxy.Host, c.Proxy.Port)
	for _, k := range []string{"HTTP_PROXY", "HTTPS_PROXY", "http_proxy", "https_proxy"} {
		os.Setenv(k, proxyURL)
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if len(c.Pairs) == 0 {
		return &domain.ValidationError{Field: "pairs", Reason: "至少需要一个交易对"}
	}
	for _, p := range c.Pairs {
		if p.Base == "" || p.Target == "" {
			return &domain.ValidationError{Field: "pairs", Reason: fmt.Sprintf("交易对格式错误: %q", p.String())}
		}
	}
	if strings.TrimSpace(c.Exchange.URL) == "" {
		return &domain.ValidationError{Field: "exchange.url", Reason: "不能为空"}
	}
	if !c.DryRun && (c.Exchange.Key == "" || c.Exchange.Secret == "") {
		return &domain.ValidationError{Field: "exchange.key", Reason: "EXCHANGE_KEY/EXCHANGE_SECRET 未配置"}
	}
	if c.Planner.Reserve <= 0 || c.Planner.Reserve > 1 {
		return &domain.ValidationError{Field: "planner.reserve", Reason: "必须在 (0, 1] 之间"}
	}
	if c.Planner.SpreadK <= 0 {
		return &domain.ValidationError{Field: "planner.spread_k", Reason: "必须大于 0"}
	}
	if c.RateLimit.PerSecond < 0 {
		return &domain.ValidationError{Field: "rate_limit.per_second", Reason: "不能为负数"}
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func floatOr(v *float64, def float64) float64 {
	if v != nil {
		return *v
	}
	return def
}

func boolOr(v *bool, def bool) bool {
	if v != nil {
		return *v
	}
	return def
}

func intOr(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// parseIntEnv 解析整数环境变量
func parseIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// parseFloatEnv 解析浮点数环境变量
func parseFloatEnv(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// parseBoolEnv 解析布尔环境变量
func parseBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
