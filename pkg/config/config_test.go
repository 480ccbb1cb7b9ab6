package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betbot/pairmaker/internal/domain"
	"github.com/betbot/pairmaker/pkg/secretstore"
)

var envKeys = []string{
	"EXCHANGE_URL", "EXCHANGE_KEY", "EXCHANGE_SECRET", "PAIRS",
	"TICKER_FEED_URL", "BINANCE_FEED_URL", "DRY_RUN",
	"PLANNER_SPREAD_K", "PLANNER_RESERVE", "RATE_LIMIT_PER_SECOND",
	"LOG_LEVEL", "LOG_FILE", "GOBET_SECRET_DB", "GOBET_SECRET_KEY",
	"PROXY_HOST", "PROXY_PORT",
}

// clearEnv 清空相关环境变量，测试结束后自动恢复
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DRY_RUN", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultExchangeURL, cfg.Exchange.URL)
	assert.Equal(t, DefaultHTTPTimeout, cfg.Exchange.Timeout)
	assert.Equal(t, []domain.Pair{
		{Base: "BTC", Target: "USD"},
		{Base: "ETH", Target: "USD"},
		{Base: "BTC", Target: "RUR"},
		{Base: "ETH", Target: "BTC"},
	}, cfg.Pairs)
	assert.Equal(t, 1.0, cfg.Planner.SpreadK)
	assert.Equal(t, 0.99, cfg.Planner.Reserve)
	assert.Equal(t, 5.0, cfg.RateLimit.PerSecond)
	assert.Equal(t, 1, cfg.RateLimit.Burst)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Log.Compress)
	assert.True(t, cfg.DryRun)
	assert.Nil(t, cfg.Proxy)
}

func TestLoad_YAMLFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "bot.yaml", `
exchange:
  url: https://example.test/v1
  key: file-key
  secret: file-secret
  timeout_seconds: 3
pairs: [ltc_usd, "XRP_BTC"]
planner:
  spread_k: 1.02
  reserve: 0.5
rate_limit:
  per_second: 0
  burst: 4
log:
  level: debug
  compress: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://example.test/v1", cfg.Exchange.URL)
	assert.Equal(t, "file-key", cfg.Exchange.Key)
	assert.Equal(t, 3*time.Second, cfg.Exchange.Timeout)
	assert.Equal(t, []domain.Pair{{Base: "LTC", Target: "USD"}, {Base: "XRP", Target: "BTC"}}, cfg.Pairs)
	assert.Equal(t, 1.02, cfg.Planner.SpreadK)
	assert.Equal(t, 0.5, cfg.Planner.Reserve)
	assert.Equal(t, 0.0, cfg.RateLimit.PerSecond)
	assert.Equal(t, 4, cfg.RateLimit.Burst)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.Log.Compress)
	assert.False(t, cfg.DryRun)
	assert.Equal(t, "config", cfg.CredentialsFrom)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "bot.json", `{"exchange": {"key": "file-key", "secret": "file-secret"}, "pairs": ["BTC_USD"]}`)
	t.Setenv("EXCHANGE_KEY", "env-key")
	t.Setenv("EXCHANGE_SECRET", "env-secret")
	t.Setenv("PAIRS", "eth_btc , doge_usd")
	t.Setenv("PLANNER_RESERVE", "0.9")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Exchange.Key)
	assert.Equal(t, "env-secret", cfg.Exchange.Secret)
	assert.Equal(t, []domain.Pair{{Base: "ETH", Target: "BTC"}, {Base: "DOGE", Target: "USD"}}, cfg.Pairs)
	assert.Equal(t, 0.9, cfg.Planner.Reserve)
	assert.Equal(t, "env", cfg.CredentialsFrom)
}

func TestLoad_CredentialsFromSecretStore(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	store, err := secretstore.Open(secretstore.OpenOptions{Path: dir})
	require.NoError(t, err)
	require.NoError(t, store.SetCredentials("db-key", "db-secret"))
	require.NoError(t, store.Close())

	t.Setenv("GOBET_SECRET_DB", dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "db-key", cfg.Exchange.Key)
	assert.Equal(t, "db-secret", cfg.Exchange.Secret)
	assert.Equal(t, "secretstore", cfg.CredentialsFrom)
}

func TestLoad_ValidationFailures(t *testing.T) {
	cases := []struct {
		name  string
		env   map[string]string
		field string
	}{
		{"missing credentials", map[string]string{}, "exchange.key"},
		{"malformed pair", map[string]string{"DRY_RUN": "1", "PAIRS": "BTCUSD"}, "pair"},
		{"reserve above one", map[string]string{"DRY_RUN": "1", "PLANNER_RESERVE": "1.5"}, "planner.reserve"},
		{"reserve zero", map[string]string{"DRY_RUN": "1", "PLANNER_RESERVE": "0"}, "planner.reserve"},
		{"spread non-positive", map[string]string{"DRY_RUN": "1", "PLANNER_SPREAD_K": "-1"}, "planner.spread_k"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			require.Error(t, err)
			assert.True(t, domain.IsValidationError(err), "got %v", err)
			assert.Contains(t, err.Error(), tc.field)
		})
	}
}

func TestLoad_EmptyPairs(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "bot.yaml", "pairs: [\" \"]\ndry_run: true\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
}

func TestLoad_BadFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeFile(t, "bot.toml", "x = 1"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_Proxy(t *testing.T) {
	clearEnv(t)
	for _, k := range []string{"HTTP_PROXY", "HTTPS_PROXY", "http_proxy", "https_proxy"} {
		t.Setenv(k, "")
	}
	t.Setenv("DRY_RUN", "true")
	t.Setenv("PROXY_HOST", "127.0.0.1")
	t.Setenv("PROXY_PORT", "15236")

	cfg, err := Load("")
	require.NoError(t, err)
	require.NotNil(t, cfg.Proxy)
	assert.Equal(t, "http://127.0.0.1:15236", os.Getenv("HTTPS_PROXY"))
}
