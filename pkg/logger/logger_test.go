package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_WritesConsoleAndFile(t *testing.T) {
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "bot.log")

	require.NoError(t, Init(Config{Level: "debug", OutputFile: path, Console: &console}))
	t.Cleanup(func() { _ = Close() })

	logrus.WithField("component", "test").Info("下单完成")
	WithFields(logrus.Fields{"pairs": 3}).Info("本轮开始")

	assert.Equal(t, path, GetCurrentLogFile())
	assert.Contains(t, console.String(), "下单完成")
	assert.Contains(t, console.String(), "本轮开始")

	require.NoError(t, Close())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "下单完成")
}

func TestInit_BadLevelFallsBackToInfo(t *testing.T) {
	var console bytes.Buffer
	require.NoError(t, Init(Config{Level: "loud", Console: &console}))

	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())
	assert.Empty(t, GetCurrentLogFile())

	WithField("component", "test").Debug("hidden")
	assert.False(t, strings.Contains(console.String(), "hidden"))
}

func TestRunLogFileName(t *testing.T) {
	start := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, filepath.Join("logs", "bot_2026-01-02_15-04-05.log"), runLogFileName("logs/bot.log", start))
	assert.Equal(t, "bot_2026-01-02_15-04-05.log", runLogFileName("bot.log", start))
}

func TestClose_ClearsCurrentLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")
	require.NoError(t, Init(Config{Level: "info", OutputFile: path, Console: &bytes.Buffer{}}))
	assert.Equal(t, path, GetCurrentLogFile())

	require.NoError(t, Close())
	assert.Empty(t, GetCurrentLogFile())

	require.NoError(t, Init(Config{Level: "info", Console: &bytes.Buffer{}}))
	assert.Empty(t, GetCurrentLogFile())
}
