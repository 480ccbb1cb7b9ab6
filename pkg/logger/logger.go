package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	currentLogFile string
	fileWriter     *lumberjack.Logger
	logMu          sync.Mutex
)

// Config 日志配置
type Config struct {
	Level      string    // debug, info, warn, error
	OutputFile string    // 为空则只输出到控制台
	MaxSize    int       // MB
	MaxBackups int       // 保留的旧日志文件数量
	MaxAge     int       // 保留天数
	Compress   bool      // 压缩旧日志
	PerRun     bool      // 每次运行单独一个日志文件
	Console    io.Writer // 默认 os.Stdout
}

const timestampFormat = "06-01-02 15:04:05" // yy-mm-dd HH:MM:ss

func newFormatter() logrus.Formatter {
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: timestampFormat,
		ForceColors:     true,
	}
}

// runLogFileName logs/bot.log -> logs/bot_2026-01-02_15-04-05.log
func runLogFileName(basePath string, start time.Time) string {
	dir := filepath.Dir(basePath)
	base := filepath.Base(basePath)
	ext := filepath.Ext(base)
	name := fmt.Sprintf("%s_%s%s", base[:len(base)-len(ext)], start.Format("2006-01-02_15-04-05"), ext)
	if dir == "." || dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}

// Init 初始化日志系统：控制台 + 可选的 lumberjack 轮转文件
func Init(config Config) error {
	logMu.Lock()
	defer logMu.Unlock()

	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		level = logrus.InfoLevel
	}

	console := config.Console
	if console == nil {
		console = os.Stdout
	}
	writers := []io.Writer{console}

	if fileWriter != nil {
		_ = fileWriter.Close()
		fileWriter = nil
	}
	currentLogFile = ""
	if config.OutputFile != "" {
		path := config.OutputFile
		if config.PerRun {
			path = runLogFileName(path, time.Now())
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		fileWriter = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    config.MaxSize,
			MaxBackups: config.MaxBackups,
			MaxAge:     config.MaxAge,
			Compress:   config.Compress,
		}
		writers = append(writers, fileWriter)
		currentLogFile = path
	}

	// 各组件用 logrus.WithField("component", ...) 打日志，直接配置标准实例
	logrus.SetOutput(io.MultiWriter(writers...))
	logrus.SetLevel(level)
	logrus.SetFormatter(newFormatter())
	return nil
}

// InitDefault 使用默认配置初始化日志系统
func InitDefault() error {
	return Init(Config{
		Level:      "info",
		OutputFile: "logs/bot.log",
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     7,
		Compress:   true,
	})
}

// Close 关闭日志文件
func Close() error {
	logMu.Lock()
	defer logMu.Unlock()
	currentLogFile = ""
	if fileWriter == nil {
		return nil
	}
	err := fileWriter.Close()
	fileWriter = nil
	return err
}

// GetCurrentLogFile 获取当前日志文件路径
func GetCurrentLogFile() string {
	logMu.Lock()
	defer logMu.Unlock()
	return currentLogFile
}

// WithField 带组件等字段的日志入口
func WithField(key string, value interface{}) *logrus.Entry {
	return logrus.WithField(key, value)
}

// WithFields 添加多个字段到日志上下文
func WithFields(fields logrus.Fields) *logrus.Entry {
	return logrus.WithFields(fields)
}
