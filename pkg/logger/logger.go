// pkg/logger/logger.go

package logger

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu  sync.Mutex
	log *zap.Logger
)

// L returns the process logger, initializing a fallback if needed.
func L() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	if log == nil {
		setLocked(NewFallbackLogger())
	}
	return log
}

// setLocked installs a logger; callers hold mu.
func setLocked(l *zap.Logger) {
	log = l
	zap.ReplaceGlobals(l)
}

// ParseLogLevel maps a LOG_LEVEL-style string to a zap level, defaulting to Info.
func ParseLogLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// DefaultConsoleEncoderConfig returns the console encoder used for operator-facing output.
func DefaultConsoleEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg
}

// NewFallbackLogger builds a console-only logger for early startup and tests.
func NewFallbackLogger() *zap.Logger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(DefaultConsoleEncoderConfig()),
		zapcore.Lock(os.Stderr),
		ParseLogLevel(os.Getenv("LOG_LEVEL")),
	)
	return zap.New(core, zap.AddStacktrace(zapcore.ErrorLevel))
}

// InitFallback installs console-only logging unless a logger already exists.
// Safe to call repeatedly; it never replaces a file-backed logger set up by
// InitializeWithFallback.
func InitFallback() {
	mu.Lock()
	defer mu.Unlock()
	if log == nil {
		setLocked(NewFallbackLogger())
	}
}

// InitializeWithFallback sets up console logging plus a JSON file core when a
// writable log path exists; degrades to console-only otherwise.
func InitializeWithFallback() {
	path, err := FindWritableLogPath()
	if err != nil {
		InitFallback()
		return
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		InitFallback()
		return
	}

	jsonCfg := zap.NewProductionEncoderConfig()
	jsonCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	jsonCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	level := ParseLogLevel(os.Getenv("LOG_LEVEL"))
	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(DefaultConsoleEncoderConfig()), zapcore.Lock(os.Stderr), level),
		zapcore.NewCore(zapcore.NewJSONEncoder(jsonCfg), zapcore.AddSync(file), zapcore.DebugLevel),
	)

	mu.Lock()
	defer mu.Unlock()
	setLocked(zap.New(core, zap.AddStacktrace(zapcore.ErrorLevel)))
}

// FindWritableLogPath returns a per-user log file path, creating the directory.
func FindWritableLogPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".forge", "logs")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "forge.log"), nil
}

// Sync flushes buffered log entries.
func Sync() {
	mu.Lock()
	defer mu.Unlock()
	if log != nil {
		_ = log.Sync()
	}
}
