package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	slogzap "github.com/samber/slog-zap/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	globalLogger *slog.Logger
	mu     sync.Mutex
)

// ParseLevel maps a config level string to slog and zap levels. Unknown values map to info.
func ParseLevel(levelStr string) (slog.Level, zapcore.Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case "DEBUG":
		return slog.LevelDebug, zapcore.DebugLevel, true
	case "INFO", "":
		return slog.LevelInfo, zapcore.InfoLevel, true
	case "WARN", "WARNING":
		return slog.LevelWarn, zapcore.WarnLevel, true
	case "ERROR":
		return slog.LevelError, zapcore.ErrorLevel, true
	default:
		return slog.LevelInfo, zapcore.InfoLevel, false
	}
}

// Setup builds the zap core for the given level and bridges the global slog logger onto it.
// When file is set, zap appends to it instead of stderr. The returned zap logger is handed to
// clients that log with typed fields; callers should Sync it before exit.
func Setup(levelStr, file string) (*zap.Logger, error) {
	slogLevel, zapLevel, known := ParseLevel(levelStr)

	zapCfg := zap.NewProductionConfig()
	if zapLevel == zapcore.DebugLevel {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(zapLevel)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if file != "" {
		zapCfg.OutputPaths = []string{file}
	}

	zapLogger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build zap logger: %w", err)
	}

	handler := slogzap.Option{
		Level:  slogLevel,
		Logger: zapLogger,
	}.NewZapHandler()

	mu.Lock()
	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
	mu.Unlock()

	if !known {
		Warn("Invalid log level string, defaulting to INFO", "input", levelStr)
	}
	return zapLogger, nil
}

// InitSlog initializes the global slog logger with a JSON handler on stdout.
// Used before the zap core exists and by tests.
func InitSlog(levelStr string) {
	parsedLevel, _, known := ParseLevel(levelStr)

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parsedLevel})
	mu.Lock()
	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
	mu.Unlock()

	if !known {
		Warn("Invalid log level string, defaulting to INFO", "input", levelStr)
	}
}

func current() *slog.Logger {
	mu.Lock()
	l := globalLogger
	mu.Unlock()
	if l == nil {
		InitSlog("INFO")
		return current()
	}
	return l
}

// Debug logs a message at DebugLevel.
func Debug(msg string, args ...any) {
	l := current()
	if l.Enabled(context.Background(), slog.LevelDebug) {
		l.Debug(msg, args...)
	}
}

// Info logs a message at InfoLevel.
func Info(msg string, args ...any) {
	current().Info(msg, args...)
}

// Warn logs a message at WarnLevel.
func Warn(msg string, args ...any) {
	current().Warn(msg, args...)
}

// Error logs a message at ErrorLevel.
func Error(msg string, args ...any) {
	current().Error(msg, args...)
}

// Fatal logs a message at ErrorLevel then exits.
func Fatal(msg string, args ...any) {
	current().Error(msg, args...)
	os.Exit(1)
}
