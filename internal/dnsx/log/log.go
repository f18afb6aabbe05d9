// Package log provides the logging seam used throughout dnsx. Every
// consumer logs through the Logger interface rather than calling zap
// directly, so tests can swap in a noop or recording implementation.
package log

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// traceLevel sits one notch below zap's Debug so Trace-level calls can be
// filtered out even when a logger is configured at "debug".
const traceLevel = zapcore.DebugLevel - 1

var global Logger = newZapLogger(false, zapcore.InfoLevel)

// SetLogger replaces the global logger instance.
func SetLogger(l Logger) {
	global = l
}

// GetLogger returns the current global logger instance.
func GetLogger() Logger {
	return global
}

// Logger defines the dnsx logging interface.
type Logger interface {
	Error(fields map[string]any, msg string)
	Warn(fields map[string]any, msg string)
	Info(fields map[string]any, msg string)
	Debug(fields map[string]any, msg string)
	Trace(fields map[string]any, msg string)
}

// Configure rebuilds the global logger for the given environment ("dev" or
// "prod") and level ("trace", "debug", "info", "warn", "error").
func Configure(env, level string) error {
	isDev := env != "prod"

	lvl, err := parseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	global = newZapLogger(isDev, lvl)
	return nil
}

func parseLevel(level string) (zapcore.Level, error) {
	if strings.ToLower(level) == "trace" {
		return traceLevel, nil
	}
	return zapcore.ParseLevel(strings.ToLower(level))
}

// Error logs at error level using the global logger.
func Error(fields map[string]any, msg string) { global.Error(fields, msg) }

// Warn logs at warn level using the global logger.
func Warn(fields map[string]any, msg string) { global.Warn(fields, msg) }

// Info logs at info level using the global logger.
func Info(fields map[string]any, msg string) { global.Info(fields, msg) }

// Debug logs at debug level using the global logger.
func Debug(fields map[string]any, msg string) { global.Debug(fields, msg) }

// Trace logs at trace level using the global logger.
func Trace(fields map[string]any, msg string) { global.Trace(fields, msg) }

// zapLogger implements Logger using Uber's zap.
type zapLogger struct {
	base *zap.Logger
}

func newZapLogger(dev bool, level zapcore.Level) Logger {
	var config zap.Config
	if dev {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
	}
	config.Level = zap.NewAtomicLevelAt(level)
	config.EncoderConfig.TimeKey = "time"
	config.EncoderConfig.MessageKey = "msg"
	config.EncoderConfig.LevelKey = "level"

	logger, _ := config.Build()
	return &zapLogger{base: logger}
}

func (l *zapLogger) Error(fields map[string]any, msg string) {
	l.base.With(zapFields(fields)...).Error(msg)
}

func (l *zapLogger) Warn(fields map[string]any, msg string) {
	l.base.With(zapFields(fields)...).Warn(msg)
}

func (l *zapLogger) Info(fields map[string]any, msg string) {
	l.base.With(zapFields(fields)...).Info(msg)
}

func (l *zapLogger) Debug(fields map[string]any, msg string) {
	l.base.With(zapFields(fields)...).Debug(msg)
}

func (l *zapLogger) Trace(fields map[string]any, msg string) {
	if ce := l.base.Check(traceLevel, msg); ce != nil {
		ce.Write(zapFields(fields)...)
	}
}

func zapFields(m map[string]any) []zap.Field {
	fields := make([]zap.Field, 0, len(m))
	for k, v := range m {
		fields = append(fields, zap.Any(k, v))
	}
	return fields
}

// noopLogger discards all log messages.
type noopLogger struct{}

func (n *noopLogger) Error(map[string]any, string) {}
func (n *noopLogger) Warn(map[string]any, string)  {}
func (n *noopLogger) Info(map[string]any, string)  {}
func (n *noopLogger) Debug(map[string]any, string) {}
func (n *noopLogger) Trace(map[string]any, string) {}

// NewNoopLogger returns a Logger that discards all log messages.
func NewNoopLogger() Logger {
	return &noopLogger{}
}
