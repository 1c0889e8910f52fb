package logger

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// Custom severities for optimization output, slotted between the standard
// slog levels: suggestions sit between Debug and Info, tips between Info and
// Warn.
const (
	LevelSuggestion = slog.Level(-2)
	LevelTip        = slog.Level(2)
)

// Interface defines logging methods used by the inspector
type Interface interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Info(msg string, args ...any)
	Debug(msg string, args ...any)
}

// Logger implements the logging interface
type Logger struct {
	logger *slog.Logger
}

// New creates a new logger instance
func New() *Logger {
	return NewWithLevel(slog.LevelInfo)
}

// NewWithLevel creates a new logger with specified level
func NewWithLevel(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: renameCustomLevels,
	})
	return &Logger{
		logger: slog.New(handler),
	}
}

// NewPretty creates a logger with a colorized console handler, used by the CLI
func NewPretty(level slog.Level) *Logger {
	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:       level,
		TimeFormat:  time.Kitchen,
		ReplaceAttr: renameCustomLevels,
	})
	return &Logger{
		logger: slog.New(handler),
	}
}

func renameCustomLevels(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	level, ok := a.Value.Any().(slog.Level)
	if !ok {
		return a
	}
	switch level {
	case LevelTip:
		a.Value = slog.StringValue("TIP")
	case LevelSuggestion:
		a.Value = slog.StringValue("SUGGESTION")
	}
	return a
}

// Error logs an error message
func (l *Logger) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

// Info logs an info message
func (l *Logger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

// Tip logs an optimization tip
func (l *Logger) Tip(msg string, args ...any) {
	l.logger.Log(context.Background(), LevelTip, msg, args...)
}

// Suggestion logs inefficiency details
func (l *Logger) Suggestion(msg string, args ...any) {
	l.logger.Log(context.Background(), LevelSuggestion, msg, args...)
}

// GetSlogLogger returns the underlying slog logger
func (l *Logger) GetSlogLogger() *slog.Logger {
	return l.logger
}

// Error creates a structured error field
func Error(err error) slog.Attr {
	return slog.Any("error", err)
}

// Stack creates a structured stack field
func Stack(stack string) slog.Attr {
	return slog.String("stack", stack)
}
