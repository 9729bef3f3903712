package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logLevelNames = map[LogLevel]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

var zapLevels = map[LogLevel]zapcore.Level{
	LevelDebug: zapcore.DebugLevel,
	LevelInfo:  zapcore.InfoLevel,
	LevelWarn:  zapcore.WarnLevel,
	LevelError: zapcore.ErrorLevel,
}

// New builds a Logger writing to stderr. format is "json" or "console".
func New(level LogLevel, format string) (*Logger, error) {
	cfg := zap.NewProductionConfig()
	if format != "json" {
		cfg = zap.NewDevelopmentConfig()
		cfg.Development = false
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	cfg.DisableStacktrace = true
	cfg.Level = zap.NewAtomicLevelAt(zapLevels[level])

	z, err := cfg.Build(zap.AddCallerSkip(2))
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return &Logger{MinLevel: level, sugar: z.Sugar(), level: cfg.Level}, nil
}

// NewNop returns a Logger that discards everything.
func NewNop() *Logger {
	return NewWithCore(zapcore.NewNopCore())
}

// NewWithCore wraps an existing zap core, e.g. an observer in tests.
func NewWithCore(core zapcore.Core) *Logger {
	return &Logger{
		MinLevel: LevelDebug,
		sugar:    zap.New(core, zap.AddCallerSkip(2)).Sugar(),
		level:    zap.NewAtomicLevelAt(zapcore.DebugLevel),
	}
}

// SetLogLevel sets the minimum log level
func (l *Logger) SetLogLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.MinLevel = level
	l.level.SetLevel(zapLevels[level])
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}

func (l *Logger) log(level LogLevel, component, message string, args ...interface{}) {
	if l == nil || l.sugar == nil {
		return
	}

	l.mu.Lock()
	minLevel := l.MinLevel
	l.mu.Unlock()
	if level < minLevel {
		return
	}

	formattedMsg := fmt.Sprintf(message, args...)
	s := l.sugar
	if component != "" {
		s = s.With("component", component)
	}

	switch level {
	case LevelDebug:
		s.Debug(formattedMsg)
	case LevelInfo:
		s.Info(formattedMsg)
	case LevelWarn:
		s.Warn(formattedMsg)
	default:
		s.Error(formattedMsg)
	}
}

// Debug logs a debug message
func (l *Logger) Debug(component, message string, args ...interface{}) {
	l.log(LevelDebug, component, message, args...)
}

// Info logs an info message
func (l *Logger) Info(component, message string, args ...interface{}) {
	l.log(LevelInfo, component, message, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(component, message string, args ...interface{}) {
	l.log(LevelWarn, component, message, args...)
}

// Error logs an error message
func (l *Logger) Error(component, message string, args ...interface{}) {
	l.log(LevelError, component, message, args...)
}

// Fatal logs an error message and exits
func (l *Logger) Fatal(component, message string, args ...interface{}) {
	l.log(LevelError, component, message, args...)
	_ = l.Sync()
	os.Exit(1)
}

// String returns the level name used in startup banners.
func (lv LogLevel) String() string {
	if name, ok := logLevelNames[lv]; ok {
		return name
	}
	return "INFO"
}
