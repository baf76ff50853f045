package logger

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// EnvVarLogLevel is the environment variable name for setting the log level.
	EnvVarLogLevel = "LOG_LEVEL"

	// EnvVarLogFormat selects the encoder: "console" for human readable
	// output, anything else for JSON.
	EnvVarLogFormat = "LOG_FORMAT"
)

var (
	mu    sync.Mutex
	Sugar *zap.SugaredLogger
)

// GetLogger returns the process-wide logger, building it from the
// environment on first use.
func GetLogger() *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()
	if Sugar == nil {
		Sugar = New(os.Getenv(EnvVarLogLevel), os.Getenv(EnvVarLogFormat)).Sugar()
	}
	return Sugar
}

// SetLogger replaces the process-wide logger. Tests use it to install an
// observer core.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	Sugar = l.Sugar()
}

// Sync flushes buffered log entries.
func Sync() {
	mu.Lock()
	defer mu.Unlock()
	if Sugar != nil {
		_ = Sugar.Sync()
	}
}

// New builds a zap logger for the given level and format.
// Caller information is only attached at debug level.
func New(level, format string) *zap.Logger {
	lev := ParseLogLevel(level)

	var cfg zap.Config
	if strings.EqualFold(strings.TrimSpace(format), "console") {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(lev)
	cfg.DisableCaller = lev > zapcore.DebugLevel

	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l.With(zap.String("module", "menu-admin"))
}

// ParseLogLevel converts a string representation of a log level into a zapcore.Level.
// Defaults to info for unrecognized strings.
func ParseLogLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
