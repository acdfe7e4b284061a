package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the process-wide sugared logger. It is a no-op until Initialize
// is called so packages can log safely from tests.
var Logger *zap.SugaredLogger = zap.NewNop().Sugar()

// Initialize sets up the global logger. format is "json" or "console".
func Initialize(level, format string) error {
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	var zl *zap.Logger
	if format == "json" {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(lvl)
		zl, err = cfg.Build()
		if err != nil {
			return err
		}
	} else {
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zl = zap.New(zapcore.NewCore(
			zapcore.NewConsoleEncoder(encCfg),
			zapcore.AddSync(os.Stdout),
			lvl,
		))
	}

	Logger = zl.Sugar()
	return nil
}

// Named returns a child logger tagged with a component name.
func Named(component string) *zap.SugaredLogger {
	return Logger.With("component", component)
}

// Sync flushes buffered log entries.
func Sync() {
	_ = Logger.Sync()
}
