package logging

import (
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Verbosity levels used with logger.V(...). INFO is the default; DEBUG and
// TRACE are progressively chattier.
const (
	INFO  = 0
	DEBUG = 1
	TRACE = 2
)

// Log is the package-global logger. It discards everything until Setup or
// NewTestLogger replaces it.
var Log = logr.Discard()

// Setup builds the process logger at the given verbosity and installs it as
// the package global.
func Setup(verbosity int) logr.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-verbosity))
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	z, err := cfg.Build()
	if err != nil {
		// Fall back to a no-op logger rather than failing process startup
		// over logging configuration.
		z = zap.NewNop()
	}
	Log = zapr.NewLogger(z)
	return Log
}

// NewTestLogger installs a development logger at TRACE verbosity for use in
// test suites.
func NewTestLogger() logr.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-TRACE))

	z, err := cfg.Build()
	if err != nil {
		z = zap.NewNop()
	}
	Log = zapr.NewLogger(z)
	return Log
}
