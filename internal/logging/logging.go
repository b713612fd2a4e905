// Package logging builds the zap logger the kernel, its provers, and the
// reasonctl driver share for diagnostics. It has no per-subsystem
// categories and no Mangle audit trail: every caller logs through the
// same logger.
//
// Grounded on cmd/nerd/main.go's zap.NewProductionConfig/AtomicLevelAt
// bootstrap (verbose flag toggles debug level) and internal/logging's
// file-based initialization shape, adapted from a Mangle-audit sink to a
// plain log file that each run appends to.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls where and how verbosely the kernel logs.
type Config struct {
	// Dir is the directory the log file is written to, as
	// "<Dir>/reasonkernel.log"; it is created if missing. Empty disables
	// file output — only stderr is used.
	Dir string
	// Verbose enables debug-level logging (cobra's --verbose flag).
	Verbose bool
}

// New builds a *zap.Logger writing structured JSON to stderr and,
// when cfg.Dir is set, additionally to "<Dir>/reasonkernel.log".
func New(cfg Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Verbose {
		level = zapcore.DebugLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderCfg)

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level),
	}

	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
			return nil, fmt.Errorf("create log directory %s: %w", cfg.Dir, err)
		}
		path := filepath.Join(cfg.Dir, "reasonkernel.log")
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", path, err)
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(f), level))
	}

	return zap.New(zapcore.NewTee(cores...)), nil
}

// Sugared is a convenience wrapper returning the *zap.SugaredLogger form
// every DiagnosticLogger interface in this codebase (internal/normalize,
// internal/kernel) is satisfied by.
func Sugared(cfg Config) (*zap.SugaredLogger, error) {
	l, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}
