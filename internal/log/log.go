// Package log provides centralized logging functionality using zap logger.
package log

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

var log *zap.SugaredLogger

// InitFile initializes the package-level logger writing to a file. The
// terminal UI owns stdout/stderr while it runs, so logs go to disk instead.
func InitFile(path string, debug bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}

	zapLogger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return fmt.Errorf("can't initialize zap logger: %v", err)
	}

	log = zapLogger.Sugar()
	return nil
}

func ensure() {
	if log == nil {
		// Fallback logger if not initialized
		zapLogger, _ := zap.NewProduction(zap.AddCallerSkip(1))
		log = zapLogger.Sugar()
	}
}

// GetSugaredLogger returns the sugared logger instance. Components take
// this at wiring time rather than calling the package functions directly.
func GetSugaredLogger() *zap.SugaredLogger {
	ensure()
	return log.Desugar().WithOptions(zap.AddCallerSkip(-1)).Sugar()
}

// Sync flushes any buffered log entries
func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}

func Warnf(template string, args ...interface{}) {
	ensure()
	log.Warnf(template, args...)
}

func Errorf(template string, args ...interface{}) {
	ensure()
	log.Errorf(template, args...)
}
