// Package logging builds the application's *log.Logger.
package logging

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/lowaak/smart-trainer/workout-builder/internal/config"
)

const flags = log.LstdFlags | log.Lmicroseconds

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns a logger writing to a rotating file when cfg.File is set and to
// stderr otherwise. The closer releases the log file.
func New(cfg config.LogConfig) (*log.Logger, io.Closer, error) {
	if cfg.File == "" {
		return log.New(os.Stderr, "", flags), nopCloser{}, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
		return nil, nil, err
	}
	out := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	}
	return log.New(out, "", flags), out, nil
}
