// Package logging points a logrus logger at the configured destination.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/vchilikov/mediasort/internal/config"
)

var (
	openFile = os.OpenFile
	stderr   = os.Stderr
)

// Configure sets level, formatter and output of l. Logs are appended to
// cfg.File unless it is config.LogToStderr. verbose forces debug level. The
// returned function closes the log file.
func Configure(l *logrus.Logger, cfg config.LogConfig, verbose bool) (func() error, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	if verbose {
		level = logrus.DebugLevel
	}

	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if cfg.File == "" || cfg.File == config.LogToStderr {
		l.SetOutput(stderr)
		return func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, fmt.Errorf("create log folder: %w", err)
	}
	f, err := openFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	l.SetOutput(f)
	return f.Close, nil
}
