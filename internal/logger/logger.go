// Package logger builds the CLI's logger: charmbracelet/log formatting into a
// rotating file under the data directory, mirrored to stderr in debug mode.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logger configuration.
type Config struct {
	Debug   bool
	DataDir string

	// Stderr receives the debug mirror. Defaults to os.Stderr.
	Stderr io.Writer
}

// New returns a slog.Logger backed by charmbracelet/log, and the rotating
// file writer the caller must close on exit.
func New(cfg Config) (*slog.Logger, io.Closer, error) {
	logDir := filepath.Join(cfg.DataDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, nil, err
	}

	file := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "kendala.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	level := log.InfoLevel
	var w io.Writer = file
	if cfg.Debug {
		level = log.DebugLevel
		stderr := cfg.Stderr
		if stderr == nil {
			stderr = os.Stderr
		}
		w = io.MultiWriter(stderr, file)
	}

	h := log.NewWithOptions(w, log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          "kendala",
	})
	return slog.New(h), file, nil
}
