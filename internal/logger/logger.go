package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds the client logger: rotated file output, optionally teed
// to stderr for interactive runs. The sync engine runs unattended, so
// the file is the primary sink.
func New(path string, verbose bool) (*log.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}

	rotated := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    5, // megabytes
		MaxBackups: 3,
		MaxAge:     30, // days
		Compress:   true,
	}

	var writer io.Writer = rotated
	level := log.InfoLevel
	if verbose {
		writer = io.MultiWriter(rotated, os.Stderr)
		level = log.DebugLevel
	}

	logger := log.NewWithOptions(writer, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           level,
	})
	return logger, nil
}

// Discard returns a logger that drops everything, for tests.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
