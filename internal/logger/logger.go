// Package logger builds the service's slog logger, optionally writing to a
// size-rotated file.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects level, format and destination.
type Options struct {
	Service string
	Level   string // debug, info, warn, error
	Format  string // json or text
	Output  string // stdout, file, both
	File    string
}

// New creates the logger and installs it as the slog default.
func New(opts Options) (*slog.Logger, error) {
	out, err := writer(opts)
	if err != nil {
		return nil, err
	}

	hopts := &slog.HandlerOptions{Level: parseLevel(opts.Level)}

	var h slog.Handler
	if strings.EqualFold(opts.Format, "text") {
		h = slog.NewTextHandler(out, hopts)
	} else {
		h = slog.NewJSONHandler(out, hopts)
	}

	l := slog.New(h).With("service", opts.Service)
	slog.SetDefault(l)
	return l, nil
}

func writer(opts Options) (io.Writer, error) {
	switch strings.ToLower(opts.Output) {
	case "file", "both":
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, err
		}
		file := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    100, // MB
			MaxBackups: 10,
			MaxAge:     30, // days
			Compress:   true,
		}
		if strings.EqualFold(opts.Output, "file") {
			return file, nil
		}
		return io.MultiWriter(os.Stdout, file), nil
	default:
		return os.Stdout, nil
	}
}

func parseLevel(lvl string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard is a logger for tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
