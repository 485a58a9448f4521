// Package logging configures the process-wide slog logger.
package logging

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config selects log levels and destinations.
type Config struct {
	// Level is the console level.
	Level slog.Level

	// Console receives colored console output; nil means stderr.
	Console io.Writer

	// FilePath, when set, also writes debug output to a rotated file.
	FilePath string
}

// ParseLevel maps debug, info, warn or error to a level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// Setup installs the default logger and returns it.
func Setup(cfg Config) *slog.Logger {
	w := cfg.Console
	if w == nil {
		w = os.Stderr
	}
	handler := &multiHandler{
		console: tint.NewHandler(w, &tint.Options{
			Level:      cfg.Level,
			TimeFormat: time.RFC3339,
		}),
	}

	if cfg.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			slog.Error("Failed to create log folder", "error", err)
		} else {
			lumber := &lumberjack.Logger{
				Filename: cfg.FilePath,
				Compress: true,
			}
			handler.file = tint.NewHandler(lumber, &tint.Options{
				Level:      slog.LevelDebug,
				TimeFormat: time.RFC3339,
				NoColor:    true,
			})
		}
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	// Redirect the standard logger in case a dependency writes to it.
	log.SetFlags(0)
	log.SetOutput(&slogWriter{})
	return logger
}

type multiHandler struct {
	console slog.Handler
	file    slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if h.console.Enabled(ctx, level) {
		return true
	}
	return h.file != nil && h.file.Enabled(ctx, level)
}

func (h *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.console.Enabled(ctx, r.Level) {
		if err := h.console.Handle(ctx, r); err != nil {
			return err
		}
	}
	if h.file != nil && h.file.Enabled(ctx, r.Level) {
		if err := h.file.Handle(ctx, r.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	n := &multiHandler{console: h.console.WithAttrs(attrs)}
	if h.file != nil {
		n.file = h.file.WithAttrs(attrs)
	}
	return n
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	n := &multiHandler{console: h.console.WithGroup(name)}
	if h.file != nil {
		n.file = h.file.WithGroup(name)
	}
	return n
}

// slogWriter forwards standard log output to slog, picking the level from
// an ERROR, WARN or INFO prefix.
type slogWriter struct{}

func (w *slogWriter) Write(p []byte) (n int, err error) {
	msg := strings.TrimRight(string(p), "\n")
	switch {
	case strings.HasPrefix(msg, "ERROR") && len(msg) > 6:
		slog.Error(msg[6:])
	case strings.HasPrefix(msg, "WARN") && len(msg) > 5:
		slog.Warn(msg[5:])
	case strings.HasPrefix(msg, "INFO") && len(msg) > 5:
		slog.Info(msg[5:])
	default:
		slog.Debug(msg)
	}
	return len(p), nil
}
