package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

type DepthHandler struct {
	slog.Handler
	depth int
}

func NewDepthHandler(inner slog.Handler, depth int) slog.Handler {
	return &DepthHandler{
		Handler: inner,
		depth:   depth,
	}
}

func (h *DepthHandler) Handle(ctx context.Context, r slog.Record) error {
	if _, file, line, ok := runtime.Caller(h.depth); ok {
		source := fmt.Sprintf("%s:%d", filepath.Base(file), line)
		r.Add("source", source)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *DepthHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &DepthHandler{Handler: h.Handler.WithAttrs(attrs), depth: h.depth}
}

func (h *DepthHandler) WithGroup(name string) slog.Handler {
	return &DepthHandler{Handler: h.Handler.WithGroup(name), depth: h.depth}
}

// ParseLevel understands debug, info, warn and error. Anything else is warn.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	}
	return slog.LevelWarn
}

// LogSet installs the default logger. Logs go to w so they never mix with a
// config printed on stdout.
func LogSet(w io.Writer, level slog.Level) {
	if w == nil {
		w = os.Stderr
	}
	base := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           charmlog.Level(level),
		ReportTimestamp: level <= slog.LevelDebug,
		Prefix:          "enr",
	})
	handler := NewDepthHandler(base, 4)

	logger := slog.New(handler)
	slog.SetDefault(logger)
}

func Fatal(format string, args ...any) {
	slog.Error(format, args...)
	os.Exit(1)
}

func Info(format string, args ...any) {
	slog.Info(format, args...)
}

func Debug(format string, args ...any) {
	slog.Debug(format, args...)
}

func Warn(format string, args ...any) {
	slog.Warn(format, args...)
}

func Error(format string, args ...any) {
	slog.Error(format, args...)
}
