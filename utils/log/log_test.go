package log

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(" info "))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(""))
	assert.Equal(t, slog.LevelWarn, ParseLevel("verbose"))
}

func TestLogSetAddsSource(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	LogSet(&buf, slog.LevelDebug)
	Debug("config written", "path", "/tmp/x.conf")

	out := buf.String()
	assert.Contains(t, out, "config written")
	assert.Contains(t, out, "/tmp/x.conf")
	assert.Contains(t, out, "log_test.go")
}

func TestLogSetFiltersBelowLevel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	LogSet(&buf, slog.LevelWarn)
	Debug("hidden")
	Info("hidden too")
	Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
