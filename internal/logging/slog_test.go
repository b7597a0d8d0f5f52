package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewSlogLogger(slog.New(h)), &buf
}

func TestSlogLogger_Levels_WriteExpectedOutput(t *testing.T) {
	log, buf := newTestLogger(t)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	out := buf.String()

	tests := []struct {
		level string
		msg   string
		key   string
		val   string
	}{
		{"DEBUG", "dbg", "a", "1"},
		{"INFO", "inf", "b", "2"},
		{"WARN", "wrn", "c", "3"},
		{"ERROR", "err", "d", "4"},
	}

	for _, tc := range tests {
		assert.Contains(t, out, "level="+tc.level)
		assert.Contains(t, out, "msg="+tc.msg)
		assert.Contains(t, out, tc.key+"="+tc.val)
	}
}

func TestSlogLogger_With_AddsAttributes(t *testing.T) {
	log, buf := newTestLogger(t)

	log.With("module", "queue", "terminal", "bar-1").Info(context.Background(), "hello", "k", "v")

	out := buf.String()
	for _, s := range []string{"level=INFO", "msg=hello", "module=queue", "terminal=bar-1", "k=v"} {
		assert.Contains(t, out, s)
	}
}

func TestNew_JSONFormatAndLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn", "json")

	log.Info(context.Background(), "dropped")
	log.Warn(context.Background(), "kept", "pending", 2)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "kept", rec["msg"])
	assert.Equal(t, float64(2), rec["pending"])
}

func TestNew_TextFormatDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "bogus", "text")

	log.Debug(context.Background(), "hidden")
	log.Info(context.Background(), "shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
}

func TestDiscard_DoesNotPanic(t *testing.T) {
	log := Discard()
	ctx := context.TODO()
	log.Debug(ctx, "x")
	log.Info(ctx, "x")
	log.Warn(ctx, "x")
	log.Error(ctx, "x")
	log.With("a", 1).Info(ctx, "x")
}
