package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	prev := Log
	Log = slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	t.Cleanup(func() { Log = prev })
	return buf
}

func TestWithContext_AddsRequestAndUser(t *testing.T) {
	buf := captureLogs(t)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, UserIDKey, "user-9")
	WithContext(ctx).Info("hello")

	out := buf.String()
	assert.Contains(t, out, `"request_id":"req-1"`)
	assert.Contains(t, out, `"user_id":"user-9"`)
}

func TestWithContext_EmptyContext(t *testing.T) {
	buf := captureLogs(t)

	WithContext(context.Background()).Info("plain")

	out := buf.String()
	assert.Contains(t, out, `"msg":"plain"`)
	assert.NotContains(t, out, "request_id")
}
