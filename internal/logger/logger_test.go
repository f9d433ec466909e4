package logger

import (
	"testing"

	"github.com/go-playground/assert/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromZapWritesEventAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromZap(zap.New(core))

	log.WarnObj("feed fetch failed", "feed_fetch_error", map[string]any{
		"url":   "https://example.com/feed",
		"error": "boom",
	})

	entries := logs.All()
	assert.Equal(t, 1, len(entries))
	assert.Equal(t, "feed fetch failed", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)

	ctx := entries[0].ContextMap()
	assert.Equal(t, "feed_fetch_error", ctx["event"])
	assert.Equal(t, "https://example.com/feed", ctx["url"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestLevelFiltering(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := FromZap(zap.New(core))

	log.DebugObj("hidden", "debug_event", nil)
	log.InfoObj("shown", "info_event", nil)

	assert.Equal(t, 1, logs.Len())
	assert.Equal(t, "shown", logs.All()[0].Message)
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, err := New("info", "xml")
	assert.NotEqual(t, nil, err)

	_, err = New("loud", "json")
	assert.NotEqual(t, nil, err)

	l, err := New("debug", "console")
	assert.Equal(t, nil, err)
	assert.NotEqual(t, nil, l)
}

func TestEnsure(t *testing.T) {
	assert.Equal(t, NopLogger{}, Ensure(nil))

	l := FromZap(zap.NewNop())
	assert.Equal(t, l, Ensure(l))
}
