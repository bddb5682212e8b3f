package logger_adapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogAdapter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(SlogConfig{Writer: &buf, Level: slog.LevelInfo, IsJSON: true})

	logger.WithFields(port.Fields{"trace_id": "abc"}).Error("Refresh failed", errors.New("timeout"), port.Fields{"trigger": "http"})
	logger.Debug("hidden", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "Refresh failed", entry["msg"])
	assert.Equal(t, "abc", entry["trace_id"])
	assert.Equal(t, "http", entry["trigger"])
	assert.Equal(t, "timeout", entry["err"])
}

func TestSlogAdapter_TextSortsFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(SlogConfig{Writer: &buf, Level: slog.LevelDebug})

	logger.Info("Request finished", port.Fields{"z_last": 1, "a_first": 2})

	out := buf.String()
	assert.Less(t, strings.Index(out, "a_first=2"), strings.Index(out, "z_last=1"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel(" DEBUG "))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

type fakeFluent struct {
	tags     []string
	messages []port.Fields
	closed   bool
}

func (f *fakeFluent) Post(tag string, message interface{}) error {
	f.tags = append(f.tags, tag)
	f.messages = append(f.messages, message.(port.Fields))
	return nil
}

func (f *fakeFluent) Close() error {
	f.closed = true
	return nil
}

func TestFluentLoggerAdapter(t *testing.T) {
	client := &fakeFluent{}
	adapter, err := NewFluentLoggerAdapter(client, slog.LevelInfo)
	require.NoError(t, err)

	scoped := adapter.WithFields(port.Fields{"service": "dvf"})
	scoped.Debug("dropped", nil)
	scoped.Warn("slow query", port.Fields{"duration_ms": 900})
	scoped.Error("refresh failed", errors.New("boom"), nil)

	assert.Equal(t, []string{"warn", "error"}, client.tags)
	require.Len(t, client.messages, 2)
	assert.Equal(t, "dvf", client.messages[0]["service"])
	assert.Equal(t, 900, client.messages[0]["duration_ms"])
	assert.Equal(t, "slow query", client.messages[0]["message"])
	assert.Equal(t, "boom", client.messages[1]["error"])

	require.NoError(t, adapter.Close())
	assert.True(t, client.closed)

	_, err = NewFluentLoggerAdapter(nil, nil)
	assert.Error(t, err)
}

func TestMultiLoggerAdapter(t *testing.T) {
	var first, second bytes.Buffer
	a := NewSlogAdapter(SlogConfig{Writer: &first})
	b := NewSlogAdapter(SlogConfig{Writer: &second})

	multi, err := NewMultiLoggerAdapter(a, nil, b)
	require.NoError(t, err)

	multi.WithFields(port.Fields{"component": "test"}).Info("hello", nil)

	assert.Contains(t, first.String(), "component=test")
	assert.Contains(t, second.String(), "msg=hello")

	_, err = NewMultiLoggerAdapter(nil)
	assert.Error(t, err)
}
