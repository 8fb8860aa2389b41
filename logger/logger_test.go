package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "prod", "")
	log.Debug("hidden")
	log.Info("order saved", "order", "#3")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "order saved", entry["msg"])
	assert.Equal(t, "#3", entry["order"])
	assert.Equal(t, "dserve-api", entry["service"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("dev", ""))
	assert.Equal(t, slog.LevelInfo, parseLevel("prod", ""))
	assert.Equal(t, slog.LevelWarn, parseLevel("dev", "WARN"))
	assert.Equal(t, slog.LevelError, parseLevel("", "error"))
}
