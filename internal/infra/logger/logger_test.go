package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Writer: &buf, Level: slog.LevelInfo, Format: "json"})

	l.Debug("hidden")
	l.Info("location resolved", "district", "강남구")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "location resolved", entry["msg"])
	assert.Equal(t, "강남구", entry["district"])
}

func TestNew_TextAndColor(t *testing.T) {
	var text, color bytes.Buffer
	New(Config{Writer: &text}).Info("hello")
	New(Config{Writer: &color, Format: "color"}).Info("hello")

	assert.Contains(t, text.String(), "msg=hello")
	assert.Contains(t, color.String(), "hello")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
