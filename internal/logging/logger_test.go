package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNewJSONHandlerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "warn", Format: "json"}, &buf)
	l.Info("hidden")
	l.Warn("rows removed", slog.Int("count", 3))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "rows removed", rec["msg"])
	assert.EqualValues(t, 3, rec["count"])
}

func TestNewTextHandler(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "info"}, &buf)
	l.Info("loaded", slog.String("file", "a.csv"))
	assert.Contains(t, buf.String(), "file=a.csv")
}
