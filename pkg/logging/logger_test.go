package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestHTTPRequestLogJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, Config{Level: "info", Format: "json", Component: "api"})

	l.HTTPRequestLog("GET", "/api/users", 200, 1500*time.Microsecond, "127.0.0.1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "HTTP request", entry["msg"])
	assert.Equal(t, "api", entry["component"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, float64(200), entry["status"])
	assert.Equal(t, 1.5, entry["duration_ms"])
}

func TestStoreOpLogLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, Config{Level: "info", Format: "json"})

	l.StoreOpLog("GetUser", "users", time.Millisecond, nil)
	assert.Empty(t, buf.String(), "successful ops log at debug")

	l.StoreOpLog("GetUser", "users", time.Millisecond, errors.New("boom"))
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "boom", entry["error"])
}

func TestFileOutputAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.log")

	l := New(Config{Output: path, Format: "text"})
	l.Info("first")
	require.NoError(t, l.Close())

	l = New(Config{Output: path, Format: "text"})
	l.Info("second")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "first")
	assert.Contains(t, string(data), "second")
}
