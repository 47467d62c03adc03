package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel(" WARNING "))
	assert.Equal(t, ERROR, ParseLevel("ERROR"))
	assert.Equal(t, INFO, ParseLevel("loud"))
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, INFO, FormatText)

	l.Debug("hidden")
	l.WithFields(F("request_id", "abc")).Info("request", F("status", 200))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INFO logger_test.go:")
	assert.Contains(t, out, "request | request_id=abc status=200")
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, DEBUG, FormatJSON)

	l.Error("boom", Err(errors.New("disk full")), F("attempt", 2))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "boom", entry["msg"])
	assert.Equal(t, "disk full", entry["error"])
	assert.Equal(t, float64(2), entry["attempt"])
}

func TestWithFields_DoesNotLeak(t *testing.T) {
	var buf bytes.Buffer
	base := NewWithWriter(&buf, INFO, FormatText)

	a := base.WithFields(F("a", 1))
	_ = a.WithFields(F("b", 2))
	a.Info("only a")

	assert.Contains(t, buf.String(), "a=1")
	assert.NotContains(t, buf.String(), "b=2")
}

func TestRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "board.log")
	l, err := New(Config{Level: DEBUG, FilePath: path, MaxSize: 64, MaxBackups: 2})
	require.NoError(t, err)
	defer l.Close()

	for i := 0; i < 5; i++ {
		l.Info(strings.Repeat("x", 40))
	}

	_, err = os.Stat(path + ".1")
	assert.NoError(t, err)
	_, err = os.Stat(path + ".3")
	assert.True(t, os.IsNotExist(err))
}

func TestGlobalDefaultsToDiscard(t *testing.T) {
	assert.NotPanics(t, func() {
		Info("nobody listens")
		WithFields(F("k", "v")).Warn("still fine")
	})

	var buf bytes.Buffer
	prev := Default()
	SetDefault(NewWithWriter(&buf, INFO, FormatText))
	defer SetDefault(prev)

	Info("hello")
	assert.Contains(t, buf.String(), "hello")
}
