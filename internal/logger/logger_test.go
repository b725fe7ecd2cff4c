package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	var buf bytes.Buffer
	InitializeWithWriter("info", "json", &buf)
	defer Initialize("info", "text")

	Transition("application", "app-1", "RENT_DUE", "RENT_PAID")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Status transition", entry["msg"])
	assert.Equal(t, "application", entry["entity"])
	assert.Equal(t, "RENT_DUE", entry["from"])
	assert.Equal(t, "RENT_PAID", entry["to"])
}

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	InitializeWithWriter("warn", "text", &buf)
	defer Initialize("info", "text")

	EnterMethod("Hidden")
	Info("hidden too")
	assert.Empty(t, buf.String())

	ExitMethodWithError("Visible", errors.New("boom"))
	assert.Contains(t, buf.String(), "method=Visible")
	assert.Contains(t, buf.String(), "error=boom")
}

func TestRequest(t *testing.T) {
	var buf bytes.Buffer
	InitializeWithWriter("info", "text", &buf)
	defer Initialize("info", "text")

	Request("http", "GET", "/api/v1/viewings", 200, 15*time.Millisecond)
	assert.Contains(t, buf.String(), "Request served")

	buf.Reset()
	Request("http", "POST", "/api/v1/bills", 500, time.Millisecond)
	assert.Contains(t, buf.String(), "level=ERROR")
}
