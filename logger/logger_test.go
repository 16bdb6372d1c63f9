package logger

import (
	"bytes"
	"context"
	"encoding/json"
	c "eventers-ticketing/context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, format string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetFormat(format)
	SetLevel("debug")
	t.Cleanup(func() {
		SetOutput(os.Stdout)
		SetFormat("text")
		SetLevel("info")
	})
	return &buf
}

func TestJSONFormatCarriesCorrelationID(t *testing.T) {
	buf := capture(t, "json")
	ctx := c.NewContext("req-1")

	Infof(ctx, "purchase: user %d bought %d tickets", 42, 2)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "req-1", line[CorrelationId])
	assert.Equal(t, "purchase: user 42 bought 2 tickets", line["msg"])
	assert.Equal(t, "info", line["level"])
}

func TestErrorfEscapesNewlines(t *testing.T) {
	buf := capture(t, "json")

	Errorf(context.Background(), "panic: %s", "boom\ngoroutine 1")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "panic: boom\\n goroutine 1", line["msg"])
}

func TestUnknownFormatFallsBackToText(t *testing.T) {
	buf := capture(t, "yaml")
	buf.Reset()

	Info(c.NewContext("req-2"), "listening")

	assert.Contains(t, buf.String(), "correlation_id=req-2")
	assert.Contains(t, buf.String(), "msg=listening")
}
