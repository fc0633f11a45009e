package log

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestLevelsAndFields(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(zapcore.AddSync(&buf))
	t.Cleanup(func() {
		SetLevel(LevelInfo)
		SetFormat("console")
	})

	SetLevel(LevelInfo)
	Debug("hidden", "k", 1)
	Info("feed refreshed", "events", 3)
	Error("feed fetch failed", errors.New("boom"), "status", 502)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "feed refreshed")
	assert.Contains(t, out, `"events": 3`)
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, `"status": 502`)

	buf.Reset()
	SetLevel(LevelDebug)
	Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}
