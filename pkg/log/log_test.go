package log

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestReplaceLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	restore := ReplaceLogger(zap.New(core))

	Infow("session created", "session", "s1")
	Debugw("hidden")
	Error("upload failed", errors.New("boom"))
	restore()
	Info("after restore")

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, "session created", entries[0].Message)
	assert.Equal(t, "s1", entries[0].ContextMap()["session"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
}
