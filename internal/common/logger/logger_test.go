package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"bogus", zapcore.InfoLevel},
		{"fatal", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l := New(Options{Level: tt.level, Format: "json"})
			assert.True(t, l.Core().Enabled(tt.expected))
			if tt.expected > zapcore.DebugLevel {
				assert.False(t, l.Core().Enabled(tt.expected-1))
			}
		})
	}
}

func TestZapLogger_FieldsAndChildren(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core))

	child := log.With(map[string]interface{}{"requestId": "abc"})
	child.Info("relayed", map[string]interface{}{"status": 200})
	log.WithError(errors.New("boom")).Error("failed", nil)

	entries := logs.AllUntimed()
	assert.Len(t, entries, 2)

	first := entries[0].ContextMap()
	assert.Equal(t, "relayed", entries[0].Message)
	assert.Equal(t, "abc", first["requestId"])
	assert.EqualValues(t, 200, first["status"])

	second := entries[1].ContextMap()
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "boom", second["error"])
	assert.NotContains(t, second, "requestId")
}

func TestNew_ServiceFields(t *testing.T) {
	l := New(Options{Level: "debug", Format: "console", Service: "wish-generator", Version: "1.0.0"})
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestToFields_ErrorValues(t *testing.T) {
	assert.Nil(t, toFields(nil))

	fields := toFields(map[string]interface{}{"cause": errors.New("reset")})
	assert.Len(t, fields, 1)
	assert.Equal(t, "cause", fields[0].Key)
	assert.Equal(t, zapcore.ErrorType, fields[0].Type)
}

func TestZapLogger_LevelFiltering(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := NewZapAdapter(zap.New(core))

	log.Debug("dropped", nil)
	log.Info("dropped", nil)
	log.Warn("kept", map[string]interface{}{"tone": "funny"})

	entries := logs.AllUntimed()
	assert.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0].Message)
}

func TestNoOpLogger(t *testing.T) {
	log := NewNoOpLogger()
	assert.NotPanics(t, func() {
		log.With(map[string]interface{}{"k": "v"}).Debug("quiet", nil)
	})
}
