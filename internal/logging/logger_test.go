package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{"bad level", &Config{Level: "shouty", Format: "json"}},
		{"bad format", &Config{Level: "info", Format: "xml"}},
		{"negative skip", &Config{Level: "info", Format: "json", Caller: CallerConfig{Enabled: true, Skip: -1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLogger(tt.cfg)
			require.Error(t, err)
		})
	}
}

func TestNewLogger_Defaults(t *testing.T) {
	log, err := NewLogger(NewDefaultConfig())
	require.NoError(t, err)
	assert.True(t, log.Enabled(zapcore.InfoLevel))
	assert.False(t, log.Enabled(zapcore.DebugLevel))
}

func TestLevelFromString(t *testing.T) {
	l, err := LevelFromString("trace")
	require.NoError(t, err)
	assert.Equal(t, TraceLevel, l)

	l, err = LevelFromString("warn")
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, l)

	_, err = LevelFromString("shouty")
	require.Error(t, err)
}

func TestContextFields(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, ContextFields(ctx))

	ctx = WithRunID(ctx, "run-123")
	ctx = WithDocument(ctx, "verbs.core.json")
	fields := ContextFields(ctx)
	require.Len(t, fields, 2)
	assert.Equal(t, "run-123", RunIDFromContext(ctx))
	assert.Equal(t, "verbs.core.json", DocumentFromContext(ctx))
}

func TestLogger_ContextFieldsAttached(t *testing.T) {
	log := NewTestLogger()
	ctx := WithRunID(context.Background(), "run-123")

	log.Info(ctx, "hello", zap.String("extra", "field"))

	entries := log.FilterMessage("hello").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "run-123", fields["run.id"])
	assert.Equal(t, "field", fields["extra"])
}

func TestLogger_NamedChild(t *testing.T) {
	log := NewTestLogger()
	log.Named("compile").Info(context.Background(), "named entry")

	entries := log.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "compile", entries[0].LoggerName)
}

func TestTestLogger_AssertLoggedAndReset(t *testing.T) {
	log := NewTestLogger()
	log.Warn(context.Background(), "something odd")
	log.AssertLogged(t, zapcore.WarnLevel, "odd")

	log.Reset()
	assert.Empty(t, log.All())
}
