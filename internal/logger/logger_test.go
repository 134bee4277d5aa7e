package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		" warn ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
	}
	for s, want := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok, s)
		require.Equal(t, want, got, s)
	}

	_, ok := ParseLogLevel("loud")
	require.False(t, ok)
}

func TestContextLoggerNamed(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := ToContext(context.Background(), New(&buf, zapcore.DebugLevel))
	ctx = WithName(ctx, "dispatcher")
	ctx = WithKV(ctx, "track", 3)

	InfoKV(ctx, "alert started", "volume", 25)

	out := buf.String()
	require.Contains(t, out, "dispatcher")
	require.Contains(t, out, "alert started")
	require.Contains(t, out, `"track": 3`)
	require.Contains(t, out, `"volume": 25`)
}

func TestFromContextFallsBackToGlobal(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))
}
