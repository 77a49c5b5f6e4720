package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestFromContext_FallsBackToGlobal ensures a bare context yields the global logger.
func TestFromContext_FallsBackToGlobal(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))
}

// TestWithKV_AttachesFields verifies scoped fields reach the underlying core.
func TestWithKV_AttachesFields(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	ctx := ToContext(context.Background(), zap.New(core).Sugar())

	ctx = WithName(ctx, "engine")
	ctx = WithKV(ctx, "engine_id", "abc")
	InfoKV(ctx, "Alarm armed", "activity_id", "wake-up")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "engine", entries[0].LoggerName)

	fields := entries[0].ContextMap()
	require.Equal(t, "abc", fields["engine_id"])
	require.Equal(t, "wake-up", fields["activity_id"])
}
