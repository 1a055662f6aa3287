package logger_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelkov/cardvault/internal/platform/logger"
)

func TestSetup(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "WARN", "bogus", ""} {
		l, err := logger.Setup(logger.Config{Level: level})
		require.NoError(t, err, "level %q", level)
		require.NotNil(t, l, "level %q", level)
	}
}

func TestFromContext(t *testing.T) {
	ctx := context.Background()

	// Without an attached logger the default is returned.
	assert.Equal(t, slog.Default(), logger.FromContext(ctx))

	attached := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx = logger.WithLogger(ctx, attached)
	assert.Equal(t, attached, logger.FromContext(ctx))
}

func TestFromContextOrDefault(t *testing.T) {
	def := slog.New(slog.NewTextHandler(os.Stderr, nil))

	assert.Equal(t, def, logger.FromContextOrDefault(context.Background(), def))

	attached := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx := logger.WithLogger(context.Background(), attached)
	assert.Equal(t, attached, logger.FromContextOrDefault(ctx, def))

	// Nil default still yields a usable logger.
	assert.NotNil(t, logger.FromContextOrDefault(context.Background(), nil))
}
