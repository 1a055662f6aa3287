package shared

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSetAndGetTraceID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))

	ctxWithTrace := SetTraceID(ctx)

	traceID := GetTraceID(ctxWithTrace)
	assert.NotEmpty(t, traceID)
	assert.Len(t, traceID, TraceIDLength*2, "trace ID should be hex-encoded")

	// The original context is untouched.
	assert.Empty(t, GetTraceID(ctx))
}

func TestTraceIDsAreUnique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GetTraceID(SetTraceID(context.Background()))
		assert.False(t, seen[id], "trace ID %q repeated", id)
		seen[id] = true
	}
}

func TestGetTraceIDWithWrongType(t *testing.T) {
	t.Parallel()

	ctx := context.WithValue(context.Background(), TraceIDKey, 123)
	assert.Empty(t, GetTraceID(ctx))
}

func TestAuthContextKeysAreDistinct(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	ctx := context.WithValue(context.Background(), UserIDContextKey, userID)
	ctx = context.WithValue(ctx, UserRoleContextKey, "admin")

	gotID, ok := ctx.Value(UserIDContextKey).(uuid.UUID)
	assert.True(t, ok)
	assert.Equal(t, userID, gotID)

	gotRole, ok := ctx.Value(UserRoleContextKey).(string)
	assert.True(t, ok)
	assert.Equal(t, "admin", gotRole)
}
