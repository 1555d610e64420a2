package contextutils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Zero(t, GetUserID(ctx))

	fallback := zap.NewNop()
	assert.Same(t, fallback, GetLogger(ctx, fallback))

	scoped := zap.NewNop().Named("request")
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithUserID(ctx, 42)
	ctx = WithLogger(ctx, scoped)

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, int64(42), GetUserID(ctx))
	assert.Same(t, scoped, GetLogger(ctx, fallback))
}
