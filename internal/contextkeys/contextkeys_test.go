package contextkeys

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerFromContext_Noop(t *testing.T) {
	logger := LoggerFromContext(context.Background())
	assert.NotNil(t, logger)
	assert.NotPanics(t, func() {
		logger.WithFields(nil).Error("ignored", nil, nil)
	})
}

func TestTraceID(t *testing.T) {
	assert.Empty(t, TraceIDFromContext(context.Background()))

	ctx := ContextWithTraceID(context.Background(), "abc")
	assert.Equal(t, "abc", TraceIDFromContext(ctx))
	assert.Equal(t, "abc", TraceIDOrNew(ctx))

	generated := TraceIDOrNew(context.Background())
	assert.Len(t, generated, 36)
	assert.NotEqual(t, generated, TraceIDOrNew(context.Background()))
}
