package common

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestScanIDFromContext(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, id, ScanIDFromContext(WithScanID(context.Background(), id)))
	assert.Equal(t, uuid.Nil, ScanIDFromContext(context.Background()))
}

func TestWithTimeout(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), 0)
	_, hasDeadline := ctx.Deadline()
	assert.False(t, hasDeadline)
	cancel()
	assert.Error(t, ctx.Err())

	ctx, cancel = WithTimeout(context.Background(), time.Minute)
	defer cancel()
	_, hasDeadline = ctx.Deadline()
	assert.True(t, hasDeadline)
}
