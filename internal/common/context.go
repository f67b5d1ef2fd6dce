package common

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyScanID contextKey = "scan_id"
)

// WithScanID adds a scan ID to the context
func WithScanID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ContextKeyScanID, id)
}

// ScanIDFromContext extracts the scan ID from context, or uuid.Nil.
func ScanIDFromContext(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(ContextKeyScanID).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// WithTimeout creates a context with the specified timeout; zero means no timeout.
func WithTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
