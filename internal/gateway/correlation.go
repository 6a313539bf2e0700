package gateway

import (
	"context"

	"github.com/lithammer/shortuuid/v3"
)

// CorrelationHeader carries the id that ties outbound calls to the local
// request that caused them.
const CorrelationHeader = "X-Correlation-ID"

type correlationKey struct{}

// WithCorrelationID stores id on ctx.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationID returns the id stored on ctx or a fresh one.
func CorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationKey{}).(string); ok && id != "" {
		return id
	}
	return shortuuid.New()
}
