// Package requestid carries the per-request id through the context so
// handlers can echo it back in error bodies.
package requestid

import (
	"context"
	"strconv"
)

type ctxKey struct{}

// InjectRequestID stores requestID on the context.
func InjectRequestID(ctx context.Context, requestID uint64) context.Context {
	return context.WithValue(ctx, ctxKey{}, requestID)
}

// ExtractRequestID returns the id stored on the context, or 0 when the
// request never went through the id middleware.
func ExtractRequestID(ctx context.Context) uint64 {
	id, _ := ctx.Value(ctxKey{}).(uint64)
	return id
}

// String returns the context's request id in the decimal form used by
// the error_id field of API error responses.
func String(ctx context.Context) string {
	return strconv.FormatUint(ExtractRequestID(ctx), 10)
}
