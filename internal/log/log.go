// Package log configures the structured JSON logger used across the
// service and lets request-scoped attributes ride along in the context.
package log

import (
	"context"
	"log/slog"
	"os"
)

// Attribute keys shared by the middleware and handlers so every record
// for a request carries the same identifiers.
const (
	AttrRequestID = "log_id"
	AttrUserID    = "user-id"
)

type ctxAttrKey struct{}

// ctxHandler copies attributes stored in the context onto every record
// before handing it to the wrapped handler.
type ctxHandler struct {
	slog.Handler
}

func (h ctxHandler) Handle(ctx context.Context, record slog.Record) error {
	if attrs, ok := ctx.Value(ctxAttrKey{}).([]slog.Attr); ok {
		record.AddAttrs(attrs...)
	}
	return h.Handler.Handle(ctx, record)
}

// AppendCtx returns a context whose records include attr in addition to
// any attributes already stored on parent.
func AppendCtx(parent context.Context, attr slog.Attr) context.Context {
	if parent == nil {
		parent = context.Background()
	}

	prev, _ := parent.Value(ctxAttrKey{}).([]slog.Attr)
	attrs := make([]slog.Attr, len(prev), len(prev)+1)
	copy(attrs, prev)
	return context.WithValue(parent, ctxAttrKey{}, append(attrs, attr))
}

// WithRequestID stamps the request id onto every record logged with ctx.
func WithRequestID(ctx context.Context, requestID uint64) context.Context {
	return AppendCtx(ctx, slog.Uint64(AttrRequestID, requestID))
}

// WithUserID stamps the authenticated user id onto every record logged
// with ctx.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return AppendCtx(ctx, slog.Int64(AttrUserID, userID))
}

// New builds the service logger writing JSON to stderr. A nil options
// logs everything from debug up.
func New(options *slog.HandlerOptions) *slog.Logger {
	if options == nil {
		options = &slog.HandlerOptions{Level: slog.LevelDebug}
	}
	return slog.New(ctxHandler{Handler: slog.NewJSONHandler(os.Stderr, options)})
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// NullLogger returns a logger that swallows all records. Tests use it
// so handler output stays quiet.
func NullLogger() *slog.Logger {
	return slog.New(ctxHandler{
		Handler: slog.NewJSONHandler(discardWriter{}, &slog.HandlerOptions{}),
	})
}
