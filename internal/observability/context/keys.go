// Package context carries request and refresh-unit identity through Context
// values so logs from nested layers can be correlated.
package context

import "context"

type contextKey string

const (
	requestIDKey contextKey = "observability_request_id"
	sourceIDKey  contextKey = "observability_source_id"
	windowKey    contextKey = "observability_window"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil || requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDKey).(string)
	return value
}

// WithUnit tags the context with the refresh unit being processed.
func WithUnit(ctx context.Context, sourceID, window string) context.Context {
	if ctx == nil {
		return ctx
	}
	if sourceID != "" {
		ctx = context.WithValue(ctx, sourceIDKey, sourceID)
	}
	if window != "" {
		ctx = context.WithValue(ctx, windowKey, window)
	}
	return ctx
}

func UnitFromContext(ctx context.Context) (sourceID, window string) {
	if ctx == nil {
		return "", ""
	}
	sourceID, _ = ctx.Value(sourceIDKey).(string)
	window, _ = ctx.Value(windowKey).(string)
	return sourceID, window
}
