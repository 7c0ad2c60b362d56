// Package reqctx carries request-scoped values across layers.
package reqctx

import "context"

type ctxKey int

const (
	requestIDKey ctxKey = iota
	queryNameKey
)

// WithRequestID stores the request id
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the request id, or "" outside a request
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithQueryName labels the next database statement for logs and metrics
func WithQueryName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, queryNameKey, name)
}

// QueryName returns the statement label, or "unnamed"
func QueryName(ctx context.Context) string {
	if name, ok := ctx.Value(queryNameKey).(string); ok && name != "" {
		return name
	}
	return "unnamed"
}
