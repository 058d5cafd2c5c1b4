package requestctx

import "context"

type ctxKey string

const (
	correlationIDKey ctxKey = "correlation_id"
	clientNameKey    ctxKey = "client_name"
)

// WithCorrelationID returns a new context with the provided correlation ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationID fetches the correlation ID from the context, if any.
func CorrelationID(ctx context.Context) string {
	if s, ok := ctx.Value(correlationIDKey).(string); ok {
		return s
	}
	return ""
}

// WithClientName records which API key owner issued the request.
func WithClientName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, clientNameKey, name)
}

// ClientName fetches the API client name from the context, if any.
func ClientName(ctx context.Context) string {
	if s, ok := ctx.Value(clientNameKey).(string); ok {
		return s
	}
	return ""
}
