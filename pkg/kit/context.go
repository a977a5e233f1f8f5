package kit

import "context"

type contextKey string

const (
	transportKey contextKey = "kit_transport"
	requestIDKey contextKey = "kit_request_id"
)

// WithTransport records which transport carried the request
// ("http" or "mcp_quic").
func WithTransport(ctx context.Context, t string) context.Context {
	return context.WithValue(ctx, transportKey, t)
}

// GetTransport returns the recorded transport, defaulting to "http".
func GetTransport(ctx context.Context) string {
	if v, ok := ctx.Value(transportKey).(string); ok {
		return v
	}
	return "http"
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}
