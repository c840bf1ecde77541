package client

import "context"

type requestIDKey struct{}

// HeaderRequestID is forwarded on every outgoing call
const HeaderRequestID = "X-Request-ID"

// WithRequestID returns a context whose outgoing calls carry id
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the request id stored in ctx
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
