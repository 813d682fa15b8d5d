package logger

import "context"

// ctxKey is unexported so no other package can collide with our context keys.
type ctxKey struct{}

var requestIDKey ctxKey

// WithRequestID stores a request ID in the context for later log correlation.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the request ID stored by WithRequestID, or "" if the
// context carries none.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
