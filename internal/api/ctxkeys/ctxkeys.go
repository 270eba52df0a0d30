// Shared context keys for the API layer.
// Extracted to a leaf package to avoid import cycles between api and api/handlers.
package ctxkeys

import "context"

// Key is the unexported named type for all API context keys.
// Using a named type avoids collisions with string keys from other packages
// at runtime (context.Value compares both type and value).
type Key string

const (
	// UserID is the context key for the authenticated operator.
	// Injected by AuthMiddleware from JWT claims.
	UserID Key = "user_id"

	// RequestID is the context key for the per-request trace id.
	// Injected by RequestID middleware, echoed in the X-Request-ID header.
	RequestID Key = "request_id"
)

// WithValue adds a ctxkeys.Key value to the context.
func WithValue(ctx context.Context, key Key, value string) context.Context {
	return context.WithValue(ctx, key, value)
}
