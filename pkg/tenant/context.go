package tenant

import (
	"context"
	"log/slog"
)

// Private key types prevent collisions with other context values.
type identityContextKey struct{}
type connContextKey struct{}

// WithIdentity adds a verified tenant identity to the context.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// FromContext retrieves the tenant identity from the context.
func FromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(Identity)
	return identity, ok
}

// MustFromContext retrieves the tenant identity or panics. Use only in
// handlers mounted behind the middleware, where absence is a programming
// error rather than a request error.
func MustFromContext(ctx context.Context) Identity {
	identity, ok := FromContext(ctx)
	if !ok {
		panic("tenant: no identity in context")
	}
	return identity
}

// WithConn adds the tenant's database handle to the context.
func WithConn(ctx context.Context, handle any) context.Context {
	return context.WithValue(ctx, connContextKey{}, handle)
}

// ConnFromContext retrieves the tenant's database handle as type T.
func ConnFromContext[T any](ctx context.Context) (T, bool) {
	handle, ok := ctx.Value(connContextKey{}).(T)
	return handle, ok
}

// LoggerExtractor returns a logger context extractor that reports the
// tenant id on every record logged within a tenant-scoped request.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if identity, ok := FromContext(ctx); ok {
			return slog.String("tenant_id", identity.ID), true
		}
		return slog.Attr{}, false
	}
}
