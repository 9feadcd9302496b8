package tenant

import "errors"

var (
	// ErrSigningKeyMissing is returned when no shared secret is configured
	// and headers-only trust is not enabled.
	ErrSigningKeyMissing = errors.New("tenant signing key not configured")

	// ErrInvalidSignature is returned when signature verification fails.
	ErrInvalidSignature = errors.New("invalid tenant signature")

	// ErrNoIdentityInContext is returned when a handler requires a tenant
	// identity but none was attached to the request context.
	ErrNoIdentityInContext = errors.New("no tenant identity in context")
)
