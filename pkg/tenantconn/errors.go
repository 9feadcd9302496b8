package tenantconn

import "errors"

var (
	// ErrConnectionFailed wraps dial failures surfaced by Resolve.
	ErrConnectionFailed = errors.New("tenant database connection failed")

	// ErrCacheClosed is returned by Resolve after Close has been called.
	ErrCacheClosed = errors.New("connection cache is closed")

	// ErrEmptyLocation is returned when Resolve is called without a location.
	ErrEmptyLocation = errors.New("empty database location")
)
