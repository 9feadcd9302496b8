package gateway

import "errors"

var (
	// ErrServiceNotConfigured is returned when the first path segment does
	// not match any route table entry.
	ErrServiceNotConfigured = errors.New("service not configured on gateway")

	// ErrUpstreamUnreachable wraps transport-level failures of the
	// forwarded call.
	ErrUpstreamUnreachable = errors.New("upstream unreachable")

	// ErrEmptyRouteTable is returned when the gateway starts without routes.
	ErrEmptyRouteTable = errors.New("route table is empty")

	// ErrInvalidRoute is returned for a route whose base URL is not an
	// absolute URL or whose prefix is empty.
	ErrInvalidRoute = errors.New("invalid route")
)
