package tenant

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/storegate/storegate/pkg/tenantconn"
)

// ErrorHandler renders a rejected request. It receives the sentinel error
// that terminated tenant resolution.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type config struct {
	errorHandler ErrorHandler
	skipPaths    []string
	logger       *slog.Logger
}

// Option configures the middleware.
type Option func(*config)

// WithErrorHandler sets a custom error handler.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(c *config) {
		if handler != nil {
			c.errorHandler = handler
		}
	}
}

// WithSkipPaths sets path prefixes that bypass tenant resolution, such as
// health endpoints.
func WithSkipPaths(paths ...string) Option {
	return func(c *config) {
		c.skipPaths = append(c.skipPaths, paths...)
	}
}

// WithLogger sets the logger used for rejected requests.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// writeJSONError renders the structured error body every boundary failure
// answers with.
func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrSigningKeyMissing):
		writeJSONError(w, http.StatusInternalServerError, "Tenant signing key not configured")
	case errors.Is(err, ErrInvalidSignature):
		writeJSONError(w, http.StatusUnauthorized, "Invalid tenant signature")
	case errors.Is(err, tenantconn.ErrConnectionFailed):
		writeJSONError(w, http.StatusBadGateway, "Tenant database unavailable")
	case errors.Is(err, ErrNoIdentityInContext):
		writeJSONError(w, http.StatusUnauthorized, "Tenant identity required")
	default:
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
	}
}
