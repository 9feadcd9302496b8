package tenant

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/storegate/storegate/pkg/tenantconn"
	"github.com/storegate/storegate/pkg/tenantsig"
)

// Middleware authenticates tenant identity headers, resolves the tenant's
// database handle through conns, and attaches both to the request context.
//
// Per request the state machine is Unauthenticated -> Verified, Rejected,
// or InsecureAllowed. With no signing secret configured, TrustHeaders plus
// both identity headers reaches InsecureAllowed; anything else is rejected
// as a configuration error. With a secret, signature verification decides,
// with the same TrustHeaders fallback. Rejected requests terminate here
// and downstream handlers never run.
func Middleware[T any](cfg Config, conns *tenantconn.Cache[T], opts ...Option) func(http.Handler) http.Handler {
	mwCfg := &config{
		errorHandler: defaultErrorHandler,
	}
	for _, opt := range opts {
		opt(mwCfg)
	}

	headersOnly := cfg.TrustMode == TrustHeaders

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skip := range mwCfg.skipPaths {
				if strings.HasPrefix(r.URL.Path, skip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			tenantID := r.Header.Get(tenantsig.HeaderTenantID)
			location := r.Header.Get(tenantsig.HeaderDBURI)
			headersPresent := tenantID != "" && location != ""

			if cfg.SigningSecret == "" {
				if !headersOnly || !headersPresent {
					mwCfg.reject(w, r, ErrSigningKeyMissing, tenantID, location)
					return
				}
			} else if !tenantsig.Verify(r.Header, cfg.SigningSecret) {
				if !headersOnly || !headersPresent {
					mwCfg.reject(w, r, ErrInvalidSignature, tenantID, location)
					return
				}
			}

			identity := Identity{ID: tenantID, DBLocation: location}

			handle, err := conns.Resolve(r.Context(), identity.DBLocation)
			if err != nil {
				mwCfg.reject(w, r, err, tenantID, location)
				return
			}

			ctx := WithIdentity(r.Context(), identity)
			ctx = WithConn(ctx, handle)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// reject logs the failure with safe context and renders the error response.
func (c *config) reject(w http.ResponseWriter, r *http.Request, err error, tenantID, location string) {
	if c.logger != nil {
		c.logger.ErrorContext(r.Context(), "tenant resolution rejected",
			slog.String("error", err.Error()),
			slog.String("tenant_id", tenantID),
			slog.String("db_location", tenantconn.MaskLocation(location)),
			slog.String("path", r.URL.Path),
		)
	}
	c.errorHandler(w, r, err)
}

// RequireIdentity ensures a tenant identity is present in the context.
// Useful for handlers mounted outside the main middleware chain.
func RequireIdentity(errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = defaultErrorHandler
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := FromContext(r.Context()); !ok {
				errorHandler(w, r, ErrNoIdentityInContext)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
