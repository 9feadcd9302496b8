package gateway

import (
	"net/http"
	"strings"
)

// Header values advertised on every cross-origin response. The tenant
// identity headers must be listed or browsers will strip them from
// storefront requests.
var (
	corsAllowedHeaders = strings.Join([]string{
		"Content-Type",
		"Authorization",
		"X-Requested-With",
		"X-Tenant-ID",
		"X-Tenant-DB-URI",
		"X-Tenant-Sig",
	}, ", ")

	corsAllowedMethods = "GET,POST,PUT,PATCH,DELETE,OPTIONS"
)

// CORSPolicy is the configurable allow-list of origins evaluated before
// any routing occurs.
type CORSPolicy struct {
	origins  map[string]struct{}
	wildcard bool
}

// NewCORSPolicy builds a policy from exact origin strings. A "*" entry
// allows every origin.
func NewCORSPolicy(origins []string) *CORSPolicy {
	p := &CORSPolicy{origins: make(map[string]struct{}, len(origins))}
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			p.wildcard = true
			continue
		}
		p.origins[origin] = struct{}{}
	}
	return p
}

// Allows reports whether the given Origin header value may cross.
func (p *CORSPolicy) Allows(origin string) bool {
	if p.wildcard {
		return true
	}
	_, ok := p.origins[origin]
	return ok
}

// Middleware enforces the policy. Requests without an Origin header
// (same-origin or non-browser clients) always pass. Disallowed origins
// are rejected before routing; preflight requests terminate here with an
// empty success response carrying the permitted-origin, headers, and
// methods set.
func (p *CORSPolicy) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Add("Vary", "Origin")

		if !p.Allows(origin) {
			writeJSONError(w, http.StatusForbidden, "Origin not allowed by CORS")
			return
		}

		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Headers", corsAllowedHeaders)
		w.Header().Set("Access-Control-Allow-Methods", corsAllowedMethods)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
