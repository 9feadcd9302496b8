package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
)

// Headers never copied onto the rewritten request or response. Forwarding
// these would corrupt the proxy: the outbound call has its own framing.
var hopHeaders = map[string]struct{}{
	"Connection":          {},
	"Keep-Alive":          {},
	"Proxy-Authenticate":  {},
	"Proxy-Authorization": {},
	"Proxy-Connection":    {},
	"Te":                  {},
	"Trailer":             {},
	"Transfer-Encoding":   {},
	"Upgrade":             {},
	"Content-Length":      {},
	"Host":                {},
}

// Router forwards inbound requests to the backend selected by path prefix.
// It holds no per-request state beyond the immutable route table.
type Router struct {
	table  *RouteTable
	client *http.Client
	logger *slog.Logger
}

// RouterOption configures the Router.
type RouterOption func(*Router)

// WithHTTPClient replaces the outbound HTTP client. Mainly for tests.
func WithHTTPClient(client *http.Client) RouterOption {
	return func(g *Router) {
		if client != nil {
			g.client = client
		}
	}
}

// WithUpstreamTimeout bounds each forwarded call. A backend that never
// answers turns into a gateway error instead of hanging the caller.
func WithUpstreamTimeout(d time.Duration) RouterOption {
	return func(g *Router) {
		if d > 0 {
			g.client.Timeout = d
		}
	}
}

// WithLogger sets the logger for routing and upstream failures.
func WithLogger(logger *slog.Logger) RouterOption {
	return func(g *Router) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewRouter creates a gateway router over an immutable route table.
func NewRouter(table *RouteTable, opts ...RouterOption) *Router {
	g := &Router{
		table:  table,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ServeHTTP dispatches /{service}/{rest...} to the configured backend.
func (g *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	service, rest := splitServicePath(r.URL.Path)

	base, ok := g.table.Lookup(service)
	if !ok {
		g.logger.WarnContext(r.Context(), "unknown service prefix",
			slog.String("service", service),
			slog.String("path", r.URL.Path),
		)
		writeJSONError(w, http.StatusNotFound, "Service not configured on gateway")
		return
	}

	target := *base
	if rest != "" {
		target.Path = strings.TrimSuffix(base.Path, "/") + "/" + rest
	}
	target.RawQuery = r.URL.RawQuery

	outbound, err := http.NewRequestWithContext(r.Context(), r.Method, target.String(), r.Body)
	if err != nil {
		g.logger.ErrorContext(r.Context(), "building upstream request failed",
			slog.String("service", service),
			slog.String("error", err.Error()),
		)
		writeJSONError(w, http.StatusBadRequest, "Malformed request")
		return
	}
	copyHeaders(outbound.Header, r.Header)
	outbound.Host = target.Host

	resp, err := g.client.Do(outbound)
	if err != nil {
		g.logger.ErrorContext(r.Context(), "upstream call failed",
			slog.String("service", service),
			slog.String("target", target.Redacted()),
			slog.String("error", err.Error()),
		)
		writeJSONError(w, http.StatusBadGateway, upstreamErrorText(err))
		return
	}
	defer resp.Body.Close()

	relayHeaders(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		// Status line is already gone; nothing to do but record it.
		g.logger.ErrorContext(r.Context(), "relaying upstream body failed",
			slog.String("service", service),
			slog.String("error", err.Error()),
		)
	}
}

// splitServicePath returns the first path segment and the joined remainder.
func splitServicePath(path string) (service, rest string) {
	path = strings.TrimPrefix(path, "/")
	if idx := strings.IndexByte(path, '/'); idx >= 0 {
		return path[:idx], path[idx+1:]
	}
	return path, ""
}

// copyHeaders forwards every inbound header except the hop-by-hop and
// framing set. Tenant identity headers pass through here; backends depend
// on them.
func copyHeaders(dst, src http.Header) {
	for name, values := range src {
		if _, skip := hopHeaders[http.CanonicalHeaderKey(name)]; skip {
			continue
		}
		for _, v := range values {
			dst.Add(name, v)
		}
	}
}

// relayHeaders copies upstream response headers, minus framing headers and
// any CORS headers the upstream may have set - the gateway's own policy
// already answered those.
func relayHeaders(dst, src http.Header) {
	for name, values := range src {
		canonical := http.CanonicalHeaderKey(name)
		if _, skip := hopHeaders[canonical]; skip {
			continue
		}
		if strings.HasPrefix(canonical, "Access-Control-") {
			continue
		}
		for _, v := range values {
			dst.Add(name, v)
		}
	}
}

// upstreamErrorText maps a transport failure to the client-facing message.
func upstreamErrorText(err error) string {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return "Upstream request timed out"
	}
	return err.Error()
}

// writeJSONError renders the structured error body shared by every
// gateway failure path.
func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
