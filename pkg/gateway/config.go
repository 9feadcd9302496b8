package gateway

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the gateway configuration. Routes map a path prefix (one
// segment, no slashes) to a backend base URL; they can come from the
// GATEWAY_ROUTES env map, a YAML routes file, or both (env wins on
// conflict).
type Config struct {
	Addr            string            `env:"GATEWAY_ADDR" envDefault:":7000"`
	Routes          map[string]string `env:"GATEWAY_ROUTES" envSeparator:"," envKeyValSeparator:"="`
	RoutesFile      string            `env:"GATEWAY_ROUTES_FILE"`
	AllowedOrigins  []string          `env:"GATEWAY_ALLOWED_ORIGINS" envSeparator:","`
	UpstreamTimeout time.Duration     `env:"GATEWAY_UPSTREAM_TIMEOUT" envDefault:"30s"`
}

// routesFile is the YAML shape of the optional routes file:
//
//	routes:
//	  product: http://localhost:4300/api
//	  payment: http://localhost:8000/payment-service
type routesFile struct {
	Routes map[string]string `yaml:"routes"`
}

// LoadRoutesFile reads prefix -> base URL pairs from a YAML file.
func LoadRoutesFile(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read routes file: %w", err)
	}
	var f routesFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse routes file: %w", err)
	}
	return f.Routes, nil
}

// ResolveRoutes merges the config's route sources into one map.
func (c Config) ResolveRoutes() (map[string]string, error) {
	merged := make(map[string]string)
	if c.RoutesFile != "" {
		fromFile, err := LoadRoutesFile(c.RoutesFile)
		if err != nil {
			return nil, err
		}
		for prefix, base := range fromFile {
			merged[prefix] = base
		}
	}
	for prefix, base := range c.Routes {
		merged[prefix] = base
	}
	return merged, nil
}

// RouteTable is the immutable prefix -> backend mapping. Built once at
// startup; holds no other state between requests.
type RouteTable struct {
	routes map[string]*url.URL
}

// NewRouteTable validates and freezes the prefix -> base URL pairs.
func NewRouteTable(routes map[string]string) (*RouteTable, error) {
	if len(routes) == 0 {
		return nil, ErrEmptyRouteTable
	}

	table := make(map[string]*url.URL, len(routes))
	for prefix, base := range routes {
		if prefix == "" || strings.Contains(prefix, "/") {
			return nil, fmt.Errorf("%w: prefix %q", ErrInvalidRoute, prefix)
		}
		u, err := url.Parse(base)
		if err != nil || !u.IsAbs() || u.Host == "" {
			return nil, fmt.Errorf("%w: base URL %q for prefix %q", ErrInvalidRoute, base, prefix)
		}
		table[prefix] = u
	}
	return &RouteTable{routes: table}, nil
}

// Lookup returns the backend base URL registered for the given prefix.
func (t *RouteTable) Lookup(prefix string) (*url.URL, bool) {
	u, ok := t.routes[prefix]
	return u, ok
}
