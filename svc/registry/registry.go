// Package registry is the platform-side tenant directory. It records each
// tenant's database location in the shared Postgres control plane and mints
// the signed identity headers that backend services require. Only platform
// operators reach these endpoints; storefront traffic never does.
package registry

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when no tenant matches the lookup.
	ErrNotFound = errors.New("tenant not found")

	// ErrDuplicateSubdomain is returned when the subdomain is already taken.
	ErrDuplicateSubdomain = errors.New("subdomain already registered")

	// ErrInvalidInput is returned for inputs that fail validation.
	ErrInvalidInput = errors.New("invalid tenant input")
)

// Tenant is one registered storefront.
type Tenant struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Subdomain  string    `json:"subdomain"`
	DBLocation string    `json:"db_location"`
	CreatedAt  time.Time `json:"created_at"`
}

// Input carries the fields needed to register a tenant. Subdomain is
// optional; when empty it is derived from the name.
type Input struct {
	Name       string `json:"name"`
	Subdomain  string `json:"subdomain"`
	DBLocation string `json:"db_location"`
}

const maxSubdomainLength = 63

// Validate checks the registration input.
func (in Input) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.DBLocation) == "" {
		return fmt.Errorf("%w: db_location is required", ErrInvalidInput)
	}
	if in.Subdomain != "" {
		if len(in.Subdomain) > maxSubdomainLength {
			return fmt.Errorf("%w: subdomain exceeds %d characters", ErrInvalidInput, maxSubdomainLength)
		}
		for _, r := range in.Subdomain {
			if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
				return fmt.Errorf("%w: subdomain may contain only lowercase letters, digits and hyphens", ErrInvalidInput)
			}
		}
	}
	return nil
}

// Credentials are the signed identity headers a caller presents to the
// tenant-scoped backends.
type Credentials struct {
	TenantID   string `json:"tenant_id"`
	DBLocation string `json:"db_location"`
	Signature  string `json:"signature"`
}
