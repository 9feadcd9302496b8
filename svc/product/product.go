// Package product implements the tenant-scoped product catalog. Every
// operation runs against the caller's own tenant database, resolved by the
// tenant middleware before any handler executes.
package product

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when no product matches the given id.
	ErrNotFound = errors.New("product not found")

	// ErrInvalidInput is returned for inputs that fail validation.
	ErrInvalidInput = errors.New("invalid product input")
)

// Product is one catalog entry in a tenant's store.
type Product struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	PriceCents  int64     `json:"price_cents" bson:"price_cents"`
	Quantity    int       `json:"quantity" bson:"quantity"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// Input carries the writable product fields.
type Input struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	Quantity    int    `json:"quantity"`
}

const maxNameLength = 200

// Validate checks the input before it reaches the store.
func (in Input) Validate() error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidInput, maxNameLength)
	}
	if in.PriceCents < 0 {
		return fmt.Errorf("%w: price must be non-negative", ErrInvalidInput)
	}
	if in.Quantity < 0 {
		return fmt.Errorf("%w: quantity must be non-negative", ErrInvalidInput)
	}
	return nil
}
