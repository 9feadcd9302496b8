// Package payment abstracts the hosted checkout provider behind a narrow
// interface. The platform never touches card data: it creates a hosted
// checkout session, redirects the buyer, and later retrieves the session
// to learn whether payment completed. Provider-specific quirks stay inside
// the implementations.
package payment

import (
	"context"
	"errors"
)

var (
	// ErrInvalidConfig is returned for incomplete provider configuration.
	ErrInvalidConfig = errors.New("payment: invalid config")

	// ErrEmptyCart is returned when a checkout is requested with no items.
	ErrEmptyCart = errors.New("payment: checkout requires at least one item")

	// ErrProviderFailure wraps errors from the external provider.
	ErrProviderFailure = errors.New("payment: provider call failed")
)

// LineItem references one catalog price being purchased.
type LineItem struct {
	PriceID  string `json:"price_id"`
	Quantity int    `json:"quantity"`
}

// CheckoutParams describes a hosted checkout session to create.
type CheckoutParams struct {
	Items      []LineItem
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

// CheckoutSession is a created hosted checkout.
type CheckoutSession struct {
	ID  string `json:"session_id"`
	URL string `json:"url"`
}

// Session is the retrieved state of a checkout session.
type Session struct {
	ID       string
	Status   string
	Metadata map[string]string
}

// Paid reports whether the session's payment completed.
func (s Session) Paid() bool {
	switch s.Status {
	case "completed", "paid", "billed":
		return true
	}
	return false
}

// Provider is the platform's view of the external payment service.
type Provider interface {
	// CreateCheckoutSession creates a hosted checkout and returns its
	// redirect URL and session id.
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)

	// RetrieveSession fetches the current state of a session by id.
	RetrieveSession(ctx context.Context, sessionID string) (*Session, error)
}
