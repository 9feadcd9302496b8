// Package checkout turns a buyer's cart into a hosted payment session and
// confirms the outcome. It never touches card data: the external provider
// hosts the payment page, and the service only creates sessions and later
// verifies them. Confirmed payments are announced on the event bus for the
// rest of the platform.
package checkout

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/storegate/storegate/pkg/payment"
)

// TopicPaymentCompleted carries one CompletedEvent per confirmed payment.
// Consumers must tolerate duplicates; delivery is at-least-once.
const TopicPaymentCompleted = "payment.completed"

var (
	// ErrEmptyCart is returned when a session is requested with no items.
	ErrEmptyCart = errors.New("checkout: cart is empty")

	// ErrInvalidInput is returned for requests that fail validation.
	ErrInvalidInput = errors.New("checkout: invalid input")

	// ErrNotPaid is returned when a verified session has not completed.
	ErrNotPaid = errors.New("checkout: session not paid")
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// CreateRequest is the body of a session creation call.
type CreateRequest struct {
	Items         []payment.LineItem `json:"items"`
	CustomerEmail string             `json:"customer_email"`
	SuccessURL    string             `json:"success_url"`
}

// Validate checks the request before it reaches the provider.
func (r CreateRequest) Validate() error {
	if len(r.Items) == 0 {
		return ErrEmptyCart
	}
	for _, item := range r.Items {
		if strings.TrimSpace(item.PriceID) == "" {
			return fmt.Errorf("%w: every item needs a price id", ErrInvalidInput)
		}
	}
	if r.CustomerEmail != "" && !emailRe.MatchString(r.CustomerEmail) {
		return fmt.Errorf("%w: malformed customer email", ErrInvalidInput)
	}
	return nil
}

// CompletedEvent is published on TopicPaymentCompleted once a session is
// confirmed paid.
type CompletedEvent struct {
	TenantID      string `json:"tenant_id"`
	SessionID     string `json:"session_id"`
	CustomerEmail string `json:"customer_email,omitempty"`
}
