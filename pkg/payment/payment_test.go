package payment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/storegate/storegate/pkg/payment"
)

func TestNewPaddleProvider(t *testing.T) {
	t.Parallel()

	t.Run("requires api key", func(t *testing.T) {
		t.Parallel()

		_, err := payment.NewPaddleProvider(payment.PaddleConfig{})
		assert.ErrorIs(t, err, payment.ErrInvalidConfig)
	})

	t.Run("rejects unknown environment", func(t *testing.T) {
		t.Parallel()

		_, err := payment.NewPaddleProvider(payment.PaddleConfig{
			APIKey:      "pdl_test_key",
			Environment: "staging",
		})
		assert.ErrorIs(t, err, payment.ErrInvalidConfig)
	})

	t.Run("builds for sandbox", func(t *testing.T) {
		t.Parallel()

		provider, err := payment.NewPaddleProvider(payment.PaddleConfig{
			APIKey:      "pdl_test_key",
			Environment: "sandbox",
		})
		assert.NoError(t, err)
		assert.NotNil(t, provider)
	})
}

func TestSessionPaid(t *testing.T) {
	t.Parallel()

	for status, paid := range map[string]bool{
		"completed": true,
		"paid":      true,
		"billed":    true,
		"draft":     false,
		"canceled":  false,
		"past_due":  false,
		"":          false,
	} {
		s := payment.Session{Status: status}
		assert.Equal(t, paid, s.Paid(), "status %q", status)
	}
}
