package tenantsig_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storegate/storegate/pkg/tenantsig"
)

func signedHeaders(tenantID, dbLocation, secret string) http.Header {
	h := http.Header{}
	tenantsig.SetHeaders(h, tenantID, dbLocation, secret)
	return h
}

func TestSign(t *testing.T) {
	t.Parallel()

	t.Run("deterministic", func(t *testing.T) {
		t.Parallel()

		first := tenantsig.Sign("t-42", "mongodb://host/tenant42", "s3cr3t")
		second := tenantsig.Sign("t-42", "mongodb://host/tenant42", "s3cr3t")
		assert.Equal(t, first, second)
	})

	t.Run("lowercase hex of sha256 length", func(t *testing.T) {
		t.Parallel()

		sig := tenantsig.Sign("t-42", "mongodb://host/tenant42", "s3cr3t")
		require.Len(t, sig, 64)
		assert.Equal(t, strings.ToLower(sig), sig)
	})

	t.Run("secret changes signature", func(t *testing.T) {
		t.Parallel()

		a := tenantsig.Sign("t-42", "mongodb://host/tenant42", "secret-a")
		b := tenantsig.Sign("t-42", "mongodb://host/tenant42", "secret-b")
		assert.NotEqual(t, a, b)
	})

	t.Run("delimiter prevents concatenation ambiguity", func(t *testing.T) {
		t.Parallel()

		a := tenantsig.Sign("ab", "c", "s3cr3t")
		b := tenantsig.Sign("a", "bc", "s3cr3t")
		assert.NotEqual(t, a, b)
	})
}

func TestVerify(t *testing.T) {
	t.Parallel()

	const (
		tenantID = "t-42"
		location = "mongodb://host/tenant42"
		secret   = "s3cr3t"
	)

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		h := signedHeaders(tenantID, location, secret)
		assert.True(t, tenantsig.Verify(h, secret))
	})

	t.Run("accepts uppercase signature", func(t *testing.T) {
		t.Parallel()

		h := signedHeaders(tenantID, location, secret)
		h.Set(tenantsig.HeaderSignature, strings.ToUpper(h.Get(tenantsig.HeaderSignature)))
		assert.True(t, tenantsig.Verify(h, secret))
	})

	t.Run("accepts surrounding whitespace", func(t *testing.T) {
		t.Parallel()

		h := signedHeaders(tenantID, location, secret)
		h.Set(tenantsig.HeaderSignature, "  "+h.Get(tenantsig.HeaderSignature)+"  ")
		assert.True(t, tenantsig.Verify(h, secret))
	})

	t.Run("rejects wrong secret", func(t *testing.T) {
		t.Parallel()

		h := signedHeaders(tenantID, location, secret)
		assert.False(t, tenantsig.Verify(h, "other-secret"))
	})

	t.Run("rejects flipped signature characters", func(t *testing.T) {
		t.Parallel()

		h := signedHeaders(tenantID, location, secret)
		sig := h.Get(tenantsig.HeaderSignature)

		for _, pos := range []int{0, len(sig) / 2, len(sig) - 1} {
			flipped := []byte(sig)
			if flipped[pos] == '0' {
				flipped[pos] = '1'
			} else {
				flipped[pos] = '0'
			}
			h.Set(tenantsig.HeaderSignature, string(flipped))
			assert.False(t, tenantsig.Verify(h, secret), "flipped position %d", pos)
		}
	})

	t.Run("rejects all-zero signature of correct length", func(t *testing.T) {
		t.Parallel()

		h := signedHeaders(tenantID, location, secret)
		h.Set(tenantsig.HeaderSignature, strings.Repeat("0", 64))
		assert.False(t, tenantsig.Verify(h, secret))
	})

	t.Run("rejects tampered location", func(t *testing.T) {
		t.Parallel()

		h := signedHeaders(tenantID, location, secret)
		h.Set(tenantsig.HeaderDBURI, "mongodb://host/tenant43")
		assert.False(t, tenantsig.Verify(h, secret))
	})

	t.Run("fails closed on missing headers", func(t *testing.T) {
		t.Parallel()

		for _, missing := range []string{
			tenantsig.HeaderTenantID,
			tenantsig.HeaderDBURI,
			tenantsig.HeaderSignature,
		} {
			h := signedHeaders(tenantID, location, secret)
			h.Del(missing)
			assert.False(t, tenantsig.Verify(h, secret), "missing %s", missing)
		}
	})

	t.Run("fails closed on non-hex signature", func(t *testing.T) {
		t.Parallel()

		h := signedHeaders(tenantID, location, secret)
		h.Set(tenantsig.HeaderSignature, strings.Repeat("zz", 32))
		assert.False(t, tenantsig.Verify(h, secret))
	})

	t.Run("fails closed on short signature", func(t *testing.T) {
		t.Parallel()

		h := signedHeaders(tenantID, location, secret)
		h.Set(tenantsig.HeaderSignature, "abc123")
		assert.False(t, tenantsig.Verify(h, secret))
	})
}
