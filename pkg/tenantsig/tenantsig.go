package tenantsig

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
)

// Header names recognized by the tenant layer. Lookup through http.Header
// is case-insensitive, so any casing on the wire matches.
const (
	HeaderTenantID  = "X-Tenant-ID"
	HeaderDBURI     = "X-Tenant-DB-URI"
	HeaderSignature = "X-Tenant-Sig"
)

const delimiter = "|"

// Sign computes the HMAC-SHA256 signature binding tenantID to dbLocation
// and returns it as lowercase hex. Deterministic: identical inputs always
// produce the identical signature.
func Sign(tenantID, dbLocation, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(tenantID + delimiter + dbLocation))
	return hex.EncodeToString(h.Sum(nil))
}

// SetHeaders attaches the tenant identity headers plus a fresh signature
// to h. Used by trusted services when forwarding tenant-scoped calls.
func SetHeaders(h http.Header, tenantID, dbLocation, secret string) {
	h.Set(HeaderTenantID, tenantID)
	h.Set(HeaderDBURI, dbLocation)
	h.Set(HeaderSignature, Sign(tenantID, dbLocation, secret))
}

// Verify checks the signature header against the id and location headers
// using the shared secret. It fails closed: any missing header, non-hex
// signature, or length mismatch yields false. The comparison of the raw
// digests is constant-time.
func Verify(h http.Header, secret string) bool {
	tenantID := h.Get(HeaderTenantID)
	dbLocation := h.Get(HeaderDBURI)
	provided := strings.ToLower(strings.TrimSpace(h.Get(HeaderSignature)))
	if tenantID == "" || dbLocation == "" || provided == "" {
		return false
	}

	expected := Sign(tenantID, dbLocation, secret)
	if len(expected) != len(provided) {
		return false
	}

	expectedRaw, err := hex.DecodeString(expected)
	if err != nil {
		return false
	}
	providedRaw, err := hex.DecodeString(provided)
	if err != nil {
		return false
	}

	return hmac.Equal(expectedRaw, providedRaw)
}
