package tenant

// Identity is the caller's verified tenant, valid for one request.
// DBLocation is opaque and passed through unmodified end-to-end; it is
// never rewritten between the signing service and the database dial.
type Identity struct {
	ID         string
	DBLocation string
}

// TrustMode selects how tenant identity headers are authenticated.
type TrustMode string

const (
	// TrustSignature requires a valid signature over the identity headers.
	TrustSignature TrustMode = "signature"

	// TrustHeaders accepts bare identity headers without a signature.
	// Local development only - never enable this where the gateway is
	// reachable by untrusted callers.
	TrustHeaders TrustMode = "headers"
)

// Config holds the middleware configuration.
type Config struct {
	SigningSecret string    `env:"TENANT_SIGNING_SECRET"`
	TrustMode     TrustMode `env:"TENANT_TRUST_MODE" envDefault:"signature"`
}
