// Package tenantsig implements the keyed signature that binds a tenant
// identifier to its database location string.
//
// Trusted services share a signing secret and attach three headers to every
// tenant-scoped request: the tenant id, the tenant database location, and an
// HMAC-SHA256 signature over both. Backends verify the signature before
// touching the tenant's database, so a caller cannot point a request at
// another tenant's data store by rewriting headers.
//
// The signed payload is the delimiter-joined string "id|location" rather
// than the two fields hashed independently. This is part of the contract
// peers rely on: joining before hashing rules out concatenation ambiguities
// such as "ab"+"c" vs "a"+"bc".
//
// # Usage
//
//	sig := tenantsig.Sign("t-42", "mongodb://host/tenant42", secret)
//
//	// On the receiving side:
//	if !tenantsig.Verify(r.Header, secret) {
//		// reject the request
//	}
//
// Verify always terminates with a boolean. Missing headers, malformed hex,
// or a wrong-length signature are treated as verification failure, never as
// an error to propagate.
package tenantsig
