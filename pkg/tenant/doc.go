// Package tenant gates access to tenant-scoped backend operations.
//
// The middleware authenticates the tenant identity headers carried by each
// request (see package tenantsig), resolves the tenant's database handle
// through the connection cache, and attaches both to the request context.
// Downstream handlers never see an unverified identity: a request that
// fails authentication terminates at the middleware.
//
// Trust is an explicit configuration variant rather than an ad hoc
// conditional. TrustSignature (the default) requires a valid signature.
// TrustHeaders accepts the identity headers without a signature and exists
// only for local development against services that have no shared secret.
//
//	mw := tenant.Middleware(cfg, conns)
//	r.With(mw).Route("/products", ...)
//
// Handlers read the resolved identity and handle back out of the context:
//
//	identity := tenant.MustFromContext(r.Context())
//	db, _ := tenant.ConnFromContext[*mongo.Client](r.Context())
package tenant
