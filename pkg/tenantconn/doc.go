// Package tenantconn maintains the per-tenant database connection cache.
//
// Each tenant's data lives in its own database, identified by an opaque
// location string (a connection URI). The cache maps location strings to
// live handles: the first request for a never-seen location dials the
// database, every later request reuses the stored handle. Concurrent first
// requests for the same location are collapsed into a single dial - waiters
// block on the in-flight creation instead of opening duplicate connections.
//
// A failed dial never poisons its key: the pending entry is cleared so a
// later Resolve can retry. Entries are not evicted during normal operation;
// handles are released only by Close at process shutdown.
//
// The cache is generic over the handle type. MongoDialer adapts the
// official mongo driver as the dial function:
//
//	cache := tenantconn.New(tenantconn.MongoDialer(cfg),
//		tenantconn.WithCloser(tenantconn.MongoCloser),
//	)
//	db, err := cache.Resolve(ctx, "mongodb://host/tenant42")
package tenantconn
