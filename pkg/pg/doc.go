// Package pg wraps pgx/v5 connection pooling for the platform's shared
// control-plane database. Tenant data never lives here; Postgres holds only
// platform-owned records such as the tenant directory.
//
// Connect opens a *pgxpool.Pool from an env-driven Config, retrying with
// linear backoff until the database is reachable. Healthcheck adapts the
// pool to the func(context.Context) error shape health endpoints expect,
// and the error helpers classify pgx errors so stores can map them onto
// domain errors.
//
//	var cfg pg.Config
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
package pg
