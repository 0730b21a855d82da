// Package pg provides the relay's optional PostgreSQL connection pool, built
// on the pgx/v5 driver.
//
// The relay never stores messages; the pool exists so deployments that
// co-locate the relay with a database can verify connectivity at startup and
// fail fast when it is unavailable.
//
//   - Config is populated from environment variables via
//     github.com/caarlos0/env. An empty PG_CONN_URL disables the database.
//   - Connect opens a *pgxpool.Pool, pings it and retries with a growing
//     delay until RetryAttempts is exhausted or ctx is cancelled.
//   - Healthcheck wraps a ping in a func(context.Context) error.
//
// # Usage
//
//	if cfg.DB.Enabled() {
//	    pool, err := pg.Connect(ctx, cfg.DB)
//	    if err != nil {
//	        return err
//	    }
//	    defer pool.Close()
//	    checks = append(checks, pg.Healthcheck(pool))
//	}
//
// # Error Handling
//
// Errors are sentinel values (ErrEmptyConnectionString,
// ErrFailedToParseDBConfig, ErrFailedToOpenDBConnection,
// ErrHealthcheckFailed) joined with the underlying pgx error.
package pg
