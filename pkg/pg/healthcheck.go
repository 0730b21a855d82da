package pg

import (
	"context"
	"errors"
)

// Pinger is the part of *pgxpool.Pool the healthcheck needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Healthcheck returns a closure that validates database connectivity.
// The relay runs it once at startup as a liveness check; the closure form
// fits any func(context.Context) error based check.
func Healthcheck(conn Pinger) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := conn.Ping(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
