// Package redis connects the relay to Redis, which carries lines between
// relay instances when clustering is enabled (see package cluster).
//
// Config is populated from environment variables via
// github.com/caarlos0/env. An empty REDIS_URL leaves clustering off.
//
// # Usage
//
//	client, err := redis.Connect(ctx, cfg.Redis)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	checks = append(checks, redis.Healthcheck(client))
//
// # Errors
//
// Sentinel errors (ErrEmptyConnectionURL, ErrFailedToParseRedisConnString,
// ErrRedisNotReady, ErrHealthcheckFailed) are joined with the underlying
// go-redis error via errors.Join.
package redis
