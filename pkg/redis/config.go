package redis

import "time"

// Config describes the optional Redis connection used by the cluster bridge.
// An empty ConnectionURL disables it.
type Config struct {
	ConnectionURL  string        `env:"REDIS_URL"`                              // ConnectionURL is the URL of the server, e.g. "redis://:password@localhost:6379/0".
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`    // RetryAttempts is the number of attempts to connect.
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`   // RetryInterval is the interval between attempts.
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"` // ConnectTimeout bounds the whole connect sequence.
}

// Enabled reports whether a connection URL has been configured.
func (c Config) Enabled() bool {
	return c.ConnectionURL != ""
}
