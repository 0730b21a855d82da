package relay

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"strings"

	"github.com/dmitrymomot/linerelay/pkg/broadcast"
	"github.com/dmitrymomot/linerelay/pkg/logger"
)

// Server is the state shared by every listener and connection: the broadcast
// channel, the greeting and the echo setting.
type Server struct {
	ch       *broadcast.Channel[Line]
	greeting string
	echo     bool
	logger   *slog.Logger
	checks   []func(context.Context) error
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the logger. A nil logger keeps the default no-op logger.
func WithLogger(l *slog.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithChannel makes the server publish to and subscribe from ch instead of
// creating its own channel.
func WithChannel(ch *broadcast.Channel[Line]) ServerOption {
	if ch == nil {
		panic("WithChannel: nil channel")
	}
	return func(s *Server) { s.ch = ch }
}

// WithHealthchecks registers liveness checks run by CheckHealth.
func WithHealthchecks(checks ...func(context.Context) error) ServerOption {
	return func(s *Server) {
		for _, c := range checks {
			if c != nil {
				s.checks = append(s.checks, c)
			}
		}
	}
}

// NewServer creates a Server from cfg. The broadcast channel holds
// cfg.MaxInFlightMsgs lines and resumes lagging clients according to
// cfg.LagPolicy, unless WithChannel supplies one.
func NewServer(cfg Config, opts ...ServerOption) *Server {
	s := &Server{
		greeting: greeting(cfg.Motd),
		echo:     cfg.Echo,
		logger:   logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ch == nil {
		capacity := cfg.MaxInFlightMsgs
		if capacity < 1 {
			capacity = broadcast.DefaultCapacity
		}
		s.ch = broadcast.New[Line](capacity, broadcast.WithLagPolicy(cfg.LagPolicy))
	}
	return s
}

// greeting terminates a non-empty MOTD with CRLF unless it already ends in a newline.
func greeting(motd string) string {
	if motd == "" || strings.HasSuffix(motd, "\n") {
		return motd
	}
	return motd + "\r\n"
}

// Channel returns the broadcast channel shared by all connections.
func (s *Server) Channel() *broadcast.Channel[Line] {
	return s.ch
}

// Publish sends a line to every connected client.
// It returns broadcast.ErrNoSubscribers when nobody is connected.
func (s *Server) Publish(line Line) (int, error) {
	return s.ch.Publish(line)
}

// NewConnection wraps an accepted socket. The connection subscribes to the
// broadcast channel immediately, so it observes every line published from
// this point on.
func (s *Server) NewConnection(conn net.Conn) *Connection {
	return newConnection(s, conn, s.logger)
}

// CheckHealth runs every registered healthcheck and joins their failures.
func (s *Server) CheckHealth(ctx context.Context) error {
	var errs []error
	for _, check := range s.checks {
		if err := check(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrHealthcheck}, errs...)...)
	}
	return nil
}

// Close closes the broadcast channel. Send-loops still running finish
// cleanly once they have drained what is left in the ring.
func (s *Server) Close() error {
	return s.ch.Close()
}
