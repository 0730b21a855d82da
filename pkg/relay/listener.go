package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/dmitrymomot/linerelay/pkg/logger"
)

const (
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = time.Second
)

// ListenerOption configures a Listener.
type ListenerOption func(*Listener)

// WithReadyHook registers a callback invoked once the listener is bound.
func WithReadyHook(h func(name string, addr net.Addr)) ListenerOption {
	if h == nil {
		panic("WithReadyHook: nil hook")
	}
	return func(l *Listener) {
		l.readyHooks = append(l.readyHooks, h)
	}
}

// WithListenConfig sets the net.ListenConfig used to bind the socket.
func WithListenConfig(lc net.ListenConfig) ListenerOption {
	return func(l *Listener) { l.lc = lc }
}

// Listener accepts clients on one address and hands each of them to the
// shared Server.
type Listener struct {
	srv        *Server
	cfg        ListenerConfig
	lc         net.ListenConfig
	logger     *slog.Logger
	readyHooks []func(string, net.Addr)

	mu      sync.Mutex
	ln      net.Listener
	running bool
	wg      sync.WaitGroup
}

// NewListener returns a Listener for cfg. An empty name becomes "unnamed".
func NewListener(srv *Server, cfg ListenerConfig, opts ...ListenerOption) *Listener {
	cfg.Name = cfg.name()
	l := &Listener{
		srv:    srv,
		cfg:    cfg,
		logger: srv.logger.With(logger.Listener(cfg.Name)),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Name returns the listener name.
func (l *Listener) Name() string {
	return l.cfg.Name
}

// Addr returns the bound address, or nil before Serve has bound the socket.
func (l *Listener) Addr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ln == nil {
		return nil
	}
	return l.ln.Addr()
}

// Serve binds the configured address and serves it with ServeListener. A
// failed bind is returned wrapped in ErrBind.
func (l *Listener) Serve(ctx context.Context) error {
	if l.isRunning() {
		return l.errAlreadyServing()
	}
	ln, err := l.lc.Listen(ctx, "tcp", l.cfg.Bind)
	if err != nil {
		return errors.Join(ErrBind, fmt.Errorf("listener %q on %s: %w", l.cfg.Name, l.cfg.Bind, err))
	}
	return l.ServeListener(ctx, ln)
}

// ServeListener accepts clients on ln until ctx is cancelled. Each client is
// handled on its own goroutine. Accept errors are logged and retried with a
// growing delay. After cancellation it closes ln, waits for running handlers
// and returns nil. A Listener serves at most one net.Listener.
func (l *Listener) ServeListener(ctx context.Context, ln net.Listener) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		_ = ln.Close()
		return l.errAlreadyServing()
	}
	l.ln = ln
	l.running = true
	l.mu.Unlock()

	l.logger.InfoContext(ctx, "listening", logger.BindAddr(ln.Addr().String()))
	for _, h := range l.readyHooks {
		h(l.cfg.Name, ln.Addr())
	}

	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	l.acceptLoop(ctx, ln)

	_ = ln.Close()
	l.wg.Wait()
	l.logger.InfoContext(ctx, "listener stopped")
	return nil
}

func (l *Listener) isRunning() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

func (l *Listener) errAlreadyServing() error {
	return errors.Join(ErrBind, fmt.Errorf("listener %q is already serving", l.cfg.Name))
}

func (l *Listener) acceptLoop(ctx context.Context, ln net.Listener) {
	var delay time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			if delay == 0 {
				delay = minAcceptDelay
			} else {
				delay = min(delay*2, maxAcceptDelay)
			}
			l.logger.WarnContext(ctx, "accept failed", logger.Error(err), slog.Duration("retry_in", delay))

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			continue
		}
		delay = 0

		l.wg.Add(1)
		go l.handle(ctx, conn)
	}
}

func (l *Listener) handle(ctx context.Context, conn net.Conn) {
	defer l.wg.Done()

	c := newConnection(l.srv, conn, l.logger)
	log := l.logger.With(logger.ConnectionID(c.ID().String()), logger.RemoteAddr(conn.RemoteAddr()))
	if err := c.Handle(ctx); err != nil {
		log.WarnContext(ctx, "client error", logger.Error(err))
		return
	}
	log.InfoContext(ctx, "client disconnected")
}
