package relay

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ServeAll runs one Listener per config concurrently. The first fatal error
// cancels the remaining listeners and is returned once they have stopped.
func ServeAll(ctx context.Context, srv *Server, listeners []ListenerConfig, opts ...ListenerOption) error {
	if len(listeners) == 0 {
		return ErrNoListeners
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, cfg := range listeners {
		l := NewListener(srv, cfg, opts...)
		g.Go(func() error { return l.Serve(ctx) })
	}
	return g.Wait()
}
