package cluster

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/linerelay/pkg/broadcast"
	"github.com/dmitrymomot/linerelay/pkg/logger"
	"github.com/dmitrymomot/linerelay/pkg/relay"
)

// envelope is the wire form of a line on the transport.
type envelope struct {
	Origin uuid.UUID `json:"origin"`
	Sender uuid.UUID `json:"sender"`
	Text   string    `json:"text"`
}

// Bridge connects a relay Server to other instances. Lines produced by local
// clients are exported to the transport; lines from other instances are
// published locally and marked Remote so they are never exported again.
type Bridge struct {
	srv       *relay.Server
	transport Transport
	id        uuid.UUID
	logger    *slog.Logger
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger. A nil logger keeps the default no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithInstanceID overrides the randomly generated instance id.
func WithInstanceID(id uuid.UUID) Option {
	return func(b *Bridge) { b.id = id }
}

// NewBridge creates a Bridge for srv.
func NewBridge(srv *relay.Server, transport Transport, opts ...Option) *Bridge {
	b := &Bridge{
		srv:       srv,
		transport: transport,
		id:        uuid.New(),
		logger:    logger.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.With(logger.Component("cluster"), slog.String("instance_id", b.id.String()))
	return b
}

// InstanceID returns the id stamped on exported lines.
func (b *Bridge) InstanceID() uuid.UUID {
	return b.id
}

// Run exports and imports lines until ctx is cancelled or the local channel
// is closed. It returns nil in both cases.
func (b *Bridge) Run(ctx context.Context) error {
	sub := b.srv.Channel().Subscribe()
	defer func() { _ = sub.Close() }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	in, err := b.transport.Subscribe(ctx)
	if err != nil {
		return errors.Join(ErrSubscribe, err)
	}
	b.logger.InfoContext(ctx, "cluster bridge started")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// The channel closing means the relay is shutting down.
		defer cancel()
		return b.export(gctx, sub)
	})
	g.Go(func() error { return b.importLines(gctx, in) })

	err = g.Wait()
	b.logger.InfoContext(ctx, "cluster bridge stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (b *Bridge) export(ctx context.Context, sub *broadcast.Subscription[relay.Line]) error {
	for {
		line, err := sub.Receive(ctx)
		if err != nil {
			var lag *broadcast.LagError
			switch {
			case errors.As(err, &lag):
				b.logger.WarnContext(ctx, "bridge fell behind local traffic", logger.LaggedBy(lag.Missed))
				continue
			case errors.Is(err, broadcast.ErrClosed), ctx.Err() != nil:
				return nil
			default:
				return err
			}
		}
		if line.Remote {
			continue
		}

		payload, err := json.Marshal(envelope{Origin: b.id, Sender: line.Sender, Text: line.Text})
		if err != nil {
			return err
		}
		if err := b.transport.Publish(ctx, payload); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			b.logger.WarnContext(ctx, "failed to export line", logger.Error(err))
		}
	}
}

func (b *Bridge) importLines(ctx context.Context, in <-chan []byte) error {
	for {
		var payload []byte
		select {
		case <-ctx.Done():
			return nil
		case p, ok := <-in:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return ErrTransportClosed
			}
			payload = p
		}

		var env envelope
		if err := json.Unmarshal(payload, &env); err != nil {
			b.logger.WarnContext(ctx, "dropping malformed cluster message", logger.Error(err))
			continue
		}
		if env.Origin == b.id {
			continue
		}

		_, err := b.srv.Publish(relay.Line{Text: env.Text, Sender: env.Sender, Remote: true})
		switch {
		case err == nil, errors.Is(err, broadcast.ErrNoSubscribers):
		case errors.Is(err, broadcast.ErrClosed):
			return nil
		default:
			b.logger.WarnContext(ctx, "failed to publish cluster line", logger.Error(err))
		}
	}
}
