package relay

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/linerelay/pkg/logger"
)

// Line is one message travelling through the broadcast channel.
type Line struct {
	// Text is the line exactly as read from the socket, newline included.
	Text string
	// Sender is the ID of the connection that produced the line.
	Sender uuid.UUID
	// Remote marks lines injected from another relay instance.
	Remote bool
}

type connectionIDKey struct{}

// WithConnectionID returns a copy of ctx carrying the connection id.
func WithConnectionID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, connectionIDKey{}, id)
}

// ConnectionIDFromContext returns the connection id stored in ctx, if any.
func ConnectionIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(connectionIDKey{}).(uuid.UUID)
	return id, ok
}

// ConnectionIDExtractor adds the connection id to records logged with a
// connection-scoped context.
func ConnectionIDExtractor(ctx context.Context) (slog.Attr, bool) {
	id, ok := ConnectionIDFromContext(ctx)
	if !ok {
		return slog.Attr{}, false
	}
	return logger.ConnectionID(id.String()), true
}
