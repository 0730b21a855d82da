package relay

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/linerelay/pkg/async"
	"github.com/dmitrymomot/linerelay/pkg/broadcast"
	"github.com/dmitrymomot/linerelay/pkg/logger"
)

// Connection is one client session. It is owned by the goroutine calling
// Handle: the receive-loop uses the read side, the send-loop the write side.
type Connection struct {
	id     uuid.UUID
	srv    *Server
	conn   net.Conn
	sub    *broadcast.Subscription[Line]
	reader *bufio.Reader
	writer *bufio.Writer
	logger *slog.Logger
}

func newConnection(srv *Server, conn net.Conn, log *slog.Logger) *Connection {
	return &Connection{
		id:     uuid.New(),
		srv:    srv,
		conn:   conn,
		sub:    srv.ch.Subscribe(),
		reader: bufio.NewReader(conn),
		writer: bufio.NewWriter(conn),
		logger: log.With(logger.RemoteAddr(conn.RemoteAddr())),
	}
}

// ID returns the connection's unique id.
func (c *Connection) ID() uuid.UUID {
	return c.id
}

// Handle runs the session until the client goes away, the socket fails or
// ctx is cancelled. The result is the receive-loop's outcome; a send-loop
// failure is only logged. The socket and the subscription are released
// before Handle returns.
func (c *Connection) Handle(ctx context.Context) error {
	defer func() { _ = c.sub.Close() }()
	defer func() { _ = c.conn.Close() }()

	ctx = WithConnectionID(ctx, c.id)
	if c.conn.RemoteAddr() == nil {
		c.logger.DebugContext(ctx, "peer address unavailable")
	}
	c.logger.InfoContext(ctx, "client connected")

	if err := c.writeGreeting(); err != nil {
		return errors.Join(ErrWriteGreeting, err)
	}

	sendCtx, cancelSend := context.WithCancel(ctx)
	defer cancelSend()
	send := async.Async(sendCtx, c.writer, c.sendLoop)

	// Cancellation of ctx unblocks a pending read.
	stop := context.AfterFunc(ctx, func() { _ = c.conn.SetReadDeadline(time.Now()) })
	err := c.receiveLoop(ctx)
	stop()

	// The read side is done; tear the write side down. An interrupted write
	// may leave a partial line on the wire, the socket is closing anyway.
	cancelSend()
	_ = c.conn.SetWriteDeadline(time.Now())
	if _, sendErr := send.Await(); sendErr != nil && !errors.Is(sendErr, context.Canceled) {
		c.logger.DebugContext(ctx, "send loop stopped", logger.Error(sendErr))
	}

	return err
}

func (c *Connection) writeGreeting() error {
	if c.srv.greeting == "" {
		return nil
	}
	if _, err := c.writer.WriteString(c.srv.greeting); err != nil {
		return err
	}
	return c.writer.Flush()
}

// sendLoop writes every line received from the broadcast channel to the
// socket. It returns nil once the channel is closed.
func (c *Connection) sendLoop(ctx context.Context, w *bufio.Writer) (struct{}, error) {
	for {
		line, err := c.sub.Receive(ctx)
		if err != nil {
			var lag *broadcast.LagError
			switch {
			case errors.As(err, &lag):
				c.logger.WarnContext(ctx, "too many messages received", logger.LaggedBy(lag.Missed))
				continue
			case errors.Is(err, broadcast.ErrClosed):
				return struct{}{}, nil
			default:
				return struct{}{}, err
			}
		}

		if !c.srv.echo && line.Sender == c.id {
			continue
		}
		if _, err := w.WriteString(line.Text); err != nil {
			return struct{}{}, err
		}
		if err := w.Flush(); err != nil {
			return struct{}{}, err
		}
	}
}

// receiveLoop publishes every complete line read from the socket. It returns
// nil on a clean EOF or when ctx is cancelled.
func (c *Connection) receiveLoop(ctx context.Context) error {
	for {
		text, err := c.reader.ReadString('\n')
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, io.EOF) {
				if text != "" {
					c.logger.DebugContext(ctx, "dropping incomplete line at EOF", slog.Int("bytes", len(text)))
				}
				return nil
			}
			c.logger.DebugContext(ctx, "read failed", logger.Error(err))
			return errors.Join(ErrReadLine, err)
		}

		_, err = c.srv.ch.Publish(Line{Text: text, Sender: c.id})
		switch {
		case err == nil, errors.Is(err, broadcast.ErrNoSubscribers):
		case errors.Is(err, broadcast.ErrClosed):
			c.logger.DebugContext(ctx, "broadcast channel closed")
			return nil
		default:
			c.logger.WarnContext(ctx, "publish failed", logger.Error(err))
		}
	}
}
