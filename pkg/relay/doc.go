// Package relay implements a line-oriented TCP broadcast relay: every line a
// client sends is forwarded verbatim to all connected clients.
//
// A Server owns the broadcast channel and is shared by any number of
// Listeners. Each accepted socket becomes a Connection running two loops:
// the receive-loop reads newline-terminated lines and publishes them, the
// send-loop receives from the connection's own subscription and writes to
// the socket. The receive-loop decides the outcome of a session; when it
// returns the send-loop is cancelled.
//
// Slow clients never block anyone. The channel keeps a bounded ring of lines
// and a client that falls behind loses the overwritten ones, which is logged
// as a warning with the number of missed lines.
//
// # Usage
//
//	srv := relay.NewServer(cfg, relay.WithLogger(log))
//	defer srv.Close()
//
//	if err := relay.ServeAll(ctx, srv, cfg.Listeners); err != nil {
//	    return err
//	}
//
// # Configuration
//
// Config is populated from environment variables via github.com/caarlos0/env.
// RELAY_LISTENERS takes a comma separated list of "name=host:port" or
// "host:port" entries; listeners without a name are called "unnamed".
// When RELAY_MOTD is set, every client receives it on connect, terminated
// with CRLF unless it already ends in a newline. RELAY_ECHO controls whether
// a client receives its own lines.
//
// # Errors
//
// ErrBind is the only error that stops a Listener. Connection errors
// (ErrReadLine, ErrWriteGreeting, socket write failures) end that connection
// only and are logged by the listener.
package relay
