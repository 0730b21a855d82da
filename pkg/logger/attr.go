package logger

import (
	"log/slog"
	"net"
)

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Listener records a listener name under the key "listener".
func Listener(name string) slog.Attr {
	return slog.String("listener", name)
}

// BindAddr records the address a listener is bound to under "bind_addr".
func BindAddr(addr string) slog.Attr {
	return slog.String("bind_addr", addr)
}

// RemoteAddr records a peer address under "remote_addr".
// A nil address is logged as "unknown".
func RemoteAddr(addr net.Addr) slog.Attr {
	if addr == nil {
		return slog.String("remote_addr", "unknown")
	}
	return slog.String("remote_addr", addr.String())
}

// ConnectionID records a connection identifier under "conn_id".
func ConnectionID(id string) slog.Attr {
	return slog.String("conn_id", id)
}

// LaggedBy records how many messages a subscriber missed.
func LaggedBy(n uint64) slog.Attr {
	return slog.Uint64("lagged_by", n)
}

// Version records the build version under "version".
func Version(v string) slog.Attr {
	return slog.String("version", v)
}
