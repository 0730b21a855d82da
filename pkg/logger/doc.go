// Package logger builds the relay's *slog.Logger.
//
// New assembles a text or JSON slog handler from functional options and wraps
// it with LogHandlerDecorator, which pulls extra attributes out of the
// context.Context passed to the *Context logging methods. The relay uses this
// to stamp every connection-scoped record with its connection id.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.AppEnv, "linerelay"),
//	    logger.WithLevel(level),
//	    logger.WithContextExtractors(relay.ConnectionIDExtractor),
//	)
//	logger.SetAsDefault(log)
//
//	log.WarnContext(ctx, "too many messages received", logger.LaggedBy(n))
//
// # Configuration
//
//   - WithEnvironment: development, staging or production preset.
//   - WithFormat / WithJSONFormatter: output format.
//   - WithLevel: minimum level; ParseLevel converts filter names.
//   - WithAttr: static attributes.
//   - WithContextExtractors: attributes from context.
//
// Attribute helpers (Error, Listener, RemoteAddr, LaggedBy, ...) keep key
// names consistent. Error returns an empty attribute for a nil error, so it
// can be passed unconditionally.
//
// NewNop returns a logger that discards everything; components use it when
// no logger is configured.
package logger
