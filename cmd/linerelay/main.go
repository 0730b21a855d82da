package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/linerelay/pkg/cluster"
	"github.com/dmitrymomot/linerelay/pkg/logger"
	"github.com/dmitrymomot/linerelay/pkg/pg"
	"github.com/dmitrymomot/linerelay/pkg/redis"
	"github.com/dmitrymomot/linerelay/pkg/relay"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		slog.Error("linerelay failed", logger.Error(err))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("linerelay", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a YAML config file, overrides RELAY_CONFIG_FILE")
	var envFiles stringList
	fs.Var(&envFiles, "env", "extra .env file to load, may be repeated")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath, envFiles)
	if err != nil {
		return err
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	opts := []logger.Option{
		logger.WithEnvironment(cfg.AppEnv, cfg.AppName),
		logger.WithLevel(level),
		logger.WithOutput(stdout),
		logger.WithAttr(logger.Version(version)),
		logger.WithContextExtractors(relay.ConnectionIDExtractor),
	}
	if cfg.LogFormat != "" {
		opts = append(opts, logger.WithFormat(logger.Format(cfg.LogFormat)))
	}
	log := logger.New(opts...)
	logger.SetAsDefault(log)

	if err := cfg.Relay.Validate(); err != nil {
		return err
	}
	log.InfoContext(ctx, "starting linerelay",
		slog.Int("max_in_flight_msgs", cfg.Relay.MaxInFlightMsgs),
		slog.String("lag_policy", cfg.Relay.LagPolicy.String()),
		slog.Bool("echo", cfg.Relay.Echo),
		slog.Int("listeners", len(cfg.Relay.Listeners)),
	)

	var checks []func(context.Context) error

	if cfg.DB.Enabled() {
		pool, err := pg.Connect(ctx, cfg.DB)
		if err != nil {
			log.ErrorContext(ctx, "failed to connect to database", logger.Component("database"), logger.Error(err))
			return err
		}
		defer pool.Close()
		checks = append(checks, pg.Healthcheck(pool))
	}

	var transport cluster.Transport
	if cfg.Redis.Enabled() {
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			log.ErrorContext(ctx, "failed to connect to redis", logger.Component("redis"), logger.Error(err))
			return err
		}
		defer func() { _ = client.Close() }()
		checks = append(checks, redis.Healthcheck(client))
		transport = cluster.NewRedisTransport(client, cfg.ClusterChannel)
	}

	srv := relay.NewServer(cfg.Relay,
		relay.WithLogger(log.With(logger.Component("relay"))),
		relay.WithHealthchecks(checks...),
	)

	var bridge *cluster.Bridge
	if transport != nil {
		bridge = cluster.NewBridge(srv, transport, cluster.WithLogger(log))
	}
	return serve(ctx, log, srv, cfg.Relay.Listeners, bridge)
}

// serve runs the listener set and, when clustering is on, the bridge. The
// broadcast channel is closed once the listeners have stopped.
func serve(ctx context.Context, log *slog.Logger, srv *relay.Server, listeners []relay.ListenerConfig, bridge *cluster.Bridge) error {
	if err := srv.CheckHealth(ctx); err != nil {
		log.ErrorContext(ctx, "startup healthcheck failed", logger.Error(err))
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer func() { _ = srv.Close() }()
		return relay.ServeAll(ctx, srv, listeners)
	})
	if bridge != nil {
		g.Go(func() error { return bridge.Run(ctx) })
	}

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("linerelay stopped")
	return nil
}
