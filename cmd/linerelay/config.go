package main

import (
	"fmt"
	"strings"

	"github.com/dmitrymomot/linerelay/pkg/broadcast"
	"github.com/dmitrymomot/linerelay/pkg/config"
	"github.com/dmitrymomot/linerelay/pkg/logger"
	"github.com/dmitrymomot/linerelay/pkg/pg"
	"github.com/dmitrymomot/linerelay/pkg/redis"
	"github.com/dmitrymomot/linerelay/pkg/relay"
)

type appConfig struct {
	AppName        string `env:"APP_NAME" envDefault:"linerelay"`
	AppEnv         string `env:"APP_ENV" envDefault:"development"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat      string `env:"LOG_FORMAT"`
	ConfigFile     string `env:"RELAY_CONFIG_FILE"`
	ClusterChannel string `env:"RELAY_CLUSTER_CHANNEL" envDefault:"linerelay"`

	Relay relay.Config
	DB    pg.Config
	Redis redis.Config
}

// fileConfig is the YAML config file. Every key present overrides the value
// taken from the environment.
type fileConfig struct {
	Motd   *string `yaml:"motd"`
	Echo   *bool   `yaml:"echo"`
	Limits struct {
		MaxInFlightMsgs *int                 `yaml:"maxInFlightMsgs"`
		LagPolicy       *broadcast.LagPolicy `yaml:"lagPolicy"`
	} `yaml:"limits"`
	Logging struct {
		Filter string `yaml:"filter"`
	} `yaml:"logging"`
	Listeners []relay.ListenerConfig `yaml:"listeners"`
}

func (f fileConfig) apply(cfg *appConfig) {
	if f.Motd != nil {
		cfg.Relay.Motd = *f.Motd
	}
	if f.Echo != nil {
		cfg.Relay.Echo = *f.Echo
	}
	if f.Limits.MaxInFlightMsgs != nil {
		cfg.Relay.MaxInFlightMsgs = *f.Limits.MaxInFlightMsgs
	}
	if f.Limits.LagPolicy != nil {
		cfg.Relay.LagPolicy = *f.Limits.LagPolicy
	}
	if f.Logging.Filter != "" {
		cfg.LogLevel = f.Logging.Filter
	}
	if len(f.Listeners) > 0 {
		cfg.Relay.Listeners = f.Listeners
	}
}

// loadConfig reads the environment and, when a config file is set either by
// flag or by RELAY_CONFIG_FILE, applies it on top.
func loadConfig(configPath string, envFiles []string) (appConfig, error) {
	var cfg appConfig
	if len(envFiles) > 0 {
		if err := config.LoadEnv(envFiles...); err != nil {
			return cfg, err
		}
	}
	if err := config.Load(&cfg); err != nil {
		return cfg, err
	}

	if configPath != "" {
		cfg.ConfigFile = configPath
	}
	if cfg.ConfigFile != "" {
		var f fileConfig
		if err := config.LoadFile(cfg.ConfigFile, &f); err != nil {
			return cfg, err
		}
		f.apply(&cfg)
	}

	if cfg.LogFormat != "" {
		switch logger.Format(strings.ToLower(cfg.LogFormat)) {
		case logger.FormatJSON, logger.FormatText:
			cfg.LogFormat = strings.ToLower(cfg.LogFormat)
		default:
			return cfg, fmt.Errorf("invalid LOG_FORMAT %q: must be %q or %q", cfg.LogFormat, logger.FormatJSON, logger.FormatText)
		}
	}
	return cfg, nil
}

// stringList collects a repeatable string flag.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}
