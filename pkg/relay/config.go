package relay

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrymomot/linerelay/pkg/broadcast"
)

// DefaultListenerName is used for listeners configured without a name.
const DefaultListenerName = "unnamed"

// Config holds the relay settings. It is populated from environment variables
// and optionally overridden by a YAML file in cmd/linerelay.
type Config struct {
	MaxInFlightMsgs int                 `env:"RELAY_MAX_IN_FLIGHT_MSGS" envDefault:"1024"`                       // MaxInFlightMsgs is the broadcast channel capacity.
	LagPolicy       broadcast.LagPolicy `env:"RELAY_LAG_POLICY" envDefault:"latest"`                             // LagPolicy is where a lagging client resumes: "latest" or "oldest".
	Motd            string              `env:"RELAY_MOTD"`                                                       // Motd is written to every client on connect. Empty disables the greeting.
	Echo            bool                `env:"RELAY_ECHO" envDefault:"true"`                                     // Echo delivers a client's own lines back to it.
	Listeners       []ListenerConfig    `env:"RELAY_LISTENERS" envSeparator:"," envDefault:"main=127.0.0.1:7000"` // Listeners is a list of "name=host:port" or "host:port" entries.
}

// Validate reports every problem with the config at once.
func (c Config) Validate() error {
	var errs []error
	if c.MaxInFlightMsgs < 1 {
		errs = append(errs, fmt.Errorf("max in-flight messages must be positive, got %d", c.MaxInFlightMsgs))
	}
	if c.LagPolicy != broadcast.ResumeLatest && c.LagPolicy != broadcast.ResumeOldest {
		errs = append(errs, fmt.Errorf("%w: %s", broadcast.ErrInvalidLagPolicy, c.LagPolicy))
	}
	if len(c.Listeners) == 0 {
		errs = append(errs, ErrNoListeners)
	}
	for i, l := range c.Listeners {
		if strings.TrimSpace(l.Bind) == "" {
			errs = append(errs, fmt.Errorf("listener #%d (%s): %w: empty bind address", i, l.name(), ErrInvalidListener))
		}
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidConfig}, errs...)...)
	}
	return nil
}

// ListenerConfig describes one bound address.
type ListenerConfig struct {
	Name string `yaml:"name"`
	Bind string `yaml:"bind"`
}

// UnmarshalText parses "name=host:port" or a bare "host:port".
func (l *ListenerConfig) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	name, bind, ok := strings.Cut(s, "=")
	if !ok {
		name, bind = "", s
	}
	name, bind = strings.TrimSpace(name), strings.TrimSpace(bind)
	if bind == "" {
		return fmt.Errorf("%w: %q", ErrInvalidListener, s)
	}
	l.Name = name
	l.Bind = bind
	return nil
}

func (l ListenerConfig) String() string {
	return l.name() + "=" + l.Bind
}

func (l ListenerConfig) name() string {
	if l.Name == "" {
		return DefaultListenerName
	}
	return l.Name
}
