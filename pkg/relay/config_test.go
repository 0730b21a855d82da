package relay_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/linerelay/pkg/broadcast"
	"github.com/dmitrymomot/linerelay/pkg/config"
	"github.com/dmitrymomot/linerelay/pkg/relay"
)

func TestListenerConfig_UnmarshalText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    relay.ListenerConfig
		wantErr bool
	}{
		{in: "main=127.0.0.1:7000", want: relay.ListenerConfig{Name: "main", Bind: "127.0.0.1:7000"}},
		{in: " 0.0.0.0:7001 ", want: relay.ListenerConfig{Bind: "0.0.0.0:7001"}},
		{in: "ipv6 = [::1]:7002", want: relay.ListenerConfig{Name: "ipv6", Bind: "[::1]:7002"}},
		{in: "", wantErr: true},
		{in: "name=", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			var got relay.ListenerConfig
			err := got.UnmarshalText([]byte(tt.in))
			if tt.wantErr {
				assert.ErrorIs(t, err, relay.ErrInvalidListener)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListenerConfig_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "main=:7000", relay.ListenerConfig{Name: "main", Bind: ":7000"}.String())
	assert.Equal(t, "unnamed=:7000", relay.ListenerConfig{Bind: ":7000"}.String())
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	valid := relay.Config{MaxInFlightMsgs: 1, Listeners: []relay.ListenerConfig{{Bind: ":7000"}}}
	assert.NoError(t, valid.Validate())

	err := relay.Config{}.Validate()
	assert.ErrorIs(t, err, relay.ErrInvalidConfig)
	assert.ErrorIs(t, err, relay.ErrNoListeners)

	err = relay.Config{MaxInFlightMsgs: 4, Listeners: []relay.ListenerConfig{{Name: "x"}}}.Validate()
	assert.ErrorIs(t, err, relay.ErrInvalidListener)

	bad := valid
	bad.LagPolicy = broadcast.LagPolicy(7)
	assert.ErrorIs(t, bad.Validate(), broadcast.ErrInvalidLagPolicy)
}

func TestConfig_FromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var cfg relay.Config
		require.NoError(t, config.Load(&cfg))

		assert.Equal(t, 1024, cfg.MaxInFlightMsgs)
		assert.Equal(t, broadcast.ResumeLatest, cfg.LagPolicy)
		assert.True(t, cfg.Echo)
		assert.Empty(t, cfg.Motd)
		assert.Equal(t, []relay.ListenerConfig{{Name: "main", Bind: "127.0.0.1:7000"}}, cfg.Listeners)
	})

	t.Run("invalid lag policy", func(t *testing.T) {
		t.Setenv("RELAY_LAG_POLICY", "newest")
		var cfg relay.Config
		err := config.Load(&cfg)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
		assert.ErrorContains(t, err, "invalid lag policy")
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("RELAY_LISTENERS", "public=0.0.0.0:7000,127.0.0.1:7001")
		t.Setenv("RELAY_MAX_IN_FLIGHT_MSGS", "16")
		t.Setenv("RELAY_MOTD", "hi")
		t.Setenv("RELAY_ECHO", "false")
		t.Setenv("RELAY_LAG_POLICY", "oldest")

		var cfg relay.Config
		require.NoError(t, config.Load(&cfg))

		assert.Equal(t, 16, cfg.MaxInFlightMsgs)
		assert.False(t, cfg.Echo)
		assert.Equal(t, broadcast.ResumeOldest, cfg.LagPolicy)
		assert.Equal(t, "hi", cfg.Motd)
		assert.Equal(t, []relay.ListenerConfig{
			{Name: "public", Bind: "0.0.0.0:7000"},
			{Bind: "127.0.0.1:7001"},
		}, cfg.Listeners)
	})
}
