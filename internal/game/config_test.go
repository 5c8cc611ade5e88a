package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigNormalizeDefaults(t *testing.T) {
	cfg := Config{SmallBlind: 5, BigBlind: 10}.Normalize()

	assert.Equal(t, DefaultMaxPlayers, cfg.MaxPlayers)
	assert.Equal(t, DefaultTurnTimeLimitSeconds, cfg.TurnTimeLimitSeconds)
	assert.Equal(t, DefaultHandStartDelayMs, cfg.HandStartDelayMs)
	require.NoError(t, cfg.Validate())
}

func TestConfigNormalizeTournamentBuyIn(t *testing.T) {
	cfg := Config{SmallBlind: 5, BigBlind: 10, IsTournament: true}.Normalize()

	require.NotNil(t, cfg.Tournament)
	assert.Equal(t, DefaultStartingChips, cfg.Tournament.StartingChips)
}

func TestConfigValidate(t *testing.T) {
	base := func() Config {
		return Config{SmallBlind: 10, BigBlind: 20}.Normalize()
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"too many seats", func(c *Config) { c.MaxPlayers = 11 }, "maxPlayers"},
		{"one seat", func(c *Config) { c.MaxPlayers = 1 }, "maxPlayers"},
		{"zero small blind", func(c *Config) { c.SmallBlind = 0 }, "smallBlindAmount"},
		{"big blind below small", func(c *Config) { c.BigBlind = 5 }, "bigBlindAmount"},
		{"negative hand delay", func(c *Config) { c.HandStartDelayMs = -1 }, "handStartDelayMs"},
		{"unknown start condition", func(c *Config) {
			c.StartSettings = &StartSettings{Condition: "whenever"}
		}, "condition"},
		{"minPlayers too low", func(c *Config) {
			c.StartSettings = &StartSettings{Condition: StartMinPlayers, MinPlayers: 1}
		}, "minPlayers"},
		{"minPlayers above capacity", func(c *Config) {
			c.StartSettings = &StartSettings{Condition: StartMinPlayers, MinPlayers: 11}
		}, "minPlayers"},
		{"scheduled without time", func(c *Config) {
			c.StartSettings = &StartSettings{Condition: StartScheduled}
		}, "scheduledStartTime"},
		{"manual start ok", func(c *Config) {
			c.StartSettings = &StartSettings{Condition: StartManual, CreatorID: "c1"}
		}, ""},
		{"scheduled start ok", func(c *Config) {
			c.StartSettings = &StartSettings{Condition: StartScheduled, ScheduledStartTime: time.Now().Add(time.Hour)}
		}, ""},
		{"tournament escalation without factor", func(c *Config) {
			c.IsTournament = true
			c.Tournament = &TournamentSettings{StartingChips: 1000, BlindIncreaseEveryNHands: 5}
		}, "blindIncreaseFactor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestConfigDurations(t *testing.T) {
	cfg := Config{SmallBlind: 10, BigBlind: 20, TurnTimeLimitSeconds: 15, HandStartDelayMs: 250}.Normalize()

	assert.Equal(t, 15*time.Second, cfg.TurnTimeout())
	assert.Equal(t, 250*time.Millisecond, cfg.HandStartDelay())
}
