package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.hcl"))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Address)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "replays", cfg.Server.ReplayDir)
	assert.Equal(t, 30*time.Second, cfg.AutosaveInterval())
	assert.Empty(t, cfg.Games)
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
server {
  address          = "127.0.0.1"
  port             = 4100
  log_level        = "debug"
  replay_dir       = "/var/lib/holdemarena"
  export_phh       = true
  autosave_seconds = 10
}

game "lobby" {
  small_blind = 5
  big_blind   = 10
}
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:4100", cfg.ListenAddress())
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.True(t, cfg.Server.ExportPHH)
	assert.Equal(t, 10*time.Second, cfg.AutosaveInterval())

	require.Len(t, cfg.Games, 1)
	gc := cfg.Games[0].GameConfig()
	assert.Equal(t, 5, gc.SmallBlind)
	assert.Equal(t, 10, gc.BigBlind)
	assert.Equal(t, 10, gc.MaxPlayers, "unset fields take engine defaults")
}

func TestLoadConfigPortEnvOverride(t *testing.T) {
	path := writeConfig(t, `
server {
  port = 4100
}
`)
	t.Setenv("PORT", "5200")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 5200, cfg.Server.Port)
}

func TestLoadConfigInvalidPortEnv(t *testing.T) {
	t.Setenv("PORT", "nope")
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.hcl"))
	require.Error(t, err)
}

func TestLoadConfigRejectsMalformedHCL(t *testing.T) {
	path := writeConfig(t, `server { port = `)
	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "port too low",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "invalid port",
		},
		{
			name:    "port too high",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "invalid port",
		},
		{
			name: "duplicate game name",
			mutate: func(c *Config) {
				c.Games = []GameBlock{
					{Name: "lobby", SmallBlind: 5, BigBlind: 10},
					{Name: "lobby", SmallBlind: 5, BigBlind: 10},
				}
			},
			wantErr: "duplicate game",
		},
		{
			name: "invalid blinds",
			mutate: func(c *Config) {
				c.Games = []GameBlock{{Name: "lobby", SmallBlind: 10, BigBlind: 5}}
			},
			wantErr: "bigBlindAmount",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
