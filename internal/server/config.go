package server

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/holdemarena/internal/game"
)

// DefaultPort is used when neither the config file nor PORT says otherwise.
const DefaultPort = 3000

// Config is the full server configuration.
type Config struct {
	Server Settings    `hcl:"server,block"`
	Games  []GameBlock `hcl:"game,block"`
}

// Settings is the server block.
type Settings struct {
	Address          string `hcl:"address,optional"`
	Port             int    `hcl:"port,optional"`
	LogLevel         string `hcl:"log_level,optional"`
	ReplayDir        string `hcl:"replay_dir,optional"`
	ExportPHH        bool   `hcl:"export_phh,optional"`
	AutosaveSeconds  int    `hcl:"autosave_seconds,optional"`
	Monitor          bool   `hcl:"monitor,optional"`
}

// GameBlock declares a match created at startup.
type GameBlock struct {
	Name                 string `hcl:"name,label"`
	MaxPlayers           int    `hcl:"max_players,optional"`
	SmallBlind           int    `hcl:"small_blind"`
	BigBlind             int    `hcl:"big_blind"`
	TurnTimeLimitSeconds int    `hcl:"turn_time_limit_seconds,optional"`
	HandStartDelayMs     int    `hcl:"hand_start_delay_ms,optional"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Server: Settings{
			Address:         "0.0.0.0",
			Port:            DefaultPort,
			LogLevel:        "info",
			ReplayDir:       "replays",
			AutosaveSeconds: 30,
		},
	}
}

// LoadConfig reads an HCL config file, falling back to defaults when the
// file does not exist. The PORT environment variable overrides the
// configured port either way.
func LoadConfig(filename string) (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(filename); err == nil {
		parser := hclparse.NewParser()
		file, diags := parser.ParseHCLFile(filename)
		if diags.HasErrors() {
			return nil, fmt.Errorf("parse %s: %s", filename, diags.Error())
		}
		var loaded Config
		if diags := gohcl.DecodeBody(file.Body, nil, &loaded); diags.HasErrors() {
			return nil, fmt.Errorf("decode %s: %s", filename, diags.Error())
		}
		config = &loaded
		applyDefaults(config)
	}

	if port := os.Getenv("PORT"); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		config.Server.Port = n
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func applyDefaults(c *Config) {
	if c.Server.Address == "" {
		c.Server.Address = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Server.ReplayDir == "" {
		c.Server.ReplayDir = "replays"
	}
	if c.Server.AutosaveSeconds == 0 {
		c.Server.AutosaveSeconds = 30
	}
}

// Validate checks static configuration constraints, reusing the match
// validation for game blocks.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	seen := make(map[string]bool)
	for _, g := range c.Games {
		if g.Name == "" {
			return fmt.Errorf("game block requires a name label")
		}
		if seen[g.Name] {
			return fmt.Errorf("duplicate game %q", g.Name)
		}
		seen[g.Name] = true
		if err := g.GameConfig().Validate(); err != nil {
			return fmt.Errorf("game %q: %w", g.Name, err)
		}
	}
	return nil
}

// ListenAddress is the host:port the HTTP server binds.
func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// AutosaveInterval is how often dirty replays flush to the sink.
func (c *Config) AutosaveInterval() time.Duration {
	return time.Duration(c.Server.AutosaveSeconds) * time.Second
}

// GameConfig converts a game block to the match configuration.
func (g GameBlock) GameConfig() game.Config {
	return game.Config{
		MaxPlayers:           g.MaxPlayers,
		SmallBlind:           g.SmallBlind,
		BigBlind:             g.BigBlind,
		TurnTimeLimitSeconds: g.TurnTimeLimitSeconds,
		HandStartDelayMs:     g.HandStartDelayMs,
	}.Normalize()
}
