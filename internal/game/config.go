package game

import (
	"fmt"
	"time"
)

// Start condition names accepted in StartSettings.Condition.
const (
	StartManual     = "manual"
	StartMinPlayers = "minPlayers"
	StartScheduled  = "scheduled"
)

// Defaults applied by Normalize for zero-valued config fields.
const (
	DefaultMaxPlayers           = 10
	DefaultTurnTimeLimitSeconds = 30
	DefaultHandStartDelayMs     = 1000
	DefaultStartingChips        = 1500
)

// Config describes one match. It arrives as the JSON body of a create
// request and is immutable once the match exists; the current blind level
// lives on the Game so tournaments can escalate it.
type Config struct {
	MaxPlayers           int                 `json:"maxPlayers"`
	SmallBlind           int                 `json:"smallBlindAmount"`
	BigBlind             int                 `json:"bigBlindAmount"`
	TurnTimeLimitSeconds int                 `json:"turnTimeLimitSeconds"`
	HandStartDelayMs     int                 `json:"handStartDelayMs"`
	StartSettings        *StartSettings      `json:"startSettings,omitempty"`
	IsTournament         bool                `json:"isTournament,omitempty"`
	Tournament           *TournamentSettings `json:"tournamentSettings,omitempty"`
}

// StartSettings controls when the first hand is dealt. Without settings the
// match auto-starts as soon as two seats are filled.
type StartSettings struct {
	Condition          string    `json:"condition"`
	MinPlayers         int       `json:"minPlayers,omitempty"`
	ScheduledStartTime time.Time `json:"scheduledStartTime,omitzero"`
	CreatorID          string    `json:"creatorId,omitempty"`
}

// TournamentSettings fixes the buy-in stack and optionally escalates blinds
// geometrically every N hands.
type TournamentSettings struct {
	StartingChips            int     `json:"startingChips"`
	BlindIncreaseEveryNHands int     `json:"blindIncreaseEveryNHands,omitempty"`
	BlindIncreaseFactor      float64 `json:"blindIncreaseFactor,omitempty"`
}

// Normalize fills defaults for zero-valued fields. It does not touch fields
// that Validate would reject.
func (c Config) Normalize() Config {
	if c.MaxPlayers == 0 {
		c.MaxPlayers = DefaultMaxPlayers
	}
	if c.TurnTimeLimitSeconds == 0 {
		c.TurnTimeLimitSeconds = DefaultTurnTimeLimitSeconds
	}
	if c.HandStartDelayMs == 0 {
		c.HandStartDelayMs = DefaultHandStartDelayMs
	}
	if c.IsTournament {
		if c.Tournament == nil {
			c.Tournament = &TournamentSettings{}
		}
		if c.Tournament.StartingChips == 0 {
			c.Tournament.StartingChips = DefaultStartingChips
		}
	}
	return c
}

// Validate checks static config constraints. Call after Normalize.
func (c Config) Validate() error {
	if c.MaxPlayers < 2 || c.MaxPlayers > 10 {
		return fmt.Errorf("maxPlayers must be between 2 and 10, got %d", c.MaxPlayers)
	}
	if c.SmallBlind < 1 {
		return fmt.Errorf("smallBlindAmount must be positive, got %d", c.SmallBlind)
	}
	if c.BigBlind < c.SmallBlind {
		return fmt.Errorf("bigBlindAmount %d is below smallBlindAmount %d", c.BigBlind, c.SmallBlind)
	}
	if c.TurnTimeLimitSeconds < 1 {
		return fmt.Errorf("turnTimeLimitSeconds must be positive, got %d", c.TurnTimeLimitSeconds)
	}
	if c.HandStartDelayMs < 0 {
		return fmt.Errorf("handStartDelayMs must not be negative, got %d", c.HandStartDelayMs)
	}
	if s := c.StartSettings; s != nil {
		switch s.Condition {
		case StartManual:
		case StartMinPlayers:
			if s.MinPlayers < 2 {
				return fmt.Errorf("startSettings.minPlayers must be at least 2, got %d", s.MinPlayers)
			}
			if s.MinPlayers > c.MaxPlayers {
				return fmt.Errorf("startSettings.minPlayers %d exceeds maxPlayers %d", s.MinPlayers, c.MaxPlayers)
			}
		case StartScheduled:
			if s.ScheduledStartTime.IsZero() {
				return fmt.Errorf("startSettings.scheduledStartTime is required for scheduled start")
			}
		default:
			return fmt.Errorf("unknown startSettings.condition %q", s.Condition)
		}
	}
	if c.IsTournament {
		t := c.Tournament
		if t == nil || t.StartingChips < 1 {
			return fmt.Errorf("tournamentSettings.startingChips must be positive")
		}
		if t.BlindIncreaseEveryNHands < 0 {
			return fmt.Errorf("tournamentSettings.blindIncreaseEveryNHands must not be negative")
		}
		if t.BlindIncreaseEveryNHands > 0 && t.BlindIncreaseFactor < 1 {
			return fmt.Errorf("tournamentSettings.blindIncreaseFactor must be at least 1, got %v", t.BlindIncreaseFactor)
		}
	}
	return nil
}

// TurnTimeout is the per-decision time limit.
func (c Config) TurnTimeout() time.Duration {
	return time.Duration(c.TurnTimeLimitSeconds) * time.Second
}

// HandStartDelay is the pause between hand completion and the next deal.
func (c Config) HandStartDelay() time.Duration {
	return time.Duration(c.HandStartDelayMs) * time.Millisecond
}
