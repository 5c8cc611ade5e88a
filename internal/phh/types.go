// Package phh encodes completed hands in the Poker Hand History (PHH)
// interchange format, one TOML document per hand. Card codes ("As", "Td")
// are already PHH notation, so no translation layer is needed.
package phh

import "time"

// HandHistory is a single hand in PHH form. Field names follow the PHH
// spec; optional sections are omitted when empty.
type HandHistory struct {
	Variant           string         `toml:"variant"`
	Table             string         `toml:"table,omitempty"`
	SeatCount         int            `toml:"seat_count,omitempty"`
	Antes             []int          `toml:"antes"`
	BlindsOrStraddles []int          `toml:"blinds_or_straddles"`
	MinBet            int            `toml:"min_bet"`
	StartingStacks    []int          `toml:"starting_stacks"`
	FinishingStacks   []int          `toml:"finishing_stacks,omitempty"`
	Actions           []string       `toml:"actions"`
	Players           []string       `toml:"players,omitempty"`
	HandID            string         `toml:"hand"`
	Time              string         `toml:"time,omitempty"`
	TimeZone          string         `toml:"time_zone,omitempty"`
	Metadata          map[string]any `toml:"metadata,omitempty"`

	Timestamp time.Time `toml:"-"`
}

// VariantNT is the PHH variant code for no-limit Texas hold'em.
const VariantNT = "NT"
