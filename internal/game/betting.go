package game

import (
	"encoding/json"
	"fmt"
)

// Phase is the match state machine position.
type Phase int

const (
	WaitingForPlayers Phase = iota
	PreFlop
	Flop
	Turn
	River
	Showdown
	HandComplete
)

var phaseNames = [...]string{
	"waiting_for_players", "preflop", "flop", "turn", "river", "showdown", "hand_complete",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// Betting reports whether the phase accepts player actions.
func (p Phase) Betting() bool {
	return p >= PreFlop && p <= River
}

func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Phase) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for i, name := range phaseNames {
		if s == name {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", s)
}

// BettingState is the per-round wagering context. CurrentBet is the amount
// each live seat must match; MinRaise the increment the next raise must add.
// LastRaiser is the seat index of the latest aggressor, -1 when the round
// has seen no bet.
type BettingState struct {
	CurrentBet int
	MinRaise   int
	LastRaiser int
}

// resetForRound prepares the state for a fresh street.
func (b *BettingState) resetForRound(bigBlind int) {
	b.CurrentBet = 0
	b.MinRaise = bigBlind
	b.LastRaiser = -1
}

// registerRaise records a wager that increased CurrentBet to total.
func (b *BettingState) registerRaise(seat, total int) {
	b.MinRaise = total - b.CurrentBet
	b.CurrentBet = total
	b.LastRaiser = seat
}
