package game

import (
	"encoding/json"
	"fmt"
	"time"
)

// ActionType is a betting action kind. The string form appears only at the
// wire and replay boundaries.
type ActionType int

const (
	ActionFold ActionType = iota
	ActionCheck
	ActionCall
	ActionBet
	ActionRaise
	ActionAllIn
)

var actionNames = [...]string{"fold", "check", "call", "bet", "raise", "allin"}

func (a ActionType) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return fmt.Sprintf("action(%d)", int(a))
	}
	return actionNames[a]
}

// ParseActionType converts the wire form back to an ActionType.
func ParseActionType(s string) (ActionType, error) {
	for i, name := range actionNames {
		if s == name {
			return ActionType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown action %q", ErrIllegalAction, s)
}

func (a ActionType) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *ActionType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseActionType(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Action is a submitted player decision. Amount is the total wager this
// round for bets and raises, and is ignored for fold/check/call/all-in where
// the engine computes the actual amount. Timestamp is assigned by the server
// on receipt and is monotonic per match.
type Action struct {
	Type      ActionType `json:"type"`
	Amount    int        `json:"amount,omitempty"`
	PlayerID  string     `json:"playerId"`
	Timestamp time.Time  `json:"timestamp"`
}

// PossibleAction describes one legal action for the seat to act, with the
// acceptable amount bounds where the action takes an amount.
type PossibleAction struct {
	Type      ActionType `json:"type"`
	MinAmount int        `json:"minAmount,omitempty"`
	MaxAmount int        `json:"maxAmount,omitempty"`
}
