package game

import (
	"time"

	"github.com/lox/holdemarena/internal/deck"
)

// EventType identifies a domain event on the bus and in replays.
type EventType string

const (
	EventGameStarted      EventType = "game_started"
	EventHandStarted      EventType = "hand_started"
	EventCardsDealt       EventType = "cards_dealt"
	EventPhaseChanged     EventType = "phase_changed"
	EventActionTaken      EventType = "action_taken"
	EventBetCollected     EventType = "bet_collected"
	EventShowdown         EventType = "showdown"
	EventHandComplete     EventType = "hand_complete"
	EventPlayerJoined     EventType = "player_joined"
	EventPlayerLeft       EventType = "player_left"
	EventPlayerEliminated EventType = "player_eliminated"
	EventGameEnded        EventType = "game_ended"
	EventTurnTimeout      EventType = "turn_timeout"
)

func (t EventType) String() string { return string(t) }

// Event is the envelope every state change travels in. Payload holds one of
// the typed payload structs below; subscribers type-switch on it, the
// replay recorder marshals it.
type Event struct {
	Type       EventType `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	HandNumber int       `json:"handNumber,omitempty"`
	Phase      Phase     `json:"phase,omitempty"`
	ActorID    string    `json:"actorId,omitempty"`
	Payload    any       `json:"payload,omitempty"`
}

// SeatSummary is a player's public standing at a point in time.
type SeatSummary struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Seat     int    `json:"seat"`
	Chips    int    `json:"chips"`
}

// GameStartedPayload announces that the match left WaitingForPlayers.
type GameStartedPayload struct {
	GameID     string        `json:"gameId"`
	Players    []SeatSummary `json:"players"`
	SmallBlind int           `json:"smallBlind"`
	BigBlind   int           `json:"bigBlind"`
}

// HandStartedPayload carries the seating and blind context for a new hand.
// Chip counts are the stacks before blinds were posted.
type HandStartedPayload struct {
	HandNumber     int           `json:"handNumber"`
	Dealer         int           `json:"dealer"`
	SmallBlindSeat int           `json:"smallBlindSeat"`
	BigBlindSeat   int           `json:"bigBlindSeat"`
	SmallBlind     int           `json:"smallBlind"`
	BigBlind       int           `json:"bigBlind"`
	Players        []SeatSummary `json:"players"`
}

// CardsDealtPayload describes a deal. Hole deals never carry card values:
// events are broadcast to every seat, so hidden information stays out of
// them. Community deals list the new cards.
type CardsDealtPayload struct {
	Round   string      `json:"round"`
	Cards   []deck.Card `json:"cards,omitempty"`
	PerSeat int         `json:"perSeat,omitempty"`
}

// PhaseChangedPayload marks a street transition.
type PhaseChangedPayload struct {
	From      Phase       `json:"from"`
	To        Phase       `json:"to"`
	Community []deck.Card `json:"communityCards,omitempty"`
}

// ActionTakenPayload records one validated action. Amount is the seat's
// total wager for the round after the action; Paid is what the action
// itself moved.
type ActionTakenPayload struct {
	PlayerID string     `json:"playerId"`
	Action   ActionType `json:"action"`
	Amount   int        `json:"amount"`
	Paid     int        `json:"paid,omitempty"`
	Pot      int        `json:"pot"`
	Chips    int        `json:"chips"`
}

// PotSummary is the public view of one pot.
type PotSummary struct {
	Amount   int      `json:"amount"`
	Eligible []string `json:"eligible"`
	Main     bool     `json:"main"`
}

// BetCollectedPayload reports wagers moving into the pot stack at the end
// of a betting round.
type BetCollectedPayload struct {
	Pots  []PotSummary `json:"pots"`
	Total int          `json:"total"`
}

// ShowdownHand is one revealed hand at showdown.
type ShowdownHand struct {
	PlayerID  string      `json:"playerId"`
	HoleCards []deck.Card `json:"holeCards"`
	Hand      string      `json:"hand"`
}

// PotWinner is one seat's share of a pot.
type PotWinner struct {
	PlayerID string `json:"playerId"`
	Amount   int    `json:"amount"`
}

// PotResult records how one pot was distributed.
type PotResult struct {
	Amount  int         `json:"amount"`
	Main    bool        `json:"main"`
	Winners []PotWinner `json:"winners"`
}

// ShowdownPayload reveals the contesting hole cards and the distribution of
// every pot.
type ShowdownPayload struct {
	Community []deck.Card    `json:"communityCards"`
	Hands     []ShowdownHand `json:"hands"`
	Pots      []PotResult    `json:"pots"`
}

// WinnerSummary aggregates a player's winnings across all pots of a hand.
type WinnerSummary struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Amount   int    `json:"amount"`
	Hand     string `json:"hand,omitempty"`
}

// SeatDelta is a seat's net chip movement across one hand.
type SeatDelta struct {
	PlayerID string `json:"playerId"`
	Net      int    `json:"net"`
	Chips    int    `json:"chips"`
}

// HandCompletePayload closes a hand with the winner summary and per-seat
// net deltas.
type HandCompletePayload struct {
	HandNumber int             `json:"handNumber"`
	Winners    []WinnerSummary `json:"winners"`
	Deltas     []SeatDelta     `json:"deltas"`
}

// PlayerJoinedPayload announces a new seat.
type PlayerJoinedPayload struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Chips    int    `json:"chips"`
	Seat     int    `json:"seat"`
}

// PlayerLeftPayload announces a departed seat, with the stack it left with.
type PlayerLeftPayload struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Chips    int    `json:"chips"`
}

// PlayerEliminatedPayload announces a busted seat removed before the deal.
type PlayerEliminatedPayload struct {
	PlayerID   string `json:"playerId"`
	Name       string `json:"name"`
	HandNumber int    `json:"handNumber"`
}

// GameEndedPayload closes the match. Reason is "destroyed", "abandoned",
// "tournament_complete" or "invariant".
type GameEndedPayload struct {
	Reason string `json:"reason"`
}

// TurnTimeoutPayload records an expired decision clock and the action
// synthesized in the player's stead.
type TurnTimeoutPayload struct {
	PlayerID    string     `json:"playerId"`
	Synthesized ActionType `json:"synthesized"`
}
