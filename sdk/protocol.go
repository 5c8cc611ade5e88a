// Package sdk is the client library for writing bots. It mirrors the
// server's wire protocol with standalone types so bots depend only on
// this package.
package sdk

import (
	"encoding/json"
	"time"
)

// MessageType identifies a socket message.
type MessageType string

// Client → server.
const (
	MessageTypeIdentify  MessageType = "identify"
	MessageTypeAction    MessageType = "action"
	MessageTypePing      MessageType = "ping"
	MessageTypeReconnect MessageType = "reconnect"
	MessageTypeLeave     MessageType = "leave"
)

// Server → client.
const (
	MessageTypeIdentificationSuccess MessageType = "identificationSuccess"
	MessageTypeGameState             MessageType = "gameState"
	MessageTypeTurnStart             MessageType = "turnStart"
	MessageTypeActionSuccess         MessageType = "actionSuccess"
	MessageTypeGameEvent             MessageType = "gameEvent"
	MessageTypeDisconnect            MessageType = "disconnect"
	MessageTypeError                 MessageType = "error"
	MessageTypePong                  MessageType = "pong"
)

func (t MessageType) String() string { return string(t) }

// Message is the socket envelope.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage wraps a payload in an envelope.
func NewMessage(messageType MessageType, data any) (*Message, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return &Message{
		Type:      messageType,
		Data:      raw,
		Timestamp: time.Now(),
	}, nil
}

// Action names accepted by the server.
const (
	ActionFold  = "fold"
	ActionCheck = "check"
	ActionCall  = "call"
	ActionBet   = "bet"
	ActionRaise = "raise"
	ActionAllIn = "allin"
)

// IdentifyData seats a bot at a match.
type IdentifyData struct {
	BotName   string `json:"botName"`
	GameID    string `json:"gameId"`
	ChipStack int    `json:"chipStack"`
}

// ActionRequest is a betting decision. Amount is the seat's total wager
// for the round, not the increment.
type ActionRequest struct {
	Type   string `json:"type"`
	Amount int    `json:"amount,omitempty"`
}

// ActionData wraps an ActionRequest for the wire.
type ActionData struct {
	Action ActionRequest `json:"action"`
}

// ReconnectData resumes an existing seat after a dropped socket.
type ReconnectData struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
}

// IdentificationSuccessData carries the server-assigned player id.
type IdentificationSuccessData struct {
	PlayerID string `json:"playerId"`
}

// GameStateData carries a full state projection.
type GameStateData struct {
	GameState *GameState `json:"gameState"`
}

// TurnStartData prompts the bot to act.
type TurnStartData struct {
	TimeLimit       int              `json:"timeLimit"`
	PossibleActions []PossibleAction `json:"possibleActions"`
}

// ActionSuccessData echoes an accepted action.
type ActionSuccessData struct {
	Action ActionRequest `json:"action"`
}

// GameEventData carries one match event.
type GameEventData struct {
	Event Event `json:"event"`
}

// DisconnectData announces the server is dropping this connection.
type DisconnectData struct {
	Reason string `json:"reason"`
}

// ErrorData is a rejected request. Code is a stable identifier; Message
// is human-readable.
type ErrorData struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// PossibleAction is one legal action with its amount bounds.
type PossibleAction struct {
	Type      string `json:"type"`
	MinAmount int    `json:"minAmount,omitempty"`
	MaxAmount int    `json:"maxAmount,omitempty"`
}

// Event is one match event. Payload layout depends on Type; bots decode
// the types they care about.
type Event struct {
	Type       string          `json:"type"`
	Timestamp  time.Time       `json:"timestamp"`
	HandNumber int             `json:"handNumber,omitempty"`
	Phase      string          `json:"phase,omitempty"`
	ActorID    string          `json:"actorId,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// PlayerState is one seat as the server projects it. HoleCards holds card
// codes like "As" and is only populated for the bot's own seat, or for
// contested showdown hands.
type PlayerState struct {
	PlayerID  string   `json:"playerId"`
	Name      string   `json:"name"`
	Seat      int      `json:"seat"`
	Chips     int      `json:"chips"`
	RoundBet  int      `json:"roundBet"`
	HandBet   int      `json:"handBet"`
	Folded    bool     `json:"folded"`
	AllIn     bool     `json:"allIn"`
	Active    bool     `json:"active"`
	HoleCards []string `json:"holeCards,omitempty"`
}

// Pot is one pot with the seats eligible to win it.
type Pot struct {
	Amount   int      `json:"amount"`
	Eligible []string `json:"eligible"`
	Main     bool     `json:"main,omitempty"`
}

// GameState is the projected match state.
type GameState struct {
	GameID          string           `json:"gameId"`
	Phase           string           `json:"phase"`
	HandNumber      int              `json:"handNumber"`
	MaxPlayers      int              `json:"maxPlayers"`
	SmallBlind      int              `json:"smallBlind"`
	BigBlind        int              `json:"bigBlind"`
	Dealer          int              `json:"dealer"`
	SmallBlindSeat  int              `json:"smallBlindSeat"`
	BigBlindSeat    int              `json:"bigBlindSeat"`
	CurrentSeat     int              `json:"currentSeat"`
	CurrentPlayerID string           `json:"currentPlayerId,omitempty"`
	CurrentBet      int              `json:"currentBet"`
	MinRaise        int              `json:"minRaise"`
	Community       []string         `json:"communityCards"`
	Pots            []Pot            `json:"pots"`
	Players         []PlayerState    `json:"players"`
	PossibleActions []PossibleAction `json:"possibleActions,omitempty"`
}

// Seat returns the state of one player, or nil if not seated.
func (s *GameState) Seat(playerID string) *PlayerState {
	for i := range s.Players {
		if s.Players[i].PlayerID == playerID {
			return &s.Players[i]
		}
	}
	return nil
}

// PotTotal sums all pots.
func (s *GameState) PotTotal() int {
	total := 0
	for _, p := range s.Pots {
		total += p.Amount
	}
	return total
}
