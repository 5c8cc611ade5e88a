package server

import (
	"encoding/json"
	"time"

	"github.com/lox/holdemarena/internal/game"
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

// Message is the socket envelope. Data holds one of the payload structs
// below.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage wraps a payload in an envelope stamped with the current time.
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

// Client → server payloads.

type IdentifyData struct {
	BotName   string `json:"botName"`
	GameID    string `json:"gameId"`
	ChipStack int    `json:"chipStack"`
}

// ActionRequest is the wire form of a betting decision.
type ActionRequest struct {
	Type   string `json:"type"`
	Amount int    `json:"amount,omitempty"`
}

type ActionData struct {
	Action ActionRequest `json:"action"`
}

type ReconnectData struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
}

// Server → client payloads.

type IdentificationSuccessData struct {
	PlayerID string `json:"playerId"`
}

type GameStateData struct {
	GameState *game.Snapshot `json:"gameState"`
}

type TurnStartData struct {
	TimeLimit       int                   `json:"timeLimit"`
	PossibleActions []game.PossibleAction `json:"possibleActions"`
}

type ActionSuccessData struct {
	Action ActionRequest `json:"action"`
}

type GameEventData struct {
	Event game.Event `json:"event"`
}

type DisconnectData struct {
	Reason string `json:"reason"`
}

type ErrorData struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}
