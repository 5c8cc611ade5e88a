package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
)

// Bot runs an Agent against a server: it handles the socket lifecycle,
// keeps a view of the match state and answers turn prompts with the
// agent's decisions.
type Bot struct {
	client  *WSClient
	agent   Agent
	logger  *log.Logger
	name    string
	onEvent func(Event)

	mu       sync.RWMutex
	playerID string
	gameID   string
	state    *GameState

	seated chan error
}

// BotOption adjusts a Bot at construction.
type BotOption func(*Bot)

// WithEventHandler registers a callback for every match event the server
// broadcasts. It runs on the socket reader, so keep it light.
func WithEventHandler(fn func(Event)) BotOption {
	return func(b *Bot) { b.onEvent = fn }
}

// NewBot creates a bot named name that plays with agent's strategy.
func NewBot(serverURL, name string, agent Agent, logger *log.Logger, opts ...BotOption) *Bot {
	b := &Bot{
		client: NewWSClient(serverURL, logger),
		agent:  agent,
		logger: logger.WithPrefix("bot"),
		name:   name,
		seated: make(chan error, 1),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// PlayerID returns the server-assigned id, empty until seated.
func (b *Bot) PlayerID() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.playerID
}

// State returns the bot's current view of the match.
func (b *Bot) State() *GameState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

// Join connects, takes a seat and waits until the server confirms it.
func (b *Bot) Join(ctx context.Context, gameID string, chipStack int) error {
	b.mu.Lock()
	b.gameID = gameID
	b.mu.Unlock()

	b.registerHandlers()
	if err := b.client.Connect(); err != nil {
		return err
	}
	if err := b.client.Identify(b.name, gameID, chipStack); err != nil {
		return err
	}

	select {
	case err := <-b.seated:
		return err
	case <-b.client.Done():
		return fmt.Errorf("connection closed before identification")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Rejoin resumes a previous seat after a dropped connection.
func (b *Bot) Rejoin(ctx context.Context, gameID, playerID string) error {
	b.mu.Lock()
	b.gameID = gameID
	b.playerID = playerID
	b.mu.Unlock()

	b.registerHandlers()
	if err := b.client.Connect(); err != nil {
		return err
	}
	if err := b.client.Reconnect(gameID, playerID); err != nil {
		return err
	}

	select {
	case err := <-b.seated:
		return err
	case <-b.client.Done():
		return fmt.Errorf("connection closed before identification")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run blocks until the server drops the connection or the context ends.
func (b *Bot) Run(ctx context.Context) error {
	select {
	case <-b.client.Done():
		return nil
	case <-ctx.Done():
		_ = b.client.Disconnect()
		return ctx.Err()
	}
}

// Leave gives up the seat and disconnects.
func (b *Bot) Leave() error {
	if err := b.client.Leave(); err != nil {
		return err
	}
	return b.client.Disconnect()
}

func (b *Bot) registerHandlers() {
	b.client.AddEventHandler(MessageTypeIdentificationSuccess, b.handleIdentified)
	b.client.AddEventHandler(MessageTypeGameState, b.handleGameState)
	b.client.AddEventHandler(MessageTypeTurnStart, b.handleTurnStart)
	b.client.AddEventHandler(MessageTypeGameEvent, b.handleGameEvent)
	b.client.AddEventHandler(MessageTypeError, b.handleError)
	b.client.AddEventHandler(MessageTypeDisconnect, b.handleDisconnect)
}

func (b *Bot) handleIdentified(msg *Message) {
	var data IdentificationSuccessData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		b.logger.Error("bad identificationSuccess payload", "error", err)
		return
	}

	b.mu.Lock()
	b.playerID = data.PlayerID
	b.mu.Unlock()

	b.logger.Info("seated", "player", data.PlayerID)
	select {
	case b.seated <- nil:
	default:
	}
}

func (b *Bot) handleGameState(msg *Message) {
	var data GameStateData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		b.logger.Error("bad gameState payload", "error", err)
		return
	}

	b.mu.Lock()
	b.state = data.GameState
	b.mu.Unlock()
}

// handleTurnStart runs the agent off the reader goroutine so a slow
// decision never blocks incoming messages.
func (b *Bot) handleTurnStart(msg *Message) {
	var data TurnStartData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		b.logger.Error("bad turnStart payload", "error", err)
		return
	}

	b.mu.RLock()
	view := TurnView{
		PlayerID:        b.playerID,
		State:           b.state,
		TimeLimit:       data.TimeLimit,
		PossibleActions: data.PossibleActions,
	}
	b.mu.RUnlock()

	go func() {
		decision := b.agent.Act(view)
		b.logger.Debug("acting", "action", decision.Action, "amount", decision.Amount)
		if err := b.client.SendAction(decision.Action, decision.Amount); err != nil {
			b.logger.Error("failed to send action", "error", err)
		}
	}()
}

func (b *Bot) handleGameEvent(msg *Message) {
	var data GameEventData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		b.logger.Error("bad gameEvent payload", "error", err)
		return
	}

	b.applyEvent(data.Event)
	if b.onEvent != nil {
		b.onEvent(data.Event)
	}
}

// applyEvent keeps the cached state roughly current between full
// projections: street, community cards and chip counts.
func (b *Bot) applyEvent(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == nil {
		return
	}

	switch ev.Type {
	case "phase_changed":
		var p struct {
			To        string   `json:"to"`
			Community []string `json:"communityCards"`
		}
		if json.Unmarshal(ev.Payload, &p) == nil {
			b.state.Phase = p.To
			if p.Community != nil {
				b.state.Community = p.Community
			}
		}

	case "action_taken":
		var p struct {
			PlayerID string `json:"playerId"`
			Chips    int    `json:"chips"`
			Amount   int    `json:"amount"`
		}
		if json.Unmarshal(ev.Payload, &p) == nil {
			if seat := b.state.Seat(p.PlayerID); seat != nil {
				seat.Chips = p.Chips
				seat.RoundBet = p.Amount
			}
		}

	case "hand_started":
		b.state.HandNumber = ev.HandNumber
		b.state.Community = nil
		for i := range b.state.Players {
			b.state.Players[i].Folded = false
			b.state.Players[i].RoundBet = 0
			b.state.Players[i].HandBet = 0
			b.state.Players[i].HoleCards = nil
		}
	}
}

func (b *Bot) handleError(msg *Message) {
	var data ErrorData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		return
	}
	b.logger.Error("server error", "code", data.Code, "message", data.Message)

	select {
	case b.seated <- fmt.Errorf("%s: %s", data.Code, data.Message):
	default:
	}
}

func (b *Bot) handleDisconnect(msg *Message) {
	var data DisconnectData
	_ = json.Unmarshal(msg.Data, &data)
	b.logger.Info("server dropped connection", "reason", data.Reason)
	_ = b.client.Disconnect()
}
