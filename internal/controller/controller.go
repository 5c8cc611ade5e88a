// Package controller coordinates the set of live matches: it owns the
// registry, serializes all mutations per match, runs the timed behaviors
// (turn timeout, hand-start delay, empty-match cleanup, scheduled start),
// and publishes every state change to the event bus and the replay
// recorder.
package controller

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/holdemarena/internal/bus"
	"github.com/lox/holdemarena/internal/game"
	"github.com/lox/holdemarena/internal/replay"
)

// CleanupDelay is how long an empty match lingers before it is removed. A
// rejoin within the window cancels removal.
const CleanupDelay = 5 * time.Second

// TurnNotifier is invoked after a seat becomes the one to act, once every
// event leading up to the turn has been published. The transport uses it
// to send turnStart prompts.
type TurnNotifier func(gameID, playerID string, timeLimit time.Duration, possible []game.PossibleAction)

// Controller owns all matches. Registry access is guarded by its own lock;
// each match has a lock of its own that serializes engine mutations and
// timer callbacks.
type Controller struct {
	logger   *log.Logger
	clock    quartz.Clock
	bus      *bus.Bus
	recorder *replay.Recorder
	seed     func(gameID string) int64
	onTurn   TurnNotifier

	mu          sync.RWMutex
	matches     map[string]*match
	gamesEnded  int
	gamesOpened int
}

type match struct {
	mu sync.Mutex
	g  *game.Game

	turnTimer    *quartz.Timer
	turnEpoch    int
	turnKey      string
	handTimer    *quartz.Timer
	handPending  bool
	cleanupTimer *quartz.Timer
	cleanupEpoch int
	startTimer   *quartz.Timer
	destroyed    bool
}

// Option adjusts a Controller at construction.
type Option func(*Controller)

// WithSeedFunc fixes per-match shuffle seeds for reproducible tests.
func WithSeedFunc(fn func(gameID string) int64) Option {
	return func(c *Controller) { c.seed = fn }
}

// WithTurnNotifier registers the transport callback for turn prompts.
func WithTurnNotifier(fn TurnNotifier) Option {
	return func(c *Controller) { c.onTurn = fn }
}

// New creates a controller. All five timed behaviors run on clock, so
// tests drive them with a quartz mock.
func New(logger *log.Logger, clock quartz.Clock, b *bus.Bus, rec *replay.Recorder, opts ...Option) *Controller {
	c := &Controller{
		logger:   logger.WithPrefix("controller"),
		clock:    clock,
		bus:      b,
		recorder: rec,
		matches:  make(map[string]*match),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateGame registers a new match in WaitingForPlayers.
func (c *Controller) CreateGame(gameID string, cfg game.Config) error {
	if gameID == "" {
		return fmt.Errorf("%w: empty game id", game.ErrIllegalAction)
	}
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", game.ErrIllegalAction, err)
	}

	opts := []game.Option{game.WithNowFunc(func() time.Time { return c.clock.Now() })}
	if c.seed != nil {
		opts = append(opts, game.WithSeed(c.seed(gameID)))
	}
	m := &match{g: game.New(gameID, cfg, opts...)}

	c.mu.Lock()
	if _, exists := c.matches[gameID]; exists {
		c.mu.Unlock()
		return game.ErrDuplicateGameID
	}
	c.matches[gameID] = m
	c.gamesOpened++
	c.mu.Unlock()

	c.recorder.StartGame(gameID, cfg.SmallBlind, cfg.BigBlind, c.clock.Now())
	c.logger.Info("game created", "gameId", gameID,
		"smallBlind", cfg.SmallBlind, "bigBlind", cfg.BigBlind, "maxPlayers", cfg.MaxPlayers)

	if s := cfg.StartSettings; s != nil && s.Condition == game.StartScheduled {
		c.armScheduledStart(m, s.ScheduledStartTime)
	}
	return nil
}

// AddPlayer seats a player, cancelling any pending cleanup of the match
// and scheduling the first hand when the start condition is met.
func (c *Controller) AddPlayer(gameID, playerID, name string, chips int) error {
	m, err := c.match(gameID)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return game.ErrUnknownGame
	}

	c.cancelCleanupLocked(m)

	events, err := m.g.AddPlayer(playerID, name, chips)
	c.publishLocked(m, events)
	if err != nil {
		return err
	}

	if c.startConditionMet(m.g) && !m.g.InProgress() && !m.handPending {
		c.scheduleHandLocked(m, m.g.Config.HandStartDelay())
	}
	return nil
}

// RemovePlayer unseats a player, folding first when a hand is in flight.
// The last player leaving arms the cleanup timer; repeated empty/non-empty
// transitions re-arm it, so the latest empty time wins.
func (c *Controller) RemovePlayer(gameID, playerID string) error {
	m, err := c.match(gameID)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return game.ErrUnknownGame
	}

	events, err := m.g.RemovePlayer(playerID)
	c.publishLocked(m, events)
	if err != nil {
		return err
	}

	c.afterAdvanceLocked(m, events)

	if m.g.PlayerCount() == 0 {
		c.armCleanupLocked(m)
	}
	return nil
}

// StartGame is the manual start operation.
func (c *Controller) StartGame(gameID, requesterID string) error {
	m, err := c.match(gameID)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return game.ErrUnknownGame
	}

	g := m.g
	if s := g.Config.StartSettings; s != nil && s.CreatorID != "" && requesterID != s.CreatorID {
		return game.ErrPermissionDenied
	}
	if g.InProgress() || m.handPending {
		return game.ErrAlreadyRunning
	}
	if g.FundedCount() < 2 {
		return fmt.Errorf("%w: %d funded seats", game.ErrInsufficientPlayers, g.FundedCount())
	}
	return c.startHandLocked(m)
}

// ProcessAction validates and applies one player action. The acting seat's
// turn timer is disarmed first; fatal engine errors freeze the match.
func (c *Controller) ProcessAction(gameID string, action game.Action) error {
	m, err := c.match(gameID)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return game.ErrUnknownGame
	}

	if action.Timestamp.IsZero() {
		action.Timestamp = c.clock.Now()
	}

	events, err := m.g.Apply(action)
	c.publishLocked(m, events)
	if err != nil {
		if game.IsFatal(err) {
			c.freezeLocked(m, err)
		}
		return err
	}

	c.afterAdvanceLocked(m, events)
	return nil
}

// Snapshot returns the projected state of a match for a viewer.
func (c *Controller) Snapshot(gameID string, viewer game.Viewer) (*game.Snapshot, error) {
	m, err := c.match(gameID)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return nil, game.ErrUnknownGame
	}
	return game.Project(m.g.Snapshot(), viewer), nil
}

// GameInfo is the registry-level metadata for listings.
type GameInfo struct {
	GameID     string     `json:"gameId"`
	Players    int        `json:"players"`
	MaxPlayers int        `json:"maxPlayers"`
	Phase      game.Phase `json:"phase"`
	HandNumber int        `json:"handNumber"`
	SmallBlind int        `json:"smallBlind"`
	BigBlind   int        `json:"bigBlind"`
	Tournament bool       `json:"isTournament,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Info returns metadata for one match.
func (c *Controller) Info(gameID string) (GameInfo, error) {
	m, err := c.match(gameID)
	if err != nil {
		return GameInfo{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return infoLocked(m.g), nil
}

// ListGames returns metadata for every registered match.
func (c *Controller) ListGames() []GameInfo {
	c.mu.RLock()
	matches := make([]*match, 0, len(c.matches))
	for _, m := range c.matches {
		matches = append(matches, m)
	}
	c.mu.RUnlock()

	infos := make([]GameInfo, 0, len(matches))
	for _, m := range matches {
		m.mu.Lock()
		if !m.destroyed {
			infos = append(infos, infoLocked(m.g))
		}
		m.mu.Unlock()
	}
	return infos
}

// AvailableGames returns matches with a free seat.
func (c *Controller) AvailableGames() []GameInfo {
	var out []GameInfo
	for _, info := range c.ListGames() {
		if info.Players < info.MaxPlayers {
			out = append(out, info)
		}
	}
	return out
}

// HasGame reports whether a match id is registered.
func (c *Controller) HasGame(gameID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.matches[gameID]
	return ok
}

// ActiveGames returns the number of registered matches.
func (c *Controller) ActiveGames() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.matches)
}

// GamesPlayed returns how many matches have ended since startup.
func (c *Controller) GamesPlayed() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gamesEnded
}

// DeleteGame tears down one match immediately.
func (c *Controller) DeleteGame(gameID string) error {
	m, err := c.match(gameID)
	if err != nil {
		return err
	}
	m.mu.Lock()
	c.endLocked(m, "destroyed")
	m.mu.Unlock()
	return nil
}

// Destroy cancels every timer and removes every match.
func (c *Controller) Destroy() {
	c.mu.RLock()
	matches := make([]*match, 0, len(c.matches))
	for _, m := range c.matches {
		matches = append(matches, m)
	}
	c.mu.RUnlock()

	for _, m := range matches {
		m.mu.Lock()
		c.endLocked(m, "destroyed")
		m.mu.Unlock()
	}
}

func (c *Controller) match(gameID string) (*match, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.matches[gameID]
	if !ok {
		return nil, game.ErrUnknownGame
	}
	return m, nil
}

func infoLocked(g *game.Game) GameInfo {
	return GameInfo{
		GameID:     g.ID,
		Players:    g.PlayerCount(),
		MaxPlayers: g.Config.MaxPlayers,
		Phase:      g.Phase,
		HandNumber: g.HandNumber,
		SmallBlind: g.SmallBlind,
		BigBlind:   g.BigBlind,
		Tournament: g.Config.IsTournament,
		CreatedAt:  g.CreatedAt,
	}
}

// startConditionMet evaluates the auto-start trigger: legacy (no settings)
// starts at two seats, minPlayers at its threshold, manual and scheduled
// never auto-start on join.
func (c *Controller) startConditionMet(g *game.Game) bool {
	s := g.Config.StartSettings
	if s == nil {
		return g.FundedCount() >= 2
	}
	switch s.Condition {
	case game.StartMinPlayers:
		return g.FundedCount() >= s.MinPlayers
	default:
		return false
	}
}
