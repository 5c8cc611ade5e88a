package controller

import (
	"errors"
	"fmt"
	"time"

	"github.com/coder/quartz"

	"github.com/lox/holdemarena/internal/game"
)

// publishLocked appends events to the replay and fans them out on the bus.
// Caller holds m.mu.
func (c *Controller) publishLocked(m *match, events []game.Event) {
	for _, ev := range events {
		c.recorder.Append(m.g.ID, ev, func() *game.Snapshot { return m.g.Snapshot() })
		c.bus.Publish(m.g.ID, ev)
	}
}

// afterAdvanceLocked reacts to whatever the engine just did: schedules the
// next hand after hand_complete, ends finished tournaments, and keeps the
// turn timer in step with the seat to act.
func (c *Controller) afterAdvanceLocked(m *match, events []game.Event) {
	for _, ev := range events {
		if ev.Type != game.EventHandComplete {
			continue
		}
		g := m.g
		if g.FundedCount() < 2 {
			if g.Config.IsTournament {
				c.endLocked(m, "tournament_complete")
				return
			}
			// Cash game idles until another seat is funded.
			continue
		}
		c.scheduleHandLocked(m, g.Config.HandStartDelay())
	}
	c.syncTurnTimerLocked(m)
}

// startHandLocked deals the next hand. The first successful deal is
// preceded by a game_started event.
func (c *Controller) startHandLocked(m *match) error {
	g := m.g
	firstHand := !g.Started()

	events, err := g.StartHand()
	if err == nil && firstHand {
		c.publishLocked(m, []game.Event{{
			Type:      game.EventGameStarted,
			Timestamp: c.clock.Now(),
			Payload: game.GameStartedPayload{
				GameID:     g.ID,
				Players:    playersOf(g),
				SmallBlind: g.SmallBlind,
				BigBlind:   g.BigBlind,
			},
		}})
	}
	c.publishLocked(m, events)
	if err != nil {
		if game.IsFatal(err) {
			c.freezeLocked(m, err)
			return err
		}
		if errors.Is(err, game.ErrInsufficientPlayers) && g.Config.IsTournament && g.Started() {
			c.endLocked(m, "tournament_complete")
		}
		return err
	}

	c.syncTurnTimerLocked(m)
	return nil
}

// scheduleHandLocked arms the hand-start delay timer.
func (c *Controller) scheduleHandLocked(m *match, delay time.Duration) {
	if m.handPending {
		return
	}
	m.handPending = true
	m.handTimer = c.clock.AfterFunc(delay, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.handPending = false
		if m.destroyed || m.g.InProgress() {
			return
		}
		if err := c.startHandLocked(m); err != nil {
			c.logger.Debug("deferred hand start failed", "gameId", m.g.ID, "error", err)
		}
	})
}

// syncTurnTimerLocked arms the one-shot turn timer whenever the seat to
// act changes, and disarms it when no seat owes a decision. The epoch
// guards against a timer firing after logical cancellation.
func (c *Controller) syncTurnTimerLocked(m *match) {
	g := m.g
	key := ""
	if g.Phase.Betting() && g.Current >= 0 && g.Current < len(g.Seats) {
		key = fmt.Sprintf("%d/%s/%s", g.HandNumber, g.Phase, g.Seats[g.Current].ID)
	}
	if key == m.turnKey {
		return
	}
	m.turnKey = key

	m.turnEpoch++
	if m.turnTimer != nil {
		m.turnTimer.Stop()
		m.turnTimer = nil
	}
	if key == "" {
		return
	}

	playerID := g.Seats[g.Current].ID
	epoch := m.turnEpoch
	limit := g.Config.TurnTimeout()
	m.turnTimer = c.clock.AfterFunc(limit, func() {
		c.onTurnTimeout(m, epoch, playerID)
	})

	if c.onTurn != nil {
		c.onTurn(g.ID, playerID, limit, g.PossibleActions(g.Current))
	}
}

// onTurnTimeout synthesizes a fold (or a free check) for a seat whose
// decision clock expired. A fire that lost the race to a real action finds
// a stale epoch and is discarded silently.
func (c *Controller) onTurnTimeout(m *match, epoch int, playerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed || epoch != m.turnEpoch {
		return
	}
	g := m.g
	if !g.Phase.Betting() || g.Current < 0 || g.Current >= len(g.Seats) || g.Seats[g.Current].ID != playerID {
		return
	}

	synthesized := game.ActionFold
	p := g.Seats[g.Current]
	if g.Betting.CurrentBet == p.RoundBet {
		synthesized = game.ActionCheck
	}

	c.publishLocked(m, []game.Event{{
		Type:       game.EventTurnTimeout,
		Timestamp:  c.clock.Now(),
		HandNumber: g.HandNumber,
		Phase:      g.Phase,
		ActorID:    playerID,
		Payload:    game.TurnTimeoutPayload{PlayerID: playerID, Synthesized: synthesized},
	}})

	events, err := g.Apply(game.Action{
		Type:      synthesized,
		PlayerID:  playerID,
		Timestamp: c.clock.Now(),
	})
	c.publishLocked(m, events)
	if err != nil {
		if game.IsFatal(err) {
			c.freezeLocked(m, err)
			return
		}
		// Raced with an action that arrived as the timer fired.
		c.logger.Debug("timeout action discarded", "gameId", g.ID, "player", playerID, "error", err)
		return
	}
	c.logger.Info("turn timed out", "gameId", g.ID, "player", playerID, "synthesized", synthesized)

	c.afterAdvanceLocked(m, events)
}

// armCleanupLocked (re)arms the empty-match cleanup timer. Re-arming
// replaces any previous handle, so the last empty transition wins.
func (c *Controller) armCleanupLocked(m *match) {
	m.cleanupEpoch++
	if m.cleanupTimer != nil {
		m.cleanupTimer.Stop()
	}
	epoch := m.cleanupEpoch
	m.cleanupTimer = c.clock.AfterFunc(CleanupDelay, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.destroyed || epoch != m.cleanupEpoch || m.g.PlayerCount() > 0 {
			return
		}
		c.logger.Info("removing empty game", "gameId", m.g.ID)
		c.endLocked(m, "abandoned")
	})
}

// cancelCleanupLocked invalidates any pending cleanup. Idempotent.
func (c *Controller) cancelCleanupLocked(m *match) {
	m.cleanupEpoch++
	if m.cleanupTimer != nil {
		m.cleanupTimer.Stop()
		m.cleanupTimer = nil
	}
}

// armScheduledStart arms the scheduled-start trigger at match creation.
func (c *Controller) armScheduledStart(m *match, at time.Time) {
	delay := at.Sub(c.clock.Now())
	if delay < 0 {
		delay = 0
	}
	m.startTimer = c.clock.AfterFunc(delay, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.destroyed || m.g.Started() || m.g.InProgress() {
			return
		}
		if m.g.FundedCount() < 2 {
			// Trigger dropped; the match stays waiting.
			c.logger.Info("scheduled start skipped, not enough players", "gameId", m.g.ID)
			return
		}
		if err := c.startHandLocked(m); err != nil {
			c.logger.Error("scheduled start failed", "gameId", m.g.ID, "error", err)
		}
	})
}

// freezeLocked handles a fatal invariant violation: the replay is marked
// corrupt, game_ended{invariant} is emitted, and the match refuses further
// actions while staying visible in the registry.
func (c *Controller) freezeLocked(m *match, err error) {
	c.logger.Error("invariant violated, freezing match", "gameId", m.g.ID, "error", err)
	c.recorder.MarkCorrupt(m.g.ID)
	c.cancelTimersLocked(m)
	c.publishLocked(m, []game.Event{{
		Type:       game.EventGameEnded,
		Timestamp:  c.clock.Now(),
		HandNumber: m.g.HandNumber,
		Payload:    game.GameEndedPayload{Reason: "invariant"},
	}})
	c.recorder.EndGame(m.g.ID, c.clock.Now())
}

// endLocked finishes a match: timers cancelled, game_ended published,
// replay finalized, registry entry removed.
func (c *Controller) endLocked(m *match, reason string) {
	if m.destroyed {
		return
	}
	m.destroyed = true
	c.cancelTimersLocked(m)

	c.publishLocked(m, []game.Event{{
		Type:       game.EventGameEnded,
		Timestamp:  c.clock.Now(),
		HandNumber: m.g.HandNumber,
		Phase:      m.g.Phase,
		Payload:    game.GameEndedPayload{Reason: reason},
	}})
	c.recorder.EndGame(m.g.ID, c.clock.Now())
	c.bus.Drop(m.g.ID)

	c.mu.Lock()
	delete(c.matches, m.g.ID)
	c.gamesEnded++
	c.mu.Unlock()
}

func (c *Controller) cancelTimersLocked(m *match) {
	m.turnEpoch++
	m.cleanupEpoch++
	for _, t := range []*quartz.Timer{m.turnTimer, m.handTimer, m.cleanupTimer, m.startTimer} {
		if t != nil {
			t.Stop()
		}
	}
	m.turnTimer, m.handTimer, m.cleanupTimer, m.startTimer = nil, nil, nil, nil
	m.handPending = false
	m.turnKey = ""
}

func playersOf(g *game.Game) []game.SeatSummary {
	out := make([]game.SeatSummary, len(g.Seats))
	for i, p := range g.Seats {
		out[i] = game.SeatSummary{PlayerID: p.ID, Name: p.Name, Seat: i, Chips: p.Chips}
	}
	return out
}
