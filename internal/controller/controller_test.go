package controller

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdemarena/internal/bus"
	"github.com/lox/holdemarena/internal/game"
	"github.com/lox/holdemarena/internal/replay"
)

type fixture struct {
	c     *Controller
	clock *quartz.Mock
	rec   *replay.Recorder
	ctx   context.Context
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	logger := log.New(io.Discard)
	clock := quartz.NewMock(t)
	rec := replay.NewRecorder(logger)
	opts = append([]Option{WithSeedFunc(func(string) int64 { return 42 })}, opts...)
	return &fixture{
		c:     New(logger, clock, bus.New(logger), rec, opts...),
		clock: clock,
		rec:   rec,
		ctx:   context.Background(),
	}
}

func (f *fixture) advance(t *testing.T, d time.Duration) {
	t.Helper()
	f.clock.Advance(d).MustWait(f.ctx)
}

func (f *fixture) eventTypes(t *testing.T, gameID string) []game.EventType {
	t.Helper()
	d, ok := f.rec.Get(gameID)
	require.True(t, ok)
	types := make([]game.EventType, len(d.Events))
	for i, ev := range d.Events {
		types[i] = ev.Type
	}
	return types
}

func (f *fixture) snapshot(t *testing.T, gameID string) *game.Snapshot {
	t.Helper()
	snap, err := f.c.Snapshot(gameID, game.SpectatorViewer())
	require.NoError(t, err)
	return snap
}

// playHand drives the running hand to completion with the cheapest legal
// action at every turn. A match that ends mid-hand counts as complete.
func (f *fixture) playHand(t *testing.T, gameID string) {
	t.Helper()
	for i := 0; i < 100; i++ {
		snap, err := f.c.Snapshot(gameID, game.SpectatorViewer())
		if errors.Is(err, game.ErrUnknownGame) {
			return
		}
		require.NoError(t, err)
		if !snap.Phase.Betting() {
			return
		}
		require.NotEmpty(t, snap.CurrentPlayerID)

		view, verr := f.c.Snapshot(gameID, game.PlayerViewer(snap.CurrentPlayerID))
		require.NoError(t, verr)
		require.NotEmpty(t, view.PossibleActions)
		chosen := view.PossibleActions[0]
		for _, pa := range view.PossibleActions {
			if pa.Type == game.ActionCheck {
				chosen = pa
				break
			}
			if pa.Type == game.ActionCall {
				chosen = pa
			}
		}
		err = f.c.ProcessAction(gameID, game.Action{
			Type:     chosen.Type,
			Amount:   chosen.MinAmount,
			PlayerID: snap.CurrentPlayerID,
		})
		require.NoError(t, err)
	}
	t.Fatal("hand did not complete in 100 actions")
}

func defaultConfig() game.Config {
	return game.Config{MaxPlayers: 6, SmallBlind: 10, BigBlind: 20}
}

func TestAutoStartAndFullHand(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.c.CreateGame("g1", defaultConfig()))
	require.NoError(t, f.c.AddPlayer("g1", "p1", "Alice", 1000))

	// One funded seat does not start anything.
	f.advance(t, 2*time.Second)
	assert.Equal(t, game.WaitingForPlayers, f.snapshot(t, "g1").Phase)

	require.NoError(t, f.c.AddPlayer("g1", "p2", "Bob", 1000))
	f.advance(t, time.Duration(game.DefaultHandStartDelayMs)*time.Millisecond)

	snap := f.snapshot(t, "g1")
	assert.Equal(t, game.PreFlop, snap.Phase)
	assert.Equal(t, 1, snap.HandNumber)

	f.playHand(t, "g1")

	snap = f.snapshot(t, "g1")
	assert.Equal(t, game.HandComplete, snap.Phase)
	total := 0
	for _, p := range snap.Players {
		total += p.Chips
	}
	assert.Equal(t, 2000, total)

	types := f.eventTypes(t, "g1")
	assert.Contains(t, types, game.EventGameStarted)
	assert.Contains(t, types, game.EventHandComplete)

	// The next hand deals after the configured delay.
	f.advance(t, time.Duration(game.DefaultHandStartDelayMs)*time.Millisecond)
	assert.Equal(t, 2, f.snapshot(t, "g1").HandNumber)
}

func TestEmptyMatchCleanupFires(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.c.CreateGame("g1", defaultConfig()))
	require.NoError(t, f.c.AddPlayer("g1", "p1", "Alice", 1000))
	require.NoError(t, f.c.RemovePlayer("g1", "p1"))

	f.advance(t, CleanupDelay)

	assert.False(t, f.c.HasGame("g1"))
	assert.Equal(t, 1, f.c.GamesPlayed())

	d, ok := f.rec.Get("g1")
	require.True(t, ok)
	last := d.Events[len(d.Events)-1]
	assert.Equal(t, game.EventGameEnded, last.Type)
	assert.Contains(t, string(last.Payload), "abandoned")
}

func TestCleanupCancelledByRejoin(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.c.CreateGame("g1", defaultConfig()))
	require.NoError(t, f.c.AddPlayer("g1", "p1", "Alice", 1000))
	require.NoError(t, f.c.RemovePlayer("g1", "p1"))

	f.advance(t, CleanupDelay-100*time.Millisecond)
	assert.True(t, f.c.HasGame("g1"))

	require.NoError(t, f.c.AddPlayer("g1", "p2", "Bob", 1000))
	f.advance(t, 6*time.Second)
	assert.True(t, f.c.HasGame("g1"))
}

func TestCleanupReArmsOnLaterEmpty(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.c.CreateGame("g1", defaultConfig()))
	require.NoError(t, f.c.AddPlayer("g1", "p1", "Alice", 1000))
	require.NoError(t, f.c.RemovePlayer("g1", "p1"))

	f.advance(t, 3*time.Second)
	require.NoError(t, f.c.AddPlayer("g1", "p2", "Bob", 1000))
	require.NoError(t, f.c.RemovePlayer("g1", "p2"))

	// The original deadline passes; the later empty transition governs.
	f.advance(t, 3*time.Second)
	assert.True(t, f.c.HasGame("g1"))

	f.advance(t, 2*time.Second)
	assert.False(t, f.c.HasGame("g1"))
}

func TestManualStartRequiresCreator(t *testing.T) {
	f := newFixture(t)
	cfg := defaultConfig()
	cfg.StartSettings = &game.StartSettings{Condition: game.StartManual, CreatorID: "c1"}
	require.NoError(t, f.c.CreateGame("g1", cfg))
	require.NoError(t, f.c.AddPlayer("g1", "p1", "Alice", 1000))
	require.NoError(t, f.c.AddPlayer("g1", "p2", "Bob", 1000))

	// Seats fill but nothing starts on its own.
	f.advance(t, 2*time.Second)
	assert.Equal(t, game.WaitingForPlayers, f.snapshot(t, "g1").Phase)

	err := f.c.StartGame("g1", "x")
	assert.ErrorIs(t, err, game.ErrPermissionDenied)
	assert.Equal(t, game.WaitingForPlayers, f.snapshot(t, "g1").Phase)

	require.NoError(t, f.c.StartGame("g1", "c1"))
	assert.Equal(t, game.PreFlop, f.snapshot(t, "g1").Phase)
}

func TestManualStartNeedsTwoFundedSeats(t *testing.T) {
	f := newFixture(t)
	cfg := defaultConfig()
	cfg.StartSettings = &game.StartSettings{Condition: game.StartManual}
	require.NoError(t, f.c.CreateGame("g1", cfg))
	require.NoError(t, f.c.AddPlayer("g1", "p1", "Alice", 1000))

	err := f.c.StartGame("g1", "p1")
	assert.ErrorIs(t, err, game.ErrInsufficientPlayers)
}

func TestMinPlayersStartCondition(t *testing.T) {
	f := newFixture(t)
	cfg := defaultConfig()
	cfg.StartSettings = &game.StartSettings{Condition: game.StartMinPlayers, MinPlayers: 3}
	require.NoError(t, f.c.CreateGame("g1", cfg))
	require.NoError(t, f.c.AddPlayer("g1", "p1", "Alice", 1000))
	require.NoError(t, f.c.AddPlayer("g1", "p2", "Bob", 1000))

	f.advance(t, 2*time.Second)
	assert.Equal(t, game.WaitingForPlayers, f.snapshot(t, "g1").Phase)

	require.NoError(t, f.c.AddPlayer("g1", "p3", "Cara", 1000))
	f.advance(t, time.Second)
	assert.Equal(t, game.PreFlop, f.snapshot(t, "g1").Phase)
}

func TestScheduledStart(t *testing.T) {
	f := newFixture(t)
	cfg := defaultConfig()
	cfg.StartSettings = &game.StartSettings{
		Condition:          game.StartScheduled,
		ScheduledStartTime: f.clock.Now().Add(time.Minute),
	}
	require.NoError(t, f.c.CreateGame("g1", cfg))
	require.NoError(t, f.c.AddPlayer("g1", "p1", "Alice", 1000))
	require.NoError(t, f.c.AddPlayer("g1", "p2", "Bob", 1000))

	f.advance(t, 59*time.Second)
	assert.Equal(t, game.WaitingForPlayers, f.snapshot(t, "g1").Phase)

	f.advance(t, time.Second)
	assert.Equal(t, game.PreFlop, f.snapshot(t, "g1").Phase)
}

func TestScheduledStartDroppedWhenUnderSeated(t *testing.T) {
	f := newFixture(t)
	cfg := defaultConfig()
	cfg.StartSettings = &game.StartSettings{
		Condition:          game.StartScheduled,
		ScheduledStartTime: f.clock.Now().Add(time.Minute),
	}
	require.NoError(t, f.c.CreateGame("g1", cfg))
	require.NoError(t, f.c.AddPlayer("g1", "p1", "Alice", 1000))

	f.advance(t, time.Minute) // the start trigger fires and is dropped
	f.advance(t, time.Minute)

	assert.True(t, f.c.HasGame("g1"))
	assert.Equal(t, game.WaitingForPlayers, f.snapshot(t, "g1").Phase)
}

func TestTurnTimeoutFoldsWhenFacingABet(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.c.CreateGame("g1", defaultConfig()))
	require.NoError(t, f.c.AddPlayer("g1", "p1", "Alice", 1000))
	require.NoError(t, f.c.AddPlayer("g1", "p2", "Bob", 1000))
	f.advance(t, time.Second)

	snap := f.snapshot(t, "g1")
	require.Equal(t, game.PreFlop, snap.Phase)
	slow := snap.CurrentPlayerID

	// The small blind faces the big blind, so the synthesized action is a
	// fold and the hand completes immediately.
	f.advance(t, game.Config{}.Normalize().TurnTimeout())

	types := f.eventTypes(t, "g1")
	assert.Contains(t, types, game.EventTurnTimeout)
	assert.Equal(t, game.HandComplete, f.snapshot(t, "g1").Phase)

	d, _ := f.rec.Get("g1")
	for _, ev := range d.Events {
		if ev.Type == game.EventTurnTimeout {
			assert.Equal(t, slow, ev.ActorID)
			assert.Contains(t, string(ev.Payload), `"fold"`)
		}
	}
}

func TestTurnTimeoutChecksWhenFree(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.c.CreateGame("g1", defaultConfig()))
	require.NoError(t, f.c.AddPlayer("g1", "p1", "Alice", 1000))
	require.NoError(t, f.c.AddPlayer("g1", "p2", "Bob", 1000))
	f.advance(t, time.Second)

	// Complete the small blind; the big blind's option times out.
	snap := f.snapshot(t, "g1")
	require.NoError(t, f.c.ProcessAction("g1", game.Action{
		Type:     game.ActionCall,
		PlayerID: snap.CurrentPlayerID,
	}))

	f.advance(t, game.Config{}.Normalize().TurnTimeout())

	snap = f.snapshot(t, "g1")
	assert.Equal(t, game.Flop, snap.Phase, "a free option times out into a check")

	d, _ := f.rec.Get("g1")
	for _, ev := range d.Events {
		if ev.Type == game.EventTurnTimeout {
			assert.Contains(t, string(ev.Payload), `"check"`)
		}
	}
}

func TestTimelyActionDisarmsTurnTimer(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.c.CreateGame("g1", defaultConfig()))
	require.NoError(t, f.c.AddPlayer("g1", "p1", "Alice", 1000))
	require.NoError(t, f.c.AddPlayer("g1", "p2", "Bob", 1000))
	f.advance(t, time.Second)

	snap := f.snapshot(t, "g1")
	f.advance(t, 29*time.Second)
	require.NoError(t, f.c.ProcessAction("g1", game.Action{
		Type:     game.ActionCall,
		PlayerID: snap.CurrentPlayerID,
	}))

	// Past the original deadline, before the successor's.
	f.advance(t, 2*time.Second)

	assert.Equal(t, game.PreFlop, f.snapshot(t, "g1").Phase)
	assert.NotContains(t, f.eventTypes(t, "g1"), game.EventTurnTimeout)
}

func TestTurnNotifierFires(t *testing.T) {
	type prompt struct {
		playerID string
		limit    time.Duration
		actions  int
	}
	var prompts []prompt
	f := newFixture(t, WithTurnNotifier(func(gameID, playerID string, limit time.Duration, possible []game.PossibleAction) {
		prompts = append(prompts, prompt{playerID, limit, len(possible)})
	}))

	require.NoError(t, f.c.CreateGame("g1", defaultConfig()))
	require.NoError(t, f.c.AddPlayer("g1", "p1", "Alice", 1000))
	require.NoError(t, f.c.AddPlayer("g1", "p2", "Bob", 1000))
	f.advance(t, time.Second)

	require.NotEmpty(t, prompts)
	first := prompts[0]
	assert.Equal(t, f.snapshot(t, "g1").CurrentPlayerID, first.playerID)
	assert.Equal(t, 30*time.Second, first.limit)
	assert.Greater(t, first.actions, 0)
}

func TestProcessActionRejectsWrongTurn(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.c.CreateGame("g1", defaultConfig()))
	require.NoError(t, f.c.AddPlayer("g1", "p1", "Alice", 1000))
	require.NoError(t, f.c.AddPlayer("g1", "p2", "Bob", 1000))
	f.advance(t, time.Second)

	snap := f.snapshot(t, "g1")
	waiting := "p1"
	if snap.CurrentPlayerID == "p1" {
		waiting = "p2"
	}

	err := f.c.ProcessAction("g1", game.Action{Type: game.ActionCall, PlayerID: waiting})
	assert.ErrorIs(t, err, game.ErrNotYourTurn)
}

func TestEventTimestampsComeFromInjectedClock(t *testing.T) {
	f := newFixture(t)
	start := f.clock.Now()
	require.NoError(t, f.c.CreateGame("g1", defaultConfig()))
	require.NoError(t, f.c.AddPlayer("g1", "p1", "Alice", 1000))

	d, ok := f.rec.Get("g1")
	require.True(t, ok)
	require.NotEmpty(t, d.Events)
	for _, ev := range d.Events {
		assert.Equal(t, start, ev.Timestamp, "event %s stamped off the mock clock", ev.Type)
	}
}

func TestDuplicateGameID(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.c.CreateGame("g1", defaultConfig()))
	assert.ErrorIs(t, f.c.CreateGame("g1", defaultConfig()), game.ErrDuplicateGameID)
}

func TestCreateGameValidatesConfig(t *testing.T) {
	f := newFixture(t)
	cfg := defaultConfig()
	cfg.BigBlind = 5 // below the small blind
	assert.Error(t, f.c.CreateGame("g1", cfg))
	assert.False(t, f.c.HasGame("g1"))
}

func TestUnknownGameOperations(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.c.AddPlayer("nope", "p1", "Alice", 100), game.ErrUnknownGame)
	assert.ErrorIs(t, f.c.RemovePlayer("nope", "p1"), game.ErrUnknownGame)
	assert.ErrorIs(t, f.c.StartGame("nope", "p1"), game.ErrUnknownGame)
	_, err := f.c.Snapshot("nope", game.SpectatorViewer())
	assert.ErrorIs(t, err, game.ErrUnknownGame)
}

func TestDeleteGame(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.c.CreateGame("g1", defaultConfig()))
	require.NoError(t, f.c.AddPlayer("g1", "p1", "Alice", 1000))

	require.NoError(t, f.c.DeleteGame("g1"))

	assert.False(t, f.c.HasGame("g1"))
	d, ok := f.rec.Get("g1")
	require.True(t, ok)
	last := d.Events[len(d.Events)-1]
	assert.Equal(t, game.EventGameEnded, last.Type)
	assert.Contains(t, string(last.Payload), "destroyed")

	// Pending timers fire into nothing.
	f.advance(t, time.Minute)
}

func TestListGamesAndInfo(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.c.CreateGame("g1", defaultConfig()))
	require.NoError(t, f.c.CreateGame("g2", defaultConfig()))
	require.NoError(t, f.c.AddPlayer("g1", "p1", "Alice", 1000))

	assert.Equal(t, 2, f.c.ActiveGames())
	assert.Len(t, f.c.ListGames(), 2)

	info, err := f.c.Info("g1")
	require.NoError(t, err)
	assert.Equal(t, "g1", info.GameID)
	assert.Equal(t, 1, info.Players)
	assert.Equal(t, 6, info.MaxPlayers)

	available := f.c.AvailableGames()
	assert.Len(t, available, 2)
}

func TestTournamentEndsWhenOnePlayerRemains(t *testing.T) {
	f := newFixture(t)
	cfg := defaultConfig()
	cfg.IsTournament = true
	cfg.Tournament = &game.TournamentSettings{StartingChips: 100}
	cfg.SmallBlind = 25
	cfg.BigBlind = 50
	require.NoError(t, f.c.CreateGame("g1", cfg))
	require.NoError(t, f.c.AddPlayer("g1", "p1", "Alice", 0))
	require.NoError(t, f.c.AddPlayer("g1", "p2", "Bob", 0))
	f.advance(t, time.Second)

	// Shallow stacks against big blinds bust someone within a few hands.
	for i := 0; i < 20 && f.c.HasGame("g1"); i++ {
		f.playHand(t, "g1")
		f.advance(t, time.Second)
	}

	assert.False(t, f.c.HasGame("g1"), "tournament should end once a player busts")
	d, ok := f.rec.Get("g1")
	require.True(t, ok)
	last := d.Events[len(d.Events)-1]
	assert.Equal(t, game.EventGameEnded, last.Type)
	assert.Contains(t, string(last.Payload), "tournament_complete")
}
