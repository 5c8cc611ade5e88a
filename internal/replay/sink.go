package replay

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/holdemarena/internal/deck"
	"github.com/lox/holdemarena/internal/fileutil"
	"github.com/lox/holdemarena/internal/game"
	"github.com/lox/holdemarena/internal/phh"
)

// Sink persists completed replay data. Implementations must tolerate being
// called repeatedly for the same game id (later saves supersede earlier
// ones).
type Sink interface {
	Save(d *Data) error
	Load(gameID string) (*Data, error)
}

// FileSink writes one JSON file per match under a base directory, plus an
// optional PHH hand-history file alongside it.
type FileSink struct {
	dir       string
	exportPHH bool
	logger    *log.Logger
}

// NewFileSink creates a sink rooted at dir, creating it if needed.
func NewFileSink(dir string, exportPHH bool, logger *log.Logger) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create replay dir: %w", err)
	}
	return &FileSink{dir: dir, exportPHH: exportPHH, logger: logger.WithPrefix("sink")}, nil
}

// Save writes the replay atomically. A PHH export failure is logged but
// does not fail the save; the JSON log is the durable record.
func (s *FileSink) Save(d *Data) error {
	raw, err := d.Marshal()
	if err != nil {
		return fmt.Errorf("marshal replay %s: %w", d.GameID, err)
	}
	if err := fileutil.WriteFileAtomic(s.path(d.GameID), raw, 0o644); err != nil {
		return fmt.Errorf("write replay %s: %w", d.GameID, err)
	}

	if s.exportPHH {
		if err := s.savePHH(d); err != nil {
			s.logger.Error("phh export failed", "gameId", d.GameID, "error", err)
		}
	}
	return nil
}

// Load reads a previously saved replay.
func (s *FileSink) Load(gameID string) (*Data, error) {
	raw, err := os.ReadFile(s.path(gameID))
	if err != nil {
		return nil, err
	}
	return Load(raw)
}

func (s *FileSink) path(gameID string) string {
	return filepath.Join(s.dir, gameID+".json")
}

func (s *FileSink) savePHH(d *Data) error {
	var out []byte
	for n := 1; n <= d.Metadata.HandCount; n++ {
		hand, err := HandToPHH(d, n)
		if err != nil {
			return err
		}
		encoded, err := phh.EncodeToBytes(hand)
		if err != nil {
			return err
		}
		out = append(out, encoded...)
		out = append(out, '\n')
	}
	if len(out) == 0 {
		return nil
	}
	return fileutil.WriteFileAtomic(filepath.Join(s.dir, d.GameID+".phh"), out, 0o644)
}

// HandToPHH reconstructs one hand from the log as a PHH record. Hole cards
// are written as unknown unless the hand reached showdown and revealed
// them.
func HandToPHH(d *Data, handNumber int) (*phh.HandHistory, error) {
	events := d.HandEvents(handNumber)
	if len(events) == 0 {
		return nil, fmt.Errorf("hand %d not found in replay %s", handNumber, d.GameID)
	}

	var started game.HandStartedPayload
	if events[0].Type != game.EventHandStarted || !decode(events[0].Payload, &started) {
		return nil, fmt.Errorf("hand %d has no hand_started checkpoint", handNumber)
	}

	seatOf := make(map[string]int, len(started.Players))
	players := make([]string, len(started.Players))
	starting := make([]int, len(started.Players))
	for i, seat := range started.Players {
		seatOf[seat.PlayerID] = i
		players[i] = seat.Name
		starting[i] = seat.Chips
	}

	blinds := make([]int, len(started.Players))
	if started.SmallBlindSeat >= 0 && started.SmallBlindSeat < len(blinds) {
		blinds[started.SmallBlindSeat] = started.SmallBlind
	}
	if started.BigBlindSeat >= 0 && started.BigBlindSeat < len(blinds) {
		blinds[started.BigBlindSeat] = started.BigBlind
	}

	// Showdown reveals arrive last but deal lines come first, so collect
	// revealed holes up front.
	holes := make(map[int][]string)
	for _, ev := range events {
		if ev.Type != game.EventShowdown {
			continue
		}
		var p game.ShowdownPayload
		if decode(ev.Payload, &p) {
			for _, h := range p.Hands {
				if seat, ok := seatOf[h.PlayerID]; ok {
					holes[seat] = deck.Codes(h.HoleCards)
				}
			}
		}
	}

	hand := &phh.HandHistory{
		Variant:           phh.VariantNT,
		Table:             d.GameID,
		SeatCount:         len(started.Players),
		Antes:             make([]int, len(started.Players)),
		BlindsOrStraddles: blinds,
		MinBet:            started.BigBlind,
		StartingStacks:    starting,
		Players:           players,
		HandID:            fmt.Sprintf("%s-%d", d.GameID, handNumber),
		Time:              events[0].Timestamp.UTC().Format("15:04:05"),
		TimeZone:          "UTC",
		Timestamp:         events[0].Timestamp,
	}

	for i := range started.Players {
		hand.Actions = append(hand.Actions, phh.DealHole(i, holes[i]))
	}

	finishing := make([]int, len(started.Players))
	copy(finishing, starting)

	for _, ev := range events {
		switch ev.Type {
		case game.EventCardsDealt:
			var p game.CardsDealtPayload
			if decode(ev.Payload, &p) && len(p.Cards) > 0 {
				hand.Actions = append(hand.Actions, phh.DealBoard(deck.Codes(p.Cards)))
			}
		case game.EventActionTaken:
			var p game.ActionTakenPayload
			if !decode(ev.Payload, &p) {
				continue
			}
			if seat, ok := seatOf[p.PlayerID]; ok {
				if line, emit := phh.FormatAction(seat, p.Action, p.Amount); emit {
					hand.Actions = append(hand.Actions, line)
				}
			}
		case game.EventShowdown:
			var p game.ShowdownPayload
			if decode(ev.Payload, &p) {
				for _, h := range p.Hands {
					if seat, ok := seatOf[h.PlayerID]; ok {
						hand.Actions = append(hand.Actions, phh.ShowCards(seat, deck.Codes(h.HoleCards)))
					}
				}
			}
		case game.EventHandComplete:
			var p game.HandCompletePayload
			if decode(ev.Payload, &p) {
				for _, delta := range p.Deltas {
					if seat, ok := seatOf[delta.PlayerID]; ok {
						finishing[seat] = delta.Chips
					}
				}
			}
		}
	}
	hand.FinishingStacks = finishing

	return hand, nil
}

// AutoSaver periodically flushes dirty replays to a sink, the replay
// persistence suspension point. It shares the controller's clock so tests
// can drive flushes deterministically.
type AutoSaver struct {
	recorder *Recorder
	sink     Sink
	clock    quartz.Clock
	interval time.Duration
	logger   *log.Logger

	mu      sync.Mutex
	timer   *quartz.Timer
	stopped bool
}

// NewAutoSaver creates a stopped auto-saver; call Start to begin flushing.
func NewAutoSaver(recorder *Recorder, sink Sink, clock quartz.Clock, interval time.Duration, logger *log.Logger) *AutoSaver {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &AutoSaver{
		recorder: recorder,
		sink:     sink,
		clock:    clock,
		interval: interval,
		logger:   logger.WithPrefix("autosave"),
	}
}

// Start arms the flush loop.
func (a *AutoSaver) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopped = false
	a.armLocked()
}

// Stop disarms the loop and performs a final flush.
func (a *AutoSaver) Stop() {
	a.mu.Lock()
	a.stopped = true
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.mu.Unlock()
	a.Flush()
}

// Flush persists every dirty replay immediately.
func (a *AutoSaver) Flush() {
	for _, id := range a.recorder.Dirty() {
		d, ok := a.recorder.Get(id)
		if !ok {
			continue
		}
		if err := a.sink.Save(d); err != nil {
			a.logger.Error("replay save failed", "gameId", id, "error", err)
		}
	}
}

func (a *AutoSaver) armLocked() {
	a.timer = a.clock.AfterFunc(a.interval, func() {
		a.Flush()
		a.mu.Lock()
		defer a.mu.Unlock()
		if !a.stopped {
			a.armLocked()
		}
	})
}
