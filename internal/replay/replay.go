// Package replay is the append-only event log for matches: the recorder
// assigns gap-free sequence ids and periodic state checkpoints, the
// analyzer reconstructs per-hand and per-player statistics from a loaded
// log, and the sink persists completed logs to disk.
package replay

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lox/holdemarena/internal/game"
)

// ErrInvalidReplay rejects malformed or inconsistent replay data on load.
var ErrInvalidReplay = errors.New("invalid replay data")

// DefaultCheckpointInterval is how often a full state snapshot is inlined
// when the recorder is not configured otherwise.
const DefaultCheckpointInterval = 50

// Event is one recorded entry. Payload is kept as raw JSON so that a
// serialize/deserialize round trip reproduces the log byte for byte.
type Event struct {
	SequenceID int64           `json:"sequenceId"`
	Type       game.EventType  `json:"type"`
	Timestamp  time.Time       `json:"timestamp"`
	HandNumber int             `json:"handNumber,omitempty"`
	Phase      game.Phase      `json:"phase,omitempty"`
	ActorID    string          `json:"actorId,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Snapshot   *game.Snapshot  `json:"gameStateSnapshot,omitempty"`
}

// Checkpoint indexes the first event of a hand so the analyzer can seek
// without replaying from zero.
type Checkpoint struct {
	HandNumber int   `json:"handNumber"`
	SequenceID int64 `json:"sequenceId"`
	EventIndex int   `json:"eventIndex"`
}

// Metadata summarizes a finished (or in-flight) log.
type Metadata struct {
	PlayerNames  map[string]string `json:"playerNames"`
	SmallBlind   int               `json:"smallBlind"`
	BigBlind     int               `json:"bigBlind"`
	StartTime    time.Time         `json:"startTime"`
	EndTime      time.Time         `json:"endTime,omitzero"`
	TotalEvents  int               `json:"totalEvents"`
	TotalActions int               `json:"totalActions"`
	HandCount    int               `json:"handCount"`
	Corrupt      bool              `json:"corrupt,omitempty"`
}

// Data is a full match log: what the sink persists and the analyzer loads.
type Data struct {
	GameID      string       `json:"gameId"`
	Metadata    Metadata     `json:"metadata"`
	Events      []Event      `json:"events"`
	Checkpoints []Checkpoint `json:"checkpoints,omitempty"`
}

// Marshal serializes the log for the sink or the wire.
func (d *Data) Marshal() ([]byte, error) {
	return json.Marshal(d)
}

// Load parses and validates serialized replay data. Gaps or regressions in
// the sequence, or a missing game id, fail with ErrInvalidReplay.
func Load(raw []byte) (*Data, error) {
	var d Data
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReplay, err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate checks structural invariants: non-empty game id and a gap-free
// 1..N sequence.
func (d *Data) Validate() error {
	if d.GameID == "" {
		return fmt.Errorf("%w: missing gameId", ErrInvalidReplay)
	}
	for i, ev := range d.Events {
		if ev.SequenceID != int64(i+1) {
			return fmt.Errorf("%w: sequence gap at index %d (got %d)", ErrInvalidReplay, i, ev.SequenceID)
		}
	}
	for _, cp := range d.Checkpoints {
		if cp.EventIndex < 0 || cp.EventIndex >= len(d.Events) {
			return fmt.Errorf("%w: checkpoint for hand %d out of range", ErrInvalidReplay, cp.HandNumber)
		}
	}
	return nil
}

// HandEvents returns the slice of events belonging to hand n, using the
// checkpoint index to find the start. Nil when the hand is not in the log.
func (d *Data) HandEvents(n int) []Event {
	start := -1
	for _, cp := range d.Checkpoints {
		if cp.HandNumber == n {
			start = cp.EventIndex
			break
		}
	}
	if start == -1 {
		return nil
	}
	end := len(d.Events)
	for i := start + 1; i < len(d.Events); i++ {
		if d.Events[i].HandNumber > n {
			end = i
			break
		}
	}
	return d.Events[start:end]
}
