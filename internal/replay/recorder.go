package replay

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/holdemarena/internal/game"
)

// SnapshotFunc supplies the full game state when the recorder decides to
// checkpoint. It is called while the match lock is held, so it must not
// block.
type SnapshotFunc func() *game.Snapshot

// Recorder owns one append-only log per match. Appends for different
// matches never contend; appends for the same match are serialized by a
// per-log lock.
type Recorder struct {
	logger   *log.Logger
	interval int

	mu   sync.RWMutex
	logs map[string]*matchLog
}

type matchLog struct {
	mu    sync.Mutex
	data  Data
	dirty bool
	ended bool
}

// RecorderOption adjusts a Recorder at construction.
type RecorderOption func(*Recorder)

// WithCheckpointInterval sets how many events pass between inline state
// snapshots.
func WithCheckpointInterval(n int) RecorderOption {
	return func(r *Recorder) {
		if n > 0 {
			r.interval = n
		}
	}
}

// NewRecorder creates an empty recorder.
func NewRecorder(logger *log.Logger, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		logger:   logger.WithPrefix("replay"),
		interval: DefaultCheckpointInterval,
		logs:     make(map[string]*matchLog),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// StartGame opens a log for a new match. Reopening an existing id is a
// no-op so a recreated game id keeps its original start time.
func (r *Recorder) StartGame(gameID string, smallBlind, bigBlind int, start time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.logs[gameID]; ok {
		return
	}
	r.logs[gameID] = &matchLog{
		data: Data{
			GameID: gameID,
			Metadata: Metadata{
				PlayerNames: make(map[string]string),
				SmallBlind:  smallBlind,
				BigBlind:    bigBlind,
				StartTime:   start,
			},
		},
	}
}

// Append copies ev into the match log with the next sequence id. Every
// checkpoint-interval events, and on every hand_started, snap is invoked
// and the full state stored inline.
func (r *Recorder) Append(gameID string, ev game.Event, snap SnapshotFunc) {
	l := r.log(gameID)
	if l == nil {
		return
	}

	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		r.logger.Error("payload marshal failed, recording without it",
			"gameId", gameID, "event", ev.Type, "error", err)
		payload = nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ended {
		return
	}

	rec := Event{
		SequenceID: int64(len(l.data.Events) + 1),
		Type:       ev.Type,
		Timestamp:  ev.Timestamp,
		HandNumber: ev.HandNumber,
		Phase:      ev.Phase,
		ActorID:    ev.ActorID,
		Payload:    payload,
	}

	switch ev.Type {
	case game.EventPlayerJoined:
		if p, ok := ev.Payload.(game.PlayerJoinedPayload); ok {
			l.data.Metadata.PlayerNames[p.PlayerID] = p.Name
		}
	case game.EventHandStarted:
		l.data.Metadata.HandCount = ev.HandNumber
		l.data.Checkpoints = append(l.data.Checkpoints, Checkpoint{
			HandNumber: ev.HandNumber,
			SequenceID: rec.SequenceID,
			EventIndex: len(l.data.Events),
		})
	case game.EventActionTaken:
		l.data.Metadata.TotalActions++
	}

	checkpoint := ev.Type == game.EventHandStarted ||
		(r.interval > 0 && int(rec.SequenceID)%r.interval == 0)
	if checkpoint && snap != nil {
		rec.Snapshot = snap()
	}

	l.data.Events = append(l.data.Events, rec)
	l.data.Metadata.TotalEvents = len(l.data.Events)
	l.dirty = true
}

// MarkCorrupt flags the log of a match that broke an engine invariant.
func (r *Recorder) MarkCorrupt(gameID string) {
	l := r.log(gameID)
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.data.Metadata.Corrupt = true
	l.dirty = true
}

// EndGame finalizes the metadata. Appends after EndGame are dropped.
func (r *Recorder) EndGame(gameID string, end time.Time) {
	l := r.log(gameID)
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.data.Metadata.EndTime = end
	l.data.Metadata.TotalEvents = len(l.data.Events)
	l.ended = true
	l.dirty = true
}

// Get returns a deep-enough copy of the log for a match: the event slice
// and checkpoint index are copied so later appends don't race readers.
func (r *Recorder) Get(gameID string) (*Data, bool) {
	l := r.log(gameID)
	if l == nil {
		return nil, false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked(), true
}

// Dirty returns the ids of matches whose logs changed since the last call,
// clearing the flags. The auto-save loop persists exactly these.
func (r *Recorder) Dirty() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []string
	for id, l := range r.logs {
		l.mu.Lock()
		if l.dirty {
			l.dirty = false
			ids = append(ids, id)
		}
		l.mu.Unlock()
	}
	return ids
}

// Remove drops a match log from memory, returning the final copy so the
// caller can persist it one last time.
func (r *Recorder) Remove(gameID string) (*Data, bool) {
	r.mu.Lock()
	l, ok := r.logs[gameID]
	if ok {
		delete(r.logs, gameID)
	}
	r.mu.Unlock()
	if !ok {
		return nil, false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked(), true
}

func (r *Recorder) log(gameID string) *matchLog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.logs[gameID]
}

func (l *matchLog) snapshotLocked() *Data {
	out := l.data
	out.Events = make([]Event, len(l.data.Events))
	copy(out.Events, l.data.Events)
	out.Checkpoints = append([]Checkpoint(nil), l.data.Checkpoints...)
	out.Metadata.PlayerNames = make(map[string]string, len(l.data.Metadata.PlayerNames))
	for k, v := range l.data.Metadata.PlayerNames {
		out.Metadata.PlayerNames[k] = v
	}
	return &out
}
