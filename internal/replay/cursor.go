package replay

import (
	"sync"
	"time"

	"github.com/coder/quartz"
)

// Cursor is a playback position in a loaded replay. Play advances through
// the log in wall-clock-proportional time (scaled by Speed); the stepping
// and seeking operations work whether or not playback is running.
type Cursor struct {
	clock quartz.Clock

	mu      sync.Mutex
	data    *Data
	index   int
	playing bool
	speed   float64
	timer   *quartz.Timer
	emit    func(Event)
}

// NewCursor creates a cursor bound to clock. emit is invoked for each event
// reached during Play; it may be nil when only stepping is needed.
func NewCursor(clock quartz.Clock, emit func(Event)) *Cursor {
	return &Cursor{clock: clock, speed: 1.0, emit: emit}
}

// Load attaches replay data and rewinds. Passing nil unloads the cursor.
func (c *Cursor) Load(d *Data) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.data = d
	c.index = 0
}

// Loaded reports whether replay data is attached.
func (c *Cursor) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data != nil
}

// SetSpeed scales playback; 2.0 plays twice as fast. Values <= 0 are
// ignored.
func (c *Cursor) SetSpeed(speed float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if speed > 0 {
		c.speed = speed
	}
}

// Current returns the event under the cursor, or nil past the end or when
// nothing is loaded.
func (c *Cursor) Current() *Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentLocked()
}

func (c *Cursor) currentLocked() *Event {
	if c.data == nil || c.index < 0 || c.index >= len(c.data.Events) {
		return nil
	}
	ev := c.data.Events[c.index]
	return &ev
}

// Play starts timed playback from the current position. The event under
// the cursor is emitted immediately; the rest follow at the recorded
// cadence.
func (c *Cursor) Play() {
	c.mu.Lock()
	if c.data == nil || c.playing || c.index >= len(c.data.Events) {
		c.mu.Unlock()
		return
	}
	c.playing = true
	due := c.takeDueLocked()
	emit := c.emit
	c.mu.Unlock()

	if emit != nil {
		for _, ev := range due {
			emit(ev)
		}
	}
}

// Pause halts playback, keeping the position.
func (c *Cursor) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

// Stop halts playback and rewinds to the first event.
func (c *Cursor) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.index = 0
}

// Playing reports whether timed playback is running.
func (c *Cursor) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// StepForward advances one event and returns it, nil at the end.
func (c *Cursor) StepForward() *Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil || c.index >= len(c.data.Events) {
		return nil
	}
	ev := c.data.Events[c.index]
	c.index++
	return &ev
}

// StepBackward moves one event back and returns the event now under the
// cursor, nil when already at the start.
func (c *Cursor) StepBackward() *Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil || c.index == 0 {
		return nil
	}
	c.index--
	ev := c.data.Events[c.index]
	return &ev
}

// CanStepBackward reports whether the cursor is past the first event.
func (c *Cursor) CanStepBackward() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data != nil && c.index > 0
}

// SeekToEvent positions the cursor at event index i, clamped to the log
// bounds.
func (c *Cursor) SeekToEvent(i int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		return
	}
	if i < 0 {
		i = 0
	}
	if i > len(c.data.Events) {
		i = len(c.data.Events)
	}
	c.index = i
}

// NearestCheckpoint returns the latest inline state snapshot at or before
// the cursor, so a renderer can rebuild state without replaying from zero.
func (c *Cursor) NearestCheckpoint() *Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		return nil
	}
	for i := min(c.index, len(c.data.Events)-1); i >= 0; i-- {
		if c.data.Events[i].Snapshot != nil {
			ev := c.data.Events[i]
			return &ev
		}
	}
	return nil
}

// Analysis runs the analyzer over the loaded data, nil when unloaded.
func (c *Cursor) Analysis() *Analysis {
	c.mu.Lock()
	d := c.data
	c.mu.Unlock()
	return Analyze(d)
}

// takeDueLocked consumes the event under the cursor plus any neighbors
// recorded at the same instant, arms the timer for the next gap, and
// returns the batch for the caller to emit after releasing the lock.
func (c *Cursor) takeDueLocked() []Event {
	var due []Event
	for c.index < len(c.data.Events) {
		due = append(due, c.data.Events[c.index])
		c.index++
		if c.index >= len(c.data.Events) ||
			c.data.Events[c.index].Timestamp.After(c.data.Events[c.index-1].Timestamp) {
			break
		}
	}
	c.scheduleNextLocked()
	return due
}

// scheduleNextLocked arms the timer for the gap to the next event,
// replaying the original cadence scaled by speed. The delay is always
// positive so the timer is armed rather than fired inline.
func (c *Cursor) scheduleNextLocked() {
	if c.index >= len(c.data.Events) {
		c.playing = false
		return
	}

	gap := c.data.Events[c.index].Timestamp.Sub(c.data.Events[c.index-1].Timestamp)
	delay := time.Duration(float64(gap) / c.speed)
	if delay <= 0 {
		delay = time.Nanosecond
	}

	c.timer = c.clock.AfterFunc(delay, func() {
		c.mu.Lock()
		if !c.playing {
			c.mu.Unlock()
			return
		}
		due := c.takeDueLocked()
		emit := c.emit
		c.mu.Unlock()

		if emit != nil {
			for _, ev := range due {
				emit(ev)
			}
		}
	})
}

func (c *Cursor) stopLocked() {
	c.playing = false
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
