// Package bus is the in-process event fan-out between the controller and
// its subscribers: the transport layer, the replay recorder and the console
// monitor all observe matches through it.
package bus

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lox/holdemarena/internal/game"
)

// Subscriber receives events for one match. Callbacks run synchronously on
// the publishing goroutine and must not re-enter the controller.
type Subscriber func(gameID string, event game.Event)

// Subscription identifies one registered subscriber so it can be removed.
type Subscription struct {
	gameID string
	id     int
}

// Bus delivers match events to per-gameID subscriber lists. Publish is
// synchronous and preserves emission order; a panicking subscriber is
// logged and skipped, never blocking delivery to the rest.
type Bus struct {
	logger *log.Logger

	mu     sync.Mutex
	nextID int
	subs   map[string][]entry
}

type entry struct {
	id int
	fn Subscriber
}

// New creates an empty bus.
func New(logger *log.Logger) *Bus {
	return &Bus{
		logger: logger.WithPrefix("bus"),
		subs:   make(map[string][]entry),
	}
}

// allGames is the reserved key for wildcard subscribers.
const allGames = "*"

// Subscribe registers fn for every event published under gameID.
func (b *Bus) Subscribe(gameID string, fn Subscriber) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.subs[gameID] = append(b.subs[gameID], entry{id: b.nextID, fn: fn})
	return Subscription{gameID: gameID, id: b.nextID}
}

// SubscribeAll registers fn for events of every match, after the match's
// own subscribers. Monitors and metrics tap the bus this way.
func (b *Bus) SubscribeAll(fn Subscriber) Subscription {
	return b.Subscribe(allGames, fn)
}

// Unsubscribe removes a subscription. Safe to call from inside a callback
// and idempotent.
func (b *Bus) Unsubscribe(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.subs[sub.gameID]
	for i, e := range list {
		if e.id == sub.id {
			b.subs[sub.gameID] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(b.subs[sub.gameID]) == 0 {
		delete(b.subs, sub.gameID)
	}
}

// Publish delivers event to every subscriber of gameID, in subscription
// order. The subscriber list is snapshotted first, so callbacks can
// unsubscribe themselves without corrupting the iteration.
func (b *Bus) Publish(gameID string, event game.Event) {
	b.mu.Lock()
	list := b.subs[gameID]
	snapshot := make([]entry, 0, len(list)+len(b.subs[allGames]))
	snapshot = append(snapshot, list...)
	snapshot = append(snapshot, b.subs[allGames]...)
	b.mu.Unlock()

	for _, e := range snapshot {
		b.deliver(gameID, event, e)
	}
}

// PublishAll delivers a batch in order.
func (b *Bus) PublishAll(gameID string, events []game.Event) {
	for _, event := range events {
		b.Publish(gameID, event)
	}
}

func (b *Bus) deliver(gameID string, event game.Event, e entry) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("subscriber panicked", "gameId", gameID, "event", event.Type, "panic", r)
		}
	}()
	e.fn(gameID, event)
}

// Drop removes every subscriber of gameID, for match teardown.
func (b *Bus) Drop(gameID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, gameID)
}
