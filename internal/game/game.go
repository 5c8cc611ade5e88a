package game

import (
	"fmt"
	"time"

	"github.com/lox/holdemarena/internal/deck"
)

// Game is the full state of one match: the position-stable seat list plus
// the state of the hand in flight. All methods assume external
// serialization; the controller guards each match with its own lock.
type Game struct {
	ID         string
	Config     Config
	Seats      []*Player
	Phase      Phase
	HandNumber int

	// Current blind level. Starts at the configured amounts; tournament
	// escalation raises it between hands.
	SmallBlind int
	BigBlind   int

	// Seat indices for the hand in flight. -1 when unset.
	Dealer  int
	SBSeat  int
	BBSeat  int
	Current int

	Community []deck.Card
	Pots      []Pot
	Betting   BettingState

	CreatedAt time.Time

	deck           *deck.Deck
	seed           int64
	now            func() time.Time
	lastActorID    string
	lastActionAt   time.Time
	handChips      int
	wentToShowdown bool
	corrupt        bool
	fatal          error
}

// Option adjusts a Game at construction.
type Option func(*Game)

// WithSeed fixes the shuffle seed so every hand is reproducible.
func WithSeed(seed int64) Option {
	return func(g *Game) { g.seed = seed }
}

// WithNowFunc injects the clock used to stamp events.
func WithNowFunc(now func() time.Time) Option {
	return func(g *Game) { g.now = now }
}

// New creates an empty match in WaitingForPlayers. cfg must already be
// normalized and validated.
func New(id string, cfg Config, opts ...Option) *Game {
	g := &Game{
		ID:         id,
		Config:     cfg,
		Phase:      WaitingForPlayers,
		SmallBlind: cfg.SmallBlind,
		BigBlind:   cfg.BigBlind,
		Dealer:     -1,
		SBSeat:     -1,
		BBSeat:     -1,
		Current:    -1,
		seed:       time.Now().UnixNano(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.CreatedAt = g.now()
	return g
}

// Started reports whether the match has dealt at least one hand.
func (g *Game) Started() bool {
	return g.HandNumber > 0
}

// InProgress reports whether a hand is currently being played.
func (g *Game) InProgress() bool {
	return g.Phase.Betting() || g.Phase == Showdown
}

// Corrupt reports whether an invariant violation has frozen the match.
func (g *Game) Corrupt() bool { return g.corrupt }

// AddPlayer seats a new player in the next free position. Non-positive
// chip stacks are coerced to 1 so betting invariants hold; tournaments
// override the stack with the configured buy-in and refuse joins once the
// first hand has been dealt. A seat added mid-hand waits for the next deal.
func (g *Game) AddPlayer(playerID, name string, chips int) ([]Event, error) {
	if g.corrupt {
		return nil, ErrGameNotRunning
	}
	if len(g.Seats) >= g.Config.MaxPlayers {
		return nil, ErrGameFull
	}
	if g.seatOf(playerID) != -1 {
		return nil, fmt.Errorf("%w: player %s already seated", ErrIllegalAction, playerID)
	}
	if g.Config.IsTournament {
		if g.Started() {
			return nil, fmt.Errorf("%w: tournament registration is closed", ErrAlreadyRunning)
		}
		chips = g.Config.Tournament.StartingChips
	} else if chips <= 0 {
		chips = 1
	}

	p := &Player{ID: playerID, Name: name, Chips: chips}
	g.Seats = append(g.Seats, p)
	g.handChips += chips

	return []Event{g.event(EventPlayerJoined, playerID, PlayerJoinedPayload{
		PlayerID: playerID,
		Name:     name,
		Chips:    chips,
		Seat:     len(g.Seats) - 1,
	})}, nil
}

// RemovePlayer takes a seat out of the match. Mid-hand the seat folds and
// its wagered chips stay in the pots; the seat is physically removed when
// the hand completes. Between hands removal is immediate.
func (g *Game) RemovePlayer(playerID string) ([]Event, error) {
	seat := g.seatOf(playerID)
	if seat == -1 {
		return nil, fmt.Errorf("%w: player %s is not seated", ErrIllegalAction, playerID)
	}
	p := g.Seats[seat]

	events := []Event{g.event(EventPlayerLeft, playerID, PlayerLeftPayload{
		PlayerID: playerID,
		Name:     p.Name,
		Chips:    p.Chips,
	})}

	if g.InProgress() && p.InHand() {
		p.Leaving = true
		g.foldSeat(seat, &events)
		g.checkConservation()
		if g.fatal != nil {
			return events, g.fatal
		}
		return events, nil
	}

	g.removeSeat(seat)
	return events, nil
}

// PlayerCount returns the number of occupied seats.
func (g *Game) PlayerCount() int { return len(g.Seats) }

// FundedCount returns the number of seats able to play the next hand.
func (g *Game) FundedCount() int {
	n := 0
	for _, p := range g.Seats {
		if p.Chips > 0 && !p.Leaving {
			n++
		}
	}
	return n
}

// seatOf returns the seat index for a player id, or -1.
func (g *Game) seatOf(playerID string) int {
	for i, p := range g.Seats {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

// removeSeat drops a seat and shifts the index pointers that survive
// between hands. The departing stack leaves the conservation baseline.
func (g *Game) removeSeat(seat int) {
	g.handChips -= g.Seats[seat].Chips + g.Seats[seat].RoundBet
	g.Seats = append(g.Seats[:seat], g.Seats[seat+1:]...)
	adjust := func(idx int) int {
		switch {
		case idx == seat:
			return seat - 1 // rotation from here lands on the next seat
		case idx > seat:
			return idx - 1
		}
		return idx
	}
	g.Dealer = adjust(g.Dealer)
	g.SBSeat = adjust(g.SBSeat)
	g.BBSeat = adjust(g.BBSeat)
	if g.Current == seat {
		g.Current = -1
	} else {
		g.Current = adjust(g.Current)
	}
}

// event stamps a domain event with the match context at emission time.
func (g *Game) event(t EventType, actorID string, payload any) Event {
	return Event{
		Type:       t,
		Timestamp:  g.now(),
		HandNumber: g.HandNumber,
		Phase:      g.Phase,
		ActorID:    actorID,
		Payload:    payload,
	}
}

// fail freezes the match on the first invariant violation. Subsequent
// operations are rejected with ErrGameNotRunning.
func (g *Game) fail(detail string) {
	g.corrupt = true
	if g.fatal == nil {
		g.fatal = &InvariantError{GameID: g.ID, Detail: detail}
	}
}

// checkConservation verifies that no chips appeared or vanished since the
// hand started.
func (g *Game) checkConservation() {
	total := PotTotal(g.Pots)
	for _, p := range g.Seats {
		total += p.Chips + p.RoundBet
	}
	if total != g.handChips {
		g.fail(fmt.Sprintf("chip total %d, expected %d", total, g.handChips))
	}
}
