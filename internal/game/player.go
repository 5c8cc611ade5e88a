package game

import "github.com/lox/holdemarena/internal/deck"

// Player is a seat at a match. RoundBet is the wager in the current betting
// round, HandBet the total across the hand; both are owed to the pots, not
// part of Chips. Active means the seat was dealt into the current hand;
// seats that join mid-hand wait for the next one.
type Player struct {
	ID        string
	Name      string
	Chips     int
	HoleCards []deck.Card
	Folded    bool
	AllIn     bool
	Acted     bool
	Active    bool
	Leaving   bool
	RoundBet  int
	HandBet   int
}

// CanAct reports whether the seat may still take voluntary actions this
// hand.
func (p *Player) CanAct() bool {
	return p.Active && !p.Folded && !p.AllIn
}

// InHand reports whether the seat is still contesting the pot.
func (p *Player) InHand() bool {
	return p.Active && !p.Folded
}

// resetForHand clears per-hand state before the next deal.
func (p *Player) resetForHand() {
	p.HoleCards = nil
	p.Folded = false
	p.AllIn = false
	p.Acted = false
	p.Active = true
	p.RoundBet = 0
	p.HandBet = 0
}

// wager moves up to amount chips into the seat's current-round bet, marking
// the seat all-in when the stack empties.
func (p *Player) wager(amount int) int {
	if amount > p.Chips {
		amount = p.Chips
	}
	p.Chips -= amount
	p.RoundBet += amount
	p.HandBet += amount
	if p.Chips == 0 {
		p.AllIn = true
	}
	return amount
}
