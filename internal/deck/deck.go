package deck

import (
	rand "math/rand/v2"
	"time"

	"github.com/lox/holdemarena/internal/randutil"
)

// Deck is an ordered sequence of the 52 unique cards. It is mutated only by
// Shuffle and by dealing from the top; Burn is a deal whose card is
// discarded. Shuffles draw from an injected rng so hands can be replayed
// deterministically in tests.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// New creates a full deck in canonical order. A nil rng gets a time-seeded
// source.
func New(rng *rand.Rand) *Deck {
	if rng == nil {
		rng = randutil.New(time.Now().UnixNano())
	}
	d := &Deck{
		cards: make([]Card, 0, 52),
		rng:   rng,
	}
	d.fill()
	return d
}

// NewSeeded creates a full deck whose shuffles are derived from seed.
func NewSeeded(seed int64) *Deck {
	return New(randutil.New(seed))
}

func (d *Deck) fill() {
	d.cards = d.cards[:0]
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			d.cards = append(d.cards, NewCard(suit, rank))
		}
	}
}

// Shuffle randomizes the order of the remaining cards (Fisher-Yates).
func (d *Deck) Shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal removes and returns the top card. The second return is false when
// the deck is exhausted.
func (d *Deck) Deal() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, true
}

// DealN deals up to n cards from the top.
func (d *Deck) DealN(n int) []Card {
	if n > len(d.cards) {
		n = len(d.cards)
	}
	cards := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		card, ok := d.Deal()
		if !ok {
			break
		}
		cards = append(cards, card)
	}
	return cards
}

// Burn discards the top card before a street deal. Returns false when the
// deck is exhausted.
func (d *Deck) Burn() bool {
	_, ok := d.Deal()
	return ok
}

// Remaining returns the number of cards left.
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// Reset restores the full 52 cards and shuffles.
func (d *Deck) Reset() {
	d.fill()
	d.Shuffle()
}
