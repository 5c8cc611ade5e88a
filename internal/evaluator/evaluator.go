// Package evaluator ranks poker hands. Given five to seven cards it finds
// the best five-card hand and returns a totally ordered Evaluation:
// (category, tiebreaker vector), compared lexicographically. Aces play high
// everywhere except the A-2-3-4-5 wheel, where the straight ranks by its
// five.
package evaluator

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lox/holdemarena/internal/deck"
)

// ErrInsufficientCards is returned when fewer than five cards are supplied.
var ErrInsufficientCards = errors.New("evaluator: at least 5 cards required")

// Evaluation is the rank of a hand. Two evaluations compare first by
// Category, then by Tiebreakers element-wise; equal vectors mean a chopped
// pot.
type Evaluation struct {
	Category    Category `json:"category"`
	Tiebreakers []int    `json:"tiebreakers"`
	// Best holds the five cards forming the ranked hand, ordered by their
	// role (e.g. quads first, kicker last).
	Best []deck.Card `json:"best"`
}

// Evaluate finds the best five-card hand among the supplied cards. It
// accepts exactly 5, or 6-7 for hole+community evaluation; fewer than 5
// fails with ErrInsufficientCards.
func Evaluate(cards []deck.Card) (Evaluation, error) {
	if len(cards) < 5 {
		return Evaluation{}, fmt.Errorf("%w, got %d", ErrInsufficientCards, len(cards))
	}
	if len(cards) == 5 {
		hand := make([]deck.Card, 5)
		copy(hand, cards)
		return evaluate5(hand), nil
	}

	// Scan every 5-card combination and keep the best. 7 cards is only
	// C(7,5)=21 hands, so brute force beats anything clever here.
	best := Evaluation{Category: -1}
	combination(len(cards), 5, func(idx []int) {
		hand := make([]deck.Card, 5)
		for i, j := range idx {
			hand[i] = cards[j]
		}
		eval := evaluate5(hand)
		if best.Category < 0 || eval.Compare(best) > 0 {
			best = eval
		}
	})
	return best, nil
}

// MustEvaluate is Evaluate that panics on error (for tests).
func MustEvaluate(cards []deck.Card) Evaluation {
	eval, err := Evaluate(cards)
	if err != nil {
		panic(err)
	}
	return eval
}

// Compare returns -1 if e ranks below other, +1 if above, 0 on an exact
// tie.
func (e Evaluation) Compare(other Evaluation) int {
	if e.Category != other.Category {
		if e.Category < other.Category {
			return -1
		}
		return 1
	}
	for i := 0; i < len(e.Tiebreakers) && i < len(other.Tiebreakers); i++ {
		if e.Tiebreakers[i] != other.Tiebreakers[i] {
			if e.Tiebreakers[i] < other.Tiebreakers[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// String renders the evaluation for logs and showdown summaries, e.g.
// "Full House, Kings full of Twos" or "Pair of Nines".
func (e Evaluation) String() string {
	name := func(r int) string {
		return rankName(deck.Rank(r))
	}
	switch e.Category {
	case StraightFlush:
		if len(e.Tiebreakers) > 0 && e.Tiebreakers[0] == int(deck.Ace) {
			return "Royal Flush"
		}
		return fmt.Sprintf("Straight Flush, %s high", name(e.Tiebreakers[0]))
	case FourOfAKind:
		return fmt.Sprintf("Four of a Kind, %ss", name(e.Tiebreakers[0]))
	case FullHouse:
		return fmt.Sprintf("Full House, %ss full of %ss", name(e.Tiebreakers[0]), name(e.Tiebreakers[1]))
	case Flush:
		return fmt.Sprintf("Flush, %s high", name(e.Tiebreakers[0]))
	case Straight:
		return fmt.Sprintf("Straight, %s high", name(e.Tiebreakers[0]))
	case ThreeOfAKind:
		return fmt.Sprintf("Three of a Kind, %ss", name(e.Tiebreakers[0]))
	case TwoPair:
		return fmt.Sprintf("Two Pair, %ss and %ss", name(e.Tiebreakers[0]), name(e.Tiebreakers[1]))
	case OnePair:
		return fmt.Sprintf("Pair of %ss", name(e.Tiebreakers[0]))
	case HighCard:
		return fmt.Sprintf("%s high", name(e.Tiebreakers[0]))
	default:
		return "Unknown"
	}
}

func rankName(r deck.Rank) string {
	switch r {
	case deck.Ace:
		return "Ace"
	case deck.King:
		return "King"
	case deck.Queen:
		return "Queen"
	case deck.Jack:
		return "Jack"
	case deck.Ten:
		return "Ten"
	case deck.Nine:
		return "Nine"
	case deck.Eight:
		return "Eight"
	case deck.Seven:
		return "Seven"
	case deck.Six:
		return "Six"
	case deck.Five:
		return "Five"
	case deck.Four:
		return "Four"
	case deck.Three:
		return "Three"
	case deck.Two:
		return "Two"
	default:
		return "?"
	}
}

// rankGroup is a run of same-rank cards within one hand.
type rankGroup struct {
	rank  deck.Rank
	count int
	cards []deck.Card
}

// evaluate5 classifies exactly five cards.
func evaluate5(hand []deck.Card) Evaluation {
	// Sort by rank descending so groups and kickers come out ordered.
	sort.Slice(hand, func(i, j int) bool { return hand[i].Rank > hand[j].Rank })

	flush := true
	for _, c := range hand[1:] {
		if c.Suit != hand[0].Suit {
			flush = false
			break
		}
	}

	straightHigh, straight := straightHighRank(hand)

	groups := groupByRank(hand)

	switch {
	case straight && flush:
		return Evaluation{
			Category:    StraightFlush,
			Tiebreakers: []int{int(straightHigh)},
			Best:        straightOrder(hand, straightHigh),
		}

	case groups[0].count == 4:
		return Evaluation{
			Category:    FourOfAKind,
			Tiebreakers: []int{int(groups[0].rank), int(groups[1].rank)},
			Best:        flatten(groups),
		}

	case groups[0].count == 3 && groups[1].count == 2:
		return Evaluation{
			Category:    FullHouse,
			Tiebreakers: []int{int(groups[0].rank), int(groups[1].rank)},
			Best:        flatten(groups),
		}

	case flush:
		return Evaluation{
			Category:    Flush,
			Tiebreakers: ranksOf(hand),
			Best:        hand,
		}

	case straight:
		return Evaluation{
			Category:    Straight,
			Tiebreakers: []int{int(straightHigh)},
			Best:        straightOrder(hand, straightHigh),
		}

	case groups[0].count == 3:
		return Evaluation{
			Category:    ThreeOfAKind,
			Tiebreakers: []int{int(groups[0].rank), int(groups[1].rank), int(groups[2].rank)},
			Best:        flatten(groups),
		}

	case groups[0].count == 2 && groups[1].count == 2:
		return Evaluation{
			Category:    TwoPair,
			Tiebreakers: []int{int(groups[0].rank), int(groups[1].rank), int(groups[2].rank)},
			Best:        flatten(groups),
		}

	case groups[0].count == 2:
		return Evaluation{
			Category: OnePair,
			Tiebreakers: []int{
				int(groups[0].rank), int(groups[1].rank),
				int(groups[2].rank), int(groups[3].rank),
			},
			Best: flatten(groups),
		}

	default:
		return Evaluation{
			Category:    HighCard,
			Tiebreakers: ranksOf(hand),
			Best:        hand,
		}
	}
}

// straightHighRank reports whether the five rank-descending cards form a
// straight and, if so, its high rank. The wheel (A-5-4-3-2) ranks by the
// five.
func straightHighRank(hand []deck.Card) (deck.Rank, bool) {
	for i := 1; i < len(hand); i++ {
		if hand[i].Rank == hand[i-1].Rank {
			return 0, false // paired hands cannot be straights
		}
	}

	if hand[0].Rank-hand[4].Rank == 4 {
		return hand[0].Rank, true
	}

	// Wheel: A high in sort order but plays low.
	if hand[0].Rank == deck.Ace &&
		hand[1].Rank == deck.Five && hand[4].Rank == deck.Two {
		return deck.Five, true
	}
	return 0, false
}

// straightOrder arranges a straight's cards high-to-low with the wheel's
// ace moved to the bottom.
func straightOrder(hand []deck.Card, high deck.Rank) []deck.Card {
	if high == deck.Five && hand[0].Rank == deck.Ace {
		reordered := make([]deck.Card, 0, 5)
		reordered = append(reordered, hand[1:]...)
		reordered = append(reordered, hand[0])
		return reordered
	}
	return hand
}

// groupByRank buckets cards into same-rank groups ordered by count
// descending, then rank descending. Input must already be rank-sorted
// descending.
func groupByRank(hand []deck.Card) []rankGroup {
	var groups []rankGroup
	for _, c := range hand {
		if n := len(groups); n > 0 && groups[n-1].rank == c.Rank {
			groups[n-1].count++
			groups[n-1].cards = append(groups[n-1].cards, c)
			continue
		}
		groups = append(groups, rankGroup{rank: c.Rank, count: 1, cards: []deck.Card{c}})
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].rank > groups[j].rank
	})
	return groups
}

func flatten(groups []rankGroup) []deck.Card {
	cards := make([]deck.Card, 0, 5)
	for _, g := range groups {
		cards = append(cards, g.cards...)
	}
	return cards
}

func ranksOf(hand []deck.Card) []int {
	ranks := make([]int, len(hand))
	for i, c := range hand {
		ranks[i] = int(c.Rank)
	}
	return ranks
}

// combination calls fn with each k-subset of [0,n) as index slices.
func combination(n, k int, fn func([]int)) {
	idx := make([]int, k)
	var walk func(start, depth int)
	walk = func(start, depth int) {
		if depth == k {
			fn(idx)
			return
		}
		for i := start; i < n; i++ {
			idx[depth] = i
			walk(i+1, depth+1)
		}
	}
	walk(0, 0)
}

// FormatBest renders the best five cards compactly, e.g. "Ks Kd 9h 9c As".
func FormatBest(e Evaluation) string {
	return strings.Join(deck.Codes(e.Best), " ")
}
