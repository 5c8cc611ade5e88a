package evaluator

import (
	"testing"

	"github.com/chehsunliu/poker"

	"github.com/lox/holdemarena/internal/deck"
)

// chehsunliu rank classes run 1 (straight flush) through 9 (high card);
// its absolute ranks are lower-is-better.
func categoryFromRankClass(class int32) Category {
	return Category(9 - class)
}

func toChehsunliu(cards []deck.Card) []poker.Card {
	out := make([]poker.Card, len(cards))
	for i, c := range cards {
		out[i] = poker.NewCard(c.Code())
	}
	return out
}

// TestDifferentialCategories checks category agreement with the
// chehsunliu/poker evaluator across random 7-card hands.
func TestDifferentialCategories(t *testing.T) {
	d := deck.NewSeeded(1)
	d.Shuffle()
	for i := 0; i < 500; i++ {
		if d.Remaining() < 7 {
			d.Reset()
		}
		cards := d.DealN(7)

		mine := MustEvaluate(cards)
		theirs := poker.Evaluate(toChehsunliu(cards))
		want := categoryFromRankClass(poker.RankClass(theirs))

		if mine.Category != want {
			t.Errorf("Hand %v: got %v, reference says %v (%s)",
				deck.Codes(cards), mine.Category, want, poker.RankString(theirs))
		}
	}
}

// TestDifferentialOrdering deals random boards with two hole-card pairs and
// checks that relative hand strength agrees with the reference evaluator.
func TestDifferentialOrdering(t *testing.T) {
	d := deck.NewSeeded(2)
	d.Shuffle()
	for i := 0; i < 500; i++ {
		if d.Remaining() < 9 {
			d.Reset()
		}
		board := d.DealN(5)
		holeA := d.DealN(2)
		holeB := d.DealN(2)

		handA := append(append([]deck.Card{}, board...), holeA...)
		handB := append(append([]deck.Card{}, board...), holeB...)

		mine := MustEvaluate(handA).Compare(MustEvaluate(handB))
		rankA := poker.Evaluate(toChehsunliu(handA))
		rankB := poker.Evaluate(toChehsunliu(handB))

		var want int
		switch {
		case rankA < rankB:
			want = 1
		case rankA > rankB:
			want = -1
		}

		if sign(mine) != want {
			t.Errorf("Board %v, %v vs %v: Compare=%d, reference ranks %d vs %d",
				deck.Codes(board), deck.Codes(holeA), deck.Codes(holeB), mine, rankA, rankB)
		}
	}
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}
