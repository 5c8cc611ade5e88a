package evaluator

import (
	"errors"
	"testing"

	"github.com/lox/holdemarena/internal/deck"
)

func TestEvaluateCategories(t *testing.T) {
	tests := []struct {
		name     string
		cards    string
		expected Category
	}{
		{
			name:     "Royal Flush",
			cards:    "AsKsQsJsTs9h8h",
			expected: StraightFlush,
		},
		{
			name:     "Straight Flush",
			cards:    "9s8s7s6s5s4h3h",
			expected: StraightFlush,
		},
		{
			name:     "Steel Wheel",
			cards:    "As5s4s3s2sKhQd",
			expected: StraightFlush,
		},
		{
			name:     "Four of a Kind",
			cards:    "AsAhAdAcKs2h3h",
			expected: FourOfAKind,
		},
		{
			name:     "Full House",
			cards:    "AsAhAdKsKh2h3h",
			expected: FullHouse,
		},
		{
			name:     "Flush",
			cards:    "AsKsQs8s6s4h3h",
			expected: Flush,
		},
		{
			name:     "Broadway Straight",
			cards:    "AsKhQdJcTs9h8h",
			expected: Straight,
		},
		{
			name:     "Wheel",
			cards:    "Ah5s4d3c2sKhQd",
			expected: Straight,
		},
		{
			name:     "Three of a Kind",
			cards:    "AsAhAdKs9c7h5h",
			expected: ThreeOfAKind,
		},
		{
			name:     "Two Pair",
			cards:    "AsAhKdKs9c7h5h",
			expected: TwoPair,
		},
		{
			name:     "One Pair",
			cards:    "AsAhKdQs9c7h5h",
			expected: OnePair,
		},
		{
			name:     "High Card",
			cards:    "AsKhQd9s7c5h3h",
			expected: HighCard,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MustEvaluate(deck.MustParseCards(tt.cards))
			if result.Category != tt.expected {
				t.Errorf("Expected category %v, got %v", tt.expected, result.Category)
			}
			if len(result.Best) != 5 {
				t.Errorf("Expected 5 best cards, got %d", len(result.Best))
			}
		})
	}
}

func TestEvaluateTiebreakers(t *testing.T) {
	tests := []struct {
		name     string
		cards    string
		expected []int
	}{
		{
			name:     "Quads rank then kicker",
			cards:    "AsAhAdAcKs",
			expected: []int{int(deck.Ace), int(deck.King)},
		},
		{
			name:     "Full house trips then pair",
			cards:    "KsKhKdQsQh",
			expected: []int{int(deck.King), int(deck.Queen)},
		},
		{
			name:     "Straight by high card",
			cards:    "9s8h7d6c5s",
			expected: []int{int(deck.Nine)},
		},
		{
			name:     "Wheel counts as five high",
			cards:    "Ah5s4d3c2s",
			expected: []int{int(deck.Five)},
		},
		{
			name:     "Two pair high low kicker",
			cards:    "QsQhTdTs4c",
			expected: []int{int(deck.Queen), int(deck.Ten), int(deck.Four)},
		},
		{
			name:     "Pair with three kickers",
			cards:    "9s9hAdJc6s",
			expected: []int{int(deck.Nine), int(deck.Ace), int(deck.Jack), int(deck.Six)},
		},
		{
			name:     "High card all five ranks",
			cards:    "AsJh9d6c3s",
			expected: []int{int(deck.Ace), int(deck.Jack), int(deck.Nine), int(deck.Six), int(deck.Three)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MustEvaluate(deck.MustParseCards(tt.cards))
			if len(result.Tiebreakers) != len(tt.expected) {
				t.Fatalf("Expected %d tiebreakers, got %d (%v)", len(tt.expected), len(result.Tiebreakers), result.Tiebreakers)
			}
			for i, want := range tt.expected {
				if result.Tiebreakers[i] != want {
					t.Errorf("Tiebreaker[%d]: expected %d, got %d", i, want, result.Tiebreakers[i])
				}
			}
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name   string
		better string
		worse  string
	}{
		{
			name:   "Straight flush beats quads",
			better: "9s8s7s6s5s",
			worse:  "AsAhAdAcKs",
		},
		{
			name:   "Quads beat full house",
			better: "2s2h2d2c3s",
			worse:  "AsAhAdKsKh",
		},
		{
			name:   "Higher quads win",
			better: "AsAhAdAc2s",
			worse:  "KsKhKdKcQs",
		},
		{
			name:   "Quads kicker decides",
			better: "AsAhAdAcKs",
			worse:  "AsAhAdAcQh",
		},
		{
			name:   "Full house by trips rank",
			better: "9s9h9d2c2s",
			worse:  "8s8h8dAcAs",
		},
		{
			name:   "Flush by highest card",
			better: "As9s7s5s3s",
			worse:  "KhQh9h7h5h",
		},
		{
			name:   "Flush by fifth card",
			better: "AsKsQs9s3s",
			worse:  "AhKhQh9h2h",
		},
		{
			name:   "Six high straight beats wheel",
			better: "6s5h4d3c2s",
			worse:  "Ah5s4c3d2h",
		},
		{
			name:   "Two pair beats one pair",
			better: "3s3h2d2cAs",
			worse:  "AsAhKdQs9c",
		},
		{
			name:   "Pair kicker decides",
			better: "9s9hAdJc6s",
			worse:  "9d9cAhJs5h",
		},
		{
			name:   "High card by second kicker",
			better: "AsKhQd9s7c",
			worse:  "AhQs9h7d5c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			better := MustEvaluate(deck.MustParseCards(tt.better))
			worse := MustEvaluate(deck.MustParseCards(tt.worse))

			if got := better.Compare(worse); got <= 0 {
				t.Errorf("Expected %s to beat %s, Compare returned %d", tt.better, tt.worse, got)
			}
			if got := worse.Compare(better); got >= 0 {
				t.Errorf("Expected %s to lose to %s, Compare returned %d", tt.worse, tt.better, got)
			}
		})
	}
}

func TestCompareTies(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
	}{
		{
			name: "Identical straights different suits",
			a:    "9s8h7d6c5s",
			b:    "9h8d7c6s5h",
		},
		{
			name: "Same two pair same kicker",
			a:    "QsQhTdTs4c",
			b:    "QdQcThTc4s",
		},
		{
			name: "Board plays for both",
			a:    "AsKsQsJsTs3h2h",
			b:    "AsKsQsJsTs8d7d",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := MustEvaluate(deck.MustParseCards(tt.a))
			b := MustEvaluate(deck.MustParseCards(tt.b))

			if got := a.Compare(b); got != 0 {
				t.Errorf("Expected tie between %s and %s, Compare returned %d", tt.a, tt.b, got)
			}
		})
	}
}

func TestEvaluateBestFive(t *testing.T) {
	// Seven cards holding both a flush and a straight: the flush must win.
	result := MustEvaluate(deck.MustParseCards("AsKsQs8s6sJhTd"))
	if result.Category != Flush {
		t.Fatalf("Expected flush, got %v", result.Category)
	}

	want := map[string]bool{"As": true, "Ks": true, "Qs": true, "8s": true, "6s": true}
	for _, c := range result.Best {
		if !want[c.Code()] {
			t.Errorf("Unexpected card %s in best hand %v", c.Code(), deck.Codes(result.Best))
		}
	}

	// Trips on board plus a pocket pair: the full house must be found.
	result = MustEvaluate(deck.MustParseCards("7s7h7d4c4sKh2d"))
	if result.Category != FullHouse {
		t.Fatalf("Expected full house, got %v", result.Category)
	}
	if result.Tiebreakers[0] != int(deck.Seven) || result.Tiebreakers[1] != int(deck.Four) {
		t.Errorf("Expected sevens full of fours, got tiebreakers %v", result.Tiebreakers)
	}
}

func TestEvaluateInsufficientCards(t *testing.T) {
	_, err := Evaluate(deck.MustParseCards("AsKsQsJs"))
	if !errors.Is(err, ErrInsufficientCards) {
		t.Errorf("Expected ErrInsufficientCards, got %v", err)
	}

	_, err = Evaluate(nil)
	if !errors.Is(err, ErrInsufficientCards) {
		t.Errorf("Expected ErrInsufficientCards for nil input, got %v", err)
	}
}

func TestEvaluationString(t *testing.T) {
	tests := []struct {
		cards    string
		expected string
	}{
		{"AsKsQsJsTs", "Royal Flush"},
		{"9s8s7s6s5s", "Straight Flush, Nine high"},
		{"AsAhAdAcKs", "Four of a Kind, Aces"},
		{"KsKhKdQsQh", "Full House, Kings full of Queens"},
		{"AsKsQs8s6s", "Flush, Ace high"},
		{"9s8h7d6c5s", "Straight, Nine high"},
		{"AsAhAdKs9c", "Three of a Kind, Aces"},
		{"QsQhTdTs4c", "Two Pair, Queens and Tens"},
		{"9s9hAdJc6s", "Pair of Nines"},
		{"AsKhQd9s7c", "Ace high"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			result := MustEvaluate(deck.MustParseCards(tt.cards))
			if got := result.String(); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestCategoryOrdering(t *testing.T) {
	order := []Category{
		HighCard, OnePair, TwoPair, ThreeOfAKind,
		Straight, Flush, FullHouse, FourOfAKind, StraightFlush,
	}
	for i := 1; i < len(order); i++ {
		if order[i] <= order[i-1] {
			t.Errorf("Expected %v > %v", order[i], order[i-1])
		}
	}
}
