package game

import "sort"

// Pot is a main or side pot. Eligible holds seat indices still contesting
// it; folded seats contribute chips but never eligibility.
type Pot struct {
	Amount   int
	Eligible []int
	Main     bool
}

// BuildPots constructs the pot stack from each seat's total-hand wager.
// Contribution levels are the distinct wagers of every contributor, folded
// or departed included; each level takes min(wager, level) − min(wager,
// previous) from every seat, so dead money lands in the pot capped at its
// wager and nothing outside the pot stack. A slice no live seat can
// contest merges into the pot below it, and consecutive levels with the
// same eligible set collapse into one pot, which keeps eligible sets
// strictly shrinking across the stack.
func BuildPots(seats []*Player) []Pot {
	levelSet := make(map[int]bool)
	for _, p := range seats {
		if p.HandBet > 0 {
			levelSet[p.HandBet] = true
		}
	}
	if len(levelSet) == 0 {
		return nil
	}
	levels := make([]int, 0, len(levelSet))
	for l := range levelSet {
		levels = append(levels, l)
	}
	sort.Ints(levels)

	pots := make([]Pot, 0, len(levels))
	prev := 0
	for _, level := range levels {
		pot := Pot{Main: len(pots) == 0}
		for seat, p := range seats {
			if p.HandBet > prev {
				capped := p.HandBet
				if capped > level {
					capped = level
				}
				pot.Amount += capped - prev
			}
			if p.InHand() && p.HandBet >= level {
				pot.Eligible = append(pot.Eligible, seat)
			}
		}
		prev = level
		if pot.Amount == 0 {
			continue
		}
		if n := len(pots); n > 0 && (len(pot.Eligible) == 0 || equalSeatSets(pots[n-1].Eligible, pot.Eligible)) {
			pots[n-1].Amount += pot.Amount
			continue
		}
		pots = append(pots, pot)
	}
	return pots
}

// equalSeatSets compares eligibility slices, which are built in seat order.
func equalSeatSets(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// PotTotal sums the pot stack.
func PotTotal(pots []Pot) int {
	total := 0
	for _, pot := range pots {
		total += pot.Amount
	}
	return total
}
