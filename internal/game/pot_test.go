package game

import (
	"reflect"
	"testing"
)

func seat(id string, handBet int, folded bool) *Player {
	return &Player{ID: id, Active: true, HandBet: handBet, Folded: folded}
}

func TestBuildPotsSingleLevel(t *testing.T) {
	seats := []*Player{
		seat("a", 100, false),
		seat("b", 100, false),
		seat("c", 100, false),
	}

	pots := BuildPots(seats)

	if len(pots) != 1 {
		t.Fatalf("expected 1 pot, got %d", len(pots))
	}
	if pots[0].Amount != 300 || !pots[0].Main {
		t.Errorf("main pot = %+v", pots[0])
	}
	if !reflect.DeepEqual(pots[0].Eligible, []int{0, 1, 2}) {
		t.Errorf("eligible = %v", pots[0].Eligible)
	}
}

// The side-pot layout from an all-in short stack: A all-in 200, B and C
// continue to 500. Main pot 600 contested by everyone, side pot 600 by B
// and C only.
func TestBuildPotsSidePot(t *testing.T) {
	seats := []*Player{
		seat("a", 200, false),
		seat("b", 500, false),
		seat("c", 500, false),
	}

	pots := BuildPots(seats)

	if len(pots) != 2 {
		t.Fatalf("expected 2 pots, got %+v", pots)
	}
	if pots[0].Amount != 600 || !pots[0].Main || !reflect.DeepEqual(pots[0].Eligible, []int{0, 1, 2}) {
		t.Errorf("main pot = %+v", pots[0])
	}
	if pots[1].Amount != 600 || pots[1].Main || !reflect.DeepEqual(pots[1].Eligible, []int{1, 2}) {
		t.Errorf("side pot = %+v", pots[1])
	}
}

func TestBuildPotsFoldedChipsStayInPot(t *testing.T) {
	seats := []*Player{
		seat("a", 100, false),
		seat("b", 60, true), // folded after wagering 60
		seat("c", 100, false),
	}

	pots := BuildPots(seats)

	if total := PotTotal(pots); total != 260 {
		t.Errorf("total = %d, want 260", total)
	}
	for _, pot := range pots {
		for _, idx := range pot.Eligible {
			if seats[idx].Folded {
				t.Errorf("folded seat %d eligible in pot %+v", idx, pot)
			}
		}
	}
}

func TestBuildPotsEligibleSetsStrictlyShrink(t *testing.T) {
	seats := []*Player{
		seat("a", 50, false),
		seat("b", 120, false),
		seat("c", 300, false),
		seat("d", 300, false),
	}

	pots := BuildPots(seats)

	if len(pots) != 3 {
		t.Fatalf("expected 3 pots, got %+v", pots)
	}
	for i := 1; i < len(pots); i++ {
		if len(pots[i].Eligible) >= len(pots[i-1].Eligible) {
			t.Errorf("pot %d eligible set %v not smaller than pot %d %v",
				i, pots[i].Eligible, i-1, pots[i-1].Eligible)
		}
	}
	if total := PotTotal(pots); total != 770 {
		t.Errorf("total = %d, want 770", total)
	}
}

func TestBuildPotsNoWagers(t *testing.T) {
	seats := []*Player{seat("a", 0, false), seat("b", 0, false)}
	if pots := BuildPots(seats); pots != nil {
		t.Errorf("expected no pots, got %+v", pots)
	}
}

// A seat that wagered the most and then folded leaves a top slice nobody
// can contest; it merges into the pot below instead of vanishing.
func TestBuildPotsFoldedOverbetMergesDown(t *testing.T) {
	seats := []*Player{
		seat("a", 520, true), // bet 500 over the blind, then left
		seat("b", 20, false),
	}

	pots := BuildPots(seats)

	if len(pots) != 1 {
		t.Fatalf("expected 1 pot, got %+v", pots)
	}
	if pots[0].Amount != 540 {
		t.Errorf("amount = %d, want 540", pots[0].Amount)
	}
	if !reflect.DeepEqual(pots[0].Eligible, []int{1}) {
		t.Errorf("eligible = %v", pots[0].Eligible)
	}
}

func TestBuildPotsCollapsesEqualEligibleLevels(t *testing.T) {
	// Two different all-in amounts from folded seats must not create side
	// pots with identical eligible sets.
	seats := []*Player{
		seat("a", 300, false),
		seat("b", 300, false),
		seat("c", 80, true),
	}

	pots := BuildPots(seats)

	if len(pots) != 1 {
		t.Fatalf("expected 1 pot, got %+v", pots)
	}
	if pots[0].Amount != 680 {
		t.Errorf("amount = %d, want 680", pots[0].Amount)
	}
}
