package phh

import (
	"strings"
	"testing"

	"github.com/lox/holdemarena/internal/game"
)

func TestEncodeProducesValidTOML(t *testing.T) {
	hand := &HandHistory{
		Variant:           VariantNT,
		Table:             "g1",
		SeatCount:         2,
		Antes:             []int{0, 0},
		BlindsOrStraddles: []int{10, 20},
		MinBet:            20,
		StartingStacks:    []int{1000, 1000},
		FinishingStacks:   []int{980, 1020},
		Actions:           []string{"d dh p1 AsKd", "d dh p2 ????", "p1 cc", "p2 cc"},
		Players:           []string{"alice", "bob"},
		HandID:            "g1-1",
	}

	out, err := EncodeToBytes(hand)
	if err != nil {
		t.Fatalf("EncodeToBytes: %v", err)
	}

	text := string(out)
	for _, want := range []string{
		`variant = "NT"`,
		`hand = "g1-1"`,
		"blinds_or_straddles = [10, 20]",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestEncodeNilHand(t *testing.T) {
	if _, err := EncodeToBytes(nil); err == nil {
		t.Fatal("expected error for nil hand")
	}
}

func TestFormatAction(t *testing.T) {
	tests := []struct {
		seat   int
		action game.ActionType
		total  int
		want   string
		emit   bool
	}{
		{0, game.ActionFold, 0, "p1 f", true},
		{1, game.ActionCheck, 0, "p2 cc", true},
		{1, game.ActionCall, 20, "p2 cc", true},
		{2, game.ActionBet, 60, "p3 cbr 60", true},
		{0, game.ActionRaise, 120, "p1 cbr 120", true},
		{0, game.ActionAllIn, 500, "p1 cbr 500", true},
	}
	for _, tt := range tests {
		got, emit := FormatAction(tt.seat, tt.action, tt.total)
		if emit != tt.emit || got != tt.want {
			t.Errorf("FormatAction(%d, %s, %d) = %q, %v; want %q, %v",
				tt.seat, tt.action, tt.total, got, emit, tt.want, tt.emit)
		}
	}
}

func TestDealLines(t *testing.T) {
	if got := DealHole(0, []string{"As", "Kd"}); got != "d dh p1 AsKd" {
		t.Errorf("DealHole = %q", got)
	}
	if got := DealHole(1, nil); got != "d dh p2 ????" {
		t.Errorf("DealHole hidden = %q", got)
	}
	if got := DealBoard([]string{"7s", "8h", "9c"}); got != "d db 7s8h9c" {
		t.Errorf("DealBoard = %q", got)
	}
	if got := ShowCards(1, []string{"Ah", "Qd"}); got != "p2 sm AhQd" {
		t.Errorf("ShowCards = %q", got)
	}
}
