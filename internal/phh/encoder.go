package phh

import (
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/lox/holdemarena/internal/game"
)

// Encode writes the hand history to w as PHH TOML.
func Encode(w io.Writer, hand *HandHistory) error {
	if hand == nil {
		return fmt.Errorf("phh: hand history is nil")
	}
	enc := toml.NewEncoder(w)
	enc.Indent = "\t"
	return enc.Encode(hand)
}

// EncodeToBytes encodes and returns the result as bytes.
func EncodeToBytes(hand *HandHistory) ([]byte, error) {
	var buf strings.Builder
	if err := Encode(&buf, hand); err != nil {
		return nil, err
	}
	return []byte(buf.String()), nil
}

// DealHole formats a hole-card deal line ("d dh p1 AsKd"). Unknown cards
// are written as "????" per the PHH convention for unrevealed holdings.
func DealHole(seat int, codes []string) string {
	cards := strings.Join(codes, "")
	if cards == "" {
		cards = "????"
	}
	return fmt.Sprintf("d dh p%d %s", seat+1, cards)
}

// DealBoard formats a board deal line ("d db 7s8h9c").
func DealBoard(codes []string) string {
	return "d db " + strings.Join(codes, "")
}

// FormatAction converts one betting action to a PHH action line. The
// second return is false when the action produces no line (blind posts are
// carried in blinds_or_straddles, not in actions).
func FormatAction(seat int, action game.ActionType, totalBet int) (string, bool) {
	player := fmt.Sprintf("p%d", seat+1)
	switch action {
	case game.ActionFold:
		return player + " f", true
	case game.ActionCheck, game.ActionCall:
		return player + " cc", true
	case game.ActionBet, game.ActionRaise, game.ActionAllIn:
		if totalBet <= 0 {
			return player + " cc", true
		}
		return fmt.Sprintf("%s cbr %d", player, totalBet), true
	default:
		return "", false
	}
}

// ShowCards formats a showdown reveal line ("p2 sm AhQd").
func ShowCards(seat int, codes []string) string {
	return fmt.Sprintf("p%d sm %s", seat+1, strings.Join(codes, ""))
}
