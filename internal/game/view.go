package game

import "github.com/lox/holdemarena/internal/deck"

// ViewerType classifies who is looking at a snapshot.
type ViewerType int

const (
	ViewerPlayer ViewerType = iota
	ViewerSpectator
	ViewerReplay
)

// Viewer identifies the audience for a projection. ID is only meaningful
// for players.
type Viewer struct {
	Type ViewerType
	ID   string
}

// PlayerViewer is the projection identity for a seated player.
func PlayerViewer(id string) Viewer { return Viewer{Type: ViewerPlayer, ID: id} }

// SpectatorViewer sees only public information.
func SpectatorViewer() Viewer { return Viewer{Type: ViewerSpectator} }

// ReplayViewer sees what a spectator would have seen at the time.
func ReplayViewer() Viewer { return Viewer{Type: ViewerReplay} }

// SeatView is one seat in a snapshot.
type SeatView struct {
	PlayerID  string      `json:"playerId"`
	Name      string      `json:"name"`
	Seat      int         `json:"seat"`
	Chips     int         `json:"chips"`
	RoundBet  int         `json:"roundBet"`
	HandBet   int         `json:"handBet"`
	Folded    bool        `json:"folded"`
	AllIn     bool        `json:"allIn"`
	Active    bool        `json:"active"`
	HoleCards []deck.Card `json:"holeCards,omitempty"`
}

// Snapshot is a copy of the full match state, detached from the engine.
// Unprojected snapshots contain every hole card; call Project before
// handing one to a viewer.
type Snapshot struct {
	GameID          string           `json:"gameId"`
	Phase           Phase            `json:"phase"`
	HandNumber      int              `json:"handNumber"`
	MaxPlayers      int              `json:"maxPlayers"`
	SmallBlind      int              `json:"smallBlind"`
	BigBlind        int              `json:"bigBlind"`
	Dealer          int              `json:"dealer"`
	SmallBlindSeat  int              `json:"smallBlindSeat"`
	BigBlindSeat    int              `json:"bigBlindSeat"`
	CurrentSeat     int              `json:"currentSeat"`
	CurrentPlayerID string           `json:"currentPlayerId,omitempty"`
	CurrentBet      int              `json:"currentBet"`
	MinRaise        int              `json:"minRaise"`
	Community       []deck.Card      `json:"communityCards"`
	Pots            []PotSummary     `json:"pots"`
	Players         []SeatView       `json:"players"`
	WentToShowdown  bool             `json:"wentToShowdown,omitempty"`
	PossibleActions []PossibleAction `json:"possibleActions,omitempty"`
}

// Snapshot deep-copies the current state. Mutating the result never
// affects the engine.
func (g *Game) Snapshot() *Snapshot {
	s := &Snapshot{
		GameID:         g.ID,
		Phase:          g.Phase,
		HandNumber:     g.HandNumber,
		MaxPlayers:     g.Config.MaxPlayers,
		SmallBlind:     g.SmallBlind,
		BigBlind:       g.BigBlind,
		Dealer:         g.Dealer,
		SmallBlindSeat: g.SBSeat,
		BigBlindSeat:   g.BBSeat,
		CurrentSeat:    g.Current,
		CurrentBet:     g.Betting.CurrentBet,
		MinRaise:       g.Betting.MinRaise,
		Community:      snapshotCards(g.Community),
		Pots:           g.potSummaries(),
		WentToShowdown: g.wentToShowdown,
	}
	if g.Current >= 0 && g.Current < len(g.Seats) {
		s.CurrentPlayerID = g.Seats[g.Current].ID
		s.PossibleActions = g.PossibleActions(g.Current)
	}
	s.Players = make([]SeatView, len(g.Seats))
	for i, p := range g.Seats {
		s.Players[i] = SeatView{
			PlayerID:  p.ID,
			Name:      p.Name,
			Seat:      i,
			Chips:     p.Chips,
			RoundBet:  p.RoundBet,
			HandBet:   p.HandBet,
			Folded:    p.Folded,
			AllIn:     p.AllIn,
			Active:    p.Active,
			HoleCards: snapshotCards(p.HoleCards),
		}
	}
	return s
}

// Project filters a snapshot for a viewer. Hole cards of seat X survive iff
// the viewer is player X, or the hand reached showdown and X did not fold.
// Possible actions survive only for the player currently to act. The input
// is not modified.
func Project(s *Snapshot, v Viewer) *Snapshot {
	out := *s
	out.Community = snapshotCards(s.Community)
	out.Pots = append([]PotSummary(nil), s.Pots...)
	out.Players = make([]SeatView, len(s.Players))
	for i, seat := range s.Players {
		masked := seat
		visible := v.Type == ViewerPlayer && v.ID == seat.PlayerID ||
			s.WentToShowdown && !seat.Folded && seat.Active
		if visible {
			masked.HoleCards = snapshotCards(seat.HoleCards)
		} else {
			masked.HoleCards = nil
		}
		out.Players[i] = masked
	}
	if !(v.Type == ViewerPlayer && v.ID == s.CurrentPlayerID && s.CurrentPlayerID != "") {
		out.PossibleActions = nil
	} else {
		out.PossibleActions = append([]PossibleAction(nil), s.PossibleActions...)
	}
	return &out
}
