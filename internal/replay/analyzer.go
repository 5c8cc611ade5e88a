package replay

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/lox/holdemarena/internal/deck"
	"github.com/lox/holdemarena/internal/evaluator"
	"github.com/lox/holdemarena/internal/game"
	"github.com/lox/holdemarena/internal/statistics"
)

// HandAnalysis is what the analyzer reconstructs for one hand.
type HandAnalysis struct {
	HandNumber int                           `json:"handNumber"`
	Players    []string                      `json:"players"`
	Community  map[string][]deck.Card        `json:"communityByPhase"`
	FinalPot   int                           `json:"finalPot"`
	Winners    []string                      `json:"winners"`
	Duration   time.Duration                 `json:"durationMs"`
	Showdown   bool                          `json:"showdown"`
	AllIns     map[string]struct{}           `json:"-"`
	Categories map[string]evaluator.Category `json:"-"`
}

// PlayerStats aggregates one player's behavior across the log.
type PlayerStats struct {
	PlayerID         string        `json:"playerId"`
	Name             string        `json:"name"`
	HandsPlayed      int           `json:"handsPlayed"`
	HandsWon         int           `json:"handsWon"`
	VPIP             float64       `json:"vpipPercent"`
	PFR              float64       `json:"pfrPercent"`
	AvgDecisionTime  time.Duration `json:"avgDecisionTimeMs"`
	AggressionFactor float64       `json:"aggressionFactor"`

	vpipHands    int
	pfrHands     int
	lastVPIPHand int
	lastPFRHand  int
	bets         int
	raises       int
	calls        int
	decisionTime *statistics.Sample
}

// MomentKind classifies an interesting moment.
type MomentKind string

const (
	MomentBigPot        MomentKind = "big_pot"
	MomentMultiwayAllIn MomentKind = "multiway_allin"
	MomentBluffCaught   MomentKind = "bluff_caught"
)

// Moment is one heuristic highlight.
type Moment struct {
	Kind        MomentKind `json:"kind"`
	HandNumber  int        `json:"handNumber"`
	Description string     `json:"description"`
}

// FlowSummary describes the pace and shape of the whole match.
type FlowSummary struct {
	AvgHandDuration time.Duration  `json:"avgHandDurationMs"`
	ActionCounts    map[string]int `json:"actionCounts"`
	AvgPot          float64        `json:"avgPot"`
	MedianPot       float64        `json:"medianPot"`
	MaxPot          float64        `json:"maxPot"`
}

// Analysis is the full analyzer output for one replay.
type Analysis struct {
	GameID  string                  `json:"gameId"`
	Hands   []HandAnalysis          `json:"hands"`
	Players map[string]*PlayerStats `json:"players"`
	Moments []Moment                `json:"interestingMoments"`
	Flow    FlowSummary             `json:"flow"`
}

// Analyze walks the event log once and derives per-hand analyses, player
// statistics, interesting moments and the flow summary. A nil input
// returns nil.
func Analyze(d *Data) *Analysis {
	if d == nil {
		return nil
	}

	a := &Analysis{
		GameID:  d.GameID,
		Players: make(map[string]*PlayerStats),
		Flow:    FlowSummary{ActionCounts: make(map[string]int)},
	}
	for id, name := range d.Metadata.PlayerNames {
		a.Players[id] = &PlayerStats{PlayerID: id, Name: name, decisionTime: &statistics.Sample{}}
	}
	stats := func(id string) *PlayerStats {
		s, ok := a.Players[id]
		if !ok {
			s = &PlayerStats{PlayerID: id, decisionTime: &statistics.Sample{}}
			a.Players[id] = s
		}
		return s
	}

	var (
		hand      *HandAnalysis
		handStart time.Time
		prevTime  time.Time
	)
	pots := &statistics.Sample{}
	durations := &statistics.Sample{}

	closeHand := func(end time.Time) {
		if hand == nil {
			return
		}
		hand.Duration = end.Sub(handStart)
		durations.Add(hand.Duration.Seconds())
		pots.Add(float64(hand.FinalPot))
		a.Hands = append(a.Hands, *hand)
		hand = nil
	}

	for _, ev := range d.Events {
		switch ev.Type {
		case game.EventHandStarted:
			var p game.HandStartedPayload
			if !decode(ev.Payload, &p) {
				continue
			}
			hand = &HandAnalysis{
				HandNumber: ev.HandNumber,
				Community:  make(map[string][]deck.Card),
				AllIns:     make(map[string]struct{}),
				Categories: make(map[string]evaluator.Category),
			}
			handStart = ev.Timestamp
			for _, seat := range p.Players {
				hand.Players = append(hand.Players, seat.PlayerID)
				stats(seat.PlayerID).HandsPlayed++
			}

		case game.EventPhaseChanged:
			var p game.PhaseChangedPayload
			if hand != nil && decode(ev.Payload, &p) {
				hand.Community[p.To.String()] = p.Community
			}

		case game.EventActionTaken:
			var p game.ActionTakenPayload
			if !decode(ev.Payload, &p) {
				continue
			}
			a.Flow.ActionCounts[p.Action.String()]++
			s := stats(p.PlayerID)
			if !prevTime.IsZero() && ev.Timestamp.After(prevTime) {
				s.decisionTime.Add(ev.Timestamp.Sub(prevTime).Seconds())
			}
			switch p.Action {
			case game.ActionBet:
				s.bets++
			case game.ActionRaise:
				s.raises++
			case game.ActionCall:
				s.calls++
			case game.ActionAllIn:
				s.raises++
				if hand != nil {
					hand.AllIns[p.PlayerID] = struct{}{}
				}
			}
			if hand != nil && ev.Phase == game.PreFlop {
				if p.Paid > 0 && p.Action != game.ActionFold && p.Action != game.ActionCheck {
					s.markVPIP(hand.HandNumber)
				}
				if p.Action == game.ActionRaise || p.Action == game.ActionAllIn {
					s.markPFR(hand.HandNumber)
				}
			}

		case game.EventShowdown:
			var p game.ShowdownPayload
			if hand == nil || !decode(ev.Payload, &p) {
				continue
			}
			hand.Showdown = true
			for _, revealed := range p.Hands {
				cards := append(append([]deck.Card{}, revealed.HoleCards...), p.Community...)
				if eval, err := evaluator.Evaluate(cards); err == nil {
					hand.Categories[revealed.PlayerID] = eval.Category
				}
			}

		case game.EventHandComplete:
			var p game.HandCompletePayload
			if hand == nil || !decode(ev.Payload, &p) {
				continue
			}
			for _, w := range p.Winners {
				hand.Winners = append(hand.Winners, w.PlayerID)
				hand.FinalPot += w.Amount
				stats(w.PlayerID).HandsWon++
			}
			closeHand(ev.Timestamp)
		}
		prevTime = ev.Timestamp
	}
	closeHand(prevTime)

	for _, s := range a.Players {
		if s.HandsPlayed > 0 {
			s.VPIP = 100 * float64(s.vpipHands) / float64(s.HandsPlayed)
			s.PFR = 100 * float64(s.pfrHands) / float64(s.HandsPlayed)
		}
		if s.decisionTime.Count() > 0 {
			s.AvgDecisionTime = time.Duration(s.decisionTime.Mean() * float64(time.Second))
		}
		if s.calls > 0 {
			s.AggressionFactor = float64(s.bets+s.raises) / float64(s.calls)
		} else if s.bets+s.raises > 0 {
			s.AggressionFactor = float64(s.bets + s.raises)
		}
	}

	a.Flow.AvgHandDuration = time.Duration(durations.Mean() * float64(time.Second))
	a.Flow.AvgPot = pots.Mean()
	a.Flow.MedianPot = pots.Median()
	a.Flow.MaxPot = pots.Max()
	a.Moments = findMoments(a)
	return a
}

// findMoments applies the highlight heuristics over the analyzed hands.
func findMoments(a *Analysis) []Moment {
	var moments []Moment

	avgPot := a.Flow.AvgPot
	medianCat := medianShowdownCategory(a.Hands)

	for _, h := range a.Hands {
		if avgPot > 0 && float64(h.FinalPot) > 3*avgPot {
			moments = append(moments, Moment{
				Kind:        MomentBigPot,
				HandNumber:  h.HandNumber,
				Description: fmt.Sprintf("pot of %d, %.1fx the average", h.FinalPot, float64(h.FinalPot)/avgPot),
			})
		}
		if len(h.AllIns) >= 2 {
			moments = append(moments, Moment{
				Kind:        MomentMultiwayAllIn,
				HandNumber:  h.HandNumber,
				Description: fmt.Sprintf("%d players all-in", len(h.AllIns)),
			})
		}
		if h.Showdown {
			for id, cat := range h.Categories {
				if cat < medianCat && !contains(h.Winners, id) {
					moments = append(moments, Moment{
						Kind:        MomentBluffCaught,
						HandNumber:  h.HandNumber,
						Description: fmt.Sprintf("%s lost at showdown holding %s", id, cat),
					})
				}
			}
		}
	}

	sort.SliceStable(moments, func(i, j int) bool {
		return moments[i].HandNumber < moments[j].HandNumber
	})
	return moments
}

// medianShowdownCategory finds the median revealed hand category across the
// whole log, the baseline for the bluff-caught heuristic.
func medianShowdownCategory(hands []HandAnalysis) evaluator.Category {
	var cats []int
	for _, h := range hands {
		for _, cat := range h.Categories {
			cats = append(cats, int(cat))
		}
	}
	if len(cats) == 0 {
		return 0
	}
	sort.Ints(cats)
	return evaluator.Category(cats[len(cats)/2])
}

func (s *PlayerStats) markVPIP(handNumber int) {
	if s.lastVPIPHand != handNumber {
		s.lastVPIPHand = handNumber
		s.vpipHands++
	}
}

func (s *PlayerStats) markPFR(handNumber int) {
	if s.lastPFRHand != handNumber {
		s.lastPFRHand = handNumber
		s.pfrHands++
	}
}

func decode(raw json.RawMessage, v any) bool {
	if len(raw) == 0 {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
