package game

import (
	"fmt"
	"math"
	"time"

	"github.com/lox/holdemarena/internal/deck"
	"github.com/lox/holdemarena/internal/evaluator"
	"github.com/lox/holdemarena/internal/randutil"
)

// StartHand deals the next hand. Seats that busted last hand are removed
// first; the dealer button rotates clockwise among the survivors, blinds are
// posted (all-in when the stack is short), hole cards go out in two
// clockwise rounds, and action starts left of the big blind.
//
// Events produced so far are returned even on error, so eliminations are
// still published when too few funded seats remain.
func (g *Game) StartHand() ([]Event, error) {
	if g.corrupt {
		return nil, ErrGameNotRunning
	}
	if g.InProgress() {
		return nil, fmt.Errorf("%w: hand %d in progress", ErrAlreadyRunning, g.HandNumber)
	}

	var events []Event
	g.eliminateBusted(&events)
	if len(g.Seats) < 2 {
		return events, fmt.Errorf("%w: %d seated", ErrInsufficientPlayers, len(g.Seats))
	}

	g.HandNumber++
	g.escalateBlinds()

	g.handChips = 0
	for _, p := range g.Seats {
		p.resetForHand()
		g.handChips += p.Chips
	}
	g.lastActorID = ""
	g.lastActionAt = time.Time{}

	n := len(g.Seats)
	if g.HandNumber == 1 {
		g.Dealer = 0
	} else {
		g.Dealer = (g.Dealer + 1 + n) % n
	}
	if n == 2 {
		// Heads-up the button posts the small blind.
		g.SBSeat = g.Dealer
		g.BBSeat = (g.Dealer + 1) % n
	} else {
		g.SBSeat = (g.Dealer + 1) % n
		g.BBSeat = (g.Dealer + 2) % n
	}

	g.Community = nil
	g.Pots = nil
	g.wentToShowdown = false
	g.deck = deck.New(randutil.ForHand(g.seed, g.ID, g.HandNumber))
	g.deck.Shuffle()

	g.Seats[g.SBSeat].wager(g.SmallBlind)
	g.Seats[g.BBSeat].wager(g.BigBlind)
	g.Betting = BettingState{CurrentBet: g.BigBlind, MinRaise: g.BigBlind, LastRaiser: -1}

	g.Phase = PreFlop
	g.dealHoleCards()

	events = append(events, g.event(EventHandStarted, "", HandStartedPayload{
		HandNumber:     g.HandNumber,
		Dealer:         g.Dealer,
		SmallBlindSeat: g.SBSeat,
		BigBlindSeat:   g.BBSeat,
		SmallBlind:     g.SmallBlind,
		BigBlind:       g.BigBlind,
		Players:        g.seatSummaries(),
	}))
	events = append(events, g.event(EventCardsDealt, "", CardsDealtPayload{
		Round:   "hole",
		PerSeat: 2,
	}))

	g.Current = g.nextToAct((g.BBSeat + 1) % n)
	if g.Current == -1 {
		// Every seat is already all-in from the blinds.
		g.advanceRound(&events)
	}

	g.checkConservation()
	if g.fatal != nil {
		return events, g.fatal
	}
	return events, nil
}

// Apply validates and applies one player action, then advances the state
// machine as far as it can go without further input: street transitions,
// all-in runouts, fold wins and showdowns all happen here. Rejected actions
// leave the state untouched.
func (g *Game) Apply(a Action) ([]Event, error) {
	if g.corrupt {
		return nil, ErrGameNotRunning
	}
	if err := g.validateAction(a); err != nil {
		return nil, err
	}

	seat := g.seatOf(a.PlayerID)
	p := g.Seats[seat]
	g.lastActorID = a.PlayerID
	g.lastActionAt = a.Timestamp
	p.Acted = true

	paid := 0
	switch a.Type {
	case ActionFold:
		p.Folded = true
	case ActionCheck:
	case ActionCall:
		paid = p.wager(g.Betting.CurrentBet - p.RoundBet)
	case ActionBet, ActionRaise:
		paid = p.wager(a.Amount - p.RoundBet)
		g.Betting.registerRaise(seat, p.RoundBet)
		g.clearActedExcept(seat)
	case ActionAllIn:
		paid = p.wager(p.Chips)
		if p.RoundBet > g.Betting.CurrentBet {
			g.Betting.registerRaise(seat, p.RoundBet)
			g.clearActedExcept(seat)
		}
	}

	events := []Event{g.event(EventActionTaken, a.PlayerID, ActionTakenPayload{
		PlayerID: a.PlayerID,
		Action:   a.Type,
		Amount:   p.RoundBet,
		Paid:     paid,
		Pot:      g.potWithUncollected(),
		Chips:    p.Chips,
	})}

	g.advanceAfterAction(seat, &events)

	g.checkConservation()
	if g.fatal != nil {
		return events, g.fatal
	}
	return events, nil
}

// advanceAfterAction moves the turn or the phase forward once seat has
// acted (or been folded).
func (g *Game) advanceAfterAction(seat int, events *[]Event) {
	switch {
	case g.countInHand() == 1:
		g.finishFoldWin(events)
	case g.roundComplete():
		g.advanceRound(events)
	default:
		g.Current = g.nextToAct(seat + 1)
	}
}

// foldSeat folds a seat regardless of turn order, for disconnect leaves.
// Forced folds are not validator-approved actions, so no action_taken event
// is emitted; the fold shows up through player_left and the seat's state.
func (g *Game) foldSeat(seat int, events *[]Event) {
	p := g.Seats[seat]
	if p.Folded || !p.Active {
		return
	}
	p.Folded = true
	p.Acted = true
	if g.Betting.LastRaiser == seat {
		g.Betting.LastRaiser = -1
	}

	if seat == g.Current {
		g.advanceAfterAction(seat, events)
		return
	}
	if g.countInHand() == 1 {
		g.finishFoldWin(events)
	}
}

// advanceRound closes the current betting round: wagers move into the pot
// stack, flags reset, and the next street is dealt. When one or zero seats
// can still act voluntarily, the remaining streets run out with no betting.
func (g *Game) advanceRound(events *[]Event) {
	g.collectBets(events)
	for _, p := range g.Seats {
		p.Acted = false
	}
	g.Betting.resetForRound(g.BigBlind)
	g.Current = -1

	// The dedupe marker only spans one street: the same bot acting again
	// at an identical coarse timestamp on the next street is a new action,
	// not a redelivery.
	g.lastActorID = ""
	g.lastActionAt = time.Time{}

	from := g.Phase
	switch g.Phase {
	case PreFlop:
		g.Phase = Flop
		g.deck.Burn()
		g.Community = append(g.Community, g.deck.DealN(3)...)
	case Flop:
		g.Phase = Turn
		g.deck.Burn()
		g.Community = append(g.Community, g.deck.DealN(1)...)
	case Turn:
		g.Phase = River
		g.deck.Burn()
		g.Community = append(g.Community, g.deck.DealN(1)...)
	case River:
		g.finishShowdown(events)
		return
	default:
		return
	}

	*events = append(*events, g.event(EventPhaseChanged, "", PhaseChangedPayload{
		From:      from,
		To:        g.Phase,
		Community: snapshotCards(g.Community),
	}))
	*events = append(*events, g.event(EventCardsDealt, "", CardsDealtPayload{
		Round: g.Phase.String(),
		Cards: snapshotCards(g.Community[len(g.Community)-newCardCount(g.Phase):]),
	}))

	if g.countCanAct() <= 1 {
		g.advanceRound(events)
		return
	}
	g.Current = g.nextToAct((g.Dealer + 1) % len(g.Seats))
	if g.Current == -1 {
		g.advanceRound(events)
	}
}

func newCardCount(p Phase) int {
	if p == Flop {
		return 3
	}
	return 1
}

// collectBets rebuilds the pot stack from total-hand wagers and zeroes the
// per-round wagers. Emits bet_collected when chips actually moved.
func (g *Game) collectBets(events *[]Event) {
	moved := 0
	for _, p := range g.Seats {
		moved += p.RoundBet
		p.RoundBet = 0
	}
	g.Pots = BuildPots(g.Seats)
	if moved == 0 {
		return
	}
	*events = append(*events, g.event(EventBetCollected, "", BetCollectedPayload{
		Pots:  g.potSummaries(),
		Total: PotTotal(g.Pots),
	}))
}

// finishFoldWin awards everything to the last seat standing. No cards are
// revealed and no showdown event is emitted.
func (g *Game) finishFoldWin(events *[]Event) {
	g.collectBets(events)

	winner := -1
	for seat, p := range g.Seats {
		if p.InHand() {
			winner = seat
			break
		}
	}
	if winner == -1 {
		return
	}

	p := g.Seats[winner]
	total := PotTotal(g.Pots)
	p.Chips += total
	g.Pots = nil

	g.completeHand(events, []WinnerSummary{{
		PlayerID: p.ID,
		Name:     p.Name,
		Amount:   total,
	}}, map[string]int{p.ID: total})
}

// finishShowdown evaluates the remaining hands and distributes each pot in
// order, splitting ties and giving odd chips to the winner closest
// clockwise from the dealer.
func (g *Game) finishShowdown(events *[]Event) {
	from := g.Phase
	g.Phase = Showdown
	g.wentToShowdown = true
	*events = append(*events, g.event(EventPhaseChanged, "", PhaseChangedPayload{
		From:      from,
		To:        Showdown,
		Community: snapshotCards(g.Community),
	}))

	evals := make(map[int]evaluator.Evaluation)
	var reveal []ShowdownHand
	for seat, p := range g.Seats {
		if !p.InHand() {
			continue
		}
		cards := make([]deck.Card, 0, len(p.HoleCards)+len(g.Community))
		cards = append(cards, p.HoleCards...)
		cards = append(cards, g.Community...)
		eval, err := evaluator.Evaluate(cards)
		if err != nil {
			g.fail(fmt.Sprintf("showdown evaluation for seat %d: %v", seat, err))
			return
		}
		evals[seat] = eval
		reveal = append(reveal, ShowdownHand{
			PlayerID:  p.ID,
			HoleCards: snapshotCards(p.HoleCards),
			Hand:      eval.String(),
		})
	}

	winnings := make(map[string]int)
	summaries := make(map[string]*WinnerSummary)
	var results []PotResult
	var order []string

	for _, pot := range g.Pots {
		best := []int{}
		for _, seat := range pot.Eligible {
			if len(best) == 0 {
				best = []int{seat}
				continue
			}
			switch evals[seat].Compare(evals[best[0]]) {
			case 1:
				best = []int{seat}
			case 0:
				best = append(best, seat)
			}
		}
		if len(best) == 0 {
			continue
		}

		result := PotResult{Amount: pot.Amount, Main: pot.Main}
		base := pot.Amount / len(best)
		odd := pot.Amount % len(best)
		for _, seat := range g.clockwiseFromDealer(best) {
			share := base
			if odd > 0 {
				// Odd chips go to the winner closest clockwise from the dealer.
				share += odd
				odd = 0
			}
			p := g.Seats[seat]
			p.Chips += share
			winnings[p.ID] += share
			result.Winners = append(result.Winners, PotWinner{PlayerID: p.ID, Amount: share})
			if _, ok := summaries[p.ID]; !ok {
				summaries[p.ID] = &WinnerSummary{
					PlayerID: p.ID,
					Name:     p.Name,
					Hand:     evals[seat].String(),
				}
				order = append(order, p.ID)
			}
			summaries[p.ID].Amount += share
		}
		results = append(results, result)
	}
	g.Pots = nil

	*events = append(*events, g.event(EventShowdown, "", ShowdownPayload{
		Community: snapshotCards(g.Community),
		Hands:     reveal,
		Pots:      results,
	}))

	winners := make([]WinnerSummary, 0, len(order))
	for _, id := range order {
		winners = append(winners, *summaries[id])
	}
	g.completeHand(events, winners, winnings)
}

// completeHand emits the winner summary with per-seat net deltas, then
// detaches seats that left mid-hand.
func (g *Game) completeHand(events *[]Event, winners []WinnerSummary, winnings map[string]int) {
	g.Phase = HandComplete
	g.Current = -1

	deltas := make([]SeatDelta, 0, len(g.Seats))
	for _, p := range g.Seats {
		if !p.Active {
			continue
		}
		deltas = append(deltas, SeatDelta{
			PlayerID: p.ID,
			Net:      winnings[p.ID] - p.HandBet,
			Chips:    p.Chips,
		})
	}

	*events = append(*events, g.event(EventHandComplete, "", HandCompletePayload{
		HandNumber: g.HandNumber,
		Winners:    winners,
		Deltas:     deltas,
	}))

	for seat := len(g.Seats) - 1; seat >= 0; seat-- {
		if g.Seats[seat].Leaving {
			g.removeSeat(seat)
		}
	}
}

// eliminateBusted removes seats with no chips before the next deal. They
// stay visible in the completed hand's replay.
func (g *Game) eliminateBusted(events *[]Event) {
	for seat := len(g.Seats) - 1; seat >= 0; seat-- {
		p := g.Seats[seat]
		if p.Chips > 0 {
			continue
		}
		*events = append(*events, g.event(EventPlayerEliminated, p.ID, PlayerEliminatedPayload{
			PlayerID:   p.ID,
			Name:       p.Name,
			HandNumber: g.HandNumber,
		}))
		g.removeSeat(seat)
	}
}

// escalateBlinds raises the blind level for tournaments that increase
// blinds every N hands.
func (g *Game) escalateBlinds() {
	if !g.Config.IsTournament || g.Config.Tournament == nil {
		return
	}
	t := g.Config.Tournament
	if t.BlindIncreaseEveryNHands <= 0 || g.HandNumber <= 1 {
		return
	}
	if (g.HandNumber-1)%t.BlindIncreaseEveryNHands != 0 {
		return
	}
	g.SmallBlind = int(math.Round(float64(g.SmallBlind) * t.BlindIncreaseFactor))
	g.BigBlind = int(math.Round(float64(g.BigBlind) * t.BlindIncreaseFactor))
}

func (g *Game) dealHoleCards() {
	n := len(g.Seats)
	start := (g.Dealer + 1) % n
	for round := 0; round < 2; round++ {
		for offset := 0; offset < n; offset++ {
			p := g.Seats[(start+offset)%n]
			if !p.Active {
				continue
			}
			p.HoleCards = append(p.HoleCards, g.deck.DealN(1)...)
		}
	}
}

// nextToAct scans clockwise from seat index from for a seat that still owes
// a decision this round.
func (g *Game) nextToAct(from int) int {
	n := len(g.Seats)
	for i := 0; i < n; i++ {
		idx := (from + i) % n
		p := g.Seats[idx]
		if p.CanAct() && !(p.Acted && p.RoundBet == g.Betting.CurrentBet) {
			return idx
		}
	}
	return -1
}

// roundComplete reports whether every seat that can act has acted and
// matched the current bet.
func (g *Game) roundComplete() bool {
	for _, p := range g.Seats {
		if p.CanAct() && !(p.Acted && p.RoundBet == g.Betting.CurrentBet) {
			return false
		}
	}
	return true
}

func (g *Game) clearActedExcept(seat int) {
	for i, p := range g.Seats {
		if i != seat && p.CanAct() {
			p.Acted = false
		}
	}
}

func (g *Game) countInHand() int {
	n := 0
	for _, p := range g.Seats {
		if p.InHand() {
			n++
		}
	}
	return n
}

func (g *Game) countCanAct() int {
	n := 0
	for _, p := range g.Seats {
		if p.CanAct() {
			n++
		}
	}
	return n
}

// clockwiseFromDealer orders seat indices starting one seat past the
// dealer.
func (g *Game) clockwiseFromDealer(seats []int) []int {
	n := len(g.Seats)
	ordered := make([]int, 0, len(seats))
	for i := 1; i <= n; i++ {
		idx := (g.Dealer + i) % n
		for _, s := range seats {
			if s == idx {
				ordered = append(ordered, idx)
				break
			}
		}
	}
	return ordered
}

// potWithUncollected is the displayed pot total: collected pots plus wagers
// still in front of the seats.
func (g *Game) potWithUncollected() int {
	total := PotTotal(g.Pots)
	for _, p := range g.Seats {
		total += p.RoundBet
	}
	return total
}

func (g *Game) seatSummaries() []SeatSummary {
	out := make([]SeatSummary, len(g.Seats))
	for i, p := range g.Seats {
		out[i] = SeatSummary{
			PlayerID: p.ID,
			Name:     p.Name,
			Seat:     i,
			Chips:    p.Chips + p.RoundBet,
		}
	}
	return out
}

func (g *Game) potSummaries() []PotSummary {
	out := make([]PotSummary, len(g.Pots))
	for i, pot := range g.Pots {
		ids := make([]string, len(pot.Eligible))
		for j, seat := range pot.Eligible {
			ids[j] = g.Seats[seat].ID
		}
		out[i] = PotSummary{Amount: pot.Amount, Eligible: ids, Main: pot.Main}
	}
	return out
}

func snapshotCards(cards []deck.Card) []deck.Card {
	if len(cards) == 0 {
		return nil
	}
	out := make([]deck.Card, len(cards))
	copy(out, cards)
	return out
}
