package game

// PossibleActions enumerates the legal actions for the seat at index seat,
// with amount bounds. Amounts for bets and raises are the seat's total wager
// for the round, not the increment. Returns nil when the seat cannot act.
func (g *Game) PossibleActions(seat int) []PossibleAction {
	if !g.Phase.Betting() || seat != g.Current || seat < 0 || seat >= len(g.Seats) {
		return nil
	}
	p := g.Seats[seat]
	if !p.CanAct() {
		return nil
	}

	toCall := g.Betting.CurrentBet - p.RoundBet
	actions := make([]PossibleAction, 0, 4)

	// Folding is only legal when checking would cost something.
	if toCall > 0 {
		actions = append(actions, PossibleAction{Type: ActionFold})
	}

	if toCall == 0 {
		actions = append(actions, PossibleAction{Type: ActionCheck})
		// A stack below the big blind cannot meet the minimum open, so it
		// gets all-in instead of a bet.
		if g.Betting.CurrentBet == 0 && p.Chips >= g.BigBlind {
			actions = append(actions, PossibleAction{
				Type:      ActionBet,
				MinAmount: g.BigBlind,
				MaxAmount: p.Chips,
			})
		}
	} else if p.Chips > 0 {
		call := toCall
		if call > p.Chips {
			call = p.Chips
		}
		actions = append(actions, PossibleAction{
			Type:      ActionCall,
			MinAmount: call,
			MaxAmount: call,
		})
	}

	if g.Betting.CurrentBet > 0 {
		minRaise := g.Betting.CurrentBet + g.Betting.MinRaise
		maxRaise := p.Chips + p.RoundBet
		if p.Chips > 0 && maxRaise >= minRaise {
			actions = append(actions, PossibleAction{
				Type:      ActionRaise,
				MinAmount: minRaise,
				MaxAmount: maxRaise,
			})
		}
	}

	if p.Chips > 0 {
		actions = append(actions, PossibleAction{
			Type:      ActionAllIn,
			MinAmount: p.Chips + p.RoundBet,
			MaxAmount: p.Chips + p.RoundBet,
		})
	}

	return actions
}

// validateAction checks a submitted action against the allowed set without
// mutating anything, so rejected actions leave the state untouched.
func (g *Game) validateAction(a Action) error {
	if g.Phase == WaitingForPlayers || g.Phase == HandComplete {
		return ErrGameNotRunning
	}
	seat := g.seatOf(a.PlayerID)
	if seat == -1 || !g.Phase.Betting() || seat != g.Current {
		return ErrNotYourTurn
	}
	if a.PlayerID == g.lastActorID && !a.Timestamp.IsZero() && a.Timestamp.Equal(g.lastActionAt) {
		// Duplicate delivery of an already-applied action.
		return ErrNotYourTurn
	}

	allowed := g.PossibleActions(seat)
	var match *PossibleAction
	for i := range allowed {
		if allowed[i].Type == a.Type {
			match = &allowed[i]
			break
		}
	}
	if match == nil {
		return ErrIllegalAction
	}

	// Only bets and raises carry a caller-chosen amount.
	if a.Type == ActionBet || a.Type == ActionRaise {
		if a.Amount < match.MinAmount || a.Amount > match.MaxAmount {
			return &AmountOutOfRangeError{
				Action: a.Type,
				Amount: a.Amount,
				Min:    match.MinAmount,
				Max:    match.MaxAmount,
			}
		}
	}
	return nil
}
