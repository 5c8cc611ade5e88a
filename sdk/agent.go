package sdk

// TurnView is what an agent sees when asked to act.
type TurnView struct {
	// PlayerID is the bot's own seat.
	PlayerID string

	// State is the last projection received from the server, updated as
	// events arrive. Never nil once the bot is seated.
	State *GameState

	// TimeLimit is the decision clock in seconds; exceeding it lets the
	// server act in the bot's stead.
	TimeLimit int

	// PossibleActions are the legal actions with their amount bounds.
	PossibleActions []PossibleAction
}

// Can returns the bounds for an action type if it is currently legal.
func (v TurnView) Can(actionType string) (PossibleAction, bool) {
	for _, a := range v.PossibleActions {
		if a.Type == actionType {
			return a, true
		}
	}
	return PossibleAction{}, false
}

// Decision is an agent's chosen action. Amount follows the wire
// convention: the total round wager, not the increment.
type Decision struct {
	Action string
	Amount int
}

// Agent decides betting actions. Implementations must return within the
// turn time limit; a slow agent gets folded (or checked) by the server.
type Agent interface {
	Act(view TurnView) Decision
}

// AgentFunc adapts a function to the Agent interface.
type AgentFunc func(view TurnView) Decision

func (f AgentFunc) Act(view TurnView) Decision { return f(view) }

func Fold() Decision          { return Decision{Action: ActionFold} }
func Check() Decision         { return Decision{Action: ActionCheck} }
func Call() Decision          { return Decision{Action: ActionCall} }
func Bet(amount int) Decision { return Decision{Action: ActionBet, Amount: amount} }
func AllIn() Decision         { return Decision{Action: ActionAllIn} }

// Raise raises to amount total for the round.
func Raise(amount int) Decision { return Decision{Action: ActionRaise, Amount: amount} }

// CheckOrFold is the weakest legal response: check when free, fold when
// facing a bet.
func CheckOrFold(view TurnView) Decision {
	if _, ok := view.Can(ActionCheck); ok {
		return Check()
	}
	return Fold()
}

// CheckOrCall never puts in more chips than it has to.
func CheckOrCall(view TurnView) Decision {
	if _, ok := view.Can(ActionCheck); ok {
		return Check()
	}
	if _, ok := view.Can(ActionCall); ok {
		return Call()
	}
	return Fold()
}
