// Package aggressive bets and raises whenever it can, sized at the
// minimum. It loses chips fast but keeps a table busy.
package aggressive

import "github.com/lox/holdemarena/sdk"

type Agent struct{}

func (Agent) Act(view sdk.TurnView) sdk.Decision {
	if a, ok := view.Can(sdk.ActionRaise); ok {
		return sdk.Raise(a.MinAmount)
	}
	if a, ok := view.Can(sdk.ActionBet); ok {
		return sdk.Bet(a.MinAmount)
	}
	return sdk.CheckOrCall(view)
}

var _ sdk.Agent = Agent{}
