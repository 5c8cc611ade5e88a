// Package random picks uniformly among the legal actions. Useful as a
// smoke-test opponent.
package random

import (
	"math/rand"

	"github.com/lox/holdemarena/sdk"
)

type Agent struct {
	rng *rand.Rand
}

// New creates a random agent. A fixed seed makes it reproducible.
func New(seed int64) *Agent {
	return &Agent{rng: rand.New(rand.NewSource(seed))}
}

func (a *Agent) Act(view sdk.TurnView) sdk.Decision {
	if len(view.PossibleActions) == 0 {
		return sdk.Fold()
	}

	choice := view.PossibleActions[a.rng.Intn(len(view.PossibleActions))]
	switch choice.Type {
	case sdk.ActionBet, sdk.ActionRaise:
		amount := choice.MinAmount
		if choice.MaxAmount > choice.MinAmount {
			amount += a.rng.Intn(choice.MaxAmount - choice.MinAmount + 1)
		}
		return sdk.Decision{Action: choice.Type, Amount: amount}
	default:
		return sdk.Decision{Action: choice.Type}
	}
}

var _ sdk.Agent = (*Agent)(nil)
