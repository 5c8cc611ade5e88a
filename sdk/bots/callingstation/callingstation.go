// Package callingstation always checks or calls, never raises.
package callingstation

import "github.com/lox/holdemarena/sdk"

type Agent struct{}

func (Agent) Act(view sdk.TurnView) sdk.Decision {
	return sdk.CheckOrCall(view)
}

var _ sdk.Agent = Agent{}
