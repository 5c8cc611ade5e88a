// Package game implements the Texas Hold'em match engine.
//
// The main type is Game, which owns the seat list and the state of the
// current hand: betting rounds, pot construction, showdown evaluation and
// winnings distribution. Mutating operations return the domain events they
// produced; publishing those events (and scheduling timers between hands)
// is the controller's job, so the engine itself stays synchronous and
// deterministic.
//
// A hand is driven by exactly two inputs: StartHand deals a new hand, and
// Apply feeds it one validated player action. Everything else (street
// transitions, all-in runouts, fold wins, side pots) happens inside those
// two calls.
//
// # Deterministic testing
//
// Shuffles draw from an injected seed, so a hand can be replayed exactly:
//
//	g := game.New("g1", cfg, game.WithSeed(42))
//	g.AddPlayer("p1", "alice", 1000)
//	g.AddPlayer("p2", "bob", 1000)
//	events, err := g.StartHand()
//
// Snapshots are deep copies; use Project to mask hidden information for a
// particular viewer.
package game
