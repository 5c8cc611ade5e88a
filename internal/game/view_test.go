package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectHidesOpponentHoleCards(t *testing.T) {
	g := newTestGame(t, 1000, 1000)
	_, err := g.StartHand()
	require.NoError(t, err)

	view := Project(g.Snapshot(), PlayerViewer("p-a"))

	require.Len(t, view.Players, 2)
	assert.Len(t, view.Players[0].HoleCards, 2, "a player sees their own cards")
	assert.Empty(t, view.Players[1].HoleCards, "and never the opponent's")
}

func TestProjectSpectatorSeesNoHoleCards(t *testing.T) {
	g := newTestGame(t, 1000, 1000)
	_, err := g.StartHand()
	require.NoError(t, err)

	view := Project(g.Snapshot(), SpectatorViewer())

	for _, seat := range view.Players {
		assert.Empty(t, seat.HoleCards)
	}
	assert.Empty(t, view.PossibleActions)
}

func TestProjectRevealsContestedHandsAfterShowdown(t *testing.T) {
	g := newTestGame(t, 1000, 1000)
	_, err := g.StartHand()
	require.NoError(t, err)
	playCheckCall(t, g)

	view := Project(g.Snapshot(), SpectatorViewer())

	require.True(t, view.WentToShowdown)
	for _, seat := range view.Players {
		assert.Len(t, seat.HoleCards, 2, "showdown made the cards public")
	}
}

func TestProjectKeepsFoldWinHandsHidden(t *testing.T) {
	g := newTestGame(t, 1000, 1000)
	_, err := g.StartHand()
	require.NoError(t, err)
	act(t, g, ActionFold, 0)
	require.Equal(t, HandComplete, g.Phase)

	view := Project(g.Snapshot(), SpectatorViewer())

	assert.False(t, view.WentToShowdown)
	for _, seat := range view.Players {
		assert.Empty(t, seat.HoleCards, "a fold win reveals nothing")
	}
}

func TestProjectPossibleActionsOnlyForActor(t *testing.T) {
	g := newTestGame(t, 1000, 1000)
	_, err := g.StartHand()
	require.NoError(t, err)

	actorID := g.Seats[g.Current].ID
	otherID := g.Seats[1-g.Current].ID
	snap := g.Snapshot()

	assert.NotEmpty(t, Project(snap, PlayerViewer(actorID)).PossibleActions)
	assert.Empty(t, Project(snap, PlayerViewer(otherID)).PossibleActions)
}

func TestProjectDoesNotMutateInput(t *testing.T) {
	g := newTestGame(t, 1000, 1000)
	_, err := g.StartHand()
	require.NoError(t, err)

	snap := g.Snapshot()
	Project(snap, SpectatorViewer())

	assert.Len(t, snap.Players[0].HoleCards, 2)
	assert.Len(t, snap.Players[1].HoleCards, 2)
}

func TestSnapshotIsDetachedFromEngine(t *testing.T) {
	g := newTestGame(t, 1000, 1000)
	_, err := g.StartHand()
	require.NoError(t, err)

	snap := g.Snapshot()
	snap.Players[0].Chips = 0
	snap.Community = append(snap.Community, g.Seats[0].HoleCards[0])

	assert.Equal(t, 990, g.Seats[0].Chips)
	assert.Empty(t, g.Community)
}
