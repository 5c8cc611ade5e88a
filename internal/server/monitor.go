package server

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/lox/holdemarena/internal/bus"
	"github.com/lox/holdemarena/internal/deck"
	"github.com/lox/holdemarena/internal/game"
)

var (
	monitorGameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#7D56F4")).
				Bold(true)

	monitorActionStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFD700"))

	monitorWinStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	monitorErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FF6B6B")).
				Bold(true)

	monitorRedCardStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FF6B6B"))

	monitorDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

// Monitor prints a live one-line-per-event view of every match to a
// terminal. It taps the bus with a wildcard subscription, so it sees
// matches created after it starts.
type Monitor struct {
	mu  sync.Mutex
	out io.Writer
	sub bus.Subscription
	b   *bus.Bus
}

// NewMonitor attaches a monitor to the bus. Styling degrades to plain
// text when the environment disables color.
func NewMonitor(out io.Writer, b *bus.Bus) *Monitor {
	if termenv.EnvNoColor() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	m := &Monitor{out: out, b: b}
	m.sub = b.SubscribeAll(m.handle)
	return m
}

// Stop detaches the monitor from the bus.
func (m *Monitor) Stop() {
	m.b.Unsubscribe(m.sub)
}

func (m *Monitor) handle(gameID string, ev game.Event) {
	line := m.format(gameID, ev)
	if line == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	fmt.Fprintf(m.out, "%s %s %s\n",
		monitorDimStyle.Render(ev.Timestamp.Format(time.TimeOnly)),
		monitorGameStyle.Render(gameID),
		line)
}

func (m *Monitor) format(gameID string, ev game.Event) string {
	switch ev.Type {
	case game.EventGameStarted:
		return "game started"

	case game.EventHandStarted:
		p, ok := ev.Payload.(game.HandStartedPayload)
		if !ok {
			return ""
		}
		return fmt.Sprintf("hand %d, blinds %d/%d, dealer seat %d",
			p.HandNumber, p.SmallBlind, p.BigBlind, p.Dealer)

	case game.EventPhaseChanged:
		p, ok := ev.Payload.(game.PhaseChangedPayload)
		if !ok {
			return ""
		}
		return fmt.Sprintf("%s  %s", p.To, renderCards(p.Community))

	case game.EventActionTaken:
		p, ok := ev.Payload.(game.ActionTakenPayload)
		if !ok {
			return ""
		}
		desc := p.Action.String()
		if p.Amount > 0 {
			desc = fmt.Sprintf("%s %d", p.Action, p.Amount)
		}
		return fmt.Sprintf("%s %s (pot %d)", p.PlayerID, monitorActionStyle.Render(desc), p.Pot)

	case game.EventHandComplete:
		p, ok := ev.Payload.(game.HandCompletePayload)
		if !ok {
			return ""
		}
		parts := make([]string, 0, len(p.Winners))
		for _, w := range p.Winners {
			parts = append(parts, fmt.Sprintf("%s +%d", w.Name, w.Amount))
		}
		return monitorWinStyle.Render("won by " + strings.Join(parts, ", "))

	case game.EventPlayerJoined:
		p, ok := ev.Payload.(game.PlayerJoinedPayload)
		if !ok {
			return ""
		}
		return fmt.Sprintf("%s joined with %d chips", p.Name, p.Chips)

	case game.EventPlayerLeft:
		p, ok := ev.Payload.(game.PlayerLeftPayload)
		if !ok {
			return ""
		}
		return p.PlayerID + " left"

	case game.EventPlayerEliminated:
		p, ok := ev.Payload.(game.PlayerEliminatedPayload)
		if !ok {
			return ""
		}
		return monitorErrorStyle.Render(p.PlayerID + " eliminated")

	case game.EventTurnTimeout:
		p, ok := ev.Payload.(game.TurnTimeoutPayload)
		if !ok {
			return ""
		}
		return monitorErrorStyle.Render(p.PlayerID + " timed out")

	case game.EventGameEnded:
		reason := ""
		if p, ok := ev.Payload.(game.GameEndedPayload); ok {
			reason = " (" + p.Reason + ")"
		}
		return monitorErrorStyle.Render("game ended" + reason)

	default:
		// Card deals and bet collection are too chatty for a one-line feed.
		return ""
	}
}

func renderCards(cards []deck.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		if c.IsRed() {
			parts[i] = monitorRedCardStyle.Render(c.String())
		} else {
			parts[i] = c.String()
		}
	}
	return strings.Join(parts, " ")
}
