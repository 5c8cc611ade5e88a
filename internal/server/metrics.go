package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lox/holdemarena/internal/game"
)

// Metrics are the server's Prometheus collectors. Each server instance
// carries its own registry so tests can run servers side by side.
type Metrics struct {
	registry *prometheus.Registry

	ConnectionsOpen  prometheus.Gauge
	EventsTotal      *prometheus.CounterVec
	HandsCompleted   prometheus.Counter
	ActionsProcessed prometheus.Counter
	GamesEnded       prometheus.Counter
	RequestErrors    *prometheus.CounterVec
}

// NewMetrics builds and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ConnectionsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "holdemarena_connections_open",
			Help: "Currently open bot sockets.",
		}),
		EventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "holdemarena_events_total",
			Help: "Match events published, by type.",
		}, []string{"type"}),
		HandsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "holdemarena_hands_completed_total",
			Help: "Hands played to completion.",
		}),
		ActionsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "holdemarena_actions_total",
			Help: "Betting actions applied.",
		}),
		GamesEnded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "holdemarena_games_ended_total",
			Help: "Matches torn down.",
		}),
		RequestErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "holdemarena_request_errors_total",
			Help: "Rejected requests, by error code.",
		}, []string{"code"}),
	}
	m.registry.MustRegister(
		m.ConnectionsOpen,
		m.EventsTotal,
		m.HandsCompleted,
		m.ActionsProcessed,
		m.GamesEnded,
		m.RequestErrors,
	)
	return m
}

// ObserveEvent counts a published match event.
func (m *Metrics) ObserveEvent(ev game.Event) {
	m.EventsTotal.WithLabelValues(string(ev.Type)).Inc()
	switch ev.Type {
	case game.EventHandComplete:
		m.HandsCompleted.Inc()
	case game.EventActionTaken:
		m.ActionsProcessed.Inc()
	case game.EventGameEnded:
		m.GamesEnded.Inc()
	}
}

// ObserveError counts a rejected request by its wire code.
func (m *Metrics) ObserveError(code string) {
	m.RequestErrors.WithLabelValues(code).Inc()
}

// Handler serves the scrape endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
