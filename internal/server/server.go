package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/holdemarena/internal/bus"
	"github.com/lox/holdemarena/internal/controller"
	"github.com/lox/holdemarena/internal/game"
	"github.com/lox/holdemarena/internal/replay"
)

// Server is the bot-facing transport: the socket endpoint, the HTTP API
// and the Prometheus scrape endpoint, all on one listener.
type Server struct {
	config   *Config
	logger   *log.Logger
	upgrader websocket.Upgrader
	recorder *replay.Recorder
	sink     replay.Sink
	metrics  *Metrics

	controller *controller.Controller

	register   chan *Connection
	unregister chan *Connection
	httpServer *http.Server
	startTime  time.Time
	ctx        context.Context
	cancel     context.CancelFunc

	mu          sync.RWMutex
	connections map[*Connection]bool
	players     map[string]*Connection
}

// NewServer creates the transport layer. The controller is attached later
// with SetController so it can be constructed with the server's turn
// notifier. Events reach connected bots through a wildcard subscription
// on b.
func NewServer(cfg *Config, logger *log.Logger, b *bus.Bus, rec *replay.Recorder, sink replay.Sink) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		config: cfg,
		logger: logger.WithPrefix("server"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Bots connect from anywhere.
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		recorder:    rec,
		sink:        sink,
		metrics:     NewMetrics(),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		startTime:   time.Now(),
		ctx:         ctx,
		cancel:      cancel,
		connections: make(map[*Connection]bool),
		players:     make(map[string]*Connection),
	}
	b.SubscribeAll(s.handleEvent)
	return s
}

// SetController attaches the match controller. Must be called before
// Start.
func (s *Server) SetController(c *controller.Controller) {
	s.controller = c
}

// Start runs the connection registry and serves HTTP until the context
// is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	go s.run()

	s.httpServer = &http.Server{
		Addr:    s.config.ListenAddress(),
		Handler: s.buildRouter(),
	}

	errs := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.config.ListenAddress())
		errs <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		return s.Stop()
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Stop shuts the listener down and closes every connection.
func (s *Server) Stop() error {
	s.cancel()

	s.mu.Lock()
	for conn := range s.connections {
		_ = conn.Close()
	}
	s.mu.Unlock()

	if s.httpServer == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// ConnectedClients is the number of open sockets.
func (s *Server) ConnectedClients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

// Uptime is how long the server has been running.
func (s *Server) Uptime() time.Duration {
	return time.Since(s.startTime)
}

// run owns the connection registry.
func (s *Server) run() {
	for {
		select {
		case conn := <-s.register:
			s.mu.Lock()
			s.connections[conn] = true
			total := len(s.connections)
			s.mu.Unlock()
			s.metrics.ConnectionsOpen.Inc()
			s.logger.Info("client connected", "total", total)

		case conn := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.connections[conn]; ok {
				delete(s.connections, conn)
				if key := playerKey(conn.GameID(), conn.PlayerID()); s.players[key] == conn {
					delete(s.players, key)
				}
				_ = conn.Close()
				s.metrics.ConnectionsOpen.Dec()
			}
			total := len(s.connections)
			s.mu.Unlock()
			// The seat stays. A reconnect by the same playerId resumes
			// it; meanwhile turn timeouts act for the absent bot.
			s.logger.Info("client disconnected", "player", conn.PlayerID(), "total", total)

		case <-s.ctx.Done():
			return
		}
	}
}

// handleWebSocket upgrades the request and starts the pumps.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, s.logger, s)
	s.register <- client
	client.Start()

	go func() {
		select {
		case <-client.ctx.Done():
			s.unregister <- client
		case <-s.ctx.Done():
		}
	}()
}

// attach indexes an identified connection so turn prompts route to it.
// A reconnect displaces any stale connection holding the seat.
func (s *Server) attach(c *Connection) {
	key := playerKey(c.GameID(), c.PlayerID())

	s.mu.Lock()
	prev := s.players[key]
	s.players[key] = c
	s.mu.Unlock()

	if prev != nil && prev != c {
		_ = prev.Close()
	}
}

// SendToPlayer delivers a message to one seat's connection, if any.
func (s *Server) SendToPlayer(gameID, playerID string, msg *Message) {
	s.mu.RLock()
	conn := s.players[playerKey(gameID, playerID)]
	s.mu.RUnlock()

	if conn != nil {
		_ = conn.SendMessage(msg)
	}
}

// BroadcastToGame sends a message to every connection seated at a match.
func (s *Server) BroadcastToGame(gameID string, msg *Message) {
	s.mu.RLock()
	conns := make([]*Connection, 0, len(s.connections))
	for conn := range s.connections {
		if conn.GameID() == gameID {
			conns = append(conns, conn)
		}
	}
	s.mu.RUnlock()

	for _, conn := range conns {
		_ = conn.SendMessage(msg)
	}
}

// NotifyTurn is the controller's turn notifier: it prompts the seat that
// is next to act. Fires after every event leading up to the turn has been
// delivered, so the bot always sees the state it is acting on.
func (s *Server) NotifyTurn(gameID, playerID string, timeLimit time.Duration, possible []game.PossibleAction) {
	msg, err := NewMessage(MessageTypeTurnStart, TurnStartData{
		TimeLimit:       int(timeLimit.Seconds()),
		PossibleActions: possible,
	})
	if err != nil {
		s.logger.Error("failed to encode turnStart", "error", err)
		return
	}
	s.SendToPlayer(gameID, playerID, msg)
}

// handleEvent relays bus events to the match's connections. When the
// match ends, seated bots are told why and dropped.
func (s *Server) handleEvent(gameID string, event game.Event) {
	s.metrics.ObserveEvent(event)

	msg, err := NewMessage(MessageTypeGameEvent, GameEventData{Event: event})
	if err != nil {
		s.logger.Error("failed to encode event", "type", event.Type, "error", err)
		return
	}
	s.BroadcastToGame(gameID, msg)

	if event.Type == game.EventGameEnded {
		reason := "game_ended"
		if p, ok := event.Payload.(game.GameEndedPayload); ok {
			reason = p.Reason
		}
		s.dropGame(gameID, reason)
	}
}

func (s *Server) dropGame(gameID, reason string) {
	bye, err := NewMessage(MessageTypeDisconnect, DisconnectData{Reason: reason})
	if err != nil {
		return
	}

	s.mu.RLock()
	conns := make([]*Connection, 0)
	for conn := range s.connections {
		if conn.GameID() == gameID {
			conns = append(conns, conn)
		}
	}
	s.mu.RUnlock()

	for _, conn := range conns {
		_ = conn.SendMessage(bye)
		_ = conn.Close()
	}
}

func playerKey(gameID, playerID string) string {
	return gameID + "/" + playerID
}
