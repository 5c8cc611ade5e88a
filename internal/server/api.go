package server

import (
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lox/holdemarena/internal/game"
	"github.com/lox/holdemarena/internal/replay"
)

// Envelope is the HTTP response wrapper. Error holds the wire code from
// the error taxonomy; Message is human-readable.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// CreateGameRequest is the POST /api/games body.
type CreateGameRequest struct {
	GameID string      `json:"gameId"`
	Config game.Config `json:"config"`
}

// StartGameRequest is the POST /api/games/:id/start body.
type StartGameRequest struct {
	RequesterID string `json:"requesterId"`
}

// StatsResponse is the GET /stats payload.
type StatsResponse struct {
	ActiveGames      int     `json:"activeGames"`
	ConnectedClients int     `json:"connectedClients"`
	TotalGamesPlayed int     `json:"totalGamesPlayed"`
	ServerUptime     float64 `json:"serverUptime"`
}

// buildRouter assembles the socket endpoint, the REST API and the scrape
// endpoint on one gin engine.
func (s *Server) buildRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/ws", gin.WrapF(s.handleWebSocket))
	r.GET("/health", s.handleHealth)
	r.GET("/stats", s.handleStats)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := r.Group("/api")
	{
		api.GET("/games", s.handleListGames)
		api.POST("/games", s.handleCreateGame)
		api.GET("/games/available", s.handleAvailableGames)
		api.GET("/games/:id", s.handleGameInfo)
		api.GET("/games/:id/state", s.handleGameState)
		api.POST("/games/:id/start", s.handleStartGame)
		api.DELETE("/games/:id", s.handleDeleteGame)

		api.GET("/replays/:id", s.handleGetReplay)
		api.GET("/replays/:id/analysis", s.handleReplayAnalysis)
		api.GET("/replays/:id/hands/:n", s.handleReplayHand)
		api.POST("/replays/:id/save", s.handleSaveReplay)
	}

	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

func (s *Server) handleStats(c *gin.Context) {
	respondOK(c, StatsResponse{
		ActiveGames:      s.controller.ActiveGames(),
		ConnectedClients: s.ConnectedClients(),
		TotalGamesPlayed: s.controller.GamesPlayed(),
		ServerUptime:     s.Uptime().Seconds(),
	})
}

func (s *Server) handleListGames(c *gin.Context) {
	respondOK(c, s.controller.ListGames())
}

func (s *Server) handleAvailableGames(c *gin.Context) {
	respondOK(c, s.controller.AvailableGames())
}

func (s *Server) handleCreateGame(c *gin.Context) {
	var req CreateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, "InvalidRequest", "failed to parse request body")
		return
	}
	if req.GameID == "" {
		s.respondError(c, "InvalidRequest", "gameId is required")
		return
	}
	if err := s.controller.CreateGame(req.GameID, req.Config); err != nil {
		s.respondGameError(c, err)
		return
	}

	info, err := s.controller.Info(req.GameID)
	if err != nil {
		s.respondGameError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: info})
}

func (s *Server) handleGameInfo(c *gin.Context) {
	info, err := s.controller.Info(c.Param("id"))
	if err != nil {
		s.respondGameError(c, err)
		return
	}
	respondOK(c, info)
}

// handleGameState returns the projected state. Without a viewerId the
// caller is a spectator and sees no hole cards.
func (s *Server) handleGameState(c *gin.Context) {
	viewer := game.SpectatorViewer()
	if viewerID := c.Query("viewerId"); viewerID != "" {
		viewer = game.PlayerViewer(viewerID)
	}
	snap, err := s.controller.Snapshot(c.Param("id"), viewer)
	if err != nil {
		s.respondGameError(c, err)
		return
	}
	respondOK(c, snap)
}

func (s *Server) handleStartGame(c *gin.Context) {
	var req StartGameRequest
	_ = c.ShouldBindJSON(&req)

	if err := s.controller.StartGame(c.Param("id"), req.RequesterID); err != nil {
		s.respondGameError(c, err)
		return
	}
	respondOK(c, nil)
}

func (s *Server) handleDeleteGame(c *gin.Context) {
	if err := s.controller.DeleteGame(c.Param("id")); err != nil {
		s.respondGameError(c, err)
		return
	}
	respondOK(c, nil)
}

// loadReplay prefers the live recorder and falls back to the sink for
// matches already flushed to disk.
func (s *Server) loadReplay(gameID string) (*replay.Data, bool) {
	if d, ok := s.recorder.Get(gameID); ok {
		return d, true
	}
	if s.sink == nil {
		return nil, false
	}
	d, err := s.sink.Load(gameID)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Error("failed to load replay", "gameId", gameID, "error", err)
		}
		return nil, false
	}
	return d, true
}

func (s *Server) handleGetReplay(c *gin.Context) {
	d, ok := s.loadReplay(c.Param("id"))
	if !ok {
		s.respondGameError(c, game.ErrUnknownGame)
		return
	}
	respondOK(c, d)
}

func (s *Server) handleReplayAnalysis(c *gin.Context) {
	d, ok := s.loadReplay(c.Param("id"))
	if !ok {
		s.respondGameError(c, game.ErrUnknownGame)
		return
	}
	respondOK(c, replay.Analyze(d))
}

func (s *Server) handleReplayHand(c *gin.Context) {
	d, ok := s.loadReplay(c.Param("id"))
	if !ok {
		s.respondGameError(c, game.ErrUnknownGame)
		return
	}
	n, err := strconv.Atoi(c.Param("n"))
	if err != nil || n < 1 {
		s.respondError(c, "InvalidRequest", "hand number must be a positive integer")
		return
	}
	events := d.HandEvents(n)
	if events == nil {
		s.respondErrorStatus(c, http.StatusNotFound, "InvalidReplay", "hand not found in replay")
		return
	}
	respondOK(c, events)
}

func (s *Server) handleSaveReplay(c *gin.Context) {
	gameID := c.Param("id")
	d, ok := s.recorder.Get(gameID)
	if !ok {
		s.respondGameError(c, game.ErrUnknownGame)
		return
	}
	if s.sink == nil {
		s.respondError(c, "InvalidRequest", "no replay sink configured")
		return
	}
	if err := s.sink.Save(d); err != nil {
		s.respondErrorStatus(c, http.StatusInternalServerError, "InternalError", err.Error())
		return
	}
	respondOK(c, nil)
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

func (s *Server) respondError(c *gin.Context, code, message string) {
	s.respondErrorStatus(c, http.StatusBadRequest, code, message)
}

func (s *Server) respondErrorStatus(c *gin.Context, status int, code, message string) {
	s.metrics.ObserveError(code)
	c.JSON(status, Envelope{Success: false, Error: code, Message: message})
}

// respondGameError maps a controller error to its wire code and status.
// Unknown matches are 404; other validation failures are 400.
func (s *Server) respondGameError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	if errors.Is(err, game.ErrUnknownGame) {
		status = http.StatusNotFound
	}
	s.respondErrorStatus(c, status, game.ErrorCode(err), err.Error())
}
