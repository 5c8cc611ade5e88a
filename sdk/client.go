package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client wraps the server's HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates an API client for a base URL like
// "http://localhost:3000".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// APIError is a rejected request, carrying the server's error code.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s (HTTP %d)", e.Code, e.Message, e.StatusCode)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
}

// GameInfo is the server's match metadata.
type GameInfo struct {
	GameID     string    `json:"gameId"`
	Players    int       `json:"players"`
	MaxPlayers int       `json:"maxPlayers"`
	Phase      string    `json:"phase"`
	HandNumber int       `json:"handNumber"`
	SmallBlind int       `json:"smallBlind"`
	BigBlind   int       `json:"bigBlind"`
	Tournament bool      `json:"isTournament,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// GameConfig is the match configuration for CreateGame. Zero fields take
// server defaults.
type GameConfig struct {
	MaxPlayers           int             `json:"maxPlayers,omitempty"`
	SmallBlind           int             `json:"smallBlindAmount"`
	BigBlind             int             `json:"bigBlindAmount"`
	TurnTimeLimitSeconds int             `json:"turnTimeLimitSeconds,omitempty"`
	HandStartDelayMs     int             `json:"handStartDelayMs,omitempty"`
	StartSettings        *StartSettings  `json:"startSettings,omitempty"`
	IsTournament         bool            `json:"isTournament,omitempty"`
	Tournament           *TournamentOpts `json:"tournamentSettings,omitempty"`
}

// StartSettings controls when the first hand is dealt.
type StartSettings struct {
	Condition          string    `json:"condition"`
	MinPlayers         int       `json:"minPlayers,omitempty"`
	ScheduledStartTime time.Time `json:"scheduledStartTime,omitzero"`
	CreatorID          string    `json:"creatorId,omitempty"`
}

// TournamentOpts fixes the buy-in and blind escalation.
type TournamentOpts struct {
	StartingChips            int     `json:"startingChips"`
	BlindIncreaseEveryNHands int     `json:"blindIncreaseEveryNHands,omitempty"`
	BlindIncreaseFactor      float64 `json:"blindIncreaseFactor,omitempty"`
}

// Stats is the server's health summary.
type Stats struct {
	ActiveGames      int     `json:"activeGames"`
	ConnectedClients int     `json:"connectedClients"`
	TotalGamesPlayed int     `json:"totalGamesPlayed"`
	ServerUptime     float64 `json:"serverUptime"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !env.Success {
		return &APIError{StatusCode: resp.StatusCode, Code: env.Error, Message: env.Message}
	}
	if out != nil && env.Data != nil {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}

// ListGames returns every match on the server.
func (c *Client) ListGames(ctx context.Context) ([]GameInfo, error) {
	var out []GameInfo
	err := c.do(ctx, http.MethodGet, "/api/games", nil, &out)
	return out, err
}

// AvailableGames returns matches with a free seat.
func (c *Client) AvailableGames(ctx context.Context) ([]GameInfo, error) {
	var out []GameInfo
	err := c.do(ctx, http.MethodGet, "/api/games/available", nil, &out)
	return out, err
}

// CreateGame registers a new match.
func (c *Client) CreateGame(ctx context.Context, gameID string, cfg GameConfig) (GameInfo, error) {
	var out GameInfo
	err := c.do(ctx, http.MethodPost, "/api/games", map[string]any{
		"gameId": gameID,
		"config": cfg,
	}, &out)
	return out, err
}

// GameInfo returns metadata for one match.
func (c *Client) GameInfo(ctx context.Context, gameID string) (GameInfo, error) {
	var out GameInfo
	err := c.do(ctx, http.MethodGet, "/api/games/"+gameID, nil, &out)
	return out, err
}

// GameState returns the match state as viewerID sees it. An empty
// viewerID is a spectator view with no hole cards.
func (c *Client) GameState(ctx context.Context, gameID, viewerID string) (*GameState, error) {
	path := "/api/games/" + gameID + "/state"
	if viewerID != "" {
		path += "?viewerId=" + viewerID
	}
	var out GameState
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StartGame requests a manual start.
func (c *Client) StartGame(ctx context.Context, gameID, requesterID string) error {
	return c.do(ctx, http.MethodPost, "/api/games/"+gameID+"/start", map[string]string{
		"requesterId": requesterID,
	}, nil)
}

// DeleteGame removes a match.
func (c *Client) DeleteGame(ctx context.Context, gameID string) error {
	return c.do(ctx, http.MethodDelete, "/api/games/"+gameID, nil, nil)
}

// Stats returns the server health summary.
func (c *Client) Stats(ctx context.Context) (Stats, error) {
	var out Stats
	err := c.do(ctx, http.MethodGet, "/stats", nil, &out)
	return out, err
}
