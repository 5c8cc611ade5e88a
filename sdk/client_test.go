package sdk_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdemarena/sdk"
)

func apiStub(t *testing.T, routes map[string]func(w http.ResponseWriter, r *http.Request)) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	for pattern, handler := range routes {
		mux.HandleFunc(pattern, handler)
	}
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func writeEnvelope(w http.ResponseWriter, status int, env map[string]any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func TestClientListGames(t *testing.T) {
	ts := apiStub(t, map[string]func(http.ResponseWriter, *http.Request){
		"/api/games": func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, http.StatusOK, map[string]any{
				"success": true,
				"data": []map[string]any{
					{"gameId": "g1", "players": 2, "maxPlayers": 10},
				},
			})
		},
	})

	games, err := sdk.NewClient(ts.URL).ListGames(context.Background())
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "g1", games[0].GameID)
	assert.Equal(t, 2, games[0].Players)
}

func TestClientCreateGame(t *testing.T) {
	var gotBody map[string]any
	ts := apiStub(t, map[string]func(http.ResponseWriter, *http.Request){
		"/api/games": func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			writeEnvelope(w, http.StatusCreated, map[string]any{
				"success": true,
				"data":    map[string]any{"gameId": "g1"},
			})
		},
	})

	info, err := sdk.NewClient(ts.URL).CreateGame(context.Background(), "g1", sdk.GameConfig{
		SmallBlind: 10,
		BigBlind:   20,
	})
	require.NoError(t, err)
	assert.Equal(t, "g1", info.GameID)
	assert.Equal(t, "g1", gotBody["gameId"])

	cfg, ok := gotBody["config"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 10, cfg["smallBlindAmount"])
}

func TestClientSurfacesAPIError(t *testing.T) {
	ts := apiStub(t, map[string]func(http.ResponseWriter, *http.Request){
		"/api/games/nope": func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, http.StatusNotFound, map[string]any{
				"success": false,
				"error":   "UnknownGame",
				"message": "unknown game",
			})
		},
	})

	_, err := sdk.NewClient(ts.URL).GameInfo(context.Background(), "nope")
	var apiErr *sdk.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "UnknownGame", apiErr.Code)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestClientGameStateViewer(t *testing.T) {
	ts := apiStub(t, map[string]func(http.ResponseWriter, *http.Request){
		"/api/games/g1/state": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "p1", r.URL.Query().Get("viewerId"))
			writeEnvelope(w, http.StatusOK, map[string]any{
				"success": true,
				"data": map[string]any{
					"gameId": "g1",
					"players": []map[string]any{
						{"playerId": "p1", "holeCards": []string{"As", "Kd"}},
					},
				},
			})
		},
	})

	state, err := sdk.NewClient(ts.URL).GameState(context.Background(), "g1", "p1")
	require.NoError(t, err)
	require.NotNil(t, state.Seat("p1"))
	assert.Equal(t, []string{"As", "Kd"}, state.Seat("p1").HoleCards)
}

func TestClientStats(t *testing.T) {
	ts := apiStub(t, map[string]func(http.ResponseWriter, *http.Request){
		"/stats": func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, http.StatusOK, map[string]any{
				"success": true,
				"data": map[string]any{
					"activeGames":      3,
					"connectedClients": 6,
					"totalGamesPlayed": 12,
					"serverUptime":     42.5,
				},
			})
		},
	})

	stats, err := sdk.NewClient(ts.URL).Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.ActiveGames)
	assert.Equal(t, 6, stats.ConnectedClients)
	assert.Equal(t, 12, stats.TotalGamesPlayed)
}
