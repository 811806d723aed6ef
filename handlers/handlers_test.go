package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dosada05/bracket-tracker/brackets"
	"github.com/Dosada05/bracket-tracker/db"
	"github.com/Dosada05/bracket-tracker/handlers"
	"github.com/Dosada05/bracket-tracker/models"
	"github.com/Dosada05/bracket-tracker/repositories"
	"github.com/Dosada05/bracket-tracker/routes"
	"github.com/Dosada05/bracket-tracker/services"
	"github.com/Dosada05/bracket-tracker/storage"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	conn, err := db.Connect("sqlite", ":memory:", 2*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.CreateSchema(context.Background(), conn, "sqlite"))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := brackets.NewEngine(brackets.WithBestOf(3), brackets.WithLogger(logger))
	competitorRepo := repositories.NewCompetitorRepository(conn)
	store := services.NewBracketStore(repositories.NewBracketRepository(conn), storage.NewNoopSnapshotArchive(), logger)

	bracketService := services.NewBracketService(store, competitorRepo, engine, logger)
	matchService := services.NewMatchService(store, engine, logger)
	competitorService := services.NewCompetitorService(conn, store, competitorRepo, bracketService, logger)

	router := chi.NewRouter()
	routes.SetupRoutes(
		router,
		handlers.NewBracketHandler(bracketService),
		handlers.NewMatchHandler(matchService),
		handlers.NewCompetitorHandler(competitorService),
		[]string{"*"},
	)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doRequest(t *testing.T, srv *httptest.Server, method, path, body string) (int, map[string]json.RawMessage) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) == 0 {
		return resp.StatusCode, nil
	}
	payload := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal(raw, &payload), string(raw))
	return resp.StatusCode, payload
}

func addCompetitors(t *testing.T, srv *httptest.Server, tournamentID string, ids ...string) {
	t.Helper()
	for i, id := range ids {
		body, err := json.Marshal(map[string]interface{}{"id": id, "name": "Player " + id, "skill": 100 - i})
		require.NoError(t, err)
		status, _ := doRequest(t, srv, http.MethodPost, "/tournaments/"+tournamentID+"/competitors", string(body))
		require.Equal(t, http.StatusCreated, status)
	}
}

func decodeBracket(t *testing.T, payload map[string]json.RawMessage) *models.BracketState {
	t.Helper()
	var st models.BracketState
	require.NoError(t, json.Unmarshal(payload["bracket"], &st))
	return &st
}

func decodeMatch(t *testing.T, payload map[string]json.RawMessage) *models.Match {
	t.Helper()
	var m *models.Match
	require.NoError(t, json.Unmarshal(payload["match"], &m))
	return m
}

func TestCompetitorEndpoints(t *testing.T) {
	srv := newTestServer(t)
	addCompetitors(t, srv, "t1", "c1", "c2")

	status, _ := doRequest(t, srv, http.MethodPost, "/tournaments/t1/competitors", `{"id":"c1","name":"Again"}`)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = doRequest(t, srv, http.MethodPost, "/tournaments/t1/competitors", `{"name":"  "}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = doRequest(t, srv, http.MethodPost, "/tournaments/t1/competitors", `{"name":"x","rank":1}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, payload := doRequest(t, srv, http.MethodPut, "/tournaments/t1/competitors/c2/seed", `{"placement":1}`)
	require.Equal(t, http.StatusOK, status)
	var seeded models.Competitor
	require.NoError(t, json.Unmarshal(payload["competitor"], &seeded))
	require.NotNil(t, seeded.Placement)
	assert.Equal(t, 1, *seeded.Placement)

	status, _ = doRequest(t, srv, http.MethodPut, "/tournaments/t1/competitors/c2/seed", `{"placement":0}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = doRequest(t, srv, http.MethodDelete, "/tournaments/t1/seeding", "")
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = doRequest(t, srv, http.MethodDelete, "/tournaments/t1/competitors/c2", "")
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = doRequest(t, srv, http.MethodDelete, "/tournaments/t1/competitors/c2", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, payload = doRequest(t, srv, http.MethodGet, "/tournaments/t1/competitors", "")
	require.Equal(t, http.StatusOK, status)
	var roster []models.Competitor
	require.NoError(t, json.Unmarshal(payload["competitors"], &roster))
	require.Len(t, roster, 1)
	assert.Equal(t, "c1", roster[0].ID)
}

func TestBracketNotGenerated(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/tournaments/t1/bracket", "/tournaments/t1/bracket/current", "/tournaments/t1/standings"} {
		status, _ := doRequest(t, srv, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, status, path)
	}

	status, payload := doRequest(t, srv, http.MethodGet, "/tournaments/t1", "")
	require.Equal(t, http.StatusOK, status)
	var overview services.TournamentOverview
	require.NoError(t, json.Unmarshal(payload["tournament"], &overview))
	assert.Nil(t, overview.Bracket)
	assert.Empty(t, overview.Competitors)
}

func TestGenerateWithSingleCompetitor(t *testing.T) {
	srv := newTestServer(t)
	addCompetitors(t, srv, "t1", "c1")

	status, payload := doRequest(t, srv, http.MethodPost, "/tournaments/t1/bracket", "")
	require.Equal(t, http.StatusCreated, status)
	st := decodeBracket(t, payload)
	assert.Empty(t, st.Brackets.Upper)
	assert.Len(t, st.Competitors, 1)

	status, payload = doRequest(t, srv, http.MethodGet, "/tournaments/t1/bracket/current", "")
	require.Equal(t, http.StatusOK, status)
	assert.Nil(t, decodeMatch(t, payload))
}

func TestMatchFlow(t *testing.T) {
	srv := newTestServer(t)
	addCompetitors(t, srv, "t1", "c1", "c2", "c3", "c4")

	status, payload := doRequest(t, srv, http.MethodPost, "/tournaments/t1/bracket", "")
	require.Equal(t, http.StatusCreated, status)
	st := decodeBracket(t, payload)
	require.Len(t, st.Brackets.Upper, 1)
	require.Len(t, st.Brackets.Upper[0], 2)

	status, payload = doRequest(t, srv, http.MethodGet, "/tournaments/t1/bracket/current", "")
	require.Equal(t, http.StatusOK, status)
	current := decodeMatch(t, payload)
	require.NotNil(t, current)
	assert.Equal(t, models.MatchStatusNextUp, current.Status)
	matchPath := "/tournaments/t1/matches/" + current.ID

	status, _ = doRequest(t, srv, http.MethodPut, matchPath+"/score", `{"score_p1":5,"score_p2":0}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = doRequest(t, srv, http.MethodPut, matchPath+"/score", `{"score_p1":1}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doRequest(t, srv, http.MethodPut, "/tournaments/t1/matches/missing/score", `{"score_p1":1,"score_p2":0}`)
	assert.Equal(t, http.StatusNotFound, status)

	status, payload = doRequest(t, srv, http.MethodPost, matchPath+"/start", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.MatchStatusInProgress, decodeMatch(t, payload).Status)

	status, payload = doRequest(t, srv, http.MethodPut, matchPath+"/score", `{"score_p1":1,"score_p2":0}`)
	require.Equal(t, http.StatusOK, status)
	scored := decodeMatch(t, payload)
	assert.Equal(t, 1, scored.ScoreP1)
	assert.Equal(t, models.MatchStatusInProgress, scored.Status)

	winner := current.Player1.CompetitorID
	status, payload = doRequest(t, srv, http.MethodPut, matchPath+"/winner", `{"winner_id":"`+winner+`"}`)
	require.Equal(t, http.StatusOK, status)
	decided := decodeMatch(t, payload)
	assert.Equal(t, models.MatchStatusCompleted, decided.Status)
	require.NotNil(t, decided.WinnerID)
	assert.Equal(t, winner, *decided.WinnerID)

	status, _ = doRequest(t, srv, http.MethodPut, matchPath+"/best-of", `{"best_of":5}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, payload = doRequest(t, srv, http.MethodGet, "/tournaments/t1/standings", "")
	require.Equal(t, http.StatusOK, status)
	var standings []models.Standing
	require.NoError(t, json.Unmarshal(payload["standings"], &standings))
	assert.Len(t, standings, 4)

	status, payload = doRequest(t, srv, http.MethodGet, "/tournaments/t1", "")
	require.Equal(t, http.StatusOK, status)
	var overview services.TournamentOverview
	require.NoError(t, json.Unmarshal(payload["tournament"], &overview))
	require.NotNil(t, overview.Bracket)
	require.NotNil(t, overview.CurrentMatch)
	assert.NotEqual(t, current.ID, overview.CurrentMatch.ID)
	assert.Len(t, overview.Competitors, 4)
}

func TestApplySeedingRegeneratesBracket(t *testing.T) {
	srv := newTestServer(t)
	addCompetitors(t, srv, "t1", "c1", "c2", "c3")

	status, _ := doRequest(t, srv, http.MethodPost, "/tournaments/t1/seeding", `{"scores":{"nobody":3}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, payload := doRequest(t, srv, http.MethodPost, "/tournaments/t1/seeding", `{"scores":{"c3":10,"c2":5}}`)
	require.Equal(t, http.StatusCreated, status)
	st := decodeBracket(t, payload)

	c3, ok := st.Competitor("c3")
	require.True(t, ok)
	require.NotNil(t, c3.Placement)
	assert.Equal(t, 1, *c3.Placement)
	c1, ok := st.Competitor("c1")
	require.True(t, ok)
	assert.Nil(t, c1.Placement)
}

func TestResetRosterEndpoint(t *testing.T) {
	srv := newTestServer(t)
	addCompetitors(t, srv, "t1", "c1", "c2", "c3")

	status, _ := doRequest(t, srv, http.MethodPost, "/tournaments/t1/bracket", "")
	require.Equal(t, http.StatusCreated, status)

	status, payload := doRequest(t, srv, http.MethodDelete, "/tournaments/t1/competitors", "")
	require.Equal(t, http.StatusOK, status)
	var removed int64
	require.NoError(t, json.Unmarshal(payload["removed"], &removed))
	assert.Equal(t, int64(3), removed)

	status, _ = doRequest(t, srv, http.MethodGet, "/tournaments/t1/bracket", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, payload = doRequest(t, srv, http.MethodGet, "/tournaments/t1/competitors", "")
	require.Equal(t, http.StatusOK, status)
	var roster []models.Competitor
	require.NoError(t, json.Unmarshal(payload["competitors"], &roster))
	assert.Empty(t, roster)
}
