package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"triplemerge/internal/auth"
	"triplemerge/internal/cache"
	"triplemerge/internal/config"
	"triplemerge/internal/database"
	"triplemerge/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router *gin.Engine
	db     database.Database
	cache  *cache.MemoryCache
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	c := cache.NewMemoryCache()
	cfg := &config.Config{Auth: config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour}}
	tokens := auth.NewTokenService(cfg, c)

	sessions := NewSessionHandler(tokens, db)
	leaderboards := NewLeaderboardHandler(db, c, time.Minute, 10)

	r := gin.New()
	r.POST("/api/session", sessions.CreateSession)
	r.GET("/api/public/leaderboard", leaderboards.GetLeaderboard)

	api := r.Group("/api")
	api.Use(AuthMiddleware(tokens))
	api.GET("/session", sessions.Me)
	api.DELETE("/session", sessions.Logout)
	api.GET("/best", leaderboards.GetBestScore)

	return &testServer{router: r, db: db, cache: c}
}

func (s *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) newSession(t *testing.T, name string) models.SessionResponse {
	t.Helper()
	w := s.do(http.MethodPost, "/api/session", "", `{"name":"`+name+`"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp models.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestServer(t)
	session := s.newSession(t, "alice")
	assert.Equal(t, "alice", session.Player.Name)

	w := s.do(http.MethodGet, "/api/session", session.Token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), session.Player.ID)

	w = s.do(http.MethodDelete, "/api/session", session.Token, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/session", session.Token, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionWithoutBodyGetsDefaultName(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodPost, "/api/session", "", "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Player-")
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/best", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/best", "garbage", "").Code)
}

func TestBestScore(t *testing.T) {
	s := newTestServer(t)
	session := s.newSession(t, "bob")

	require.NoError(t, s.db.SaveGame(&models.GameRecord{
		PlayerID: session.Player.ID, Score: 81, BoardSize: 4, Over: true,
	}))

	w := s.do(http.MethodGet, "/api/best", session.Token, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.BestScoreResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 81, resp.BestScore)
	assert.Equal(t, session.Player.ID, resp.PlayerID)
}

func TestLeaderboard(t *testing.T) {
	s := newTestServer(t)
	a := s.newSession(t, "alice")
	b := s.newSession(t, "bob")

	require.NoError(t, s.db.SaveGame(&models.GameRecord{PlayerID: a.Player.ID, Score: 120, BoardSize: 4}))
	require.NoError(t, s.db.SaveGame(&models.GameRecord{PlayerID: b.Player.ID, Score: 300, BoardSize: 4}))

	w := s.do(http.MethodGet, "/api/public/leaderboard?type=all&limit=5", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.LeaderboardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.LeaderboardAll, resp.Type)
	require.Len(t, resp.Rankings, 2)
	assert.Equal(t, "bob", resp.Rankings[0].PlayerName)
	assert.Equal(t, 2, resp.Rankings[1].Rank)

	// Served from cache until invalidated
	require.NoError(t, s.db.SaveGame(&models.GameRecord{PlayerID: a.Player.ID, Score: 999, BoardSize: 4}))
	w = s.do(http.MethodGet, "/api/public/leaderboard?type=all&limit=1", "", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Rankings, 1)
	assert.Equal(t, 300, resp.Rankings[0].Score)

	require.NoError(t, cache.InvalidateLeaderboards(s.cache))
	w = s.do(http.MethodGet, "/api/public/leaderboard?type=all", "", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 999, resp.Rankings[0].Score)
}

func TestLeaderboardRejectsUnknownType(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/api/public/leaderboard?type=yearly", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEmptyLeaderboardIsAnArray(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/api/public/leaderboard", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"rankings":[]`)
}
