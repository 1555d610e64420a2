package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ecotrace/internal/auth"
	"ecotrace/internal/cache"
	"ecotrace/internal/config"
	"ecotrace/internal/metrics"
	"ecotrace/internal/repositories/memory"
	"ecotrace/internal/response"
	"ecotrace/internal/services"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Error     *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
	RequestID string `json:"request_id"`
}

type testServer struct {
	handler http.Handler
	store   *memory.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	cfg := &config.Config{
		Database: config.DatabaseConfig{Driver: config.StorageMemory},
		Auth:     config.AuthConfig{BCryptCost: bcrypt.MinCost},
		Cache:    config.CacheConfig{Provider: "memory", LeaderboardTTL: time.Minute},
	}

	store := memory.NewStore()
	c := cache.NewMemoryCache(&cache.Config{TTL: time.Minute}, logger)
	sc, err := services.NewServiceCollection(store, c, cfg, m, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	tokens, err := auth.NewTokenManager("test-secret-at-least-32-characters-long", "ecotrace", time.Hour)
	require.NoError(t, err)

	handler := SetupRouter(Dependencies{
		Services:        sc,
		Tokens:          tokens,
		ResponseBuilder: response.NewBuilder(nil, logger, m),
		Gatherer:        reg,
		Logger:          logger,
	})
	return &testServer{handler: handler, store: store}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func (s *testServer) registerAndLogin(t *testing.T, username string) string {
	t.Helper()
	rec, _ := s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, env := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    username + "@example.com",
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var tok struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &tok))
	require.Equal(t, "Bearer", tok.TokenType)
	return tok.AccessToken
}

func TestEndToEndFlow(t *testing.T) {
	s := newTestServer(t)
	alice := s.registerAndLogin(t, "alice")
	bob := s.registerAndLogin(t, "bob")

	rec, env := s.do(t, http.MethodPost, "/api/v1/activities", alice, map[string]interface{}{
		"activity_type": "car",
		"quantity":      10,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.RequestID)

	var logged services.LogActivityResult
	require.NoError(t, json.Unmarshal(env.Data, &logged))
	assert.InDelta(t, 2.1, logged.Emission.EmissionKg, 1e-9)
	assert.False(t, logged.BadgeAwarded)

	rec, env = s.do(t, http.MethodPost, "/api/v1/activities", bob, map[string]interface{}{
		"activity_type": "bus",
		"quantity":      "5",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, &logged))
	assert.True(t, logged.BadgeAwarded)

	rec, env = s.do(t, http.MethodGet, "/api/v1/dashboard", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var dashboard struct {
		ActivityLabels []string  `json:"activity_labels"`
		EmissionValues []float64 `json:"emission_values"`
		TotalEmissions float64   `json:"total_emissions"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &dashboard))
	assert.Equal(t, []string{"car"}, dashboard.ActivityLabels)
	assert.InDelta(t, 2.1, dashboard.TotalEmissions, 1e-9)

	rec, env = s.do(t, http.MethodGet, "/api/v1/leaderboard", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rows []struct {
		Rank     int    `json:"rank"`
		Username string `json:"username"`
		Badges   int    `json:"badges"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "bob", rows[0].Username)
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, 1, rows[0].Badges)
	assert.Equal(t, "alice", rows[1].Username)
}

func TestErrorStatuses(t *testing.T) {
	s := newTestServer(t)
	token := s.registerAndLogin(t, "alice")

	tests := []struct {
		name    string
		method  string
		path    string
		token   string
		body    interface{}
		status  int
		errType string
	}{
		{"duplicate registration", http.MethodPost, "/api/v1/auth/register", "",
			map[string]string{"username": "alice", "email": "alice@example.com", "password": "correct-horse"},
			http.StatusConflict, services.ErrTypeConflict},
		{"invalid registration", http.MethodPost, "/api/v1/auth/register", "",
			map[string]string{"username": "a", "email": "nope", "password": "x"},
			http.StatusBadRequest, services.ErrTypeValidation},
		{"bad login", http.MethodPost, "/api/v1/auth/login", "",
			map[string]string{"email": "alice@example.com", "password": "wrong-password"},
			http.StatusUnauthorized, services.ErrTypeAuthentication},
		{"malformed body", http.MethodPost, "/api/v1/auth/login", "", `{"email":`,
			http.StatusBadRequest, services.ErrTypeValidation},
		{"no token", http.MethodGet, "/api/v1/dashboard", "", nil,
			http.StatusUnauthorized, services.ErrTypeAuthentication},
		{"negative quantity", http.MethodPost, "/api/v1/activities", token,
			map[string]interface{}{"activity_type": "car", "quantity": -3},
			http.StatusBadRequest, services.ErrTypeValidation},
		{"non numeric quantity", http.MethodPost, "/api/v1/activities", token,
			map[string]interface{}{"activity_type": "car", "quantity": "lots"},
			http.StatusBadRequest, services.ErrTypeValidation},
		{"missing quantity", http.MethodPost, "/api/v1/activities", token,
			map[string]interface{}{"activity_type": "car"},
			http.StatusBadRequest, services.ErrTypeValidation},
		{"unknown route", http.MethodGet, "/api/v1/nope", "", nil,
			http.StatusNotFound, services.ErrTypeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := s.do(t, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.errType, env.Error.Type)
		})
	}

	_, activities, _, _ := s.store.Counts()
	assert.Zero(t, activities)
}

func TestTokenForDeletedUserIsNotFound(t *testing.T) {
	s := newTestServer(t)
	tokens, err := auth.NewTokenManager("test-secret-at-least-32-characters-long", "ecotrace", time.Hour)
	require.NoError(t, err)
	ghost, _, err := tokens.Issue(999)
	require.NoError(t, err)

	rec, env := s.do(t, http.MethodGet, "/api/v1/dashboard", ghost, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, services.ErrTypeNotFound, env.Error.Type)

	rec, _ = s.do(t, http.MethodPost, "/api/v1/activities", ghost, map[string]interface{}{
		"activity_type": "car", "quantity": 1,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPublicEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodGet, "/api/v1/emission-factors", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var factors []struct {
		ActivityType string  `json:"activity_type"`
		KgPerUnit    float64 `json:"kg_per_unit"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &factors))
	assert.Len(t, factors, 6)

	rec, env = s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	rec, _ = s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ecotrace_http_requests_total")

	rec, _ = s.do(t, http.MethodDelete, "/api/v1/leaderboard", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
