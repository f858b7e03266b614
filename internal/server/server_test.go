package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nahid2887/padzzey-sub000/internal/config"
	"github.com/nahid2887/padzzey-sub000/internal/mailer"
	"github.com/nahid2887/padzzey-sub000/internal/repositories"
	"github.com/nahid2887/padzzey-sub000/internal/testutil"
)

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memoryCache) CacheGet(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryCache) CacheSet(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

type sentMail struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (s *sentMail) Send(_ context.Context, m mailer.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, m)
	return nil
}

type testServer struct {
	t      *testing.T
	router http.Handler
	store  *repositories.Store
	mail   *sentMail
	media  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.Config{
		GinMode:          "test",
		CORSOrigins:      []string{"*"},
		OTPExpiryMinutes: 10,
		TelemetryService: "pdezzy-test",
		Auth: config.AuthConfig{
			AccessTokenSecret:  "access-secret",
			RefreshTokenSecret: "refresh-secret",
			AccessTokenTTL:     time.Hour,
			RefreshTokenTTL:    24 * time.Hour,
		},
		Media: config.MediaConfig{Root: t.TempDir(), URL: "/media/"},
	}
	mail := &sentMail{}
	db := testutil.NewDB(t)
	router, err := NewRouter(cfg, zerolog.Nop(), Deps{
		DB:        db,
		Blacklist: testutil.NewMemoryBlacklist(),
		Cache:     &memoryCache{data: map[string][]byte{}},
		Mailer:    mail,
	})
	require.NoError(t, err)
	return &testServer{t: t, router: router, store: repositories.NewStore(db), mail: mail, media: cfg.Media.Root}
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (s *testServer) do(method, target, token string, body any) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

// register signs up a member and returns its id and access token.
func (s *testServer) register(role, username string) (string, string) {
	s.t.Helper()
	w, env := s.do(http.MethodPost, "/api/v1/"+role+"/auth/register", "", map[string]string{
		"username":         username,
		"email":            username + "@example.com",
		"password":         "s3cret-pass",
		"password_confirm": "s3cret-pass",
		"first_name":       "Test",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())

	var data struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		UserType string `json:"user_type"`
		Tokens   struct {
			Access  string `json:"access"`
			Refresh string `json:"refresh"`
		} `json:"tokens"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &data))
	require.Equal(s.t, role, data.UserType)
	require.NotEmpty(s.t, data.Tokens.Refresh)
	return data.User.ID, data.Tokens.Access
}

func TestHealthAndMedia(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	require.NoError(t, os.WriteFile(filepath.Join(s.media, "hello.txt"), []byte("hi"), 0o644))
	w, _ = s.do(http.MethodGet, "/media/hello.txt", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hi", w.Body.String())
}

func TestAuthenticationOverHTTP(t *testing.T) {
	s := newTestServer(t)
	_, seller := s.register("seller", "sam")
	_, buyer := s.register("buyer", "bea")

	w, env := s.do(http.MethodPost, "/api/v1/seller/auth/register", "", map[string]string{
		"username":         "sam",
		"email":            "other@example.com",
		"password":         "s3cret-pass",
		"password_confirm": "s3cret-pass",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "A user with this username already exists", env.Message)

	w, _ = s.do(http.MethodPost, "/api/v1/seller/auth/login", "", map[string]string{
		"email": "sam@example.com", "password": "s3cret-pass",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Result().Cookies())

	w, _ = s.do(http.MethodPost, "/api/v1/seller/auth/login", "", map[string]string{
		"email": "sam@example.com", "password": "wrong-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(http.MethodGet, "/api/v1/seller/profile", seller, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(http.MethodGet, "/api/v1/seller/profile", buyer, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(http.MethodGet, "/api/v1/seller/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(http.MethodPost, "/api/v1/seller/auth/logout", seller, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, env = s.do(http.MethodGet, "/api/v1/seller/profile", seller, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token has been revoked", env.Message)
}

func TestSellingRequestOverHTTP(t *testing.T) {
	s := newTestServer(t)
	agentID, agent := s.register("agent", "alice")
	_, seller := s.register("seller", "sam")

	w, env := s.do(http.MethodPost, "/api/v1/seller/selling-requests", seller, map[string]any{
		"agent_id":       agentID,
		"selling_reason": "Relocating",
		"contact_name":   "Sam Seller",
		"contact_email":  "sam@example.com",
		"contact_phone":  "555-0100",
		"asking_price":   425000,
		"start_date":     "2026-11-01",
		"end_date":       "2026-12-01",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "pending", created.Status)

	w, _ = s.do(http.MethodPost, "/api/v1/seller/selling-requests", seller, map[string]any{
		"selling_reason": "Relocating",
		"contact_name":   "Sam Seller",
		"contact_email":  "sam@example.com",
		"contact_phone":  "555-0100",
		"asking_price":   425000,
		"start_date":     "11/01/2026",
		"end_date":       "2026-12-01",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(http.MethodGet, "/api/v1/agent/selling-requests", agent, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var assigned []struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &assigned))
	require.Len(t, assigned, 1)
	assert.Equal(t, created.ID, assigned[0].ID)

	target := "/api/v1/agent/selling-requests/" + created.ID + "/status"
	w, _ = s.do(http.MethodPatch, target, agent, map[string]string{"status": "maybe"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(http.MethodPatch, target, agent, map[string]string{"status": "accepted"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Selling request accepted successfully", env.Message)

	w, env = s.do(http.MethodGet, "/api/v1/seller/notifications/unread-count", seller, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"unread_count":1}`, string(env.Data))

	// Agents cannot reach seller endpoints.
	w, _ = s.do(http.MethodGet, "/api/v1/seller/selling-requests", agent, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMLSUnconfigured(t *testing.T) {
	s := newTestServer(t)
	_, buyer := s.register("buyer", "bea")

	w, env := s.do(http.MethodGet, "/api/v1/buyer/mls/featured", buyer, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "MLS service is not configured", env.Message)
}

func TestForgotPasswordSendsMail(t *testing.T) {
	s := newTestServer(t)
	s.register("buyer", "bea")

	w, _ := s.do(http.MethodPost, "/api/v1/common/forgot-password", "", map[string]string{
		"email": "bea@example.com", "user_type": "buyer",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	s.mail.mu.Lock()
	defer s.mail.mu.Unlock()
	require.Len(t, s.mail.sent, 1)
	assert.Equal(t, "bea@example.com", s.mail.sent[0].To)
}

func TestCORS(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/buyer/listings", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	c := corsConfig([]string{"https://app.example.com"})
	assert.False(t, c.AllowAllOrigins)
	assert.True(t, c.AllowCredentials)
	assert.Equal(t, []string{"https://app.example.com"}, c.AllowOrigins)

	assert.True(t, corsConfig(nil).AllowAllOrigins)
}
