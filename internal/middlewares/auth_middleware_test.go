package middlewares

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nahid2887/padzzey-sub000/internal/models"
	"github.com/nahid2887/padzzey-sub000/internal/responses"
	"github.com/nahid2887/padzzey-sub000/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier map[string]*utils.Claims

func (f fakeVerifier) Authenticate(_ context.Context, token string) (*utils.Claims, error) {
	if c, ok := f[token]; ok {
		return c, nil
	}
	return nil, errors.New("bad token")
}

type fakeAccounts map[uuid.UUID]models.Principal

func (f fakeAccounts) FindByID(_ context.Context, role models.Role, id uuid.UUID) (models.Principal, error) {
	p, ok := f[id]
	if !ok || p.Role() != role {
		return nil, nil
	}
	return p, nil
}

func claimsFor(id uuid.UUID, role string) *utils.Claims {
	return &utils.Claims{Role: role, RegisteredClaims: jwt.RegisteredClaims{Subject: id.String()}}
}

func newRouter(verifier TokenVerifier, accounts AccountFinder, roles ...models.Role) *gin.Engine {
	r := gin.New()
	r.GET("/me", Authenticate(verifier), RequireRole(accounts, roles...), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"role": c.MustGet(RoleKey), "id": c.MustGet(UserIDKey)})
	})
	return r
}

func get(r http.Handler, target, auth string) (*httptest.ResponseRecorder, responses.APIResponse) {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var body responses.APIResponse
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestAuthenticateAndRequireRole(t *testing.T) {
	agent := &models.Agent{}
	agent.ID = uuid.New()
	agent.IsActive = true
	idle := &models.Agent{}
	idle.ID = uuid.New()
	seller := &models.Seller{}
	seller.ID = uuid.New()
	seller.IsActive = true

	verifier := fakeVerifier{
		"agent-token":  claimsFor(agent.ID, "agent"),
		"idle-token":   claimsFor(idle.ID, "agent"),
		"seller-token": claimsFor(seller.ID, "seller"),
		"bad-subject":  claimsFor(uuid.Nil, "agent"),
		"bad-role":     claimsFor(agent.ID, "landlord"),
	}
	verifier["bad-subject"].Subject = "not-a-uuid"
	accounts := fakeAccounts{agent.ID: agent, idle.ID: idle, seller.ID: seller}
	r := newRouter(verifier, accounts, models.RoleAgent)

	tests := []struct {
		name   string
		target string
		auth   string
		status int
		msg    string
	}{
		{"missing header", "/me", "", http.StatusUnauthorized, "Authentication credentials were not provided"},
		{"wrong scheme", "/me", "Token agent-token", http.StatusUnauthorized, "Authentication credentials were not provided"},
		{"rejected token", "/me", "Bearer nope", http.StatusUnauthorized, "Invalid or expired token"},
		{"bad subject", "/me", "Bearer bad-subject", http.StatusUnauthorized, "Invalid token subject"},
		{"bad role", "/me", "Bearer bad-role", http.StatusUnauthorized, "Invalid token role"},
		{"other role", "/me", "Bearer seller-token", http.StatusForbidden, "You do not have permission to perform this action."},
		{"inactive account", "/me", "Bearer idle-token", http.StatusUnauthorized, "User not found or inactive"},
		{"agent", "/me", "Bearer agent-token", http.StatusOK, ""},
		{"query token", "/me?token=agent-token", "", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := get(r, tt.target, tt.auth)
			require.Equal(t, tt.status, w.Code)
			if tt.msg != "" {
				assert.Equal(t, "error", body.Status)
				assert.Equal(t, tt.msg, body.Message)
			}
		})
	}
}

func TestRequireRoleWithoutAuthenticate(t *testing.T) {
	r := gin.New()
	r.GET("/x", RequireRole(fakeAccounts{}, models.RoleBuyer), func(c *gin.Context) { c.Status(http.StatusOK) })
	w, _ := get(r, "/x", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
