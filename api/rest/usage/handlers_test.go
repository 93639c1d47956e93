package usage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"codeberg.org/mise/server/internal/auth"
	"codeberg.org/mise/server/internal/ledger"
	"codeberg.org/mise/server/internal/usage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*gin.Engine, *usage.MemoryStore) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret-key-for-testing")
	gin.SetMode(gin.TestMode)

	store := usage.NewMemoryStore()
	spend := ledger.NewService(ledger.NewMemoryStore(), ledger.Limits{Daily: 1, Monthly: 10})
	resolver := usage.NewResolver(store, spend, usage.Limits{FreeMonthly: 3, BasicMonthly: 10, InitialFreeRecipes: 2})

	r := gin.New()
	v1 := r.Group("/api/v1", auth.OptionalAuthMiddleware())
	RegisterRoutes(v1, resolver)

	return r, store
}

func get(t *testing.T, r *gin.Engine, target, token string) Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetUsage_Anonymous(t *testing.T) {
	r, store := setup(t)

	_, err := store.IncrementAnonymous(context.Background(), "device-1", "10.0.0.1", 2)
	require.NoError(t, err)

	resp := get(t, r, "/api/v1/usage?fingerprint=device-1", "")
	assert.True(t, resp.Allowed)
	assert.Equal(t, "none", resp.Tier)
	assert.Equal(t, 1, resp.Used)
	assert.Equal(t, 1, resp.Remaining)
}

func TestGetUsage_Untracked(t *testing.T) {
	r, _ := setup(t)

	resp := get(t, r, "/api/v1/usage", "")
	assert.False(t, resp.Allowed)
	assert.Equal(t, "no_tracking", resp.Reason)
}

func TestGetUsage_Pro(t *testing.T) {
	r, _ := setup(t)

	token, err := auth.GenerateJWT("user-1", "cook@example.com", "pro", false)
	require.NoError(t, err)

	resp := get(t, r, "/api/v1/usage", token)
	assert.True(t, resp.Allowed)
	assert.Equal(t, "pro", resp.Tier)
	assert.Equal(t, usage.Unlimited, resp.Remaining)
}
