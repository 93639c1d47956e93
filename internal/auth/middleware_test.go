package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seen struct {
	userID  string
	tier    string
	isAdmin bool
}

func newRouter(t *testing.T, mw ...gin.HandlerFunc) (*gin.Engine, *seen) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret-key-for-testing")
	gin.SetMode(gin.TestMode)

	s := &seen{}
	r := gin.New()
	handlers := append(mw, func(c *gin.Context) {
		s.userID, _ = GetUserID(c)
		s.tier = GetTier(c)
		s.isAdmin = c.GetBool(ContextIsAdmin)
		c.Status(http.StatusOK)
	})
	r.GET("/", handlers...)

	return r, s
}

func doRequest(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestOptionalAuthMiddleware_SetsClaims(t *testing.T) {
	r, s := newRouter(t, OptionalAuthMiddleware())

	token, err := GenerateJWT("user-1", "a@example.com", "pro", false)
	require.NoError(t, err)

	w := doRequest(r, "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", s.userID)
	assert.Equal(t, "pro", s.tier)
}

func TestOptionalAuthMiddleware_InvalidTokenIsAnonymous(t *testing.T) {
	r, s := newRouter(t, OptionalAuthMiddleware())

	w := doRequest(r, "Bearer not-a-token")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, s.userID)
	assert.Empty(t, s.tier)
}

func TestAuthMiddleware_RequiresHeader(t *testing.T) {
	r, _ := newRouter(t, AuthMiddleware())

	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "Token abc").Code)
}

func TestAdminOnly(t *testing.T) {
	r, s := newRouter(t, AuthMiddleware(), AdminOnly())

	userToken, err := GenerateJWT("user-1", "a@example.com", "basic", false)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, doRequest(r, "Bearer "+userToken).Code)

	adminToken, err := GenerateJWT("admin-1", "ops@example.com", "", true)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, doRequest(r, "Bearer "+adminToken).Code)
	assert.True(t, s.isAdmin)
}
