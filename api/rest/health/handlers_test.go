package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func serve(t *testing.T, h gin.HandlerFunc) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/health", h)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestHandler(t *testing.T) {
	w, resp := serve(t, Handler(pinger{}, pinger{}))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "up", resp.Database)
	assert.Equal(t, "up", resp.Cache)
}

func TestHandler_Degraded(t *testing.T) {
	w, resp := serve(t, Handler(pinger{}, pinger{err: errors.New("connection refused")}))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "down", resp.Cache)
}

func TestHandler_NoProbes(t *testing.T) {
	w, resp := serve(t, Handler(nil, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, resp.Database)
}
