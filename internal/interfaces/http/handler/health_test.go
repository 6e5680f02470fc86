package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler_Degraded(t *testing.T) {
	h := NewHealthHandler("0.1.0", map[string]Pinger{
		"database":      PingerFunc(func(context.Context) error { return nil }),
		"deletion_lock": PingerFunc(func(context.Context) error { return errors.New("connection refused") }),
	})
	engine := gin.New()
	h.RegisterRoutes(&engine.RouterGroup)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decodeMap(t, w)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "0.1.0", body["version"])
	checks := body["checks"].(map[string]any)
	assert.Equal(t, "up", checks["database"])
	assert.Equal(t, "down", checks["deletion_lock"])
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestHealthHandler_ChecksShareDeadline(t *testing.T) {
	var hasDeadline bool
	h := NewHealthHandler("0.1.0", map[string]Pinger{
		"database": PingerFunc(func(ctx context.Context) error {
			_, hasDeadline = ctx.Deadline()
			return nil
		}),
	})
	engine := gin.New()
	h.RegisterRoutes(&engine.RouterGroup)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, hasDeadline)
}
