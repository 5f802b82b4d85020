package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newLimitedRouter(rps float64, burst int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(New(rps, burst).Handler())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func TestLimiterAllowsWithinBurst(t *testing.T) {
	router := newLimitedRouter(1, 2)

	for i := 0; i < 2; i++ {
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, recorder.Code)
	}
}

func TestLimiterRejectsBeyondBurst(t *testing.T) {
	router := newLimitedRouter(0.001, 1)

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))
	assert.Contains(t, second.Body.String(), "RATE_LIMITED")
}

func TestLimiterDefaultsBurst(t *testing.T) {
	limiter := New(5, 0)
	assert.Equal(t, 1, limiter.burst)
}
