package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mkovacevic/portfolioapi/internal/telemetry/metrics"

	"github.com/go-redis/redis_rate/v9"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

type rateLimiterStub struct {
	remaining int
	keys      []string
}

func (s *rateLimiterStub) Allow(_ context.Context, key string, _ redis_rate.Limit) (*redis_rate.Result, error) {
	s.keys = append(s.keys, key)
	allowed := 0
	if s.remaining > 0 {
		allowed = 1
		s.remaining--
	}
	return &redis_rate.Result{
		Allowed:    allowed,
		Remaining:  s.remaining,
		RetryAfter: time.Second,
	}, nil
}

func TestRateLimitMiddleware(t *testing.T) {
	metricsManager := metrics.NewTestManager()
	limiter := &rateLimiterStub{remaining: 2}

	handler := RateLimit(limiter, "login", 2, metricsManager)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handlerFunc := handler(next)

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/auth/login", nil)
		req.Header.Set("X-Real-Ip", "10.0.0.7")
		handlerFunc.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	}

	// third request goes over the limit
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/auth/login", nil)
	req.Header.Set("X-Real-Ip", "10.0.0.7")
	handlerFunc.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Contains(t, rr.Body.String(), "Too many requests, please try again later")
	assert.Equal(t, float64(1), testutil.ToFloat64(metricsManager.CounterRateLimitedRequests))

	// keys are scoped per router name and client ip
	for _, key := range limiter.keys {
		assert.Equal(t, "login:10.0.0.7", key)
	}
}
