package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cogniscale/cortex/api/auth"
	"github.com/cogniscale/cortex/config"
)

func TestLimiter_AllowRespectsBurstThenBlocks(t *testing.T) {
	l := NewLimiter(context.Background(), config.RateLimitConfig{UserRPM: 60, Burst: 2}, nil)
	assert.True(t, l.Allow(auth.RoleUser, "u1", "/dispatch"))
	assert.True(t, l.Allow(auth.RoleUser, "u1", "/dispatch"))
	assert.False(t, l.Allow(auth.RoleUser, "u1", "/dispatch"))
}

func TestLimiter_SeparateBucketsPerIdentity(t *testing.T) {
	l := NewLimiter(context.Background(), config.RateLimitConfig{UserRPM: 60, Burst: 1}, nil)
	assert.True(t, l.Allow(auth.RoleUser, "u1", "/dispatch"))
	assert.True(t, l.Allow(auth.RoleUser, "u2", "/dispatch"))
}

func TestLimiter_MiddlewareReturns429WhenExhausted(t *testing.T) {
	l := NewLimiter(context.Background(), config.RateLimitConfig{GuestRPM: 60, Burst: 1}, nil)
	handler := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest(http.MethodGet, "/dispatch", nil)
	r.RemoteAddr = "10.0.0.1:1234"

	w1 := httptest.NewRecorder()
	handler.ServeHTTP(w1, r)
	assert.Equal(t, http.StatusOK, w1.Code)

	w2 := httptest.NewRecorder()
	handler.ServeHTTP(w2, r)
	assert.Equal(t, http.StatusTooManyRequests, w2.Code)
}
