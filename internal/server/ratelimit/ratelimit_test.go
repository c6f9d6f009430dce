package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_ExportBudget(t *testing.T) {
	l := New(DefaultRules())
	defer l.Stop()

	for i := 0; i < 5; i++ {
		assert.True(t, l.Allow("10.0.0.1", "/exports"), "request %d should be allowed", i)
	}
	assert.False(t, l.Allow("10.0.0.1", "/exports"))

	// Another client has its own bucket.
	assert.True(t, l.Allow("10.0.0.2", "/exports"))
}

func TestLimiter_RuleMatchOrder(t *testing.T) {
	l := New(DefaultRules())
	defer l.Stop()

	// Auth routes match the /auth/ rule, not the catch-all.
	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow("10.0.0.1", "/auth/login"))
	}
	assert.False(t, l.Allow("10.0.0.1", "/auth/login"))

	// The catch-all bucket is untouched.
	assert.True(t, l.Allow("10.0.0.1", "/health"))
}

func TestLimiter_Sweep(t *testing.T) {
	l := New(DefaultRules())
	defer l.Stop()

	l.Allow("10.0.0.1", "/health")
	assert.Len(t, l.buckets, 1)

	l.sweep(0)
	assert.Len(t, l.buckets, 0)
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.RemoteAddr = "192.168.1.5:41000"
	assert.Equal(t, "192.168.1.5", ClientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", ClientIP(r))
}
