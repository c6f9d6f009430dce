// Package ratelimit provides per-client token bucket rate limiting for
// the HTTP server. Export generation is expensive, so export routes get
// a tighter budget than the rest of the API.
package ratelimit

import (
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Rule describes the budget applied to a group of routes.
type Rule struct {
	PathPrefix string
	Capacity   float64
	RefillRate float64 // tokens per second
}

// DefaultRules returns the standard budgets: exports are limited to a
// handful per minute, auth endpoints slightly more, everything else is
// generous.
func DefaultRules() []Rule {
	return []Rule{
		{PathPrefix: "/exports", Capacity: 5, RefillRate: 5.0 / 60.0},
		{PathPrefix: "/auth/", Capacity: 10, RefillRate: 10.0 / 60.0},
		{PathPrefix: "/", Capacity: 120, RefillRate: 2.0},
	}
}

type bucket struct {
	tokens     float64
	capacity   float64
	refillRate float64
	lastRefill time.Time
}

func (b *bucket) take(now time.Time) bool {
	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens += elapsed * b.refillRate
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	b.lastRefill = now
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Limiter tracks token buckets per client IP and rule. Idle buckets are
// swept by a background goroutine until Stop is called.
type Limiter struct {
	mu      sync.Mutex
	rules   []Rule
	buckets map[string]*bucket
	seen    map[string]time.Time
	stop    chan struct{}
	stopped sync.Once
}

// New creates a Limiter with the given rules and starts the cleanup
// goroutine. Rules are matched in order, first prefix wins.
func New(rules []Rule) *Limiter {
	l := &Limiter{
		rules:   rules,
		buckets: make(map[string]*bucket),
		seen:    make(map[string]time.Time),
		stop:    make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Allow reports whether the client may proceed with a request to path.
func (l *Limiter) Allow(clientIP, path string) bool {
	rule, ok := l.match(path)
	if !ok {
		return true
	}

	key := clientIP + "|" + rule.PathPrefix
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: rule.Capacity, capacity: rule.Capacity, refillRate: rule.RefillRate, lastRefill: now}
		l.buckets[key] = b
	}
	l.seen[key] = now
	return b.take(now)
}

func (l *Limiter) match(path string) (Rule, bool) {
	for _, r := range l.rules {
		if strings.HasPrefix(path, r.PathPrefix) {
			return r, true
		}
	}
	return Rule{}, false
}

// Stop terminates the cleanup goroutine.
func (l *Limiter) Stop() {
	l.stopped.Do(func() { close(l.stop) })
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.sweep(10 * time.Minute)
		case <-l.stop:
			return
		}
	}
}

func (l *Limiter) sweep(maxIdle time.Duration) {
	cutoff := time.Now().Add(-maxIdle)
	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for key, last := range l.seen {
		if last.Before(cutoff) {
			delete(l.seen, key)
			delete(l.buckets, key)
			removed++
		}
	}
	if removed > 0 {
		log.Printf("Rate limiter cleanup: removed %d idle buckets", removed)
	}
}

// ClientIP extracts the client address from a request, preferring
// X-Forwarded-For when present.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.Index(fwd, ","); idx > 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
