// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/taibuivan/panelkit/internal/platform/apperr"
	"github.com/taibuivan/panelkit/internal/platform/constants"
	"github.com/taibuivan/panelkit/internal/platform/respond"
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP. Idle buckets are
// swept until the context passed to [NewRateLimiter] is cancelled.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time
}

// NewRateLimiter starts the sweeper and returns a limiter allowing rps
// requests per second with the given burst.
func NewRateLimiter(ctx context.Context, rps float64, burst int) *RateLimiter {
	limiter := &RateLimiter{
		buckets: make(map[string]*bucket),
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: constants.RateLimitClientTTL,
		now:     time.Now,
	}
	go limiter.sweep(ctx, constants.RateLimitCleanupInterval)
	return limiter
}

func (limiter *RateLimiter) sweep(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.evictIdle()
		}
	}
}

func (limiter *RateLimiter) evictIdle() {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	cutoff := limiter.now().Add(-limiter.idleTTL)
	for ip, entry := range limiter.buckets {
		if entry.lastSeen.Before(cutoff) {
			delete(limiter.buckets, ip)
		}
	}
}

// reserve reports whether a request from ip may proceed and, if not, how
// long until a token frees up.
func (limiter *RateLimiter) reserve(ip string) (bool, time.Duration) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	now := limiter.now()
	entry, ok := limiter.buckets[ip]
	if !ok {
		entry = &bucket{limiter: rate.NewLimiter(limiter.limit, limiter.burst)}
		limiter.buckets[ip] = entry
	}
	entry.lastSeen = now

	reservation := entry.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return false, time.Second
	}
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Handler is the middleware. Rejected requests get 429 with Retry-After.
func (limiter *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		allowed, wait := limiter.reserve(ClientIP(request))
		if !allowed {
			seconds := int(math.Ceil(wait.Seconds()))
			writer.Header().Set("Retry-After", strconv.Itoa(seconds))
			respond.Error(writer, request, apperr.RateLimited(seconds))
			return
		}
		next.ServeHTTP(writer, request)
	})
}
