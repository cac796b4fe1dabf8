package middleware

import (
	"net/http"
	"sync"
	"time"

	"snp/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// rateEntry tracks request counts per IP within a fixed window.
type rateEntry struct {
	count     int
	windowEnd time.Time
	mu        sync.Mutex
}

// ipLimiter is one independent per-IP counter map.
type ipLimiter struct {
	name    string
	limit   int
	window  time.Duration
	message string

	mu      sync.Mutex
	entries map[string]*rateEntry
}

var (
	limitersMu sync.Mutex
	limiters   []*ipLimiter
	purgeOnce  sync.Once
)

func newIPLimiter(name string, limit int, window time.Duration, message string) *ipLimiter {
	l := &ipLimiter{
		name:    name,
		limit:   limit,
		window:  window,
		message: message,
		entries: make(map[string]*rateEntry),
	}
	limitersMu.Lock()
	limiters = append(limiters, l)
	limitersMu.Unlock()
	purgeOnce.Do(func() { go purgeExpiredEntries() })
	return l
}

func (l *ipLimiter) handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		l.mu.Lock()
		entry, exists := l.entries[ip]
		if !exists {
			entry = &rateEntry{}
			l.entries[ip] = entry
		}
		l.mu.Unlock()

		entry.mu.Lock()
		defer entry.mu.Unlock()

		now := time.Now()
		if now.After(entry.windowEnd) {
			entry.count = 0
			entry.windowEnd = now.Add(l.window)
		}

		entry.count++
		if entry.count > l.limit {
			c.Header("Retry-After", entry.windowEnd.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(l.message))
			return
		}
		c.Next()
	}
}

// RateLimiter is the general per-IP limiter for the whole API.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return newIPLimiter("api", limit, window,
		"Demasiadas solicitudes. Intente nuevamente en un momento.").handler()
}

// SubmitRateLimiter limits ticket submissions per IP. Each submission fans out
// to several third-party relays, so it gets a much tighter budget.
func SubmitRateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return newIPLimiter("submit", limit, window,
		"Demasiados tickets enviados. Intente nuevamente en un minuto.").handler()
}

// ── Purge goroutine ───────────────────────────────────────────────────────────
// Periodically removes expired entries so IPs that never return do not
// accumulate.

const purgeInterval = 5 * time.Minute

func purgeExpiredEntries() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()

		limitersMu.Lock()
		ls := append([]*ipLimiter(nil), limiters...)
		limitersMu.Unlock()

		for _, l := range ls {
			l.mu.Lock()
			purged := 0
			for ip, entry := range l.entries {
				entry.mu.Lock()
				if now.After(entry.windowEnd) {
					delete(l.entries, ip)
					purged++
				}
				entry.mu.Unlock()
			}
			remaining := len(l.entries)
			l.mu.Unlock()

			if purged > 0 {
				log.Debug().
					Str("limiter", l.name).
					Int("entries_purged", purged).
					Int("entries_remaining", remaining).
					Msg("rate limiter map purged")
			}
		}
	}
}
