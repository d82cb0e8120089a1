// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Limiter allows up to limit calls per key in a fixed window that starts
// with the key's first call. Expired windows are swept by the cache.
// It is safe for concurrent use.
type Limiter struct {
	mu     sync.Mutex
	c      *gocache.Cache
	limit  int
	window time.Duration
}

// New creates a limiter allowing limit calls per window.
func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		c:      gocache.New(window, 2*window),
		limit:  limit,
		window: window,
	}
}

// Allow records a call for key and reports whether it is within the limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.c.Add(key, 1, l.window); err == nil {
		return l.limit > 0
	}
	n, err := l.c.IncrementInt(key, 1)
	if err != nil {
		// Window expired between Add and Increment.
		l.c.Set(key, 1, l.window)
		return l.limit > 0
	}
	return n <= l.limit
}

// Remaining returns how many calls are left for key in its current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.c.Get(key)
	if !ok {
		return l.limit
	}
	if rem := l.limit - v.(int); rem > 0 {
		return rem
	}
	return 0
}

// Reset clears the window for key.
func (l *Limiter) Reset(key string) {
	l.c.Delete(key)
}

// ClientIP extracts the client IP, preferring X-Forwarded-For then
// X-Real-IP over RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// LoginLimiter limits admin sign-in attempts per client IP and per email.
type LoginLimiter struct {
	ip    *Limiter
	email *Limiter
}

// NewLoginLimiter allows 10 attempts per IP per minute and 5 per email per
// 5 minutes.
func NewLoginLimiter() *LoginLimiter {
	return NewLoginLimiterWithConfig(10, time.Minute, 5, 5*time.Minute)
}

func NewLoginLimiterWithConfig(ipLimit int, ipWindow time.Duration, emailLimit int, emailWindow time.Duration) *LoginLimiter {
	return &LoginLimiter{
		ip:    New(ipLimit, ipWindow),
		email: New(emailLimit, emailWindow),
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Check records an attempt and returns (allowed, reason).
func (ll *LoginLimiter) Check(r *http.Request, email string) (bool, string) {
	if !ll.ip.Allow(ClientIP(r)) {
		return false, "Too many login attempts. Please wait a minute before trying again."
	}
	if k := emailKey(email); k != "" && !ll.email.Allow(k) {
		return false, "Too many login attempts for this account. Please wait a few minutes."
	}
	return true, ""
}

// ResetEmail clears the per-email window after a successful login.
func (ll *LoginLimiter) ResetEmail(email string) {
	if k := emailKey(email); k != "" {
		ll.email.Reset(k)
	}
}
