// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter keeps one token bucket per key (client IP, email). Idle buckets
// are dropped after expiry. Safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   rate.Limit
	burst   int
	expiry  time.Duration
	now     func() time.Time
}

type client struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// New returns a Limiter allowing rps sustained requests per key with the
// given burst. A sweeper goroutine runs until stop is closed; pass nil to
// sweep forever.
func New(rps float64, burst int, expiry time.Duration, stop <-chan struct{}) *Limiter {
	l := &Limiter{
		clients: make(map[string]*client),
		limit:   rate.Limit(rps),
		burst:   burst,
		expiry:  expiry,
		now:     time.Now,
	}
	go l.sweep(stop)
	return l
}

// Every converts an interval into a per-second rate ("one per 6s" -> 1/6).
func Every(interval time.Duration) float64 {
	return float64(rate.Every(interval))
}

// Allow consumes one token for key.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	c, ok := l.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	c.lastAccess = l.now()
	l.mu.Unlock()
	return c.limiter.Allow()
}

// Reset forgets key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	delete(l.clients, key)
	l.mu.Unlock()
}

func (l *Limiter) sweep(stop <-chan struct{}) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			l.mu.Lock()
			for k, c := range l.clients {
				if l.now().Sub(c.lastAccess) > l.expiry {
					delete(l.clients, k)
				}
			}
			l.mu.Unlock()
		}
	}
}

// ClientIP returns the remote address without port. Forwarding headers are
// client-controlled and ignored here; behind a trusted proxy, middleware.RealIP
// rewrites RemoteAddr before this runs.
func ClientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// LoginLimiter throttles login attempts per client IP and per account.
type LoginLimiter struct {
	ip    *Limiter
	email *Limiter
}

// NewLoginLimiter allows rps attempts per second per IP with the given
// burst, and a fifth of that per email address.
func NewLoginLimiter(rps float64, burst int, stop <-chan struct{}) *LoginLimiter {
	emailBurst := burst / 2
	if emailBurst < 1 {
		emailBurst = 1
	}
	return &LoginLimiter{
		ip:    New(rps, burst, 10*time.Minute, stop),
		email: New(rps/5, emailBurst, 30*time.Minute, stop),
	}
}

// Check reports whether the attempt may proceed and, if not, why.
func (ll *LoginLimiter) Check(r *http.Request, email string) (bool, string) {
	if !ll.ip.Allow(ClientIP(r)) {
		return false, "Too many login attempts. Please wait a minute before trying again."
	}
	if key := strings.ToLower(strings.TrimSpace(email)); key != "" && !ll.email.Allow(key) {
		return false, "Too many login attempts for this account. Please wait a few minutes."
	}
	return true, ""
}

// ResetEmail clears the per-account bucket after a successful login.
func (ll *LoginLimiter) ResetEmail(email string) {
	if key := strings.ToLower(strings.TrimSpace(email)); key != "" {
		ll.email.Reset(key)
	}
}
