// internal/app/system/ratelimit/ratelimit.go

// Package ratelimit throttles repeated sign-in attempts. Counting is a
// fixed window per key held in memory, so state resets on restart; for a
// single-instance course tool that trade-off is fine.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Sign-in attempt budgets. The per-address window catches scripted
// guessing from one host; the per-account window catches guessing spread
// across hosts against one login.
const (
	AddressLimit  = 10
	AddressWindow = time.Minute
	AccountLimit  = 5
	AccountWindow = 5 * time.Minute
)

// Limiter counts events per key inside a fixed window. Safe for
// concurrent use.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	span    time.Duration
}

type window struct {
	count     int
	expiresAt time.Time
}

// New creates a limiter allowing limit events per key per span. A
// background sweep drops expired windows.
func New(limit int, span time.Duration) *Limiter {
	l := &Limiter{
		windows: make(map[string]*window),
		limit:   limit,
		span:    span,
	}
	go l.sweep()
	return l
}

// Allow records one event for key and reports whether it stays within
// the budget. The first event after a window lapses opens a fresh one.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, exists := l.windows[key]
	if !exists || now.After(w.expiresAt) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(l.span)}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Reset clears the window for key, e.g. after a successful sign-in.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

func (l *Limiter) sweep() {
	ticker := time.NewTicker(l.span * 2)
	defer ticker.Stop()

	for range ticker.C {
		l.mu.Lock()
		now := time.Now()
		for key, w := range l.windows {
			if now.After(w.expiresAt) {
				delete(l.windows, key)
			}
		}
		l.mu.Unlock()
	}
}

// ClientIP extracts the client address from a request, trusting
// X-Forwarded-For and X-Real-IP when a proxy set them.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// First entry is the originating client.
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr may arrive without a port.
		return r.RemoteAddr
	}
	return ip
}

// LoginLimiter pairs the per-address and per-account budgets for the
// sign-in form.
type LoginLimiter struct {
	byAddress *Limiter
	byAccount *Limiter
}

// NewLoginLimiter creates a limiter with the default sign-in budgets.
func NewLoginLimiter() *LoginLimiter {
	return &LoginLimiter{
		byAddress: New(AddressLimit, AddressWindow),
		byAccount: New(AccountLimit, AccountWindow),
	}
}

// Check records a sign-in attempt and reports whether it may proceed.
// The reason is user-facing when blocked.
func (ll *LoginLimiter) Check(r *http.Request, loginID string) (bool, string) {
	if !ll.byAddress.Allow(ClientIP(r)) {
		return false, "Too many sign-in attempts. Wait a minute and try again."
	}
	if loginID != "" {
		if !ll.byAccount.Allow(accountKey(loginID)) {
			return false, "Too many sign-in attempts for this account. Wait a few minutes."
		}
	}
	return true, ""
}

// ResetEmail clears the per-account budget after a successful sign-in.
func (ll *LoginLimiter) ResetEmail(loginID string) {
	if loginID != "" {
		ll.byAccount.Reset(accountKey(loginID))
	}
}

func accountKey(loginID string) string {
	return strings.ToLower(strings.TrimSpace(loginID))
}
