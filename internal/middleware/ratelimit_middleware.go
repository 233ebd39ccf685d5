package middleware

import (
	"context"
	"sync"
	"time"
)

const (
	failedLoginLimit  = 5
	failedLoginWindow = time.Minute
)

// FailedLoginLimiter counts failed login attempts per IP.
// Limit: 5 failures per minute.
type FailedLoginLimiter struct {
	mu       sync.Mutex
	attempts map[string]*attemptInfo
	now      func() time.Time
}

type attemptInfo struct {
	count   int
	firstAt time.Time
}

// NewFailedLoginLimiter creates a limiter. Expired entries are purged until ctx is done.
func NewFailedLoginLimiter(ctx context.Context) *FailedLoginLimiter {
	rl := &FailedLoginLimiter{
		attempts: make(map[string]*attemptInfo),
		now:      time.Now,
	}
	go rl.cleanup(ctx)
	return rl
}

// Blocked reports whether ip has used up its failures for the current window.
func (r *FailedLoginLimiter) Blocked(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, ok := r.attempts[ip]
	if !ok {
		return false
	}
	if r.now().Sub(info.firstAt) > failedLoginWindow {
		delete(r.attempts, ip)
		return false
	}
	return info.count >= failedLoginLimit
}

// Fail records a failed attempt from ip.
func (r *FailedLoginLimiter) Fail(ip string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	info, ok := r.attempts[ip]
	if !ok || now.Sub(info.firstAt) > failedLoginWindow {
		r.attempts[ip] = &attemptInfo{count: 1, firstAt: now}
		return
	}
	info.count++
}

// Reset clears ip after a successful login.
func (r *FailedLoginLimiter) Reset(ip string) {
	r.mu.Lock()
	delete(r.attempts, ip)
	r.mu.Unlock()
}

func (r *FailedLoginLimiter) cleanup(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.mu.Lock()
			now := r.now()
			for ip, info := range r.attempts {
				if now.Sub(info.firstAt) > failedLoginWindow {
					delete(r.attempts, ip)
				}
			}
			r.mu.Unlock()
		}
	}
}
