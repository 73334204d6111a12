// middleware/rate_limiter.go
package middleware

import (
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type endpointLimit struct {
	limit rate.Limit
	burst int
}

// RateLimiter throttles requests per client IP. The login and password-reset
// endpoints carry strict limits to slow brute forcing; everything else gets
// the default budget.
type RateLimiter struct {
	ips            map[string]*rate.Limiter
	blockedIPs     map[string]time.Time
	mu             *sync.RWMutex
	defaultLimit   rate.Limit
	defaultBurst   int
	blockDuration  time.Duration
	endpointLimits map[string]endpointLimit
}

// NewRateLimiter builds the limiter with this panel's endpoint budgets.
func NewRateLimiter() *RateLimiter {
	limiter := &RateLimiter{
		ips:            make(map[string]*rate.Limiter),
		blockedIPs:     make(map[string]time.Time),
		mu:             &sync.RWMutex{},
		defaultLimit:   rate.Every(100 * time.Millisecond), // 10 requests per second
		defaultBurst:   20,
		blockDuration:  5 * time.Minute,
		endpointLimits: make(map[string]endpointLimit),
	}

	limiter.endpointLimits["/login"] = endpointLimit{
		limit: rate.Every(2 * time.Second),
		burst: 5,
	}
	limiter.endpointLimits["/forgot-password"] = endpointLimit{
		limit: rate.Every(2 * time.Second),
		burst: 3,
	}
	limiter.endpointLimits["/reset-password"] = endpointLimit{
		limit: rate.Every(time.Second),
		burst: 5,
	}

	go limiter.cleanupBlockedIPs()

	return limiter
}

func (r *RateLimiter) cleanupBlockedIPs() {
	for {
		time.Sleep(1 * time.Hour)
		r.mu.Lock()
		now := time.Now()
		for ip, blockUntil := range r.blockedIPs {
			if now.After(blockUntil) {
				delete(r.blockedIPs, ip)
				delete(r.ips, ip)
			}
		}
		r.mu.Unlock()
	}
}

func (r *RateLimiter) getLimiter(ip string, limit rate.Limit, burst int) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := ip
	if limiter, exists := r.ips[key]; exists {
		return limiter
	}
	limiter := rate.NewLimiter(limit, burst)
	r.ips[key] = limiter
	return limiter
}

// RateLimit is the Echo middleware. Static assets are exempt.
func (r *RateLimiter) RateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()

			if strings.HasPrefix(c.Request().URL.Path, "/static/") {
				return next(c)
			}

			r.mu.Lock()
			if blockUntil, blocked := r.blockedIPs[ip]; blocked {
				if time.Now().Before(blockUntil) {
					r.mu.Unlock()
					return c.JSON(429, map[string]string{
						"message":    "Muitas requisições. Tente novamente mais tarde.",
						"retryAfter": blockUntil.Format(time.RFC3339),
					})
				}
				delete(r.blockedIPs, ip)
				delete(r.ips, ip)
			}
			r.mu.Unlock()

			limit := r.defaultLimit
			burst := r.defaultBurst
			if el, exists := r.endpointLimits[c.Path()]; exists {
				limit = el.limit
				burst = el.burst
			}

			limiter := r.getLimiter(ip, limit, burst)
			if !limiter.Allow() {
				r.mu.Lock()
				r.blockedIPs[ip] = time.Now().Add(r.blockDuration)
				r.mu.Unlock()
				return c.JSON(429, map[string]string{
					"message": "Muitas requisições. Tente novamente mais tarde.",
				})
			}

			return next(c)
		}
	}
}
