package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"dormdrop/pkg/logger"
)

// ipLimiter throttles unauthenticated traffic per source IP. Per-user
// action limits live in the usecases; this only blunts brute force
// against the auth endpoints and general scraping.
type ipLimiter struct {
	visitors map[string]*visitor
	mu       sync.Mutex
	rate     int
	window   time.Duration
}

type visitor struct {
	tokens   int
	lastSeen time.Time
}

func newIPLimiter(rate int, window time.Duration) *ipLimiter {
	rl := &ipLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
	}
	go rl.cleanup()
	return rl
}

func (rl *ipLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	v, ok := rl.visitors[ip]
	if !ok {
		rl.visitors[ip] = &visitor{tokens: rl.rate - 1, lastSeen: now}
		return true
	}

	refill := int(float64(now.Sub(v.lastSeen)) / float64(rl.window) * float64(rl.rate))
	v.tokens += refill
	if v.tokens > rl.rate {
		v.tokens = rl.rate
	}
	v.lastSeen = now

	if v.tokens <= 0 {
		return false
	}
	v.tokens--
	return true
}

func (rl *ipLimiter) cleanup() {
	for {
		time.Sleep(time.Hour)

		rl.mu.Lock()
		now := time.Now()
		for ip, v := range rl.visitors {
			if now.Sub(v.lastSeen) > 2*time.Hour {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

func (rl *ipLimiter) middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if !rl.allow(ip) {
				logger.Warn("Rate limit exceeded for IP %s", ip)
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"error": "Rate limit exceeded",
				})
			}
			return next(c)
		}
	}
}

var (
	// General API: 60 requests per minute per IP.
	generalLimiter = newIPLimiter(60, time.Minute)

	// Auth endpoints: 10 attempts per minute per IP.
	authLimiter = newIPLimiter(10, time.Minute)
)

func GeneralRateLimit() echo.MiddlewareFunc {
	return generalLimiter.middleware()
}

func AuthRateLimit() echo.MiddlewareFunc {
	return authLimiter.middleware()
}
